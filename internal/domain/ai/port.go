package ai

import "context"

// RequestMode selects the prompt the model service is invoked with.
type RequestMode string

const (
	RequestText     RequestMode = "text"
	RequestImage    RequestMode = "image"
	RequestHumanize RequestMode = "humanize"
)

// Request carries one normalized analysis payload: either raw text or a
// (declared type, base64 data) pair. FileURL is set when the original upload
// was archived and may be referenced instead of inlining the bytes.
type Request struct {
	Mode     RequestMode
	Text     string
	MIMEType string
	Data     string // base64
	FileURL  string
}

// IsBinary reports whether the request carries an upload payload.
func (r Request) IsBinary() bool { return r.MIMEType != "" }

// Client is the raw model boundary: it returns the model's (nominally JSON)
// response text, or an error. Schema validation happens above this port.
type Client interface {
	Analyze(ctx context.Context, req Request) (string, error)
}
