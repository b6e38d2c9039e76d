package scans

import (
	"context"

	"github.com/jholscan/jholscan/internal/application"
	"github.com/jholscan/jholscan/internal/domain/ai"
	domain "github.com/jholscan/jholscan/internal/domain/scans"
)

// Adapter wraps the raw model client behind the analysis contract: it always
// resolves to a ScanRecord-shaped value. Network errors, malformed payloads
// and parse failures all collapse into an error-flagged record with neutral
// detection fields, so nothing downstream has to special-case failure.
type Adapter struct {
	Client ai.Client
	Clock  application.Clock
}

// Analyze invokes the model service and parses the response. recordMode is
// the input channel stamped onto the record: it categorizes the staged
// input and is not necessarily the same as the request mode (humanize
// requests reuse the text or file channel).
func (a *Adapter) Analyze(ctx context.Context, req ai.Request, recordMode domain.ScanMode) *domain.ScanRecord {
	started := a.Clock.Now()

	raw, err := a.Client.Analyze(ctx, req)
	if err != nil {
		return domain.ErrorRecord(recordMode, err.Error(), a.Clock.Now())
	}

	rec, err := domain.ParseRecord(raw, recordMode, a.Clock.Now())
	if err != nil {
		return domain.ErrorRecord(recordMode, err.Error(), a.Clock.Now())
	}

	// Processing time is measured on this side of the boundary.
	rec.Metadata.ProcessingTimeMS = a.Clock.Now().Sub(started).Milliseconds()
	if rec.Metadata.Version == "" {
		rec.Metadata.Version = domain.SchemaVersion
	}
	return rec
}
