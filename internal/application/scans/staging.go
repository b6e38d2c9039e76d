package scans

import (
	"encoding/base64"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	domain "github.com/jholscan/jholscan/internal/domain/scans"
)

// Size ceilings depend on the declared type: document-category uploads get
// the larger limit, everything else the smaller one.
const (
	DocumentSizeLimit = 100 << 20 // 100 MB
	DefaultSizeLimit  = 50 << 20  // 50 MB
)

var acceptedExtensions = map[domain.ScanMode][]string{
	domain.ModeFile:  {".pdf"},
	domain.ModeImage: {".jpg", ".jpeg", ".png", ".webp"},
}

// StagedFile is the transient upload tuple staged for the next analysis.
// Data is the transport-safe base64 encoding of the original bytes.
type StagedFile struct {
	Name      string
	MIMEType  string
	SizeBytes int64
	Data      string
}

// SizeLimitFor returns the byte ceiling for a declared MIME type.
func SizeLimitFor(mimeType string) int64 {
	if isDocument(mimeType) {
		return DocumentSizeLimit
	}
	return DefaultSizeLimit
}

func isDocument(mimeType string) bool {
	return mimeType == "application/pdf"
}

// ValidateUpload checks extension and size ceiling for the given mode.
// It must pass before any bytes are read so rejected files are never staged.
func ValidateUpload(mode domain.ScanMode, name, mimeType string, size int64) error {
	exts, ok := acceptedExtensions[mode]
	if !ok {
		return fmt.Errorf("%w: %s does not accept uploads", domain.ErrBadMode, mode)
	}
	ext := strings.ToLower(filepath.Ext(name))
	accepted := false
	for _, e := range exts {
		if ext == e {
			accepted = true
			break
		}
	}
	if !accepted {
		return fmt.Errorf("%w: %s (accepted: %s)", domain.ErrBadExtension, ext, strings.Join(exts, ", "))
	}
	if limit := SizeLimitFor(mimeType); size > limit {
		return fmt.Errorf("%w: %d bytes exceeds the %d MB limit", domain.ErrOversize, size, limit>>20)
	}
	return nil
}

// transcode reads at most size bytes and returns the base64 encoding.
// The staged tuple is assembled only after this succeeds, so a mid-flight
// failure leaves no partial state behind.
func transcode(r io.Reader, size int64) (string, error) {
	raw, err := io.ReadAll(io.LimitReader(r, size))
	if err != nil {
		return "", fmt.Errorf("reading upload: %w", err)
	}
	return base64.StdEncoding.EncodeToString(raw), nil
}
