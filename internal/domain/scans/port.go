package scans

import "context"

// Repository port (interface untuk persistence)
// Records are kept most-recently-appended first; ordering is insertion order.
type Repository interface {
	// Load returns the full history, newest first. Missing or corrupt
	// persisted state yields an empty history, never an error.
	Load(ctx context.Context) ([]*ScanRecord, error)
	// Append prepends the record and persists the whole sequence.
	Append(ctx context.Context, rec *ScanRecord) error
	Get(ctx context.Context, id ScanID) (*ScanRecord, error)
	// UpdateHumanizer replaces only the humanizer sub-record of id.
	UpdateHumanizer(ctx context.Context, id ScanID, h Humanizer) error
	// Clear empties both in-memory and persisted state.
	Clear(ctx context.Context) error
}

// ArtifactStore port (interface untuk penyimpanan upload asli)
type ArtifactStore interface {
	// UploadBytes stores raw upload bytes under key and returns a URL
	// the original submission can later be fetched from.
	UploadBytes(ctx context.Context, key, contentType string, data []byte) (string, error)
}
