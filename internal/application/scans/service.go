package scans

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"log"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/jholscan/jholscan/internal/application"
	"github.com/jholscan/jholscan/internal/domain/ai"
	domain "github.com/jholscan/jholscan/internal/domain/scans"
)

// Service implements the scan workspace use-cases: input staging, the
// analyze/humanize cycle, the currently displayed record and history access.
// State is single-writer by construction (one analysis in flight at a time);
// the mutex covers the handful of suspension points around the model call.
type Service struct {
	History domain.Repository
	Adapter *Adapter
	Archive domain.ArtifactStore // optional upload archive, may be nil
	Clock   application.Clock

	mu         sync.Mutex
	mode       domain.ScanMode
	stagedText string
	stagedFile *StagedFile
	current    *domain.ScanRecord
	generation uint64
	analyzing  bool
	humanizing bool
}

func NewService(history domain.Repository, adapter *Adapter, archive domain.ArtifactStore, clock application.Clock) *Service {
	return &Service{
		History: history,
		Adapter: adapter,
		Archive: archive,
		Clock:   clock,
		mode:    domain.ModeText,
	}
}

// Mode returns the active input mode.
func (s *Service) Mode() domain.ScanMode {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mode
}

// SwitchMode discards staged input and the displayed result: switching
// always starts a fresh cycle. Any in-flight resolution is superseded.
func (s *Service) SwitchMode(mode domain.ScanMode) error {
	switch mode {
	case domain.ModeText, domain.ModeFile, domain.ModeImage:
	default:
		return fmt.Errorf("%w: %q", domain.ErrBadMode, mode)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.mode = mode
	s.stagedText = ""
	s.stagedFile = nil
	s.current = nil
	s.generation++
	return nil
}

// StageText stages raw text for analysis. Only meaningful in text mode;
// submission requires the trimmed text to be non-empty.
func (s *Service) StageText(text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.mode != domain.ModeText {
		return fmt.Errorf("%w: text input requires text mode", domain.ErrBadMode)
	}
	if strings.TrimSpace(text) == "" {
		return domain.ErrEmptyText
	}
	s.stagedText = text
	return nil
}

// StageFile validates and stages one upload. The tuple (name, type, size,
// transcoded data) is set atomically: a transcode failure stages nothing.
func (s *Service) StageFile(name, mimeType string, size int64, r io.Reader) error {
	s.mu.Lock()
	mode := s.mode
	s.mu.Unlock()

	if err := ValidateUpload(mode, name, mimeType, size); err != nil {
		return err
	}
	data, err := transcode(r, size)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.mode != mode {
		// Mode switched while the upload was being read; discard it.
		return fmt.Errorf("%w: mode changed during upload", domain.ErrBadMode)
	}
	s.stagedFile = &StagedFile{Name: name, MIMEType: mimeType, SizeBytes: size, Data: data}
	return nil
}

// RemoveFile clears the staged upload.
func (s *Service) RemoveFile() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stagedFile = nil
}

// Staged returns a snapshot of the staged input.
func (s *Service) Staged() (string, *StagedFile) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stagedFile == nil {
		return s.stagedText, nil
	}
	f := *s.stagedFile
	return s.stagedText, &f
}

// Analyze runs one analysis against the staged input. On success the record
// is appended to history and becomes the displayed result. An error-flagged
// record is returned for rendering but is neither appended nor displayed.
// A resolution that arrives after the input was superseded is dropped.
// At most one analyze or humanize call runs at a time.
func (s *Service) Analyze(ctx context.Context) (*domain.ScanRecord, error) {
	s.mu.Lock()
	if s.analyzing || s.humanizing {
		s.mu.Unlock()
		return nil, domain.ErrBusy
	}
	mode := s.mode
	req, err := s.buildRequestLocked(requestModeFor(mode))
	if err != nil {
		s.mu.Unlock()
		return nil, err
	}
	text := s.stagedText
	file := s.stagedFile
	gen := s.generation
	s.analyzing = true
	s.current = nil
	s.mu.Unlock()

	if file != nil {
		req.FileURL = s.archiveUpload(ctx, file)
	}

	rec := s.Adapter.Analyze(ctx, req, mode)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.analyzing = false
	if s.generation != gen {
		return nil, domain.ErrSuperseded
	}

	if rec.Error {
		// Failed analyses are surfaced but never stored; the workspace
		// returns to a non-busy state with no result shown.
		s.current = nil
		return rec, nil
	}

	rec.Mode = mode
	rec.FileInfo = fileInfoFor(mode, text, file)
	rec.ArtifactURL = req.FileURL
	if err := s.History.Append(ctx, rec); err != nil {
		return rec, fmt.Errorf("persisting scan record: %w", err)
	}
	s.current = rec
	return rec, nil
}

// Humanize re-submits the displayed result's input with the humanize prompt
// and merges only the humanizer sub-record into the displayed record.
// Detection, recommendations and identity fields are never touched. Failure
// leaves the displayed record usable and the action re-armed; repeating a
// successful humanize overwrites the previous rewrite.
func (s *Service) Humanize(ctx context.Context) (*domain.ScanRecord, error) {
	s.mu.Lock()
	if s.current == nil {
		s.mu.Unlock()
		return nil, domain.ErrNoResult
	}
	if s.humanizing || s.analyzing {
		s.mu.Unlock()
		return nil, domain.ErrBusy
	}
	req, err := s.buildRequestLocked(ai.RequestHumanize)
	if err != nil {
		s.mu.Unlock()
		return nil, err
	}
	recordMode := s.current.Mode
	targetID := s.current.ScanID
	gen := s.generation
	s.humanizing = true
	s.mu.Unlock()

	rec := s.Adapter.Analyze(ctx, req, recordMode)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.humanizing = false
	if s.generation != gen {
		return nil, domain.ErrSuperseded
	}
	if rec.Error {
		return nil, fmt.Errorf("%w: %s", domain.ErrHumanizeFailed, rec.Message)
	}
	// The displayed record may have been swapped by a selection while the
	// rewrite was in flight; merging into a different record would corrupt it.
	if s.current == nil || s.current.ScanID != targetID {
		return nil, domain.ErrSuperseded
	}

	merged := *s.current
	merged.Humanizer = rec.Humanizer
	merged.Humanizer.Requested = true
	if err := s.History.UpdateHumanizer(ctx, merged.ScanID, merged.Humanizer); err != nil {
		return nil, fmt.Errorf("persisting humanizer: %w", err)
	}
	s.current = &merged
	return s.current, nil
}

// Reset is "scan again": transient input and result state are cleared,
// history is untouched, and any in-flight resolution is superseded.
func (s *Service) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stagedText = ""
	s.stagedFile = nil
	s.current = nil
	s.generation++
}

// Current returns the displayed record, or nil.
func (s *Service) Current() *domain.ScanRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// Busy reports whether an analyze or humanize call is in flight.
func (s *Service) Busy() (analyzing, humanizing bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.analyzing, s.humanizing
}

// Select promotes a past record to be the displayed result without mutating
// its position or content.
func (s *Service) Select(ctx context.Context, id domain.ScanID) (*domain.ScanRecord, error) {
	rec, err := s.History.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = rec
	return rec, nil
}

// Records returns the history, newest first.
func (s *Service) Records(ctx context.Context) ([]*domain.ScanRecord, error) {
	return s.History.Load(ctx)
}

// ClearHistory destroys all records. The confirmation flag must be set by
// the call site; clearing is irreversible.
func (s *Service) ClearHistory(ctx context.Context, confirmed bool) error {
	if !confirmed {
		return domain.ErrConfirmRequired
	}
	return s.History.Clear(ctx)
}

// buildRequestLocked assembles the model request from staged input.
// Caller holds s.mu. File mode uses the text prompt with a binary payload;
// only image mode gets the image-forensics prompt.
func (s *Service) buildRequestLocked(reqMode ai.RequestMode) (ai.Request, error) {
	if s.mode == domain.ModeText {
		if strings.TrimSpace(s.stagedText) == "" {
			return ai.Request{}, domain.ErrNoStagedInput
		}
		return ai.Request{Mode: reqMode, Text: s.stagedText}, nil
	}
	if s.stagedFile == nil {
		return ai.Request{}, domain.ErrNoStagedInput
	}
	return ai.Request{
		Mode:     reqMode,
		MIMEType: s.stagedFile.MIMEType,
		Data:     s.stagedFile.Data,
	}, nil
}

func requestModeFor(mode domain.ScanMode) ai.RequestMode {
	if mode == domain.ModeImage {
		return ai.RequestImage
	}
	return ai.RequestText
}

// archiveUpload stores the original upload bytes so past results can render
// their submitted file again. Best effort: archive failures never block an
// analysis.
func (s *Service) archiveUpload(ctx context.Context, file *StagedFile) string {
	if s.Archive == nil {
		return ""
	}
	raw, err := base64.StdEncoding.DecodeString(file.Data)
	if err != nil {
		return ""
	}
	key := fmt.Sprintf("uploads/%s/%s", uuid.New().String(), file.Name)
	url, err := s.Archive.UploadBytes(ctx, key, file.MIMEType, raw)
	if err != nil {
		log.Printf("archive upload failed for %s: %v", file.Name, err)
		return ""
	}
	return url
}

// fileInfoFor synthesizes the descriptive metadata stamped onto a record at
// creation. Text analyses record the text length; uploads record the staged
// tuple as declared.
func fileInfoFor(mode domain.ScanMode, text string, file *StagedFile) domain.FileInfo {
	if mode == domain.ModeText {
		t := "text"
		n := int64(len(text))
		return domain.FileInfo{Name: nil, Type: &t, SizeBytes: &n, Pages: nil}
	}
	if file == nil {
		return domain.FileInfo{}
	}
	name := file.Name
	typ := file.MIMEType
	size := file.SizeBytes
	return domain.FileInfo{Name: &name, Type: &typ, SizeBytes: &size, Pages: nil}
}
