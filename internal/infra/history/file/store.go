// Package file persists scan history as a single JSON slot on disk:
// loaded once at startup, rewritten whole after every mutation. Corrupt or
// missing state degrades to an empty history and is never fatal.
package file

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"os"
	"path/filepath"
	"sync"

	domain "github.com/jholscan/jholscan/internal/domain/scans"
)

type Store struct {
	path string

	mu      sync.Mutex
	records []*domain.ScanRecord
}

// New loads any existing slot at path. A deserialization failure is
// swallowed and treated as an empty history.
func New(path string) (*Store, error) {
	s := &Store{path: path}

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return s, nil
	}
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(data, &s.records); err != nil {
		log.Printf("history slot %s is corrupt, starting empty: %v", path, err)
		s.records = nil
	}
	return s, nil
}

func (s *Store) Load(ctx context.Context) ([]*domain.ScanRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*domain.ScanRecord, len(s.records))
	copy(out, s.records)
	return out, nil
}

func (s *Store) Append(ctx context.Context, rec *domain.ScanRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = append([]*domain.ScanRecord{rec}, s.records...)
	return s.saveLocked()
}

func (s *Store) Get(ctx context.Context, id domain.ScanID) (*domain.ScanRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, rec := range s.records {
		if rec.ScanID == id {
			cp := *rec
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (s *Store) UpdateHumanizer(ctx context.Context, id domain.ScanID, h domain.Humanizer) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, rec := range s.records {
		if rec.ScanID == id {
			rec.Humanizer = h
			return s.saveLocked()
		}
	}
	return domain.ErrNotFound
}

func (s *Store) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = nil
	return s.saveLocked()
}

// saveLocked rewrites the whole slot. Write goes through a temp file and a
// rename so a crash mid-write never leaves a half-written slot behind.
func (s *Store) saveLocked() error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return err
	}
	records := s.records
	if records == nil {
		records = []*domain.ScanRecord{}
	}
	data, err := json.Marshal(records)
	if err != nil {
		return err
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, s.path)
}
