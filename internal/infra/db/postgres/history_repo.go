package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	domain "github.com/jholscan/jholscan/internal/domain/scans"
)

// HistoryRepository is the Postgres twin of the MySQL adapter: insertion
// order via BIGSERIAL, whole records as JSONB payloads.
type HistoryRepository struct{ db *sql.DB }

func NewHistoryRepository(db *sql.DB) *HistoryRepository { return &HistoryRepository{db: db} }

func (r *HistoryRepository) Migrate(ctx context.Context) error {
	const q = `
CREATE TABLE IF NOT EXISTS scan_history (
  seq        BIGSERIAL PRIMARY KEY,
  id         VARCHAR(64) NOT NULL UNIQUE,
  created_at TIMESTAMPTZ NOT NULL,
  mode       VARCHAR(16) NOT NULL,
  risk_level VARCHAR(16) NOT NULL,
  risk_score DOUBLE PRECISION NOT NULL,
  summary    TEXT,
  payload    JSONB NOT NULL
);`
	_, err := r.db.ExecContext(ctx, q)
	return err
}

func (r *HistoryRepository) Load(ctx context.Context) ([]*domain.ScanRecord, error) {
	const q = `SELECT payload FROM scan_history ORDER BY seq DESC;`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*domain.ScanRecord
	for rows.Next() {
		var payload []byte
		if err := rows.Scan(&payload); err != nil {
			return nil, err
		}
		var rec domain.ScanRecord
		if err := json.Unmarshal(payload, &rec); err != nil {
			continue
		}
		out = append(out, &rec)
	}
	return out, rows.Err()
}

func (r *HistoryRepository) Append(ctx context.Context, rec *domain.ScanRecord) error {
	payload, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	const q = `
INSERT INTO scan_history (id, created_at, mode, risk_level, risk_score, summary, payload)
VALUES ($1,$2,$3,$4,$5,$6,$7);`
	_, err = r.db.ExecContext(ctx, q,
		rec.ScanID, rec.Timestamp, rec.Mode,
		rec.Detection.RiskLevel, rec.Detection.RiskScore, rec.Detection.Summary,
		payload,
	)
	return err
}

func (r *HistoryRepository) Get(ctx context.Context, id domain.ScanID) (*domain.ScanRecord, error) {
	const q = `SELECT payload FROM scan_history WHERE id=$1 LIMIT 1;`
	var payload []byte
	if err := r.db.QueryRowContext(ctx, q, id).Scan(&payload); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	var rec domain.ScanRecord
	if err := json.Unmarshal(payload, &rec); err != nil {
		return nil, fmt.Errorf("decoding record %s: %w", id, err)
	}
	return &rec, nil
}

func (r *HistoryRepository) UpdateHumanizer(ctx context.Context, id domain.ScanID, h domain.Humanizer) error {
	rec, err := r.Get(ctx, id)
	if err != nil {
		return err
	}
	rec.Humanizer = h
	payload, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	const q = `UPDATE scan_history SET payload=$1 WHERE id=$2;`
	_, err = r.db.ExecContext(ctx, q, payload, id)
	return err
}

func (r *HistoryRepository) Clear(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM scan_history;`)
	return err
}
