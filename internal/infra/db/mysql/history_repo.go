package mysql

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	domain "github.com/jholscan/jholscan/internal/domain/scans"
)

// HistoryRepository persists scan records in MySQL. Ordering is insertion
// order via the auto-increment seq column, newest first on load. The full
// record travels as a JSON payload; a few columns are lifted out for
// listing and indexing.
type HistoryRepository struct {
	db *sql.DB
}

func NewHistoryRepository(db *sql.DB) *HistoryRepository {
	return &HistoryRepository{db: db}
}

// Migrate creates the history table when it does not exist yet.
func (r *HistoryRepository) Migrate(ctx context.Context) error {
	const q = `
CREATE TABLE IF NOT EXISTS scan_history (
  seq        BIGINT AUTO_INCREMENT PRIMARY KEY,
  id         VARCHAR(64) NOT NULL UNIQUE,
  created_at TIMESTAMP NOT NULL,
  mode       VARCHAR(16) NOT NULL,
  risk_level VARCHAR(16) NOT NULL,
  risk_score DOUBLE NOT NULL,
  summary    TEXT,
  payload    LONGTEXT NOT NULL
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
			// One bad row should not take the whole history down.
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
VALUES (?,?,?,?,?,?,?);`
	_, err = r.db.ExecContext(ctx, q,
		rec.ScanID, rec.Timestamp, rec.Mode,
		rec.Detection.RiskLevel, rec.Detection.RiskScore, rec.Detection.Summary,
		payload,
	)
	return err
}

func (r *HistoryRepository) Get(ctx context.Context, id domain.ScanID) (*domain.ScanRecord, error) {
	const q = `SELECT payload FROM scan_history WHERE id=? LIMIT 1;`
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
	const q = `UPDATE scan_history SET payload=? WHERE id=?;`
	_, err = r.db.ExecContext(ctx, q, payload, id)
	return err
}

func (r *HistoryRepository) Clear(ctx context.Context) error {
	const q = `DELETE FROM scan_history;`
	_, err := r.db.ExecContext(ctx, q)
	return err
}
