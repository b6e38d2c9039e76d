package analytics

import (
	"context"
	"testing"
	"time"

	domain "github.com/jholscan/jholscan/internal/domain/scans"
)

// memRepo holds records newest first, the way every real backend does.
type memRepo struct {
	records []*domain.ScanRecord
}

func (m *memRepo) Load(ctx context.Context) ([]*domain.ScanRecord, error) { return m.records, nil }
func (m *memRepo) Append(ctx context.Context, rec *domain.ScanRecord) error {
	m.records = append([]*domain.ScanRecord{rec}, m.records...)
	return nil
}
func (m *memRepo) Get(ctx context.Context, id domain.ScanID) (*domain.ScanRecord, error) {
	for _, rec := range m.records {
		if rec.ScanID == id {
			return rec, nil
		}
	}
	return nil, domain.ErrNotFound
}
func (m *memRepo) UpdateHumanizer(ctx context.Context, id domain.ScanID, h domain.Humanizer) error {
	rec, err := m.Get(ctx, id)
	if err != nil {
		return err
	}
	rec.Humanizer = h
	return nil
}
func (m *memRepo) Clear(ctx context.Context) error {
	m.records = nil
	return nil
}

func record(id string, mode domain.ScanMode, level domain.RiskLevel, score float64, at time.Time) *domain.ScanRecord {
	return &domain.ScanRecord{
		ScanID:    domain.ScanID(id),
		Timestamp: at,
		Mode:      mode,
		Detection: domain.Detection{RiskScore: score, RiskLevel: level},
	}
}

func TestTrendChronological(t *testing.T) {
	base := time.Date(2026, 2, 1, 9, 30, 0, 0, time.UTC)
	repo := &memRepo{}
	// Append oldest to newest; repo stores newest first.
	repo.Append(context.Background(), record("a", domain.ModeText, domain.RiskLow, 10, base))
	repo.Append(context.Background(), record("b", domain.ModeFile, domain.RiskMedium, 50, base.Add(time.Hour)))
	repo.Append(context.Background(), record("c", domain.ModeImage, domain.RiskHigh, 90, base.Add(2*time.Hour)))

	points, err := NewService(repo).Trend(context.Background())
	if err != nil {
		t.Fatalf("Trend: %v", err)
	}
	if len(points) != 3 {
		t.Fatalf("got %d points, want 3", len(points))
	}
	wantScores := []float64{10, 50, 90}
	wantLabels := []string{"Scan 1", "Scan 2", "Scan 3"}
	for i, p := range points {
		if p.RiskScore != wantScores[i] {
			t.Errorf("point %d score = %v, want %v", i, p.RiskScore, wantScores[i])
		}
		if p.Label != wantLabels[i] {
			t.Errorf("point %d label = %q, want %q", i, p.Label, wantLabels[i])
		}
	}
	if points[0].Date != "01/02/2026 09:30" {
		t.Errorf("date = %q", points[0].Date)
	}
}

func TestTrendEmptyHistory(t *testing.T) {
	points, err := NewService(&memRepo{}).Trend(context.Background())
	if err != nil {
		t.Fatalf("Trend: %v", err)
	}
	if len(points) != 0 {
		t.Errorf("got %d points, want 0", len(points))
	}
}

func TestDistribution(t *testing.T) {
	now := time.Now()
	repo := &memRepo{}
	ctx := context.Background()
	repo.Append(ctx, record("1", domain.ModeText, domain.RiskHigh, 90, now))
	repo.Append(ctx, record("2", domain.ModeText, domain.RiskHigh, 88, now))
	repo.Append(ctx, record("3", domain.ModeText, domain.RiskLow, 5, now))
	repo.Append(ctx, record("4", domain.ModeFile, domain.RiskMedium, 55, now))
	repo.Append(ctx, record("5", domain.ModeVideo, domain.RiskHigh, 80, now))
	// Levels match case-insensitively.
	repo.Append(ctx, record("6", domain.ModeImage, domain.RiskLevel("low"), 12, now))

	rows, err := NewService(repo).Distribution(ctx)
	if err != nil {
		t.Fatalf("Distribution: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("got %d rows, want 3", len(rows))
	}

	want := []DistributionRow{
		{Name: "Text", High: 2, Medium: 0, Low: 1},
		{Name: "File", High: 1, Medium: 1, Low: 0}, // video folds into file
		{Name: "Image", High: 0, Medium: 0, Low: 1},
	}
	for i, row := range rows {
		if row != want[i] {
			t.Errorf("row %d = %+v, want %+v", i, row, want[i])
		}
	}
}

func TestDistributionEmptyKeepsAllCategories(t *testing.T) {
	rows, err := NewService(&memRepo{}).Distribution(context.Background())
	if err != nil {
		t.Fatalf("Distribution: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("got %d rows, want 3", len(rows))
	}
	for _, row := range rows {
		if row.High != 0 || row.Medium != 0 || row.Low != 0 {
			t.Errorf("row %s not zero: %+v", row.Name, row)
		}
	}
}
