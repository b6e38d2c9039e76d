// Package analytics derives the two aggregate views over scan history:
// the chronological risk trend and the risk-level distribution by category.
// Both are recomputed from the full history on demand.
package analytics

import (
	"context"
	"fmt"
	"strings"

	domain "github.com/jholscan/jholscan/internal/domain/scans"
)

// TrendPoint is one chronological sample for the trend chart.
type TrendPoint struct {
	Label     string          `json:"label"`
	RiskScore float64         `json:"risk_score"`
	Date      string          `json:"date"`
	Mode      domain.ScanMode `json:"mode"`
}

// DistributionRow is one category row of the stacked-bar distribution.
// Every category appears even when all cells are zero.
type DistributionRow struct {
	Name   string `json:"name"`
	High   int    `json:"high"`
	Medium int    `json:"medium"`
	Low    int    `json:"low"`
}

type Service struct {
	History domain.Repository
}

func NewService(history domain.Repository) *Service {
	return &Service{History: history}
}

// Trend returns history in chronological (oldest-first) order with
// sequence labels by chronological position. History is stored newest
// first, so the sequence is reversed here.
func (s *Service) Trend(ctx context.Context) ([]TrendPoint, error) {
	records, err := s.History.Load(ctx)
	if err != nil {
		return nil, err
	}
	points := make([]TrendPoint, 0, len(records))
	for i := len(records) - 1; i >= 0; i-- {
		rec := records[i]
		points = append(points, TrendPoint{
			Label:     fmt.Sprintf("Scan %d", len(records)-i),
			RiskScore: rec.Detection.RiskScore,
			Date:      rec.Timestamp.Format("02/01/2006 15:04"),
			Mode:      rec.Mode,
		})
	}
	return points, nil
}

// Distribution returns the 3x3 contingency table of category against risk
// level. Video records count under the file category.
func (s *Service) Distribution(ctx context.Context) ([]DistributionRow, error) {
	records, err := s.History.Load(ctx)
	if err != nil {
		return nil, err
	}

	counts := map[domain.ScanMode]*DistributionRow{
		domain.ModeText:  {Name: "Text"},
		domain.ModeFile:  {Name: "File"},
		domain.ModeImage: {Name: "Image"},
	}
	for _, rec := range records {
		row, ok := counts[rec.Mode.Category()]
		if !ok {
			continue
		}
		switch domain.RiskLevel(strings.ToUpper(string(rec.Detection.RiskLevel))) {
		case domain.RiskHigh:
			row.High++
		case domain.RiskMedium:
			row.Medium++
		case domain.RiskLow:
			row.Low++
		}
	}

	return []DistributionRow{
		*counts[domain.ModeText],
		*counts[domain.ModeFile],
		*counts[domain.ModeImage],
	}, nil
}
