package scans

import (
	"strings"
	"testing"
	"time"
)

const validResponse = `{
	"scan_id": "scan_abc123",
	"detection": {
		"is_ai_generated": true,
		"ai_probability": 0.9,
		"human_probability": 0.1,
		"risk_score": 85,
		"risk_level": "HIGH",
		"confidence": "high",
		"summary": "Likely machine generated.",
		"signals": ["uniform sentence length"],
		"detailed_analysis": "Repetitive structure throughout."
	},
	"recommendations": ["rewrite by hand"]
}`

func TestParseRecord(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		raw  string
	}{
		{"bare object", validResponse},
		{"fenced", "```json\n" + validResponse + "\n```"},
		{"prose wrapped", "Here is the result:\n" + validResponse + "\nHope that helps."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, err := ParseRecord(tt.raw, ModeText, now)
			if err != nil {
				t.Fatalf("ParseRecord: %v", err)
			}
			if rec.ScanID != "scan_abc123" {
				t.Errorf("scan_id = %q", rec.ScanID)
			}
			if rec.Mode != ModeText {
				t.Errorf("mode = %q, want text", rec.Mode)
			}
			if rec.Detection.RiskScore != 85 {
				t.Errorf("risk_score = %v, want 85", rec.Detection.RiskScore)
			}
			if rec.Detection.RiskLevel != RiskHigh {
				t.Errorf("risk_level = %q, want HIGH", rec.Detection.RiskLevel)
			}
			if rec.Timestamp != now {
				t.Errorf("timestamp = %v, want %v", rec.Timestamp, now)
			}
		})
	}
}

func TestParseRecordFillsOmittedFields(t *testing.T) {
	raw := `{"detection": {"risk_score": 10, "risk_level": "LOW"}}`
	rec, err := ParseRecord(raw, ModeFile, time.Now())
	if err != nil {
		t.Fatalf("ParseRecord: %v", err)
	}
	if rec.ScanID == "" {
		t.Error("scan_id not generated")
	}
	if rec.Timestamp.IsZero() {
		t.Error("timestamp not stamped")
	}
	if rec.Detection.Confidence != "low" {
		t.Errorf("confidence = %q, want low default", rec.Detection.Confidence)
	}
	if rec.Detection.Signals == nil || rec.Recommendations == nil || rec.Humanizer.ChangesMade == nil {
		t.Error("nil slices not normalized to empty")
	}
}

func TestParseRecordFailsClosed(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"no json", "the model refused to answer"},
		{"truncated", `{"detection": {"risk_score": 40`},
		{"score too high", `{"detection": {"risk_score": 120, "risk_level": "HIGH"}}`},
		{"score negative", `{"detection": {"risk_score": -1, "risk_level": "LOW"}}`},
		{"unknown level", `{"detection": {"risk_score": 50, "risk_level": "SEVERE"}}`},
		{"unknown confidence", `{"detection": {"risk_score": 50, "risk_level": "MEDIUM", "confidence": "absolute"}}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParseRecord(tt.raw, ModeText, time.Now()); err == nil {
				t.Error("want error, got nil")
			}
		})
	}
}

func TestErrorRecord(t *testing.T) {
	now := time.Now()
	rec := ErrorRecord(ModeImage, "model service unavailable", now)

	if !rec.Error {
		t.Error("error flag not set")
	}
	if !strings.HasPrefix(string(rec.ScanID), "err_") {
		t.Errorf("scan_id = %q, want err_ prefix", rec.ScanID)
	}
	if rec.Mode != ModeImage {
		t.Errorf("mode = %q", rec.Mode)
	}
	if rec.Detection.RiskLevel != RiskLow || rec.Detection.RiskScore != 0 {
		t.Errorf("detection not neutral: %+v", rec.Detection)
	}
	if rec.Message != "model service unavailable" {
		t.Errorf("message = %q", rec.Message)
	}
	if rec.Detection.Signals == nil || rec.Recommendations == nil {
		t.Error("nil slices on error record")
	}
}

func TestCategory(t *testing.T) {
	if got := ModeVideo.Category(); got != ModeFile {
		t.Errorf("video category = %q, want file", got)
	}
	for _, m := range []ScanMode{ModeText, ModeFile, ModeImage} {
		if got := m.Category(); got != m {
			t.Errorf("%s category = %q", m, got)
		}
	}
}
