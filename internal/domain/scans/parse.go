package scans

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ParseRecord decodes a raw model response into a ScanRecord.
// Model output is loosely typed: it may wrap the JSON in markdown fences or
// surround it with prose, so the object is extracted best-effort before
// decoding. Anything that fails validation fails closed: callers turn the
// error into an error record via ErrorRecord.
func ParseRecord(raw string, mode ScanMode, now time.Time) (*ScanRecord, error) {
	body, err := extractJSON(raw)
	if err != nil {
		return nil, err
	}

	var rec ScanRecord
	if err := json.Unmarshal([]byte(body), &rec); err != nil {
		return nil, fmt.Errorf("decoding model response: %w", err)
	}

	// Fill in the fields the service is allowed to omit.
	if rec.ScanID == "" {
		rec.ScanID = ScanID(uuid.New().String())
	}
	if rec.Timestamp.IsZero() {
		rec.Timestamp = now
	}
	rec.Mode = mode
	if rec.Detection.Signals == nil {
		rec.Detection.Signals = []string{}
	}
	if rec.Recommendations == nil {
		rec.Recommendations = []string{}
	}
	if rec.Humanizer.ChangesMade == nil {
		rec.Humanizer.ChangesMade = []string{}
	}

	if err := validateRecord(&rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

// extractJSON strips markdown code fences and pulls out the outermost
// JSON object when the model wraps it in extra text.
func extractJSON(raw string) (string, error) {
	s := strings.TrimSpace(raw)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	s = strings.TrimSpace(s)

	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start < 0 || end < start {
		return "", fmt.Errorf("no JSON object in model response")
	}
	return s[start : end+1], nil
}

func validateRecord(rec *ScanRecord) error {
	d := &rec.Detection
	if d.RiskScore < 0 || d.RiskScore > 100 {
		return fmt.Errorf("risk_score out of range: %v", d.RiskScore)
	}
	if !ValidRiskLevel(d.RiskLevel) {
		return fmt.Errorf("invalid risk_level: %q", d.RiskLevel)
	}
	switch strings.ToLower(d.Confidence) {
	case "high", "medium", "low":
	case "":
		d.Confidence = "low"
	default:
		return fmt.Errorf("invalid confidence: %q", d.Confidence)
	}
	return nil
}

// ErrorRecord builds the error-flagged record the analysis boundary resolves
// to on any failure: neutral detection fields, LOW risk, err_-prefixed id.
func ErrorRecord(mode ScanMode, msg string, now time.Time) *ScanRecord {
	return &ScanRecord{
		ScanID:    ScanID(fmt.Sprintf("err_%s", uuid.New().String())),
		Timestamp: now,
		Mode:      mode,
		FileInfo:  FileInfo{},
		Detection: Detection{
			IsAIGenerated:    false,
			AIProbability:    0,
			HumanProbability: 0,
			RiskScore:        0,
			RiskLevel:        RiskLow,
			Confidence:       "low",
			Summary:          "Error occurred during analysis. Please try again.",
			Signals:          []string{},
			ModelSuspected:   nil,
			DetailedAnalysis: "Unable to process request due to an error.",
		},
		Humanizer: Humanizer{
			Requested:     false,
			HumanizedText: nil,
			ChangesMade:   []string{},
		},
		Recommendations: []string{},
		UIHints: UIHints{
			ShowLoadingAnimation: false,
			SuggestedColor:       "red",
			SuggestedView:        "card",
			AlertLevel:           "danger",
		},
		Metadata: Metadata{
			ProcessingTimeMS: 0,
			APIsUsed:         []string{},
			Version:          SchemaVersion,
		},
		Error:   true,
		Message: msg,
	}
}

// SchemaVersion is the record schema version stamped into metadata.
const SchemaVersion = "1.0.0"
