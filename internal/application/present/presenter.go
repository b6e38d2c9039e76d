// Package present builds the view model for a single scan record: verdict,
// probability split, signals, and the humanize panel state. Everything here
// is a pure function of the record plus the in-flight flag.
package present

import (
	domain "github.com/jholscan/jholscan/internal/domain/scans"
)

// Verdict labels, a pure function of risk level.
const (
	VerdictAI         = "AI GENERATED"
	VerdictSuspicious = "SUSPICIOUS"
	VerdictHuman      = "HUMAN WRITTEN"
	VerdictUnknown    = "UNKNOWN"
)

// Humanize panel states.
const (
	HumanizeInvite = "invite"
	HumanizeBusy   = "busy"
	HumanizeDone   = "done"
)

const (
	colorAI      = "#DC143C"
	colorHuman   = "#22c55e"
	colorWarn    = "#eab308"
	colorNeutral = "#9ca3af"
)

// Verdict maps a risk level to its verdict label.
func Verdict(level domain.RiskLevel) string {
	switch level {
	case domain.RiskHigh:
		return VerdictAI
	case domain.RiskMedium:
		return VerdictSuspicious
	case domain.RiskLow:
		return VerdictHuman
	default:
		return VerdictUnknown
	}
}

// Color maps a risk level to its display color, with a neutral fallback.
func Color(level domain.RiskLevel) string {
	switch level {
	case domain.RiskHigh:
		return colorAI
	case domain.RiskMedium:
		return colorWarn
	case domain.RiskLow:
		return colorHuman
	default:
		return colorNeutral
	}
}

// CountUp describes the cosmetic score animation. The settled value always
// equals the record's risk score exactly.
type CountUp struct {
	From       float64 `json:"from"`
	To         float64 `json:"to"`
	DurationMS int     `json:"duration_ms"`
	Steps      int     `json:"steps"`
}

// Slice is one segment of the probability donut. Values are the raw
// probabilities scaled by 100, never renormalized.
type Slice struct {
	Name  string  `json:"name"`
	Value float64 `json:"value"`
	Color string  `json:"color"`
}

// HumanizeView is the state of the humanize panel.
type HumanizeView struct {
	State            string   `json:"state"`
	HumanizedText    *string  `json:"humanized_text"`
	ChangesMade      []string `json:"changes_made"`
	ImprovementScore float64  `json:"improvement_score"`
	Notes            *string  `json:"notes"`
}

// ResultView is the rendered form of one ScanRecord.
type ResultView struct {
	ScanID           domain.ScanID    `json:"scan_id"`
	Mode             domain.ScanMode  `json:"mode"`
	Verdict          string           `json:"verdict"`
	VerdictColor     string           `json:"verdict_color"`
	RiskScore        float64          `json:"risk_score"`
	RiskLevel        domain.RiskLevel `json:"risk_level"`
	Confidence       string           `json:"confidence"`
	CountUp          CountUp          `json:"count_up"`
	Donut            []Slice          `json:"donut"`
	Summary          string           `json:"summary"`
	Signals          []string         `json:"signals"`
	DetailedAnalysis string           `json:"detailed_analysis"`
	ModelSuspected   *string          `json:"model_suspected"`
	SuspectedPrompt  *string          `json:"suspected_prompt,omitempty"`
	ImagePreviewURL  string           `json:"image_preview_url,omitempty"`
	Recommendations  []string         `json:"recommendations"`
	FileInfo         domain.FileInfo  `json:"file_info"`
	Humanizer        HumanizeView     `json:"humanizer"`
	UIHints          domain.UIHints   `json:"ui_hints"`
	Metadata         domain.Metadata  `json:"metadata"`
	Error            bool             `json:"error,omitempty"`
	Message          string           `json:"message,omitempty"`
}

// Build renders rec. humanizing marks an in-flight humanize request, which
// disables the action until it resolves.
func Build(rec *domain.ScanRecord, humanizing bool) ResultView {
	d := rec.Detection

	view := ResultView{
		ScanID:       rec.ScanID,
		Mode:         rec.Mode,
		Verdict:      Verdict(d.RiskLevel),
		VerdictColor: Color(d.RiskLevel),
		RiskScore:    d.RiskScore,
		RiskLevel:    d.RiskLevel,
		Confidence:   d.Confidence,
		CountUp: CountUp{
			From:       0,
			To:         d.RiskScore,
			DurationMS: 1500,
			Steps:      60,
		},
		Donut: []Slice{
			{Name: "AI", Value: d.AIProbability * 100, Color: colorAI},
			{Name: "Human", Value: d.HumanProbability * 100, Color: colorHuman},
		},
		Summary:          d.Summary,
		Signals:          d.Signals,
		DetailedAnalysis: d.DetailedAnalysis,
		ModelSuspected:   d.ModelSuspected,
		Recommendations:  rec.Recommendations,
		FileInfo:         rec.FileInfo,
		Humanizer:        humanizeView(rec.Humanizer, humanizing),
		UIHints:          rec.UIHints,
		Metadata:         rec.Metadata,
		Error:            rec.Error,
		Message:          rec.Message,
	}

	// The reverse-engineered prompt panel only exists for image results
	// that actually carry one.
	if rec.Mode == domain.ModeImage {
		view.SuspectedPrompt = d.SuspectedPrompt
		view.ImagePreviewURL = rec.ArtifactURL
	}
	return view
}

func humanizeView(h domain.Humanizer, humanizing bool) HumanizeView {
	state := HumanizeInvite
	if humanizing {
		state = HumanizeBusy
	} else if h.HumanizedText != nil {
		state = HumanizeDone
	}
	return HumanizeView{
		State:            state,
		HumanizedText:    h.HumanizedText,
		ChangesMade:      h.ChangesMade,
		ImprovementScore: h.ImprovementScore,
		Notes:            h.Notes,
	}
}
