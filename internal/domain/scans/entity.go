package scans

import (
	"time"
)

// ID tipe untuk ScanRecord
type ScanID string

// ScanMode enum: input channel that produced the record
type ScanMode string

const (
	ModeText  ScanMode = "text"
	ModeFile  ScanMode = "file"
	ModeImage ScanMode = "image"
	ModeVideo ScanMode = "video"
)

// RiskLevel enum
type RiskLevel string

const (
	RiskLow    RiskLevel = "LOW"
	RiskMedium RiskLevel = "MEDIUM"
	RiskHigh   RiskLevel = "HIGH"
)

// FileInfo value object: descriptive only, never re-derived after creation
type FileInfo struct {
	Name      *string `json:"name"`
	Type      *string `json:"type"`
	SizeBytes *int64  `json:"size_bytes"`
	Pages     *int    `json:"pages"`
}

// Detection verdict block as returned by the model service
type Detection struct {
	IsAIGenerated    bool      `json:"is_ai_generated"`
	AIProbability    float64   `json:"ai_probability"`
	HumanProbability float64   `json:"human_probability"`
	RiskScore        float64   `json:"risk_score"`
	RiskLevel        RiskLevel `json:"risk_level"`
	Confidence       string    `json:"confidence"`
	Summary          string    `json:"summary"`
	Signals          []string  `json:"signals"`
	SuspectedPrompt  *string   `json:"suspected_prompt,omitempty"`
	ModelSuspected   *string   `json:"model_suspected"`
	DetailedAnalysis string    `json:"detailed_analysis"`
}

// Humanizer sub-record: the only mutable part of a ScanRecord
type Humanizer struct {
	Requested        bool     `json:"requested"`
	HumanizedText    *string  `json:"humanized_text"`
	ChangesMade      []string `json:"changes_made"`
	ImprovementScore float64  `json:"improvement_score"`
	Notes            *string  `json:"notes"`
}

// UIHints passthrough presentation hints
type UIHints struct {
	ShowLoadingAnimation bool   `json:"show_loading_animation"`
	SuggestedColor       string `json:"suggested_color"`
	SuggestedView        string `json:"suggested_view"`
	AlertLevel           string `json:"alert_level"`
}

// Metadata provenance block
type Metadata struct {
	ProcessingTimeMS int64    `json:"processing_time_ms"`
	APIsUsed         []string `json:"apis_used"`
	Version          string   `json:"version"`
}

// Aggregate Root: ScanRecord
type ScanRecord struct {
	ScanID          ScanID    `json:"scan_id"`
	Timestamp       time.Time `json:"timestamp"`
	Mode            ScanMode  `json:"mode"`
	FileInfo        FileInfo  `json:"file_info"`
	Detection       Detection `json:"detection"`
	Humanizer       Humanizer `json:"humanizer"`
	Recommendations []string  `json:"recommendations"`
	UIHints         UIHints   `json:"ui_hints"`
	Metadata        Metadata  `json:"metadata"`
	ArtifactURL     string    `json:"artifact_url,omitempty"`
	Error           bool      `json:"error,omitempty"`
	Message         string    `json:"message,omitempty"`
}

// ValidMode reports whether m is one of the four input channels.
func ValidMode(m ScanMode) bool {
	switch m {
	case ModeText, ModeFile, ModeImage, ModeVideo:
		return true
	}
	return false
}

// ValidRiskLevel reports whether l is one of the three tiers.
func ValidRiskLevel(l RiskLevel) bool {
	switch l {
	case RiskLow, RiskMedium, RiskHigh:
		return true
	}
	return false
}

// Category folds a mode into the three analytics buckets; video counts as file.
func (m ScanMode) Category() ScanMode {
	if m == ModeVideo {
		return ModeFile
	}
	return m
}
