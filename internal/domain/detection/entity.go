package detection

import (
	"strings"
	"time"
)

// Mode enum
type Mode string

const (
	ModeText     Mode = "text"
	ModeFile     Mode = "file"
	ModeImage    Mode = "image"
	ModeHumanize Mode = "humanize"
	// ModeVideo is a legacy alias of ModeFile kept for stored records.
	ModeVideo Mode = "video"
)

// ParseMode returns the request mode for s, or false if s is not one the gateway accepts.
func ParseMode(s string) (Mode, bool) {
	switch m := Mode(strings.ToLower(strings.TrimSpace(s))); m {
	case ModeText, ModeFile, ModeImage, ModeHumanize:
		return m, true
	}
	return "", false
}

// IsMedia reports whether content for this mode is base64 encoded bytes.
func (m Mode) IsMedia() bool { return m == ModeFile || m == ModeImage }

// RiskLevel enum
type RiskLevel string

const (
	RiskLow    RiskLevel = "LOW"
	RiskMedium RiskLevel = "MEDIUM"
	RiskHigh   RiskLevel = "HIGH"
)

// LevelForScore maps a 0-100 score onto the three risk buckets.
func LevelForScore(score int) RiskLevel {
	switch {
	case score > 70:
		return RiskHigh
	case score > 30:
		return RiskMedium
	default:
		return RiskLow
	}
}

// Confidence enum
type Confidence string

const (
	ConfidenceHigh   Confidence = "high"
	ConfidenceMedium Confidence = "medium"
	ConfidenceLow    Confidence = "low"
)

// Raw is a decoded but untrusted JSON object, straight from the model or the wire.
type Raw = map[string]any

// Detection is the normalized verdict.
type Detection struct {
	RiskScore        int        `json:"risk_score"`
	RiskLevel        RiskLevel  `json:"risk_level"`
	Summary          string     `json:"summary"`
	DetailedAnalysis string     `json:"detailed_analysis"`
	Signals          []string   `json:"signals"`
	IsAIGenerated    bool       `json:"is_ai_generated"`
	AIProbability    float64    `json:"ai_probability"`
	HumanProbability float64    `json:"human_probability"`
	Confidence       Confidence `json:"confidence"`
	ModelSuspected   *string    `json:"model_suspected"`
}

// Humanizer is the result of the optional rewrite operation.
type Humanizer struct {
	Requested        bool     `json:"requested"`
	HumanizedText    *string  `json:"humanized_text"`
	ChangesMade      []string `json:"changes_made"`
	ImprovementScore float64  `json:"improvement_score"`
	Notes            *string  `json:"notes"`
}

// Report is the normalized body of a detection-mode gateway response.
type Report struct {
	Detection       Detection `json:"detection"`
	Recommendations []string  `json:"recommendations"`
}

// FileInfo is known locally at upload time and never taken from the model.
type FileInfo struct {
	Name      *string `json:"name"`
	Type      string  `json:"type"`
	SizeBytes *int64  `json:"size_bytes"`
	Pages     *int    `json:"pages"`
}

// ScanRecord is one completed analysis as kept in history.
type ScanRecord struct {
	ScanID          string    `json:"scan_id"`
	Timestamp       time.Time `json:"timestamp"`
	Mode            Mode      `json:"mode"`
	FileInfo        FileInfo  `json:"file_info"`
	Detection       Detection `json:"detection"`
	Recommendations []string  `json:"recommendations"`
	Humanizer       Humanizer `json:"humanizer"`
}
