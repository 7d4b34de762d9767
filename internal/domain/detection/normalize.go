package detection

import (
	"encoding/json"
	"math"
	"strings"
)

// Defaults applied when a field is missing or has the wrong type.
const (
	DefaultSummary          = "No summary available."
	DefaultDetailedAnalysis = "No detailed analysis available."
	DefaultSignal           = "No specific signals identified"
	DefaultRecommendation   = "Review the content manually before relying on this result."
	ServerErrorSignal       = "Server error"
	UnparsedSignal          = "Model response could not be parsed"
)

// NormalizeDetection coerces an untrusted detection object into a Detection.
// Each field keeps its value only when it has the right type; anything else
// falls back to its default. Applying it to its own output changes nothing.
func NormalizeDetection(raw any) Detection {
	m, _ := raw.(map[string]any)

	d := Detection{
		Summary:          DefaultSummary,
		DetailedAnalysis: DefaultDetailedAnalysis,
		Signals:          []string{DefaultSignal},
		Confidence:       ConfidenceLow,
	}

	if f, ok := number(lookup(m, "risk_score", "riskScore")); ok {
		d.RiskScore = clampScore(f)
	}
	d.RiskLevel = LevelForScore(d.RiskScore)
	if s, ok := lookup(m, "risk_level", "riskLevel").(string); ok {
		switch lvl := RiskLevel(strings.ToUpper(strings.TrimSpace(s))); lvl {
		case RiskLow, RiskMedium, RiskHigh:
			d.RiskLevel = lvl
		}
	}
	if s, ok := text(lookup(m, "summary")); ok {
		d.Summary = s
	}
	if s, ok := text(lookup(m, "detailed_analysis", "detailedAnalysis")); ok {
		d.DetailedAnalysis = s
	}
	if list, ok := stringList(lookup(m, "signals")); ok && len(list) > 0 {
		d.Signals = list
	}
	if b, ok := lookup(m, "is_ai_generated", "isAiGenerated").(bool); ok {
		d.IsAIGenerated = b
	}
	if f, ok := number(lookup(m, "ai_probability", "aiProbability")); ok {
		d.AIProbability = f
	}
	if f, ok := number(lookup(m, "human_probability", "humanProbability")); ok {
		d.HumanProbability = f
	}
	if s, ok := lookup(m, "confidence").(string); ok {
		switch c := Confidence(strings.ToLower(strings.TrimSpace(s))); c {
		case ConfidenceHigh, ConfidenceMedium, ConfidenceLow:
			d.Confidence = c
		}
	}
	if s, ok := text(lookup(m, "model_suspected", "modelSuspected")); ok {
		d.ModelSuspected = &s
	}
	return d
}

// NormalizeRecommendations keeps a sequence as-is (an empty one included) and
// replaces anything that is not a sequence with the default list.
func NormalizeRecommendations(raw any) []string {
	list, ok := stringList(raw)
	if !ok {
		return []string{DefaultRecommendation}
	}
	return list
}

// NormalizeHumanizer coerces an untrusted humanizer object.
func NormalizeHumanizer(raw any) Humanizer {
	m, _ := raw.(map[string]any)

	h := Humanizer{ChangesMade: []string{}}
	if b, ok := lookup(m, "requested").(bool); ok {
		h.Requested = b
	}
	if s, ok := lookup(m, "humanized_text", "humanizedText").(string); ok && strings.TrimSpace(s) != "" {
		h.HumanizedText = &s
	}
	if list, ok := stringList(lookup(m, "changes_made", "changesMade")); ok {
		h.ChangesMade = list
	}
	if f, ok := number(lookup(m, "improvement_score", "improvementScore")); ok {
		h.ImprovementScore = f
	}
	if s, ok := text(lookup(m, "notes")); ok {
		h.Notes = &s
	}
	return h
}

// HumanizerFrom reads the humanizer out of a response body, accepting both
// {"humanizer": {...}} and the flat form.
func HumanizerFrom(body Raw) Humanizer {
	if nested, ok := body["humanizer"].(map[string]any); ok {
		return NormalizeHumanizer(nested)
	}
	return NormalizeHumanizer(body)
}

// NormalizeReport normalizes a detection-mode body. A missing detection object
// is rebuilt from defaults; a flat reply with detection keys at the top level
// is read as the detection object itself.
func NormalizeReport(body Raw) Report {
	det, ok := body["detection"]
	if !ok && looksLikeDetection(body) {
		det = body
	}
	return Report{
		Detection:       NormalizeDetection(det),
		Recommendations: NormalizeRecommendations(body["recommendations"]),
	}
}

// ServerErrorDetection is returned when the model call itself fails.
func ServerErrorDetection() Detection {
	return Detection{
		RiskScore:        0,
		RiskLevel:        RiskLow,
		Summary:          "The analysis service encountered an error.",
		DetailedAnalysis: "The model could not be reached, so no analysis was performed.",
		Signals:          []string{ServerErrorSignal},
		Confidence:       ConfidenceLow,
	}
}

// UnparsedDetection stands in for a model reply that was not JSON.
func UnparsedDetection() Detection {
	return Detection{
		RiskScore:        0,
		RiskLevel:        RiskLow,
		Summary:          "The model returned an unreadable response.",
		DetailedAnalysis: "The analysis reply could not be parsed as JSON, so default values are shown.",
		Signals:          []string{UnparsedSignal},
		Confidence:       ConfidenceLow,
	}
}

func looksLikeDetection(m Raw) bool {
	for _, k := range []string{"risk_score", "riskScore", "risk_level", "riskLevel", "signals"} {
		if _, ok := m[k]; ok {
			return true
		}
	}
	return false
}

// lookup returns the first present key; a nil map yields nil.
func lookup(m map[string]any, keys ...string) any {
	for _, k := range keys {
		if v, ok := m[k]; ok {
			return v
		}
	}
	return nil
}

// number is a numeric type test, so a legitimate 0 survives.
func number(v any) (float64, bool) {
	var f float64
	switch n := v.(type) {
	case float64:
		f = n
	case float32:
		f = float64(n)
	case int:
		f = float64(n)
	case int64:
		f = float64(n)
	case json.Number:
		x, err := n.Float64()
		if err != nil {
			return 0, false
		}
		f = x
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

func clampScore(f float64) int {
	n := int(math.Round(f))
	if n < 0 {
		return 0
	}
	if n > 100 {
		return 100
	}
	return n
}

func text(v any) (string, bool) {
	s, ok := v.(string)
	if !ok {
		return "", false
	}
	s = strings.TrimSpace(s)
	return s, s != ""
}

// stringList accepts a sequence and keeps its non-blank string items.
// The returned slice is never nil when ok is true.
func stringList(v any) ([]string, bool) {
	var items []any
	switch l := v.(type) {
	case []any:
		items = l
	case []string:
		items = make([]any, len(l))
		for i, s := range l {
			items[i] = s
		}
	default:
		return nil, false
	}
	out := make([]string, 0, len(items))
	for _, it := range items {
		if s, ok := text(it); ok {
			out = append(out, s)
		}
	}
	return out, true
}
