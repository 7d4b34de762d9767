package reconcile

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bryanwahyu/ai-detector/internal/domain/detection"
)

var stamp = time.Date(2024, time.May, 4, 12, 0, 0, 0, time.UTC)

func textInfo(n int64) detection.FileInfo {
	return detection.FileInfo{Type: "text/plain", SizeBytes: &n}
}

func raw(t *testing.T, v any) detection.Raw {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	var m detection.Raw
	require.NoError(t, json.Unmarshal(b, &m))
	return m
}

func TestReconcile_MissingDetection(t *testing.T) {
	rec := Reconcile(detection.Raw{}, detection.ModeText, textInfo(3), stamp)

	assert.Equal(t, detection.ModeText, rec.Mode)
	assert.Equal(t, stamp, rec.Timestamp)
	assert.Equal(t, 0, rec.Detection.RiskScore)
	assert.Equal(t, detection.RiskLow, rec.Detection.RiskLevel)
	assert.Equal(t, []string{detection.DefaultSignal}, rec.Detection.Signals)
	assert.Equal(t, []string{detection.DefaultRecommendation}, rec.Recommendations)
	assert.False(t, rec.Humanizer.Requested)
	assert.NotNil(t, rec.Humanizer.ChangesMade)
	assert.Equal(t, int64(3), *rec.FileInfo.SizeBytes)
}

func TestReconcile_Idempotent(t *testing.T) {
	body := detection.Raw{
		"detection": map[string]any{
			"risk_score": 55.4, "risk_level": "medium", "signals": []any{" uniform ", 7, ""},
			"confidence": "HIGH", "ai_probability": 0.7,
		},
		"recommendations": []any{},
	}
	first := Reconcile(body, detection.ModeFile, detection.FileInfo{Type: "application/pdf"}, stamp)
	assert.Equal(t, 55, first.Detection.RiskScore)
	assert.Equal(t, detection.RiskMedium, first.Detection.RiskLevel)
	assert.Equal(t, []string{"uniform"}, first.Detection.Signals)
	assert.Equal(t, []string{}, first.Recommendations)

	again := Reconcile(raw(t, first), detection.ModeFile, first.FileInfo, stamp)
	if diff := cmp.Diff(first, again); diff != "" {
		t.Fatalf("second pass changed the record (-first +second):\n%s", diff)
	}
}

func TestReconcile_ModeAndInfoAreLocal(t *testing.T) {
	body := detection.Raw{
		"mode":      "image",
		"file_info": map[string]any{"name": "evil.exe"},
		"detection": map[string]any{"signals": []any{"x"}},
	}
	rec := Reconcile(body, detection.ModeText, textInfo(10), stamp.In(time.FixedZone("WIB", 7*3600)))
	assert.Equal(t, detection.ModeText, rec.Mode)
	assert.Nil(t, rec.FileInfo.Name)
	assert.Equal(t, time.UTC, rec.Timestamp.Location())
}

func TestHumanizerOf(t *testing.T) {
	h := HumanizerOf(detection.Raw{"humanized_text": "new", "changesMade": []any{"a"}})
	assert.True(t, h.Requested)
	assert.Equal(t, "new", *h.HumanizedText)
	assert.Equal(t, []string{"a"}, h.ChangesMade)

	h = HumanizerOf(detection.Raw{"humanizer": map[string]any{"humanized_text": "nested"}})
	assert.Equal(t, "nested", *h.HumanizedText)
}
