package history

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/bryanwahyu/ai-detector/internal/domain/detection"
)

func TestRiskOverTime_OldestIsScanOne(t *testing.T) {
	scan1 := record("scan1", detection.ModeText, 10, "LOW", day(1))
	scan2 := record("scan2", detection.ModeFile, 50, "MEDIUM", day(2))
	scan3 := record("scan3", detection.ModeImage, 90, "HIGH", day(3))

	points := RiskOverTime([]detection.ScanRecord{scan3, scan2, scan1})
	assert.Equal(t, []TrendPoint{
		{Label: "Scan 1", Risk: 10, Date: "Mar 1, 2024", Type: "text"},
		{Label: "Scan 2", Risk: 50, Date: "Mar 2, 2024", Type: "file"},
		{Label: "Scan 3", Risk: 90, Date: "Mar 3, 2024", Type: "image"},
	}, points)
}

func TestRiskOverTime_ZeroTimestamp(t *testing.T) {
	points := RiskOverTime([]detection.ScanRecord{record("x", detection.ModeText, 0, "LOW", time.Time{})})
	assert.Equal(t, "", points[0].Date)
	assert.Empty(t, RiskOverTime(nil))
}

func TestRiskByType(t *testing.T) {
	records := []detection.ScanRecord{
		record("v", detection.ModeVideo, 90, "HIGH", day(1)),
		record("f", detection.ModeFile, 40, "medium", day(2)),
		record("t", detection.ModeText, 5, "LOW", day(3)),
		record("i", detection.ModeImage, 75, "HIGH", day(4)),
		record("a", "audio", 99, "HIGH", day(5)),
	}
	records[2].Detection.RiskLevel = "unknown"

	assert.Equal(t, []TypeRisk{
		{Type: "text", Low: 1},
		{Type: "file", High: 1, Medium: 1},
		{Type: "image", High: 1},
	}, RiskByType(records))
}

func TestViewsDoNotMutate(t *testing.T) {
	records := []detection.ScanRecord{
		record("b", detection.ModeVideo, 80, "HIGH", day(2)),
		record("a", detection.ModeText, 10, "LOW", day(1)),
	}
	RiskOverTime(records)
	RiskByType(records)
	assert.Equal(t, "b", records[0].ScanID)
	assert.Equal(t, detection.ModeVideo, records[0].Mode)
}

func TestPaginate(t *testing.T) {
	var records []detection.ScanRecord
	for i := 0; i < 5; i++ {
		records = append(records, record(string(rune('a'+i)), detection.ModeText, i, "LOW", day(1+i)))
	}

	p := Paginate(records, 2, 2)
	assert.Equal(t, 5, p.Total)
	assert.Equal(t, 3, p.TotalPages)
	assert.Len(t, p.Data, 2)
	assert.Equal(t, "c", p.Data[0].ScanID)

	last := Paginate(records, 3, 2)
	assert.Len(t, last.Data, 1)

	past := Paginate(records, 9, 2)
	assert.Empty(t, past.Data)
	assert.NotNil(t, past.Data)

	def := Paginate(records, 0, 0)
	assert.Equal(t, 1, def.Page)
	assert.Equal(t, DefaultPageSize, def.PageSize)
	assert.Len(t, def.Data, 5)

	assert.Equal(t, 0, Paginate(nil, 1, 10).TotalPages)
}
