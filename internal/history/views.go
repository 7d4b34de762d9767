package history

import (
	"fmt"
	"strings"

	"github.com/bryanwahyu/ai-detector/internal/domain/detection"
)

// DateLayout formats trend point dates.
const DateLayout = "Jan 2, 2006"

// TrendPoint is one bar of the risk-over-time chart.
type TrendPoint struct {
	Label string `json:"label"`
	Risk  int    `json:"risk"`
	Date  string `json:"date"`
	Type  string `json:"type"`
}

// TypeRisk is one stacked bar of the risk-by-type chart.
type TypeRisk struct {
	Type   string `json:"type"`
	High   int    `json:"high"`
	Medium int    `json:"medium"`
	Low    int    `json:"low"`
}

// Buckets lists the distribution rows in display order.
var Buckets = []detection.Mode{detection.ModeText, detection.ModeFile, detection.ModeImage}

// RiskOverTime numbers points over the reversed history, so the oldest scan
// is "Scan 1" even though records are stored newest first.
func RiskOverTime(records []detection.ScanRecord) []TrendPoint {
	out := make([]TrendPoint, 0, len(records))
	for i := len(records) - 1; i >= 0; i-- {
		out = append(out, trendPoint(len(out)+1, records[i]))
	}
	return out
}

// RiskByType counts records by risk level per bucket. Video folds into file;
// unknown modes are ignored.
func RiskByType(records []detection.ScanRecord) []TypeRisk {
	rows := emptyRows()
	for _, rec := range records {
		countInto(rows, rec)
	}
	return rows
}

func trendPoint(n int, rec detection.ScanRecord) TrendPoint {
	p := TrendPoint{
		Label: fmt.Sprintf("Scan %d", n),
		Risk:  rec.Detection.RiskScore,
		Type:  string(rec.Mode),
	}
	if !rec.Timestamp.IsZero() {
		p.Date = rec.Timestamp.Format(DateLayout)
	}
	return p
}

func emptyRows() []TypeRisk {
	rows := make([]TypeRisk, len(Buckets))
	for i, b := range Buckets {
		rows[i].Type = string(b)
	}
	return rows
}

func bucketIndex(mode detection.Mode) (int, bool) {
	m := detection.Mode(strings.ToLower(string(mode)))
	if m == detection.ModeVideo {
		m = detection.ModeFile
	}
	for i, b := range Buckets {
		if b == m {
			return i, true
		}
	}
	return 0, false
}

func countInto(rows []TypeRisk, rec detection.ScanRecord) {
	i, ok := bucketIndex(rec.Mode)
	if !ok {
		return
	}
	switch strings.ToUpper(string(rec.Detection.RiskLevel)) {
	case string(detection.RiskHigh):
		rows[i].High++
	case string(detection.RiskMedium):
		rows[i].Medium++
	default:
		rows[i].Low++
	}
}

// Aggregates maintains both views incrementally as records are added.
// Add must be called oldest first; Reset empties it.
type Aggregates struct {
	trend []TrendPoint
	rows  []TypeRisk
}

func NewAggregates() *Aggregates {
	return &Aggregates{rows: emptyRows()}
}

// Add folds in a record that is newer than every record seen so far.
func (a *Aggregates) Add(rec detection.ScanRecord) {
	a.trend = append(a.trend, trendPoint(len(a.trend)+1, rec))
	countInto(a.rows, rec)
}

func (a *Aggregates) Reset() {
	a.trend = nil
	a.rows = emptyRows()
}

// Rebuild resets and folds records given newest first.
func (a *Aggregates) Rebuild(records []detection.ScanRecord) {
	a.Reset()
	for i := len(records) - 1; i >= 0; i-- {
		a.Add(records[i])
	}
}

func (a *Aggregates) Trend() []TrendPoint {
	return append(make([]TrendPoint, 0, len(a.trend)), a.trend...)
}

func (a *Aggregates) Distribution() []TypeRisk {
	return append([]TypeRisk(nil), a.rows...)
}
