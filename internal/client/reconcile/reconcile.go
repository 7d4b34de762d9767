// Package reconcile re-normalizes gateway replies on the client and keeps the
// current result and the history in step.
package reconcile

import (
	"time"

	"github.com/bryanwahyu/ai-detector/internal/domain/detection"
)

// Reconcile builds the record for a detection-mode reply. It re-applies every
// default the gateway should already have applied, so a well-formed body
// passes through unchanged. ScanID is left for the history store to assign.
func Reconcile(body detection.Raw, mode detection.Mode, fi detection.FileInfo, now time.Time) detection.ScanRecord {
	report := detection.NormalizeReport(body)
	return detection.ScanRecord{
		Timestamp:       now.UTC(),
		Mode:            mode,
		FileInfo:        fi,
		Detection:       report.Detection,
		Recommendations: report.Recommendations,
		Humanizer:       detection.NormalizeHumanizer(body["humanizer"]),
	}
}

// HumanizerOf reads a humanize-mode reply. Requested is always set.
func HumanizerOf(body detection.Raw) detection.Humanizer {
	h := detection.HumanizerFrom(body)
	h.Requested = true
	return h
}
