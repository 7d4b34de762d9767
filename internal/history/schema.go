package history

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/bryanwahyu/ai-detector/internal/domain/detection"
)

// SchemaVersion is the shape written by Save.
const SchemaVersion = 3

// DefaultKey names the persisted history entry.
const DefaultKey = "ai_detector_history"

// LegacyKeys held older shapes and are removed on load.
var LegacyKeys = []string{"history_v1", "history_v2", "ai_detector_history_v2"}

var errUnknownSchema = errors.New("unknown history schema version")

type envelope struct {
	SchemaVersion int                    `json:"schema_version"`
	Records       []detection.ScanRecord `json:"records"`
}

type rawEnvelope struct {
	SchemaVersion int               `json:"schema_version"`
	Records       []json.RawMessage `json:"records"`
}

// Encode serializes the full history.
func Encode(records []detection.ScanRecord) ([]byte, error) {
	if records == nil {
		records = []detection.ScanRecord{}
	}
	return json.Marshal(envelope{SchemaVersion: SchemaVersion, Records: records})
}

// Decode parses a stored blob. A bare JSON array is the unversioned schema 2.
// It returns the surviving records and how many entries were dropped; an
// error means the blob as a whole is unusable.
func Decode(blob []byte) ([]detection.ScanRecord, int, error) {
	blob = bytes.TrimSpace(blob)
	if len(blob) == 0 {
		return nil, 0, errors.New("empty history blob")
	}

	var (
		version int
		entries []json.RawMessage
	)
	if blob[0] == '[' {
		version = 2
		if err := json.Unmarshal(blob, &entries); err != nil {
			return nil, 0, err
		}
	} else {
		var env rawEnvelope
		if err := json.Unmarshal(blob, &env); err != nil {
			return nil, 0, err
		}
		version, entries = env.SchemaVersion, env.Records
	}

	migrate, ok := migrations[version]
	if !ok {
		return nil, 0, fmt.Errorf("%w: %d", errUnknownSchema, version)
	}

	out := make([]detection.ScanRecord, 0, len(entries))
	dropped := 0
	for _, e := range entries {
		var m map[string]any
		if err := json.Unmarshal(e, &m); err != nil || m == nil {
			dropped++
			continue
		}
		m = migrate(m)
		if !validEntry(m) {
			dropped++
			continue
		}
		out = append(out, decodeRecord(m))
	}
	return out, dropped, nil
}

// migrations lift an entry of the given version to the current shape.
var migrations = map[int]func(map[string]any) map[string]any{
	2:             migrateV2,
	SchemaVersion: func(m map[string]any) map[string]any { return m },
}

// migrateV2 renames the camelCase top-level keys schema 2 used.
func migrateV2(m map[string]any) map[string]any {
	rename := map[string]string{"scanId": "scan_id", "fileInfo": "file_info"}
	for from, to := range rename {
		if v, ok := m[from]; ok {
			if _, exists := m[to]; !exists {
				m[to] = v
			}
			delete(m, from)
		}
	}
	if fi, ok := m["file_info"].(map[string]any); ok {
		if v, ok := fi["size"]; ok {
			if _, exists := fi["size_bytes"]; !exists {
				fi["size_bytes"] = v
			}
			delete(fi, "size")
		}
	}
	return m
}

// validEntry requires a detection object whose signals is a sequence.
func validEntry(m map[string]any) bool {
	det, ok := m["detection"].(map[string]any)
	if !ok {
		return false
	}
	_, ok = det["signals"].([]any)
	return ok
}

// decodeRecord repairs a valid entry; malformed side fields degrade to zero values.
func decodeRecord(m map[string]any) detection.ScanRecord {
	rec := detection.ScanRecord{
		Detection:       detection.NormalizeDetection(m["detection"]),
		Recommendations: detection.NormalizeRecommendations(m["recommendations"]),
		Humanizer:       detection.NormalizeHumanizer(m["humanizer"]),
	}
	if s, ok := m["scan_id"].(string); ok {
		rec.ScanID = s
	}
	if s, ok := m["mode"].(string); ok {
		rec.Mode = detection.Mode(s)
	}
	if s, ok := m["timestamp"].(string); ok {
		if ts, err := time.Parse(time.RFC3339Nano, s); err == nil {
			rec.Timestamp = ts
		}
	}
	if fi, ok := m["file_info"].(map[string]any); ok {
		rec.FileInfo = decodeFileInfo(fi)
	}
	return rec
}

func decodeFileInfo(m map[string]any) detection.FileInfo {
	var fi detection.FileInfo
	if s, ok := m["name"].(string); ok {
		fi.Name = &s
	}
	if s, ok := m["type"].(string); ok {
		fi.Type = s
	}
	if f, ok := m["size_bytes"].(float64); ok && f >= 0 {
		n := int64(f)
		fi.SizeBytes = &n
	}
	if f, ok := m["pages"].(float64); ok && f >= 0 {
		n := int(f)
		fi.Pages = &n
	}
	return fi
}
