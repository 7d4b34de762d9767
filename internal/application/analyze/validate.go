package analyze

import (
	"encoding/base64"
	"strings"
	"unicode/utf8"

	"github.com/bryanwahyu/ai-detector/internal/domain/detection"
)

// Input validation and sanitization utilities

// ValidateMimeType checks the MIME type against what the mode can carry.
func ValidateMimeType(mode detection.Mode, mimeType string) error {
	mt := strings.ToLower(strings.TrimSpace(mimeType))
	if mt == "" {
		return detection.BadRequest("mimeType is required for %s mode", mode)
	}
	if strings.ContainsAny(mt, " \n\r;") || !strings.Contains(mt, "/") {
		return detection.BadRequest("invalid mimeType: %q", mimeType)
	}
	if mode == detection.ModeImage && !strings.HasPrefix(mt, "image/") {
		return detection.BadRequest("image mode requires an image/* mimeType, got %s", mt)
	}
	return nil
}

// DecodeMedia decodes base64 content, tolerating a data URL prefix.
func DecodeMedia(content string) ([]byte, error) {
	s := strings.TrimSpace(content)
	if strings.HasPrefix(s, "data:") {
		if i := strings.Index(s, ";base64,"); i >= 0 {
			s = s[i+len(";base64,"):]
		}
	}
	data, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, detection.BadRequest("content is not valid base64: %v", err)
	}
	if len(data) == 0 {
		return nil, detection.BadRequest("content decodes to zero bytes")
	}
	return data, nil
}

// SanitizeString removes dangerous characters from strings
func SanitizeString(input string) string {
	// Remove null bytes
	input = strings.ReplaceAll(input, "\x00", "")

	// Remove control characters
	var result strings.Builder
	for _, r := range input {
		if r >= 32 || r == '\t' || r == '\n' {
			result.WriteRune(r)
		}
	}

	return strings.TrimSpace(result.String())
}

// Truncate caps s at max runes. max <= 0 disables the cap.
func Truncate(s string, max int) string {
	if max <= 0 || utf8.RuneCountInString(s) <= max {
		return s
	}
	runes := []rune(s)
	return string(runes[:max])
}

func checkSize(content string, limit int64) error {
	if size := int64(len(content)); limit > 0 && size > limit {
		return &detection.PayloadTooLargeError{Size: size, Limit: limit}
	}
	return nil
}
