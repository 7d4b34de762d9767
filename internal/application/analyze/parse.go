package analyze

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/bryanwahyu/ai-detector/internal/domain/detection"
)

const fence = "```"

// StripFences removes a leading ``` (optionally tagged json) and a trailing ```.
func StripFences(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, fence) {
		s = s[len(fence):]
		if nl := strings.IndexByte(s, '\n'); nl >= 0 {
			tag := strings.TrimSpace(s[:nl])
			if tag == "" || strings.EqualFold(tag, "json") {
				s = s[nl+1:]
			}
		} else if len(s) >= 4 && strings.EqualFold(s[:4], "json") {
			s = s[4:]
		}
	}
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, fence)
	return strings.TrimSpace(s)
}

// ParseReply decodes the model text into a JSON object.
func ParseReply(raw string) (detection.Raw, error) {
	var v any
	if err := json.Unmarshal([]byte(StripFences(raw)), &v); err != nil {
		return nil, fmt.Errorf("%w: %v", detection.ErrUpstreamParse, err)
	}
	m, ok := v.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%w: reply is %T, not an object", detection.ErrUpstreamParse, v)
	}
	return m, nil
}
