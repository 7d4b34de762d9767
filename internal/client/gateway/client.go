// Package gateway is the HTTP client for POST /api/analyze.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/bryanwahyu/ai-detector/internal/domain/detection"
)

const analyzePath = "/api/analyze"

// Request mirrors the gateway body.
type Request struct {
	Mode     detection.Mode `json:"mode"`
	Content  string         `json:"content"`
	MimeType string         `json:"mimeType,omitempty"`
}

// StatusError is a non-2xx reply. Body holds whatever JSON came back.
type StatusError struct {
	StatusCode int
	Code       string
	Message    string
	Body       detection.Raw
}

func (e *StatusError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("gateway returned %d %s: %s", e.StatusCode, e.Code, e.Message)
	}
	return fmt.Sprintf("gateway returned %d", e.StatusCode)
}

type Client struct {
	baseURL string
	http    *http.Client
}

// New returns a client for the gateway at baseURL. A nil hc gets a client
// with a timeout long enough for a model round trip.
func New(baseURL string, hc *http.Client) *Client {
	if hc == nil {
		hc = &http.Client{Timeout: 2 * time.Minute}
	}
	return &Client{baseURL: strings.TrimRight(baseURL, "/"), http: hc}
}

// Analyze sends one request and returns the decoded body. It never retries.
func (c *Client) Analyze(ctx context.Context, req Request) (detection.Raw, error) {
	payload, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+analyzePath, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("call gateway: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read gateway reply: %w", err)
	}

	var body detection.Raw
	decodeErr := json.Unmarshal(data, &body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		se := &StatusError{StatusCode: resp.StatusCode, Body: body}
		if s, ok := body["code"].(string); ok {
			se.Code = s
		}
		if s, ok := body["error"].(string); ok {
			se.Message = s
		}
		return nil, se
	}
	if decodeErr != nil {
		return nil, fmt.Errorf("decode gateway reply: %w", decodeErr)
	}
	if body == nil {
		body = detection.Raw{}
	}
	return body, nil
}
