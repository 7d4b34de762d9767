package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bryanwahyu/ai-detector/internal/application/analyze"
	"github.com/bryanwahyu/ai-detector/internal/domain/ai"
	"github.com/bryanwahyu/ai-detector/internal/domain/detection"
)

type countingClient struct {
	reply string
	err   error
	calls int
}

func (c *countingClient) Generate(context.Context, string, []ai.Part) (string, error) {
	c.calls++
	return c.reply, c.err
}

func newServer(t *testing.T, client ai.Client, apiKey string, limits analyze.Limits) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(NewRouter(analyze.NewService(client, apiKey, limits, nil), nil, nil))
	t.Cleanup(srv.Close)
	return srv
}

func post(t *testing.T, srv *httptest.Server, body string) (int, map[string]any) {
	t.Helper()
	resp, err := http.Post(srv.URL+"/api/analyze", "application/json", strings.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()
	var out map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return resp.StatusCode, out
}

func TestAnalyze_Success(t *testing.T) {
	client := &countingClient{reply: `{"detection": {"risk_score": 77, "signals": ["even cadence"]}, "recommendations": ["add anecdotes"]}`}
	srv := newServer(t, client, "key", analyze.Limits{})

	status, body := post(t, srv, `{"mode": "text", "content": "The quick brown fox."}`)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, 1, client.calls)

	det := body["detection"].(map[string]any)
	assert.EqualValues(t, 77, det["risk_score"])
	assert.Equal(t, "HIGH", det["risk_level"])
	assert.Equal(t, []any{"even cadence"}, det["signals"])
	assert.Equal(t, []any{"add anecdotes"}, body["recommendations"])
}

func TestAnalyze_MethodNotAllowed(t *testing.T) {
	client := &countingClient{reply: "{}"}
	srv := newServer(t, client, "key", analyze.Limits{})

	resp, err := http.Get(srv.URL + "/api/analyze")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, CodeMethodNotAllowed, body["code"])
	assert.Equal(t, 0, client.calls)
}

func TestAnalyze_BadRequest(t *testing.T) {
	client := &countingClient{reply: "{}"}
	srv := newServer(t, client, "key", analyze.Limits{})

	for _, in := range []string{`{"mode": "text"}`, `{not json`, `{"mode": "text", "content": ""}`} {
		status, body := post(t, srv, in)
		assert.Equal(t, http.StatusBadRequest, status, in)
		assert.Equal(t, CodeBadRequest, body["code"])
	}
	assert.Equal(t, 0, client.calls)
}

func TestAnalyze_PayloadTooLarge(t *testing.T) {
	client := &countingClient{reply: "{}"}
	srv := newServer(t, client, "key", analyze.Limits{MaxContentBytes: 32})

	status, body := post(t, srv, `{"mode": "text", "content": "`+strings.Repeat("a", 64)+`"}`)
	assert.Equal(t, http.StatusRequestEntityTooLarge, status)
	assert.Equal(t, CodePayloadTooLarge, body["code"])
	assert.EqualValues(t, 64, body["size"])
	assert.EqualValues(t, 32, body["limit"])
	assert.Equal(t, 0, client.calls)
}

func TestAnalyze_MissingCredential(t *testing.T) {
	client := &countingClient{reply: "{}"}
	srv := newServer(t, client, "", analyze.Limits{})

	status, body := post(t, srv, `{"mode": "text", "content": "hello"}`)
	assert.Equal(t, http.StatusInternalServerError, status)
	assert.Equal(t, CodeConfigurationError, body["code"])
	assert.Contains(t, body, "detection")
	assert.Equal(t, 0, client.calls)
}

func TestAnalyze_ModelFailureKeepsShape(t *testing.T) {
	client := &countingClient{err: errors.New("connection reset")}
	srv := newServer(t, client, "key", analyze.Limits{})

	status, body := post(t, srv, `{"mode": "text", "content": "hello"}`)
	assert.Equal(t, http.StatusInternalServerError, status)
	assert.Equal(t, CodeServerError, body["code"])
	assert.Equal(t, 1, client.calls)

	det := body["detection"].(map[string]any)
	assert.EqualValues(t, 0, det["risk_score"])
	assert.Equal(t, string(detection.RiskLow), det["risk_level"])
	assert.Equal(t, []any{detection.ServerErrorSignal}, det["signals"])
}

func TestAnalyze_HumanizeFailureCarriesHumanizer(t *testing.T) {
	client := &countingClient{err: errors.New("boom")}
	srv := newServer(t, client, "key", analyze.Limits{})

	status, body := post(t, srv, `{"mode": "humanize", "content": "hello"}`)
	assert.Equal(t, http.StatusInternalServerError, status)
	assert.Contains(t, body, "humanizer")
	assert.NotContains(t, body, "detection")
}

func TestCORSPreflight(t *testing.T) {
	srv := newServer(t, &countingClient{}, "key", analyze.Limits{})

	req, err := http.NewRequest(http.MethodOptions, srv.URL+"/api/analyze", nil)
	require.NoError(t, err)
	req.Header.Set("Origin", "https://app.example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Less(t, resp.StatusCode, 300)
	assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))
}

func TestHealth(t *testing.T) {
	srv := newServer(t, &countingClient{}, "", analyze.Limits{})
	resp, err := http.Get(srv.URL + "/health")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}
