package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bryanwahyu/ai-detector/internal/domain/detection"
)

func TestAnalyze_Success(t *testing.T) {
	var got Request
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/analyze", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Write([]byte(`{"detection": {"risk_score": 42}}`))
	}))
	defer srv.Close()

	body, err := New(srv.URL+"/", nil).Analyze(context.Background(), Request{Mode: detection.ModeImage, Content: "aGk=", MimeType: "image/png"})
	require.NoError(t, err)
	assert.Equal(t, Request{Mode: detection.ModeImage, Content: "aGk=", MimeType: "image/png"}, got)
	assert.EqualValues(t, 42, body["detection"].(map[string]any)["risk_score"])
}

func TestAnalyze_StatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusRequestEntityTooLarge)
		w.Write([]byte(`{"error": "content is 30 bytes, limit is 10", "code": "PayloadTooLarge", "size": 30}`))
	}))
	defer srv.Close()

	_, err := New(srv.URL, nil).Analyze(context.Background(), Request{Mode: detection.ModeText, Content: "x"})
	var se *StatusError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, http.StatusRequestEntityTooLarge, se.StatusCode)
	assert.Equal(t, "PayloadTooLarge", se.Code)
	assert.EqualValues(t, 30, se.Body["size"])
	assert.Contains(t, se.Error(), "limit is 10")
}

func TestAnalyze_NonJSONReply(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html>proxy page</html>`))
	}))
	defer srv.Close()

	_, err := New(srv.URL, nil).Analyze(context.Background(), Request{Mode: detection.ModeText, Content: "x"})
	assert.Error(t, err)
}

func TestAnalyze_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := New(url, nil).Analyze(context.Background(), Request{Mode: detection.ModeText, Content: "x"})
	assert.Error(t, err)
}
