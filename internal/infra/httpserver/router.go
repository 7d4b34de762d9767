package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/bryanwahyu/ai-detector/internal/application/analyze"
	"github.com/bryanwahyu/ai-detector/internal/domain/detection"
	"github.com/bryanwahyu/ai-detector/internal/middleware"
)

// envelopeSlack is read beyond the content ceiling so the JSON envelope
// itself never trips the body limit before content can be measured.
const envelopeSlack = 1 << 20

// Error codes carried in error bodies.
const (
	CodeMethodNotAllowed   = "MethodNotAllowed"
	CodeBadRequest         = "BadRequest"
	CodePayloadTooLarge    = "PayloadTooLarge"
	CodeConfigurationError = "ConfigurationError"
	CodeServerError        = "ServerError"
)

type Router struct {
	svc *analyze.Service
	log *zap.Logger
}

func NewRouter(svc *analyze.Service, log *zap.Logger, allowedOrigins []string) http.Handler {
	if log == nil {
		log = zap.NewNop()
	}
	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{"*"}
	}
	r := &Router{svc: svc, log: log}
	mux := chi.NewRouter()

	mux.Use(cors.Handler(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type"},
		MaxAge:         300,
	}))
	mux.Use(middleware.MetricsMiddleware)
	mux.Use(middleware.Logging(log))

	mux.MethodNotAllowed(func(w http.ResponseWriter, req *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, CodeMethodNotAllowed, detection.ErrMethodNotAllowed.Error(), nil)
	})

	mux.Get("/health", middleware.HealthHandler(map[string]middleware.HealthChecker{
		"model": middleware.CredentialChecker{Configured: svc.Configured},
	}))
	mux.Get("/ready", middleware.ReadinessHandler)
	mux.Get("/live", middleware.LivenessHandler)
	mux.Get("/metrics", middleware.MetricsHandler)

	mux.Post("/api/analyze", r.wrap(r.handleAnalyze))

	return mux
}

type handlerFunc func(http.ResponseWriter, *http.Request) error

func (r *Router) wrap(h handlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		err := h(w, req)
		if err == nil {
			return
		}
		var tooLarge *detection.PayloadTooLargeError
		switch {
		case errors.As(err, &tooLarge):
			middleware.IncrementOversize()
			writeError(w, http.StatusRequestEntityTooLarge, CodePayloadTooLarge, err.Error(), map[string]any{
				"size":  tooLarge.Size,
				"limit": tooLarge.Limit,
			})
		case errors.Is(err, detection.ErrMethodNotAllowed):
			writeError(w, http.StatusMethodNotAllowed, CodeMethodNotAllowed, err.Error(), nil)
		case errors.Is(err, detection.ErrBadRequest):
			writeError(w, http.StatusBadRequest, CodeBadRequest, err.Error(), nil)
		case errors.Is(err, detection.ErrConfiguration):
			writeError(w, http.StatusInternalServerError, CodeConfigurationError, err.Error(), nil)
		default:
			r.log.Error("unhandled error", zap.String("path", req.URL.Path), zap.Error(err))
			writeError(w, http.StatusInternalServerError, CodeServerError, "internal server error", nil)
		}
	}
}

// POST /api/analyze
// Body: {"mode": "text|file|image|humanize", "content": "...", "mimeType": "..."}
func (r *Router) handleAnalyze(w http.ResponseWriter, req *http.Request) error {
	limit := r.svc.Limits().MaxContentBytes
	req.Body = http.MaxBytesReader(w, req.Body, limit+envelopeSlack)

	var body analyze.Request
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		var mbe *http.MaxBytesError
		if errors.As(err, &mbe) {
			size := req.ContentLength
			if size <= 0 {
				size = mbe.Limit
			}
			return &detection.PayloadTooLargeError{Size: size, Limit: limit}
		}
		return detection.BadRequest("invalid JSON body: %v", err)
	}

	resp, err := r.svc.Analyze(req.Context(), body)
	if err != nil && analyze.IsRequestError(err) {
		return err
	}
	if err == nil || errors.Is(err, detection.ErrUpstreamCall) {
		middleware.IncrementAnalyses(string(resp.Mode))
	}
	if resp.Fallback {
		middleware.IncrementParseFallbacks()
	}

	if err != nil {
		// upstream and configuration failures still carry the default shape
		code := CodeServerError
		if errors.Is(err, detection.ErrConfiguration) {
			code = CodeConfigurationError
		} else {
			middleware.IncrementModelFailures()
		}
		out := resp.Body()
		out["error"] = err.Error()
		out["code"] = code
		writeJSON(w, http.StatusInternalServerError, out)
		return nil
	}

	writeJSON(w, http.StatusOK, resp.Body())
	return nil
}

func writeError(w http.ResponseWriter, status int, code, msg string, extra map[string]any) {
	out := map[string]any{"error": msg, "code": code}
	for k, v := range extra {
		out[k] = v
	}
	writeJSON(w, status, out)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
