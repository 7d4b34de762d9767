package middleware

import (
	"encoding/json"
	"net/http"
	"runtime"
	"sync/atomic"
	"time"
)

// counters is the process-wide gateway metrics set.
type counters struct {
	requests   atomic.Uint64
	inFlight   atomic.Int64
	succeeded  atomic.Uint64
	failed     atomic.Uint64
	modelFails atomic.Uint64
	fallbacks  atomic.Uint64
	oversize   atomic.Uint64
	byMode     map[string]*atomic.Uint64
	started    time.Time
}

var metrics = newCounters()

func newCounters() *counters {
	c := &counters{started: time.Now(), byMode: map[string]*atomic.Uint64{}}
	for _, m := range []string{"text", "file", "image", "humanize"} {
		c.byMode[m] = new(atomic.Uint64)
	}
	return c
}

// IncrementAnalyses counts one accepted analysis. Unknown modes are not counted.
func IncrementAnalyses(mode string) {
	if c, ok := metrics.byMode[mode]; ok {
		c.Add(1)
	}
}

func IncrementModelFailures()  { metrics.modelFails.Add(1) }
func IncrementParseFallbacks() { metrics.fallbacks.Add(1) }
func IncrementOversize()       { metrics.oversize.Add(1) }

// Snapshot is the JSON body of GET /metrics.
type Snapshot struct {
	RequestsTotal    uint64            `json:"requests_total"`
	InFlight         int64             `json:"requests_in_progress"`
	RequestsSuccess  uint64            `json:"requests_success"`
	RequestsFailed   uint64            `json:"requests_failed"`
	Analyses         map[string]uint64 `json:"analyses"`
	ModelFailures    uint64            `json:"model_failures"`
	ParseFallbacks   uint64            `json:"parse_fallbacks"`
	OversizeRejected uint64            `json:"oversize_rejected"`
	UptimeSeconds    float64           `json:"uptime_seconds"`
	Goroutines       int               `json:"goroutines"`
	HeapAllocBytes   uint64            `json:"heap_alloc_bytes"`
}

// GetMetrics returns current metrics
func GetMetrics() Snapshot {
	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)

	s := Snapshot{
		RequestsTotal:    metrics.requests.Load(),
		InFlight:         metrics.inFlight.Load(),
		RequestsSuccess:  metrics.succeeded.Load(),
		RequestsFailed:   metrics.failed.Load(),
		Analyses:         make(map[string]uint64, len(metrics.byMode)),
		ModelFailures:    metrics.modelFails.Load(),
		ParseFallbacks:   metrics.fallbacks.Load(),
		OversizeRejected: metrics.oversize.Load(),
		UptimeSeconds:    time.Since(metrics.started).Seconds(),
		Goroutines:       runtime.NumGoroutine(),
		HeapAllocBytes:   mem.HeapAlloc,
	}
	for m, c := range metrics.byMode {
		s.Analyses[m] = c.Load()
	}
	return s
}

// MetricsMiddleware tracks request metrics
func MetricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		metrics.requests.Add(1)
		metrics.inFlight.Add(1)
		defer metrics.inFlight.Add(-1)

		wrapped := wrapWriter(w)
		next.ServeHTTP(wrapped, r)

		if wrapped.statusCode < 400 {
			metrics.succeeded.Add(1)
		} else {
			metrics.failed.Add(1)
		}
	})
}

// MetricsHandler serves GetMetrics as JSON.
func MetricsHandler(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, GetMetrics())
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
