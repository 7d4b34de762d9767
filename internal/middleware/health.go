package middleware

import (
	"context"
	"errors"
	"net/http"
	"sort"
	"time"
)

// HealthChecker defines interface for health checking
type HealthChecker interface {
	Check(ctx context.Context) error
}

// CredentialChecker fails while no model credential is configured. It never
// calls the model, so /health costs nothing upstream.
type CredentialChecker struct {
	Configured func() bool
}

func (c CredentialChecker) Check(context.Context) error {
	if c.Configured == nil || !c.Configured() {
		return errors.New("model credential is not configured")
	}
	return nil
}

const (
	statusHealthy   = "healthy"
	statusUnhealthy = "unhealthy"
)

// HealthStatus is the /health body.
type HealthStatus struct {
	Status    string                 `json:"status"`
	Timestamp time.Time              `json:"timestamp"`
	Checks    map[string]CheckStatus `json:"checks"`
}

type CheckStatus struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

// HealthHandler runs every checker in name order and answers 503 if any fails.
func HealthHandler(checkers map[string]HealthChecker) http.HandlerFunc {
	names := make([]string, 0, len(checkers))
	for n := range checkers {
		names = append(names, n)
	}
	sort.Strings(names)

	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		out := HealthStatus{Status: statusHealthy, Timestamp: time.Now().UTC(), Checks: map[string]CheckStatus{}}
		for _, n := range names {
			cs := CheckStatus{Status: statusHealthy}
			if err := checkers[n].Check(ctx); err != nil {
				cs = CheckStatus{Status: statusUnhealthy, Message: err.Error()}
				out.Status = statusUnhealthy
			}
			out.Checks[n] = cs
		}

		code := http.StatusOK
		if out.Status != statusHealthy {
			code = http.StatusServiceUnavailable
		}
		writeJSON(w, code, out)
	}
}

// ReadinessHandler answers once the router is serving.
func ReadinessHandler(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"status": "ready", "timestamp": time.Now().UTC()})
}

// LivenessHandler always answers "ok".
func LivenessHandler(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}
