package health

import (
	"encoding/json"
	"net/http"
	"sync/atomic"
)

var ready atomic.Bool

func init() {
	ready.Store(true)
}

// SetReady toggles the process-wide readiness flag. main clears it when shutdown begins so
// load balancers drain the instance.
func SetReady(v bool) {
	ready.Store(v)
}

// Checker reports whether a dependency is ready to serve.
type Checker interface {
	Name() string
	Check() error
}

// Handler exposes HTTP handlers for health endpoints.
type Handler struct {
	Checkers []Checker
}

// Live reports liveness status.
func (h Handler) Live(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// Ready reports readiness based on the configured checkers.
func (h Handler) Ready(w http.ResponseWriter, _ *http.Request) {
	status := make(map[string]string, len(h.Checkers))
	code := http.StatusOK
	if !ready.Load() {
		status["process"] = "shutting down"
		code = http.StatusServiceUnavailable
	}
	for _, c := range h.Checkers {
		if c == nil {
			continue
		}
		if err := c.Check(); err != nil {
			status[c.Name()] = err.Error()
			code = http.StatusServiceUnavailable
			continue
		}
		status[c.Name()] = "ok"
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(status)
}
