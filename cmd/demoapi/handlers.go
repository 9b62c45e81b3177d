package main

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"go.uber.org/zap"
	"pgregory.net/rand"
)

// server implements the demo endpoints the traffic generator fires at. The
// error-prone and slow handlers take their failure behavior from query
// parameters so the caller decides how bad things get.
type server struct {
	log *zap.Logger
}

func newServer(log *zap.Logger) *server {
	return &server{log: log}
}

func (s *server) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok"})
}

func (s *server) fast(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"message": "this is a fast endpoint"})
}

func (s *server) random(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"value": rand.Intn(100) + 1})
}

// fakeMetrics returns made-up resource numbers; real metrics live on /metrics.
func (s *server) fakeMetrics(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"cpu_usage":    rand.Float64() * 100,
		"memory_usage": rand.Float64() * 100,
		"active_users": rand.Intn(1000) + 1,
	})
}

func (s *server) echo(w http.ResponseWriter, r *http.Request) {
	var payload map[string]any
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"detail": "invalid JSON body"})
		return
	}
	writeJSON(w, http.StatusOK, payload)
}

// slow injects a uniform delay between delay_min and delay_max seconds, then
// fails with error_probability.
func (s *server) slow(w http.ResponseWriter, r *http.Request) {
	min := floatParam(r, "delay_min", 0.5)
	max := floatParam(r, "delay_max", 3.0)
	if max < min {
		max = min
	}
	delay := min + rand.Float64()*(max-min)
	if !sleepFor(r.Context(), secondsToDuration(delay)) {
		return // client gave up; nothing useful left to write
	}

	if rand.Float64() < floatParam(r, "error_probability", 0) {
		writeJSON(w, http.StatusInternalServerError, map[string]any{
			"detail":   "simulated failure under load",
			"delay_ms": delay * 1000,
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"message":  "slow response",
		"delay_ms": delay * 1000,
	})
}

// errorProne sleeps for the requested time, then fails with the requested
// probability, labelled with the caller's error_type.
func (s *server) errorProne(w http.ResponseWriter, r *http.Request) {
	probability := floatParam(r, "error_probability", 0.2)
	errorType := r.URL.Query().Get("error_type")
	if errorType == "" {
		errorType = "random_error"
	}
	if sleep := floatParam(r, "sleep", 0); sleep > 0 {
		if !sleepFor(r.Context(), secondsToDuration(sleep)) {
			return
		}
	}

	if rand.Float64() < probability {
		s.log.Error("induced failure",
			zap.String("error_type", errorType),
			zap.Float64("error_probability", probability),
			zap.String("request_id", w.Header().Get(headerRequestID)),
		)
		writeJSON(w, http.StatusInternalServerError, map[string]any{
			"detail":     "induced server error",
			"error_type": errorType,
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status":            "ok",
		"error_probability": probability,
	})
}

func (s *server) notFound(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusNotFound, map[string]any{"detail": "not found"})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

func floatParam(r *http.Request, name string, def float64) float64 {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return def
	}
	return v
}

func secondsToDuration(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}

// sleepFor waits out d unless the request is cancelled first.
func sleepFor(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return true
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
