package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"runtime/debug"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/njchilds90/derivtutor"
	"github.com/njchilds90/derivtutor/history"
	"github.com/njchilds90/derivtutor/internal/metrics"
)

type server struct {
	tutor   *derivtutor.Tutor
	metrics *metrics.Metrics
	logger  *slog.Logger
	maxBody int64
}

// newHandler serves the tutor over JSON. gatherer backs /metrics.
func newHandler(t *derivtutor.Tutor, m *metrics.Metrics, gatherer prometheus.Gatherer, maxBody int64, logger *slog.Logger) http.Handler {
	s := &server{tutor: t, metrics: m, logger: logger, maxBody: maxBody}
	mux := http.NewServeMux()

	// POST /derive — step-by-step derivative
	mux.HandleFunc("/derive", s.route("/derive", http.MethodPost, s.derive))
	// POST /plot — sampled f and f' with a chart figure
	mux.HandleFunc("/plot", s.route("/plot", http.MethodPost, s.plot))
	// POST /chat — tutor chat reply
	mux.HandleFunc("/chat", s.route("/chat", http.MethodPost, s.chat))
	// POST /tool — handle a tool call
	mux.HandleFunc("/tool", s.route("/tool", http.MethodPost, s.tool))
	// GET /history — saved derivations, newest first
	mux.HandleFunc("/history", s.route("/history", http.MethodGet, s.history))

	// GET /schema — return tool schema for agent registration
	mux.HandleFunc("/schema", s.route("/schema", http.MethodGet, func(w http.ResponseWriter, r *http.Request) int {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, derivtutor.ToolSpec())
		return http.StatusOK
	}))

	// GET /health — liveness check
	mux.HandleFunc("/health", s.route("/health", http.MethodGet, func(w http.ResponseWriter, r *http.Request) int {
		return writeJSON(w, http.StatusOK, map[string]interface{}{
			"status": "ok",
			"time":   time.Now().UTC().Format(time.RFC3339),
		})
	}))

	mux.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	return mux
}

type handlerFunc func(w http.ResponseWriter, r *http.Request) int

// route wraps h with method checking, panic recovery, request logging and
// metrics.
func (s *server) route(name, method string, h handlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		code := http.StatusInternalServerError
		defer func() {
			if rec := recover(); rec != nil {
				s.logger.Error("panic in handler", "route", name, "panic", rec, "stack", string(debug.Stack()))
				code = writeError(w, http.StatusInternalServerError, errors.New("internal server error"))
			}
			elapsed := time.Since(start)
			s.metrics.ObserveRequest(name, strconv.Itoa(code), elapsed)
			s.logger.Info("request",
				"method", r.Method, "path", r.URL.Path, "status", code, "duration", elapsed)
		}()

		if r.Method != method {
			code = writeError(w, http.StatusMethodNotAllowed, errors.New("method not allowed"))
			return
		}
		code = h(w, r)
	}
}

// decode reads exactly one JSON object into v.
func (s *server) decode(w http.ResponseWriter, r *http.Request, v interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxBody)
	defer r.Body.Close()

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return err
	}
	// Ensure there's no trailing junk.
	if dec.More() {
		return errors.New("invalid JSON: trailing data")
	}
	return nil
}

func (s *server) derive(w http.ResponseWriter, r *http.Request) int {
	var req derivtutor.Request
	if err := s.decode(w, r, &req); err != nil {
		return writeError(w, http.StatusBadRequest, err)
	}
	out, err := s.tutor.Derive(r.Context(), req)
	s.metrics.Derivations.WithLabelValues(metrics.Outcome(err, err == nil && out.Degraded)).Inc()
	if err != nil {
		return writeError(w, http.StatusBadRequest, err)
	}
	return writeJSON(w, http.StatusOK, out)
}

func (s *server) plot(w http.ResponseWriter, r *http.Request) int {
	var req derivtutor.PlotRequest
	if err := s.decode(w, r, &req); err != nil {
		return writeError(w, http.StatusBadRequest, err)
	}
	out, err := s.tutor.Plot(r.Context(), req)
	if err != nil {
		return writeError(w, http.StatusBadRequest, err)
	}
	return writeJSON(w, http.StatusOK, out)
}

func (s *server) chat(w http.ResponseWriter, r *http.Request) int {
	var req struct {
		Question string `json:"question"`
	}
	if err := s.decode(w, r, &req); err != nil {
		return writeError(w, http.StatusBadRequest, err)
	}
	rep := s.tutor.Chat(r.Context(), req.Question)
	s.metrics.ChatReplies.WithLabelValues(rep.Rule).Inc()
	return writeJSON(w, http.StatusOK, rep)
}

func (s *server) tool(w http.ResponseWriter, r *http.Request) int {
	var req derivtutor.ToolRequest
	if err := s.decode(w, r, &req); err != nil {
		return writeError(w, http.StatusBadRequest, err)
	}
	return writeJSON(w, http.StatusOK, s.tutor.HandleToolCall(r.Context(), req))
}

func (s *server) history(w http.ResponseWriter, r *http.Request) int {
	recs := s.tutor.History(r.Context())
	if recs == nil {
		recs = []history.Record{}
	}
	return writeJSON(w, http.StatusOK, recs)
}

func writeJSON(w http.ResponseWriter, code int, v interface{}) int {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
	return code
}

func writeError(w http.ResponseWriter, code int, err error) int {
	return writeJSON(w, code, map[string]string{"error": err.Error()})
}
