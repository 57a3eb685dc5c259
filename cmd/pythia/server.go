package main

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/XavierBriggs/Pythia/pkg/models"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
)

// runReporter is what the ops endpoint reads from the scheduler
type runReporter interface {
	LastRun() models.RunStats
	Running() bool
}

// quotaReporter exposes the vendor quota seen on the latest call
type quotaReporter interface {
	RateLimits() models.RateLimits
}

type statusResponse struct {
	Running    bool              `json:"running"`
	LastRun    *models.RunStats  `json:"last_run,omitempty"`
	RateLimits models.RateLimits `json:"rate_limits"`
	Sports     []string          `json:"sports"`
}

type handler struct {
	runs   runReporter
	quota  quotaReporter
	sports []string
	logger zerolog.Logger
}

func newRouter(runs runReporter, quota quotaReporter, sports []models.SportConfig, logger zerolog.Logger) http.Handler {
	keys := make([]string, len(sports))
	for i, s := range sports {
		keys[i] = s.SportKey
	}
	h := &handler{runs: runs, quota: quota, sports: keys, logger: logger}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(10 * time.Second))

	r.Get("/health", h.health)
	r.Get("/status", h.status)

	return r
}

func (h *handler) health(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *handler) status(w http.ResponseWriter, r *http.Request) {
	resp := statusResponse{
		Running:    h.runs.Running(),
		RateLimits: h.quota.RateLimits(),
		Sports:     h.sports,
	}
	if last := h.runs.LastRun(); last.RunID != "" {
		resp.LastRun = &last
	}
	h.writeJSON(w, http.StatusOK, resp)
}

func (h *handler) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Warn().Err(err).Msg("encode response failed")
	}
}
