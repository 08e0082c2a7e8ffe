package http

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/time/rate"

	jwtpkg "github.com/tengise174/poll-bot-button/internal/platform/jwt"
	"github.com/tengise174/poll-bot-button/internal/metrics"
)

type RouterConfig struct {
	JWT       *jwtpkg.Manager
	Metrics   *metrics.Metrics
	Gatherer  prometheus.Gatherer
	Logger    *slog.Logger
	VoteLimit rate.Limit
	VoteBurst int
}

func NewHandler(pollHandler *PollHandler, voteHandler *VoteHandler, resultsHandler *ResultsHandler, cfg RouterConfig) http.Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(RequestLogger(logger, cfg.Metrics))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	if cfg.Gatherer != nil {
		r.Get("/metrics", promhttp.HandlerFor(cfg.Gatherer, promhttp.HandlerOpts{}).ServeHTTP)
	}

	if resultsHandler != nil {
		r.Get("/ws/polls/{id}", resultsHandler.StreamResults)
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Timeout(30 * time.Second))
		r.Use(AuthMiddleware(cfg.JWT))

		r.Route("/polls", func(r chi.Router) {
			r.Post("/", pollHandler.CreatePoll)
			r.Get("/{id}", pollHandler.GetPoll)
			r.Delete("/{id}", pollHandler.DeletePoll)
			r.With(RateLimitVotes(cfg.VoteLimit, cfg.VoteBurst)).Post("/{id}/votes", voteHandler.VoteOnPoll)
		})
	})

	return r
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
