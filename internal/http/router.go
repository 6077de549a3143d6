package api

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"golang.org/x/time/rate"

	"songvote/internal/domain/admin"
	"songvote/internal/platform/apperr"
	"songvote/internal/session"
)

// Pinger reports whether the durable store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Handler struct {
	coord    *session.Coordinator
	loader   session.Loader
	adminSvc *admin.Service
	store    Pinger
}

type Deps struct {
	Coordinator *session.Coordinator
	Loader      session.Loader
	Admin       *admin.Service
	Store       Pinger

	// Stream serves the WebSocket channel, Events the SSE stream.
	Stream http.Handler
	Events http.Handler

	LoginRate  rate.Limit
	LoginBurst int
}

func NewRouter(d Deps) http.Handler {
	h := &Handler{
		coord:    d.Coordinator,
		loader:   d.Loader,
		adminSvc: d.Admin,
		store:    d.Store,
	}
	if d.LoginRate == 0 {
		d.LoginRate = rate.Every(time.Minute / 10)
	}
	if d.LoginBurst == 0 {
		d.LoginBurst = 3
	}

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(RequestLogger)
	r.Use(CORSMiddleware)

	// Long-lived streams stay outside the request timeout.
	if d.Stream != nil {
		r.Handle("/ws", d.Stream)
	}
	if d.Events != nil {
		r.Handle("/api/v1/events", d.Events)
	}

	r.Group(func(r chi.Router) {
		r.Use(chimw.Timeout(60 * time.Second))

		r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
		})
		r.Get("/ready", h.handleReady)
		r.Get("/swagger/*", httpSwagger.WrapHandler)
		r.Get("/metrics", promhttp.Handler().ServeHTTP)

		r.Route("/api/v1", func(r chi.Router) {
			r.Get("/votes/counts", h.handleCounts)
			r.Get("/session", h.handleSession)
			r.With(RateLimitLogin(d.LoginRate, d.LoginBurst)).Post("/admin/login", h.handleLogin)

			r.Group(func(r chi.Router) {
				r.Use(RequireAdmin(h.adminSvc))
				r.Post("/playback/now-playing", h.handleAdvance)
				r.Post("/session/reset", h.handleReset)
				r.Post("/session/reload", h.handleReload)
			})
		})

		// Paths the existing display pages still call.
		r.Get("/votes/counts.json", h.handleCounts)
		r.Get("/core/votes.json", h.handleRawVotes)
		r.Group(func(r chi.Router) {
			r.Use(RequireAdmin(h.adminSvc))
			r.Post("/votes/now_playing", h.handleAdvance)
			r.Get("/votes/reset", h.handleLegacyReset)
			r.Post("/votes/reset", h.handleLegacyReset)
		})
	})

	return r
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (h *Handler) handleReady(w http.ResponseWriter, r *http.Request) {
	if h.store == nil {
		errorResponse(w, apperr.ErrStoreUnavailable)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := h.store.Ping(ctx); err != nil {
		errorResponse(w, apperr.ErrStoreUnavailable.Wrap(err))
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}
