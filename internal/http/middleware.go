package api

import (
	"log/slog"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"golang.org/x/time/rate"

	"songvote/internal/domain/admin"
	"songvote/internal/metrics"
	"songvote/internal/platform/apperr"
)

var slogLogger = slog.Default()

func SetLogger(l *slog.Logger) {
	if l != nil {
		slogLogger = l
	}
}

// RequireAdmin guards operator routes with a bearer token. When admin login
// is not configured the routes stay open.
func RequireAdmin(svc *admin.Service) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !svc.Enabled() {
				next.ServeHTTP(w, r)
				return
			}

			token, ok := bearerToken(r)
			if !ok {
				errorResponse(w, apperr.ErrMissingToken)
				return
			}
			if err := svc.Authorize(token); err != nil {
				errorResponse(w, apperr.ErrInvalidToken.Wrap(err))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func bearerToken(r *http.Request) (string, bool) {
	scheme, token, found := strings.Cut(r.Header.Get("Authorization"), " ")
	if !found || !strings.EqualFold(scheme, "bearer") || token == "" {
		return "", false
	}
	return token, true
}

// CORSMiddleware lets the voting pages, served from anywhere, call the API.
func CORSMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Headers", "Authorization, Content-Type")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RateLimitLogin limits login attempts per client address. It runs after
// chi's RealIP, so RemoteAddr already holds the forwarded address.
func RateLimitLogin(limit rate.Limit, burst int) func(http.Handler) http.Handler {
	clients := newClientLimiter(limit, burst, 10*time.Minute)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !clients.allow(clientHost(r.RemoteAddr), time.Now()) {
				errorResponse(w, apperr.ErrRateLimited)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// probe paths are hit by orchestrators every few seconds
var quietPaths = map[string]bool{"/health": true, "/ready": true, "/metrics": true}

func RequestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rw := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(rw, r)

		status := rw.Status()
		if status == 0 {
			status = http.StatusOK
		}
		route := r.URL.Path
		if rc := chi.RouteContext(r.Context()); rc != nil && rc.RoutePattern() != "" {
			route = rc.RoutePattern()
		}
		metrics.IncRequest(r.Method, route, status)

		level := slog.LevelInfo
		if quietPaths[route] {
			level = slog.LevelDebug
		}
		slogLogger.Log(r.Context(), level, "request",
			"request_id", chimw.GetReqID(r.Context()),
			"method", r.Method,
			"path", route,
			"status", status,
			"bytes", rw.BytesWritten(),
			"duration_ms", time.Since(start).Milliseconds(),
		)
	})
}

type clientLimiter struct {
	mu        sync.Mutex
	clients   map[string]*clientEntry
	limit     rate.Limit
	burst     int
	idle      time.Duration
	lastSweep time.Time
}

type clientEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

func newClientLimiter(limit rate.Limit, burst int, idle time.Duration) *clientLimiter {
	return &clientLimiter{
		clients: make(map[string]*clientEntry),
		limit:   limit,
		burst:   burst,
		idle:    idle,
	}
}

func (l *clientLimiter) allow(client string, now time.Time) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	if now.Sub(l.lastSweep) > l.idle {
		for key, e := range l.clients {
			if now.Sub(e.lastSeen) > l.idle {
				delete(l.clients, key)
			}
		}
		l.lastSweep = now
	}

	e, ok := l.clients[client]
	if !ok {
		e = &clientEntry{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.clients[client] = e
	}
	e.lastSeen = now
	return e.limiter.AllowN(now, 1)
}

func clientHost(remoteAddr string) string {
	host, _, err := net.SplitHostPort(remoteAddr)
	if err != nil {
		return remoteAddr
	}
	return host
}
