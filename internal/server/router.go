package server

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/time/rate"

	"github.com/sevigo/btca/internal/server/handler"
)

// questionRateLimit bounds how often one process will start new agent
// runs — each run can spend real provider-API budget, so a shared
// limiter (not per-IP) is enough to stop accidental floods from a
// misbehaving client (§5).
const (
	questionRateLimit = 2 // requests per second
	questionBurst     = 5
)

// NewRouter wires the Request Pipeline's HTTP surface (§6.1) onto h:
// chi's standard middleware stack, a shared rate limiter in front of the
// question endpoints, and a request timeout applied to every route except
// the two that run the agent loop to completion, which legitimately runs
// for minutes (§5).
func NewRouter(h *handler.Handler, logger *slog.Logger) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(handler.WithRequestID)

	limiter := rate.NewLimiter(rate.Limit(questionRateLimit), questionBurst)

	r.Get("/", h.Health)

	r.Group(func(r chi.Router) {
		r.Use(middleware.Timeout(30 * time.Second))

		r.Get("/config", h.GetConfig)
		r.Put("/config/model", h.UpdateModel)
		r.Get("/resources", h.GetResources)
		r.Post("/config/resources", h.AddResource)
		r.Delete("/config/resources", h.RemoveResource)
	})

	// No Timeout middleware on either question route: both run the agent
	// loop to completion, which per §5 can legitimately take minutes —
	// /question just buffers the same run /question/stream flushes
	// incrementally, so it needs the same exemption, not just the stream.
	r.With(rateLimit(limiter)).Post("/question", h.Question)
	r.With(rateLimit(limiter)).Post("/question/stream", h.QuestionStream)

	return r
}

// rateLimit rejects requests once limiter's budget is exhausted, rather
// than queuing them, so a burst fails fast instead of piling up behind
// the limiter.
func rateLimit(limiter *rate.Limiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !limiter.Allow() {
				w.Header().Set("Retry-After", "1")
				http.Error(w, `{"error":"rate limit exceeded","tag":"RequestError"}`, http.StatusTooManyRequests)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
