package httpx

import (
	"net/http"
	"time"

	"github.com/rs/cors"

	"github.com/DiAndyW/TrueTalent/internal/app"
	"github.com/DiAndyW/TrueTalent/pkg/ratelimit"
)

type Middleware struct {
	cors   *cors.Cors
	rlimit *ratelimit.Limiter
}

// NewMiddleware builds the shared middleware stack from config
func NewMiddleware(cfg app.Config) *Middleware {
	return &Middleware{
		cors: cors.New(cors.Options{
			AllowedOrigins:   cfg.CORSAllow,
			AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
			AllowedHeaders:   []string{"*"},
			AllowCredentials: true,
		}),
		rlimit: ratelimit.New(60, time.Minute), // 60 req/min default
	}
}

// CORS applies the origin allowlist to a handler
func (m *Middleware) CORS(h http.Handler) http.Handler {
	return m.cors.Handler(h)
}

// Limit applies the per-IP rate limit. The websocket endpoint stays
// outside it: one session is one long-lived request.
func (m *Middleware) Limit(h http.Handler) http.Handler {
	return m.rlimit.Middleware(h)
}
