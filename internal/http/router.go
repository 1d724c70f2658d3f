package httpx

import (
	"log/slog"
	"net/http"

	"github.com/DiAndyW/TrueTalent/internal/analysis"
	"github.com/DiAndyW/TrueTalent/internal/app"
	"github.com/DiAndyW/TrueTalent/internal/store"
	"github.com/DiAndyW/TrueTalent/internal/ws"
	"github.com/DiAndyW/TrueTalent/pkg/metrics"
)

// NewRouter wires up all HTTP routes, middleware, and handlers
func NewRouter(cfg app.Config, logger *slog.Logger, hub *ws.Hub, db *store.Postgres, cache *store.Cache, ai *analysis.Client) http.Handler {
	mw := NewMiddleware(cfg)
	problemsAPI := &ProblemsAPI{DB: db, Cache: cache, Log: logger}
	analysisAPI := &AnalysisAPI{AI: ai, Log: logger}

	mux := http.NewServeMux()

	// Health / readiness / metrics
	mux.Handle("/healthz", http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(200) }))
	mux.Handle("/readyz", http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(200) }))
	mux.Handle("/metrics", metrics.Handler())

	// WebSocket endpoint (not rate limited: one session, one request)
	mux.Handle("/ws", http.HandlerFunc(hub.ServeWS))

	// REST API, rate limited per IP
	api := http.NewServeMux()
	api.Handle("GET /api/problems", http.HandlerFunc(problemsAPI.List))
	api.Handle("POST /api/analyze", http.HandlerFunc(analysisAPI.Analyze))
	api.Handle("POST /api/transcribe", http.HandlerFunc(analysisAPI.Transcribe))
	api.Handle("POST /api/video-analysis", http.HandlerFunc(analysisAPI.AnalyzeVideo))
	mux.Handle("/api/", mw.Limit(api))

	return mw.CORS(mux)
}
