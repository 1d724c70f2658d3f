package httpx

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/DiAndyW/TrueTalent/internal/store"
)

const problemPageSize = 200

// problemCatalog is what the handler needs from Postgres
type problemCatalog interface {
	ListProblems(ctx context.Context, limit, offset int) ([]store.Problem, error)
}

// catalogCache is what the handler needs from Redis
type catalogCache interface {
	Get(ctx context.Context, key string, dest any) bool
	Set(ctx context.Context, key string, value any)
}

type ProblemsAPI struct {
	DB    problemCatalog
	Cache catalogCache
	Log   *slog.Logger
}

// List handles GET /api/problems with a cache-aside read: Redis first,
// Postgres on a miss, and the fresh result written back.
func (a *ProblemsAPI) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var problems []store.Problem
	if a.Cache == nil || !a.Cache.Get(ctx, "problems", &problems) {
		var err error
		problems, err = a.DB.ListProblems(ctx, problemPageSize, 0)
		if err != nil {
			a.Log.Error("problems.list", "err", err)
			http.Error(w, "catalog unavailable", http.StatusInternalServerError)
			return
		}
		if a.Cache != nil {
			a.Cache.Set(ctx, "problems", problems)
		}
	}

	if problems == nil {
		problems = []store.Problem{}
	}
	writeJSON(w, problems)
}

// send JSON with proper headers
func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}
