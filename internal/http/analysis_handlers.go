package httpx

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
)

// analyzer is what the handlers need from the analysis sidecar client
type analyzer interface {
	AnalyzeText(ctx context.Context, message string) (string, error)
	Transcribe(ctx context.Context, audio io.Reader, contentType string) (string, error)
	AnalyzeVideo(ctx context.Context, video io.Reader, contentType string) (string, error)
}

type AnalysisAPI struct {
	AI  analyzer
	Log *slog.Logger
}

type analyzeReq struct {
	Message string `json:"message"`
}

// Analyze handles POST /api/analyze: free-text in, model response out
func (a *AnalysisAPI) Analyze(w http.ResponseWriter, r *http.Request) {
	var req analyzeReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Message == "" {
		http.Error(w, "invalid payload", http.StatusBadRequest)
		return
	}

	resp, err := a.AI.AnalyzeText(r.Context(), req.Message)
	if err != nil {
		a.Log.Warn("analysis.text", "err", err)
		http.Error(w, err.Error(), http.StatusBadGateway)
		return
	}
	writeJSON(w, map[string]string{"response": resp})
}

// Transcribe handles POST /api/transcribe: raw audio body in,
// transcription out
func (a *AnalysisAPI) Transcribe(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	text, err := a.AI.Transcribe(r.Context(), r.Body, r.Header.Get("Content-Type"))
	if err != nil {
		a.Log.Warn("analysis.audio", "err", err)
		http.Error(w, err.Error(), http.StatusBadGateway)
		return
	}
	writeJSON(w, map[string]string{"transcription": text})
}

// AnalyzeVideo handles POST /api/video-analysis: one video chunk in,
// analysis text out. Upstream errors are relayed, not masked.
func (a *AnalysisAPI) AnalyzeVideo(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	analysis, err := a.AI.AnalyzeVideo(r.Context(), r.Body, r.Header.Get("Content-Type"))
	if err != nil {
		a.Log.Warn("analysis.video", "err", err)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadGateway)
		_ = json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, map[string]string{"analysis": analysis})
}
