package analysis

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestAnalyzeText(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/process_text" {
			t.Errorf("path = %q, want /process_text", r.URL.Path)
		}
		var req map[string]string
		_ = json.NewDecoder(r.Body).Decode(&req)
		if req["message"] != "rate this answer" {
			t.Errorf("message = %q", req["message"])
		}
		_ = json.NewEncoder(w).Encode(map[string]string{"response": "solid reasoning"})
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	got, err := c.AnalyzeText(context.Background(), "rate this answer")
	if err != nil {
		t.Fatalf("AnalyzeText() error: %v", err)
	}
	if got != "solid reasoning" {
		t.Errorf("AnalyzeText() = %q", got)
	}
}

func TestTranscribe(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if ct := r.Header.Get("Content-Type"); !strings.HasPrefix(ct, "audio/") {
			t.Errorf("Content-Type = %q, want audio/*", ct)
		}
		_ = json.NewEncoder(w).Encode(map[string]string{"transcription": "hello world"})
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	got, err := c.Transcribe(context.Background(), strings.NewReader("RIFF...."), "audio/wav")
	if err != nil {
		t.Fatalf("Transcribe() error: %v", err)
	}
	if got != "hello world" {
		t.Errorf("Transcribe() = %q", got)
	}
}

func TestAnalyzeVideoError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_ = json.NewEncoder(w).Encode(map[string]string{"error": "Analysis not active. Call /start_analysis first."})
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	_, err := c.AnalyzeVideo(context.Background(), strings.NewReader("chunk"), "video/webm")
	if err == nil || !strings.Contains(err.Error(), "Analysis not active") {
		t.Fatalf("AnalyzeVideo() err = %v, want upstream error relayed", err)
	}
}
