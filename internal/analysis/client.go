// Package analysis wraps the AI analysis sidecar: free-text analysis,
// speech-to-text, and video-chunk analysis. All three are plain
// pass-throughs; the server adds nothing to the results.
package analysis

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

type Client struct {
	base string // e.g. http://localhost:9999
	hc   *http.Client
}

func NewClient(base string) *Client {
	return &Client{
		base: base,
		hc:   &http.Client{Timeout: 60 * time.Second},
	}
}

// AnalyzeText sends a message to the text analysis endpoint and returns
// the model's response.
func (c *Client) AnalyzeText(ctx context.Context, message string) (string, error) {
	body, _ := json.Marshal(map[string]string{"message": message})
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.base+"/process_text", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	var out struct {
		Response string `json:"response"`
	}
	if err := c.do(req, &out); err != nil {
		return "", err
	}
	return out.Response, nil
}

// Transcribe posts raw audio and returns the transcription
func (c *Client) Transcribe(ctx context.Context, audio io.Reader, contentType string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.base+"/transcribe", audio)
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", contentType)

	var out struct {
		Transcription string `json:"transcription"`
	}
	if err := c.do(req, &out); err != nil {
		return "", err
	}
	return out.Transcription, nil
}

// AnalyzeVideo posts one video chunk and returns the analysis text
func (c *Client) AnalyzeVideo(ctx context.Context, video io.Reader, contentType string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.base+"/analyze_chunk", video)
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", contentType)

	var out struct {
		Analysis string `json:"analysis"`
		Error    string `json:"error"`
	}
	if err := c.do(req, &out); err != nil {
		return "", err
	}
	if out.Error != "" {
		return "", errors.New(out.Error)
	}
	return out.Analysis, nil
}

func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.hc.Do(req)
	if err != nil {
		return errors.New("analysis service unreachable")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	// Error bodies are still JSON ({"error": ...}); relay the message
	// instead of masking it behind a status code.
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var e struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(body, &e) == nil && e.Error != "" {
			return errors.New(e.Error)
		}
		return fmt.Errorf("analysis service returned %d", resp.StatusCode)
	}

	if err := json.Unmarshal(body, out); err != nil {
		return errors.New("analysis service sent an unreadable response")
	}
	return nil
}
