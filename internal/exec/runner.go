// Package exec talks to the external code-execution service. The
// server never runs participant code itself; it relays the buffer and
// the outcome.
package exec

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"
)

type Client struct {
	url string
	hc  *http.Client
	log *slog.Logger
}

func NewClient(url string, log *slog.Logger) *Client {
	return &Client{
		url: url,
		hc:  &http.Client{Timeout: 30 * time.Second},
		log: log,
	}
}

type runRequest struct {
	Language string `json:"language"`
	Code     string `json:"code"`
}

type runResponse struct {
	Output string `json:"output"`
	Error  string `json:"error,omitempty"`
}

// Run posts the code to the runner and returns its stdout. A non-2xx
// response or an error field in the body is an execution failure, never
// a crash.
func (c *Client) Run(ctx context.Context, language, code string) (string, error) {
	body, err := json.Marshal(runRequest{Language: language, Code: code})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.hc.Do(req)
	if err != nil {
		c.log.Warn("exec.request", "err", err)
		return "", errors.New("execution service unreachable")
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("execution service returned %d", resp.StatusCode)
	}

	var out runResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", errors.New("execution service sent an unreadable response")
	}
	if out.Error != "" {
		return "", errors.New(out.Error)
	}
	return out.Output, nil
}
