// Package discovery polls the CEF remote-debugging target list until
// the Steam shared JS context shows up.
package discovery

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"
)

// ErrNoTarget is returned when no matching debug target appeared
// within the discovery timeout.
var ErrNoTarget = errors.New("no matching debug target found")

// Tab is one entry in the remote-debugging target list. Extra fields
// in the response are ignored.
type Tab struct {
	Title                string `json:"title"`
	WebSocketDebuggerURL string `json:"webSocketDebuggerUrl"`
}

// Client polls an HTTP discovery endpoint for a debug target with a
// specific title. Targets are re-fetched on every attempt and never
// cached beyond one successful discovery.
type Client struct {
	URL      string        // target list endpoint
	Title    string        // exact title to match
	Timeout  time.Duration // wall-clock ceiling per Discover call
	Interval time.Duration // sleep between attempts

	HTTPClient *http.Client
}

const (
	DefaultTimeout  = 60 * time.Second
	DefaultInterval = 50 * time.Millisecond
)

func NewClient(url, title string) *Client {
	return &Client{
		URL:        url,
		Title:      title,
		Timeout:    DefaultTimeout,
		Interval:   DefaultInterval,
		HTTPClient: &http.Client{},
	}
}

// Discover polls the target list until a tab with the expected title
// and a non-empty debugger URL appears, returning that URL. Transport
// errors and malformed bodies are tolerated and retried. Returns
// ErrNoTarget once the timeout elapses, or the context error if the
// context is cancelled first.
func (c *Client) Discover(ctx context.Context) (string, error) {
	slog.Info("Looking for debug target", "url", c.URL, "title", c.Title)

	deadline := time.Now().Add(c.Timeout)
	for {
		if time.Now().After(deadline) {
			slog.Warn("Timed out waiting for debug target", "timeout", c.Timeout)
			return "", ErrNoTarget
		}

		if url, ok := c.fetch(ctx); ok {
			slog.Debug("Found debug target", "endpoint", url)
			return url, nil
		}

		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(c.Interval):
		}
	}
}

// fetch performs one discovery attempt. Any failure yields ("", false):
// a refused connection means the target application is not up yet, and
// an unparseable body is treated as an empty target list.
func (c *Client) fetch(ctx context.Context) (string, bool) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.URL, nil)
	if err != nil {
		slog.Error(fmt.Sprintf("Invalid discovery URL %q: %v", c.URL, err))
		return "", false
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		slog.Debug("Discovery endpoint not reachable", "error", err)
		return "", false
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		slog.Debug("Failed to read discovery response", "error", err)
		return "", false
	}

	var tabs []Tab
	if err := json.Unmarshal(body, &tabs); err != nil {
		// Malformed body counts as zero targets for this attempt
		slog.Debug("Malformed discovery response", "error", err)
		return "", false
	}

	// First match in response order wins
	for _, tab := range tabs {
		if tab.Title == c.Title && tab.WebSocketDebuggerURL != "" {
			return tab.WebSocketDebuggerURL, true
		}
	}

	return "", false
}
