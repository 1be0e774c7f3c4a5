// Package render talks to the remote HTML to PDF service and exposes the same contract
// to other callers.
package render

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/JaimeStill/courier-sign/internal/config"
)

// ServiceError is the {error, details?} body returned by the render service.
type ServiceError struct {
	Status  int    `json:"-"`
	Message string `json:"error"`
	Details any    `json:"details,omitempty"`
}

func (e *ServiceError) Error() string {
	return fmt.Sprintf("render service: %d: %s", e.Status, e.Message)
}

// Client posts HTML to the upstream render service.
type Client struct {
	url    string
	http   *http.Client
	logger *slog.Logger
}

// NewClient creates a Client for cfg. The render timeout bounds every call.
func NewClient(cfg *config.RenderConfig, client *http.Client, logger *slog.Logger) *Client {
	if client == nil {
		client = &http.Client{}
	}
	c := *client
	if timeout := cfg.TimeoutDuration(); timeout > 0 {
		c.Timeout = timeout
	}
	return &Client{
		url:    cfg.URL,
		http:   &c,
		logger: logger.With("system", "render"),
	}
}

type htmlRequest struct {
	HTML string `json:"html"`
}

// HTMLToPDF converts a complete HTML document into an A4 PDF.
func (c *Client) HTMLToPDF(ctx context.Context, html string) ([]byte, error) {
	body, err := json.Marshal(htmlRequest{HTML: html})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/pdf")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("render request: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read render response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		serr := &ServiceError{Status: resp.StatusCode}
		if json.Unmarshal(data, serr) != nil || serr.Message == "" {
			serr.Message = http.StatusText(resp.StatusCode)
		}
		return nil, serr
	}

	c.logger.Debug("html rendered", "bytes", len(data))
	return data, nil
}
