// Package scrape talks to the headless-browser scraping microservice, with
// a one-shot plain-HTTP fallback when the service cannot deliver.
package scrape

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"go.uber.org/zap"

	"github.com/liliang-cn/askweb/internal/config"
)

// Actions understood by the scraping service.
const (
	ActionContent = "content"
	ActionText    = "text"
	ActionTitle   = "title"
)

const desktopUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

type scrapeRequest struct {
	URL     string `json:"url"`
	Action  string `json:"action"`
	Timeout int    `json:"timeout"` // milliseconds, browser-side
}

type scrapeResponse struct {
	Success bool   `json:"success"`
	Data    string `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
}

// Result is the outcome of a fetch attempt.
type Result struct {
	HTML        string
	ViaFallback bool
}

// Client calls the scraping microservice.
type Client struct {
	serviceURL string
	http       *http.Client
	fallback   *http.Client
	logger     *zap.Logger
}

// New creates a scrape client. The two HTTP clients carry the transport
// policy and the per-call timeouts for the service call and the fallback
// fetch respectively.
func New(cfg config.ScraperConfig, serviceClient, fallbackClient *http.Client, logger *zap.Logger) *Client {
	return &Client{
		serviceURL: cfg.URL,
		http:       serviceClient,
		fallback:   fallbackClient,
		logger:     logger,
	}
}

// Fetch retrieves the rendered content of a URL. It tries the browser
// service first; on any failure it falls back once to a direct GET with a
// desktop User-Agent. Absence of data is reported as an error and is
// non-fatal to callers.
func (c *Client) Fetch(ctx context.Context, targetURL, action string) (Result, error) {
	html, err := c.scrape(ctx, targetURL, action)
	if err == nil {
		return Result{HTML: html}, nil
	}
	c.logger.Warn("scrape service failed, trying direct fetch",
		zap.String("url", targetURL),
		zap.Error(err),
	)

	html, fbErr := c.directFetch(ctx, targetURL)
	if fbErr != nil {
		return Result{}, fmt.Errorf("scrape failed (%v); fallback failed: %w", err, fbErr)
	}
	return Result{HTML: html, ViaFallback: true}, nil
}

func (c *Client) scrape(ctx context.Context, targetURL, action string) (string, error) {
	payload, err := json.Marshal(scrapeRequest{
		URL:     targetURL,
		Action:  action,
		Timeout: 15000,
	})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.serviceURL+"/scrape", bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("scrape request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("scrape service returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 10<<20))
	if err != nil {
		return "", fmt.Errorf("read scrape response: %w", err)
	}

	var sr scrapeResponse
	if err := json.Unmarshal(body, &sr); err != nil {
		return "", fmt.Errorf("decode scrape response: %w", err)
	}
	if !sr.Success {
		return "", fmt.Errorf("scrape service error: %s", sr.Error)
	}

	return sr.Data, nil
}

func (c *Client) directFetch(ctx context.Context, targetURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, targetURL, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("User-Agent", desktopUserAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")

	resp, err := c.fallback.Do(req)
	if err != nil {
		return "", fmt.Errorf("direct fetch: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("direct fetch returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 10<<20))
	if err != nil {
		return "", fmt.Errorf("read direct fetch body: %w", err)
	}
	return string(body), nil
}

// Health probes the scraping service's /health endpoint.
func (c *Client) Health(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.serviceURL+"/health", nil)
	if err != nil {
		return err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("scrape service unreachable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("scrape service health returned status %d", resp.StatusCode)
	}
	return nil
}
