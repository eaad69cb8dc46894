// Package monitor proxies the VPS monitor API for the admin dashboard:
// realtime samples, history series with a TTL cache, and a simulated
// fallback when the monitor has no data.
package monitor

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/orivyx/orivyx-backend/internal/models"
	"github.com/orivyx/orivyx-backend/internal/pkg/metrics"
)

const historyCacheKey = "history"

// Client fetches time series from the external monitor API. The monitor
// authenticates with a static Basic authorization value.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	log        *slog.Logger

	// historyCache holds the last good history series for the TTL the
	// dashboard refreshes at. nil when caching is disabled.
	historyCache *expirable.LRU[string, models.HistoryResult]
}

// NewClient builds a monitor client. historyTTL <= 0 disables the cache.
func NewClient(baseURL, apiKey string, timeout, historyTTL time.Duration, log *slog.Logger) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	if log == nil {
		log = slog.Default()
	}
	c := &Client{
		baseURL:    baseURL,
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: timeout},
		log:        log,
	}
	if historyTTL > 0 {
		c.historyCache = expirable.NewLRU[string, models.HistoryResult](1, nil, historyTTL)
	}
	return c
}

// Realtime fetches one instant snapshot.
func (c *Client) Realtime(ctx context.Context) (*models.RealtimeSample, error) {
	var sample models.RealtimeSample
	if err := c.get(ctx, "/realtime", &sample); err != nil {
		metrics.MonitorFetchTotal.WithLabelValues("realtime", "error").Inc()
		return nil, err
	}
	metrics.MonitorFetchTotal.WithLabelValues("realtime", "success").Inc()
	return &sample, nil
}

// History returns the monitor's history series. When the monitor fails or
// returns no data the result degrades to a simulated series, flagged as
// such, so the dashboard always has something to draw. Good responses are
// cached for the configured TTL.
func (c *Client) History(ctx context.Context) models.HistoryResult {
	if c.historyCache != nil {
		if cached, ok := c.historyCache.Get(historyCacheKey); ok {
			return cached
		}
	}

	var points []models.HistoryPoint
	err := c.get(ctx, "/history", &points)
	if err != nil || len(points) == 0 {
		if err != nil {
			metrics.MonitorFetchTotal.WithLabelValues("history", "error").Inc()
			c.log.Warn("monitor history fetch failed, serving simulated series", "error", err)
		} else {
			metrics.MonitorFetchTotal.WithLabelValues("history", "empty").Inc()
		}
		return models.HistoryResult{Points: SimulatedHistory(time.Now()), Simulated: true}
	}

	metrics.MonitorFetchTotal.WithLabelValues("history", "success").Inc()
	result := models.HistoryResult{Points: points}
	if c.historyCache != nil {
		c.historyCache.Add(historyCacheKey, result)
	}
	return result
}

func (c *Client) get(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("build monitor request: %w", err)
	}
	req.Header.Set("Authorization", "Basic "+c.apiKey)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("monitor request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		const maxErrBody = 2048
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrBody))
		return fmt.Errorf("monitor returned status %d: %s", resp.StatusCode, string(body))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode monitor response: %w", err)
	}
	return nil
}
