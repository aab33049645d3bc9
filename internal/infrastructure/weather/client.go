// Package weather provides a weatherapi.com client used for
// temperature-aware meal suggestions.
package weather

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"
)

const (
	defaultBaseURL = "https://api.weatherapi.com/v1"
	defaultTimeout = 10 * time.Second
)

// Config holds weather API settings.
type Config struct {
	APIKey  string
	BaseURL string
	Timeout time.Duration
}

// Client implements the WeatherService port against weatherapi.com.
type Client struct {
	cfg    Config
	client *http.Client
	logger *zap.Logger
}

// NewClient creates a weather client from config.
func NewClient(cfg Config, logger *zap.Logger) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = defaultTimeout
	}
	return &Client{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
		logger: logger.Named("weather"),
	}
}

type currentResponse struct {
	Current struct {
		TempC float64 `json:"temp_c"`
	} `json:"current"`
}

// CurrentTempC returns the current temperature in Celsius for a
// free-form location string.
func (c *Client) CurrentTempC(ctx context.Context, location string) (float64, error) {
	if c.cfg.APIKey == "" {
		return 0, fmt.Errorf("weather API key not configured")
	}

	endpoint := fmt.Sprintf("%s/current.json?key=%s&q=%s",
		c.cfg.BaseURL, url.QueryEscape(c.cfg.APIKey), url.QueryEscape(location))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("weather request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("weather API error %d", resp.StatusCode)
	}

	var cur currentResponse
	if err := json.Unmarshal(body, &cur); err != nil {
		return 0, fmt.Errorf("failed to decode weather response: %w", err)
	}

	c.logger.Debug("Fetched current temperature",
		zap.String("location", location),
		zap.Float64("temp_c", cur.Current.TempC),
	)
	return cur.Current.TempC, nil
}

// Suggestion maps a temperature to a meal-style hint.
func Suggestion(tempC float64) string {
	switch {
	case tempC < 10:
		return "Cold weather: favor warm, hearty meals like soups and stews."
	case tempC > 30:
		return "Hot weather: favor light and cold meals like salads and smoothies."
	default:
		return "Mild weather: a balanced mix of meals works well."
	}
}
