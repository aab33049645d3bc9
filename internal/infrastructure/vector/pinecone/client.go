// Package pinecone provides a vector index backed by the Pinecone REST
// API. Without an API key and index host the client is constructed in a
// disabled state and callers are expected to degrade.
package pinecone

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/platewise/v1/internal/ports/outbound"
	"github.com/platewise/v1/pkg/errors"
	"go.uber.org/zap"
)

const defaultTimeout = 30 * time.Second

// Config holds Pinecone connection settings. Host is the index host
// returned by the Pinecone console, e.g. myindex-abc123.svc.pinecone.io.
type Config struct {
	APIKey  string
	Host    string
	Timeout time.Duration
}

// Client implements the VectorIndex port against Pinecone.
type Client struct {
	cfg     Config
	baseURL string
	enabled bool
	client  *http.Client
	logger  *zap.Logger
}

// NewClient creates a Pinecone client. Missing credentials produce a
// disabled client rather than an error so the rest of the system can
// run without a vector store.
func NewClient(cfg Config, logger *zap.Logger) *Client {
	log := logger.Named("pinecone")

	enabled := cfg.APIKey != "" && cfg.Host != ""
	if !enabled {
		log.Warn("Pinecone credentials not configured, vector index disabled")
	}

	if cfg.Timeout == 0 {
		cfg.Timeout = defaultTimeout
	}
	baseURL := cfg.Host
	if baseURL != "" && !strings.HasPrefix(baseURL, "http") {
		baseURL = "https://" + baseURL
	}

	return &Client{
		cfg:     cfg,
		baseURL: baseURL,
		enabled: enabled,
		client:  &http.Client{Timeout: cfg.Timeout},
		logger:  log,
	}
}

// Available reports whether the index can serve requests.
func (c *Client) Available() bool {
	return c.enabled
}

type upsertVector struct {
	ID       string         `json:"id"`
	Values   []float32      `json:"values"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

type upsertRequest struct {
	Vectors   []upsertVector `json:"vectors"`
	Namespace string         `json:"namespace"`
}

// Upsert writes records into the given namespace.
func (c *Client) Upsert(ctx context.Context, namespace string, records []outbound.VectorRecord) error {
	if !c.enabled {
		return errors.NewIndexUnavailableError("pinecone is not configured")
	}
	if len(records) == 0 {
		return nil
	}

	vectors := make([]upsertVector, len(records))
	for i, r := range records {
		vectors[i] = upsertVector{ID: r.ID, Values: r.Values, Metadata: r.Metadata}
	}

	_, err := c.post(ctx, "/vectors/upsert", upsertRequest{
		Vectors:   vectors,
		Namespace: namespace,
	})
	if err != nil {
		return err
	}

	c.logger.Debug("Upserted vectors",
		zap.String("namespace", namespace),
		zap.Int("count", len(records)),
	)
	return nil
}

type queryRequest struct {
	Namespace       string            `json:"namespace"`
	Vector          []float32         `json:"vector"`
	TopK            int               `json:"topK"`
	Filter          map[string]string `json:"filter,omitempty"`
	IncludeMetadata bool              `json:"includeMetadata"`
}

type queryResponse struct {
	Matches []struct {
		ID       string         `json:"id"`
		Score    float64        `json:"score"`
		Metadata map[string]any `json:"metadata"`
	} `json:"matches"`
}

// Query runs a similarity search in the given namespace. The filter is
// an exact-match metadata filter.
func (c *Client) Query(ctx context.Context, namespace string, vector []float32, topK int, filter map[string]string) ([]outbound.VectorMatch, error) {
	if !c.enabled {
		return nil, errors.NewIndexUnavailableError("pinecone is not configured")
	}

	body, err := c.post(ctx, "/query", queryRequest{
		Namespace:       namespace,
		Vector:          vector,
		TopK:            topK,
		Filter:          filter,
		IncludeMetadata: true,
	})
	if err != nil {
		return nil, err
	}

	var qr queryResponse
	if err := json.Unmarshal(body, &qr); err != nil {
		return nil, fmt.Errorf("failed to decode query response: %w", err)
	}

	matches := make([]outbound.VectorMatch, len(qr.Matches))
	for i, m := range qr.Matches {
		matches[i] = outbound.VectorMatch{
			ID:       m.ID,
			Score:    m.Score,
			Metadata: m.Metadata,
		}
	}
	return matches, nil
}

func (c *Client) post(ctx context.Context, path string, payload any) ([]byte, error) {
	jsonBody, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewBuffer(jsonBody))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Api-Key", c.cfg.APIKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("index request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		c.logger.Error("Index error response",
			zap.String("path", path),
			zap.Int("status", resp.StatusCode),
		)
		return nil, fmt.Errorf("index error %d: %s", resp.StatusCode, truncate(string(body), 500))
	}
	return body, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
