// Package proxy implements the PayloadFetcher port against the fetch relay.
package proxy

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"landkit/internal/core/domain"
)

// Client fetches GeoJSON payloads through the relay's POST endpoint
type Client struct {
	relayURL   string
	httpClient *http.Client
}

// NewClient creates a new relay client. timeout bounds the whole
// request/response cycle; zero means no client-side limit.
func NewClient(relayURL string, timeout time.Duration) *Client {
	return &Client{
		relayURL:   relayURL,
		httpClient: &http.Client{Timeout: timeout},
	}
}

type fetchRequest struct {
	SignedURL string `json:"signedURL"`
}

type fetchEnvelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
}

// FetchPayload posts the signed URL to the relay and decodes the returned
// feature collection. Relay error bodies become the error message verbatim;
// anything less structured falls back to a status-based description.
func (c *Client) FetchPayload(ctx context.Context, signedURL string) (*domain.FeatureCollection, error) {
	body, err := json.Marshal(fetchRequest{SignedURL: signedURL})
	if err != nil {
		return nil, fmt.Errorf("failed to encode relay request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.relayURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build relay request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("relay unreachable: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read relay response: %w", err)
	}

	var envelope fetchEnvelope
	if jsonErr := json.Unmarshal(respBody, &envelope); jsonErr == nil && envelope.Error != "" {
		return nil, fmt.Errorf("%s", envelope.Error)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("relay returned %s", resp.Status)
	}
	if !envelope.Success || len(envelope.Data) == 0 {
		return nil, fmt.Errorf("malformed relay response")
	}

	var fc domain.FeatureCollection
	if err := json.Unmarshal(envelope.Data, &fc); err != nil {
		return nil, fmt.Errorf("failed to decode GeoJSON payload: %w", err)
	}
	return &fc, nil
}
