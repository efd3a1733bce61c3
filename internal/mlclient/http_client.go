// README: HTTP client for an external scoring model that implements recommendation.Predictor.
package mlclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"wastagram/internal/modules/recommendation"
)

// PredictRequest is the body POSTed to the model service.
type PredictRequest struct {
	Features map[string]float64 `json:"features"`
	Order    []string           `json:"feature_order"`
}

// PredictResponse is the model service reply.
type PredictResponse struct {
	Score float64 `json:"recommendation_score"`
	Model string  `json:"model,omitempty"`
}

type HTTPClient struct {
	url    string
	client *http.Client
}

// NewHTTPClient targets the full predict URL, e.g. http://model:9000/predict.
// Timeouts come from the caller's context.
func NewHTTPClient(url string, client *http.Client) *HTTPClient {
	if client == nil {
		client = &http.Client{}
	}
	return &HTTPClient{url: strings.TrimRight(url, "/"), client: client}
}

func (c *HTTPClient) Predict(ctx context.Context, f recommendation.FeatureVector) (float64, error) {
	body, err := json.Marshal(PredictRequest{Features: f.Map(), Order: f.Names()})
	if err != nil {
		return 0, fmt.Errorf("error marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return 0, fmt.Errorf("error building request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", recommendation.ErrModelUnavailable, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusServiceUnavailable || resp.StatusCode == http.StatusNotFound:
		return 0, fmt.Errorf("%w: status %d", recommendation.ErrModelUnavailable, resp.StatusCode)
	case resp.StatusCode != http.StatusOK:
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 256))
		return 0, fmt.Errorf("unexpected status code: %d: %s", resp.StatusCode, strings.TrimSpace(string(snippet)))
	}

	var out PredictResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return 0, fmt.Errorf("error decoding response: %w", err)
	}
	return out.Score, nil
}
