package oracle

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"prediction_relay/backend/go/pkg/models"
)

// maxResponseBody bounds how much of an oracle response is read.
const maxResponseBody = 1 << 20

// ErrMalformedResponse is returned when the oracle answers 2xx without a usable body.
var ErrMalformedResponse = errors.New("malformed oracle response")

// StatusError is returned for non-2xx oracle responses.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("oracle responded with status %d", e.StatusCode)
}

// Doer sends HTTP requests. Both *http.Client and the relay's breaker-aware client satisfy it.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client calls the prediction oracle's POST /predict endpoint.
type Client struct {
	baseURL string
	doer    Doer
}

// NewClient creates a Client for the oracle rooted at baseURL.
func NewClient(baseURL string, doer Doer) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		doer:    doer,
	}
}

type predictRequest struct {
	Features models.FeatureVector `json:"features"`
}

type predictResponse struct {
	Prediction json.RawMessage `json:"prediction"`
	Result     *string         `json:"result"`
}

// Predict sends features to the oracle and returns its verdict.
func (c *Client) Predict(ctx context.Context, features models.FeatureVector) (*models.PredictionOutcome, error) {
	body, err := json.Marshal(predictRequest{Features: features})
	if err != nil {
		return nil, fmt.Errorf("encode oracle request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/predict", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build oracle request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.doer.Do(req)
	if err != nil {
		return nil, fmt.Errorf("call oracle: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
	if err != nil {
		return nil, fmt.Errorf("read oracle response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{StatusCode: resp.StatusCode, Body: string(raw)}
	}

	var decoded predictResponse
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	if len(decoded.Prediction) == 0 || string(decoded.Prediction) == "null" {
		return nil, fmt.Errorf("%w: missing prediction", ErrMalformedResponse)
	}
	if decoded.Result == nil {
		return nil, fmt.Errorf("%w: missing result", ErrMalformedResponse)
	}

	var prediction interface{}
	if err := json.Unmarshal(decoded.Prediction, &prediction); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	return &models.PredictionOutcome{Prediction: prediction, Result: *decoded.Result}, nil
}
