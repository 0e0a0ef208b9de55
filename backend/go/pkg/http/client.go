package http

import (
	"fmt"
	"io"
	"net/http"
	"time"

	"prediction_relay/backend/go/internal/config"
	"prediction_relay/backend/go/pkg/circuitbreaker"
)

const defaultClientTimeout = 10 * time.Second

// Client wraps http.Client with a request timeout and optional circuit breaking.
type Client struct {
	httpClient *http.Client
	breaker    circuitbreaker.CircuitBreaker
}

// NewClient builds a Client for the oracle described by cfg.
func NewClient(cfg config.OracleConfig) (*Client, error) {
	timeout, err := parseDuration(cfg.Timeout, defaultClientTimeout)
	if err != nil {
		return nil, fmt.Errorf("invalid client timeout: %w", err)
	}
	c := &Client{httpClient: &http.Client{Timeout: timeout}}

	if cfg.CircuitBreaker.Enabled {
		cooldown, err := parseDuration(cfg.CircuitBreaker.Timeout, 30*time.Second)
		if err != nil {
			return nil, fmt.Errorf("invalid circuit breaker timeout duration: %w", err)
		}
		c.breaker = circuitbreaker.New(cfg.CircuitBreaker.FailureThreshold, cfg.CircuitBreaker.SuccessThreshold, cooldown)
	}
	return c, nil
}

// Do executes req. With a breaker configured, transport errors, the client's own
// timeout and 5xx responses count as failures; a 5xx response is closed and reported as
// an error. A call whose request context was cancelled or expired is not recorded.
func (c *Client) Do(req *http.Request) (*http.Response, error) {
	if c.breaker == nil {
		return c.httpClient.Do(req)
	}

	var resp *http.Response
	err := c.breaker.Do(func() error {
		var err error
		resp, err = c.httpClient.Do(req)
		if err != nil {
			if req.Context().Err() != nil {
				return circuitbreaker.Neutral(err)
			}
			return err
		}
		if resp.StatusCode >= http.StatusInternalServerError {
			_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4<<10))
			resp.Body.Close()
			return fmt.Errorf("server error: received status code %d", resp.StatusCode)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return resp, nil
}

// BreakerState reports the breaker state, or Closed when no breaker is configured.
func (c *Client) BreakerState() circuitbreaker.State {
	if c.breaker == nil {
		return circuitbreaker.Closed
	}
	return c.breaker.State()
}

func parseDuration(s string, def time.Duration) (time.Duration, error) {
	if s == "" {
		return def, nil
	}
	return time.ParseDuration(s)
}
