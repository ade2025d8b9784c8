package qzaway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sony/gobreaker/v2"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/qzaway/foodcourt/internal/config"
	apperrors "github.com/qzaway/foodcourt/pkg/errors"
)

const serviceName = "qzaway-backend"

type Client struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
	breaker    *gobreaker.CircuitBreaker[*rawResponse]
	logger     *zap.Logger
}

type rawResponse struct {
	status int
	body   []byte
}

// NewClient creates a new backend REST client
func NewClient(cfg config.APIConfig, logger *zap.Logger) *Client {
	baseURL := strings.TrimSuffix(cfg.BaseURL, "/")

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}

	var limiter *rate.Limiter
	if cfg.RateLimit > 0 {
		burst := cfg.RateBurst
		if burst <= 0 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), burst)
	}

	failures := uint32(5)
	if cfg.BreakerFailures > 0 {
		failures = uint32(cfg.BreakerFailures)
	}

	breaker := gobreaker.NewCircuitBreaker[*rawResponse](gobreaker.Settings{
		Name:        serviceName,
		MaxRequests: 1,
		Timeout:     cfg.BreakerCooldown,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= failures
		},
		IsSuccessful: func(err error) bool {
			// an aborted request says nothing about backend health
			return err == nil || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("Circuit breaker state change",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
	})

	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		limiter: limiter,
		breaker: breaker,
		logger:  logger,
	}
}

// errorBody is the JSON error envelope returned by the backend
type errorBody struct {
	Message string `json:"message"`
}

// Execute sends one JSON request and decodes the response into out (when non-nil)
func (c *Client) Execute(ctx context.Context, method, path string, query url.Values, body, out interface{}) error {
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var payload []byte
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		payload = data
	}

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return err
		}
	}

	resp, err := c.breaker.Execute(func() (*rawResponse, error) {
		return c.send(ctx, method, endpoint, payload)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return &apperrors.ErrUnavailable{Service: serviceName, Err: err}
		}
		return err
	}

	if resp.status < 200 || resp.status >= 300 {
		return requestError(resp)
	}

	if out == nil || len(bytes.TrimSpace(resp.body)) == 0 {
		return nil
	}
	if err := json.Unmarshal(resp.body, out); err != nil {
		return fmt.Errorf("failed to unmarshal response: %w", err)
	}
	return nil
}

func (c *Client) send(ctx context.Context, method, endpoint string, payload []byte) (*rawResponse, error) {
	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	raw := &rawResponse{status: resp.StatusCode, body: data}
	if resp.StatusCode >= 500 {
		c.logger.Warn("Backend error",
			zap.String("method", method),
			zap.String("url", endpoint),
			zap.Int("status", resp.StatusCode),
		)
		// counted by the breaker; 4xx responses are the caller's problem
		return nil, requestError(raw)
	}
	return raw, nil
}

func requestError(resp *rawResponse) error {
	var body errorBody
	if err := json.Unmarshal(resp.body, &body); err != nil || body.Message == "" {
		body.Message = http.StatusText(resp.status)
	}
	return &apperrors.ErrRequest{Status: resp.status, Message: body.Message}
}

// notFoundAs converts a 404 request error into a typed not-found error
func notFoundAs(err error, resource, id string) error {
	var reqErr *apperrors.ErrRequest
	if errors.As(err, &reqErr) && reqErr.Status == http.StatusNotFound {
		return &apperrors.ErrNotFound{Resource: resource, ID: id}
	}
	return err
}
