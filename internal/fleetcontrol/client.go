// Package fleetcontrol talks to the FleetControl GraphQL API.
package fleetcontrol

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/TonmoySahaNC/NC-MCE-Automation/internal/metrics"
	"github.com/TonmoySahaNC/NC-MCE-Automation/internal/types"
)

const (
	// DefaultEndpoint is the public FleetControl GraphQL endpoint
	DefaultEndpoint = "https://api.fleetcontrol.nordcloudapp.com/graphql"

	// DefaultTimeout is the default request timeout
	DefaultTimeout = 30 * time.Second

	// MaxResponseSize is the maximum response body size (20MB)
	MaxResponseSize = 20 * 1024 * 1024
)

// Payload is the decoded data object of a successful response.
type Payload struct {
	Data json.RawMessage
}

// Client sends report queries on behalf of a customer.
type Client struct {
	endpoint   string
	httpClient *http.Client
	logger     *zap.Logger
}

// Option customises client instantiation.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) {
		if h != nil {
			c.httpClient = h
		}
	}
}

// WithTimeout sets the overall request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.httpClient.Timeout = d
		}
	}
}

// NewClient constructs a Client for the given endpoint. An empty endpoint
// means DefaultEndpoint.
func NewClient(endpoint string, logger *zap.Logger, opts ...Option) *Client {
	endpoint = strings.TrimSpace(endpoint)
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	c := &Client{
		endpoint:   endpoint,
		httpClient: &http.Client{Timeout: DefaultTimeout},
		logger:     logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Query posts document with the customer's credentials. It sends exactly one
// request; a non-200 status yields *FetchFailure and a null data field yields
// *NoDataFailure.
func (c *Client) Query(ctx context.Context, customer types.Customer, document string) (*Payload, error) {
	sugar := c.logger.Sugar()

	jsonData, err := json.Marshal(types.QueryRequest{Query: document})
	if err != nil {
		return nil, fmt.Errorf("encode request body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(jsonData))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Api-Key", customer.APIKey)
	req.Header.Set("X-Customer-ID", customer.ID)
	req.Header.Set("Accept", "application/json")

	sugar.Debugw("Executing query", "customer", customer.Name, "endpoint", c.endpoint)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	metrics.HTTPRequestDuration.WithLabelValues(customer.Name).Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.HTTPRequestsTotal.WithLabelValues(customer.Name, "error").Inc()
		return nil, &FetchFailure{Customer: customer.Name, Err: err}
	}
	defer resp.Body.Close()
	metrics.HTTPRequestsTotal.WithLabelValues(customer.Name, strconv.Itoa(resp.StatusCode)).Inc()

	body, err := io.ReadAll(io.LimitReader(resp.Body, MaxResponseSize+1))
	if err != nil {
		return nil, fmt.Errorf("[%s] read response: %w", customer.Name, err)
	}
	if len(body) > MaxResponseSize {
		return nil, fmt.Errorf("[%s] response body too large (max %d bytes)", customer.Name, MaxResponseSize)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, &FetchFailure{Customer: customer.Name, StatusCode: resp.StatusCode, Body: string(body)}
	}

	var queryResp types.QueryResponse
	if err := json.Unmarshal(body, &queryResp); err != nil {
		return nil, fmt.Errorf("[%s] parse response: %w", customer.Name, err)
	}

	if isNull(queryResp.Data) {
		failure := &NoDataFailure{Customer: customer.Name, Body: string(body)}
		for _, e := range queryResp.Errors {
			failure.Errors = append(failure.Errors, e.Message)
		}
		return nil, failure
	}

	sugar.Debugw("Completed query", "customer", customer.Name, "bytes", len(body), "duration", time.Since(start))
	return &Payload{Data: queryResp.Data}, nil
}

func isNull(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null"))
}
