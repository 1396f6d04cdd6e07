package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"path"
	"strconv"
	"time"

	"github.com/polkiloo/homecare/internal/domain/model"
)

// TooManyRequestsError represents rate limiting signal from the payment gateway.
type TooManyRequestsError struct {
	RetryAfter time.Duration
}

func (e TooManyRequestsError) Error() string {
	return fmt.Sprintf("too many requests, retry after %s", e.RetryAfter)
}

// Client issues transfer destinations for payment sessions.
type Client interface {
	IssueVirtualAccount(ctx context.Context, reference string, amount int64) (model.VirtualAccount, error)
}

// StaticClient hands out the same virtual account to everyone. Used when no gateway is configured.
type StaticClient struct{}

func (StaticClient) IssueVirtualAccount(context.Context, string, int64) (model.VirtualAccount, error) {
	return model.VirtualAccount{Number: model.StaticVirtualAccount, Provider: "manual"}, nil
}

// HTTPClient implements Client via the gateway HTTP API.
type HTTPClient struct {
	baseURL    *url.URL
	httpClient *http.Client
	logger     *slog.Logger
}

type issueRequest struct {
	Reference string `json:"reference"`
	Amount    int64  `json:"amount"`
}

type issueResponse struct {
	Number   string `json:"number"`
	Provider string `json:"provider"`
}

// NewHTTPClient creates HTTP gateway client with default timeout.
func NewHTTPClient(baseURL string, logger *slog.Logger) (*HTTPClient, error) {
	parsed, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse gateway url: %w", err)
	}
	if !parsed.IsAbs() {
		return nil, fmt.Errorf("gateway url must be absolute")
	}
	return &HTTPClient{
		baseURL: parsed,
		logger:  logger,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}, nil
}

// IssueVirtualAccount asks the gateway for a virtual account bound to reference.
func (c *HTTPClient) IssueVirtualAccount(ctx context.Context, reference string, amount int64) (model.VirtualAccount, error) {
	endpoint := *c.baseURL
	endpoint.Path = path.Join(endpoint.Path, "/api/virtual-accounts")

	payload, err := json.Marshal(issueRequest{Reference: reference, Amount: amount})
	if err != nil {
		return model.VirtualAccount{}, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint.String(), bytes.NewReader(payload))
	if err != nil {
		return model.VirtualAccount{}, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return model.VirtualAccount{}, err
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK, http.StatusCreated:
		var data issueResponse
		if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
			return model.VirtualAccount{}, err
		}
		if data.Number == "" {
			return model.VirtualAccount{}, fmt.Errorf("gateway returned empty virtual account")
		}
		return model.VirtualAccount{Number: data.Number, Provider: data.Provider}, nil
	case http.StatusTooManyRequests:
		return model.VirtualAccount{}, TooManyRequestsError{RetryAfter: parseRetryAfter(resp.Header.Get("Retry-After"))}
	default:
		body, _ := io.ReadAll(resp.Body)
		c.logger.Error("gateway request failed", slog.Int("status", resp.StatusCode), slog.String("body", string(body)))
		return model.VirtualAccount{}, fmt.Errorf("gateway error: %s", resp.Status)
	}
}

func parseRetryAfter(header string) time.Duration {
	if header == "" {
		return 5 * time.Second
	}
	if seconds, err := strconv.Atoi(header); err == nil {
		return time.Duration(seconds) * time.Second
	}
	if t, err := http.ParseTime(header); err == nil {
		return time.Until(t)
	}
	return 5 * time.Second
}
