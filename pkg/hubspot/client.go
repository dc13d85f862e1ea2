// Package hubspot provides token-authenticated access to the HubSpot
// CRM v3 REST API.
package hubspot

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"golang.org/x/time/rate"
)

// Default base URL for the HubSpot CRM API.
const defaultBaseURL = "https://api.hubapi.com"

// Client defines the HubSpot API operations used by the export pipeline.
type Client interface {
	CreateContact(ctx context.Context, properties map[string]any) (*ContactResponse, error)
	TestConnection(ctx context.Context) error
}

// ContactResponse is the response from POST /crm/v3/objects/contacts.
type ContactResponse struct {
	ID         string            `json:"id"`
	Properties map[string]string `json:"properties"`
	CreatedAt  time.Time         `json:"createdAt"`
}

// APIError is returned when HubSpot responds with a non-2xx status.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("hubspot: HTTP %d: %s", e.StatusCode, e.Body)
}

// IsConflict reports whether the error is a duplicate-contact rejection.
func IsConflict(err error) bool {
	var apiErr *APIError
	if !eris.As(err, &apiErr) {
		return false
	}
	return apiErr.StatusCode == http.StatusConflict ||
		strings.Contains(strings.ToLower(apiErr.Body), "already exists")
}

// Option configures the httpClient.
type Option func(*httpClient)

// WithBaseURL overrides the default base URL.
func WithBaseURL(url string) Option {
	return func(c *httpClient) {
		c.baseURL = url
	}
}

// WithHTTPClient sets a custom *http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) {
		c.http = hc
	}
}

// WithRateLimit sets a per-second rate limit for API calls.
// A burst equal to the integer portion of rps is allowed.
func WithRateLimit(rps float64) Option {
	return func(c *httpClient) {
		if rps > 0 {
			c.limiter = rate.NewLimiter(rate.Limit(rps), max(int(rps), 1))
		}
	}
}

// httpClient implements Client using net/http.
type httpClient struct {
	token   string
	baseURL string
	http    *http.Client
	limiter *rate.Limiter
}

// NewClient creates a HubSpot client. The token must be a private app
// access token ("pat-" prefix).
func NewClient(token string, opts ...Option) (Client, error) {
	if err := ValidateToken(token); err != nil {
		return nil, err
	}
	c := &httpClient{
		token:   token,
		baseURL: defaultBaseURL,
		http: &http.Client{
			Timeout: 30 * time.Second,
			Transport: &http.Transport{
				MaxIdleConnsPerHost: 20,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// ValidateToken checks that a token looks like a HubSpot private app
// access token.
func ValidateToken(token string) error {
	if token == "" {
		return eris.New("hubspot: access token is required")
	}
	if !strings.HasPrefix(token, "pat-") {
		return eris.New("hubspot: access token must be a private app token (pat- prefix)")
	}
	return nil
}

// wait blocks until the rate limiter allows one event, or ctx is cancelled.
func (c *httpClient) wait(ctx context.Context) error {
	if c.limiter == nil {
		return nil
	}
	return c.limiter.Wait(ctx)
}

func (c *httpClient) CreateContact(ctx context.Context, properties map[string]any) (*ContactResponse, error) {
	if err := c.wait(ctx); err != nil {
		return nil, eris.Wrap(err, "hubspot: rate limit")
	}
	var resp ContactResponse
	body := map[string]any{"properties": properties}
	if err := c.post(ctx, "/crm/v3/objects/contacts", body, &resp); err != nil {
		return nil, eris.Wrap(err, "hubspot: create contact")
	}
	return &resp, nil
}

// TestConnection verifies the token by fetching a single owner record.
func (c *httpClient) TestConnection(ctx context.Context) error {
	if err := c.wait(ctx); err != nil {
		return eris.Wrap(err, "hubspot: rate limit")
	}
	var resp struct {
		Results []json.RawMessage `json:"results"`
	}
	if err := c.get(ctx, "/crm/v3/owners?limit=1", &resp); err != nil {
		return eris.Wrap(err, "hubspot: test connection")
	}
	return nil
}

func (c *httpClient) post(ctx context.Context, path string, body any, out any) error {
	buf, err := json.Marshal(body)
	if err != nil {
		return eris.Wrap(err, "marshal request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(buf))
	if err != nil {
		return eris.Wrap(err, "create request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.token)

	return c.do(req, out)
}

func (c *httpClient) get(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return eris.Wrap(err, "create request")
	}
	req.Header.Set("Authorization", "Bearer "+c.token)

	return c.do(req, out)
}

func (c *httpClient) do(req *http.Request, out any) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return eris.Wrap(err, "execute request")
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return eris.Wrap(err, "read response body")
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &APIError{
			StatusCode: resp.StatusCode,
			Body:       string(data),
		}
	}

	if err := json.Unmarshal(data, out); err != nil {
		return eris.Wrap(err, "decode response")
	}

	return nil
}
