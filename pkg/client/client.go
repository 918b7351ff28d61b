// Package client is a Go SDK for the shortener HTTP API.
//
// Credentials are passed explicitly as an oauth2.TokenSource. The bearer header is
// attached by oauth2.Transport, and tokens are cached until they expire.
package client

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

	"golang.org/x/oauth2"
)

// TokenSourceFunc adapts a login or refresh call into an oauth2.TokenSource.
type TokenSourceFunc func() (*oauth2.Token, error)

func (f TokenSourceFunc) Token() (*oauth2.Token, error) {
	return f()
}

// StaticToken wraps a long-lived bearer token.
func StaticToken(accessToken string) oauth2.TokenSource {
	return oauth2.StaticTokenSource(&oauth2.Token{AccessToken: accessToken, TokenType: "Bearer"})
}

type Client struct {
	baseURL string
	authed  *http.Client
	public  *http.Client
}

type options struct {
	transport http.RoundTripper
	timeout   time.Duration
}

type Option func(*options)

// WithTransport sets the underlying transport, e.g. httptest.Server.Client().Transport.
func WithTransport(rt http.RoundTripper) Option {
	return func(o *options) { o.transport = rt }
}

func WithTimeout(d time.Duration) Option {
	return func(o *options) { o.timeout = d }
}

func New(baseURL string, ts oauth2.TokenSource, opts ...Option) *Client {
	o := options{
		transport: http.DefaultTransport,
		timeout:   10 * time.Second,
	}
	for _, opt := range opts {
		opt(&o)
	}

	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		authed: &http.Client{
			Timeout: o.timeout,
			Transport: &oauth2.Transport{
				Source: oauth2.ReuseTokenSource(nil, ts),
				Base:   o.transport,
			},
		},
		public: &http.Client{
			Timeout:   o.timeout,
			Transport: o.transport,
			CheckRedirect: func(*http.Request, []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
	}
}

type ShortenRequest struct {
	OriginalURL string `json:"originalUrl"`
	CustomAlias string `json:"customAlias,omitempty"`
	ExpiryHours int    `json:"expiryHours,omitempty"`
}

type Link struct {
	ShortID     string     `json:"shortId"`
	OriginalURL string     `json:"originalUrl"`
	ShortURL    string     `json:"shortUrl"`
	Clicks      int64      `json:"clicks"`
	IsActive    bool       `json:"isActive"`
	CreatedAt   time.Time  `json:"createdAt"`
	ExpiresAt   *time.Time `json:"expiresAt,omitempty"`
}

type Location struct {
	Country string `json:"country,omitempty"`
	City    string `json:"city,omitempty"`
}

type ClickEvent struct {
	Timestamp time.Time `json:"timestamp"`
	IP        string    `json:"ip"`
	UserAgent string    `json:"userAgent"`
	Referrer  string    `json:"referrer,omitempty"`
	Device    string    `json:"device,omitempty"`
	Location  Location  `json:"location"`
}

type Analytics struct {
	ShortID     string       `json:"shortId"`
	OriginalURL string       `json:"originalUrl"`
	TotalClicks int64        `json:"totalClicks"`
	Events      []ClickEvent `json:"analytics"`
}

type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// APIError is returned for any non-2xx response.
type APIError struct {
	StatusCode int
	Message    string
	Errors     []FieldError
}

func (e *APIError) Error() string {
	return fmt.Sprintf("shortener: %d %s", e.StatusCode, e.Message)
}

// IsStatus reports whether err is an *APIError with the given status code.
func IsStatus(err error, status int) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == status
}

func (c *Client) Shorten(ctx context.Context, req ShortenRequest) (*Link, error) {
	var link Link
	if err := c.do(ctx, http.MethodPost, "/api/url/shorten", req, http.StatusCreated, &link); err != nil {
		return nil, err
	}
	return &link, nil
}

func (c *Client) List(ctx context.Context) ([]Link, error) {
	var out struct {
		URLs []Link `json:"urls"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/url/all", nil, http.StatusOK, &out); err != nil {
		return nil, err
	}
	return out.URLs, nil
}

func (c *Client) Analytics(ctx context.Context, alias string) (*Analytics, error) {
	var out Analytics
	if err := c.do(ctx, http.MethodGet, "/api/url/analytics/"+url.PathEscape(alias), nil, http.StatusOK, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Toggle flips the active flag when active is nil, otherwise sets it. It returns the new state.
func (c *Client) Toggle(ctx context.Context, alias string, active *bool) (bool, error) {
	var body interface{}
	if active != nil {
		body = map[string]bool{"isActive": *active}
	}

	var out struct {
		IsActive bool `json:"isActive"`
	}
	if err := c.do(ctx, http.MethodPatch, "/api/url/toggle/"+url.PathEscape(alias), body, http.StatusOK, &out); err != nil {
		return false, err
	}
	return out.IsActive, nil
}

func (c *Client) Delete(ctx context.Context, alias string) error {
	return c.do(ctx, http.MethodDelete, "/api/url/"+url.PathEscape(alias), nil, http.StatusOK, nil)
}

// Resolve calls the public redirect endpoint and returns the target URL without
// following it. It sends no credentials.
func (c *Client) Resolve(ctx context.Context, alias string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/url/"+url.PathEscape(alias), nil)
	if err != nil {
		return "", err
	}

	resp, err := c.public.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusFound {
		return "", decodeError(resp)
	}

	return resp.Header.Get("Location"), nil
}

func (c *Client) do(ctx context.Context, method, path string, in interface{}, want int, out interface{}) error {
	var body io.Reader
	if in != nil {
		buf, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		body = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.authed.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != want {
		return decodeError(resp)
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

func decodeError(resp *http.Response) error {
	apiErr := &APIError{StatusCode: resp.StatusCode}

	var payload struct {
		Message string       `json:"message"`
		Errors  []FieldError `json:"errors"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err == nil {
		apiErr.Message = payload.Message
		apiErr.Errors = payload.Errors
	}
	if apiErr.Message == "" {
		apiErr.Message = http.StatusText(resp.StatusCode)
	}

	return apiErr
}
