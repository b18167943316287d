// Package apiclient is the single point of HTTP access to the storefront
// backend. It keeps the session cookie jar and attaches the CSRF token to
// every state-changing request.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	appErrors "github.com/aaravmahajanofficial/storefront/internal/errors"
	"github.com/aaravmahajanofficial/storefront/internal/logging"
	"github.com/aaravmahajanofficial/storefront/internal/metrics"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"golang.org/x/net/publicsuffix"
)

const (
	apiPrefix       = "/api"
	csrfHeader      = "X-CSRFToken"
	requestIDHeader = "X-Request-ID"
	contentTypeJSON = "application/json"
)

type Options struct {
	BaseURL   string
	Timeout   time.Duration
	UserAgent string
	// Transport is the innermost round tripper; http.DefaultTransport when nil.
	Transport http.RoundTripper
	Metrics   *metrics.Metrics
	Logger    *slog.Logger
}

type Client struct {
	baseURL   *url.URL
	http      *http.Client
	jar       http.CookieJar
	csrf      csrfCache
	metrics   *metrics.Metrics
	logger    *slog.Logger
	userAgent string
}

type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

func New(opts Options) (*Client, error) {
	base, err := url.Parse(strings.TrimRight(opts.BaseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid api base url %q: %w", opts.BaseURL, err)
	}

	if base.Scheme != "http" && base.Scheme != "https" {
		return nil, fmt.Errorf("api base url %q must be http or https", opts.BaseURL)
	}

	jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		return nil, fmt.Errorf("failed to create cookie jar: %w", err)
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	inner := opts.Transport
	if inner == nil {
		inner = http.DefaultTransport
	}

	// logging -> metrics -> tracing -> network
	transport := newLoggingTransport(opts.Metrics.InstrumentRoundTripper(otelhttp.NewTransport(inner)), logger)

	return &Client{
		baseURL: base,
		http: &http.Client{
			Transport: transport,
			Jar:       jar,
			Timeout:   opts.Timeout,
		},
		jar:       jar,
		metrics:   opts.Metrics,
		logger:    logger,
		userAgent: opts.UserAgent,
	}, nil
}

func (c *Client) BaseURL() string {
	return c.baseURL.String()
}

// Cookies returns the session cookies the jar holds for the backend.
func (c *Client) Cookies() []*http.Cookie {
	return c.jar.Cookies(c.baseURL)
}

func (c *Client) SetCookies(cookies []*http.Cookie) {
	c.jar.SetCookies(c.baseURL, cookies)
}

// ClearCookies expires every cookie the jar holds for the backend.
func (c *Client) ClearCookies() {
	expired := make([]*http.Cookie, 0)
	for _, ck := range c.jar.Cookies(c.baseURL) {
		expired = append(expired, &http.Cookie{Name: ck.Name, Value: "", Path: "/", MaxAge: -1})
	}

	c.jar.SetCookies(c.baseURL, expired)
}

func isMutating(method string) bool {
	switch strings.ToUpper(method) {
	case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
		return true
	}

	return false
}

func (c *Client) endpoint(path string, query url.Values) string {
	u := *c.baseURL
	u.Path = strings.TrimRight(u.Path, "/") + apiPrefix + path

	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}

	return u.String()
}

// Do sends one request. Mutating methods carry the CSRF token when one can be
// obtained. Non-2xx responses are logged and returned as *errors.AppError.
func (c *Client) Do(ctx context.Context, method, path string, body io.Reader, headers http.Header) (*Response, error) {
	return c.do(ctx, method, path, nil, body, headers)
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body io.Reader, headers http.Header) (*Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.endpoint(path, query), body)
	if err != nil {
		return nil, appErrors.InternalError("Failed to build request").WithError(err)
	}

	for key, values := range headers {
		for _, v := range values {
			req.Header.Add(key, v)
		}
	}

	req.Header.Set("Accept", contentTypeJSON)

	if body != nil && req.Header.Get("Content-Type") == "" {
		req.Header.Set("Content-Type", contentTypeJSON)
	}

	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	if isMutating(method) {
		// Django checks the referer on HTTPS before the token.
		req.Header.Set("Referer", c.baseURL.String()+"/")

		if token := c.CSRFToken(ctx); token != "" {
			req.Header.Set(csrfHeader, token)
		}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		logging.FromContextOr(ctx, c.logger).Error("API Error",
			slog.String("http_method", method),
			slog.String("http_path", path),
			slog.String("error", err.Error()),
		)

		return nil, appErrors.NetworkError("Could not reach the store server").WithError(err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, appErrors.NetworkError("Failed to read response body").WithError(err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := parseErrorResponse(resp.StatusCode, data)

		logging.FromContextOr(ctx, c.logger).Error("API Error",
			slog.String("http_method", method),
			slog.String("http_path", path),
			slog.Int("http_status", resp.StatusCode),
			slog.String("error", apiErr.Message),
		)

		return nil, apiErr
	}

	return &Response{StatusCode: resp.StatusCode, Header: resp.Header, Body: data}, nil
}

// JSON encodes payload (when not nil), sends it, and decodes the response into out (when not nil).
func (c *Client) JSON(ctx context.Context, method, path string, payload, out any) error {
	var body io.Reader

	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return appErrors.InternalError("Failed to encode request").WithError(err)
		}

		body = bytes.NewReader(data)
	}

	resp, err := c.do(ctx, method, path, nil, body, nil)
	if err != nil {
		return err
	}

	return decodeInto(resp.Body, out)
}

// Get issues a GET with query parameters and decodes the JSON response into out.
func (c *Client) Get(ctx context.Context, path string, query url.Values, out any) error {
	resp, err := c.do(ctx, http.MethodGet, path, query, nil, nil)
	if err != nil {
		return err
	}

	return decodeInto(resp.Body, out)
}

// GetRaw issues a GET and returns the undecoded body.
func (c *Client) GetRaw(ctx context.Context, path string, query url.Values) ([]byte, error) {
	resp, err := c.do(ctx, http.MethodGet, path, query, nil, nil)
	if err != nil {
		return nil, err
	}

	return resp.Body, nil
}

func decodeInto(data []byte, out any) error {
	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}

	if err := json.Unmarshal(data, out); err != nil {
		return appErrors.DecodeError("Unexpected response from the store server").WithError(err)
	}

	return nil
}
