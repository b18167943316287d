package apiclient

import (
	"context"
	"io"
	"net/http"
	"net/url"
)

// API is the surface the stores and services depend on.
type API interface {
	Do(ctx context.Context, method, path string, body io.Reader, headers http.Header) (*Response, error)
	JSON(ctx context.Context, method, path string, payload, out any) error
	Get(ctx context.Context, path string, query url.Values, out any) error
	GetRaw(ctx context.Context, path string, query url.Values) ([]byte, error)
	Multipart(ctx context.Context, method, path string, form *MultipartForm, out any) error
	InvalidateCSRF()
}

var _ API = (*Client)(nil)
