package apiclient

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/aaravmahajanofficial/storefront/internal/logging"
	"github.com/google/uuid"
)

type loggingTransport struct {
	next   http.RoundTripper
	logger *slog.Logger
}

func newLoggingTransport(next http.RoundTripper, logger *slog.Logger) http.RoundTripper {
	return &loggingTransport{next: next, logger: logger}
}

// RoundTrip tags the request with a correlation id and logs its outcome.
func (t *loggingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	start := time.Now()

	correlationID := req.Header.Get(requestIDHeader)
	if correlationID == "" {
		correlationID = uuid.NewString()
		req = req.Clone(req.Context())
		req.Header.Set(requestIDHeader, correlationID)
	}

	requestLogger := logging.FromContextOr(req.Context(), t.logger).With(
		slog.String("correlation_id", correlationID),
		slog.String("http_method", req.Method),
		slog.String("http_path", req.URL.Path),
	)

	requestLogger.Debug("Outgoing request")

	resp, err := t.next.RoundTrip(req)
	if err != nil {
		requestLogger.Debug("Request failed", slog.String("error", err.Error()), slog.Duration("duration", time.Since(start)))
		return nil, err
	}

	requestLogger.Debug("Request completed", slog.Int("http_status", resp.StatusCode), slog.Duration("duration", time.Since(start)))

	return resp, nil
}
