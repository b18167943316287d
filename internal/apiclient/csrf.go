package apiclient

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"sync"

	"github.com/aaravmahajanofficial/storefront/internal/logging"
	"github.com/aaravmahajanofficial/storefront/internal/models"
	"golang.org/x/sync/singleflight"
)

const csrfFlightKey = "csrf"

// csrfCache is a single-slot token cache. Concurrent misses share one fetch.
// A failed fetch leaves the slot empty so the next mutating request tries again.
type csrfCache struct {
	mu    sync.RWMutex
	token string
	group singleflight.Group
}

func (c *csrfCache) get() string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.token
}

func (c *csrfCache) set(token string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.token = token
}

// CSRFToken returns the cached token, fetching it first if the slot is empty.
// It returns "" when the fetch fails; callers send the request without the header.
func (c *Client) CSRFToken(ctx context.Context) string {
	if token := c.csrf.get(); token != "" {
		return token
	}

	ch := c.csrf.group.DoChan(csrfFlightKey, func() (any, error) {
		if token := c.csrf.get(); token != "" {
			return token, nil
		}

		// the fetch outlives a cancelled first caller; each waiter watches its own ctx
		fetchCtx := context.WithoutCancel(ctx)

		var resp models.CSRFResponse
		if err := c.JSON(fetchCtx, http.MethodGet, PathCSRF, nil, &resp); err != nil {
			c.metrics.CSRFFetch(false)
			return "", err
		}

		if resp.CSRFToken == "" {
			c.metrics.CSRFFetch(false)
			return "", errors.New("empty csrf token in response")
		}

		c.csrf.set(resp.CSRFToken)
		c.metrics.CSRFFetch(true)

		return resp.CSRFToken, nil
	})

	var res singleflight.Result
	select {
	case res = <-ch:
	case <-ctx.Done():
		return ""
	}

	if res.Err != nil {
		logging.FromContextOr(ctx, c.logger).Warn("CSRF token fetch failed, sending request without token", slog.String("error", res.Err.Error()))

		return ""
	}

	return res.Val.(string)
}

// InvalidateCSRF empties the slot. The server rotates the token on login and
// logout, so the auth store calls this after those transitions.
func (c *Client) InvalidateCSRF() {
	c.csrf.set("")
}
