package health_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/aaravmahajanofficial/storefront/internal/config"
	storeHealth "github.com/aaravmahajanofficial/storefront/internal/health"
	"github.com/aaravmahajanofficial/storefront/internal/session"
	"github.com/aaravmahajanofficial/storefront/internal/testutils"
	"github.com/hellofresh/health-go/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type brokenStore struct {
	session.Store
}

func (brokenStore) Load(context.Context) (*session.Snapshot, error) {
	return nil, errors.New("disk on fire")
}

func testConfig(baseURL string) *config.Config {
	return &config.Config{
		API:     config.API{BaseURL: baseURL},
		Session: config.Session{Backend: config.SessionBackendMemory},
		Otel:    config.OtelConfig{ServiceName: "storefront-cli"},
	}
}

func TestHealthChecker(t *testing.T) {
	t.Run("Everything reachable", func(t *testing.T) {
		backend := testutils.NewFakeBackend(t)

		h, err := storeHealth.NewHealthChecker(testConfig(backend.URL()), &storeHealth.Endpoints{Sessions: session.NewMemoryStore()}, "test")
		require.NoError(t, err)

		check := h.Measure(t.Context())

		assert.Equal(t, health.StatusOK, check.Status)
		assert.Empty(t, check.Failures)
		assert.Equal(t, 1, backend.CSRFHits())
	})

	t.Run("Session store failure degrades", func(t *testing.T) {
		backend := testutils.NewFakeBackend(t)

		h, err := storeHealth.NewHealthChecker(testConfig(backend.URL()), &storeHealth.Endpoints{Sessions: brokenStore{}}, "test")
		require.NoError(t, err)

		check := h.Measure(t.Context())

		assert.Equal(t, health.StatusPartiallyAvailable, check.Status)
		assert.Contains(t, check.Failures, storeHealth.CheckSessionStore)
	})

	t.Run("Backend down", func(t *testing.T) {
		down := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		}))
		t.Cleanup(down.Close)

		h, err := storeHealth.NewHealthChecker(testConfig(down.URL), nil, "test")
		require.NoError(t, err)

		check := h.Measure(t.Context())

		assert.Equal(t, health.StatusUnavailable, check.Status)
		assert.Contains(t, check.Failures, storeHealth.CheckAPI)
	})
}
