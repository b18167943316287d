package health

import (
	"context"
	"fmt"
	"time"

	"github.com/aaravmahajanofficial/storefront/internal/apiclient"
	"github.com/aaravmahajanofficial/storefront/internal/config"
	"github.com/aaravmahajanofficial/storefront/internal/session"
	"github.com/hellofresh/health-go/v5"
	healthHTTP "github.com/hellofresh/health-go/v5/checks/http"
	healthRedis "github.com/hellofresh/health-go/v5/checks/redis"
)

const (
	CheckAPI          = "storefront-api"
	CheckSessionStore = "session-store"
	CheckRedis        = "redis"
)

type Endpoints struct {
	Sessions session.Store
}

// NewHealthChecker probes the backend through its CSRF endpoint, which needs
// no session. Session storage failures only degrade the result because the
// catalog stays usable without a login.
func NewHealthChecker(cfg *config.Config, endpoints *Endpoints, version string) (*health.Health, error) {
	checks := []health.Config{
		{
			Name:      CheckAPI,
			Timeout:   5 * time.Second,
			SkipOnErr: false,
			Check: healthHTTP.New(healthHTTP.Config{
				URL:            cfg.API.BaseURL + "/api" + apiclient.PathCSRF,
				RequestTimeout: 5 * time.Second,
			}),
		},
	}

	if endpoints != nil && endpoints.Sessions != nil {
		checks = append(checks, health.Config{
			Name:      CheckSessionStore,
			Timeout:   2 * time.Second,
			SkipOnErr: true,
			Check: func(ctx context.Context) error {
				if _, err := endpoints.Sessions.Load(ctx); err != nil {
					return fmt.Errorf("failed to read session store: %w", err)
				}

				return nil
			},
		})
	}

	if cfg.Session.Backend == config.SessionBackendRedis {
		checks = append(checks, health.Config{
			Name:      CheckRedis,
			Timeout:   2 * time.Second,
			SkipOnErr: true,
			Check: healthRedis.New(healthRedis.Config{
				DSN: cfg.RedisConnect.GetDSN(),
			}),
		})
	}

	h, err := health.New(
		health.WithComponent(health.Component{
			Name:    cfg.Otel.ServiceName,
			Version: version,
		}),
		health.WithSystemInfo(),
		health.WithChecks(checks...),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create health instance: %w", err)
	}

	return h, nil
}
