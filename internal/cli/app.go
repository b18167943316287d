package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"

	"github.com/aaravmahajanofficial/storefront/internal/apiclient"
	"github.com/aaravmahajanofficial/storefront/internal/cache"
	"github.com/aaravmahajanofficial/storefront/internal/config"
	"github.com/aaravmahajanofficial/storefront/internal/logging"
	"github.com/aaravmahajanofficial/storefront/internal/metrics"
	service "github.com/aaravmahajanofficial/storefront/internal/services"
	"github.com/aaravmahajanofficial/storefront/internal/session"
	"github.com/aaravmahajanofficial/storefront/internal/state"
	"github.com/aaravmahajanofficial/storefront/internal/tracing"
	"github.com/aaravmahajanofficial/storefront/internal/utils"
)

type Options struct {
	Version string
	In      io.Reader
	Out     io.Writer
	Err     io.Writer
	// Sessions replaces the store selected by session.backend.
	Sessions session.Store
	// Transport is the innermost round tripper of the API client.
	Transport http.RoundTripper
}

func (o *Options) defaults() {
	if o.Version == "" {
		o.Version = "dev"
	}

	if o.In == nil {
		o.In = os.Stdin
	}

	if o.Out == nil {
		o.Out = os.Stdout
	}

	if o.Err == nil {
		o.Err = os.Stderr
	}
}

// App is everything one command invocation needs. The auth and cart stores
// are only initialised by commands that depend on the session.
type App struct {
	cfg      *config.Config
	version  string
	logger   *slog.Logger
	metrics  *metrics.Metrics
	client   *apiclient.Client
	sessions session.Store
	closers  []func(context.Context) error

	auth    *state.AuthStore
	cart    *state.CartStore
	catalog service.CatalogService
	browser *service.ProductBrowser
	orders  service.OrderService
	admin   service.AdminService
	contact service.ContactService

	sessionReady bool
	loggedOut    bool
}

func newApp(ctx context.Context, cfg *config.Config, opts Options) (*App, error) {
	logger := logging.New(cfg.Log, opts.Err)

	shutdown, err := tracing.Init(ctx, cfg.Otel, opts.Version)
	if err != nil {
		return nil, err
	}

	m := metrics.New()

	client, err := apiclient.New(apiclient.Options{
		BaseURL:   cfg.API.BaseURL,
		Timeout:   cfg.API.Timeout,
		UserAgent: cfg.API.UserAgent,
		Transport: opts.Transport,
		Metrics:   m,
		Logger:    logger,
	})
	if err != nil {
		_ = shutdown(ctx)
		return nil, err
	}

	app := &App{
		cfg:     cfg,
		version: opts.Version,
		logger:  logger,
		metrics: m,
		client:  client,
		closers: []func(context.Context) error{shutdown},
	}

	app.sessions = opts.Sessions
	if app.sessions == nil {
		store, closer, err := openSessionStore(ctx, cfg)
		if err != nil {
			_ = shutdown(ctx)
			return nil, err
		}

		app.sessions = store
		if closer != nil {
			app.closers = append(app.closers, closer)
		}
	}

	app.auth = state.NewAuthStore(client, m, logger)
	app.cart = state.NewCartStore(client, app.auth, m, logger)
	app.catalog = service.NewCatalogService(client)
	app.browser = service.NewProductBrowser(app.catalog, m, logger)
	app.orders = service.NewOrderService(client, app.auth, app.cart, logger)
	app.admin = service.NewAdminService(client, app.auth)
	app.contact = service.NewContactService(client)

	return app, nil
}

func openSessionStore(ctx context.Context, cfg *config.Config) (session.Store, func(context.Context) error, error) {
	switch cfg.Session.Backend {
	case config.SessionBackendRedis:
		rdb, err := cache.NewRedisClient(ctx, &cfg.RedisConnect)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open redis session store: %w", err)
		}

		c := cache.NewRedisCache(rdb, cfg.Session.TTL)
		closer := func(context.Context) error { return c.Close() }

		return session.NewCacheStore(c, cfg.Session.Key, cfg.Session.TTL), closer, nil
	case config.SessionBackendMemory:
		return session.NewMemoryStore(), nil, nil
	default:
		return session.NewFileStore(cfg.Session.FilePath), nil, nil
	}
}

// restore loads the saved cookies into the client. A snapshot saved for a
// different backend is ignored, and a broken store only costs the login.
func (a *App) restore(ctx context.Context) {
	storeCtx, cancel := utils.WithStoreTimeout(ctx)
	defer cancel()

	snap, err := a.sessions.Load(storeCtx)
	if err != nil {
		logging.LoggerFromContext(ctx).Warn("Could not restore session", slog.String("error", err.Error()))
		return
	}

	if snap == nil || snap.BaseURL != a.client.BaseURL() {
		return
	}

	a.client.SetCookies(snap.HTTPCookies())
}

// ensureSession asks the server who owns the restored cookies and loads the
// cart when someone does.
func (a *App) ensureSession(ctx context.Context) {
	if a.sessionReady {
		return
	}

	a.sessionReady = true
	a.auth.Init(ctx)
	a.cart.Init(ctx)
}

func (a *App) markLoggedOut() {
	a.loggedOut = true
	a.client.ClearCookies()
}

// persist writes the jar back so the next invocation reuses the session.
func (a *App) persist(ctx context.Context) error {
	storeCtx, cancel := utils.WithStoreTimeout(ctx)
	defer cancel()

	cookies := a.client.Cookies()
	if a.loggedOut || len(cookies) == 0 {
		return a.sessions.Clear(storeCtx)
	}

	return a.sessions.Save(storeCtx, session.FromHTTPCookies(a.client.BaseURL(), cookies))
}

func (a *App) finish(ctx context.Context) error {
	var errs []error

	if err := a.persist(ctx); err != nil {
		errs = append(errs, err)
	}

	if a.sessionReady {
		a.cart.Dispose()
		a.auth.Dispose()
	}

	if err := a.metrics.WriteTextfile(a.cfg.Metrics.TextfilePath); err != nil {
		errs = append(errs, fmt.Errorf("failed to write metrics: %w", err))
	}

	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](ctx); err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}
