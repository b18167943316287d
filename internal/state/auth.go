package state

import (
	"context"
	"log/slog"
	"net/http"
	"sync"

	"github.com/aaravmahajanofficial/storefront/internal/apiclient"
	appErrors "github.com/aaravmahajanofficial/storefront/internal/errors"
	"github.com/aaravmahajanofficial/storefront/internal/metrics"
	"github.com/aaravmahajanofficial/storefront/internal/models"
	"github.com/aaravmahajanofficial/storefront/internal/utils"
	"github.com/go-playground/validator/v10"
)

const authStoreName = "auth"

// AuthSnapshot is the value subscribers receive. User is nil when logged out.
type AuthSnapshot struct {
	Loading bool
	User    *models.User
}

func (s AuthSnapshot) Authenticated() bool {
	return s.User != nil
}

type AuthStore struct {
	api      apiclient.API
	metrics  *metrics.Metrics
	logger   *slog.Logger
	validate *validator.Validate

	mu      sync.RWMutex
	user    *models.User
	loading bool

	subject Subject[AuthSnapshot]
}

func NewAuthStore(api apiclient.API, m *metrics.Metrics, logger *slog.Logger) *AuthStore {
	if logger == nil {
		logger = slog.Default()
	}

	return &AuthStore{
		api:      api,
		metrics:  m,
		logger:   logger.With(slog.String("store", authStoreName)),
		validate: utils.NewValidator(),
	}
}

// Init resolves the session once at startup.
func (s *AuthStore) Init(ctx context.Context) {
	s.mu.Lock()
	s.loading = true
	s.mu.Unlock()

	s.notify()

	s.CheckSession(ctx)
}

// Dispose drops every subscriber. The store is unusable for observation
// afterwards but its operations still work.
func (s *AuthStore) Dispose() {
	s.subject.Close()
}

func (s *AuthStore) Subscribe(fn func(AuthSnapshot)) func() {
	return s.subject.Subscribe(fn)
}

func (s *AuthStore) Snapshot() AuthSnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return AuthSnapshot{Loading: s.loading, User: copyUser(s.user)}
}

func (s *AuthStore) IsAuthenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.user != nil
}

// User returns a copy of the session owner, or nil.
func (s *AuthStore) User() *models.User {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return copyUser(s.user)
}

// CheckSession asks the server who owns the session cookie. Any failure,
// network included, leaves the store logged out.
func (s *AuthStore) CheckSession(ctx context.Context) bool {
	var resp models.SessionCheckResponse

	err := s.api.Get(ctx, apiclient.PathAuthCheck, nil, &resp)
	if err != nil {
		s.logger.Warn("Session check failed, treating as logged out", slog.String("error", err.Error()))
	}

	var user *models.User
	if err == nil && resp.Authenticated && resp.User != nil {
		user = resp.User
	}

	s.metrics.StoreOp(authStoreName, "check", err == nil)
	s.set(user, false)

	return user != nil
}

func (s *AuthStore) Login(ctx context.Context, username, password string) models.Result {
	return s.login(ctx, "login", apiclient.PathLogin, username, password)
}

// AdminLogin authenticates against the staff-only endpoint. Non-staff
// accounts are refused by the server.
func (s *AuthStore) AdminLogin(ctx context.Context, username, password string) models.Result {
	return s.login(ctx, "admin_login", apiclient.PathAdminLogin, username, password)
}

func (s *AuthStore) login(ctx context.Context, op, path, username, password string) models.Result {
	req := models.LoginRequest{Username: username, Password: password}

	if err := utils.ValidateStruct(s.validate, &req); err != nil {
		s.metrics.StoreOp(authStoreName, op, false)
		return models.Failed(err, "Login failed")
	}

	var resp models.AuthResponse
	if err := s.api.JSON(ctx, http.MethodPost, path, req, &resp); err != nil {
		s.metrics.StoreOp(authStoreName, op, false)
		return models.Failed(err, "Login failed")
	}

	if resp.User == nil {
		s.metrics.StoreOp(authStoreName, op, false)
		return models.Failed(appErrors.DecodeError("Login response did not include a user"), "Login failed")
	}

	s.afterTransition()
	s.metrics.StoreOp(authStoreName, op, true)
	s.set(resp.User, false)

	return models.OK(messageOr(resp.Message, "Login successful"))
}

func (s *AuthStore) Register(ctx context.Context, req models.RegisterRequest) models.Result {
	if err := utils.ValidateStruct(s.validate, &req); err != nil {
		s.metrics.StoreOp(authStoreName, "register", false)
		return models.Failed(err, "Registration failed")
	}

	var resp models.AuthResponse
	if err := s.api.JSON(ctx, http.MethodPost, apiclient.PathRegister, req, &resp); err != nil {
		s.metrics.StoreOp(authStoreName, "register", false)
		return models.Failed(err, "Registration failed")
	}

	if resp.User == nil {
		s.metrics.StoreOp(authStoreName, "register", false)
		return models.Failed(appErrors.DecodeError("Registration response did not include a user"), "Registration failed")
	}

	s.afterTransition()
	s.metrics.StoreOp(authStoreName, "register", true)
	s.set(resp.User, false)

	return models.OK(messageOr(resp.Message, "Registration successful"))
}

// Logout always ends logged out locally, whatever the server answered.
func (s *AuthStore) Logout(ctx context.Context) models.Result {
	err := s.api.JSON(ctx, http.MethodPost, apiclient.PathLogout, nil, nil)

	s.afterTransition()
	s.metrics.StoreOp(authStoreName, "logout", err == nil)
	s.set(nil, false)

	if err != nil {
		s.logger.Warn("Logout request failed, local session cleared anyway", slog.String("error", err.Error()))
		return models.Failed(err, "Logout failed")
	}

	return models.OK("Logged out")
}

func (s *AuthStore) UpdateProfile(ctx context.Context, req models.UpdateProfileRequest) models.Result {
	if !s.IsAuthenticated() {
		return models.Failed(appErrors.AuthRequiredError("Please log in to update your profile"), "Profile update failed")
	}

	if err := utils.ValidateStruct(s.validate, &req); err != nil {
		s.metrics.StoreOp(authStoreName, "update_profile", false)
		return models.Failed(err, "Profile update failed")
	}

	var resp models.AuthResponse
	if err := s.api.JSON(ctx, http.MethodPut, apiclient.PathProfile, req, &resp); err != nil {
		s.metrics.StoreOp(authStoreName, "update_profile", false)
		return models.Failed(err, "Profile update failed")
	}

	s.metrics.StoreOp(authStoreName, "update_profile", true)

	if resp.User != nil {
		s.set(resp.User, false)
	}

	return models.OK(messageOr(resp.Message, "Profile updated"))
}

// afterTransition drops the cached CSRF token; Django rotates it whenever
// the session owner changes.
func (s *AuthStore) afterTransition() {
	s.api.InvalidateCSRF()
}

func (s *AuthStore) set(user *models.User, loading bool) {
	s.mu.Lock()
	s.user = copyUser(user)
	s.loading = loading
	s.mu.Unlock()

	s.notify()
}

func (s *AuthStore) notify() {
	s.subject.Notify(s.Snapshot())
}

func copyUser(u *models.User) *models.User {
	if u == nil {
		return nil
	}

	c := *u

	return &c
}

func messageOr(message, fallback string) string {
	if message != "" {
		return message
	}

	return fallback
}
