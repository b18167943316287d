package state_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"testing"

	"github.com/aaravmahajanofficial/storefront/internal/apiclient"
	"github.com/aaravmahajanofficial/storefront/internal/apiclient/mocks"
	appErrors "github.com/aaravmahajanofficial/storefront/internal/errors"
	"github.com/aaravmahajanofficial/storefront/internal/metrics"
	"github.com/aaravmahajanofficial/storefront/internal/models"
	"github.com/aaravmahajanofficial/storefront/internal/state"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var alice = &models.User{ID: 1, Username: "alice", Email: "alice@example.com", FirstName: "Alice"}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func setupAuth() (*mocks.API, *state.AuthStore) {
	api := new(mocks.API)
	return api, state.NewAuthStore(api, metrics.New(), quietLogger())
}

func loginAs(t *testing.T, api *mocks.API, store *state.AuthStore, user *models.User) {
	t.Helper()

	api.On("JSON", mock.Anything, http.MethodPost, apiclient.PathLogin, mock.Anything, mock.Anything).
		Return(nil, models.AuthResponse{User: user, Message: "Logged in"}).Once()
	api.On("InvalidateCSRF").Return().Once()

	require.True(t, store.Login(context.Background(), user.Username, "pw").Success)
}

func TestAuthInit(t *testing.T) {
	t.Run("Authenticated session", func(t *testing.T) {
		api, store := setupAuth()
		var seen []state.AuthSnapshot
		store.Subscribe(func(s state.AuthSnapshot) { seen = append(seen, s) })

		api.On("Get", mock.Anything, apiclient.PathAuthCheck, mock.Anything, mock.Anything).
			Return(nil, models.SessionCheckResponse{Authenticated: true, User: alice}).Once()

		store.Init(context.Background())

		require.Len(t, seen, 2)
		assert.True(t, seen[0].Loading)
		assert.False(t, seen[1].Loading)
		assert.Equal(t, "alice", seen[1].User.Username)
		assert.True(t, store.IsAuthenticated())
		api.AssertExpectations(t)
	})

	t.Run("Network failure is logged out", func(t *testing.T) {
		api, store := setupAuth()

		api.On("Get", mock.Anything, apiclient.PathAuthCheck, mock.Anything, mock.Anything).
			Return(appErrors.NetworkError("Could not reach the store server")).Once()

		store.Init(context.Background())

		snap := store.Snapshot()
		assert.False(t, snap.Loading)
		assert.False(t, snap.Authenticated())
	})

	t.Run("Authenticated flag without user", func(t *testing.T) {
		api, store := setupAuth()

		api.On("Get", mock.Anything, apiclient.PathAuthCheck, mock.Anything, mock.Anything).
			Return(nil, models.SessionCheckResponse{Authenticated: true}).Once()

		assert.False(t, store.CheckSession(context.Background()))
	})
}

func TestAuthLogin(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		api, store := setupAuth()
		notified := 0
		store.Subscribe(func(state.AuthSnapshot) { notified++ })

		loginAs(t, api, store, alice)

		assert.Equal(t, 1, notified)
		assert.Equal(t, alice, store.User())
		api.AssertExpectations(t)
	})

	t.Run("Server rejects credentials", func(t *testing.T) {
		api, store := setupAuth()

		api.On("JSON", mock.Anything, http.MethodPost, apiclient.PathLogin, mock.Anything, mock.Anything).
			Return(appErrors.UnauthorizedError("Invalid username or password")).Once()

		res := store.Login(context.Background(), "alice", "bad")

		assert.False(t, res.Success)
		assert.Equal(t, "Invalid username or password", res.Error)
		assert.False(t, store.IsAuthenticated())
		api.AssertNotCalled(t, "InvalidateCSRF")
	})

	t.Run("Empty password never reaches the server", func(t *testing.T) {
		api, store := setupAuth()

		res := store.Login(context.Background(), "alice", "")

		assert.False(t, res.Success)
		assert.Contains(t, res.Errors, "password")
		api.AssertNotCalled(t, "JSON", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Failure keeps the previous user", func(t *testing.T) {
		api, store := setupAuth()
		loginAs(t, api, store, alice)

		api.On("JSON", mock.Anything, http.MethodPost, apiclient.PathLogin, mock.Anything, mock.Anything).
			Return(appErrors.UnauthorizedError("Invalid username or password")).Once()

		res := store.Login(context.Background(), "bob", "bad")

		assert.False(t, res.Success)
		assert.Equal(t, "alice", store.User().Username)
	})
}

func TestAuthRegister(t *testing.T) {
	valid := models.RegisterRequest{Username: "bob", Email: "bob@example.com", Password: "password1", Password2: "password1"}

	t.Run("Field errors from server", func(t *testing.T) {
		api, store := setupAuth()
		serverErr := appErrors.ValidationError("Validation failed").
			WithFields(map[string][]string{"username": {"A user with that username already exists."}})

		api.On("JSON", mock.Anything, http.MethodPost, apiclient.PathRegister, valid, mock.Anything).
			Return(serverErr).Once()

		res := store.Register(context.Background(), valid)

		assert.False(t, res.Success)
		assert.Equal(t, []string{"A user with that username already exists."}, res.Errors["username"])
		assert.False(t, store.IsAuthenticated())
	})

	t.Run("Local validation", func(t *testing.T) {
		api, store := setupAuth()
		bad := valid
		bad.Email = "bob-at-example"

		res := store.Register(context.Background(), bad)

		assert.False(t, res.Success)
		assert.Contains(t, res.Errors, "email")
		api.AssertNotCalled(t, "JSON", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Success", func(t *testing.T) {
		api, store := setupAuth()
		bob := &models.User{ID: 7, Username: "bob"}

		api.On("JSON", mock.Anything, http.MethodPost, apiclient.PathRegister, valid, mock.Anything).
			Return(nil, models.AuthResponse{User: bob, Message: "Registration successful"}).Once()
		api.On("InvalidateCSRF").Return().Once()

		res := store.Register(context.Background(), valid)

		assert.True(t, res.Success)
		assert.Equal(t, "Registration successful", res.Message)
		assert.Equal(t, int64(7), store.User().ID)
	})
}

func TestAuthLogout(t *testing.T) {
	t.Run("Network failure still logs out", func(t *testing.T) {
		api, store := setupAuth()
		loginAs(t, api, store, alice)

		var last state.AuthSnapshot
		store.Subscribe(func(s state.AuthSnapshot) { last = s })

		api.On("JSON", mock.Anything, http.MethodPost, apiclient.PathLogout, nil, nil).
			Return(appErrors.NetworkError("Could not reach the store server").WithError(errors.New("dial tcp"))).Once()
		api.On("InvalidateCSRF").Return().Once()

		res := store.Logout(context.Background())

		assert.False(t, res.Success)
		assert.False(t, store.IsAuthenticated())
		assert.False(t, last.Authenticated())
		api.AssertExpectations(t)
	})

	t.Run("Success", func(t *testing.T) {
		api, store := setupAuth()
		loginAs(t, api, store, alice)

		api.On("JSON", mock.Anything, http.MethodPost, apiclient.PathLogout, nil, nil).Return(nil).Once()
		api.On("InvalidateCSRF").Return().Once()

		assert.True(t, store.Logout(context.Background()).Success)
		assert.Nil(t, store.User())
	})
}

func TestAuthUpdateProfile(t *testing.T) {
	t.Run("Requires login", func(t *testing.T) {
		api, store := setupAuth()

		res := store.UpdateProfile(context.Background(), models.UpdateProfileRequest{FirstName: "Al"})

		assert.False(t, res.Success)
		assert.True(t, appErrors.HasCode(res.Err, appErrors.ErrCodeAuthRequired))
		api.AssertNotCalled(t, "JSON", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Updates the cached user", func(t *testing.T) {
		api, store := setupAuth()
		loginAs(t, api, store, alice)

		updated := *alice
		updated.FirstName = "Alicia"

		api.On("JSON", mock.Anything, http.MethodPut, apiclient.PathProfile, mock.Anything, mock.Anything).
			Return(nil, models.AuthResponse{User: &updated, Message: "Profile updated"}).Once()

		res := store.UpdateProfile(context.Background(), models.UpdateProfileRequest{FirstName: "Alicia"})

		assert.True(t, res.Success)
		assert.Equal(t, "Alicia", store.User().FirstName)
	})

	t.Run("Server rejection leaves state", func(t *testing.T) {
		api, store := setupAuth()
		loginAs(t, api, store, alice)

		api.On("JSON", mock.Anything, http.MethodPut, apiclient.PathProfile, mock.Anything, mock.Anything).
			Return(appErrors.ValidationError("Validation failed").WithFields(map[string][]string{"email": {"Enter a valid email address."}})).Once()

		res := store.UpdateProfile(context.Background(), models.UpdateProfileRequest{FirstName: "X"})

		assert.False(t, res.Success)
		assert.Contains(t, res.Errors, "email")
		assert.Equal(t, "Alice", store.User().FirstName)
	})
}
