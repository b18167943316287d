package apiclient_test

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/aaravmahajanofficial/storefront/internal/apiclient"
	"github.com/aaravmahajanofficial/storefront/internal/config"
	appErrors "github.com/aaravmahajanofficial/storefront/internal/errors"
	"github.com/aaravmahajanofficial/storefront/internal/logging"
	"github.com/aaravmahajanofficial/storefront/internal/metrics"
	"github.com/aaravmahajanofficial/storefront/internal/models"
	"github.com/aaravmahajanofficial/storefront/internal/testutils"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newClient(t *testing.T, baseURL string) *apiclient.Client {
	t.Helper()

	client, err := apiclient.New(apiclient.Options{BaseURL: baseURL, Logger: quietLogger()})
	require.NoError(t, err)

	return client
}

func contact() models.ContactMessageRequest {
	return models.ContactMessageRequest{Name: "Bob", Phone: "+998901234567", Message: "Hello"}
}

func TestNew(t *testing.T) {
	t.Run("Rejects non http scheme", func(t *testing.T) {
		_, err := apiclient.New(apiclient.Options{BaseURL: "ftp://shop"})
		require.Error(t, err)
	})

	t.Run("Trims trailing slash", func(t *testing.T) {
		client, err := apiclient.New(apiclient.Options{BaseURL: "http://shop.local/"})
		require.NoError(t, err)
		assert.Equal(t, "http://shop.local", client.BaseURL())
	})
}

func TestCSRF(t *testing.T) {
	t.Run("GET never fetches a token", func(t *testing.T) {
		backend := testutils.NewFakeBackend(t)
		client := newClient(t, backend.URL())

		var cats []models.Category
		require.NoError(t, client.Get(t.Context(), apiclient.PathCategories, nil, &cats))

		assert.Len(t, cats, 2)
		assert.Equal(t, 0, backend.CSRFHits())
		assert.Empty(t, backend.RequestsTo("/api"+apiclient.PathCategories)[0].CSRF)
	})

	t.Run("Token is fetched once and reused", func(t *testing.T) {
		backend := testutils.NewFakeBackend(t)
		client := newClient(t, backend.URL())
		token := backend.CSRFToken()

		for range 3 {
			require.NoError(t, client.JSON(t.Context(), http.MethodPost, apiclient.PathContact, contact(), nil))
		}

		assert.Equal(t, 1, backend.CSRFHits())

		reqs := backend.RequestsTo("/api" + apiclient.PathContact)
		require.Len(t, reqs, 3)
		for _, r := range reqs {
			assert.Equal(t, token, r.CSRF)
		}
	})

	t.Run("Concurrent mutations share one fetch", func(t *testing.T) {
		backend := testutils.NewFakeBackend(t)
		client := newClient(t, backend.URL())

		var wg sync.WaitGroup
		errs := make(chan error, 10)

		for range 10 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				errs <- client.JSON(context.Background(), http.MethodPost, apiclient.PathContact, contact(), nil)
			}()
		}

		wg.Wait()
		close(errs)

		for err := range errs {
			assert.NoError(t, err)
		}

		assert.Equal(t, 1, backend.CSRFHits())
	})

	t.Run("Failed fetch sends no header and is retried", func(t *testing.T) {
		backend := testutils.NewFakeBackend(t)
		m := metrics.New()
		client, err := apiclient.New(apiclient.Options{BaseURL: backend.URL(), Logger: quietLogger(), Metrics: m})
		require.NoError(t, err)

		backend.SetFailCSRF(true)

		err = client.JSON(t.Context(), http.MethodPost, apiclient.PathContact, contact(), nil)
		require.Error(t, err)
		assert.True(t, appErrors.HasCode(err, appErrors.ErrCodeForbidden))
		assert.Empty(t, backend.RequestsTo("/api" + apiclient.PathContact)[0].CSRF)

		backend.SetFailCSRF(false)

		require.NoError(t, client.JSON(t.Context(), http.MethodPost, apiclient.PathContact, contact(), nil))
		assert.Equal(t, 2, backend.CSRFHits())

		expected := `
# HELP storefront_csrf_fetches_total CSRF token fetches by result.
# TYPE storefront_csrf_fetches_total counter
storefront_csrf_fetches_total{result="failure"} 1
storefront_csrf_fetches_total{result="success"} 1
`
		assert.NoError(t, testutil.GatherAndCompare(m.Registry, strings.NewReader(expected), "storefront_csrf_fetches_total"))
	})

	t.Run("Invalidate forces a refetch", func(t *testing.T) {
		backend := testutils.NewFakeBackend(t)
		client := newClient(t, backend.URL())

		login := models.LoginRequest{Username: "alice", Password: "wonderland"}
		require.NoError(t, client.JSON(t.Context(), http.MethodPost, apiclient.PathLogin, login, nil))

		// login rotated the token server side
		client.InvalidateCSRF()

		require.NoError(t, client.JSON(t.Context(), http.MethodPost, apiclient.PathContact, contact(), nil))
		assert.Equal(t, 2, backend.CSRFHits())
	})

	t.Run("Cancelled first caller does not fail other waiters", func(t *testing.T) {
		entered := make(chan struct{})
		release := make(chan struct{})
		var once sync.Once

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			once.Do(func() { close(entered) })
			<-release

			w.Header().Set("Content-Type", "application/json")
			_, _ = io.WriteString(w, `{"csrfToken":"shared"}`)
		}))
		t.Cleanup(srv.Close)

		client := newClient(t, srv.URL)

		first, cancel := context.WithCancel(context.Background())
		firstDone := make(chan string, 1)
		go func() { firstDone <- client.CSRFToken(first) }()

		<-entered

		secondDone := make(chan string, 1)
		go func() { secondDone <- client.CSRFToken(context.Background()) }()

		cancel()
		assert.Empty(t, <-firstDone)

		close(release)
		assert.Equal(t, "shared", <-secondDone)
		assert.Equal(t, "shared", client.CSRFToken(context.Background()))
	})
}

func TestSessionCookies(t *testing.T) {
	backend := testutils.NewFakeBackend(t)
	client := newClient(t, backend.URL())

	var auth models.AuthResponse
	login := models.LoginRequest{Username: "alice", Password: "wonderland"}
	require.NoError(t, client.JSON(t.Context(), http.MethodPost, apiclient.PathLogin, login, &auth))
	assert.Equal(t, "alice", auth.User.Username)

	var check models.SessionCheckResponse
	require.NoError(t, client.Get(t.Context(), apiclient.PathAuthCheck, nil, &check))
	assert.True(t, check.Authenticated)

	t.Run("Cookies restore a session in a new client", func(t *testing.T) {
		other := newClient(t, backend.URL())
		other.SetCookies(client.Cookies())

		var again models.SessionCheckResponse
		require.NoError(t, other.Get(t.Context(), apiclient.PathAuthCheck, nil, &again))
		assert.True(t, again.Authenticated)
		assert.Equal(t, "alice", again.User.Username)
	})

	t.Run("ClearCookies drops the session", func(t *testing.T) {
		client.ClearCookies()

		var after models.SessionCheckResponse
		require.NoError(t, client.Get(t.Context(), apiclient.PathAuthCheck, nil, &after))
		assert.False(t, after.Authenticated)
	})
}

func TestErrorMapping(t *testing.T) {
	backend := testutils.NewFakeBackend(t)
	client := newClient(t, backend.URL())

	t.Run("Field errors", func(t *testing.T) {
		req := models.RegisterRequest{Username: "alice", Email: "a@b.c", Password: "12345678", Password2: "87654321"}

		err := client.JSON(t.Context(), http.MethodPost, apiclient.PathRegister, req, nil)
		require.Error(t, err)

		appErr, ok := appErrors.IsAppError(err)
		require.True(t, ok)
		assert.Equal(t, appErrors.ErrCodeValidation, appErr.Code)
		assert.Equal(t, http.StatusBadRequest, appErr.StatusCode)
		assert.Equal(t, []string{"A user with that username already exists."}, appErr.Fields["username"])
		assert.Contains(t, appErr.Fields, "password")
	})

	t.Run("Error message", func(t *testing.T) {
		req := models.LoginRequest{Username: "alice", Password: "wrong"}

		err := client.JSON(t.Context(), http.MethodPost, apiclient.PathLogin, req, nil)
		require.Error(t, err)
		assert.True(t, appErrors.HasCode(err, appErrors.ErrCodeUnauthorized))
		assert.Equal(t, "Invalid username or password", err.Error())
	})

	t.Run("Not found", func(t *testing.T) {
		var p models.Product

		err := client.Get(t.Context(), apiclient.PathProduct("nope"), nil, &p)
		require.Error(t, err)
		assert.True(t, appErrors.HasCode(err, appErrors.ErrCodeNotFound))
		assert.Equal(t, "Not found.", err.Error())
	})

	t.Run("Server error", func(t *testing.T) {
		backend.FailPath(http.MethodGet, "/api"+apiclient.PathFeatured)

		_, err := client.GetRaw(t.Context(), apiclient.PathFeatured, nil)
		require.Error(t, err)

		appErr, ok := appErrors.IsAppError(err)
		require.True(t, ok)
		assert.Equal(t, appErrors.ErrCodeHTTP, appErr.Code)
		assert.Equal(t, http.StatusInternalServerError, appErr.StatusCode)
	})

	t.Run("Network error", func(t *testing.T) {
		dead := httptest.NewServer(http.NotFoundHandler())
		dead.Close()

		offline := newClient(t, dead.URL)

		_, err := offline.GetRaw(t.Context(), apiclient.PathCategories, nil)
		require.Error(t, err)
		assert.True(t, appErrors.HasCode(err, appErrors.ErrCodeNetwork))
	})

	t.Run("Undecodable body", func(t *testing.T) {
		var cats map[string]int

		err := client.Get(t.Context(), apiclient.PathCategories, nil, &cats)
		require.Error(t, err)
		assert.True(t, appErrors.HasCode(err, appErrors.ErrCodeDecode))
	})
}

func TestGetList(t *testing.T) {
	for _, paginate := range []bool{false, true} {
		backend := testutils.NewFakeBackend(t)
		backend.SetPaginate(paginate)
		client := newClient(t, backend.URL())

		products, err := apiclient.GetList[models.Product](t.Context(), client, apiclient.PathProducts, nil)
		require.NoError(t, err)
		assert.Len(t, products, 3, "paginate=%v", paginate)
	}
}

func TestMultipart(t *testing.T) {
	backend := testutils.NewFakeBackend(t)
	client := newClient(t, backend.URL())

	login := models.LoginRequest{Username: "admin", Password: "s3cret"}
	require.NoError(t, client.JSON(t.Context(), http.MethodPost, apiclient.PathAdminLogin, login, nil))
	client.InvalidateCSRF()

	image := filepath.Join(t.TempDir(), "bracelet.jpg")
	require.NoError(t, os.WriteFile(image, []byte("\xff\xd8\xff fake jpeg"), 0o600))

	form := &apiclient.MultipartForm{
		Fields: map[string]string{
			"name":        "Pearl Bracelet",
			"category":    "1",
			"description": "Pearls",
			"price":       "120000",
			"uzum_link":   "https://uzum.uz/pearl",
		},
		Files: map[string]string{"image": image},
	}

	var created models.Product
	require.NoError(t, client.Multipart(t.Context(), http.MethodPost, apiclient.PathAdminCreate, form, &created))

	assert.Equal(t, "Pearl Bracelet", created.Name)
	assert.Equal(t, "/media/products/bracelet.jpg", created.Image)

	reqs := backend.RequestsTo("/api" + apiclient.PathAdminCreate)
	require.Len(t, reqs, 1)
	assert.True(t, strings.HasPrefix(reqs[0].ContentType, "multipart/form-data; boundary="))

	t.Run("Missing file", func(t *testing.T) {
		bad := &apiclient.MultipartForm{Files: map[string]string{"image": "/does/not/exist.jpg"}}

		err := client.Multipart(t.Context(), http.MethodPost, apiclient.PathAdminCreate, bad, nil)
		require.Error(t, err)
		assert.True(t, appErrors.HasCode(err, appErrors.ErrCodeValidation))
	})
}

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(r *http.Request) (*http.Response, error) {
	return f(r)
}

func TestRequestHeaders(t *testing.T) {
	var seen []*http.Request

	transport := roundTripFunc(func(r *http.Request) (*http.Response, error) {
		seen = append(seen, r)

		return &http.Response{
			StatusCode: http.StatusOK,
			Header:     http.Header{"Content-Type": {"application/json"}},
			Body:       io.NopCloser(strings.NewReader(`{"csrfToken":"abc"}`)),
			Request:    r,
		}, nil
	})

	client, err := apiclient.New(apiclient.Options{
		BaseURL:   "http://shop.local",
		UserAgent: "storefront-test",
		Transport: transport,
		Logger:    quietLogger(),
	})
	require.NoError(t, err)

	require.NoError(t, client.JSON(t.Context(), http.MethodPost, apiclient.PathContact, contact(), nil))
	require.Len(t, seen, 2)

	post := seen[1]
	assert.Equal(t, "/api/contact/", post.URL.Path)
	assert.Equal(t, "abc", post.Header.Get("X-CSRFToken"))
	assert.Equal(t, "application/json", post.Header.Get("Content-Type"))
	assert.Equal(t, "storefront-test", post.Header.Get("User-Agent"))
	assert.Equal(t, "http://shop.local/", post.Header.Get("Referer"))
	assert.NotEmpty(t, post.Header.Get("X-Request-ID"))
	assert.NotEqual(t, seen[0].Header.Get("X-Request-ID"), post.Header.Get("X-Request-ID"))
}

func TestRequestLogsCarryInvocation(t *testing.T) {
	backend := testutils.NewFakeBackend(t)

	var base, scoped bytes.Buffer
	client, err := apiclient.New(apiclient.Options{
		BaseURL: backend.URL(),
		Logger:  logging.New(config.Log{Level: "debug"}, &base),
	})
	require.NoError(t, err)

	ctx := logging.WithCommand(context.Background(), logging.New(config.Log{Level: "debug"}, &scoped), "products show")

	var product models.Product
	err = client.Get(ctx, apiclient.PathProduct("no-such-thing"), nil, &product)
	require.Error(t, err)

	assert.Empty(t, base.String())

	out := scoped.String()
	assert.Contains(t, out, `"msg":"Outgoing request"`)
	assert.Contains(t, out, `"msg":"API Error"`)
	assert.Contains(t, out, `"command":"products show"`)
	assert.Contains(t, out, `"invocation_id"`)
}
