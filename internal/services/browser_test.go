package service_test

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	appErrors "github.com/aaravmahajanofficial/storefront/internal/errors"
	"github.com/aaravmahajanofficial/storefront/internal/metrics"
	"github.com/aaravmahajanofficial/storefront/internal/models"
	service "github.com/aaravmahajanofficial/storefront/internal/services"
	"github.com/aaravmahajanofficial/storefront/internal/testutils"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// gatedCatalog holds back Products calls whose search has a gate.
type gatedCatalog struct {
	service.CatalogService

	mu      sync.Mutex
	gates   map[string]chan struct{}
	started chan string
	queries []service.ProductQuery
}

func newGatedCatalog() *gatedCatalog {
	return &gatedCatalog{gates: map[string]chan struct{}{}, started: make(chan string, 10)}
}

func (c *gatedCatalog) gate(search string) chan struct{} {
	c.mu.Lock()
	defer c.mu.Unlock()

	ch := make(chan struct{})
	c.gates[search] = ch

	return ch
}

func (c *gatedCatalog) Products(ctx context.Context, q service.ProductQuery) ([]models.Product, error) {
	c.mu.Lock()
	c.queries = append(c.queries, q)
	gate := c.gates[q.Search]
	c.mu.Unlock()

	c.started <- q.Search

	if gate != nil {
		<-gate
	}

	if q.Search == "broken" {
		return nil, appErrors.NetworkError("Could not reach the store server")
	}

	return []models.Product{{ID: int64(len(q.Search)), Name: "result for " + q.Search}}, nil
}

func TestProductBrowserDropsStaleResponses(t *testing.T) {
	catalog := newGatedCatalog()
	m := metrics.New()
	browser := service.NewProductBrowser(catalog, m, quietLogger())

	release := catalog.gate("go")

	applied := make(chan bool, 1)
	go func() {
		applied <- browser.SetSearch(context.Background(), "go")
	}()

	// wait until the slow query is in flight before superseding it
	require.Equal(t, "go", <-catalog.started)

	assert.True(t, browser.SetSearch(context.Background(), "gold"))
	<-catalog.started

	close(release)
	assert.False(t, <-applied, "superseded response must be dropped")

	snap := browser.Snapshot()
	assert.Equal(t, "gold", snap.Query.Search)
	require.Len(t, snap.Products, 1)
	assert.Equal(t, "result for gold", snap.Products[0].Name)
	assert.False(t, snap.Loading)

	expected := `
# HELP storefront_stale_product_queries_total Product query responses dropped because a newer query was issued.
# TYPE storefront_stale_product_queries_total counter
storefront_stale_product_queries_total 1
`
	assert.NoError(t, testutil.GatherAndCompare(m.Registry, strings.NewReader(expected), "storefront_stale_product_queries_total"))
}

func TestProductBrowserSetters(t *testing.T) {
	catalog := newGatedCatalog()
	browser := service.NewProductBrowser(catalog, nil, quietLogger())
	ctx := context.Background()

	var snaps []service.BrowseSnapshot
	browser.Subscribe(func(s service.BrowseSnapshot) { snaps = append(snaps, s) })

	assert.True(t, browser.SetCategory(ctx, "rings"))
	assert.True(t, browser.SetPriceRange(ctx, "100", ""))
	assert.True(t, browser.SetSort(ctx, service.SortNewest))
	assert.Equal(t, 3, browser.ActiveFilterCount())

	// every change is a full query with the accumulated filters
	require.Len(t, catalog.queries, 3)
	assert.Equal(t, service.ProductQuery{Category: "rings", MinPrice: "100", SortBy: service.SortNewest}, catalog.queries[2])

	// loading then result for each change
	require.Len(t, snaps, 6)
	assert.True(t, snaps[4].Loading)
	assert.False(t, snaps[5].Loading)

	assert.True(t, browser.Reset(ctx))
	assert.Equal(t, service.ProductQuery{}, catalog.queries[3])
	assert.Equal(t, 0, browser.ActiveFilterCount())

	t.Run("Failure empties the listing", func(t *testing.T) {
		assert.True(t, browser.SetSearch(ctx, "broken"))

		snap := browser.Snapshot()
		assert.Empty(t, snap.Products)
		assert.NotNil(t, snap.Products)
		assert.True(t, appErrors.HasCode(snap.Err, appErrors.ErrCodeNetwork))

		assert.True(t, browser.Refresh(ctx))
		require.Len(t, catalog.queries, 6)
		assert.Equal(t, "broken", catalog.queries[5].Search)
	})
}

func TestProductBrowserAgainstBackend(t *testing.T) {
	backend := testutils.NewFakeBackend(t)
	backend.DelaySearch("ring", 150*time.Millisecond)

	m := metrics.New()
	browser := service.NewProductBrowser(service.NewCatalogService(newClient(t, backend)), m, quietLogger())

	var wg sync.WaitGroup
	wg.Add(1)

	go func() {
		defer wg.Done()
		browser.SetSearch(context.Background(), "ring")
	}()

	// let the slow request reach the server
	require.Eventually(t, func() bool {
		return len(backend.RequestsTo("/api/products/")) == 1
	}, time.Second, 5*time.Millisecond)

	browser.SetSearch(context.Background(), "mug")
	wg.Wait()

	snap := browser.Snapshot()
	require.Len(t, snap.Products, 1)
	assert.Equal(t, "cat-mug", snap.Products[0].Slug)
}
