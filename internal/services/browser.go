package service

import (
	"context"
	"log/slog"
	"sync"

	"github.com/aaravmahajanofficial/storefront/internal/metrics"
	"github.com/aaravmahajanofficial/storefront/internal/models"
	"github.com/aaravmahajanofficial/storefront/internal/state"
)

// BrowseSnapshot is the listing state after a query was applied.
type BrowseSnapshot struct {
	Query    ProductQuery
	Products []models.Product
	Err      error
	Loading  bool
}

// ProductBrowser owns the product listing. Every filter change issues a fresh
// query tagged with a sequence number; a response is applied only while its
// number is still the latest issued, so a slow superseded query can never
// overwrite a newer result.
type ProductBrowser struct {
	catalog CatalogService
	metrics *metrics.Metrics
	logger  *slog.Logger

	mu       sync.Mutex
	query    ProductQuery
	issued   uint64
	products []models.Product
	err      error
	loading  bool

	subject state.Subject[BrowseSnapshot]
}

func NewProductBrowser(catalog CatalogService, m *metrics.Metrics, logger *slog.Logger) *ProductBrowser {
	if logger == nil {
		logger = slog.Default()
	}

	return &ProductBrowser{catalog: catalog, metrics: m, logger: logger, products: []models.Product{}}
}

func (b *ProductBrowser) Subscribe(fn func(BrowseSnapshot)) func() {
	return b.subject.Subscribe(fn)
}

func (b *ProductBrowser) Snapshot() BrowseSnapshot {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.snapshotLocked()
}

func (b *ProductBrowser) snapshotLocked() BrowseSnapshot {
	return BrowseSnapshot{
		Query:    b.query,
		Products: append([]models.Product{}, b.products...),
		Err:      b.err,
		Loading:  b.loading,
	}
}

func (b *ProductBrowser) Query() ProductQuery {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.query
}

func (b *ProductBrowser) ActiveFilterCount() int {
	return b.Query().ActiveFilterCount()
}

// Each setter re-queries and reports whether its response was applied.

func (b *ProductBrowser) SetCategory(ctx context.Context, slug string) bool {
	return b.update(ctx, func(q *ProductQuery) { q.Category = slug })
}

func (b *ProductBrowser) SetSearch(ctx context.Context, search string) bool {
	return b.update(ctx, func(q *ProductQuery) { q.Search = search })
}

func (b *ProductBrowser) SetPriceRange(ctx context.Context, minPrice, maxPrice string) bool {
	return b.update(ctx, func(q *ProductQuery) {
		q.MinPrice = minPrice
		q.MaxPrice = maxPrice
	})
}

func (b *ProductBrowser) SetSort(ctx context.Context, sort SortOption) bool {
	return b.update(ctx, func(q *ProductQuery) { q.SortBy = sort })
}

// Apply replaces the whole query at once.
func (b *ProductBrowser) Apply(ctx context.Context, query ProductQuery) bool {
	return b.update(ctx, func(q *ProductQuery) { *q = query })
}

func (b *ProductBrowser) Reset(ctx context.Context) bool {
	return b.update(ctx, func(q *ProductQuery) { *q = ProductQuery{} })
}

func (b *ProductBrowser) Refresh(ctx context.Context) bool {
	return b.update(ctx, func(*ProductQuery) {})
}

func (b *ProductBrowser) update(ctx context.Context, change func(*ProductQuery)) bool {
	b.mu.Lock()
	change(&b.query)
	b.issued++
	seq := b.issued
	query := b.query
	b.loading = true
	snap := b.snapshotLocked()
	b.mu.Unlock()

	b.subject.Notify(snap)

	products, err := b.catalog.Products(ctx, query)

	b.mu.Lock()
	if seq != b.issued {
		b.mu.Unlock()

		b.metrics.StaleQueryDropped()
		b.logger.Debug("Dropped stale product query response",
			slog.Uint64("sequence", seq),
			slog.String("search", query.Search),
		)

		return false
	}

	b.loading = false
	b.err = err

	if err != nil {
		b.logger.Warn("Product query failed", slog.String("error", err.Error()))
		b.products = []models.Product{}
	} else {
		b.products = products
	}

	snap = b.snapshotLocked()
	b.mu.Unlock()

	b.subject.Notify(snap)

	return true
}
