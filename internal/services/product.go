package service

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/aaravmahajanofficial/storefront/internal/apiclient"
	"github.com/aaravmahajanofficial/storefront/internal/errors"
	"github.com/aaravmahajanofficial/storefront/internal/models"
)

type SortOption string

const (
	SortDefault   SortOption = ""
	SortPriceAsc  SortOption = "price_asc"
	SortPriceDesc SortOption = "price_desc"
	SortNameAsc   SortOption = "name_asc"
	SortNameDesc  SortOption = "name_desc"
	SortNewest    SortOption = "newest"
	SortOldest    SortOption = "oldest"
)

var orderingBySort = map[SortOption]string{
	SortPriceAsc:  "price",
	SortPriceDesc: "-price",
	SortNameAsc:   "name",
	SortNameDesc:  "-name",
	SortNewest:    "-created_at",
	SortOldest:    "created_at",
}

// SortOptions lists the accepted sort values in menu order.
func SortOptions() []SortOption {
	return []SortOption{SortPriceAsc, SortPriceDesc, SortNameAsc, SortNameDesc, SortNewest, SortOldest}
}

func ParseSort(s string) (SortOption, error) {
	opt := SortOption(strings.TrimSpace(s))
	if opt == SortDefault {
		return SortDefault, nil
	}

	if _, ok := orderingBySort[opt]; !ok {
		return SortDefault, errors.AddValidationError("sort", fmt.Sprintf("unknown sort %q", s))
	}

	return opt, nil
}

// Ordering is the server ordering token for o, or "" for the server default.
func (o SortOption) Ordering() string {
	return orderingBySort[o]
}

// ProductQuery is the filter, search and sort state of the product listing.
type ProductQuery struct {
	Category string
	Search   string
	MinPrice string
	MaxPrice string
	SortBy   SortOption
}

// Params builds the listing query. Empty inputs are left out entirely so the
// server never sees a filter on the empty string.
func (q ProductQuery) Params() url.Values {
	params := url.Values{}

	if q.Category != "" {
		params.Set("category", q.Category)
	}

	if search := strings.TrimSpace(q.Search); search != "" {
		params.Set("search", search)
	}

	if q.MinPrice != "" {
		params.Set("min_price", q.MinPrice)
	}

	if q.MaxPrice != "" {
		params.Set("max_price", q.MaxPrice)
	}

	if ordering := q.SortBy.Ordering(); ordering != "" {
		params.Set("ordering", ordering)
	}

	return params
}

// ActiveFilterCount is the number shown on the filter badge.
func (q ProductQuery) ActiveFilterCount() int {
	count := 0

	for _, v := range []string{q.Category, q.Search, q.MinPrice, q.MaxPrice, string(q.SortBy)} {
		if v != "" {
			count++
		}
	}

	return count
}

func (q ProductQuery) HasActiveFilters() bool {
	return q.ActiveFilterCount() > 0
}

type CatalogService interface {
	Categories(ctx context.Context) ([]models.Category, error)
	Products(ctx context.Context, q ProductQuery) ([]models.Product, error)
	Featured(ctx context.Context) ([]models.Product, error)
	ProductBySlug(ctx context.Context, slug string) (*models.Product, error)
}

type catalogService struct {
	api apiclient.API
}

func NewCatalogService(api apiclient.API) CatalogService {
	return &catalogService{api: api}
}

func (s *catalogService) Categories(ctx context.Context) ([]models.Category, error) {
	return apiclient.GetList[models.Category](ctx, s.api, apiclient.PathCategories, nil)
}

func (s *catalogService) Products(ctx context.Context, q ProductQuery) ([]models.Product, error) {
	return apiclient.GetList[models.Product](ctx, s.api, apiclient.PathProducts, q.Params())
}

func (s *catalogService) Featured(ctx context.Context) ([]models.Product, error) {
	return apiclient.GetList[models.Product](ctx, s.api, apiclient.PathFeatured, nil)
}

func (s *catalogService) ProductBySlug(ctx context.Context, slug string) (*models.Product, error) {
	slug = strings.TrimSpace(slug)
	if slug == "" {
		return nil, errors.AddValidationError("slug", "must not be empty")
	}

	var product models.Product
	if err := s.api.Get(ctx, apiclient.PathProduct(url.PathEscape(slug)), nil, &product); err != nil {
		if errors.HasCode(err, errors.ErrCodeNotFound) {
			return nil, errors.NotFoundError("Product not found").WithError(err)
		}

		return nil, err
	}

	return &product, nil
}
