package models

import (
	"time"

	"github.com/microcosm-cc/bluemonday"
	"github.com/shopspring/decimal"
)

var plainText = bluemonday.StrictPolicy()

type Category struct {
	ID           int64  `json:"id"`
	Name         string `json:"name"`
	Slug         string `json:"slug"`
	Description  string `json:"description,omitempty"`
	ProductCount int    `json:"product_count"`
}

type Product struct {
	ID                 int64           `json:"id"`
	Slug               string          `json:"slug"`
	Name               string          `json:"name"`
	Description        string          `json:"description"`
	Price              decimal.Decimal `json:"price"`
	DiscountPercentage int             `json:"discount_percentage"`
	Image              string          `json:"image"`
	Image2             *string         `json:"image_2,omitempty"`
	Image3             *string         `json:"image_3,omitempty"`
	IsFeatured         bool            `json:"is_featured"`
	IsActive           *bool           `json:"is_active,omitempty"`
	Category           int64           `json:"category"`
	CategoryName       string          `json:"category_name,omitempty"`
	UzumLink           string          `json:"uzum_link"`
	YandexMarketLink   *string         `json:"yandex_market_link,omitempty"`
	CreatedAt          *time.Time      `json:"created_at,omitempty"`
	UpdatedAt          *time.Time      `json:"updated_at,omitempty"`
	SimilarProducts    []Product       `json:"similar_products,omitempty"`
}

// DiscountedPrice applies DiscountPercentage to Price, rounded to two places.
func (p *Product) DiscountedPrice() decimal.Decimal {
	if p.DiscountPercentage <= 0 {
		return p.Price
	}

	factor := decimal.NewFromInt(int64(100 - p.DiscountPercentage)).Div(decimal.NewFromInt(100))

	return p.Price.Mul(factor).Round(2)
}

func (p *Product) HasDiscount() bool {
	return p.DiscountPercentage > 0
}

// PlainDescription strips any markup the admin panel let through.
func (p *Product) PlainDescription() string {
	return plainText.Sanitize(p.Description)
}

// Images lists the non-empty image URLs in display order.
func (p *Product) Images() []string {
	images := make([]string, 0, 3)
	if p.Image != "" {
		images = append(images, p.Image)
	}

	for _, img := range []*string{p.Image2, p.Image3} {
		if img != nil && *img != "" {
			images = append(images, *img)
		}
	}

	return images
}

// ProductForm is the admin create/update payload. It is sent as multipart
// form data so image files can ride along.
type ProductForm struct {
	Name               string            `validate:"required,max=200"`
	Category           int64             `validate:"required,gt=0"`
	Description        string            `validate:"required"`
	Price              string            `validate:"required,numeric"`
	DiscountPercentage int               `validate:"min=0,max=100"`
	UzumLink           string            `validate:"required,url"`
	YandexMarketLink   string            `validate:"omitempty,url"`
	Images             map[string]string `validate:"dive,keys,oneof=image image_2 image_3,endkeys,required"`
	IsFeatured         bool
	IsActive           bool
}

// PartialProductForm carries only the fields an admin changed.
type PartialProductForm struct {
	Fields map[string]string
	Images map[string]string `validate:"dive,keys,oneof=image image_2 image_3,endkeys,required"`
}
