package models

import "github.com/shopspring/decimal"

const (
	MinCartQuantity = 1
	MaxCartQuantity = 99
)

type CartItem struct {
	ID              int64           `json:"id"`
	ProductID       int64           `json:"product_id"`
	ProductName     string          `json:"product_name"`
	ProductImage    string          `json:"product_image"`
	ProductPrice    decimal.Decimal `json:"product_price"`
	ProductDiscount int             `json:"product_discount"`
	DiscountedPrice decimal.Decimal `json:"discounted_price"`
	Quantity        int             `json:"quantity"`
	Subtotal        decimal.Decimal `json:"subtotal"`
}

// Cart mirrors the server cart. TotalItems and TotalPrice are computed by the
// server and are never recomputed locally.
type Cart struct {
	ID         int64           `json:"id,omitempty"`
	Items      []CartItem      `json:"items"`
	TotalItems int             `json:"total_items"`
	TotalPrice decimal.Decimal `json:"total_price"`
}

func (c *Cart) IsEmpty() bool {
	return c == nil || len(c.Items) == 0
}

// Item returns the line with the given id, if the cart holds it.
func (c *Cart) Item(itemID int64) (CartItem, bool) {
	if c == nil {
		return CartItem{}, false
	}

	for _, item := range c.Items {
		if item.ID == itemID {
			return item, true
		}
	}

	return CartItem{}, false
}

type AddItemRequest struct {
	ProductID int64 `json:"product_id" validate:"required,gt=0"`
	Quantity  int   `json:"quantity"   validate:"min=1,max=99"`
}

type UpdateQuantityRequest struct {
	Quantity int `json:"quantity" validate:"min=1,max=99"`
}

// CartResponse is the envelope returned by every cart mutation.
type CartResponse struct {
	Message string `json:"message"`
	Cart    *Cart  `json:"cart"`
}
