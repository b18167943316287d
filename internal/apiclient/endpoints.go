package apiclient

import "fmt"

// Paths are relative to the /api prefix of the backend.
const (
	PathCSRF         = "/products/auth/csrf/"
	PathAuthCheck    = "/products/auth/check/"
	PathLogin        = "/products/auth/login/"
	PathRegister     = "/products/auth/register/"
	PathLogout       = "/products/auth/logout/"
	PathProfile      = "/products/auth/profile/"
	PathAdminLogin   = "/products/auth/admin/login/"
	PathAdminCheck   = "/products/auth/admin/check/"
	PathCategories   = "/products/categories/"
	PathProducts     = "/products/"
	PathFeatured     = "/products/featured/"
	PathCart         = "/products/cart/"
	PathCartAdd      = "/products/cart/add/"
	PathCartClear    = "/products/cart/clear/"
	PathOrders       = "/products/orders/"
	PathOrderCreate  = "/products/orders/create/"
	PathAdminProduct = "/products/admin/products/"
	PathAdminCreate  = "/products/admin/products/create/"
	PathContact      = "/contact/"
)

func PathProduct(slug string) string {
	return fmt.Sprintf("/products/%s/", slug)
}

func PathCartItemUpdate(itemID int64) string {
	return fmt.Sprintf("/products/cart/items/%d/update/", itemID)
}

func PathCartItemRemove(itemID int64) string {
	return fmt.Sprintf("/products/cart/items/%d/remove/", itemID)
}

func PathOrder(orderID int64) string {
	return fmt.Sprintf("/products/orders/%d/", orderID)
}

func PathOrderCancel(orderID int64) string {
	return fmt.Sprintf("/products/orders/%d/cancel/", orderID)
}

func PathAdminUpdate(productID int64) string {
	return fmt.Sprintf("/products/admin/products/%d/update/", productID)
}

func PathAdminDelete(productID int64) string {
	return fmt.Sprintf("/products/admin/products/%d/delete/", productID)
}
