package service

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"

	"github.com/aaravmahajanofficial/storefront/internal/apiclient"
	"github.com/aaravmahajanofficial/storefront/internal/errors"
	"github.com/aaravmahajanofficial/storefront/internal/models"
	"github.com/aaravmahajanofficial/storefront/internal/utils"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

// productFormFields are the multipart fields the admin endpoints accept
// besides the image slots.
var productFormFields = map[string]bool{
	"name":                true,
	"category":            true,
	"description":         true,
	"price":               true,
	"discount_percentage": true,
	"uzum_link":           true,
	"yandex_market_link":  true,
	"is_featured":         true,
	"is_active":           true,
}

// AdminAuth is the part of the auth store the admin panel logs in through.
type AdminAuth interface {
	AdminLogin(ctx context.Context, username, password string) models.Result
}

type AdminService interface {
	Login(ctx context.Context, username, password string) models.Result
	Check(ctx context.Context) (*models.User, error)
	ListProducts(ctx context.Context, params url.Values) ([]models.Product, error)
	CreateProduct(ctx context.Context, form models.ProductForm) (*models.Product, models.Result)
	UpdateProduct(ctx context.Context, productID int64, form models.PartialProductForm) (*models.Product, models.Result)
	DeleteProduct(ctx context.Context, productID int64) models.Result
}

type adminService struct {
	api      apiclient.API
	auth     AdminAuth
	validate *validator.Validate
}

func NewAdminService(api apiclient.API, auth AdminAuth) AdminService {
	return &adminService{api: api, auth: auth, validate: utils.NewValidator()}
}

func (s *adminService) Login(ctx context.Context, username, password string) models.Result {
	return s.auth.AdminLogin(ctx, username, password)
}

// Check returns the staff user owning the session, or nil when the session
// is anonymous or not staff.
func (s *adminService) Check(ctx context.Context) (*models.User, error) {
	var resp models.SessionCheckResponse
	if err := s.api.Get(ctx, apiclient.PathAdminCheck, nil, &resp); err != nil {
		return nil, err
	}

	if !resp.Authenticated || resp.User == nil {
		return nil, nil
	}

	return resp.User, nil
}

func (s *adminService) ListProducts(ctx context.Context, params url.Values) ([]models.Product, error) {
	return apiclient.GetList[models.Product](ctx, s.api, apiclient.PathAdminProduct, params)
}

func (s *adminService) CreateProduct(ctx context.Context, form models.ProductForm) (*models.Product, models.Result) {
	if err := utils.ValidateStruct(s.validate, &form); err != nil {
		return nil, models.Failed(err, "Failed to create product")
	}

	if err := checkPrice(form.Price); err != nil {
		return nil, models.Failed(err, "Failed to create product")
	}

	if _, ok := form.Images["image"]; !ok {
		return nil, models.Failed(errors.AddValidationError("image", "A main image is required."), "Failed to create product")
	}

	fields := map[string]string{
		"name":                form.Name,
		"category":            strconv.FormatInt(form.Category, 10),
		"description":         form.Description,
		"price":               form.Price,
		"discount_percentage": strconv.Itoa(form.DiscountPercentage),
		"uzum_link":           form.UzumLink,
		"is_featured":         strconv.FormatBool(form.IsFeatured),
		"is_active":           strconv.FormatBool(form.IsActive),
	}

	if form.YandexMarketLink != "" {
		fields["yandex_market_link"] = form.YandexMarketLink
	}

	var product models.Product
	body := &apiclient.MultipartForm{Fields: fields, Files: form.Images}

	if err := s.api.Multipart(ctx, http.MethodPost, apiclient.PathAdminCreate, body, &product); err != nil {
		return nil, models.Failed(err, "Failed to create product")
	}

	return &product, models.OK("Product created")
}

// UpdateProduct sends only the changed fields as a multipart PATCH.
func (s *adminService) UpdateProduct(ctx context.Context, productID int64, form models.PartialProductForm) (*models.Product, models.Result) {
	if len(form.Fields) == 0 && len(form.Images) == 0 {
		return nil, models.Failed(errors.ValidationError("Nothing to update"), "Failed to update product")
	}

	if err := utils.ValidateStruct(s.validate, &form); err != nil {
		return nil, models.Failed(err, "Failed to update product")
	}

	if err := checkPartial(form.Fields); err != nil {
		return nil, models.Failed(err, "Failed to update product")
	}

	var product models.Product
	body := &apiclient.MultipartForm{Fields: form.Fields, Files: form.Images}

	if err := s.api.Multipart(ctx, http.MethodPatch, apiclient.PathAdminUpdate(productID), body, &product); err != nil {
		return nil, models.Failed(err, "Failed to update product")
	}

	return &product, models.OK("Product updated")
}

func (s *adminService) DeleteProduct(ctx context.Context, productID int64) models.Result {
	if err := s.api.JSON(ctx, http.MethodDelete, apiclient.PathAdminDelete(productID), nil, nil); err != nil {
		return models.Failed(err, "Failed to delete product")
	}

	return models.OK("Product deleted")
}

func checkPrice(price string) error {
	d, err := decimal.NewFromString(strings.TrimSpace(price))
	if err != nil || !d.IsPositive() {
		return errors.AddValidationError("price", "Price must be a positive number.")
	}

	return nil
}

func checkPartial(fields map[string]string) error {
	unknown := make([]string, 0)
	for k := range fields {
		if !productFormFields[k] {
			unknown = append(unknown, k)
		}
	}

	if len(unknown) > 0 {
		sort.Strings(unknown)
		return errors.AddValidationError(unknown[0], fmt.Sprintf("unknown product field (allowed: %s)", strings.Join(allowedFields(), ", ")))
	}

	if price, ok := fields["price"]; ok {
		if err := checkPrice(price); err != nil {
			return err
		}
	}

	if v, ok := fields["discount_percentage"]; ok {
		d, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil || d < 0 || d > 100 {
			return errors.AddValidationError("discount_percentage", "Discount must be between 0 and 100.")
		}
	}

	for _, flag := range []string{"is_featured", "is_active"} {
		if v, ok := fields[flag]; ok {
			if _, err := strconv.ParseBool(v); err != nil {
				return errors.AddValidationError(flag, "Must be true or false.")
			}
		}
	}

	return nil
}

func allowedFields() []string {
	keys := make([]string, 0, len(productFormFields))
	for k := range productFormFields {
		keys = append(keys, k)
	}

	sort.Strings(keys)

	return keys
}
