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
	"github.com/shopspring/decimal"
)

const cartStoreName = "cart"

// CartSnapshot is the value subscribers receive. Cart is nil when the user
// is logged out or the cart has not been loaded.
type CartSnapshot struct {
	Cart *models.Cart
}

// CartStore mirrors the server cart of the authenticated user. It never
// edits items or totals locally; every change is a server round trip whose
// response replaces the whole cart.
type CartStore struct {
	api      apiclient.API
	auth     *AuthStore
	metrics  *metrics.Metrics
	logger   *slog.Logger
	validate *validator.Validate

	mu       sync.RWMutex
	cart     *models.Cart
	loadedID int64

	ctx         context.Context
	unsubscribe func()
	subject     Subject[CartSnapshot]
}

func NewCartStore(api apiclient.API, auth *AuthStore, m *metrics.Metrics, logger *slog.Logger) *CartStore {
	if logger == nil {
		logger = slog.Default()
	}

	return &CartStore{
		api:      api,
		auth:     auth,
		metrics:  m,
		logger:   logger.With(slog.String("store", cartStoreName)),
		validate: utils.NewValidator(),
	}
}

// Init ties the cart to the auth store: it loads on login and clears on
// logout. ctx is used for loads triggered by auth changes.
func (s *CartStore) Init(ctx context.Context) {
	s.mu.Lock()
	s.ctx = ctx
	s.mu.Unlock()

	s.unsubscribe = s.auth.Subscribe(s.onAuthChange)
	s.onAuthChange(s.auth.Snapshot())
}

func (s *CartStore) Dispose() {
	if s.unsubscribe != nil {
		s.unsubscribe()
		s.unsubscribe = nil
	}

	s.subject.Close()
}

func (s *CartStore) Subscribe(fn func(CartSnapshot)) func() {
	return s.subject.Subscribe(fn)
}

func (s *CartStore) onAuthChange(snap AuthSnapshot) {
	if snap.Loading {
		return
	}

	if !snap.Authenticated() {
		s.mu.Lock()
		wasHeld := s.cart != nil
		s.cart = nil
		s.loadedID = 0
		s.mu.Unlock()

		if wasHeld {
			s.notify()
		}

		return
	}

	s.mu.Lock()
	loadedID := s.loadedID
	ctx := s.ctx

	// profile edits notify too; only a new session owner needs a reload
	if loadedID == snap.User.ID {
		s.mu.Unlock()
		return
	}

	// the previous owner's cart must not outlive a failed load
	wasHeld := s.cart != nil
	s.cart = nil
	s.loadedID = 0
	s.mu.Unlock()

	if wasHeld {
		s.notify()
	}

	if ctx == nil {
		ctx = context.Background()
	}

	s.Load(ctx)
}

// Cart returns the held cart, or nil. Callers must not modify it.
func (s *CartStore) Cart() *models.Cart {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.cart
}

func (s *CartStore) Snapshot() CartSnapshot {
	return CartSnapshot{Cart: s.Cart()}
}

// Count is the server's total_items, 0 without a cart.
func (s *CartStore) Count() int {
	cart := s.Cart()
	if cart == nil {
		return 0
	}

	return cart.TotalItems
}

// Total is the server's total_price, 0 without a cart.
func (s *CartStore) Total() decimal.Decimal {
	cart := s.Cart()
	if cart == nil {
		return decimal.Zero
	}

	return cart.TotalPrice
}

func (s *CartStore) Load(ctx context.Context) models.Result {
	user := s.auth.User()
	if user == nil {
		s.replace(nil, 0)
		return models.Failed(appErrors.AuthRequiredError("Please log in to view your cart"), "Failed to load cart")
	}

	var cart models.Cart
	if err := s.api.Get(ctx, apiclient.PathCart, nil, &cart); err != nil {
		s.logger.Warn("Failed to load cart", slog.String("error", err.Error()))
		s.metrics.StoreOp(cartStoreName, "load", false)

		return models.Failed(err, "Failed to load cart")
	}

	s.metrics.StoreOp(cartStoreName, "load", true)

	if !s.replaceFor(&cart, user.ID) {
		return models.Failed(appErrors.AuthRequiredError("Please log in to view your cart"), "Failed to load cart")
	}

	return models.OK("")
}

func (s *CartStore) AddToCart(ctx context.Context, productID int64, quantity int) models.Result {
	user := s.auth.User()
	if user == nil {
		return models.Failed(appErrors.AuthRequiredError("Please log in to add items to your cart"), "Failed to add to cart")
	}

	req := models.AddItemRequest{ProductID: productID, Quantity: quantity}
	if err := utils.ValidateStruct(s.validate, &req); err != nil {
		return models.Failed(err, "Failed to add to cart")
	}

	return s.mutate(ctx, user.ID, "add", http.MethodPost, apiclient.PathCartAdd, req, "Failed to add to cart", "Added to cart")
}

// UpdateCartItem rejects quantities outside [1,99] without a request.
func (s *CartStore) UpdateCartItem(ctx context.Context, itemID int64, quantity int) models.Result {
	user := s.auth.User()
	if user == nil {
		return models.Failed(appErrors.AuthRequiredError("Please log in to update your cart"), "Failed to update cart")
	}

	req := models.UpdateQuantityRequest{Quantity: quantity}
	if err := utils.ValidateStruct(s.validate, &req); err != nil {
		return models.Failed(err, "Failed to update cart")
	}

	return s.mutate(ctx, user.ID, "update", http.MethodPut, apiclient.PathCartItemUpdate(itemID), req, "Failed to update cart", "Cart updated")
}

func (s *CartStore) RemoveFromCart(ctx context.Context, itemID int64) models.Result {
	user := s.auth.User()
	if user == nil {
		return models.Failed(appErrors.AuthRequiredError("Please log in to update your cart"), "Failed to remove item")
	}

	return s.mutate(ctx, user.ID, "remove", http.MethodDelete, apiclient.PathCartItemRemove(itemID), nil, "Failed to remove item", "Item removed")
}

func (s *CartStore) ClearCart(ctx context.Context) models.Result {
	user := s.auth.User()
	if user == nil {
		return models.Failed(appErrors.AuthRequiredError("Please log in to update your cart"), "Failed to clear cart")
	}

	return s.mutate(ctx, user.ID, "clear", http.MethodDelete, apiclient.PathCartClear, nil, "Failed to clear cart", "Cart cleared")
}

func (s *CartStore) mutate(ctx context.Context, userID int64, op, method, path string, payload any, failure, success string) models.Result {
	var resp models.CartResponse
	if err := s.api.JSON(ctx, method, path, payload, &resp); err != nil {
		s.metrics.StoreOp(cartStoreName, op, false)
		return models.Failed(err, failure)
	}

	s.metrics.StoreOp(cartStoreName, op, true)

	if resp.Cart != nil {
		s.replaceFor(resp.Cart, userID)
	} else {
		// the mutation landed but the server sent no cart back
		s.Load(ctx)
	}

	return models.OK(messageOr(resp.Message, success))
}

func (s *CartStore) replace(cart *models.Cart, ownerID int64) {
	s.mu.Lock()
	s.cart = cart
	s.loadedID = ownerID
	s.mu.Unlock()

	s.notify()
}

// replaceFor applies a cart fetched on behalf of ownerID. A response that
// arrives after the session owner changed is dropped. The owner is checked
// under s.mu so a concurrent logout clears the cart after, never before.
func (s *CartStore) replaceFor(cart *models.Cart, ownerID int64) bool {
	s.mu.Lock()

	if user := s.auth.User(); user == nil || user.ID != ownerID {
		s.mu.Unlock()
		s.logger.Debug("Dropped cart response for a previous session", slog.Int64("owner_id", ownerID))

		return false
	}

	s.cart = cart
	s.loadedID = ownerID
	s.mu.Unlock()

	s.notify()

	return true
}

func (s *CartStore) notify() {
	s.subject.Notify(s.Snapshot())
}
