package service

import (
	"context"
	stdErrors "errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/aaravmahajanofficial/storefront/internal/apiclient"
	"github.com/aaravmahajanofficial/storefront/internal/errors"
	"github.com/aaravmahajanofficial/storefront/internal/models"
	"github.com/aaravmahajanofficial/storefront/internal/utils"
	"github.com/go-playground/validator/v10"
)

// ErrOrderNotCancellable is wrapped by Cancel when the order has left the
// pending state.
var ErrOrderNotCancellable = stdErrors.New("order is not cancellable")

// Session reports whether requests will be sent on behalf of a user.
type Session interface {
	IsAuthenticated() bool
}

// CartReloader refreshes the local cart after the server changed it.
type CartReloader interface {
	Load(ctx context.Context) models.Result
}

type OrderService interface {
	List(ctx context.Context) ([]models.Order, error)
	Get(ctx context.Context, orderID int64) (*models.Order, error)
	Create(ctx context.Context, req models.CreateOrderRequest) (*models.Order, models.Result)
	Cancel(ctx context.Context, order *models.Order) (*models.Order, models.Result)
}

type orderService struct {
	api      apiclient.API
	session  Session
	cart     CartReloader
	validate *validator.Validate
	logger   *slog.Logger
}

func NewOrderService(api apiclient.API, session Session, cart CartReloader, logger *slog.Logger) OrderService {
	if logger == nil {
		logger = slog.Default()
	}

	return &orderService{api: api, session: session, cart: cart, validate: utils.NewValidator(), logger: logger}
}

func (s *orderService) requireLogin(action string) error {
	if s.session != nil && !s.session.IsAuthenticated() {
		return errors.AuthRequiredError(fmt.Sprintf("Please log in to %s", action))
	}

	return nil
}

func (s *orderService) List(ctx context.Context) ([]models.Order, error) {
	if err := s.requireLogin("see your orders"); err != nil {
		return nil, err
	}

	return apiclient.GetList[models.Order](ctx, s.api, apiclient.PathOrders, nil)
}

func (s *orderService) Get(ctx context.Context, orderID int64) (*models.Order, error) {
	if err := s.requireLogin("see your orders"); err != nil {
		return nil, err
	}

	var order models.Order
	if err := s.api.Get(ctx, apiclient.PathOrder(orderID), nil, &order); err != nil {
		if errors.HasCode(err, errors.ErrCodeNotFound) {
			return nil, errors.NotFoundError("Order not found").WithError(err)
		}

		return nil, err
	}

	return &order, nil
}

// Create places an order from the server cart. The server empties the cart,
// so the local copy is reloaded afterwards.
func (s *orderService) Create(ctx context.Context, req models.CreateOrderRequest) (*models.Order, models.Result) {
	if err := s.requireLogin("place an order"); err != nil {
		return nil, models.Failed(err, "Failed to place order")
	}

	if err := utils.ValidateStruct(s.validate, &req); err != nil {
		return nil, models.Failed(err, "Failed to place order")
	}

	var resp models.OrderResponse
	if err := s.api.JSON(ctx, http.MethodPost, apiclient.PathOrderCreate, req, &resp); err != nil {
		return nil, models.Failed(err, "Failed to place order")
	}

	if s.cart != nil {
		if res := s.cart.Load(ctx); !res.Success {
			s.logger.Warn("Cart reload after checkout failed", slog.String("error", res.Error))
		}
	}

	return resp.Order, models.OK(messageOr(resp.Message, "Order placed"))
}

// Cancel only asks the server when the order is still pending.
func (s *orderService) Cancel(ctx context.Context, order *models.Order) (*models.Order, models.Result) {
	if order == nil {
		return nil, models.Failed(errors.AddValidationError("order", "is required"), "Failed to cancel order")
	}

	if err := s.requireLogin("cancel an order"); err != nil {
		return order, models.Failed(err, "Failed to cancel order")
	}

	if !order.Status.Cancellable() {
		err := errors.PreconditionError(fmt.Sprintf("Order #%d is %s and can no longer be cancelled", order.ID, order.Status)).
			WithError(ErrOrderNotCancellable)

		return order, models.Failed(err, "Failed to cancel order")
	}

	var resp models.OrderResponse
	if err := s.api.JSON(ctx, http.MethodPost, apiclient.PathOrderCancel(order.ID), nil, &resp); err != nil {
		return order, models.Failed(err, "Failed to cancel order")
	}

	if resp.Order == nil {
		cancelled := *order
		cancelled.Status = models.OrderStatusCancelled
		resp.Order = &cancelled
	}

	return resp.Order, models.OK(messageOr(resp.Message, "Order cancelled"))
}

func messageOr(message, fallback string) string {
	if message != "" {
		return message
	}

	return fallback
}
