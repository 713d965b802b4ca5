package service

import (
	"context"
	"errors"
	"math"
	"strings"

	"github.com/kudzaim/kiosk-commerce/internal/mailer"
	"github.com/kudzaim/kiosk-commerce/internal/models"
	"github.com/kudzaim/kiosk-commerce/internal/paynow"
	"github.com/kudzaim/kiosk-commerce/internal/repository"
	apperrors "github.com/kudzaim/kiosk-commerce/pkg/errors"
	"github.com/kudzaim/kiosk-commerce/pkg/logger"
)

// totalsTolerance absorbs client-side float rounding when checking declared
// totals against the recomputed ones.
const totalsTolerance = 0.005

// OrderService is the order lifecycle manager. It owns the
// PENDING_PAYMENT -> PAID | FAILED state machine and every transition into
// it: checkout, webhook reconciliation and the admin actions.
type OrderService struct {
	orders   repository.OrderRepository
	links    *paynow.LinkBuilder
	mailer   mailer.Mailer
	vatRate  float64
	currency string
	logger   logger.Logger
}

// NewOrderService creates a new OrderService
func NewOrderService(
	orders repository.OrderRepository,
	links *paynow.LinkBuilder,
	m mailer.Mailer,
	vatRate float64,
	currency string,
	logger logger.Logger,
) *OrderService {
	return &OrderService{
		orders:   orders,
		links:    links,
		mailer:   m,
		vatRate:  vatRate,
		currency: currency,
		logger:   logger,
	}
}

// CreateOrderRequest is the validated checkout payload
type CreateOrderRequest struct {
	Customer      models.Customer
	Items         models.OrderItems
	PaymentMethod models.PaymentMethod
	// Client-declared totals; zero means "not declared". Declared totals
	// must agree with the recomputed ones.
	Subtotal float64
	VAT      float64
	Total    float64
}

func (r *CreateOrderRequest) validate() error {
	if strings.TrimSpace(r.Customer.FullName) == "" ||
		strings.TrimSpace(r.Customer.Email) == "" ||
		strings.TrimSpace(r.Customer.Phone) == "" {
		return apperrors.NewValidationError("customer name, email and phone are required")
	}

	if len(r.Items) == 0 {
		return apperrors.NewValidationError("order must contain at least one item")
	}

	for _, item := range r.Items {
		if item.ProductID == "" {
			return apperrors.NewValidationError("order item is missing a product id")
		}
		if item.Quantity < 1 {
			return apperrors.NewValidationError("order item quantity must be at least 1")
		}
		if item.Price < 0 {
			return apperrors.NewValidationError("order item price must not be negative")
		}
	}

	switch r.PaymentMethod {
	case "", models.PaymentMethodCash, models.PaymentMethodCard:
	default:
		return apperrors.NewValidationError("unknown payment method")
	}

	return nil
}

// CreateOrder validates the checkout payload, snapshots it into a pending
// order with totals computed once, persists it together with its created
// event, and returns the order plus the payment target.
func (s *OrderService) CreateOrder(ctx context.Context, req CreateOrderRequest) (*models.Order, string, error) {
	if err := req.validate(); err != nil {
		return nil, "", err
	}

	order := models.NewOrder(req.Customer, req.Items, s.currency, req.PaymentMethod, s.vatRate)

	if req.Total != 0 {
		if math.Abs(req.Subtotal-order.Subtotal) > totalsTolerance ||
			math.Abs(req.VAT-order.VAT) > totalsTolerance ||
			math.Abs(req.Total-order.Total) > totalsTolerance {
			return nil, "", apperrors.NewValidationError("declared totals do not match the order items")
		}
	}

	event, err := models.NewOrderCreatedEvent(order)

	if err != nil {
		s.logger.Error("Failed to build order created event", "error", err)
		return nil, "", apperrors.NewInternalError("failed to create order")
	}

	if err := s.orders.Create(ctx, order, event); err != nil {
		s.logger.Error("Failed to persist order", "error", err, "orderID", order.OrderID)
		return nil, "", apperrors.NewInternalError("failed to create order")
	}

	target := s.links.PaymentLink(order.PaynowReference, order.Total, order.Customer.Email)

	s.logger.Info("Order created",
		"orderID", order.OrderID,
		"total", order.Total,
		"items", len(order.Items))

	return order, target, nil
}

// ReconcilePayment applies an asynchronous payment outcome reported for the
// given provider reference. Reconciling into the state the order already
// holds is a no-op; a conflicting terminal outcome is rejected and logged,
// never silently overwritten. Exactly one reconciliation wins the pending
// state, so the receipt is sent at most once.
func (s *OrderService) ReconcilePayment(ctx context.Context, reference string, outcome models.OrderStatus) (*models.Order, error) {
	if outcome != models.OrderStatusPaid && outcome != models.OrderStatusFailed {
		return nil, apperrors.NewValidationError("payment outcome must be PAID or FAILED")
	}

	order, err := s.orders.GetByReference(ctx, reference)

	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NewNotFoundError("order not found")
		}
		s.logger.Error("Failed to look up order by reference", "error", err, "reference", reference)
		return nil, apperrors.NewInternalError("failed to reconcile payment")
	}

	return s.transition(ctx, order, outcome, outcome == models.OrderStatusPaid)
}

// ApproveCashOrder settles a pending cash order in person, moving it
// straight to PAID without the webhook path. No receipt email is sent.
func (s *OrderService) ApproveCashOrder(ctx context.Context, orderID string) (*models.Order, error) {
	order, err := s.getByOrderID(ctx, orderID)

	if err != nil {
		return nil, err
	}

	if order.PaymentMethod != models.PaymentMethodCash {
		return nil, apperrors.NewValidationError("only cash orders can be approved manually")
	}

	return s.transition(ctx, order, models.OrderStatusPaid, false)
}

// transition drives the state machine for one order. The repository's
// conditional update serializes concurrent writers; the loser re-reads and
// lands in the no-op or conflict branch.
func (s *OrderService) transition(ctx context.Context, order *models.Order, to models.OrderStatus, sendReceipt bool) (*models.Order, error) {
	if order.Status == to {
		s.logger.Info("Order already in requested state, ignoring",
			"orderID", order.OrderID, "status", order.Status)
		return order, nil
	}

	if order.Status.IsTerminal() {
		s.logger.Warn("Rejected conflicting status transition",
			"orderID", order.OrderID,
			"current", order.Status,
			"requested", to)
		return nil, apperrors.NewConflictError("order has already been settled")
	}

	event, err := s.buildTransitionEvent(order, to)

	if err != nil {
		s.logger.Error("Failed to build order event", "error", err, "orderID", order.OrderID)
		return nil, apperrors.NewInternalError("failed to update order")
	}

	ok, err := s.orders.TransitionStatus(ctx, order.ID, to, event)

	if err != nil {
		s.logger.Error("Failed to transition order", "error", err, "orderID", order.OrderID, "to", to)
		return nil, apperrors.NewInternalError("failed to update order")
	}

	if !ok {
		// Lost the race to another writer; re-read and re-apply the rules
		current, err := s.orders.GetByID(ctx, order.ID)

		if err != nil {
			s.logger.Error("Failed to re-read order after transition race", "error", err, "orderID", order.OrderID)
			return nil, apperrors.NewInternalError("failed to update order")
		}

		return s.transition(ctx, current, to, false)
	}

	order.Status = to
	order.UpdatedAt = models.GetCurrentTime()

	s.logger.Info("Order status changed", "orderID", order.OrderID, "status", to)

	if sendReceipt && to == models.OrderStatusPaid {
		// Best-effort: a failed receipt never rolls back the transition
		if err := s.mailer.SendReceipt(ctx, order); err != nil {
			s.logger.Error("Failed to send receipt email",
				"error", err,
				"orderID", order.OrderID,
				"email", order.Customer.Email)
		}
	}

	return order, nil
}

func (s *OrderService) buildTransitionEvent(order *models.Order, to models.OrderStatus) (*models.OutboxMessage, error) {
	if to == models.OrderStatusPaid {
		return models.NewOrderPaidEvent(order)
	}
	return models.NewOrderFailedEvent(order)
}

// ResendPaymentLink rebuilds the payment target for a still-pending order.
// Settled orders are rejected without touching their state.
func (s *OrderService) ResendPaymentLink(ctx context.Context, orderID string) (string, error) {
	order, err := s.getByOrderID(ctx, orderID)

	if err != nil {
		return "", err
	}

	if order.Status != models.OrderStatusPendingPayment {
		return "", apperrors.NewValidationError("payment link can only be resent for pending orders")
	}

	return s.links.ResendLink(order.PaynowReference), nil
}

// UpdateOrderStatus is the admin-side status mutation. It follows the same
// machine as reconciliation: pending orders may settle either way, terminal
// states are final.
func (s *OrderService) UpdateOrderStatus(ctx context.Context, id string, status models.OrderStatus) (*models.Order, error) {
	if !models.IsValidOrderStatus(string(status)) {
		return nil, apperrors.NewValidationError("unknown order status")
	}

	order, err := s.GetOrder(ctx, id)

	if err != nil {
		return nil, err
	}

	if status == models.OrderStatusPendingPayment {
		if order.Status == models.OrderStatusPendingPayment {
			return order, nil
		}
		return nil, apperrors.NewConflictError("order has already been settled")
	}

	return s.transition(ctx, order, status, false)
}

// UpdatePaymentMethod records how a pending order will be settled
func (s *OrderService) UpdatePaymentMethod(ctx context.Context, id string, method models.PaymentMethod) (*models.Order, error) {
	if method != models.PaymentMethodCash && method != models.PaymentMethodCard {
		return nil, apperrors.NewValidationError("unknown payment method")
	}

	order, err := s.GetOrder(ctx, id)

	if err != nil {
		return nil, err
	}

	if order.Status.IsTerminal() {
		return nil, apperrors.NewConflictError("order has already been settled")
	}

	if err := s.orders.UpdatePaymentMethod(ctx, id, method); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NewNotFoundError("order not found")
		}
		s.logger.Error("Failed to update payment method", "error", err, "id", id)
		return nil, apperrors.NewInternalError("failed to update order")
	}

	order.PaymentMethod = method
	return order, nil
}

// GetOrder retrieves an order by its internal identifier
func (s *OrderService) GetOrder(ctx context.Context, id string) (*models.Order, error) {
	order, err := s.orders.GetByID(ctx, id)

	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NewNotFoundError("order not found")
		}
		s.logger.Error("Failed to get order", "error", err, "id", id)
		return nil, apperrors.NewInternalError("failed to get order")
	}

	return order, nil
}

func (s *OrderService) getByOrderID(ctx context.Context, orderID string) (*models.Order, error) {
	order, err := s.orders.GetByOrderID(ctx, orderID)

	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NewNotFoundError("order not found")
		}
		s.logger.Error("Failed to get order", "error", err, "orderID", orderID)
		return nil, apperrors.NewInternalError("failed to get order")
	}

	return order, nil
}

// ListOrders retrieves orders newest first
func (s *OrderService) ListOrders(ctx context.Context, limit, offset int) ([]*models.Order, error) {
	orders, err := s.orders.GetAll(ctx, limit, offset)

	if err != nil {
		s.logger.Error("Failed to list orders", "error", err)
		return nil, apperrors.NewInternalError("failed to list orders")
	}

	return orders, nil
}

// CountOrders counts all orders
func (s *OrderService) CountOrders(ctx context.Context) (int, error) {
	count, err := s.orders.Count(ctx)

	if err != nil {
		s.logger.Error("Failed to count orders", "error", err)
		return 0, apperrors.NewInternalError("failed to count orders")
	}

	return count, nil
}

// DeleteOrder hard-deletes an order by internal identifier
func (s *OrderService) DeleteOrder(ctx context.Context, id string) error {
	err := s.orders.Delete(ctx, id)

	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperrors.NewNotFoundError("order not found")
		}
		s.logger.Error("Failed to delete order", "error", err, "id", id)
		return apperrors.NewInternalError("failed to delete order")
	}

	return nil
}
