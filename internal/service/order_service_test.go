package service

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kudzaim/kiosk-commerce/internal/mailer"
	"github.com/kudzaim/kiosk-commerce/internal/models"
	"github.com/kudzaim/kiosk-commerce/internal/paynow"
	"github.com/kudzaim/kiosk-commerce/internal/repository"
	apperrors "github.com/kudzaim/kiosk-commerce/pkg/errors"
	"github.com/kudzaim/kiosk-commerce/pkg/logger"
)

type recordingMailer struct {
	receipts []*models.Order
}

var _ mailer.Mailer = (*recordingMailer)(nil)

func (m *recordingMailer) SendReceipt(ctx context.Context, order *models.Order) error {
	m.receipts = append(m.receipts, order)
	return nil
}

func newTestOrderService() (*OrderService, *repository.MemoryStore, *recordingMailer) {
	store := repository.NewMemoryStore()
	receipts := &recordingMailer{}
	links := paynow.NewLinkBuilder("https://www.paynow.co.za/pay", "MERCH01")
	svc := NewOrderService(store.Orders(), links, receipts, 0.15, "ZAR", logger.NewLogger("error"))

	return svc, store, receipts
}

func testCustomer() models.Customer {
	return models.Customer{
		FullName: "Tariro Moyo",
		Email:    "tariro@example.com",
		Phone:    "+263771234567",
	}
}

func testItems() models.OrderItems {
	return models.OrderItems{
		{ProductID: "prd-1", Name: "Sneaker", Price: 100, Quantity: 2},
		{ProductID: "prd-2", Name: "Cap", Price: 90, Quantity: 1},
	}
}

func TestCreateOrderComputesTotals(t *testing.T) {
	svc, _, _ := newTestOrderService()

	order, target, err := svc.CreateOrder(context.Background(), CreateOrderRequest{
		Customer:      testCustomer(),
		Items:         testItems(),
		PaymentMethod: models.PaymentMethodCard,
	})

	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusPendingPayment, order.Status)
	assert.Equal(t, 290.0, order.Subtotal)
	assert.Equal(t, 43.5, order.VAT)
	assert.Equal(t, 333.5, order.Total)
	assert.Equal(t, order.OrderID, order.PaynowReference)
	assert.True(t, strings.HasPrefix(order.OrderID, "ORD-"))
	assert.Contains(t, target, "amount=333.50")
	assert.Contains(t, target, "reference="+order.OrderID)
}

func TestCreateOrderQueuesCreatedEvent(t *testing.T) {
	svc, store, _ := newTestOrderService()

	order, _, err := svc.CreateOrder(context.Background(), CreateOrderRequest{
		Customer:      testCustomer(),
		Items:         testItems(),
		PaymentMethod: models.PaymentMethodCard,
	})
	require.NoError(t, err)

	pending, err := store.Outbox().GetPendingMessages(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, models.EventOrderCreated, pending[0].EventType)
	assert.Equal(t, order.OrderID, pending[0].AggregateID)
}

func TestCreateOrderRejectsEmptyItems(t *testing.T) {
	svc, store, _ := newTestOrderService()

	_, _, err := svc.CreateOrder(context.Background(), CreateOrderRequest{
		Customer: testCustomer(),
		Items:    models.OrderItems{},
	})

	require.Error(t, err)
	assert.Equal(t, 400, apperrors.StatusCode(err))

	count, err := store.Orders().Count(context.Background())
	require.NoError(t, err)
	assert.Zero(t, count, "a rejected order must not be persisted")
}

func TestCreateOrderRejectsMismatchedDeclaredTotals(t *testing.T) {
	svc, _, _ := newTestOrderService()

	_, _, err := svc.CreateOrder(context.Background(), CreateOrderRequest{
		Customer:      testCustomer(),
		Items:         testItems(),
		PaymentMethod: models.PaymentMethodCard,
		Subtotal:      290,
		VAT:           43.5,
		Total:         300,
	})

	require.Error(t, err)
	assert.Equal(t, 400, apperrors.StatusCode(err))
}

func TestCreateOrderAcceptsDeclaredTotalsWithinTolerance(t *testing.T) {
	svc, _, _ := newTestOrderService()

	_, _, err := svc.CreateOrder(context.Background(), CreateOrderRequest{
		Customer:      testCustomer(),
		Items:         testItems(),
		PaymentMethod: models.PaymentMethodCard,
		Subtotal:      290.001,
		VAT:           43.499,
		Total:         333.501,
	})

	assert.NoError(t, err)
}

func createPendingOrder(t *testing.T, svc *OrderService, method models.PaymentMethod) *models.Order {
	t.Helper()

	order, _, err := svc.CreateOrder(context.Background(), CreateOrderRequest{
		Customer:      testCustomer(),
		Items:         testItems(),
		PaymentMethod: method,
	})
	require.NoError(t, err)

	return order
}

func TestReconcilePaymentPaidSendsOneReceipt(t *testing.T) {
	svc, _, receipts := newTestOrderService()
	order := createPendingOrder(t, svc, models.PaymentMethodCard)

	settled, err := svc.ReconcilePayment(context.Background(), order.PaynowReference, models.OrderStatusPaid)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusPaid, settled.Status)
	require.Len(t, receipts.receipts, 1)
	assert.Equal(t, order.OrderID, receipts.receipts[0].OrderID)
}

func TestReconcilePaymentIsIdempotent(t *testing.T) {
	svc, _, receipts := newTestOrderService()
	order := createPendingOrder(t, svc, models.PaymentMethodCard)

	_, err := svc.ReconcilePayment(context.Background(), order.PaynowReference, models.OrderStatusPaid)
	require.NoError(t, err)

	again, err := svc.ReconcilePayment(context.Background(), order.PaynowReference, models.OrderStatusPaid)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusPaid, again.Status)
	assert.Len(t, receipts.receipts, 1, "a duplicate notification must not resend the receipt")
}

func TestReconcilePaymentRejectsConflictingOutcome(t *testing.T) {
	svc, _, _ := newTestOrderService()
	order := createPendingOrder(t, svc, models.PaymentMethodCard)

	_, err := svc.ReconcilePayment(context.Background(), order.PaynowReference, models.OrderStatusPaid)
	require.NoError(t, err)

	_, err = svc.ReconcilePayment(context.Background(), order.PaynowReference, models.OrderStatusFailed)
	require.Error(t, err)
	assert.Equal(t, 409, apperrors.StatusCode(err))

	current, err := svc.GetOrder(context.Background(), order.ID)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusPaid, current.Status)
}

func TestReconcilePaymentFailedSendsNoReceipt(t *testing.T) {
	svc, _, receipts := newTestOrderService()
	order := createPendingOrder(t, svc, models.PaymentMethodCard)

	settled, err := svc.ReconcilePayment(context.Background(), order.PaynowReference, models.OrderStatusFailed)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusFailed, settled.Status)
	assert.Empty(t, receipts.receipts)
}

func TestReconcilePaymentRejectsNonTerminalOutcome(t *testing.T) {
	svc, _, _ := newTestOrderService()
	order := createPendingOrder(t, svc, models.PaymentMethodCard)

	_, err := svc.ReconcilePayment(context.Background(), order.PaynowReference, models.OrderStatusPendingPayment)
	require.Error(t, err)
	assert.Equal(t, 400, apperrors.StatusCode(err))
}

func TestReconcilePaymentUnknownReference(t *testing.T) {
	svc, _, _ := newTestOrderService()

	_, err := svc.ReconcilePayment(context.Background(), "ORD-MISSING", models.OrderStatusPaid)
	require.Error(t, err)
	assert.Equal(t, 404, apperrors.StatusCode(err))
}

func TestApproveCashOrder(t *testing.T) {
	svc, _, receipts := newTestOrderService()
	order := createPendingOrder(t, svc, models.PaymentMethodCash)

	approved, err := svc.ApproveCashOrder(context.Background(), order.OrderID)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusPaid, approved.Status)
	assert.Empty(t, receipts.receipts, "manual approval settles without a receipt email")
}

func TestApproveCashOrderRejectsCardOrders(t *testing.T) {
	svc, _, _ := newTestOrderService()
	order := createPendingOrder(t, svc, models.PaymentMethodCard)

	_, err := svc.ApproveCashOrder(context.Background(), order.OrderID)
	require.Error(t, err)
	assert.Equal(t, 400, apperrors.StatusCode(err))
}

func TestApproveCashThenFailedWebhookKeepsPaid(t *testing.T) {
	svc, _, _ := newTestOrderService()
	order := createPendingOrder(t, svc, models.PaymentMethodCash)

	_, err := svc.ApproveCashOrder(context.Background(), order.OrderID)
	require.NoError(t, err)

	_, err = svc.ReconcilePayment(context.Background(), order.PaynowReference, models.OrderStatusFailed)
	require.Error(t, err)
	assert.Equal(t, 409, apperrors.StatusCode(err))

	current, err := svc.GetOrder(context.Background(), order.ID)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusPaid, current.Status)
}

func TestResendPaymentLink(t *testing.T) {
	svc, _, _ := newTestOrderService()
	order := createPendingOrder(t, svc, models.PaymentMethodCard)

	link, err := svc.ResendPaymentLink(context.Background(), order.OrderID)
	require.NoError(t, err)
	assert.Contains(t, link, "reference="+order.OrderID)
}

func TestResendPaymentLinkRejectsSettledOrder(t *testing.T) {
	svc, _, _ := newTestOrderService()
	order := createPendingOrder(t, svc, models.PaymentMethodCard)

	_, err := svc.ReconcilePayment(context.Background(), order.PaynowReference, models.OrderStatusPaid)
	require.NoError(t, err)

	_, err = svc.ResendPaymentLink(context.Background(), order.OrderID)
	require.Error(t, err)
	assert.Equal(t, 400, apperrors.StatusCode(err))

	current, err := svc.GetOrder(context.Background(), order.ID)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusPaid, current.Status)
}

func TestUpdateOrderStatusFollowsTheLifecycle(t *testing.T) {
	svc, _, receipts := newTestOrderService()
	order := createPendingOrder(t, svc, models.PaymentMethodCard)

	updated, err := svc.UpdateOrderStatus(context.Background(), order.ID, models.OrderStatusPaid)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusPaid, updated.Status)
	assert.Empty(t, receipts.receipts, "admin edits do not email receipts")

	_, err = svc.UpdateOrderStatus(context.Background(), order.ID, models.OrderStatusFailed)
	require.Error(t, err)
	assert.Equal(t, 409, apperrors.StatusCode(err))
}

func TestUpdateOrderStatusRejectsUnknownStatus(t *testing.T) {
	svc, _, _ := newTestOrderService()
	order := createPendingOrder(t, svc, models.PaymentMethodCard)

	_, err := svc.UpdateOrderStatus(context.Background(), order.ID, models.OrderStatus("SHIPPED"))
	require.Error(t, err)
	assert.Equal(t, 400, apperrors.StatusCode(err))
}

func TestUpdatePaymentMethodOnlyWhilePending(t *testing.T) {
	svc, _, _ := newTestOrderService()
	order := createPendingOrder(t, svc, models.PaymentMethodCard)

	updated, err := svc.UpdatePaymentMethod(context.Background(), order.ID, models.PaymentMethodCash)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentMethodCash, updated.PaymentMethod)

	_, err = svc.ReconcilePayment(context.Background(), order.PaynowReference, models.OrderStatusPaid)
	require.NoError(t, err)

	_, err = svc.UpdatePaymentMethod(context.Background(), order.ID, models.PaymentMethodCard)
	require.Error(t, err)
	assert.Equal(t, 409, apperrors.StatusCode(err))
}

func TestListOrdersPagination(t *testing.T) {
	svc, _, _ := newTestOrderService()

	for i := 0; i < 3; i++ {
		createPendingOrder(t, svc, models.PaymentMethodCard)
	}

	page, err := svc.ListOrders(context.Background(), 2, 0)
	require.NoError(t, err)
	assert.Len(t, page, 2)

	rest, err := svc.ListOrders(context.Background(), 2, 2)
	require.NoError(t, err)
	assert.Len(t, rest, 1)

	count, err := svc.CountOrders(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, count)
}

func TestDeleteOrder(t *testing.T) {
	svc, _, _ := newTestOrderService()
	order := createPendingOrder(t, svc, models.PaymentMethodCard)

	require.NoError(t, svc.DeleteOrder(context.Background(), order.ID))

	_, err := svc.GetOrder(context.Background(), order.ID)
	require.Error(t, err)
	assert.Equal(t, 404, apperrors.StatusCode(err))

	err = svc.DeleteOrder(context.Background(), order.ID)
	require.Error(t, err)
	assert.Equal(t, 404, apperrors.StatusCode(err))
}
