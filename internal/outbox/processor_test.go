package outbox

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kudzaim/kiosk-commerce/internal/models"
	"github.com/kudzaim/kiosk-commerce/internal/repository"
	"github.com/kudzaim/kiosk-commerce/pkg/logger"
)

type recordingHandler struct {
	handled []string
	fail    error
}

func (h *recordingHandler) HandleMessage(ctx context.Context, message *models.OutboxMessage) error {
	if h.fail != nil {
		return h.fail
	}

	h.handled = append(h.handled, message.AggregateID)
	return nil
}

func queueOrderEvent(t *testing.T, store *repository.MemoryStore) *models.Order {
	t.Helper()

	order := models.NewOrder(models.Customer{
		FullName: "Tariro Moyo",
		Email:    "tariro@example.com",
		Phone:    "+263771234567",
	}, models.OrderItems{
		{ProductID: "prd-1", Name: "Sneaker", Price: 120, Quantity: 1},
	}, "ZAR", models.PaymentMethodCard, 0.15)

	event, err := models.NewOrderCreatedEvent(order)
	require.NoError(t, err)
	require.NoError(t, store.Orders().Create(context.Background(), order, event))

	return order
}

func TestProcessBatchDeliversAndCompletes(t *testing.T) {
	store := repository.NewMemoryStore()
	order := queueOrderEvent(t, store)

	handler := &recordingHandler{}
	p := NewProcessor(store.Outbox(), ProcessorConfig{
		PollingInterval: time.Second,
		BatchSize:       10,
		MaxRetries:      3,
	}, logger.NewLogger("error"))
	p.RegisterHandler(models.EventOrderCreated, handler)

	require.NoError(t, p.processBatch())

	assert.Equal(t, []string{order.OrderID}, handler.handled)

	remaining, err := store.Outbox().GetPendingMessages(context.Background(), 10)
	require.NoError(t, err)
	assert.Empty(t, remaining, "completed messages leave the queue")
}

func TestProcessBatchRetriesUntilMaxThenFails(t *testing.T) {
	store := repository.NewMemoryStore()
	queueOrderEvent(t, store)

	handler := &recordingHandler{fail: errors.New("broker unavailable")}
	p := NewProcessor(store.Outbox(), ProcessorConfig{
		PollingInterval: time.Second,
		BatchSize:       10,
		MaxRetries:      2,
	}, logger.NewLogger("error"))
	p.RegisterHandler(models.EventOrderCreated, handler)

	// Attempts 1 and 2 leave the message queued for retry
	require.NoError(t, p.processBatch())
	require.NoError(t, p.processBatch())

	queued, err := store.Outbox().GetPendingMessages(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, queued, 1)

	// Attempt 3 exceeds MaxRetries and parks the message as failed
	require.NoError(t, p.processBatch())

	remaining, err := store.Outbox().GetPendingMessages(context.Background(), 10)
	require.NoError(t, err)
	assert.Empty(t, remaining)
}

func TestProcessBatchUnknownEventTypeIsParked(t *testing.T) {
	store := repository.NewMemoryStore()
	queueOrderEvent(t, store)

	p := NewProcessor(store.Outbox(), ProcessorConfig{
		PollingInterval: time.Second,
		BatchSize:       10,
		MaxRetries:      3,
	}, logger.NewLogger("error"))

	require.NoError(t, p.processBatch())

	remaining, err := store.Outbox().GetPendingMessages(context.Background(), 10)
	require.NoError(t, err)
	assert.Empty(t, remaining, "messages without a handler are marked failed, not retried forever")
}

func TestStartAndStopAreIdempotent(t *testing.T) {
	store := repository.NewMemoryStore()

	p := NewProcessor(store.Outbox(), ProcessorConfig{
		PollingInterval: time.Second,
		BatchSize:       10,
		MaxRetries:      3,
	}, logger.NewLogger("error"))

	p.Start()
	p.Start()
	p.Stop()
	p.Stop()
}
