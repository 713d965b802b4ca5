package repository

import (
	"context"
	"errors"

	"github.com/kudzaim/kiosk-commerce/internal/models"
)

var (
	ErrNotFound  = errors.New("record not found")
	ErrDuplicate = errors.New("duplicate record")
	ErrDatabase  = errors.New("database error")
)

// OrderRepository persists orders and their outbox events. Create and
// TransitionStatus write the order mutation and the event atomically; the
// conditional update in TransitionStatus is the serialization point for
// webhook/admin races.
type OrderRepository interface {
	Create(ctx context.Context, order *models.Order, event *models.OutboxMessage) error
	GetByID(ctx context.Context, id string) (*models.Order, error)
	GetByOrderID(ctx context.Context, orderID string) (*models.Order, error)
	GetByReference(ctx context.Context, reference string) (*models.Order, error)
	GetAll(ctx context.Context, limit, offset int) ([]*models.Order, error)
	Count(ctx context.Context) (int, error)
	// TransitionStatus moves the order to the given status only while it is
	// still PENDING_PAYMENT. Returns false (and no error) when the order had
	// already left the pending state.
	TransitionStatus(ctx context.Context, id string, to models.OrderStatus, event *models.OutboxMessage) (bool, error)
	UpdatePaymentMethod(ctx context.Context, id string, method models.PaymentMethod) error
	Delete(ctx context.Context, id string) error
}

// ProductRepository persists catalog products
type ProductRepository interface {
	Create(ctx context.Context, p *models.Product) error
	GetByID(ctx context.Context, id string) (*models.Product, error)
	GetAll(ctx context.Context) ([]*models.Product, error)
	Update(ctx context.Context, p *models.Product) error
	Delete(ctx context.Context, id string) error
}

// UserRepository persists accounts. Create and Update report a taken email
// as ErrDuplicate.
type UserRepository interface {
	Create(ctx context.Context, u *models.User) error
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetAll(ctx context.Context) ([]*models.User, error)
	Update(ctx context.Context, u *models.User) error
	// UpdatePassword stores the new hash and clears the first-login flag
	UpdatePassword(ctx context.Context, id string, passwordHash string) error
	Delete(ctx context.Context, id string) error
}

// OutboxRepository stores and drains pending order events
type OutboxRepository interface {
	GetPendingMessages(ctx context.Context, limit int) ([]*models.OutboxMessage, error)
	MarkAsProcessing(ctx context.Context, id int64) error
	MarkAsCompleted(ctx context.Context, id int64) error
	MarkAsFailed(ctx context.Context, id int64, reason string) error
}
