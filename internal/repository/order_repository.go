package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/kudzaim/kiosk-commerce/internal/database"
	"github.com/kudzaim/kiosk-commerce/internal/models"
	"github.com/kudzaim/kiosk-commerce/pkg/logger"
)

const orderColumns = `
	id, order_id, customer_name, customer_email, customer_phone, items,
	subtotal, vat, total, currency, payment_method, paynow_reference,
	status, created_at, updated_at
`

// PostgresOrderRepository handles database operations for orders
type PostgresOrderRepository struct {
	db     *database.Database
	logger logger.Logger
}

// NewOrderRepository creates a new PostgresOrderRepository
func NewOrderRepository(db *database.Database, logger logger.Logger) *PostgresOrderRepository {
	return &PostgresOrderRepository{
		db:     db,
		logger: logger,
	}
}

var _ OrderRepository = (*PostgresOrderRepository)(nil)

// Create inserts a new order and its created-event in one transaction
func (r *PostgresOrderRepository) Create(ctx context.Context, order *models.Order, event *models.OutboxMessage) error {
	tx, err := r.db.DB.BeginTxx(ctx, nil)

	if err != nil {
		return fmt.Errorf("%w: %v", ErrDatabase, err)
	}

	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
				r.logger.Error("Failed to rollback transaction", "error", rbErr)
			}
		}
	}()

	query := `
		INSERT INTO orders (` + orderColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
	`

	_, err = tx.ExecContext(
		ctx,
		query,
		order.ID,
		order.OrderID,
		order.Customer.FullName,
		order.Customer.Email,
		order.Customer.Phone,
		order.Items,
		order.Subtotal,
		order.VAT,
		order.Total,
		order.Currency,
		order.PaymentMethod,
		order.PaynowReference,
		order.Status,
		order.CreatedAt,
		order.UpdatedAt,
	)

	if err != nil {
		r.logger.Error("Failed to create order", "error", err, "orderID", order.OrderID)
		return fmt.Errorf("%w: %v", ErrDatabase, err)
	}

	if event != nil {
		if err = insertOutboxMessage(ctx, tx, event); err != nil {
			r.logger.Error("Failed to create outbox message", "error", err, "orderID", order.OrderID)
			return err
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("%w: %v", ErrDatabase, err)
	}

	return nil
}

// GetByID retrieves an order by its internal identifier
func (r *PostgresOrderRepository) GetByID(ctx context.Context, id string) (*models.Order, error) {
	return r.getOne(ctx, "id", id)
}

// GetByOrderID retrieves an order by its human-readable reference
func (r *PostgresOrderRepository) GetByOrderID(ctx context.Context, orderID string) (*models.Order, error) {
	return r.getOne(ctx, "order_id", orderID)
}

// GetByReference retrieves an order by its payment-provider reference
func (r *PostgresOrderRepository) GetByReference(ctx context.Context, reference string) (*models.Order, error) {
	return r.getOne(ctx, "paynow_reference", reference)
}

func (r *PostgresOrderRepository) getOne(ctx context.Context, column, value string) (*models.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE ` + column + ` = $1`

	var order models.Order
	err := r.db.DB.GetContext(ctx, &order, query, value)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		r.logger.Error("Failed to get order", "error", err, column, value)
		return nil, fmt.Errorf("%w: %v", ErrDatabase, err)
	}

	return &order, nil
}

// GetAll retrieves orders newest first with limit and offset
func (r *PostgresOrderRepository) GetAll(ctx context.Context, limit, offset int) ([]*models.Order, error) {
	query := `
		SELECT ` + orderColumns + `
		FROM orders
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2
	`

	var orders []*models.Order
	err := r.db.DB.SelectContext(ctx, &orders, query, limit, offset)

	if err != nil {
		r.logger.Error("Failed to get all orders", "error", err, "limit", limit, "offset", offset)
		return nil, fmt.Errorf("%w: %v", ErrDatabase, err)
	}

	return orders, nil
}

// Count counts the total number of orders
func (r *PostgresOrderRepository) Count(ctx context.Context) (int, error) {
	var count int
	err := r.db.DB.GetContext(ctx, &count, `SELECT COUNT(*) FROM orders`)

	if err != nil {
		r.logger.Error("Failed to count orders", "error", err)
		return 0, fmt.Errorf("%w: %v", ErrDatabase, err)
	}

	return count, nil
}

// TransitionStatus moves a still-pending order to the given terminal status
// and writes the event in the same transaction. The status predicate makes
// concurrent webhook and admin transitions race-safe: exactly one writer
// sees rowsAffected == 1.
func (r *PostgresOrderRepository) TransitionStatus(ctx context.Context, id string, to models.OrderStatus, event *models.OutboxMessage) (bool, error) {
	tx, err := r.db.DB.BeginTxx(ctx, nil)

	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrDatabase, err)
	}

	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
				r.logger.Error("Failed to rollback transaction", "error", rbErr)
			}
		}
	}()

	query := `
		UPDATE orders
		SET status = $1, updated_at = $2
		WHERE id = $3 AND status = $4
	`

	result, err := tx.ExecContext(ctx, query, to, models.GetCurrentTime(), id, models.OrderStatusPendingPayment)

	if err != nil {
		r.logger.Error("Failed to transition order status", "error", err, "id", id, "to", to)
		return false, fmt.Errorf("%w: %v", ErrDatabase, err)
	}

	rowsAffected, err := result.RowsAffected()

	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrDatabase, err)
	}

	if rowsAffected == 0 {
		if err = tx.Rollback(); err != nil {
			return false, fmt.Errorf("%w: %v", ErrDatabase, err)
		}
		return false, nil
	}

	if event != nil {
		if err = insertOutboxMessage(ctx, tx, event); err != nil {
			r.logger.Error("Failed to create outbox message", "error", err, "id", id)
			return false, err
		}
	}

	if err = tx.Commit(); err != nil {
		return false, fmt.Errorf("%w: %v", ErrDatabase, err)
	}

	return true, nil
}

// UpdatePaymentMethod records how a pending order will be settled
func (r *PostgresOrderRepository) UpdatePaymentMethod(ctx context.Context, id string, method models.PaymentMethod) error {
	query := `
		UPDATE orders
		SET payment_method = $1, updated_at = $2
		WHERE id = $3
	`

	result, err := r.db.DB.ExecContext(ctx, query, method, models.GetCurrentTime(), id)

	if err != nil {
		r.logger.Error("Failed to update payment method", "error", err, "id", id)
		return fmt.Errorf("%w: %v", ErrDatabase, err)
	}

	rowsAffected, err := result.RowsAffected()

	if err != nil {
		return fmt.Errorf("%w: %v", ErrDatabase, err)
	}

	if rowsAffected == 0 {
		return ErrNotFound
	}

	return nil
}

// Delete hard-deletes an order by its internal identifier
func (r *PostgresOrderRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.DB.ExecContext(ctx, `DELETE FROM orders WHERE id = $1`, id)

	if err != nil {
		r.logger.Error("Failed to delete order", "error", err, "id", id)
		return fmt.Errorf("%w: %v", ErrDatabase, err)
	}

	rowsAffected, err := result.RowsAffected()

	if err != nil {
		return fmt.Errorf("%w: %v", ErrDatabase, err)
	}

	if rowsAffected == 0 {
		return ErrNotFound
	}

	return nil
}

// insertOutboxMessage writes an outbox event inside an open transaction
func insertOutboxMessage(ctx context.Context, tx *sqlx.Tx, message *models.OutboxMessage) error {
	query := `
		INSERT INTO outbox_messages (
			aggregate_type, aggregate_id, event_type, payload, created_at, status
		) VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`

	err := tx.QueryRowContext(
		ctx,
		query,
		message.AggregateType,
		message.AggregateID,
		message.EventType,
		message.Payload,
		message.CreatedAt,
		message.Status,
	).Scan(&message.ID)

	if err != nil {
		return fmt.Errorf("%w: %v", ErrDatabase, err)
	}

	return nil
}
