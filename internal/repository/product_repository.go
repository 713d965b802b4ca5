package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/kudzaim/kiosk-commerce/internal/database"
	"github.com/kudzaim/kiosk-commerce/internal/models"
	"github.com/kudzaim/kiosk-commerce/pkg/logger"
)

const productColumns = `
	id, name, price, currency, description, category, sizes, colors, images,
	created_at, updated_at
`

// PostgresProductRepository handles database operations for catalog products
type PostgresProductRepository struct {
	db     *database.Database
	logger logger.Logger
}

// NewProductRepository creates a new PostgresProductRepository
func NewProductRepository(db *database.Database, logger logger.Logger) *PostgresProductRepository {
	return &PostgresProductRepository{
		db:     db,
		logger: logger,
	}
}

var _ ProductRepository = (*PostgresProductRepository)(nil)

// Create inserts a new product
func (r *PostgresProductRepository) Create(ctx context.Context, p *models.Product) error {
	query := `
		INSERT INTO products (` + productColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`

	_, err := r.db.DB.ExecContext(
		ctx,
		query,
		p.ID,
		p.Name,
		p.Price,
		p.Currency,
		p.Description,
		p.Category,
		p.Sizes,
		p.Colors,
		p.Images,
		p.CreatedAt,
		p.UpdatedAt,
	)

	if err != nil {
		r.logger.Error("Failed to create product", "error", err, "productID", p.ID)
		return fmt.Errorf("%w: %v", ErrDatabase, err)
	}

	return nil
}

// GetByID retrieves a product by ID
func (r *PostgresProductRepository) GetByID(ctx context.Context, id string) (*models.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE id = $1`

	var p models.Product
	err := r.db.DB.GetContext(ctx, &p, query, id)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		r.logger.Error("Failed to get product", "error", err, "productID", id)
		return nil, fmt.Errorf("%w: %v", ErrDatabase, err)
	}

	return &p, nil
}

// GetAll retrieves the whole catalog, newest first
func (r *PostgresProductRepository) GetAll(ctx context.Context) ([]*models.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products ORDER BY created_at DESC`

	var products []*models.Product
	err := r.db.DB.SelectContext(ctx, &products, query)

	if err != nil {
		r.logger.Error("Failed to get all products", "error", err)
		return nil, fmt.Errorf("%w: %v", ErrDatabase, err)
	}

	return products, nil
}

// Update updates an existing product
func (r *PostgresProductRepository) Update(ctx context.Context, p *models.Product) error {
	query := `
		UPDATE products
		SET name = $1, price = $2, currency = $3, description = $4,
		    category = $5, sizes = $6, colors = $7, images = $8, updated_at = $9
		WHERE id = $10
	`

	result, err := r.db.DB.ExecContext(
		ctx,
		query,
		p.Name,
		p.Price,
		p.Currency,
		p.Description,
		p.Category,
		p.Sizes,
		p.Colors,
		p.Images,
		models.GetCurrentTime(),
		p.ID,
	)

	if err != nil {
		r.logger.Error("Failed to update product", "error", err, "productID", p.ID)
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

// Delete deletes a product by ID
func (r *PostgresProductRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.DB.ExecContext(ctx, `DELETE FROM products WHERE id = $1`, id)

	if err != nil {
		r.logger.Error("Failed to delete product", "error", err, "productID", id)
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
