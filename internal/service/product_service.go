package service

import (
	"context"
	"errors"
	"strings"

	"github.com/kudzaim/kiosk-commerce/internal/models"
	"github.com/kudzaim/kiosk-commerce/internal/repository"
	apperrors "github.com/kudzaim/kiosk-commerce/pkg/errors"
	"github.com/kudzaim/kiosk-commerce/pkg/logger"
)

// ProductService manages the catalog
type ProductService struct {
	products repository.ProductRepository
	logger   logger.Logger
}

// NewProductService creates a new ProductService
func NewProductService(products repository.ProductRepository, logger logger.Logger) *ProductService {
	return &ProductService{
		products: products,
		logger:   logger,
	}
}

// ProductRequest is the admin create/update payload
type ProductRequest struct {
	Name        string            `json:"name"`
	Price       float64           `json:"price"`
	Currency    string            `json:"currency"`
	Description string            `json:"description"`
	Category    string            `json:"category"`
	Sizes       models.StringList `json:"sizes"`
	Colors      models.ColorList  `json:"colors"`
	Images      models.ImageMap   `json:"images"`
}

func (r *ProductRequest) validate() error {
	if strings.TrimSpace(r.Name) == "" {
		return apperrors.NewValidationError("product name is required")
	}
	if r.Price < 0 {
		return apperrors.NewValidationError("price cannot be negative")
	}
	return nil
}

// CreateProduct validates and stores a new catalog product
func (s *ProductService) CreateProduct(ctx context.Context, req ProductRequest) (*models.Product, error) {
	if err := req.validate(); err != nil {
		return nil, err
	}

	product := models.NewProduct(req.Name, req.Price, req.Currency)
	applyProductRequest(product, req)

	if err := product.Validate(); err != nil {
		return nil, apperrors.NewValidationError(err.Error())
	}

	if err := s.products.Create(ctx, product); err != nil {
		s.logger.Error("Failed to create product", "error", err, "name", req.Name)
		return nil, apperrors.NewInternalError("failed to create product")
	}

	s.logger.Info("Product created", "productID", product.ID, "name", product.Name)

	return product, nil
}

// GetProduct retrieves a product by ID
func (s *ProductService) GetProduct(ctx context.Context, id string) (*models.Product, error) {
	product, err := s.products.GetByID(ctx, id)

	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NewNotFoundError("product not found")
		}
		s.logger.Error("Failed to get product", "error", err, "productID", id)
		return nil, apperrors.NewInternalError("failed to get product")
	}

	return product, nil
}

// ListProducts retrieves the whole catalog
func (s *ProductService) ListProducts(ctx context.Context) ([]*models.Product, error) {
	products, err := s.products.GetAll(ctx)

	if err != nil {
		s.logger.Error("Failed to list products", "error", err)
		return nil, apperrors.NewInternalError("failed to list products")
	}

	return products, nil
}

// UpdateProduct replaces the mutable fields of an existing product
func (s *ProductService) UpdateProduct(ctx context.Context, id string, req ProductRequest) (*models.Product, error) {
	if err := req.validate(); err != nil {
		return nil, err
	}

	product, err := s.GetProduct(ctx, id)

	if err != nil {
		return nil, err
	}

	product.Name = req.Name
	product.Price = req.Price
	if req.Currency != "" {
		product.Currency = req.Currency
	}
	applyProductRequest(product, req)

	if err := product.Validate(); err != nil {
		return nil, apperrors.NewValidationError(err.Error())
	}

	if err := s.products.Update(ctx, product); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NewNotFoundError("product not found")
		}
		s.logger.Error("Failed to update product", "error", err, "productID", id)
		return nil, apperrors.NewInternalError("failed to update product")
	}

	return product, nil
}

// DeleteProduct removes a product from the catalog
func (s *ProductService) DeleteProduct(ctx context.Context, id string) error {
	err := s.products.Delete(ctx, id)

	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperrors.NewNotFoundError("product not found")
		}
		s.logger.Error("Failed to delete product", "error", err, "productID", id)
		return apperrors.NewInternalError("failed to delete product")
	}

	s.logger.Info("Product deleted", "productID", id)
	return nil
}

func applyProductRequest(product *models.Product, req ProductRequest) {
	product.Description = req.Description

	if req.Category != "" {
		product.Category = req.Category
	}
	if req.Sizes != nil {
		product.Sizes = req.Sizes
	}
	if req.Colors != nil {
		product.Colors = req.Colors
	}
	if req.Images != nil {
		product.Images = req.Images
	}

	product.UpdatedAt = models.GetCurrentTime()
}
