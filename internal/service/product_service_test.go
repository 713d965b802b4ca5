package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kudzaim/kiosk-commerce/internal/models"
	"github.com/kudzaim/kiosk-commerce/internal/repository"
	apperrors "github.com/kudzaim/kiosk-commerce/pkg/errors"
	"github.com/kudzaim/kiosk-commerce/pkg/logger"
)

func newTestProductService() *ProductService {
	store := repository.NewMemoryStore()
	return NewProductService(store.Products(), logger.NewLogger("error"))
}

func TestCreateProductDefaults(t *testing.T) {
	svc := newTestProductService()

	product, err := svc.CreateProduct(context.Background(), ProductRequest{
		Name:  "Sneaker",
		Price: 120,
	})
	require.NoError(t, err)

	assert.Equal(t, "ZAR", product.Currency)
	assert.Equal(t, "Uncategorized", product.Category)
	assert.NotNil(t, product.Sizes)
	assert.NotNil(t, product.Colors)
	assert.NotNil(t, product.Images)
}

func TestCreateProductRejectsUnknownColor(t *testing.T) {
	svc := newTestProductService()

	_, err := svc.CreateProduct(context.Background(), ProductRequest{
		Name:   "Sneaker",
		Price:  120,
		Colors: models.ColorList{"Chartreuse"},
	})
	require.Error(t, err)
	assert.Equal(t, 400, apperrors.StatusCode(err))
}

func TestCreateProductRejectsImagesOnUnselectedColor(t *testing.T) {
	svc := newTestProductService()

	_, err := svc.CreateProduct(context.Background(), ProductRequest{
		Name:   "Sneaker",
		Price:  120,
		Colors: models.ColorList{"Black"},
		Images: models.ImageMap{"White": {"https://cdn.example.com/w1.jpg"}},
	})
	require.Error(t, err)
	assert.Equal(t, 400, apperrors.StatusCode(err))
}

func TestCreateProductValidation(t *testing.T) {
	svc := newTestProductService()

	_, err := svc.CreateProduct(context.Background(), ProductRequest{Name: " ", Price: 10})
	assert.Equal(t, 400, apperrors.StatusCode(err))

	_, err = svc.CreateProduct(context.Background(), ProductRequest{Name: "Sneaker", Price: -1})
	assert.Equal(t, 400, apperrors.StatusCode(err))
}

func TestUpdateProduct(t *testing.T) {
	svc := newTestProductService()

	product, err := svc.CreateProduct(context.Background(), ProductRequest{
		Name:  "Sneaker",
		Price: 120,
	})
	require.NoError(t, err)

	updated, err := svc.UpdateProduct(context.Background(), product.ID, ProductRequest{
		Name:     "Sneaker II",
		Price:    150,
		Category: "Footwear",
		Sizes:    models.StringList{"41", "42"},
		Colors:   models.ColorList{"Black", "Rose Gold"},
		Images:   models.ImageMap{"Black": {"https://cdn.example.com/b1.jpg"}},
	})
	require.NoError(t, err)

	assert.Equal(t, "Sneaker II", updated.Name)
	assert.Equal(t, 150.0, updated.Price)
	assert.Equal(t, "Footwear", updated.Category)
	assert.True(t, updated.Colors.Contains("Rose Gold"))
}

func TestUpdateProductUnknownID(t *testing.T) {
	svc := newTestProductService()

	_, err := svc.UpdateProduct(context.Background(), "prd-missing", ProductRequest{
		Name:  "Sneaker",
		Price: 120,
	})
	require.Error(t, err)
	assert.Equal(t, 404, apperrors.StatusCode(err))
}

func TestDeleteProduct(t *testing.T) {
	svc := newTestProductService()

	product, err := svc.CreateProduct(context.Background(), ProductRequest{
		Name:  "Sneaker",
		Price: 120,
	})
	require.NoError(t, err)

	require.NoError(t, svc.DeleteProduct(context.Background(), product.ID))

	err = svc.DeleteProduct(context.Background(), product.ID)
	require.Error(t, err)
	assert.Equal(t, 404, apperrors.StatusCode(err))
}
