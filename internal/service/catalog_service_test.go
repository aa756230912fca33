package service

import (
	"context"
	"testing"
	"time"

	"bloomcart/internal/domain"
	"bloomcart/internal/repository"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCatalogFixture() (CatalogService, *mockProductRepository, *mockReviewRepository) {
	products := newMockProductRepository()
	reviews := newMockReviewRepository()
	return NewCatalogService(products, reviews), products, reviews
}

func TestCreateProduct_MissingFields(t *testing.T) {
	service, _, _ := newCatalogFixture()
	ctx := context.Background()

	_, err := service.CreateProduct(ctx, ProductInput{})

	var missingErr *MissingFieldsError
	require.ErrorAs(t, err, &missingErr)
	assert.ElementsMatch(t, []string{"name", "price", "category"}, missingErr.Fields)

	_, err = service.CreateProduct(ctx, ProductInput{Name: "Tulip Mix", Price: 12.99})
	require.ErrorAs(t, err, &missingErr)
	assert.Equal(t, []string{"category"}, missingErr.Fields)
}

func TestCreateProduct_InvalidValues(t *testing.T) {
	service, _, _ := newCatalogFixture()
	ctx := context.Background()

	_, err := service.CreateProduct(ctx, ProductInput{Name: "Tulip Mix", Price: -5, Category: "bouquets"})
	assert.ErrorIs(t, err, ErrInvalidPrice)

	_, err = service.CreateProduct(ctx, ProductInput{Name: "Tulip Mix", Price: 12.99, Category: "bouquets", Stock: -1})
	assert.ErrorIs(t, err, ErrInvalidStock)
}

func TestCreateProduct_DefaultsToActive(t *testing.T) {
	service, products, _ := newCatalogFixture()
	ctx := context.Background()

	created, err := service.CreateProduct(ctx, ProductInput{Name: "Tulip Mix", Price: 12.99, Category: "bouquets", Stock: 8})
	require.NoError(t, err)
	assert.Equal(t, domain.ProductStatusActive, created.Status)

	stored, err := products.FindByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Tulip Mix", stored.Name)
}

func TestDeleteProduct_SoftDeletes(t *testing.T) {
	service, products, _ := newCatalogFixture()
	ctx := context.Background()

	created, err := service.CreateProduct(ctx, ProductInput{Name: "Old Wreath", Price: 45, Category: "wreaths"})
	require.NoError(t, err)

	require.NoError(t, service.DeleteProduct(ctx, created.ID))

	// The row survives with a discontinued status so order history keeps its reference
	stored, err := products.FindByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.ProductStatusDiscontinued, stored.Status)

	assert.ErrorIs(t, service.DeleteProduct(ctx, uuid.New()), repository.ErrProductNotFound)
}

func TestAdjustStock(t *testing.T) {
	service, _, _ := newCatalogFixture()
	ctx := context.Background()

	created, err := service.CreateProduct(ctx, ProductInput{Name: "Fern Pot", Price: 9.99, Category: "plants", Stock: 2})
	require.NoError(t, err)

	updated, err := service.AdjustStock(ctx, created.ID, 40)
	require.NoError(t, err)
	assert.Equal(t, 40, updated.Stock)

	_, err = service.AdjustStock(ctx, created.ID, -1)
	assert.ErrorIs(t, err, ErrInvalidStock)
}

func TestGetProduct_IncludesReviewsAndRating(t *testing.T) {
	service, _, reviews := newCatalogFixture()
	ctx := context.Background()

	created, err := service.CreateProduct(ctx, ProductInput{Name: "Peony Crown", Price: 54.99, Category: "bouquets", Stock: 3})
	require.NoError(t, err)

	orderID := uuid.New()
	for _, rating := range []int{5, 4} {
		oid := orderID
		require.NoError(t, reviews.Create(ctx, &domain.ProductReview{
			ID:         uuid.New(),
			ProductID:  created.ID,
			UserID:     uuid.New(),
			OrderID:    &oid,
			Rating:     rating,
			IsApproved: true,
			CreatedAt:  time.Now(),
		}))
	}
	// Unapproved reviews stay out of the aggregate
	hidden := uuid.New()
	require.NoError(t, reviews.Create(ctx, &domain.ProductReview{
		ID:        uuid.New(),
		ProductID: created.ID,
		UserID:    uuid.New(),
		OrderID:   &hidden,
		Rating:    1,
		CreatedAt: time.Now(),
	}))

	detail, err := service.GetProduct(ctx, created.ID)
	require.NoError(t, err)
	assert.Len(t, detail.Reviews, 2)
	assert.Equal(t, 2, detail.Rating.Count)
	assert.InDelta(t, 4.5, detail.Rating.Average, 0.001)
}
