package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"bloomcart/internal/domain"
	"bloomcart/internal/repository"
	"bloomcart/internal/service"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func activeProduct(name string, price float64, stock int) *domain.Product {
	return &domain.Product{
		ID:        uuid.New(),
		Name:      name,
		Price:     price,
		Category:  "bouquets",
		Status:    domain.ProductStatusActive,
		Stock:     stock,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
}

func TestListProducts_EchoesFiltersAndClampsLimit(t *testing.T) {
	catalog := &stubCatalogService{
		listProducts: func(ctx context.Context, filter repository.ProductFilter, page, pageSize int, sortBy string, sortOrder repository.SortOrder) ([]*domain.Product, int, error) {
			require.NotNil(t, filter.Category)
			assert.Equal(t, "roses", *filter.Category)
			assert.Equal(t, "tulip", filter.Search)
			assert.Equal(t, 1, page)
			assert.Equal(t, 50, pageSize)
			assert.Equal(t, "price", sortBy)
			assert.Equal(t, repository.SortOrderAsc, sortOrder)

			return []*domain.Product{activeProduct("Red Rose Dozen", 49.99, 12)}, 1, nil
		},
	}
	handler := NewProductHandler(catalog, &stubWishlistService{}, testLogger(t))

	req := httptest.NewRequest(http.MethodGet,
		"/products?category=roses&search=tulip&limit=999&sort=price&order=asc", nil)
	w := doJSON(t, handler.ListProducts, req)

	require.Equal(t, http.StatusOK, w.Code)

	var resp ProductListResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	require.Len(t, resp.Products, 1)
	assert.True(t, resp.Products[0].IsAvailable)
	assert.Equal(t, 50, resp.Pagination.Limit)
	assert.Equal(t, "roses", resp.Filters["category"])
	assert.Equal(t, "tulip", resp.Filters["search"])
}

func TestListProducts_InvalidStatus(t *testing.T) {
	handler := NewProductHandler(&stubCatalogService{}, &stubWishlistService{}, testLogger(t))

	req := httptest.NewRequest(http.MethodGet, "/products?status=vaporware", nil)
	w := doJSON(t, handler.ListProducts, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetProduct_NotFound(t *testing.T) {
	catalog := &stubCatalogService{
		getProduct: func(ctx context.Context, id uuid.UUID) (*service.ProductDetail, error) {
			return nil, repository.ErrProductNotFound
		},
	}
	handler := NewProductHandler(catalog, &stubWishlistService{}, testLogger(t))

	id := uuid.New()
	req := httptest.NewRequest(http.MethodGet, "/products/"+id.String(), nil)
	req = withURLParam(req, "id", id.String())
	w := doJSON(t, handler.GetProduct, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGetProduct_WishlistFlagForLoggedInUser(t *testing.T) {
	product := activeProduct("Sunflower Bunch", 18.00, 6)
	userID := uuid.New()

	catalog := &stubCatalogService{
		getProduct: func(ctx context.Context, id uuid.UUID) (*service.ProductDetail, error) {
			return &service.ProductDetail{
				Product: product,
				Reviews: []*domain.ProductReview{},
				Rating:  domain.RatingSummary{Average: 4.0, Count: 3},
			}, nil
		},
	}
	wishlist := &stubWishlistService{
		contains: func(ctx context.Context, uID, pID uuid.UUID) (bool, error) {
			assert.Equal(t, userID, uID)
			assert.Equal(t, product.ID, pID)
			return true, nil
		},
	}
	handler := NewProductHandler(catalog, wishlist, testLogger(t))

	req := httptest.NewRequest(http.MethodGet, "/products/"+product.ID.String(), nil)
	req = withURLParam(req, "id", product.ID.String())
	w := doJSON(t, handler.GetProduct, authedRequest(req, userID, "customer"))

	require.Equal(t, http.StatusOK, w.Code)

	var resp ProductDetailResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.True(t, resp.InWishlist)
	assert.Equal(t, 4.0, resp.Rating.Average)
}

func TestGetProduct_AnonymousSkipsWishlist(t *testing.T) {
	product := activeProduct("Peony Mix", 32.00, 4)

	catalog := &stubCatalogService{
		getProduct: func(ctx context.Context, id uuid.UUID) (*service.ProductDetail, error) {
			return &service.ProductDetail{Product: product}, nil
		},
	}
	// The wishlist stub would panic if called; anonymous requests must not
	// touch it
	handler := NewProductHandler(catalog, &stubWishlistService{}, testLogger(t))

	req := httptest.NewRequest(http.MethodGet, "/products/"+product.ID.String(), nil)
	req = withURLParam(req, "id", product.ID.String())
	w := doJSON(t, handler.GetProduct, req)

	require.Equal(t, http.StatusOK, w.Code)

	var resp ProductDetailResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.False(t, resp.InWishlist)
}

func TestCreateProduct_MissingFieldsListed(t *testing.T) {
	catalog := &stubCatalogService{
		createProduct: func(ctx context.Context, input service.ProductInput) (*domain.Product, error) {
			return nil, &service.MissingFieldsError{Fields: []string{"name", "price"}}
		},
	}
	handler := NewProductHandler(catalog, &stubWishlistService{}, testLogger(t))

	body, err := json.Marshal(ProductRequest{Category: "roses"})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/products", bytes.NewReader(body))
	w := doJSON(t, handler.CreateProduct, authedRequest(req, uuid.New(), "admin"))

	require.Equal(t, http.StatusBadRequest, w.Code)

	var resp struct {
		Message       string   `json:"message"`
		MissingFields []string `json:"missingFields"`
	}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.ElementsMatch(t, []string{"name", "price"}, resp.MissingFields)
}

func TestAdjustStock_RequiresStockField(t *testing.T) {
	handler := NewProductHandler(&stubCatalogService{}, &stubWishlistService{}, testLogger(t))

	id := uuid.New()
	req := httptest.NewRequest(http.MethodPatch, "/products/"+id.String()+"/stock",
		bytes.NewReader([]byte(`{}`)))
	req = withURLParam(req, "id", id.String())
	w := doJSON(t, handler.AdjustStock, authedRequest(req, uuid.New(), "admin"))

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAdjustStock_ZeroIsValid(t *testing.T) {
	id := uuid.New()

	catalog := &stubCatalogService{
		adjustStock: func(ctx context.Context, pID uuid.UUID, stock int) (*domain.Product, error) {
			assert.Equal(t, id, pID)
			assert.Equal(t, 0, stock)
			product := activeProduct("Orchid Pot", 45.00, 0)
			product.ID = pID
			product.Stock = 0
			return product, nil
		},
	}
	handler := NewProductHandler(catalog, &stubWishlistService{}, testLogger(t))

	req := httptest.NewRequest(http.MethodPatch, "/products/"+id.String()+"/stock",
		bytes.NewReader([]byte(`{"stock": 0}`)))
	req = withURLParam(req, "id", id.String())
	w := doJSON(t, handler.AdjustStock, authedRequest(req, uuid.New(), "admin"))

	require.Equal(t, http.StatusOK, w.Code)

	var resp ProductResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.Equal(t, 0, resp.Stock)
	assert.False(t, resp.IsAvailable)
	assert.Equal(t, "out_of_stock", resp.StockStatus)
}

func TestDeleteProduct_Discontinues(t *testing.T) {
	id := uuid.New()
	deleted := false

	catalog := &stubCatalogService{
		deleteProduct: func(ctx context.Context, pID uuid.UUID) error {
			assert.Equal(t, id, pID)
			deleted = true
			return nil
		},
	}
	handler := NewProductHandler(catalog, &stubWishlistService{}, testLogger(t))

	req := httptest.NewRequest(http.MethodDelete, "/products/"+id.String(), nil)
	req = withURLParam(req, "id", id.String())
	w := doJSON(t, handler.DeleteProduct, authedRequest(req, uuid.New(), "admin"))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, deleted)
}
