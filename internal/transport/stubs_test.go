package transport

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"bloomcart/internal/domain"
	"bloomcart/internal/middleware"
	"bloomcart/internal/repository"
	"bloomcart/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Stub services for handler tests. Only the function fields a test sets are
// expected to be called; anything else panics loudly.

type stubOrderService struct {
	placeOrder    func(ctx context.Context, input service.PlaceOrderInput) (*domain.Order, error)
	getOrder      func(ctx context.Context, id, requesterID uuid.UUID, isAdmin bool) (*domain.Order, error)
	getUserOrders func(ctx context.Context, userID uuid.UUID, status string, page, pageSize int) ([]*domain.Order, int, error)
	listAllOrders func(ctx context.Context, query service.AdminOrderQuery, page, pageSize int) (*service.OrderPage, error)
	updateStatus  func(ctx context.Context, id uuid.UUID, status, trackingNumber, notes string) (*domain.Order, error)
	cancelOrder   func(ctx context.Context, id, requesterID uuid.UUID, isAdmin bool, reason string) (*domain.Order, error)
}

func (s *stubOrderService) PlaceOrder(ctx context.Context, input service.PlaceOrderInput) (*domain.Order, error) {
	return s.placeOrder(ctx, input)
}

func (s *stubOrderService) GetOrder(ctx context.Context, id, requesterID uuid.UUID, isAdmin bool) (*domain.Order, error) {
	return s.getOrder(ctx, id, requesterID, isAdmin)
}

func (s *stubOrderService) GetUserOrders(ctx context.Context, userID uuid.UUID, status string, page, pageSize int) ([]*domain.Order, int, error) {
	return s.getUserOrders(ctx, userID, status, page, pageSize)
}

func (s *stubOrderService) ListAllOrders(ctx context.Context, query service.AdminOrderQuery, page, pageSize int) (*service.OrderPage, error) {
	return s.listAllOrders(ctx, query, page, pageSize)
}

func (s *stubOrderService) UpdateStatus(ctx context.Context, id uuid.UUID, status, trackingNumber, notes string) (*domain.Order, error) {
	return s.updateStatus(ctx, id, status, trackingNumber, notes)
}

func (s *stubOrderService) CancelOrder(ctx context.Context, id, requesterID uuid.UUID, isAdmin bool, reason string) (*domain.Order, error) {
	return s.cancelOrder(ctx, id, requesterID, isAdmin, reason)
}

type stubCatalogService struct {
	listProducts  func(ctx context.Context, filter repository.ProductFilter, page, pageSize int, sortBy string, sortOrder repository.SortOrder) ([]*domain.Product, int, error)
	getProduct    func(ctx context.Context, id uuid.UUID) (*service.ProductDetail, error)
	createProduct func(ctx context.Context, input service.ProductInput) (*domain.Product, error)
	updateProduct func(ctx context.Context, id uuid.UUID, input service.ProductInput) (*domain.Product, error)
	deleteProduct func(ctx context.Context, id uuid.UUID) error
	adjustStock   func(ctx context.Context, id uuid.UUID, stock int) (*domain.Product, error)
}

func (s *stubCatalogService) ListProducts(ctx context.Context, filter repository.ProductFilter, page, pageSize int, sortBy string, sortOrder repository.SortOrder) ([]*domain.Product, int, error) {
	return s.listProducts(ctx, filter, page, pageSize, sortBy, sortOrder)
}

func (s *stubCatalogService) GetProduct(ctx context.Context, id uuid.UUID) (*service.ProductDetail, error) {
	return s.getProduct(ctx, id)
}

func (s *stubCatalogService) CreateProduct(ctx context.Context, input service.ProductInput) (*domain.Product, error) {
	return s.createProduct(ctx, input)
}

func (s *stubCatalogService) UpdateProduct(ctx context.Context, id uuid.UUID, input service.ProductInput) (*domain.Product, error) {
	return s.updateProduct(ctx, id, input)
}

func (s *stubCatalogService) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	return s.deleteProduct(ctx, id)
}

func (s *stubCatalogService) AdjustStock(ctx context.Context, id uuid.UUID, stock int) (*domain.Product, error) {
	return s.adjustStock(ctx, id, stock)
}

type stubWishlistService struct {
	add        func(ctx context.Context, userID, productID uuid.UUID, input service.WishlistInput) (*domain.WishlistItem, error)
	remove     func(ctx context.Context, userID, productID uuid.UUID) error
	list       func(ctx context.Context, userID uuid.UUID) ([]*service.WishlistEntry, error)
	contains   func(ctx context.Context, userID, productID uuid.UUID) (bool, error)
	moveToCart func(ctx context.Context, userID, productID uuid.UUID) (*domain.CartLine, error)
	stats      func(ctx context.Context, userID uuid.UUID) (domain.WishlistStats, error)
}

func (s *stubWishlistService) Add(ctx context.Context, userID, productID uuid.UUID, input service.WishlistInput) (*domain.WishlistItem, error) {
	return s.add(ctx, userID, productID, input)
}

func (s *stubWishlistService) Remove(ctx context.Context, userID, productID uuid.UUID) error {
	return s.remove(ctx, userID, productID)
}

func (s *stubWishlistService) List(ctx context.Context, userID uuid.UUID) ([]*service.WishlistEntry, error) {
	return s.list(ctx, userID)
}

func (s *stubWishlistService) Contains(ctx context.Context, userID, productID uuid.UUID) (bool, error) {
	return s.contains(ctx, userID, productID)
}

func (s *stubWishlistService) MoveToCart(ctx context.Context, userID, productID uuid.UUID) (*domain.CartLine, error) {
	return s.moveToCart(ctx, userID, productID)
}

func (s *stubWishlistService) Stats(ctx context.Context, userID uuid.UUID) (domain.WishlistStats, error) {
	return s.stats(ctx, userID)
}

// authedRequest attaches user claims the way the auth middleware would
func authedRequest(req *http.Request, userID uuid.UUID, role string) *http.Request {
	ctx := context.WithValue(req.Context(), middleware.UserIDKey, userID.String())
	ctx = context.WithValue(ctx, middleware.UserRoleKey, role)
	return req.WithContext(ctx)
}

// withURLParam injects a chi route parameter for direct handler invocation
func withURLParam(req *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

func testLogger(t *testing.T) *zap.Logger {
	t.Helper()
	return zap.NewNop()
}

func doJSON(t *testing.T, handler http.HandlerFunc, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	handler(w, req)
	return w
}
