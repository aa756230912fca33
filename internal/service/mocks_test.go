package service

import (
	"context"
	"sort"
	"time"

	"bloomcart/internal/domain"
	"bloomcart/internal/repository"

	"github.com/google/uuid"
)

// In-memory repositories for service tests

type mockProductRepository struct {
	products map[uuid.UUID]*domain.Product
}

func newMockProductRepository() *mockProductRepository {
	return &mockProductRepository{products: make(map[uuid.UUID]*domain.Product)}
}

func (m *mockProductRepository) Create(ctx context.Context, product *domain.Product) error {
	m.products[product.ID] = product
	return nil
}

func (m *mockProductRepository) Update(ctx context.Context, product *domain.Product) error {
	if _, exists := m.products[product.ID]; !exists {
		return repository.ErrProductNotFound
	}
	m.products[product.ID] = product
	return nil
}

func (m *mockProductRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	product, exists := m.products[id]
	if !exists {
		return nil, repository.ErrProductNotFound
	}
	copied := *product
	return &copied, nil
}

func (m *mockProductRepository) List(ctx context.Context, filter repository.ProductFilter, page, pageSize int, sortBy string, sortOrder repository.SortOrder) ([]*domain.Product, int, error) {
	matched := []*domain.Product{}
	for _, product := range m.products {
		if filter.Category != nil && product.Category != *filter.Category {
			continue
		}
		if filter.Status != nil && product.Status != *filter.Status {
			continue
		}
		copied := *product
		matched = append(matched, &copied)
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].Name < matched[j].Name })
	return matched, len(matched), nil
}

func (m *mockProductRepository) SetStatus(ctx context.Context, id uuid.UUID, status domain.ProductStatus) error {
	product, exists := m.products[id]
	if !exists {
		return repository.ErrProductNotFound
	}
	product.Status = status
	return nil
}

func (m *mockProductRepository) SetStock(ctx context.Context, id uuid.UUID, stock int) error {
	product, exists := m.products[id]
	if !exists {
		return repository.ErrProductNotFound
	}
	product.Stock = stock
	return nil
}

func (m *mockProductRepository) LockForOrder(ctx context.Context, tx repository.Querier, ids []uuid.UUID) (map[uuid.UUID]*domain.Product, error) {
	locked := make(map[uuid.UUID]*domain.Product, len(ids))
	for _, id := range ids {
		product, exists := m.products[id]
		if !exists {
			return nil, repository.ErrProductNotFound
		}
		copied := *product
		locked[id] = &copied
	}
	return locked, nil
}

func (m *mockProductRepository) DecrementStock(ctx context.Context, tx repository.Querier, id uuid.UUID, quantity int) error {
	product, exists := m.products[id]
	if !exists {
		return repository.ErrProductNotFound
	}
	if product.Stock < quantity {
		return repository.ErrInsufficientStock
	}
	product.Stock -= quantity
	return nil
}

type mockOrderRepository struct {
	orders   map[uuid.UUID]*domain.Order
	products *mockProductRepository
}

func newMockOrderRepository(products *mockProductRepository) *mockOrderRepository {
	return &mockOrderRepository{
		orders:   make(map[uuid.UUID]*domain.Order),
		products: products,
	}
}

// PlaceOrder mirrors the real transactional protocol: lock, build, persist,
// decrement. A builder error or stock failure leaves nothing behind.
func (m *mockOrderRepository) PlaceOrder(ctx context.Context, productIDs []uuid.UUID, build repository.OrderBuilder) (*domain.Order, error) {
	locked, err := m.products.LockForOrder(ctx, nil, productIDs)
	if err != nil {
		return nil, err
	}

	order, err := build(locked)
	if err != nil {
		return nil, err
	}

	for _, item := range order.Items {
		if m.products.products[item.ProductID].Stock < item.Quantity {
			return nil, repository.ErrInsufficientStock
		}
	}
	for _, item := range order.Items {
		if err := m.products.DecrementStock(ctx, nil, item.ProductID, item.Quantity); err != nil {
			return nil, err
		}
	}

	m.orders[order.ID] = order
	return order, nil
}

func (m *mockOrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Order, error) {
	order, exists := m.orders[id]
	if !exists {
		return nil, repository.ErrOrderNotFound
	}
	return order, nil
}

func (m *mockOrderRepository) ListByUser(ctx context.Context, userID uuid.UUID, status *domain.OrderStatus, page, pageSize int) ([]*domain.Order, int, error) {
	return m.List(ctx, repository.OrderFilter{UserID: &userID, Status: status}, page, pageSize)
}

func (m *mockOrderRepository) List(ctx context.Context, filter repository.OrderFilter, page, pageSize int) ([]*domain.Order, int, error) {
	matched := []*domain.Order{}
	for _, order := range m.orders {
		if filter.UserID != nil && order.UserID != *filter.UserID {
			continue
		}
		if filter.Status != nil && order.Status != *filter.Status {
			continue
		}
		if filter.From != nil && order.CreatedAt.Before(*filter.From) {
			continue
		}
		if filter.To != nil && order.CreatedAt.After(*filter.To) {
			continue
		}
		matched = append(matched, order)
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].CreatedAt.After(matched[j].CreatedAt) })
	return matched, len(matched), nil
}

func (m *mockOrderRepository) UpdateStatus(ctx context.Context, id uuid.UUID, from, to domain.OrderStatus, trackingNumber, notes string) error {
	order, exists := m.orders[id]
	if !exists || order.Status != from {
		return repository.ErrOrderStateChanged
	}
	order.Status = to
	if trackingNumber != "" {
		order.TrackingNumber = trackingNumber
	}
	if notes != "" {
		order.Notes = notes
	}
	order.UpdatedAt = time.Now()
	return nil
}

func (m *mockOrderRepository) SetPaymentStatus(ctx context.Context, id uuid.UUID, status domain.PaymentStatus) error {
	order, exists := m.orders[id]
	if !exists {
		return repository.ErrOrderNotFound
	}
	order.PaymentStatus = status
	return nil
}

func (m *mockOrderRepository) FindPurchase(ctx context.Context, userID, orderID, productID uuid.UUID) (*domain.Order, error) {
	order, exists := m.orders[orderID]
	if !exists || order.UserID != userID {
		return nil, repository.ErrPurchaseNotFound
	}
	for _, item := range order.Items {
		if item.ProductID == productID {
			return order, nil
		}
	}
	return nil, repository.ErrPurchaseNotFound
}

type mockAddressRepository struct {
	addresses map[uuid.UUID]*domain.ShippingAddress
}

func newMockAddressRepository() *mockAddressRepository {
	return &mockAddressRepository{addresses: make(map[uuid.UUID]*domain.ShippingAddress)}
}

func (m *mockAddressRepository) userAddresses(userID uuid.UUID) []*domain.ShippingAddress {
	owned := []*domain.ShippingAddress{}
	for _, address := range m.addresses {
		if address.UserID == userID {
			owned = append(owned, address)
		}
	}
	return owned
}

func (m *mockAddressRepository) Create(ctx context.Context, address *domain.ShippingAddress) error {
	owned := m.userAddresses(address.UserID)
	if len(owned) == 0 {
		address.IsDefault = true
	} else if address.IsDefault {
		for _, other := range owned {
			other.IsDefault = false
		}
	}
	m.addresses[address.ID] = address
	return nil
}

func (m *mockAddressRepository) Update(ctx context.Context, address *domain.ShippingAddress) error {
	if _, exists := m.addresses[address.ID]; !exists {
		return repository.ErrAddressNotFound
	}
	m.addresses[address.ID] = address
	return nil
}

func (m *mockAddressRepository) Delete(ctx context.Context, userID, id uuid.UUID) error {
	address, exists := m.addresses[id]
	if !exists || address.UserID != userID {
		return repository.ErrAddressNotFound
	}
	owned := m.userAddresses(userID)
	if len(owned) == 1 {
		return repository.ErrLastAddress
	}
	wasDefault := address.IsDefault
	delete(m.addresses, id)
	if wasDefault {
		for _, other := range m.userAddresses(userID) {
			other.IsDefault = true
			break
		}
	}
	return nil
}

func (m *mockAddressRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.ShippingAddress, error) {
	address, exists := m.addresses[id]
	if !exists {
		return nil, repository.ErrAddressNotFound
	}
	return address, nil
}

func (m *mockAddressRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.ShippingAddress, error) {
	owned := m.userAddresses(userID)
	sort.Slice(owned, func(i, j int) bool { return owned[i].IsDefault && !owned[j].IsDefault })
	return owned, nil
}

func (m *mockAddressRepository) SetDefault(ctx context.Context, userID, id uuid.UUID) error {
	target, exists := m.addresses[id]
	if !exists || target.UserID != userID {
		return repository.ErrAddressNotFound
	}
	for _, address := range m.userAddresses(userID) {
		address.IsDefault = false
	}
	target.IsDefault = true
	return nil
}

func (m *mockAddressRepository) FindDefault(ctx context.Context, userID uuid.UUID) (*domain.ShippingAddress, error) {
	for _, address := range m.userAddresses(userID) {
		if address.IsDefault {
			return address, nil
		}
	}
	return nil, repository.ErrNoDefaultAddress
}

type mockReviewRepository struct {
	reviews map[uuid.UUID]*domain.ProductReview
}

func newMockReviewRepository() *mockReviewRepository {
	return &mockReviewRepository{reviews: make(map[uuid.UUID]*domain.ProductReview)}
}

func (m *mockReviewRepository) Create(ctx context.Context, review *domain.ProductReview) error {
	for _, existing := range m.reviews {
		if existing.UserID == review.UserID && existing.ProductID == review.ProductID &&
			existing.OrderID != nil && review.OrderID != nil && *existing.OrderID == *review.OrderID {
			return repository.ErrDuplicateReview
		}
	}
	m.reviews[review.ID] = review
	return nil
}

func (m *mockReviewRepository) Update(ctx context.Context, review *domain.ProductReview) error {
	if _, exists := m.reviews[review.ID]; !exists {
		return repository.ErrReviewNotFound
	}
	m.reviews[review.ID] = review
	return nil
}

func (m *mockReviewRepository) Delete(ctx context.Context, id uuid.UUID) error {
	if _, exists := m.reviews[id]; !exists {
		return repository.ErrReviewNotFound
	}
	delete(m.reviews, id)
	return nil
}

func (m *mockReviewRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.ProductReview, error) {
	review, exists := m.reviews[id]
	if !exists {
		return nil, repository.ErrReviewNotFound
	}
	return review, nil
}

func (m *mockReviewRepository) ListByProduct(ctx context.Context, productID uuid.UUID, approvedOnly bool, page, pageSize int) ([]*domain.ProductReview, int, error) {
	matched := []*domain.ProductReview{}
	for _, review := range m.reviews {
		if review.ProductID != productID {
			continue
		}
		if approvedOnly && !review.IsApproved {
			continue
		}
		matched = append(matched, review)
	}
	return matched, len(matched), nil
}

func (m *mockReviewRepository) RatingSummary(ctx context.Context, productID uuid.UUID) (domain.RatingSummary, error) {
	sum, count := 0, 0
	for _, review := range m.reviews {
		if review.ProductID == productID && review.IsApproved {
			sum += review.Rating
			count++
		}
	}
	summary := domain.RatingSummary{Count: count}
	if count > 0 {
		summary.Average = float64(sum) / float64(count)
	}
	return summary, nil
}

func (m *mockReviewRepository) IncrementHelpful(ctx context.Context, id uuid.UUID) error {
	review, exists := m.reviews[id]
	if !exists {
		return repository.ErrReviewNotFound
	}
	review.HelpfulCount++
	return nil
}

func (m *mockReviewRepository) IncrementReported(ctx context.Context, id uuid.UUID) error {
	review, exists := m.reviews[id]
	if !exists {
		return repository.ErrReviewNotFound
	}
	review.ReportedCount++
	return nil
}

type wishlistKey struct {
	userID    uuid.UUID
	productID uuid.UUID
}

type mockWishlistRepository struct {
	items map[wishlistKey]*domain.WishlistItem
}

func newMockWishlistRepository() *mockWishlistRepository {
	return &mockWishlistRepository{items: make(map[wishlistKey]*domain.WishlistItem)}
}

func (m *mockWishlistRepository) Add(ctx context.Context, item *domain.WishlistItem) error {
	key := wishlistKey{userID: item.UserID, productID: item.ProductID}
	if _, exists := m.items[key]; exists {
		return repository.ErrDuplicateWishlistItem
	}
	m.items[key] = item
	return nil
}

func (m *mockWishlistRepository) Remove(ctx context.Context, userID, productID uuid.UUID) error {
	key := wishlistKey{userID: userID, productID: productID}
	if _, exists := m.items[key]; !exists {
		return repository.ErrWishlistItemNotFound
	}
	delete(m.items, key)
	return nil
}

func (m *mockWishlistRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.WishlistItem, error) {
	owned := []*domain.WishlistItem{}
	for key, item := range m.items {
		if key.userID == userID {
			owned = append(owned, item)
		}
	}
	sort.Slice(owned, func(i, j int) bool { return owned[i].CreatedAt.After(owned[j].CreatedAt) })
	return owned, nil
}

func (m *mockWishlistRepository) Contains(ctx context.Context, userID, productID uuid.UUID) (bool, error) {
	_, exists := m.items[wishlistKey{userID: userID, productID: productID}]
	return exists, nil
}

func (m *mockWishlistRepository) Stats(ctx context.Context, userID uuid.UUID) (domain.WishlistStats, error) {
	stats := domain.WishlistStats{}
	for key, item := range m.items {
		if key.userID != userID {
			continue
		}
		stats.Total++
		switch item.Priority {
		case domain.WishlistPriorityHigh:
			stats.High++
		case domain.WishlistPriorityMedium:
			stats.Medium++
		case domain.WishlistPriorityLow:
			stats.Low++
		}
	}
	return stats, nil
}
