package service

import (
	"context"
	"errors"
	"time"

	"bloomcart/internal/domain"
	"bloomcart/internal/repository"

	"github.com/google/uuid"
)

var ErrInvalidPriority = errors.New("invalid wishlist priority")

// WishlistInput carries the optional attributes of a saved product
type WishlistInput struct {
	Notes           string
	Priority        string
	NotifyOnRestock bool
}

// WishlistEntry is a wishlist item joined with its current product
type WishlistEntry struct {
	Item    *domain.WishlistItem `json:"item"`
	Product *domain.Product      `json:"product"`
}

// WishlistService defines the interface for wishlist business logic
type WishlistService interface {
	Add(ctx context.Context, userID, productID uuid.UUID, input WishlistInput) (*domain.WishlistItem, error)
	Remove(ctx context.Context, userID, productID uuid.UUID) error
	List(ctx context.Context, userID uuid.UUID) ([]*WishlistEntry, error)
	Contains(ctx context.Context, userID, productID uuid.UUID) (bool, error)
	MoveToCart(ctx context.Context, userID, productID uuid.UUID) (*domain.CartLine, error)
	Stats(ctx context.Context, userID uuid.UUID) (domain.WishlistStats, error)
}

type wishlistService struct {
	wishlistRepo repository.WishlistRepository
	productRepo  repository.ProductRepository
}

// NewWishlistService creates a new instance of WishlistService
func NewWishlistService(wishlistRepo repository.WishlistRepository, productRepo repository.ProductRepository) WishlistService {
	return &wishlistService{
		wishlistRepo: wishlistRepo,
		productRepo:  productRepo,
	}
}

// Add saves a product to the user's wishlist. Re-adding the same product
// fails with a duplicate error rather than creating a second entry.
func (s *wishlistService) Add(ctx context.Context, userID, productID uuid.UUID, input WishlistInput) (*domain.WishlistItem, error) {
	if _, err := s.productRepo.FindByID(ctx, productID); err != nil {
		return nil, err
	}

	priority := domain.WishlistPriorityMedium
	if input.Priority != "" {
		parsed, err := domain.ToWishlistPriority(input.Priority)
		if err != nil {
			return nil, ErrInvalidPriority
		}
		priority = parsed
	}

	item := &domain.WishlistItem{
		ID:              uuid.New(),
		UserID:          userID,
		ProductID:       productID,
		Notes:           input.Notes,
		Priority:        priority,
		NotifyOnRestock: input.NotifyOnRestock,
		CreatedAt:       time.Now(),
	}

	if err := s.wishlistRepo.Add(ctx, item); err != nil {
		return nil, err
	}

	return item, nil
}

// Remove takes a product off the user's wishlist
func (s *wishlistService) Remove(ctx context.Context, userID, productID uuid.UUID) error {
	return s.wishlistRepo.Remove(ctx, userID, productID)
}

// List returns the user's wishlist joined with the current product state, so
// clients can show prices and availability as they are now
func (s *wishlistService) List(ctx context.Context, userID uuid.UUID) ([]*WishlistEntry, error) {
	items, err := s.wishlistRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	entries := make([]*WishlistEntry, 0, len(items))
	for _, item := range items {
		product, err := s.productRepo.FindByID(ctx, item.ProductID)
		if err != nil {
			return nil, err
		}
		entries = append(entries, &WishlistEntry{Item: item, Product: product})
	}

	return entries, nil
}

// Contains reports whether the product is on the user's wishlist
func (s *wishlistService) Contains(ctx context.Context, userID, productID uuid.UUID) (bool, error) {
	return s.wishlistRepo.Contains(ctx, userID, productID)
}

// MoveToCart projects a wishlist entry into a cart line at the product's
// current price. The cart lives client-side, so nothing is written; the
// entry stays on the wishlist until the client removes it.
func (s *wishlistService) MoveToCart(ctx context.Context, userID, productID uuid.UUID) (*domain.CartLine, error) {
	onList, err := s.wishlistRepo.Contains(ctx, userID, productID)
	if err != nil {
		return nil, err
	}
	if !onList {
		return nil, repository.ErrWishlistItemNotFound
	}

	product, err := s.productRepo.FindByID(ctx, productID)
	if err != nil {
		return nil, err
	}

	return &domain.CartLine{
		ProductID:   product.ID,
		ProductName: product.Name,
		UnitPrice:   product.Price,
		Quantity:    1,
		IsAvailable: product.IsAvailable(),
	}, nil
}

// Stats returns the per-priority counts of the user's wishlist
func (s *wishlistService) Stats(ctx context.Context, userID uuid.UUID) (domain.WishlistStats, error) {
	return s.wishlistRepo.Stats(ctx, userID)
}
