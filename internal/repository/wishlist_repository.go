package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"bloomcart/internal/domain"

	"github.com/google/uuid"
)

var (
	ErrWishlistItemNotFound = errors.New("wishlist item not found")
	ErrDuplicateWishlistItem = errors.New("product is already on the wishlist")
)

// WishlistRepository defines the interface for wishlist data access
type WishlistRepository interface {
	Add(ctx context.Context, item *domain.WishlistItem) error
	Remove(ctx context.Context, userID, productID uuid.UUID) error
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.WishlistItem, error)
	Contains(ctx context.Context, userID, productID uuid.UUID) (bool, error)
	Stats(ctx context.Context, userID uuid.UUID) (domain.WishlistStats, error)
}

type wishlistRepository struct {
	db *sql.DB
}

// NewWishlistRepository creates a new instance of WishlistRepository
func NewWishlistRepository(db *sql.DB) WishlistRepository {
	return &wishlistRepository{db: db}
}

// Add inserts a wishlist entry. The unique constraint on (user_id,
// product_id) keeps the wishlist to one entry per product.
func (r *wishlistRepository) Add(ctx context.Context, item *domain.WishlistItem) error {
	query := `
		INSERT INTO wishlist_items (id, user_id, product_id, notes, priority, notify_on_restock, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := r.db.ExecContext(
		ctx,
		query,
		item.ID,
		item.UserID,
		item.ProductID,
		item.Notes,
		item.Priority,
		item.NotifyOnRestock,
		item.CreatedAt,
	)

	if err != nil {
		if strings.Contains(err.Error(), "uq_wishlist_items_entry") {
			return ErrDuplicateWishlistItem
		}
		return fmt.Errorf("failed to add wishlist item: %w", err)
	}

	return nil
}

// Remove deletes a user's wishlist entry for a product
func (r *wishlistRepository) Remove(ctx context.Context, userID, productID uuid.UUID) error {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM wishlist_items WHERE user_id = $1 AND product_id = $2`,
		userID, productID,
	)
	if err != nil {
		return fmt.Errorf("failed to remove wishlist item: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return ErrWishlistItemNotFound
	}

	return nil
}

// ListByUser retrieves a user's wishlist, newest first
func (r *wishlistRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.WishlistItem, error) {
	query := `
		SELECT id, user_id, product_id, notes, priority, notify_on_restock, created_at
		FROM wishlist_items
		WHERE user_id = $1
		ORDER BY created_at DESC
	`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list wishlist items: %w", err)
	}
	defer rows.Close()

	items := []*domain.WishlistItem{}
	for rows.Next() {
		item := &domain.WishlistItem{}
		err := rows.Scan(
			&item.ID,
			&item.UserID,
			&item.ProductID,
			&item.Notes,
			&item.Priority,
			&item.NotifyOnRestock,
			&item.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan wishlist item: %w", err)
		}
		items = append(items, item)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating wishlist items: %w", err)
	}

	return items, nil
}

// Contains reports whether the product is on the user's wishlist
func (r *wishlistRepository) Contains(ctx context.Context, userID, productID uuid.UUID) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM wishlist_items WHERE user_id = $1 AND product_id = $2)`,
		userID, productID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check wishlist: %w", err)
	}

	return exists, nil
}

// Stats returns the per-priority counts of a user's wishlist
func (r *wishlistRepository) Stats(ctx context.Context, userID uuid.UUID) (domain.WishlistStats, error) {
	query := `
		SELECT
			COUNT(*),
			COUNT(*) FILTER (WHERE priority = 'high'),
			COUNT(*) FILTER (WHERE priority = 'medium'),
			COUNT(*) FILTER (WHERE priority = 'low')
		FROM wishlist_items
		WHERE user_id = $1
	`

	var stats domain.WishlistStats
	err := r.db.QueryRowContext(ctx, query, userID).Scan(&stats.Total, &stats.High, &stats.Medium, &stats.Low)
	if err != nil {
		return stats, fmt.Errorf("failed to compute wishlist stats: %w", err)
	}

	return stats, nil
}
