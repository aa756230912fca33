package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// WishlistPriority orders saved items by how much the user wants them
type WishlistPriority string

const (
	WishlistPriorityLow    WishlistPriority = "low"
	WishlistPriorityMedium WishlistPriority = "medium"
	WishlistPriorityHigh   WishlistPriority = "high"
)

var validWishlistPriorities = map[WishlistPriority]struct{}{
	WishlistPriorityLow:    {},
	WishlistPriorityMedium: {},
	WishlistPriorityHigh:   {},
}

func ToWishlistPriority(s string) (WishlistPriority, error) {
	priority := WishlistPriority(s)
	if _, ok := validWishlistPriorities[priority]; ok {
		return priority, nil
	}
	return "", errors.New("invalid wishlist priority")
}

// WishlistItem is a saved-for-later product. One entry per (user, product).
type WishlistItem struct {
	ID              uuid.UUID        `json:"id" db:"id"`
	UserID          uuid.UUID        `json:"user_id" db:"user_id"`
	ProductID       uuid.UUID        `json:"product_id" db:"product_id"`
	Notes           string           `json:"notes,omitempty" db:"notes"`
	Priority        WishlistPriority `json:"priority" db:"priority"`
	NotifyOnRestock bool             `json:"notify_on_restock" db:"notify_on_restock"`
	CreatedAt       time.Time        `json:"created_at" db:"created_at"`
}

// WishlistStats is the per-priority breakdown of a user's wishlist
type WishlistStats struct {
	Total  int `json:"total"`
	High   int `json:"high"`
	Medium int `json:"medium"`
	Low    int `json:"low"`
}

// CartLine is a cart-addable projection of a wishlist entry. The cart itself
// lives on the client; this is a read-only transformation.
type CartLine struct {
	ProductID   uuid.UUID `json:"product_id"`
	ProductName string    `json:"product_name"`
	UnitPrice   float64   `json:"unit_price"`
	Quantity    int       `json:"quantity"`
	IsAvailable bool      `json:"is_available"`
}
