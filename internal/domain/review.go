package domain

import (
	"time"

	"github.com/google/uuid"
)

// ProductReview ties a rating and comment to a purchased product.
// OrderID links the review to the purchase that qualifies it.
type ProductReview struct {
	ID                 uuid.UUID  `json:"id" db:"id"`
	ProductID          uuid.UUID  `json:"product_id" db:"product_id"`
	UserID             uuid.UUID  `json:"user_id" db:"user_id"`
	OrderID            *uuid.UUID `json:"order_id,omitempty" db:"order_id"`
	Rating             int        `json:"rating" db:"rating"`
	Title              string     `json:"title,omitempty" db:"title"`
	Comment            string     `json:"comment,omitempty" db:"comment"`
	IsVerifiedPurchase bool       `json:"is_verified_purchase" db:"is_verified_purchase"`
	IsApproved         bool       `json:"is_approved" db:"is_approved"`
	HelpfulCount       int        `json:"helpful_count" db:"helpful_count"`
	ReportedCount      int        `json:"reported_count" db:"reported_count"`
	CreatedAt          time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt          time.Time  `json:"updated_at" db:"updated_at"`
}

// RatingSummary is the aggregate over a product's approved reviews,
// computed at read time
type RatingSummary struct {
	Average float64 `json:"average"`
	Count   int     `json:"count"`
}
