package domain

import (
	"time"

	"github.com/google/uuid"
)

// ShippingAddress represents a saved delivery address owned by a user.
// At most one address per user has IsDefault set.
type ShippingAddress struct {
	ID            uuid.UUID `json:"id" db:"id"`
	UserID        uuid.UUID `json:"user_id" db:"user_id"`
	RecipientName string    `json:"recipient_name" db:"recipient_name"`
	AddressLine1  string    `json:"address_line1" db:"address_line1"`
	AddressLine2  string    `json:"address_line2,omitempty" db:"address_line2"`
	City          string    `json:"city" db:"city"`
	State         string    `json:"state" db:"state"`
	PostalCode    string    `json:"postal_code" db:"postal_code"`
	Country       string    `json:"country" db:"country"`
	Phone         string    `json:"phone" db:"phone"`
	IsDefault     bool      `json:"is_default" db:"is_default"`
	AddressType   string    `json:"address_type" db:"address_type"`
	CreatedAt     time.Time `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time `json:"updated_at" db:"updated_at"`
}
