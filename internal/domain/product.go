package domain

import (
	"errors"
	"math"
	"time"

	"github.com/google/uuid"
)

// ProductStatus is the lifecycle state of a catalog product
type ProductStatus string

// remember to add new statuses to the validProductStatuses map
const (
	ProductStatusActive       ProductStatus = "active"
	ProductStatusDiscontinued ProductStatus = "discontinued"
)

var validProductStatuses = map[ProductStatus]struct{}{
	ProductStatusActive:       {},
	ProductStatusDiscontinued: {},
}

func ToProductStatus(s string) (ProductStatus, error) {
	status := ProductStatus(s)
	if _, ok := validProductStatuses[status]; ok {
		return status, nil
	}
	return "", errors.New("invalid product status")
}

// Stock level at or below which a product is reported as low stock
const LowStockThreshold = 5

// Product represents a flower in the catalog
type Product struct {
	ID            uuid.UUID     `json:"id" db:"id"`
	Name          string        `json:"name" db:"name"`
	Description   string        `json:"description" db:"description"`
	Price         float64       `json:"price" db:"price"`
	OriginalPrice *float64      `json:"original_price,omitempty" db:"original_price"`
	Category      string        `json:"category" db:"category"`
	Status        ProductStatus `json:"status" db:"status"`
	IsFeatured    bool          `json:"is_featured" db:"is_featured"`
	ImageURL      string        `json:"image_url" db:"image_url"`
	Stock         int           `json:"stock" db:"stock"`
	CreatedAt     time.Time     `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at" db:"updated_at"`
}

// IsAvailable reports whether the product can be ordered
func (p *Product) IsAvailable() bool {
	return p.Status == ProductStatusActive && p.Stock > 0
}

// StockStatus returns the display label for the current stock level
func (p *Product) StockStatus() string {
	switch {
	case p.Stock <= 0:
		return "out_of_stock"
	case p.Stock <= LowStockThreshold:
		return "low_stock"
	default:
		return "in_stock"
	}
}

// OnSale reports whether the product carries a visible markdown
func (p *Product) OnSale() bool {
	return p.OriginalPrice != nil && *p.OriginalPrice > p.Price
}

// DiscountPercentage returns the rounded markdown percentage, 0 when not on sale
func (p *Product) DiscountPercentage() int {
	if !p.OnSale() {
		return 0
	}
	return int(math.Round(100 * (*p.OriginalPrice - p.Price) / *p.OriginalPrice))
}
