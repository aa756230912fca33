package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// OrderStatus is the lifecycle state of an order
type OrderStatus string

// remember to add new statuses to the validOrderStatuses map
const (
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusInTransit  OrderStatus = "in_transit"
	OrderStatusDelivered  OrderStatus = "delivered"
	OrderStatusCancelled  OrderStatus = "cancelled"
	OrderStatusRefunded   OrderStatus = "refunded"
)

var validOrderStatuses = map[OrderStatus]struct{}{
	OrderStatusPending:    {},
	OrderStatusProcessing: {},
	OrderStatusInTransit:  {},
	OrderStatusDelivered:  {},
	OrderStatusCancelled:  {},
	OrderStatusRefunded:   {},
}

func ToOrderStatus(s string) (OrderStatus, error) {
	status := OrderStatus(s)
	if _, ok := validOrderStatuses[status]; ok {
		return status, nil
	}
	return "", errors.New("invalid order status")
}

// orderTransitions encodes the forward-only fulfilment path plus cancellation
// and refund. Cancellation is reachable from any non-terminal state; refund
// only after delivery or cancellation.
var orderTransitions = map[OrderStatus][]OrderStatus{
	OrderStatusPending:    {OrderStatusProcessing, OrderStatusCancelled},
	OrderStatusProcessing: {OrderStatusInTransit, OrderStatusCancelled},
	OrderStatusInTransit:  {OrderStatusDelivered, OrderStatusCancelled},
	OrderStatusDelivered:  {OrderStatusRefunded},
	OrderStatusCancelled:  {OrderStatusRefunded},
	OrderStatusRefunded:   {},
}

// CanTransitionTo reports whether moving from s to target is a legal
// status transition
func (s OrderStatus) CanTransitionTo(target OrderStatus) bool {
	for _, next := range orderTransitions[s] {
		if next == target {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no further transitions are possible except refund
func (s OrderStatus) IsTerminal() bool {
	return s == OrderStatusDelivered || s == OrderStatusCancelled || s == OrderStatusRefunded
}

// ShippingMethod selects a shipping rate tier
type ShippingMethod string

const (
	ShippingMethodStandard  ShippingMethod = "standard"
	ShippingMethodExpress   ShippingMethod = "express"
	ShippingMethodOvernight ShippingMethod = "overnight"
	ShippingMethodPickup    ShippingMethod = "pickup"
)

var validShippingMethods = map[ShippingMethod]struct{}{
	ShippingMethodStandard:  {},
	ShippingMethodExpress:   {},
	ShippingMethodOvernight: {},
	ShippingMethodPickup:    {},
}

func ToShippingMethod(s string) (ShippingMethod, error) {
	method := ShippingMethod(s)
	if _, ok := validShippingMethods[method]; ok {
		return method, nil
	}
	return "", errors.New("invalid shipping method")
}

// PaymentStatus tracks the payment side of an order
type PaymentStatus string

const (
	PaymentStatusPending  PaymentStatus = "pending"
	PaymentStatusPaid     PaymentStatus = "paid"
	PaymentStatusRefunded PaymentStatus = "refunded"
)

// Order represents a placed order with its frozen totals
type Order struct {
	ID                  uuid.UUID      `json:"id" db:"id"`
	UserID              uuid.UUID      `json:"user_id" db:"user_id"`
	OrderNumber         string         `json:"order_number" db:"order_number"`
	Status              OrderStatus    `json:"status" db:"status"`
	Subtotal            float64        `json:"subtotal" db:"subtotal"`
	ShippingCost        float64        `json:"shipping_cost" db:"shipping_cost"`
	TaxAmount           float64        `json:"tax_amount" db:"tax_amount"`
	DiscountAmount      float64        `json:"discount_amount" db:"discount_amount"`
	Total               float64        `json:"total" db:"total"`
	Currency            string         `json:"currency" db:"currency"`
	ShippingAddressID   *uuid.UUID     `json:"shipping_address_id,omitempty" db:"shipping_address_id"`
	ShippingMethod      ShippingMethod `json:"shipping_method" db:"shipping_method"`
	TrackingNumber      string         `json:"tracking_number,omitempty" db:"tracking_number"`
	PaymentMethod       string         `json:"payment_method" db:"payment_method"`
	PaymentStatus       PaymentStatus  `json:"payment_status" db:"payment_status"`
	SpecialInstructions string         `json:"special_instructions,omitempty" db:"special_instructions"`
	GiftMessage         string         `json:"gift_message,omitempty" db:"gift_message"`
	Notes               string         `json:"notes,omitempty" db:"notes"`
	Items               []*OrderItem   `json:"items,omitempty" db:"-"`
	CreatedAt           time.Time      `json:"created_at" db:"created_at"`
	UpdatedAt           time.Time      `json:"updated_at" db:"updated_at"`
}

// OrderItem is one line of an order. The product fields are a frozen
// snapshot taken at purchase time and never updated afterwards.
type OrderItem struct {
	ID                 uuid.UUID `json:"id" db:"id"`
	OrderID            uuid.UUID `json:"order_id" db:"order_id"`
	ProductID          uuid.UUID `json:"product_id" db:"product_id"`
	Quantity           int       `json:"quantity" db:"quantity"`
	UnitPrice          float64   `json:"unit_price" db:"unit_price"`
	TotalPrice         float64   `json:"total_price" db:"total_price"`
	ProductName        string    `json:"product_name" db:"product_name"`
	ProductDescription string    `json:"product_description" db:"product_description"`
	ProductImageURL    string    `json:"product_image_url" db:"product_image_url"`
	ProductCategory    string    `json:"product_category" db:"product_category"`
	CreatedAt          time.Time `json:"created_at" db:"created_at"`
}

// MaxOrderItemQuantity caps a single line item
const MaxOrderItemQuantity = 999
