package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"bloomcart/internal/domain"
	"bloomcart/internal/pricing"
	"bloomcart/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	ErrEmptyOrder             = errors.New("order must contain at least one item")
	ErrInvalidQuantity        = errors.New("item quantity must be between 1 and 999")
	ErrMissingPaymentMethod   = errors.New("payment method is required")
	ErrInvalidShippingMethod  = errors.New("invalid shipping method")
	ErrMissingShippingAddress = errors.New("shipping address is required for delivery orders")
	ErrProductUnavailable     = errors.New("product is not available for purchase")
	ErrInvalidOrderStatus     = errors.New("invalid order status")
	ErrIllegalTransition      = errors.New("illegal order status transition")
	ErrOrderNotCancellable    = errors.New("order can no longer be cancelled")
)

// LineItem is a submitted (product, quantity) pair before pricing
type LineItem struct {
	ProductID uuid.UUID
	Quantity  int
}

// PlaceOrderInput carries everything the client submits at checkout
type PlaceOrderInput struct {
	UserID              uuid.UUID
	Items               []LineItem
	ShippingAddressID   *uuid.UUID
	ShippingMethod      string
	PaymentMethod       string
	DiscountCode        string
	SpecialInstructions string
	GiftMessage         string
}

// OrderPage is one page of orders with the aggregate over that page
type OrderPage struct {
	Orders  []*domain.Order
	Total   int
	Summary OrderSummary
}

// OrderSummary aggregates the returned page of an admin listing
type OrderSummary struct {
	Count             int     `json:"count"`
	Revenue           float64 `json:"revenue"`
	AverageOrderValue float64 `json:"average_order_value"`
}

// AdminOrderQuery narrows the admin order listing
type AdminOrderQuery struct {
	Status     string
	CustomerID *uuid.UUID
	From       *time.Time
	To         *time.Time
}

// OrderService defines the interface for order business logic
type OrderService interface {
	PlaceOrder(ctx context.Context, input PlaceOrderInput) (*domain.Order, error)
	GetOrder(ctx context.Context, id, requesterID uuid.UUID, isAdmin bool) (*domain.Order, error)
	GetUserOrders(ctx context.Context, userID uuid.UUID, status string, page, pageSize int) ([]*domain.Order, int, error)
	ListAllOrders(ctx context.Context, query AdminOrderQuery, page, pageSize int) (*OrderPage, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status, trackingNumber, notes string) (*domain.Order, error)
	CancelOrder(ctx context.Context, id, requesterID uuid.UUID, isAdmin bool, reason string) (*domain.Order, error)
}

type orderService struct {
	orderRepo   repository.OrderRepository
	addressRepo repository.AddressRepository
	policy      *pricing.Policy
}

// NewOrderService creates a new instance of OrderService
func NewOrderService(
	orderRepo repository.OrderRepository,
	addressRepo repository.AddressRepository,
	policy *pricing.Policy,
) OrderService {
	return &orderService{
		orderRepo:   orderRepo,
		addressRepo: addressRepo,
		policy:      policy,
	}
}

// PlaceOrder validates the cart, prices it, and persists the order, its item
// snapshots, and the stock decrements as one atomic unit. Stock is checked
// against rows locked inside the transaction, so concurrent orders for the
// same product cannot oversell.
func (s *orderService) PlaceOrder(ctx context.Context, input PlaceOrderInput) (*domain.Order, error) {
	if len(input.Items) == 0 {
		return nil, ErrEmptyOrder
	}
	if strings.TrimSpace(input.PaymentMethod) == "" {
		return nil, ErrMissingPaymentMethod
	}

	method, err := domain.ToShippingMethod(input.ShippingMethod)
	if err != nil {
		return nil, ErrInvalidShippingMethod
	}

	// Collapse duplicate product lines into a single quantity per product
	quantities := make(map[uuid.UUID]int, len(input.Items))
	productIDs := make([]uuid.UUID, 0, len(input.Items))
	for _, item := range input.Items {
		if item.Quantity < 1 || item.Quantity > domain.MaxOrderItemQuantity {
			return nil, ErrInvalidQuantity
		}
		if _, seen := quantities[item.ProductID]; !seen {
			productIDs = append(productIDs, item.ProductID)
		}
		quantities[item.ProductID] += item.Quantity
	}

	if method != domain.ShippingMethodPickup && input.ShippingAddressID == nil {
		return nil, ErrMissingShippingAddress
	}

	if input.ShippingAddressID != nil {
		address, err := s.addressRepo.FindByID(ctx, *input.ShippingAddressID)
		if err != nil {
			return nil, err
		}
		// A foreign address reads as missing rather than forbidden
		if address.UserID != input.UserID {
			return nil, repository.ErrAddressNotFound
		}
	}

	now := time.Now()

	order, err := s.orderRepo.PlaceOrder(ctx, productIDs, func(products map[uuid.UUID]*domain.Product) (*domain.Order, error) {
		lines := make([]pricing.Line, 0, len(productIDs))
		for _, id := range productIDs {
			product := products[id]
			if product.Status != domain.ProductStatusActive {
				return nil, fmt.Errorf("%w: %s", ErrProductUnavailable, product.Name)
			}
			if product.Stock < quantities[id] {
				return nil, fmt.Errorf("%w: %s", repository.ErrInsufficientStock, product.Name)
			}
			lines = append(lines, pricing.Line{UnitPrice: product.Price, Quantity: quantities[id]})
		}

		quote, err := s.policy.QuoteOrder(lines, method, input.DiscountCode)
		if err != nil {
			return nil, err
		}

		orderID := uuid.New()
		order := &domain.Order{
			ID:                  orderID,
			UserID:              input.UserID,
			OrderNumber:         newOrderNumber(now),
			Status:              domain.OrderStatusPending,
			Subtotal:            quote.Subtotal,
			ShippingCost:        quote.ShippingCost,
			TaxAmount:           quote.TaxAmount,
			DiscountAmount:      quote.DiscountAmount,
			Total:               quote.Total,
			Currency:            "USD",
			ShippingAddressID:   input.ShippingAddressID,
			ShippingMethod:      method,
			PaymentMethod:       input.PaymentMethod,
			PaymentStatus:       domain.PaymentStatusPending,
			SpecialInstructions: input.SpecialInstructions,
			GiftMessage:         input.GiftMessage,
			CreatedAt:           now,
			UpdatedAt:           now,
		}

		for _, id := range productIDs {
			product := products[id]
			quantity := quantities[id]
			unitPrice := decimal.NewFromFloat(product.Price)
			totalPrice, _ := unitPrice.Mul(decimal.NewFromInt(int64(quantity))).Round(2).Float64()

			// Freeze the product attributes at purchase time; later product
			// edits never touch these rows
			order.Items = append(order.Items, &domain.OrderItem{
				ID:                 uuid.New(),
				OrderID:            orderID,
				ProductID:          id,
				Quantity:           quantity,
				UnitPrice:          product.Price,
				TotalPrice:         totalPrice,
				ProductName:        product.Name,
				ProductDescription: product.Description,
				ProductImageURL:    product.ImageURL,
				ProductCategory:    product.Category,
				CreatedAt:          now,
			})
		}

		return order, nil
	})
	if err != nil {
		return nil, err
	}

	return order, nil
}

// newOrderNumber builds a human-readable unique order number
func newOrderNumber(t time.Time) string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.New().String(), "-", "")[:6])
	return fmt.Sprintf("FLW-%s-%s", t.Format("20060102"), suffix)
}

// GetOrder retrieves an order. Non-admin requesters can only see their own
// orders; anyone else's order reads as not found.
func (s *orderService) GetOrder(ctx context.Context, id, requesterID uuid.UUID, isAdmin bool) (*domain.Order, error) {
	order, err := s.orderRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if !isAdmin && order.UserID != requesterID {
		return nil, repository.ErrOrderNotFound
	}

	return order, nil
}

// GetUserOrders lists a user's orders with an optional status filter
func (s *orderService) GetUserOrders(ctx context.Context, userID uuid.UUID, status string, page, pageSize int) ([]*domain.Order, int, error) {
	var statusFilter *domain.OrderStatus
	if status != "" {
		parsed, err := domain.ToOrderStatus(status)
		if err != nil {
			return nil, 0, ErrInvalidOrderStatus
		}
		statusFilter = &parsed
	}

	return s.orderRepo.ListByUser(ctx, userID, statusFilter, page, pageSize)
}

// ListAllOrders lists orders for admins with a revenue summary computed over
// the returned page
func (s *orderService) ListAllOrders(ctx context.Context, query AdminOrderQuery, page, pageSize int) (*OrderPage, error) {
	filter := repository.OrderFilter{
		UserID: query.CustomerID,
		From:   query.From,
		To:     query.To,
	}
	if query.Status != "" {
		parsed, err := domain.ToOrderStatus(query.Status)
		if err != nil {
			return nil, ErrInvalidOrderStatus
		}
		filter.Status = &parsed
	}

	orders, total, err := s.orderRepo.List(ctx, filter, page, pageSize)
	if err != nil {
		return nil, err
	}

	revenue := decimal.Zero
	for _, order := range orders {
		revenue = revenue.Add(decimal.NewFromFloat(order.Total))
	}

	summary := OrderSummary{Count: len(orders)}
	summary.Revenue, _ = revenue.Round(2).Float64()
	if len(orders) > 0 {
		summary.AverageOrderValue, _ = revenue.Div(decimal.NewFromInt(int64(len(orders)))).Round(2).Float64()
	}

	return &OrderPage{Orders: orders, Total: total, Summary: summary}, nil
}

// UpdateStatus moves an order along its lifecycle. Unknown targets and
// illegal transitions are rejected before any write happens.
func (s *orderService) UpdateStatus(ctx context.Context, id uuid.UUID, status, trackingNumber, notes string) (*domain.Order, error) {
	target, err := domain.ToOrderStatus(status)
	if err != nil {
		return nil, ErrInvalidOrderStatus
	}

	order, err := s.orderRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if !order.Status.CanTransitionTo(target) {
		return nil, fmt.Errorf("%w: %s to %s", ErrIllegalTransition, order.Status, target)
	}

	if err := s.orderRepo.UpdateStatus(ctx, id, order.Status, target, trackingNumber, notes); err != nil {
		return nil, err
	}

	if target == domain.OrderStatusRefunded {
		if err := s.orderRepo.SetPaymentStatus(ctx, id, domain.PaymentStatusRefunded); err != nil {
			return nil, err
		}
	}

	return s.orderRepo.FindByID(ctx, id)
}

// CancelOrder cancels an order on behalf of its owner or an admin. Delivered
// and refunded orders cannot be cancelled.
func (s *orderService) CancelOrder(ctx context.Context, id, requesterID uuid.UUID, isAdmin bool, reason string) (*domain.Order, error) {
	order, err := s.GetOrder(ctx, id, requesterID, isAdmin)
	if err != nil {
		return nil, err
	}

	if !order.Status.CanTransitionTo(domain.OrderStatusCancelled) {
		return nil, ErrOrderNotCancellable
	}

	notes := ""
	if reason != "" {
		notes = "cancellation reason: " + reason
	}

	if err := s.orderRepo.UpdateStatus(ctx, id, order.Status, domain.OrderStatusCancelled, "", notes); err != nil {
		return nil, err
	}

	return s.orderRepo.FindByID(ctx, id)
}
