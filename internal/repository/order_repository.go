package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"bloomcart/internal/domain"

	"github.com/google/uuid"
)

var (
	ErrOrderNotFound     = errors.New("order not found")
	ErrOrderStateChanged = errors.New("order status changed concurrently")
	ErrPurchaseNotFound  = errors.New("no matching purchase for this order and product")
)

// OrderFilter narrows an admin order listing. Nil fields are not applied.
type OrderFilter struct {
	Status *domain.OrderStatus
	UserID *uuid.UUID
	From   *time.Time
	To     *time.Time
}

// OrderBuilder assembles an order from the locked product rows. It runs
// inside the placement transaction: the products it receives are current and
// locked until commit.
type OrderBuilder func(products map[uuid.UUID]*domain.Product) (*domain.Order, error)

// OrderRepository defines the interface for order data access
type OrderRepository interface {
	// PlaceOrder runs the whole placement as one atomic unit: lock product
	// rows, build and validate the order, persist it with its item
	// snapshots, and decrement stock. Any failure rolls everything back.
	PlaceOrder(ctx context.Context, productIDs []uuid.UUID, build OrderBuilder) (*domain.Order, error)
	FindByID(ctx context.Context, id uuid.UUID) (*domain.Order, error)
	ListByUser(ctx context.Context, userID uuid.UUID, status *domain.OrderStatus, page, pageSize int) ([]*domain.Order, int, error)
	List(ctx context.Context, filter OrderFilter, page, pageSize int) ([]*domain.Order, int, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, from, to domain.OrderStatus, trackingNumber, notes string) error
	SetPaymentStatus(ctx context.Context, id uuid.UUID, status domain.PaymentStatus) error
	FindPurchase(ctx context.Context, userID, orderID, productID uuid.UUID) (*domain.Order, error)
}

type orderRepository struct {
	db       *sql.DB
	products ProductRepository
}

// NewOrderRepository creates a new instance of OrderRepository
func NewOrderRepository(db *sql.DB, products ProductRepository) OrderRepository {
	return &orderRepository{db: db, products: products}
}

const orderColumns = `id, user_id, order_number, status, subtotal, shipping_cost, tax_amount, discount_amount, total, currency,
	shipping_address_id, shipping_method, tracking_number, payment_method, payment_status,
	special_instructions, gift_message, notes, created_at, updated_at`

func scanOrder(row interface{ Scan(dest ...any) error }) (*domain.Order, error) {
	order := &domain.Order{}
	err := row.Scan(
		&order.ID,
		&order.UserID,
		&order.OrderNumber,
		&order.Status,
		&order.Subtotal,
		&order.ShippingCost,
		&order.TaxAmount,
		&order.DiscountAmount,
		&order.Total,
		&order.Currency,
		&order.ShippingAddressID,
		&order.ShippingMethod,
		&order.TrackingNumber,
		&order.PaymentMethod,
		&order.PaymentStatus,
		&order.SpecialInstructions,
		&order.GiftMessage,
		&order.Notes,
		&order.CreatedAt,
		&order.UpdatedAt,
	)
	return order, err
}

// PlaceOrder implements the atomic placement protocol. Stock is re-checked
// against locked rows inside the transaction, never against an earlier read.
func (r *orderRepository) PlaceOrder(ctx context.Context, productIDs []uuid.UUID, build OrderBuilder) (*domain.Order, error) {
	var placed *domain.Order

	err := WithinTx(ctx, r.db, func(tx *sql.Tx) error {
		products, err := r.products.LockForOrder(ctx, tx, productIDs)
		if err != nil {
			return err
		}

		order, err := build(products)
		if err != nil {
			return err
		}

		if err := r.insertOrder(ctx, tx, order); err != nil {
			return err
		}

		for _, item := range order.Items {
			if err := r.insertOrderItem(ctx, tx, item); err != nil {
				return err
			}
			if err := r.products.DecrementStock(ctx, tx, item.ProductID, item.Quantity); err != nil {
				return err
			}
		}

		placed = order
		return nil
	})
	if err != nil {
		return nil, err
	}

	return placed, nil
}

func (r *orderRepository) insertOrder(ctx context.Context, tx Querier, order *domain.Order) error {
	query := `
		INSERT INTO orders (id, user_id, order_number, status, subtotal, shipping_cost, tax_amount, discount_amount, total, currency,
			shipping_address_id, shipping_method, tracking_number, payment_method, payment_status,
			special_instructions, gift_message, notes, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20)
	`

	_, err := tx.ExecContext(
		ctx,
		query,
		order.ID,
		order.UserID,
		order.OrderNumber,
		order.Status,
		order.Subtotal,
		order.ShippingCost,
		order.TaxAmount,
		order.DiscountAmount,
		order.Total,
		order.Currency,
		order.ShippingAddressID,
		order.ShippingMethod,
		order.TrackingNumber,
		order.PaymentMethod,
		order.PaymentStatus,
		order.SpecialInstructions,
		order.GiftMessage,
		order.Notes,
		order.CreatedAt,
		order.UpdatedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to create order: %w", err)
	}

	return nil
}

func (r *orderRepository) insertOrderItem(ctx context.Context, tx Querier, item *domain.OrderItem) error {
	query := `
		INSERT INTO order_items (id, order_id, product_id, quantity, unit_price, total_price,
			product_name, product_description, product_image_url, product_category, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`

	_, err := tx.ExecContext(
		ctx,
		query,
		item.ID,
		item.OrderID,
		item.ProductID,
		item.Quantity,
		item.UnitPrice,
		item.TotalPrice,
		item.ProductName,
		item.ProductDescription,
		item.ProductImageURL,
		item.ProductCategory,
		item.CreatedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to create order item: %w", err)
	}

	return nil
}

// FindByID retrieves an order with its items
func (r *orderRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Order, error) {
	query := fmt.Sprintf(`SELECT %s FROM orders WHERE id = $1`, orderColumns)

	order, err := scanOrder(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("failed to find order by ID: %w", err)
	}

	items, err := r.loadItems(ctx, id)
	if err != nil {
		return nil, err
	}
	order.Items = items

	return order, nil
}

func (r *orderRepository) loadItems(ctx context.Context, orderID uuid.UUID) ([]*domain.OrderItem, error) {
	query := `
		SELECT id, order_id, product_id, quantity, unit_price, total_price,
			product_name, product_description, product_image_url, product_category, created_at
		FROM order_items
		WHERE order_id = $1
		ORDER BY created_at
	`

	rows, err := r.db.QueryContext(ctx, query, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to load order items: %w", err)
	}
	defer rows.Close()

	items := []*domain.OrderItem{}
	for rows.Next() {
		item := &domain.OrderItem{}
		err := rows.Scan(
			&item.ID,
			&item.OrderID,
			&item.ProductID,
			&item.Quantity,
			&item.UnitPrice,
			&item.TotalPrice,
			&item.ProductName,
			&item.ProductDescription,
			&item.ProductImageURL,
			&item.ProductCategory,
			&item.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan order item: %w", err)
		}
		items = append(items, item)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating order items: %w", err)
	}

	return items, nil
}

// ListByUser retrieves a user's orders, newest first, with optional status filter
func (r *orderRepository) ListByUser(ctx context.Context, userID uuid.UUID, status *domain.OrderStatus, page, pageSize int) ([]*domain.Order, int, error) {
	filter := OrderFilter{UserID: &userID, Status: status}
	return r.List(ctx, filter, page, pageSize)
}

// List retrieves orders matching the filter, newest first
func (r *orderRepository) List(ctx context.Context, filter OrderFilter, page, pageSize int) ([]*domain.Order, int, error) {
	conditions := []string{}
	args := []any{}
	argIndex := 1

	addCondition := func(cond string, value any) {
		conditions = append(conditions, fmt.Sprintf(cond, argIndex))
		args = append(args, value)
		argIndex++
	}

	if filter.UserID != nil {
		addCondition("user_id = $%d", *filter.UserID)
	}
	if filter.Status != nil {
		addCondition("status = $%d", *filter.Status)
	}
	if filter.From != nil {
		addCondition("created_at >= $%d", *filter.From)
	}
	if filter.To != nil {
		addCondition("created_at <= $%d", *filter.To)
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = "WHERE " + strings.Join(conditions, " AND ")
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM orders %s", whereClause)
	var total int
	err := r.db.QueryRowContext(ctx, countQuery, args...).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count orders: %w", err)
	}

	offset := (page - 1) * pageSize

	query := fmt.Sprintf(`
		SELECT %s
		FROM orders
		%s
		ORDER BY created_at DESC
		LIMIT $%d OFFSET $%d
	`, orderColumns, whereClause, argIndex, argIndex+1)

	args = append(args, pageSize, offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list orders: %w", err)
	}
	defer rows.Close()

	orders := []*domain.Order{}
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan order: %w", err)
		}
		orders = append(orders, order)
	}

	if err = rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating orders: %w", err)
	}

	for _, order := range orders {
		items, err := r.loadItems(ctx, order.ID)
		if err != nil {
			return nil, 0, err
		}
		order.Items = items
	}

	return orders, total, nil
}

// UpdateStatus moves an order from one status to another. The WHERE guard on
// the previous status makes the transition safe under concurrent updates.
func (r *orderRepository) UpdateStatus(ctx context.Context, id uuid.UUID, from, to domain.OrderStatus, trackingNumber, notes string) error {
	query := `
		UPDATE orders
		SET status = $3,
		    tracking_number = CASE WHEN $4 <> '' THEN $4 ELSE tracking_number END,
		    notes = CASE WHEN $5 <> '' THEN $5 ELSE notes END,
		    updated_at = NOW()
		WHERE id = $1 AND status = $2
	`

	result, err := r.db.ExecContext(ctx, query, id, from, to, trackingNumber, notes)
	if err != nil {
		return fmt.Errorf("failed to update order status: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return ErrOrderStateChanged
	}

	return nil
}

// SetPaymentStatus records a payment state change on the order
func (r *orderRepository) SetPaymentStatus(ctx context.Context, id uuid.UUID, status domain.PaymentStatus) error {
	query := `UPDATE orders SET payment_status = $2, updated_at = NOW() WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, id, status)
	if err != nil {
		return fmt.Errorf("failed to set payment status: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return ErrOrderNotFound
	}

	return nil
}

// FindPurchase returns the order if it belongs to the user and contains the
// given product, which is the qualification for a verified-purchase review
func (r *orderRepository) FindPurchase(ctx context.Context, userID, orderID, productID uuid.UUID) (*domain.Order, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM orders
		WHERE id = $1 AND user_id = $2
		  AND EXISTS (SELECT 1 FROM order_items oi WHERE oi.order_id = orders.id AND oi.product_id = $3)
	`, orderColumns)

	order, err := scanOrder(r.db.QueryRowContext(ctx, query, orderID, userID, productID))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrPurchaseNotFound
		}
		return nil, fmt.Errorf("failed to find purchase: %w", err)
	}

	return order, nil
}
