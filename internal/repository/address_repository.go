package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"bloomcart/internal/domain"

	"github.com/google/uuid"
)

var (
	ErrAddressNotFound = errors.New("shipping address not found")
	ErrLastAddress     = errors.New("cannot delete the only shipping address")
	ErrNoDefaultAddress = errors.New("user has no default shipping address")
)

// AddressRepository defines the interface for shipping address data access
type AddressRepository interface {
	Create(ctx context.Context, address *domain.ShippingAddress) error
	Update(ctx context.Context, address *domain.ShippingAddress) error
	// Delete removes an address unless it is the user's last one
	Delete(ctx context.Context, userID, id uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID) (*domain.ShippingAddress, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.ShippingAddress, error)
	// SetDefault atomically clears the user's previous default and sets the
	// new one, so there is never a window with zero or two defaults
	SetDefault(ctx context.Context, userID, id uuid.UUID) error
	FindDefault(ctx context.Context, userID uuid.UUID) (*domain.ShippingAddress, error)
}

type addressRepository struct {
	db *sql.DB
}

// NewAddressRepository creates a new instance of AddressRepository
func NewAddressRepository(db *sql.DB) AddressRepository {
	return &addressRepository{db: db}
}

const addressColumns = `id, user_id, recipient_name, address_line1, address_line2, city, state, postal_code, country, phone, is_default, address_type, created_at, updated_at`

func scanAddress(row interface{ Scan(dest ...any) error }) (*domain.ShippingAddress, error) {
	address := &domain.ShippingAddress{}
	err := row.Scan(
		&address.ID,
		&address.UserID,
		&address.RecipientName,
		&address.AddressLine1,
		&address.AddressLine2,
		&address.City,
		&address.State,
		&address.PostalCode,
		&address.Country,
		&address.Phone,
		&address.IsDefault,
		&address.AddressType,
		&address.CreatedAt,
		&address.UpdatedAt,
	)
	return address, err
}

// Create inserts a new shipping address. The first address a user creates
// becomes their default.
func (r *addressRepository) Create(ctx context.Context, address *domain.ShippingAddress) error {
	return WithinTx(ctx, r.db, func(tx *sql.Tx) error {
		var existing int
		err := tx.QueryRowContext(ctx,
			`SELECT COUNT(*) FROM shipping_addresses WHERE user_id = $1`,
			address.UserID,
		).Scan(&existing)
		if err != nil {
			return fmt.Errorf("failed to count addresses: %w", err)
		}

		if existing == 0 {
			address.IsDefault = true
		} else if address.IsDefault {
			if _, err := tx.ExecContext(ctx,
				`UPDATE shipping_addresses SET is_default = FALSE, updated_at = NOW() WHERE user_id = $1 AND is_default`,
				address.UserID,
			); err != nil {
				return fmt.Errorf("failed to clear previous default: %w", err)
			}
		}

		query := `
			INSERT INTO shipping_addresses (id, user_id, recipient_name, address_line1, address_line2, city, state, postal_code, country, phone, is_default, address_type, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		`

		_, err = tx.ExecContext(
			ctx,
			query,
			address.ID,
			address.UserID,
			address.RecipientName,
			address.AddressLine1,
			address.AddressLine2,
			address.City,
			address.State,
			address.PostalCode,
			address.Country,
			address.Phone,
			address.IsDefault,
			address.AddressType,
			address.CreatedAt,
			address.UpdatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to create address: %w", err)
		}

		return nil
	})
}

// Update updates an address owned by the user
func (r *addressRepository) Update(ctx context.Context, address *domain.ShippingAddress) error {
	query := `
		UPDATE shipping_addresses
		SET recipient_name = $3, address_line1 = $4, address_line2 = $5, city = $6, state = $7,
		    postal_code = $8, country = $9, phone = $10, address_type = $11, updated_at = NOW()
		WHERE id = $1 AND user_id = $2
	`

	result, err := r.db.ExecContext(
		ctx,
		query,
		address.ID,
		address.UserID,
		address.RecipientName,
		address.AddressLine1,
		address.AddressLine2,
		address.City,
		address.State,
		address.PostalCode,
		address.Country,
		address.Phone,
		address.AddressType,
	)
	if err != nil {
		return fmt.Errorf("failed to update address: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return ErrAddressNotFound
	}

	return nil
}

// Delete removes an address. A user's last remaining address cannot be
// deleted; if the deleted address was the default, the most recent remaining
// address takes over as default.
func (r *addressRepository) Delete(ctx context.Context, userID, id uuid.UUID) error {
	return WithinTx(ctx, r.db, func(tx *sql.Tx) error {
		var count int
		err := tx.QueryRowContext(ctx,
			`SELECT COUNT(*) FROM shipping_addresses WHERE user_id = $1`,
			userID,
		).Scan(&count)
		if err != nil {
			return fmt.Errorf("failed to count addresses: %w", err)
		}

		if count <= 1 {
			return ErrLastAddress
		}

		var wasDefault bool
		err = tx.QueryRowContext(ctx,
			`DELETE FROM shipping_addresses WHERE id = $1 AND user_id = $2 RETURNING is_default`,
			id, userID,
		).Scan(&wasDefault)
		if err != nil {
			if err == sql.ErrNoRows {
				return ErrAddressNotFound
			}
			return fmt.Errorf("failed to delete address: %w", err)
		}

		if wasDefault {
			_, err = tx.ExecContext(ctx, `
				UPDATE shipping_addresses SET is_default = TRUE, updated_at = NOW()
				WHERE id = (
					SELECT id FROM shipping_addresses WHERE user_id = $1
					ORDER BY created_at DESC LIMIT 1
				)
			`, userID)
			if err != nil {
				return fmt.Errorf("failed to promote replacement default: %w", err)
			}
		}

		return nil
	})
}

// FindByID retrieves a shipping address by ID
func (r *addressRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.ShippingAddress, error) {
	query := fmt.Sprintf(`SELECT %s FROM shipping_addresses WHERE id = $1`, addressColumns)

	address, err := scanAddress(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrAddressNotFound
		}
		return nil, fmt.Errorf("failed to find address by ID: %w", err)
	}

	return address, nil
}

// ListByUser retrieves all addresses of a user, default first
func (r *addressRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.ShippingAddress, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM shipping_addresses
		WHERE user_id = $1
		ORDER BY is_default DESC, created_at DESC
	`, addressColumns)

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list addresses: %w", err)
	}
	defer rows.Close()

	addresses := []*domain.ShippingAddress{}
	for rows.Next() {
		address, err := scanAddress(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan address: %w", err)
		}
		addresses = append(addresses, address)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating addresses: %w", err)
	}

	return addresses, nil
}

// SetDefault makes the given address the user's single default
func (r *addressRepository) SetDefault(ctx context.Context, userID, id uuid.UUID) error {
	return WithinTx(ctx, r.db, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx,
			`UPDATE shipping_addresses SET is_default = FALSE, updated_at = NOW() WHERE user_id = $1 AND is_default`,
			userID,
		); err != nil {
			return fmt.Errorf("failed to clear previous default: %w", err)
		}

		result, err := tx.ExecContext(ctx,
			`UPDATE shipping_addresses SET is_default = TRUE, updated_at = NOW() WHERE id = $1 AND user_id = $2`,
			id, userID,
		)
		if err != nil {
			return fmt.Errorf("failed to set default address: %w", err)
		}

		rowsAffected, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to get rows affected: %w", err)
		}

		if rowsAffected == 0 {
			return ErrAddressNotFound
		}

		return nil
	})
}

// FindDefault retrieves the user's default shipping address
func (r *addressRepository) FindDefault(ctx context.Context, userID uuid.UUID) (*domain.ShippingAddress, error) {
	query := fmt.Sprintf(`SELECT %s FROM shipping_addresses WHERE user_id = $1 AND is_default`, addressColumns)

	address, err := scanAddress(r.db.QueryRowContext(ctx, query, userID))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNoDefaultAddress
		}
		return nil, fmt.Errorf("failed to find default address: %w", err)
	}

	return address, nil
}
