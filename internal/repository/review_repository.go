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
	ErrReviewNotFound  = errors.New("review not found")
	ErrDuplicateReview = errors.New("review already exists for this purchase")
)

// ReviewRepository defines the interface for product review data access
type ReviewRepository interface {
	Create(ctx context.Context, review *domain.ProductReview) error
	Update(ctx context.Context, review *domain.ProductReview) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID) (*domain.ProductReview, error)
	ListByProduct(ctx context.Context, productID uuid.UUID, approvedOnly bool, page, pageSize int) ([]*domain.ProductReview, int, error)
	// RatingSummary computes the average and count over approved reviews at
	// read time; nothing is maintained incrementally
	RatingSummary(ctx context.Context, productID uuid.UUID) (domain.RatingSummary, error)
	IncrementHelpful(ctx context.Context, id uuid.UUID) error
	IncrementReported(ctx context.Context, id uuid.UUID) error
}

type reviewRepository struct {
	db *sql.DB
}

// NewReviewRepository creates a new instance of ReviewRepository
func NewReviewRepository(db *sql.DB) ReviewRepository {
	return &reviewRepository{db: db}
}

const reviewColumns = `id, product_id, user_id, order_id, rating, title, comment, is_verified_purchase, is_approved, helpful_count, reported_count, created_at, updated_at`

func scanReview(row interface{ Scan(dest ...any) error }) (*domain.ProductReview, error) {
	review := &domain.ProductReview{}
	err := row.Scan(
		&review.ID,
		&review.ProductID,
		&review.UserID,
		&review.OrderID,
		&review.Rating,
		&review.Title,
		&review.Comment,
		&review.IsVerifiedPurchase,
		&review.IsApproved,
		&review.HelpfulCount,
		&review.ReportedCount,
		&review.CreatedAt,
		&review.UpdatedAt,
	)
	return review, err
}

// Create inserts a new review. The unique constraint on
// (user_id, product_id, order_id) enforces one review per purchase.
func (r *reviewRepository) Create(ctx context.Context, review *domain.ProductReview) error {
	query := `
		INSERT INTO product_reviews (id, product_id, user_id, order_id, rating, title, comment, is_verified_purchase, is_approved, helpful_count, reported_count, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`

	_, err := r.db.ExecContext(
		ctx,
		query,
		review.ID,
		review.ProductID,
		review.UserID,
		review.OrderID,
		review.Rating,
		review.Title,
		review.Comment,
		review.IsVerifiedPurchase,
		review.IsApproved,
		review.HelpfulCount,
		review.ReportedCount,
		review.CreatedAt,
		review.UpdatedAt,
	)

	if err != nil {
		// Check for unique constraint violation (one review per purchase)
		if strings.Contains(err.Error(), "uq_product_reviews_purchase") {
			return ErrDuplicateReview
		}
		return fmt.Errorf("failed to create review: %w", err)
	}

	return nil
}

// Update updates the owner-editable fields of a review
func (r *reviewRepository) Update(ctx context.Context, review *domain.ProductReview) error {
	query := `
		UPDATE product_reviews
		SET rating = $2, title = $3, comment = $4, updated_at = NOW()
		WHERE id = $1
	`

	result, err := r.db.ExecContext(ctx, query, review.ID, review.Rating, review.Title, review.Comment)
	if err != nil {
		return fmt.Errorf("failed to update review: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return ErrReviewNotFound
	}

	return nil
}

// Delete removes a review
func (r *reviewRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM product_reviews WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete review: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return ErrReviewNotFound
	}

	return nil
}

// FindByID retrieves a review by ID
func (r *reviewRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.ProductReview, error) {
	query := fmt.Sprintf(`SELECT %s FROM product_reviews WHERE id = $1`, reviewColumns)

	review, err := scanReview(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrReviewNotFound
		}
		return nil, fmt.Errorf("failed to find review by ID: %w", err)
	}

	return review, nil
}

// ListByProduct retrieves a product's reviews, newest first
func (r *reviewRepository) ListByProduct(ctx context.Context, productID uuid.UUID, approvedOnly bool, page, pageSize int) ([]*domain.ProductReview, int, error) {
	whereClause := "WHERE product_id = $1"
	if approvedOnly {
		whereClause += " AND is_approved"
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM product_reviews %s", whereClause)
	var total int
	err := r.db.QueryRowContext(ctx, countQuery, productID).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count reviews: %w", err)
	}

	offset := (page - 1) * pageSize

	query := fmt.Sprintf(`
		SELECT %s
		FROM product_reviews
		%s
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`, reviewColumns, whereClause)

	rows, err := r.db.QueryContext(ctx, query, productID, pageSize, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list reviews: %w", err)
	}
	defer rows.Close()

	reviews := []*domain.ProductReview{}
	for rows.Next() {
		review, err := scanReview(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan review: %w", err)
		}
		reviews = append(reviews, review)
	}

	if err = rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating reviews: %w", err)
	}

	return reviews, total, nil
}

// RatingSummary computes the approved-review aggregate for a product
func (r *reviewRepository) RatingSummary(ctx context.Context, productID uuid.UUID) (domain.RatingSummary, error) {
	query := `
		SELECT COALESCE(AVG(rating), 0), COUNT(*)
		FROM product_reviews
		WHERE product_id = $1 AND is_approved
	`

	var summary domain.RatingSummary
	err := r.db.QueryRowContext(ctx, query, productID).Scan(&summary.Average, &summary.Count)
	if err != nil {
		return summary, fmt.Errorf("failed to compute rating summary: %w", err)
	}

	return summary, nil
}

// IncrementHelpful bumps the helpful counter
func (r *reviewRepository) IncrementHelpful(ctx context.Context, id uuid.UUID) error {
	return r.incrementCounter(ctx, id, "helpful_count")
}

// IncrementReported bumps the reported counter
func (r *reviewRepository) IncrementReported(ctx context.Context, id uuid.UUID) error {
	return r.incrementCounter(ctx, id, "reported_count")
}

func (r *reviewRepository) incrementCounter(ctx context.Context, id uuid.UUID, column string) error {
	query := fmt.Sprintf(`UPDATE product_reviews SET %s = %s + 1, updated_at = NOW() WHERE id = $1`, column, column)

	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to increment %s: %w", column, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return ErrReviewNotFound
	}

	return nil
}
