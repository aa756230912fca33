package service

import (
	"context"
	"errors"
	"time"

	"bloomcart/internal/domain"
	"bloomcart/internal/repository"

	"github.com/google/uuid"
)

var (
	ErrInvalidRating    = errors.New("rating must be between 1 and 5")
	ErrInvalidPurchase  = errors.New("no confirmed purchase of this product on that order")
	ErrSelfReviewAction = errors.New("cannot mark or report your own review")
	ErrNotReviewOwner   = errors.New("review does not belong to this user")
)

// ReviewInput carries the fields a reviewer submits
type ReviewInput struct {
	Rating  int
	Title   string
	Comment string
}

// ReviewService defines the interface for review business logic
type ReviewService interface {
	CreateReview(ctx context.Context, userID, productID, orderID uuid.UUID, input ReviewInput) (*domain.ProductReview, error)
	UpdateReview(ctx context.Context, userID, id uuid.UUID, input ReviewInput) (*domain.ProductReview, error)
	DeleteReview(ctx context.Context, userID, id uuid.UUID, isAdmin bool) error
	ListByProduct(ctx context.Context, productID uuid.UUID, page, pageSize int) ([]*domain.ProductReview, int, error)
	MarkHelpful(ctx context.Context, userID, id uuid.UUID) error
	Report(ctx context.Context, userID, id uuid.UUID) error
}

type reviewService struct {
	reviewRepo repository.ReviewRepository
	orderRepo  repository.OrderRepository
}

// NewReviewService creates a new instance of ReviewService
func NewReviewService(reviewRepo repository.ReviewRepository, orderRepo repository.OrderRepository) ReviewService {
	return &reviewService{
		reviewRepo: reviewRepo,
		orderRepo:  orderRepo,
	}
}

// CreateReview records a review for a product the user actually purchased on
// the given order. A pending order does not qualify as a confirmed purchase.
func (s *reviewService) CreateReview(ctx context.Context, userID, productID, orderID uuid.UUID, input ReviewInput) (*domain.ProductReview, error) {
	if input.Rating < 1 || input.Rating > 5 {
		return nil, ErrInvalidRating
	}

	order, err := s.orderRepo.FindPurchase(ctx, userID, orderID, productID)
	if err != nil {
		if errors.Is(err, repository.ErrPurchaseNotFound) {
			return nil, ErrInvalidPurchase
		}
		return nil, err
	}

	if order.Status == domain.OrderStatusPending && order.PaymentStatus != domain.PaymentStatusPaid {
		return nil, ErrInvalidPurchase
	}

	now := time.Now()
	review := &domain.ProductReview{
		ID:                 uuid.New(),
		ProductID:          productID,
		UserID:             userID,
		OrderID:            &orderID,
		Rating:             input.Rating,
		Title:              input.Title,
		Comment:            input.Comment,
		IsVerifiedPurchase: true,
		IsApproved:         true,
		CreatedAt:          now,
		UpdatedAt:          now,
	}

	if err := s.reviewRepo.Create(ctx, review); err != nil {
		return nil, err
	}

	return review, nil
}

// UpdateReview applies owner edits to an existing review
func (s *reviewService) UpdateReview(ctx context.Context, userID, id uuid.UUID, input ReviewInput) (*domain.ProductReview, error) {
	if input.Rating < 1 || input.Rating > 5 {
		return nil, ErrInvalidRating
	}

	review, err := s.reviewRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if review.UserID != userID {
		return nil, ErrNotReviewOwner
	}

	review.Rating = input.Rating
	review.Title = input.Title
	review.Comment = input.Comment

	if err := s.reviewRepo.Update(ctx, review); err != nil {
		return nil, err
	}

	return s.reviewRepo.FindByID(ctx, id)
}

// DeleteReview removes a review; owners may delete their own, admins any
func (s *reviewService) DeleteReview(ctx context.Context, userID, id uuid.UUID, isAdmin bool) error {
	review, err := s.reviewRepo.FindByID(ctx, id)
	if err != nil {
		return err
	}

	if !isAdmin && review.UserID != userID {
		return ErrNotReviewOwner
	}

	return s.reviewRepo.Delete(ctx, id)
}

// ListByProduct returns a product's approved reviews
func (s *reviewService) ListByProduct(ctx context.Context, productID uuid.UUID, page, pageSize int) ([]*domain.ProductReview, int, error) {
	return s.reviewRepo.ListByProduct(ctx, productID, true, page, pageSize)
}

// MarkHelpful bumps the helpful counter; authors may not boost themselves
func (s *reviewService) MarkHelpful(ctx context.Context, userID, id uuid.UUID) error {
	review, err := s.reviewRepo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if review.UserID == userID {
		return ErrSelfReviewAction
	}

	return s.reviewRepo.IncrementHelpful(ctx, id)
}

// Report bumps the reported counter; authors may not report themselves
func (s *reviewService) Report(ctx context.Context, userID, id uuid.UUID) error {
	review, err := s.reviewRepo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if review.UserID == userID {
		return ErrSelfReviewAction
	}

	return s.reviewRepo.IncrementReported(ctx, id)
}
