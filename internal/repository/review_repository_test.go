package repository

import (
	"context"
	"testing"
	"time"

	"bloomcart/internal/domain"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedPurchase(t *testing.T, userID uuid.UUID, product *domain.Product) *domain.Order {
	t.Helper()

	repo := NewOrderRepository(testDB, NewProductRepository(testDB))
	placed, err := repo.PlaceOrder(context.Background(), []uuid.UUID{product.ID},
		func(locked map[uuid.UUID]*domain.Product) (*domain.Order, error) {
			return buildTestOrder(userID, locked[product.ID], 1), nil
		})
	require.NoError(t, err)
	return placed
}

func newReview(userID, productID uuid.UUID, orderID *uuid.UUID, rating int, approved bool) *domain.ProductReview {
	return &domain.ProductReview{
		ID:                 uuid.New(),
		ProductID:          productID,
		UserID:             userID,
		OrderID:            orderID,
		Rating:             rating,
		Title:              "Lovely",
		Comment:            "Still fresh a week later",
		IsVerifiedPurchase: true,
		IsApproved:         approved,
		CreatedAt:          time.Now(),
		UpdatedAt:          time.Now(),
	}
}

func TestReviewCreate_DuplicatePurchaseRejected(t *testing.T) {
	ctx := context.Background()
	userID := seedUser(t)
	product := seedProduct(t, "Review Roses", 20.00, 5)
	order := seedPurchase(t, userID, product)

	repo := NewReviewRepository(testDB)

	require.NoError(t, repo.Create(ctx, newReview(userID, product.ID, &order.ID, 5, true)))

	err := repo.Create(ctx, newReview(userID, product.ID, &order.ID, 3, true))
	assert.ErrorIs(t, err, ErrDuplicateReview)
}

func TestReviewRatingSummary_ApprovedOnly(t *testing.T) {
	ctx := context.Background()
	product := seedProduct(t, "Summary Stems", 14.00, 20)

	repo := NewReviewRepository(testDB)

	ratings := []struct {
		rating   int
		approved bool
	}{
		{5, true},
		{4, true},
		{1, false}, // hidden review must not drag the average down
	}
	for _, r := range ratings {
		reviewer := seedUser(t)
		order := seedPurchase(t, reviewer, product)
		require.NoError(t, repo.Create(ctx, newReview(reviewer, product.ID, &order.ID, r.rating, r.approved)))
	}

	summary, err := repo.RatingSummary(ctx, product.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, summary.Count)
	assert.InDelta(t, 4.5, summary.Average, 0.001)

	reviews, total, err := repo.ListByProduct(ctx, product.ID, true, 1, 20)
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	for _, review := range reviews {
		assert.True(t, review.IsApproved)
	}
}

func TestReviewCounters_Increment(t *testing.T) {
	ctx := context.Background()
	userID := seedUser(t)
	product := seedProduct(t, "Counter Carnations", 8.00, 5)
	order := seedPurchase(t, userID, product)

	repo := NewReviewRepository(testDB)
	review := newReview(userID, product.ID, &order.ID, 4, true)
	require.NoError(t, repo.Create(ctx, review))

	require.NoError(t, repo.IncrementHelpful(ctx, review.ID))
	require.NoError(t, repo.IncrementHelpful(ctx, review.ID))
	require.NoError(t, repo.IncrementReported(ctx, review.ID))

	found, err := repo.FindByID(ctx, review.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, found.HelpfulCount)
	assert.Equal(t, 1, found.ReportedCount)
}

func TestWishlistAdd_DuplicateRejected(t *testing.T) {
	ctx := context.Background()
	userID := seedUser(t)
	product := seedProduct(t, "Wishlist Willow", 7.00, 3)

	repo := NewWishlistRepository(testDB)

	item := &domain.WishlistItem{
		ID:        uuid.New(),
		UserID:    userID,
		ProductID: product.ID,
		Priority:  domain.WishlistPriorityMedium,
		CreatedAt: time.Now(),
	}
	require.NoError(t, repo.Add(ctx, item))

	dup := &domain.WishlistItem{
		ID:        uuid.New(),
		UserID:    userID,
		ProductID: product.ID,
		Priority:  domain.WishlistPriorityHigh,
		CreatedAt: time.Now(),
	}
	assert.ErrorIs(t, repo.Add(ctx, dup), ErrDuplicateWishlistItem)

	onList, err := repo.Contains(ctx, userID, product.ID)
	require.NoError(t, err)
	assert.True(t, onList)
}

func TestWishlistStats_CountsByPriority(t *testing.T) {
	ctx := context.Background()
	userID := seedUser(t)

	repo := NewWishlistRepository(testDB)

	priorities := []domain.WishlistPriority{
		domain.WishlistPriorityHigh,
		domain.WishlistPriorityHigh,
		domain.WishlistPriorityMedium,
		domain.WishlistPriorityLow,
	}
	for i, priority := range priorities {
		product := seedProduct(t, "Stats Stem "+string(rune('A'+i)), 10.00, 2)
		require.NoError(t, repo.Add(ctx, &domain.WishlistItem{
			ID:        uuid.New(),
			UserID:    userID,
			ProductID: product.ID,
			Priority:  priority,
			CreatedAt: time.Now(),
		}))
	}

	stats, err := repo.Stats(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, domain.WishlistStats{Total: 4, High: 2, Medium: 1, Low: 1}, stats)

	require.NoError(t, repo.Remove(ctx, userID, mustFirstWishlistProduct(t, userID)))

	stats, err = repo.Stats(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, 3, stats.Total)
}

func mustFirstWishlistProduct(t *testing.T, userID uuid.UUID) uuid.UUID {
	t.Helper()

	var productID uuid.UUID
	err := testDB.QueryRow(
		`SELECT product_id FROM wishlist_items WHERE user_id = $1 ORDER BY created_at LIMIT 1`,
		userID,
	).Scan(&productID)
	require.NoError(t, err)
	return productID
}
