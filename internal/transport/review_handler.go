package transport

import (
	"context"
	"errors"
	"net/http"

	"bloomcart/internal/middleware"
	"bloomcart/internal/repository"
	"bloomcart/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// CreateReviewRequest represents the review submission payload
type CreateReviewRequest struct {
	OrderID uuid.UUID `json:"order_id" validate:"required"`
	Rating  int       `json:"rating" validate:"required,gte=1,lte=5"`
	Title   string    `json:"title" validate:"max=120"`
	Comment string    `json:"comment" validate:"max=2000"`
}

// UpdateReviewRequest represents the review edit payload
type UpdateReviewRequest struct {
	Rating  int    `json:"rating" validate:"required,gte=1,lte=5"`
	Title   string `json:"title" validate:"max=120"`
	Comment string `json:"comment" validate:"max=2000"`
}

// ReviewHandler handles HTTP requests for product reviews
type ReviewHandler struct {
	reviewService service.ReviewService
	logger        *zap.Logger
}

// NewReviewHandler creates a new ReviewHandler
func NewReviewHandler(reviewService service.ReviewService, logger *zap.Logger) *ReviewHandler {
	return &ReviewHandler{
		reviewService: reviewService,
		logger:        logger,
	}
}

// RegisterRoutes registers all review routes. Listing is public; everything
// else requires a logged-in user.
func (h *ReviewHandler) RegisterRoutes(r chi.Router, auth func(http.Handler) http.Handler) {
	r.Get("/flowers/{flowerId}/reviews", h.ListReviews)

	r.Group(func(r chi.Router) {
		r.Use(auth)
		r.Post("/flowers/{flowerId}/reviews", h.CreateReview)
		r.Put("/reviews/{id}", h.UpdateReview)
		r.Delete("/reviews/{id}", h.DeleteReview)
		r.Post("/reviews/{id}/helpful", h.MarkHelpful)
		r.Post("/reviews/{id}/report", h.Report)
	})
}

// ListReviews returns a product's approved reviews
func (h *ReviewHandler) ListReviews(w http.ResponseWriter, r *http.Request) {
	productID, ok := pathID(w, chi.URLParam(r, "flowerId"))
	if !ok {
		return
	}

	page, limit := paginationParams(r, userPageLimit)

	reviews, total, err := h.reviewService.ListByProduct(r.Context(), productID, page, limit)
	if err != nil {
		h.logger.Error("Failed to list reviews", zap.Error(err))
		middleware.RespondWithErrorDetail(w, http.StatusInternalServerError, "failed to list reviews", err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, map[string]interface{}{
		"reviews":    reviews,
		"pagination": newPagination(page, limit, total),
	})
}

// CreateReview submits a verified-purchase review
func (h *ReviewHandler) CreateReview(w http.ResponseWriter, r *http.Request) {
	userID, ok := requesterID(r)
	if !ok {
		middleware.RespondWithError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	productID, ok := pathID(w, chi.URLParam(r, "flowerId"))
	if !ok {
		return
	}

	var req CreateReviewRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	review, err := h.reviewService.CreateReview(r.Context(), userID, productID, req.OrderID, service.ReviewInput{
		Rating:  req.Rating,
		Title:   req.Title,
		Comment: req.Comment,
	})
	if err != nil {
		h.respondReviewError(w, err, "failed to create review")
		return
	}

	h.logger.Info("Review created",
		zap.String("review_id", review.ID.String()),
		zap.String("product_id", productID.String()),
	)
	middleware.RespondWithJSON(w, http.StatusCreated, review)
}

// UpdateReview applies owner edits to a review
func (h *ReviewHandler) UpdateReview(w http.ResponseWriter, r *http.Request) {
	userID, ok := requesterID(r)
	if !ok {
		middleware.RespondWithError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	id, ok := pathID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	var req UpdateReviewRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	review, err := h.reviewService.UpdateReview(r.Context(), userID, id, service.ReviewInput{
		Rating:  req.Rating,
		Title:   req.Title,
		Comment: req.Comment,
	})
	if err != nil {
		h.respondReviewError(w, err, "failed to update review")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, review)
}

// DeleteReview removes a review for its owner or an admin
func (h *ReviewHandler) DeleteReview(w http.ResponseWriter, r *http.Request) {
	userID, ok := requesterID(r)
	if !ok {
		middleware.RespondWithError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	id, ok := pathID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	if err := h.reviewService.DeleteReview(r.Context(), userID, id, isAdmin(r)); err != nil {
		h.respondReviewError(w, err, "failed to delete review")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, map[string]string{"message": "review deleted"})
}

// MarkHelpful increments a review's helpful counter
func (h *ReviewHandler) MarkHelpful(w http.ResponseWriter, r *http.Request) {
	h.incrementCounter(w, r, h.reviewService.MarkHelpful, "review marked helpful")
}

// Report increments a review's reported counter
func (h *ReviewHandler) Report(w http.ResponseWriter, r *http.Request) {
	h.incrementCounter(w, r, h.reviewService.Report, "review reported")
}

func (h *ReviewHandler) incrementCounter(
	w http.ResponseWriter,
	r *http.Request,
	action func(ctx context.Context, userID, id uuid.UUID) error,
	message string,
) {
	userID, ok := requesterID(r)
	if !ok {
		middleware.RespondWithError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	id, ok := pathID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	if err := action(r.Context(), userID, id); err != nil {
		h.respondReviewError(w, err, "failed to update review counters")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, map[string]string{"message": message})
}

func (h *ReviewHandler) respondReviewError(w http.ResponseWriter, err error, fallback string) {
	switch {
	case errors.Is(err, service.ErrInvalidRating):
		middleware.RespondWithError(w, http.StatusBadRequest, "rating must be between 1 and 5")
	case errors.Is(err, service.ErrInvalidPurchase):
		middleware.RespondWithError(w, http.StatusBadRequest, "reviews require a confirmed purchase")
	case errors.Is(err, repository.ErrDuplicateReview):
		middleware.RespondWithError(w, http.StatusBadRequest, "you have already reviewed this purchase")
	case errors.Is(err, service.ErrSelfReviewAction):
		middleware.RespondWithError(w, http.StatusBadRequest, "cannot mark or report your own review")
	case errors.Is(err, service.ErrNotReviewOwner):
		middleware.RespondWithError(w, http.StatusForbidden, "review does not belong to you")
	case errors.Is(err, repository.ErrReviewNotFound):
		middleware.RespondWithError(w, http.StatusNotFound, "review not found")
	default:
		h.logger.Error(fallback, zap.Error(err))
		middleware.RespondWithErrorDetail(w, http.StatusInternalServerError, fallback, err)
	}
}
