package transport

import (
	"errors"
	"net/http"

	"bloomcart/internal/middleware"
	"bloomcart/internal/repository"
	"bloomcart/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// AddWishlistRequest represents the save-for-later payload
type AddWishlistRequest struct {
	ProductID       uuid.UUID `json:"product_id" validate:"required"`
	Notes           string    `json:"notes" validate:"max=500"`
	Priority        string    `json:"priority"`
	NotifyOnRestock bool      `json:"notify_on_restock"`
}

// WishlistHandler handles HTTP requests for the wishlist
type WishlistHandler struct {
	wishlistService service.WishlistService
	logger          *zap.Logger
}

// NewWishlistHandler creates a new WishlistHandler
func NewWishlistHandler(wishlistService service.WishlistService, logger *zap.Logger) *WishlistHandler {
	return &WishlistHandler{
		wishlistService: wishlistService,
		logger:          logger,
	}
}

// RegisterRoutes registers all wishlist routes
func (h *WishlistHandler) RegisterRoutes(r chi.Router, auth func(http.Handler) http.Handler) {
	r.Route("/wishlist", func(r chi.Router) {
		r.Use(auth)

		r.Get("/", h.List)
		r.Post("/", h.Add)
		r.Get("/stats", h.Stats)
		r.Get("/check/{productId}", h.Check)
		r.Delete("/{productId}", h.Remove)
		r.Put("/{productId}/cart", h.MoveToCart)
	})
}

// List returns the requester's wishlist with current product state
func (h *WishlistHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := requesterID(r)
	if !ok {
		middleware.RespondWithError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	entries, err := h.wishlistService.List(r.Context(), userID)
	if err != nil {
		h.logger.Error("Failed to list wishlist", zap.Error(err))
		middleware.RespondWithErrorDetail(w, http.StatusInternalServerError, "failed to list wishlist", err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, map[string]interface{}{"items": entries})
}

// Add saves a product to the requester's wishlist
func (h *WishlistHandler) Add(w http.ResponseWriter, r *http.Request) {
	userID, ok := requesterID(r)
	if !ok {
		middleware.RespondWithError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req AddWishlistRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	item, err := h.wishlistService.Add(r.Context(), userID, req.ProductID, service.WishlistInput{
		Notes:           req.Notes,
		Priority:        req.Priority,
		NotifyOnRestock: req.NotifyOnRestock,
	})
	if err != nil {
		h.respondWishlistError(w, err, "failed to add wishlist item")
		return
	}

	middleware.RespondWithJSON(w, http.StatusCreated, item)
}

// Remove takes a product off the requester's wishlist
func (h *WishlistHandler) Remove(w http.ResponseWriter, r *http.Request) {
	userID, ok := requesterID(r)
	if !ok {
		middleware.RespondWithError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	productID, ok := pathID(w, chi.URLParam(r, "productId"))
	if !ok {
		return
	}

	if err := h.wishlistService.Remove(r.Context(), userID, productID); err != nil {
		h.respondWishlistError(w, err, "failed to remove wishlist item")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, map[string]string{"message": "removed from wishlist"})
}

// Check reports whether a product is on the requester's wishlist
func (h *WishlistHandler) Check(w http.ResponseWriter, r *http.Request) {
	userID, ok := requesterID(r)
	if !ok {
		middleware.RespondWithError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	productID, ok := pathID(w, chi.URLParam(r, "productId"))
	if !ok {
		return
	}

	onList, err := h.wishlistService.Contains(r.Context(), userID, productID)
	if err != nil {
		h.logger.Error("Failed to check wishlist", zap.Error(err))
		middleware.RespondWithErrorDetail(w, http.StatusInternalServerError, "failed to check wishlist", err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, map[string]interface{}{
		"product_id":  productID,
		"in_wishlist": onList,
	})
}

// MoveToCart projects a wishlist entry into a cart-addable line
func (h *WishlistHandler) MoveToCart(w http.ResponseWriter, r *http.Request) {
	userID, ok := requesterID(r)
	if !ok {
		middleware.RespondWithError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	productID, ok := pathID(w, chi.URLParam(r, "productId"))
	if !ok {
		return
	}

	line, err := h.wishlistService.MoveToCart(r.Context(), userID, productID)
	if err != nil {
		h.respondWishlistError(w, err, "failed to move wishlist item to cart")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, line)
}

// Stats returns the per-priority counts of the requester's wishlist
func (h *WishlistHandler) Stats(w http.ResponseWriter, r *http.Request) {
	userID, ok := requesterID(r)
	if !ok {
		middleware.RespondWithError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	stats, err := h.wishlistService.Stats(r.Context(), userID)
	if err != nil {
		h.logger.Error("Failed to compute wishlist stats", zap.Error(err))
		middleware.RespondWithErrorDetail(w, http.StatusInternalServerError, "failed to compute wishlist stats", err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, stats)
}

func (h *WishlistHandler) respondWishlistError(w http.ResponseWriter, err error, fallback string) {
	switch {
	case errors.Is(err, service.ErrInvalidPriority):
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid wishlist priority")
	case errors.Is(err, repository.ErrDuplicateWishlistItem):
		middleware.RespondWithError(w, http.StatusBadRequest, "product is already on the wishlist")
	case errors.Is(err, repository.ErrWishlistItemNotFound):
		middleware.RespondWithError(w, http.StatusNotFound, "wishlist item not found")
	case errors.Is(err, repository.ErrProductNotFound):
		middleware.RespondWithError(w, http.StatusNotFound, "product not found")
	default:
		h.logger.Error(fallback, zap.Error(err))
		middleware.RespondWithErrorDetail(w, http.StatusInternalServerError, fallback, err)
	}
}
