package transport

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"bloomcart/internal/domain"
	"bloomcart/internal/middleware"
	"bloomcart/internal/repository"
	"bloomcart/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/samber/lo"
	"go.uber.org/zap"
)

// ProductRequest represents the admin product create/update payload
type ProductRequest struct {
	Name          string   `json:"name"`
	Description   string   `json:"description"`
	Price         float64  `json:"price"`
	OriginalPrice *float64 `json:"original_price"`
	Category      string   `json:"category"`
	IsFeatured    bool     `json:"is_featured"`
	ImageURL      string   `json:"image_url"`
	Stock         int      `json:"stock"`
}

// StockRequest represents the stock adjustment payload
type StockRequest struct {
	Stock *int `json:"stock" validate:"required"`
}

// ProductResponse is a catalog product with its derived display fields
type ProductResponse struct {
	*domain.Product
	IsAvailable        bool   `json:"is_available"`
	StockStatus        string `json:"stock_status"`
	OnSale             bool   `json:"on_sale"`
	DiscountPercentage int    `json:"discount_percentage"`
}

// ProductDetailResponse is the single-product view with reviews and rating
type ProductDetailResponse struct {
	ProductResponse
	Reviews    []*domain.ProductReview `json:"reviews"`
	Rating     domain.RatingSummary    `json:"rating"`
	InWishlist bool                    `json:"in_wishlist"`
}

// ProductListResponse is the catalog listing envelope
type ProductListResponse struct {
	Products   []ProductResponse `json:"products"`
	Pagination Pagination        `json:"pagination"`
	Filters    map[string]string `json:"filters"`
}

func toProductResponse(product *domain.Product) ProductResponse {
	return ProductResponse{
		Product:            product,
		IsAvailable:        product.IsAvailable(),
		StockStatus:        product.StockStatus(),
		OnSale:             product.OnSale(),
		DiscountPercentage: product.DiscountPercentage(),
	}
}

// ProductHandler handles HTTP requests for catalog operations
type ProductHandler struct {
	catalogService  service.CatalogService
	wishlistService service.WishlistService
	logger          *zap.Logger
}

// NewProductHandler creates a new ProductHandler
func NewProductHandler(catalogService service.CatalogService, wishlistService service.WishlistService, logger *zap.Logger) *ProductHandler {
	return &ProductHandler{
		catalogService:  catalogService,
		wishlistService: wishlistService,
		logger:          logger,
	}
}

// RegisterRoutes registers all catalog routes
func (h *ProductHandler) RegisterRoutes(r chi.Router, optionalAuth, auth, admin func(http.Handler) http.Handler) {
	r.Route("/products", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(optionalAuth)
			r.Get("/", h.ListProducts)
			r.Get("/{id}", h.GetProduct)
		})

		r.Group(func(r chi.Router) {
			r.Use(auth, admin)
			r.Post("/", h.CreateProduct)
			r.Put("/{id}", h.UpdateProduct)
			r.Delete("/{id}", h.DeleteProduct)
			r.Patch("/{id}/stock", h.AdjustStock)
		})
	})
}

// ListProducts handles the filtered catalog listing
func (h *ProductHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	limitCap := userPageLimit
	if isAdmin(r) {
		limitCap = adminPageLimit
	}
	page, limit := paginationParams(r, limitCap)

	filter := repository.ProductFilter{Search: query.Get("search")}
	filters := map[string]string{}

	if category := query.Get("category"); category != "" {
		filter.Category = &category
		filters["category"] = category
	}
	if rawStatus := query.Get("status"); rawStatus != "" {
		status, err := domain.ToProductStatus(rawStatus)
		if err != nil {
			middleware.RespondWithError(w, http.StatusBadRequest, "invalid product status")
			return
		}
		filter.Status = &status
		filters["status"] = rawStatus
	}
	if raw := query.Get("minPrice"); raw != "" {
		price, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			middleware.RespondWithError(w, http.StatusBadRequest, "invalid minPrice")
			return
		}
		filter.MinPrice = &price
		filters["minPrice"] = raw
	}
	if raw := query.Get("maxPrice"); raw != "" {
		price, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			middleware.RespondWithError(w, http.StatusBadRequest, "invalid maxPrice")
			return
		}
		filter.MaxPrice = &price
		filters["maxPrice"] = raw
	}
	if raw := query.Get("featured"); raw != "" {
		featured := raw == "true"
		filter.Featured = &featured
		filters["featured"] = raw
	}
	if filter.Search != "" {
		filters["search"] = filter.Search
	}

	sortBy := query.Get("sort")
	sortOrder := repository.SortOrderDesc
	if strings.EqualFold(query.Get("order"), "asc") {
		sortOrder = repository.SortOrderAsc
	}

	products, total, err := h.catalogService.ListProducts(r.Context(), filter, page, limit, sortBy, sortOrder)
	if err != nil {
		h.logger.Error("Failed to list products", zap.Error(err))
		middleware.RespondWithErrorDetail(w, http.StatusInternalServerError, "failed to list products", err)
		return
	}

	response := ProductListResponse{
		Products:   lo.Map(products, func(p *domain.Product, _ int) ProductResponse { return toProductResponse(p) }),
		Pagination: newPagination(page, limit, total),
		Filters:    filters,
	}

	middleware.RespondWithJSON(w, http.StatusOK, response)
}

// GetProduct handles the single-product view
func (h *ProductHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	detail, err := h.catalogService.GetProduct(r.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			middleware.RespondWithError(w, http.StatusNotFound, "product not found")
			return
		}
		h.logger.Error("Failed to get product", zap.Error(err))
		middleware.RespondWithErrorDetail(w, http.StatusInternalServerError, "failed to get product", err)
		return
	}

	inWishlist := false
	if userID, authed := requesterID(r); authed {
		inWishlist, err = h.wishlistService.Contains(r.Context(), userID, id)
		if err != nil {
			h.logger.Warn("Failed to check wishlist membership", zap.Error(err))
			inWishlist = false
		}
	}

	response := ProductDetailResponse{
		ProductResponse: toProductResponse(detail.Product),
		Reviews:         detail.Reviews,
		Rating:          detail.Rating,
		InWishlist:      inWishlist,
	}

	middleware.RespondWithJSON(w, http.StatusOK, response)
}

// CreateProduct handles admin product creation
func (h *ProductHandler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var req ProductRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	product, err := h.catalogService.CreateProduct(r.Context(), productInput(req))
	if err != nil {
		h.respondProductError(w, err, "failed to create product")
		return
	}

	h.logger.Info("Product created", zap.String("product_id", product.ID.String()))
	middleware.RespondWithJSON(w, http.StatusCreated, toProductResponse(product))
}

// UpdateProduct handles admin product edits
func (h *ProductHandler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	var req ProductRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	product, err := h.catalogService.UpdateProduct(r.Context(), id, productInput(req))
	if err != nil {
		h.respondProductError(w, err, "failed to update product")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, toProductResponse(product))
}

// DeleteProduct handles admin soft deletion
func (h *ProductHandler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	if err := h.catalogService.DeleteProduct(r.Context(), id); err != nil {
		h.respondProductError(w, err, "failed to delete product")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, map[string]string{"message": "product discontinued"})
}

// AdjustStock handles admin stock level changes
func (h *ProductHandler) AdjustStock(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	var req StockRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "stock must be a number")
		return
	}

	product, err := h.catalogService.AdjustStock(r.Context(), id, *req.Stock)
	if err != nil {
		h.respondProductError(w, err, "failed to adjust stock")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, toProductResponse(product))
}

func productInput(req ProductRequest) service.ProductInput {
	return service.ProductInput{
		Name:          req.Name,
		Description:   req.Description,
		Price:         req.Price,
		OriginalPrice: req.OriginalPrice,
		Category:      req.Category,
		IsFeatured:    req.IsFeatured,
		ImageURL:      req.ImageURL,
		Stock:         req.Stock,
	}
}

func (h *ProductHandler) respondProductError(w http.ResponseWriter, err error, fallback string) {
	var missingErr *service.MissingFieldsError
	switch {
	case errors.As(err, &missingErr):
		middleware.RespondWithJSON(w, http.StatusBadRequest, map[string]interface{}{
			"message":       missingErr.Error(),
			"missingFields": missingErr.Fields,
		})
	case errors.Is(err, service.ErrInvalidPrice), errors.Is(err, service.ErrInvalidStock):
		middleware.RespondWithError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, repository.ErrProductNotFound):
		middleware.RespondWithError(w, http.StatusNotFound, "product not found")
	default:
		h.logger.Error(fallback, zap.Error(err))
		middleware.RespondWithErrorDetail(w, http.StatusInternalServerError, fallback, err)
	}
}
