package transport

import (
	"errors"
	"net/http"
	"time"

	"bloomcart/internal/domain"
	"bloomcart/internal/middleware"
	"bloomcart/internal/pricing"
	"bloomcart/internal/repository"
	"bloomcart/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/samber/lo"
	"go.uber.org/zap"
)

// OrderItemRequest is a single submitted cart line
type OrderItemRequest struct {
	ProductID uuid.UUID `json:"product_id" validate:"required"`
	Quantity  int       `json:"quantity" validate:"required"`
}

// PlaceOrderRequest represents the checkout payload
type PlaceOrderRequest struct {
	Items               []OrderItemRequest `json:"items" validate:"required"`
	ShippingAddressID   *uuid.UUID         `json:"shipping_address_id"`
	ShippingMethod      string             `json:"shipping_method" validate:"required"`
	PaymentMethod       string             `json:"payment_method"`
	DiscountCode        string             `json:"discount_code"`
	SpecialInstructions string             `json:"special_instructions"`
	GiftMessage         string             `json:"gift_message"`
}

// UpdateStatusRequest represents the admin status-change payload
type UpdateStatusRequest struct {
	Status         string `json:"status" validate:"required"`
	TrackingNumber string `json:"tracking_number"`
	Notes          string `json:"notes"`
}

// CancelOrderRequest represents the cancellation payload
type CancelOrderRequest struct {
	Reason string `json:"reason"`
}

// OrderListResponse is the paged order listing envelope
type OrderListResponse struct {
	Orders     []*domain.Order `json:"orders"`
	Pagination Pagination      `json:"pagination"`
}

// AdminOrderListResponse adds the revenue summary over the returned page
type AdminOrderListResponse struct {
	OrderListResponse
	Summary service.OrderSummary `json:"summary"`
}

// OrderHandler handles HTTP requests for order operations
type OrderHandler struct {
	orderService service.OrderService
	logger       *zap.Logger
}

// NewOrderHandler creates a new OrderHandler
func NewOrderHandler(orderService service.OrderService, logger *zap.Logger) *OrderHandler {
	return &OrderHandler{
		orderService: orderService,
		logger:       logger,
	}
}

// RegisterRoutes registers all order routes
func (h *OrderHandler) RegisterRoutes(r chi.Router, auth, admin func(http.Handler) http.Handler) {
	r.Route("/orders", func(r chi.Router) {
		r.Use(auth)

		r.Post("/", h.PlaceOrder)
		r.Get("/my", h.GetMyOrders)
		r.Get("/{id}", h.GetOrder)
		r.Post("/{id}/cancel", h.CancelOrder)

		r.Group(func(r chi.Router) {
			r.Use(admin)
			r.Get("/", h.ListAllOrders)
			r.Put("/{id}/status", h.UpdateStatus)
		})
	})
}

// PlaceOrder handles checkout
func (h *OrderHandler) PlaceOrder(w http.ResponseWriter, r *http.Request) {
	userID, ok := requesterID(r)
	if !ok {
		middleware.RespondWithError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req PlaceOrderRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	input := service.PlaceOrderInput{
		UserID: userID,
		Items: lo.Map(req.Items, func(item OrderItemRequest, _ int) service.LineItem {
			return service.LineItem{ProductID: item.ProductID, Quantity: item.Quantity}
		}),
		ShippingAddressID:   req.ShippingAddressID,
		ShippingMethod:      req.ShippingMethod,
		PaymentMethod:       req.PaymentMethod,
		DiscountCode:        req.DiscountCode,
		SpecialInstructions: req.SpecialInstructions,
		GiftMessage:         req.GiftMessage,
	}

	order, err := h.orderService.PlaceOrder(r.Context(), input)
	if err != nil {
		h.respondPlacementError(w, err)
		return
	}

	h.logger.Info("Order placed",
		zap.String("order_id", order.ID.String()),
		zap.String("order_number", order.OrderNumber),
		zap.Float64("total", order.Total),
	)
	middleware.RespondWithJSON(w, http.StatusCreated, order)
}

// respondPlacementError maps checkout failures to the first failing
// validation, as one specific message
func (h *OrderHandler) respondPlacementError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrEmptyOrder),
		errors.Is(err, service.ErrInvalidQuantity),
		errors.Is(err, service.ErrMissingPaymentMethod),
		errors.Is(err, service.ErrInvalidShippingMethod),
		errors.Is(err, service.ErrMissingShippingAddress),
		errors.Is(err, service.ErrProductUnavailable),
		errors.Is(err, repository.ErrProductNotFound),
		errors.Is(err, repository.ErrInsufficientStock),
		errors.Is(err, pricing.ErrUnknownDiscountCode),
		errors.Is(err, pricing.ErrNonPositiveTotal):
		middleware.RespondWithError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, repository.ErrAddressNotFound):
		middleware.RespondWithError(w, http.StatusNotFound, "shipping address not found")
	default:
		h.logger.Error("Order placement failed", zap.Error(err))
		middleware.RespondWithErrorDetail(w, http.StatusInternalServerError, "failed to place order", err)
	}
}

// GetMyOrders lists the requester's own orders
func (h *OrderHandler) GetMyOrders(w http.ResponseWriter, r *http.Request) {
	userID, ok := requesterID(r)
	if !ok {
		middleware.RespondWithError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	page, limit := paginationParams(r, userPageLimit)
	status := r.URL.Query().Get("status")

	orders, total, err := h.orderService.GetUserOrders(r.Context(), userID, status, page, limit)
	if err != nil {
		if errors.Is(err, service.ErrInvalidOrderStatus) {
			middleware.RespondWithError(w, http.StatusBadRequest, "invalid order status")
			return
		}
		h.logger.Error("Failed to list user orders", zap.Error(err))
		middleware.RespondWithErrorDetail(w, http.StatusInternalServerError, "failed to list orders", err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, OrderListResponse{
		Orders:     orders,
		Pagination: newPagination(page, limit, total),
	})
}

// GetOrder retrieves one order, hiding foreign orders from non-admins
func (h *OrderHandler) GetOrder(w http.ResponseWriter, r *http.Request) {
	userID, ok := requesterID(r)
	if !ok {
		middleware.RespondWithError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	id, ok := pathID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	order, err := h.orderService.GetOrder(r.Context(), id, userID, isAdmin(r))
	if err != nil {
		if errors.Is(err, repository.ErrOrderNotFound) {
			middleware.RespondWithError(w, http.StatusNotFound, "order not found")
			return
		}
		h.logger.Error("Failed to get order", zap.Error(err))
		middleware.RespondWithErrorDetail(w, http.StatusInternalServerError, "failed to get order", err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, order)
}

// ListAllOrders lists orders for admins with filters and a revenue summary
func (h *OrderHandler) ListAllOrders(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	page, limit := paginationParams(r, adminPageLimit)

	adminQuery := service.AdminOrderQuery{Status: query.Get("status")}

	if raw := query.Get("customer"); raw != "" {
		customerID, err := uuid.Parse(raw)
		if err != nil {
			middleware.RespondWithError(w, http.StatusBadRequest, "invalid customer id")
			return
		}
		adminQuery.CustomerID = &customerID
	}
	if raw := query.Get("from"); raw != "" {
		from, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			middleware.RespondWithError(w, http.StatusBadRequest, "invalid from date")
			return
		}
		adminQuery.From = &from
	}
	if raw := query.Get("to"); raw != "" {
		to, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			middleware.RespondWithError(w, http.StatusBadRequest, "invalid to date")
			return
		}
		adminQuery.To = &to
	}

	result, err := h.orderService.ListAllOrders(r.Context(), adminQuery, page, limit)
	if err != nil {
		if errors.Is(err, service.ErrInvalidOrderStatus) {
			middleware.RespondWithError(w, http.StatusBadRequest, "invalid order status")
			return
		}
		h.logger.Error("Failed to list orders", zap.Error(err))
		middleware.RespondWithErrorDetail(w, http.StatusInternalServerError, "failed to list orders", err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, AdminOrderListResponse{
		OrderListResponse: OrderListResponse{
			Orders:     result.Orders,
			Pagination: newPagination(page, limit, result.Total),
		},
		Summary: result.Summary,
	})
}

// UpdateStatus moves an order along its lifecycle (admin)
func (h *OrderHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	var req UpdateStatusRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	order, err := h.orderService.UpdateStatus(r.Context(), id, req.Status, req.TrackingNumber, req.Notes)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidOrderStatus), errors.Is(err, service.ErrIllegalTransition):
			middleware.RespondWithError(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, repository.ErrOrderNotFound):
			middleware.RespondWithError(w, http.StatusNotFound, "order not found")
		case errors.Is(err, repository.ErrOrderStateChanged):
			middleware.RespondWithError(w, http.StatusConflict, "order status changed, retry")
		default:
			h.logger.Error("Failed to update order status", zap.Error(err))
			middleware.RespondWithErrorDetail(w, http.StatusInternalServerError, "failed to update order status", err)
		}
		return
	}

	h.logger.Info("Order status updated",
		zap.String("order_id", order.ID.String()),
		zap.String("status", string(order.Status)),
	)
	middleware.RespondWithJSON(w, http.StatusOK, order)
}

// CancelOrder cancels an order on behalf of its owner or an admin
func (h *OrderHandler) CancelOrder(w http.ResponseWriter, r *http.Request) {
	userID, ok := requesterID(r)
	if !ok {
		middleware.RespondWithError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	id, ok := pathID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	var req CancelOrderRequest
	if r.ContentLength > 0 {
		if err := middleware.DecodeAndValidate(r, &req); err != nil {
			middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
			return
		}
	}

	order, err := h.orderService.CancelOrder(r.Context(), id, userID, isAdmin(r), req.Reason)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrOrderNotFound):
			middleware.RespondWithError(w, http.StatusNotFound, "order not found")
		case errors.Is(err, service.ErrOrderNotCancellable):
			middleware.RespondWithError(w, http.StatusBadRequest, "order can no longer be cancelled")
		case errors.Is(err, repository.ErrOrderStateChanged):
			middleware.RespondWithError(w, http.StatusConflict, "order status changed, retry")
		default:
			h.logger.Error("Failed to cancel order", zap.Error(err))
			middleware.RespondWithErrorDetail(w, http.StatusInternalServerError, "failed to cancel order", err)
		}
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, order)
}
