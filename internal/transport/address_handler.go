package transport

import (
	"errors"
	"net/http"

	"bloomcart/internal/middleware"
	"bloomcart/internal/repository"
	"bloomcart/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// AddressRequest represents the address create/update payload
type AddressRequest struct {
	RecipientName string `json:"recipient_name" validate:"required"`
	AddressLine1  string `json:"address_line1" validate:"required"`
	AddressLine2  string `json:"address_line2"`
	City          string `json:"city" validate:"required"`
	State         string `json:"state" validate:"required"`
	PostalCode    string `json:"postal_code" validate:"required"`
	Country       string `json:"country" validate:"required"`
	Phone         string `json:"phone"`
	IsDefault     bool   `json:"is_default"`
	AddressType   string `json:"address_type"`
}

// ValidatePostalCodeRequest represents the standalone validation payload
type ValidatePostalCodeRequest struct {
	PostalCode string `json:"postal_code" validate:"required"`
}

// AddressHandler handles HTTP requests for the address book
type AddressHandler struct {
	addressService service.AddressService
	logger         *zap.Logger
}

// NewAddressHandler creates a new AddressHandler
func NewAddressHandler(addressService service.AddressService, logger *zap.Logger) *AddressHandler {
	return &AddressHandler{
		addressService: addressService,
		logger:         logger,
	}
}

// RegisterRoutes registers all address routes
func (h *AddressHandler) RegisterRoutes(r chi.Router, auth func(http.Handler) http.Handler) {
	r.Route("/addresses", func(r chi.Router) {
		r.Use(auth)

		r.Get("/", h.ListAddresses)
		r.Post("/", h.CreateAddress)
		r.Get("/default", h.GetDefault)
		r.Post("/validate", h.ValidatePostalCode)
		r.Put("/{id}", h.UpdateAddress)
		r.Delete("/{id}", h.DeleteAddress)
		r.Post("/{id}/default", h.SetDefault)
	})
}

// ListAddresses lists the requester's addresses, default first
func (h *AddressHandler) ListAddresses(w http.ResponseWriter, r *http.Request) {
	userID, ok := requesterID(r)
	if !ok {
		middleware.RespondWithError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	addresses, err := h.addressService.ListAddresses(r.Context(), userID)
	if err != nil {
		h.logger.Error("Failed to list addresses", zap.Error(err))
		middleware.RespondWithErrorDetail(w, http.StatusInternalServerError, "failed to list addresses", err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, map[string]interface{}{"addresses": addresses})
}

// CreateAddress saves a new address for the requester
func (h *AddressHandler) CreateAddress(w http.ResponseWriter, r *http.Request) {
	userID, ok := requesterID(r)
	if !ok {
		middleware.RespondWithError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req AddressRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	address, err := h.addressService.CreateAddress(r.Context(), userID, addressInput(req))
	if err != nil {
		h.respondAddressError(w, err, "failed to create address")
		return
	}

	middleware.RespondWithJSON(w, http.StatusCreated, address)
}

// UpdateAddress applies edits to one of the requester's addresses
func (h *AddressHandler) UpdateAddress(w http.ResponseWriter, r *http.Request) {
	userID, ok := requesterID(r)
	if !ok {
		middleware.RespondWithError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	id, ok := pathID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	var req AddressRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	address, err := h.addressService.UpdateAddress(r.Context(), userID, id, addressInput(req))
	if err != nil {
		h.respondAddressError(w, err, "failed to update address")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, address)
}

// DeleteAddress removes an address unless it is the requester's last one
func (h *AddressHandler) DeleteAddress(w http.ResponseWriter, r *http.Request) {
	userID, ok := requesterID(r)
	if !ok {
		middleware.RespondWithError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	id, ok := pathID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	if err := h.addressService.DeleteAddress(r.Context(), userID, id); err != nil {
		h.respondAddressError(w, err, "failed to delete address")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, map[string]string{"message": "address deleted"})
}

// SetDefault makes the address the requester's single default
func (h *AddressHandler) SetDefault(w http.ResponseWriter, r *http.Request) {
	userID, ok := requesterID(r)
	if !ok {
		middleware.RespondWithError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	id, ok := pathID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	if err := h.addressService.SetDefault(r.Context(), userID, id); err != nil {
		h.respondAddressError(w, err, "failed to set default address")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, map[string]string{"message": "default address updated"})
}

// GetDefault returns the requester's default address
func (h *AddressHandler) GetDefault(w http.ResponseWriter, r *http.Request) {
	userID, ok := requesterID(r)
	if !ok {
		middleware.RespondWithError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	address, err := h.addressService.GetDefault(r.Context(), userID)
	if err != nil {
		if errors.Is(err, repository.ErrNoDefaultAddress) {
			middleware.RespondWithError(w, http.StatusNotFound, "no default address")
			return
		}
		h.logger.Error("Failed to get default address", zap.Error(err))
		middleware.RespondWithErrorDetail(w, http.StatusInternalServerError, "failed to get default address", err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, address)
}

// ValidatePostalCode checks a postal code without saving anything
func (h *AddressHandler) ValidatePostalCode(w http.ResponseWriter, r *http.Request) {
	var req ValidatePostalCodeRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	valid := h.addressService.ValidatePostalCode(req.PostalCode) == nil
	middleware.RespondWithJSON(w, http.StatusOK, map[string]interface{}{
		"postal_code": req.PostalCode,
		"valid":       valid,
	})
}

func addressInput(req AddressRequest) service.AddressInput {
	return service.AddressInput{
		RecipientName: req.RecipientName,
		AddressLine1:  req.AddressLine1,
		AddressLine2:  req.AddressLine2,
		City:          req.City,
		State:         req.State,
		PostalCode:    req.PostalCode,
		Country:       req.Country,
		Phone:         req.Phone,
		IsDefault:     req.IsDefault,
		AddressType:   req.AddressType,
	}
}

func (h *AddressHandler) respondAddressError(w http.ResponseWriter, err error, fallback string) {
	switch {
	case errors.Is(err, service.ErrInvalidPostalCode):
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid postal code")
	case errors.Is(err, repository.ErrLastAddress):
		middleware.RespondWithError(w, http.StatusBadRequest, "cannot delete the only address")
	case errors.Is(err, repository.ErrAddressNotFound):
		middleware.RespondWithError(w, http.StatusNotFound, "address not found")
	default:
		h.logger.Error(fallback, zap.Error(err))
		middleware.RespondWithErrorDetail(w, http.StatusInternalServerError, fallback, err)
	}
}
