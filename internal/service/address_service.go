package service

import (
	"context"
	"errors"
	"regexp"
	"time"

	"bloomcart/internal/domain"
	"bloomcart/internal/repository"

	"github.com/google/uuid"
)

var ErrInvalidPostalCode = errors.New("invalid postal code")

// US ZIP or ZIP+4
var postalCodePattern = regexp.MustCompile(`^\d{5}(-\d{4})?$`)

// AddressInput carries the user-editable address attributes
type AddressInput struct {
	RecipientName string
	AddressLine1  string
	AddressLine2  string
	City          string
	State         string
	PostalCode    string
	Country       string
	Phone         string
	IsDefault     bool
	AddressType   string
}

// AddressService defines the interface for address book business logic
type AddressService interface {
	ListAddresses(ctx context.Context, userID uuid.UUID) ([]*domain.ShippingAddress, error)
	CreateAddress(ctx context.Context, userID uuid.UUID, input AddressInput) (*domain.ShippingAddress, error)
	UpdateAddress(ctx context.Context, userID, id uuid.UUID, input AddressInput) (*domain.ShippingAddress, error)
	DeleteAddress(ctx context.Context, userID, id uuid.UUID) error
	SetDefault(ctx context.Context, userID, id uuid.UUID) error
	GetDefault(ctx context.Context, userID uuid.UUID) (*domain.ShippingAddress, error)
	ValidatePostalCode(postalCode string) error
}

type addressService struct {
	addressRepo repository.AddressRepository
}

// NewAddressService creates a new instance of AddressService
func NewAddressService(addressRepo repository.AddressRepository) AddressService {
	return &addressService{addressRepo: addressRepo}
}

// ListAddresses returns the user's addresses, default first
func (s *addressService) ListAddresses(ctx context.Context, userID uuid.UUID) ([]*domain.ShippingAddress, error) {
	return s.addressRepo.ListByUser(ctx, userID)
}

// CreateAddress saves a new address for the user. The first address becomes
// the default automatically.
func (s *addressService) CreateAddress(ctx context.Context, userID uuid.UUID, input AddressInput) (*domain.ShippingAddress, error) {
	if err := s.ValidatePostalCode(input.PostalCode); err != nil {
		return nil, err
	}

	now := time.Now()
	addressType := input.AddressType
	if addressType == "" {
		addressType = "home"
	}

	address := &domain.ShippingAddress{
		ID:            uuid.New(),
		UserID:        userID,
		RecipientName: input.RecipientName,
		AddressLine1:  input.AddressLine1,
		AddressLine2:  input.AddressLine2,
		City:          input.City,
		State:         input.State,
		PostalCode:    input.PostalCode,
		Country:       input.Country,
		Phone:         input.Phone,
		IsDefault:     input.IsDefault,
		AddressType:   addressType,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := s.addressRepo.Create(ctx, address); err != nil {
		return nil, err
	}

	return address, nil
}

// UpdateAddress applies edits to an address owned by the user
func (s *addressService) UpdateAddress(ctx context.Context, userID, id uuid.UUID, input AddressInput) (*domain.ShippingAddress, error) {
	if err := s.ValidatePostalCode(input.PostalCode); err != nil {
		return nil, err
	}

	address, err := s.addressRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if address.UserID != userID {
		return nil, repository.ErrAddressNotFound
	}

	address.RecipientName = input.RecipientName
	address.AddressLine1 = input.AddressLine1
	address.AddressLine2 = input.AddressLine2
	address.City = input.City
	address.State = input.State
	address.PostalCode = input.PostalCode
	address.Country = input.Country
	address.Phone = input.Phone
	if input.AddressType != "" {
		address.AddressType = input.AddressType
	}

	if err := s.addressRepo.Update(ctx, address); err != nil {
		return nil, err
	}

	return s.addressRepo.FindByID(ctx, id)
}

// DeleteAddress removes an address unless it is the user's last one
func (s *addressService) DeleteAddress(ctx context.Context, userID, id uuid.UUID) error {
	return s.addressRepo.Delete(ctx, userID, id)
}

// SetDefault makes the address the user's single default
func (s *addressService) SetDefault(ctx context.Context, userID, id uuid.UUID) error {
	return s.addressRepo.SetDefault(ctx, userID, id)
}

// GetDefault returns the user's default address
func (s *addressService) GetDefault(ctx context.Context, userID uuid.UUID) (*domain.ShippingAddress, error) {
	return s.addressRepo.FindDefault(ctx, userID)
}

// ValidatePostalCode checks the postal code format
func (s *addressService) ValidatePostalCode(postalCode string) error {
	if !postalCodePattern.MatchString(postalCode) {
		return ErrInvalidPostalCode
	}
	return nil
}
