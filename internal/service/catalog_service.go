package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"bloomcart/internal/domain"
	"bloomcart/internal/repository"

	"github.com/google/uuid"
)

var (
	ErrInvalidPrice = errors.New("price must be greater than zero")
	ErrInvalidStock = errors.New("stock must not be negative")
)

// MissingFieldsError lists the required product fields absent from a request
type MissingFieldsError struct {
	Fields []string
}

func (e *MissingFieldsError) Error() string {
	return "missing required fields: " + strings.Join(e.Fields, ", ")
}

// ProductInput carries the admin-editable product attributes
type ProductInput struct {
	Name          string
	Description   string
	Price         float64
	OriginalPrice *float64
	Category      string
	IsFeatured    bool
	ImageURL      string
	Stock         int
}

// ProductDetail is a product joined with its approved reviews and rating
type ProductDetail struct {
	Product *domain.Product
	Reviews []*domain.ProductReview
	Rating  domain.RatingSummary
}

// CatalogService defines the interface for catalog business logic
type CatalogService interface {
	ListProducts(ctx context.Context, filter repository.ProductFilter, page, pageSize int, sortBy string, sortOrder repository.SortOrder) ([]*domain.Product, int, error)
	GetProduct(ctx context.Context, id uuid.UUID) (*ProductDetail, error)
	CreateProduct(ctx context.Context, input ProductInput) (*domain.Product, error)
	UpdateProduct(ctx context.Context, id uuid.UUID, input ProductInput) (*domain.Product, error)
	// DeleteProduct soft-deletes by flipping status to discontinued so
	// historical order items keep a valid reference
	DeleteProduct(ctx context.Context, id uuid.UUID) error
	AdjustStock(ctx context.Context, id uuid.UUID, stock int) (*domain.Product, error)
}

type catalogService struct {
	productRepo repository.ProductRepository
	reviewRepo  repository.ReviewRepository
}

// NewCatalogService creates a new instance of CatalogService
func NewCatalogService(productRepo repository.ProductRepository, reviewRepo repository.ReviewRepository) CatalogService {
	return &catalogService{
		productRepo: productRepo,
		reviewRepo:  reviewRepo,
	}
}

// ListProducts returns a filtered, sorted catalog page
func (s *catalogService) ListProducts(ctx context.Context, filter repository.ProductFilter, page, pageSize int, sortBy string, sortOrder repository.SortOrder) ([]*domain.Product, int, error) {
	return s.productRepo.List(ctx, filter, page, pageSize, sortBy, sortOrder)
}

// GetProduct returns a product with its approved reviews and rating aggregate
func (s *catalogService) GetProduct(ctx context.Context, id uuid.UUID) (*ProductDetail, error) {
	product, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	reviews, _, err := s.reviewRepo.ListByProduct(ctx, id, true, 1, 20)
	if err != nil {
		return nil, fmt.Errorf("failed to load reviews: %w", err)
	}

	rating, err := s.reviewRepo.RatingSummary(ctx, id)
	if err != nil {
		return nil, err
	}

	return &ProductDetail{Product: product, Reviews: reviews, Rating: rating}, nil
}

func validateProductInput(input ProductInput) error {
	missing := []string{}
	if strings.TrimSpace(input.Name) == "" {
		missing = append(missing, "name")
	}
	if input.Price == 0 {
		missing = append(missing, "price")
	}
	if strings.TrimSpace(input.Category) == "" {
		missing = append(missing, "category")
	}
	if len(missing) > 0 {
		return &MissingFieldsError{Fields: missing}
	}

	if input.Price <= 0 {
		return ErrInvalidPrice
	}
	if input.Stock < 0 {
		return ErrInvalidStock
	}

	return nil
}

// CreateProduct validates and persists a new catalog product
func (s *catalogService) CreateProduct(ctx context.Context, input ProductInput) (*domain.Product, error) {
	if err := validateProductInput(input); err != nil {
		return nil, err
	}

	now := time.Now()
	product := &domain.Product{
		ID:            uuid.New(),
		Name:          input.Name,
		Description:   input.Description,
		Price:         input.Price,
		OriginalPrice: input.OriginalPrice,
		Category:      input.Category,
		Status:        domain.ProductStatusActive,
		IsFeatured:    input.IsFeatured,
		ImageURL:      input.ImageURL,
		Stock:         input.Stock,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := s.productRepo.Create(ctx, product); err != nil {
		return nil, err
	}

	return product, nil
}

// UpdateProduct validates and applies admin edits to a product
func (s *catalogService) UpdateProduct(ctx context.Context, id uuid.UUID, input ProductInput) (*domain.Product, error) {
	if err := validateProductInput(input); err != nil {
		return nil, err
	}

	product, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	product.Name = input.Name
	product.Description = input.Description
	product.Price = input.Price
	product.OriginalPrice = input.OriginalPrice
	product.Category = input.Category
	product.IsFeatured = input.IsFeatured
	product.ImageURL = input.ImageURL
	product.Stock = input.Stock
	product.UpdatedAt = time.Now()

	if err := s.productRepo.Update(ctx, product); err != nil {
		return nil, err
	}

	return product, nil
}

// DeleteProduct discontinues a product without removing the row
func (s *catalogService) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	return s.productRepo.SetStatus(ctx, id, domain.ProductStatusDiscontinued)
}

// AdjustStock sets the absolute stock level, rejecting negative values
func (s *catalogService) AdjustStock(ctx context.Context, id uuid.UUID, stock int) (*domain.Product, error) {
	if stock < 0 {
		return nil, ErrInvalidStock
	}

	if err := s.productRepo.SetStock(ctx, id, stock); err != nil {
		return nil, err
	}

	return s.productRepo.FindByID(ctx, id)
}
