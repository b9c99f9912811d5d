package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"salespoint/internal/domain"
	"salespoint/internal/repository"
)

var (
	ErrInvalidPrice    = errors.New("price must be greater than zero")
	ErrInvalidStock    = errors.New("stock quantity must not be negative")
	ErrEmptyName       = errors.New("name must not be empty")
	ErrCategoryInUse   = errors.New("category still has products and cannot be deleted")
	ErrUnknownCategory = errors.New("category does not exist")
)

// CatalogService owns the management rules for products and categories
type CatalogService interface {
	CreateProduct(ctx context.Context, product *domain.Product) (*domain.Product, error)
	UpdateProduct(ctx context.Context, product *domain.Product) error
	DeleteProduct(ctx context.Context, id int64) error
	GetProduct(ctx context.Context, id int64) (*domain.Product, error)
	ListProducts(ctx context.Context, categoryID *int64, search string) ([]*domain.Product, error)

	CreateCategory(ctx context.Context, category *domain.Category) (*domain.Category, error)
	UpdateCategory(ctx context.Context, category *domain.Category) error
	DeleteCategory(ctx context.Context, id int64) error
	GetCategory(ctx context.Context, id int64) (*domain.Category, error)
	ListCategories(ctx context.Context) ([]*domain.Category, error)
}

type catalogService struct {
	productRepo  repository.ProductRepository
	categoryRepo repository.CategoryRepository
}

// NewCatalogService creates a new instance of CatalogService
func NewCatalogService(
	productRepo repository.ProductRepository,
	categoryRepo repository.CategoryRepository,
) CatalogService {
	return &catalogService{
		productRepo:  productRepo,
		categoryRepo: categoryRepo,
	}
}

func (s *catalogService) validateProduct(ctx context.Context, product *domain.Product) error {
	if strings.TrimSpace(product.Name) == "" {
		return ErrEmptyName
	}
	if !product.Price.IsPositive() {
		return ErrInvalidPrice
	}
	if product.StockQuantity < 0 {
		return ErrInvalidStock
	}

	if _, err := s.categoryRepo.FindByID(ctx, product.CategoryID); err != nil {
		if errors.Is(err, repository.ErrCategoryNotFound) {
			return ErrUnknownCategory
		}
		return fmt.Errorf("failed to check category: %w", err)
	}

	return nil
}

// CreateProduct validates and stores a new product
func (s *catalogService) CreateProduct(ctx context.Context, product *domain.Product) (*domain.Product, error) {
	if err := s.validateProduct(ctx, product); err != nil {
		return nil, err
	}

	id, err := s.productRepo.Create(ctx, product)
	if err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}

	return s.productRepo.FindByID(ctx, id)
}

// UpdateProduct validates and applies changes to an existing product
func (s *catalogService) UpdateProduct(ctx context.Context, product *domain.Product) error {
	if err := s.validateProduct(ctx, product); err != nil {
		return err
	}

	return s.productRepo.Update(ctx, product)
}

// DeleteProduct removes a product from the catalog
func (s *catalogService) DeleteProduct(ctx context.Context, id int64) error {
	return s.productRepo.Delete(ctx, id)
}

// GetProduct retrieves a single product by id
func (s *catalogService) GetProduct(ctx context.Context, id int64) (*domain.Product, error) {
	return s.productRepo.FindByID(ctx, id)
}

// ListProducts lists the catalog with an optional category filter and
// optional name search. Search wins when both are supplied.
func (s *catalogService) ListProducts(ctx context.Context, categoryID *int64, search string) ([]*domain.Product, error) {
	if strings.TrimSpace(search) != "" {
		return s.productRepo.Search(ctx, search)
	}
	return s.productRepo.List(ctx, categoryID)
}

// CreateCategory validates and stores a new category
func (s *catalogService) CreateCategory(ctx context.Context, category *domain.Category) (*domain.Category, error) {
	if strings.TrimSpace(category.Name) == "" {
		return nil, ErrEmptyName
	}

	if err := s.checkCategoryName(ctx, category.Name, 0); err != nil {
		return nil, err
	}

	id, err := s.categoryRepo.Create(ctx, category)
	if err != nil {
		return nil, err
	}

	return s.categoryRepo.FindByID(ctx, id)
}

// UpdateCategory validates and applies changes to an existing category
func (s *catalogService) UpdateCategory(ctx context.Context, category *domain.Category) error {
	if strings.TrimSpace(category.Name) == "" {
		return ErrEmptyName
	}

	if err := s.checkCategoryName(ctx, category.Name, category.ID); err != nil {
		return err
	}

	return s.categoryRepo.Update(ctx, category)
}

// checkCategoryName rejects a name already taken by another category.
// The unique index catches racing writers; this check exists so the
// common case surfaces before an insert is attempted.
func (s *catalogService) checkCategoryName(ctx context.Context, name string, selfID int64) error {
	existing, err := s.categoryRepo.FindByName(ctx, name)
	if err != nil {
		if errors.Is(err, repository.ErrCategoryNotFound) {
			return nil
		}
		return fmt.Errorf("failed to check category name: %w", err)
	}
	if existing.ID != selfID {
		return repository.ErrCategoryAlreadyExists
	}
	return nil
}

// DeleteCategory removes a category, refusing while products still
// reference it. The guard lives here at the workflow level, not only
// in the storage constraint.
func (s *catalogService) DeleteCategory(ctx context.Context, id int64) error {
	inUse, err := s.categoryRepo.HasProducts(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to check category usage: %w", err)
	}
	if inUse {
		return ErrCategoryInUse
	}

	return s.categoryRepo.Delete(ctx, id)
}

// GetCategory retrieves a single category by id
func (s *catalogService) GetCategory(ctx context.Context, id int64) (*domain.Category, error) {
	return s.categoryRepo.FindByID(ctx, id)
}

// ListCategories lists all categories
func (s *catalogService) ListCategories(ctx context.Context) ([]*domain.Category, error) {
	return s.categoryRepo.List(ctx)
}
