package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"salespoint/internal/domain"
)

var (
	ErrProductNotFound   = errors.New("product not found")
	ErrInsufficientStock = errors.New("insufficient stock")
)

// ProductRepository defines the interface for product data access.
// The checkout workflow consumes only FindByID and DecrementStock; the
// rest serves catalog management.
type ProductRepository interface {
	Create(ctx context.Context, product *domain.Product) (int64, error)
	Update(ctx context.Context, product *domain.Product) error
	Delete(ctx context.Context, id int64) error
	FindByID(ctx context.Context, id int64) (*domain.Product, error)
	List(ctx context.Context, categoryID *int64) ([]*domain.Product, error)
	Search(ctx context.Context, query string) ([]*domain.Product, error)
	DecrementStock(ctx context.Context, id int64, amount int) error
	Count(ctx context.Context) (int, error)
}

type productRepository struct {
	db DBTX
}

// NewProductRepository creates a new instance of ProductRepository
func NewProductRepository(db DBTX) ProductRepository {
	return &productRepository{db: db}
}

const productColumns = `p.id, p.name, p.category_id, c.name AS category_name, p.price, p.stock_quantity, p.image_path`

func scanProduct(row interface{ Scan(...any) error }) (*domain.Product, error) {
	product := &domain.Product{}
	var imagePath sql.NullString
	err := row.Scan(
		&product.ID,
		&product.Name,
		&product.CategoryID,
		&product.CategoryName,
		&product.Price,
		&product.StockQuantity,
		&imagePath,
	)
	if err != nil {
		return nil, err
	}
	product.ImagePath = imagePath.String
	return product, nil
}

// Create inserts a new product and returns its assigned id
func (r *productRepository) Create(ctx context.Context, product *domain.Product) (int64, error) {
	query := `
		INSERT INTO products (name, category_id, price, stock_quantity, image_path)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`

	var id int64
	err := r.db.QueryRowContext(
		ctx,
		query,
		product.Name,
		product.CategoryID,
		product.Price,
		product.StockQuantity,
		nullableString(product.ImagePath),
	).Scan(&id)

	if err != nil {
		return 0, fmt.Errorf("failed to create product: %w", err)
	}

	return id, nil
}

// Update modifies an existing product using parameterized queries
func (r *productRepository) Update(ctx context.Context, product *domain.Product) error {
	query := `
		UPDATE products
		SET name = $2, category_id = $3, price = $4, stock_quantity = $5, image_path = $6
		WHERE id = $1
	`

	result, err := r.db.ExecContext(
		ctx,
		query,
		product.ID,
		product.Name,
		product.CategoryID,
		product.Price,
		product.StockQuantity,
		nullableString(product.ImagePath),
	)

	if err != nil {
		return fmt.Errorf("failed to update product: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return ErrProductNotFound
	}

	return nil
}

// Delete removes a product from the database using parameterized queries
func (r *productRepository) Delete(ctx context.Context, id int64) error {
	query := `DELETE FROM products WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return ErrProductNotFound
	}

	return nil
}

// FindByID retrieves a product by ID with its category name
func (r *productRepository) FindByID(ctx context.Context, id int64) (*domain.Product, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM products p
		JOIN categories c ON c.id = p.category_id
		WHERE p.id = $1
	`, productColumns)

	product, err := scanProduct(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to find product by ID: %w", err)
	}

	return product, nil
}

// List retrieves products with an optional category filter. A nil
// categoryID means no filter, replacing the old "All Categories"
// sentinel row.
func (r *productRepository) List(ctx context.Context, categoryID *int64) ([]*domain.Product, error) {
	whereClause := ""
	args := []any{}

	if categoryID != nil {
		whereClause = "WHERE p.category_id = $1"
		args = append(args, *categoryID)
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM products p
		JOIN categories c ON c.id = p.category_id
		%s
		ORDER BY p.name ASC
	`, productColumns, whereClause)

	return r.queryProducts(ctx, query, args...)
}

// Search finds products whose name matches the term, case-insensitive
func (r *productRepository) Search(ctx context.Context, term string) ([]*domain.Product, error) {
	if strings.TrimSpace(term) == "" {
		return r.List(ctx, nil)
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM products p
		JOIN categories c ON c.id = p.category_id
		WHERE p.name ILIKE $1
		ORDER BY p.name ASC
	`, productColumns)

	return r.queryProducts(ctx, query, "%"+term+"%")
}

// DecrementStock reduces a product's stock by amount. The guard on
// stock_quantity means a concurrent checkout can never take stock
// negative: if no row matches, the caller must treat the sale as
// unsatisfiable and roll back.
func (r *productRepository) DecrementStock(ctx context.Context, id int64, amount int) error {
	query := `
		UPDATE products
		SET stock_quantity = stock_quantity - $2
		WHERE id = $1 AND stock_quantity >= $2
	`

	result, err := r.db.ExecContext(ctx, query, id, amount)
	if err != nil {
		return fmt.Errorf("failed to decrement stock: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return ErrInsufficientStock
	}

	return nil
}

// Count returns the total number of products
func (r *productRepository) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM products`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count products: %w", err)
	}

	return count, nil
}

func (r *productRepository) queryProducts(ctx context.Context, query string, args ...any) ([]*domain.Product, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	defer rows.Close()

	products := []*domain.Product{}
	for rows.Next() {
		product, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, product)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating products: %w", err)
	}

	return products, nil
}

func nullableString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
