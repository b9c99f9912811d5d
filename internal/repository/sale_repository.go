package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"salespoint/internal/domain"

	"github.com/shopspring/decimal"
)

var (
	ErrSaleNotFound = errors.New("sale not found")
)

// SaleRepository is the sales ledger. There is no update or delete;
// a committed sale is historical fact.
type SaleRepository interface {
	Create(ctx context.Context, totalAmount decimal.Decimal, saleDate time.Time) (int64, error)
	AppendLineItems(ctx context.Context, saleID int64, items []*domain.SaleItem) error
	FindByID(ctx context.Context, id int64) (*domain.Sale, error)
	List(ctx context.Context, limit int) ([]*domain.Sale, error)
	ListByDateRange(ctx context.Context, start, end time.Time) ([]*domain.Sale, error)
	Count(ctx context.Context) (int, error)
	SumRevenue(ctx context.Context) (decimal.Decimal, error)
}

type saleRepository struct {
	db DBTX
}

// NewSaleRepository creates a new instance of SaleRepository
func NewSaleRepository(db DBTX) SaleRepository {
	return &saleRepository{db: db}
}

// Create inserts a new sale record and returns its assigned id
func (r *saleRepository) Create(ctx context.Context, totalAmount decimal.Decimal, saleDate time.Time) (int64, error) {
	query := `
		INSERT INTO sales (total_amount, sale_date)
		VALUES ($1, $2)
		RETURNING id
	`

	var id int64
	if err := r.db.QueryRowContext(ctx, query, totalAmount, saleDate).Scan(&id); err != nil {
		return 0, fmt.Errorf("failed to create sale: %w", err)
	}

	return id, nil
}

// AppendLineItems inserts the line items belonging to a sale
func (r *saleRepository) AppendLineItems(ctx context.Context, saleID int64, items []*domain.SaleItem) error {
	query := `
		INSERT INTO sale_items (sale_id, product_id, product_name, quantity, unit_price, subtotal)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	for _, item := range items {
		_, err := r.db.ExecContext(
			ctx,
			query,
			saleID,
			item.ProductID,
			item.ProductName,
			item.Quantity,
			item.UnitPrice,
			item.Subtotal,
		)
		if err != nil {
			return fmt.Errorf("failed to append sale line item: %w", err)
		}
	}

	return nil
}

// FindByID retrieves a sale together with its line items
func (r *saleRepository) FindByID(ctx context.Context, id int64) (*domain.Sale, error) {
	query := `
		SELECT id, total_amount, sale_date
		FROM sales
		WHERE id = $1
	`

	sale := &domain.Sale{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&sale.ID,
		&sale.TotalAmount,
		&sale.SaleDate,
	)

	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrSaleNotFound
		}
		return nil, fmt.Errorf("failed to find sale by ID: %w", err)
	}

	items, err := r.findLineItems(ctx, id)
	if err != nil {
		return nil, err
	}
	sale.Items = items

	return sale, nil
}

func (r *saleRepository) findLineItems(ctx context.Context, saleID int64) ([]*domain.SaleItem, error) {
	query := `
		SELECT id, sale_id, product_id, product_name, quantity, unit_price, subtotal
		FROM sale_items
		WHERE sale_id = $1
		ORDER BY id ASC
	`

	rows, err := r.db.QueryContext(ctx, query, saleID)
	if err != nil {
		return nil, fmt.Errorf("failed to list sale items: %w", err)
	}
	defer rows.Close()

	items := []*domain.SaleItem{}
	for rows.Next() {
		item := &domain.SaleItem{}
		err := rows.Scan(
			&item.ID,
			&item.SaleID,
			&item.ProductID,
			&item.ProductName,
			&item.Quantity,
			&item.UnitPrice,
			&item.Subtotal,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan sale item: %w", err)
		}
		items = append(items, item)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating sale items: %w", err)
	}

	return items, nil
}

// List retrieves the most recent sales, newest first
func (r *saleRepository) List(ctx context.Context, limit int) ([]*domain.Sale, error) {
	query := `
		SELECT id, total_amount, sale_date
		FROM sales
		ORDER BY sale_date DESC
		LIMIT $1
	`

	return r.querySales(ctx, query, limit)
}

// ListByDateRange retrieves sales committed within [start, end], newest first
func (r *saleRepository) ListByDateRange(ctx context.Context, start, end time.Time) ([]*domain.Sale, error) {
	query := `
		SELECT id, total_amount, sale_date
		FROM sales
		WHERE sale_date BETWEEN $1 AND $2
		ORDER BY sale_date DESC
	`

	return r.querySales(ctx, query, start, end)
}

// Count returns the total number of sales
func (r *saleRepository) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM sales`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count sales: %w", err)
	}

	return count, nil
}

// SumRevenue returns the sum of all sale totals, zero when the ledger is empty
func (r *saleRepository) SumRevenue(ctx context.Context) (decimal.Decimal, error) {
	var revenue decimal.Decimal
	query := `SELECT COALESCE(SUM(total_amount), 0) FROM sales`
	if err := r.db.QueryRowContext(ctx, query).Scan(&revenue); err != nil {
		return decimal.Zero, fmt.Errorf("failed to sum revenue: %w", err)
	}

	return revenue, nil
}

func (r *saleRepository) querySales(ctx context.Context, query string, args ...any) ([]*domain.Sale, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list sales: %w", err)
	}
	defer rows.Close()

	sales := []*domain.Sale{}
	for rows.Next() {
		sale := &domain.Sale{}
		if err := rows.Scan(&sale.ID, &sale.TotalAmount, &sale.SaleDate); err != nil {
			return nil, fmt.Errorf("failed to scan sale: %w", err)
		}
		sales = append(sales, sale)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating sales: %w", err)
	}

	return sales, nil
}
