package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	"salespoint/internal/cart"
	"salespoint/internal/domain"
	"salespoint/internal/repository"
)

var (
	ErrEmptyCart = errors.New("cart is empty")
	// ErrPersistenceFailure wraps storage errors during commit. The
	// transaction has been rolled back by the time it is returned.
	ErrPersistenceFailure = errors.New("failed to persist sale")
)

// InsufficientStockError reports a cart line whose quantity can no
// longer be satisfied by live stock.
type InsufficientStockError struct {
	ProductName string
	Available   int
	Requested   int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for %s: available %d, requested %d",
		e.ProductName, e.Available, e.Requested)
}

// CheckoutService finalizes carts into persisted sales
type CheckoutService interface {
	Commit(ctx context.Context, c *cart.Cart) (*domain.Sale, error)
}

type checkoutService struct {
	db *sql.DB
	mu sync.Mutex
}

// NewCheckoutService creates a new instance of CheckoutService. It
// holds the database handle directly because commit must open its own
// transaction and rebind the stores to it.
func NewCheckoutService(db *sql.DB) CheckoutService {
	return &checkoutService{db: db}
}

// Commit turns the cart into a persisted sale:
//
//  1. reject an empty cart,
//  2. re-fetch every product and validate live stock inside a
//     transaction (cart snapshots are not trusted; stock may have
//     moved since the items were added),
//  3. insert the sale with the cart's total at snapshotted prices,
//  4. insert one line item per cart line,
//  5. decrement stock with the non-negative guard.
//
// Any failure rolls the transaction back and leaves stock, sales, and
// the cart exactly as they were. The cart is cleared only after the
// transaction commits. The mutex serializes commits so two sessions
// cannot both pass validation for the last unit of a product.
func (s *checkoutService) Commit(ctx context.Context, c *cart.Cart) (*domain.Sale, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if c.IsEmpty() {
		return nil, ErrEmptyCart
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistenceFailure, err)
	}
	defer tx.Rollback()

	products := repository.NewProductRepository(tx)
	sales := repository.NewSaleRepository(tx)

	lines := c.Lines()

	// Revalidation pass against live rows
	for _, line := range lines {
		product, err := products.FindByID(ctx, line.ProductID)
		if err != nil {
			if errors.Is(err, repository.ErrProductNotFound) {
				return nil, repository.ErrProductNotFound
			}
			return nil, fmt.Errorf("%w: %v", ErrPersistenceFailure, err)
		}
		if product.StockQuantity < line.Quantity {
			return nil, &InsufficientStockError{
				ProductName: line.ProductName,
				Available:   product.StockQuantity,
				Requested:   line.Quantity,
			}
		}
	}

	// Total uses the cart's snapshotted unit prices: a sale price is
	// fixed once the item enters the cart.
	totalAmount := c.Total()
	saleDate := time.Now()

	saleID, err := sales.Create(ctx, totalAmount, saleDate)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistenceFailure, err)
	}

	items := make([]*domain.SaleItem, 0, len(lines))
	for _, line := range lines {
		items = append(items, &domain.SaleItem{
			SaleID:      saleID,
			ProductID:   line.ProductID,
			ProductName: line.ProductName,
			Quantity:    line.Quantity,
			UnitPrice:   line.UnitPrice,
			Subtotal:    line.Subtotal(),
		})
	}

	if err := sales.AppendLineItems(ctx, saleID, items); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistenceFailure, err)
	}

	for _, line := range lines {
		if err := products.DecrementStock(ctx, line.ProductID, line.Quantity); err != nil {
			if errors.Is(err, repository.ErrInsufficientStock) {
				// A concurrent writer got between validation and
				// decrement; re-read the row so the error carries
				// the quantity actually left.
				available := 0
				if live, lookupErr := products.FindByID(ctx, line.ProductID); lookupErr == nil {
					available = live.StockQuantity
				}
				return nil, &InsufficientStockError{
					ProductName: line.ProductName,
					Available:   available,
					Requested:   line.Quantity,
				}
			}
			return nil, fmt.Errorf("%w: %v", ErrPersistenceFailure, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistenceFailure, err)
	}

	c.Clear()

	return &domain.Sale{
		ID:          saleID,
		TotalAmount: totalAmount,
		SaleDate:    saleDate,
		Items:       items,
	}, nil
}
