package cart

import (
	"errors"
	"fmt"

	"salespoint/internal/domain"

	"github.com/shopspring/decimal"
)

var (
	// ErrOutOfStock is returned when adding a product with no stock left.
	ErrOutOfStock = errors.New("product is out of stock")
	// ErrStockLimitExceeded is returned when an increment would push a
	// line past the product's stock. The whole increment is rejected;
	// there is no partial fill.
	ErrStockLimitExceeded = errors.New("requested quantity exceeds available stock")
	// ErrLineNotFound is returned by ChangeQuantity for a product that
	// has no line in the cart.
	ErrLineNotFound = errors.New("product is not in the cart")
)

// Line is one candidate purchase line. ProductName and UnitPrice are
// snapshots from the moment the product was added; stock is the level
// observed the last time the line was touched and only bounds cart
// edits; checkout revalidates against live stock.
type Line struct {
	ProductID   int64           `json:"product_id"`
	ProductName string          `json:"product_name"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`

	stock int
}

// Subtotal is always recomputed, never stored.
func (l Line) Subtotal() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// Cart collects candidate lines for a single checkout session. It is
// not safe for concurrent use; the session store serializes access.
type Cart struct {
	lines []Line
}

// New returns an empty cart
func New() *Cart {
	return &Cart{}
}

// AddItem puts requestedQty units of the product into the cart. If the
// product already has a line, the quantity is merged into it rather
// than duplicating the line. The product's current stock and price are
// snapshotted onto the line.
func (c *Cart) AddItem(product *domain.Product, requestedQty int) error {
	if requestedQty <= 0 {
		return fmt.Errorf("requested quantity must be positive, got %d", requestedQty)
	}
	if product.StockQuantity <= 0 {
		return ErrOutOfStock
	}

	for i := range c.lines {
		if c.lines[i].ProductID == product.ID {
			if c.lines[i].Quantity+requestedQty > product.StockQuantity {
				return ErrStockLimitExceeded
			}
			c.lines[i].Quantity += requestedQty
			c.lines[i].stock = product.StockQuantity
			return nil
		}
	}

	if requestedQty > product.StockQuantity {
		return ErrStockLimitExceeded
	}

	c.lines = append(c.lines, Line{
		ProductID:   product.ID,
		ProductName: product.Name,
		Quantity:    requestedQty,
		UnitPrice:   product.Price,
		stock:       product.StockQuantity,
	})

	return nil
}

// ChangeQuantity adjusts a line by delta. A change that would bring the
// quantity to zero or below removes the line; an increase past the
// stock level observed at the line's last touch is rejected whole.
func (c *Cart) ChangeQuantity(productID int64, delta int) error {
	for i := range c.lines {
		if c.lines[i].ProductID != productID {
			continue
		}

		newQty := c.lines[i].Quantity + delta
		if newQty <= 0 {
			c.lines = append(c.lines[:i], c.lines[i+1:]...)
			return nil
		}
		if newQty > c.lines[i].stock {
			return ErrStockLimitExceeded
		}

		c.lines[i].Quantity = newQty
		return nil
	}

	return ErrLineNotFound
}

// RemoveItem drops the product's line. Removing an absent product is a
// no-op.
func (c *Cart) RemoveItem(productID int64) {
	for i := range c.lines {
		if c.lines[i].ProductID == productID {
			c.lines = append(c.lines[:i], c.lines[i+1:]...)
			return
		}
	}
}

// Clear empties the cart
func (c *Cart) Clear() {
	c.lines = nil
}

// Total sums all line subtotals. Pure and recomputed on every call.
func (c *Cart) Total() decimal.Decimal {
	total := decimal.Zero
	for _, line := range c.lines {
		total = total.Add(line.Subtotal())
	}
	return total
}

// Lines returns a copy of the cart's lines in insertion order
func (c *Cart) Lines() []Line {
	lines := make([]Line, len(c.lines))
	copy(lines, c.lines)
	return lines
}

// IsEmpty reports whether the cart has no lines
func (c *Cart) IsEmpty() bool {
	return len(c.lines) == 0
}

// Len returns the number of distinct product lines
func (c *Cart) Len() int {
	return len(c.lines)
}
