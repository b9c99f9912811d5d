package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Sale is a finalized transaction. Sales are immutable once committed;
// there is no update path anywhere in the codebase.
type Sale struct {
	ID          int64           `json:"id" db:"id"`
	TotalAmount decimal.Decimal `json:"total_amount" db:"total_amount"`
	SaleDate    time.Time       `json:"sale_date" db:"sale_date"`
	Items       []*SaleItem     `json:"items,omitempty"`
}

// SaleItem is one line of a committed sale. Name and unit price are
// snapshots taken when the product entered the cart, so later catalog
// edits do not rewrite history.
type SaleItem struct {
	ID          int64           `json:"id" db:"id"`
	SaleID      int64           `json:"sale_id" db:"sale_id"`
	ProductID   int64           `json:"product_id" db:"product_id"`
	ProductName string          `json:"product_name" db:"product_name"`
	Quantity    int             `json:"quantity" db:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price" db:"unit_price"`
	Subtotal    decimal.Decimal `json:"subtotal" db:"subtotal"`
}
