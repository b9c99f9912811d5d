package domain

import (
	"github.com/shopspring/decimal"
)

// Category groups products for browsing and filtering
type Category struct {
	ID          int64  `json:"id" db:"id"`
	Name        string `json:"name" db:"name"`
	Description string `json:"description" db:"description"`
}

// Product represents a sellable item in the catalog
type Product struct {
	ID            int64           `json:"id" db:"id"`
	Name          string          `json:"name" db:"name"`
	CategoryID    int64           `json:"category_id" db:"category_id"`
	CategoryName  string          `json:"category_name,omitempty" db:"category_name"`
	Price         decimal.Decimal `json:"price" db:"price"`
	StockQuantity int             `json:"stock_quantity" db:"stock_quantity"`
	ImagePath     string          `json:"image_path,omitempty" db:"image_path"`
}
