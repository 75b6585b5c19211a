package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type Category struct {
	ID          int64
	Name        string
	Description string
	CreatedAt   time.Time
}

type Product struct {
	ID            int64
	Name          string
	Description   string
	Price         decimal.Decimal
	StockQuantity int
	CategoryID    *int64
	Category      *Category
	ImageURL      string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
