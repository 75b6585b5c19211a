package domain

import "github.com/shopspring/decimal"

// CartItem is a cart line joined with the product it refers to.
type CartItem struct {
	ID           int64
	CartID       int64
	ProductID    int64
	ProductName  string
	ProductPrice decimal.Decimal
	ProductImage string
	Stock        int
	Quantity     int
}

// Total is the line price at the current product price.
func (i CartItem) Total() decimal.Decimal {
	return i.ProductPrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

type Cart struct {
	ID     int64
	UserID int64
	Items  []CartItem
}

// TotalItems is the number of units across all lines.
func (c Cart) TotalItems() int {
	n := 0
	for _, it := range c.Items {
		n += it.Quantity
	}
	return n
}

func (c Cart) TotalPrice() decimal.Decimal {
	total := decimal.Zero
	for _, it := range c.Items {
		total = total.Add(it.Total())
	}
	return total
}
