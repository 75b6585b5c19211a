package http

import (
	"strings"

	"github.com/aussiebroadwan/storefront/internal/sandbox/domain"
	"github.com/aussiebroadwan/storefront/internal/sandbox/service"
	"github.com/aussiebroadwan/storefront/pkg/storesdk"
)

func toUser(u domain.User) storesdk.User {
	return storesdk.User{ID: u.ID, Username: u.Username, Email: u.Email, IsAdmin: u.IsAdmin}
}

func toCategory(c domain.Category) storesdk.Category {
	return storesdk.Category{ID: c.ID, Name: c.Name, Description: c.Description, CreatedAt: c.CreatedAt}
}

func toProduct(p domain.Product) storesdk.Product {
	out := storesdk.Product{
		ID:            p.ID,
		Name:          p.Name,
		Description:   p.Description,
		Price:         p.Price,
		StockQuantity: p.StockQuantity,
		ImageURL:      p.ImageURL,
		CreatedAt:     p.CreatedAt,
	}
	if p.Category != nil {
		c := toCategory(*p.Category)
		out.Category = &c
	}
	return out
}

func fromProductInput(id int64, in storesdk.ProductInput) domain.Product {
	return domain.Product{
		ID:            id,
		Name:          strings.TrimSpace(in.Name),
		Description:   in.Description,
		Price:         in.Price,
		StockQuantity: in.StockQuantity,
		CategoryID:    in.CategoryID,
		ImageURL:      in.ImageURL,
	}
}

func fromCategoryInput(id int64, in storesdk.CategoryInput) domain.Category {
	return domain.Category{ID: id, Name: strings.TrimSpace(in.Name), Description: in.Description}
}

func toAddress(a domain.Address) storesdk.Address {
	return storesdk.Address{
		ID:          a.ID,
		Phone:       a.Phone,
		AddressType: a.AddressType,
		Street:      a.Street,
		City:        a.City,
		State:       a.State,
		ZipCode:     a.ZipCode,
		IsDefault:   a.IsDefault,
		CreatedAt:   a.CreatedAt,
	}
}

func fromAddress(userID int64, a storesdk.Address) domain.Address {
	kind := a.AddressType
	if kind == "" {
		kind = storesdk.AddressHome
	}
	return domain.Address{
		ID:          a.ID,
		UserID:      userID,
		Phone:       a.Phone,
		AddressType: kind,
		Street:      a.Street,
		City:        a.City,
		State:       a.State,
		ZipCode:     a.ZipCode,
		IsDefault:   a.IsDefault,
	}
}

func toCart(c domain.Cart) storesdk.Cart {
	out := storesdk.Cart{
		CartID:     c.ID,
		TotalItems: c.TotalItems(),
		TotalPrice: c.TotalPrice(),
		Items:      make([]storesdk.CartItem, 0, len(c.Items)),
	}
	for _, it := range c.Items {
		out.Items = append(out.Items, storesdk.CartItem{
			ID:           it.ID,
			Product:      it.ProductID,
			ProductName:  it.ProductName,
			ProductPrice: it.ProductPrice,
			ProductImage: it.ProductImage,
			Quantity:     it.Quantity,
			TotalPrice:   it.Total(),
		})
	}
	return out
}

func toPayment(p *domain.Payment) *storesdk.Payment {
	if p == nil {
		return nil
	}
	return &storesdk.Payment{
		ID:            p.ID,
		PaymentMethod: p.PaymentMethod,
		Amount:        p.Amount,
		Status:        p.Status,
		UTRNumber:     p.UTRNumber,
		CreatedAt:     p.CreatedAt,
	}
}

func toOrder(o domain.Order) storesdk.Order {
	out := storesdk.Order{
		OrderNumber:     o.OrderNumber,
		TotalAmount:     o.TotalAmount,
		Status:          o.Status,
		StatusDisplay:   domain.StatusDisplay(o.Status),
		CreatedAt:       o.CreatedAt,
		UpdatedAt:       o.UpdatedAt,
		ShippingAddress: o.ShippingAddress,
		Items:           make([]storesdk.OrderItem, 0, len(o.Items)),
		Payment:         toPayment(o.Payment),
	}
	for _, it := range o.Items {
		out.Items = append(out.Items, storesdk.OrderItem{
			ProductName:  it.ProductName,
			ProductPrice: it.ProductPrice,
			Quantity:     it.Quantity,
			TotalPrice:   it.Total(),
		})
	}
	return out
}

func toOrders(orders []domain.Order) []storesdk.Order {
	out := make([]storesdk.Order, 0, len(orders))
	for _, o := range orders {
		out = append(out, toOrder(o))
	}
	return out
}

func toOrderSummary(o domain.Order) storesdk.OrderSummary {
	return storesdk.OrderSummary{
		OrderNumber:   o.OrderNumber,
		TotalAmount:   o.TotalAmount,
		Status:        o.Status,
		StatusDisplay: domain.StatusDisplay(o.Status),
		CreatedAt:     o.CreatedAt,
	}
}

func toPaymentMethods(methods []service.PaymentMethod) []storesdk.PaymentMethod {
	out := make([]storesdk.PaymentMethod, 0, len(methods))
	for _, m := range methods {
		out = append(out, storesdk.PaymentMethod{Value: m.Value, Label: m.Label, Description: m.Description})
	}
	return out
}
