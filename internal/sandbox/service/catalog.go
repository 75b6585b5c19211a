package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/aussiebroadwan/storefront/internal/sandbox/domain"
	"github.com/aussiebroadwan/storefront/internal/sandbox/store"
	"github.com/shopspring/decimal"
)

type CatalogService struct {
	Store store.Store
}

func (s *CatalogService) ListProducts(ctx context.Context, categoryID *int64) ([]domain.Product, error) {
	return s.Store.Catalog().ListProducts(ctx, categoryID)
}

func (s *CatalogService) GetProduct(ctx context.Context, id int64) (domain.Product, error) {
	p, err := s.Store.Catalog().GetProduct(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return domain.Product{}, ErrProductNotFound
	}
	return p, err
}

func (s *CatalogService) ListCategories(ctx context.Context) ([]domain.Category, error) {
	return s.Store.Catalog().ListCategories(ctx)
}

func (s *CatalogService) GetCategory(ctx context.Context, id int64) (domain.Category, error) {
	c, err := s.Store.Catalog().GetCategory(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return domain.Category{}, ErrCategoryNotFound
	}
	return c, err
}

// CreateCategory adds a category. Names are unique.
func (s *CatalogService) CreateCategory(ctx context.Context, c domain.Category) (domain.Category, error) {
	id, err := s.Store.Catalog().CreateCategory(ctx, c)
	if errors.Is(err, store.ErrAlreadyExists) {
		return domain.Category{}, ErrCategoryExists
	}
	if err != nil {
		return domain.Category{}, err
	}
	return s.GetCategory(ctx, id)
}

func (s *CatalogService) UpdateCategory(ctx context.Context, c domain.Category) (domain.Category, error) {
	err := s.Store.Catalog().UpdateCategory(ctx, c)
	switch {
	case errors.Is(err, store.ErrNotFound):
		return domain.Category{}, ErrCategoryNotFound
	case errors.Is(err, store.ErrAlreadyExists):
		return domain.Category{}, ErrCategoryExists
	case err != nil:
		return domain.Category{}, err
	}
	return s.GetCategory(ctx, c.ID)
}

// DeleteCategory removes a category; its products stay listed without one.
func (s *CatalogService) DeleteCategory(ctx context.Context, id int64) error {
	err := s.Store.Catalog().DeleteCategory(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return ErrCategoryNotFound
	}
	return err
}

func (s *CatalogService) CreateProduct(ctx context.Context, p domain.Product) (domain.Product, error) {
	if err := checkProduct(p); err != nil {
		return domain.Product{}, err
	}
	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		if err := requireCategory(ctx, tx, p.CategoryID); err != nil {
			return err
		}
		var err error
		p.ID, err = tx.Catalog().CreateProduct(ctx, p)
		return err
	})
	if err != nil {
		return domain.Product{}, err
	}
	return s.GetProduct(ctx, p.ID)
}

// UpdateProduct replaces every writable field of the product.
func (s *CatalogService) UpdateProduct(ctx context.Context, p domain.Product) (domain.Product, error) {
	if err := checkProduct(p); err != nil {
		return domain.Product{}, err
	}
	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		if err := requireCategory(ctx, tx, p.CategoryID); err != nil {
			return err
		}
		return tx.Catalog().UpdateProduct(ctx, p)
	})
	if errors.Is(err, store.ErrNotFound) {
		return domain.Product{}, ErrProductNotFound
	}
	if err != nil {
		return domain.Product{}, err
	}
	return s.GetProduct(ctx, p.ID)
}

// DeleteProduct removes a product. Carts lose the line; past orders keep
// their snapshot.
func (s *CatalogService) DeleteProduct(ctx context.Context, id int64) error {
	err := s.Store.Catalog().DeleteProduct(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return ErrProductNotFound
	}
	return err
}

func checkProduct(p domain.Product) error {
	if p.Price.IsNegative() || p.StockQuantity < 0 {
		return ErrInvalidQuantity
	}
	return nil
}

func requireCategory(ctx context.Context, tx store.Tx, id *int64) error {
	if id == nil {
		return nil
	}
	_, err := tx.Catalog().GetCategory(ctx, *id)
	if errors.Is(err, store.ErrNotFound) {
		return ErrUnknownCategory
	}
	return err
}

// SeedProduct is one entry of a seed catalog.
type SeedProduct struct {
	Category    string
	Name        string
	Description string
	Price       string
	Stock       int
	ImageURL    string
}

// DefaultSeed is loaded into an empty sandbox.
var DefaultSeed = []SeedProduct{
	{Category: "Electronics", Name: "Wireless Earbuds", Description: "Bluetooth 5.3, 24h battery", Price: "1499.00", Stock: 40},
	{Category: "Electronics", Name: "USB-C Charger 65W", Description: "GaN fast charger", Price: "1999.00", Stock: 25},
	{Category: "Electronics", Name: "Mechanical Keyboard", Description: "Hot swappable, brown switches", Price: "3499.50", Stock: 10},
	{Category: "Books", Name: "The Go Programming Language", Description: "Donovan and Kernighan", Price: "699.00", Stock: 15},
	{Category: "Books", Name: "Designing Data-Intensive Applications", Description: "Kleppmann", Price: "899.00", Stock: 12},
	{Category: "Home", Name: "Ceramic Mug", Description: "350ml, dishwasher safe", Price: "249.99", Stock: 100},
	{Category: "Home", Name: "Desk Lamp", Description: "Dimmable LED", Price: "1199.00", Stock: 0},
}

// Seed loads products into an empty catalog and reports how many it
// created. A catalog that already has products is left alone.
func (s *CatalogService) Seed(ctx context.Context, items []SeedProduct) (int, error) {
	n, err := s.Store.Catalog().CountProducts(ctx)
	if err != nil {
		return 0, err
	}
	if n > 0 {
		return 0, nil
	}

	created := 0
	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		categories := make(map[string]int64)
		for _, item := range items {
			price, err := decimal.NewFromString(item.Price)
			if err != nil {
				return fmt.Errorf("seed %q: %w", item.Name, err)
			}

			var catID *int64
			if item.Category != "" {
				id, ok := categories[item.Category]
				if !ok {
					id, err = tx.Catalog().CreateCategory(ctx, domain.Category{Name: item.Category})
					if err != nil {
						return fmt.Errorf("seed category %q: %w", item.Category, err)
					}
					categories[item.Category] = id
				}
				catID = &id
			}

			_, err = tx.Catalog().CreateProduct(ctx, domain.Product{
				Name:          item.Name,
				Description:   item.Description,
				Price:         price,
				StockQuantity: item.Stock,
				CategoryID:    catID,
				ImageURL:      item.ImageURL,
			})
			if err != nil {
				return fmt.Errorf("seed %q: %w", item.Name, err)
			}
			created++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return created, nil
}
