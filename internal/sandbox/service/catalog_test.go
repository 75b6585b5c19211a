package service

import (
	"testing"

	"github.com/aussiebroadwan/storefront/internal/sandbox/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func TestCatalogWrites(t *testing.T) {
	t.Parallel()
	ctx := t.Context()
	st := newTestStore(t)
	svc := &CatalogService{Store: st}

	t.Run("duplicate category name", func(t *testing.T) {
		_, err := svc.CreateCategory(ctx, domain.Category{Name: "Books"})
		require.ErrorIs(t, err, ErrCategoryExists)
	})

	garden, err := svc.CreateCategory(ctx, domain.Category{Name: "Garden", Description: "Outdoor"})
	require.NoError(t, err)
	require.NotZero(t, garden.ID)

	t.Run("unknown category", func(t *testing.T) {
		missing := int64(999)
		_, err := svc.CreateProduct(ctx, domain.Product{Name: "Rake", Price: decimal.NewFromInt(5), CategoryID: &missing})
		require.ErrorIs(t, err, ErrUnknownCategory)
	})

	t.Run("negative stock", func(t *testing.T) {
		_, err := svc.CreateProduct(ctx, domain.Product{Name: "Rake", Price: decimal.NewFromInt(5), StockQuantity: -1})
		require.ErrorIs(t, err, ErrInvalidQuantity)
	})

	rake, err := svc.CreateProduct(ctx, domain.Product{Name: "Rake", Price: decimal.NewFromInt(5), StockQuantity: 3, CategoryID: &garden.ID})
	require.NoError(t, err)
	require.NotNil(t, rake.Category)
	require.Equal(t, "Garden", rake.Category.Name)

	rake.Price = decimal.RequireFromString("6.50")
	rake.StockQuantity = 9
	updated, err := svc.UpdateProduct(ctx, rake)
	require.NoError(t, err)
	require.True(t, decimal.RequireFromString("6.50").Equal(updated.Price))
	require.Equal(t, 9, updated.StockQuantity)

	renamed, err := svc.UpdateCategory(ctx, domain.Category{ID: garden.ID, Name: "Outdoors"})
	require.NoError(t, err)
	require.Equal(t, "Outdoors", renamed.Name)

	require.NoError(t, svc.DeleteCategory(ctx, garden.ID))
	got, err := svc.GetProduct(ctx, rake.ID)
	require.NoError(t, err)
	require.Nil(t, got.Category)

	require.NoError(t, svc.DeleteProduct(ctx, rake.ID))
	_, err = svc.GetProduct(ctx, rake.ID)
	require.ErrorIs(t, err, ErrProductNotFound)
	require.ErrorIs(t, svc.DeleteProduct(ctx, rake.ID), ErrProductNotFound)
	require.ErrorIs(t, svc.DeleteCategory(ctx, garden.ID), ErrCategoryNotFound)

	rake.CategoryID = nil
	_, err = svc.UpdateProduct(ctx, rake)
	require.ErrorIs(t, err, ErrProductNotFound)
}
