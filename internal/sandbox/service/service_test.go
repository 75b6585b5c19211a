package service

import (
	"context"
	"testing"
	"time"

	"github.com/aussiebroadwan/storefront/internal/sandbox/domain"
	"github.com/aussiebroadwan/storefront/internal/sandbox/store"
	"github.com/aussiebroadwan/storefront/internal/sandbox/store/drivers/sqlite"
	"github.com/aussiebroadwan/storefront/pkg/cryptox"
	"github.com/aussiebroadwan/storefront/pkg/jwtx"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

var pngBytes = append([]byte("\x89PNG\r\n\x1a\n"), make([]byte, 32)...)

func newTestStore(t *testing.T) store.Store {
	t.Helper()
	cryptox.SetPepper("test-pepper")

	st, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	require.NoError(t, st.ApplyMigrations())

	_, err = (&CatalogService{Store: st}).Seed(context.Background(), DefaultSeed)
	require.NoError(t, err)
	return st
}

func newTestAuth(t *testing.T, st store.Store) *AuthService {
	t.Helper()
	pemKey, err := cryptox.GenerateEd25519Key()
	require.NoError(t, err)
	signer, err := jwtx.NewSignerEdDSA("test-key", pemKey)
	require.NoError(t, err)
	return &AuthService{
		Store:      st,
		Signer:     signer,
		AccessTTL:  time.Minute,
		RefreshTTL: time.Hour,
	}
}

// activeUser creates a verified customer directly in the store.
func activeUser(t *testing.T, st store.Store, email string) int64 {
	t.Helper()
	hash, err := cryptox.HashPassword("password123")
	require.NoError(t, err)
	id, err := st.Users().CreateUser(context.Background(), domain.User{
		Username:     email,
		Email:        email,
		PasswordHash: hash,
		Active:       true,
	})
	require.NoError(t, err)
	return id
}

func testAddress(t *testing.T, st store.Store, userID int64) int64 {
	t.Helper()
	a, err := (&AddressService{Store: st}).Create(context.Background(), domain.Address{
		UserID:      userID,
		Phone:       "9999999999",
		AddressType: "home",
		Street:      "1 Test Street",
		City:        "Sydney",
		State:       "NSW",
		ZipCode:     "2000",
	})
	require.NoError(t, err)
	return a.ID
}

func productByName(t *testing.T, st store.Store, name string) domain.Product {
	t.Helper()
	products, err := st.Catalog().ListProducts(context.Background(), nil)
	require.NoError(t, err)
	for _, p := range products {
		if p.Name == name {
			return p
		}
	}
	t.Fatalf("product %q not seeded", name)
	return domain.Product{}
}

func decimalOf(n int64) decimal.Decimal { return decimal.NewFromInt(n) }
