package service

import (
	"context"
	"errors"

	"github.com/aussiebroadwan/storefront/internal/sandbox/domain"
	"github.com/aussiebroadwan/storefront/internal/sandbox/store"
)

// AddressService manages shipping addresses. A user's first address
// becomes the default, and at most one address is default at a time.
type AddressService struct {
	Store store.Store
}

func (s *AddressService) List(ctx context.Context, userID int64) ([]domain.Address, error) {
	return s.Store.Addresses().ListAddresses(ctx, userID)
}

func (s *AddressService) Get(ctx context.Context, userID, id int64) (domain.Address, error) {
	a, err := s.Store.Addresses().GetAddress(ctx, userID, id)
	if errors.Is(err, store.ErrNotFound) {
		return domain.Address{}, ErrAddressNotFound
	}
	return a, err
}

func (s *AddressService) Create(ctx context.Context, a domain.Address) (domain.Address, error) {
	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		existing, err := tx.Addresses().ListAddresses(ctx, a.UserID)
		if err != nil {
			return err
		}
		if len(existing) == 0 {
			a.IsDefault = true
		}
		if a.IsDefault {
			if err := tx.Addresses().ClearDefault(ctx, a.UserID); err != nil {
				return err
			}
		}
		a.ID, err = tx.Addresses().CreateAddress(ctx, a)
		return err
	})
	if err != nil {
		return domain.Address{}, err
	}
	return s.Get(ctx, a.UserID, a.ID)
}

func (s *AddressService) Update(ctx context.Context, a domain.Address) (domain.Address, error) {
	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		if _, err := tx.Addresses().GetAddress(ctx, a.UserID, a.ID); err != nil {
			return err
		}
		if a.IsDefault {
			if err := tx.Addresses().ClearDefault(ctx, a.UserID); err != nil {
				return err
			}
		}
		return tx.Addresses().UpdateAddress(ctx, a)
	})
	if errors.Is(err, store.ErrNotFound) {
		return domain.Address{}, ErrAddressNotFound
	}
	if err != nil {
		return domain.Address{}, err
	}
	return s.Get(ctx, a.UserID, a.ID)
}

func (s *AddressService) Delete(ctx context.Context, userID, id int64) error {
	err := s.Store.Addresses().DeleteAddress(ctx, userID, id)
	if errors.Is(err, store.ErrNotFound) {
		return ErrAddressNotFound
	}
	return err
}
