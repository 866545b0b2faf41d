package main

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"

	"github.com/warp/inventory-engine/inventory"
)

// employeeSaver is implemented by store backends that can write the employee
// directory. The rest backend cannot; its directory is maintained remotely.
type employeeSaver interface {
	SaveEmployee(ctx context.Context, e inventory.Employee) error
}

// seed inserts a small demo dataset: two staff accounts and a few items.
// Existing records are left alone.
func seed(ctx context.Context, store inventory.Store) error {
	saver, ok := store.(employeeSaver)
	if !ok {
		return fmt.Errorf("store backend does not support employee seeding")
	}

	staff := []struct {
		email, name, password string
	}{
		{"alice@example.com", "Alice Demir", "alice123"},
		{"bob@example.com", "Bob Yilmaz", "bob123"},
	}
	for _, s := range staff {
		digest, err := bcrypt.GenerateFromPassword([]byte(s.password), bcrypt.DefaultCost)
		if err != nil {
			return err
		}
		err = saver.SaveEmployee(ctx, inventory.Employee{
			Email:          s.email,
			Name:           s.name,
			PasswordDigest: string(digest),
		})
		if err != nil {
			return err
		}
	}

	ledger := inventory.NewStockLedger(store)
	items := []struct {
		name  string
		price string
		stock int
	}{
		{"Aspirin", "10.00", 100},
		{"Paracetamol", "8.50", 80},
		{"Vitamin C", "15.25", 40},
	}
	for _, it := range items {
		price, err := decimal.NewFromString(it.price)
		if err != nil {
			return err
		}
		if _, _, err := ledger.AddItem(ctx, it.name, price, it.stock); err != nil {
			// Already seeded on a previous run.
			if inventory.IsClientError(err) {
				continue
			}
			return err
		}
	}
	return nil
}
