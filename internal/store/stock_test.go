package store

import (
	"context"
	"testing"

	"github.com/Elver581/traspasos/internal/db"
)

func TestAddStock(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	product, _ := CreateProduct(ctx, database, "Cable", "CAB-1", "")
	branch, _ := CreateBranch(ctx, database, "Centro", "CEN", "")

	if err := AddStock(ctx, database, product.ID, branch.ID, 5); err != nil {
		t.Fatalf("AddStock: %v", err)
	}
	// Additions accumulate.
	if err := AddStock(ctx, database, product.ID, branch.ID, 3); err != nil {
		t.Fatalf("AddStock: %v", err)
	}

	stock, err := GetStock(ctx, database, product.ID, branch.ID)
	if err != nil {
		t.Fatalf("GetStock: %v", err)
	}
	if stock != 8 {
		t.Errorf("expected stock 8, got %d", stock)
	}
}

func TestAddStockInactiveBranch(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	product, _ := CreateProduct(ctx, database, "Cable", "CAB-1", "")
	branch, _ := CreateBranch(ctx, database, "Centro", "CEN", "")
	UpdateBranch(ctx, database, branch.ID, "Centro", "", false)

	if err := AddStock(ctx, database, product.ID, branch.ID, 5); err == nil {
		t.Error("expected error adding stock to inactive branch")
	}
}

func TestAdjustStock(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	product, _ := CreateProduct(ctx, database, "Cable", "CAB-1", "")
	branch, _ := CreateBranch(ctx, database, "Centro", "CEN", "")
	AddStock(ctx, database, product.ID, branch.ID, 5)

	if err := AdjustStock(ctx, database, product.ID, branch.ID, -2); err != nil {
		t.Fatalf("AdjustStock: %v", err)
	}
	stock, _ := GetStock(ctx, database, product.ID, branch.ID)
	if stock != 3 {
		t.Errorf("expected stock 3, got %d", stock)
	}

	// An adjustment below zero is rejected.
	if err := AdjustStock(ctx, database, product.ID, branch.ID, -4); err == nil {
		t.Error("expected error for negative result")
	}
}

func TestAdjustStockToZeroRemovesRow(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	product, _ := CreateProduct(ctx, database, "Cable", "CAB-1", "")
	branch, _ := CreateBranch(ctx, database, "Centro", "CEN", "")
	AddStock(ctx, database, product.ID, branch.ID, 5)

	if err := AdjustStock(ctx, database, product.ID, branch.ID, -5); err != nil {
		t.Fatalf("AdjustStock: %v", err)
	}

	var count int
	database.QueryRow(`SELECT COUNT(*) FROM stock WHERE product_id = ? AND branch_id = ?`,
		product.ID, branch.ID).Scan(&count)
	if count != 0 {
		t.Error("zero-quantity stock row should be removed")
	}
}

func TestListStock(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	cable, _ := CreateProduct(ctx, database, "Cable", "CAB-1", "")
	adapter, _ := CreateProduct(ctx, database, "Adapter", "ADA-1", "")
	centro, _ := CreateBranch(ctx, database, "Centro", "CEN", "")
	norte, _ := CreateBranch(ctx, database, "Norte", "NOR", "")
	AddStock(ctx, database, cable.ID, centro.ID, 5)
	AddStock(ctx, database, cable.ID, norte.ID, 2)
	AddStock(ctx, database, adapter.ID, centro.ID, 1)

	entries, err := ListStock(ctx, database)
	if err != nil {
		t.Fatalf("ListStock: %v", err)
	}
	if len(entries) != 3 {
		t.Errorf("expected 3 entries, got %d", len(entries))
	}
}
