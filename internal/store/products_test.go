package store

import (
	"context"
	"testing"

	"github.com/Elver581/traspasos/internal/db"
)

func TestProductCRUD(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	product, err := CreateProduct(ctx, database, "Cable", "CAB-1", "HDMI cable")
	if err != nil {
		t.Fatalf("CreateProduct: %v", err)
	}
	if product.Name != "Cable" || product.SKU != "CAB-1" {
		t.Errorf("unexpected product: %+v", product)
	}

	if err := UpdateProduct(ctx, database, product.ID, "Cable HDMI", "CAB-1", "2m"); err != nil {
		t.Fatalf("UpdateProduct: %v", err)
	}
	got, _ := GetProduct(ctx, database, product.ID)
	if got.Name != "Cable HDMI" || got.Description != "2m" {
		t.Errorf("update not applied: %+v", got)
	}

	if err := DeleteProduct(ctx, database, product.ID); err != nil {
		t.Fatalf("DeleteProduct: %v", err)
	}
	products, _ := ListProducts(ctx, database)
	if len(products) != 0 {
		t.Errorf("deleted product still listed: %v", products)
	}
}

func TestDeleteProductWithStock(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	product, _ := CreateProduct(ctx, database, "Cable", "CAB-1", "")
	branch, _ := CreateBranch(ctx, database, "Centro", "CEN", "")
	AddStock(ctx, database, product.ID, branch.ID, 3)

	if err := DeleteProduct(ctx, database, product.ID); err == nil {
		t.Error("expected error deleting a stocked product")
	}
}

func TestSearchProducts(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	branch, _ := CreateBranch(ctx, database, "Centro", "CEN", "")
	cable, _ := CreateProduct(ctx, database, "Cable HDMI", "CAB-1", "")
	CreateProduct(ctx, database, "Adapter USB", "ADA-1", "")
	CreateProduct(ctx, database, "Cable USB", "CAB-2", "")
	AddStock(ctx, database, cable.ID, branch.ID, 7)

	results, err := SearchProducts(ctx, database, branch.ID, "cable", 0, 0)
	if err != nil {
		t.Fatalf("SearchProducts: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 matches, got %d", len(results))
	}
	if results[0].Name != "Cable HDMI" || results[0].Stock != 7 {
		t.Errorf("unexpected first result: %+v", results[0])
	}
	// Unstocked match reports zero, not absence.
	if results[1].Name != "Cable USB" || results[1].Stock != 0 {
		t.Errorf("unexpected second result: %+v", results[1])
	}
}

func TestSearchProductsBySKU(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	branch, _ := CreateBranch(ctx, database, "Centro", "CEN", "")
	CreateProduct(ctx, database, "Cable HDMI", "CAB-1", "")

	results, err := SearchProducts(ctx, database, branch.ID, "CAB-1", 0, 0)
	if err != nil {
		t.Fatalf("SearchProducts: %v", err)
	}
	if len(results) != 1 {
		t.Errorf("expected SKU match, got %v", results)
	}
}

func TestSearchProductsPagination(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	branch, _ := CreateBranch(ctx, database, "Centro", "CEN", "")
	CreateProduct(ctx, database, "Cable A", "CAB-A", "")
	CreateProduct(ctx, database, "Cable B", "CAB-B", "")
	CreateProduct(ctx, database, "Cable C", "CAB-C", "")

	page, err := SearchProducts(ctx, database, branch.ID, "cable", 2, 0)
	if err != nil {
		t.Fatalf("SearchProducts: %v", err)
	}
	if len(page) != 2 || page[0].Name != "Cable A" {
		t.Errorf("unexpected first page: %v", page)
	}

	page, _ = SearchProducts(ctx, database, branch.ID, "cable", 2, 2)
	if len(page) != 1 || page[0].Name != "Cable C" {
		t.Errorf("unexpected second page: %v", page)
	}
}

func TestSearchProductsExcludesDeleted(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	branch, _ := CreateBranch(ctx, database, "Centro", "CEN", "")
	product, _ := CreateProduct(ctx, database, "Cable", "CAB-1", "")
	DeleteProduct(ctx, database, product.ID)

	results, _ := SearchProducts(ctx, database, branch.ID, "cable", 0, 0)
	if len(results) != 0 {
		t.Errorf("deleted product matched: %v", results)
	}
}

func TestProductImage(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	product, _ := CreateProduct(ctx, database, "Cable", "CAB-1", "")

	image := []byte{0xFF, 0xD8, 0xFF, 0x01}
	thumb := []byte{0xFF, 0xD8, 0xFF, 0x02}
	if err := SetProductImage(ctx, database, product.ID, image, thumb, "image/jpeg"); err != nil {
		t.Fatalf("SetProductImage: %v", err)
	}

	data, mime, err := GetProductImage(ctx, database, product.ID, false)
	if err != nil {
		t.Fatalf("GetProductImage: %v", err)
	}
	if mime != "image/jpeg" || len(data) != len(image) {
		t.Errorf("unexpected image: %d bytes, %s", len(data), mime)
	}

	data, _, _ = GetProductImage(ctx, database, product.ID, true)
	if len(data) != len(thumb) || data[3] != 0x02 {
		t.Errorf("unexpected thumbnail: %v", data)
	}
}
