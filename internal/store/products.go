package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Elver581/traspasos/internal/model"
)

// CreateProduct creates a new product.
func CreateProduct(ctx context.Context, db *sql.DB, name, sku, description string) (*model.Product, error) {
	result, err := db.ExecContext(ctx,
		`INSERT INTO products (name, sku, description) VALUES (?, ?, ?)`,
		name, sku, description,
	)
	if err != nil {
		return nil, fmt.Errorf("creating product: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("getting product id: %w", err)
	}

	return GetProduct(ctx, db, id)
}

// GetProduct returns a product by ID.
func GetProduct(ctx context.Context, db *sql.DB, id int64) (*model.Product, error) {
	p := &model.Product{}
	var sku, description, imageMime sql.NullString
	err := db.QueryRowContext(ctx,
		`SELECT id, name, sku, description, image_mime, created_at, updated_at, deleted_at
		 FROM products WHERE id = ?`, id,
	).Scan(&p.ID, &p.Name, &sku, &description, &imageMime, &p.CreatedAt, &p.UpdatedAt, &p.DeletedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting product: %w", err)
	}
	p.SKU = sku.String
	p.Description = description.String
	p.ImageMime = imageMime.String
	return p, nil
}

// ListProducts returns all non-deleted products.
func ListProducts(ctx context.Context, db *sql.DB) ([]model.Product, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT id, name, sku, description, image_mime, created_at, updated_at, deleted_at
		 FROM products WHERE deleted_at IS NULL ORDER BY name`,
	)
	if err != nil {
		return nil, fmt.Errorf("listing products: %w", err)
	}
	defer rows.Close()

	var products []model.Product
	for rows.Next() {
		var p model.Product
		var sku, description, imageMime sql.NullString
		if err := rows.Scan(&p.ID, &p.Name, &sku, &description, &imageMime, &p.CreatedAt, &p.UpdatedAt, &p.DeletedAt); err != nil {
			return nil, fmt.Errorf("scanning product: %w", err)
		}
		p.SKU = sku.String
		p.Description = description.String
		p.ImageMime = imageMime.String
		products = append(products, p)
	}
	return products, rows.Err()
}

// SearchProducts performs a paginated name/SKU substring search scoped to a
// branch, returning each match annotated with the stock available there
// (zero when the branch holds none).
func SearchProducts(ctx context.Context, db *sql.DB, branchID int64, query string, limit, offset int) ([]model.ProductStockEntry, error) {
	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	pattern := "%" + query + "%"
	rows, err := db.QueryContext(ctx,
		`SELECT p.id, ?, p.name, COALESCE(s.quantity, 0)
		 FROM products p
		 LEFT JOIN stock s ON s.product_id = p.id AND s.branch_id = ?
		 WHERE p.deleted_at IS NULL AND (p.name LIKE ? OR p.sku LIKE ?)
		 ORDER BY p.name
		 LIMIT ? OFFSET ?`,
		branchID, branchID, pattern, pattern, limit, offset,
	)
	if err != nil {
		return nil, fmt.Errorf("searching products: %w", err)
	}
	defer rows.Close()

	var entries []model.ProductStockEntry
	for rows.Next() {
		var e model.ProductStockEntry
		if err := rows.Scan(&e.ProductID, &e.BranchID, &e.Name, &e.Stock); err != nil {
			return nil, fmt.Errorf("scanning search result: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// UpdateProduct updates a product's metadata.
func UpdateProduct(ctx context.Context, db *sql.DB, id int64, name, sku, description string) error {
	_, err := db.ExecContext(ctx,
		`UPDATE products SET name = ?, sku = ?, description = ?, updated_at = CURRENT_TIMESTAMP
		 WHERE id = ? AND deleted_at IS NULL`,
		name, sku, description, id,
	)
	if err != nil {
		return fmt.Errorf("updating product: %w", err)
	}
	return nil
}

// DeleteProduct soft-deletes a product. Fails if any branch still stocks it.
func DeleteProduct(ctx context.Context, db *sql.DB, id int64) error {
	var count int
	err := db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM stock WHERE product_id = ?`, id,
	).Scan(&count)
	if err != nil {
		return fmt.Errorf("checking product stock: %w", err)
	}
	if count > 0 {
		return fmt.Errorf("cannot delete product: still stocked at %d branches", count)
	}

	_, err = db.ExecContext(ctx,
		`UPDATE products SET deleted_at = CURRENT_TIMESTAMP WHERE id = ? AND deleted_at IS NULL`,
		id,
	)
	if err != nil {
		return fmt.Errorf("deleting product: %w", err)
	}
	return nil
}

// SetProductImage stores a product's image and thumbnail.
func SetProductImage(ctx context.Context, db *sql.DB, id int64, image, thumb []byte, mime string) error {
	_, err := db.ExecContext(ctx,
		`UPDATE products SET image = ?, image_thumb = ?, image_mime = ?, updated_at = CURRENT_TIMESTAMP
		 WHERE id = ? AND deleted_at IS NULL`,
		image, thumb, mime, id,
	)
	if err != nil {
		return fmt.Errorf("setting product image: %w", err)
	}
	return nil
}

// GetProductImage returns a product's image (or thumbnail) and MIME type.
func GetProductImage(ctx context.Context, db *sql.DB, id int64, thumb bool) ([]byte, string, error) {
	column := "image"
	if thumb {
		column = "image_thumb"
	}

	var data []byte
	var mime sql.NullString
	err := db.QueryRowContext(ctx,
		`SELECT `+column+`, image_mime FROM products WHERE id = ?`, id,
	).Scan(&data, &mime)
	if err == sql.ErrNoRows {
		return nil, "", nil
	}
	if err != nil {
		return nil, "", fmt.Errorf("getting product image: %w", err)
	}
	return data, mime.String, nil
}
