package model

import "time"

// Product represents a product type (quantity-based, not individual tracking).
type Product struct {
	ID          int64      `json:"id"`
	Name        string     `json:"name"`
	SKU         string     `json:"sku,omitempty"`
	Description string     `json:"description,omitempty"`
	ImageMime   string     `json:"image_mime,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	DeletedAt   *time.Time `json:"deleted_at,omitempty"`
}

// ProductStockEntry is a snapshot of the quantity of a product available at a
// branch at lookup time. It is advisory only: no reservation is held between
// lookup and submission.
type ProductStockEntry struct {
	ProductID int64  `json:"product_id"`
	BranchID  int64  `json:"branch_id"`
	Name      string `json:"name"`
	Stock     int    `json:"stock"`
}
