package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Elver581/traspasos/internal/model"
)

// GetStock returns the quantity of a product at a branch (0 when no row).
func GetStock(ctx context.Context, db *sql.DB, productID, branchID int64) (int, error) {
	var quantity int
	err := db.QueryRowContext(ctx,
		`SELECT COALESCE(quantity, 0) FROM stock WHERE product_id = ? AND branch_id = ?`,
		productID, branchID,
	).Scan(&quantity)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("getting stock: %w", err)
	}
	return quantity, nil
}

// ListStock returns the company-wide stock overview.
func ListStock(ctx context.Context, db *sql.DB) ([]model.ProductStockEntry, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT s.product_id, s.branch_id, p.name, s.quantity
		 FROM stock s
		 JOIN products p ON p.id = s.product_id
		 JOIN branches b ON b.id = s.branch_id
		 ORDER BY p.name, b.name`,
	)
	if err != nil {
		return nil, fmt.Errorf("listing stock: %w", err)
	}
	defer rows.Close()

	var entries []model.ProductStockEntry
	for rows.Next() {
		var e model.ProductStockEntry
		if err := rows.Scan(&e.ProductID, &e.BranchID, &e.Name, &e.Stock); err != nil {
			return nil, fmt.Errorf("scanning stock entry: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// AddStock adds received stock of a product to a branch.
func AddStock(ctx context.Context, db *sql.DB, productID, branchID int64, quantity int) error {
	if quantity <= 0 {
		return fmt.Errorf("quantity must be positive")
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	// Only active branches receive stock.
	var isActive bool
	err = tx.QueryRowContext(ctx,
		`SELECT is_active FROM branches WHERE id = ?`, branchID,
	).Scan(&isActive)
	if err == sql.ErrNoRows {
		return fmt.Errorf("branch not found")
	}
	if err != nil {
		return fmt.Errorf("checking branch: %w", err)
	}
	if !isActive {
		return fmt.Errorf("branch is inactive")
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO stock (product_id, branch_id, quantity) VALUES (?, ?, ?)
		 ON CONFLICT (product_id, branch_id) DO UPDATE SET quantity = quantity + ?`,
		productID, branchID, quantity, quantity,
	)
	if err != nil {
		return fmt.Errorf("adding stock: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing stock addition: %w", err)
	}
	return nil
}

// AdjustStock adjusts a branch's stock quantity (for corrections/losses).
// Delta can be negative. If the resulting quantity is 0, the row is deleted.
func AdjustStock(ctx context.Context, db *sql.DB, productID, branchID int64, delta int) error {
	if delta == 0 {
		return fmt.Errorf("delta must be non-zero")
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	var current int
	err = tx.QueryRowContext(ctx,
		`SELECT COALESCE(quantity, 0) FROM stock WHERE product_id = ? AND branch_id = ?`,
		productID, branchID,
	).Scan(&current)
	if err == sql.ErrNoRows {
		current = 0
	} else if err != nil {
		return fmt.Errorf("checking current quantity: %w", err)
	}

	newQty := current + delta
	if newQty < 0 {
		return fmt.Errorf("adjustment would result in negative quantity: %d + %d = %d", current, delta, newQty)
	}

	if newQty == 0 {
		_, err = tx.ExecContext(ctx,
			`DELETE FROM stock WHERE product_id = ? AND branch_id = ?`,
			productID, branchID,
		)
	} else if current == 0 {
		_, err = tx.ExecContext(ctx,
			`INSERT INTO stock (product_id, branch_id, quantity) VALUES (?, ?, ?)`,
			productID, branchID, newQty,
		)
	} else {
		_, err = tx.ExecContext(ctx,
			`UPDATE stock SET quantity = ? WHERE product_id = ? AND branch_id = ?`,
			newQty, productID, branchID,
		)
	}
	if err != nil {
		return fmt.Errorf("adjusting stock: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing adjustment: %w", err)
	}
	return nil
}
