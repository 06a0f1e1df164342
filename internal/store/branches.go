package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Elver581/traspasos/internal/model"
)

// CreateBranch creates a new branch. The code must be unique company-wide.
func CreateBranch(ctx context.Context, db *sql.DB, name, code, address string) (*model.Branch, error) {
	result, err := db.ExecContext(ctx,
		`INSERT INTO branches (name, code, address) VALUES (?, ?, ?)`,
		name, code, address,
	)
	if err != nil {
		return nil, fmt.Errorf("creating branch: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("getting branch id: %w", err)
	}

	return GetBranch(ctx, db, id)
}

// GetBranch returns a branch by ID.
func GetBranch(ctx context.Context, db *sql.DB, id int64) (*model.Branch, error) {
	b := &model.Branch{}
	var address sql.NullString
	err := db.QueryRowContext(ctx,
		`SELECT id, name, code, address, is_active, created_at
		 FROM branches WHERE id = ?`, id,
	).Scan(&b.ID, &b.Name, &b.Code, &address, &b.IsActive, &b.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting branch: %w", err)
	}
	b.Address = address.String
	return b, nil
}

// ListBranches returns branches ordered by name. With activeOnly, inactive
// branches are excluded — that is the set selectable as transfer endpoints.
func ListBranches(ctx context.Context, db *sql.DB, activeOnly bool) ([]model.Branch, error) {
	query := `SELECT id, name, code, address, is_active, created_at
	          FROM branches`
	if activeOnly {
		query += ` WHERE is_active = 1`
	}
	query += ` ORDER BY name`

	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("listing branches: %w", err)
	}
	defer rows.Close()

	var branches []model.Branch
	for rows.Next() {
		var b model.Branch
		var address sql.NullString
		if err := rows.Scan(&b.ID, &b.Name, &b.Code, &address, &b.IsActive, &b.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning branch: %w", err)
		}
		b.Address = address.String
		branches = append(branches, b)
	}
	return branches, rows.Err()
}

// UpdateBranch updates a branch's name, address, and active flag.
// Deactivating a branch removes it from the selectable set without touching
// its stock or transfer history.
func UpdateBranch(ctx context.Context, db *sql.DB, id int64, name, address string, isActive bool) error {
	_, err := db.ExecContext(ctx,
		`UPDATE branches SET name = ?, address = ?, is_active = ? WHERE id = ?`,
		name, address, isActive, id,
	)
	if err != nil {
		return fmt.Errorf("updating branch: %w", err)
	}
	return nil
}

// GetBranchStock returns the full stock snapshot for a branch.
func GetBranchStock(ctx context.Context, db *sql.DB, branchID int64) ([]model.ProductStockEntry, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT s.product_id, s.branch_id, p.name, s.quantity
		 FROM stock s
		 JOIN products p ON p.id = s.product_id
		 WHERE s.branch_id = ? AND p.deleted_at IS NULL
		 ORDER BY p.name`, branchID,
	)
	if err != nil {
		return nil, fmt.Errorf("getting branch stock: %w", err)
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
