package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/Elver581/traspasos/internal/model"
	"github.com/Elver581/traspasos/internal/transfer"
)

// newTransferReference generates a human-facing transfer code like TR-3F2A81C4.
func newTransferReference() string {
	return "TR-" + strings.ToUpper(uuid.New().String()[:8])
}

// CreateTransfer creates a pending transfer record. This is the authoritative
// check at creation time: both branches must exist, be active, and differ,
// and the requested quantity must not exceed the live stock at the source
// branch. No stock is moved and no reservation is held — the quantity only
// moves when the record is completed.
func CreateTransfer(ctx context.Context, db *sql.DB, req model.CreateTransferRequest, createdBy *int64) (*model.Transfer, error) {
	if req.FromBranchID == req.ToBranchID {
		return nil, fmt.Errorf("branch %d: %w", req.FromBranchID, transfer.ErrSameBranch)
	}
	if req.Quantity < 1 {
		return nil, fmt.Errorf("quantity %d: %w", req.Quantity, transfer.ErrInvalidQuantity)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	for _, branchID := range []int64{req.FromBranchID, req.ToBranchID} {
		var isActive bool
		err = tx.QueryRowContext(ctx,
			`SELECT is_active FROM branches WHERE id = ?`, branchID,
		).Scan(&isActive)
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("branch %d not found", branchID)
		}
		if err != nil {
			return nil, fmt.Errorf("checking branch: %w", err)
		}
		if !isActive {
			return nil, fmt.Errorf("branch %d is inactive", branchID)
		}
	}

	var productCount int
	err = tx.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM products WHERE id = ? AND deleted_at IS NULL`, req.ProductID,
	).Scan(&productCount)
	if err != nil {
		return nil, fmt.Errorf("checking product: %w", err)
	}
	if productCount == 0 {
		return nil, fmt.Errorf("product %d not found", req.ProductID)
	}

	// Live stock check. Lookup snapshots are advisory; this is where drift
	// between add time and create time is caught.
	var available int
	err = tx.QueryRowContext(ctx,
		`SELECT COALESCE(quantity, 0) FROM stock WHERE product_id = ? AND branch_id = ?`,
		req.ProductID, req.FromBranchID,
	).Scan(&available)
	if err == sql.ErrNoRows {
		available = 0
	} else if err != nil {
		return nil, fmt.Errorf("checking available stock: %w", err)
	}
	if req.Quantity > available {
		return nil, fmt.Errorf("requested %d, have %d: %w",
			req.Quantity, available, transfer.ErrInsufficientStock)
	}

	result, err := tx.ExecContext(ctx,
		`INSERT INTO transfers (reference, product_id, from_branch_id, to_branch_id, quantity, notes, status, created_by)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		newTransferReference(), req.ProductID, req.FromBranchID, req.ToBranchID,
		req.Quantity, req.Notes, transfer.StatusPending, createdBy,
	)
	if err != nil {
		return nil, fmt.Errorf("recording transfer: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing transfer: %w", err)
	}

	id, _ := result.LastInsertId()
	return GetTransfer(ctx, db, id)
}

// GetTransfer returns a transfer by ID.
func GetTransfer(ctx context.Context, db *sql.DB, id int64) (*model.Transfer, error) {
	t := &model.Transfer{}
	var notes, reason sql.NullString
	err := db.QueryRowContext(ctx,
		`SELECT t.id, t.reference, t.product_id, t.from_branch_id, t.to_branch_id,
		        t.quantity, t.notes, t.status, t.rejection_reason,
		        t.created_by, t.created_at, t.updated_at,
		        p.name AS product_name, fb.name AS from_branch_name, tb.name AS to_branch_name
		 FROM transfers t
		 JOIN products p ON p.id = t.product_id
		 JOIN branches fb ON fb.id = t.from_branch_id
		 JOIN branches tb ON tb.id = t.to_branch_id
		 WHERE t.id = ?`, id,
	).Scan(&t.ID, &t.Reference, &t.ProductID, &t.FromBranchID, &t.ToBranchID,
		&t.Quantity, &notes, &t.Status, &reason,
		&t.CreatedBy, &t.CreatedAt, &t.UpdatedAt,
		&t.ProductName, &t.FromBranchName, &t.ToBranchName)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting transfer: %w", err)
	}
	t.Notes = notes.String
	t.RejectionReason = reason.String
	return t, nil
}

// ListTransfers returns transfers, optionally filtered by status and by
// branch (matching either endpoint), newest first.
func ListTransfers(ctx context.Context, db *sql.DB, status string, branchID int64) ([]model.Transfer, error) {
	query := `SELECT t.id, t.reference, t.product_id, t.from_branch_id, t.to_branch_id,
	                 t.quantity, t.notes, t.status, t.rejection_reason,
	                 t.created_by, t.created_at, t.updated_at,
	                 p.name AS product_name, fb.name AS from_branch_name, tb.name AS to_branch_name
	          FROM transfers t
	          JOIN products p ON p.id = t.product_id
	          JOIN branches fb ON fb.id = t.from_branch_id
	          JOIN branches tb ON tb.id = t.to_branch_id
	          WHERE 1=1`
	var args []any

	if status != "" {
		query += ` AND t.status = ?`
		args = append(args, status)
	}
	if branchID > 0 {
		query += ` AND (t.from_branch_id = ? OR t.to_branch_id = ?)`
		args = append(args, branchID, branchID)
	}

	query += ` ORDER BY t.created_at DESC, t.id DESC`

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing transfers: %w", err)
	}
	defer rows.Close()

	return scanTransfers(rows)
}

// ApplyTransferAction applies a lifecycle action to a transfer. The
// transition is gated by the lifecycle table, so actions not allowed from
// the current status fail with ErrInvalidTransition no matter what the
// client rendered. Under concurrent actors the first valid transition wins:
// the status update is conditional on the status the action was gated
// against, and a loser gets ErrInvalidTransition to surface, not retry.
//
// Completing a transfer is the step that moves physical stock: the source
// quantity is re-checked and moved to the destination in the same
// transaction. Insufficient stock at completion time fails the action and
// leaves the record approved.
//
// Rejection stores the given reason verbatim; an empty string is a valid
// empty reason.
func ApplyTransferAction(ctx context.Context, db *sql.DB, id int64, action transfer.Action, reason string) (*model.Transfer, error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	var current transfer.Status
	var productID, fromBranchID, toBranchID int64
	var quantity int
	err = tx.QueryRowContext(ctx,
		`SELECT status, product_id, from_branch_id, to_branch_id, quantity
		 FROM transfers WHERE id = ?`, id,
	).Scan(&current, &productID, &fromBranchID, &toBranchID, &quantity)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting transfer status: %w", err)
	}

	next, err := transfer.Next(current, action)
	if err != nil {
		return nil, err
	}

	if action == transfer.ActionComplete {
		if err := moveStock(ctx, tx, productID, fromBranchID, toBranchID, quantity); err != nil {
			return nil, err
		}
	}

	var result sql.Result
	if action == transfer.ActionReject {
		result, err = tx.ExecContext(ctx,
			`UPDATE transfers SET status = ?, rejection_reason = ?, updated_at = CURRENT_TIMESTAMP
			 WHERE id = ? AND status = ?`,
			next, reason, id, current,
		)
	} else {
		result, err = tx.ExecContext(ctx,
			`UPDATE transfers SET status = ?, updated_at = CURRENT_TIMESTAMP
			 WHERE id = ? AND status = ?`,
			next, id, current,
		)
	}
	if err != nil {
		return nil, fmt.Errorf("updating transfer status: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("checking status update: %w", err)
	}
	if affected == 0 {
		// A concurrent actor changed the status first.
		return nil, fmt.Errorf("transfer %d is no longer %s: %w", id, current, transfer.ErrInvalidTransition)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing status change: %w", err)
	}

	return GetTransfer(ctx, db, id)
}

// moveStock moves quantity of a product from one branch to another within an
// open transaction. The source row is deleted when it reaches zero.
func moveStock(ctx context.Context, tx *sql.Tx, productID, fromBranchID, toBranchID int64, quantity int) error {
	var available int
	err := tx.QueryRowContext(ctx,
		`SELECT COALESCE(quantity, 0) FROM stock WHERE product_id = ? AND branch_id = ?`,
		productID, fromBranchID,
	).Scan(&available)
	if err == sql.ErrNoRows {
		available = 0
	} else if err != nil {
		return fmt.Errorf("checking source stock: %w", err)
	}

	if quantity > available {
		return fmt.Errorf("requested %d, have %d at source: %w",
			quantity, available, transfer.ErrInsufficientStock)
	}

	newQty := available - quantity
	if newQty == 0 {
		_, err = tx.ExecContext(ctx,
			`DELETE FROM stock WHERE product_id = ? AND branch_id = ?`,
			productID, fromBranchID,
		)
	} else {
		_, err = tx.ExecContext(ctx,
			`UPDATE stock SET quantity = ? WHERE product_id = ? AND branch_id = ?`,
			newQty, productID, fromBranchID,
		)
	}
	if err != nil {
		return fmt.Errorf("updating source stock: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO stock (product_id, branch_id, quantity) VALUES (?, ?, ?)
		 ON CONFLICT (product_id, branch_id) DO UPDATE SET quantity = quantity + ?`,
		productID, toBranchID, quantity, quantity,
	)
	if err != nil {
		return fmt.Errorf("updating destination stock: %w", err)
	}

	return nil
}

func scanTransfers(rows *sql.Rows) ([]model.Transfer, error) {
	var transfers []model.Transfer
	for rows.Next() {
		var t model.Transfer
		var notes, reason sql.NullString
		if err := rows.Scan(&t.ID, &t.Reference, &t.ProductID, &t.FromBranchID, &t.ToBranchID,
			&t.Quantity, &notes, &t.Status, &reason,
			&t.CreatedBy, &t.CreatedAt, &t.UpdatedAt,
			&t.ProductName, &t.FromBranchName, &t.ToBranchName); err != nil {
			return nil, fmt.Errorf("scanning transfer: %w", err)
		}
		t.Notes = notes.String
		t.RejectionReason = reason.String
		transfers = append(transfers, t)
	}
	return transfers, rows.Err()
}
