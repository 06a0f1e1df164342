package model

import "time"

// Transfer represents a persisted, single-product request to move stock
// between two branches. Each submitted draft line item becomes one
// independent transfer record; there is no batch entity.
type Transfer struct {
	ID              int64     `json:"id"`
	Reference       string    `json:"reference"`
	ProductID       int64     `json:"product_id"`
	FromBranchID    int64     `json:"from_branch_id"`
	ToBranchID      int64     `json:"to_branch_id"`
	Quantity        int       `json:"quantity"`
	Notes           string    `json:"notes,omitempty"`
	Status          string    `json:"status"`
	RejectionReason string    `json:"rejection_reason,omitempty"`
	CreatedBy       *int64    `json:"created_by,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`

	// Joined fields (not always populated).
	ProductName    string `json:"product_name,omitempty"`
	FromBranchName string `json:"from_branch_name,omitempty"`
	ToBranchName   string `json:"to_branch_name,omitempty"`
}

// CreateTransferRequest is the payload for creating one transfer record.
type CreateTransferRequest struct {
	ProductID    int64  `json:"product_id"`
	FromBranchID int64  `json:"from_branch_id"`
	ToBranchID   int64  `json:"to_branch_id"`
	Quantity     int    `json:"quantity"`
	Notes        string `json:"notes,omitempty"`
}
