package transfer

import (
	"context"
	"fmt"

	"github.com/Elver581/traspasos/internal/model"
)

// SubmitError records one line item whose create call failed.
type SubmitError struct {
	Index     int
	ProductID int64
	Err       error
}

func (e SubmitError) Error() string {
	return fmt.Sprintf("line item %d (product %d): %v", e.Index, e.ProductID, e.Err)
}

func (e SubmitError) Unwrap() error { return e.Err }

// SubmitResult is the composite outcome of a submission: the transfer records
// that were created and the per-item failures, both in line-item order.
// Created records are independent and valid on their own — there is no
// rollback when later items fail.
type SubmitResult struct {
	Created []model.Transfer
	Errors  []SubmitError
}

// CreatedCount returns the number of successfully created transfers.
func (r *SubmitResult) CreatedCount() int { return len(r.Created) }

// AllCreated reports whether every line item was persisted.
func (r *SubmitResult) AllCreated() bool { return len(r.Errors) == 0 }

// Submitter converts a validated draft into one transfer-creation call per
// line item.
type Submitter struct {
	creator Creator
}

// NewSubmitter creates a submitter backed by the given persistence service.
func NewSubmitter(creator Creator) *Submitter {
	return &Submitter{creator: creator}
}

// Submit validates the draft, then issues creates strictly in line-item
// order, awaiting each before the next. Per-item failures do not abort the
// loop: the submitter maximizes successfully created transfers and reports
// the failures for the caller to surface. A draft-level validation failure
// returns an error with nothing submitted.
func (s *Submitter) Submit(ctx context.Context, d *Draft) (*SubmitResult, error) {
	if err := d.Validate(); err != nil {
		return nil, err
	}

	result := &SubmitResult{}
	for i, item := range d.Items() {
		record, err := s.creator.CreateTransfer(ctx, model.CreateTransferRequest{
			ProductID:    item.ProductID,
			FromBranchID: d.FromBranchID(),
			ToBranchID:   d.ToBranchID(),
			Quantity:     item.Quantity,
			Notes:        d.Notes(),
		})
		if err != nil {
			result.Errors = append(result.Errors, SubmitError{
				Index:     i,
				ProductID: item.ProductID,
				Err:       err,
			})
			continue
		}
		result.Created = append(result.Created, *record)
	}
	return result, nil
}

// DropCreated removes the line items that result reports as created, leaving
// the failed ones in place for a manual retry. It is for the actor to call
// after acting on a partial failure; the submitter itself never mutates the
// draft.
func (d *Draft) DropCreated(result *SubmitResult) {
	created := make(map[int64]bool, len(result.Created))
	for _, record := range result.Created {
		created[record.ProductID] = true
	}

	remaining := d.items[:0]
	for _, item := range d.items {
		if !created[item.ProductID] {
			remaining = append(remaining, item)
		}
	}
	d.items = remaining
}
