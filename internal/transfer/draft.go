package transfer

import (
	"context"
	"fmt"
)

// LineItem is one product/quantity pair within a draft.
type LineItem struct {
	ProductID int64 `json:"product_id"`
	Quantity  int   `json:"quantity"`
}

// Selection is the pending-selection scratch state: the product and quantity
// currently picked but not yet added to the draft.
type Selection struct {
	ProductID int64
	Quantity  int
}

// Draft is the client-held transfer request under construction. It is owned
// by a single session and has no server identity until submission. All
// invariant checks run against the stock snapshot held by its catalog.
type Draft struct {
	catalog *Catalog

	fromBranchID int64
	toBranchID   int64
	notes        string
	items        []LineItem
	selection    Selection
}

// NewDraft creates an empty draft whose stock snapshots come from stocks.
func NewDraft(stocks StockLister) *Draft {
	return &Draft{
		catalog:   NewCatalog(stocks),
		selection: Selection{Quantity: 1},
	}
}

// Catalog returns the draft's stock snapshot view.
func (d *Draft) Catalog() *Catalog {
	return d.catalog
}

// FromBranchID returns the selected source branch, 0 if none.
func (d *Draft) FromBranchID() int64 { return d.fromBranchID }

// ToBranchID returns the selected destination branch, 0 if none.
func (d *Draft) ToBranchID() int64 { return d.toBranchID }

// Notes returns the draft's free-text notes.
func (d *Draft) Notes() string { return d.notes }

// SetNotes sets the draft's free-text notes.
func (d *Draft) SetNotes(notes string) { d.notes = notes }

// Items returns a copy of the draft's line items in insertion order.
func (d *Draft) Items() []LineItem {
	items := make([]LineItem, len(d.items))
	copy(items, d.items)
	return items
}

// Selection returns the pending-selection scratch state.
func (d *Draft) Selection() Selection { return d.selection }

// SetSelection records the product and quantity currently picked.
func (d *Draft) SetSelection(productID int64, quantity int) {
	d.selection = Selection{ProductID: productID, Quantity: quantity}
}

// ResetSelection clears the scratch state back to empty product, quantity 1.
func (d *Draft) ResetSelection() {
	d.selection = Selection{Quantity: 1}
}

// SetSourceBranch replaces the source branch. Existing line items always
// refer to stock at the previous source, so they are cleared unconditionally,
// and the stock snapshot is reloaded for the new branch. A failed reload
// leaves the draft with no usable snapshot; adding items then fails with
// ErrSnapshotUnavailable rather than validating against stale data.
func (d *Draft) SetSourceBranch(ctx context.Context, branchID int64) error {
	d.fromBranchID = branchID
	d.items = nil
	d.ResetSelection()
	return d.catalog.Load(ctx, branchID)
}

// SetDestinationBranch replaces the destination branch. A destination equal
// to the current source is rejected without mutating the draft.
func (d *Draft) SetDestinationBranch(branchID int64) error {
	if branchID != 0 && branchID == d.fromBranchID {
		return fmt.Errorf("branch %d: %w", branchID, ErrSameBranch)
	}
	d.toBranchID = branchID
	return nil
}

// AddItem validates and appends a line item, then clears the scratch state.
// Duplicate detection compares product IDs by value. Stock comparison is
// strict: quantity equal to the snapshot stock is allowed.
func (d *Draft) AddItem(productID int64, quantity int) error {
	if quantity < 1 {
		return fmt.Errorf("quantity %d: %w", quantity, ErrInvalidQuantity)
	}
	if d.fromBranchID == 0 {
		return fmt.Errorf("no source branch selected: %w", ErrMissingBranches)
	}

	for _, item := range d.items {
		if item.ProductID == productID {
			return fmt.Errorf("product %d: %w", productID, ErrDuplicateItem)
		}
	}

	stock, ok := d.catalog.Stock(productID)
	if !ok {
		return fmt.Errorf("branch %d: %w", d.fromBranchID, ErrSnapshotUnavailable)
	}
	if quantity > stock {
		return fmt.Errorf("product %d: requested %d, have %d: %w",
			productID, quantity, stock, ErrInsufficientStock)
	}

	d.items = append(d.items, LineItem{ProductID: productID, Quantity: quantity})
	d.ResetSelection()
	return nil
}

// RemoveItem removes a line item by position.
func (d *Draft) RemoveItem(index int) error {
	if index < 0 || index >= len(d.items) {
		return fmt.Errorf("line item index %d out of range", index)
	}
	d.items = append(d.items[:index], d.items[index+1:]...)
	return nil
}

// Validate checks the draft is submittable against the current snapshot.
// Every item's quantity is re-checked so that stock drift between add time
// and submit time (e.g. concurrent depletion) is caught here rather than as
// a surprise during submission. The first failing check is returned.
func (d *Draft) Validate() error {
	if d.fromBranchID == 0 || d.toBranchID == 0 {
		return ErrMissingBranches
	}
	if d.fromBranchID == d.toBranchID {
		return fmt.Errorf("branch %d: %w", d.fromBranchID, ErrSameBranch)
	}
	if len(d.items) == 0 {
		return ErrEmptyItems
	}

	for _, item := range d.items {
		stock, ok := d.catalog.Stock(item.ProductID)
		if !ok {
			return fmt.Errorf("branch %d: %w", d.fromBranchID, ErrSnapshotUnavailable)
		}
		if item.Quantity > stock {
			name := d.catalog.Name(item.ProductID)
			if name == "" {
				name = fmt.Sprintf("product %d", item.ProductID)
			}
			return fmt.Errorf("%s: requested %d, have %d: %w",
				name, item.Quantity, stock, ErrInsufficientStock)
		}
	}
	return nil
}

// Valid reports the draft's current validity as a flag plus the first error,
// the shape surrounding interfaces render from.
func (d *Draft) Valid() (bool, error) {
	if err := d.Validate(); err != nil {
		return false, err
	}
	return true, nil
}

// Reset discards the draft's contents, returning it to the state of a newly
// opened creation flow. The catalog snapshot is dropped with it.
func (d *Draft) Reset() {
	d.fromBranchID = 0
	d.toBranchID = 0
	d.notes = ""
	d.items = nil
	d.ResetSelection()
	d.catalog.branchID = 0
	d.catalog.entries = nil
	d.catalog.loaded = false
}
