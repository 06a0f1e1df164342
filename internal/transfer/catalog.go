package transfer

import (
	"context"
	"fmt"
	"sort"

	"github.com/Elver581/traspasos/internal/model"
)

// Catalog is a read-through, branch-scoped view of product availability.
// Each Load replaces the previous snapshot entirely, so stock from a
// previously selected branch can never leak into validation.
type Catalog struct {
	stocks StockLister

	branchID int64
	entries  map[int64]model.ProductStockEntry
	loaded   bool
}

// NewCatalog creates an empty catalog backed by the given stock source.
func NewCatalog(stocks StockLister) *Catalog {
	return &Catalog{stocks: stocks}
}

// Load fetches the stock snapshot for a branch, discarding any previous one.
// On fetch failure the catalog is left unloaded: callers must treat that as
// "no data", never as zero stock.
func (c *Catalog) Load(ctx context.Context, branchID int64) error {
	c.branchID = branchID
	c.entries = nil
	c.loaded = false

	if branchID == 0 {
		return nil
	}

	entries, err := c.stocks.BranchStock(ctx, branchID)
	if err != nil {
		return fmt.Errorf("loading stock for branch %d: %w", branchID, err)
	}

	c.entries = make(map[int64]model.ProductStockEntry, len(entries))
	for _, e := range entries {
		c.entries[e.ProductID] = e
	}
	c.loaded = true
	return nil
}

// Loaded reports whether the catalog holds a snapshot for the current branch.
func (c *Catalog) Loaded() bool {
	return c.loaded
}

// BranchID returns the branch the current snapshot belongs to.
func (c *Catalog) BranchID() int64 {
	return c.branchID
}

// Stock returns the snapshot stock for a product. The second return value is
// false when no snapshot is loaded; a loaded snapshot without the product
// genuinely means zero stock at the branch.
func (c *Catalog) Stock(productID int64) (int, bool) {
	if !c.loaded {
		return 0, false
	}
	return c.entries[productID].Stock, true
}

// Name returns the product name recorded in the snapshot, or empty.
func (c *Catalog) Name(productID int64) string {
	return c.entries[productID].Name
}

// Entries returns the snapshot entries sorted by product name.
func (c *Catalog) Entries() []model.ProductStockEntry {
	entries := make([]model.ProductStockEntry, 0, len(c.entries))
	for _, e := range c.entries {
		entries = append(entries, e)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name < entries[j].Name })
	return entries
}
