package transfer

import (
	"context"

	"github.com/Elver581/traspasos/internal/model"
)

// StockLister fetches the full stock snapshot for a branch.
type StockLister interface {
	BranchStock(ctx context.Context, branchID int64) ([]model.ProductStockEntry, error)
}

// Searcher performs a free-text product search scoped to a branch, returning
// entries annotated with the stock available there.
type Searcher interface {
	SearchProducts(ctx context.Context, branchID int64, query string, limit, offset int) ([]model.ProductStockEntry, error)
}

// BranchLister returns the branches currently selectable as transfer endpoints.
type BranchLister interface {
	ListActiveBranches(ctx context.Context) ([]model.Branch, error)
}

// Creator persists one transfer record. The persistence side performs its own
// authoritative stock check and may reject a create that passed client-side
// validation (stock is a snapshot, not a reservation).
type Creator interface {
	CreateTransfer(ctx context.Context, req model.CreateTransferRequest) (*model.Transfer, error)
}
