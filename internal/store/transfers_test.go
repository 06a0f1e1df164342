package store

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/Elver581/traspasos/internal/db"
	"github.com/Elver581/traspasos/internal/model"
	"github.com/Elver581/traspasos/internal/transfer"
)

func TestCreateTransferPending(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	product, _ := CreateProduct(ctx, database, "Cable", "CAB-1", "")
	from, _ := CreateBranch(ctx, database, "Centro", "CEN", "")
	to, _ := CreateBranch(ctx, database, "Norte", "NOR", "")
	AddStock(ctx, database, product.ID, from.ID, 10)

	created, err := CreateTransfer(ctx, database, model.CreateTransferRequest{
		ProductID:    product.ID,
		FromBranchID: from.ID,
		ToBranchID:   to.ID,
		Quantity:     3,
		Notes:        "restock",
	}, nil)
	if err != nil {
		t.Fatalf("CreateTransfer: %v", err)
	}

	if created.Status != string(transfer.StatusPending) {
		t.Errorf("expected pending, got %s", created.Status)
	}
	if !strings.HasPrefix(created.Reference, "TR-") || len(created.Reference) != 11 {
		t.Errorf("unexpected reference %q", created.Reference)
	}
	if created.ProductName != "Cable" || created.FromBranchName != "Centro" || created.ToBranchName != "Norte" {
		t.Errorf("joined names missing: %+v", created)
	}

	// A pending transfer reserves nothing.
	stock, _ := GetStock(ctx, database, product.ID, from.ID)
	if stock != 10 {
		t.Errorf("source stock changed on create: %d", stock)
	}
	stock, _ = GetStock(ctx, database, product.ID, to.ID)
	if stock != 0 {
		t.Errorf("destination stock changed on create: %d", stock)
	}
}

func TestCreateTransferInsufficientStock(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	product, _ := CreateProduct(ctx, database, "Cable", "CAB-1", "")
	from, _ := CreateBranch(ctx, database, "Centro", "CEN", "")
	to, _ := CreateBranch(ctx, database, "Norte", "NOR", "")
	AddStock(ctx, database, product.ID, from.ID, 5)

	_, err := CreateTransfer(ctx, database, model.CreateTransferRequest{
		ProductID:    product.ID,
		FromBranchID: from.ID,
		ToBranchID:   to.ID,
		Quantity:     6,
	}, nil)
	if !errors.Is(err, transfer.ErrInsufficientStock) {
		t.Errorf("expected ErrInsufficientStock, got %v", err)
	}

	// Quantity equal to the available stock is fine.
	if _, err := CreateTransfer(ctx, database, model.CreateTransferRequest{
		ProductID:    product.ID,
		FromBranchID: from.ID,
		ToBranchID:   to.ID,
		Quantity:     5,
	}, nil); err != nil {
		t.Errorf("create at stock limit: %v", err)
	}
}

func TestCreateTransferSameBranch(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	product, _ := CreateProduct(ctx, database, "Cable", "CAB-1", "")
	branch, _ := CreateBranch(ctx, database, "Centro", "CEN", "")
	AddStock(ctx, database, product.ID, branch.ID, 5)

	_, err := CreateTransfer(ctx, database, model.CreateTransferRequest{
		ProductID:    product.ID,
		FromBranchID: branch.ID,
		ToBranchID:   branch.ID,
		Quantity:     1,
	}, nil)
	if !errors.Is(err, transfer.ErrSameBranch) {
		t.Errorf("expected ErrSameBranch, got %v", err)
	}
}

func TestCreateTransferInactiveBranch(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	product, _ := CreateProduct(ctx, database, "Cable", "CAB-1", "")
	from, _ := CreateBranch(ctx, database, "Centro", "CEN", "")
	to, _ := CreateBranch(ctx, database, "Norte", "NOR", "")
	AddStock(ctx, database, product.ID, from.ID, 5)
	UpdateBranch(ctx, database, to.ID, "Norte", "", false)

	_, err := CreateTransfer(ctx, database, model.CreateTransferRequest{
		ProductID:    product.ID,
		FromBranchID: from.ID,
		ToBranchID:   to.ID,
		Quantity:     1,
	}, nil)
	if err == nil {
		t.Error("expected error for inactive destination branch")
	}
}

func TestTransferApproveAndComplete(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	product, _ := CreateProduct(ctx, database, "Cable", "CAB-1", "")
	from, _ := CreateBranch(ctx, database, "Centro", "CEN", "")
	to, _ := CreateBranch(ctx, database, "Norte", "NOR", "")
	AddStock(ctx, database, product.ID, from.ID, 10)

	created, err := CreateTransfer(ctx, database, model.CreateTransferRequest{
		ProductID:    product.ID,
		FromBranchID: from.ID,
		ToBranchID:   to.ID,
		Quantity:     4,
	}, nil)
	if err != nil {
		t.Fatalf("CreateTransfer: %v", err)
	}

	approved, err := ApplyTransferAction(ctx, database, created.ID, transfer.ActionApprove, "")
	if err != nil {
		t.Fatalf("approve: %v", err)
	}
	if approved.Status != string(transfer.StatusApproved) {
		t.Errorf("expected approved, got %s", approved.Status)
	}

	// Approval alone moves nothing.
	stock, _ := GetStock(ctx, database, product.ID, from.ID)
	if stock != 10 {
		t.Errorf("source stock changed on approve: %d", stock)
	}

	completed, err := ApplyTransferAction(ctx, database, created.ID, transfer.ActionComplete, "")
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if completed.Status != string(transfer.StatusCompleted) {
		t.Errorf("expected completed, got %s", completed.Status)
	}

	stock, _ = GetStock(ctx, database, product.ID, from.ID)
	if stock != 6 {
		t.Errorf("expected source stock 6, got %d", stock)
	}
	stock, _ = GetStock(ctx, database, product.ID, to.ID)
	if stock != 4 {
		t.Errorf("expected destination stock 4, got %d", stock)
	}
}

func TestTransferCompleteRemovesZeroStock(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	product, _ := CreateProduct(ctx, database, "Cable", "CAB-1", "")
	from, _ := CreateBranch(ctx, database, "Centro", "CEN", "")
	to, _ := CreateBranch(ctx, database, "Norte", "NOR", "")
	AddStock(ctx, database, product.ID, from.ID, 5)

	created, _ := CreateTransfer(ctx, database, model.CreateTransferRequest{
		ProductID:    product.ID,
		FromBranchID: from.ID,
		ToBranchID:   to.ID,
		Quantity:     5,
	}, nil)
	ApplyTransferAction(ctx, database, created.ID, transfer.ActionApprove, "")
	if _, err := ApplyTransferAction(ctx, database, created.ID, transfer.ActionComplete, ""); err != nil {
		t.Fatalf("complete: %v", err)
	}

	var count int
	database.QueryRow(`SELECT COUNT(*) FROM stock WHERE product_id = ? AND branch_id = ?`,
		product.ID, from.ID).Scan(&count)
	if count != 0 {
		t.Error("zero-quantity stock row should be removed")
	}
}

func TestTransferReject(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	product, _ := CreateProduct(ctx, database, "Cable", "CAB-1", "")
	from, _ := CreateBranch(ctx, database, "Centro", "CEN", "")
	to, _ := CreateBranch(ctx, database, "Norte", "NOR", "")
	AddStock(ctx, database, product.ID, from.ID, 5)

	created, _ := CreateTransfer(ctx, database, model.CreateTransferRequest{
		ProductID:    product.ID,
		FromBranchID: from.ID,
		ToBranchID:   to.ID,
		Quantity:     2,
	}, nil)

	rejected, err := ApplyTransferAction(ctx, database, created.ID, transfer.ActionReject, "wrong branch")
	if err != nil {
		t.Fatalf("reject: %v", err)
	}
	if rejected.Status != string(transfer.StatusRejected) {
		t.Errorf("expected rejected, got %s", rejected.Status)
	}
	if rejected.RejectionReason != "wrong branch" {
		t.Errorf("expected reason stored, got %q", rejected.RejectionReason)
	}

	// Stock untouched.
	stock, _ := GetStock(ctx, database, product.ID, from.ID)
	if stock != 5 {
		t.Errorf("stock changed on reject: %d", stock)
	}
}

func TestTransferRejectEmptyReason(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	product, _ := CreateProduct(ctx, database, "Cable", "CAB-1", "")
	from, _ := CreateBranch(ctx, database, "Centro", "CEN", "")
	to, _ := CreateBranch(ctx, database, "Norte", "NOR", "")
	AddStock(ctx, database, product.ID, from.ID, 5)

	created, _ := CreateTransfer(ctx, database, model.CreateTransferRequest{
		ProductID:    product.ID,
		FromBranchID: from.ID,
		ToBranchID:   to.ID,
		Quantity:     2,
	}, nil)

	rejected, err := ApplyTransferAction(ctx, database, created.ID, transfer.ActionReject, "")
	if err != nil {
		t.Fatalf("reject with empty reason: %v", err)
	}
	if rejected.RejectionReason != "" {
		t.Errorf("expected empty reason, got %q", rejected.RejectionReason)
	}
}

func TestTransferInvalidTransitions(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	product, _ := CreateProduct(ctx, database, "Cable", "CAB-1", "")
	from, _ := CreateBranch(ctx, database, "Centro", "CEN", "")
	to, _ := CreateBranch(ctx, database, "Norte", "NOR", "")
	AddStock(ctx, database, product.ID, from.ID, 5)

	created, _ := CreateTransfer(ctx, database, model.CreateTransferRequest{
		ProductID:    product.ID,
		FromBranchID: from.ID,
		ToBranchID:   to.ID,
		Quantity:     2,
	}, nil)

	// Pending cannot be completed directly.
	if _, err := ApplyTransferAction(ctx, database, created.ID, transfer.ActionComplete, ""); !errors.Is(err, transfer.ErrInvalidTransition) {
		t.Errorf("complete on pending: expected ErrInvalidTransition, got %v", err)
	}

	ApplyTransferAction(ctx, database, created.ID, transfer.ActionApprove, "")

	// Approved cannot be approved or rejected again.
	if _, err := ApplyTransferAction(ctx, database, created.ID, transfer.ActionApprove, ""); !errors.Is(err, transfer.ErrInvalidTransition) {
		t.Errorf("approve on approved: expected ErrInvalidTransition, got %v", err)
	}
	if _, err := ApplyTransferAction(ctx, database, created.ID, transfer.ActionReject, ""); !errors.Is(err, transfer.ErrInvalidTransition) {
		t.Errorf("reject on approved: expected ErrInvalidTransition, got %v", err)
	}

	ApplyTransferAction(ctx, database, created.ID, transfer.ActionComplete, "")

	// Completed is terminal.
	if _, err := ApplyTransferAction(ctx, database, created.ID, transfer.ActionComplete, ""); !errors.Is(err, transfer.ErrInvalidTransition) {
		t.Errorf("complete on completed: expected ErrInvalidTransition, got %v", err)
	}
}

func TestTransferCompleteAfterStockDrop(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	product, _ := CreateProduct(ctx, database, "Cable", "CAB-1", "")
	from, _ := CreateBranch(ctx, database, "Centro", "CEN", "")
	to, _ := CreateBranch(ctx, database, "Norte", "NOR", "")
	AddStock(ctx, database, product.ID, from.ID, 5)

	created, _ := CreateTransfer(ctx, database, model.CreateTransferRequest{
		ProductID:    product.ID,
		FromBranchID: from.ID,
		ToBranchID:   to.ID,
		Quantity:     5,
	}, nil)
	ApplyTransferAction(ctx, database, created.ID, transfer.ActionApprove, "")

	// Stock was consumed elsewhere between approval and completion.
	if err := AdjustStock(ctx, database, product.ID, from.ID, -3); err != nil {
		t.Fatalf("AdjustStock: %v", err)
	}

	_, err := ApplyTransferAction(ctx, database, created.ID, transfer.ActionComplete, "")
	if !errors.Is(err, transfer.ErrInsufficientStock) {
		t.Fatalf("expected ErrInsufficientStock, got %v", err)
	}

	// The failed completion leaves the record approved and stock untouched.
	got, _ := GetTransfer(ctx, database, created.ID)
	if got.Status != string(transfer.StatusApproved) {
		t.Errorf("expected approved after failed complete, got %s", got.Status)
	}
	stock, _ := GetStock(ctx, database, product.ID, from.ID)
	if stock != 2 {
		t.Errorf("expected source stock 2, got %d", stock)
	}
}

func TestListTransfersFilters(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	product, _ := CreateProduct(ctx, database, "Cable", "CAB-1", "")
	a, _ := CreateBranch(ctx, database, "Centro", "CEN", "")
	b, _ := CreateBranch(ctx, database, "Norte", "NOR", "")
	c, _ := CreateBranch(ctx, database, "Sur", "SUR", "")
	AddStock(ctx, database, product.ID, a.ID, 10)
	AddStock(ctx, database, product.ID, b.ID, 10)

	first, _ := CreateTransfer(ctx, database, model.CreateTransferRequest{
		ProductID: product.ID, FromBranchID: a.ID, ToBranchID: b.ID, Quantity: 1,
	}, nil)
	CreateTransfer(ctx, database, model.CreateTransferRequest{
		ProductID: product.ID, FromBranchID: b.ID, ToBranchID: c.ID, Quantity: 1,
	}, nil)
	ApplyTransferAction(ctx, database, first.ID, transfer.ActionApprove, "")

	all, err := ListTransfers(ctx, database, "", 0)
	if err != nil {
		t.Fatalf("ListTransfers: %v", err)
	}
	if len(all) != 2 {
		t.Errorf("expected 2 transfers, got %d", len(all))
	}

	pending, _ := ListTransfers(ctx, database, string(transfer.StatusPending), 0)
	if len(pending) != 1 {
		t.Errorf("expected 1 pending transfer, got %d", len(pending))
	}

	// branch filter matches either side.
	forA, _ := ListTransfers(ctx, database, "", a.ID)
	if len(forA) != 1 {
		t.Errorf("expected 1 transfer for branch A, got %d", len(forA))
	}
	forB, _ := ListTransfers(ctx, database, "", b.ID)
	if len(forB) != 2 {
		t.Errorf("expected 2 transfers for branch B, got %d", len(forB))
	}
}

func TestApplyTransferActionNotFound(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	got, err := ApplyTransferAction(ctx, database, 999, transfer.ActionApprove, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != nil {
		t.Errorf("expected nil for missing transfer, got %+v", got)
	}
}
