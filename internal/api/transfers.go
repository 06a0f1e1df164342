package api

import (
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/Elver581/traspasos/internal/model"
	"github.com/Elver581/traspasos/internal/store"
	"github.com/Elver581/traspasos/internal/transfer"
)

// TransfersHandler handles transfer endpoints.
type TransfersHandler struct {
	DB *sql.DB
}

type rejectRequest struct {
	Reason string `json:"reason"`
}

// transferResponse pairs a transfer with the lifecycle actions the
// requesting user may take on it.
type transferResponse struct {
	model.Transfer
	Actions []transfer.Action `json:"actions"`
}

// Create handles POST /api/transfers.
func (h *TransfersHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req model.CreateTransferRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.ProductID <= 0 || req.FromBranchID <= 0 || req.ToBranchID <= 0 || req.Quantity <= 0 {
		jsonError(w, http.StatusBadRequest, "product_id, from_branch_id, to_branch_id, and quantity are required and must be positive")
		return
	}

	claims := GetClaims(r.Context())
	var userID *int64
	if claims != nil {
		userID = &claims.UserID
	}

	created, err := store.CreateTransfer(r.Context(), h.DB, req, userID)
	if err != nil {
		jsonError(w, http.StatusBadRequest, err.Error())
		return
	}

	slog.Info("transfer created", "user", claims.Username,
		"reference", created.Reference, "product", created.ProductName,
		"quantity", created.Quantity, "from", created.FromBranchName, "to", created.ToBranchName)
	jsonResponse(w, http.StatusCreated, created)
}

// List handles GET /api/transfers. Filters by ?status= and ?branch_id=
// (matching either side of the transfer).
func (h *TransfersHandler) List(w http.ResponseWriter, r *http.Request) {
	status := r.URL.Query().Get("status")
	if status != "" && !transfer.ValidStatus(status) {
		jsonError(w, http.StatusBadRequest, "invalid status")
		return
	}

	var branchID int64
	if v := r.URL.Query().Get("branch_id"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			jsonError(w, http.StatusBadRequest, "invalid branch_id")
			return
		}
		branchID = id
	}

	transfers, err := store.ListTransfers(r.Context(), h.DB, status, branchID)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to list transfers")
		return
	}
	if transfers == nil {
		transfers = []model.Transfer{}
	}
	jsonResponse(w, http.StatusOK, transfers)
}

// Get handles GET /api/transfers/{id}.
func (h *TransfersHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid transfer id")
		return
	}

	t, err := store.GetTransfer(r.Context(), h.DB, id)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to get transfer")
		return
	}
	if t == nil {
		jsonError(w, http.StatusNotFound, "transfer not found")
		return
	}

	claims := GetClaims(r.Context())
	actions := transfer.AllowedActionsFor(claims.Role, transfer.Status(t.Status))
	if actions == nil {
		actions = []transfer.Action{}
	}
	jsonResponse(w, http.StatusOK, transferResponse{Transfer: *t, Actions: actions})
}

// Approve handles POST /api/transfers/{id}/approve.
func (h *TransfersHandler) Approve(w http.ResponseWriter, r *http.Request) {
	h.act(w, r, transfer.ActionApprove, "")
}

// Reject handles POST /api/transfers/{id}/reject. The reason is
// optional and stored verbatim.
func (h *TransfersHandler) Reject(w http.ResponseWriter, r *http.Request) {
	var req rejectRequest
	if r.Body != nil && r.ContentLength != 0 {
		if err := decodeJSON(r, &req); err != nil {
			jsonError(w, http.StatusBadRequest, "invalid request body")
			return
		}
	}
	h.act(w, r, transfer.ActionReject, req.Reason)
}

// Complete handles POST /api/transfers/{id}/complete.
func (h *TransfersHandler) Complete(w http.ResponseWriter, r *http.Request) {
	h.act(w, r, transfer.ActionComplete, "")
}

func (h *TransfersHandler) act(w http.ResponseWriter, r *http.Request, action transfer.Action, reason string) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid transfer id")
		return
	}

	t, err := store.ApplyTransferAction(r.Context(), h.DB, id, action, reason)
	if err != nil {
		switch {
		case errors.Is(err, transfer.ErrInvalidTransition):
			jsonError(w, http.StatusConflict, err.Error())
		case errors.Is(err, transfer.ErrInsufficientStock):
			jsonError(w, http.StatusConflict, err.Error())
		default:
			jsonError(w, http.StatusBadRequest, err.Error())
		}
		return
	}
	if t == nil {
		jsonError(w, http.StatusNotFound, "transfer not found")
		return
	}

	claims := GetClaims(r.Context())
	slog.Info("transfer action applied", "user", claims.Username,
		"reference", t.Reference, "action", action, "status", t.Status)
	jsonResponse(w, http.StatusOK, t)
}
