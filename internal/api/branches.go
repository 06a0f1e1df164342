package api

import (
	"database/sql"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/Elver581/traspasos/internal/model"
	"github.com/Elver581/traspasos/internal/store"
)

// BranchesHandler handles branch endpoints.
type BranchesHandler struct {
	DB *sql.DB
}

type createBranchRequest struct {
	Name    string `json:"name"`
	Code    string `json:"code"`
	Address string `json:"address"`
}

type updateBranchRequest struct {
	Name     string `json:"name"`
	Address  string `json:"address"`
	IsActive *bool  `json:"is_active"`
}

// List handles GET /api/branches. Returns active branches by default;
// ?all=true includes deactivated ones.
func (h *BranchesHandler) List(w http.ResponseWriter, r *http.Request) {
	activeOnly := r.URL.Query().Get("all") != "true"
	branches, err := store.ListBranches(r.Context(), h.DB, activeOnly)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to list branches")
		return
	}
	if branches == nil {
		branches = []model.Branch{}
	}
	jsonResponse(w, http.StatusOK, branches)
}

// Create handles POST /api/branches.
func (h *BranchesHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createBranchRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.Name == "" || req.Code == "" {
		jsonError(w, http.StatusBadRequest, "name and code required")
		return
	}

	branch, err := store.CreateBranch(r.Context(), h.DB, req.Name, req.Code, req.Address)
	if err != nil {
		jsonError(w, http.StatusConflict, "branch code already exists")
		return
	}

	claims := GetClaims(r.Context())
	slog.Info("branch created", "user", claims.Username, "branch", branch.Name, "code", branch.Code)
	jsonResponse(w, http.StatusCreated, branch)
}

// Get handles GET /api/branches/{id}.
func (h *BranchesHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid branch id")
		return
	}

	branch, err := store.GetBranch(r.Context(), h.DB, id)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to get branch")
		return
	}
	if branch == nil {
		jsonError(w, http.StatusNotFound, "branch not found")
		return
	}

	jsonResponse(w, http.StatusOK, branch)
}

// Update handles PUT /api/branches/{id}.
func (h *BranchesHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid branch id")
		return
	}

	var req updateBranchRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.Name == "" {
		jsonError(w, http.StatusBadRequest, "name required")
		return
	}

	branch, err := store.GetBranch(r.Context(), h.DB, id)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to get branch")
		return
	}
	if branch == nil {
		jsonError(w, http.StatusNotFound, "branch not found")
		return
	}

	isActive := branch.IsActive
	if req.IsActive != nil {
		isActive = *req.IsActive
	}

	if err := store.UpdateBranch(r.Context(), h.DB, id, req.Name, req.Address, isActive); err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to update branch")
		return
	}

	branch, _ = store.GetBranch(r.Context(), h.DB, id)
	jsonResponse(w, http.StatusOK, branch)
}

// GetStock handles GET /api/branches/{id}/stock. Returns the branch's
// current stock snapshot for every product held there.
func (h *BranchesHandler) GetStock(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid branch id")
		return
	}

	branch, err := store.GetBranch(r.Context(), h.DB, id)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to get branch")
		return
	}
	if branch == nil {
		jsonError(w, http.StatusNotFound, "branch not found")
		return
	}

	stock, err := store.GetBranchStock(r.Context(), h.DB, id)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to get branch stock")
		return
	}
	if stock == nil {
		stock = []model.ProductStockEntry{}
	}
	jsonResponse(w, http.StatusOK, stock)
}
