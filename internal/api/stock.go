package api

import (
	"database/sql"
	"net/http"

	"github.com/Elver581/traspasos/internal/model"
	"github.com/Elver581/traspasos/internal/store"
)

// StockHandler handles stock endpoints.
type StockHandler struct {
	DB *sql.DB
}

type addStockRequest struct {
	ProductID int64 `json:"product_id"`
	BranchID  int64 `json:"branch_id"`
	Quantity  int   `json:"quantity"`
}

type adjustStockRequest struct {
	ProductID int64 `json:"product_id"`
	BranchID  int64 `json:"branch_id"`
	Delta     int   `json:"delta"`
}

// List handles GET /api/stock.
func (h *StockHandler) List(w http.ResponseWriter, r *http.Request) {
	stock, err := store.ListStock(r.Context(), h.DB)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to list stock")
		return
	}
	if stock == nil {
		stock = []model.ProductStockEntry{}
	}
	jsonResponse(w, http.StatusOK, stock)
}

// Add handles POST /api/stock.
func (h *StockHandler) Add(w http.ResponseWriter, r *http.Request) {
	var req addStockRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.ProductID <= 0 || req.BranchID <= 0 || req.Quantity <= 0 {
		jsonError(w, http.StatusBadRequest, "product_id, branch_id, and quantity are required and must be positive")
		return
	}

	if err := store.AddStock(r.Context(), h.DB, req.ProductID, req.BranchID, req.Quantity); err != nil {
		jsonError(w, http.StatusBadRequest, err.Error())
		return
	}

	jsonResponse(w, http.StatusOK, map[string]string{"message": "stock added"})
}

// Adjust handles POST /api/stock/adjust.
func (h *StockHandler) Adjust(w http.ResponseWriter, r *http.Request) {
	var req adjustStockRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.ProductID <= 0 || req.BranchID <= 0 || req.Delta == 0 {
		jsonError(w, http.StatusBadRequest, "product_id, branch_id, and non-zero delta required")
		return
	}

	if err := store.AdjustStock(r.Context(), h.DB, req.ProductID, req.BranchID, req.Delta); err != nil {
		jsonError(w, http.StatusBadRequest, err.Error())
		return
	}

	jsonResponse(w, http.StatusOK, map[string]string{"message": "stock adjusted"})
}
