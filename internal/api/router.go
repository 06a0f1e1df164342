package api

import (
	"database/sql"
	"net/http"

	"github.com/Elver581/traspasos/internal/model"
)

// NewRouter creates the API router with all endpoints registered.
func NewRouter(db *sql.DB, jwtSecret string) http.Handler {
	mux := http.NewServeMux()

	authHandler := &AuthHandler{DB: db, JWTSecret: jwtSecret}
	usersHandler := &UsersHandler{DB: db}
	branchesHandler := &BranchesHandler{DB: db}
	productsHandler := &ProductsHandler{DB: db}
	stockHandler := &StockHandler{DB: db}
	transfersHandler := &TransfersHandler{DB: db}

	authMW := AuthMiddleware(jwtSecret, db)
	requireAdmin := RequireRole(model.RoleAdmin)
	requireManager := RequireRole(model.RoleManager)

	// Public: login.
	mux.HandleFunc("POST /api/auth/login", authHandler.Login)

	// Authenticated routes.
	mux.Handle("PUT /api/auth/password", authMW(http.HandlerFunc(authHandler.ChangePassword)))
	mux.Handle("POST /api/auth/logout", authMW(http.HandlerFunc(authHandler.Logout)))

	// Users (admin only).
	mux.Handle("GET /api/users", authMW(requireAdmin(http.HandlerFunc(usersHandler.List))))
	mux.Handle("POST /api/users", authMW(requireAdmin(http.HandlerFunc(usersHandler.Create))))
	mux.Handle("GET /api/users/{id}", authMW(requireAdmin(http.HandlerFunc(usersHandler.Get))))
	mux.Handle("PUT /api/users/{id}", authMW(requireAdmin(http.HandlerFunc(usersHandler.Update))))
	mux.Handle("PUT /api/users/{id}/password", authMW(requireAdmin(http.HandlerFunc(usersHandler.ResetPassword))))
	mux.Handle("DELETE /api/users/{id}", authMW(requireAdmin(http.HandlerFunc(usersHandler.Delete))))

	// Branches: read (all roles), write (manager+).
	mux.Handle("GET /api/branches", authMW(http.HandlerFunc(branchesHandler.List)))
	mux.Handle("POST /api/branches", authMW(requireManager(http.HandlerFunc(branchesHandler.Create))))
	mux.Handle("GET /api/branches/{id}", authMW(http.HandlerFunc(branchesHandler.Get)))
	mux.Handle("PUT /api/branches/{id}", authMW(requireManager(http.HandlerFunc(branchesHandler.Update))))
	mux.Handle("GET /api/branches/{id}/stock", authMW(http.HandlerFunc(branchesHandler.GetStock)))

	// Products: read and search (all roles), write (manager+).
	mux.Handle("GET /api/products", authMW(http.HandlerFunc(productsHandler.List)))
	mux.Handle("GET /api/products/search", authMW(http.HandlerFunc(productsHandler.Search)))
	mux.Handle("POST /api/products", authMW(requireManager(http.HandlerFunc(productsHandler.Create))))
	mux.Handle("GET /api/products/{id}", authMW(http.HandlerFunc(productsHandler.Get)))
	mux.Handle("PUT /api/products/{id}", authMW(requireManager(http.HandlerFunc(productsHandler.Update))))
	mux.Handle("DELETE /api/products/{id}", authMW(requireManager(http.HandlerFunc(productsHandler.Delete))))
	mux.Handle("PUT /api/products/{id}/image", authMW(requireManager(http.HandlerFunc(productsHandler.UploadImage))))
	mux.Handle("GET /api/products/{id}/image", authMW(http.HandlerFunc(productsHandler.GetImage)))

	// Stock: read (all), write (manager+).
	mux.Handle("GET /api/stock", authMW(http.HandlerFunc(stockHandler.List)))
	mux.Handle("POST /api/stock", authMW(requireManager(http.HandlerFunc(stockHandler.Add))))
	mux.Handle("POST /api/stock/adjust", authMW(requireManager(http.HandlerFunc(stockHandler.Adjust))))

	// Transfers: create and read (all roles), lifecycle actions (manager+).
	mux.Handle("POST /api/transfers", authMW(http.HandlerFunc(transfersHandler.Create)))
	mux.Handle("GET /api/transfers", authMW(http.HandlerFunc(transfersHandler.List)))
	mux.Handle("GET /api/transfers/{id}", authMW(http.HandlerFunc(transfersHandler.Get)))
	mux.Handle("POST /api/transfers/{id}/approve", authMW(requireManager(http.HandlerFunc(transfersHandler.Approve))))
	mux.Handle("POST /api/transfers/{id}/reject", authMW(requireManager(http.HandlerFunc(transfersHandler.Reject))))
	mux.Handle("POST /api/transfers/{id}/complete", authMW(requireManager(http.HandlerFunc(transfersHandler.Complete))))

	return mux
}
