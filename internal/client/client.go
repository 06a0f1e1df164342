// Package client is an HTTP client for the traspasos API. It satisfies the
// data interfaces of the transfer package, so drafts built on one machine can
// be validated and submitted against a remote server.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/Elver581/traspasos/internal/model"
	"github.com/Elver581/traspasos/internal/transfer"
)

// Client talks to a traspasos server. Call Login (or set Token) before using
// authenticated endpoints.
type Client struct {
	BaseURL    string
	Token      string
	HTTPClient *http.Client
}

// New creates a client for the server at baseURL.
func New(baseURL string) *Client {
	return &Client{
		BaseURL:    baseURL,
		HTTPClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// APIError is a non-2xx response from the server.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("server returned %d: %s", e.Status, e.Message)
}

// do sends a request and decodes the JSON response into out (if non-nil).
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encoding request: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("sending request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var errBody struct {
			Error string `json:"error"`
		}
		json.NewDecoder(resp.Body).Decode(&errBody)
		return &APIError{Status: resp.StatusCode, Message: errBody.Error}
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decoding response: %w", err)
		}
	}
	return nil
}

// Login authenticates and stores the returned token on the client.
func (c *Client) Login(ctx context.Context, username, password string) error {
	var resp struct {
		Token string `json:"token"`
	}
	err := c.do(ctx, http.MethodPost, "/api/auth/login",
		map[string]string{"username": username, "password": password}, &resp)
	if err != nil {
		return err
	}
	c.Token = resp.Token
	return nil
}

// Logout revokes the current token.
func (c *Client) Logout(ctx context.Context) error {
	if err := c.do(ctx, http.MethodPost, "/api/auth/logout", nil, nil); err != nil {
		return err
	}
	c.Token = ""
	return nil
}

// ListActiveBranches returns the branches selectable as transfer endpoints.
func (c *Client) ListActiveBranches(ctx context.Context) ([]model.Branch, error) {
	var branches []model.Branch
	if err := c.do(ctx, http.MethodGet, "/api/branches", nil, &branches); err != nil {
		return nil, err
	}
	return branches, nil
}

// BranchStock fetches the stock snapshot for a branch.
func (c *Client) BranchStock(ctx context.Context, branchID int64) ([]model.ProductStockEntry, error) {
	var entries []model.ProductStockEntry
	path := fmt.Sprintf("/api/branches/%d/stock", branchID)
	if err := c.do(ctx, http.MethodGet, path, nil, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

// SearchProducts searches products by name or SKU, annotated with the stock
// available at the given branch.
func (c *Client) SearchProducts(ctx context.Context, branchID int64, query string, limit, offset int) ([]model.ProductStockEntry, error) {
	params := url.Values{}
	params.Set("branch_id", strconv.FormatInt(branchID, 10))
	if query != "" {
		params.Set("q", query)
	}
	if limit > 0 {
		params.Set("limit", strconv.Itoa(limit))
	}
	if offset > 0 {
		params.Set("offset", strconv.Itoa(offset))
	}

	var entries []model.ProductStockEntry
	if err := c.do(ctx, http.MethodGet, "/api/products/search?"+params.Encode(), nil, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

// CreateTransfer submits one transfer record for creation.
func (c *Client) CreateTransfer(ctx context.Context, req model.CreateTransferRequest) (*model.Transfer, error) {
	var created model.Transfer
	if err := c.do(ctx, http.MethodPost, "/api/transfers", req, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

// ListTransfers lists transfers, optionally filtered by status and branch.
func (c *Client) ListTransfers(ctx context.Context, status string, branchID int64) ([]model.Transfer, error) {
	params := url.Values{}
	if status != "" {
		params.Set("status", status)
	}
	if branchID > 0 {
		params.Set("branch_id", strconv.FormatInt(branchID, 10))
	}

	path := "/api/transfers"
	if len(params) > 0 {
		path += "?" + params.Encode()
	}

	var transfers []model.Transfer
	if err := c.do(ctx, http.MethodGet, path, nil, &transfers); err != nil {
		return nil, err
	}
	return transfers, nil
}

// TransferDetail is a transfer together with the lifecycle actions the
// authenticated user may take on it.
type TransferDetail struct {
	model.Transfer
	Actions []transfer.Action `json:"actions"`
}

// GetTransfer fetches a single transfer with its allowed actions.
func (c *Client) GetTransfer(ctx context.Context, id int64) (*TransferDetail, error) {
	var detail TransferDetail
	path := fmt.Sprintf("/api/transfers/%d", id)
	if err := c.do(ctx, http.MethodGet, path, nil, &detail); err != nil {
		return nil, err
	}
	return &detail, nil
}

// ApproveTransfer moves a pending transfer to approved.
func (c *Client) ApproveTransfer(ctx context.Context, id int64) (*model.Transfer, error) {
	return c.action(ctx, id, "approve", nil)
}

// RejectTransfer moves a pending transfer to rejected. The reason may be empty.
func (c *Client) RejectTransfer(ctx context.Context, id int64, reason string) (*model.Transfer, error) {
	return c.action(ctx, id, "reject", map[string]string{"reason": reason})
}

// CompleteTransfer moves an approved transfer to completed, moving stock.
func (c *Client) CompleteTransfer(ctx context.Context, id int64) (*model.Transfer, error) {
	return c.action(ctx, id, "complete", nil)
}

func (c *Client) action(ctx context.Context, id int64, action string, body any) (*model.Transfer, error) {
	var updated model.Transfer
	path := fmt.Sprintf("/api/transfers/%d/%s", id, action)
	if err := c.do(ctx, http.MethodPost, path, body, &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

// Interface checks.
var (
	_ transfer.StockLister  = (*Client)(nil)
	_ transfer.Searcher     = (*Client)(nil)
	_ transfer.BranchLister = (*Client)(nil)
	_ transfer.Creator      = (*Client)(nil)
)
