package clients

import (
	"context"
	"fmt"
	"net/http"
	"time"
)

// AdjustRequest is a generic signed stock delta
type AdjustRequest struct {
	WorkstationID int   `json:"workstation_id"`
	ItemID        int64 `json:"item_id"`
	Delta         int   `json:"delta"`
}

// InventoryClient calls the remote inventory service. Every method returns
// (false, err) on transport failure; the caller decides what unavailability
// means.
type InventoryClient struct {
	http httpClient
}

// NewInventoryClient creates an inventory client
func NewInventoryClient(baseURL string, timeout time.Duration) *InventoryClient {
	return &InventoryClient{http: newHTTPClient(baseURL, timeout)}
}

type stockResponse struct {
	Available bool `json:"available"`
}

type mutationResponse struct {
	Success bool `json:"success"`
}

type stockMutation struct {
	WorkstationID int   `json:"workstation_id"`
	ItemID        int64 `json:"item_id"`
	Quantity      int   `json:"quantity"`
}

// CheckStock reports whether the workstation holds at least qty of the item
func (c *InventoryClient) CheckStock(ctx context.Context, workstationID int, itemID int64, qty int) (bool, error) {
	var resp stockResponse
	path := fmt.Sprintf("/api/v1/inventory/%d/%d?quantity=%d", workstationID, itemID, qty)
	if err := c.http.doJSON(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return false, err
	}
	return resp.Available, nil
}

// Debit removes stock from a workstation. A false return means nothing was
// debited.
func (c *InventoryClient) Debit(ctx context.Context, workstationID int, itemID int64, qty int) (bool, error) {
	var resp mutationResponse
	req := stockMutation{WorkstationID: workstationID, ItemID: itemID, Quantity: qty}
	if err := c.http.doJSON(ctx, http.MethodPost, "/api/v1/inventory/debit", req, &resp); err != nil {
		return false, err
	}
	return resp.Success, nil
}

// Credit adds stock to a workstation
func (c *InventoryClient) Credit(ctx context.Context, workstationID int, itemID int64, qty int) (bool, error) {
	var resp mutationResponse
	req := stockMutation{WorkstationID: workstationID, ItemID: itemID, Quantity: qty}
	if err := c.http.doJSON(ctx, http.MethodPost, "/api/v1/inventory/credit", req, &resp); err != nil {
		return false, err
	}
	return resp.Success, nil
}

// Adjust applies a generic signed delta
func (c *InventoryClient) Adjust(ctx context.Context, req AdjustRequest) (bool, error) {
	var resp mutationResponse
	if err := c.http.doJSON(ctx, http.MethodPost, "/api/v1/inventory/adjust", req, &resp); err != nil {
		return false, err
	}
	return resp.Success, nil
}
