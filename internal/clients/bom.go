package clients

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"example.com/factory/services/fulfillment/internal/model"
)

// BOMClient calls the master-data service for bill-of-materials lookups
type BOMClient struct {
	http httpClient
}

// NewBOMClient creates a BOM resolver client
func NewBOMClient(baseURL string, timeout time.Duration) *BOMClient {
	return &BOMClient{http: newHTTPClient(baseURL, timeout)}
}

type componentLine struct {
	ComponentID int64 `json:"component_id"`
	Quantity    int   `json:"quantity"`
}

type explosionResponse struct {
	Components []componentLine `json:"components"`
}

type nameResponse struct {
	Name string `json:"name"`
}

// ExplodeProduct returns the module demand to build qty units of a product
func (c *BOMClient) ExplodeProduct(ctx context.Context, productID int64, qty int) (map[int64]int, error) {
	path := fmt.Sprintf("/api/v1/bom/products/%d/modules?quantity=%d", productID, qty)
	return c.explode(ctx, path)
}

// ExplodeModule returns the part demand to build qty units of a module
func (c *BOMClient) ExplodeModule(ctx context.Context, moduleID int64, qty int) (map[int64]int, error) {
	path := fmt.Sprintf("/api/v1/bom/modules/%d/parts?quantity=%d", moduleID, qty)
	return c.explode(ctx, path)
}

func (c *BOMClient) explode(ctx context.Context, path string) (map[int64]int, error) {
	var resp explosionResponse
	if err := c.http.doJSON(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}
	result := make(map[int64]int, len(resp.Components))
	for _, line := range resp.Components {
		result[line.ComponentID] += line.Quantity
	}
	return result, nil
}

// LookupName resolves the display name of an item
func (c *BOMClient) LookupName(ctx context.Context, itemType model.ItemType, itemID int64) (string, error) {
	var resp nameResponse
	path := fmt.Sprintf("/api/v1/items/%s/%d/name", itemType, itemID)
	if err := c.http.doJSON(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return "", err
	}
	return resp.Name, nil
}
