package scsb

import (
	"context"
	"encoding/json"
)

// SCSB endpoint paths
const (
	PathSearch           = "/searchService/search"
	PathItemAvailability = "/sharedCollection/itemAvailabilityStatus"
	PathRequestItem      = "/requestItem/requestItem"
)

// API defines the interface for SCSB operations
type API interface {
	// Search runs a search; query holds the SCSB search fields, e.g.
	// {"fieldName": "Barcode", "fieldValue": "33433118106339"}
	Search(ctx context.Context, query map[string]any) (json.RawMessage, error)

	// ItemsAvailability reports the availability of each barcode
	ItemsAvailability(ctx context.Context, barcodes []string) (json.RawMessage, error)

	// RequestItem submits a retrieval request
	RequestItem(ctx context.Context, data any) (json.RawMessage, error)

	// Query POSTs an arbitrary payload to an arbitrary SCSB path
	Query(ctx context.Context, path string, payload any) (json.RawMessage, error)
}

var _ API = (*Client)(nil)

// Search performs a search against the SCSB API. The query is sent as is.
func (c *Client) Search(ctx context.Context, query map[string]any) (json.RawMessage, error) {
	return c.execute(ctx, "search", PathSearch, query)
}

// ItemsAvailability gets an item availability report for the given barcodes.
// A nil slice sends no barcodes key and is rejected as an empty payload; an
// empty non-nil slice is sent as [].
func (c *Client) ItemsAvailability(ctx context.Context, barcodes []string) (json.RawMessage, error) {
	payload := map[string]any{}
	if barcodes != nil {
		payload["barcodes"] = barcodes
	}
	return c.execute(ctx, "items_availability", PathItemAvailability, payload)
}

// RequestItem requests an item through the SCSB API. data is usually a
// RequestItemRequest but any JSON object is passed through unchanged.
func (c *Client) RequestItem(ctx context.Context, data any) (json.RawMessage, error) {
	return c.execute(ctx, "request_item", PathRequestItem, data)
}
