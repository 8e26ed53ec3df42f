package protocol

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/catalog-console/console/internal/interfaces"
	"golang.org/x/sync/singleflight"
)

// Products fetches the product list. Concurrent callers share one request,
// which is bounded by the client timeout rather than by any one caller's
// context; each caller still stops waiting when its own ctx is done.
func (c *Client) Products(ctx context.Context) ([]interfaces.Product, error) {
	sharedCtx := context.WithoutCancel(ctx)
	ch := c.products.DoChan(EndpointProducts, func() (interface{}, error) {
		var products []interfaces.Product
		if err := c.doJSON(sharedCtx, http.MethodGet, EndpointProducts, nil, &products); err != nil {
			return nil, err
		}
		return products, nil
	})

	var res singleflight.Result
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res = <-ch:
	}
	if res.Err != nil {
		return nil, res.Err
	}

	shared := res.Val.([]interfaces.Product)
	out := make([]interfaces.Product, len(shared))
	copy(out, shared)
	return out, nil
}

// SaveProduct creates a product
func (c *Client) SaveProduct(ctx context.Context, request interfaces.SaveProductRequest) (*interfaces.SaveProductResponse, error) {
	if strings.TrimSpace(request.ProductName) == "" {
		return nil, fmt.Errorf("product_name cannot be empty")
	}

	var resp interfaces.SaveProductResponse
	if err := c.doJSON(ctx, http.MethodPost, EndpointSaveProduct, request, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// UpdateProduct replaces a product description
func (c *Client) UpdateProduct(ctx context.Context, request interfaces.UpdateProductRequest) (*interfaces.Product, error) {
	if strings.TrimSpace(request.ItemID) == "" {
		return nil, fmt.Errorf("item_id cannot be empty")
	}

	var product interfaces.Product
	if err := c.doJSON(ctx, http.MethodPut, EndpointUpdateProduct, request, &product); err != nil {
		return nil, err
	}
	return &product, nil
}

// Generate submits a generation request. The acknowledgment body is not
// parsed; only the status matters.
func (c *Client) Generate(ctx context.Context, body interface{}) error {
	if body == nil {
		return fmt.Errorf("generation body cannot be nil")
	}
	_, err := c.do(ctx, http.MethodPost, EndpointGenerate, body)
	return err
}

// Status queries the state of a generation request
func (c *Client) Status(ctx context.Context, requestID string) (*interfaces.StatusResponse, error) {
	if strings.TrimSpace(requestID) == "" {
		return nil, fmt.Errorf("requestID cannot be empty")
	}

	var resp interfaces.StatusResponse
	if err := c.doJSON(ctx, http.MethodGet, EndpointStatus+url.PathEscape(requestID), nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}
