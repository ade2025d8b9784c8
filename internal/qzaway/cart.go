package qzaway

import (
	"context"
	"net/http"

	"github.com/qzaway/foodcourt/internal/domain"
)

// GetCart fetches the authoritative cart of a user in a mall
func (c *Client) GetCart(ctx context.Context, userID, mallID string) (*domain.Cart, error) {
	var cart domain.Cart
	if err := c.Execute(ctx, http.MethodGet, path(CartPath, userID, mallID), nil, nil, &cart); err != nil {
		return nil, err
	}
	if cart.Items == nil {
		cart.Items = []domain.CartItem{}
	}
	return &cart, nil
}

// AddToCart adds a menu item. The returned cart has nil Items when the
// backend did not echo the fresh list.
func (c *Client) AddToCart(ctx context.Context, req domain.AddToCartRequest) (*domain.Cart, error) {
	var cart domain.Cart
	if err := c.Execute(ctx, http.MethodPost, CartAddPath, nil, req, &cart); err != nil {
		return nil, err
	}
	return &cart, nil
}

// UpdateCartItem sets the quantity of a cart row
func (c *Client) UpdateCartItem(ctx context.Context, cartItemID string, req domain.UpdateCartItemRequest) (*domain.Cart, error) {
	var cart domain.Cart
	if err := c.Execute(ctx, http.MethodPatch, path(CartItemPath, cartItemID), nil, req, &cart); err != nil {
		return nil, notFoundAs(err, "cart item", cartItemID)
	}
	return &cart, nil
}

// RemoveCartItem deletes a cart row
func (c *Client) RemoveCartItem(ctx context.Context, cartItemID string) (*domain.Cart, error) {
	var cart domain.Cart
	if err := c.Execute(ctx, http.MethodDelete, path(CartItemPath, cartItemID), nil, nil, &cart); err != nil {
		return nil, notFoundAs(err, "cart item", cartItemID)
	}
	return &cart, nil
}
