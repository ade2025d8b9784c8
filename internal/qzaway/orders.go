package qzaway

import (
	"context"
	"net/http"

	"github.com/qzaway/foodcourt/internal/domain"
)

// PlaceOrder turns the user's mall cart into an order
func (c *Client) PlaceOrder(ctx context.Context, req domain.PlaceOrderRequest) (*domain.Order, error) {
	var order domain.Order
	if err := c.Execute(ctx, http.MethodPost, PlaceOrderPath, nil, req, &order); err != nil {
		return nil, err
	}
	return &order, nil
}

// GetOrders lists a user's past orders, newest first
func (c *Client) GetOrders(ctx context.Context, userID string, page, limit int) (*domain.OrderPage, error) {
	query := pageQuery(page, limit, defaultPageSize)

	var result domain.OrderPage
	if err := c.Execute(ctx, http.MethodGet, path(OrdersPath, userID), query, nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Reorder copies a past order's items into the user's cart
func (c *Client) Reorder(ctx context.Context, orderID string) error {
	if err := c.Execute(ctx, http.MethodPost, path(ReorderPath, orderID), nil, nil, nil); err != nil {
		return notFoundAs(err, "order", orderID)
	}
	return nil
}
