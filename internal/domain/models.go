package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// RestaurantRef is the short restaurant reference embedded in cart and search rows
type RestaurantRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// CartItem represents one row of a mall cart
type CartItem struct {
	CartItemID   string           `json:"cartItemId"`
	MenuItemID   string           `json:"menuItemId"`
	Name         string           `json:"name"`
	Price        decimal.Decimal  `json:"price"`
	Quantity     int              `json:"quantity"`
	LineTotal    *decimal.Decimal `json:"lineTotal,omitempty"`
	IsOptimistic bool             `json:"isOptimistic"`
	Restaurant   *RestaurantRef   `json:"restaurant,omitempty"`
}

// CartSummary is the server-derived part of the cart totals
type CartSummary struct {
	Subtotal decimal.Decimal `json:"subtotal"`
}

// Cart is the backend's view of a (user, mall) cart.
// Items is nil when a mutation response did not carry a fresh list.
type Cart struct {
	Items   []CartItem   `json:"items"`
	Summary *CartSummary `json:"summary"`
}

// HasItems reports whether the response carried an item list
func (c *Cart) HasItems() bool {
	return c != nil && c.Items != nil
}

// AddToCartRequest is the body of POST /cart/add
type AddToCartRequest struct {
	UserID     string `json:"userId"`
	MallID     string `json:"mallId"`
	MenuItemID string `json:"menuItemId"`
	Quantity   int    `json:"quantity"`
}

// UpdateCartItemRequest is the body of PATCH /cart/item/{id}
type UpdateCartItemRequest struct {
	Quantity int `json:"quantity"`
}

// PlaceOrderRequest is the body of POST /orders/place
type PlaceOrderRequest struct {
	UserID string `json:"userId"`
	MallID string `json:"mallId"`
}

// Order is an immutable order snapshot created by the backend
type Order struct {
	ID          string          `json:"id"`
	CreatedAt   time.Time       `json:"createdAt"`
	Items       []OrderItem     `json:"items"`
	Subtotal    decimal.Decimal `json:"subtotal"`
	FoodGST     decimal.Decimal `json:"foodGst"`
	PlatformGST decimal.Decimal `json:"platformGst"`
	PlatformFee decimal.Decimal `json:"platformFee"`
	TotalAmount decimal.Decimal `json:"totalAmount"`
}

// OrderItem is a priced line frozen at order time
type OrderItem struct {
	ID            string           `json:"id"`
	NameSnapshot  string           `json:"nameSnapshot"`
	PriceSnapshot decimal.Decimal  `json:"priceSnapshot"`
	Quantity      int              `json:"quantity"`
	LineTotal     *decimal.Decimal `json:"lineTotal,omitempty"`
}

// Total returns the line total, deriving it from the price snapshot when absent
func (i OrderItem) Total() decimal.Decimal {
	if i.LineTotal != nil && !i.LineTotal.IsZero() {
		return *i.LineTotal
	}
	return i.PriceSnapshot.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// PageMeta describes a paginated listing
type PageMeta struct {
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	Total      int `json:"total"`
	TotalPages int `json:"totalPages"`
}

// OrderPage is one page of order history
type OrderPage struct {
	Data []Order   `json:"data"`
	Meta *PageMeta `json:"meta"`
}

// Mall represents a food court
type Mall struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Location string `json:"location,omitempty"`
}

// Restaurant represents a restaurant inside a mall
type Restaurant struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	IsActive    bool   `json:"isActive"`
}

// RestaurantPage is one page of a mall's restaurants
type RestaurantPage struct {
	Data []Restaurant `json:"data"`
	Meta *PageMeta    `json:"meta,omitempty"`
}

// MenuItem is a dish as listed on a menu or in search results
type MenuItem struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Price       decimal.Decimal `json:"price"`
	IsVeg       bool            `json:"isVeg"`
	IsSugarFree bool            `json:"isSugarFree"`
	IsAvailable bool            `json:"isAvailable"`
	Restaurant  *RestaurantRef  `json:"restaurant,omitempty"`
}

// MenuCategory groups menu items
type MenuCategory struct {
	CategoryID   string     `json:"categoryId"`
	CategoryName string     `json:"categoryName"`
	Items        []MenuItem `json:"items"`
}

// Menu is a restaurant's categorised menu
type Menu struct {
	Restaurant *Restaurant    `json:"restaurant"`
	Data       []MenuCategory `json:"data"`
	Meta       *PageMeta      `json:"meta,omitempty"`
}

// SearchPage is one page of dish search results
type SearchPage struct {
	Data []MenuItem `json:"data"`
	Meta *PageMeta  `json:"meta,omitempty"`
}
