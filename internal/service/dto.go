package service

import (
	"context"

	"github.com/qzaway/foodcourt/internal/domain"
	"github.com/qzaway/foodcourt/internal/qzaway"
)

// CartState is an immutable snapshot of the engine's observable state
type CartState struct {
	Version    uint64              `json:"version"`
	MallID     string              `json:"mallId"`
	Items      []domain.CartItem   `json:"items"`
	Summary    *domain.CartSummary `json:"summary"`
	Financials domain.Financials   `json:"financials"`
	ItemCount  int                 `json:"itemCount"`
	Loading    bool                `json:"loading"`
	Syncing    bool                `json:"syncing"`
}

// CartAPI is the part of the backend the cart engine talks to
type CartAPI interface {
	GetCart(ctx context.Context, userID, mallID string) (*domain.Cart, error)
	AddToCart(ctx context.Context, req domain.AddToCartRequest) (*domain.Cart, error)
	UpdateCartItem(ctx context.Context, cartItemID string, req domain.UpdateCartItemRequest) (*domain.Cart, error)
	RemoveCartItem(ctx context.Context, cartItemID string) (*domain.Cart, error)
	PlaceOrder(ctx context.Context, req domain.PlaceOrderRequest) (*domain.Order, error)
}

// OrdersAPI is the part of the backend the order history talks to
type OrdersAPI interface {
	GetOrders(ctx context.Context, userID string, page, limit int) (*domain.OrderPage, error)
	Reorder(ctx context.Context, orderID string) error
}

// CatalogAPI is the part of the backend the catalog talks to
type CatalogAPI interface {
	GetMalls(ctx context.Context) ([]domain.Mall, error)
	GetRestaurants(ctx context.Context, mallID string, page, limit int) (*domain.RestaurantPage, error)
	GetMenu(ctx context.Context, restaurantID string, opts qzaway.MenuOptions) (*domain.Menu, error)
	SearchFood(ctx context.Context, mallID, q string, opts qzaway.SearchOptions) (*domain.SearchPage, error)
}

// IdentitySource yields the anonymous user id, or "" before storage is ready
type IdentitySource interface {
	UserID(ctx context.Context) string
}

// CartEngine is the handle UI surfaces use to read and mutate the cart
type CartEngine interface {
	SetActiveMall(ctx context.Context, mallID string)
	Fetch(ctx context.Context, mallID string, silent bool)
	Refresh(ctx context.Context)
	AddItem(ctx context.Context, menuItemID string, quantity int) error
	UpdateItem(ctx context.Context, cartItemID string, quantity int) error
	RemoveItem(ctx context.Context, cartItemID string) error
	PlaceOrder(ctx context.Context) (*domain.Order, error)
	State() CartState
	Subscribe(fn func(CartState)) (cancel func())
}

// OrderHistory is the handle UI surfaces use for past orders
type OrderHistory interface {
	Fetch(ctx context.Context, page int) *domain.OrderPage
	Reorder(ctx context.Context, orderID string) error
}

// Catalog is the handle UI surfaces use to browse malls and menus
type Catalog interface {
	Malls(ctx context.Context) []domain.Mall
	Restaurants(ctx context.Context, mallID string, page int) *domain.RestaurantPage
	Menu(ctx context.Context, restaurantID string, opts qzaway.MenuOptions) *domain.Menu
	NewSearcher() *Searcher
}
