package qzaway

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/qzaway/foodcourt/internal/config"
	"github.com/qzaway/foodcourt/internal/domain"
	apperrors "github.com/qzaway/foodcourt/pkg/errors"
)

func newTestClient(t *testing.T, router *gin.Engine) *Client {
	t.Helper()
	server := httptest.NewServer(router)
	t.Cleanup(server.Close)

	return NewClient(config.APIConfig{
		BaseURL:         server.URL + "/",
		Timeout:         2 * time.Second,
		BreakerFailures: 3,
		BreakerCooldown: time.Minute,
	}, zap.NewNop())
}

func newRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	return gin.New()
}

func TestGetCart_DecodesItemsAndSummary(t *testing.T) {
	router := newRouter()
	router.GET("/cart/:userId/:mallId", func(c *gin.Context) {
		assert.Equal(t, "user-1", c.Param("userId"))
		assert.Equal(t, "mall-1", c.Param("mallId"))
		c.JSON(http.StatusOK, gin.H{
			"items": []gin.H{
				{"cartItemId": "ci-1", "menuItemId": "m-1", "name": "Dosa", "price": "50.00", "quantity": 2, "lineTotal": 100,
					"restaurant": gin.H{"id": "r-1", "name": "South Spice"}},
			},
			"summary": gin.H{"subtotal": 100},
		})
	})
	client := newTestClient(t, router)

	cart, err := client.GetCart(context.Background(), "user-1", "mall-1")
	require.NoError(t, err)
	require.Len(t, cart.Items, 1)

	item := cart.Items[0]
	assert.Equal(t, "ci-1", item.CartItemID)
	assert.Equal(t, "50", item.Price.String())
	assert.Equal(t, 2, item.Quantity)
	assert.Equal(t, "South Spice", item.Restaurant.Name)
	assert.False(t, item.IsOptimistic)
	require.NotNil(t, cart.Summary)
	assert.Equal(t, "100", cart.Summary.Subtotal.String())
}

func TestGetCart_MissingItemsBecomesEmpty(t *testing.T) {
	router := newRouter()
	router.GET("/cart/:userId/:mallId", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{})
	})
	client := newTestClient(t, router)

	cart, err := client.GetCart(context.Background(), "u", "m")
	require.NoError(t, err)
	assert.NotNil(t, cart.Items)
	assert.Empty(t, cart.Items)
	assert.Nil(t, cart.Summary)
}

func TestAddToCart_SendsBodyAndReportsMissingList(t *testing.T) {
	router := newRouter()
	router.POST("/cart/add", func(c *gin.Context) {
		var req domain.AddToCartRequest
		assert.NoError(t, c.ShouldBindJSON(&req))
		assert.Equal(t, domain.AddToCartRequest{UserID: "u", MallID: "m", MenuItemID: "menu-1", Quantity: 1}, req)
		assert.Equal(t, "application/json", c.GetHeader("Content-Type"))
		c.JSON(http.StatusCreated, gin.H{"id": "ci-9"})
	})
	client := newTestClient(t, router)

	cart, err := client.AddToCart(context.Background(), domain.AddToCartRequest{UserID: "u", MallID: "m", MenuItemID: "menu-1", Quantity: 1})
	require.NoError(t, err)
	assert.False(t, cart.HasItems())
}

func TestUpdateCartItem_PatchesQuantity(t *testing.T) {
	router := newRouter()
	router.PATCH("/cart/item/:id", func(c *gin.Context) {
		var req domain.UpdateCartItemRequest
		assert.NoError(t, c.ShouldBindJSON(&req))
		assert.Equal(t, "ci-9", c.Param("id"))
		assert.Equal(t, 3, req.Quantity)
		c.JSON(http.StatusOK, gin.H{"items": []gin.H{{"cartItemId": "ci-9", "menuItemId": "menu-1", "price": 50, "quantity": 3}}})
	})
	client := newTestClient(t, router)

	cart, err := client.UpdateCartItem(context.Background(), "ci-9", domain.UpdateCartItemRequest{Quantity: 3})
	require.NoError(t, err)
	require.True(t, cart.HasItems())
	assert.Equal(t, 3, cart.Items[0].Quantity)
}

func TestExecute_SurfacesServerMessage(t *testing.T) {
	router := newRouter()
	router.POST("/orders/place", func(c *gin.Context) {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Cart is empty"})
	})
	router.DELETE("/cart/item/:id", func(c *gin.Context) {
		c.Status(http.StatusNotFound)
	})
	router.GET("/malls", func(c *gin.Context) {
		c.String(http.StatusConflict, "not json")
	})
	client := newTestClient(t, router)

	_, err := client.PlaceOrder(context.Background(), domain.PlaceOrderRequest{UserID: "u", MallID: "m"})
	var reqErr *apperrors.ErrRequest
	require.True(t, errors.As(err, &reqErr))
	assert.Equal(t, http.StatusBadRequest, reqErr.Status)
	assert.Equal(t, "Cart is empty", reqErr.Error())

	_, err = client.RemoveCartItem(context.Background(), "ci-1")
	var notFound *apperrors.ErrNotFound
	require.True(t, errors.As(err, &notFound))
	assert.Equal(t, "cart item", notFound.Resource)

	_, err = client.GetMalls(context.Background())
	require.True(t, errors.As(err, &reqErr))
	assert.Equal(t, "Conflict", reqErr.Message)
}

func TestSearchFood_QueryParameters(t *testing.T) {
	router := newRouter()
	router.GET("/malls/:mallId/search", func(c *gin.Context) {
		assert.Equal(t, "paneer tikka", c.Query("q"))
		assert.Equal(t, "true", c.Query("veg"))
		_, hasSugarFree := c.GetQuery("sugarFree")
		assert.False(t, hasSugarFree)
		assert.Equal(t, "1", c.Query("page"))
		assert.Equal(t, "20", c.Query("limit"))
		c.JSON(http.StatusOK, gin.H{"data": []gin.H{{"id": "m-1", "name": "Paneer Tikka", "price": 180, "isVeg": true}}})
	})
	client := newTestClient(t, router)

	page, err := client.SearchFood(context.Background(), "mall-1", "  paneer tikka ", SearchOptions{Veg: true})
	require.NoError(t, err)
	require.Len(t, page.Data, 1)
	assert.True(t, page.Data[0].IsVeg)
}

func TestSearchFood_CancelledContext(t *testing.T) {
	release := make(chan struct{})
	router := newRouter()
	router.GET("/malls/:mallId/search", func(c *gin.Context) {
		select {
		case <-release:
		case <-c.Request.Context().Done():
		}
		c.JSON(http.StatusOK, gin.H{"data": []gin.H{}})
	})
	client := newTestClient(t, router)
	defer close(release)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	_, err := client.SearchFood(ctx, "mall-1", "dosa", SearchOptions{})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestGetOrdersAndReorder(t *testing.T) {
	router := newRouter()
	router.GET("/orders/:userId", func(c *gin.Context) {
		assert.Equal(t, "2", c.Query("page"))
		assert.Equal(t, "10", c.Query("limit"))
		c.JSON(http.StatusOK, gin.H{
			"data": []gin.H{{
				"id": "ord-1", "createdAt": "2026-10-01T12:00:00Z", "subtotal": "100.00", "foodGst": "5.00",
				"platformGst": "1.80", "platformFee": "10.00", "totalAmount": "116.80",
				"items": []gin.H{{"id": "oi-1", "nameSnapshot": "Dosa", "priceSnapshot": "50.00", "quantity": 2}},
			}},
			"meta": gin.H{"page": 2, "limit": 10, "total": 11, "totalPages": 2},
		})
	})
	router.POST("/orders/reorder/:orderId", func(c *gin.Context) {
		if c.Param("orderId") == "missing" {
			c.JSON(http.StatusNotFound, gin.H{"message": "Order not found"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})
	client := newTestClient(t, router)

	page, err := client.GetOrders(context.Background(), "user-1", 2, 10)
	require.NoError(t, err)
	require.Len(t, page.Data, 1)
	assert.Equal(t, "116.8", page.Data[0].TotalAmount.String())
	assert.Equal(t, "100", page.Data[0].Items[0].Total().String())
	assert.Equal(t, 2, page.Meta.TotalPages)

	require.NoError(t, client.Reorder(context.Background(), "ord-1"))

	var notFound *apperrors.ErrNotFound
	assert.True(t, errors.As(client.Reorder(context.Background(), "missing"), &notFound))
}

func TestBreaker_OpensAfterConsecutiveServerErrors(t *testing.T) {
	var calls int32
	router := newRouter()
	router.GET("/malls", func(c *gin.Context) {
		atomic.AddInt32(&calls, 1)
		c.JSON(http.StatusBadGateway, gin.H{"message": "upstream down"})
	})
	client := newTestClient(t, router)

	for i := 0; i < 3; i++ {
		_, err := client.GetMalls(context.Background())
		var reqErr *apperrors.ErrRequest
		require.True(t, errors.As(err, &reqErr))
		assert.Equal(t, "upstream down", reqErr.Message)
	}

	_, err := client.GetMalls(context.Background())
	var unavailable *apperrors.ErrUnavailable
	assert.True(t, errors.As(err, &unavailable))
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestBreaker_IgnoresClientErrors(t *testing.T) {
	router := newRouter()
	router.GET("/malls", func(c *gin.Context) {
		c.JSON(http.StatusBadRequest, gin.H{"message": "bad"})
	})
	client := newTestClient(t, router)

	for i := 0; i < 5; i++ {
		_, err := client.GetMalls(context.Background())
		var reqErr *apperrors.ErrRequest
		require.True(t, errors.As(err, &reqErr))
	}
}
