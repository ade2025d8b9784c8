package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/qzaway/foodcourt/internal/domain"
	"github.com/qzaway/foodcourt/internal/service"
)

// SetMallRequest selects the mall the cart is scoped to
type SetMallRequest struct {
	MallID string `json:"mallId" binding:"required"`
}

// AddItemRequest adds a dish to the cart
type AddItemRequest struct {
	MenuItemID string `json:"menuItemId" binding:"required"`
	Quantity   int    `json:"quantity"`
}

// UpdateItemRequest sets a cart row's quantity; zero removes it
type UpdateItemRequest struct {
	Quantity *int `json:"quantity" binding:"required"`
}

// HandleSetMall handles PUT /v1/cart/mall
func HandleSetMall(engine service.CartEngine, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req SetMallRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request", "detail": err.Error()})
			return
		}

		engine.SetActiveMall(c.Request.Context(), req.MallID)
		c.JSON(http.StatusOK, engine.State())
	}
}

// HandleGetCart handles GET /v1/cart
func HandleGetCart(engine service.CartEngine) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, engine.State())
	}
}

// HandleRefreshCart handles POST /v1/cart/refresh
func HandleRefreshCart(engine service.CartEngine) gin.HandlerFunc {
	return func(c *gin.Context) {
		engine.Refresh(c.Request.Context())
		c.JSON(http.StatusOK, engine.State())
	}
}

// HandleAddItem handles POST /v1/cart/items
func HandleAddItem(engine service.CartEngine, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req AddItemRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request", "detail": err.Error()})
			return
		}
		if req.Quantity < 1 {
			req.Quantity = 1
		}

		if err := engine.AddItem(c.Request.Context(), req.MenuItemID, req.Quantity); err != nil {
			respondError(c, logger, domain.MutationAdd.FailureMessage(), err)
			return
		}
		c.JSON(http.StatusOK, engine.State())
	}
}

// HandleUpdateItem handles PATCH /v1/cart/items/:cartItemId
func HandleUpdateItem(engine service.CartEngine, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req UpdateItemRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request", "detail": err.Error()})
			return
		}

		if err := engine.UpdateItem(c.Request.Context(), c.Param("cartItemId"), *req.Quantity); err != nil {
			respondError(c, logger, domain.MutationUpdate.FailureMessage(), err)
			return
		}
		c.JSON(http.StatusOK, engine.State())
	}
}

// HandleRemoveItem handles DELETE /v1/cart/items/:cartItemId
func HandleRemoveItem(engine service.CartEngine, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := engine.RemoveItem(c.Request.Context(), c.Param("cartItemId")); err != nil {
			respondError(c, logger, domain.MutationRemove.FailureMessage(), err)
			return
		}
		c.JSON(http.StatusOK, engine.State())
	}
}

// HandleCartEvents handles GET /v1/cart/events, streaming every cart state
// change as a server-sent "cart" event. Slow readers miss intermediate
// states; each event carries its version.
func HandleCartEvents(engine service.CartEngine, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		states := make(chan service.CartState, 16)
		cancel := engine.Subscribe(func(state service.CartState) {
			select {
			case states <- state:
			default:
			}
		})
		defer cancel()

		c.Header("Content-Type", "text/event-stream")
		c.Header("Cache-Control", "no-cache")
		c.Header("Connection", "keep-alive")

		c.SSEvent("cart", engine.State())
		c.Writer.Flush()

		ctx := c.Request.Context()
		for {
			select {
			case state := <-states:
				c.SSEvent("cart", state)
				c.Writer.Flush()
			case <-ctx.Done():
				logger.Debug("Cart event stream closed")
				return
			}
		}
	}
}
