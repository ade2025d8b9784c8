package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/qzaway/foodcourt/internal/domain"
	"github.com/qzaway/foodcourt/internal/service"
)

// HandlePlaceOrder handles POST /v1/orders
func HandlePlaceOrder(engine service.CartEngine, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		order, err := engine.PlaceOrder(c.Request.Context())
		if err != nil {
			respondError(c, logger, domain.MutationPlace.FailureMessage(), err)
			return
		}
		if order == nil {
			// no identity or no active mall yet
			c.Status(http.StatusNoContent)
			return
		}
		c.JSON(http.StatusCreated, order)
	}
}

// HandleListOrders handles GET /v1/orders
func HandleListOrders(history service.OrderHistory) gin.HandlerFunc {
	return func(c *gin.Context) {
		page := queryInt(c, "page", 1)
		c.JSON(http.StatusOK, history.Fetch(c.Request.Context(), page))
	}
}

// HandleReorder handles POST /v1/orders/:orderId/reorder
func HandleReorder(history service.OrderHistory, engine service.CartEngine, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := history.Reorder(c.Request.Context(), c.Param("orderId")); err != nil {
			respondError(c, logger, domain.MutationReorder.FailureMessage(), err)
			return
		}
		c.JSON(http.StatusOK, engine.State())
	}
}
