package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/qzaway/foodcourt/internal/domain"
	"github.com/qzaway/foodcourt/internal/qzaway"
	"github.com/qzaway/foodcourt/internal/service"
)

// HandleListMalls handles GET /v1/malls
func HandleListMalls(catalog service.Catalog) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"data": catalog.Malls(c.Request.Context())})
	}
}

// HandleListRestaurants handles GET /v1/malls/:mallId/restaurants
func HandleListRestaurants(catalog service.Catalog) gin.HandlerFunc {
	return func(c *gin.Context) {
		page := queryInt(c, "page", 1)
		c.JSON(http.StatusOK, catalog.Restaurants(c.Request.Context(), c.Param("mallId"), page))
	}
}

// HandleGetMenu handles GET /v1/restaurants/:restaurantId/menu
func HandleGetMenu(catalog service.Catalog) gin.HandlerFunc {
	return func(c *gin.Context) {
		opts := qzaway.MenuOptions{
			Page:      queryInt(c, "page", 1),
			Limit:     queryInt(c, "limit", 0),
			Veg:       queryBool(c, "veg"),
			SugarFree: queryBool(c, "sugarFree"),
		}
		c.JSON(http.StatusOK, catalog.Menu(c.Request.Context(), c.Param("restaurantId"), opts))
	}
}

// HandleSearch handles GET /v1/malls/:mallId/search. All requests share one
// search session, so a newer query answers 204 to the one it replaced.
func HandleSearch(catalog service.Catalog, logger *zap.Logger) gin.HandlerFunc {
	searcher := catalog.NewSearcher()

	return func(c *gin.Context) {
		opts := qzaway.SearchOptions{
			Page:      queryInt(c, "page", 1),
			Limit:     queryInt(c, "limit", 0),
			Veg:       queryBool(c, "veg"),
			SugarFree: queryBool(c, "sugarFree"),
		}

		items, applied, err := searcher.Search(c.Request.Context(), c.Param("mallId"), c.Query("q"), opts)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				logger.Debug("Search abandoned by client")
				return
			}
			respondError(c, logger, "Search failed", err)
			return
		}
		if !applied {
			c.Status(http.StatusNoContent)
			return
		}
		if items == nil {
			items = []domain.MenuItem{}
		}
		c.JSON(http.StatusOK, gin.H{"data": items})
	}
}
