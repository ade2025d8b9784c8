package qzaway

import (
	"fmt"
	"net/url"
)

// Endpoint paths of the food-court backend
const (
	MallsPath          = "/malls"
	RestaurantsPath    = "/malls/%s/restaurants"
	SearchPath         = "/malls/%s/search"
	MenuPath           = "/restaurants/%s/menu"
	CartPath           = "/cart/%s/%s"
	CartAddPath        = "/cart/add"
	CartItemPath       = "/cart/item/%s"
	PlaceOrderPath     = "/orders/place"
	OrdersPath         = "/orders/%s"
	ReorderPath        = "/orders/reorder/%s"
	defaultPageSize    = 20
	defaultMenuPerPage = 50
)

func path(format string, segments ...string) string {
	escaped := make([]interface{}, len(segments))
	for i, s := range segments {
		escaped[i] = url.PathEscape(s)
	}
	return fmt.Sprintf(format, escaped...)
}
