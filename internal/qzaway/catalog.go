package qzaway

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/qzaway/foodcourt/internal/domain"
)

// SearchOptions narrows a dish search. Empty filters are not sent.
type SearchOptions struct {
	Page      int
	Limit     int
	Veg       bool
	SugarFree bool
}

// MenuOptions narrows a menu listing
type MenuOptions struct {
	Page      int
	Limit     int
	Veg       bool
	SugarFree bool
}

// GetMalls lists every mall
func (c *Client) GetMalls(ctx context.Context) ([]domain.Mall, error) {
	var malls []domain.Mall
	if err := c.Execute(ctx, http.MethodGet, MallsPath, nil, nil, &malls); err != nil {
		return nil, err
	}
	return malls, nil
}

// GetRestaurants lists a mall's restaurants
func (c *Client) GetRestaurants(ctx context.Context, mallID string, page, limit int) (*domain.RestaurantPage, error) {
	query := pageQuery(page, limit, defaultPageSize)

	var result domain.RestaurantPage
	if err := c.Execute(ctx, http.MethodGet, path(RestaurantsPath, mallID), query, nil, &result); err != nil {
		return nil, notFoundAs(err, "mall", mallID)
	}
	return &result, nil
}

// SearchFood searches dishes across a mall. The request is aborted when ctx is cancelled.
func (c *Client) SearchFood(ctx context.Context, mallID, q string, opts SearchOptions) (*domain.SearchPage, error) {
	query := pageQuery(opts.Page, opts.Limit, defaultPageSize)
	query.Set("q", strings.TrimSpace(q))
	setFilters(query, opts.Veg, opts.SugarFree)

	var result domain.SearchPage
	if err := c.Execute(ctx, http.MethodGet, path(SearchPath, mallID), query, nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// GetMenu fetches a restaurant's categorised menu
func (c *Client) GetMenu(ctx context.Context, restaurantID string, opts MenuOptions) (*domain.Menu, error) {
	query := pageQuery(opts.Page, opts.Limit, defaultMenuPerPage)
	setFilters(query, opts.Veg, opts.SugarFree)

	var result domain.Menu
	if err := c.Execute(ctx, http.MethodGet, path(MenuPath, restaurantID), query, nil, &result); err != nil {
		return nil, notFoundAs(err, "restaurant", restaurantID)
	}
	return &result, nil
}

func pageQuery(page, limit, defaultLimit int) url.Values {
	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = defaultLimit
	}
	query := url.Values{}
	query.Set("page", strconv.Itoa(page))
	query.Set("limit", strconv.Itoa(limit))
	return query
}

func setFilters(query url.Values, veg, sugarFree bool) {
	if veg {
		query.Set("veg", "true")
	}
	if sugarFree {
		query.Set("sugarFree", "true")
	}
}
