package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/qzaway/foodcourt/internal/cache"
	"github.com/qzaway/foodcourt/internal/config"
	"github.com/qzaway/foodcourt/internal/domain"
	"github.com/qzaway/foodcourt/internal/qzaway"
)

type catalogService struct {
	api            CatalogAPI
	cache          cache.CatalogCache
	searchDebounce time.Duration
	logger         *zap.Logger
}

// NewCatalogService creates the mall/restaurant/menu browsing service.
// A nil cache disables caching.
func NewCatalogService(api CatalogAPI, c cache.CatalogCache, cfg config.CatalogConfig, logger *zap.Logger) *catalogService {
	if c == nil {
		c = cache.Noop{}
	}
	debounce := cfg.SearchDebounce
	if debounce <= 0 {
		debounce = 400 * time.Millisecond
	}

	return &catalogService{
		api:            api,
		cache:          c,
		searchDebounce: debounce,
		logger:         logger,
	}
}

// Malls lists every mall, or none if the backend cannot be reached
func (s *catalogService) Malls(ctx context.Context) []domain.Mall {
	malls, err := readThrough(ctx, s, "malls", func(ctx context.Context) ([]domain.Mall, error) {
		return s.api.GetMalls(ctx)
	})
	if err != nil {
		s.logger.Warn("Failed to load malls", zap.Error(err))
		return []domain.Mall{}
	}
	if malls == nil {
		malls = []domain.Mall{}
	}
	return malls
}

// Restaurants lists one page of a mall's restaurants
func (s *catalogService) Restaurants(ctx context.Context, mallID string, page int) *domain.RestaurantPage {
	key := fmt.Sprintf("restaurants:%s:%d", mallID, page)
	result, err := readThrough(ctx, s, key, func(ctx context.Context) (*domain.RestaurantPage, error) {
		return s.api.GetRestaurants(ctx, mallID, page, 0)
	})
	if err != nil {
		s.logger.Warn("Failed to load restaurants", zap.String("mall_id", mallID), zap.Error(err))
		return &domain.RestaurantPage{Data: []domain.Restaurant{}}
	}
	if result.Data == nil {
		result.Data = []domain.Restaurant{}
	}
	return result
}

// Menu returns a restaurant's menu filtered by opts
func (s *catalogService) Menu(ctx context.Context, restaurantID string, opts qzaway.MenuOptions) *domain.Menu {
	key := fmt.Sprintf("menu:%s:%d:%d:%t:%t", restaurantID, opts.Page, opts.Limit, opts.Veg, opts.SugarFree)
	menu, err := readThrough(ctx, s, key, func(ctx context.Context) (*domain.Menu, error) {
		return s.api.GetMenu(ctx, restaurantID, opts)
	})
	if err != nil {
		s.logger.Warn("Failed to load menu", zap.String("restaurant_id", restaurantID), zap.Error(err))
		return &domain.Menu{Data: []domain.MenuCategory{}}
	}
	if menu.Data == nil {
		menu.Data = []domain.MenuCategory{}
	}
	return menu
}

// NewSearcher starts a search session whose queries supersede each other
func (s *catalogService) NewSearcher() *Searcher {
	return &Searcher{
		api:    s.api,
		delay:  s.searchDebounce,
		logger: s.logger,
	}
}

func readThrough[T any](ctx context.Context, s *catalogService, key string, load func(context.Context) (T, error)) (T, error) {
	var value T
	err := s.cache.Get(ctx, key, &value)
	if err == nil {
		return value, nil
	}
	if !errors.Is(err, cache.ErrCacheMiss) {
		s.logger.Warn("Catalog cache read failed", zap.String("key", key), zap.Error(err))
	}

	value, err = load(ctx)
	if err != nil {
		return value, err
	}
	if err := s.cache.Set(ctx, key, value); err != nil {
		s.logger.Warn("Catalog cache write failed", zap.String("key", key), zap.Error(err))
	}
	return value, nil
}

// Searcher runs debounced dish searches. Starting a search cancels the
// pending or in-flight one.
type Searcher struct {
	api    CatalogAPI
	delay  time.Duration
	logger *zap.Logger

	mu     sync.Mutex
	seq    uint64
	cancel context.CancelFunc
}

// Search waits out the debounce delay, then queries the mall. applied is
// false when a later Search superseded this one. A blank query returns no
// results without a request. Backend failures yield an empty result.
func (s *Searcher) Search(ctx context.Context, mallID, query string, opts qzaway.SearchOptions) (items []domain.MenuItem, applied bool, err error) {
	s.mu.Lock()
	s.seq++
	seq := s.seq
	if s.cancel != nil {
		s.cancel()
	}
	searchCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		if s.seq == seq {
			s.cancel = nil
		}
		s.mu.Unlock()
		cancel()
	}()

	query = strings.TrimSpace(query)
	if query == "" {
		return nil, true, nil
	}

	timer := time.NewTimer(s.delay)
	defer timer.Stop()

	select {
	case <-timer.C:
	case <-searchCtx.Done():
		return nil, false, ctx.Err()
	}

	page, err := s.api.SearchFood(searchCtx, mallID, query, opts)
	if !s.current(seq) {
		return nil, false, nil
	}
	if err != nil {
		if ctx.Err() != nil {
			return nil, false, ctx.Err()
		}
		s.logger.Warn("Search failed", zap.String("mall_id", mallID), zap.String("query", query), zap.Error(err))
		return []domain.MenuItem{}, true, nil
	}

	if page.Data == nil {
		return []domain.MenuItem{}, true, nil
	}
	return page.Data, true, nil
}

func (s *Searcher) current(seq uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.seq == seq
}
