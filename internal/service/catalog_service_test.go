package service

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/qzaway/foodcourt/internal/cache"
	"github.com/qzaway/foodcourt/internal/config"
	"github.com/qzaway/foodcourt/internal/domain"
	"github.com/qzaway/foodcourt/internal/qzaway"
)

type fakeCatalogAPI struct {
	mallCalls   atomic.Int32
	searchCalls atomic.Int32
	err         error
	queries     chan string

	search func(ctx context.Context, q string) (*domain.SearchPage, error)
}

func (f *fakeCatalogAPI) GetMalls(ctx context.Context) ([]domain.Mall, error) {
	f.mallCalls.Add(1)
	if f.err != nil {
		return nil, f.err
	}
	return []domain.Mall{{ID: "m1", Name: "Phoenix"}}, nil
}

func (f *fakeCatalogAPI) GetRestaurants(ctx context.Context, mallID string, page, limit int) (*domain.RestaurantPage, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &domain.RestaurantPage{Data: []domain.Restaurant{{ID: "r1", Name: "Dosa Hut", IsActive: true}}}, nil
}

func (f *fakeCatalogAPI) GetMenu(ctx context.Context, restaurantID string, opts qzaway.MenuOptions) (*domain.Menu, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &domain.Menu{Restaurant: &domain.Restaurant{ID: restaurantID}}, nil
}

func (f *fakeCatalogAPI) SearchFood(ctx context.Context, mallID, q string, opts qzaway.SearchOptions) (*domain.SearchPage, error) {
	f.searchCalls.Add(1)
	if f.queries != nil {
		f.queries <- q
	}
	return f.search(ctx, q)
}

func newTestCatalog(api CatalogAPI, c cache.CatalogCache) *catalogService {
	return NewCatalogService(api, c, config.CatalogConfig{SearchDebounce: 30 * time.Millisecond}, zap.NewNop())
}

func TestCatalog_MallsReadThroughCache(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	api := &fakeCatalogAPI{}
	catalog := newTestCatalog(api, cache.NewRedisCache(client, time.Minute))

	first := catalog.Malls(context.Background())
	second := catalog.Malls(context.Background())

	assert.Equal(t, first, second)
	assert.Equal(t, "Phoenix", second[0].Name)
	assert.Equal(t, int32(1), api.mallCalls.Load())
}

func TestCatalog_DegradesToEmpty(t *testing.T) {
	api := &fakeCatalogAPI{err: errors.New("backend down")}
	catalog := newTestCatalog(api, nil)
	ctx := context.Background()

	malls := catalog.Malls(ctx)
	assert.NotNil(t, malls)
	assert.Empty(t, malls)

	restaurants := catalog.Restaurants(ctx, "m1", 1)
	assert.Empty(t, restaurants.Data)

	menu := catalog.Menu(ctx, "r1", qzaway.MenuOptions{Veg: true})
	assert.Empty(t, menu.Data)
	assert.Nil(t, menu.Restaurant)
}

func TestCatalog_MenuNormalisesMissingCategories(t *testing.T) {
	catalog := newTestCatalog(&fakeCatalogAPI{}, nil)

	menu := catalog.Menu(context.Background(), "r1", qzaway.MenuOptions{})
	assert.Equal(t, "r1", menu.Restaurant.ID)
	assert.NotNil(t, menu.Data)
}

func TestSearcher_BlankQuerySkipsRequest(t *testing.T) {
	api := &fakeCatalogAPI{}
	searcher := newTestCatalog(api, nil).NewSearcher()

	items, applied, err := searcher.Search(context.Background(), "m1", "   ", qzaway.SearchOptions{})
	require.NoError(t, err)
	assert.True(t, applied)
	assert.Nil(t, items)
	assert.Equal(t, int32(0), api.searchCalls.Load())
}

func TestSearcher_LatestQueryWins(t *testing.T) {
	api := &fakeCatalogAPI{queries: make(chan string, 4)}
	api.search = func(ctx context.Context, q string) (*domain.SearchPage, error) {
		return &domain.SearchPage{Data: []domain.MenuItem{{ID: "d1", Name: q}}}, nil
	}
	searcher := newTestCatalog(api, nil).NewSearcher()

	var wg sync.WaitGroup
	results := make([]bool, 3)
	var last []domain.MenuItem
	for i, q := range []string{"do", "dos", "dosa"} {
		wg.Add(1)
		go func(i int, q string) {
			defer wg.Done()
			items, applied, err := searcher.Search(context.Background(), "m1", q, qzaway.SearchOptions{})
			assert.NoError(t, err)
			results[i] = applied
			if applied {
				last = items
			}
		}(i, q)
		time.Sleep(5 * time.Millisecond)
	}
	wg.Wait()

	assert.Equal(t, []bool{false, false, true}, results)
	assert.Equal(t, int32(1), api.searchCalls.Load())
	assert.Equal(t, "dosa", <-api.queries)
	require.Len(t, last, 1)
	assert.Equal(t, "dosa", last[0].Name)
}

func TestSearcher_NewQueryAbortsInFlightRequest(t *testing.T) {
	api := &fakeCatalogAPI{queries: make(chan string, 2)}
	api.search = func(ctx context.Context, q string) (*domain.SearchPage, error) {
		if q == "slow" {
			<-ctx.Done()
			return nil, ctx.Err()
		}
		return &domain.SearchPage{Data: []domain.MenuItem{{ID: "d2", Name: q}}}, nil
	}
	searcher := newTestCatalog(api, nil).NewSearcher()

	type outcome struct {
		applied bool
		err     error
	}
	slow := make(chan outcome, 1)
	go func() {
		_, applied, err := searcher.Search(context.Background(), "m1", "slow", qzaway.SearchOptions{})
		slow <- outcome{applied, err}
	}()
	require.Equal(t, "slow", <-api.queries)

	items, applied, err := searcher.Search(context.Background(), "m1", "fast", qzaway.SearchOptions{})
	require.NoError(t, err)
	assert.True(t, applied)
	assert.Equal(t, "fast", items[0].Name)

	got := <-slow
	assert.NoError(t, got.err)
	assert.False(t, got.applied)
}

func TestSearcher_FailureYieldsEmptyResult(t *testing.T) {
	api := &fakeCatalogAPI{}
	api.search = func(ctx context.Context, q string) (*domain.SearchPage, error) {
		return nil, errors.New("502")
	}
	searcher := newTestCatalog(api, nil).NewSearcher()

	items, applied, err := searcher.Search(context.Background(), "m1", "idli", qzaway.SearchOptions{Veg: true})
	require.NoError(t, err)
	assert.True(t, applied)
	assert.NotNil(t, items)
	assert.Empty(t, items)
}

func TestSearcher_CallerCancellation(t *testing.T) {
	api := &fakeCatalogAPI{}
	searcher := newTestCatalog(api, nil).NewSearcher()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, applied, err := searcher.Search(ctx, "m1", "vada", qzaway.SearchOptions{})
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, applied)
	assert.Equal(t, int32(0), api.searchCalls.Load())
}
