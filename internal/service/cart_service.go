package service

import (
	"context"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/qzaway/foodcourt/internal/config"
	"github.com/qzaway/foodcourt/internal/domain"
)

type cartService struct {
	api         CartAPI
	identity    IdentitySource
	logger      *zap.Logger
	settleDelay time.Duration
	updates     *debouncer
	fetches     singleflight.Group

	mu          sync.Mutex
	items       []domain.CartItem
	summary     *domain.CartSummary
	mallID      string
	generation  uint64
	loadCount   int
	syncCount   int
	syncing     bool
	settleToken uint64
	version     uint64
	listeners   []cartListener
	nextID      int
}

type cartListener struct {
	id int
	fn func(CartState)
}

// NewCartService creates the cart reconciliation engine. One instance is
// built at start-up and handed to every consumer.
func NewCartService(api CartAPI, identity IdentitySource, cfg config.CartConfig, logger *zap.Logger) *cartService {
	debounce := cfg.UpdateDebounce
	if debounce <= 0 {
		debounce = 400 * time.Millisecond
	}
	settle := cfg.SettleDelay
	if settle <= 0 {
		settle = 16 * time.Millisecond
	}

	return &cartService{
		api:         api,
		identity:    identity,
		logger:      logger,
		settleDelay: settle,
		updates:     newDebouncer(debounce),
		items:       []domain.CartItem{},
	}
}

// SetActiveMall switches the cart scope and loads the new mall's cart.
// Items of the previous mall are discarded, not merged.
func (s *cartService) SetActiveMall(ctx context.Context, mallID string) {
	var gen uint64
	changed := s.update(func() bool {
		if mallID == s.mallID {
			return false
		}
		s.mallID = mallID
		s.generation++
		gen = s.generation
		s.items = []domain.CartItem{}
		s.summary = nil
		return true
	})
	if !changed || mallID == "" {
		return
	}

	userID := s.identity.UserID(ctx)
	if userID == "" {
		return
	}
	s.logger.Debug("Active mall changed", zap.String("mall_id", mallID))
	s.resync(ctx, userID, mallID, gen, resyncOptions{replace: true})
}

// Fetch loads the authoritative cart of the active mall and merges it in.
// A failed fetch empties the cart. silent leaves the loading flag alone.
func (s *cartService) Fetch(ctx context.Context, mallID string, silent bool) {
	userID := s.identity.UserID(ctx)
	if userID == "" || mallID == "" {
		return
	}

	s.mu.Lock()
	active, gen := s.mallID, s.generation
	s.mu.Unlock()

	if mallID != active {
		s.logger.Debug("Ignoring fetch for inactive mall",
			zap.String("mall_id", mallID),
			zap.String("active_mall_id", active),
		)
		return
	}

	s.resync(ctx, userID, mallID, gen, resyncOptions{silent: silent})
}

// Refresh reloads the active mall's cart with the loading indicator
func (s *cartService) Refresh(ctx context.Context) {
	s.mu.Lock()
	mallID := s.mallID
	s.mu.Unlock()

	s.Fetch(ctx, mallID, false)
}

// AddItem shows a placeholder row immediately, then swaps it for the
// backend's row. On failure the placeholder is removed and the error returned.
func (s *cartService) AddItem(ctx context.Context, menuItemID string, quantity int) error {
	userID := s.identity.UserID(ctx)
	if userID == "" {
		return nil
	}
	if quantity < 1 {
		quantity = 1
	}

	tempID := domain.NewTempID()
	var mallID string
	var gen uint64
	added := s.update(func() bool {
		if s.mallID == "" {
			return false
		}
		mallID, gen = s.mallID, s.generation
		s.items = append(cloneItems(s.items), domain.CartItem{
			CartItemID:   tempID,
			MenuItemID:   menuItemID,
			Quantity:     quantity,
			IsOptimistic: true,
		})
		return true
	})
	if !added {
		return nil
	}

	ctx = context.WithoutCancel(ctx)
	cart, err := s.api.AddToCart(ctx, domain.AddToCartRequest{
		UserID:     userID,
		MallID:     mallID,
		MenuItemID: menuItemID,
		Quantity:   quantity,
	})
	if err != nil {
		s.logger.Warn("Failed to add item",
			zap.String("menu_item_id", menuItemID),
			zap.Error(err),
		)
		s.update(func() bool {
			return s.removeLocked(tempID)
		})
		return err
	}

	if !cart.HasItems() {
		s.resync(ctx, userID, mallID, gen, resyncOptions{silent: true, resolveTempID: tempID})
		return nil
	}

	s.apply(gen, cart, tempID)
	return nil
}

// UpdateItem changes a row's quantity locally at once and sends only the
// last quantity requested within the debounce window. It returns when that
// request settles; a call superseded by a later one returns nil.
func (s *cartService) UpdateItem(ctx context.Context, cartItemID string, quantity int) error {
	if domain.IsTempID(cartItemID) {
		s.logger.Warn("Ignoring update of unconfirmed cart item", zap.String("cart_item_id", cartItemID))
		return nil
	}
	if quantity < 1 {
		return s.RemoveItem(ctx, cartItemID)
	}

	var mallID string
	var gen uint64
	ok := s.update(func() bool {
		if s.mallID == "" {
			return false
		}
		mallID, gen = s.mallID, s.generation
		s.items = cloneItems(s.items)
		for i := range s.items {
			if s.items[i].CartItemID == cartItemID {
				s.items[i].Quantity = quantity
				lineTotal := s.items[i].Price.Mul(decimal.NewFromInt(int64(quantity)))
				s.items[i].LineTotal = &lineTotal
				break
			}
		}
		s.beginSyncLocked()
		return true
	})
	if !ok {
		return nil
	}

	userID := s.identity.UserID(ctx)
	bg := context.WithoutCancel(ctx)
	done := s.updates.Schedule(cartItemID, func() error {
		cart, err := s.api.UpdateCartItem(bg, cartItemID, domain.UpdateCartItemRequest{Quantity: quantity})
		return s.reconcile(bg, userID, mallID, gen, cart, err, domain.MutationUpdate)
	})

	return s.awaitSync(ctx, done)
}

// RemoveItem drops a row locally at once, then deletes it on the backend.
// A pending quantity update for the row is abandoned.
func (s *cartService) RemoveItem(ctx context.Context, cartItemID string) error {
	if domain.IsTempID(cartItemID) {
		s.logger.Warn("Ignoring removal of unconfirmed cart item", zap.String("cart_item_id", cartItemID))
		return nil
	}

	var mallID string
	var gen uint64
	ok := s.update(func() bool {
		if s.mallID == "" {
			return false
		}
		mallID, gen = s.mallID, s.generation
		s.removeLocked(cartItemID)
		s.beginSyncLocked()
		return true
	})
	if !ok {
		return nil
	}

	s.updates.Cancel(cartItemID)

	userID := s.identity.UserID(ctx)
	bg := context.WithoutCancel(ctx)
	done := make(chan error, 1)
	go func() {
		done <- s.updates.Run(cartItemID, func() error {
			cart, err := s.api.RemoveCartItem(bg, cartItemID)
			return s.reconcile(bg, userID, mallID, gen, cart, err, domain.MutationRemove)
		})
	}()

	return s.awaitSync(ctx, done)
}

// PlaceOrder submits the active cart. Success empties the cart; failure
// leaves it untouched for a retry.
func (s *cartService) PlaceOrder(ctx context.Context) (*domain.Order, error) {
	userID := s.identity.UserID(ctx)

	s.mu.Lock()
	mallID, gen := s.mallID, s.generation
	s.mu.Unlock()

	if userID == "" || mallID == "" {
		return nil, nil
	}

	s.setLoading(true)
	defer s.setLoading(false)

	order, err := s.api.PlaceOrder(ctx, domain.PlaceOrderRequest{UserID: userID, MallID: mallID})
	if err != nil {
		s.logger.Warn("Failed to place order", zap.String("mall_id", mallID), zap.Error(err))
		return nil, err
	}

	s.update(func() bool {
		if gen != s.generation {
			return false
		}
		s.generation++
		s.items = []domain.CartItem{}
		s.summary = nil
		return true
	})

	s.logger.Info("Order placed", zap.String("mall_id", mallID), zap.String("order_id", order.ID))
	return order, nil
}

// State returns a snapshot of the cart
func (s *cartService) State() CartState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// Subscribe registers fn to receive every state change. fn runs on the
// goroutine that made the change and must not block.
func (s *cartService) Subscribe(fn func(CartState)) (cancel func()) {
	s.mu.Lock()
	s.nextID++
	id := s.nextID
	s.listeners = append(s.listeners, cartListener{id: id, fn: fn})
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		for i, l := range s.listeners {
			if l.id == id {
				s.listeners = append(s.listeners[:i:i], s.listeners[i+1:]...)
				return
			}
		}
	}
}

// Close abandons pending quantity updates
func (s *cartService) Close() {
	s.updates.Close()
}

type resyncOptions struct {
	silent        bool
	replace       bool
	resolveTempID string
}

// resync pulls the server cart and folds it into local state, unless the
// cart generation moved on while the request was out.
func (s *cartService) resync(ctx context.Context, userID, mallID string, gen uint64, opts resyncOptions) {
	if !opts.silent {
		s.setLoading(true)
		defer s.setLoading(false)
	}

	// shared by every caller joining the flight, so no one caller may abort it
	fetchCtx := context.WithoutCancel(ctx)
	v, err, _ := s.fetches.Do(userID+"/"+mallID, func() (interface{}, error) {
		return s.api.GetCart(fetchCtx, userID, mallID)
	})

	s.update(func() bool {
		if gen != s.generation {
			return false
		}
		if err != nil {
			s.logger.Warn("Failed to fetch cart", zap.String("mall_id", mallID), zap.Error(err))
			s.items = []domain.CartItem{}
			s.summary = nil
			return true
		}

		cart := v.(*domain.Cart)
		if opts.replace {
			s.items = mergeItems(nil, cart.Items, "")
		} else {
			s.items = mergeItems(s.items, cart.Items, opts.resolveTempID)
		}
		s.summary = cart.Summary
		return true
	})
}

// reconcile folds an update/remove response into local state. Failures
// resync from the server and are still reported to the caller.
func (s *cartService) reconcile(ctx context.Context, userID, mallID string, gen uint64, cart *domain.Cart, err error, op domain.Mutation) error {
	if err != nil {
		s.logger.Warn("Cart mutation failed, resyncing",
			zap.String("op", string(op)),
			zap.String("mall_id", mallID),
			zap.Error(err),
		)
		if userID != "" {
			s.resync(ctx, userID, mallID, gen, resyncOptions{silent: true})
		}
		return err
	}

	if !cart.HasItems() {
		if userID != "" {
			s.resync(ctx, userID, mallID, gen, resyncOptions{silent: true})
		}
		return nil
	}

	s.apply(gen, cart, "")
	return nil
}

// apply merges a mutation response carrying a fresh item list
func (s *cartService) apply(gen uint64, cart *domain.Cart, resolveTempID string) {
	s.update(func() bool {
		if gen != s.generation {
			s.logger.Debug("Dropping response for a replaced cart")
			return false
		}
		s.items = mergeItems(s.items, cart.Items, resolveTempID)
		s.summary = cart.Summary
		return true
	})
}

// awaitSync waits for a remote sync to settle, then releases the syncing flag
func (s *cartService) awaitSync(ctx context.Context, done <-chan error) error {
	settled := make(chan error, 1)
	go func() {
		err := <-done
		s.endSync()
		settled <- err
	}()

	select {
	case err := <-settled:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *cartService) beginSyncLocked() {
	s.syncCount++
	s.syncing = true
}

// endSync clears the syncing flag one settle delay after the last sync
// finishes, so the settled items render before the flag drops.
func (s *cartService) endSync() {
	s.mu.Lock()
	s.syncCount--
	if s.syncCount > 0 {
		s.mu.Unlock()
		return
	}
	s.settleToken++
	token := s.settleToken
	s.mu.Unlock()

	time.AfterFunc(s.settleDelay, func() {
		s.update(func() bool {
			if s.syncCount > 0 || s.settleToken != token || !s.syncing {
				return false
			}
			s.syncing = false
			return true
		})
	})
}

func (s *cartService) setLoading(on bool) {
	s.update(func() bool {
		was := s.loadCount > 0
		if on {
			s.loadCount++
		} else if s.loadCount > 0 {
			s.loadCount--
		}
		return was != (s.loadCount > 0)
	})
}

func (s *cartService) removeLocked(cartItemID string) bool {
	for i, item := range s.items {
		if item.CartItemID == cartItemID {
			items := make([]domain.CartItem, 0, len(s.items)-1)
			items = append(items, s.items[:i]...)
			s.items = append(items, s.items[i+1:]...)
			return true
		}
	}
	return false
}

// update runs fn under the lock and, if it reports a change, notifies
// subscribers with the new snapshot.
func (s *cartService) update(fn func() bool) bool {
	s.mu.Lock()
	if !fn() {
		s.mu.Unlock()
		return false
	}
	s.version++
	state := s.snapshotLocked()
	listeners := make([]cartListener, len(s.listeners))
	copy(listeners, s.listeners)
	s.mu.Unlock()

	for _, l := range listeners {
		l.fn(state)
	}
	return true
}

func (s *cartService) snapshotLocked() CartState {
	items := cloneItems(s.items)
	var summary *domain.CartSummary
	if s.summary != nil {
		copied := *s.summary
		summary = &copied
	}

	return CartState{
		Version:    s.version,
		MallID:     s.mallID,
		Items:      items,
		Summary:    summary,
		Financials: domain.CalcFinancials(domain.CartSubtotal(items, summary)),
		ItemCount:  domain.ItemCount(items),
		Loading:    s.loadCount > 0,
		Syncing:    s.syncing,
	}
}

func cloneItems(items []domain.CartItem) []domain.CartItem {
	out := make([]domain.CartItem, len(items))
	copy(out, items)
	return out
}
