package service

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/qzaway/foodcourt/internal/config"
	"github.com/qzaway/foodcourt/internal/domain"
)

type orderService struct {
	api      OrdersAPI
	identity IdentitySource
	engine   CartEngine
	pageSize int
	logger   *zap.Logger

	mu   sync.Mutex
	meta *domain.PageMeta
}

// NewOrderService creates the order history service
func NewOrderService(api OrdersAPI, identity IdentitySource, engine CartEngine, cfg config.OrdersConfig, logger *zap.Logger) *orderService {
	pageSize := cfg.PageSize
	if pageSize <= 0 {
		pageSize = 10
	}

	return &orderService{
		api:      api,
		identity: identity,
		engine:   engine,
		pageSize: pageSize,
		logger:   logger,
	}
}

// Fetch loads one page of the user's orders. A failed load yields an empty
// page that keeps the last known pagination.
func (s *orderService) Fetch(ctx context.Context, page int) *domain.OrderPage {
	userID := s.identity.UserID(ctx)
	if userID == "" {
		return &domain.OrderPage{Data: []domain.Order{}}
	}
	if page < 1 {
		page = 1
	}

	result, err := s.api.GetOrders(ctx, userID, page, s.pageSize)

	s.mu.Lock()
	defer s.mu.Unlock()

	if err != nil {
		s.logger.Warn("Failed to fetch orders", zap.Int("page", page), zap.Error(err))
		return &domain.OrderPage{Data: []domain.Order{}, Meta: s.meta}
	}

	if result.Data == nil {
		result.Data = []domain.Order{}
	}
	if result.Meta != nil {
		meta := *result.Meta
		s.meta = &meta
	}
	return &domain.OrderPage{Data: result.Data, Meta: s.meta}
}

// Reorder copies a past order into the cart, then reloads the active cart
func (s *orderService) Reorder(ctx context.Context, orderID string) error {
	if err := s.api.Reorder(ctx, orderID); err != nil {
		s.logger.Warn("Failed to reorder", zap.String("order_id", orderID), zap.Error(err))
		return err
	}

	s.logger.Info("Order copied to cart", zap.String("order_id", orderID))
	if s.engine.State().MallID != "" {
		s.engine.Refresh(ctx)
	}
	return nil
}
