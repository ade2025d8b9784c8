package identity

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/qzaway/foodcourt/internal/repository"
)

// StorageKey is the durable key holding the anonymous user id
const StorageKey = "qzaway_user_id"

// Provider hands out the stable anonymous user id of this installation
type Provider struct {
	store  repository.IdentityStore
	logger *zap.Logger

	mu     sync.Mutex
	userID string
}

// NewProvider creates a get-or-create identity provider. store may be nil
// while durable storage is not available yet.
func NewProvider(store repository.IdentityStore, logger *zap.Logger) *Provider {
	return &Provider{
		store:  store,
		logger: logger,
	}
}

// UserID returns the persisted id, creating and storing one on first use.
// It returns "" when storage is unavailable so callers can gate on it.
func (p *Provider) UserID(ctx context.Context) string {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.userID != "" {
		return p.userID
	}
	if p.store == nil {
		return ""
	}

	id, ok, err := p.store.Get(ctx, StorageKey)
	if err != nil {
		p.logger.Warn("Identity storage unavailable", zap.Error(err))
		return ""
	}
	if !ok || id == "" {
		id = uuid.NewString()
		if err := p.store.Put(ctx, StorageKey, id); err != nil {
			p.logger.Warn("Failed to persist user id", zap.Error(err))
			return ""
		}
		p.logger.Info("Created anonymous user id", zap.String("user_id", id))
	}

	p.userID = id
	return id
}
