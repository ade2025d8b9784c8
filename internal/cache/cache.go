package cache

import (
	"context"
	"errors"
)

// CatalogCache stores catalog listings as JSON under string keys
type CatalogCache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}) error
	Delete(ctx context.Context, key string) error
}

var ErrCacheMiss = errors.New("cache miss")

// Noop never holds anything. Used when no redis is configured.
type Noop struct{}

func (Noop) Get(ctx context.Context, key string, dest interface{}) error {
	return ErrCacheMiss
}

func (Noop) Set(ctx context.Context, key string, value interface{}) error {
	return nil
}

func (Noop) Delete(ctx context.Context, key string) error {
	return nil
}
