package cache

import (
	"context"

	"github.com/dmitrijs2005/legaltrack/internal/client/models"
)

type Repository interface {
	Get(ctx context.Context, key string) (*models.CacheEntry, error)
	Put(ctx context.Context, entry models.CacheEntry) error
	Delete(ctx context.Context, key string) error
	DeletePrefix(ctx context.Context, prefix string) error
	Keys(ctx context.Context, prefix string) ([]string, error)
	Size(ctx context.Context) (int64, error)
	Clear(ctx context.Context) error
}
