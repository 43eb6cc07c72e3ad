package store

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/cloudlinker/uploader/internal/models"
)

const recentUploadsKey = "uploads:recent"

// CachedStore decorates an UploadStore with a Redis cache for the recent
// listing. Cache failures degrade to the underlying store and never fail the
// request.
type CachedStore struct {
	inner  UploadStore
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

func NewCachedStore(inner UploadStore, client *redis.Client, ttl time.Duration, logger *zap.Logger) *CachedStore {
	return &CachedStore{
		inner:  inner,
		client: client,
		ttl:    ttl,
		logger: logger,
	}
}

// Append writes through to the inner store and invalidates the cached
// listing so the next read sees the new record.
func (c *CachedStore) Append(ctx context.Context, record *models.UploadRecord) error {
	if err := c.inner.Append(ctx, record); err != nil {
		return err
	}
	if err := c.client.Del(ctx, recentUploadsKey).Err(); err != nil {
		c.logger.Warn("Failed to invalidate uploads cache", zap.Error(err))
	}
	return nil
}

func (c *CachedStore) ListRecent(ctx context.Context) ([]models.UploadRecord, error) {
	data, err := c.client.Get(ctx, recentUploadsKey).Bytes()
	if err == nil {
		var cached []models.UploadRecord
		if err := json.Unmarshal(data, &cached); err == nil {
			return cached, nil
		}
		// Stale or corrupt entry, fall through to the database.
	} else if err != redis.Nil {
		c.logger.Warn("Uploads cache read failed", zap.Error(err))
	}

	records, err := c.inner.ListRecent(ctx)
	if err != nil {
		return nil, err
	}

	if encoded, err := json.Marshal(records); err == nil {
		if err := c.client.Set(ctx, recentUploadsKey, encoded, c.ttl).Err(); err != nil {
			c.logger.Warn("Uploads cache write failed", zap.Error(err))
		}
	}

	return records, nil
}

// Ping reports cache health for the health endpoint.
func (c *CachedStore) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}
