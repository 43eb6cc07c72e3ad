package store

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/cloudlinker/uploader/internal/models"
)

type memStore struct {
	records  []models.UploadRecord
	appended int
}

func (m *memStore) Append(ctx context.Context, record *models.UploadRecord) error {
	m.appended++
	m.records = append([]models.UploadRecord{*record}, m.records...)
	return nil
}

func (m *memStore) ListRecent(ctx context.Context) ([]models.UploadRecord, error) {
	return m.records, nil
}

// An unreachable Redis must degrade to the inner store, never fail the
// request.
func TestCachedStore_DegradesWithoutRedis(t *testing.T) {
	inner := &memStore{records: []models.UploadRecord{{ID: "id1", OriginalName: "a.jpg"}}}
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1", // nothing listens here
		DialTimeout: 50 * time.Millisecond,
	})
	cached := NewCachedStore(inner, client, time.Minute, zap.NewNop())

	got, err := cached.ListRecent(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "a.jpg", got[0].OriginalName)

	err = cached.Append(context.Background(), &models.UploadRecord{ID: "id2", OriginalName: "b.png"})
	require.NoError(t, err)
	assert.Equal(t, 1, inner.appended)

	assert.Error(t, cached.Ping(context.Background()))
}
