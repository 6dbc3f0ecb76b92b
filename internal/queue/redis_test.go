package queue

import (
	"context"
	"encoding/json"
	"testing"

	"spareparts/catalog/internal/config"
	"spareparts/catalog/internal/domain/event"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestPublisher(t *testing.T) (*RedisPublisher, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return NewRedisPublisher(rdb, config.RedisConfig{StreamPrefix: "catalog:stream:"}), rdb
}

func TestPublish(t *testing.T) {
	ctx := context.Background()
	q, rdb := newTestPublisher(t)

	built := &event.CatalogBuilt{RunID: "run-1", Path: "catalog.json", Version: "2.0", TotalParts: 42, AddedParts: 7}
	id, err := q.Publish(ctx, built)
	require.NoError(t, err)
	assert.NotEmpty(t, id)

	messages, err := rdb.XRange(ctx, "catalog:stream:CatalogBuilt", "-", "+").Result()
	require.NoError(t, err)
	require.Len(t, messages, 1)
	assert.Equal(t, "CatalogBuilt", messages[0].Values[event.FieldType])

	var decoded event.CatalogBuilt
	require.NoError(t, json.Unmarshal([]byte(messages[0].Values[event.FieldData].(string)), &decoded))
	assert.Equal(t, built, &decoded)
}

func TestPublishAll_RoutesByType(t *testing.T) {
	ctx := context.Background()
	q, rdb := newTestPublisher(t)

	ids, err := q.PublishAll(ctx, []event.Event{
		&event.SubcategoryAppended{RunID: "r", CategoryID: "generators", SubcategoryID: "filters", Name: "Filters", Parts: 3},
		&event.PartsAppended{RunID: "r", CategoryID: "generators", SubcategoryID: "engine-parts", PartNumbers: []string{"PST-10000"}},
		&event.CatalogBuilt{RunID: "r"},
	})
	require.NoError(t, err)
	assert.Len(t, ids, 3)

	for _, eventType := range []string{"SubcategoryAppended", "PartsAppended", "CatalogBuilt"} {
		n, err := rdb.XLen(ctx, q.StreamName(eventType)).Result()
		require.NoError(t, err)
		assert.EqualValues(t, 1, n, eventType)
	}
}
