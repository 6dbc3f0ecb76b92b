package state

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestState(t *testing.T) (StateManager, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return NewRedisStateManager(rdb, "catalog:counter:"), mr
}

func TestLastPartNumber(t *testing.T) {
	ctx := context.Background()
	s, mr := newTestState(t)

	_, ok, err := s.GetLastPartNumber(ctx)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.SetLastPartNumber(ctx, 10041))
	n, ok, err := s.GetLastPartNumber(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 10041, n)

	stored, err := mr.Get("catalog:counter:last_part_number")
	require.NoError(t, err)
	assert.Equal(t, "10041", stored)
}

func TestSetLastPartNumber_NeverLowers(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestState(t)

	require.NoError(t, s.SetLastPartNumber(ctx, 10100))
	require.NoError(t, s.SetLastPartNumber(ctx, 10050))

	n, _, err := s.GetLastPartNumber(ctx)
	require.NoError(t, err)
	assert.Equal(t, 10100, n)
}

func TestGetLastPartNumber_Corrupt(t *testing.T) {
	s, mr := newTestState(t)
	require.NoError(t, mr.Set("catalog:counter:last_part_number", "abc"))

	_, _, err := s.GetLastPartNumber(context.Background())
	require.Error(t, err)
}
