package state

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/redis/go-redis/v9"
)

const lastPartNumberKey = "last_part_number"

// StateManager remembers the part-number counter between runs
type StateManager interface {
	GetLastPartNumber(ctx context.Context) (int, bool, error)
	SetLastPartNumber(ctx context.Context, partNumber int) error
}

type redisStateManager struct {
	redisClient *redis.Client
	keyPrefix   string
}

func NewRedisStateManager(redisClient *redis.Client, keyPrefix string) StateManager {
	return &redisStateManager{
		redisClient: redisClient,
		keyPrefix:   keyPrefix,
	}
}

// GetLastPartNumber returns false when no run has stored a number yet.
func (s *redisStateManager) GetLastPartNumber(ctx context.Context) (int, bool, error) {
	key := s.keyPrefix + lastPartNumberKey
	val, err := s.redisClient.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, false, nil
		}
		return 0, false, fmt.Errorf("failed to get last part number: %w", err)
	}

	n, err := strconv.Atoi(val)
	if err != nil {
		return 0, false, fmt.Errorf("failed to parse last part number %q: %w", val, err)
	}
	return n, true, nil
}

// SetLastPartNumber never lowers the stored value, so a run that issued fewer
// numbers cannot rewind the counter for the next one.
func (s *redisStateManager) SetLastPartNumber(ctx context.Context, partNumber int) error {
	key := s.keyPrefix + lastPartNumberKey

	err := s.redisClient.Watch(ctx, func(tx *redis.Tx) error {
		current, err := tx.Get(ctx, key).Int()
		if err != nil && !errors.Is(err, redis.Nil) {
			return err
		}
		if err == nil && current >= partNumber {
			return nil
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, partNumber, 0)
			return nil
		})
		return err
	}, key)
	if err != nil {
		return fmt.Errorf("failed to set last part number: %w", err)
	}
	return nil
}
