package queue

import (
	"context"
	"fmt"

	"spareparts/catalog/internal/config"
	"spareparts/catalog/internal/domain/event"

	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
)

// Publisher appends catalog events to per-type Redis streams
type Publisher interface {
	Publish(ctx context.Context, e event.Event) (string, error) // Returns message ID
	PublishAll(ctx context.Context, events []event.Event) ([]string, error)
}

type RedisPublisher struct {
	redisClient  *redis.Client
	streamPrefix string
	maxLen       int64
}

func NewRedisPublisher(redisClient *redis.Client, cfg config.RedisConfig) *RedisPublisher {
	return &RedisPublisher{
		redisClient:  redisClient,
		streamPrefix: cfg.StreamPrefix,
		maxLen:       cfg.StreamMaxLen,
	}
}

// StreamName is the stream events of the given type are written to.
func (q *RedisPublisher) StreamName(eventType string) string {
	return q.streamPrefix + eventType
}

func (q *RedisPublisher) Publish(ctx context.Context, e event.Event) (string, error) {
	eventType := e.EventType()
	streamName := q.StreamName(eventType)

	values, err := event.Message(e)
	if err != nil {
		return "", err
	}

	args := &redis.XAddArgs{
		Stream: streamName,
		Values: values,
	}
	if q.maxLen > 0 {
		args.MaxLen = q.maxLen
		args.Approx = true
	}

	messageID, err := q.redisClient.XAdd(ctx, args).Result()
	if err != nil {
		return "", fmt.Errorf("failed to add event to Redis stream %s: %w", streamName, err)
	}

	log.Debugf("Added event %s to stream %s with message ID: %s", eventType, streamName, messageID)
	return messageID, nil
}

// PublishAll stops at the first failure and returns the IDs written so far.
func (q *RedisPublisher) PublishAll(ctx context.Context, events []event.Event) ([]string, error) {
	ids := make([]string, 0, len(events))
	for _, e := range events {
		id, err := q.Publish(ctx, e)
		if err != nil {
			return ids, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}
