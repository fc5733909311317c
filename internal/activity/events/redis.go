// internal/activity/events/redis.go
package events

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStreamPublisher appends events to one stream per event type.
type RedisStreamPublisher struct {
	client redis.Cmdable
	prefix string
	maxLen int64
}

func NewRedisStreamPublisher(client redis.Cmdable, prefix string, maxLen int64) *RedisStreamPublisher {
	if prefix == "" {
		prefix = "activity"
	}
	return &RedisStreamPublisher{client: client, prefix: prefix, maxLen: maxLen}
}

// StreamKey returns the stream an event type is written to.
func (p *RedisStreamPublisher) StreamKey(eventType string) string {
	return p.prefix + ":" + eventType
}

func (p *RedisStreamPublisher) Publish(ctx context.Context, event Event) error {
	args, err := p.xaddArgs(event)
	if err != nil {
		return err
	}
	if err := p.client.XAdd(ctx, args).Err(); err != nil {
		return fmt.Errorf("xadd %s: %w", args.Stream, err)
	}
	return nil
}

func (p *RedisStreamPublisher) xaddArgs(event Event) (*redis.XAddArgs, error) {
	payload, err := event.Marshal()
	if err != nil {
		return nil, fmt.Errorf("marshal event: %w", err)
	}

	args := &redis.XAddArgs{
		Stream: p.StreamKey(event.Type),
		ID:     "*",
		// slice keeps field order stable on the wire
		Values: []interface{}{
			"id", event.ID,
			"activity", event.Activity,
			"email", event.Email,
			"occurred_at", event.OccurredAt.Format(time.RFC3339Nano),
			"payload", string(payload),
		},
	}
	if p.maxLen > 0 {
		args.MaxLen = p.maxLen
		args.Approx = true
	}
	return args, nil
}
