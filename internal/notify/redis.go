package notify

import (
	"context"
	"fmt"
	"time"
)

// Publisher is the pub/sub side of the Redis cache.
type Publisher interface {
	Publish(ctx context.Context, channel string, payload []byte) error
}

// RedisPublisher publishes an Envelope to the user's channel
// (notifications:<user id>). The push gateway subscribes there.
type RedisPublisher struct {
	pub Publisher
	now func() time.Time
}

func NewRedisPublisher(pub Publisher) *RedisPublisher {
	return &RedisPublisher{pub: pub, now: time.Now}
}

// Channel returns the pub/sub channel for userID.
func Channel(userID string) string {
	return "notifications:" + userID
}

func (p *RedisPublisher) Notify(ctx context.Context, userID string, e Event) error {
	payload, err := Marshal(userID, e, p.now())
	if err != nil {
		return err
	}
	if err := p.pub.Publish(ctx, Channel(userID), payload); err != nil {
		return fmt.Errorf("publish %s to %s: %w", e.EventType(), userID, err)
	}
	return nil
}
