package notifier

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/julianstephens/finlit/internal/constants"
	"github.com/julianstephens/finlit/internal/models"
)

// Publisher is the slice of *redis.Client the sink uses.
type Publisher interface {
	Publish(ctx context.Context, channel string, message interface{}) *redis.IntCmd
}

// RedisSink publishes reminder events on a pub/sub channel for any UI or
// bridge process subscribed to it.
type RedisSink struct {
	pub     Publisher
	channel string
}

func NewRedisSink(pub Publisher, channel string) *RedisSink {
	if channel == "" {
		channel = constants.NotificationEvent
	}
	return &RedisSink{pub: pub, channel: channel}
}

// DialRedis connects a client and verifies it with PING.
func DialRedis(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", addr, err)
	}
	return client, nil
}

func (s *RedisSink) Notify(ctx context.Context, r models.Reminder) error {
	body, err := NewEvent(r).Marshal()
	if err != nil {
		return err
	}
	if err := s.pub.Publish(ctx, s.channel, body).Err(); err != nil {
		return fmt.Errorf("redis publish to %s: %w", s.channel, err)
	}
	return nil
}
