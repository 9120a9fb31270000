package commit

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"drawboard/internal/domain"
)

const redisPrefix = "drawboard:element-set:"

var ErrNoUpdate = errors.New("no update stored for element set")

// RedisSink publishes commits on a per-element-set channel and keeps the
// most recent one for late joiners.
type RedisSink struct {
	client *redis.Client
	prefix string
}

// NewRedisSink connects to redisURL and checks the connection.
func NewRedisSink(redisURL string) (*RedisSink, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("connect to redis: %w", err)
	}
	return &RedisSink{client: client, prefix: redisPrefix}, nil
}

// NewRedisSinkWithClient wraps an existing client.
func NewRedisSinkWithClient(client *redis.Client) *RedisSink {
	return &RedisSink{client: client, prefix: redisPrefix}
}

func (s *RedisSink) Name() string { return "redis" }

func (s *RedisSink) channel(elementSetID string) string { return s.prefix + elementSetID }

func (s *RedisSink) latestKey(elementSetID string) string {
	return s.prefix + elementSetID + ":latest"
}

func (s *RedisSink) Deliver(ctx context.Context, msg domain.ElementSetUpdate) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal update: %w", err)
	}
	pipe := s.client.Pipeline()
	pipe.Set(ctx, s.latestKey(msg.TargetElementSetID), data, 0)
	pipe.Publish(ctx, s.channel(msg.TargetElementSetID), data)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("publish update: %w", err)
	}
	return nil
}

// Latest returns the most recent update stored for elementSetID.
func (s *RedisSink) Latest(ctx context.Context, elementSetID string) (domain.ElementSetUpdate, error) {
	var msg domain.ElementSetUpdate
	data, err := s.client.Get(ctx, s.latestKey(elementSetID)).Bytes()
	if err == redis.Nil {
		return msg, ErrNoUpdate
	}
	if err != nil {
		return msg, fmt.Errorf("lookup latest update: %w", err)
	}
	if err := json.Unmarshal(data, &msg); err != nil {
		return msg, fmt.Errorf("unmarshal update: %w", err)
	}
	return msg, nil
}

// Subscription receives updates published on every element-set channel.
type Subscription struct {
	ps *redis.PubSub
}

// Subscribe listens on every element-set channel. The subscription is
// confirmed before Subscribe returns.
func (s *RedisSink) Subscribe(ctx context.Context) (*Subscription, error) {
	ps := s.client.PSubscribe(ctx, s.prefix+"*")
	if _, err := ps.Receive(ctx); err != nil {
		ps.Close()
		return nil, fmt.Errorf("subscribe: %w", err)
	}
	return &Subscription{ps: ps}, nil
}

// Run passes decoded updates to fn until ctx is cancelled or the
// subscription is closed.
func (sub *Subscription) Run(ctx context.Context, fn func(domain.ElementSetUpdate)) {
	ch := sub.ps.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case m, ok := <-ch:
			if !ok {
				return
			}
			var msg domain.ElementSetUpdate
			if err := json.Unmarshal([]byte(m.Payload), &msg); err != nil {
				continue
			}
			fn(msg)
		}
	}
}

func (sub *Subscription) Close() error {
	return sub.ps.Close()
}

func (s *RedisSink) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func (s *RedisSink) Close() error {
	return s.client.Close()
}
