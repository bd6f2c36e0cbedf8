package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"canteen_preorder/internal/models"

	"github.com/go-redis/redis/v8"
)

// orderEventsChannel carries every committed order transition so that any
// instance's notifier can fan it out to its own connected clients.
const orderEventsChannel = "orders:events"

type Client struct {
	rdb *redis.Client
}

func Initialize(redisURL string) (*Client, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	rdb := redis.NewClient(opt)

	// Test connection
	ctx := context.Background()
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &Client{rdb: rdb}, nil
}

// Catalog item caching

func (c *Client) SetMenuItem(ctx context.Context, item *models.MenuItem, ttl time.Duration) error {
	jsonData, err := json.Marshal(item)
	if err != nil {
		return fmt.Errorf("failed to marshal menu item: %w", err)
	}
	key := fmt.Sprintf("menu_item:%d", item.ID)
	return c.rdb.Set(ctx, key, jsonData, ttl).Err()
}

func (c *Client) GetMenuItem(ctx context.Context, id uint) (*models.MenuItem, error) {
	key := fmt.Sprintf("menu_item:%d", id)
	val, err := c.rdb.Get(ctx, key).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, fmt.Errorf("menu item not cached")
		}
		return nil, fmt.Errorf("failed to get menu item: %w", err)
	}

	var item models.MenuItem
	if err := json.Unmarshal([]byte(val), &item); err != nil {
		return nil, fmt.Errorf("failed to unmarshal menu item: %w", err)
	}
	return &item, nil
}

// Order event pub/sub

func (c *Client) PublishOrderEvent(ctx context.Context, event *models.OrderEvent) error {
	jsonData, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal order event: %w", err)
	}
	return c.rdb.Publish(ctx, orderEventsChannel, jsonData).Err()
}

// SubscribeOrderEvents delivers committed order events until ctx ends.
// Payloads that fail to decode are skipped; the stream is best-effort.
func (c *Client) SubscribeOrderEvents(ctx context.Context, handle func(*models.OrderEvent)) error {
	sub := c.rdb.Subscribe(ctx, orderEventsChannel)
	if _, err := sub.Receive(ctx); err != nil {
		return fmt.Errorf("failed to subscribe to order events: %w", err)
	}

	go func() {
		defer sub.Close()
		ch := sub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				var event models.OrderEvent
				if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
					continue
				}
				handle(&event)
			}
		}
	}()
	return nil
}

// Close Redis connection
func (c *Client) Close() error {
	return c.rdb.Close()
}
