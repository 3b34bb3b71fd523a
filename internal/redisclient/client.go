package redisclient

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"registration-service/internal/models"
)

// Client is a read-side cache. Capacity and stock mutation live exclusively
// in the Postgres conditional updates; Redis only holds advisory capacity
// snapshots and session tokens.
type Client struct {
	rdb *redis.Client
}

// NewClient creates a new Redis client
func NewClient(addr, password string, db int) (*Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	return &Client{rdb: rdb}, nil
}

// GetClient returns the underlying Redis client
func (c *Client) GetClient() *redis.Client {
	return c.rdb
}

// Close closes the Redis connection
func (c *Client) Close() error {
	return c.rdb.Close()
}

// CacheCapacityStatus stores an advisory capacity snapshot with a short TTL.
func (c *Client) CacheCapacityStatus(ctx context.Context, status *models.CapacityStatus, ttl time.Duration) error {
	data, err := json.Marshal(status)
	if err != nil {
		return err
	}
	key := fmt.Sprintf("capacity:%d", status.DistanceID)
	return c.rdb.Set(ctx, key, data, ttl).Err()
}

// GetCachedCapacityStatus returns a cached capacity snapshot, or nil on miss.
func (c *Client) GetCachedCapacityStatus(ctx context.Context, distanceID int64) (*models.CapacityStatus, error) {
	key := fmt.Sprintf("capacity:%d", distanceID)
	data, err := c.rdb.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var status models.CapacityStatus
	if err := json.Unmarshal(data, &status); err != nil {
		return nil, err
	}
	return &status, nil
}

// InvalidateCapacityStatus drops the cached snapshot after a registration
// changes the counter.
func (c *Client) InvalidateCapacityStatus(ctx context.Context, distanceID int64) error {
	return c.rdb.Del(ctx, fmt.Sprintf("capacity:%d", distanceID)).Err()
}

// StoreSession records an issued session token for a user with TTL.
func (c *Client) StoreSession(ctx context.Context, userID int64, token string, ttl time.Duration) error {
	return c.rdb.Set(ctx, fmt.Sprintf("session:%d", userID), token, ttl).Err()
}

// GetSession retrieves a user's recorded session token, or "" when absent.
func (c *Client) GetSession(ctx context.Context, userID int64) (string, error) {
	token, err := c.rdb.Get(ctx, fmt.Sprintf("session:%d", userID)).Result()
	if err == redis.Nil {
		return "", nil
	}
	return token, err
}

// RevokeSession deletes a user's recorded session token.
func (c *Client) RevokeSession(ctx context.Context, userID int64) error {
	return c.rdb.Del(ctx, fmt.Sprintf("session:%d", userID)).Err()
}
