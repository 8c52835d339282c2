package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/rueidis"
)

// Config holds Redis connection parameters.
type Config struct {
	Address  string
	Password string
	DB       int
}

// Client wraps a rueidis client with the small command surface the service
// needs. Reads go through the client-side cache where rueidis supports it.
type Client struct {
	inner rueidis.Client
}

// NewClient connects to Redis and verifies the connection with a ping.
func NewClient(ctx context.Context, cfg Config) (*Client, error) {
	inner, err := rueidis.NewClient(rueidis.ClientOption{
		InitAddress: []string{cfg.Address},
		Password:    cfg.Password,
		SelectDB:    cfg.DB,
	})
	if err != nil {
		return nil, fmt.Errorf("creating redis client: %w", err)
	}

	if err := inner.Do(ctx, inner.B().Ping().Build()).Error(); err != nil {
		inner.Close()
		return nil, fmt.Errorf("pinging redis: %w", err)
	}

	return &Client{inner: inner}, nil
}

// ErrNil is returned by Get when the key does not exist.
var ErrNil = rueidis.Nil

// Get returns the value at key, or ErrNil when absent.
func (c *Client) Get(ctx context.Context, key string) (string, error) {
	v, err := c.inner.Do(ctx, c.inner.B().Get().Key(key).Build()).ToString()
	if err != nil {
		if rueidis.IsRedisNil(err) {
			return "", ErrNil
		}
		return "", fmt.Errorf("redis GET %s: %w", key, err)
	}
	return v, nil
}

// Set stores value at key with the given TTL.
func (c *Client) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	if err := c.inner.Do(ctx, c.inner.B().Set().Key(key).Value(value).Ex(ttl).Build()).Error(); err != nil {
		return fmt.Errorf("redis SET %s: %w", key, err)
	}
	return nil
}

// SetNX stores value at key with the given TTL only if the key does not
// exist. It reports whether the key was set.
func (c *Client) SetNX(ctx context.Context, key, value string, ttl time.Duration) (bool, error) {
	err := c.inner.Do(ctx, c.inner.B().Set().Key(key).Value(value).Nx().Ex(ttl).Build()).Error()
	if err != nil {
		if rueidis.IsRedisNil(err) {
			return false, nil
		}
		return false, fmt.Errorf("redis SETNX %s: %w", key, err)
	}
	return true, nil
}

// Del removes the given keys.
func (c *Client) Del(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	if err := c.inner.Do(ctx, c.inner.B().Del().Key(keys...).Build()).Error(); err != nil {
		return fmt.Errorf("redis DEL: %w", err)
	}
	return nil
}

// DeletePattern removes all keys matching the glob pattern using SCAN.
func (c *Client) DeletePattern(ctx context.Context, pattern string) error {
	var cursor uint64
	for {
		entry, err := c.inner.Do(ctx, c.inner.B().Scan().Cursor(cursor).Match(pattern).Count(100).Build()).AsScanEntry()
		if err != nil {
			return fmt.Errorf("redis SCAN %s: %w", pattern, err)
		}
		if err := c.Del(ctx, entry.Elements...); err != nil {
			return err
		}
		cursor = entry.Cursor
		if cursor == 0 {
			return nil
		}
	}
}

// Eval runs a Lua script with the given keys and arguments and returns the
// result as an integer.
func (c *Client) Eval(ctx context.Context, script string, keys, args []string) (int64, error) {
	n, err := c.inner.Do(ctx, c.inner.B().Eval().Script(script).Numkeys(int64(len(keys))).Key(keys...).Arg(args...).Build()).AsInt64()
	if err != nil {
		return 0, fmt.Errorf("redis EVAL: %w", err)
	}
	return n, nil
}

// Ping verifies connectivity.
func (c *Client) Ping(ctx context.Context) error {
	if err := c.inner.Do(ctx, c.inner.B().Ping().Build()).Error(); err != nil {
		return fmt.Errorf("pinging redis: %w", err)
	}
	return nil
}

// Close releases the underlying connection.
func (c *Client) Close() {
	c.inner.Close()
}
