// Package denylist revokes session tokens before their natural expiry.
// Logout places the token's jti here; the auth middleware rejects anything
// listed. Backed by Redis so entries expire on their own.
package denylist

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Denylist tracks revoked token IDs until the tokens would have expired.
type Denylist interface {
	Revoke(ctx context.Context, jti string, ttl time.Duration) error
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

// Redis stores revoked jtis as keys with a TTL equal to the token's
// remaining lifetime.
type Redis struct {
	client *redis.Client
}

func NewRedis(addr, password string, db int) *Redis {
	return &Redis{client: redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})}
}

func key(jti string) string { return "revoked:" + jti }

func (r *Redis) Revoke(ctx context.Context, jti string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	if err := r.client.Set(ctx, key(jti), 1, ttl).Err(); err != nil {
		return fmt.Errorf("denylist revoke: %w", err)
	}
	return nil
}

func (r *Redis) IsRevoked(ctx context.Context, jti string) (bool, error) {
	n, err := r.client.Exists(ctx, key(jti)).Result()
	if err != nil {
		return false, fmt.Errorf("denylist check: %w", err)
	}
	return n > 0, nil
}

// Ping verifies connectivity at startup.
func (r *Redis) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

// Noop never revokes anything. Used when Redis is not configured; logout is
// then purely client-side until the token expires.
type Noop struct{}

func (Noop) Revoke(context.Context, string, time.Duration) error { return nil }
func (Noop) IsRevoked(context.Context, string) (bool, error)     { return false, nil }
