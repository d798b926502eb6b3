package redisstore

import (
	"context"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

type Store struct {
	rdb *redis.Client
}

func New(addr, password string, db int) *Store {
	return &Store{rdb: redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})}
}

func NewFromClient(rdb *redis.Client) *Store {
	return &Store{rdb: rdb}
}

func (s *Store) Ping(ctx context.Context) error {
	return s.rdb.Ping(ctx).Err()
}

func (s *Store) Close() error {
	return s.rdb.Close()
}

func resetCooldownKey(email string) string {
	return "pwreset:cooldown:" + strings.ToLower(strings.TrimSpace(email))
}

// AcquireResetCooldown reports true when no reset was requested for email
// within ttl, and starts a new cooldown window in that case.
func (s *Store) AcquireResetCooldown(ctx context.Context, email string, ttl time.Duration) (bool, error) {
	return s.rdb.SetNX(ctx, resetCooldownKey(email), time.Now().Unix(), ttl).Result()
}

// ReleaseResetCooldown clears the cooldown, e.g. when the request failed.
func (s *Store) ReleaseResetCooldown(ctx context.Context, email string) error {
	return s.rdb.Del(ctx, resetCooldownKey(email)).Err()
}
