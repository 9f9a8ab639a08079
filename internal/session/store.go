package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"scrapbot/internal/bot"
)

// Store persists dialogue sessions between turns, keyed by the conversation's
// session id.
type Store interface {
	Get(ctx context.Context, id string) (*bot.Session, error)
	Save(ctx context.Context, id string, s *bot.Session) error
	Clear(ctx context.Context, id string) error
}

var _ Store = (*RedisStore)(nil)

// RedisStore keeps sessions in Redis as JSON with a sliding TTL. A missing
// key is not an error: it yields a fresh session at the start of the dialogue.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

func NewRedisStore(addr, password string, db int, ttl time.Duration, logger *zap.Logger) *RedisStore {
	return &RedisStore{
		client: redis.NewClient(&redis.Options{
			Addr:         addr,
			Password:     password,
			DB:           db,
			PoolSize:     100,
			MinIdleConns: 10,
		}),
		ttl:    ttl,
		logger: logger,
	}
}

// Ping verifies the Redis connection at startup.
func (s *RedisStore) Ping(ctx context.Context) error {
	if err := s.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping: %w", err)
	}
	return nil
}

func (s *RedisStore) Get(ctx context.Context, id string) (*bot.Session, error) {
	data, err := s.client.Get(ctx, buildSessionKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return &bot.Session{Step: bot.StepStart}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}

	var sess bot.Session
	if err := json.Unmarshal(data, &sess); err != nil {
		return nil, fmt.Errorf("unmarshal session: %w", err)
	}
	return &sess, nil
}

func (s *RedisStore) Save(ctx context.Context, id string, sess *bot.Session) error {
	data, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}

	if err := s.client.Set(ctx, buildSessionKey(id), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

func (s *RedisStore) Clear(ctx context.Context, id string) error {
	if err := s.client.Del(ctx, buildSessionKey(id)).Err(); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}

// Allow implements a fixed-window rate limit per session id. The counter key
// expires after the window, so an idle session costs nothing.
func (s *RedisStore) Allow(ctx context.Context, id string, limit int64, window time.Duration) (bool, error) {
	key := fmt.Sprintf("ratelimit:%s", id)

	count, err := s.client.Incr(ctx, key).Result()
	if err != nil {
		return false, fmt.Errorf("increment rate limit counter: %w", err)
	}
	if count == 1 {
		if err := s.client.Expire(ctx, key, window).Err(); err != nil {
			return false, fmt.Errorf("set rate limit window: %w", err)
		}
	}
	return count <= limit, nil
}

func (s *RedisStore) Close() {
	if s.client != nil {
		_ = s.client.Close()
	}
}

func buildSessionKey(id string) string {
	return fmt.Sprintf("session:%s", id)
}
