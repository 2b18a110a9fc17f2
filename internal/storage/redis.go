package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/marcelohs402015/app-email-attendant-sub001/internal/models"
	"github.com/redis/go-redis/v9"
)

type RedisConfig struct {
	Addr      string
	Password  string
	DB        int
	KeyPrefix string
}

// RedisSessionRepository stores each session as a JSON value and keeps a
// sorted set of session ids scored by their update time for List.
type RedisSessionRepository struct {
	client *redis.Client
	prefix string
}

func NewRedisClient(cfg RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})
}

func NewRedisSessionRepository(client *redis.Client, prefix string) *RedisSessionRepository {
	return &RedisSessionRepository{client: client, prefix: prefix}
}

// Ping tests the Redis connection
func (r *RedisSessionRepository) Ping(ctx context.Context) error {
	if err := r.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping failed: %w", err)
	}
	return nil
}

func (r *RedisSessionRepository) sessionKey(id string) string {
	return r.prefix + "session:" + id
}

func (r *RedisSessionRepository) indexKey() string {
	return r.prefix + "sessions"
}

func (r *RedisSessionRepository) Get(ctx context.Context, id string) (*models.ChatSession, error) {
	raw, err := r.client.Get(ctx, r.sessionKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("error reading session: %w", err)
	}

	var session models.ChatSession
	if err := json.Unmarshal(raw, &session); err != nil {
		return nil, fmt.Errorf("error decoding session: %w", err)
	}
	return &session, nil
}

func (r *RedisSessionRepository) Put(ctx context.Context, session *models.ChatSession) error {
	raw, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("error encoding session: %w", err)
	}

	_, err = r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, r.sessionKey(session.ID), raw, 0)
		pipe.ZAdd(ctx, r.indexKey(), redis.Z{
			Score:  float64(session.UpdatedAt.UnixNano()),
			Member: session.ID,
		})
		return nil
	})
	if err != nil {
		return fmt.Errorf("error saving session: %w", err)
	}
	return nil
}

func (r *RedisSessionRepository) List(ctx context.Context) ([]*models.ChatSession, error) {
	ids, err := r.client.ZRevRange(ctx, r.indexKey(), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("error listing sessions: %w", err)
	}
	if len(ids) == 0 {
		return []*models.ChatSession{}, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = r.sessionKey(id)
	}
	values, err := r.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("error reading sessions: %w", err)
	}

	sessions := make([]*models.ChatSession, 0, len(values))
	for _, v := range values {
		raw, ok := v.(string)
		if !ok {
			continue
		}
		var session models.ChatSession
		if err := json.Unmarshal([]byte(raw), &session); err != nil {
			return nil, fmt.Errorf("error decoding session: %w", err)
		}
		sessions = append(sessions, &session)
	}
	return sessions, nil
}
