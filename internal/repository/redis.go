package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/rocketscienceinc/tictactoe-client/internal/entity"
)

const DefaultSessionKey = "tictactoe:session"

// RedisSessionRepository keeps the session document under a single key.
type RedisSessionRepository struct {
	client *redis.Client
	key    string
}

func NewRedisSessionRepository(client *redis.Client, key string) *RedisSessionRepository {
	if key == "" {
		key = DefaultSessionKey
	}

	return &RedisSessionRepository{
		client: client,
		key:    key,
	}
}

func (that *RedisSessionRepository) Save(ctx context.Context, snapshot entity.Snapshot) error {
	data, err := marshalSnapshot(snapshot)
	if err != nil {
		return err
	}

	if err = that.client.Set(ctx, that.key, data, 0).Err(); err != nil {
		return fmt.Errorf("failed to set session: %w", err)
	}

	return nil
}

func (that *RedisSessionRepository) Load(ctx context.Context) (entity.Snapshot, error) {
	data, err := that.client.Get(ctx, that.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return entity.Snapshot{}, ErrSessionNotFound
	}

	if err != nil {
		return entity.Snapshot{}, fmt.Errorf("failed to get session: %w", err)
	}

	return unmarshalSnapshot(data)
}
