package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	goredis "github.com/redis/go-redis/v9"

	"transcriptions/internal/config"
	"transcriptions/internal/logger"
	"transcriptions/internal/model"
)

const redisKeyPrefix = "transcriptions:"

type redisRepository struct {
	rdb *goredis.Client
	log *logger.Logger
}

// NewRedisClient creates a go-redis client from the Redis settings.
func NewRedisClient(cfg config.RedisConfig) *goredis.Client {
	return goredis.NewClient(&goredis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
}

// NewRedisRepository creates a repository storing each record as a JSON
// encoded item under "transcriptions:<id>".
func NewRedisRepository(rdb *goredis.Client, log *logger.Logger) TranscriptionRepository {
	return &redisRepository{
		rdb: rdb,
		log: log.WithComponent("redis"),
	}
}

func redisKey(id int64) string {
	return redisKeyPrefix + model.Key(id)
}

func (r *redisRepository) Get(ctx context.Context, id int64) (model.Item, error) {
	raw, err := r.rdb.Get(ctx, redisKey(id)).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get transcription %d: %w", id, err)
	}

	var item model.Item
	if err := json.Unmarshal(raw, &item); err != nil {
		return nil, fmt.Errorf("failed to decode transcription %d: %w", id, err)
	}
	return item, nil
}

func (r *redisRepository) CreateIfAbsent(ctx context.Context, t *model.Transcription) error {
	raw, err := json.Marshal(t.Item())
	if err != nil {
		return fmt.Errorf("failed to encode transcription %d: %w", t.ID, err)
	}

	created, err := r.rdb.SetNX(ctx, redisKey(t.ID), raw, 0).Result()
	if err != nil {
		return fmt.Errorf("failed to put transcription %d: %w", t.ID, err)
	}
	if !created {
		r.log.Warn("SETNX lost to an existing record", map[string]interface{}{"id": t.ID})
		return ErrAlreadyExists
	}
	return nil
}

func (r *redisRepository) Delete(ctx context.Context, id int64) error {
	if err := r.rdb.Del(ctx, redisKey(id)).Err(); err != nil {
		return fmt.Errorf("failed to delete transcription %d: %w", id, err)
	}
	return nil
}
