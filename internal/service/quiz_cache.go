package service

import (
	"context"
	"encoding/json"
	"fmt"
	"quizgen_backend/internal/model"
	"quizgen_backend/pkg/logger"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

const quizCacheKeyPrefix = "quiz:"

// QuizCache 测验读缓存，未命中与读取失败都返回 false
type QuizCache interface {
	Get(ctx context.Context, id uint) (*model.Quiz, bool)
	Set(ctx context.Context, quiz *model.Quiz)
	Delete(ctx context.Context, id uint)
}

type RedisQuizCache struct {
	Redis *redis.Client
	TTL   time.Duration
}

func NewRedisQuizCache(rdb *redis.Client, ttl time.Duration) *RedisQuizCache {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &RedisQuizCache{Redis: rdb, TTL: ttl}
}

func quizCacheKey(id uint) string {
	return fmt.Sprintf("%s%d", quizCacheKeyPrefix, id)
}

func (c *RedisQuizCache) Get(ctx context.Context, id uint) (*model.Quiz, bool) {
	val, err := c.Redis.Get(ctx, quizCacheKey(id)).Result()
	if err == redis.Nil {
		return nil, false
	} else if err != nil {
		logger.Log.Warn("Quiz cache read failed", zap.Uint("quiz_id", id), zap.Error(err))
		return nil, false
	}

	var quiz model.Quiz
	if err := json.Unmarshal([]byte(val), &quiz); err != nil {
		logger.Log.Warn("Quiz cache entry is corrupt", zap.Uint("quiz_id", id), zap.Error(err))
		c.Delete(ctx, id)
		return nil, false
	}
	return &quiz, true
}

func (c *RedisQuizCache) Set(ctx context.Context, quiz *model.Quiz) {
	val, err := json.Marshal(quiz)
	if err != nil {
		return
	}
	if err := c.Redis.Set(ctx, quizCacheKey(quiz.ID), val, c.TTL).Err(); err != nil {
		logger.Log.Warn("Quiz cache write failed", zap.Uint("quiz_id", quiz.ID), zap.Error(err))
	}
}

func (c *RedisQuizCache) Delete(ctx context.Context, id uint) {
	if err := c.Redis.Del(ctx, quizCacheKey(id)).Err(); err != nil {
		logger.Log.Warn("Quiz cache invalidation failed", zap.Uint("quiz_id", id), zap.Error(err))
	}
}

// noQuizCache 未启用 redis 时使用
type noQuizCache struct{}

func (noQuizCache) Get(context.Context, uint) (*model.Quiz, bool) { return nil, false }
func (noQuizCache) Set(context.Context, *model.Quiz)              {}
func (noQuizCache) Delete(context.Context, uint)                  {}
