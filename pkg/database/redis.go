package database

import (
	"context"
	"fmt"
	"log"
	"quizgen_backend/internal/config"
	"time"

	"github.com/go-redis/redis/v8"
)

// InitRedis 连接题库缓存，ping 失败返回错误由调用方降级
func InitRedis(cfg *config.RedisConfig) (*redis.Client, error) {
	timeout := cfg.DialTimeout
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	rdb := redis.NewClient(&redis.Options{
		Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     cfg.PoolSize,
		MinIdleConns: 2,
		DialTimeout:  timeout,
		ReadTimeout:  timeout,
		WriteTimeout: timeout,
	})

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("redis ping %s: %w", rdb.Options().Addr, err)
	}

	log.Printf("Redis connection established (%s, db %d)", rdb.Options().Addr, cfg.DB)
	return rdb, nil
}
