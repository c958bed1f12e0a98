// Package ratelimit limita las mutaciones de stock por empresa con ventana
// fija sobre contadores Redis.
package ratelimit

import (
	"context"
	"fmt"
	"time"

	redis "github.com/redis/go-redis/v9"
)

// RedisLimiter contador por (clave, ventana). La clave incluye el número de
// ventana (unix / window), de modo que cada ventana usa una key nueva que
// expira sola.
type RedisLimiter struct {
	client *redis.Client
	limit  int
	window time.Duration
}

// NewRedisLimiter construye el limitador. limit <= 0 deja pasar todo.
func NewRedisLimiter(client *redis.Client, limit int, window time.Duration) *RedisLimiter {
	if window <= 0 {
		window = time.Minute
	}
	return &RedisLimiter{client: client, limit: limit, window: window}
}

// Allow indica si la clave (normalmente company_id) aún tiene cupo en la
// ventana actual.
func (l *RedisLimiter) Allow(ctx context.Context, key string) (bool, error) {
	if l.limit <= 0 {
		return true, nil
	}
	bucket := time.Now().Unix() / int64(l.window.Seconds())
	redisKey := fmt.Sprintf("ratelimit:%s:%d", key, bucket)
	n, err := l.client.Incr(ctx, redisKey).Result()
	if err != nil {
		return false, err
	}
	if n == 1 {
		// Primera petición de la ventana: fijar expiración.
		l.client.Expire(ctx, redisKey, l.window)
	}
	return n <= int64(l.limit), nil
}
