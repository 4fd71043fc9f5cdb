package middleware

import (
	"context"
	"crypto/sha256"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"nepalstay/internal/pkg/logger"
	"nepalstay/internal/pkg/response"
)

// HitCounter counts hits on key inside a fixed window.
type HitCounter interface {
	Hit(ctx context.Context, key string, window time.Duration) (int64, error)
}

type RedisCounter struct {
	client *redis.Client
}

func NewRedisCounter(client *redis.Client) *RedisCounter {
	return &RedisCounter{client: client}
}

func (r *RedisCounter) Hit(ctx context.Context, key string, window time.Duration) (int64, error) {
	n, err := r.client.Incr(ctx, key).Result()
	if err != nil {
		return 0, err
	}
	if n == 1 {
		if err := r.client.Expire(ctx, key, window).Err(); err != nil {
			return n, err
		}
	}
	return n, nil
}

// RateLimit caps requests per client IP and route. Store errors let the
// request through.
func RateLimit(counter HitCounter, limit int, window time.Duration, log logrus.FieldLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if counter == nil || limit <= 0 {
			c.Next()
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		sum := sha256.Sum256([]byte(c.ClientIP() + "|" + c.FullPath()))
		key := fmt.Sprintf("ratelimit:%x", sum[:12])

		n, err := counter.Hit(ctx, key, window)
		if err != nil {
			logger.FromContext(c.Request.Context(), log).WithError(err).Warn("rate limiter unavailable")
			c.Next()
			return
		}
		if n > int64(limit) {
			c.Header("Retry-After", fmt.Sprintf("%d", int(window.Seconds())))
			response.Error(c, http.StatusTooManyRequests, "RATE_LIMITED", "Too many requests. Try again later.")
			return
		}
		c.Next()
	}
}
