package middleware

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
)

// RateLimitConfig содержит настройки rate limiting
type RateLimitConfig struct {
	// MaxRequests - максимальное количество запросов за Window
	MaxRequests int
	// Window - временное окно для подсчёта запросов
	Window time.Duration
	// KeyPrefix - префикс для ключей
	KeyPrefix string
}

// OTPRateLimitConfig возвращает конфигурацию для отправки одноразовых кодов
func OTPRateLimitConfig(maxRequests int, window time.Duration) RateLimitConfig {
	if maxRequests <= 0 {
		maxRequests = 5
	}
	if window <= 0 {
		window = time.Minute
	}
	return RateLimitConfig{
		MaxRequests: maxRequests,
		Window:      window,
		KeyPrefix:   "rl:otp",
	}
}

// Limiter создаёт middleware ограничения частоты запросов
type Limiter interface {
	Limit(cfg RateLimitConfig) gin.HandlerFunc
}

// RateLimiter ограничивает запросы счётчиками в Redis; общий для всех инстансов
type RateLimiter struct {
	redisClient redis.UniversalClient
}

// NewRateLimiter создает новый RateLimiter
func NewRateLimiter(redisClient redis.UniversalClient) *RateLimiter {
	return &RateLimiter{redisClient: redisClient}
}

// Limit возвращает Gin middleware с заданной конфигурацией
// Ключ формируется из IP + endpoint path
func (rl *RateLimiter) Limit(cfg RateLimitConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		clientIP := c.ClientIP()
		key := fmt.Sprintf("%s:%s:%s", cfg.KeyPrefix, clientIP, routePath(c))

		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		// Инкрементируем счётчик
		count, err := rl.redisClient.Incr(ctx, key).Result()
		if err != nil {
			// При ошибке Redis пропускаем запрос (fail-open), но логируем
			log.Printf("[RateLimiter] Redis error for key %s: %v. Allowing request (fail-open).", key, err)
			c.Next()
			return
		}

		// Если это первый запрос в окне - устанавливаем TTL
		if count == 1 {
			if err := rl.redisClient.Expire(ctx, key, cfg.Window).Err(); err != nil {
				log.Printf("[RateLimiter] Failed to set TTL for key %s: %v", key, err)
			}
		}

		ttl, _ := rl.redisClient.TTL(ctx, key).Result()
		retryAfter := int(ttl.Seconds())
		if retryAfter < 0 {
			retryAfter = int(cfg.Window.Seconds())
		}

		setRateLimitHeaders(c, cfg.MaxRequests, cfg.MaxRequests-int(count), retryAfter)

		if int(count) > cfg.MaxRequests {
			log.Printf("[RateLimiter] Rate limit exceeded for IP=%s path=%s. Count=%d, Limit=%d",
				clientIP, routePath(c), count, cfg.MaxRequests)
			abortRateLimited(c, retryAfter)
			return
		}

		c.Next()
	}
}

func routePath(c *gin.Context) string {
	path := c.FullPath() // Gin route pattern, e.g. "/api/auth/send-otp"
	if path == "" {
		path = c.Request.URL.Path
	}
	return path
}

func setRateLimitHeaders(c *gin.Context, limit, remaining, resetSec int) {
	if remaining < 0 {
		remaining = 0
	}
	c.Header("X-RateLimit-Limit", fmt.Sprintf("%d", limit))
	c.Header("X-RateLimit-Remaining", fmt.Sprintf("%d", remaining))
	c.Header("X-RateLimit-Reset", fmt.Sprintf("%d", resetSec))
}

func abortRateLimited(c *gin.Context, retryAfter int) {
	c.Header("Retry-After", fmt.Sprintf("%d", retryAfter))
	c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
		"error":       "Too many requests. Please try again later.",
		"error_type":  "rate_limited",
		"retry_after": retryAfter,
	})
}
