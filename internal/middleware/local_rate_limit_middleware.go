package middleware

import (
	"log"
	"math"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

type clientLimiter struct {
	limiter    *rate.Limiter
	lastAccess time.Time
}

// LocalRateLimiter ограничивает запросы token bucket'ами в памяти процесса.
// Используется, когда Redis выключен.
type LocalRateLimiter struct {
	mu       sync.Mutex
	limiters map[string]*clientLimiter
	idleTTL  time.Duration

	stopCh   chan struct{}
	stopOnce sync.Once
}

// NewLocalRateLimiter создает лимитер и запускает очистку неактивных клиентов
func NewLocalRateLimiter(cleanupInterval time.Duration) *LocalRateLimiter {
	if cleanupInterval <= 0 {
		cleanupInterval = 5 * time.Minute
	}
	rl := &LocalRateLimiter{
		limiters: make(map[string]*clientLimiter),
		idleTTL:  cleanupInterval,
		stopCh:   make(chan struct{}),
	}
	go rl.cleanupLoop(cleanupInterval)
	return rl
}

// Stop останавливает фоновую очистку
func (rl *LocalRateLimiter) Stop() {
	rl.stopOnce.Do(func() { close(rl.stopCh) })
}

// Limit возвращает Gin middleware: MaxRequests запросов за Window с ключом IP + path
func (rl *LocalRateLimiter) Limit(cfg RateLimitConfig) gin.HandlerFunc {
	every := rate.Every(cfg.Window / time.Duration(cfg.MaxRequests))
	return func(c *gin.Context) {
		key := cfg.KeyPrefix + ":" + c.ClientIP() + ":" + routePath(c)
		limiter := rl.get(key, every, cfg.MaxRequests)

		reservation := limiter.Reserve()
		delay := reservation.Delay()
		if delay > 0 {
			reservation.Cancel()
			retryAfter := int(math.Ceil(delay.Seconds()))
			setRateLimitHeaders(c, cfg.MaxRequests, 0, retryAfter)
			log.Printf("[RateLimiter] Local rate limit exceeded for key %s", key)
			abortRateLimited(c, retryAfter)
			return
		}

		setRateLimitHeaders(c, cfg.MaxRequests, int(limiter.Tokens()), int(cfg.Window.Seconds()))
		c.Next()
	}
}

func (rl *LocalRateLimiter) get(key string, every rate.Limit, burst int) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	cl, ok := rl.limiters[key]
	if !ok {
		cl = &clientLimiter{limiter: rate.NewLimiter(every, burst)}
		rl.limiters[key] = cl
	}
	cl.lastAccess = time.Now()
	return cl.limiter
}

func (rl *LocalRateLimiter) cleanupLoop(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			rl.cleanup(time.Now())
		case <-rl.stopCh:
			return
		}
	}
}

func (rl *LocalRateLimiter) cleanup(now time.Time) {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	for key, cl := range rl.limiters {
		if now.Sub(cl.lastAccess) > rl.idleTTL {
			delete(rl.limiters, key)
		}
	}
}
