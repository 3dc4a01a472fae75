package memory

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	apperrors "github.com/yourusername/testps-api/internal/pkg/errors"
)

// DefaultJanitorInterval - период фоновой очистки истекших ключей
const DefaultJanitorInterval = time.Minute

type item struct {
	value     string
	expiresAt time.Time // нулевое значение - без срока
}

func (i item) expired(now time.Time) bool {
	return !i.expiresAt.IsZero() && !now.Before(i.expiresAt)
}

// CacheRepo реализует repository.CacheRepository в памяти процесса.
// Истекшие ключи удаляются лениво при чтении и периодически фоновой горутиной.
type CacheRepo struct {
	mu    sync.Mutex
	items map[string]item
	now   func() time.Time

	stop     chan struct{}
	stopOnce sync.Once
}

// NewCacheRepo создает хранилище и запускает очистку с заданным интервалом.
// interval <= 0 отключает фоновую очистку.
func NewCacheRepo(interval time.Duration) *CacheRepo {
	r := &CacheRepo{
		items: make(map[string]item),
		now:   time.Now,
		stop:  make(chan struct{}),
	}
	if interval > 0 {
		go r.janitor(interval)
	}
	return r
}

func (r *CacheRepo) janitor(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			r.deleteExpired()
		case <-r.stop:
			return
		}
	}
}

func (r *CacheRepo) deleteExpired() {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := r.now()
	for key, it := range r.items {
		if it.expired(now) {
			delete(r.items, key)
		}
	}
}

// Close останавливает фоновую очистку. Повторный вызов безопасен.
func (r *CacheRepo) Close() error {
	r.stopOnce.Do(func() { close(r.stop) })
	return nil
}

// Set сохраняет значение; expiration <= 0 означает хранение без срока
func (r *CacheRepo) Set(_ context.Context, key string, value string, expiration time.Duration) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	it := item{value: value}
	if expiration > 0 {
		it.expiresAt = r.now().Add(expiration)
	}
	r.items[key] = it
	return nil
}

// Get возвращает значение или apperrors.ErrNotFound
func (r *CacheRepo) Get(_ context.Context, key string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	it, ok := r.items[key]
	if !ok {
		return "", apperrors.ErrNotFound
	}
	if it.expired(r.now()) {
		delete(r.items, key)
		return "", apperrors.ErrNotFound
	}
	return it.value, nil
}

// Delete удаляет ключ; отсутствие ключа ошибкой не считается
func (r *CacheRepo) Delete(_ context.Context, key string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.items, key)
	return nil
}

// SetJSON сохраняет структуру JSON
func (r *CacheRepo) SetJSON(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return r.Set(ctx, key, string(data), expiration)
}

// GetJSON получает структуру JSON
func (r *CacheRepo) GetJSON(ctx context.Context, key string, dest interface{}) error {
	data, err := r.Get(ctx, key)
	if err != nil {
		return err
	}
	return json.Unmarshal([]byte(data), dest)
}
