package repository

import (
	"context"
	"time"
)

// CacheRepository определяет методы для работы с хранилищем ключей с TTL.
// Отсутствующий или истекший ключ возвращает apperrors.ErrNotFound.
type CacheRepository interface {
	Set(ctx context.Context, key string, value string, expiration time.Duration) error
	Get(ctx context.Context, key string) (string, error)
	Delete(ctx context.Context, key string) error
	SetJSON(ctx context.Context, key string, value interface{}, expiration time.Duration) error
	GetJSON(ctx context.Context, key string, dest interface{}) error
}
