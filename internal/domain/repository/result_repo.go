package repository

import (
	"context"

	"github.com/yourusername/testps-api/internal/domain/entity"
)

// ResultRepository определяет методы для работы с результатами.
// Результаты неизменяемы: методов обновления и удаления нет.
type ResultRepository interface {
	Create(ctx context.Context, result *entity.Result) error
	// ListByUser возвращает результаты пользователя от новых к старым вместе с тестом
	ListByUser(ctx context.Context, userID uint) ([]entity.Result, error)
	ListAll(ctx context.Context) ([]entity.Result, error)
	ListByTest(ctx context.Context, testID uint) ([]entity.Result, error)
}
