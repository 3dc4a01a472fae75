package repository

import (
	"context"

	"github.com/yourusername/testps-api/internal/domain/entity"
)

// TestRepository определяет методы для работы с тестами
type TestRepository interface {
	Create(ctx context.Context, test *entity.Test) error
	GetByID(ctx context.Context, id uint) (*entity.Test, error)
	// List возвращает все тесты в порядке возрастания ID
	List(ctx context.Context) ([]entity.Test, error)
	Update(ctx context.Context, test *entity.Test) error
	Delete(ctx context.Context, id uint) error
}
