package postgres

import (
	"context"

	"gorm.io/gorm"

	"github.com/yourusername/testps-api/internal/domain/entity"
)

// ResultRepo реализует repository.ResultRepository
type ResultRepo struct {
	db *gorm.DB
}

// NewResultRepo создает новый репозиторий результатов
func NewResultRepo(db *gorm.DB) *ResultRepo {
	return &ResultRepo{db: db}
}

// Create сохраняет результат попытки
func (r *ResultRepo) Create(ctx context.Context, result *entity.Result) error {
	if result.Answers == nil {
		result.Answers = entity.IntArray{}
	}
	return r.db.WithContext(ctx).Create(result).Error
}

// ListByUser возвращает результаты пользователя, новые первыми.
// Тест подгружается для отображения названия и предмета; у удаленного теста Test будет nil.
func (r *ResultRepo) ListByUser(ctx context.Context, userID uint) ([]entity.Result, error) {
	var results []entity.Result
	err := r.db.WithContext(ctx).
		Preload("Test").
		Where("user_id = ?", userID).
		Order("date DESC, id DESC").
		Find(&results).Error
	return results, err
}

// ListAll возвращает все результаты платформы
func (r *ResultRepo) ListAll(ctx context.Context) ([]entity.Result, error) {
	var results []entity.Result
	err := r.db.WithContext(ctx).
		Preload("Test", func(db *gorm.DB) *gorm.DB {
			return db.Select("id", "title", "subject", "duration", "created_at", "updated_at")
		}).
		Order("date DESC, id DESC").
		Find(&results).Error
	return results, err
}

// ListByTest возвращает результаты по одному тесту в порядке отправки
func (r *ResultRepo) ListByTest(ctx context.Context, testID uint) ([]entity.Result, error) {
	var results []entity.Result
	err := r.db.WithContext(ctx).
		Where("test_id = ?", testID).
		Order("date ASC, id ASC").
		Find(&results).Error
	return results, err
}
