package postgres

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/yourusername/testps-api/internal/domain/entity"
	apperrors "github.com/yourusername/testps-api/internal/pkg/errors"
)

// TestRepo реализует repository.TestRepository
type TestRepo struct {
	db *gorm.DB
}

// NewTestRepo создает новый репозиторий тестов
func NewTestRepo(db *gorm.DB) *TestRepo {
	return &TestRepo{db: db}
}

// Create сохраняет новый тест вместе с вопросами
func (r *TestRepo) Create(ctx context.Context, test *entity.Test) error {
	if test.Questions == nil {
		test.Questions = entity.QuestionList{}
	}
	return r.db.WithContext(ctx).Create(test).Error
}

// GetByID возвращает тест по ID
func (r *TestRepo) GetByID(ctx context.Context, id uint) (*entity.Test, error) {
	var test entity.Test
	err := r.db.WithContext(ctx).First(&test, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &test, nil
}

// List возвращает все тесты
func (r *TestRepo) List(ctx context.Context) ([]entity.Test, error) {
	var tests []entity.Test
	err := r.db.WithContext(ctx).Order("id ASC").Find(&tests).Error
	return tests, err
}

// Update сохраняет все поля теста
func (r *TestRepo) Update(ctx context.Context, test *entity.Test) error {
	result := r.db.WithContext(ctx).Model(test).Select("title", "subject", "duration", "questions", "updated_at").Updates(test)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// Delete удаляет тест. Результаты по нему сохраняются.
func (r *TestRepo) Delete(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Delete(&entity.Test{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}
