package service

import (
	"context"
	"fmt"
	"io"
	"log"

	"github.com/yourusername/testps-api/internal/domain/entity"
	"github.com/yourusername/testps-api/internal/domain/repository"
	"github.com/yourusername/testps-api/internal/importer"
	apperrors "github.com/yourusername/testps-api/internal/pkg/errors"
)

// TestInput - данные для создания теста. Структура вопросов не проверяется.
type TestInput struct {
	Title     string
	Subject   string
	Duration  int
	Questions []entity.Question
}

// TestPatch - частичное обновление; nil поля не меняются,
// а Questions при наличии заменяет список целиком.
type TestPatch struct {
	Title     *string
	Subject   *string
	Duration  *int
	Questions *[]entity.Question
}

// TestService предоставляет методы для работы с каталогом тестов
type TestService struct {
	testRepo repository.TestRepository
}

// NewTestService создает новый сервис тестов
func NewTestService(testRepo repository.TestRepository) *TestService {
	return &TestService{testRepo: testRepo}
}

// Create сохраняет новый тест
func (s *TestService) Create(ctx context.Context, input TestInput, creatorID uint) (*entity.Test, error) {
	test := &entity.Test{
		Title:     input.Title,
		Subject:   input.Subject,
		Duration:  input.Duration,
		Questions: entity.QuestionList(input.Questions),
	}
	if test.Questions == nil {
		test.Questions = entity.QuestionList{}
	}
	if creatorID != 0 {
		test.CreatedBy = &creatorID
	}

	if err := s.testRepo.Create(ctx, test); err != nil {
		return nil, fmt.Errorf("failed to create test: %w", err)
	}
	log.Printf("[TestService] Создан тест ID=%d (%q), вопросов: %d", test.ID, test.Title, test.QuestionCount())
	return test, nil
}

// List возвращает все тесты
func (s *TestService) List(ctx context.Context) ([]entity.Test, error) {
	return s.testRepo.List(ctx)
}

// Get возвращает тест по ID
func (s *TestService) Get(ctx context.Context, id uint) (*entity.Test, error) {
	return s.testRepo.GetByID(ctx, id)
}

// Update применяет частичное обновление к тесту.
// Уже сохраненные результаты не пересчитываются.
func (s *TestService) Update(ctx context.Context, id uint, patch TestPatch) (*entity.Test, error) {
	test, err := s.testRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if patch.Title != nil {
		test.Title = *patch.Title
	}
	if patch.Subject != nil {
		test.Subject = *patch.Subject
	}
	if patch.Duration != nil {
		test.Duration = *patch.Duration
	}
	if patch.Questions != nil {
		test.Questions = entity.QuestionList(*patch.Questions)
		if test.Questions == nil {
			test.Questions = entity.QuestionList{}
		}
	}

	if err := s.testRepo.Update(ctx, test); err != nil {
		return nil, err
	}
	return test, nil
}

// Delete удаляет тест
func (s *TestService) Delete(ctx context.Context, id uint) error {
	if err := s.testRepo.Delete(ctx, id); err != nil {
		return err
	}
	log.Printf("[TestService] Тест ID=%d удален", id)
	return nil
}

// ImportPreview разбирает загруженный файл с вопросами и возвращает отчет.
// Ничего не сохраняет: администратор подтверждает вопросы отдельным запросом.
func (s *TestService) ImportPreview(filename string, r io.Reader) (*importer.Report, error) {
	report, err := importer.Import(filename, r)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrValidation, err)
	}
	return report, nil
}
