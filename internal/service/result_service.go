package service

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/yourusername/testps-api/internal/domain/entity"
	"github.com/yourusername/testps-api/internal/domain/repository"
	apperrors "github.com/yourusername/testps-api/internal/pkg/errors"
)

// SubmitInput - одна попытка прохождения теста.
// Answers - указатель, чтобы отличать отсутствующий массив от пустого.
type SubmitInput struct {
	UserID  uint
	TestID  uint
	Answers *[]int
}

// ResultService оценивает попытки и отдает сохраненные результаты
type ResultService struct {
	resultRepo repository.ResultRepository
	testRepo   repository.TestRepository
	userRepo   repository.UserRepository
	now        func() time.Time
}

// NewResultService создает новый сервис результатов
func NewResultService(
	resultRepo repository.ResultRepository,
	testRepo repository.TestRepository,
	userRepo repository.UserRepository,
) *ResultService {
	return &ResultService{
		resultRepo: resultRepo,
		testRepo:   testRepo,
		userRepo:   userRepo,
		now:        time.Now,
	}
}

// Submit считает баллы по текущим вопросам теста и сохраняет новый результат.
// Повторные попытки не объединяются: каждая отправка создает отдельную запись.
func (s *ResultService) Submit(ctx context.Context, input SubmitInput) (*entity.Result, error) {
	if input.UserID == 0 || input.TestID == 0 || input.Answers == nil {
		return nil, fmt.Errorf("%w: userId, testId and answers are required", apperrors.ErrValidation)
	}

	test, err := s.testRepo.GetByID(ctx, input.TestID)
	if err != nil {
		return nil, err
	}

	answers := *input.Answers
	result := &entity.Result{
		UserID:         input.UserID,
		TestID:         test.ID,
		Answers:        entity.IntArray(append([]int{}, answers...)),
		Score:          test.Score(answers),
		TotalQuestions: test.QuestionCount(),
		Date:           s.now(),
	}
	if err := s.resultRepo.Create(ctx, result); err != nil {
		log.Printf("[ResultService] Ошибка сохранения результата user=%d test=%d: %v", input.UserID, input.TestID, err)
		return nil, err
	}

	log.Printf("[ResultService] Пользователь ID=%d прошел тест ID=%d: %d/%d",
		result.UserID, result.TestID, result.Score, result.TotalQuestions)
	return result, nil
}

// ListByUser возвращает результаты пользователя от новых к старым
func (s *ResultService) ListByUser(ctx context.Context, userID uint) ([]entity.Result, error) {
	if userID == 0 {
		return nil, fmt.Errorf("%w: invalid user id", apperrors.ErrValidation)
	}
	return s.resultRepo.ListByUser(ctx, userID)
}

// ListAll возвращает все результаты платформы
func (s *ResultService) ListAll(ctx context.Context) ([]entity.Result, error) {
	return s.resultRepo.ListAll(ctx)
}

// ExportRow - строка выгрузки результатов теста
type ExportRow struct {
	ResultID       uint
	UserName       string
	Email          string
	Score          int
	TotalQuestions int
	Date           time.Time
}

// ExportData собирает строки выгрузки результатов одного теста
func (s *ResultService) ExportData(ctx context.Context, testID uint) (*entity.Test, []ExportRow, error) {
	test, err := s.testRepo.GetByID(ctx, testID)
	if err != nil {
		return nil, nil, err
	}

	results, err := s.resultRepo.ListByTest(ctx, testID)
	if err != nil {
		return nil, nil, err
	}

	users, err := s.userRepo.List(ctx)
	if err != nil {
		return nil, nil, err
	}
	byID := make(map[uint]entity.User, len(users))
	for _, u := range users {
		byID[u.ID] = u
	}

	rows := make([]ExportRow, 0, len(results))
	for _, r := range results {
		row := ExportRow{
			ResultID:       r.ID,
			UserName:       "(deleted user)",
			Score:          r.Score,
			TotalQuestions: r.TotalQuestions,
			Date:           r.Date,
		}
		if u, ok := byID[r.UserID]; ok {
			row.UserName = u.Name
			row.Email = u.Email
		}
		rows = append(rows, row)
	}
	return test, rows, nil
}
