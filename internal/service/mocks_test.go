package service

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/yourusername/testps-api/internal/domain/entity"
)

// ============================================================================
// Моки репозиториев и внешних сервисов
// ============================================================================

// MockUserRepository реализует repository.UserRepository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *entity.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) GetByID(ctx context.Context, id uint) (*entity.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.User), args.Error(1)
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.User), args.Error(1)
}

func (m *MockUserRepository) List(ctx context.Context) ([]entity.User, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.User), args.Error(1)
}

func (m *MockUserRepository) UpdateRole(ctx context.Context, id uint, role string) error {
	args := m.Called(ctx, id, role)
	return args.Error(0)
}

func (m *MockUserRepository) Delete(ctx context.Context, id uint) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockTestRepository реализует repository.TestRepository
type MockTestRepository struct {
	mock.Mock
}

func (m *MockTestRepository) Create(ctx context.Context, test *entity.Test) error {
	args := m.Called(ctx, test)
	return args.Error(0)
}

func (m *MockTestRepository) GetByID(ctx context.Context, id uint) (*entity.Test, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Test), args.Error(1)
}

func (m *MockTestRepository) List(ctx context.Context) ([]entity.Test, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.Test), args.Error(1)
}

func (m *MockTestRepository) Update(ctx context.Context, test *entity.Test) error {
	args := m.Called(ctx, test)
	return args.Error(0)
}

func (m *MockTestRepository) Delete(ctx context.Context, id uint) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockResultRepository реализует repository.ResultRepository
type MockResultRepository struct {
	mock.Mock
}

func (m *MockResultRepository) Create(ctx context.Context, result *entity.Result) error {
	args := m.Called(ctx, result)
	return args.Error(0)
}

func (m *MockResultRepository) ListByUser(ctx context.Context, userID uint) ([]entity.Result, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.Result), args.Error(1)
}

func (m *MockResultRepository) ListAll(ctx context.Context) ([]entity.Result, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.Result), args.Error(1)
}

func (m *MockResultRepository) ListByTest(ctx context.Context, testID uint) ([]entity.Result, error) {
	args := m.Called(ctx, testID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.Result), args.Error(1)
}

// MockEmailService реализует EmailService
type MockEmailService struct {
	mock.Mock
}

func (m *MockEmailService) Configured() bool { return true }

func (m *MockEmailService) SendOTP(ctx context.Context, toEmail, code string, validFor time.Duration) error {
	args := m.Called(ctx, toEmail, code, validFor)
	return args.Error(0)
}

// twoQuestionTest - тест с правильными ответами [1, 2]
func twoQuestionTest(id uint) *entity.Test {
	return &entity.Test{
		ID:       id,
		Title:    "Geography",
		Subject:  "Science",
		Duration: 10,
		Questions: entity.QuestionList{
			{Question: "Capital of France?", Options: []string{"Berlin", "Paris", "Rome", "Madrid"}, CorrectAnswer: 1},
			{Question: "2+2?", Options: []string{"3", "5", "4", "22"}, CorrectAnswer: 2},
		},
	}
}
