package service

import (
	"context"
	"fmt"
	"sort"

	"github.com/yourusername/testps-api/internal/domain/entity"
	"github.com/yourusername/testps-api/internal/domain/repository"
	apperrors "github.com/yourusername/testps-api/internal/pkg/errors"
)

// UserAnalytics - сводка по результатам одного пользователя
type UserAnalytics struct {
	TotalTests   int     `json:"totalTests"`
	AverageScore float64 `json:"averageScore"`
	HighestScore int     `json:"highestScore"`
	LowestScore  int     `json:"lowestScore"`
}

// TestAttempts - тест с наибольшим числом попыток
type TestAttempts struct {
	ID       uint   `json:"id"`
	Title    string `json:"title"`
	Attempts int    `json:"attempts"`
}

// TestAverage - средний балл по одному тесту
type TestAverage struct {
	TestID   uint    `json:"testId"`
	Title    string  `json:"title"`
	Avg      float64 `json:"avg"`
	Attempts int     `json:"attempts"`
}

// PlatformAnalytics - сводка по всей платформе
type PlatformAnalytics struct {
	TotalTests        int           `json:"totalTests"`
	TotalQuestions    int           `json:"totalQuestions"`
	MostAttemptedTest *TestAttempts `json:"mostAttemptedTest"`
	AvgScorePerTest   []TestAverage `json:"avgScorePerTest"`
}

// AnalyticsService считает статистику по сохраненным результатам
type AnalyticsService struct {
	resultRepo repository.ResultRepository
	testRepo   repository.TestRepository
}

// NewAnalyticsService создает сервис аналитики
func NewAnalyticsService(resultRepo repository.ResultRepository, testRepo repository.TestRepository) *AnalyticsService {
	return &AnalyticsService{
		resultRepo: resultRepo,
		testRepo:   testRepo,
	}
}

// UserAnalytics возвращает количество попыток, средний, максимальный и минимальный балл.
// Пользователь без результатов получает нулевую сводку, а не ошибку.
func (s *AnalyticsService) UserAnalytics(ctx context.Context, userID uint) (*UserAnalytics, error) {
	if userID == 0 {
		return nil, fmt.Errorf("%w: invalid user id", apperrors.ErrValidation)
	}

	results, err := s.resultRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return summarizeScores(results), nil
}

func summarizeScores(results []entity.Result) *UserAnalytics {
	summary := &UserAnalytics{}
	if len(results) == 0 {
		return summary
	}

	total := 0
	summary.HighestScore = results[0].Score
	summary.LowestScore = results[0].Score
	for _, r := range results {
		total += r.Score
		if r.Score > summary.HighestScore {
			summary.HighestScore = r.Score
		}
		if r.Score < summary.LowestScore {
			summary.LowestScore = r.Score
		}
	}
	summary.TotalTests = len(results)
	summary.AverageScore = float64(total) / float64(len(results))
	return summary
}

// PlatformAnalytics возвращает сводку по всем тестам.
// При равном числе попыток самым популярным считается тест с меньшим ID.
func (s *AnalyticsService) PlatformAnalytics(ctx context.Context) (*PlatformAnalytics, error) {
	tests, err := s.testRepo.List(ctx)
	if err != nil {
		return nil, err
	}
	results, err := s.resultRepo.ListAll(ctx)
	if err != nil {
		return nil, err
	}

	attempts := make(map[uint]int)
	scoreSums := make(map[uint]int)
	for _, r := range results {
		attempts[r.TestID]++
		scoreSums[r.TestID] += r.Score
	}

	analytics := &PlatformAnalytics{
		TotalTests:      len(tests),
		AvgScorePerTest: make([]TestAverage, 0, len(tests)),
	}

	sort.Slice(tests, func(i, j int) bool { return tests[i].ID < tests[j].ID })

	// строгое сравнение при обходе по возрастанию ID дает меньший ID при равенстве
	for _, t := range tests {
		analytics.TotalQuestions += t.QuestionCount()

		n := attempts[t.ID]
		avg := 0.0
		if n > 0 {
			avg = float64(scoreSums[t.ID]) / float64(n)
		}
		analytics.AvgScorePerTest = append(analytics.AvgScorePerTest, TestAverage{
			TestID:   t.ID,
			Title:    t.Title,
			Avg:      avg,
			Attempts: n,
		})

		if n > 0 && (analytics.MostAttemptedTest == nil || n > analytics.MostAttemptedTest.Attempts) {
			analytics.MostAttemptedTest = &TestAttempts{ID: t.ID, Title: t.Title, Attempts: n}
		}
	}
	return analytics, nil
}
