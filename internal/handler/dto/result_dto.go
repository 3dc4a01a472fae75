package dto

import (
	"time"

	"github.com/jinzhu/copier"

	"github.com/yourusername/testps-api/internal/domain/entity"
)

// SubmitResultRequest - тело POST /results/submit.
// Answers - указатель, чтобы отличать отсутствующий массив от пустого.
type SubmitResultRequest struct {
	UserID  uint   `json:"userId"`
	TestID  uint   `json:"testId"`
	Answers *[]int `json:"answers"`
}

// SubmitResultResponse - ответ на отправку попытки
type SubmitResultResponse struct {
	Message string `json:"message"`
	Score   int    `json:"score"`
}

// TestSummary - заголовок теста, прикрепленный к результату
type TestSummary struct {
	ID      uint   `json:"id"`
	Title   string `json:"title"`
	Subject string `json:"subject"`
}

// ResultResponse - сохраненная попытка
type ResultResponse struct {
	ID             uint         `json:"id"`
	UserID         uint         `json:"userId"`
	TestID         uint         `json:"testId"`
	Answers        []int        `json:"answers" copier:"-"`
	Score          int          `json:"score"`
	TotalQuestions int          `json:"totalQuestions"`
	Date           time.Time    `json:"date"`
	Test           *TestSummary `json:"test,omitempty" copier:"-"`
}

// NewResultResponse конвертирует результат в DTO
func NewResultResponse(result *entity.Result) ResultResponse {
	var resp ResultResponse
	_ = copier.Copy(&resp, result)

	resp.Answers = []int(result.Answers)
	if resp.Answers == nil {
		resp.Answers = []int{}
	}
	if result.Test != nil {
		resp.Test = &TestSummary{ID: result.Test.ID, Title: result.Test.Title, Subject: result.Test.Subject}
	}
	return resp
}

// NewResultListResponse конвертирует список результатов
func NewResultListResponse(results []entity.Result) []ResultResponse {
	resp := make([]ResultResponse, 0, len(results))
	for i := range results {
		resp = append(resp, NewResultResponse(&results[i]))
	}
	return resp
}
