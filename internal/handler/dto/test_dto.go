package dto

import (
	"time"

	"github.com/jinzhu/copier"

	"github.com/yourusername/testps-api/internal/domain/entity"
)

// CreateTestRequest - тело POST /tests/create. Вопросы сохраняются как есть.
type CreateTestRequest struct {
	Title     string            `json:"title"`
	Subject   string            `json:"subject"`
	Duration  int               `json:"duration"`
	Questions []entity.Question `json:"questions"`
}

// UpdateTestRequest - частичное обновление; отсутствующие поля не меняются
type UpdateTestRequest struct {
	Title     *string            `json:"title"`
	Subject   *string            `json:"subject"`
	Duration  *int               `json:"duration"`
	Questions *[]entity.Question `json:"questions"`
}

// QuestionResponse - вопрос для клиента. CorrectAnswer заполняется только для админа.
type QuestionResponse struct {
	Question      string   `json:"question"`
	Options       []string `json:"options"`
	CorrectAnswer *int     `json:"correctAnswer,omitempty"`
}

// TestResponse - тест в формате для ответа клиенту
type TestResponse struct {
	ID        uint               `json:"id"`
	Title     string             `json:"title"`
	Subject   string             `json:"subject"`
	Duration  int                `json:"duration"`
	Questions []QuestionResponse `json:"questions" copier:"-"`
	CreatedBy *uint              `json:"createdBy,omitempty"`
	CreatedAt time.Time          `json:"createdAt"`
	UpdatedAt time.Time          `json:"updatedAt"`
}

// NewTestResponse конвертирует тест; includeAnswers открывает правильные ответы
func NewTestResponse(test *entity.Test, includeAnswers bool) TestResponse {
	var resp TestResponse
	_ = copier.Copy(&resp, test)

	resp.Questions = make([]QuestionResponse, 0, len(test.Questions))
	for _, q := range test.Questions {
		item := QuestionResponse{Question: q.Question, Options: q.Options}
		if includeAnswers {
			answer := q.CorrectAnswer
			item.CorrectAnswer = &answer
		}
		resp.Questions = append(resp.Questions, item)
	}
	return resp
}

// NewTestListResponse конвертирует список тестов
func NewTestListResponse(tests []entity.Test, includeAnswers bool) []TestResponse {
	resp := make([]TestResponse, 0, len(tests))
	for i := range tests {
		resp = append(resp, NewTestResponse(&tests[i], includeAnswers))
	}
	return resp
}
