package entity

import (
	"time"
)

// DefaultTestDuration - длительность в минутах, если у теста она не задана
const DefaultTestDuration = 30

// Test представляет тест с вложенным списком вопросов
type Test struct {
	ID        uint         `gorm:"primaryKey" json:"id"`
	Title     string       `gorm:"size:200;not null;default:''" json:"title"`
	Subject   string       `gorm:"size:100;not null;default:''" json:"subject"`
	Duration  int          `gorm:"not null;default:0" json:"duration"` // в минутах
	Questions QuestionList `gorm:"type:jsonb;not null" json:"questions"`
	CreatedBy *uint        `gorm:"index" json:"createdBy,omitempty"`
	CreatedAt time.Time    `json:"createdAt"`
	UpdatedAt time.Time    `json:"updatedAt"`
}

// TableName определяет имя таблицы для GORM
func (Test) TableName() string {
	return "tests"
}

// QuestionCount возвращает количество вопросов в тесте
func (t *Test) QuestionCount() int {
	return len(t.Questions)
}

// Score считает количество позиций, где ответ совпадает с правильным вариантом.
// Ответы сверх количества вопросов игнорируются, недостающие считаются неотвеченными.
func (t *Test) Score(answers []int) int {
	score := 0
	for i := range t.Questions {
		if i >= len(answers) {
			break
		}
		if t.Questions[i].IsCorrect(answers[i]) {
			score++
		}
	}
	return score
}

// EffectiveDuration возвращает длительность теста в минутах с учетом значения по умолчанию
func (t *Test) EffectiveDuration() int {
	if t.Duration <= 0 {
		return DefaultTestDuration
	}
	return t.Duration
}
