package entity

import (
	"time"
)

// Result представляет результат одной попытки прохождения теста.
// Score вычисляется один раз при отправке и больше не пересчитывается.
type Result struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	UserID         uint      `gorm:"not null;index" json:"userId"`
	TestID         uint      `gorm:"not null;index" json:"testId"`
	Answers        IntArray  `gorm:"type:jsonb;not null" json:"answers"`
	Score          int       `gorm:"not null;default:0" json:"score"`
	TotalQuestions int       `gorm:"not null;default:0" json:"totalQuestions"`
	Date           time.Time `gorm:"not null;index" json:"date"`
	CreatedAt      time.Time `json:"-"`

	Test *Test `gorm:"foreignKey:TestID;references:ID" json:"test,omitempty"`
}

// TableName определяет имя таблицы для GORM
func (Result) TableName() string {
	return "results"
}
