package entity

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
)

// OptionsPerQuestion - количество вариантов ответа у каждого вопроса
const OptionsPerQuestion = 4

// Unanswered - значение-маркер для вопроса без выбранного ответа
const Unanswered = -1

// Question представляет вопрос теста. Вопросы хранятся внутри теста и
// не имеют собственного жизненного цикла.
type Question struct {
	Question      string   `json:"question"`
	Options       []string `json:"options"`
	CorrectAnswer int      `json:"correctAnswer"`
}

// IsCorrect проверяет, является ли выбранный вариант правильным.
// Маркер Unanswered и индексы вне диапазона никогда не совпадают.
func (q *Question) IsCorrect(selectedOption int) bool {
	if !q.IsValidOption(selectedOption) {
		return false
	}
	return selectedOption == q.CorrectAnswer
}

// IsValidOption проверяет, является ли выбранный вариант допустимым
func (q *Question) IsValidOption(selectedOption int) bool {
	return selectedOption >= 0 && selectedOption < OptionsPerQuestion
}

// QuestionList - список вопросов, хранимый в JSONB колонке
type QuestionList []Question

// Scan реализует интерфейс sql.Scanner для QuestionList
func (l *QuestionList) Scan(value interface{}) error {
	// Обработка NULL значений из базы данных
	if value == nil {
		*l = QuestionList{}
		return nil
	}

	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return errors.New("failed to unmarshal JSONB value: expected []byte")
	}

	if len(bytes) == 0 {
		*l = QuestionList{}
		return nil
	}

	return json.Unmarshal(bytes, l)
}

// Value реализует интерфейс driver.Valuer для QuestionList
func (l QuestionList) Value() (driver.Value, error) {
	if len(l) == 0 {
		return []byte("[]"), nil // пустой JSON массив вместо null
	}
	return json.Marshal(l)
}

// IntArray - пользовательский тип для хранения ответов в JSONB
type IntArray []int

// Scan реализует интерфейс sql.Scanner для IntArray
func (a *IntArray) Scan(value interface{}) error {
	if value == nil {
		*a = IntArray{}
		return nil
	}

	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return errors.New("failed to unmarshal JSONB value: expected []byte")
	}

	if len(bytes) == 0 {
		*a = IntArray{}
		return nil
	}

	return json.Unmarshal(bytes, a)
}

// Value реализует интерфейс driver.Valuer для IntArray
func (a IntArray) Value() (driver.Value, error) {
	if len(a) == 0 {
		return []byte("[]"), nil
	}
	return json.Marshal(a)
}
