package importer

import (
	"sync"

	"github.com/yourusername/testps-api/internal/domain/entity"
)

// Draft - вопросы создаваемого теста и отложенный предпросмотр импорта.
// Импортированные вопросы попадают в тест только после Confirm.
type Draft struct {
	mu        sync.Mutex
	questions []entity.Question
	pending   []entity.Question
}

// NewDraft создает черновик с уже существующими вопросами
func NewDraft(existing []entity.Question) *Draft {
	return &Draft{questions: append([]entity.Question(nil), existing...)}
}

// Stage заменяет предпросмотр валидными вопросами отчета
func (d *Draft) Stage(report *Report) error {
	if report == nil || len(report.Questions) == 0 {
		return ErrNoValidRows
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.pending = append([]entity.Question(nil), report.Questions...)
	return nil
}

// Pending возвращает копию предпросмотра
func (d *Draft) Pending() []entity.Question {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]entity.Question(nil), d.pending...)
}

// Confirm добавляет предпросмотр в конец списка вопросов и возвращает число добавленных
func (d *Draft) Confirm() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	n := len(d.pending)
	d.questions = append(d.questions, d.pending...)
	d.pending = nil
	return n
}

// Cancel отбрасывает предпросмотр
func (d *Draft) Cancel() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.pending = nil
}

// Questions возвращает копию текущего списка вопросов
func (d *Draft) Questions() []entity.Question {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]entity.Question{}, d.questions...)
}
