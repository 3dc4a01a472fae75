package session

import "github.com/yourusername/testps-api/internal/domain/entity"

// PaletteStatus - отображаемый статус вопроса в навигационной сетке
type PaletteStatus string

const (
	StatusCurrent     PaletteStatus = "current"
	StatusReview      PaletteStatus = "review"
	StatusAnswered    PaletteStatus = "answered"
	StatusNotAnswered PaletteStatus = "notAnswered"
)

// Snapshot - неизменяемый срез состояния для отображения
type Snapshot struct {
	State     State
	TestID    uint
	Title     string
	Current   int
	Question  *entity.Question
	Answers   []int
	Marked    []bool
	Palette   []PaletteStatus
	Answered  int
	Remaining int // секунды
	InFlight  bool
	Outcome   *Outcome
	LastErr   error
}

// statusLocked: current > review > answered > notAnswered
func (s *Session) statusLocked(i int) PaletteStatus {
	switch {
	case i == s.current:
		return StatusCurrent
	case s.marked[i]:
		return StatusReview
	case s.answers[i] != entity.Unanswered:
		return StatusAnswered
	default:
		return StatusNotAnswered
	}
}

// Status возвращает статус вопроса i
func (s *Session) Status(i int) (PaletteStatus, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if i < 0 || i >= len(s.answers) {
		return "", ErrOutOfRange
	}
	return s.statusLocked(i), nil
}

// Palette возвращает статусы всех вопросов
func (s *Session) Palette() []PaletteStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.paletteLocked()
}

func (s *Session) paletteLocked() []PaletteStatus {
	palette := make([]PaletteStatus, len(s.answers))
	for i := range s.answers {
		palette[i] = s.statusLocked(i)
	}
	return palette
}

// Snapshot возвращает копию текущего состояния
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := Snapshot{
		State:     s.state,
		TestID:    s.test.ID,
		Title:     s.test.Title,
		Current:   s.current,
		Answers:   append([]int(nil), s.answers...),
		Marked:    append([]bool(nil), s.marked...),
		Palette:   s.paletteLocked(),
		Remaining: s.remaining,
		InFlight:  s.inFlight,
		LastErr:   s.lastErr,
	}
	for _, a := range s.answers {
		if a != entity.Unanswered {
			snap.Answered++
		}
	}
	if s.current < len(s.test.Questions) && len(s.answers) > 0 {
		q := s.test.Questions[s.current]
		q.Options = append([]string(nil), q.Options...)
		snap.Question = &q
	}
	if s.outcome != nil {
		o := *s.outcome
		snap.Outcome = &o
	}
	return snap
}
