// Package session ведет одну попытку прохождения теста: текущий вопрос,
// ответы, отметки "на проверку" и обратный отсчет до автоматической отправки.
package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/yourusername/testps-api/internal/domain/entity"
)

var (
	ErrNotInProgress     = errors.New("attempt is not in progress")
	ErrInvalidTransition = errors.New("invalid session transition")
	ErrSubmitInFlight    = errors.New("submission already in flight")
	ErrInvalidOption     = errors.New("invalid option index")
	ErrOutOfRange        = errors.New("question index out of range")
)

// State - состояние попытки
type State int

const (
	StateLoading State = iota
	StateInProgress
	StateConfirmingSubmit
	StateSubmitted
)

func (s State) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StateInProgress:
		return "in_progress"
	case StateConfirmingSubmit:
		return "confirming_submit"
	case StateSubmitted:
		return "submitted"
	default:
		return "unknown"
	}
}

// DefaultTickInterval - шаг обратного отсчета
const DefaultTickInterval = time.Second

// Outcome - ответ сервиса оценки
type Outcome struct {
	Score int
	Total int
}

// Submitter отправляет ответы на оценку
type Submitter interface {
	Submit(ctx context.Context, testID uint, answers []int) (*Outcome, error)
}

// SubmitterFunc позволяет использовать функцию как Submitter
type SubmitterFunc func(ctx context.Context, testID uint, answers []int) (*Outcome, error)

func (f SubmitterFunc) Submit(ctx context.Context, testID uint, answers []int) (*Outcome, error) {
	return f(ctx, testID, answers)
}

// Option настраивает Session
type Option func(*Session)

// WithTickInterval задает период Run
func WithTickInterval(d time.Duration) Option {
	return func(s *Session) {
		if d > 0 {
			s.tickInterval = d
		}
	}
}

// Session - конечный автомат попытки.
// Вызов Submitter выполняется вне мьютекса; повторную отправку исключает флаг inFlight.
type Session struct {
	mu sync.Mutex

	test      *entity.Test
	submitter Submitter

	state     State
	current   int
	answers   []int
	marked    []bool
	remaining int // секунды

	inFlight      bool
	autoTriggered bool
	outcome       *Outcome
	lastErr       error

	tickInterval time.Duration
	done         chan struct{}
}

// New создает сессию в состоянии Loading
func New(test *entity.Test, submitter Submitter, opts ...Option) *Session {
	s := &Session{
		test:         test,
		submitter:    submitter,
		state:        StateLoading,
		tickInterval: DefaultTickInterval,
		done:         make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start переводит сессию в InProgress: все ответы пустые, отметок нет, таймер заведен
func (s *Session) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateLoading {
		return ErrInvalidTransition
	}
	n := s.test.QuestionCount()
	s.answers = make([]int, n)
	for i := range s.answers {
		s.answers[i] = entity.Unanswered
	}
	s.marked = make([]bool, n)
	s.current = 0
	s.remaining = s.test.EffectiveDuration() * 60
	s.state = StateInProgress
	return nil
}

// requireInProgress должен вызываться под мьютексом
func (s *Session) requireInProgress() error {
	if s.state != StateInProgress {
		return ErrNotInProgress
	}
	if len(s.answers) == 0 {
		return ErrOutOfRange
	}
	return nil
}

// SelectOption записывает ответ на текущий вопрос
func (s *Session) SelectOption(option int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.requireInProgress(); err != nil {
		return err
	}
	q := s.test.Questions[s.current]
	if !q.IsValidOption(option) || (len(q.Options) > 0 && option >= len(q.Options)) {
		return ErrInvalidOption
	}
	s.answers[s.current] = option
	return nil
}

// ToggleMark переключает отметку "на проверку" у текущего вопроса
func (s *Session) ToggleMark() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.requireInProgress(); err != nil {
		return err
	}
	s.marked[s.current] = !s.marked[s.current]
	return nil
}

// Clear сбрасывает ответ текущего вопроса
func (s *Session) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.requireInProgress(); err != nil {
		return err
	}
	s.answers[s.current] = entity.Unanswered
	return nil
}

// Next переходит к следующему вопросу; на последнем остается на месте
func (s *Session) Next() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.requireInProgress(); err != nil {
		return err
	}
	if s.current < len(s.answers)-1 {
		s.current++
	}
	return nil
}

// Previous переходит к предыдущему вопросу; на первом остается на месте
func (s *Session) Previous() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.requireInProgress(); err != nil {
		return err
	}
	if s.current > 0 {
		s.current--
	}
	return nil
}

// JumpTo переходит к вопросу i
func (s *Session) JumpTo(i int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.requireInProgress(); err != nil {
		return err
	}
	if i < 0 || i >= len(s.answers) {
		return ErrOutOfRange
	}
	s.current = i
	return nil
}

// RequestSubmit открывает подтверждение отправки, ответы не меняются
func (s *Session) RequestSubmit() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateInProgress {
		return ErrNotInProgress
	}
	s.state = StateConfirmingSubmit
	return nil
}

// CancelSubmit возвращает к прохождению.
// После истечения времени вернуться нельзя, остается только повтор ConfirmSubmit.
func (s *Session) CancelSubmit() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.inFlight {
		return ErrSubmitInFlight
	}
	if s.state != StateConfirmingSubmit || s.autoTriggered || s.remaining == 0 {
		return ErrInvalidTransition
	}
	s.state = StateInProgress
	return nil
}

// ConfirmSubmit отправляет ответы. При ошибке сессия остается в ConfirmingSubmit
// с сохраненными ответами, и отправку можно повторить.
func (s *Session) ConfirmSubmit(ctx context.Context) (*Outcome, error) {
	s.mu.Lock()
	if s.inFlight {
		s.mu.Unlock()
		return nil, ErrSubmitInFlight
	}
	if s.state != StateConfirmingSubmit {
		s.mu.Unlock()
		return nil, ErrInvalidTransition
	}
	answers := s.beginSubmitLocked()
	s.mu.Unlock()

	return s.submit(ctx, answers)
}

// beginSubmitLocked ставит флаг отправки и возвращает копию ответов
func (s *Session) beginSubmitLocked() []int {
	s.inFlight = true
	s.lastErr = nil
	return append([]int(nil), s.answers...)
}

func (s *Session) submit(ctx context.Context, answers []int) (*Outcome, error) {
	outcome, err := s.submitter.Submit(ctx, s.test.ID, answers)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.inFlight = false

	if err != nil {
		s.lastErr = err
		s.state = StateConfirmingSubmit
		return nil, err
	}
	if outcome == nil {
		outcome = &Outcome{Total: len(answers)}
	}
	s.outcome = outcome
	s.state = StateSubmitted
	close(s.done)
	return outcome, nil
}

// Tick уменьшает таймер на одну секунду, пока попытка активна.
// На нуле один раз запускается автоматическая отправка, если отправка еще не идет.
func (s *Session) Tick(ctx context.Context) error {
	s.mu.Lock()
	if s.state != StateInProgress && s.state != StateConfirmingSubmit {
		s.mu.Unlock()
		return nil
	}
	if s.remaining > 0 {
		s.remaining--
	}
	if s.remaining > 0 || s.autoTriggered {
		s.mu.Unlock()
		return nil
	}

	s.autoTriggered = true
	if s.inFlight {
		s.mu.Unlock()
		return nil
	}
	s.state = StateConfirmingSubmit
	answers := s.beginSubmitLocked()
	s.mu.Unlock()

	_, err := s.submit(ctx, answers)
	return err
}

// Run вызывает Tick с периодом tickInterval, пока ctx не отменен и попытка не отправлена
func (s *Session) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.tickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-s.done:
			return nil
		case <-ticker.C:
			// ошибка автоотправки сохраняется в LastErr и видна в Snapshot
			_ = s.Tick(ctx)
		}
	}
}

// Done закрывается после успешной отправки
func (s *Session) Done() <-chan struct{} {
	return s.done
}
