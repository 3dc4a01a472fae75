package session

import (
	"errors"

	"github.com/yourusername/testps-api/internal/domain/entity"
)

// ErrNoSession - сохраненной сессии нет
var ErrNoSession = errors.New("no saved session")

// SessionStore хранит токен и пользователя между запусками клиента.
// Load возвращает ErrNoSession, если ничего не сохранено.
type SessionStore interface {
	Load() (token string, user *entity.User, err error)
	Save(token string, user *entity.User) error
	Clear() error
}
