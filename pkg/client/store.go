package client

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/yourusername/testps-api/internal/domain/entity"
	"github.com/yourusername/testps-api/internal/session"
)

const sessionFileName = "session.json"

type storedSession struct {
	Token string       `json:"token"`
	User  *entity.User `json:"user"`
}

// FileSessionStore хранит токен и пользователя в JSON файле с правами 0600
type FileSessionStore struct {
	path string
}

var _ session.SessionStore = (*FileSessionStore)(nil)

// NewFileSessionStore создает хранилище в указанном файле
func NewFileSessionStore(path string) *FileSessionStore {
	return &FileSessionStore{path: path}
}

// DefaultSessionStore кладет файл в пользовательский каталог конфигурации (например ~/.config/testps)
func DefaultSessionStore() (*FileSessionStore, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return nil, fmt.Errorf("failed to resolve user config dir: %w", err)
	}
	return NewFileSessionStore(filepath.Join(dir, "testps", sessionFileName)), nil
}

// Path возвращает путь к файлу сессии
func (s *FileSessionStore) Path() string {
	return s.path
}

// Load читает сохраненную сессию или возвращает session.ErrNoSession
func (s *FileSessionStore) Load() (string, *entity.User, error) {
	raw, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", nil, session.ErrNoSession
		}
		return "", nil, err
	}

	var stored storedSession
	if err := json.Unmarshal(raw, &stored); err != nil {
		return "", nil, fmt.Errorf("corrupted session file %s: %w", s.path, err)
	}
	if stored.Token == "" || stored.User == nil {
		return "", nil, session.ErrNoSession
	}
	return stored.Token, stored.User, nil
}

// Save атомарно перезаписывает файл сессии
func (s *FileSessionStore) Save(token string, user *entity.User) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return err
	}
	raw, err := json.Marshal(storedSession{Token: token, User: user})
	if err != nil {
		return err
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o600); err != nil {
		return err
	}
	return os.Rename(tmp, s.path)
}

// Clear удаляет файл сессии; отсутствие файла не ошибка
func (s *FileSessionStore) Clear() error {
	if err := os.Remove(s.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}
