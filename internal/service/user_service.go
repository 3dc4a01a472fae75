package service

import (
	"context"
	"fmt"
	"log"

	"github.com/yourusername/testps-api/internal/domain/entity"
	"github.com/yourusername/testps-api/internal/domain/repository"
	apperrors "github.com/yourusername/testps-api/internal/pkg/errors"
)

// UserService предоставляет администратору методы управления пользователями
type UserService struct {
	userRepo repository.UserRepository
}

// NewUserService создает новый сервис пользователей
func NewUserService(userRepo repository.UserRepository) *UserService {
	return &UserService{
		userRepo: userRepo,
	}
}

// ListUsers возвращает всех пользователей
func (s *UserService) ListUsers(ctx context.Context) ([]entity.User, error) {
	users, err := s.userRepo.List(ctx)
	if err != nil {
		log.Printf("[UserService] Ошибка при получении списка пользователей: %v", err)
		return nil, err
	}
	return users, nil
}

// SetRole меняет роль пользователя на admin или student
func (s *UserService) SetRole(ctx context.Context, id uint, role string) (*entity.User, error) {
	if !entity.IsValidRole(role) {
		return nil, fmt.Errorf("%w: role must be %q or %q", apperrors.ErrValidation, entity.RoleAdmin, entity.RoleStudent)
	}
	if err := s.userRepo.UpdateRole(ctx, id, role); err != nil {
		return nil, err
	}
	log.Printf("[UserService] Пользователю ID=%d назначена роль %s", id, role)
	return s.userRepo.GetByID(ctx, id)
}

// DeleteUser удаляет пользователя
func (s *UserService) DeleteUser(ctx context.Context, id uint) error {
	if err := s.userRepo.Delete(ctx, id); err != nil {
		return err
	}
	log.Printf("[UserService] Пользователь ID=%d удален", id)
	return nil
}
