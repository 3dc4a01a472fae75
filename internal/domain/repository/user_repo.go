package repository

import (
	"context"

	"github.com/yourusername/testps-api/internal/domain/entity"
)

// UserRepository определяет методы для работы с пользователями
type UserRepository interface {
	Create(ctx context.Context, user *entity.User) error
	GetByID(ctx context.Context, id uint) (*entity.User, error)
	GetByEmail(ctx context.Context, email string) (*entity.User, error)
	List(ctx context.Context) ([]entity.User, error)
	UpdateRole(ctx context.Context, id uint, role string) error
	// Delete удаляет пользователя без возможности восстановления
	Delete(ctx context.Context, id uint) error
}
