package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/yourusername/testps-api/internal/domain/entity"
	"github.com/yourusername/testps-api/internal/domain/repository"
	apperrors "github.com/yourusername/testps-api/internal/pkg/errors"
	"github.com/yourusername/testps-api/pkg/auth"
)

// AuthService предоставляет методы для регистрации, входа и подтверждения email
type AuthService struct {
	userRepo   repository.UserRepository
	jwtService *auth.JWTService
	otpService *OTPService
}

// RegisterInput содержит все данные для регистрации
type RegisterInput struct {
	Name     string
	Email    string
	Password string
}

// LoginResult - выданный токен и вошедший пользователь
type LoginResult struct {
	Token string
	User  *entity.User
}

// NewAuthService создает новый сервис аутентификации и возвращает ошибку при проблемах
func NewAuthService(userRepo repository.UserRepository, jwtService *auth.JWTService, otpService *OTPService) (*AuthService, error) {
	if userRepo == nil {
		return nil, fmt.Errorf("UserRepository is required for AuthService")
	}
	if jwtService == nil {
		return nil, fmt.Errorf("JWTService is required for AuthService")
	}
	if otpService == nil {
		return nil, fmt.Errorf("OTPService is required for AuthService")
	}
	return &AuthService{
		userRepo:   userRepo,
		jwtService: jwtService,
		otpService: otpService,
	}, nil
}

// SendCode отправляет одноразовый код на email
func (s *AuthService) SendCode(ctx context.Context, email string) error {
	return s.otpService.SendCode(ctx, email)
}

// VerifyCode проверяет одноразовый код
func (s *AuthService) VerifyCode(ctx context.Context, email, code string) error {
	return s.otpService.VerifyCode(ctx, email, code)
}

// Register создает пользователя с ролью student
func (s *AuthService) Register(ctx context.Context, input RegisterInput) (*entity.User, error) {
	input.Name = strings.TrimSpace(input.Name)
	input.Email = normalizeEmail(input.Email)

	if input.Name == "" || input.Email == "" || input.Password == "" {
		return nil, fmt.Errorf("%w: name, email and password are required", apperrors.ErrValidation)
	}

	existing, err := s.userRepo.GetByEmail(ctx, input.Email)
	if err == nil && existing != nil {
		return nil, fmt.Errorf("%w: user already exists", apperrors.ErrConflict)
	}
	if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
		log.Printf("[AuthService] Ошибка при проверке email %s: %v", input.Email, err)
		return nil, err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &entity.User{
		UserID:   uuid.NewString(),
		Name:     input.Name,
		Email:    input.Email,
		Password: string(hashed),
		Role:     entity.RoleStudent,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	log.Printf("[AuthService] Зарегистрирован пользователь ID=%d (%s)", user.ID, user.Email)
	return user, nil
}

// Login проверяет учетные данные и выдает токен.
// Неизвестный email и неверный пароль дают одну и ту же ошибку.
func (s *AuthService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return nil, fmt.Errorf("%w: email and password are required", apperrors.ErrValidation)
	}

	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if !user.CheckPassword(password) {
		log.Printf("[AuthService] Неверный пароль для пользователя ID=%d", user.ID)
		return nil, ErrInvalidCredentials
	}

	token, err := s.jwtService.GenerateToken(user)
	if err != nil {
		return nil, fmt.Errorf("failed to issue token: %w", err)
	}

	log.Printf("[AuthService] Пользователь ID=%d (%s) успешно вошел в систему", user.ID, user.Email)
	return &LoginResult{Token: token, User: user}, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
