package service

import (
	"context"
	"errors"
	"regexp"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/yourusername/testps-api/internal/domain/entity"
	"github.com/yourusername/testps-api/internal/repository/memory"
	apperrors "github.com/yourusername/testps-api/internal/pkg/errors"
	"github.com/yourusername/testps-api/pkg/auth"
)

// ============================================================================
// Хелперы
// ============================================================================

type otpFixture struct {
	svc   *OTPService
	email *MockEmailService
	now   time.Time
}

func newOTPFixture(t *testing.T) *otpFixture {
	t.Helper()
	cache := memory.NewCacheRepo(0)
	t.Cleanup(func() { _ = cache.Close() })

	emailSvc := new(MockEmailService)
	svc, err := NewOTPService(cache, emailSvc, 2*time.Minute, time.Hour)
	require.NoError(t, err)

	f := &otpFixture{svc: svc, email: emailSvc, now: time.Date(2026, 1, 1, 10, 0, 0, 0, time.UTC)}
	svc.now = func() time.Time { return f.now }
	svc.generateCode = func() (string, error) { return "123456", nil }
	return f
}

func createTestAuthService(t *testing.T, userRepo *MockUserRepository) (*AuthService, *auth.JWTService) {
	t.Helper()
	jwtService, err := auth.NewJWTService("test-secret", 24)
	require.NoError(t, err)

	f := newOTPFixture(t)
	svc, err := NewAuthService(userRepo, jwtService, f.svc)
	require.NoError(t, err)
	return svc, jwtService
}

func hashedUser(t *testing.T, id uint, email, password string) *entity.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return &entity.User{ID: id, UserID: "uuid-" + email, Name: "User", Email: email, Password: string(hash), Role: entity.RoleStudent}
}

// ============================================================================
// OTP
// ============================================================================

func TestGenerateOTPCode_SixDigits(t *testing.T) {
	re := regexp.MustCompile(`^[1-9][0-9]{5}$`)
	for i := 0; i < 50; i++ {
		code, err := generateOTPCode()
		require.NoError(t, err)
		assert.Regexp(t, re, code)
		n, err := strconv.Atoi(code)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, n, 100000)
		assert.LessOrEqual(t, n, 999999)
	}
}

func TestOTPService_SendAndVerify(t *testing.T) {
	ctx := context.Background()
	f := newOTPFixture(t)
	f.email.On("SendOTP", mock.Anything, "user@example.com", "123456", 2*time.Minute).Return(nil).Once()

	// Email нормализуется перед сохранением
	require.NoError(t, f.svc.SendCode(ctx, "  User@Example.com "))
	require.NoError(t, f.svc.VerifyCode(ctx, "user@example.com", "123456"))

	// Код одноразовый
	err := f.svc.VerifyCode(ctx, "user@example.com", "123456")
	assert.ErrorIs(t, err, ErrOTPNotFound)
	f.email.AssertExpectations(t)
}

func TestOTPService_VerifyCode_Expired(t *testing.T) {
	ctx := context.Background()
	f := newOTPFixture(t)
	f.email.On("SendOTP", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)

	require.NoError(t, f.svc.SendCode(ctx, "user@example.com"))
	f.now = f.now.Add(2*time.Minute + time.Second)

	err := f.svc.VerifyCode(ctx, "user@example.com", "123456")
	assert.ErrorIs(t, err, ErrOTPExpired, "Совпадающий код после окна в 2 минуты все равно истек")
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}

func TestOTPService_VerifyCode_Mismatch(t *testing.T) {
	ctx := context.Background()
	f := newOTPFixture(t)
	f.email.On("SendOTP", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)

	require.NoError(t, f.svc.SendCode(ctx, "user@example.com"))

	assert.ErrorIs(t, f.svc.VerifyCode(ctx, "user@example.com", "000000"), ErrOTPMismatch)
	// Неверная попытка не удаляет код
	assert.NoError(t, f.svc.VerifyCode(ctx, "user@example.com", "123456"))
}

func TestOTPService_VerifyCode_NotFound(t *testing.T) {
	f := newOTPFixture(t)
	err := f.svc.VerifyCode(context.Background(), "nobody@example.com", "123456")
	assert.ErrorIs(t, err, ErrOTPNotFound)
}

func TestOTPService_SendCode_OverwritesPrevious(t *testing.T) {
	ctx := context.Background()
	f := newOTPFixture(t)
	f.email.On("SendOTP", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)

	require.NoError(t, f.svc.SendCode(ctx, "user@example.com"))
	f.svc.generateCode = func() (string, error) { return "654321", nil }
	require.NoError(t, f.svc.SendCode(ctx, "user@example.com"))

	assert.ErrorIs(t, f.svc.VerifyCode(ctx, "user@example.com", "123456"), ErrOTPMismatch)
	assert.NoError(t, f.svc.VerifyCode(ctx, "user@example.com", "654321"))
}

func TestOTPService_SendCode_EmptyEmail(t *testing.T) {
	f := newOTPFixture(t)
	err := f.svc.SendCode(context.Background(), "   ")
	assert.ErrorIs(t, err, apperrors.ErrValidation)
	f.email.AssertNotCalled(t, "SendOTP", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestOTPService_SendCode_NotConfigured(t *testing.T) {
	ctx := context.Background()
	cache := memory.NewCacheRepo(0)
	defer cache.Close()

	emailSvc := new(MockEmailService)
	emailSvc.On("SendOTP", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)
	configured, err := NewOTPService(cache, emailSvc, 0, 0)
	require.NoError(t, err)
	configured.generateCode = func() (string, error) { return "111111", nil }
	require.NoError(t, configured.SendCode(ctx, "user@example.com"))

	unconfigured, err := NewOTPService(cache, &UnconfiguredEmailService{}, 0, 0)
	require.NoError(t, err)
	unconfigured.generateCode = func() (string, error) { return "222222", nil }

	err = unconfigured.SendCode(ctx, "user@example.com")
	assert.ErrorIs(t, err, apperrors.ErrConfiguration)

	// Ранее отправленный код не перезаписан
	assert.NoError(t, configured.VerifyCode(ctx, "user@example.com", "111111"))
}

func TestOTPService_SendCode_NotConfigured_StoresNothing(t *testing.T) {
	ctx := context.Background()
	cache := memory.NewCacheRepo(0)
	defer cache.Close()
	svc, err := NewOTPService(cache, &UnconfiguredEmailService{}, 0, 0)
	require.NoError(t, err)

	assert.ErrorIs(t, svc.SendCode(ctx, "user@example.com"), apperrors.ErrConfiguration)
	assert.ErrorIs(t, svc.VerifyCode(ctx, "user@example.com", "123456"), ErrOTPNotFound)
}

func TestOTPService_SendCode_DeliveryFailure(t *testing.T) {
	f := newOTPFixture(t)
	deliveryErr := errors.Join(apperrors.ErrDependency, errors.New("resend down"))
	f.email.On("SendOTP", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(deliveryErr).Once()

	err := f.svc.SendCode(context.Background(), "user@example.com")
	assert.ErrorIs(t, err, apperrors.ErrDependency)
	f.email.AssertNumberOfCalls(t, "SendOTP", 1)

	// Неотправленный код не сохраняется
	assert.ErrorIs(t, f.svc.VerifyCode(context.Background(), "user@example.com", "123456"), ErrOTPNotFound)
}

func TestOTPService_SendCode_DeliveryFailureKeepsPreviousCode(t *testing.T) {
	ctx := context.Background()
	f := newOTPFixture(t)
	f.email.On("SendOTP", mock.Anything, mock.Anything, "123456", mock.Anything).Return(nil).Once()
	f.email.On("SendOTP", mock.Anything, mock.Anything, "654321", mock.Anything).
		Return(errors.Join(apperrors.ErrDependency, errors.New("resend down"))).Once()

	require.NoError(t, f.svc.SendCode(ctx, "user@example.com"))
	f.svc.generateCode = func() (string, error) { return "654321", nil }
	assert.ErrorIs(t, f.svc.SendCode(ctx, "user@example.com"), apperrors.ErrDependency)

	assert.ErrorIs(t, f.svc.VerifyCode(ctx, "user@example.com", "654321"), ErrOTPMismatch)
	assert.NoError(t, f.svc.VerifyCode(ctx, "user@example.com", "123456"))
}

// ============================================================================
// Register / Login
// ============================================================================

func TestAuthService_Register_Success(t *testing.T) {
	// Arrange
	ctx := context.Background()
	userRepo := new(MockUserRepository)
	svc, _ := createTestAuthService(t, userRepo)

	userRepo.On("GetByEmail", mock.Anything, "new@example.com").Return(nil, apperrors.ErrNotFound)
	userRepo.On("Create", mock.Anything, mock.AnythingOfType("*entity.User")).
		Run(func(args mock.Arguments) {
			args.Get(1).(*entity.User).ID = 7
		}).
		Return(nil)

	// Act
	user, err := svc.Register(ctx, RegisterInput{Name: " Alice ", Email: "New@Example.com", Password: "secret"})

	// Assert
	require.NoError(t, err)
	assert.Equal(t, uint(7), user.ID)
	assert.Equal(t, "Alice", user.Name)
	assert.Equal(t, "new@example.com", user.Email)
	assert.Equal(t, entity.RoleStudent, user.Role)
	assert.Len(t, user.UserID, 36, "UserID - uuid")
	assert.NotEqual(t, "secret", user.Password, "Пароль хранится только в виде хеша")
	assert.True(t, user.CheckPassword("secret"))
	userRepo.AssertExpectations(t)
}

func TestAuthService_Register_MissingFields(t *testing.T) {
	userRepo := new(MockUserRepository)
	svc, _ := createTestAuthService(t, userRepo)

	for _, input := range []RegisterInput{
		{Email: "a@b.c", Password: "x"},
		{Name: "A", Password: "x"},
		{Name: "A", Email: "a@b.c"},
	} {
		_, err := svc.Register(context.Background(), input)
		assert.ErrorIs(t, err, apperrors.ErrValidation)
	}
	userRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestAuthService_Register_DuplicateEmail(t *testing.T) {
	userRepo := new(MockUserRepository)
	svc, _ := createTestAuthService(t, userRepo)
	userRepo.On("GetByEmail", mock.Anything, "taken@example.com").
		Return(&entity.User{ID: 1, Email: "taken@example.com"}, nil)

	_, err := svc.Register(context.Background(), RegisterInput{Name: "B", Email: "taken@example.com", Password: "x"})

	assert.ErrorIs(t, err, apperrors.ErrConflict)
	userRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestAuthService_Register_ConflictOnInsert(t *testing.T) {
	userRepo := new(MockUserRepository)
	svc, _ := createTestAuthService(t, userRepo)
	userRepo.On("GetByEmail", mock.Anything, mock.Anything).Return(nil, apperrors.ErrNotFound)
	userRepo.On("Create", mock.Anything, mock.Anything).Return(apperrors.ErrConflict)

	_, err := svc.Register(context.Background(), RegisterInput{Name: "B", Email: "race@example.com", Password: "x"})
	assert.ErrorIs(t, err, apperrors.ErrConflict)
}

func TestAuthService_Login_Success(t *testing.T) {
	userRepo := new(MockUserRepository)
	svc, jwtService := createTestAuthService(t, userRepo)
	user := hashedUser(t, 3, "user@example.com", "correct")
	userRepo.On("GetByEmail", mock.Anything, "user@example.com").Return(user, nil)

	result, err := svc.Login(context.Background(), "USER@example.com", "correct")

	require.NoError(t, err)
	assert.Equal(t, user, result.User)
	claims, err := jwtService.ParseToken(result.Token)
	require.NoError(t, err)
	assert.Equal(t, uint(3), claims.UserID)
	assert.Equal(t, entity.RoleStudent, claims.Role)
}

func TestAuthService_Login_IndistinguishableFailures(t *testing.T) {
	userRepo := new(MockUserRepository)
	svc, _ := createTestAuthService(t, userRepo)
	userRepo.On("GetByEmail", mock.Anything, "user@example.com").Return(hashedUser(t, 3, "user@example.com", "correct"), nil)
	userRepo.On("GetByEmail", mock.Anything, "ghost@example.com").Return(nil, apperrors.ErrNotFound)

	_, wrongPassword := svc.Login(context.Background(), "user@example.com", "wrong")
	_, unknownEmail := svc.Login(context.Background(), "ghost@example.com", "correct")

	require.Error(t, wrongPassword)
	require.Error(t, unknownEmail)
	assert.ErrorIs(t, wrongPassword, ErrInvalidCredentials)
	assert.ErrorIs(t, unknownEmail, ErrInvalidCredentials)
	assert.Equal(t, wrongPassword.Error(), unknownEmail.Error())
}

func TestAuthService_Login_MissingFields(t *testing.T) {
	userRepo := new(MockUserRepository)
	svc, _ := createTestAuthService(t, userRepo)

	_, err := svc.Login(context.Background(), "", "x")
	assert.ErrorIs(t, err, apperrors.ErrValidation)
	assert.NotErrorIs(t, err, ErrInvalidCredentials)
}

func TestAuthService_Login_RepositoryFailure(t *testing.T) {
	userRepo := new(MockUserRepository)
	svc, _ := createTestAuthService(t, userRepo)
	dbErr := errors.New("connection refused")
	userRepo.On("GetByEmail", mock.Anything, mock.Anything).Return(nil, dbErr)

	_, err := svc.Login(context.Background(), "user@example.com", "x")
	assert.ErrorIs(t, err, dbErr)
	assert.NotErrorIs(t, err, ErrInvalidCredentials)
}

// ============================================================================
// UserService
// ============================================================================

func TestUserService_SetRole(t *testing.T) {
	userRepo := new(MockUserRepository)
	svc := NewUserService(userRepo)
	userRepo.On("UpdateRole", mock.Anything, uint(5), entity.RoleAdmin).Return(nil)
	userRepo.On("GetByID", mock.Anything, uint(5)).Return(&entity.User{ID: 5, Role: entity.RoleAdmin}, nil)

	user, err := svc.SetRole(context.Background(), 5, entity.RoleAdmin)

	require.NoError(t, err)
	assert.True(t, user.IsAdmin())
}

func TestUserService_SetRole_InvalidRole(t *testing.T) {
	userRepo := new(MockUserRepository)
	svc := NewUserService(userRepo)

	_, err := svc.SetRole(context.Background(), 5, "superuser")

	assert.ErrorIs(t, err, apperrors.ErrValidation)
	userRepo.AssertNotCalled(t, "UpdateRole", mock.Anything, mock.Anything, mock.Anything)
}

func TestUserService_SetRole_NotFound(t *testing.T) {
	userRepo := new(MockUserRepository)
	svc := NewUserService(userRepo)
	userRepo.On("UpdateRole", mock.Anything, uint(99), entity.RoleStudent).Return(apperrors.ErrNotFound)

	_, err := svc.SetRole(context.Background(), 99, entity.RoleStudent)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestUserService_DeleteUser(t *testing.T) {
	userRepo := new(MockUserRepository)
	svc := NewUserService(userRepo)
	userRepo.On("Delete", mock.Anything, uint(4)).Return(nil)
	userRepo.On("Delete", mock.Anything, uint(99)).Return(apperrors.ErrNotFound)

	assert.NoError(t, svc.DeleteUser(context.Background(), 4))
	assert.ErrorIs(t, svc.DeleteUser(context.Background(), 99), apperrors.ErrNotFound)
}
