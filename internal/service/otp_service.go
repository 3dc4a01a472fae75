package service

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"errors"
	"fmt"
	"log"
	"math/big"
	"time"

	"github.com/yourusername/testps-api/internal/domain/entity"
	"github.com/yourusername/testps-api/internal/domain/repository"
	apperrors "github.com/yourusername/testps-api/internal/pkg/errors"
)

const (
	defaultOTPTTL       = 2 * time.Minute
	defaultOTPRetention = time.Hour
	otpKeyPrefix        = "otp:"
)

// OTPService выдает и проверяет одноразовые коды подтверждения email
type OTPService struct {
	cache        repository.CacheRepository
	emailService EmailService
	ttl          time.Duration
	retention    time.Duration
	now          func() time.Time
	generateCode func() (string, error)
}

// NewOTPService создает сервис одноразовых кодов.
// retention - сколько запись живет в хранилище; она дольше ttl,
// чтобы просроченный код отличался от отсутствующего.
func NewOTPService(cache repository.CacheRepository, emailService EmailService, ttl, retention time.Duration) (*OTPService, error) {
	if cache == nil {
		return nil, fmt.Errorf("cache repository is required")
	}
	if emailService == nil {
		return nil, fmt.Errorf("email service is required")
	}
	if ttl <= 0 {
		ttl = defaultOTPTTL
	}
	if retention < ttl {
		retention = defaultOTPRetention
		if retention < ttl {
			retention = ttl
		}
	}
	return &OTPService{
		cache:        cache,
		emailService: emailService,
		ttl:          ttl,
		retention:    retention,
		now:          time.Now,
		generateCode: generateOTPCode,
	}, nil
}

// SendCode создает новый код (перезаписывая предыдущий) и отправляет его на email.
// Если письмо не ушло, в хранилище возвращается предыдущий код.
func (s *OTPService) SendCode(ctx context.Context, email string) error {
	email = normalizeEmail(email)
	if email == "" {
		return fmt.Errorf("%w: email is required", apperrors.ErrValidation)
	}
	if !s.emailService.Configured() {
		log.Printf("[OTPService] Почтовый транспорт не настроен, код для %s не создан", email)
		return fmt.Errorf("%w: email transport is not configured", apperrors.ErrConfiguration)
	}

	key := otpKeyPrefix + email
	var previous *entity.OneTimeCode
	var stored entity.OneTimeCode
	if err := s.cache.GetJSON(ctx, key, &stored); err == nil {
		previous = &stored
	}

	code, err := s.generateCode()
	if err != nil {
		return fmt.Errorf("failed to generate OTP: %w", err)
	}

	record := &entity.OneTimeCode{
		Email:     email,
		Code:      code,
		ExpiresAt: s.now().Add(s.ttl),
	}
	if err := s.cache.SetJSON(ctx, key, record, s.retention); err != nil {
		return fmt.Errorf("%w: failed to store OTP: %v", apperrors.ErrDependency, err)
	}

	if err := s.emailService.SendOTP(ctx, email, code, s.ttl); err != nil {
		s.restore(ctx, key, previous)
		return err
	}

	log.Printf("[OTPService] Код отправлен на %s", email)
	return nil
}

// restore возвращает код, который был до неудачной отправки, или удаляет неотправленный
func (s *OTPService) restore(ctx context.Context, key string, previous *entity.OneTimeCode) {
	var err error
	if previous == nil {
		err = s.cache.Delete(ctx, key)
	} else {
		err = s.cache.SetJSON(ctx, key, previous, s.retention)
	}
	if err != nil {
		log.Printf("[OTPService] Не удалось откатить код %s: %v", key, err)
	}
}

// VerifyCode проверяет код. Успешная проверка удаляет запись, код одноразовый.
func (s *OTPService) VerifyCode(ctx context.Context, email, code string) error {
	email = normalizeEmail(email)
	if email == "" || code == "" {
		return fmt.Errorf("%w: email and otp are required", apperrors.ErrValidation)
	}

	var record entity.OneTimeCode
	if err := s.cache.GetJSON(ctx, otpKeyPrefix+email, &record); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return ErrOTPNotFound
		}
		return fmt.Errorf("%w: failed to read OTP: %v", apperrors.ErrDependency, err)
	}

	if record.IsExpired(s.now()) {
		return ErrOTPExpired
	}
	if subtle.ConstantTimeCompare([]byte(record.Code), []byte(code)) != 1 {
		return ErrOTPMismatch
	}

	if err := s.cache.Delete(ctx, otpKeyPrefix+email); err != nil {
		log.Printf("[OTPService] Не удалось удалить использованный код для %s: %v", email, err)
	}
	return nil
}

// generateOTPCode возвращает шестизначный код в диапазоне 100000..999999
func generateOTPCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()+100000), nil
}
