package service

import (
	"fmt"

	apperrors "github.com/yourusername/testps-api/internal/pkg/errors"
)

// Ошибки аутентификации. Все они являются ошибками валидации (HTTP 400),
// а отдельные значения нужны хендлерам для стабильного error_type.
var (
	ErrInvalidCredentials = fmt.Errorf("%w: invalid credentials", apperrors.ErrValidation)
	ErrOTPNotFound        = fmt.Errorf("%w: OTP not found", apperrors.ErrValidation)
	ErrOTPExpired         = fmt.Errorf("%w: OTP expired", apperrors.ErrValidation)
	ErrOTPMismatch        = fmt.Errorf("%w: invalid OTP", apperrors.ErrValidation)
)
