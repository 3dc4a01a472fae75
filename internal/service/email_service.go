package service

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/resend/resend-go/v2"

	apperrors "github.com/yourusername/testps-api/internal/pkg/errors"
)

// EmailService sends transactional emails.
type EmailService interface {
	// Configured сообщает, есть ли транспорт для отправки
	Configured() bool
	SendOTP(ctx context.Context, toEmail, code string, validFor time.Duration) error
}

// UnconfiguredEmailService is used when no mail transport is configured.
// Every send reports a configuration error to the caller.
type UnconfiguredEmailService struct{}

func (s *UnconfiguredEmailService) Configured() bool { return false }

func (s *UnconfiguredEmailService) SendOTP(ctx context.Context, toEmail, code string, validFor time.Duration) error {
	log.Printf("[EmailService] mail transport is not configured, cannot send code to=%s", toEmail)
	return fmt.Errorf("%w: email transport is not configured", apperrors.ErrConfiguration)
}

// ResendEmailService sends emails via Resend REST API.
type ResendEmailService struct {
	from   string
	client *resend.Client
}

func NewResendEmailService(apiKey, from string) (*ResendEmailService, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("%w: resend api key is required", apperrors.ErrConfiguration)
	}
	if from == "" {
		return nil, fmt.Errorf("%w: email from is required", apperrors.ErrConfiguration)
	}
	return &ResendEmailService{
		from:   from,
		client: resend.NewClient(apiKey),
	}, nil
}

func (s *ResendEmailService) Configured() bool { return true }

// SendOTP отправляет одно письмо с кодом. Повторов нет: решение о повторе принимает клиент.
func (s *ResendEmailService) SendOTP(ctx context.Context, toEmail, code string, validFor time.Duration) error {
	if toEmail == "" || code == "" {
		return fmt.Errorf("%w: toEmail and code are required", apperrors.ErrValidation)
	}

	minutes := int(validFor.Minutes())
	if minutes < 1 {
		minutes = 1
	}
	params := &resend.SendEmailRequest{
		From:    s.from,
		To:      []string{toEmail},
		Subject: "Your TestPS verification code",
		Text:    fmt.Sprintf("Your OTP is %s. It expires in %d minutes.", code, minutes),
		Html:    fmt.Sprintf("<p>Your OTP is <strong>%s</strong>.</p><p>It expires in %d minutes.</p>", code, minutes),
	}

	if _, err := s.client.Emails.SendWithOptions(ctx, params, &resend.SendEmailOptions{}); err != nil {
		log.Printf("[EmailService] resend send failed to=%s: %v", toEmail, err)
		return fmt.Errorf("%w: resend send failed: %v", apperrors.ErrDependency, err)
	}
	return nil
}
