package services

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gopkg.in/gomail.v2"
)

type EmailService interface {
	SendVerificationCode(ctx context.Context, email, name, correct string, codes []string, ttl time.Duration) error
	SendWelcomeEmail(ctx context.Context, email, name string) error
	SendPasswordResetEmail(ctx context.Context, email, link string, ttl time.Duration) error
}

// MailSender — транспорт; *gomail.Dialer удовлетворяет интерфейсу.
type MailSender interface {
	DialAndSend(m ...*gomail.Message) error
}

// SendPolicy — таймаут одной попытки и ретраи с экспоненциальной паузой.
type SendPolicy struct {
	Timeout     time.Duration
	MaxAttempts int
	Backoff     time.Duration
}

type emailService struct {
	sender   MailSender
	from     string
	fromName string
	policy   SendPolicy
	logger   *zap.Logger
}

func NewEmailService(smtpHost string, smtpPort int, smtpUser, smtpPassword, fromEmail, fromName string, policy SendPolicy, logger *zap.Logger) EmailService {
	dialer := gomail.NewDialer(smtpHost, smtpPort, smtpUser, smtpPassword)
	return NewEmailServiceWithSender(dialer, fromEmail, fromName, policy, logger)
}

func NewEmailServiceWithSender(sender MailSender, fromEmail, fromName string, policy SendPolicy, logger *zap.Logger) EmailService {
	if policy.MaxAttempts <= 0 {
		policy.MaxAttempts = 1
	}
	return &emailService{
		sender:   sender,
		from:     fromEmail,
		fromName: fromName,
		policy:   policy,
		logger:   logger,
	}
}

func (s *emailService) SendVerificationCode(ctx context.Context, email, name, correct string, codes []string, ttl time.Duration) error {
	body, err := render(verificationTmpl, struct {
		Name    string
		Correct string
		Codes   []string
		Minutes int
	}{name, correct, codes, int(ttl.Minutes())})
	if err != nil {
		return err
	}
	if err := s.send(ctx, email, "Your account verification code", body); err != nil {
		return fmt.Errorf("failed to send verification email: %w", err)
	}
	return nil
}

func (s *emailService) SendWelcomeEmail(ctx context.Context, email, name string) error {
	body, err := render(welcomeTmpl, struct{ Name string }{name})
	if err != nil {
		return err
	}
	if err := s.send(ctx, email, "Welcome to SAMURAI JAPANESE APP!", body); err != nil {
		return fmt.Errorf("failed to send welcome email: %w", err)
	}
	return nil
}

func (s *emailService) SendPasswordResetEmail(ctx context.Context, email, link string, ttl time.Duration) error {
	body, err := render(resetTmpl, struct {
		Link    string
		Minutes int
	}{link, int(ttl.Minutes())})
	if err != nil {
		return err
	}
	if err := s.send(ctx, email, "Password reset request", body); err != nil {
		return fmt.Errorf("failed to send password reset email: %w", err)
	}
	return nil
}

func (s *emailService) send(ctx context.Context, to, subject, body string) error {
	m := gomail.NewMessage()
	m.SetAddressHeader("From", s.from, s.fromName)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", body)

	backoff := s.policy.Backoff
	var lastErr error
	for attempt := 1; attempt <= s.policy.MaxAttempts; attempt++ {
		lastErr = s.attempt(ctx, m)
		if lastErr == nil {
			s.logger.Info("[email][send] ok", zap.String("to", to), zap.String("subject", subject), zap.Int("attempt", attempt))
			return nil
		}
		s.logger.Warn("[email][send] attempt failed",
			zap.String("to", to), zap.Int("attempt", attempt), zap.Error(lastErr))
		if ctx.Err() != nil || attempt == s.policy.MaxAttempts {
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}
		backoff *= 2
	}
	return lastErr
}

// attempt ограничивает одну отправку таймаутом; gomail сам таймаут не принимает,
// поэтому ждём результат в select. Брошенная горутина завершится вместе с транспортом.
func (s *emailService) attempt(ctx context.Context, m *gomail.Message) error {
	if s.policy.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.policy.Timeout)
		defer cancel()
	}

	done := make(chan error, 1)
	go func() { done <- s.sender.DialAndSend(m) }()

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return fmt.Errorf("smtp send: %w", ctx.Err())
	}
}
