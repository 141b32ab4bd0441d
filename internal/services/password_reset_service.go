package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"samurai/internal/repositories"
	"samurai/internal/utils"
)

var (
	ErrResetTokenInvalid = errors.New("invalid or expired token")
	ErrResetTokenUsed    = errors.New("token already used")
	ErrResetTokenExpired = errors.New("token expired")
	ErrPasswordTooShort  = errors.New("password must be at least 6 characters")
	ErrResetFieldsEmpty  = errors.New("token and password are required")
)

const minPasswordLen = 6

type PasswordResetService interface {
	RequestReset(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, token, newPassword string) error
}

type passwordResetService struct {
	accounts repositories.AccountRepository
	repo     repositories.PasswordResetRepository
	emails   EmailService
	auth     AuthService
	clock    Clock
	ttl      time.Duration
	resetURL string
	logger   *zap.Logger
}

func NewPasswordResetService(
	accounts repositories.AccountRepository,
	repo repositories.PasswordResetRepository,
	emails EmailService,
	auth AuthService,
	clock Clock,
	ttl time.Duration,
	resetURL string,
	logger *zap.Logger,
) PasswordResetService {
	if clock == nil {
		clock = SystemClock
	}
	return &passwordResetService{
		accounts: accounts,
		repo:     repo,
		emails:   emails,
		auth:     auth,
		clock:    clock,
		ttl:      ttl,
		resetURL: resetURL,
		logger:   logger,
	}
}

func hashResetToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

func (s *passwordResetService) resetLink(token string) string {
	u, err := url.Parse(s.resetURL)
	if err != nil {
		return s.resetURL + "?token=" + url.QueryEscape(token)
	}
	q := u.Query()
	q.Set("token", token)
	u.RawQuery = q.Encode()
	return u.String()
}

// RequestReset не раскрывает, существует ли email.
func (s *passwordResetService) RequestReset(ctx context.Context, email string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return ErrEmailRequired
	}
	account, err := s.accounts.GetByEmail(ctx, email)
	if err != nil || account == nil {
		s.logger.Info("[password-reset] request: account not found or error", zap.String("email", email), zap.Error(err))
		return nil
	}

	token, err := utils.NewOpaqueToken(32)
	if err != nil {
		return err
	}
	expires := s.clock.Now().Add(s.ttl)
	if _, err := s.repo.Create(ctx, account.ID, hashResetToken(token), expires); err != nil {
		return err
	}

	if err := s.emails.SendPasswordResetEmail(ctx, account.Email, s.resetLink(token), s.ttl); err != nil {
		s.logger.Warn("[password-reset] failed to send email", zap.String("email", account.Email), zap.Error(err))
	}
	return nil
}

func (s *passwordResetService) ResetPassword(ctx context.Context, token, newPassword string) error {
	token = strings.TrimSpace(token)
	if token == "" || newPassword == "" {
		return ErrResetFieldsEmpty
	}
	if len(newPassword) < minPasswordLen {
		return ErrPasswordTooShort
	}

	pr, err := s.repo.GetByTokenHash(ctx, hashResetToken(token))
	if err != nil {
		return err
	}
	if pr == nil {
		return ErrResetTokenInvalid
	}
	if pr.UsedAt != nil {
		return ErrResetTokenUsed
	}
	if s.clock.Now().After(pr.ExpiresAt) {
		return ErrResetTokenExpired
	}

	hash, err := s.auth.HashPassword(newPassword)
	if err != nil {
		return err
	}
	if err := s.accounts.UpdatePassword(ctx, pr.AccountID, hash); err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	if err := s.repo.MarkUsed(ctx, pr.ID); err != nil {
		return fmt.Errorf("mark reset used: %w", err)
	}
	s.logger.Info("[password-reset] password updated", zap.Int("account_id", pr.AccountID))
	return nil
}
