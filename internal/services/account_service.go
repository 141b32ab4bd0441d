package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"samurai/internal/models"
	"samurai/internal/repositories"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrAccountNotFound    = errors.New("account not found")
)

type LoginResult struct {
	Account     *models.Account
	AccessToken string
	ExpiresAt   time.Time
}

type AccountService interface {
	Login(ctx context.Context, email, password string) (*LoginResult, error)
	GetAccount(ctx context.Context, id int) (*models.Account, error)
}

type accountService struct {
	repo   repositories.AccountRepository
	auth   AuthService
	logger *zap.Logger
}

func NewAccountService(repo repositories.AccountRepository, auth AuthService, logger *zap.Logger) AccountService {
	return &accountService{repo: repo, auth: auth, logger: logger}
}

func (s *accountService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	email = strings.TrimSpace(email)
	account, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if account == nil || account.PasswordHash == "" {
		s.logger.Info("[auth][login] unknown email", zap.String("email", email))
		return nil, ErrInvalidCredentials
	}
	if !s.auth.CheckPassword(account.PasswordHash, password) {
		s.logger.Info("[auth][login] bcrypt mismatch", zap.Int("account_id", account.ID))
		return nil, ErrInvalidCredentials
	}

	token, exp, err := s.auth.IssueAccessToken(account.ID)
	if err != nil {
		return nil, err
	}
	s.logger.Info("[auth][login] success", zap.Int("account_id", account.ID))
	return &LoginResult{Account: account, AccessToken: token, ExpiresAt: exp}, nil
}

func (s *accountService) GetAccount(ctx context.Context, id int) (*models.Account, error) {
	account, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if account == nil {
		return nil, ErrAccountNotFound
	}
	return account, nil
}
