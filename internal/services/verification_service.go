package services

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"samurai/internal/models"
	"samurai/internal/repositories"
)

var (
	ErrEmailRequired    = errors.New("email is required")
	ErrSendFailed       = errors.New("verification email could not be sent")
	ErrSessionNotFound  = errors.New("verification session invalid or expired")
	ErrSessionExpired   = errors.New("verification code expired")
	ErrCodeMismatch     = errors.New("incorrect verification code")
	ErrAccountExists    = errors.New("account already exists")
	ErrAccountNotStored = errors.New("account could not be created")
)

// DefaultVerificationTTL — окно действия кода.
const DefaultVerificationTTL = 5 * time.Minute

const welcomeSendTimeout = 30 * time.Second

type StartVerificationRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Password string `json:"password"`
}

type VerificationService interface {
	// StartVerification возвращает 4 кода в порядке показа.
	StartVerification(ctx context.Context, req StartVerificationRequest) ([]string, error)
	// VerifyCode возвращает созданный аккаунт; nil, если хранилище аккаунтов не подключено.
	VerifyCode(ctx context.Context, email, code string) (*models.Account, error)
}

type verificationService struct {
	store    repositories.PendingStore
	accounts repositories.AccountRepository // может быть nil
	emails   EmailService
	auth     AuthService
	codes    *CodeGenerator
	clock    Clock
	ttl      time.Duration
	logger   *zap.Logger
}

func NewVerificationService(
	store repositories.PendingStore,
	accounts repositories.AccountRepository,
	emails EmailService,
	auth AuthService,
	codes *CodeGenerator,
	clock Clock,
	ttl time.Duration,
	logger *zap.Logger,
) VerificationService {
	if codes == nil {
		codes = NewCodeGenerator(nil)
	}
	if clock == nil {
		clock = SystemClock
	}
	if ttl <= 0 {
		ttl = DefaultVerificationTTL
	}
	return &verificationService{
		store:    store,
		accounts: accounts,
		emails:   emails,
		auth:     auth,
		codes:    codes,
		clock:    clock,
		ttl:      ttl,
		logger:   logger,
	}
}

func (s *verificationService) StartVerification(ctx context.Context, req StartVerificationRequest) ([]string, error) {
	email := strings.TrimSpace(req.Email)
	if email == "" {
		return nil, ErrEmailRequired
	}
	phone := strings.TrimSpace(req.Phone)

	if s.accounts != nil {
		exists, err := s.accounts.ExistsByEmailOrPhone(ctx, email, phone)
		if err != nil {
			return nil, err
		}
		if exists {
			s.logger.Info("[verify][start] account exists", zap.String("email", email))
			return nil, ErrAccountExists
		}
	}

	passwordHash, err := s.auth.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	set := s.codes.Generate()
	rec := &models.PendingVerification{
		Email:        email,
		CorrectCode:  set.Correct,
		DecoyOptions: set.Decoys,
		DisplayOrder: set.Display,
		Profile: models.PendingProfile{
			Name:         strings.TrimSpace(req.Name),
			Phone:        phone,
			PasswordHash: passwordHash,
		},
		CreatedAt: s.clock.Now(),
	}
	if err := s.store.Set(ctx, rec); err != nil {
		return nil, err
	}

	// при ошибке отправки запись остаётся и просто истечёт
	if err := s.emails.SendVerificationCode(ctx, email, rec.Profile.Name, set.Correct, set.Display, s.ttl); err != nil {
		s.logger.Error("[verify][start] send failed", zap.String("email", email), zap.Error(err))
		return nil, fmt.Errorf("%w: %w", ErrSendFailed, err)
	}

	s.logger.Info("[verify][start] code sent", zap.String("email", email))
	return set.Display, nil
}

func (s *verificationService) VerifyCode(ctx context.Context, email, code string) (*models.Account, error) {
	email = strings.TrimSpace(email)
	code = strings.TrimSpace(code)

	rec, err := s.store.Get(ctx, email)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, ErrSessionNotFound
	}

	if rec.ExpiredAt(s.clock.Now(), s.ttl) {
		if err := s.store.Delete(ctx, email); err != nil {
			s.logger.Warn("[verify][confirm] delete expired failed", zap.String("email", email), zap.Error(err))
		}
		s.logger.Info("[verify][confirm] expired", zap.String("email", email))
		return nil, ErrSessionExpired
	}

	if subtle.ConstantTimeCompare([]byte(code), []byte(rec.CorrectCode)) != 1 {
		s.logger.Info("[verify][confirm] code mismatch", zap.String("email", email))
		return nil, ErrCodeMismatch
	}

	account, err := s.persistAccount(ctx, rec)
	if err != nil {
		return nil, err
	}

	if err := s.store.Delete(ctx, email); err != nil {
		return nil, err
	}
	s.logger.Info("[verify][confirm] OK", zap.String("email", email), zap.Bool("persisted", account != nil))

	s.sendWelcome(ctx, email, rec.Profile.Name)
	return account, nil
}

// persistAccount сохраняет аккаунт, если подключено хранилище.
// При сбое БД запись верификации не удаляем — пользователь может повторить.
func (s *verificationService) persistAccount(ctx context.Context, rec *models.PendingVerification) (*models.Account, error) {
	if s.accounts == nil {
		return nil, nil
	}
	account := &models.Account{
		Name:         rec.Profile.Name,
		Email:        rec.Email,
		Phone:        rec.Profile.Phone,
		PasswordHash: rec.Profile.PasswordHash,
	}
	err := s.accounts.Create(ctx, account)
	switch {
	case errors.Is(err, repositories.ErrDuplicateAccount):
		if err := s.store.Delete(ctx, rec.Email); err != nil {
			s.logger.Warn("[verify][confirm] delete after duplicate failed", zap.String("email", rec.Email), zap.Error(err))
		}
		return nil, ErrAccountExists
	case err != nil:
		s.logger.Error("[verify][confirm] account create failed", zap.String("email", rec.Email), zap.Error(err))
		return nil, fmt.Errorf("%w: %w", ErrAccountNotStored, err)
	}
	return account, nil
}

func (s *verificationService) sendWelcome(ctx context.Context, email, name string) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), welcomeSendTimeout)
	go func() {
		defer cancel()
		if err := s.emails.SendWelcomeEmail(ctx, email, name); err != nil {
			s.logger.Warn("[verify][confirm] welcome email failed", zap.String("email", email), zap.Error(err))
		}
	}()
}
