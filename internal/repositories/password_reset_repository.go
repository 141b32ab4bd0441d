package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"samurai/internal/models"
)

type PasswordResetRepository interface {
	Create(ctx context.Context, accountID int, tokenHash string, expiresAt time.Time) (*models.PasswordReset, error)
	GetByTokenHash(ctx context.Context, tokenHash string) (*models.PasswordReset, error)
	MarkUsed(ctx context.Context, id int) error
}

type passwordResetRepository struct {
	DB *sql.DB
}

func NewPasswordResetRepository(db *sql.DB) PasswordResetRepository {
	return &passwordResetRepository{DB: db}
}

func (r *passwordResetRepository) Create(ctx context.Context, accountID int, tokenHash string, expiresAt time.Time) (*models.PasswordReset, error) {
	const q = `
		INSERT INTO password_resets (account_id, token_hash, expires_at)
		VALUES ($1, $2, $3)
		RETURNING id, created_at
	`
	pr := &models.PasswordReset{AccountID: accountID, TokenHash: tokenHash, ExpiresAt: expiresAt}
	if err := r.DB.QueryRowContext(ctx, q, accountID, tokenHash, expiresAt).Scan(&pr.ID, &pr.CreatedAt); err != nil {
		return nil, fmt.Errorf("password reset create: %w", err)
	}
	return pr, nil
}

// GetByTokenHash возвращает (nil, nil), если токен не найден.
func (r *passwordResetRepository) GetByTokenHash(ctx context.Context, tokenHash string) (*models.PasswordReset, error) {
	const q = `
		SELECT id, account_id, token_hash, expires_at, used_at, created_at
		FROM password_resets
		WHERE token_hash = $1
	`
	pr := &models.PasswordReset{}
	var usedAt sql.NullTime
	err := r.DB.QueryRowContext(ctx, q, tokenHash).Scan(&pr.ID, &pr.AccountID, &pr.TokenHash, &pr.ExpiresAt, &usedAt, &pr.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("password reset get: %w", err)
	}
	if usedAt.Valid {
		pr.UsedAt = &usedAt.Time
	}
	return pr, nil
}

func (r *passwordResetRepository) MarkUsed(ctx context.Context, id int) error {
	_, err := r.DB.ExecContext(ctx, `UPDATE password_resets SET used_at = NOW() WHERE id = $1`, id)
	return err
}
