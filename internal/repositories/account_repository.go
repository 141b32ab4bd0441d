package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"samurai/internal/models"
)

// ErrDuplicateAccount — нарушение уникальности email/phone.
var ErrDuplicateAccount = errors.New("account already exists")

type AccountRepository interface {
	Create(ctx context.Context, a *models.Account) error
	GetByID(ctx context.Context, id int) (*models.Account, error)
	GetByEmail(ctx context.Context, email string) (*models.Account, error)
	ExistsByEmailOrPhone(ctx context.Context, email, phone string) (bool, error)
	UpdatePassword(ctx context.Context, id int, passwordHash string) error
}

type accountRepository struct {
	DB *sql.DB
}

func NewAccountRepository(db *sql.DB) AccountRepository {
	return &accountRepository{DB: db}
}

func (r *accountRepository) Create(ctx context.Context, a *models.Account) error {
	const q = `
		INSERT INTO accounts (name, email, phone, password_hash)
		VALUES ($1, $2, NULLIF($3, ''), $4)
		RETURNING id, created_at
	`
	err := r.DB.QueryRowContext(ctx, q, a.Name, a.Email, a.Phone, a.PasswordHash).Scan(&a.ID, &a.CreatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return ErrDuplicateAccount
		}
		return fmt.Errorf("account create: %w", err)
	}
	return nil
}

func (r *accountRepository) GetByID(ctx context.Context, id int) (*models.Account, error) {
	const q = `
		SELECT id, name, email, COALESCE(phone, ''), password_hash, created_at
		FROM accounts
		WHERE id = $1
	`
	return r.scanOne(r.DB.QueryRowContext(ctx, q, id))
}

func (r *accountRepository) GetByEmail(ctx context.Context, email string) (*models.Account, error) {
	const q = `
		SELECT id, name, email, COALESCE(phone, ''), password_hash, created_at
		FROM accounts
		WHERE email = $1
	`
	return r.scanOne(r.DB.QueryRowContext(ctx, q, email))
}

// scanOne возвращает (nil, nil), если строки нет.
func (r *accountRepository) scanOne(row *sql.Row) (*models.Account, error) {
	a := &models.Account{}
	if err := row.Scan(&a.ID, &a.Name, &a.Email, &a.Phone, &a.PasswordHash, &a.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("account scan: %w", err)
	}
	return a, nil
}

func (r *accountRepository) ExistsByEmailOrPhone(ctx context.Context, email, phone string) (bool, error) {
	const q = `
		SELECT EXISTS (
			SELECT 1 FROM accounts
			WHERE email = $1 OR ($2 <> '' AND phone = $2)
		)
	`
	var exists bool
	if err := r.DB.QueryRowContext(ctx, q, email, phone).Scan(&exists); err != nil {
		return false, fmt.Errorf("account exists: %w", err)
	}
	return exists, nil
}

func (r *accountRepository) UpdatePassword(ctx context.Context, id int, passwordHash string) error {
	res, err := r.DB.ExecContext(ctx, `UPDATE accounts SET password_hash = $1 WHERE id = $2`, passwordHash, id)
	if err != nil {
		return fmt.Errorf("account update password: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}
