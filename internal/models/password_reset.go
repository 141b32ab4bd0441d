package models

import "time"

// PasswordReset — одноразовый токен сброса пароля; в БД лежит только SHA-256 хэш.
type PasswordReset struct {
	ID        int        `json:"id"`
	AccountID int        `json:"account_id"`
	TokenHash string     `json:"-"`
	ExpiresAt time.Time  `json:"expires_at"`
	UsedAt    *time.Time `json:"used_at,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}
