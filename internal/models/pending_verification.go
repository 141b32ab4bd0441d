package models

import "time"

// PendingProfile — данные формы регистрации, ещё не сохранённые как аккаунт.
// Пароль хранится только в виде bcrypt-хэша.
type PendingProfile struct {
	Name         string `json:"name"`
	Phone        string `json:"phone"`
	PasswordHash string `json:"password_hash"`
}

// PendingVerification — одна запись на email; новая отправка перезаписывает старую.
type PendingVerification struct {
	Email        string         `json:"email"`
	CorrectCode  string         `json:"correct_code"`
	DecoyOptions []string       `json:"decoy_options"`
	DisplayOrder []string       `json:"display_order"`
	Profile      PendingProfile `json:"profile"`
	CreatedAt    time.Time      `json:"created_at"`
}

// ExpiredAt reports whether the record is no longer valid at now for the given ttl.
func (p *PendingVerification) ExpiredAt(now time.Time, ttl time.Duration) bool {
	return now.Sub(p.CreatedAt) >= ttl
}
