package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap/zaptest"

	"samurai/internal/models"
)

func TestLogin(t *testing.T) {
	auth := NewAuthService("secret", 15*time.Minute, nil)
	accounts := newFakeAccounts()
	hash, _ := auth.HashPassword("sakura123")
	_ = accounts.Create(context.Background(), &models.Account{Name: "Hana", Email: "a@x.com", PasswordHash: hash})
	svc := NewAccountService(accounts, auth, zaptest.NewLogger(t))

	res, err := svc.Login(context.Background(), " a@x.com ", "sakura123")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	claims, err := auth.ParseAccessToken(res.AccessToken)
	if err != nil {
		t.Fatalf("issued token does not parse: %v", err)
	}
	if claims.AccountID != res.Account.ID {
		t.Errorf("token account %d != %d", claims.AccountID, res.Account.ID)
	}

	if _, err := svc.Login(context.Background(), "a@x.com", "wrong"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("expected ErrInvalidCredentials for wrong password, got %v", err)
	}
	if _, err := svc.Login(context.Background(), "nobody@x.com", "sakura123"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("expected ErrInvalidCredentials for unknown email, got %v", err)
	}
}

func TestGetAccount(t *testing.T) {
	accounts := newFakeAccounts()
	_ = accounts.Create(context.Background(), &models.Account{Email: "a@x.com"})
	svc := NewAccountService(accounts, NewAuthService("s", time.Minute, nil), zaptest.NewLogger(t))

	a, err := svc.GetAccount(context.Background(), 1)
	if err != nil || a.Email != "a@x.com" {
		t.Fatalf("unexpected result %+v, %v", a, err)
	}
	if _, err := svc.GetAccount(context.Background(), 99); !errors.Is(err, ErrAccountNotFound) {
		t.Errorf("expected ErrAccountNotFound, got %v", err)
	}
}
