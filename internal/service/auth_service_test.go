package service

import (
	"context"
	"testing"

	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-service/internal/config"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util"
)

func newTestAuthService(users *mockUserRepo) *AuthService {
	cfg := config.Config{
		Auth: config.AuthConfig{
			JWTSecret:             "test-secret",
			AccessTokenTTLMinutes: 60,
			BcryptCost:            4,
		},
	}
	return NewAuthService(cfg, AuthDependencies{UserRepo: users, Logger: zap.NewNop()})
}

func TestRegisterUserIssuesToken(t *testing.T) {
	users := &mockUserRepo{}
	svc := newTestAuthService(users)

	user, token, _, err := svc.RegisterUser(context.Background(), "alice", "long-enough")
	if err != nil {
		t.Fatalf("RegisterUser returned error: %v", err)
	}
	if user.ID == 0 {
		t.Error("user should receive a store-assigned id")
	}
	if token == "" {
		t.Error("token should be issued")
	}
	if user.PasswordHash == "long-enough" {
		t.Error("password must never be stored in clear")
	}

	stored := users.users[user.ID]
	if stored.Token == nil || *stored.Token != token {
		t.Error("issued token should be persisted on the user")
	}
}

func TestRegisterUserShortPasswordRejected(t *testing.T) {
	svc := newTestAuthService(&mockUserRepo{})

	_, _, _, err := svc.RegisterUser(context.Background(), "bob", "short")
	if err == nil {
		t.Fatal("short password should be rejected")
	}
	if de := apperrors.ToDomainError(err); de.Code != "VALIDATION_FAILED" {
		t.Errorf("error code = %s, want VALIDATION_FAILED", de.Code)
	}
}

func TestLogin(t *testing.T) {
	users := &mockUserRepo{}
	svc := newTestAuthService(users)

	if _, _, _, err := svc.RegisterUser(context.Background(), "alice", "long-enough"); err != nil {
		t.Fatalf("RegisterUser returned error: %v", err)
	}

	if _, token, _, err := svc.Login(context.Background(), "alice", "long-enough"); err != nil || token == "" {
		t.Fatalf("Login failed: token=%q err=%v", token, err)
	}

	_, _, _, err := svc.Login(context.Background(), "alice", "wrong-password")
	if de := apperrors.ToDomainError(err); de == nil || de.Code != "UNAUTHORIZED" {
		t.Errorf("wrong password: error = %v, want UNAUTHORIZED", err)
	}

	_, _, _, err = svc.Login(context.Background(), "nobody", "whatever")
	if de := apperrors.ToDomainError(err); de == nil || de.Code != "UNAUTHORIZED" {
		t.Errorf("unknown user: error = %v, want UNAUTHORIZED", err)
	}
}

func TestUpdateUserOwnerOnly(t *testing.T) {
	users := &mockUserRepo{}
	svc := newTestAuthService(users)

	user, _, _, err := svc.RegisterUser(context.Background(), "alice", "long-enough")
	if err != nil {
		t.Fatalf("RegisterUser returned error: %v", err)
	}

	name := "eve"
	_, err = svc.UpdateUser(context.Background(), user.ID+1, user.ID, UpdateUserInput{Username: &name})
	if de := apperrors.ToDomainError(err); de == nil || de.Code != "FORBIDDEN" {
		t.Fatalf("foreign principal: error = %v, want FORBIDDEN", err)
	}

	updated, err := svc.UpdateUser(context.Background(), user.ID, user.ID, UpdateUserInput{Username: &name})
	if err != nil {
		t.Fatalf("UpdateUser returned error: %v", err)
	}
	if updated.Username != "eve" {
		t.Errorf("Username = %q, want eve", updated.Username)
	}
}

func TestDeleteUserOwnerOnly(t *testing.T) {
	users := &mockUserRepo{}
	svc := newTestAuthService(users)

	user, _, _, err := svc.RegisterUser(context.Background(), "alice", "long-enough")
	if err != nil {
		t.Fatalf("RegisterUser returned error: %v", err)
	}

	err = svc.DeleteUser(context.Background(), user.ID+1, user.ID)
	if de := apperrors.ToDomainError(err); de == nil || de.Code != "FORBIDDEN" {
		t.Fatalf("foreign principal: error = %v, want FORBIDDEN", err)
	}

	if err := svc.DeleteUser(context.Background(), user.ID, user.ID); err != nil {
		t.Fatalf("DeleteUser returned error: %v", err)
	}
	if len(users.users) != 0 {
		t.Error("user should be removed")
	}
}
