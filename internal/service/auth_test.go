package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/eduraio/qanda-api/internal/auth"
	"github.com/eduraio/qanda-api/internal/domain/user"
)

func newAuthEnv() (*env, *Auth, *auth.Manager) {
	e := newEnv()
	tokens := auth.NewManager("test-secret", 15*time.Minute)
	return e, NewAuth(e.usersRepo, tokens), tokens
}

func TestAuthLogin(t *testing.T) {
	e, svc, tokens := newAuthEnv()
	ctx := context.Background()

	created, _ := e.registerUser(t, "ana@example.com", "Ana", user.RoleParticipant)

	result, err := svc.Login(ctx, LoginRequest{Email: "ana@example.com", Password: "s3cret-pass"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if result.AccessToken == "" {
		t.Fatal("empty access token")
	}

	claims, err := tokens.VerifyAccessToken(result.AccessToken)
	if err != nil {
		t.Fatalf("verify issued token: %v", err)
	}
	if claims.UserID != created.ID {
		t.Fatalf("token subject = %s, want %s", claims.UserID, created.ID)
	}
	if claims.Email != created.Email || claims.Role != user.RoleParticipant {
		t.Fatalf("token claims = %s/%s", claims.Email, claims.Role)
	}
}

// A wrong password and an unknown email must be indistinguishable, down
// to the exact message, so accounts cannot be enumerated.
func TestAuthLoginFailuresIndistinguishable(t *testing.T) {
	e, svc, _ := newAuthEnv()
	ctx := context.Background()

	e.registerUser(t, "ana@example.com", "Ana", user.RoleParticipant)

	_, wrongPass := svc.Login(ctx, LoginRequest{Email: "ana@example.com", Password: "not-the-pass"})
	_, unknownEmail := svc.Login(ctx, LoginRequest{Email: "ghost@example.com", Password: "s3cret-pass"})

	if !errors.Is(wrongPass, ErrInvalidCredentials) {
		t.Fatalf("wrong password: got %v", wrongPass)
	}
	if !errors.Is(unknownEmail, ErrInvalidCredentials) {
		t.Fatalf("unknown email: got %v", unknownEmail)
	}
	if wrongPass.Error() != unknownEmail.Error() {
		t.Fatalf("messages differ: %q vs %q", wrongPass.Error(), unknownEmail.Error())
	}
}
