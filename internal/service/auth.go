package service

import (
	"context"
	"errors"

	"github.com/eduraio/qanda-api/internal/domain/user"
	"github.com/eduraio/qanda-api/internal/security"
)

// ErrInvalidCredentials covers both an unknown email and a wrong
// password. The two causes must stay indistinguishable to the caller so
// accounts cannot be enumerated.
var ErrInvalidCredentials = errors.New("Invalid e-mail and/or password")

// TokenIssuer signs the access token for a verified principal.
type TokenIssuer interface {
	GenerateAccessToken(userID, email, role string) (string, error)
}

type Auth struct {
	users  UsersStore
	tokens TokenIssuer
}

func NewAuth(users UsersStore, tokens TokenIssuer) *Auth {
	return &Auth{users: users, tokens: tokens}
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type LoginResult struct {
	AccessToken string `json:"accessToken"`
}

// Login verifies the email/password pair and issues a stateless signed
// token. Every verification failure surfaces as the same error.
func (s *Auth) Login(ctx context.Context, req LoginRequest) (LoginResult, error) {
	u, err := s.users.GetByEmail(ctx, req.Email)
	if errors.Is(err, user.ErrNotFound) {
		return LoginResult{}, ErrInvalidCredentials
	}
	if err != nil {
		return LoginResult{}, err
	}

	if err := security.CheckPassword(u.PasswordHash, req.Password); err != nil {
		return LoginResult{}, ErrInvalidCredentials
	}

	token, err := s.tokens.GenerateAccessToken(u.ID, u.Email, u.Role)
	if err != nil {
		return LoginResult{}, err
	}

	return LoginResult{AccessToken: token}, nil
}
