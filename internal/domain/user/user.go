package user

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

const (
	RoleOrganizer   = "ORGANIZER"
	RoleParticipant = "PARTICIPANT"
)

type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"` // never expose hash in JSON
	Name         string    `json:"name"`
	Role         string    `json:"role"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

var ErrNotFound = errors.New("user not found")
var ErrEmailTaken = errors.New("email already registered")

// with pointers if optional, it will be nil
type ListFilter struct {
	Name  *string // case-insensitive contains
	Email *string // exact
	Role  *string // exact
}

type CreateUserRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
	Name     string `json:"name" binding:"required,min=2,max=120"`
	Role     string `json:"role" binding:"required,oneof=ORGANIZER PARTICIPANT"`
}

// Role is deliberately absent: it is immutable after registration.
type UpdateUserRequest struct {
	Email string `json:"email" binding:"required,email"`
	Name  string `json:"name" binding:"required,min=2,max=120"`
}

// NewFromCreateRequest builds a User from the incoming DTO. The password
// hash is supplied by the caller so this package stays crypto-free.
func NewFromCreateRequest(req CreateUserRequest, passwordHash string) User {
	now := time.Now().UTC()
	return User{
		ID:           uuid.NewString(),
		Email:        req.Email,
		PasswordHash: passwordHash,
		Name:         req.Name,
		Role:         req.Role,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}
