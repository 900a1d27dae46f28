// Package service holds the resource services. Each operation runs its
// gates in a fixed order: existence check, then role gate, then ownership
// gate, then the actual storage call. A failed gate means no side effect.
package service

import (
	"context"
	"errors"

	"github.com/eduraio/qanda-api/internal/authz"
	"github.com/eduraio/qanda-api/internal/domain/user"
	"github.com/eduraio/qanda-api/internal/pagination"
	"github.com/eduraio/qanda-api/internal/security"
)

// UsersStore is the record-access contract the users service consumes.
type UsersStore interface {
	Create(ctx context.Context, u user.User) (user.User, error)
	GetByID(ctx context.Context, id string) (user.User, error)
	GetByEmail(ctx context.Context, email string) (user.User, error)
	List(ctx context.Context, f user.ListFilter, page pagination.Query) ([]user.User, error)
	Count(ctx context.Context, f user.ListFilter) (int, error)
	Update(ctx context.Context, id string, req user.UpdateUserRequest) (user.User, error)
	Delete(ctx context.Context, id string) error
}

type Users struct {
	store UsersStore
}

func NewUsers(store UsersStore) *Users {
	return &Users{store: store}
}

// Register creates the account with the password hashed up front. The
// email pre-check gives the common case a clean Conflict; the storage
// uniqueness constraint settles races.
func (s *Users) Register(ctx context.Context, req user.CreateUserRequest) (user.User, error) {
	_, err := s.store.GetByEmail(ctx, req.Email)

	if err == nil {
		return user.User{}, user.ErrEmailTaken
	}

	if !errors.Is(err, user.ErrNotFound) {
		return user.User{}, err
	}

	hash, err := security.HashPassword(req.Password)
	if err != nil {
		return user.User{}, err
	}

	return s.store.Create(ctx, user.NewFromCreateRequest(req, hash))
}

func (s *Users) Get(ctx context.Context, id string, p authz.Principal) (user.User, error) {
	u, err := s.store.GetByID(ctx, id)
	if err != nil {
		return user.User{}, err
	}

	if err := authz.RequireOwner(u.ID, p.ID, "User can get only their own information"); err != nil {
		return user.User{}, err
	}

	return u, nil
}

func (s *Users) List(ctx context.Context, f user.ListFilter, page pagination.Query) (pagination.Envelope[user.User], error) {
	if err := page.Normalize(pagination.DefaultSort, "updated_at"); err != nil {
		return pagination.Envelope[user.User]{}, err
	}

	users, err := s.store.List(ctx, f, page)
	if err != nil {
		return pagination.Envelope[user.User]{}, err
	}

	total, err := s.store.Count(ctx, f)
	if err != nil {
		return pagination.Envelope[user.User]{}, err
	}

	return pagination.WrapResults(page, users, total), nil
}

func (s *Users) Update(ctx context.Context, id string, req user.UpdateUserRequest, p authz.Principal) (user.User, error) {
	u, err := s.store.GetByID(ctx, id)
	if err != nil {
		return user.User{}, err
	}

	if err := authz.RequireOwner(u.ID, p.ID, "User can update only their own information"); err != nil {
		return user.User{}, err
	}

	return s.store.Update(ctx, id, req)
}

func (s *Users) Delete(ctx context.Context, id string, p authz.Principal) error {
	u, err := s.store.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if err := authz.RequireOwner(u.ID, p.ID, "User can delete only their own information"); err != nil {
		return err
	}

	return s.store.Delete(ctx, id)
}
