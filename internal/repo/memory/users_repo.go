// Package memory holds map-backed repositories that satisfy the same
// contracts as the postgres ones. They enforce the same uniqueness rules
// so service tests exercise real Conflict paths without a database.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/eduraio/qanda-api/internal/domain/user"
	"github.com/eduraio/qanda-api/internal/pagination"
)

type UsersRepo struct {
	mu    sync.RWMutex
	items map[string]user.User
}

func NewUsersRepo() *UsersRepo {
	return &UsersRepo{
		items: make(map[string]user.User),
	}
}

func (r *UsersRepo) Create(_ context.Context, u user.User) (user.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.items {
		if existing.Email == u.Email {
			return user.User{}, user.ErrEmailTaken
		}
	}

	r.items[u.ID] = u

	return u, nil
}

func (r *UsersRepo) GetByID(_ context.Context, id string) (user.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.items[id]
	if !ok {
		return user.User{}, user.ErrNotFound
	}

	return u, nil
}

func (r *UsersRepo) GetByEmail(_ context.Context, email string) (user.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, u := range r.items {
		if u.Email == email {
			return u, nil
		}
	}

	return user.User{}, user.ErrNotFound
}

func (r *UsersRepo) matches(u user.User, f user.ListFilter) bool {
	if f.Name != nil && !strings.Contains(strings.ToLower(u.Name), strings.ToLower(*f.Name)) {
		return false
	}
	if f.Email != nil && u.Email != *f.Email {
		return false
	}
	if f.Role != nil && u.Role != *f.Role {
		return false
	}
	return true
}

func (r *UsersRepo) List(_ context.Context, f user.ListFilter, page pagination.Query) ([]user.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	matched := make([]user.User, 0, len(r.items))

	for _, u := range r.items {
		if r.matches(u, f) {
			matched = append(matched, u)
		}
	}

	sortByCreatedAt(matched, page.Order, func(u user.User) (time.Time, string) {
		return u.CreatedAt, u.ID
	})

	return paginate(matched, page), nil
}

func (r *UsersRepo) Count(_ context.Context, f user.ListFilter) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	total := 0
	for _, u := range r.items {
		if r.matches(u, f) {
			total++
		}
	}

	return total, nil
}

func (r *UsersRepo) Update(_ context.Context, id string, req user.UpdateUserRequest) (user.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.items[id]
	if !ok {
		return user.User{}, user.ErrNotFound
	}

	for otherID, other := range r.items {
		if otherID != id && other.Email == req.Email {
			return user.User{}, user.ErrEmailTaken
		}
	}

	u.Email = req.Email
	u.Name = req.Name
	u.UpdatedAt = time.Now().UTC()
	r.items[id] = u

	return u, nil
}

func (r *UsersRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.items[id]; !ok {
		return user.ErrNotFound
	}

	delete(r.items, id)

	return nil
}

// shared list helpers

func sortByCreatedAt[T any](items []T, order string, key func(T) (time.Time, string)) {
	sort.SliceStable(items, func(i, j int) bool {
		ti, idi := key(items[i])
		tj, idj := key(items[j])

		if ti.Equal(tj) {
			return idi < idj
		}
		if order == pagination.OrderDesc {
			return ti.After(tj)
		}
		return ti.Before(tj)
	})
}

func paginate[T any](items []T, page pagination.Query) []T {
	if page.Offset >= len(items) {
		return []T{}
	}

	end := page.Offset + page.Limit
	if end > len(items) {
		end = len(items)
	}

	return items[page.Offset:end]
}
