package db

import (
	"context"
	"errors"
	"time"

	"github.com/eduraio/qanda-api/internal/config"
	"github.com/eduraio/qanda-api/internal/domain/user"
	"github.com/eduraio/qanda-api/internal/security"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// EnsureOrganizerUser creates the bootstrap organizer account when the
// seed settings are present and no account with that email exists yet.
// A fresh deployment needs one organizer to post the first question.
func EnsureOrganizerUser(ctx context.Context, pool *pgxpool.Pool, cfg config.Config) error {
	if cfg.SeedOrganizerEmail == "" || cfg.SeedOrganizerPassword == "" {
		return nil
	}

	var dummy string

	err := pool.QueryRow(ctx, `SELECT id FROM users WHERE email = $1`, cfg.SeedOrganizerEmail).Scan(&dummy)

	if err == nil {
		return nil
	}

	if !errors.Is(err, pgx.ErrNoRows) {
		return err
	}

	hash, err := security.HashPassword(cfg.SeedOrganizerPassword)

	if err != nil {
		return err
	}

	now := time.Now().UTC()

	u := user.User{
		ID:           uuid.NewString(),
		Email:        cfg.SeedOrganizerEmail,
		PasswordHash: hash,
		Name:         cfg.SeedOrganizerName,
		Role:         user.RoleOrganizer,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	_, err = pool.Exec(ctx,
		`INSERT INTO users (id, email, password_hash, name, role, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
		`,
		u.ID, u.Email, u.PasswordHash, u.Name, u.Role, u.CreatedAt, u.UpdatedAt,
	)

	return err
}
