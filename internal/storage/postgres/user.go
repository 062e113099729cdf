package postgres

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/xenking/ghala-dashboard/internal/domain/auth"
)

var _ auth.Repository = (*UserRepository)(nil)

// UserRepository implements auth.Repository backed by PostgreSQL.
type UserRepository struct {
	pool *pgxpool.Pool
}

// NewUserRepository returns a UserRepository that uses the given pool.
func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

// FindByUsername returns the user row, or auth.ErrInvalidCredentials when the
// username is unknown.
func (r *UserRepository) FindByUsername(ctx context.Context, username string) (*auth.User, error) {
	var u auth.User
	err := r.pool.QueryRow(ctx, `
		SELECT username, password_hash, name, email, role, merchant_id
		FROM users WHERE username = $1`,
		username,
	).Scan(&u.Username, &u.PasswordHash, &u.Name, &u.Email, &u.Role, &u.MerchantID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, auth.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("finding user %q: %w", username, err)
	}
	return &u, nil
}

// Upsert writes a user row, replacing any existing one. Used by seeding.
func (r *UserRepository) Upsert(ctx context.Context, u *auth.User) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO users (username, password_hash, name, email, role, merchant_id)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (username) DO UPDATE SET
			password_hash = EXCLUDED.password_hash,
			name = EXCLUDED.name,
			email = EXCLUDED.email,
			role = EXCLUDED.role,
			merchant_id = EXCLUDED.merchant_id`,
		u.Username, u.PasswordHash, u.Name, u.Email, u.Role, u.MerchantID,
	)
	if err != nil {
		return fmt.Errorf("upserting user %q: %w", u.Username, err)
	}
	return nil
}
