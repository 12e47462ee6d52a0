package postgres

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/oksasatya/go-ddd-marketplace/internal/domain/entity"
	"github.com/oksasatya/go-ddd-marketplace/internal/domain/repository"
)

const uniqueViolation = "23505"

const userColumns = `id, email, password_hash, name, avatar_url, role, is_active, is_verified, last_login, created_at, updated_at`

type UserRepository struct {
	pool *pgxpool.Pool
}

func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

// validID guards uuid columns against malformed ids, which Postgres would
// reject with a cast error instead of "no rows".
func validID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func scanUser(row pgx.Row) (*entity.User, error) {
	u := &entity.User{}
	var role string
	if err := row.Scan(&u.ID, &u.Email, &u.Password, &u.Name, &u.AvatarURL, &role,
		&u.IsActive, &u.IsVerified, &u.LastLogin, &u.CreatedAt, &u.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrUserNotFound
		}
		return nil, err
	}
	u.Role = entity.Role(role)
	return u, nil
}

// Create inserts u. Email uniqueness is left to the users_email_uniq index
// so concurrent registrations cannot both succeed.
func (r *UserRepository) Create(ctx context.Context, u *entity.User) error {
	u.Email = normalizeEmail(u.Email)
	row := r.pool.QueryRow(ctx, `
		INSERT INTO users (email, password_hash, name, avatar_url, role, is_active, is_verified)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at, updated_at
	`, u.Email, u.Password, u.Name, u.AvatarURL, string(u.Role), u.IsActive, u.IsVerified)

	if err := row.Scan(&u.ID, &u.CreatedAt, &u.UpdatedAt); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return repository.ErrEmailTaken
		}
		return err
	}
	return nil
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (*entity.User, error) {
	if !validID(id) {
		return nil, repository.ErrUserNotFound
	}
	return scanUser(r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id))
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	return scanUser(r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, normalizeEmail(email)))
}

func (r *UserRepository) Update(ctx context.Context, u *entity.User) error {
	if !validID(u.ID) {
		return repository.ErrUserNotFound
	}
	u.UpdatedAt = time.Now()

	res, err := r.pool.Exec(ctx, `
		UPDATE users
		SET name = $1, avatar_url = $2, is_active = $3, is_verified = $4, updated_at = $5
		WHERE id = $6
	`, u.Name, u.AvatarURL, u.IsActive, u.IsVerified, u.UpdatedAt, u.ID)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return repository.ErrUserNotFound
	}
	return nil
}

func (r *UserRepository) UpdatePassword(ctx context.Context, id, hash string) error {
	return r.exec(ctx, `UPDATE users SET password_hash = $1, updated_at = now() WHERE id = $2`, hash, id)
}

func (r *UserRepository) UpdateRole(ctx context.Context, id string, role entity.Role) error {
	return r.exec(ctx, `UPDATE users SET role = $1, updated_at = now() WHERE id = $2`, string(role), id)
}

func (r *UserRepository) TouchLastLogin(ctx context.Context, id string, at time.Time) error {
	return r.exec(ctx, `UPDATE users SET last_login = $1 WHERE id = $2`, at, id)
}

// exec runs a single-row update whose last argument is the user id.
func (r *UserRepository) exec(ctx context.Context, sql string, args ...any) error {
	if id, _ := args[len(args)-1].(string); !validID(id) {
		return repository.ErrUserNotFound
	}
	res, err := r.pool.Exec(ctx, sql, args...)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return repository.ErrUserNotFound
	}
	return nil
}

var _ repository.UserRepository = (*UserRepository)(nil)
