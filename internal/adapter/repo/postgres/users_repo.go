package postgres

import (
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"go.opentelemetry.io/otel"

	"github.com/fairyhunter13/agent-recruitment/internal/domain"
)

// UserRepo persists operator accounts.
type UserRepo struct{ Pool PgxPool }

// NewUserRepo constructs a UserRepo with the given pool.
func NewUserRepo(p PgxPool) *UserRepo { return &UserRepo{Pool: p} }

func isUniqueViolation(err error) bool {
	// 23505 = unique_violation
	var pgErr interface{ SQLState() string }
	if errors.As(err, &pgErr) {
		return pgErr.SQLState() == "23505"
	}
	return false
}

// Create inserts a new user and returns its id.
func (r *UserRepo) Create(ctx domain.Context, u domain.User) (int64, error) {
	tracer := otel.Tracer("repo.users")
	ctx, span := tracer.Start(ctx, "users.Create")
	defer span.End()
	q := `INSERT INTO users (name, username, password_hash, role, is_active, created_at)
		VALUES ($1,$2,$3,$4,$5,$6) RETURNING id`
	var id int64
	if err := r.Pool.QueryRow(ctx, q, u.Name, u.Username, u.PasswordHash, u.Role, u.IsActive, time.Now().UTC()).Scan(&id); err != nil {
		if isUniqueViolation(err) {
			return 0, fmt.Errorf("op=user.create: username taken: %w", domain.ErrConflict)
		}
		return 0, fmt.Errorf("op=user.create: %w", err)
	}
	return id, nil
}

// Get loads a user by id.
func (r *UserRepo) Get(ctx domain.Context, id int64) (domain.User, error) {
	tracer := otel.Tracer("repo.users")
	ctx, span := tracer.Start(ctx, "users.Get")
	defer span.End()
	q := `SELECT id, name, username, password_hash, role, is_active, created_at FROM users WHERE id=$1`
	var u domain.User
	if err := r.Pool.QueryRow(ctx, q, id).Scan(&u.ID, &u.Name, &u.Username, &u.PasswordHash, &u.Role, &u.IsActive, &u.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.User{}, fmt.Errorf("op=user.get: %w", domain.ErrNotFound)
		}
		return domain.User{}, fmt.Errorf("op=user.get: %w", err)
	}
	return u, nil
}

// GetByUsername loads a user by username.
func (r *UserRepo) GetByUsername(ctx domain.Context, username string) (domain.User, error) {
	tracer := otel.Tracer("repo.users")
	ctx, span := tracer.Start(ctx, "users.GetByUsername")
	defer span.End()
	q := `SELECT id, name, username, password_hash, role, is_active, created_at FROM users WHERE username=$1`
	var u domain.User
	if err := r.Pool.QueryRow(ctx, q, username).Scan(&u.ID, &u.Name, &u.Username, &u.PasswordHash, &u.Role, &u.IsActive, &u.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.User{}, fmt.Errorf("op=user.get_by_username: %w", domain.ErrNotFound)
		}
		return domain.User{}, fmt.Errorf("op=user.get_by_username: %w", err)
	}
	return u, nil
}

// List returns all users.
func (r *UserRepo) List(ctx domain.Context) ([]domain.User, error) {
	tracer := otel.Tracer("repo.users")
	ctx, span := tracer.Start(ctx, "users.List")
	defer span.End()
	q := `SELECT id, name, username, password_hash, role, is_active, created_at FROM users ORDER BY id`
	rows, err := r.Pool.Query(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("op=user.list: %w", err)
	}
	defer rows.Close()
	var out []domain.User
	for rows.Next() {
		var u domain.User
		if err := rows.Scan(&u.ID, &u.Name, &u.Username, &u.PasswordHash, &u.Role, &u.IsActive, &u.CreatedAt); err != nil {
			return nil, fmt.Errorf("op=user.list: %w", err)
		}
		out = append(out, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("op=user.list: %w", err)
	}
	return out, nil
}

// SetActive toggles whether a user may authenticate.
func (r *UserRepo) SetActive(ctx domain.Context, id int64, active bool) error {
	tracer := otel.Tracer("repo.users")
	ctx, span := tracer.Start(ctx, "users.SetActive")
	defer span.End()
	tag, err := r.Pool.Exec(ctx, `UPDATE users SET is_active=$2 WHERE id=$1`, id, active)
	if err != nil {
		return fmt.Errorf("op=user.set_active: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("op=user.set_active: %w", domain.ErrNotFound)
	}
	return nil
}

// SetPasswordHash replaces a user's credential.
func (r *UserRepo) SetPasswordHash(ctx domain.Context, id int64, hash string) error {
	tracer := otel.Tracer("repo.users")
	ctx, span := tracer.Start(ctx, "users.SetPasswordHash")
	defer span.End()
	tag, err := r.Pool.Exec(ctx, `UPDATE users SET password_hash=$2 WHERE id=$1`, id, hash)
	if err != nil {
		return fmt.Errorf("op=user.set_password: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("op=user.set_password: %w", domain.ErrNotFound)
	}
	return nil
}

// Delete removes a user and, via FK cascade, their permissions.
func (r *UserRepo) Delete(ctx domain.Context, id int64) error {
	tracer := otel.Tracer("repo.users")
	ctx, span := tracer.Start(ctx, "users.Delete")
	defer span.End()
	tag, err := r.Pool.Exec(ctx, `DELETE FROM users WHERE id=$1`, id)
	if err != nil {
		return fmt.Errorf("op=user.delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("op=user.delete: %w", domain.ErrNotFound)
	}
	return nil
}
