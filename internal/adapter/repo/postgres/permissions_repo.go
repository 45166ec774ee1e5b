package postgres

import (
	"fmt"
	"time"

	"go.opentelemetry.io/otel"

	"github.com/fairyhunter13/agent-recruitment/internal/domain"
)

// PermissionRepo persists per-job access grants for HR users.
type PermissionRepo struct{ Pool PgxPool }

// NewPermissionRepo constructs a PermissionRepo with the given pool.
func NewPermissionRepo(p PgxPool) *PermissionRepo { return &PermissionRepo{Pool: p} }

// Grant links a user to a job. Granting twice is a conflict.
func (r *PermissionRepo) Grant(ctx domain.Context, userID, jobID int64) (int64, error) {
	tracer := otel.Tracer("repo.permissions")
	ctx, span := tracer.Start(ctx, "permissions.Grant")
	defer span.End()
	q := `INSERT INTO permissions (user_id, job_id, created_at) VALUES ($1,$2,$3) RETURNING id`
	var id int64
	if err := r.Pool.QueryRow(ctx, q, userID, jobID, time.Now().UTC()).Scan(&id); err != nil {
		if isUniqueViolation(err) {
			return 0, fmt.Errorf("op=permission.grant: already granted: %w", domain.ErrConflict)
		}
		return 0, fmt.Errorf("op=permission.grant: %w", err)
	}
	return id, nil
}

// Revoke removes a grant.
func (r *PermissionRepo) Revoke(ctx domain.Context, userID, jobID int64) error {
	tracer := otel.Tracer("repo.permissions")
	ctx, span := tracer.Start(ctx, "permissions.Revoke")
	defer span.End()
	tag, err := r.Pool.Exec(ctx, `DELETE FROM permissions WHERE user_id=$1 AND job_id=$2`, userID, jobID)
	if err != nil {
		return fmt.Errorf("op=permission.revoke: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("op=permission.revoke: %w", domain.ErrNotFound)
	}
	return nil
}

// ListByUser returns all grants held by one user.
func (r *PermissionRepo) ListByUser(ctx domain.Context, userID int64) ([]domain.Permission, error) {
	tracer := otel.Tracer("repo.permissions")
	ctx, span := tracer.Start(ctx, "permissions.ListByUser")
	defer span.End()
	q := `SELECT id, user_id, job_id, created_at FROM permissions WHERE user_id=$1 ORDER BY id`
	rows, err := r.Pool.Query(ctx, q, userID)
	if err != nil {
		return nil, fmt.Errorf("op=permission.list_by_user: %w", err)
	}
	defer rows.Close()
	var out []domain.Permission
	for rows.Next() {
		var p domain.Permission
		if err := rows.Scan(&p.ID, &p.UserID, &p.JobID, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("op=permission.list_by_user: %w", err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("op=permission.list_by_user: %w", err)
	}
	return out, nil
}

// Has reports whether the user holds a grant for the job.
func (r *PermissionRepo) Has(ctx domain.Context, userID, jobID int64) (bool, error) {
	tracer := otel.Tracer("repo.permissions")
	ctx, span := tracer.Start(ctx, "permissions.Has")
	defer span.End()
	q := `SELECT EXISTS(SELECT 1 FROM permissions WHERE user_id=$1 AND job_id=$2)`
	var ok bool
	if err := r.Pool.QueryRow(ctx, q, userID, jobID).Scan(&ok); err != nil {
		return false, fmt.Errorf("op=permission.has: %w", err)
	}
	return ok, nil
}
