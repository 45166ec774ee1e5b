// Package postgres provides PostgreSQL database adapters.
//
// It implements the repository ports for data persistence using a minimal
// pgx pool seam so the repos stay testable without a live database.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.opentelemetry.io/otel"

	"github.com/fairyhunter13/agent-recruitment/internal/domain"
)

// PgxPool is a minimal subset of pgxpool used by the repos for easy testing.
type PgxPool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	BeginTx(ctx context.Context, txOptions pgx.TxOptions) (pgx.Tx, error)
}

// JobRepo persists and loads job postings.
type JobRepo struct{ Pool PgxPool }

// NewJobRepo constructs a JobRepo with the given pool.
func NewJobRepo(p PgxPool) *JobRepo { return &JobRepo{Pool: p} }

const jobCols = `id, title, job_type, qualifications, responsibilities, benefits, work_schedule, location, is_open, created_at, updated_at`

func scanJob(row pgx.Row) (domain.Job, error) {
	var j domain.Job
	err := row.Scan(&j.ID, &j.Title, &j.JobType, &j.Qualifications, &j.Responsibilities,
		&j.Benefits, &j.WorkSchedule, &j.Location, &j.IsOpen, &j.CreatedAt, &j.UpdatedAt)
	return j, err
}

// Create inserts a new job and returns its id.
func (r *JobRepo) Create(ctx domain.Context, j domain.Job) (int64, error) {
	tracer := otel.Tracer("repo.jobs")
	ctx, span := tracer.Start(ctx, "jobs.Create")
	defer span.End()
	q := `INSERT INTO jobs (title, job_type, qualifications, responsibilities, benefits, work_schedule, location, is_open, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$9) RETURNING id`
	var id int64
	if err := r.Pool.QueryRow(ctx, q, j.Title, j.JobType, j.Qualifications, j.Responsibilities,
		j.Benefits, j.WorkSchedule, j.Location, j.IsOpen, time.Now().UTC()).Scan(&id); err != nil {
		return 0, fmt.Errorf("op=job.create: %w", err)
	}
	return id, nil
}

// Get loads a job by id.
func (r *JobRepo) Get(ctx domain.Context, id int64) (domain.Job, error) {
	tracer := otel.Tracer("repo.jobs")
	ctx, span := tracer.Start(ctx, "jobs.Get")
	defer span.End()
	q := `SELECT ` + jobCols + ` FROM jobs WHERE id=$1`
	j, err := scanJob(r.Pool.QueryRow(ctx, q, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Job{}, fmt.Errorf("op=job.get: %w", domain.ErrNotFound)
		}
		return domain.Job{}, fmt.Errorf("op=job.get: %w", err)
	}
	return j, nil
}

// List returns jobs matching the filter, newest first. Text fields match
// case-insensitively as substrings.
func (r *JobRepo) List(ctx domain.Context, f domain.JobFilter) ([]domain.Job, error) {
	tracer := otel.Tracer("repo.jobs")
	ctx, span := tracer.Start(ctx, "jobs.List")
	defer span.End()

	q := `SELECT ` + jobCols + ` FROM jobs`
	var conds []string
	var args []any
	addCond := func(col, val string) {
		if val == "" {
			return
		}
		args = append(args, "%"+val+"%")
		conds = append(conds, fmt.Sprintf("%s ILIKE $%d", col, len(args)))
	}
	addCond("title", f.Title)
	addCond("job_type", f.JobType)
	addCond("location", f.Location)
	if len(conds) > 0 {
		q += " WHERE " + strings.Join(conds, " AND ")
	}
	q += " ORDER BY created_at DESC"
	if f.Limit > 0 {
		args = append(args, f.Limit)
		q += fmt.Sprintf(" LIMIT $%d", len(args))
	}
	if f.Offset > 0 {
		args = append(args, f.Offset)
		q += fmt.Sprintf(" OFFSET $%d", len(args))
	}

	rows, err := r.Pool.Query(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("op=job.list: %w", err)
	}
	defer rows.Close()
	return collectJobs(rows, "op=job.list")
}

// ListUnassigned returns jobs without any permission grant.
func (r *JobRepo) ListUnassigned(ctx domain.Context) ([]domain.Job, error) {
	tracer := otel.Tracer("repo.jobs")
	ctx, span := tracer.Start(ctx, "jobs.ListUnassigned")
	defer span.End()
	q := `SELECT ` + jobCols + ` FROM jobs j
		WHERE NOT EXISTS (SELECT 1 FROM permissions p WHERE p.job_id = j.id)
		ORDER BY created_at DESC`
	rows, err := r.Pool.Query(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("op=job.list_unassigned: %w", err)
	}
	defer rows.Close()
	return collectJobs(rows, "op=job.list_unassigned")
}

func collectJobs(rows pgx.Rows, op string) ([]domain.Job, error) {
	var out []domain.Job
	for rows.Next() {
		j, err := scanJob(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		out = append(out, j)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return out, nil
}

// Update rewrites the mutable fields of a job.
func (r *JobRepo) Update(ctx domain.Context, j domain.Job) error {
	tracer := otel.Tracer("repo.jobs")
	ctx, span := tracer.Start(ctx, "jobs.Update")
	defer span.End()
	q := `UPDATE jobs SET title=$2, job_type=$3, qualifications=$4, responsibilities=$5,
		benefits=$6, work_schedule=$7, location=$8, is_open=$9, updated_at=$10 WHERE id=$1`
	tag, err := r.Pool.Exec(ctx, q, j.ID, j.Title, j.JobType, j.Qualifications, j.Responsibilities,
		j.Benefits, j.WorkSchedule, j.Location, j.IsOpen, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("op=job.update: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("op=job.update: %w", domain.ErrNotFound)
	}
	return nil
}

// Delete removes a job. Candidate rows keep their data; the FK sets their
// job_id to NULL.
func (r *JobRepo) Delete(ctx domain.Context, id int64) error {
	tracer := otel.Tracer("repo.jobs")
	ctx, span := tracer.Start(ctx, "jobs.Delete")
	defer span.End()
	tag, err := r.Pool.Exec(ctx, `DELETE FROM jobs WHERE id=$1`, id)
	if err != nil {
		return fmt.Errorf("op=job.delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("op=job.delete: %w", domain.ErrNotFound)
	}
	return nil
}
