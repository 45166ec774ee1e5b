package postgres

import (
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"go.opentelemetry.io/otel"

	"github.com/fairyhunter13/agent-recruitment/internal/domain"
)

// TaskRepo tracks asynchronous pipeline tasks so clients can poll their state.
type TaskRepo struct{ Pool PgxPool }

// NewTaskRepo constructs a TaskRepo with the given pool.
func NewTaskRepo(p PgxPool) *TaskRepo { return &TaskRepo{Pool: p} }

// Create inserts a new pending task.
func (r *TaskRepo) Create(ctx domain.Context, t domain.PipelineTask) error {
	tracer := otel.Tracer("repo.tasks")
	ctx, span := tracer.Start(ctx, "tasks.Create")
	defer span.End()
	q := `INSERT INTO pipeline_tasks (id, kind, status, candidate_ids, job_id, error, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,'',$6,$6)`
	_, err := r.Pool.Exec(ctx, q, t.ID, t.Kind, domain.TaskPending, t.CandidateIDs, t.JobID, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("op=task.create: %w", err)
	}
	return nil
}

// Get loads a task by id.
func (r *TaskRepo) Get(ctx domain.Context, id string) (domain.PipelineTask, error) {
	tracer := otel.Tracer("repo.tasks")
	ctx, span := tracer.Start(ctx, "tasks.Get")
	defer span.End()
	q := `SELECT id, kind, status, candidate_ids, job_id, error, created_at, updated_at FROM pipeline_tasks WHERE id=$1`
	var t domain.PipelineTask
	if err := r.Pool.QueryRow(ctx, q, id).Scan(&t.ID, &t.Kind, &t.Status, &t.CandidateIDs, &t.JobID, &t.Error, &t.CreatedAt, &t.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.PipelineTask{}, fmt.Errorf("op=task.get: %w", domain.ErrNotFound)
		}
		return domain.PipelineTask{}, fmt.Errorf("op=task.get: %w", err)
	}
	return t, nil
}

func (r *TaskRepo) setStatus(ctx domain.Context, id string, status domain.TaskStatus, errMsg string) error {
	q := `UPDATE pipeline_tasks SET status=$2, error=$3, updated_at=$4 WHERE id=$1`
	tag, err := r.Pool.Exec(ctx, q, id, status, errMsg, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("op=task.set_status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("op=task.set_status: %w", domain.ErrNotFound)
	}
	return nil
}

// MarkRunning transitions a task to running.
func (r *TaskRepo) MarkRunning(ctx domain.Context, id string) error {
	tracer := otel.Tracer("repo.tasks")
	ctx, span := tracer.Start(ctx, "tasks.MarkRunning")
	defer span.End()
	return r.setStatus(ctx, id, domain.TaskRunning, "")
}

// MarkSucceeded transitions a task to succeeded.
func (r *TaskRepo) MarkSucceeded(ctx domain.Context, id string) error {
	tracer := otel.Tracer("repo.tasks")
	ctx, span := tracer.Start(ctx, "tasks.MarkSucceeded")
	defer span.End()
	return r.setStatus(ctx, id, domain.TaskSucceeded, "")
}

// MarkFailed transitions a task to failed with a terminal error message.
func (r *TaskRepo) MarkFailed(ctx domain.Context, id string, errMsg string) error {
	tracer := otel.Tracer("repo.tasks")
	ctx, span := tracer.Start(ctx, "tasks.MarkFailed")
	defer span.End()
	return r.setStatus(ctx, id, domain.TaskFailed, errMsg)
}
