package postgres

import (
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"go.opentelemetry.io/otel"

	"github.com/fairyhunter13/agent-recruitment/internal/domain"
)

// CandidateRepo persists applicants together with their extracted CV fields
// and evaluation outcome.
type CandidateRepo struct{ Pool PgxPool }

// NewCandidateRepo constructs a CandidateRepo with the given pool.
func NewCandidateRepo(p PgxPool) *CandidateRepo { return &CandidateRepo{Pool: p} }

const candidateCols = `id, name, email, phone_number, year_of_birth, job_id, job_type, cv_object_key,
	extract_objective, extract_experiences, extract_skills, extract_education, extract_certificate,
	score, summary_reason, created_at, updated_at`

func scanCandidate(row pgx.Row) (domain.Candidate, error) {
	var c domain.Candidate
	err := row.Scan(&c.ID, &c.Name, &c.Email, &c.PhoneNumber, &c.YearOfBirth, &c.JobID, &c.JobType, &c.CVObjectKey,
		&c.Fields.Objective, &c.Fields.Experiences, &c.Fields.Skills, &c.Fields.Education, &c.Fields.Certificate,
		&c.Score, &c.SummaryReason, &c.CreatedAt, &c.UpdatedAt)
	return c, err
}

// Create inserts a new candidate and returns its id.
func (r *CandidateRepo) Create(ctx domain.Context, c domain.Candidate) (int64, error) {
	tracer := otel.Tracer("repo.candidates")
	ctx, span := tracer.Start(ctx, "candidates.Create")
	defer span.End()
	q := `INSERT INTO candidates (name, email, phone_number, year_of_birth, job_id, job_type, cv_object_key, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$8) RETURNING id`
	var id int64
	if err := r.Pool.QueryRow(ctx, q, c.Name, c.Email, c.PhoneNumber, c.YearOfBirth, c.JobID, c.JobType, c.CVObjectKey, time.Now().UTC()).Scan(&id); err != nil {
		return 0, fmt.Errorf("op=candidate.create: %w", err)
	}
	return id, nil
}

// Get loads a candidate by id.
func (r *CandidateRepo) Get(ctx domain.Context, id int64) (domain.Candidate, error) {
	tracer := otel.Tracer("repo.candidates")
	ctx, span := tracer.Start(ctx, "candidates.Get")
	defer span.End()
	q := `SELECT ` + candidateCols + ` FROM candidates WHERE id=$1`
	c, err := scanCandidate(r.Pool.QueryRow(ctx, q, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Candidate{}, fmt.Errorf("op=candidate.get: %w", domain.ErrNotFound)
		}
		return domain.Candidate{}, fmt.Errorf("op=candidate.get: %w", err)
	}
	return c, nil
}

// List returns all candidates, newest first.
func (r *CandidateRepo) List(ctx domain.Context) ([]domain.Candidate, error) {
	tracer := otel.Tracer("repo.candidates")
	ctx, span := tracer.Start(ctx, "candidates.List")
	defer span.End()
	q := `SELECT ` + candidateCols + ` FROM candidates ORDER BY created_at DESC`
	rows, err := r.Pool.Query(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("op=candidate.list: %w", err)
	}
	defer rows.Close()
	return collectCandidates(rows)
}

// ListByJob returns candidates attached to one job.
func (r *CandidateRepo) ListByJob(ctx domain.Context, jobID int64) ([]domain.Candidate, error) {
	tracer := otel.Tracer("repo.candidates")
	ctx, span := tracer.Start(ctx, "candidates.ListByJob")
	defer span.End()
	q := `SELECT ` + candidateCols + ` FROM candidates WHERE job_id=$1 ORDER BY created_at DESC`
	rows, err := r.Pool.Query(ctx, q, jobID)
	if err != nil {
		return nil, fmt.Errorf("op=candidate.list_by_job: %w", err)
	}
	defer rows.Close()
	return collectCandidates(rows)
}

// ListUnevaluated returns a job's candidates that still lack a score.
func (r *CandidateRepo) ListUnevaluated(ctx domain.Context, jobID int64) ([]domain.Candidate, error) {
	tracer := otel.Tracer("repo.candidates")
	ctx, span := tracer.Start(ctx, "candidates.ListUnevaluated")
	defer span.End()
	q := `SELECT ` + candidateCols + ` FROM candidates WHERE job_id=$1 AND score IS NULL ORDER BY created_at DESC`
	rows, err := r.Pool.Query(ctx, q, jobID)
	if err != nil {
		return nil, fmt.Errorf("op=candidate.list_unevaluated: %w", err)
	}
	defer rows.Close()
	return collectCandidates(rows)
}

// ListUnassigned returns candidates detached from any job.
func (r *CandidateRepo) ListUnassigned(ctx domain.Context) ([]domain.Candidate, error) {
	tracer := otel.Tracer("repo.candidates")
	ctx, span := tracer.Start(ctx, "candidates.ListUnassigned")
	defer span.End()
	q := `SELECT ` + candidateCols + ` FROM candidates WHERE job_id IS NULL ORDER BY created_at DESC`
	rows, err := r.Pool.Query(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("op=candidate.list_unassigned: %w", err)
	}
	defer rows.Close()
	return collectCandidates(rows)
}

// Update rewrites a candidate's identity fields.
func (r *CandidateRepo) Update(ctx domain.Context, c domain.Candidate) error {
	tracer := otel.Tracer("repo.candidates")
	ctx, span := tracer.Start(ctx, "candidates.Update")
	defer span.End()
	q := `UPDATE candidates SET name=$2, email=$3, phone_number=$4, year_of_birth=$5, updated_at=$6 WHERE id=$1`
	tag, err := r.Pool.Exec(ctx, q, c.ID, c.Name, c.Email, c.PhoneNumber, c.YearOfBirth, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("op=candidate.update: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("op=candidate.update: %w", domain.ErrNotFound)
	}
	return nil
}

// SetJob moves a candidate onto a job, or detaches them when jobID is nil.
func (r *CandidateRepo) SetJob(ctx domain.Context, id int64, jobID *int64, jobType string) error {
	tracer := otel.Tracer("repo.candidates")
	ctx, span := tracer.Start(ctx, "candidates.SetJob")
	defer span.End()
	q := `UPDATE candidates SET job_id=$2, job_type=$3, updated_at=$4 WHERE id=$1`
	tag, err := r.Pool.Exec(ctx, q, id, jobID, jobType, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("op=candidate.set_job: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("op=candidate.set_job: %w", domain.ErrNotFound)
	}
	return nil
}

func collectCandidates(rows pgx.Rows) ([]domain.Candidate, error) {
	var out []domain.Candidate
	for rows.Next() {
		c, err := scanCandidate(rows)
		if err != nil {
			return nil, fmt.Errorf("op=candidate.scan: %w", err)
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("op=candidate.rows: %w", err)
	}
	return out, nil
}

// Delete removes a candidate row.
func (r *CandidateRepo) Delete(ctx domain.Context, id int64) error {
	tracer := otel.Tracer("repo.candidates")
	ctx, span := tracer.Start(ctx, "candidates.Delete")
	defer span.End()
	tag, err := r.Pool.Exec(ctx, `DELETE FROM candidates WHERE id=$1`, id)
	if err != nil {
		return fmt.Errorf("op=candidate.delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("op=candidate.delete: %w", domain.ErrNotFound)
	}
	return nil
}

// SetCVObjectKey records the object-store key of the uploaded CV.
func (r *CandidateRepo) SetCVObjectKey(ctx domain.Context, id int64, key string) error {
	tracer := otel.Tracer("repo.candidates")
	ctx, span := tracer.Start(ctx, "candidates.SetCVObjectKey")
	defer span.End()
	tag, err := r.Pool.Exec(ctx, `UPDATE candidates SET cv_object_key=$2, updated_at=$3 WHERE id=$1`, id, key, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("op=candidate.set_cv_key: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("op=candidate.set_cv_key: %w", domain.ErrNotFound)
	}
	return nil
}

// SaveExtraction writes the five extracted fields in one statement so a
// partial failure never leaves a half-updated profile.
func (r *CandidateRepo) SaveExtraction(ctx domain.Context, id int64, f domain.ExtractedFields) error {
	tracer := otel.Tracer("repo.candidates")
	ctx, span := tracer.Start(ctx, "candidates.SaveExtraction")
	defer span.End()
	q := `UPDATE candidates SET extract_objective=$2, extract_experiences=$3, extract_skills=$4, extract_education=$5, extract_certificate=$6, updated_at=$7 WHERE id=$1`
	tag, err := r.Pool.Exec(ctx, q, id, f.Objective, f.Experiences, f.Skills, f.Education, f.Certificate, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("op=candidate.save_extraction: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("op=candidate.save_extraction: %w", domain.ErrNotFound)
	}
	return nil
}

// SaveEvaluation stores the score and its reasoning.
func (r *CandidateRepo) SaveEvaluation(ctx domain.Context, id int64, score float64, reason string) error {
	tracer := otel.Tracer("repo.candidates")
	ctx, span := tracer.Start(ctx, "candidates.SaveEvaluation")
	defer span.End()
	q := `UPDATE candidates SET score=$2, summary_reason=$3, updated_at=$4 WHERE id=$1`
	tag, err := r.Pool.Exec(ctx, q, id, score, reason, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("op=candidate.save_evaluation: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("op=candidate.save_evaluation: %w", domain.ErrNotFound)
	}
	return nil
}
