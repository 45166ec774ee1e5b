package usecase

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/gabriel-vasile/mimetype"

	"github.com/fairyhunter13/agent-recruitment/internal/domain"
)

// ApplyInput carries one application form submission.
type ApplyInput struct {
	JobID       int64  `json:"job_id" validate:"required,gt=0"`
	Name        string `json:"name" validate:"required"`
	Email       string `json:"email" validate:"required,email"`
	PhoneNumber string `json:"phone_number" validate:"required"`
	YearOfBirth int    `json:"year_of_birth" validate:"required,gte=1900,lte=2100"`
}

// CVObjectKey builds the object-store key for a candidate's CV. Whitespace
// runs in the name fold into single underscores: (42, "Jane   Doe") yields
// "42/Jane_Doe.pdf".
func CVObjectKey(candidateID int64, name string) string {
	return fmt.Sprintf("%d/%s.pdf", candidateID, strings.Join(strings.Fields(name), "_"))
}

// CandidateService manages applicants and their stored CVs.
type CandidateService struct {
	Candidates  domain.CandidateRepository
	Jobs        domain.JobRepository
	Permissions domain.PermissionRepository
	Store       domain.ObjectStore
}

// NewCandidateService constructs a CandidateService.
func NewCandidateService(candidates domain.CandidateRepository, jobs domain.JobRepository, perms domain.PermissionRepository, store domain.ObjectStore) CandidateService {
	return CandidateService{Candidates: candidates, Jobs: jobs, Permissions: perms, Store: store}
}

// Apply registers a candidate for an open job and stores their CV. The file
// at cvPath must be a PDF. Applications to missing jobs are invalid;
// applications to closed jobs conflict.
func (s CandidateService) Apply(ctx domain.Context, in ApplyInput, cvPath string) (domain.Candidate, error) {
	if err := validate.Struct(in); err != nil {
		return domain.Candidate{}, fmt.Errorf("op=candidate.apply: %v: %w", err, domain.ErrInvalidArgument)
	}

	job, err := s.Jobs.Get(ctx, in.JobID)
	if err != nil {
		return domain.Candidate{}, fmt.Errorf("op=candidate.apply: job %d: %w", in.JobID, domain.ErrInvalidArgument)
	}
	if !job.IsOpen {
		return domain.Candidate{}, fmt.Errorf("op=candidate.apply: job %d is closed: %w", in.JobID, domain.ErrConflict)
	}

	mtype, err := mimetype.DetectFile(cvPath)
	if err != nil {
		return domain.Candidate{}, fmt.Errorf("op=candidate.apply: detect mime: %w", err)
	}
	if !mtype.Is("application/pdf") {
		return domain.Candidate{}, fmt.Errorf("op=candidate.apply: cv must be a PDF, got %s: %w", mtype.String(), domain.ErrInvalidArgument)
	}

	jobID := in.JobID
	id, err := s.Candidates.Create(ctx, domain.Candidate{
		Name:        in.Name,
		Email:       in.Email,
		PhoneNumber: in.PhoneNumber,
		YearOfBirth: in.YearOfBirth,
		JobID:       &jobID,
		JobType:     job.JobType,
	})
	if err != nil {
		return domain.Candidate{}, err
	}

	key := CVObjectKey(id, in.Name)
	if err := s.Store.Put(ctx, key, cvPath, "application/pdf"); err != nil {
		return domain.Candidate{}, err
	}
	if err := s.Candidates.SetCVObjectKey(ctx, id, key); err != nil {
		return domain.Candidate{}, err
	}
	return s.Candidates.Get(ctx, id)
}

// canAccess reports whether the actor may read a candidate. Admins see all;
// HR users need a grant for the candidate's job. Candidates detached from a
// deleted job stay admin-only.
func (s CandidateService) canAccess(ctx domain.Context, actor domain.User, cand domain.Candidate) (bool, error) {
	if actor.Role == domain.RoleHRAdmin {
		return true, nil
	}
	if cand.JobID == nil {
		return false, nil
	}
	return s.Permissions.Has(ctx, actor.ID, *cand.JobID)
}

// GetForUser loads one candidate, enforcing per-job permissions.
func (s CandidateService) GetForUser(ctx domain.Context, actor domain.User, id int64) (domain.Candidate, error) {
	cand, err := s.Candidates.Get(ctx, id)
	if err != nil {
		return domain.Candidate{}, err
	}
	ok, err := s.canAccess(ctx, actor, cand)
	if err != nil {
		return domain.Candidate{}, err
	}
	if !ok {
		return domain.Candidate{}, fmt.Errorf("op=candidate.get: %w", domain.ErrForbidden)
	}
	return cand, nil
}

// ListForUser returns the candidates the actor may see.
func (s CandidateService) ListForUser(ctx domain.Context, actor domain.User) ([]domain.Candidate, error) {
	if actor.Role == domain.RoleHRAdmin {
		return s.Candidates.List(ctx)
	}
	perms, err := s.Permissions.ListByUser(ctx, actor.ID)
	if err != nil {
		return nil, err
	}
	var out []domain.Candidate
	for _, p := range perms {
		cands, err := s.Candidates.ListByJob(ctx, p.JobID)
		if err != nil {
			return nil, err
		}
		out = append(out, cands...)
	}
	return out, nil
}

// ListByJobForUser returns one job's candidates, enforcing permissions.
func (s CandidateService) ListByJobForUser(ctx domain.Context, actor domain.User, jobID int64) ([]domain.Candidate, error) {
	if actor.Role != domain.RoleHRAdmin {
		ok, err := s.Permissions.Has(ctx, actor.ID, jobID)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, fmt.Errorf("op=candidate.list_by_job: %w", domain.ErrForbidden)
		}
	}
	return s.Candidates.ListByJob(ctx, jobID)
}

// ListUnevaluatedForUser returns one job's not-yet-scored candidates,
// enforcing permissions.
func (s CandidateService) ListUnevaluatedForUser(ctx domain.Context, actor domain.User, jobID int64) ([]domain.Candidate, error) {
	if actor.Role != domain.RoleHRAdmin {
		ok, err := s.Permissions.Has(ctx, actor.ID, jobID)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, fmt.Errorf("op=candidate.list_unevaluated: %w", domain.ErrForbidden)
		}
	}
	return s.Candidates.ListUnevaluated(ctx, jobID)
}

// ListUnassigned returns candidates detached from any job. Detached
// candidates are admin-only, so there is no per-user variant.
func (s CandidateService) ListUnassigned(ctx domain.Context) ([]domain.Candidate, error) {
	return s.Candidates.ListUnassigned(ctx)
}

// UpdateCandidateInput carries the identity fields an HR user may correct.
type UpdateCandidateInput struct {
	Name        string `json:"name" validate:"required"`
	Email       string `json:"email" validate:"required,email"`
	PhoneNumber string `json:"phone_number" validate:"required"`
	YearOfBirth int    `json:"year_of_birth" validate:"required,gte=1900,lte=2100"`
}

// UpdateForUser rewrites a candidate's identity fields, enforcing permissions.
func (s CandidateService) UpdateForUser(ctx domain.Context, actor domain.User, id int64, in UpdateCandidateInput) (domain.Candidate, error) {
	if err := validate.Struct(in); err != nil {
		return domain.Candidate{}, fmt.Errorf("op=candidate.update: %v: %w", err, domain.ErrInvalidArgument)
	}
	cand, err := s.Candidates.Get(ctx, id)
	if err != nil {
		return domain.Candidate{}, err
	}
	ok, err := s.canAccess(ctx, actor, cand)
	if err != nil {
		return domain.Candidate{}, err
	}
	if !ok {
		return domain.Candidate{}, fmt.Errorf("op=candidate.update: %w", domain.ErrForbidden)
	}
	cand.Name = in.Name
	cand.Email = in.Email
	cand.PhoneNumber = in.PhoneNumber
	cand.YearOfBirth = in.YearOfBirth
	if err := s.Candidates.Update(ctx, cand); err != nil {
		return domain.Candidate{}, err
	}
	return s.Candidates.Get(ctx, id)
}

// AssignForUser moves a candidate onto a job. The actor needs access to the
// target job; the destination job must exist.
func (s CandidateService) AssignForUser(ctx domain.Context, actor domain.User, id, jobID int64) (domain.Candidate, error) {
	job, err := s.Jobs.Get(ctx, jobID)
	if err != nil {
		return domain.Candidate{}, fmt.Errorf("op=candidate.assign: job %d: %w", jobID, domain.ErrInvalidArgument)
	}
	if actor.Role != domain.RoleHRAdmin {
		ok, err := s.Permissions.Has(ctx, actor.ID, jobID)
		if err != nil {
			return domain.Candidate{}, err
		}
		if !ok {
			return domain.Candidate{}, fmt.Errorf("op=candidate.assign: %w", domain.ErrForbidden)
		}
	}
	if _, err := s.Candidates.Get(ctx, id); err != nil {
		return domain.Candidate{}, err
	}
	if err := s.Candidates.SetJob(ctx, id, &jobID, job.JobType); err != nil {
		return domain.Candidate{}, err
	}
	return s.Candidates.Get(ctx, id)
}

// RemoveFromJobForUser detaches a candidate from their job. The detached
// candidate becomes admin-only until reassigned.
func (s CandidateService) RemoveFromJobForUser(ctx domain.Context, actor domain.User, id int64) error {
	cand, err := s.Candidates.Get(ctx, id)
	if err != nil {
		return err
	}
	ok, err := s.canAccess(ctx, actor, cand)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("op=candidate.remove_from_job: %w", domain.ErrForbidden)
	}
	if cand.JobID == nil {
		return fmt.Errorf("op=candidate.remove_from_job: not assigned: %w", domain.ErrConflict)
	}
	return s.Candidates.SetJob(ctx, id, nil, "")
}

// DeleteBatchForUser removes several candidates. Every id is attempted; the
// returned error aggregates the failures.
func (s CandidateService) DeleteBatchForUser(ctx domain.Context, actor domain.User, ids []int64) error {
	if len(ids) == 0 {
		return fmt.Errorf("op=candidate.delete_batch: empty id list: %w", domain.ErrInvalidArgument)
	}
	var errs []error
	for _, id := range ids {
		if err := s.DeleteForUser(ctx, actor, id); err != nil {
			errs = append(errs, fmt.Errorf("candidate %d: %w", id, err))
		}
	}
	return errors.Join(errs...)
}

// DeleteForUser removes a candidate and their stored CV.
func (s CandidateService) DeleteForUser(ctx domain.Context, actor domain.User, id int64) error {
	cand, err := s.Candidates.Get(ctx, id)
	if err != nil {
		return err
	}
	ok, err := s.canAccess(ctx, actor, cand)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("op=candidate.delete: %w", domain.ErrForbidden)
	}
	if err := s.Candidates.Delete(ctx, id); err != nil {
		return err
	}
	if cand.CVObjectKey != "" {
		if err := s.Store.Remove(ctx, cand.CVObjectKey); err != nil {
			// The row is gone; losing the object only wastes space.
			slog.Warn("failed to remove stored CV", slog.String("key", cand.CVObjectKey), slog.Any("error", err))
		}
	}
	return nil
}
