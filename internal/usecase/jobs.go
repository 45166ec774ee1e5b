// Package usecase contains the application services that sit between the
// HTTP layer and the ports.
package usecase

import (
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/fairyhunter13/agent-recruitment/internal/domain"
)

var validate = validator.New()

// JobInput carries the mutable fields of a job posting.
type JobInput struct {
	Title            string `json:"title" validate:"required"`
	JobType          string `json:"job_type" validate:"required"`
	Qualifications   string `json:"qualifications" validate:"required"`
	Responsibilities string `json:"responsibilities" validate:"required"`
	Benefits         string `json:"benefits" validate:"required"`
	WorkSchedule     string `json:"work_schedule" validate:"required"`
	Location         string `json:"location" validate:"required"`
	IsOpen           bool   `json:"is_open"`
}

// JobService manages job postings.
type JobService struct {
	Jobs        domain.JobRepository
	Permissions domain.PermissionRepository
}

// NewJobService constructs a JobService.
func NewJobService(jobs domain.JobRepository, perms domain.PermissionRepository) JobService {
	return JobService{Jobs: jobs, Permissions: perms}
}

// Create validates and stores a new job posting. An HR creator is granted
// permission on the job immediately so they can work its candidates; admins
// see every job anyway.
func (s JobService) Create(ctx domain.Context, actor domain.User, in JobInput) (domain.Job, error) {
	if err := validate.Struct(in); err != nil {
		return domain.Job{}, fmt.Errorf("op=job.create: %v: %w", err, domain.ErrInvalidArgument)
	}
	id, err := s.Jobs.Create(ctx, domain.Job{
		Title:            in.Title,
		JobType:          in.JobType,
		Qualifications:   in.Qualifications,
		Responsibilities: in.Responsibilities,
		Benefits:         in.Benefits,
		WorkSchedule:     in.WorkSchedule,
		Location:         in.Location,
		IsOpen:           in.IsOpen,
	})
	if err != nil {
		return domain.Job{}, err
	}
	if actor.ID != 0 && actor.Role != domain.RoleHRAdmin {
		if _, err := s.Permissions.Grant(ctx, actor.ID, id); err != nil {
			return domain.Job{}, fmt.Errorf("op=job.create: grant creator: %w", err)
		}
	}
	return s.Jobs.Get(ctx, id)
}

// Get loads one job.
func (s JobService) Get(ctx domain.Context, id int64) (domain.Job, error) {
	return s.Jobs.Get(ctx, id)
}

// List returns jobs matching the filter.
func (s JobService) List(ctx domain.Context, f domain.JobFilter) ([]domain.Job, error) {
	return s.Jobs.List(ctx, f)
}

// ListUnassigned returns jobs no user holds a grant for.
func (s JobService) ListUnassigned(ctx domain.Context) ([]domain.Job, error) {
	return s.Jobs.ListUnassigned(ctx)
}

// Update validates and rewrites a job posting.
func (s JobService) Update(ctx domain.Context, id int64, in JobInput) (domain.Job, error) {
	if err := validate.Struct(in); err != nil {
		return domain.Job{}, fmt.Errorf("op=job.update: %v: %w", err, domain.ErrInvalidArgument)
	}
	if err := s.Jobs.Update(ctx, domain.Job{
		ID:               id,
		Title:            in.Title,
		JobType:          in.JobType,
		Qualifications:   in.Qualifications,
		Responsibilities: in.Responsibilities,
		Benefits:         in.Benefits,
		WorkSchedule:     in.WorkSchedule,
		Location:         in.Location,
		IsOpen:           in.IsOpen,
	}); err != nil {
		return domain.Job{}, err
	}
	return s.Jobs.Get(ctx, id)
}

// Delete removes a job posting.
func (s JobService) Delete(ctx domain.Context, id int64) error {
	return s.Jobs.Delete(ctx, id)
}
