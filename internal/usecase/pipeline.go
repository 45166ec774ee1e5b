package usecase

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/fairyhunter13/agent-recruitment/internal/domain"
)

// PipelineGuard takes and frees the duplicate-run guards.
type PipelineGuard interface {
	AcquireExtract(ctx context.Context, candidateID int64) error
	ReleaseExtract(ctx context.Context, candidateID int64) error
	AcquireEvaluate(ctx context.Context, jobID int64) error
	ReleaseEvaluate(ctx context.Context, jobID int64) error
}

// PipelineService accepts extraction and evaluation requests, records a
// trackable task and hands the work to the queue.
type PipelineService struct {
	Candidates domain.CandidateRepository
	Jobs       domain.JobRepository
	Tasks      domain.TaskRepository
	Queue      domain.Queue
	Guard      PipelineGuard
}

// NewPipelineService constructs a PipelineService.
func NewPipelineService(candidates domain.CandidateRepository, jobs domain.JobRepository, tasks domain.TaskRepository, queue domain.Queue, guard PipelineGuard) PipelineService {
	return PipelineService{Candidates: candidates, Jobs: jobs, Tasks: tasks, Queue: queue, Guard: guard}
}

// RequestExtract queues the CV extraction for one candidate and returns the
// task id to poll. A second request while one is in flight conflicts.
func (s PipelineService) RequestExtract(ctx domain.Context, candidateID int64) (string, error) {
	cand, err := s.Candidates.Get(ctx, candidateID)
	if err != nil {
		return "", err
	}
	if cand.CVObjectKey == "" {
		return "", fmt.Errorf("op=pipeline.request_extract: candidate %d has no stored CV: %w", candidateID, domain.ErrInvalidArgument)
	}

	if err := s.Guard.AcquireExtract(ctx, candidateID); err != nil {
		return "", err
	}

	taskID := uuid.New().String()
	task := domain.PipelineTask{
		ID:           taskID,
		Kind:         domain.TaskExtract,
		CandidateIDs: []int64{candidateID},
	}
	if err := s.Tasks.Create(ctx, task); err != nil {
		s.releaseExtract(ctx, candidateID)
		return "", err
	}
	if err := s.Queue.EnqueueExtract(ctx, domain.ExtractTaskPayload{TaskID: taskID, CandidateID: candidateID}); err != nil {
		s.releaseExtract(ctx, candidateID)
		if markErr := s.Tasks.MarkFailed(ctx, taskID, "enqueue failed"); markErr != nil {
			slog.Error("failed to mark task failed", slog.String("task_id", taskID), slog.Any("error", markErr))
		}
		return "", err
	}
	return taskID, nil
}

// RequestEvaluate queues the batch evaluation of candidates against a job
// and returns the task id to poll.
func (s PipelineService) RequestEvaluate(ctx domain.Context, candidateIDs []int64, jobID int64) (string, error) {
	if len(candidateIDs) == 0 {
		return "", fmt.Errorf("op=pipeline.request_evaluate: empty candidate list: %w", domain.ErrInvalidArgument)
	}
	if _, err := s.Jobs.Get(ctx, jobID); err != nil {
		return "", err
	}

	if err := s.Guard.AcquireEvaluate(ctx, jobID); err != nil {
		return "", err
	}

	taskID := uuid.New().String()
	task := domain.PipelineTask{
		ID:           taskID,
		Kind:         domain.TaskEvaluate,
		CandidateIDs: candidateIDs,
		JobID:        &jobID,
	}
	if err := s.Tasks.Create(ctx, task); err != nil {
		s.releaseEvaluate(ctx, jobID)
		return "", err
	}
	if err := s.Queue.EnqueueEvaluate(ctx, domain.EvaluateTaskPayload{TaskID: taskID, CandidateIDs: candidateIDs, JobID: jobID}); err != nil {
		s.releaseEvaluate(ctx, jobID)
		if markErr := s.Tasks.MarkFailed(ctx, taskID, "enqueue failed"); markErr != nil {
			slog.Error("failed to mark task failed", slog.String("task_id", taskID), slog.Any("error", markErr))
		}
		return "", err
	}
	return taskID, nil
}

// TaskStatus loads one task for polling.
func (s PipelineService) TaskStatus(ctx domain.Context, id string) (domain.PipelineTask, error) {
	return s.Tasks.Get(ctx, id)
}

func (s PipelineService) releaseExtract(ctx domain.Context, candidateID int64) {
	if err := s.Guard.ReleaseExtract(ctx, candidateID); err != nil {
		slog.Warn("failed to release extract guard", slog.Int64("candidate_id", candidateID), slog.Any("error", err))
	}
}

func (s PipelineService) releaseEvaluate(ctx domain.Context, jobID int64) {
	if err := s.Guard.ReleaseEvaluate(ctx, jobID); err != nil {
		slog.Warn("failed to release evaluate guard", slog.Int64("job_id", jobID), slog.Any("error", err))
	}
}
