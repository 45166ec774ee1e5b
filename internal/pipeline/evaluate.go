package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/fairyhunter13/agent-recruitment/internal/adapter/observability"
	"github.com/fairyhunter13/agent-recruitment/internal/domain"
)

// Outcome is the per-candidate result of a batch evaluation.
type Outcome struct {
	CandidateID int64
	Score       float64
	Err         error
}

// HandleEvaluate runs the evaluation stage for a batch of candidates and
// records the terminal task state. Every candidate in the batch is processed;
// one failure never short-circuits the rest.
func (r *Runner) HandleEvaluate(ctx context.Context, payload domain.EvaluateTaskPayload) error {
	observability.TasksProcessing.WithLabelValues(string(domain.TaskEvaluate)).Inc()
	defer observability.TasksProcessing.WithLabelValues(string(domain.TaskEvaluate)).Dec()
	defer func() {
		if err := r.Guard.ReleaseEvaluate(ctx, payload.JobID); err != nil {
			slog.Warn("failed to release evaluate guard",
				slog.Int64("job_id", payload.JobID),
				slog.Any("error", err))
		}
	}()

	if err := r.Tasks.MarkRunning(ctx, payload.TaskID); err != nil {
		return err
	}

	outcomes, err := r.EvaluateBatch(ctx, payload.CandidateIDs, payload.JobID)
	if err != nil {
		observability.TasksFailedTotal.WithLabelValues(string(domain.TaskEvaluate)).Inc()
		if markErr := r.Tasks.MarkFailed(ctx, payload.TaskID, err.Error()); markErr != nil {
			slog.Error("failed to mark task failed", slog.String("task_id", payload.TaskID), slog.Any("error", markErr))
		}
		return err
	}

	var failures []string
	for _, o := range outcomes {
		if o.Err != nil {
			failures = append(failures, fmt.Sprintf("candidate %d: %v", o.CandidateID, o.Err))
		}
	}
	if len(failures) == len(outcomes) && len(outcomes) > 0 {
		observability.TasksFailedTotal.WithLabelValues(string(domain.TaskEvaluate)).Inc()
		msg := strings.Join(failures, "; ")
		if markErr := r.Tasks.MarkFailed(ctx, payload.TaskID, msg); markErr != nil {
			slog.Error("failed to mark task failed", slog.String("task_id", payload.TaskID), slog.Any("error", markErr))
		}
		return fmt.Errorf("op=pipeline.evaluate: all candidates failed: %s", msg)
	}
	if len(failures) > 0 {
		slog.Warn("batch evaluation partially failed",
			slog.String("task_id", payload.TaskID),
			slog.Int("failed", len(failures)),
			slog.Int("total", len(outcomes)))
	}

	observability.TasksCompletedTotal.WithLabelValues(string(domain.TaskEvaluate)).Inc()
	return r.Tasks.MarkSucceeded(ctx, payload.TaskID)
}

// EvaluateBatch scores every candidate against the job and returns one
// outcome per candidate id, in input order.
func (r *Runner) EvaluateBatch(ctx context.Context, candidateIDs []int64, jobID int64) ([]Outcome, error) {
	job, err := r.Jobs.Get(ctx, jobID)
	if err != nil {
		return nil, fmt.Errorf("op=pipeline.evaluate: %w", err)
	}

	outcomes := make([]Outcome, 0, len(candidateIDs))
	for _, candidateID := range candidateIDs {
		score, err := r.evaluateOne(ctx, job, candidateID)
		outcomes = append(outcomes, Outcome{CandidateID: candidateID, Score: score, Err: err})
		if err != nil {
			slog.Error("candidate evaluation failed",
				slog.Int64("candidate_id", candidateID),
				slog.Int64("job_id", jobID),
				slog.Any("error", err))
			continue
		}
		observability.EvaluationScoreHistogram.Observe(score)
		slog.Info("candidate evaluated",
			slog.Int64("candidate_id", candidateID),
			slog.Int64("job_id", jobID),
			slog.Float64("score", score))
	}
	return outcomes, nil
}

func (r *Runner) evaluateOne(ctx context.Context, job domain.Job, candidateID int64) (float64, error) {
	cand, err := r.Candidates.Get(ctx, candidateID)
	if err != nil {
		return 0, err
	}

	raw, err := r.AI.Complete(ctx, SystemContentEvaluation, EvaluationPrompt(job, cand.Fields))
	if err != nil {
		return 0, fmt.Errorf("evaluation: %w", err)
	}
	eval, err := ParseEvaluation(raw)
	if err != nil {
		return 0, err
	}

	if err := r.Candidates.SaveEvaluation(ctx, candidateID, eval.Score, eval.SummaryReason); err != nil {
		return 0, err
	}
	return eval.Score, nil
}
