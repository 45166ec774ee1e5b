package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/fairyhunter13/agent-recruitment/internal/adapter/observability"
	"github.com/fairyhunter13/agent-recruitment/internal/domain"
)

// GuardReleaser frees the duplicate-run guards taken at enqueue time.
type GuardReleaser interface {
	ReleaseExtract(ctx context.Context, candidateID int64) error
	ReleaseEvaluate(ctx context.Context, jobID int64) error
}

// Runner executes pipeline tasks. It implements the queue consumer's Handler.
type Runner struct {
	Candidates domain.CandidateRepository
	Jobs       domain.JobRepository
	Tasks      domain.TaskRepository
	Store      domain.ObjectStore
	Extractor  domain.TextExtractor
	AI         domain.CompletionClient
	Guard      GuardReleaser
}

// HandleExtract runs the extraction stage for one candidate and records the
// terminal task state.
func (r *Runner) HandleExtract(ctx context.Context, payload domain.ExtractTaskPayload) error {
	observability.TasksProcessing.WithLabelValues(string(domain.TaskExtract)).Inc()
	defer observability.TasksProcessing.WithLabelValues(string(domain.TaskExtract)).Dec()
	defer func() {
		if err := r.Guard.ReleaseExtract(ctx, payload.CandidateID); err != nil {
			slog.Warn("failed to release extract guard",
				slog.Int64("candidate_id", payload.CandidateID),
				slog.Any("error", err))
		}
	}()

	if err := r.Tasks.MarkRunning(ctx, payload.TaskID); err != nil {
		return err
	}

	if err := r.runExtract(ctx, payload.CandidateID); err != nil {
		observability.TasksFailedTotal.WithLabelValues(string(domain.TaskExtract)).Inc()
		if markErr := r.Tasks.MarkFailed(ctx, payload.TaskID, err.Error()); markErr != nil {
			slog.Error("failed to mark task failed", slog.String("task_id", payload.TaskID), slog.Any("error", markErr))
		}
		return err
	}

	observability.TasksCompletedTotal.WithLabelValues(string(domain.TaskExtract)).Inc()
	return r.Tasks.MarkSucceeded(ctx, payload.TaskID)
}

// runExtract downloads the CV, extracts its text, optionally corrects OCR
// noise with one model call, then extracts the five fields with a second.
func (r *Runner) runExtract(ctx context.Context, candidateID int64) error {
	cand, err := r.Candidates.Get(ctx, candidateID)
	if err != nil {
		return err
	}
	if cand.CVObjectKey == "" {
		return fmt.Errorf("op=pipeline.extract: candidate %d has no stored CV: %w", candidateID, domain.ErrInvalidArgument)
	}

	tmp, err := os.CreateTemp("", "cv-*.pdf")
	if err != nil {
		return fmt.Errorf("op=pipeline.extract: temp file: %w", err)
	}
	tmpPath := tmp.Name()
	_ = tmp.Close()
	defer func() {
		if err := os.Remove(tmpPath); err != nil && !os.IsNotExist(err) {
			slog.Warn("failed to remove temp CV", slog.String("path", tmpPath), slog.Any("error", err))
		}
	}()

	if err := r.Store.FetchToFile(ctx, cand.CVObjectKey, tmpPath); err != nil {
		return err
	}

	text, usedOCR, err := r.Extractor.Extract(ctx, tmpPath)
	if err != nil {
		return err
	}
	slog.Info("cv text extracted",
		slog.Int64("candidate_id", candidateID),
		slog.Bool("used_ocr", usedOCR),
		slog.Int("chars", len(text)))

	// OCR output gets one correction pass before extraction; clean text
	// layers go straight to extraction.
	if usedOCR {
		corrected, err := r.AI.Complete(ctx, SystemContentCorrection, CorrectionPrompt(text))
		if err != nil {
			return fmt.Errorf("op=pipeline.extract: correction: %w", err)
		}
		text = corrected
	}

	raw, err := r.AI.Complete(ctx, SystemContentExtraction, ExtractionPrompt(text))
	if err != nil {
		return fmt.Errorf("op=pipeline.extract: extraction: %w", err)
	}
	fields, err := ParseExtraction(raw)
	if err != nil {
		return err
	}

	return r.Candidates.SaveExtraction(ctx, candidateID, fields)
}
