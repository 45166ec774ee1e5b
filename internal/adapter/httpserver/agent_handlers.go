package httpserver

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/fairyhunter13/agent-recruitment/internal/domain"
)

type acceptedJSON struct {
	TaskID string `json:"task_id"`
	Status string `json:"status"`
}

type taskJSON struct {
	ID           string  `json:"task_id"`
	Kind         string  `json:"kind"`
	Status       string  `json:"status"`
	CandidateIDs []int64 `json:"candidate_ids"`
	JobID        *int64  `json:"job_id,omitempty"`
	Error        string  `json:"error,omitempty"`
}

func toTaskJSON(t domain.PipelineTask) taskJSON {
	return taskJSON{
		ID: t.ID, Kind: string(t.Kind), Status: string(t.Status),
		CandidateIDs: t.CandidateIDs, JobID: t.JobID, Error: t.Error,
	}
}

// ExtractCVHandler queues CV text extraction for one candidate.
func (s *Server) ExtractCVHandler() http.HandlerFunc {
	type extractReq struct {
		CandidateID int64 `json:"candidate_id"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		var req extractReq
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, r, err, nil)
			return
		}
		taskID, err := s.Pipe.RequestExtract(r.Context(), req.CandidateID)
		if err != nil {
			writeError(w, r, err, nil)
			return
		}
		writeJSON(w, http.StatusAccepted, acceptedJSON{TaskID: taskID, Status: string(domain.TaskPending)})
	}
}

// EvaluateHandler queues scoring of candidates against one job.
func (s *Server) EvaluateHandler() http.HandlerFunc {
	type evaluateReq struct {
		CandidateIDs []int64 `json:"candidate_ids"`
		JobID        int64   `json:"job_id"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		var req evaluateReq
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, r, err, nil)
			return
		}
		taskID, err := s.Pipe.RequestEvaluate(r.Context(), req.CandidateIDs, req.JobID)
		if err != nil {
			writeError(w, r, err, nil)
			return
		}
		writeJSON(w, http.StatusAccepted, acceptedJSON{TaskID: taskID, Status: string(domain.TaskPending)})
	}
}

// TaskStatusHandler reports a queued task's current state.
func (s *Server) TaskStatusHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		if id == "" {
			writeError(w, r, domain.ErrInvalidArgument, nil)
			return
		}
		task, err := s.Pipe.TaskStatus(r.Context(), id)
		if err != nil {
			writeError(w, r, err, nil)
			return
		}
		writeJSON(w, http.StatusOK, toTaskJSON(task))
	}
}
