package httpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/fairyhunter13/agent-recruitment/internal/config"
	"github.com/fairyhunter13/agent-recruitment/internal/domain"
	"github.com/fairyhunter13/agent-recruitment/internal/usecase"
)

// Server bundles the services behind the HTTP handlers.
type Server struct {
	cfg    config.Config
	Jobs   usecase.JobService
	Cands  usecase.CandidateService
	Users  usecase.UserService
	Pipe   usecase.PipelineService
	Tokens *TokenManager

	// ReadyChecks are probed by /readyz.
	ReadyChecks []func(ctx context.Context) error
}

// NewServer constructs a Server.
func NewServer(cfg config.Config, jobs usecase.JobService, cands usecase.CandidateService, users usecase.UserService, pipe usecase.PipelineService) *Server {
	return &Server{
		cfg:    cfg,
		Jobs:   jobs,
		Cands:  cands,
		Users:  users,
		Pipe:   pipe,
		Tokens: NewTokenManager(cfg),
	}
}

func urlParamInt64(r *http.Request, key string) (int64, error) {
	v, err := strconv.ParseInt(chi.URLParam(r, key), 10, 64)
	if err != nil || v <= 0 {
		return 0, fmt.Errorf("bad %s: %w", key, domain.ErrInvalidArgument)
	}
	return v, nil
}

func decodeJSON(r *http.Request, v interface{}) error {
	defer func() { _, _ = io.Copy(io.Discard, r.Body) }()
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return fmt.Errorf("bad json body: %w", domain.ErrInvalidArgument)
	}
	return nil
}

// DTOs

type jobJSON struct {
	ID               int64     `json:"id"`
	Title            string    `json:"title"`
	JobType          string    `json:"job_type"`
	Qualifications   string    `json:"qualifications"`
	Responsibilities string    `json:"responsibilities"`
	Benefits         string    `json:"benefits"`
	WorkSchedule     string    `json:"work_schedule"`
	Location         string    `json:"location"`
	IsOpen           bool      `json:"is_open"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

func toJobJSON(j domain.Job) jobJSON {
	return jobJSON{
		ID: j.ID, Title: j.Title, JobType: j.JobType,
		Qualifications: j.Qualifications, Responsibilities: j.Responsibilities,
		Benefits: j.Benefits, WorkSchedule: j.WorkSchedule, Location: j.Location,
		IsOpen: j.IsOpen, CreatedAt: j.CreatedAt, UpdatedAt: j.UpdatedAt,
	}
}

type candidateJSON struct {
	ID            int64     `json:"id"`
	Name          string    `json:"name"`
	Email         string    `json:"email"`
	PhoneNumber   string    `json:"phone_number"`
	YearOfBirth   int       `json:"year_of_birth"`
	JobID         *int64    `json:"job_id"`
	JobType       string    `json:"job_type"`
	CVObjectKey   string    `json:"cv_object_key,omitempty"`
	Objective     string    `json:"extract_objective,omitempty"`
	Experiences   string    `json:"extract_experiences,omitempty"`
	Skills        string    `json:"extract_skills,omitempty"`
	Education     string    `json:"extract_education,omitempty"`
	Certificate   string    `json:"extract_certificate,omitempty"`
	Score         *float64  `json:"score,omitempty"`
	SummaryReason string    `json:"summary_reason,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

func toCandidateJSON(c domain.Candidate) candidateJSON {
	return candidateJSON{
		ID: c.ID, Name: c.Name, Email: c.Email, PhoneNumber: c.PhoneNumber,
		YearOfBirth: c.YearOfBirth, JobID: c.JobID, JobType: c.JobType,
		CVObjectKey: c.CVObjectKey,
		Objective:   c.Fields.Objective, Experiences: c.Fields.Experiences,
		Skills: c.Fields.Skills, Education: c.Fields.Education, Certificate: c.Fields.Certificate,
		Score: c.Score, SummaryReason: c.SummaryReason,
		CreatedAt: c.CreatedAt, UpdatedAt: c.UpdatedAt,
	}
}

func toCandidateListJSON(cs []domain.Candidate) []candidateJSON {
	out := make([]candidateJSON, 0, len(cs))
	for _, c := range cs {
		out = append(out, toCandidateJSON(c))
	}
	return out
}

type userJSON struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Username  string    `json:"username"`
	Role      string    `json:"role"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
}

func toUserJSON(u domain.User) userJSON {
	return userJSON{ID: u.ID, Name: u.Name, Username: u.Username, Role: u.Role, IsActive: u.IsActive, CreatedAt: u.CreatedAt}
}

// Auth

// LoginHandler exchanges credentials for a bearer token.
func (s *Server) LoginHandler() http.HandlerFunc {
	type loginReq struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	type loginResp struct {
		Token string `json:"token"`
		Name  string `json:"name"`
		Role  string `json:"role"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		var req loginReq
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, r, err, nil)
			return
		}
		user, err := s.Users.Users.GetByUsername(r.Context(), req.Username)
		if err != nil || !VerifyPassword(req.Password, user.PasswordHash) {
			// Same response for unknown user and wrong password.
			writeError(w, r, fmt.Errorf("bad credentials: %w", domain.ErrUnauthorized), nil)
			return
		}
		if !user.IsActive {
			writeError(w, r, fmt.Errorf("account disabled: %w", domain.ErrForbidden), nil)
			return
		}
		token, err := s.Tokens.CreateToken(user.Username)
		if err != nil {
			writeError(w, r, err, nil)
			return
		}
		LoggerFrom(r).Info("user logged in", slog.String("username", user.Username), slog.String("role", user.Role))
		writeJSON(w, http.StatusOK, loginResp{Token: token, Name: user.Name, Role: user.Role})
	}
}

// RegisterHandler opens an HR account that stays inactive until an admin
// enables it.
func (s *Server) RegisterHandler() http.HandlerFunc {
	type registerReq struct {
		Name     string `json:"name"`
		Username string `json:"username"`
		Password string `json:"password"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		var req registerReq
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, r, err, nil)
			return
		}
		if len(req.Password) < 8 {
			writeError(w, r, fmt.Errorf("password too short: %w", domain.ErrInvalidArgument), nil)
			return
		}
		hash, err := HashPassword(req.Password, DefaultArgon2Params)
		if err != nil {
			writeError(w, r, err, nil)
			return
		}
		user, err := s.Users.Register(r.Context(), usecase.RegisterInput{
			Name: req.Name, Username: req.Username, PasswordHash: hash,
		})
		if err != nil {
			writeError(w, r, err, nil)
			return
		}
		LoggerFrom(r).Info("user registered", slog.String("username", user.Username))
		writeJSON(w, http.StatusCreated, toUserJSON(user))
	}
}

// ChangePasswordHandler lets the caller rotate their own credential.
func (s *Server) ChangePasswordHandler() http.HandlerFunc {
	type changeReq struct {
		OldPassword string `json:"old_password"`
		NewPassword string `json:"new_password"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		user, ok := UserFrom(r)
		if !ok {
			writeError(w, r, domain.ErrUnauthorized, nil)
			return
		}
		var req changeReq
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, r, err, nil)
			return
		}
		if !VerifyPassword(req.OldPassword, user.PasswordHash) {
			writeError(w, r, fmt.Errorf("bad credentials: %w", domain.ErrUnauthorized), nil)
			return
		}
		if len(req.NewPassword) < 8 {
			writeError(w, r, fmt.Errorf("password too short: %w", domain.ErrInvalidArgument), nil)
			return
		}
		hash, err := HashPassword(req.NewPassword, DefaultArgon2Params)
		if err != nil {
			writeError(w, r, err, nil)
			return
		}
		if err := s.Users.ChangePassword(r.Context(), user.ID, hash); err != nil {
			writeError(w, r, err, nil)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// Users

// CreateUserHandler registers a new HR or HR_admin account.
func (s *Server) CreateUserHandler() http.HandlerFunc {
	type createReq struct {
		Name     string `json:"name"`
		Username string `json:"username"`
		Password string `json:"password"`
		Role     string `json:"role"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		var req createReq
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, r, err, nil)
			return
		}
		if len(req.Password) < 8 {
			writeError(w, r, fmt.Errorf("password too short: %w", domain.ErrInvalidArgument), nil)
			return
		}
		hash, err := HashPassword(req.Password, DefaultArgon2Params)
		if err != nil {
			writeError(w, r, err, nil)
			return
		}
		user, err := s.Users.Create(r.Context(), usecase.CreateUserInput{
			Name: req.Name, Username: req.Username, PasswordHash: hash, Role: req.Role,
		})
		if err != nil {
			writeError(w, r, err, nil)
			return
		}
		writeJSON(w, http.StatusCreated, toUserJSON(user))
	}
}

// ListUsersHandler returns all accounts.
func (s *Server) ListUsersHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		users, err := s.Users.List(r.Context())
		if err != nil {
			writeError(w, r, err, nil)
			return
		}
		out := make([]userJSON, 0, len(users))
		for _, u := range users {
			out = append(out, toUserJSON(u))
		}
		writeJSON(w, http.StatusOK, out)
	}
}

// SetUserActiveHandler enables or disables an account.
func (s *Server) SetUserActiveHandler() http.HandlerFunc {
	type activeReq struct {
		IsActive bool `json:"is_active"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := urlParamInt64(r, "id")
		if err != nil {
			writeError(w, r, err, nil)
			return
		}
		var req activeReq
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, r, err, nil)
			return
		}
		if err := s.Users.SetActive(r.Context(), id, req.IsActive); err != nil {
			writeError(w, r, err, nil)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// DeleteUserHandler removes an account and its grants.
func (s *Server) DeleteUserHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := urlParamInt64(r, "id")
		if err != nil {
			writeError(w, r, err, nil)
			return
		}
		if err := s.Users.Delete(r.Context(), id); err != nil {
			writeError(w, r, err, nil)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// GrantPermissionHandler gives a user access to one job's candidates.
func (s *Server) GrantPermissionHandler() http.HandlerFunc {
	type grantReq struct {
		JobID int64 `json:"job_id"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := urlParamInt64(r, "id")
		if err != nil {
			writeError(w, r, err, nil)
			return
		}
		var req grantReq
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, r, err, nil)
			return
		}
		perm, err := s.Users.Grant(r.Context(), userID, req.JobID)
		if err != nil {
			writeError(w, r, err, nil)
			return
		}
		writeJSON(w, http.StatusCreated, map[string]int64{"id": perm.ID, "user_id": perm.UserID, "job_id": perm.JobID})
	}
}

// RevokePermissionHandler removes a grant.
func (s *Server) RevokePermissionHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := urlParamInt64(r, "id")
		if err != nil {
			writeError(w, r, err, nil)
			return
		}
		jobID, err := urlParamInt64(r, "jobID")
		if err != nil {
			writeError(w, r, err, nil)
			return
		}
		if err := s.Users.Revoke(r.Context(), userID, jobID); err != nil {
			writeError(w, r, err, nil)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// ListPermissionsHandler lists one user's grants.
func (s *Server) ListPermissionsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := urlParamInt64(r, "id")
		if err != nil {
			writeError(w, r, err, nil)
			return
		}
		perms, err := s.Users.PermissionsOf(r.Context(), userID)
		if err != nil {
			writeError(w, r, err, nil)
			return
		}
		type permJSON struct {
			ID    int64 `json:"id"`
			JobID int64 `json:"job_id"`
		}
		out := make([]permJSON, 0, len(perms))
		for _, p := range perms {
			out = append(out, permJSON{ID: p.ID, JobID: p.JobID})
		}
		writeJSON(w, http.StatusOK, out)
	}
}

// Jobs

// CreateJobHandler stores a new job posting. An HR creator is granted the
// job's permission as part of the create.
func (s *Server) CreateJobHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, ok := UserFrom(r)
		if !ok {
			writeError(w, r, domain.ErrUnauthorized, nil)
			return
		}
		var in usecase.JobInput
		if err := decodeJSON(r, &in); err != nil {
			writeError(w, r, err, nil)
			return
		}
		job, err := s.Jobs.Create(r.Context(), user, in)
		if err != nil {
			writeError(w, r, err, nil)
			return
		}
		writeJSON(w, http.StatusCreated, toJobJSON(job))
	}
}

// ListJobsHandler returns jobs, optionally narrowed by title/job_type/
// location substring filters plus limit/offset.
func (s *Server) ListJobsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		limit, _ := strconv.Atoi(q.Get("limit"))
		offset, _ := strconv.Atoi(q.Get("offset"))
		f := domain.JobFilter{
			Title:    q.Get("title"),
			JobType:  q.Get("job_type"),
			Location: q.Get("location"),
			Limit:    limit,
			Offset:   offset,
		}
		jobs, err := s.Jobs.List(r.Context(), f)
		if err != nil {
			writeError(w, r, err, nil)
			return
		}
		writeJSON(w, http.StatusOK, toJobListJSON(jobs))
	}
}

// ListUnassignedJobsHandler returns jobs no user has a grant for yet.
func (s *Server) ListUnassignedJobsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		jobs, err := s.Jobs.ListUnassigned(r.Context())
		if err != nil {
			writeError(w, r, err, nil)
			return
		}
		writeJSON(w, http.StatusOK, toJobListJSON(jobs))
	}
}

func toJobListJSON(jobs []domain.Job) []jobJSON {
	out := make([]jobJSON, 0, len(jobs))
	for _, j := range jobs {
		out = append(out, toJobJSON(j))
	}
	return out
}

// GetJobHandler returns one job.
func (s *Server) GetJobHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := urlParamInt64(r, "id")
		if err != nil {
			writeError(w, r, err, nil)
			return
		}
		job, err := s.Jobs.Get(r.Context(), id)
		if err != nil {
			writeError(w, r, err, nil)
			return
		}
		writeJSON(w, http.StatusOK, toJobJSON(job))
	}
}

// UpdateJobHandler rewrites one job.
func (s *Server) UpdateJobHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := urlParamInt64(r, "id")
		if err != nil {
			writeError(w, r, err, nil)
			return
		}
		var in usecase.JobInput
		if err := decodeJSON(r, &in); err != nil {
			writeError(w, r, err, nil)
			return
		}
		job, err := s.Jobs.Update(r.Context(), id, in)
		if err != nil {
			writeError(w, r, err, nil)
			return
		}
		writeJSON(w, http.StatusOK, toJobJSON(job))
	}
}

// DeleteJobHandler removes one job.
func (s *Server) DeleteJobHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := urlParamInt64(r, "id")
		if err != nil {
			writeError(w, r, err, nil)
			return
		}
		if err := s.Jobs.Delete(r.Context(), id); err != nil {
			writeError(w, r, err, nil)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// Candidates

// ApplyHandler accepts a multipart application form with an attached CV.
func (s *Server) ApplyHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		maxBytes := s.cfg.MaxUploadMB * 1024 * 1024
		r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
		if err := r.ParseMultipartForm(maxBytes); err != nil {
			writeError(w, r, fmt.Errorf("bad multipart form: %w", domain.ErrInvalidArgument), nil)
			return
		}

		jobID, _ := strconv.ParseInt(r.FormValue("job_id"), 10, 64)
		yearOfBirth, _ := strconv.Atoi(r.FormValue("year_of_birth"))
		in := usecase.ApplyInput{
			JobID:       jobID,
			Name:        r.FormValue("name"),
			Email:       r.FormValue("email"),
			PhoneNumber: r.FormValue("phone_number"),
			YearOfBirth: yearOfBirth,
		}

		file, _, err := r.FormFile("cv")
		if err != nil {
			writeError(w, r, fmt.Errorf("missing cv file: %w", domain.ErrInvalidArgument), nil)
			return
		}
		defer func() { _ = file.Close() }()

		tmp, err := os.CreateTemp("", "apply-*.pdf")
		if err != nil {
			writeError(w, r, err, nil)
			return
		}
		tmpPath := tmp.Name()
		defer func() { _ = os.Remove(tmpPath) }()
		if _, err := io.Copy(tmp, file); err != nil {
			_ = tmp.Close()
			writeError(w, r, err, nil)
			return
		}
		_ = tmp.Close()

		cand, err := s.Cands.Apply(r.Context(), in, tmpPath)
		if err != nil {
			writeError(w, r, err, nil)
			return
		}
		writeJSON(w, http.StatusCreated, toCandidateJSON(cand))
	}
}

// ListCandidatesHandler returns the candidates visible to the caller.
func (s *Server) ListCandidatesHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, ok := UserFrom(r)
		if !ok {
			writeError(w, r, domain.ErrUnauthorized, nil)
			return
		}
		cands, err := s.Cands.ListForUser(r.Context(), user)
		if err != nil {
			writeError(w, r, err, nil)
			return
		}
		writeJSON(w, http.StatusOK, toCandidateListJSON(cands))
	}
}

// GetCandidateHandler returns one candidate.
func (s *Server) GetCandidateHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, ok := UserFrom(r)
		if !ok {
			writeError(w, r, domain.ErrUnauthorized, nil)
			return
		}
		id, err := urlParamInt64(r, "id")
		if err != nil {
			writeError(w, r, err, nil)
			return
		}
		cand, err := s.Cands.GetForUser(r.Context(), user, id)
		if err != nil {
			writeError(w, r, err, nil)
			return
		}
		writeJSON(w, http.StatusOK, toCandidateJSON(cand))
	}
}

// DeleteCandidateHandler removes one candidate and their CV.
func (s *Server) DeleteCandidateHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, ok := UserFrom(r)
		if !ok {
			writeError(w, r, domain.ErrUnauthorized, nil)
			return
		}
		id, err := urlParamInt64(r, "id")
		if err != nil {
			writeError(w, r, err, nil)
			return
		}
		if err := s.Cands.DeleteForUser(r.Context(), user, id); err != nil {
			writeError(w, r, err, nil)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// ListUnevaluatedCandidatesHandler returns one job's not-yet-scored
// candidates.
func (s *Server) ListUnevaluatedCandidatesHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, ok := UserFrom(r)
		if !ok {
			writeError(w, r, domain.ErrUnauthorized, nil)
			return
		}
		jobID, err := strconv.ParseInt(r.URL.Query().Get("job_id"), 10, 64)
		if err != nil || jobID <= 0 {
			writeError(w, r, fmt.Errorf("bad job_id: %w", domain.ErrInvalidArgument), nil)
			return
		}
		cands, err := s.Cands.ListUnevaluatedForUser(r.Context(), user, jobID)
		if err != nil {
			writeError(w, r, err, nil)
			return
		}
		writeJSON(w, http.StatusOK, toCandidateListJSON(cands))
	}
}

// ListUnassignedCandidatesHandler returns candidates detached from any job.
func (s *Server) ListUnassignedCandidatesHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cands, err := s.Cands.ListUnassigned(r.Context())
		if err != nil {
			writeError(w, r, err, nil)
			return
		}
		writeJSON(w, http.StatusOK, toCandidateListJSON(cands))
	}
}

// UpdateCandidateHandler rewrites a candidate's identity fields.
func (s *Server) UpdateCandidateHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, ok := UserFrom(r)
		if !ok {
			writeError(w, r, domain.ErrUnauthorized, nil)
			return
		}
		id, err := urlParamInt64(r, "id")
		if err != nil {
			writeError(w, r, err, nil)
			return
		}
		var in usecase.UpdateCandidateInput
		if err := decodeJSON(r, &in); err != nil {
			writeError(w, r, err, nil)
			return
		}
		cand, err := s.Cands.UpdateForUser(r.Context(), user, id, in)
		if err != nil {
			writeError(w, r, err, nil)
			return
		}
		writeJSON(w, http.StatusOK, toCandidateJSON(cand))
	}
}

// AssignCandidateHandler moves a candidate onto a job.
func (s *Server) AssignCandidateHandler() http.HandlerFunc {
	type assignReq struct {
		JobID int64 `json:"job_id"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		user, ok := UserFrom(r)
		if !ok {
			writeError(w, r, domain.ErrUnauthorized, nil)
			return
		}
		id, err := urlParamInt64(r, "id")
		if err != nil {
			writeError(w, r, err, nil)
			return
		}
		var req assignReq
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, r, err, nil)
			return
		}
		cand, err := s.Cands.AssignForUser(r.Context(), user, id, req.JobID)
		if err != nil {
			writeError(w, r, err, nil)
			return
		}
		writeJSON(w, http.StatusOK, toCandidateJSON(cand))
	}
}

// RemoveCandidateFromJobHandler detaches a candidate from their job.
func (s *Server) RemoveCandidateFromJobHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, ok := UserFrom(r)
		if !ok {
			writeError(w, r, domain.ErrUnauthorized, nil)
			return
		}
		id, err := urlParamInt64(r, "id")
		if err != nil {
			writeError(w, r, err, nil)
			return
		}
		if err := s.Cands.RemoveFromJobForUser(r.Context(), user, id); err != nil {
			writeError(w, r, err, nil)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// DeleteCandidatesHandler removes a batch of candidates and their CVs.
func (s *Server) DeleteCandidatesHandler() http.HandlerFunc {
	type batchReq struct {
		CandidateIDs []int64 `json:"candidate_ids"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		user, ok := UserFrom(r)
		if !ok {
			writeError(w, r, domain.ErrUnauthorized, nil)
			return
		}
		var req batchReq
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, r, err, nil)
			return
		}
		if err := s.Cands.DeleteBatchForUser(r.Context(), user, req.CandidateIDs); err != nil {
			writeError(w, r, err, nil)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// ListJobCandidatesHandler returns one job's candidates.
func (s *Server) ListJobCandidatesHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, ok := UserFrom(r)
		if !ok {
			writeError(w, r, domain.ErrUnauthorized, nil)
			return
		}
		jobID, err := urlParamInt64(r, "id")
		if err != nil {
			writeError(w, r, err, nil)
			return
		}
		cands, err := s.Cands.ListByJobForUser(r.Context(), user, jobID)
		if err != nil {
			writeError(w, r, err, nil)
			return
		}
		writeJSON(w, http.StatusOK, toCandidateListJSON(cands))
	}
}

// ReadyzHandler probes the configured readiness checks.
func (s *Server) ReadyzHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
		defer cancel()
		for _, check := range s.ReadyChecks {
			if err := check(ctx); err != nil {
				writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable", "reason": err.Error()})
				return
			}
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}
