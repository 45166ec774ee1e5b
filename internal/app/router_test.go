package app

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	httpserver "github.com/fairyhunter13/agent-recruitment/internal/adapter/httpserver"
	"github.com/fairyhunter13/agent-recruitment/internal/config"
	"github.com/fairyhunter13/agent-recruitment/internal/domain"
	"github.com/fairyhunter13/agent-recruitment/internal/usecase"
)

func TestParseOrigins(t *testing.T) {
	t.Parallel()

	assert.Equal(t, []string{"*"}, ParseOrigins(""))
	assert.Equal(t, []string{"*"}, ParseOrigins("*"))
	assert.Equal(t, []string{"*"}, ParseOrigins(" , ,"))
	assert.Equal(t, []string{"https://a.example"}, ParseOrigins("https://a.example"))
	assert.Equal(t, []string{"https://a.example", "https://b.example"},
		ParseOrigins(" https://a.example , https://b.example "))
}

// Empty repository fakes; the routing test only exercises auth boundaries.

type noJobs struct{}

func (noJobs) Create(domain.Context, domain.Job) (int64, error)            { return 0, domain.ErrInternal }
func (noJobs) Get(domain.Context, int64) (domain.Job, error)               { return domain.Job{}, domain.ErrNotFound }
func (noJobs) List(domain.Context, domain.JobFilter) ([]domain.Job, error) { return nil, nil }
func (noJobs) ListUnassigned(domain.Context) ([]domain.Job, error)         { return nil, nil }
func (noJobs) Update(domain.Context, domain.Job) error                     { return domain.ErrNotFound }
func (noJobs) Delete(domain.Context, int64) error                          { return domain.ErrNotFound }

type noCandidates struct{}

func (noCandidates) Create(domain.Context, domain.Candidate) (int64, error) {
	return 0, domain.ErrInternal
}
func (noCandidates) Get(domain.Context, int64) (domain.Candidate, error) {
	return domain.Candidate{}, domain.ErrNotFound
}
func (noCandidates) List(domain.Context) ([]domain.Candidate, error)             { return nil, nil }
func (noCandidates) ListByJob(domain.Context, int64) ([]domain.Candidate, error) { return nil, nil }
func (noCandidates) ListUnevaluated(domain.Context, int64) ([]domain.Candidate, error) {
	return nil, nil
}
func (noCandidates) ListUnassigned(domain.Context) ([]domain.Candidate, error) { return nil, nil }
func (noCandidates) Update(domain.Context, domain.Candidate) error             { return domain.ErrNotFound }
func (noCandidates) SetJob(domain.Context, int64, *int64, string) error        { return domain.ErrNotFound }
func (noCandidates) Delete(domain.Context, int64) error                        { return domain.ErrNotFound }
func (noCandidates) SetCVObjectKey(domain.Context, int64, string) error        { return domain.ErrNotFound }
func (noCandidates) SaveExtraction(domain.Context, int64, domain.ExtractedFields) error {
	return domain.ErrNotFound
}
func (noCandidates) SaveEvaluation(domain.Context, int64, float64, string) error {
	return domain.ErrNotFound
}

type noUsers struct{}

func (noUsers) Create(domain.Context, domain.User) (int64, error) { return 0, domain.ErrInternal }
func (noUsers) Get(domain.Context, int64) (domain.User, error) {
	return domain.User{}, domain.ErrNotFound
}
func (noUsers) GetByUsername(domain.Context, string) (domain.User, error) {
	return domain.User{}, domain.ErrNotFound
}
func (noUsers) List(domain.Context) ([]domain.User, error)          { return nil, nil }
func (noUsers) SetActive(domain.Context, int64, bool) error         { return domain.ErrNotFound }
func (noUsers) SetPasswordHash(domain.Context, int64, string) error { return domain.ErrNotFound }
func (noUsers) Delete(domain.Context, int64) error                  { return domain.ErrNotFound }

type noPerms struct{}

func (noPerms) Grant(domain.Context, int64, int64) (int64, error) { return 0, domain.ErrInternal }
func (noPerms) Revoke(domain.Context, int64, int64) error         { return domain.ErrNotFound }
func (noPerms) ListByUser(domain.Context, int64) ([]domain.Permission, error) {
	return nil, nil
}
func (noPerms) Has(domain.Context, int64, int64) (bool, error) { return false, nil }

type noTasks struct{}

func (noTasks) Create(domain.Context, domain.PipelineTask) error { return nil }
func (noTasks) Get(domain.Context, string) (domain.PipelineTask, error) {
	return domain.PipelineTask{}, domain.ErrNotFound
}
func (noTasks) MarkRunning(domain.Context, string) error        { return nil }
func (noTasks) MarkSucceeded(domain.Context, string) error      { return nil }
func (noTasks) MarkFailed(domain.Context, string, string) error { return nil }

type noQueue struct{}

func (noQueue) EnqueueExtract(domain.Context, domain.ExtractTaskPayload) error   { return nil }
func (noQueue) EnqueueEvaluate(domain.Context, domain.EvaluateTaskPayload) error { return nil }

type noStore struct{}

func (noStore) Put(domain.Context, string, string, string) error { return nil }
func (noStore) FetchToFile(domain.Context, string, string) error { return domain.ErrNotFound }
func (noStore) Remove(domain.Context, string) error              { return nil }

type noGuard struct{}

func (noGuard) AcquireExtract(domain.Context, int64) error  { return nil }
func (noGuard) ReleaseExtract(domain.Context, int64) error  { return nil }
func (noGuard) AcquireEvaluate(domain.Context, int64) error { return nil }
func (noGuard) ReleaseEvaluate(domain.Context, int64) error { return nil }

func TestRouterHealthAndAuthBoundaries(t *testing.T) {
	t.Parallel()

	cfg := config.Config{
		CORSAllowOrigins: "*",
		RateLimitPerMin:  100,
		AgentToken:       "agent-secret",
		TokenSecret:      "token-secret",
		MaxUploadMB:      10,
	}
	srv := httpserver.NewServer(cfg,
		usecase.NewJobService(noJobs{}, noPerms{}),
		usecase.NewCandidateService(noCandidates{}, noJobs{}, noPerms{}, noStore{}),
		usecase.NewUserService(noUsers{}, noPerms{}, noJobs{}),
		usecase.NewPipelineService(noCandidates{}, noJobs{}, noTasks{}, noQueue{}, noGuard{}),
	)
	handler := BuildRouter(cfg, srv)

	get := func(path, bearer string) int {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		if bearer != "" {
			req.Header.Set("Authorization", "Bearer "+bearer)
		}
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		return rec.Code
	}

	assert.Equal(t, http.StatusOK, get("/healthz", ""))
	assert.Equal(t, http.StatusOK, get("/metrics", ""))

	// Operator endpoints reject anonymous calls.
	assert.Equal(t, http.StatusUnauthorized, get("/v1/jobs", ""))
	assert.Equal(t, http.StatusUnauthorized, get("/v1/candidates", ""))

	// Agent endpoints need the agent token; with it, an unknown task is a 404.
	assert.Equal(t, http.StatusUnauthorized, get("/recruitment/core/tasks/some-id", ""))
	assert.Equal(t, http.StatusNotFound, get("/recruitment/core/tasks/some-id", "agent-secret"))
}
