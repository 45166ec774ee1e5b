package usecase

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fairyhunter13/agent-recruitment/internal/domain"
)

func TestCVObjectKey(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "42/Jane_Doe.pdf", CVObjectKey(42, "Jane   Doe"))
	assert.Equal(t, "1/Bob.pdf", CVObjectKey(1, " Bob "))
	assert.Equal(t, "7/Nguyen_Van_A.pdf", CVObjectKey(7, "Nguyen Van A"))
}

func writeTempPDF(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "cv.pdf")
	require.NoError(t, os.WriteFile(path, []byte("%PDF-1.4\n%%EOF\n"), 0o600))
	return path
}

func validApply(jobID int64) ApplyInput {
	return ApplyInput{
		JobID:       jobID,
		Name:        "Jane Doe",
		Email:       "jane@example.com",
		PhoneNumber: "+84900000000",
		YearOfBirth: 1990,
	}
}

func TestCandidateApply(t *testing.T) {
	t.Parallel()

	jobs := &memJobRepo{jobs: map[int64]domain.Job{
		10: {ID: 10, JobType: "full-time", IsOpen: true},
	}}
	cands := &memCandidateRepo{}
	store := &memStore{}
	svc := NewCandidateService(cands, jobs, &memPermissionRepo{}, store)

	cand, err := svc.Apply(context.Background(), validApply(10), writeTempPDF(t))
	require.NoError(t, err)

	assert.Equal(t, "Jane Doe", cand.Name)
	require.NotNil(t, cand.JobID)
	assert.Equal(t, int64(10), *cand.JobID)
	// The job type is copied so it survives job deletion.
	assert.Equal(t, "full-time", cand.JobType)

	wantKey := CVObjectKey(cand.ID, "Jane Doe")
	assert.Equal(t, wantKey, cand.CVObjectKey)
	_, stored := store.objects[wantKey]
	assert.True(t, stored)
}

func TestCandidateApply_MissingJob(t *testing.T) {
	t.Parallel()

	svc := NewCandidateService(&memCandidateRepo{}, &memJobRepo{}, &memPermissionRepo{}, &memStore{})
	_, err := svc.Apply(context.Background(), validApply(404), writeTempPDF(t))
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)
}

func TestCandidateApply_ClosedJob(t *testing.T) {
	t.Parallel()

	jobs := &memJobRepo{jobs: map[int64]domain.Job{10: {ID: 10, IsOpen: false}}}
	svc := NewCandidateService(&memCandidateRepo{}, jobs, &memPermissionRepo{}, &memStore{})
	_, err := svc.Apply(context.Background(), validApply(10), writeTempPDF(t))
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrConflict)
}

func TestCandidateApply_RejectsNonPDF(t *testing.T) {
	t.Parallel()

	jobs := &memJobRepo{jobs: map[int64]domain.Job{10: {ID: 10, IsOpen: true}}}
	svc := NewCandidateService(&memCandidateRepo{}, jobs, &memPermissionRepo{}, &memStore{})

	path := filepath.Join(t.TempDir(), "cv.pdf")
	require.NoError(t, os.WriteFile(path, []byte("plain text pretending"), 0o600))

	_, err := svc.Apply(context.Background(), validApply(10), path)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)
}

func TestCandidateApply_ValidatesInput(t *testing.T) {
	t.Parallel()

	svc := NewCandidateService(&memCandidateRepo{}, &memJobRepo{}, &memPermissionRepo{}, &memStore{})

	in := validApply(10)
	in.Email = "not-an-email"
	_, err := svc.Apply(context.Background(), in, writeTempPDF(t))
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)

	in = validApply(10)
	in.YearOfBirth = 1850
	_, err = svc.Apply(context.Background(), in, writeTempPDF(t))
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)
}

func TestCandidateAccess(t *testing.T) {
	t.Parallel()

	jobID := int64(10)
	otherJob := int64(20)
	cands := &memCandidateRepo{candidates: map[int64]domain.Candidate{
		1: {ID: 1, JobID: &jobID},
		2: {ID: 2, JobID: &otherJob},
		3: {ID: 3}, // detached from a deleted job
	}}
	perms := &memPermissionRepo{}
	svc := NewCandidateService(cands, &memJobRepo{}, perms, &memStore{})

	admin := domain.User{ID: 100, Role: domain.RoleHRAdmin}
	hr := domain.User{ID: 101, Role: domain.RoleHR}
	_, err := perms.Grant(context.Background(), hr.ID, jobID)
	require.NoError(t, err)

	// Admin sees everything, including detached candidates.
	_, err = svc.GetForUser(context.Background(), admin, 3)
	require.NoError(t, err)

	// HR sees granted jobs only.
	_, err = svc.GetForUser(context.Background(), hr, 1)
	require.NoError(t, err)
	_, err = svc.GetForUser(context.Background(), hr, 2)
	assert.ErrorIs(t, err, domain.ErrForbidden)
	_, err = svc.GetForUser(context.Background(), hr, 3)
	assert.ErrorIs(t, err, domain.ErrForbidden)

	// Listing follows the same grants.
	all, err := svc.ListForUser(context.Background(), admin)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	mine, err := svc.ListForUser(context.Background(), hr)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, int64(1), mine[0].ID)

	_, err = svc.ListByJobForUser(context.Background(), hr, otherJob)
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestCandidateListUnevaluated(t *testing.T) {
	t.Parallel()

	jobID := int64(10)
	score := 80.0
	cands := &memCandidateRepo{candidates: map[int64]domain.Candidate{
		1: {ID: 1, JobID: &jobID},
		2: {ID: 2, JobID: &jobID, Score: &score},
	}}
	perms := &memPermissionRepo{}
	svc := NewCandidateService(cands, &memJobRepo{}, perms, &memStore{})

	admin := domain.User{ID: 100, Role: domain.RoleHRAdmin}
	pending, err := svc.ListUnevaluatedForUser(context.Background(), admin, jobID)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, int64(1), pending[0].ID)

	hr := domain.User{ID: 101, Role: domain.RoleHR}
	_, err = svc.ListUnevaluatedForUser(context.Background(), hr, jobID)
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestCandidateUpdate(t *testing.T) {
	t.Parallel()

	jobID := int64(10)
	cands := &memCandidateRepo{candidates: map[int64]domain.Candidate{
		1: {ID: 1, JobID: &jobID, Name: "Jane Doe", Email: "jane@example.com"},
	}}
	svc := NewCandidateService(cands, &memJobRepo{}, &memPermissionRepo{}, &memStore{})
	admin := domain.User{ID: 100, Role: domain.RoleHRAdmin}

	updated, err := svc.UpdateForUser(context.Background(), admin, 1, UpdateCandidateInput{
		Name:        "Jane Smith",
		Email:       "jane.smith@example.com",
		PhoneNumber: "+84900000001",
		YearOfBirth: 1991,
	})
	require.NoError(t, err)
	assert.Equal(t, "Jane Smith", updated.Name)
	assert.Equal(t, 1991, updated.YearOfBirth)

	_, err = svc.UpdateForUser(context.Background(), admin, 1, UpdateCandidateInput{Email: "bad"})
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)
}

func TestCandidateAssignAndRemove(t *testing.T) {
	t.Parallel()

	jobs := &memJobRepo{jobs: map[int64]domain.Job{
		10: {ID: 10, JobType: "full-time", IsOpen: true},
		20: {ID: 20, JobType: "contract", IsOpen: true},
	}}
	cands := &memCandidateRepo{candidates: map[int64]domain.Candidate{
		1: {ID: 1},
	}}
	perms := &memPermissionRepo{}
	svc := NewCandidateService(cands, jobs, perms, &memStore{})

	hr := domain.User{ID: 101, Role: domain.RoleHR}
	_, err := perms.Grant(context.Background(), hr.ID, 10)
	require.NoError(t, err)

	assigned, err := svc.AssignForUser(context.Background(), hr, 1, 10)
	require.NoError(t, err)
	require.NotNil(t, assigned.JobID)
	assert.Equal(t, int64(10), *assigned.JobID)
	assert.Equal(t, "full-time", assigned.JobType)

	// Target job the actor has no grant for is off limits.
	_, err = svc.AssignForUser(context.Background(), hr, 1, 20)
	assert.ErrorIs(t, err, domain.ErrForbidden)

	// Missing target job is invalid, not a permission problem.
	_, err = svc.AssignForUser(context.Background(), hr, 1, 404)
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)

	require.NoError(t, svc.RemoveFromJobForUser(context.Background(), hr, 1))
	detached, err := cands.Get(context.Background(), 1)
	require.NoError(t, err)
	assert.Nil(t, detached.JobID)
	assert.Empty(t, detached.JobType)

	// Detaching twice conflicts; the candidate is already admin-only anyway.
	admin := domain.User{ID: 100, Role: domain.RoleHRAdmin}
	assert.ErrorIs(t, svc.RemoveFromJobForUser(context.Background(), admin, 1), domain.ErrConflict)

	unassigned, err := svc.ListUnassigned(context.Background())
	require.NoError(t, err)
	require.Len(t, unassigned, 1)
	assert.Equal(t, int64(1), unassigned[0].ID)
}

func TestCandidateDeleteBatch(t *testing.T) {
	t.Parallel()

	jobID := int64(10)
	cands := &memCandidateRepo{candidates: map[int64]domain.Candidate{
		1: {ID: 1, JobID: &jobID, CVObjectKey: "1/A.pdf"},
		3: {ID: 3, JobID: &jobID, CVObjectKey: "3/C.pdf"},
	}}
	store := &memStore{objects: map[string]string{"1/A.pdf": "x", "3/C.pdf": "x"}}
	svc := NewCandidateService(cands, &memJobRepo{}, &memPermissionRepo{}, store)
	admin := domain.User{ID: 100, Role: domain.RoleHRAdmin}

	// A missing id in the middle does not stop the rest of the batch.
	err := svc.DeleteBatchForUser(context.Background(), admin, []int64{1, 2, 3})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.Empty(t, cands.candidates)
	assert.ElementsMatch(t, []string{"1/A.pdf", "3/C.pdf"}, store.removed)

	assert.ErrorIs(t, svc.DeleteBatchForUser(context.Background(), admin, nil), domain.ErrInvalidArgument)
}

func TestCandidateDelete_RemovesStoredCV(t *testing.T) {
	t.Parallel()

	jobID := int64(10)
	cands := &memCandidateRepo{candidates: map[int64]domain.Candidate{
		1: {ID: 1, JobID: &jobID, CVObjectKey: "1/Jane_Doe.pdf"},
	}}
	store := &memStore{objects: map[string]string{"1/Jane_Doe.pdf": "x"}}
	svc := NewCandidateService(cands, &memJobRepo{}, &memPermissionRepo{}, store)

	admin := domain.User{ID: 100, Role: domain.RoleHRAdmin}
	require.NoError(t, svc.DeleteForUser(context.Background(), admin, 1))

	_, err := cands.Get(context.Background(), 1)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.Equal(t, []string{"1/Jane_Doe.pdf"}, store.removed)
}
