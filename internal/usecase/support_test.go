package usecase

import (
	"strings"

	"github.com/fairyhunter13/agent-recruitment/internal/domain"
)

// In-memory fakes shared by the service tests.

type memJobRepo struct {
	jobs   map[int64]domain.Job
	nextID int64
}

func (r *memJobRepo) Create(_ domain.Context, j domain.Job) (int64, error) {
	if r.jobs == nil {
		r.jobs = make(map[int64]domain.Job)
	}
	r.nextID++
	j.ID = r.nextID
	r.jobs[j.ID] = j
	return j.ID, nil
}

func (r *memJobRepo) Get(_ domain.Context, id int64) (domain.Job, error) {
	j, ok := r.jobs[id]
	if !ok {
		return domain.Job{}, domain.ErrNotFound
	}
	return j, nil
}

func (r *memJobRepo) List(_ domain.Context, f domain.JobFilter) ([]domain.Job, error) {
	contains := func(s, sub string) bool {
		return sub == "" || strings.Contains(strings.ToLower(s), strings.ToLower(sub))
	}
	out := make([]domain.Job, 0, len(r.jobs))
	for _, j := range r.jobs {
		if contains(j.Title, f.Title) && contains(j.JobType, f.JobType) && contains(j.Location, f.Location) {
			out = append(out, j)
		}
	}
	if f.Offset > 0 {
		if f.Offset >= len(out) {
			return nil, nil
		}
		out = out[f.Offset:]
	}
	if f.Limit > 0 && f.Limit < len(out) {
		out = out[:f.Limit]
	}
	return out, nil
}

func (r *memJobRepo) ListUnassigned(_ domain.Context) ([]domain.Job, error) {
	out := make([]domain.Job, 0, len(r.jobs))
	for _, j := range r.jobs {
		out = append(out, j)
	}
	return out, nil
}

func (r *memJobRepo) Update(_ domain.Context, j domain.Job) error {
	if _, ok := r.jobs[j.ID]; !ok {
		return domain.ErrNotFound
	}
	r.jobs[j.ID] = j
	return nil
}

func (r *memJobRepo) Delete(_ domain.Context, id int64) error {
	if _, ok := r.jobs[id]; !ok {
		return domain.ErrNotFound
	}
	delete(r.jobs, id)
	return nil
}

type memCandidateRepo struct {
	candidates map[int64]domain.Candidate
	nextID     int64
}

func (r *memCandidateRepo) Create(_ domain.Context, c domain.Candidate) (int64, error) {
	if r.candidates == nil {
		r.candidates = make(map[int64]domain.Candidate)
	}
	r.nextID++
	c.ID = r.nextID
	r.candidates[c.ID] = c
	return c.ID, nil
}

func (r *memCandidateRepo) Get(_ domain.Context, id int64) (domain.Candidate, error) {
	c, ok := r.candidates[id]
	if !ok {
		return domain.Candidate{}, domain.ErrNotFound
	}
	return c, nil
}

func (r *memCandidateRepo) List(_ domain.Context) ([]domain.Candidate, error) {
	out := make([]domain.Candidate, 0, len(r.candidates))
	for _, c := range r.candidates {
		out = append(out, c)
	}
	return out, nil
}

func (r *memCandidateRepo) ListByJob(_ domain.Context, jobID int64) ([]domain.Candidate, error) {
	var out []domain.Candidate
	for _, c := range r.candidates {
		if c.JobID != nil && *c.JobID == jobID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (r *memCandidateRepo) ListUnevaluated(_ domain.Context, jobID int64) ([]domain.Candidate, error) {
	var out []domain.Candidate
	for _, c := range r.candidates {
		if c.JobID != nil && *c.JobID == jobID && c.Score == nil {
			out = append(out, c)
		}
	}
	return out, nil
}

func (r *memCandidateRepo) ListUnassigned(_ domain.Context) ([]domain.Candidate, error) {
	var out []domain.Candidate
	for _, c := range r.candidates {
		if c.JobID == nil {
			out = append(out, c)
		}
	}
	return out, nil
}

func (r *memCandidateRepo) Update(_ domain.Context, c domain.Candidate) error {
	existing, ok := r.candidates[c.ID]
	if !ok {
		return domain.ErrNotFound
	}
	existing.Name = c.Name
	existing.Email = c.Email
	existing.PhoneNumber = c.PhoneNumber
	existing.YearOfBirth = c.YearOfBirth
	r.candidates[c.ID] = existing
	return nil
}

func (r *memCandidateRepo) SetJob(_ domain.Context, id int64, jobID *int64, jobType string) error {
	c, ok := r.candidates[id]
	if !ok {
		return domain.ErrNotFound
	}
	c.JobID = jobID
	c.JobType = jobType
	r.candidates[id] = c
	return nil
}

func (r *memCandidateRepo) Delete(_ domain.Context, id int64) error {
	if _, ok := r.candidates[id]; !ok {
		return domain.ErrNotFound
	}
	delete(r.candidates, id)
	return nil
}

func (r *memCandidateRepo) SetCVObjectKey(_ domain.Context, id int64, key string) error {
	c, ok := r.candidates[id]
	if !ok {
		return domain.ErrNotFound
	}
	c.CVObjectKey = key
	r.candidates[id] = c
	return nil
}

func (r *memCandidateRepo) SaveExtraction(_ domain.Context, id int64, f domain.ExtractedFields) error {
	c, ok := r.candidates[id]
	if !ok {
		return domain.ErrNotFound
	}
	c.Fields = f
	r.candidates[id] = c
	return nil
}

func (r *memCandidateRepo) SaveEvaluation(_ domain.Context, id int64, score float64, reason string) error {
	c, ok := r.candidates[id]
	if !ok {
		return domain.ErrNotFound
	}
	c.Score = &score
	c.SummaryReason = reason
	r.candidates[id] = c
	return nil
}

type memUserRepo struct {
	users  map[int64]domain.User
	nextID int64
}

func (r *memUserRepo) Create(_ domain.Context, u domain.User) (int64, error) {
	if r.users == nil {
		r.users = make(map[int64]domain.User)
	}
	for _, e := range r.users {
		if e.Username == u.Username {
			return 0, domain.ErrConflict
		}
	}
	r.nextID++
	u.ID = r.nextID
	r.users[u.ID] = u
	return u.ID, nil
}

func (r *memUserRepo) Get(_ domain.Context, id int64) (domain.User, error) {
	u, ok := r.users[id]
	if !ok {
		return domain.User{}, domain.ErrNotFound
	}
	return u, nil
}

func (r *memUserRepo) GetByUsername(_ domain.Context, username string) (domain.User, error) {
	for _, u := range r.users {
		if u.Username == username {
			return u, nil
		}
	}
	return domain.User{}, domain.ErrNotFound
}

func (r *memUserRepo) List(_ domain.Context) ([]domain.User, error) {
	out := make([]domain.User, 0, len(r.users))
	for _, u := range r.users {
		out = append(out, u)
	}
	return out, nil
}

func (r *memUserRepo) SetActive(_ domain.Context, id int64, active bool) error {
	u, ok := r.users[id]
	if !ok {
		return domain.ErrNotFound
	}
	u.IsActive = active
	r.users[id] = u
	return nil
}

func (r *memUserRepo) SetPasswordHash(_ domain.Context, id int64, hash string) error {
	u, ok := r.users[id]
	if !ok {
		return domain.ErrNotFound
	}
	u.PasswordHash = hash
	r.users[id] = u
	return nil
}

func (r *memUserRepo) Delete(_ domain.Context, id int64) error {
	if _, ok := r.users[id]; !ok {
		return domain.ErrNotFound
	}
	delete(r.users, id)
	return nil
}

type permKey struct{ userID, jobID int64 }

type memPermissionRepo struct {
	grants map[permKey]int64
	nextID int64
}

func (r *memPermissionRepo) Grant(_ domain.Context, userID, jobID int64) (int64, error) {
	if r.grants == nil {
		r.grants = make(map[permKey]int64)
	}
	k := permKey{userID, jobID}
	if _, ok := r.grants[k]; ok {
		return 0, domain.ErrConflict
	}
	r.nextID++
	r.grants[k] = r.nextID
	return r.nextID, nil
}

func (r *memPermissionRepo) Revoke(_ domain.Context, userID, jobID int64) error {
	k := permKey{userID, jobID}
	if _, ok := r.grants[k]; !ok {
		return domain.ErrNotFound
	}
	delete(r.grants, k)
	return nil
}

func (r *memPermissionRepo) ListByUser(_ domain.Context, userID int64) ([]domain.Permission, error) {
	var out []domain.Permission
	for k, id := range r.grants {
		if k.userID == userID {
			out = append(out, domain.Permission{ID: id, UserID: k.userID, JobID: k.jobID})
		}
	}
	return out, nil
}

func (r *memPermissionRepo) Has(_ domain.Context, userID, jobID int64) (bool, error) {
	_, ok := r.grants[permKey{userID, jobID}]
	return ok, nil
}

// memStore records object puts and removals.
type memStore struct {
	objects map[string]string
	removed []string
}

func (s *memStore) Put(_ domain.Context, key, srcPath, _ string) error {
	if s.objects == nil {
		s.objects = make(map[string]string)
	}
	s.objects[key] = srcPath
	return nil
}

func (s *memStore) FetchToFile(_ domain.Context, key, _ string) error {
	if _, ok := s.objects[key]; !ok {
		return domain.ErrNotFound
	}
	return nil
}

func (s *memStore) Remove(_ domain.Context, key string) error {
	s.removed = append(s.removed, key)
	delete(s.objects, key)
	return nil
}
