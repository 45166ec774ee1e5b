// Package domain holds the core entities, ports and error taxonomy of the
// recruitment service. It is free of transport and persistence concerns;
// adapters depend on this package, never the other way around.
package domain

import (
	"context"
	"errors"
	"time"
)

// Error taxonomy (sentinels)
var (
	ErrInvalidArgument   = errors.New("invalid argument")
	ErrNotFound          = errors.New("not found")
	ErrConflict          = errors.New("conflict")
	ErrUnauthorized      = errors.New("unauthorized")
	ErrForbidden         = errors.New("forbidden")
	ErrRateLimited       = errors.New("rate limited")
	ErrUpstreamTimeout   = errors.New("upstream timeout")
	ErrUpstreamRateLimit = errors.New("upstream rate limit")
	ErrSchemaInvalid     = errors.New("schema invalid")
	ErrEmptyDocument     = errors.New("empty document")
	ErrInternal          = errors.New("internal error")
)

// Job is a position candidates apply to. Closed jobs reject applications.
type Job struct {
	ID               int64
	Title            string
	JobType          string
	Qualifications   string
	Responsibilities string
	Benefits         string
	WorkSchedule     string
	Location         string
	IsOpen           bool
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// ExtractedFields are the five CV fields produced by the extraction stage.
// A field the model reported as absent carries the literal sentinel "0".
type ExtractedFields struct {
	Objective   string
	Experiences string
	Skills      string
	Education   string
	Certificate string
}

// FieldSentinel marks an extracted field the model found no information for.
const FieldSentinel = "0"

// Candidate is an applicant, optionally linked to a job and a stored CV.
// JobID is nil when the job was deleted after the application.
// Score is nil until the evaluation stage has run.
type Candidate struct {
	ID            int64
	Name          string
	Email         string
	PhoneNumber   string
	YearOfBirth   int
	JobID         *int64
	JobType       string
	CVObjectKey   string
	Fields        ExtractedFields
	Score         *float64
	SummaryReason string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// User roles. HRAdmin manages users and permissions; HR works candidates on
// jobs it was granted.
const (
	RoleHR      = "HR"
	RoleHRAdmin = "HR_admin"
)

// User is an operator account. Inactive users cannot authenticate.
type User struct {
	ID           int64
	Name         string
	Username     string
	PasswordHash string
	Role         string
	IsActive     bool
	CreatedAt    time.Time
}

// Permission grants one user access to one job's candidates.
type Permission struct {
	ID        int64
	UserID    int64
	JobID     int64
	CreatedAt time.Time
}

// Task kinds and statuses for the asynchronous pipeline.
type TaskKind string

const (
	TaskExtract  TaskKind = "extract"
	TaskEvaluate TaskKind = "evaluate"
)

type TaskStatus string

const (
	TaskPending   TaskStatus = "pending"
	TaskRunning   TaskStatus = "running"
	TaskSucceeded TaskStatus = "succeeded"
	TaskFailed    TaskStatus = "failed"
)

// PipelineTask tracks one asynchronous extraction or evaluation request.
type PipelineTask struct {
	ID           string
	Kind         TaskKind
	Status       TaskStatus
	CandidateIDs []int64
	JobID        *int64
	Error        string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Repositories (ports)

// JobFilter narrows a job listing. Zero-value fields match everything; a
// zero Limit means no limit.
type JobFilter struct {
	Title    string
	JobType  string
	Location string
	Limit    int
	Offset   int
}

type JobRepository interface {
	Create(ctx Context, j Job) (int64, error)
	Get(ctx Context, id int64) (Job, error)
	List(ctx Context, f JobFilter) ([]Job, error)
	// ListUnassigned returns jobs no user has been granted yet.
	ListUnassigned(ctx Context) ([]Job, error)
	Update(ctx Context, j Job) error
	Delete(ctx Context, id int64) error
}

type CandidateRepository interface {
	Create(ctx Context, c Candidate) (int64, error)
	Get(ctx Context, id int64) (Candidate, error)
	List(ctx Context) ([]Candidate, error)
	ListByJob(ctx Context, jobID int64) ([]Candidate, error)
	// ListUnevaluated returns a job's candidates that have no score yet.
	ListUnevaluated(ctx Context, jobID int64) ([]Candidate, error)
	// ListUnassigned returns candidates whose job reference is null.
	ListUnassigned(ctx Context) ([]Candidate, error)
	Update(ctx Context, c Candidate) error
	SetJob(ctx Context, id int64, jobID *int64, jobType string) error
	Delete(ctx Context, id int64) error
	SetCVObjectKey(ctx Context, id int64, key string) error
	SaveExtraction(ctx Context, id int64, f ExtractedFields) error
	SaveEvaluation(ctx Context, id int64, score float64, reason string) error
}

type UserRepository interface {
	Create(ctx Context, u User) (int64, error)
	Get(ctx Context, id int64) (User, error)
	GetByUsername(ctx Context, username string) (User, error)
	List(ctx Context) ([]User, error)
	SetActive(ctx Context, id int64, active bool) error
	SetPasswordHash(ctx Context, id int64, hash string) error
	Delete(ctx Context, id int64) error
}

type PermissionRepository interface {
	Grant(ctx Context, userID, jobID int64) (int64, error)
	Revoke(ctx Context, userID, jobID int64) error
	ListByUser(ctx Context, userID int64) ([]Permission, error)
	Has(ctx Context, userID, jobID int64) (bool, error)
}

type TaskRepository interface {
	Create(ctx Context, t PipelineTask) error
	Get(ctx Context, id string) (PipelineTask, error)
	MarkRunning(ctx Context, id string) error
	MarkSucceeded(ctx Context, id string) error
	MarkFailed(ctx Context, id string, errMsg string) error
}

// Queue (port)

type ExtractTaskPayload struct {
	TaskID      string `json:"task_id"`
	CandidateID int64  `json:"candidate_id"`
}

type EvaluateTaskPayload struct {
	TaskID       string  `json:"task_id"`
	CandidateIDs []int64 `json:"candidate_ids"`
	JobID        int64   `json:"job_id"`
}

type Queue interface {
	EnqueueExtract(ctx Context, payload ExtractTaskPayload) error
	EnqueueEvaluate(ctx Context, payload EvaluateTaskPayload) error
}

// CompletionClient (port)
// Complete sends one system+user message pair to the model and returns the
// raw assistant content.
type CompletionClient interface {
	Complete(ctx Context, systemContent, userPrompt string) (string, error)
}

// ObjectStore (port) stores and retrieves CV documents by key.
type ObjectStore interface {
	Put(ctx Context, key, srcPath, contentType string) error
	// FetchToFile downloads the object to destPath.
	FetchToFile(ctx Context, key, destPath string) error
	Remove(ctx Context, key string) error
}

// TextExtractor (port)
// Extract returns the plain text of the document at path. usedOCR reports
// whether the text came from rasterized pages rather than the text layer.
type TextExtractor interface {
	Extract(ctx Context, path string) (text string, usedOCR bool, err error)
}

// Context aliases context.Context so ports read without the extra import.
type Context = context.Context
