package app

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	httpserver "github.com/fairyhunter13/agent-recruitment/internal/adapter/httpserver"
	"github.com/fairyhunter13/agent-recruitment/internal/adapter/observability"
	"github.com/fairyhunter13/agent-recruitment/internal/config"
)

// ParseOrigins splits a comma-separated origin list into a slice, trimming spaces.
// If the input is empty, returns ["*"].
func ParseOrigins(s string) []string {
	s = strings.TrimSpace(s)
	if s == "" || s == "*" {
		return []string{"*"}
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return []string{"*"}
	}
	return out
}

// BuildRouter constructs the HTTP handler with all middlewares and routes.
func BuildRouter(cfg config.Config, srv *httpserver.Server) http.Handler {
	r := chi.NewRouter()
	r.Use(httpserver.Recoverer())
	r.Use(httpserver.RequestID())
	r.Use(httpserver.TimeoutMiddleware(30 * time.Second))
	r.Use(httpserver.AccessLog())
	r.Use(observability.HTTPMetricsMiddleware)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   ParseOrigins(cfg.CORSAllowOrigins),
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		ExposedHeaders:   []string{"X-Request-Id"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	// Public endpoints, rate limited by source IP.
	r.Group(func(pr chi.Router) {
		pr.Use(httprate.LimitByIP(cfg.RateLimitPerMin, 1*time.Minute))
		pr.Post("/v1/auth/login", srv.LoginHandler())
		pr.Post("/v1/auth/register", srv.RegisterHandler())
		pr.Post("/v1/candidates/apply", srv.ApplyHandler())
	})

	// Endpoints for authenticated HR users.
	r.Group(func(ar chi.Router) {
		ar.Use(srv.AuthRequired)
		ar.Post("/v1/auth/password", srv.ChangePasswordHandler())

		ar.Get("/v1/jobs", srv.ListJobsHandler())
		ar.Post("/v1/jobs", srv.CreateJobHandler())
		ar.Get("/v1/jobs/{id}", srv.GetJobHandler())
		ar.Get("/v1/jobs/{id}/candidates", srv.ListJobCandidatesHandler())

		ar.Get("/v1/candidates", srv.ListCandidatesHandler())
		ar.Get("/v1/candidates/unevaluated", srv.ListUnevaluatedCandidatesHandler())
		ar.Get("/v1/candidates/{id}", srv.GetCandidateHandler())
		ar.Patch("/v1/candidates/{id}", srv.UpdateCandidateHandler())
		ar.Post("/v1/candidates/{id}/assign", srv.AssignCandidateHandler())
		ar.Delete("/v1/candidates/{id}/job", srv.RemoveCandidateFromJobHandler())
		ar.Delete("/v1/candidates/{id}", srv.DeleteCandidateHandler())
		ar.Delete("/v1/candidates", srv.DeleteCandidatesHandler())

		// Management endpoints restricted to HR_admin.
		ar.Group(func(mr chi.Router) {
			mr.Use(srv.AdminRequired)
			mr.Get("/v1/jobs/unassigned", srv.ListUnassignedJobsHandler())
			mr.Put("/v1/jobs/{id}", srv.UpdateJobHandler())
			mr.Delete("/v1/jobs/{id}", srv.DeleteJobHandler())

			mr.Get("/v1/candidates/unassigned", srv.ListUnassignedCandidatesHandler())

			mr.Post("/v1/users", srv.CreateUserHandler())
			mr.Get("/v1/users", srv.ListUsersHandler())
			mr.Patch("/v1/users/{id}/active", srv.SetUserActiveHandler())
			mr.Delete("/v1/users/{id}", srv.DeleteUserHandler())
			mr.Get("/v1/users/{id}/permissions", srv.ListPermissionsHandler())
			mr.Post("/v1/users/{id}/permissions", srv.GrantPermissionHandler())
			mr.Delete("/v1/users/{id}/permissions/{jobID}", srv.RevokePermissionHandler())
		})
	})

	// Endpoints for the recruitment agent, guarded by a static token.
	r.Group(func(gr chi.Router) {
		gr.Use(srv.AgentAuth)
		gr.Post("/recruitment/core/extract_candidate_cv", srv.ExtractCVHandler())
		gr.Post("/recruitment/core/evaluate_candidate", srv.EvaluateHandler())
		gr.Get("/recruitment/core/tasks/{id}", srv.TaskStatusHandler())
	})

	// Health and metrics
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) })
	r.Get("/metrics", func(w http.ResponseWriter, r *http.Request) { promhttp.Handler().ServeHTTP(w, r) })
	r.Get("/readyz", srv.ReadyzHandler())

	return httpserver.SecurityHeaders(r)
}
