package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"

	httpserver "github.com/fairyhunter13/agent-recruitment/internal/adapter/httpserver"
	"github.com/fairyhunter13/agent-recruitment/internal/domain"
	"github.com/fairyhunter13/agent-recruitment/internal/usecase"
)

type seedFile struct {
	Admin struct {
		Name     string `yaml:"name"`
		Username string `yaml:"username"`
		Password string `yaml:"password"`
	} `yaml:"admin"`
	Jobs []struct {
		Title            string `yaml:"title"`
		JobType          string `yaml:"job_type"`
		Qualifications   string `yaml:"qualifications"`
		Responsibilities string `yaml:"responsibilities"`
		Benefits         string `yaml:"benefits"`
		WorkSchedule     string `yaml:"work_schedule"`
		Location         string `yaml:"location"`
		IsOpen           bool   `yaml:"is_open"`
	} `yaml:"jobs"`
}

// runSeed bootstraps the admin account and any listed jobs. The admin is only
// created when the username is free; jobs are only created into an empty table.
func runSeed(ctx context.Context, path string, users usecase.UserService, jobs usecase.JobService) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("op=seed.read: %w", err)
	}
	var sf seedFile
	if err := yaml.Unmarshal(raw, &sf); err != nil {
		return fmt.Errorf("op=seed.parse: %w", err)
	}

	if sf.Admin.Username != "" {
		_, err := users.Users.GetByUsername(ctx, sf.Admin.Username)
		switch {
		case err == nil:
			slog.Info("seed admin already present", slog.String("username", sf.Admin.Username))
		case errors.Is(err, domain.ErrNotFound):
			hash, herr := httpserver.HashPassword(sf.Admin.Password, httpserver.DefaultArgon2Params)
			if herr != nil {
				return fmt.Errorf("op=seed.hash: %w", herr)
			}
			if _, cerr := users.Create(ctx, usecase.CreateUserInput{
				Name:         sf.Admin.Name,
				Username:     sf.Admin.Username,
				PasswordHash: hash,
				Role:         domain.RoleHRAdmin,
			}); cerr != nil {
				return fmt.Errorf("op=seed.admin: %w", cerr)
			}
			slog.Info("seed admin created", slog.String("username", sf.Admin.Username))
		default:
			return fmt.Errorf("op=seed.lookup: %w", err)
		}
	}

	if len(sf.Jobs) > 0 {
		existing, err := jobs.List(ctx, domain.JobFilter{Limit: 1})
		if err != nil {
			return fmt.Errorf("op=seed.jobs_list: %w", err)
		}
		if len(existing) > 0 {
			slog.Info("seed jobs skipped", slog.Int("existing", len(existing)))
			return nil
		}
		for _, j := range sf.Jobs {
			if _, err := jobs.Create(ctx, domain.User{}, usecase.JobInput{
				Title:            j.Title,
				JobType:          j.JobType,
				Qualifications:   j.Qualifications,
				Responsibilities: j.Responsibilities,
				Benefits:         j.Benefits,
				WorkSchedule:     j.WorkSchedule,
				Location:         j.Location,
				IsOpen:           j.IsOpen,
			}); err != nil {
				return fmt.Errorf("op=seed.job title=%s: %w", j.Title, err)
			}
		}
		slog.Info("seed jobs created", slog.Int("count", len(sf.Jobs)))
	}
	return nil
}
