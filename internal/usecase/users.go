package usecase

import (
	"fmt"

	"github.com/fairyhunter13/agent-recruitment/internal/domain"
)

// CreateUserInput carries a new operator account. PasswordHash is produced
// by the HTTP layer; plaintext never reaches this package.
type CreateUserInput struct {
	Name         string `validate:"required"`
	Username     string `validate:"required,min=3"`
	PasswordHash string `validate:"required"`
	Role         string `validate:"required,oneof=HR HR_admin"`
}

// UserService manages operator accounts and their per-job permissions.
type UserService struct {
	Users       domain.UserRepository
	Permissions domain.PermissionRepository
	Jobs        domain.JobRepository
}

// NewUserService constructs a UserService.
func NewUserService(users domain.UserRepository, perms domain.PermissionRepository, jobs domain.JobRepository) UserService {
	return UserService{Users: users, Permissions: perms, Jobs: jobs}
}

// Create stores a new active user.
func (s UserService) Create(ctx domain.Context, in CreateUserInput) (domain.User, error) {
	if err := validate.Struct(in); err != nil {
		return domain.User{}, fmt.Errorf("op=user.create: %v: %w", err, domain.ErrInvalidArgument)
	}
	id, err := s.Users.Create(ctx, domain.User{
		Name:         in.Name,
		Username:     in.Username,
		PasswordHash: in.PasswordHash,
		Role:         in.Role,
		IsActive:     true,
	})
	if err != nil {
		return domain.User{}, err
	}
	return s.Users.Get(ctx, id)
}

// RegisterInput carries a self-registered account request.
type RegisterInput struct {
	Name         string `validate:"required"`
	Username     string `validate:"required,min=3"`
	PasswordHash string `validate:"required"`
}

// Register stores a new HR account that stays inactive until an admin
// activates it.
func (s UserService) Register(ctx domain.Context, in RegisterInput) (domain.User, error) {
	if err := validate.Struct(in); err != nil {
		return domain.User{}, fmt.Errorf("op=user.register: %v: %w", err, domain.ErrInvalidArgument)
	}
	id, err := s.Users.Create(ctx, domain.User{
		Name:         in.Name,
		Username:     in.Username,
		PasswordHash: in.PasswordHash,
		Role:         domain.RoleHR,
		IsActive:     false,
	})
	if err != nil {
		return domain.User{}, err
	}
	return s.Users.Get(ctx, id)
}

// ChangePassword replaces a user's credential with a new hash.
func (s UserService) ChangePassword(ctx domain.Context, userID int64, newHash string) error {
	if newHash == "" {
		return fmt.Errorf("op=user.change_password: empty hash: %w", domain.ErrInvalidArgument)
	}
	return s.Users.SetPasswordHash(ctx, userID, newHash)
}

// List returns all users.
func (s UserService) List(ctx domain.Context) ([]domain.User, error) {
	return s.Users.List(ctx)
}

// SetActive toggles whether a user may authenticate.
func (s UserService) SetActive(ctx domain.Context, id int64, active bool) error {
	return s.Users.SetActive(ctx, id, active)
}

// Delete removes a user.
func (s UserService) Delete(ctx domain.Context, id int64) error {
	return s.Users.Delete(ctx, id)
}

// Grant gives a user access to one job's candidates. Admins already see
// every job, so granting one is rejected.
func (s UserService) Grant(ctx domain.Context, userID, jobID int64) (domain.Permission, error) {
	user, err := s.Users.Get(ctx, userID)
	if err != nil {
		return domain.Permission{}, err
	}
	if user.Role == domain.RoleHRAdmin {
		return domain.Permission{}, fmt.Errorf("op=permission.grant: admins cannot be assigned: %w", domain.ErrInvalidArgument)
	}
	if _, err := s.Jobs.Get(ctx, jobID); err != nil {
		return domain.Permission{}, err
	}
	id, err := s.Permissions.Grant(ctx, userID, jobID)
	if err != nil {
		return domain.Permission{}, err
	}
	return domain.Permission{ID: id, UserID: userID, JobID: jobID}, nil
}

// Revoke removes a grant.
func (s UserService) Revoke(ctx domain.Context, userID, jobID int64) error {
	return s.Permissions.Revoke(ctx, userID, jobID)
}

// PermissionsOf lists a user's grants.
func (s UserService) PermissionsOf(ctx domain.Context, userID int64) ([]domain.Permission, error) {
	return s.Permissions.ListByUser(ctx, userID)
}
