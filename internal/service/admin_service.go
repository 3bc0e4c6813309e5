package service

import (
	"alcyxob/gym-app/internal/authz"
	"alcyxob/gym-app/internal/domain"
	"alcyxob/gym-app/internal/repository"
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Report is the admin overview.
type Report struct {
	UsersByRole map[domain.Role]int64 `json:"usersByRole"`
	Routines    int64                 `json:"routines"`
	Assignments int64                 `json:"assignments"`
	Completions int64                 `json:"completions"`
}

type AdminService interface {
	ListUsers(ctx context.Context, actor authz.Principal, role domain.Role) ([]domain.Profile, error)
	CreateUser(ctx context.Context, actor authz.Principal, in SignUpInput) (*domain.Profile, error)
	ChangeRole(ctx context.Context, actor authz.Principal, userID primitive.ObjectID, role domain.Role) (*domain.Profile, error)
	Report(ctx context.Context, actor authz.Principal) (*Report, error)
}

type adminService struct {
	repos repository.Repositories
}

func NewAdminService(repos repository.Repositories) AdminService {
	return &adminService{repos: repos}
}

func (s *adminService) ListUsers(ctx context.Context, actor authz.Principal, role domain.Role) ([]domain.Profile, error) {
	if err := authz.Authorize(actor, authz.AdminResource{}, authz.ActionRead); err != nil {
		return nil, err
	}
	if role != "" && !role.Valid() {
		return nil, domain.NewValidationError("unknown role %q", role)
	}
	profiles, err := s.repos.Profiles.List(ctx, role)
	if err != nil {
		return nil, translate(err, "profile", "list users")
	}
	for i := range profiles {
		profiles[i].PasswordHash = ""
	}
	return profiles, nil
}

// CreateUser creates an account with any role, admin included.
func (s *adminService) CreateUser(ctx context.Context, actor authz.Principal, in SignUpInput) (*domain.Profile, error) {
	if err := authz.Authorize(actor, authz.AdminResource{}, authz.ActionManage); err != nil {
		return nil, err
	}
	return createAccount(ctx, s.repos.Profiles, in)
}

// EnsureAdmin creates the bootstrap admin account from in. When the email is
// already registered the existing profile is returned with created false,
// whatever its role.
func EnsureAdmin(ctx context.Context, profiles repository.ProfileRepository, in SignUpInput) (*domain.Profile, bool, error) {
	in.Role = domain.RoleAdmin
	profile, err := createAccount(ctx, profiles, in)
	if err == nil {
		return profile, true, nil
	}
	if domain.KindOf(err) != domain.KindConflict {
		return nil, false, err
	}
	email, _ := normalizeEmail(in.Email)
	existing, err := profiles.GetByEmail(ctx, email)
	if err != nil {
		return nil, false, translate(err, "profile", "load bootstrap admin")
	}
	existing.PasswordHash = ""
	return existing, false, nil
}

// ChangeRole replaces the single role of a user. Admins cannot change their
// own role so at least one admin remains.
func (s *adminService) ChangeRole(ctx context.Context, actor authz.Principal, userID primitive.ObjectID, role domain.Role) (*domain.Profile, error) {
	if err := authz.Authorize(actor, authz.AdminResource{}, authz.ActionManage); err != nil {
		return nil, err
	}
	if !role.Valid() {
		return nil, domain.NewValidationError("unknown role %q", role)
	}
	if userID == actor.ID {
		return nil, domain.NewValidationError("admins cannot change their own role")
	}

	profile, err := s.repos.Profiles.GetByID(ctx, userID)
	if err != nil {
		return nil, translate(err, "profile", "get profile")
	}
	profile.PasswordHash = ""
	if profile.Role == role {
		return profile, nil
	}
	profile.Role = role
	if err := s.repos.Profiles.Update(ctx, profile); err != nil {
		return nil, translate(err, "profile", "change role")
	}
	return profile, nil
}

func (s *adminService) Report(ctx context.Context, actor authz.Principal) (*Report, error) {
	if err := authz.Authorize(actor, authz.AdminResource{}, authz.ActionRead); err != nil {
		return nil, err
	}
	byRole, err := s.repos.Profiles.CountByRole(ctx)
	if err != nil {
		return nil, translate(err, "profile", "count users")
	}
	report := &Report{UsersByRole: byRole}
	if report.Routines, err = s.repos.Routines.Count(ctx); err != nil {
		return nil, translate(err, "routine", "count routines")
	}
	if report.Assignments, err = s.repos.Assignments.Count(ctx); err != nil {
		return nil, translate(err, "assignment", "count assignments")
	}
	if report.Completions, err = s.repos.Completions.Count(ctx); err != nil {
		return nil, translate(err, "completion", "count completions")
	}
	return report, nil
}
