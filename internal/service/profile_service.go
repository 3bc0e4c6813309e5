package service

import (
	"alcyxob/gym-app/internal/authz"
	"alcyxob/gym-app/internal/domain"
	"alcyxob/gym-app/internal/repository"
	"context"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ProfilePatch carries the fields to change; nil leaves a field untouched.
type ProfilePatch struct {
	FullName  *string
	AvatarURL *string

	Objective        *string
	BirthDate        *time.Time
	Gender           *domain.Gender
	HeightCM         *float64
	WeightKG         *float64
	ExperienceLevel  *domain.ExperienceLevel
	Injuries         *string
	MedicalNotes     *string
	DesiredFrequency *int
	Notes            *string
}

func (p ProfilePatch) touchesStudentAttributes() bool {
	return p.Objective != nil || p.BirthDate != nil || p.Gender != nil || p.HeightCM != nil ||
		p.WeightKG != nil || p.ExperienceLevel != nil || p.Injuries != nil || p.MedicalNotes != nil ||
		p.DesiredFrequency != nil || p.Notes != nil
}

func (p ProfilePatch) validate() error {
	if p.FullName != nil && strings.TrimSpace(*p.FullName) == "" {
		return domain.NewValidationError("full name cannot be empty")
	}
	if p.Gender != nil && !p.Gender.Valid() {
		return domain.NewValidationError("gender must be one of male, female, other")
	}
	if p.ExperienceLevel != nil && !p.ExperienceLevel.Valid() {
		return domain.NewValidationError("experience level must be one of beginner, intermediate, advanced")
	}
	if p.HeightCM != nil && *p.HeightCM <= 0 {
		return domain.NewValidationError("height must be positive")
	}
	if p.WeightKG != nil && *p.WeightKG <= 0 {
		return domain.NewValidationError("weight must be positive")
	}
	if p.DesiredFrequency != nil && (*p.DesiredFrequency < 1 || *p.DesiredFrequency > 7) {
		return domain.NewValidationError("desired frequency must be between 1 and 7 days a week")
	}
	return nil
}

func (p ProfilePatch) apply(profile *domain.Profile) {
	if p.FullName != nil {
		profile.FullName = strings.TrimSpace(*p.FullName)
	}
	if p.AvatarURL != nil {
		profile.AvatarURL = *p.AvatarURL
	}
	attrs := &profile.StudentAttributes
	setIf(&attrs.Objective, p.Objective)
	setIf(&attrs.BirthDate, p.BirthDate)
	setIf(&attrs.Gender, p.Gender)
	setIf(&attrs.HeightCM, p.HeightCM)
	setIf(&attrs.WeightKG, p.WeightKG)
	setIf(&attrs.ExperienceLevel, p.ExperienceLevel)
	setIf(&attrs.Injuries, p.Injuries)
	setIf(&attrs.MedicalNotes, p.MedicalNotes)
	setIf(&attrs.DesiredFrequency, p.DesiredFrequency)
	setIf(&attrs.Notes, p.Notes)
}

func setIf[T any](dst **T, v *T) {
	if v != nil {
		*dst = v
	}
}

type ProfileService interface {
	GetProfile(ctx context.Context, actor authz.Principal, id primitive.ObjectID) (*domain.Profile, error)
	UpdateProfile(ctx context.Context, actor authz.Principal, id primitive.ObjectID, patch ProfilePatch) (*domain.Profile, error)
	CompleteOnboarding(ctx context.Context, actor authz.Principal) (*domain.Profile, error)
}

type profileService struct {
	profiles repository.ProfileRepository
	roster   repository.RosterRepository
}

func NewProfileService(repos repository.Repositories) ProfileService {
	return &profileService{profiles: repos.Profiles, roster: repos.Roster}
}

// loadProfile fetches id and checks actor may perform a on it.
func (s *profileService) loadProfile(ctx context.Context, actor authz.Principal, id primitive.ObjectID, a authz.Action) (*domain.Profile, error) {
	profile, err := s.profiles.GetByID(ctx, id)
	if err != nil {
		return nil, translate(err, "profile", "get profile")
	}
	trainers, err := trainersOf(ctx, s.roster, id)
	if err != nil {
		return nil, err
	}
	res := authz.ProfileResource{UserID: profile.ID, Role: profile.Role, Trainers: trainers}
	if err := authz.Authorize(actor, res, a); err != nil {
		return nil, err
	}
	profile.PasswordHash = ""
	return profile, nil
}

func (s *profileService) GetProfile(ctx context.Context, actor authz.Principal, id primitive.ObjectID) (*domain.Profile, error) {
	return s.loadProfile(ctx, actor, id, authz.ActionRead)
}

func (s *profileService) UpdateProfile(ctx context.Context, actor authz.Principal, id primitive.ObjectID, patch ProfilePatch) (*domain.Profile, error) {
	profile, err := s.loadProfile(ctx, actor, id, authz.ActionWrite)
	if err != nil {
		return nil, err
	}
	if err := patch.validate(); err != nil {
		return nil, err
	}
	if patch.touchesStudentAttributes() && !profile.IsStudent() {
		return nil, domain.NewValidationError("evaluation attributes only apply to students")
	}

	patch.apply(profile)
	if err := s.profiles.Update(ctx, profile); err != nil {
		return nil, translate(err, "profile", "update profile")
	}
	return profile, nil
}

func (s *profileService) CompleteOnboarding(ctx context.Context, actor authz.Principal) (*domain.Profile, error) {
	profile, err := s.loadProfile(ctx, actor, actor.ID, authz.ActionWrite)
	if err != nil {
		return nil, err
	}
	if profile.OnboardingCompleted {
		return profile, nil
	}
	profile.OnboardingCompleted = true
	if err := s.profiles.Update(ctx, profile); err != nil {
		return nil, translate(err, "profile", "complete onboarding")
	}
	return profile, nil
}

// trainersOf lists the trainers that have studentID on their roster.
func trainersOf(ctx context.Context, roster repository.RosterRepository, studentID primitive.ObjectID) ([]primitive.ObjectID, error) {
	links, err := roster.ListByStudent(ctx, studentID)
	if err != nil {
		return nil, translate(err, "roster link", "list trainers of student")
	}
	ids := make([]primitive.ObjectID, 0, len(links))
	for _, l := range links {
		ids = append(ids, l.TrainerID)
	}
	return ids, nil
}
