package service

import (
	"alcyxob/gym-app/internal/authz"
	"alcyxob/gym-app/internal/domain"
	"alcyxob/gym-app/internal/repository"
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// RosterService manages the trainer-student links that decide which students
// a trainer can assign routines to.
type RosterService interface {
	AddStudent(ctx context.Context, actor authz.Principal, trainerID primitive.ObjectID, studentEmail string) (*domain.Profile, error)
	RemoveStudent(ctx context.Context, actor authz.Principal, trainerID, studentID primitive.ObjectID) error
	ListStudents(ctx context.Context, actor authz.Principal, trainerID primitive.ObjectID) ([]domain.Profile, error)
}

type rosterService struct {
	profiles repository.ProfileRepository
	roster   repository.RosterRepository
}

func NewRosterService(repos repository.Repositories) RosterService {
	return &rosterService{profiles: repos.Profiles, roster: repos.Roster}
}

// AddStudent finds a student by email and links them to the trainer.
func (s *rosterService) AddStudent(ctx context.Context, actor authz.Principal, trainerID primitive.ObjectID, studentEmail string) (*domain.Profile, error) {
	if err := authz.Authorize(actor, authz.RosterResource{TrainerID: trainerID}, authz.ActionManage); err != nil {
		return nil, err
	}
	if studentEmail == "" {
		return nil, domain.NewValidationError("student email is required")
	}

	student, err := s.profiles.GetByEmail(ctx, studentEmail)
	if err != nil {
		return nil, translate(err, "student", "find student by email")
	}
	if !student.IsStudent() {
		return nil, domain.NewValidationError("user %s is not a student", student.Email)
	}

	_, err = s.roster.Create(ctx, &domain.TrainerStudent{TrainerID: trainerID, StudentID: student.ID})
	if errors.Is(err, repository.ErrConflict) {
		return nil, domain.NewConflictError("student already on roster")
	}
	if err != nil {
		return nil, translate(err, "roster link", "add student")
	}
	student.PasswordHash = ""
	return student, nil
}

// RemoveStudent unlinks the student. Existing assignments are kept.
func (s *rosterService) RemoveStudent(ctx context.Context, actor authz.Principal, trainerID, studentID primitive.ObjectID) error {
	if err := authz.Authorize(actor, authz.RosterResource{TrainerID: trainerID}, authz.ActionManage); err != nil {
		return err
	}
	return translate(s.roster.Delete(ctx, trainerID, studentID), "roster link", "remove student")
}

func (s *rosterService) ListStudents(ctx context.Context, actor authz.Principal, trainerID primitive.ObjectID) ([]domain.Profile, error) {
	if err := authz.Authorize(actor, authz.RosterResource{TrainerID: trainerID}, authz.ActionRead); err != nil {
		return nil, err
	}
	links, err := s.roster.ListByTrainer(ctx, trainerID)
	if err != nil {
		return nil, translate(err, "roster link", "list roster")
	}
	ids := make([]primitive.ObjectID, 0, len(links))
	for _, l := range links {
		ids = append(ids, l.StudentID)
	}
	students, err := s.profiles.GetByIDs(ctx, ids)
	if err != nil {
		return nil, translate(err, "profile", "load roster profiles")
	}
	for i := range students {
		students[i].PasswordHash = ""
	}
	return students, nil
}
