package service

import (
	"alcyxob/gym-app/internal/authz"
	"alcyxob/gym-app/internal/domain"
	"alcyxob/gym-app/internal/repository"
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// AssignmentService binds routines to students and controls what they see.
type AssignmentService interface {
	// AssignRoutine adds the students not yet assigned. Already assigned
	// students are left alone.
	AssignRoutine(ctx context.Context, actor authz.Principal, routineID primitive.ObjectID, studentIDs []primitive.ObjectID) ([]domain.RoutineAssignment, error)
	// SetAssignments makes the assigned set equal to studentIDs.
	SetAssignments(ctx context.Context, actor authz.Principal, routineID primitive.ObjectID, studentIDs []primitive.ObjectID) ([]domain.RoutineAssignment, error)
	Unassign(ctx context.Context, actor authz.Principal, routineID, studentID primitive.ObjectID) error
	ToggleVisible(ctx context.Context, actor authz.Principal, assignmentID primitive.ObjectID) (*domain.RoutineAssignment, error)
	ListForRoutine(ctx context.Context, actor authz.Principal, routineID primitive.ObjectID) ([]domain.RoutineAssignment, error)
	ListForStudent(ctx context.Context, actor authz.Principal, studentID primitive.ObjectID) ([]domain.AssignmentWithRoutine, error)
}

type assignmentService struct {
	repos repository.Repositories
}

func NewAssignmentService(repos repository.Repositories) AssignmentService {
	return &assignmentService{repos: repos}
}

func (s *assignmentService) AssignRoutine(ctx context.Context, actor authz.Principal, routineID primitive.ObjectID, studentIDs []primitive.ObjectID) ([]domain.RoutineAssignment, error) {
	routine, err := loadRoutine(ctx, s.repos, actor, routineID, authz.ActionManage)
	if err != nil {
		return nil, err
	}
	if err := checkAssignable(ctx, s.repos, actor, routine, studentIDs); err != nil {
		return nil, err
	}

	err = s.repos.Tx.WithTransaction(ctx, func(ctx context.Context) error {
		current, err := s.repos.Assignments.ListByRoutine(ctx, routineID)
		if err != nil {
			return translate(err, "assignment", "list assignments")
		}
		assigned := make(map[primitive.ObjectID]bool, len(current))
		for _, a := range current {
			assigned[a.StudentID] = true
		}
		for _, id := range studentIDs {
			if assigned[id] {
				continue
			}
			assigned[id] = true
			if err := createAssignment(ctx, s.repos.Assignments, routine, id); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.listByRoutine(ctx, routineID)
}

func (s *assignmentService) SetAssignments(ctx context.Context, actor authz.Principal, routineID primitive.ObjectID, studentIDs []primitive.ObjectID) ([]domain.RoutineAssignment, error) {
	routine, err := loadRoutine(ctx, s.repos, actor, routineID, authz.ActionManage)
	if err != nil {
		return nil, err
	}
	if err := checkAssignable(ctx, s.repos, actor, routine, studentIDs); err != nil {
		return nil, err
	}
	err = s.repos.Tx.WithTransaction(ctx, func(ctx context.Context) error {
		return syncAssignments(ctx, s.repos.Assignments, routine, studentIDs)
	})
	if err != nil {
		return nil, err
	}
	return s.listByRoutine(ctx, routineID)
}

func (s *assignmentService) Unassign(ctx context.Context, actor authz.Principal, routineID, studentID primitive.ObjectID) error {
	if _, err := loadRoutine(ctx, s.repos, actor, routineID, authz.ActionManage); err != nil {
		return err
	}
	err := s.repos.Assignments.DeleteByRoutineAndStudents(ctx, routineID, []primitive.ObjectID{studentID})
	return translate(err, "assignment", "unassign student")
}

// ToggleVisible flips the visibility flag; the assignment itself stays.
func (s *assignmentService) ToggleVisible(ctx context.Context, actor authz.Principal, assignmentID primitive.ObjectID) (*domain.RoutineAssignment, error) {
	assignment, err := s.repos.Assignments.GetByID(ctx, assignmentID)
	if err != nil {
		return nil, translate(err, "assignment", "get assignment")
	}
	res := authz.AssignmentResource{TrainerID: assignment.TrainerID, StudentID: assignment.StudentID}
	if err := authz.Authorize(actor, res, authz.ActionManage); err != nil {
		return nil, err
	}

	assignment.Visible = !assignment.Visible
	if err := s.repos.Assignments.SetVisible(ctx, assignment.ID, assignment.Visible); err != nil {
		return nil, translate(err, "assignment", "toggle visibility")
	}
	return assignment, nil
}

func (s *assignmentService) ListForRoutine(ctx context.Context, actor authz.Principal, routineID primitive.ObjectID) ([]domain.RoutineAssignment, error) {
	if _, err := loadRoutine(ctx, s.repos, actor, routineID, authz.ActionManage); err != nil {
		return nil, err
	}
	return s.listByRoutine(ctx, routineID)
}

// ListForStudent returns a student's assignments joined with their routines.
// Students only get the visible ones.
func (s *assignmentService) ListForStudent(ctx context.Context, actor authz.Principal, studentID primitive.ObjectID) ([]domain.AssignmentWithRoutine, error) {
	trainers, err := trainersOf(ctx, s.repos.Roster, studentID)
	if err != nil {
		return nil, err
	}
	if err := authz.Authorize(actor, authz.ProgressResource{StudentID: studentID, Trainers: trainers}, authz.ActionRead); err != nil {
		return nil, err
	}

	assignments, err := s.repos.Assignments.ListByStudent(ctx, studentID)
	if err != nil {
		return nil, translate(err, "assignment", "list student assignments")
	}

	var keep []domain.RoutineAssignment
	for _, a := range assignments {
		switch {
		case actor.Role == domain.RoleStudent && !a.Visible:
		case actor.Role == domain.RoleTrainer && a.TrainerID != actor.ID:
		default:
			keep = append(keep, a)
		}
	}

	routineIDs := make([]primitive.ObjectID, 0, len(keep))
	for _, a := range keep {
		routineIDs = append(routineIDs, a.RoutineID)
	}
	routines, err := s.repos.Routines.GetByIDs(ctx, routineIDs)
	if err != nil {
		return nil, translate(err, "routine", "load assigned routines")
	}
	byID := make(map[primitive.ObjectID]*domain.Routine, len(routines))
	for i := range routines {
		byID[routines[i].ID] = &routines[i]
	}

	out := make([]domain.AssignmentWithRoutine, 0, len(keep))
	for _, a := range keep {
		out = append(out, domain.AssignmentWithRoutine{RoutineAssignment: a, Routine: byID[a.RoutineID]})
	}
	return out, nil
}

func (s *assignmentService) listByRoutine(ctx context.Context, routineID primitive.ObjectID) ([]domain.RoutineAssignment, error) {
	out, err := s.repos.Assignments.ListByRoutine(ctx, routineID)
	return out, translate(err, "assignment", "list assignments")
}

// checkAssignable verifies every student exists, is a student and, unless the
// actor is an admin, is on the routine owner's roster. It does no writes.
func checkAssignable(ctx context.Context, repos repository.Repositories, actor authz.Principal, routine *domain.Routine, studentIDs []primitive.ObjectID) error {
	if len(studentIDs) == 0 {
		return nil
	}
	profiles, err := repos.Profiles.GetByIDs(ctx, studentIDs)
	if err != nil {
		return translate(err, "profile", "load students")
	}
	found := make(map[primitive.ObjectID]domain.Profile, len(profiles))
	for _, p := range profiles {
		found[p.ID] = p
	}
	for _, id := range studentIDs {
		p, ok := found[id]
		if !ok {
			return domain.NewNotFoundError("student " + id.Hex())
		}
		if !p.IsStudent() {
			return domain.NewValidationError("user %s is not a student", id.Hex())
		}
		if actor.IsAdmin() {
			continue
		}
		onRoster, err := repos.Roster.Exists(ctx, routine.TrainerID, id)
		if err != nil {
			return translate(err, "roster link", "check roster")
		}
		if !onRoster {
			return domain.NewAuthorizationError("student %s is not on your roster", id.Hex())
		}
	}
	return nil
}

// syncAssignments inserts missing assignments and deletes extras so the set
// of assigned students equals desired. Untouched assignments keep their ID
// and visibility.
func syncAssignments(ctx context.Context, assignments repository.AssignmentRepository, routine *domain.Routine, desired []primitive.ObjectID) error {
	current, err := assignments.ListByRoutine(ctx, routine.ID)
	if err != nil {
		return translate(err, "assignment", "list assignments")
	}

	want := make(map[primitive.ObjectID]bool, len(desired))
	for _, id := range desired {
		want[id] = true
	}
	have := make(map[primitive.ObjectID]bool, len(current))
	var extras []primitive.ObjectID
	for _, a := range current {
		have[a.StudentID] = true
		if !want[a.StudentID] {
			extras = append(extras, a.StudentID)
		}
	}

	if err := assignments.DeleteByRoutineAndStudents(ctx, routine.ID, extras); err != nil {
		return translate(err, "assignment", "remove assignments")
	}
	for _, id := range desired {
		if have[id] {
			continue
		}
		have[id] = true
		if err := createAssignment(ctx, assignments, routine, id); err != nil {
			return err
		}
	}
	return nil
}

func createAssignment(ctx context.Context, assignments repository.AssignmentRepository, routine *domain.Routine, studentID primitive.ObjectID) error {
	_, err := assignments.Create(ctx, &domain.RoutineAssignment{
		RoutineID: routine.ID,
		StudentID: studentID,
		TrainerID: routine.TrainerID,
		Visible:   true,
	})
	// a concurrent assign of the same pair already did the work
	if errors.Is(err, repository.ErrConflict) {
		return nil
	}
	return translate(err, "assignment", "create assignment")
}

// loadRoutine fetches a routine and checks actor may perform a on it.
// Students without a visible assignment get NotFound rather than an
// authorization error.
func loadRoutine(ctx context.Context, repos repository.Repositories, actor authz.Principal, routineID primitive.ObjectID, a authz.Action) (*domain.Routine, error) {
	routine, err := repos.Routines.GetByID(ctx, routineID)
	if err != nil {
		return nil, translate(err, "routine", "get routine")
	}
	res := authz.RoutineResource{TrainerID: routine.TrainerID}
	if actor.Role == domain.RoleStudent {
		visible, err := visibleStudents(ctx, repos.Assignments, routineID)
		if err != nil {
			return nil, err
		}
		res.VisibleStudents = visible
	}
	if !authz.CanAccess(actor, res, a) {
		if actor.Role == domain.RoleStudent && (a == authz.ActionRead || a == authz.ActionComplete || a == authz.ActionComment) {
			return nil, domain.NewNotFoundError("routine")
		}
		return nil, authz.Authorize(actor, res, a)
	}
	return routine, nil
}

func visibleStudents(ctx context.Context, assignments repository.AssignmentRepository, routineID primitive.ObjectID) ([]primitive.ObjectID, error) {
	list, err := assignments.ListByRoutine(ctx, routineID)
	if err != nil {
		return nil, translate(err, "assignment", "list assignments")
	}
	var ids []primitive.ObjectID
	for _, a := range list {
		if a.Visible {
			ids = append(ids, a.StudentID)
		}
	}
	return ids, nil
}
