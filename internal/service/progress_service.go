package service

import (
	"alcyxob/gym-app/internal/authz"
	"alcyxob/gym-app/internal/domain"
	"alcyxob/gym-app/internal/progress"
	"alcyxob/gym-app/internal/repository"
	"alcyxob/gym-app/internal/schedule"
	"context"
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// DayProgressView is a day's progress for one student, with the latest log
// entry of each completed exercise.
type DayProgressView struct {
	WorkoutDayID primitive.ObjectID `json:"workoutDayId"`
	progress.DayProgress
	Status      progress.DayStatus          `json:"status"`
	Completions []domain.ExerciseCompletion `json:"completions"`
}

// ProgressService records and reports exercise completions.
type ProgressService interface {
	MarkComplete(ctx context.Context, actor authz.Principal, exerciseID primitive.ObjectID, actual domain.ActualPerformance) (*domain.ExerciseCompletion, error)
	// UnmarkComplete deletes every completion of the exercise by the actor and
	// returns how many were removed. Unmarking twice is not an error.
	UnmarkComplete(ctx context.Context, actor authz.Principal, exerciseID primitive.ObjectID) (int64, error)
	DayProgress(ctx context.Context, actor authz.Principal, studentID, workoutDayID primitive.ObjectID) (*DayProgressView, error)
	RoutineProgress(ctx context.Context, actor authz.Principal, studentID, routineID primitive.ObjectID) ([]progress.WeekEntry, error)
	PerformanceLog(ctx context.Context, actor authz.Principal, studentID primitive.ObjectID) ([]domain.PerformanceEntry, error)
}

type progressService struct {
	repos repository.Repositories
}

func NewProgressService(repos repository.Repositories) ProgressService {
	return &progressService{repos: repos}
}

func (s *progressService) MarkComplete(ctx context.Context, actor authz.Principal, exerciseID primitive.ObjectID, actual domain.ActualPerformance) (*domain.ExerciseCompletion, error) {
	exercise, err := s.completable(ctx, actor, exerciseID)
	if err != nil {
		return nil, err
	}
	actual, err = normalizeActual(actual)
	if err != nil {
		return nil, err
	}

	completion := &domain.ExerciseCompletion{
		ExerciseID:        exercise.ID,
		StudentID:         actor.ID,
		WorkoutDayID:      exercise.WorkoutDayID,
		RoutineID:         exercise.RoutineID,
		ActualPerformance: actual,
	}
	if _, err := s.repos.Completions.Create(ctx, completion); err != nil {
		return nil, translate(err, "completion", "record completion")
	}
	return completion, nil
}

func (s *progressService) UnmarkComplete(ctx context.Context, actor authz.Principal, exerciseID primitive.ObjectID) (int64, error) {
	if _, err := s.completable(ctx, actor, exerciseID); err != nil {
		return 0, err
	}
	n, err := s.repos.Completions.DeleteByExerciseAndStudent(ctx, exerciseID, actor.ID)
	return n, translate(err, "completion", "delete completions")
}

// completable loads the exercise if actor is a student who currently sees
// its routine.
func (s *progressService) completable(ctx context.Context, actor authz.Principal, exerciseID primitive.ObjectID) (*domain.Exercise, error) {
	if err := authz.Authorize(actor, authz.ProgressResource{StudentID: actor.ID}, authz.ActionComplete); err != nil {
		return nil, err
	}
	exercise, err := s.repos.Exercises.GetByID(ctx, exerciseID)
	if err != nil {
		return nil, translate(err, "exercise", "get exercise")
	}
	if _, err := loadRoutine(ctx, s.repos, actor, exercise.RoutineID, authz.ActionComplete); err != nil {
		return nil, err
	}
	return exercise, nil
}

func (s *progressService) DayProgress(ctx context.Context, actor authz.Principal, studentID, workoutDayID primitive.ObjectID) (*DayProgressView, error) {
	if err := s.authorizeRead(ctx, actor, studentID); err != nil {
		return nil, err
	}
	day, err := s.repos.WorkoutDays.GetByID(ctx, workoutDayID)
	if err != nil {
		return nil, translate(err, "workout day", "get workout day")
	}
	if _, err := s.readableRoutine(ctx, actor, day.RoutineID); err != nil {
		return nil, err
	}

	exercises, err := s.repos.Exercises.ListByWorkoutDays(ctx, []primitive.ObjectID{day.ID})
	if err != nil {
		return nil, translate(err, "exercise", "list exercises")
	}
	completions, err := s.repos.Completions.ListByStudentAndExercises(ctx, studentID, exerciseIDsOf(exercises))
	if err != nil {
		return nil, translate(err, "completion", "load completions")
	}

	dp := progress.ComputeDayProgress(exercises, completions, studentID)
	latest := progress.LatestByExercise(completions)
	view := &DayProgressView{WorkoutDayID: day.ID, DayProgress: dp, Status: dp.Status()}
	for _, ex := range exercises {
		if c, ok := latest[ex.ID]; ok {
			view.Completions = append(view.Completions, c)
		}
	}
	return view, nil
}

func (s *progressService) RoutineProgress(ctx context.Context, actor authz.Principal, studentID, routineID primitive.ObjectID) ([]progress.WeekEntry, error) {
	if err := s.authorizeRead(ctx, actor, studentID); err != nil {
		return nil, err
	}
	routine, err := s.readableRoutine(ctx, actor, routineID)
	if err != nil {
		return nil, err
	}

	days, err := s.repos.WorkoutDays.ListByRoutine(ctx, routine.ID)
	if err != nil {
		return nil, translate(err, "workout day", "list workout days")
	}
	dayIDs := make([]primitive.ObjectID, 0, len(days))
	for _, d := range days {
		dayIDs = append(dayIDs, d.ID)
	}
	exercises, err := s.repos.Exercises.ListByWorkoutDays(ctx, dayIDs)
	if err != nil {
		return nil, translate(err, "exercise", "list exercises")
	}
	completions, err := s.repos.Completions.ListByStudentAndExercises(ctx, studentID, exerciseIDsOf(exercises))
	if err != nil {
		return nil, translate(err, "completion", "load completions")
	}
	return progress.ComputeRoutineProgress(schedule.WeeksFor(routine.DurationType), days, groupByDay(exercises), completions, studentID), nil
}

// PerformanceLog lists the student's completions, newest first. Trainers only
// see entries logged against their own routines.
func (s *progressService) PerformanceLog(ctx context.Context, actor authz.Principal, studentID primitive.ObjectID) ([]domain.PerformanceEntry, error) {
	if err := s.authorizeRead(ctx, actor, studentID); err != nil {
		return nil, err
	}
	completions, err := s.repos.Completions.ListByStudent(ctx, studentID)
	if err != nil {
		return nil, translate(err, "completion", "list completions")
	}

	exerciseIDs := make([]primitive.ObjectID, 0, len(completions))
	routineIDs := make([]primitive.ObjectID, 0, len(completions))
	for _, c := range completions {
		exerciseIDs = append(exerciseIDs, c.ExerciseID)
		routineIDs = append(routineIDs, c.RoutineID)
	}
	exercises, err := s.repos.Exercises.GetByIDs(ctx, exerciseIDs)
	if err != nil {
		return nil, translate(err, "exercise", "load exercises")
	}
	routines, err := s.repos.Routines.GetByIDs(ctx, routineIDs)
	if err != nil {
		return nil, translate(err, "routine", "load routines")
	}
	exerciseNames := make(map[primitive.ObjectID]string, len(exercises))
	for _, ex := range exercises {
		exerciseNames[ex.ID] = ex.Name
	}
	routinesByID := make(map[primitive.ObjectID]domain.Routine, len(routines))
	for _, r := range routines {
		routinesByID[r.ID] = r
	}

	out := make([]domain.PerformanceEntry, 0, len(completions))
	for _, c := range completions {
		routine := routinesByID[c.RoutineID]
		if actor.Role == domain.RoleTrainer && routine.TrainerID != actor.ID {
			continue
		}
		out = append(out, domain.PerformanceEntry{
			ExerciseCompletion: c,
			ExerciseName:       exerciseNames[c.ExerciseID],
			RoutineName:        routine.Name,
		})
	}
	return out, nil
}

func (s *progressService) authorizeRead(ctx context.Context, actor authz.Principal, studentID primitive.ObjectID) error {
	trainers, err := trainersOf(ctx, s.repos.Roster, studentID)
	if err != nil {
		return err
	}
	return authz.Authorize(actor, authz.ProgressResource{StudentID: studentID, Trainers: trainers}, authz.ActionRead)
}

// readableRoutine is loadRoutine for progress reads: trainers additionally
// need to own the routine, which ProgressResource alone does not check.
func (s *progressService) readableRoutine(ctx context.Context, actor authz.Principal, routineID primitive.ObjectID) (*domain.Routine, error) {
	return loadRoutine(ctx, s.repos, actor, routineID, authz.ActionRead)
}

// normalizeActual trims the free-text values, turns blanks into absent ones
// and rejects negative set counts.
func normalizeActual(in domain.ActualPerformance) (domain.ActualPerformance, error) {
	if in.ActualSets != nil && *in.ActualSets < 0 {
		return in, domain.NewValidationError("actual sets cannot be negative")
	}
	in.ActualReps = trimmedOrNil(in.ActualReps)
	in.ActualWeight = trimmedOrNil(in.ActualWeight)
	return in, nil
}

func trimmedOrNil(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}
