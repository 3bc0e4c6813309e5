package repository

import (
	"alcyxob/gym-app/internal/domain" // Import our defined domain models
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive" // For using ObjectIDs
)

// Error constants for repository layer
var (
	ErrNotFound = RepositoryError("not found")
	ErrConflict = RepositoryError("duplicate key") // unique index violated
)

// RepositoryError helps distinguish repository errors
type RepositoryError string

func (e RepositoryError) Error() string {
	return string(e)
}

// Transactor runs fn so that either all of its writes are applied or none.
// Repository calls made with the ctx passed to fn join the transaction.
type Transactor interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// ProfileRepository defines the interface for interacting with user profiles.
type ProfileRepository interface {
	Create(ctx context.Context, profile *domain.Profile) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Profile, error)
	GetByEmail(ctx context.Context, email string) (*domain.Profile, error)
	GetByIDs(ctx context.Context, ids []primitive.ObjectID) ([]domain.Profile, error)
	List(ctx context.Context, role domain.Role) ([]domain.Profile, error) // empty role lists everyone
	Update(ctx context.Context, profile *domain.Profile) error
	UpdatePasswordHash(ctx context.Context, id primitive.ObjectID, hash string) error
	CountByRole(ctx context.Context) (map[domain.Role]int64, error)
}

// RoutineRepository defines the interface for interacting with routines.
type RoutineRepository interface {
	Create(ctx context.Context, routine *domain.Routine) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Routine, error)
	GetByIDs(ctx context.Context, ids []primitive.ObjectID) ([]domain.Routine, error)
	ListByTrainer(ctx context.Context, trainerID primitive.ObjectID) ([]domain.Routine, error)
	ListAll(ctx context.Context) ([]domain.Routine, error)
	Update(ctx context.Context, routine *domain.Routine) error
	Delete(ctx context.Context, id primitive.ObjectID) error
	Count(ctx context.Context) (int64, error)
}

// WorkoutDayRepository defines the interface for interacting with workout days.
type WorkoutDayRepository interface {
	Create(ctx context.Context, day *domain.WorkoutDay) (primitive.ObjectID, error) // ErrConflict on a taken (week, day)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.WorkoutDay, error)
	ListByRoutine(ctx context.Context, routineID primitive.ObjectID) ([]domain.WorkoutDay, error) // sorted by week, day
	Update(ctx context.Context, day *domain.WorkoutDay) error
	DeleteByIDs(ctx context.Context, ids []primitive.ObjectID) error
}

// ExerciseRepository defines the interface for interacting with exercises.
type ExerciseRepository interface {
	Create(ctx context.Context, exercise *domain.Exercise) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Exercise, error)
	GetByIDs(ctx context.Context, ids []primitive.ObjectID) ([]domain.Exercise, error)
	ListByWorkoutDays(ctx context.Context, dayIDs []primitive.ObjectID) ([]domain.Exercise, error) // sorted by orderIndex
	Update(ctx context.Context, exercise *domain.Exercise) error
	DeleteByIDs(ctx context.Context, ids []primitive.ObjectID) error
}

// AssignmentRepository defines the interface for interacting with routine assignments.
type AssignmentRepository interface {
	Create(ctx context.Context, assignment *domain.RoutineAssignment) (primitive.ObjectID, error) // ErrConflict on duplicate pair
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.RoutineAssignment, error)
	ListByRoutine(ctx context.Context, routineID primitive.ObjectID) ([]domain.RoutineAssignment, error)
	ListByStudent(ctx context.Context, studentID primitive.ObjectID) ([]domain.RoutineAssignment, error)
	SetVisible(ctx context.Context, id primitive.ObjectID, visible bool) error
	DeleteByRoutineAndStudents(ctx context.Context, routineID primitive.ObjectID, studentIDs []primitive.ObjectID) error
	DeleteByRoutine(ctx context.Context, routineID primitive.ObjectID) error
	Count(ctx context.Context) (int64, error)
}

// CompletionRepository defines the interface for the exercise completion log.
type CompletionRepository interface {
	Create(ctx context.Context, completion *domain.ExerciseCompletion) (primitive.ObjectID, error)
	ListByStudentAndExercises(ctx context.Context, studentID primitive.ObjectID, exerciseIDs []primitive.ObjectID) ([]domain.ExerciseCompletion, error)
	ListByStudent(ctx context.Context, studentID primitive.ObjectID) ([]domain.ExerciseCompletion, error) // newest first
	DeleteByExerciseAndStudent(ctx context.Context, exerciseID, studentID primitive.ObjectID) (int64, error)
	DeleteByExercises(ctx context.Context, exerciseIDs []primitive.ObjectID) error
	Count(ctx context.Context) (int64, error)
}

// CommentRepository defines the interface for student comments.
type CommentRepository interface {
	Create(ctx context.Context, comment *domain.Comment) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Comment, error)
	ListByStudent(ctx context.Context, studentID primitive.ObjectID) ([]domain.Comment, error) // newest first
	Delete(ctx context.Context, id primitive.ObjectID) error
	// DeleteByTargets removes comments on any of the given weeks' routine, days or exercises.
	DeleteByTargets(ctx context.Context, routineID primitive.ObjectID, dayIDs, exerciseIDs []primitive.ObjectID) error
}

// RosterRepository defines the interface for trainer-student links.
type RosterRepository interface {
	Create(ctx context.Context, link *domain.TrainerStudent) (primitive.ObjectID, error) // ErrConflict on duplicate pair
	Delete(ctx context.Context, trainerID, studentID primitive.ObjectID) error
	ListByTrainer(ctx context.Context, trainerID primitive.ObjectID) ([]domain.TrainerStudent, error)
	ListByStudent(ctx context.Context, studentID primitive.ObjectID) ([]domain.TrainerStudent, error)
	Exists(ctx context.Context, trainerID, studentID primitive.ObjectID) (bool, error)
}

// Repositories bundles every repository plus the transactor of one backend.
type Repositories struct {
	Profiles    ProfileRepository
	Routines    RoutineRepository
	WorkoutDays WorkoutDayRepository
	Exercises   ExerciseRepository
	Assignments AssignmentRepository
	Completions CompletionRepository
	Comments    CommentRepository
	Roster      RosterRepository
	Tx          Transactor
}
