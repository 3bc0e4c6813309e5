package memory

import (
	"alcyxob/gym-app/internal/domain"
	"alcyxob/gym-app/internal/repository"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestUniqueConstraints(t *testing.T) {
	ctx := context.Background()
	repos := NewRepositories()

	_, err := repos.Profiles.Create(ctx, &domain.Profile{Email: "Ana@Gym.test", PasswordHash: "x", Role: domain.RoleStudent})
	require.NoError(t, err)
	_, err = repos.Profiles.Create(ctx, &domain.Profile{Email: "ana@gym.test", PasswordHash: "y", Role: domain.RoleStudent})
	assert.ErrorIs(t, err, repository.ErrConflict)

	routineID := primitive.NewObjectID()
	_, err = repos.WorkoutDays.Create(ctx, &domain.WorkoutDay{RoutineID: routineID, WeekNumber: 1, DayNumber: 1})
	require.NoError(t, err)
	_, err = repos.WorkoutDays.Create(ctx, &domain.WorkoutDay{RoutineID: routineID, WeekNumber: 1, DayNumber: 1})
	assert.ErrorIs(t, err, repository.ErrConflict)

	studentID := primitive.NewObjectID()
	_, err = repos.Assignments.Create(ctx, &domain.RoutineAssignment{RoutineID: routineID, StudentID: studentID})
	require.NoError(t, err)
	_, err = repos.Assignments.Create(ctx, &domain.RoutineAssignment{RoutineID: routineID, StudentID: studentID})
	assert.ErrorIs(t, err, repository.ErrConflict)

	trainerID := primitive.NewObjectID()
	_, err = repos.Roster.Create(ctx, &domain.TrainerStudent{TrainerID: trainerID, StudentID: studentID})
	require.NoError(t, err)
	_, err = repos.Roster.Create(ctx, &domain.TrainerStudent{TrainerID: trainerID, StudentID: studentID})
	assert.ErrorIs(t, err, repository.ErrConflict)
}

func TestTransactionRollsBackOnError(t *testing.T) {
	ctx := context.Background()
	repos := NewRepositories()
	routineID, err := repos.Routines.Create(ctx, &domain.Routine{TrainerID: primitive.NewObjectID(), Name: "Base"})
	require.NoError(t, err)

	boom := errors.New("boom")
	err = repos.Tx.WithTransaction(ctx, func(ctx context.Context) error {
		if err := repos.Routines.Delete(ctx, routineID); err != nil {
			return err
		}
		_, err := repos.Routines.Create(ctx, &domain.Routine{TrainerID: primitive.NewObjectID(), Name: "Other"})
		require.NoError(t, err)
		return boom
	})
	assert.ErrorIs(t, err, boom)

	all, err := repos.Routines.ListAll(ctx)
	require.NoError(t, err)
	if assert.Len(t, all, 1) {
		assert.Equal(t, routineID, all[0].ID)
	}
}

func TestCompletionLogOrderAndDelete(t *testing.T) {
	ctx := context.Background()
	repos := NewRepositories()
	student, exercise := primitive.NewObjectID(), primitive.NewObjectID()

	for i := 0; i < 3; i++ {
		_, err := repos.Completions.Create(ctx, &domain.ExerciseCompletion{ExerciseID: exercise, StudentID: student})
		require.NoError(t, err)
	}
	log, err := repos.Completions.ListByStudentAndExercises(ctx, student, []primitive.ObjectID{exercise})
	require.NoError(t, err)
	require.Len(t, log, 3)
	assert.False(t, log[0].CompletedAt.Before(log[2].CompletedAt))

	n, err := repos.Completions.DeleteByExerciseAndStudent(ctx, exercise, student)
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)

	n, err = repos.Completions.DeleteByExerciseAndStudent(ctx, exercise, student)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestDeleteCommentsByTargets(t *testing.T) {
	ctx := context.Background()
	repos := NewRepositories()
	student := primitive.NewObjectID()
	routineID, dayID, exerciseID := primitive.NewObjectID(), primitive.NewObjectID(), primitive.NewObjectID()
	keepID := primitive.NewObjectID()

	targets := []domain.CommentTarget{
		domain.WeekTarget{RoutineID: routineID, WeekNumber: 2},
		domain.DayTarget{WorkoutDayID: dayID},
		domain.ExerciseTarget{ExerciseID: exerciseID},
		domain.ExerciseTarget{ExerciseID: keepID},
	}
	for _, target := range targets {
		_, err := repos.Comments.Create(ctx, &domain.Comment{StudentID: student, Target: target, Content: "note"})
		require.NoError(t, err)
	}

	err := repos.Comments.DeleteByTargets(ctx, routineID, []primitive.ObjectID{dayID}, []primitive.ObjectID{exerciseID})
	require.NoError(t, err)

	left, err := repos.Comments.ListByStudent(ctx, student)
	require.NoError(t, err)
	if assert.Len(t, left, 1) {
		assert.Equal(t, domain.ExerciseTarget{ExerciseID: keepID}, left[0].Target)
	}
}
