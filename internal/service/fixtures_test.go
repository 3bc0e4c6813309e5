package service

import (
	"alcyxob/gym-app/internal/authz"
	"alcyxob/gym-app/internal/domain"
	"alcyxob/gym-app/internal/repository"
	"alcyxob/gym-app/internal/repository/memory"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type fixture struct {
	ctx   context.Context
	repos repository.Repositories

	routines    RoutineService
	assignments AssignmentService
	progress    ProgressService
	comments    CommentService

	trainer authz.Principal
	admin   authz.Principal
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{ctx: context.Background(), repos: memory.NewRepositories()}
	f.routines = NewRoutineService(f.repos, nil)
	f.assignments = NewAssignmentService(f.repos)
	f.progress = NewProgressService(f.repos)
	f.comments = NewCommentService(f.repos)
	f.trainer = f.user(t, "coach@gym.test", domain.RoleTrainer)
	f.admin = f.user(t, "admin@gym.test", domain.RoleAdmin)
	return f
}

func (f *fixture) user(t *testing.T, email string, role domain.Role) authz.Principal {
	t.Helper()
	id, err := f.repos.Profiles.Create(f.ctx, &domain.Profile{
		Email:        email,
		FullName:     email,
		PasswordHash: "unused",
		Role:         role,
	})
	require.NoError(t, err)
	return authz.Principal{ID: id, Role: role}
}

// student creates a student on the fixture trainer's roster.
func (f *fixture) student(t *testing.T, email string) authz.Principal {
	t.Helper()
	p := f.user(t, email, domain.RoleStudent)
	_, err := f.repos.Roster.Create(f.ctx, &domain.TrainerStudent{TrainerID: f.trainer.ID, StudentID: p.ID})
	require.NoError(t, err)
	return p
}

func date(y int, m time.Month, d int) *time.Time {
	t := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return &t
}

func ptr[T any](v T) *T { return &v }

func exercise(name string) ExerciseInput {
	return ExerciseInput{
		Name:              name,
		SetConfigurations: []domain.SetConfiguration{{Sets: ptr(3), Reps: ptr("10"), Weight: ptr("40kg")}},
	}
}

// beginnerInput is a month-long routine starting Monday 2024-01-01 with
// two training days in week one.
func beginnerInput() RoutineInput {
	return RoutineInput{
		Name:         "Strength - Beginners",
		DurationType: domain.DurationMonth,
		StartDate:    date(2024, time.January, 1),
		Days: []DayInput{
			{WeekNumber: 1, DayNumber: 1, Name: "Push", Exercises: []ExerciseInput{exercise("Bench press"), exercise("Overhead press")}},
			{WeekNumber: 1, DayNumber: 2, Name: "Pull", Exercises: []ExerciseInput{exercise("Row")}},
		},
	}
}

func (f *fixture) createRoutine(t *testing.T, in RoutineInput) *RoutineDetail {
	t.Helper()
	detail, err := f.routines.Create(f.ctx, f.trainer, in)
	require.NoError(t, err)
	return detail
}

// inputFrom turns a stored routine back into an edit payload carrying IDs.
func inputFrom(detail *RoutineDetail) RoutineInput {
	start := detail.StartDate
	in := RoutineInput{
		Name:         detail.Name,
		Description:  detail.Description,
		DurationType: detail.DurationType,
		StartDate:    &start,
	}
	for _, d := range detail.Days {
		dayID := d.ID
		day := DayInput{ID: &dayID, WeekNumber: d.WeekNumber, DayNumber: d.DayNumber, Name: d.Name}
		for _, ex := range d.Exercises {
			exID := ex.ID
			day.Exercises = append(day.Exercises, ExerciseInput{
				ID:                &exID,
				Name:              ex.Name,
				SetConfigurations: ex.SetConfigurations,
				VideoURL:          ex.VideoURL,
				Notes:             ex.Notes,
			})
		}
		in.Days = append(in.Days, day)
	}
	return in
}

func exerciseIDs(detail *RoutineDetail) []primitive.ObjectID {
	var ids []primitive.ObjectID
	for _, d := range detail.Days {
		ids = append(ids, exerciseIDsOf(d.Exercises)...)
	}
	return ids
}

func requireKind(t *testing.T, err error, kind domain.ErrorKind) {
	t.Helper()
	require.Error(t, err)
	require.Equal(t, kind, domain.KindOf(err), "unexpected error: %v", err)
}
