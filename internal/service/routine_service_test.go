package service

import (
	"alcyxob/gym-app/internal/domain"
	"alcyxob/gym-app/internal/progress"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestRoutineService_Create(t *testing.T) {
	f := newFixture(t)
	in := beginnerInput()
	in.Days = append(in.Days,
		// rest day: nothing but blank exercises
		DayInput{WeekNumber: 1, DayNumber: 3, Exercises: []ExerciseInput{{Name: "  "}}},
	)
	in.Days[0].Exercises = append(in.Days[0].Exercises, ExerciseInput{Name: ""})

	detail := f.createRoutine(t, in)

	assert.Equal(t, "Strength - Beginners", detail.Name)
	assert.Equal(t, f.trainer.ID, detail.TrainerID)
	assert.Equal(t, time.Date(2024, time.January, 28, 0, 0, 0, 0, time.UTC), detail.EndDate)
	require.Len(t, detail.Days, 2)
	assert.Equal(t, domain.Coordinate{Week: 1, Day: 1}, detail.Days[0].Coordinate())
	require.Len(t, detail.Days[0].Exercises, 2)
	assert.Equal(t, "Bench press", detail.Days[0].Exercises[0].Name)
	assert.Equal(t, 0, detail.Days[0].Exercises[0].OrderIndex)
	assert.Equal(t, 1, detail.Days[0].Exercises[1].OrderIndex)
	assert.Equal(t, 3, *detail.Days[0].Exercises[0].Sets)
}

func TestRoutineService_CreateValidation(t *testing.T) {
	f := newFixture(t)

	tests := []struct {
		name   string
		mutate func(*RoutineInput)
	}{
		{"missing name", func(in *RoutineInput) { in.Name = " " }},
		{"missing start date", func(in *RoutineInput) { in.StartDate = nil }},
		{"unknown duration", func(in *RoutineInput) { in.DurationType = "year" }},
		{"week past the duration", func(in *RoutineInput) { in.Days[0].WeekNumber = 5 }},
		{"duplicate day", func(in *RoutineInput) { in.Days[1].DayNumber = 1 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := beginnerInput()
			tt.mutate(&in)
			_, err := f.routines.Create(f.ctx, f.trainer, in)
			requireKind(t, err, domain.KindValidation)
		})
	}

	all, err := f.repos.Routines.ListAll(f.ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestRoutineService_CreateRequiresTrainer(t *testing.T) {
	f := newFixture(t)
	student := f.student(t, "ana@gym.test")

	_, err := f.routines.Create(f.ctx, student, beginnerInput())
	requireKind(t, err, domain.KindAuthorization)
	_, err = f.routines.Create(f.ctx, f.admin, beginnerInput())
	requireKind(t, err, domain.KindAuthorization)
}

func TestRoutineService_UpdateKeepsSurvivingIDs(t *testing.T) {
	f := newFixture(t)
	student := f.student(t, "ana@gym.test")
	created := f.createRoutine(t, beginnerInput())
	_, err := f.assignments.AssignRoutine(f.ctx, f.trainer, created.ID, []primitive.ObjectID{student.ID})
	require.NoError(t, err)

	push := created.Days[0]
	bench := push.Exercises[0]
	row := created.Days[1].Exercises[0]
	_, err = f.progress.MarkComplete(f.ctx, student, bench.ID, domain.ActualPerformance{})
	require.NoError(t, err)
	_, err = f.progress.MarkComplete(f.ctx, student, row.ID, domain.ActualPerformance{})
	require.NoError(t, err)

	// W1D1/W1D2 becomes W1D1/W1D3: the pull day is dropped, a legs day appears.
	in := inputFrom(created)
	in.Name = "Strength - Beginners v2"
	in.Days[0].Exercises[1].Name = "Dips"
	in.Days[1] = DayInput{WeekNumber: 1, DayNumber: 3, Name: "Legs", Exercises: []ExerciseInput{exercise("Squat")}}

	updated, err := f.routines.Update(f.ctx, f.trainer, created.ID, in)
	require.NoError(t, err)

	assert.Equal(t, "Strength - Beginners v2", updated.Name)
	require.Len(t, updated.Days, 2)
	assert.Equal(t, push.ID, updated.Days[0].ID)
	assert.Equal(t, bench.ID, updated.Days[0].Exercises[0].ID)
	assert.Equal(t, push.Exercises[1].ID, updated.Days[0].Exercises[1].ID)
	assert.Equal(t, "Dips", updated.Days[0].Exercises[1].Name)
	assert.Equal(t, domain.Coordinate{Week: 1, Day: 3}, updated.Days[1].Coordinate())
	assert.NotEqual(t, created.Days[1].ID, updated.Days[1].ID)

	_, err = f.repos.WorkoutDays.GetByID(f.ctx, created.Days[1].ID)
	assert.Error(t, err, "dropped day must be gone")
	_, err = f.repos.Exercises.GetByID(f.ctx, row.ID)
	assert.Error(t, err, "exercises of the dropped day must be gone")

	completions, err := f.repos.Completions.ListByStudent(f.ctx, student.ID)
	require.NoError(t, err)
	require.Len(t, completions, 1, "only the completion of the dropped exercise is removed")
	assert.Equal(t, bench.ID, completions[0].ExerciseID)

	// assignments are untouched when StudentIDs is nil
	assert.Len(t, updated.Assignments, 1)
}

func TestRoutineService_UpdateSwapsDays(t *testing.T) {
	f := newFixture(t)
	created := f.createRoutine(t, beginnerInput())

	in := inputFrom(created)
	in.Days[0].DayNumber, in.Days[1].DayNumber = 2, 1

	updated, err := f.routines.Update(f.ctx, f.trainer, created.ID, in)
	require.NoError(t, err)
	require.Len(t, updated.Days, 2)
	// days come back sorted by coordinate
	assert.Equal(t, created.Days[1].ID, updated.Days[0].ID)
	assert.Equal(t, "Pull", updated.Days[0].Name)
	assert.Equal(t, created.Days[0].ID, updated.Days[1].ID)
	assert.Equal(t, 2, updated.Days[1].DayNumber)
	assert.ElementsMatch(t, exerciseIDs(created), exerciseIDs(updated))
}

func TestRoutineService_UpdateByCoordinateWithoutIDs(t *testing.T) {
	f := newFixture(t)
	created := f.createRoutine(t, beginnerInput())

	in := beginnerInput()
	updated, err := f.routines.Update(f.ctx, f.trainer, created.ID, in)
	require.NoError(t, err)
	assert.Equal(t, created.Days[0].ID, updated.Days[0].ID)
	// exercises carry no IDs, so they are recreated
	assert.NotEqual(t, created.Days[0].Exercises[0].ID, updated.Days[0].Exercises[0].ID)

	exercises, err := f.repos.Exercises.ListByWorkoutDays(f.ctx, []primitive.ObjectID{updated.Days[0].ID, updated.Days[1].ID})
	require.NoError(t, err)
	assert.Len(t, exercises, 3, "old exercises must not linger")
}

func TestRoutineService_UpdateRejectsOtherTrainer(t *testing.T) {
	f := newFixture(t)
	created := f.createRoutine(t, beginnerInput())
	other := f.user(t, "other@gym.test", domain.RoleTrainer)

	_, err := f.routines.Update(f.ctx, other, created.ID, inputFrom(created))
	requireKind(t, err, domain.KindAuthorization)

	_, err = f.routines.Update(f.ctx, f.admin, created.ID, inputFrom(created))
	assert.NoError(t, err)
}

func TestRoutineService_GetAndList(t *testing.T) {
	f := newFixture(t)
	student := f.student(t, "ana@gym.test")
	outsider := f.user(t, "bob@gym.test", domain.RoleStudent)
	created := f.createRoutine(t, beginnerInput())

	_, err := f.routines.Get(f.ctx, student, created.ID)
	requireKind(t, err, domain.KindNotFound)

	assigned, err := f.assignments.AssignRoutine(f.ctx, f.trainer, created.ID, []primitive.ObjectID{student.ID})
	require.NoError(t, err)

	got, err := f.routines.Get(f.ctx, student, created.ID)
	require.NoError(t, err)
	assert.Len(t, got.Days, 2)
	assert.Empty(t, got.Assignments, "students do not see the assignment list")

	got, err = f.routines.Get(f.ctx, f.trainer, created.ID)
	require.NoError(t, err)
	assert.Len(t, got.Assignments, 1)

	_, err = f.routines.Get(f.ctx, outsider, created.ID)
	requireKind(t, err, domain.KindNotFound)

	list, err := f.routines.List(f.ctx, student)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	// hiding the assignment hides the routine
	_, err = f.assignments.ToggleVisible(f.ctx, f.trainer, assigned[0].ID)
	require.NoError(t, err)
	list, err = f.routines.List(f.ctx, student)
	require.NoError(t, err)
	assert.Empty(t, list)
	_, err = f.routines.Get(f.ctx, student, created.ID)
	requireKind(t, err, domain.KindNotFound)

	other := f.user(t, "other@gym.test", domain.RoleTrainer)
	list, err = f.routines.List(f.ctx, other)
	require.NoError(t, err)
	assert.Empty(t, list)
	list, err = f.routines.List(f.ctx, f.admin)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestRoutineService_DeleteCascades(t *testing.T) {
	f := newFixture(t)
	student := f.student(t, "ana@gym.test")
	created := f.createRoutine(t, beginnerInput())
	_, err := f.assignments.AssignRoutine(f.ctx, f.trainer, created.ID, []primitive.ObjectID{student.ID})
	require.NoError(t, err)

	bench := created.Days[0].Exercises[0]
	_, err = f.progress.MarkComplete(f.ctx, student, bench.ID, domain.ActualPerformance{})
	require.NoError(t, err)
	_, err = f.comments.AddComment(f.ctx, student, domain.WeekTarget{RoutineID: created.ID, WeekNumber: 1}, "Tough week")
	require.NoError(t, err)
	_, err = f.comments.AddComment(f.ctx, student, domain.ExerciseTarget{ExerciseID: bench.ID}, "Shoulder felt off")
	require.NoError(t, err)

	require.NoError(t, f.routines.Delete(f.ctx, f.trainer, created.ID))

	_, err = f.repos.Routines.GetByID(f.ctx, created.ID)
	assert.Error(t, err)
	days, err := f.repos.WorkoutDays.ListByRoutine(f.ctx, created.ID)
	require.NoError(t, err)
	assert.Empty(t, days)
	exercises, err := f.repos.Exercises.GetByIDs(f.ctx, exerciseIDs(created))
	require.NoError(t, err)
	assert.Empty(t, exercises)
	assignments, err := f.repos.Assignments.ListByStudent(f.ctx, student.ID)
	require.NoError(t, err)
	assert.Empty(t, assignments)
	completions, err := f.repos.Completions.ListByStudent(f.ctx, student.ID)
	require.NoError(t, err)
	assert.Empty(t, completions)
	comments, err := f.repos.Comments.ListByStudent(f.ctx, student.ID)
	require.NoError(t, err)
	assert.Empty(t, comments)
}

func TestRoutineService_DeleteRejectsStudent(t *testing.T) {
	f := newFixture(t)
	student := f.student(t, "ana@gym.test")
	created := f.createRoutine(t, beginnerInput())

	err := f.routines.Delete(f.ctx, student, created.ID)
	require.Error(t, err)
	_, err = f.repos.Routines.GetByID(f.ctx, created.ID)
	assert.NoError(t, err)
}

func TestRoutineService_TodayView(t *testing.T) {
	f := newFixture(t)
	student := f.student(t, "ana@gym.test")
	created := f.createRoutine(t, beginnerInput())
	_, err := f.assignments.AssignRoutine(f.ctx, f.trainer, created.ID, []primitive.ObjectID{student.ID})
	require.NoError(t, err)
	_, err = f.progress.MarkComplete(f.ctx, student, created.Days[0].Exercises[0].ID, domain.ActualPerformance{})
	require.NoError(t, err)

	t.Run("training day", func(t *testing.T) {
		view, err := f.routines.TodayView(f.ctx, student, created.ID, *date(2024, time.January, 1))
		require.NoError(t, err)
		assert.True(t, view.Active)
		assert.False(t, view.Rest)
		require.NotNil(t, view.Day)
		assert.Equal(t, created.Days[0].ID, view.Day.ID)
		assert.Equal(t, &progress.DayProgress{Completed: 1, Total: 2}, view.Progress)
	})

	t.Run("rest day", func(t *testing.T) {
		// Wednesday of week 2 has no row
		view, err := f.routines.TodayView(f.ctx, student, created.ID, *date(2024, time.January, 10))
		require.NoError(t, err)
		assert.True(t, view.Active)
		assert.True(t, view.Rest)
		assert.Equal(t, &domain.Coordinate{Week: 2, Day: 3}, view.Coordinate)
		assert.Nil(t, view.Day)
	})

	t.Run("outside the range", func(t *testing.T) {
		view, err := f.routines.TodayView(f.ctx, student, created.ID, *date(2024, time.January, 29))
		require.NoError(t, err)
		assert.False(t, view.Active)
		assert.Nil(t, view.Coordinate)
	})

	t.Run("trainer sees no progress", func(t *testing.T) {
		view, err := f.routines.TodayView(f.ctx, f.trainer, created.ID, *date(2024, time.January, 1))
		require.NoError(t, err)
		require.NotNil(t, view.Day)
		assert.Nil(t, view.Progress)
	})
}

func TestRoutineService_VideoUploadNeedsStorage(t *testing.T) {
	f := newFixture(t)
	created := f.createRoutine(t, beginnerInput())

	_, err := f.routines.RequestVideoUploadURL(f.ctx, f.trainer, created.ID, "squat.mp4", "video/mp4")
	requireKind(t, err, domain.KindValidation)
}
