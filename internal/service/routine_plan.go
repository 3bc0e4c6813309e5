package service

import (
	"alcyxob/gym-app/internal/domain"
	"alcyxob/gym-app/internal/schedule"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// RoutineInput is a routine shell plus its nested days and exercises.
type RoutineInput struct {
	Name         string
	Description  string
	DurationType domain.DurationType
	StartDate    *time.Time
	Days         []DayInput

	// StudentIDs, when non-nil, is the desired set of assigned students.
	// nil leaves assignments untouched.
	StudentIDs []primitive.ObjectID
}

type DayInput struct {
	ID         *primitive.ObjectID // persisted day being edited, if any
	WeekNumber int
	DayNumber  int
	Name       string
	Exercises  []ExerciseInput
}

type ExerciseInput struct {
	ID                *primitive.ObjectID // persisted exercise being edited, if any
	Name              string
	SetConfigurations []domain.SetConfiguration
	VideoURL          string
	Notes             string
}

// plannedDay is a validated day that will exist after the write.
type plannedDay struct {
	id        *primitive.ObjectID
	coord     domain.Coordinate
	name      string
	exercises []domain.Exercise // ID set only for edited ones; OrderIndex assigned
}

type routinePlan struct {
	routine domain.Routine
	days    []plannedDay
}

// buildPlan validates in and normalizes it into the rows to persist.
// Exercises with a blank name are dropped; days left without exercises are
// rest days and produce no row.
func buildPlan(in RoutineInput) (*routinePlan, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, domain.NewValidationError("routine name is required")
	}
	if in.StartDate == nil || in.StartDate.IsZero() {
		return nil, domain.NewValidationError("start date is required")
	}
	duration, err := domain.ParseDurationType(string(in.DurationType))
	if err != nil {
		return nil, err
	}

	start := schedule.Date(*in.StartDate)
	plan := &routinePlan{
		routine: domain.Routine{
			Name:         name,
			Description:  strings.TrimSpace(in.Description),
			DurationType: duration,
			StartDate:    start,
			EndDate:      schedule.ComputeEndDate(start, duration),
		},
	}

	seen := map[domain.Coordinate]bool{}
	for _, d := range in.Days {
		exercises := planExercises(d.Exercises)
		if len(exercises) == 0 {
			continue
		}
		coord := domain.Coordinate{Week: d.WeekNumber, Day: d.DayNumber}
		if !schedule.ValidCoordinate(coord, duration) {
			return nil, domain.NewValidationError("day (week %d, day %d) is outside a %s routine", coord.Week, coord.Day, duration)
		}
		if seen[coord] {
			return nil, domain.NewValidationError("day (week %d, day %d) appears more than once", coord.Week, coord.Day)
		}
		seen[coord] = true
		plan.days = append(plan.days, plannedDay{
			id:        d.ID,
			coord:     coord,
			name:      strings.TrimSpace(d.Name),
			exercises: exercises,
		})
	}
	return plan, nil
}

func planExercises(inputs []ExerciseInput) []domain.Exercise {
	out := make([]domain.Exercise, 0, len(inputs))
	for _, in := range inputs {
		name := strings.TrimSpace(in.Name)
		if name == "" {
			continue
		}
		ex := domain.Exercise{
			Name:              name,
			SetConfigurations: normalizeSetConfigurations(in.SetConfigurations),
			VideoURL:          strings.TrimSpace(in.VideoURL),
			Notes:             strings.TrimSpace(in.Notes),
			OrderIndex:        len(out),
		}
		if in.ID != nil {
			ex.ID = *in.ID
		}
		// flat legacy fields mirror the first configuration
		first := ex.SetConfigurations[0]
		ex.Sets, ex.Reps, ex.Weight = first.Sets, first.Reps, first.Weight
		out = append(out, ex)
	}
	return out
}

// normalizeSetConfigurations drops configurations with no value at all,
// keeping a single empty one when nothing remains so the list is never empty.
func normalizeSetConfigurations(in []domain.SetConfiguration) []domain.SetConfiguration {
	out := make([]domain.SetConfiguration, 0, len(in))
	for _, c := range in {
		if !c.IsEmpty() {
			out = append(out, c)
		}
	}
	if len(out) == 0 {
		out = append(out, domain.SetConfiguration{})
	}
	return out
}

// syncPlan is the set of writes that turns the persisted days and exercises
// of a routine into the planned ones.
type syncPlan struct {
	deleteDayIDs      []primitive.ObjectID
	deleteExerciseIDs []primitive.ObjectID
	deletedVideoURLs  []string

	updateDays      []domain.WorkoutDay
	updateExercises []domain.Exercise
	// createExercises holds exercises of days that already exist.
	createExercises []domain.Exercise
	// createDays are days without a persisted row, with all their exercises.
	createDays []plannedDay
}

// planSync matches planned days to persisted ones by ID, else by (week, day),
// and exercises to persisted ones by ID within the matched day. Anything left
// unmatched on the persisted side is deleted; unmatched planned rows are new.
func planSync(existingDays []domain.WorkoutDay, existingExercises []domain.Exercise, planned []plannedDay) syncPlan {
	var plan syncPlan

	daysByID := make(map[primitive.ObjectID]domain.WorkoutDay, len(existingDays))
	daysByCoord := make(map[domain.Coordinate]primitive.ObjectID, len(existingDays))
	for _, d := range existingDays {
		daysByID[d.ID] = d
		daysByCoord[d.Coordinate()] = d.ID
	}
	exercisesByDay := make(map[primitive.ObjectID][]domain.Exercise)
	for _, ex := range existingExercises {
		exercisesByDay[ex.WorkoutDayID] = append(exercisesByDay[ex.WorkoutDayID], ex)
	}

	// First pass claims days matched by ID so a coordinate match cannot steal them.
	matched := make([]primitive.ObjectID, len(planned))
	claimed := map[primitive.ObjectID]bool{}
	for i, p := range planned {
		if p.id == nil {
			continue
		}
		if _, ok := daysByID[*p.id]; ok && !claimed[*p.id] {
			matched[i] = *p.id
			claimed[*p.id] = true
		}
	}
	for i, p := range planned {
		if matched[i] != primitive.NilObjectID {
			continue
		}
		if id, ok := daysByCoord[p.coord]; ok && !claimed[id] {
			matched[i] = id
			claimed[id] = true
		}
	}

	for _, d := range existingDays {
		if !claimed[d.ID] {
			plan.deleteDayIDs = append(plan.deleteDayIDs, d.ID)
			for _, ex := range exercisesByDay[d.ID] {
				plan.deleteExercise(ex)
			}
		}
	}

	for i, p := range planned {
		dayID := matched[i]
		if dayID == primitive.NilObjectID {
			for j := range p.exercises {
				p.exercises[j].ID = primitive.NilObjectID
			}
			plan.createDays = append(plan.createDays, p)
			continue
		}

		day := daysByID[dayID]
		if day.Coordinate() != p.coord || day.Name != p.name {
			day.WeekNumber, day.DayNumber, day.Name = p.coord.Week, p.coord.Day, p.name
			plan.updateDays = append(plan.updateDays, day)
		}

		persisted := make(map[primitive.ObjectID]domain.Exercise)
		for _, ex := range exercisesByDay[dayID] {
			persisted[ex.ID] = ex
		}
		kept := map[primitive.ObjectID]bool{}
		for _, ex := range p.exercises {
			ex.WorkoutDayID = dayID
			ex.RoutineID = day.RoutineID
			if old, ok := persisted[ex.ID]; ok && !kept[ex.ID] {
				kept[ex.ID] = true
				ex.CreatedAt = old.CreatedAt
				if old.VideoURL != "" && old.VideoURL != ex.VideoURL {
					plan.deletedVideoURLs = append(plan.deletedVideoURLs, old.VideoURL)
				}
				plan.updateExercises = append(plan.updateExercises, ex)
				continue
			}
			ex.ID = primitive.NilObjectID
			plan.createExercises = append(plan.createExercises, ex)
		}
		for _, ex := range exercisesByDay[dayID] {
			if !kept[ex.ID] {
				plan.deleteExercise(ex)
			}
		}
	}
	return plan
}

func (p *syncPlan) deleteExercise(ex domain.Exercise) {
	p.deleteExerciseIDs = append(p.deleteExerciseIDs, ex.ID)
	if ex.VideoURL != "" {
		p.deletedVideoURLs = append(p.deletedVideoURLs, ex.VideoURL)
	}
}
