// Package progress computes completion ratios from a student's performance log.
package progress

import (
	"alcyxob/gym-app/internal/domain"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// DayStatus drives the navigation badges of the routine viewer.
type DayStatus string

const (
	StatusCompleted DayStatus = "completed"
	StatusPartial   DayStatus = "partial"
	StatusNone      DayStatus = "none"
)

type DayProgress struct {
	Completed int `json:"completed"`
	Total     int `json:"total"`
}

func (p DayProgress) Status() DayStatus {
	switch {
	case p.Total > 0 && p.Completed == p.Total:
		return StatusCompleted
	case p.Completed > 0 && p.Completed < p.Total:
		return StatusPartial
	}
	return StatusNone
}

// Ratio returns completed/total, 0 for an empty day.
func (p DayProgress) Ratio() float64 {
	if p.Total == 0 {
		return 0
	}
	return float64(p.Completed) / float64(p.Total)
}

func (p DayProgress) add(o DayProgress) DayProgress {
	return DayProgress{Completed: p.Completed + o.Completed, Total: p.Total + o.Total}
}

// CompletedSet returns the ids of exercises that have at least one
// completion by studentID.
func CompletedSet(completions []domain.ExerciseCompletion, studentID primitive.ObjectID) map[primitive.ObjectID]bool {
	done := make(map[primitive.ObjectID]bool, len(completions))
	for _, c := range completions {
		if c.StudentID == studentID {
			done[c.ExerciseID] = true
		}
	}
	return done
}

// ComputeDayProgress counts the day's exercises and how many of them the
// student has completed. Completions of exercises outside the day are ignored,
// so 0 <= Completed <= Total always holds.
func ComputeDayProgress(exercises []domain.Exercise, completions []domain.ExerciseCompletion, studentID primitive.ObjectID) DayProgress {
	done := CompletedSet(completions, studentID)
	p := DayProgress{Total: len(exercises)}
	for _, ex := range exercises {
		if done[ex.ID] {
			p.Completed++
		}
	}
	return p
}

// LatestByExercise picks, per exercise, the most recent completion. This is
// the entry the day view shows when an exercise was logged more than once.
func LatestByExercise(completions []domain.ExerciseCompletion) map[primitive.ObjectID]domain.ExerciseCompletion {
	latest := make(map[primitive.ObjectID]domain.ExerciseCompletion, len(completions))
	for _, c := range completions {
		cur, ok := latest[c.ExerciseID]
		if !ok || c.CompletedAt.After(cur.CompletedAt) {
			latest[c.ExerciseID] = c
		}
	}
	return latest
}

// DayEntry is the progress of one workout day inside a routine.
type DayEntry struct {
	WorkoutDayID primitive.ObjectID `json:"workoutDayId"`
	Coordinate   domain.Coordinate `json:"coordinate"`
	DayProgress
	Status DayStatus `json:"status"`
}

type WeekEntry struct {
	Week int `json:"week"`
	DayProgress
	Status DayStatus  `json:"status"`
	Days   []DayEntry `json:"days"`
}

// ComputeRoutineProgress groups per-day progress by week. exercisesByDay maps
// a workout day id to its exercises; days must be sorted by (week, day).
func ComputeRoutineProgress(totalWeeks int, days []domain.WorkoutDay, exercisesByDay map[primitive.ObjectID][]domain.Exercise, completions []domain.ExerciseCompletion, studentID primitive.ObjectID) []WeekEntry {
	weeks := make([]WeekEntry, totalWeeks)
	for i := range weeks {
		weeks[i].Week = i + 1
	}
	for _, d := range days {
		if d.WeekNumber < 1 || d.WeekNumber > totalWeeks {
			continue
		}
		dp := ComputeDayProgress(exercisesByDay[d.ID], completions, studentID)
		w := &weeks[d.WeekNumber-1]
		w.Days = append(w.Days, DayEntry{
			WorkoutDayID: d.ID,
			Coordinate:   d.Coordinate(),
			DayProgress:  dp,
			Status:       dp.Status(),
		})
		w.DayProgress = w.DayProgress.add(dp)
	}
	for i := range weeks {
		weeks[i].Status = weeks[i].DayProgress.Status()
	}
	return weeks
}
