package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Coordinate addresses a slot inside a routine. Day is 1 (Monday) .. 7 (Sunday).
type Coordinate struct {
	Week int `json:"week"`
	Day  int `json:"day"`
}

// WorkoutDay is one (week, day-of-week) slot in a Routine. At most one exists
// per (routine, week, day); a slot without a WorkoutDay is a rest day.
type WorkoutDay struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	RoutineID  primitive.ObjectID `bson:"routineId" json:"routineId"`
	WeekNumber int                `bson:"weekNumber" json:"weekNumber"`
	DayNumber  int                `bson:"dayNumber" json:"dayNumber"`
	Name       string             `bson:"name,omitempty" json:"name,omitempty"` // e.g. "Chest & triceps"
	CreatedAt  time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt  time.Time          `bson:"updatedAt" json:"updatedAt"`
}

func (d *WorkoutDay) Coordinate() Coordinate {
	return Coordinate{Week: d.WeekNumber, Day: d.DayNumber}
}
