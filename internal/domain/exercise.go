// internal/domain/exercise.go
package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// SetConfiguration is one prescribed (sets, reps, weight) triple. Reps and
// weight are free text ("8-10", "40kg", "RPE 8").
type SetConfiguration struct {
	Sets   *int    `bson:"sets" json:"sets"`
	Reps   *string `bson:"reps" json:"reps"`
	Weight *string `bson:"weight" json:"weight"`
}

// IsEmpty reports whether none of the three values is present.
func (c SetConfiguration) IsEmpty() bool {
	return c.Sets == nil && (c.Reps == nil || *c.Reps == "") && (c.Weight == nil || *c.Weight == "")
}

// Exercise belongs to exactly one WorkoutDay and is ordered by OrderIndex.
type Exercise struct {
	ID                primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	WorkoutDayID      primitive.ObjectID `bson:"workoutDayId" json:"workoutDayId"`
	RoutineID         primitive.ObjectID `bson:"routineId" json:"routineId"` // Denormalized for cascades and access checks
	Name              string             `bson:"name" json:"name"`
	SetConfigurations []SetConfiguration `bson:"setConfigurations" json:"setConfigurations"`

	// Legacy single-set prescription, kept for documents written before
	// SetConfigurations existed.
	Sets   *int    `bson:"sets,omitempty" json:"sets,omitempty"`
	Reps   *string `bson:"reps,omitempty" json:"reps,omitempty"`
	Weight *string `bson:"weight,omitempty" json:"weight,omitempty"`

	VideoURL   string    `bson:"videoUrl,omitempty" json:"videoUrl,omitempty"`
	Notes      string    `bson:"notes,omitempty" json:"notes,omitempty"`
	OrderIndex int       `bson:"orderIndex" json:"orderIndex"`
	CreatedAt  time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt  time.Time `bson:"updatedAt" json:"updatedAt"`
}

// Prescription returns the set configurations, falling back to the flat
// legacy fields when the list is empty.
func (e *Exercise) Prescription() []SetConfiguration {
	if len(e.SetConfigurations) > 0 {
		return e.SetConfigurations
	}
	return []SetConfiguration{{Sets: e.Sets, Reps: e.Reps, Weight: e.Weight}}
}
