package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ActualPerformance is what the student really did, stored apart from the
// exercise's prescription.
type ActualPerformance struct {
	ActualSets   *int    `bson:"actualSets,omitempty" json:"actualSets,omitempty"`
	ActualReps   *string `bson:"actualReps,omitempty" json:"actualReps,omitempty"`
	ActualWeight *string `bson:"actualWeight,omitempty" json:"actualWeight,omitempty"`
}

// ExerciseCompletion is one entry of a student's append-only performance log.
// An exercise counts as complete while any entry exists for the pair.
type ExerciseCompletion struct {
	ID                primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	ExerciseID        primitive.ObjectID `bson:"exerciseId" json:"exerciseId"`
	StudentID         primitive.ObjectID `bson:"studentId" json:"studentId"`
	WorkoutDayID      primitive.ObjectID `bson:"workoutDayId" json:"workoutDayId"` // Denormalized
	RoutineID         primitive.ObjectID `bson:"routineId" json:"routineId"`       // Denormalized
	CompletedAt       time.Time          `bson:"completedAt" json:"completedAt"`
	ActualPerformance `bson:",inline"`
}

// PerformanceEntry is a completion joined with the names shown in the
// student's history.
type PerformanceEntry struct {
	ExerciseCompletion
	ExerciseName string `json:"exerciseName"`
	RoutineName  string `json:"routineName"`
}
