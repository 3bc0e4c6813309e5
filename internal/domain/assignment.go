package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// RoutineAssignment binds a Routine to a student. Unique per (routine, student).
// Visible controls whether the student currently sees the plan, independently
// of the assignment's existence.
type RoutineAssignment struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	RoutineID  primitive.ObjectID `bson:"routineId" json:"routineId"`
	StudentID  primitive.ObjectID `bson:"studentId" json:"studentId"`
	TrainerID  primitive.ObjectID `bson:"trainerId" json:"trainerId"` // Denormalized from the routine for easier queries/auth
	Visible    bool               `bson:"visible" json:"visible"`
	AssignedAt time.Time          `bson:"assignedAt" json:"assignedAt"`
	UpdatedAt  time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// AssignmentWithRoutine is an assignment joined with its referenced routine.
type AssignmentWithRoutine struct {
	RoutineAssignment
	Routine *Routine `json:"routine,omitempty"`
}
