// internal/domain/routine.go
package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// DurationType is the length category of a routine.
type DurationType string

const (
	DurationWeek      DurationType = "week"
	DurationMonth     DurationType = "month"
	DurationTrimester DurationType = "trimester"
)

func (d DurationType) Valid() bool {
	switch d {
	case DurationWeek, DurationMonth, DurationTrimester:
		return true
	}
	return false
}

// ParseDurationType rejects anything outside the enum so that downstream
// scheduling code can treat an invalid value as a programming error.
func ParseDurationType(s string) (DurationType, error) {
	d := DurationType(s)
	if !d.Valid() {
		return "", NewValidationError("duration_type must be one of week, month, trimester")
	}
	return d, nil
}

// Routine is a trainer-authored training plan spanning 1, 4 or 12 weeks.
// EndDate is always derived from StartDate and DurationType.
type Routine struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	TrainerID    primitive.ObjectID `bson:"trainerId" json:"trainerId"` // Owner
	Name         string             `bson:"name" json:"name"`
	Description  string             `bson:"description,omitempty" json:"description,omitempty"`
	DurationType DurationType       `bson:"durationType" json:"durationType"`
	StartDate    time.Time          `bson:"startDate" json:"startDate"`
	EndDate      time.Time          `bson:"endDate" json:"endDate"`
	CreatedAt    time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time          `bson:"updatedAt" json:"updatedAt"`
}
