package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// TrainerStudent links a student to a trainer's roster, independent of any
// routine. Unique per (trainer, student).
type TrainerStudent struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	TrainerID primitive.ObjectID `bson:"trainerId" json:"trainerId"`
	StudentID primitive.ObjectID `bson:"studentId" json:"studentId"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
}
