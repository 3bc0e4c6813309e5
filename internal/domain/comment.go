package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type CommentType string

const (
	CommentWeek     CommentType = "week"
	CommentDay      CommentType = "day"
	CommentExercise CommentType = "exercise"
)

// CommentTarget is the granularity a comment is attached to. Each variant
// carries only the key it needs.
type CommentTarget interface {
	Type() CommentType
	isCommentTarget()
}

type WeekTarget struct {
	RoutineID  primitive.ObjectID
	WeekNumber int
}

type DayTarget struct {
	WorkoutDayID primitive.ObjectID
}

type ExerciseTarget struct {
	ExerciseID primitive.ObjectID
}

func (WeekTarget) Type() CommentType     { return CommentWeek }
func (DayTarget) Type() CommentType      { return CommentDay }
func (ExerciseTarget) Type() CommentType { return CommentExercise }

func (WeekTarget) isCommentTarget()     {}
func (DayTarget) isCommentTarget()      {}
func (ExerciseTarget) isCommentTarget() {}

// Comment is free-text feedback authored by a student.
type Comment struct {
	ID        primitive.ObjectID
	StudentID primitive.ObjectID
	Target    CommentTarget
	Content   string
	CreatedAt time.Time
}
