package authz

import (
	"testing"

	"alcyxob/gym-app/internal/domain"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	admin        = Principal{ID: primitive.NewObjectID(), Role: domain.RoleAdmin}
	trainer      = Principal{ID: primitive.NewObjectID(), Role: domain.RoleTrainer}
	otherTrainer = Principal{ID: primitive.NewObjectID(), Role: domain.RoleTrainer}
	student      = Principal{ID: primitive.NewObjectID(), Role: domain.RoleStudent}
	hidden       = Principal{ID: primitive.NewObjectID(), Role: domain.RoleStudent}
)

func TestCanAccess_Routine(t *testing.T) {
	r := RoutineResource{TrainerID: trainer.ID, VisibleStudents: []primitive.ObjectID{student.ID}}

	tests := []struct {
		name   string
		p      Principal
		action Action
		want   bool
	}{
		{"owner reads", trainer, ActionRead, true},
		{"owner edits", trainer, ActionWrite, true},
		{"other trainer edits", otherTrainer, ActionWrite, false},
		{"other trainer reads", otherTrainer, ActionRead, false},
		{"admin edits", admin, ActionWrite, true},
		{"admin deletes", admin, ActionDelete, true},
		{"assigned student reads", student, ActionRead, true},
		{"assigned student completes", student, ActionComplete, true},
		{"assigned student edits", student, ActionWrite, false},
		{"hidden student reads", hidden, ActionRead, false},
		{"trainer cannot complete", trainer, ActionComplete, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CanAccess(tt.p, r, tt.action))
		})
	}
}

func TestCanAccess_Profile(t *testing.T) {
	studentProfile := ProfileResource{UserID: student.ID, Role: domain.RoleStudent, Trainers: []primitive.ObjectID{trainer.ID}}
	trainerProfile := ProfileResource{UserID: otherTrainer.ID, Role: domain.RoleTrainer, Trainers: []primitive.ObjectID{trainer.ID}}

	assert.True(t, CanAccess(student, studentProfile, ActionWrite))
	assert.True(t, CanAccess(trainer, studentProfile, ActionWrite))
	assert.False(t, CanAccess(otherTrainer, studentProfile, ActionRead))
	assert.False(t, CanAccess(trainer, trainerProfile, ActionWrite), "trainers only edit students")
	assert.False(t, CanAccess(student, studentProfile, ActionManage))
	assert.True(t, CanAccess(admin, studentProfile, ActionManage))
}

func TestCanAccess_ProgressAndComments(t *testing.T) {
	log := ProgressResource{StudentID: student.ID, Trainers: []primitive.ObjectID{trainer.ID}}
	assert.True(t, CanAccess(student, log, ActionComplete))
	assert.False(t, CanAccess(trainer, log, ActionComplete))
	assert.True(t, CanAccess(trainer, log, ActionRead))
	assert.False(t, CanAccess(otherTrainer, log, ActionRead))

	c := CommentResource{AuthorID: student.ID, RoutineTrainerID: trainer.ID}
	assert.True(t, CanAccess(student, c, ActionDelete))
	assert.True(t, CanAccess(trainer, c, ActionDelete))
	assert.False(t, CanAccess(hidden, c, ActionDelete))
}

func TestCanAccess_AdminAndRoster(t *testing.T) {
	assert.True(t, CanAccess(admin, AdminResource{}, ActionManage))
	assert.False(t, CanAccess(trainer, AdminResource{}, ActionRead))

	assert.True(t, CanAccess(trainer, RosterResource{TrainerID: trainer.ID}, ActionManage))
	assert.False(t, CanAccess(otherTrainer, RosterResource{TrainerID: trainer.ID}, ActionManage))
}

func TestCanAccess_RejectsAnonymousAndUnknownRoles(t *testing.T) {
	assert.False(t, CanAccess(Principal{Role: domain.RoleAdmin}, AdminResource{}, ActionRead))
	assert.False(t, CanAccess(Principal{ID: primitive.NewObjectID(), Role: "coach"}, AdminResource{}, ActionRead))
}

func TestAuthorize(t *testing.T) {
	err := Authorize(otherTrainer, RoutineResource{TrainerID: trainer.ID}, ActionWrite)
	assert.ErrorIs(t, err, domain.ErrAuthorization)
	assert.Contains(t, err.Error(), "routine")

	assert.NoError(t, Authorize(trainer, RoutineResource{TrainerID: trainer.ID}, ActionWrite))
}
