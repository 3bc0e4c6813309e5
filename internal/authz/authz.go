// Package authz holds the single access predicate consulted by every
// service operation before it touches the store.
package authz

import (
	"alcyxob/gym-app/internal/domain"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Action string

const (
	ActionRead     Action = "read"
	ActionWrite    Action = "write"
	ActionDelete   Action = "delete"
	ActionComplete Action = "complete" // mark/unmark exercises
	ActionComment  Action = "comment"
	ActionManage   Action = "manage" // roster, visibility, roles
)

// Principal is the authenticated caller.
type Principal struct {
	ID   primitive.ObjectID
	Role domain.Role
}

func (p Principal) IsAdmin() bool { return p.Role == domain.RoleAdmin }

// Resource is anything an action can be checked against. The concrete
// types carry the ownership facts the rules need.
type Resource interface {
	kind() string
}

// RoutineResource describes a routine, its owner and the students that
// currently see it (visible assignments).
type RoutineResource struct {
	TrainerID       primitive.ObjectID
	VisibleStudents []primitive.ObjectID
}

// ProfileResource describes a user profile and the trainers that have it on
// their roster.
type ProfileResource struct {
	UserID   primitive.ObjectID
	Role     domain.Role
	Trainers []primitive.ObjectID
}

type AssignmentResource struct {
	TrainerID primitive.ObjectID
	StudentID primitive.ObjectID
}

// ProgressResource is a student's completion log.
type ProgressResource struct {
	StudentID primitive.ObjectID
	Trainers  []primitive.ObjectID
}

type CommentResource struct {
	AuthorID         primitive.ObjectID
	RoutineTrainerID primitive.ObjectID
}

type RosterResource struct {
	TrainerID primitive.ObjectID
}

// AdminResource covers user administration and reports.
type AdminResource struct{}

func (RoutineResource) kind() string    { return "routine" }
func (ProfileResource) kind() string    { return "profile" }
func (AssignmentResource) kind() string { return "assignment" }
func (ProgressResource) kind() string   { return "progress" }
func (CommentResource) kind() string    { return "comment" }
func (RosterResource) kind() string     { return "roster" }
func (AdminResource) kind() string      { return "admin" }

// CanAccess reports whether p may perform a on r.
func CanAccess(p Principal, r Resource, a Action) bool {
	if p.ID == primitive.NilObjectID || !p.Role.Valid() {
		return false
	}

	switch res := r.(type) {
	case RoutineResource:
		owner := p.Role == domain.RoleTrainer && p.ID == res.TrainerID
		student := p.Role == domain.RoleStudent && contains(res.VisibleStudents, p.ID)
		switch a {
		case ActionRead:
			return p.IsAdmin() || owner || student
		case ActionWrite, ActionDelete, ActionManage:
			return p.IsAdmin() || owner
		case ActionComplete, ActionComment:
			return student
		}

	case ProfileResource:
		self := p.ID == res.UserID
		trainer := p.Role == domain.RoleTrainer && res.Role == domain.RoleStudent && contains(res.Trainers, p.ID)
		switch a {
		case ActionRead, ActionWrite:
			return p.IsAdmin() || self || trainer
		case ActionManage:
			return p.IsAdmin()
		}

	case AssignmentResource:
		owner := p.Role == domain.RoleTrainer && p.ID == res.TrainerID
		switch a {
		case ActionRead:
			return p.IsAdmin() || owner || (p.Role == domain.RoleStudent && p.ID == res.StudentID)
		case ActionWrite, ActionDelete, ActionManage:
			return p.IsAdmin() || owner
		}

	case ProgressResource:
		self := p.Role == domain.RoleStudent && p.ID == res.StudentID
		switch a {
		case ActionRead:
			return p.IsAdmin() || self || (p.Role == domain.RoleTrainer && contains(res.Trainers, p.ID))
		case ActionComplete, ActionWrite, ActionDelete:
			return self
		}

	case CommentResource:
		author := p.ID == res.AuthorID
		trainer := p.Role == domain.RoleTrainer && p.ID == res.RoutineTrainerID
		switch a {
		case ActionRead, ActionDelete:
			return p.IsAdmin() || author || trainer
		}

	case RosterResource:
		return p.IsAdmin() || (p.Role == domain.RoleTrainer && p.ID == res.TrainerID)

	case AdminResource:
		return p.IsAdmin()
	}
	return false
}

// Authorize is CanAccess returning the domain authorization error.
func Authorize(p Principal, r Resource, a Action) error {
	if CanAccess(p, r, a) {
		return nil
	}
	return domain.NewAuthorizationError("access denied: %s cannot %s this %s", p.Role, a, r.kind())
}

func contains(ids []primitive.ObjectID, id primitive.ObjectID) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}
