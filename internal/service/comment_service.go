package service

import (
	"alcyxob/gym-app/internal/authz"
	"alcyxob/gym-app/internal/domain"
	"alcyxob/gym-app/internal/repository"
	"alcyxob/gym-app/internal/schedule"
	"context"
	"errors"
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// CommentService handles student feedback on weeks, days and exercises.
type CommentService interface {
	AddComment(ctx context.Context, actor authz.Principal, target domain.CommentTarget, content string) (*domain.Comment, error)
	ListForStudent(ctx context.Context, actor authz.Principal, studentID primitive.ObjectID) ([]domain.Comment, error)
	DeleteComment(ctx context.Context, actor authz.Principal, commentID primitive.ObjectID) error
}

type commentService struct {
	repos repository.Repositories
}

func NewCommentService(repos repository.Repositories) CommentService {
	return &commentService{repos: repos}
}

func (s *commentService) AddComment(ctx context.Context, actor authz.Principal, target domain.CommentTarget, content string) (*domain.Comment, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, domain.NewValidationError("comment content is required")
	}
	if target == nil {
		return nil, domain.NewValidationError("comment target is required")
	}

	routineID, err := s.routineOf(ctx, target)
	if err != nil {
		return nil, err
	}
	routine, err := loadRoutine(ctx, s.repos, actor, routineID, authz.ActionComment)
	if err != nil {
		return nil, err
	}
	if week, ok := target.(domain.WeekTarget); ok {
		if weeks := schedule.WeeksFor(routine.DurationType); week.WeekNumber < 1 || week.WeekNumber > weeks {
			return nil, domain.NewValidationError("week %d is outside the routine's %d weeks", week.WeekNumber, weeks)
		}
	}

	comment := &domain.Comment{StudentID: actor.ID, Target: target, Content: content}
	if _, err := s.repos.Comments.Create(ctx, comment); err != nil {
		return nil, translate(err, "comment", "create comment")
	}
	return comment, nil
}

func (s *commentService) ListForStudent(ctx context.Context, actor authz.Principal, studentID primitive.ObjectID) ([]domain.Comment, error) {
	trainers, err := trainersOf(ctx, s.repos.Roster, studentID)
	if err != nil {
		return nil, err
	}
	if err := authz.Authorize(actor, authz.ProgressResource{StudentID: studentID, Trainers: trainers}, authz.ActionRead); err != nil {
		return nil, err
	}
	comments, err := s.repos.Comments.ListByStudent(ctx, studentID)
	if err != nil {
		return nil, translate(err, "comment", "list comments")
	}
	if actor.Role != domain.RoleTrainer {
		return comments, nil
	}
	return s.ownedBy(ctx, actor.ID, comments)
}

// ownedBy keeps the comments on routines of trainerID. Comments whose target
// no longer exists are dropped.
func (s *commentService) ownedBy(ctx context.Context, trainerID primitive.ObjectID, comments []domain.Comment) ([]domain.Comment, error) {
	owned := map[primitive.ObjectID]bool{}
	out := make([]domain.Comment, 0, len(comments))
	for _, c := range comments {
		routineID, err := s.routineOf(ctx, c.Target)
		if domain.KindOf(err) == domain.KindNotFound {
			continue
		}
		if err != nil {
			return nil, err
		}
		mine, ok := owned[routineID]
		if !ok {
			routine, err := s.repos.Routines.GetByID(ctx, routineID)
			if err != nil && !errors.Is(err, repository.ErrNotFound) {
				return nil, translate(err, "routine", "get routine")
			}
			mine = err == nil && routine.TrainerID == trainerID
			owned[routineID] = mine
		}
		if mine {
			out = append(out, c)
		}
	}
	return out, nil
}

// DeleteComment is allowed to the author, the trainer owning the commented
// routine and admins.
func (s *commentService) DeleteComment(ctx context.Context, actor authz.Principal, commentID primitive.ObjectID) error {
	comment, err := s.repos.Comments.GetByID(ctx, commentID)
	if err != nil {
		return translate(err, "comment", "get comment")
	}
	res := authz.CommentResource{AuthorID: comment.StudentID}
	routineID, err := s.routineOf(ctx, comment.Target)
	if err == nil {
		routine, err := s.repos.Routines.GetByID(ctx, routineID)
		if err != nil {
			return translate(err, "routine", "get routine")
		}
		res.RoutineTrainerID = routine.TrainerID
	} else if domain.KindOf(err) != domain.KindNotFound {
		return err
	}
	if err := authz.Authorize(actor, res, authz.ActionDelete); err != nil {
		return err
	}
	return translate(s.repos.Comments.Delete(ctx, commentID), "comment", "delete comment")
}

// routineOf resolves the routine a comment target belongs to.
func (s *commentService) routineOf(ctx context.Context, target domain.CommentTarget) (primitive.ObjectID, error) {
	switch t := target.(type) {
	case domain.WeekTarget:
		return t.RoutineID, nil
	case domain.DayTarget:
		day, err := s.repos.WorkoutDays.GetByID(ctx, t.WorkoutDayID)
		if err != nil {
			return primitive.NilObjectID, translate(err, "workout day", "get workout day")
		}
		return day.RoutineID, nil
	case domain.ExerciseTarget:
		ex, err := s.repos.Exercises.GetByID(ctx, t.ExerciseID)
		if err != nil {
			return primitive.NilObjectID, translate(err, "exercise", "get exercise")
		}
		return ex.RoutineID, nil
	}
	return primitive.NilObjectID, domain.NewValidationError("unsupported comment target %s", target.Type())
}
