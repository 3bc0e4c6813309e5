package api

import (
	"alcyxob/gym-app/internal/domain"
	"alcyxob/gym-app/internal/service"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// StudentHandler serves per-student views: assignments, history, comments.
type StudentHandler struct {
	assignmentService service.AssignmentService
	progressService   service.ProgressService
	commentService    service.CommentService
}

func NewStudentHandler(
	assignmentService service.AssignmentService,
	progressService service.ProgressService,
	commentService service.CommentService,
) *StudentHandler {
	return &StudentHandler{
		assignmentService: assignmentService,
		progressService:   progressService,
		commentService:    commentService,
	}
}

type AddCommentRequest struct {
	Type         domain.CommentType `json:"type" binding:"required,oneof=week day exercise"`
	RoutineID    string             `json:"routineId" binding:"required_if=Type week"`
	WeekNumber   int                `json:"weekNumber" binding:"required_if=Type week"`
	WorkoutDayID string             `json:"workoutDayId" binding:"required_if=Type day"`
	ExerciseID   string             `json:"exerciseId" binding:"required_if=Type exercise"`
	Content      string             `json:"content" binding:"required"`
}

func (r AddCommentRequest) target() (domain.CommentTarget, error) {
	var hex string
	switch r.Type {
	case domain.CommentWeek:
		hex = r.RoutineID
	case domain.CommentDay:
		hex = r.WorkoutDayID
	case domain.CommentExercise:
		hex = r.ExerciseID
	default:
		return nil, domain.NewValidationError("unknown comment type %q", r.Type)
	}
	id, err := primitive.ObjectIDFromHex(hex)
	if err != nil {
		return nil, domain.NewValidationError("invalid %s id %q", r.Type, hex)
	}
	switch r.Type {
	case domain.CommentWeek:
		return domain.WeekTarget{RoutineID: id, WeekNumber: r.WeekNumber}, nil
	case domain.CommentDay:
		return domain.DayTarget{WorkoutDayID: id}, nil
	}
	return domain.ExerciseTarget{ExerciseID: id}, nil
}

// studentParam resolves :id, where "me" stands for the caller.
func studentParam(c *gin.Context) (primitive.ObjectID, bool) {
	if c.Param("id") == "me" {
		actor, ok := mustPrincipal(c)
		return actor.ID, ok
	}
	return objectIDParam(c, "id")
}

// GetAssignments godoc
// @Summary A student's assigned routines
// @Description Students only see visible assignments.
// @Tags Students
// @Security BearerAuth
// @Param id path string true "Student ID or 'me'"
// @Success 200 {array} domain.AssignmentWithRoutine
// @Router /students/{id}/assignments [get]
func (h *StudentHandler) GetAssignments(c *gin.Context) {
	actor, ok := mustPrincipal(c)
	if !ok {
		return
	}
	studentID, ok := studentParam(c)
	if !ok {
		return
	}
	out, err := h.assignmentService.ListForStudent(c.Request.Context(), actor, studentID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, nonNil(out))
}

// GetPerformance godoc
// @Summary A student's performance log, newest first
// @Tags Students
// @Security BearerAuth
// @Param id path string true "Student ID or 'me'"
// @Success 200 {array} domain.PerformanceEntry
// @Router /students/{id}/performance [get]
func (h *StudentHandler) GetPerformance(c *gin.Context) {
	actor, ok := mustPrincipal(c)
	if !ok {
		return
	}
	studentID, ok := studentParam(c)
	if !ok {
		return
	}
	out, err := h.progressService.PerformanceLog(c.Request.Context(), actor, studentID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, nonNil(out))
}

// GetComments godoc
// @Summary Comments written by a student
// @Tags Students
// @Security BearerAuth
// @Param id path string true "Student ID or 'me'"
// @Success 200 {array} CommentResponse
// @Router /students/{id}/comments [get]
func (h *StudentHandler) GetComments(c *gin.Context) {
	actor, ok := mustPrincipal(c)
	if !ok {
		return
	}
	studentID, ok := studentParam(c)
	if !ok {
		return
	}
	comments, err := h.commentService.ListForStudent(c.Request.Context(), actor, studentID)
	if err != nil {
		writeError(c, err)
		return
	}
	out := make([]CommentResponse, 0, len(comments))
	for i := range comments {
		out = append(out, MapCommentToResponse(&comments[i]))
	}
	c.JSON(http.StatusOK, out)
}

// AddComment godoc
// @Summary Comment on a week, workout day or exercise
// @Tags Comments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param comment body AddCommentRequest true "Comment"
// @Success 201 {object} CommentResponse
// @Router /comments [post]
func (h *StudentHandler) AddComment(c *gin.Context) {
	actor, ok := mustPrincipal(c)
	if !ok {
		return
	}
	var req AddCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	target, err := req.target()
	if err != nil {
		writeError(c, err)
		return
	}
	comment, err := h.commentService.AddComment(c.Request.Context(), actor, target, req.Content)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, MapCommentToResponse(comment))
}

// DeleteComment godoc
// @Summary Delete a comment
// @Tags Comments
// @Security BearerAuth
// @Param id path string true "Comment ID"
// @Success 204
// @Router /comments/{id} [delete]
func (h *StudentHandler) DeleteComment(c *gin.Context) {
	actor, ok := mustPrincipal(c)
	if !ok {
		return
	}
	id, ok := objectIDParam(c, "id")
	if !ok {
		return
	}
	if err := h.commentService.DeleteComment(c.Request.Context(), actor, id); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
