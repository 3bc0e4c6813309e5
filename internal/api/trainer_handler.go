// internal/api/trainer_handler.go
package api

import (
	"alcyxob/gym-app/internal/service"
	"net/http"

	"github.com/gin-gonic/gin"
)

// TrainerHandler serves the trainer's student roster.
type TrainerHandler struct {
	rosterService service.RosterService
}

func NewTrainerHandler(rosterService service.RosterService) *TrainerHandler {
	return &TrainerHandler{rosterService: rosterService}
}

type AddStudentRequest struct {
	StudentEmail string `json:"studentEmail" binding:"required,email"`
}

// AddStudent godoc
// @Summary Add a student to the trainer's roster by email
// @Tags Trainer
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param studentRequest body AddStudentRequest true "Student's email"
// @Success 201 {object} ProfileResponse "Student added"
// @Failure 400 {object} gin.H "Invalid input, or the user is not a student"
// @Failure 404 {object} gin.H "No user with that email"
// @Failure 409 {object} gin.H "Student already on roster"
// @Router /trainer/students [post]
func (h *TrainerHandler) AddStudent(c *gin.Context) {
	var req AddStudentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	actor, ok := mustPrincipal(c)
	if !ok {
		return
	}

	student, err := h.rosterService.AddStudent(c.Request.Context(), actor, actor.ID, req.StudentEmail)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, MapProfileToResponse(student))
}

// GetStudents godoc
// @Summary List the trainer's students
// @Tags Trainer
// @Produce json
// @Security BearerAuth
// @Success 200 {array} ProfileResponse
// @Router /trainer/students [get]
func (h *TrainerHandler) GetStudents(c *gin.Context) {
	actor, ok := mustPrincipal(c)
	if !ok {
		return
	}
	students, err := h.rosterService.ListStudents(c.Request.Context(), actor, actor.ID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, MapProfilesToResponse(students))
}

// RemoveStudent godoc
// @Summary Remove a student from the roster
// @Description Existing routine assignments are kept.
// @Tags Trainer
// @Security BearerAuth
// @Param studentId path string true "Student ID"
// @Success 204
// @Failure 404 {object} gin.H "Student not on roster"
// @Router /trainer/students/{studentId} [delete]
func (h *TrainerHandler) RemoveStudent(c *gin.Context) {
	actor, ok := mustPrincipal(c)
	if !ok {
		return
	}
	studentID, ok := objectIDParam(c, "studentId")
	if !ok {
		return
	}
	if err := h.rosterService.RemoveStudent(c.Request.Context(), actor, actor.ID, studentID); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
