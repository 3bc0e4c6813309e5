package api

import (
	"alcyxob/gym-app/internal/domain"
	"alcyxob/gym-app/internal/service"
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
)

// ExerciseHandler serves the student's completion toggles.
type ExerciseHandler struct {
	progressService service.ProgressService
}

func NewExerciseHandler(progressService service.ProgressService) *ExerciseHandler {
	return &ExerciseHandler{progressService: progressService}
}

// CompleteExerciseRequest carries what the student actually did. Every field
// is optional.
type CompleteExerciseRequest struct {
	ActualSets   *int    `json:"actualSets" binding:"omitempty,min=0"`
	ActualReps   *string `json:"actualReps"`
	ActualWeight *string `json:"actualWeight"`
}

type UnmarkResponse struct {
	Removed int64 `json:"removed"`
}

// MarkComplete godoc
// @Summary Log a completion of an exercise
// @Description Each call appends a new entry to the performance log.
// @Tags Exercises
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Exercise ID"
// @Param actual body CompleteExerciseRequest false "Actual values"
// @Success 201 {object} domain.ExerciseCompletion
// @Failure 404 {object} gin.H "Exercise not found or routine not visible"
// @Router /exercises/{id}/completion [post]
func (h *ExerciseHandler) MarkComplete(c *gin.Context) {
	actor, ok := mustPrincipal(c)
	if !ok {
		return
	}
	id, ok := objectIDParam(c, "id")
	if !ok {
		return
	}
	var req CompleteExerciseRequest
	// the body is optional
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		bindError(c, err)
		return
	}

	completion, err := h.progressService.MarkComplete(c.Request.Context(), actor, id, domain.ActualPerformance{
		ActualSets:   req.ActualSets,
		ActualReps:   req.ActualReps,
		ActualWeight: req.ActualWeight,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, completion)
}

// UnmarkComplete godoc
// @Summary Remove every completion of an exercise by the caller
// @Tags Exercises
// @Security BearerAuth
// @Param id path string true "Exercise ID"
// @Success 200 {object} UnmarkResponse
// @Router /exercises/{id}/completion [delete]
func (h *ExerciseHandler) UnmarkComplete(c *gin.Context) {
	actor, ok := mustPrincipal(c)
	if !ok {
		return
	}
	id, ok := objectIDParam(c, "id")
	if !ok {
		return
	}
	n, err := h.progressService.UnmarkComplete(c.Request.Context(), actor, id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, UnmarkResponse{Removed: n})
}

// DayProgress godoc
// @Summary Completion of one workout day
// @Tags Exercises
// @Security BearerAuth
// @Param id path string true "Workout day ID"
// @Param studentId query string false "defaults to the caller"
// @Success 200 {object} service.DayProgressView
// @Router /workout-days/{id}/progress [get]
func (h *ExerciseHandler) DayProgress(c *gin.Context) {
	actor, ok := mustPrincipal(c)
	if !ok {
		return
	}
	id, ok := objectIDParam(c, "id")
	if !ok {
		return
	}
	studentID, ok := studentQuery(c, actor.ID)
	if !ok {
		return
	}
	view, err := h.progressService.DayProgress(c.Request.Context(), actor, studentID, id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}
