package api

import (
	"alcyxob/gym-app/internal/authz"
	"alcyxob/gym-app/internal/domain"
	"alcyxob/gym-app/internal/schedule"
	"alcyxob/gym-app/internal/service"
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const dateLayout = "2006-01-02"

// RoutineHandler serves routines, their assignments and the viewer endpoints.
type RoutineHandler struct {
	routineService    service.RoutineService
	assignmentService service.AssignmentService
	progressService   service.ProgressService
	location          *time.Location // calendar for "today"
	now               func() time.Time
}

func NewRoutineHandler(
	routineService service.RoutineService,
	assignmentService service.AssignmentService,
	progressService service.ProgressService,
	location *time.Location,
) *RoutineHandler {
	if location == nil {
		location = time.UTC
	}
	return &RoutineHandler{
		routineService:    routineService,
		assignmentService: assignmentService,
		progressService:   progressService,
		location:          location,
		now:               time.Now,
	}
}

// --- DTOs ---

type RoutineRequest struct {
	Name         string       `json:"name"`
	Description  string       `json:"description"`
	DurationType string       `json:"durationType" binding:"required,duration_type"`
	StartDate    string       `json:"startDate"` // YYYY-MM-DD
	Days         []DayRequest `json:"days"`
	// StudentIDs replaces the assigned students when present.
	StudentIDs *[]string `json:"studentIds"`
}

// DayRequest coordinates are checked by the routine service, and only for
// days that keep at least one exercise.
type DayRequest struct {
	ID         *string           `json:"id"`
	WeekNumber int               `json:"weekNumber"`
	DayNumber  int               `json:"dayNumber"`
	Name       string            `json:"name"`
	Exercises  []ExerciseRequest `json:"exercises"`
}

type ExerciseRequest struct {
	ID                *string                   `json:"id"`
	Name              string                    `json:"name"`
	SetConfigurations []domain.SetConfiguration `json:"setConfigurations"`
	VideoURL          string                    `json:"videoUrl"`
	Notes             string                    `json:"notes"`
}

type StudentIDsRequest struct {
	StudentIDs []string `json:"studentIds"`
}

type VideoUploadRequest struct {
	FileName    string `json:"fileName" binding:"required"`
	ContentType string `json:"contentType" binding:"required"`
}

func (r RoutineRequest) toInput() (service.RoutineInput, error) {
	in := service.RoutineInput{
		Name:         r.Name,
		Description:  r.Description,
		DurationType: domain.DurationType(r.DurationType),
	}
	if r.StartDate != "" {
		start, err := parseDate(r.StartDate)
		if err != nil {
			return in, err
		}
		in.StartDate = &start
	}
	if r.StudentIDs != nil {
		ids, err := parseObjectIDs(*r.StudentIDs)
		if err != nil {
			return in, err
		}
		in.StudentIDs = ids
	}

	for _, d := range r.Days {
		day := service.DayInput{WeekNumber: d.WeekNumber, DayNumber: d.DayNumber, Name: d.Name}
		id, err := optionalObjectID(d.ID)
		if err != nil {
			return in, err
		}
		day.ID = id
		for _, ex := range d.Exercises {
			exID, err := optionalObjectID(ex.ID)
			if err != nil {
				return in, err
			}
			day.Exercises = append(day.Exercises, service.ExerciseInput{
				ID:                exID,
				Name:              ex.Name,
				SetConfigurations: ex.SetConfigurations,
				VideoURL:          ex.VideoURL,
				Notes:             ex.Notes,
			})
		}
		in.Days = append(in.Days, day)
	}
	return in, nil
}

func parseDate(s string) (time.Time, error) {
	if t, err := time.Parse(dateLayout, s); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, domain.NewValidationError("invalid date %q, expected YYYY-MM-DD", s)
	}
	return t, nil
}

func optionalObjectID(hex *string) (*primitive.ObjectID, error) {
	if hex == nil || *hex == "" {
		return nil, nil
	}
	id, err := primitive.ObjectIDFromHex(*hex)
	if err != nil {
		return nil, domain.NewValidationError("invalid id %q", *hex)
	}
	return &id, nil
}

// --- Routines ---

// ListRoutines godoc
// @Summary List the routines visible to the caller
// @Tags Routines
// @Security BearerAuth
// @Success 200 {array} domain.Routine
// @Router /routines [get]
func (h *RoutineHandler) ListRoutines(c *gin.Context) {
	actor, ok := mustPrincipal(c)
	if !ok {
		return
	}
	routines, err := h.routineService.List(c.Request.Context(), actor)
	if err != nil {
		writeError(c, err)
		return
	}
	if routines == nil {
		routines = []domain.Routine{}
	}
	c.JSON(http.StatusOK, routines)
}

// CreateRoutine godoc
// @Summary Create a routine with its days and exercises
// @Tags Routines
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param routine body RoutineRequest true "Routine"
// @Success 201 {object} service.RoutineDetail
// @Failure 400 {object} gin.H "Validation error"
// @Router /routines [post]
func (h *RoutineHandler) CreateRoutine(c *gin.Context) {
	actor, ok := mustPrincipal(c)
	if !ok {
		return
	}
	var req RoutineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	in, err := req.toInput()
	if err != nil {
		writeError(c, err)
		return
	}
	detail, err := h.routineService.Create(c.Request.Context(), actor, in)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, detail)
}

// GetRoutine godoc
// @Summary Routine with days ordered by (week, day) and exercises in order
// @Tags Routines
// @Security BearerAuth
// @Param id path string true "Routine ID"
// @Success 200 {object} service.RoutineDetail
// @Failure 404 {object} gin.H "Routine not found"
// @Router /routines/{id} [get]
func (h *RoutineHandler) GetRoutine(c *gin.Context) {
	actor, ok := mustPrincipal(c)
	if !ok {
		return
	}
	id, ok := objectIDParam(c, "id")
	if !ok {
		return
	}
	detail, err := h.routineService.Get(c.Request.Context(), actor, id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, detail)
}

// UpdateRoutine godoc
// @Summary Replace a routine's content, keeping IDs of surviving days and exercises
// @Tags Routines
// @Security BearerAuth
// @Param id path string true "Routine ID"
// @Param routine body RoutineRequest true "Routine"
// @Success 200 {object} service.RoutineDetail
// @Router /routines/{id} [put]
func (h *RoutineHandler) UpdateRoutine(c *gin.Context) {
	actor, ok := mustPrincipal(c)
	if !ok {
		return
	}
	id, ok := objectIDParam(c, "id")
	if !ok {
		return
	}
	var req RoutineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	in, err := req.toInput()
	if err != nil {
		writeError(c, err)
		return
	}
	detail, err := h.routineService.Update(c.Request.Context(), actor, id, in)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, detail)
}

// DeleteRoutine godoc
// @Summary Delete a routine and everything attached to it
// @Tags Routines
// @Security BearerAuth
// @Param id path string true "Routine ID"
// @Success 204
// @Router /routines/{id} [delete]
func (h *RoutineHandler) DeleteRoutine(c *gin.Context) {
	actor, ok := mustPrincipal(c)
	if !ok {
		return
	}
	id, ok := objectIDParam(c, "id")
	if !ok {
		return
	}
	if err := h.routineService.Delete(c.Request.Context(), actor, id); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Today godoc
// @Summary Today's slot of the routine
// @Description date defaults to today in the server's timezone.
// @Tags Routines
// @Security BearerAuth
// @Param id path string true "Routine ID"
// @Param date query string false "YYYY-MM-DD"
// @Success 200 {object} service.TodayView
// @Router /routines/{id}/today [get]
func (h *RoutineHandler) Today(c *gin.Context) {
	actor, ok := mustPrincipal(c)
	if !ok {
		return
	}
	id, ok := objectIDParam(c, "id")
	if !ok {
		return
	}
	today := schedule.DateIn(h.now(), h.location)
	if q := c.Query("date"); q != "" {
		d, err := time.Parse(dateLayout, q)
		if err != nil {
			abortWithError(c, http.StatusBadRequest, "Invalid date, expected YYYY-MM-DD")
			return
		}
		today = d
	}
	view, err := h.routineService.TodayView(c.Request.Context(), actor, id, today)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// Progress godoc
// @Summary Per-week and per-day completion of a routine
// @Tags Routines
// @Security BearerAuth
// @Param id path string true "Routine ID"
// @Param studentId query string false "defaults to the caller"
// @Success 200 {array} progress.WeekEntry
// @Router /routines/{id}/progress [get]
func (h *RoutineHandler) Progress(c *gin.Context) {
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
	weeks, err := h.progressService.RoutineProgress(c.Request.Context(), actor, studentID, id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, weeks)
}

// RequestVideoUploadURL godoc
// @Summary Presigned PUT URL for an exercise demonstration video
// @Tags Routines
// @Security BearerAuth
// @Param id path string true "Routine ID"
// @Param upload body VideoUploadRequest true "File details"
// @Success 200 {object} domain.VideoUploadTicket
// @Router /routines/{id}/video-upload-url [post]
func (h *RoutineHandler) RequestVideoUploadURL(c *gin.Context) {
	actor, ok := mustPrincipal(c)
	if !ok {
		return
	}
	id, ok := objectIDParam(c, "id")
	if !ok {
		return
	}
	var req VideoUploadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	ticket, err := h.routineService.RequestVideoUploadURL(c.Request.Context(), actor, id, req.FileName, req.ContentType)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, ticket)
}

// --- Assignments ---

// ListAssignments godoc
// @Summary Students assigned to a routine
// @Tags Assignments
// @Security BearerAuth
// @Param id path string true "Routine ID"
// @Router /routines/{id}/assignments [get]
func (h *RoutineHandler) ListAssignments(c *gin.Context) {
	actor, ok := mustPrincipal(c)
	if !ok {
		return
	}
	id, ok := objectIDParam(c, "id")
	if !ok {
		return
	}
	assignments, err := h.assignmentService.ListForRoutine(c.Request.Context(), actor, id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, nonNil(assignments))
}

// AssignStudents godoc
// @Summary Assign the routine to more students
// @Description Students already assigned are left alone.
// @Tags Assignments
// @Security BearerAuth
// @Param id path string true "Routine ID"
// @Param students body StudentIDsRequest true "Students to add"
// @Router /routines/{id}/assignments [post]
func (h *RoutineHandler) AssignStudents(c *gin.Context) {
	h.changeAssignments(c, h.assignmentService.AssignRoutine)
}

// SetAssignments godoc
// @Summary Make the routine's assigned students exactly the given set
// @Tags Assignments
// @Security BearerAuth
// @Param id path string true "Routine ID"
// @Param students body StudentIDsRequest true "Desired students"
// @Router /routines/{id}/assignments [put]
func (h *RoutineHandler) SetAssignments(c *gin.Context) {
	h.changeAssignments(c, h.assignmentService.SetAssignments)
}

type assignFunc func(ctx context.Context, actor authz.Principal, routineID primitive.ObjectID, studentIDs []primitive.ObjectID) ([]domain.RoutineAssignment, error)

func (h *RoutineHandler) changeAssignments(c *gin.Context, fn assignFunc) {
	actor, ok := mustPrincipal(c)
	if !ok {
		return
	}
	id, ok := objectIDParam(c, "id")
	if !ok {
		return
	}
	var req StudentIDsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	studentIDs, err := parseObjectIDs(req.StudentIDs)
	if err != nil {
		writeError(c, err)
		return
	}
	assignments, err := fn(c.Request.Context(), actor, id, studentIDs)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, nonNil(assignments))
}

// Unassign godoc
// @Summary Remove one student's assignment
// @Description The student's completion history is kept.
// @Tags Assignments
// @Security BearerAuth
// @Router /routines/{id}/assignments/{studentId} [delete]
func (h *RoutineHandler) Unassign(c *gin.Context) {
	actor, ok := mustPrincipal(c)
	if !ok {
		return
	}
	id, ok := objectIDParam(c, "id")
	if !ok {
		return
	}
	studentID, ok := objectIDParam(c, "studentId")
	if !ok {
		return
	}
	if err := h.assignmentService.Unassign(c.Request.Context(), actor, id, studentID); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ToggleVisibility godoc
// @Summary Show or hide an assigned routine from the student
// @Tags Assignments
// @Security BearerAuth
// @Param id path string true "Assignment ID"
// @Success 200 {object} domain.RoutineAssignment
// @Router /assignments/{id}/visibility [post]
func (h *RoutineHandler) ToggleVisibility(c *gin.Context) {
	actor, ok := mustPrincipal(c)
	if !ok {
		return
	}
	id, ok := objectIDParam(c, "id")
	if !ok {
		return
	}
	assignment, err := h.assignmentService.ToggleVisible(c.Request.Context(), actor, id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, assignment)
}

// studentQuery reads ?studentId=, defaulting to fallback.
func studentQuery(c *gin.Context, fallback primitive.ObjectID) (primitive.ObjectID, bool) {
	q := c.Query("studentId")
	if q == "" {
		return fallback, true
	}
	id, err := primitive.ObjectIDFromHex(q)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid studentId format")
		return primitive.NilObjectID, false
	}
	return id, true
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
