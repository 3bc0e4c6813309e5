package service

import (
	"alcyxob/gym-app/internal/authz"
	"alcyxob/gym-app/internal/domain"
	"alcyxob/gym-app/internal/progress"
	"alcyxob/gym-app/internal/repository"
	"alcyxob/gym-app/internal/schedule"
	"alcyxob/gym-app/internal/storage"
	"context"
	"errors"
	"time"

	log "github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/multierr"
)

// DayDetail is a workout day with its exercises in order.
type DayDetail struct {
	domain.WorkoutDay
	Exercises []domain.Exercise `json:"exercises"`
}

// RoutineDetail is the full aggregate. Assignments are only filled for the
// owner and admins.
type RoutineDetail struct {
	domain.Routine
	Days        []DayDetail                `json:"days"`
	Assignments []domain.RoutineAssignment `json:"assignments,omitempty"`
}

// TodayView is what the routine viewer opens on. Coordinate is nil when the
// routine is not active today; Day is nil on a rest day.
type TodayView struct {
	Active     bool                  `json:"active"`
	Coordinate *domain.Coordinate    `json:"coordinate,omitempty"`
	Rest       bool                  `json:"rest"`
	Day        *DayDetail            `json:"day,omitempty"`
	Progress   *progress.DayProgress `json:"progress,omitempty"`
}

// RoutineService manages routines with their nested days and exercises.
type RoutineService interface {
	Create(ctx context.Context, actor authz.Principal, in RoutineInput) (*RoutineDetail, error)
	Update(ctx context.Context, actor authz.Principal, routineID primitive.ObjectID, in RoutineInput) (*RoutineDetail, error)
	Get(ctx context.Context, actor authz.Principal, routineID primitive.ObjectID) (*RoutineDetail, error)
	List(ctx context.Context, actor authz.Principal) ([]domain.Routine, error)
	Delete(ctx context.Context, actor authz.Principal, routineID primitive.ObjectID) error
	TodayView(ctx context.Context, actor authz.Principal, routineID primitive.ObjectID, today time.Time) (*TodayView, error)
	RequestVideoUploadURL(ctx context.Context, actor authz.Principal, routineID primitive.ObjectID, fileName, contentType string) (*domain.VideoUploadTicket, error)
}

type routineService struct {
	repos repository.Repositories
	files storage.FileStorage // nil when no bucket is configured
}

// NewRoutineService creates a new routine service. files may be nil.
func NewRoutineService(repos repository.Repositories, files storage.FileStorage) RoutineService {
	return &routineService{repos: repos, files: files}
}

func (s *routineService) Create(ctx context.Context, actor authz.Principal, in RoutineInput) (*RoutineDetail, error) {
	if actor.Role != domain.RoleTrainer {
		return nil, domain.NewAuthorizationError("only trainers can create routines")
	}
	if err := authz.Authorize(actor, authz.RoutineResource{TrainerID: actor.ID}, authz.ActionWrite); err != nil {
		return nil, err
	}
	plan, err := buildPlan(in)
	if err != nil {
		return nil, err
	}
	routine := plan.routine
	routine.TrainerID = actor.ID
	if err := checkAssignable(ctx, s.repos, actor, &routine, in.StudentIDs); err != nil {
		return nil, err
	}

	err = s.repos.Tx.WithTransaction(ctx, func(ctx context.Context) error {
		id, err := s.repos.Routines.Create(ctx, &routine)
		if err != nil {
			return translate(err, "routine", "create routine")
		}
		routine.ID = id
		for _, d := range plan.days {
			if err := s.createDay(ctx, id, d); err != nil {
				return err
			}
		}
		if in.StudentIDs != nil {
			return syncAssignments(ctx, s.repos.Assignments, &routine, in.StudentIDs)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	log.WithFields(log.Fields{"routineId": routine.ID.Hex(), "trainerId": actor.ID.Hex()}).Info("routine created")
	return s.detail(ctx, &routine, true)
}

// Update replaces the routine's content with in. Days and exercises that
// survive the edit keep their IDs so completions and comments stay attached.
func (s *routineService) Update(ctx context.Context, actor authz.Principal, routineID primitive.ObjectID, in RoutineInput) (*RoutineDetail, error) {
	routine, err := loadRoutine(ctx, s.repos, actor, routineID, authz.ActionWrite)
	if err != nil {
		return nil, err
	}
	plan, err := buildPlan(in)
	if err != nil {
		return nil, err
	}
	if err := checkAssignable(ctx, s.repos, actor, routine, in.StudentIDs); err != nil {
		return nil, err
	}

	updated := plan.routine
	updated.ID = routine.ID
	updated.TrainerID = routine.TrainerID
	updated.CreatedAt = routine.CreatedAt

	var videos []string
	err = s.repos.Tx.WithTransaction(ctx, func(ctx context.Context) error {
		days, exercises, err := s.loadContent(ctx, routineID)
		if err != nil {
			return err
		}
		sync := planSync(days, exercises, plan.days)
		if err := s.applySync(ctx, routineID, sync); err != nil {
			return err
		}
		if err := s.repos.Routines.Update(ctx, &updated); err != nil {
			return translate(err, "routine", "update routine")
		}
		if in.StudentIDs != nil {
			if err := syncAssignments(ctx, s.repos.Assignments, &updated, in.StudentIDs); err != nil {
				return err
			}
		}
		videos = sync.deletedVideoURLs
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.deleteVideos(ctx, videos)
	return s.detail(ctx, &updated, true)
}

func (s *routineService) applySync(ctx context.Context, routineID primitive.ObjectID, sync syncPlan) error {
	if len(sync.deleteExerciseIDs) > 0 || len(sync.deleteDayIDs) > 0 {
		if err := s.repos.Completions.DeleteByExercises(ctx, sync.deleteExerciseIDs); err != nil {
			return translate(err, "completion", "delete completions")
		}
		if err := s.repos.Comments.DeleteByTargets(ctx, primitive.NilObjectID, sync.deleteDayIDs, sync.deleteExerciseIDs); err != nil {
			return translate(err, "comment", "delete comments")
		}
		if err := s.repos.Exercises.DeleteByIDs(ctx, sync.deleteExerciseIDs); err != nil {
			return translate(err, "exercise", "delete exercises")
		}
		if err := s.repos.WorkoutDays.DeleteByIDs(ctx, sync.deleteDayIDs); err != nil {
			return translate(err, "workout day", "delete workout days")
		}
	}

	// Days that move park on a placeholder slot first so two days can swap
	// coordinates without tripping the unique (routine, week, day) index.
	for i, d := range sync.updateDays {
		parked := d
		parked.WeekNumber, parked.DayNumber = -(i + 1), 0
		if err := s.repos.WorkoutDays.Update(ctx, &parked); err != nil {
			return translate(err, "workout day", "park workout day")
		}
	}
	for i := range sync.updateDays {
		if err := s.repos.WorkoutDays.Update(ctx, &sync.updateDays[i]); err != nil {
			return translate(err, "workout day", "update workout day")
		}
	}

	for _, d := range sync.createDays {
		if err := s.createDay(ctx, routineID, d); err != nil {
			return err
		}
	}
	for i := range sync.updateExercises {
		if err := s.repos.Exercises.Update(ctx, &sync.updateExercises[i]); err != nil {
			return translate(err, "exercise", "update exercise")
		}
	}
	for i := range sync.createExercises {
		if _, err := s.repos.Exercises.Create(ctx, &sync.createExercises[i]); err != nil {
			return translate(err, "exercise", "create exercise")
		}
	}
	return nil
}

func (s *routineService) createDay(ctx context.Context, routineID primitive.ObjectID, d plannedDay) error {
	day := domain.WorkoutDay{
		RoutineID:  routineID,
		WeekNumber: d.coord.Week,
		DayNumber:  d.coord.Day,
		Name:       d.name,
	}
	dayID, err := s.repos.WorkoutDays.Create(ctx, &day)
	if err != nil {
		return translate(err, "workout day", "create workout day")
	}
	for _, ex := range d.exercises {
		ex.ID = primitive.NilObjectID
		ex.WorkoutDayID = dayID
		ex.RoutineID = routineID
		if _, err := s.repos.Exercises.Create(ctx, &ex); err != nil {
			return translate(err, "exercise", "create exercise")
		}
	}
	return nil
}

func (s *routineService) Get(ctx context.Context, actor authz.Principal, routineID primitive.ObjectID) (*RoutineDetail, error) {
	routine, err := loadRoutine(ctx, s.repos, actor, routineID, authz.ActionRead)
	if err != nil {
		return nil, err
	}
	manager := authz.CanAccess(actor, authz.RoutineResource{TrainerID: routine.TrainerID}, authz.ActionManage)
	return s.detail(ctx, routine, manager)
}

// List returns a trainer's own routines, every routine for admins and the
// routines a student currently sees.
func (s *routineService) List(ctx context.Context, actor authz.Principal) ([]domain.Routine, error) {
	switch actor.Role {
	case domain.RoleAdmin:
		out, err := s.repos.Routines.ListAll(ctx)
		return out, translate(err, "routine", "list routines")
	case domain.RoleTrainer:
		out, err := s.repos.Routines.ListByTrainer(ctx, actor.ID)
		return out, translate(err, "routine", "list routines")
	case domain.RoleStudent:
		assignments, err := s.repos.Assignments.ListByStudent(ctx, actor.ID)
		if err != nil {
			return nil, translate(err, "assignment", "list student assignments")
		}
		var ids []primitive.ObjectID
		for _, a := range assignments {
			if a.Visible {
				ids = append(ids, a.RoutineID)
			}
		}
		out, err := s.repos.Routines.GetByIDs(ctx, ids)
		return out, translate(err, "routine", "list assigned routines")
	}
	return nil, domain.NewAuthorizationError("unknown role %q", actor.Role)
}

// Delete removes the routine and everything hanging off it.
func (s *routineService) Delete(ctx context.Context, actor authz.Principal, routineID primitive.ObjectID) error {
	if _, err := loadRoutine(ctx, s.repos, actor, routineID, authz.ActionDelete); err != nil {
		return err
	}

	var videos []string
	err := s.repos.Tx.WithTransaction(ctx, func(ctx context.Context) error {
		days, exercises, err := s.loadContent(ctx, routineID)
		if err != nil {
			return err
		}
		dayIDs := make([]primitive.ObjectID, 0, len(days))
		for _, d := range days {
			dayIDs = append(dayIDs, d.ID)
		}
		exerciseIDs := make([]primitive.ObjectID, 0, len(exercises))
		videos = videos[:0]
		for _, ex := range exercises {
			exerciseIDs = append(exerciseIDs, ex.ID)
			if ex.VideoURL != "" {
				videos = append(videos, ex.VideoURL)
			}
		}

		if err := s.repos.Completions.DeleteByExercises(ctx, exerciseIDs); err != nil {
			return translate(err, "completion", "delete completions")
		}
		if err := s.repos.Comments.DeleteByTargets(ctx, routineID, dayIDs, exerciseIDs); err != nil {
			return translate(err, "comment", "delete comments")
		}
		if err := s.repos.Exercises.DeleteByIDs(ctx, exerciseIDs); err != nil {
			return translate(err, "exercise", "delete exercises")
		}
		if err := s.repos.WorkoutDays.DeleteByIDs(ctx, dayIDs); err != nil {
			return translate(err, "workout day", "delete workout days")
		}
		if err := s.repos.Assignments.DeleteByRoutine(ctx, routineID); err != nil {
			return translate(err, "assignment", "delete assignments")
		}
		return translate(s.repos.Routines.Delete(ctx, routineID), "routine", "delete routine")
	})
	if err != nil {
		return err
	}

	log.WithField("routineId", routineID.Hex()).Info("routine deleted")
	s.deleteVideos(ctx, videos)
	return nil
}

// TodayView resolves today's slot of the routine. today must already be in
// the server's calendar timezone.
func (s *routineService) TodayView(ctx context.Context, actor authz.Principal, routineID primitive.ObjectID, today time.Time) (*TodayView, error) {
	routine, err := loadRoutine(ctx, s.repos, actor, routineID, authz.ActionRead)
	if err != nil {
		return nil, err
	}
	coord, ok := schedule.ResolveTodayCoordinate(routine.StartDate, routine.EndDate, today)
	if !ok {
		return &TodayView{}, nil
	}
	view := &TodayView{Active: true, Coordinate: &coord}

	detail, err := s.detail(ctx, routine, false)
	if err != nil {
		return nil, err
	}
	for i := range detail.Days {
		if detail.Days[i].Coordinate() == coord {
			view.Day = &detail.Days[i]
			break
		}
	}
	if view.Day == nil {
		view.Rest = true
		return view, nil
	}

	if actor.Role == domain.RoleStudent {
		completions, err := s.repos.Completions.ListByStudentAndExercises(ctx, actor.ID, exerciseIDsOf(view.Day.Exercises))
		if err != nil {
			return nil, translate(err, "completion", "load completions")
		}
		dp := progress.ComputeDayProgress(view.Day.Exercises, completions, actor.ID)
		view.Progress = &dp
	}
	return view, nil
}

func (s *routineService) RequestVideoUploadURL(ctx context.Context, actor authz.Principal, routineID primitive.ObjectID, fileName, contentType string) (*domain.VideoUploadTicket, error) {
	if s.files == nil {
		return nil, domain.NewValidationError("video uploads are not configured")
	}
	if _, err := loadRoutine(ctx, s.repos, actor, routineID, authz.ActionWrite); err != nil {
		return nil, err
	}

	key, err := storage.VideoObjectKey(routineID.Hex(), fileName, contentType)
	if errors.Is(err, storage.ErrInvalidContentType) {
		return nil, domain.NewValidationError("content type %q is not a video", contentType)
	}
	if err != nil {
		return nil, err
	}
	uploadURL, err := s.files.GeneratePresignedUploadURL(ctx, key, contentType, storage.DefaultPresignedURLExpiry)
	if err != nil {
		log.WithError(err).WithField("objectKey", key).Error("failed to presign video upload")
		return nil, domain.NewStoreError(err, "presign video upload")
	}
	return &domain.VideoUploadTicket{
		UploadURL: uploadURL,
		ObjectKey: key,
		VideoURL:  s.files.ObjectURL(key),
	}, nil
}

func (s *routineService) loadContent(ctx context.Context, routineID primitive.ObjectID) ([]domain.WorkoutDay, []domain.Exercise, error) {
	days, err := s.repos.WorkoutDays.ListByRoutine(ctx, routineID)
	if err != nil {
		return nil, nil, translate(err, "workout day", "list workout days")
	}
	dayIDs := make([]primitive.ObjectID, 0, len(days))
	for _, d := range days {
		dayIDs = append(dayIDs, d.ID)
	}
	exercises, err := s.repos.Exercises.ListByWorkoutDays(ctx, dayIDs)
	if err != nil {
		return nil, nil, translate(err, "exercise", "list exercises")
	}
	return days, exercises, nil
}

func (s *routineService) detail(ctx context.Context, routine *domain.Routine, withAssignments bool) (*RoutineDetail, error) {
	days, exercises, err := s.loadContent(ctx, routine.ID)
	if err != nil {
		return nil, err
	}
	byDay := groupByDay(exercises)
	out := &RoutineDetail{Routine: *routine, Days: make([]DayDetail, 0, len(days))}
	for _, d := range days {
		out.Days = append(out.Days, DayDetail{WorkoutDay: d, Exercises: byDay[d.ID]})
	}
	if withAssignments {
		out.Assignments, err = s.repos.Assignments.ListByRoutine(ctx, routine.ID)
		if err != nil {
			return nil, translate(err, "assignment", "list assignments")
		}
	}
	return out, nil
}

// deleteVideos removes bucket objects no exercise points at anymore. It runs
// after the write committed, so failures only leave orphans behind.
func (s *routineService) deleteVideos(ctx context.Context, urls []string) {
	if s.files == nil || len(urls) == 0 {
		return
	}
	var errs error
	for _, u := range urls {
		key, err := s.files.ObjectKeyFromURL(u)
		if errors.Is(err, storage.ErrForeignURL) {
			continue
		}
		if err == nil {
			err = s.files.DeleteObject(ctx, key)
		}
		errs = multierr.Append(errs, err)
	}
	if errs != nil {
		log.WithError(errs).Warn("failed to delete some exercise videos")
	}
}

func groupByDay(exercises []domain.Exercise) map[primitive.ObjectID][]domain.Exercise {
	out := make(map[primitive.ObjectID][]domain.Exercise)
	for _, ex := range exercises {
		out[ex.WorkoutDayID] = append(out[ex.WorkoutDayID], ex)
	}
	return out
}

func exerciseIDsOf(exercises []domain.Exercise) []primitive.ObjectID {
	ids := make([]primitive.ObjectID, 0, len(exercises))
	for _, ex := range exercises {
		ids = append(ids, ex.ID)
	}
	return ids
}
