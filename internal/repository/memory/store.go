// Package memory keeps every repository in process memory. It backs the
// "memory" database driver used for local development and the service tests.
package memory

import (
	"alcyxob/gym-app/internal/domain"
	"alcyxob/gym-app/internal/repository"
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type tables struct {
	profiles    map[primitive.ObjectID]domain.Profile
	routines    map[primitive.ObjectID]domain.Routine
	days        map[primitive.ObjectID]domain.WorkoutDay
	exercises   map[primitive.ObjectID]domain.Exercise
	assignments map[primitive.ObjectID]domain.RoutineAssignment
	completions map[primitive.ObjectID]domain.ExerciseCompletion
	comments    map[primitive.ObjectID]domain.Comment
	roster      map[primitive.ObjectID]domain.TrainerStudent
}

func newTables() tables {
	return tables{
		profiles:    map[primitive.ObjectID]domain.Profile{},
		routines:    map[primitive.ObjectID]domain.Routine{},
		days:        map[primitive.ObjectID]domain.WorkoutDay{},
		exercises:   map[primitive.ObjectID]domain.Exercise{},
		assignments: map[primitive.ObjectID]domain.RoutineAssignment{},
		completions: map[primitive.ObjectID]domain.ExerciseCompletion{},
		comments:    map[primitive.ObjectID]domain.Comment{},
		roster:      map[primitive.ObjectID]domain.TrainerStudent{},
	}
}

func (t tables) clone() tables {
	return tables{
		profiles:    cloneMap(t.profiles),
		routines:    cloneMap(t.routines),
		days:        cloneMap(t.days),
		exercises:   cloneMap(t.exercises),
		assignments: cloneMap(t.assignments),
		completions: cloneMap(t.completions),
		comments:    cloneMap(t.comments),
		roster:      cloneMap(t.roster),
	}
}

func cloneMap[K comparable, V any](m map[K]V) map[K]V {
	out := make(map[K]V, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// Store holds all tables behind one lock. Unique constraints mirror the
// MongoDB indexes and surface as repository.ErrConflict.
type Store struct {
	mu   sync.RWMutex
	txMu sync.Mutex
	data tables
	now  func() time.Time
}

func NewStore() *Store {
	return &Store{data: newTables(), now: func() time.Time { return time.Now().UTC() }}
}

// NewRepositories returns every repository backed by a fresh Store.
func NewRepositories() repository.Repositories {
	return NewStore().Repositories()
}

func (s *Store) Repositories() repository.Repositories {
	return repository.Repositories{
		Profiles:    &profileRepo{s},
		Routines:    &routineRepo{s},
		WorkoutDays: &workoutDayRepo{s},
		Exercises:   &exerciseRepo{s},
		Assignments: &assignmentRepo{s},
		Completions: &completionRepo{s},
		Comments:    &commentRepo{s},
		Roster:      &rosterRepo{s},
		Tx:          s,
	}
}

// WithTransaction serializes transactional callbacks and restores a snapshot
// of every table when fn fails.
func (s *Store) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()

	s.mu.RLock()
	snapshot := s.data.clone()
	s.mu.RUnlock()

	if err := fn(ctx); err != nil {
		s.mu.Lock()
		s.data = snapshot
		s.mu.Unlock()
		return err
	}
	return nil
}

func idSet(ids []primitive.ObjectID) map[primitive.ObjectID]struct{} {
	set := make(map[primitive.ObjectID]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}

func contains(set map[primitive.ObjectID]struct{}, id primitive.ObjectID) bool {
	_, ok := set[id]
	return ok
}

// ---- profiles ----

type profileRepo struct{ s *Store }

func (r *profileRepo) Create(_ context.Context, p *domain.Profile) (primitive.ObjectID, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p.Email = strings.ToLower(p.Email)
	for _, existing := range r.s.data.profiles {
		if existing.Email == p.Email {
			return primitive.NilObjectID, repository.ErrConflict
		}
	}
	p.ID = primitive.NewObjectID()
	p.CreatedAt = r.s.now()
	p.UpdatedAt = p.CreatedAt
	r.s.data.profiles[p.ID] = *p
	return p.ID, nil
}

func (r *profileRepo) GetByID(_ context.Context, id primitive.ObjectID) (*domain.Profile, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	p, ok := r.s.data.profiles[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &p, nil
}

func (r *profileRepo) GetByEmail(_ context.Context, email string) (*domain.Profile, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	email = strings.ToLower(email)
	for _, p := range r.s.data.profiles {
		if p.Email == email {
			return &p, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *profileRepo) GetByIDs(_ context.Context, ids []primitive.ObjectID) ([]domain.Profile, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := []domain.Profile{}
	for _, id := range ids {
		if p, ok := r.s.data.profiles[id]; ok {
			out = append(out, p)
		}
	}
	sortProfiles(out)
	return out, nil
}

func (r *profileRepo) List(_ context.Context, role domain.Role) ([]domain.Profile, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := []domain.Profile{}
	for _, p := range r.s.data.profiles {
		if role == "" || p.Role == role {
			out = append(out, p)
		}
	}
	sortProfiles(out)
	return out, nil
}

// sortProfiles orders by full name like the Mongo repository, email breaking ties.
func sortProfiles(out []domain.Profile) {
	sort.Slice(out, func(i, j int) bool {
		if out[i].FullName != out[j].FullName {
			return out[i].FullName < out[j].FullName
		}
		return out[i].Email < out[j].Email
	})
}

func (r *profileRepo) Update(_ context.Context, p *domain.Profile) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	existing, ok := r.s.data.profiles[p.ID]
	if !ok {
		return repository.ErrNotFound
	}
	p.Email = existing.Email
	p.CreatedAt = existing.CreatedAt
	p.UpdatedAt = r.s.now()
	stored := *p
	stored.PasswordHash = existing.PasswordHash
	r.s.data.profiles[p.ID] = stored
	return nil
}

func (r *profileRepo) UpdatePasswordHash(_ context.Context, id primitive.ObjectID, hash string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.data.profiles[id]
	if !ok {
		return repository.ErrNotFound
	}
	p.PasswordHash = hash
	p.UpdatedAt = r.s.now()
	r.s.data.profiles[id] = p
	return nil
}

func (r *profileRepo) CountByRole(_ context.Context) (map[domain.Role]int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	counts := map[domain.Role]int64{}
	for _, p := range r.s.data.profiles {
		counts[p.Role]++
	}
	return counts, nil
}

// ---- routines ----

type routineRepo struct{ s *Store }

func (r *routineRepo) Create(_ context.Context, routine *domain.Routine) (primitive.ObjectID, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	routine.ID = primitive.NewObjectID()
	routine.CreatedAt = r.s.now()
	routine.UpdatedAt = routine.CreatedAt
	r.s.data.routines[routine.ID] = *routine
	return routine.ID, nil
}

func (r *routineRepo) GetByID(_ context.Context, id primitive.ObjectID) (*domain.Routine, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	routine, ok := r.s.data.routines[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &routine, nil
}

func (r *routineRepo) GetByIDs(_ context.Context, ids []primitive.ObjectID) ([]domain.Routine, error) {
	set := idSet(ids)
	return r.list(func(routine domain.Routine) bool { return contains(set, routine.ID) }), nil
}

func (r *routineRepo) ListByTrainer(_ context.Context, trainerID primitive.ObjectID) ([]domain.Routine, error) {
	return r.list(func(routine domain.Routine) bool { return routine.TrainerID == trainerID }), nil
}

func (r *routineRepo) ListAll(_ context.Context) ([]domain.Routine, error) {
	return r.list(func(domain.Routine) bool { return true }), nil
}

// list returns matching routines, newest first.
func (r *routineRepo) list(keep func(domain.Routine) bool) []domain.Routine {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := []domain.Routine{}
	for _, routine := range r.s.data.routines {
		if keep(routine) {
			out = append(out, routine)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID.Hex() > out[j].ID.Hex()
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}

func (r *routineRepo) Update(_ context.Context, routine *domain.Routine) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	existing, ok := r.s.data.routines[routine.ID]
	if !ok {
		return repository.ErrNotFound
	}
	routine.TrainerID = existing.TrainerID
	routine.CreatedAt = existing.CreatedAt
	routine.UpdatedAt = r.s.now()
	r.s.data.routines[routine.ID] = *routine
	return nil
}

func (r *routineRepo) Delete(_ context.Context, id primitive.ObjectID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.data.routines[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.s.data.routines, id)
	return nil
}

func (r *routineRepo) Count(_ context.Context) (int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return int64(len(r.s.data.routines)), nil
}

// ---- workout days ----

type workoutDayRepo struct{ s *Store }

func (r *workoutDayRepo) slotTaken(day *domain.WorkoutDay) bool {
	for _, existing := range r.s.data.days {
		if existing.ID != day.ID && existing.RoutineID == day.RoutineID &&
			existing.WeekNumber == day.WeekNumber && existing.DayNumber == day.DayNumber {
			return true
		}
	}
	return false
}

func (r *workoutDayRepo) Create(_ context.Context, day *domain.WorkoutDay) (primitive.ObjectID, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	day.ID = primitive.NewObjectID()
	if r.slotTaken(day) {
		return primitive.NilObjectID, repository.ErrConflict
	}
	day.CreatedAt = r.s.now()
	day.UpdatedAt = day.CreatedAt
	r.s.data.days[day.ID] = *day
	return day.ID, nil
}

func (r *workoutDayRepo) GetByID(_ context.Context, id primitive.ObjectID) (*domain.WorkoutDay, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	day, ok := r.s.data.days[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &day, nil
}

func (r *workoutDayRepo) ListByRoutine(_ context.Context, routineID primitive.ObjectID) ([]domain.WorkoutDay, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := []domain.WorkoutDay{}
	for _, day := range r.s.data.days {
		if day.RoutineID == routineID {
			out = append(out, day)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].WeekNumber != out[j].WeekNumber {
			return out[i].WeekNumber < out[j].WeekNumber
		}
		return out[i].DayNumber < out[j].DayNumber
	})
	return out, nil
}

func (r *workoutDayRepo) Update(_ context.Context, day *domain.WorkoutDay) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	existing, ok := r.s.data.days[day.ID]
	if !ok {
		return repository.ErrNotFound
	}
	day.RoutineID = existing.RoutineID
	if r.slotTaken(day) {
		return repository.ErrConflict
	}
	day.CreatedAt = existing.CreatedAt
	day.UpdatedAt = r.s.now()
	r.s.data.days[day.ID] = *day
	return nil
}

func (r *workoutDayRepo) DeleteByIDs(_ context.Context, ids []primitive.ObjectID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, id := range ids {
		delete(r.s.data.days, id)
	}
	return nil
}

// ---- exercises ----

type exerciseRepo struct{ s *Store }

func (r *exerciseRepo) Create(_ context.Context, ex *domain.Exercise) (primitive.ObjectID, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	ex.ID = primitive.NewObjectID()
	ex.CreatedAt = r.s.now()
	ex.UpdatedAt = ex.CreatedAt
	r.s.data.exercises[ex.ID] = copyExercise(*ex)
	return ex.ID, nil
}

func copyExercise(ex domain.Exercise) domain.Exercise {
	if ex.SetConfigurations != nil {
		ex.SetConfigurations = append([]domain.SetConfiguration(nil), ex.SetConfigurations...)
	}
	return ex
}

func (r *exerciseRepo) GetByID(_ context.Context, id primitive.ObjectID) (*domain.Exercise, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	ex, ok := r.s.data.exercises[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	ex = copyExercise(ex)
	return &ex, nil
}

func (r *exerciseRepo) GetByIDs(_ context.Context, ids []primitive.ObjectID) ([]domain.Exercise, error) {
	set := idSet(ids)
	return r.list(func(ex domain.Exercise) bool { return contains(set, ex.ID) }), nil
}

func (r *exerciseRepo) ListByWorkoutDays(_ context.Context, dayIDs []primitive.ObjectID) ([]domain.Exercise, error) {
	set := idSet(dayIDs)
	return r.list(func(ex domain.Exercise) bool { return contains(set, ex.WorkoutDayID) }), nil
}

// list returns matching exercises ordered by orderIndex.
func (r *exerciseRepo) list(keep func(domain.Exercise) bool) []domain.Exercise {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := []domain.Exercise{}
	for _, ex := range r.s.data.exercises {
		if keep(ex) {
			out = append(out, copyExercise(ex))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].OrderIndex != out[j].OrderIndex {
			return out[i].OrderIndex < out[j].OrderIndex
		}
		return out[i].ID.Hex() < out[j].ID.Hex()
	})
	return out
}

func (r *exerciseRepo) Update(_ context.Context, ex *domain.Exercise) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	existing, ok := r.s.data.exercises[ex.ID]
	if !ok {
		return repository.ErrNotFound
	}
	ex.WorkoutDayID = existing.WorkoutDayID
	ex.RoutineID = existing.RoutineID
	ex.CreatedAt = existing.CreatedAt
	ex.UpdatedAt = r.s.now()
	r.s.data.exercises[ex.ID] = copyExercise(*ex)
	return nil
}

func (r *exerciseRepo) DeleteByIDs(_ context.Context, ids []primitive.ObjectID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, id := range ids {
		delete(r.s.data.exercises, id)
	}
	return nil
}

// ---- assignments ----

type assignmentRepo struct{ s *Store }

func (r *assignmentRepo) Create(_ context.Context, a *domain.RoutineAssignment) (primitive.ObjectID, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.data.assignments {
		if existing.RoutineID == a.RoutineID && existing.StudentID == a.StudentID {
			return primitive.NilObjectID, repository.ErrConflict
		}
	}
	a.ID = primitive.NewObjectID()
	a.AssignedAt = r.s.now()
	a.UpdatedAt = a.AssignedAt
	r.s.data.assignments[a.ID] = *a
	return a.ID, nil
}

func (r *assignmentRepo) GetByID(_ context.Context, id primitive.ObjectID) (*domain.RoutineAssignment, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	a, ok := r.s.data.assignments[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &a, nil
}

func (r *assignmentRepo) ListByRoutine(_ context.Context, routineID primitive.ObjectID) ([]domain.RoutineAssignment, error) {
	out := r.list(func(a domain.RoutineAssignment) bool { return a.RoutineID == routineID })
	sort.SliceStable(out, func(i, j int) bool { return out[i].AssignedAt.Before(out[j].AssignedAt) })
	return out, nil
}

func (r *assignmentRepo) ListByStudent(_ context.Context, studentID primitive.ObjectID) ([]domain.RoutineAssignment, error) {
	out := r.list(func(a domain.RoutineAssignment) bool { return a.StudentID == studentID })
	sort.SliceStable(out, func(i, j int) bool { return out[i].AssignedAt.After(out[j].AssignedAt) })
	return out, nil
}

func (r *assignmentRepo) list(keep func(domain.RoutineAssignment) bool) []domain.RoutineAssignment {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := []domain.RoutineAssignment{}
	for _, a := range r.s.data.assignments {
		if keep(a) {
			out = append(out, a)
		}
	}
	// Stable base order; callers re-sort by time.
	sort.Slice(out, func(i, j int) bool { return out[i].ID.Hex() < out[j].ID.Hex() })
	return out
}

func (r *assignmentRepo) SetVisible(_ context.Context, id primitive.ObjectID, visible bool) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	a, ok := r.s.data.assignments[id]
	if !ok {
		return repository.ErrNotFound
	}
	a.Visible = visible
	a.UpdatedAt = r.s.now()
	r.s.data.assignments[id] = a
	return nil
}

func (r *assignmentRepo) DeleteByRoutineAndStudents(_ context.Context, routineID primitive.ObjectID, studentIDs []primitive.ObjectID) error {
	set := idSet(studentIDs)
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for id, a := range r.s.data.assignments {
		if a.RoutineID == routineID && contains(set, a.StudentID) {
			delete(r.s.data.assignments, id)
		}
	}
	return nil
}

func (r *assignmentRepo) DeleteByRoutine(_ context.Context, routineID primitive.ObjectID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for id, a := range r.s.data.assignments {
		if a.RoutineID == routineID {
			delete(r.s.data.assignments, id)
		}
	}
	return nil
}

func (r *assignmentRepo) Count(_ context.Context) (int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return int64(len(r.s.data.assignments)), nil
}

// ---- completions ----

type completionRepo struct{ s *Store }

func (r *completionRepo) Create(_ context.Context, c *domain.ExerciseCompletion) (primitive.ObjectID, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c.ID = primitive.NewObjectID()
	if c.CompletedAt.IsZero() {
		c.CompletedAt = r.s.now()
	}
	r.s.data.completions[c.ID] = *c
	return c.ID, nil
}

func (r *completionRepo) ListByStudentAndExercises(_ context.Context, studentID primitive.ObjectID, exerciseIDs []primitive.ObjectID) ([]domain.ExerciseCompletion, error) {
	set := idSet(exerciseIDs)
	return r.list(func(c domain.ExerciseCompletion) bool {
		return c.StudentID == studentID && contains(set, c.ExerciseID)
	}), nil
}

func (r *completionRepo) ListByStudent(_ context.Context, studentID primitive.ObjectID) ([]domain.ExerciseCompletion, error) {
	return r.list(func(c domain.ExerciseCompletion) bool { return c.StudentID == studentID }), nil
}

// list returns matching completions, latest first.
func (r *completionRepo) list(keep func(domain.ExerciseCompletion) bool) []domain.ExerciseCompletion {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := []domain.ExerciseCompletion{}
	for _, c := range r.s.data.completions {
		if keep(c) {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CompletedAt.Equal(out[j].CompletedAt) {
			return out[i].ID.Hex() > out[j].ID.Hex()
		}
		return out[i].CompletedAt.After(out[j].CompletedAt)
	})
	return out
}

func (r *completionRepo) DeleteByExerciseAndStudent(_ context.Context, exerciseID, studentID primitive.ObjectID) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var n int64
	for id, c := range r.s.data.completions {
		if c.ExerciseID == exerciseID && c.StudentID == studentID {
			delete(r.s.data.completions, id)
			n++
		}
	}
	return n, nil
}

func (r *completionRepo) DeleteByExercises(_ context.Context, exerciseIDs []primitive.ObjectID) error {
	set := idSet(exerciseIDs)
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for id, c := range r.s.data.completions {
		if contains(set, c.ExerciseID) {
			delete(r.s.data.completions, id)
		}
	}
	return nil
}

func (r *completionRepo) Count(_ context.Context) (int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return int64(len(r.s.data.completions)), nil
}

// ---- comments ----

type commentRepo struct{ s *Store }

func (r *commentRepo) Create(_ context.Context, c *domain.Comment) (primitive.ObjectID, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c.ID = primitive.NewObjectID()
	c.CreatedAt = r.s.now()
	r.s.data.comments[c.ID] = *c
	return c.ID, nil
}

func (r *commentRepo) GetByID(_ context.Context, id primitive.ObjectID) (*domain.Comment, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	c, ok := r.s.data.comments[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &c, nil
}

func (r *commentRepo) ListByStudent(_ context.Context, studentID primitive.ObjectID) ([]domain.Comment, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := []domain.Comment{}
	for _, c := range r.s.data.comments {
		if c.StudentID == studentID {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID.Hex() > out[j].ID.Hex()
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (r *commentRepo) Delete(_ context.Context, id primitive.ObjectID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.data.comments[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.s.data.comments, id)
	return nil
}

func (r *commentRepo) DeleteByTargets(_ context.Context, routineID primitive.ObjectID, dayIDs, exerciseIDs []primitive.ObjectID) error {
	days, exercises := idSet(dayIDs), idSet(exerciseIDs)
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for id, c := range r.s.data.comments {
		var hit bool
		switch t := c.Target.(type) {
		case domain.WeekTarget:
			hit = routineID != primitive.NilObjectID && t.RoutineID == routineID
		case domain.DayTarget:
			hit = contains(days, t.WorkoutDayID)
		case domain.ExerciseTarget:
			hit = contains(exercises, t.ExerciseID)
		}
		if hit {
			delete(r.s.data.comments, id)
		}
	}
	return nil
}

// ---- roster ----

type rosterRepo struct{ s *Store }

func (r *rosterRepo) Create(_ context.Context, link *domain.TrainerStudent) (primitive.ObjectID, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.data.roster {
		if existing.TrainerID == link.TrainerID && existing.StudentID == link.StudentID {
			return primitive.NilObjectID, repository.ErrConflict
		}
	}
	link.ID = primitive.NewObjectID()
	link.CreatedAt = r.s.now()
	r.s.data.roster[link.ID] = *link
	return link.ID, nil
}

func (r *rosterRepo) Delete(_ context.Context, trainerID, studentID primitive.ObjectID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for id, link := range r.s.data.roster {
		if link.TrainerID == trainerID && link.StudentID == studentID {
			delete(r.s.data.roster, id)
			return nil
		}
	}
	return repository.ErrNotFound
}

func (r *rosterRepo) ListByTrainer(_ context.Context, trainerID primitive.ObjectID) ([]domain.TrainerStudent, error) {
	return r.list(func(l domain.TrainerStudent) bool { return l.TrainerID == trainerID }), nil
}

func (r *rosterRepo) ListByStudent(_ context.Context, studentID primitive.ObjectID) ([]domain.TrainerStudent, error) {
	return r.list(func(l domain.TrainerStudent) bool { return l.StudentID == studentID }), nil
}

func (r *rosterRepo) list(keep func(domain.TrainerStudent) bool) []domain.TrainerStudent {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := []domain.TrainerStudent{}
	for _, l := range r.s.data.roster {
		if keep(l) {
			out = append(out, l)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID.Hex() < out[j].ID.Hex()
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out
}

func (r *rosterRepo) Exists(_ context.Context, trainerID, studentID primitive.ObjectID) (bool, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, l := range r.s.data.roster {
		if l.TrainerID == trainerID && l.StudentID == studentID {
			return true, nil
		}
	}
	return false, nil
}
