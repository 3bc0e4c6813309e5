// internal/repository/mongo/workout_day_repo.go
package mongo

import (
	"alcyxob/gym-app/internal/domain"
	"alcyxob/gym-app/internal/repository"
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const workoutDayCollectionName = "workout_days"

// mongoWorkoutDayRepository implements repository.WorkoutDayRepository
type mongoWorkoutDayRepository struct {
	collection *mongo.Collection
}

// NewMongoWorkoutDayRepository creates a new WorkoutDay repository.
func NewMongoWorkoutDayRepository(db *mongo.Database) repository.WorkoutDayRepository {
	return &mongoWorkoutDayRepository{
		collection: db.Collection(workoutDayCollectionName),
	}
}

// Create inserts a new workout day. The unique (routineId, weekNumber,
// dayNumber) index turns a second day on the same slot into ErrConflict.
func (r *mongoWorkoutDayRepository) Create(ctx context.Context, day *domain.WorkoutDay) (primitive.ObjectID, error) {
	if day.RoutineID == primitive.NilObjectID {
		return primitive.NilObjectID, errors.New("workout day requires routineId")
	}
	day.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	day.CreatedAt = now
	day.UpdatedAt = now

	if _, err := r.collection.InsertOne(ctx, day); err != nil {
		return primitive.NilObjectID, insertErr(err)
	}
	return day.ID, nil
}

func (r *mongoWorkoutDayRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.WorkoutDay, error) {
	return findOne[domain.WorkoutDay](ctx, r.collection, bson.M{"_id": id})
}

// ListByRoutine retrieves all days of a routine sorted by week, then day.
func (r *mongoWorkoutDayRepository) ListByRoutine(ctx context.Context, routineID primitive.ObjectID) ([]domain.WorkoutDay, error) {
	findOptions := options.Find().SetSort(bson.D{{Key: "weekNumber", Value: 1}, {Key: "dayNumber", Value: 1}})
	return findAll[domain.WorkoutDay](ctx, r.collection, bson.M{"routineId": routineID}, findOptions)
}

func (r *mongoWorkoutDayRepository) Update(ctx context.Context, day *domain.WorkoutDay) error {
	if day.ID == primitive.NilObjectID {
		return errors.New("workout day ID is required for update")
	}
	day.UpdatedAt = time.Now().UTC()

	updateDoc := bson.M{
		"$set": bson.M{
			"weekNumber": day.WeekNumber,
			"dayNumber":  day.DayNumber,
			"name":       day.Name,
			"updatedAt":  day.UpdatedAt,
		},
	}
	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": day.ID}, updateDoc)
	if err != nil {
		return insertErr(err)
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *mongoWorkoutDayRepository) DeleteByIDs(ctx context.Context, ids []primitive.ObjectID) error {
	if len(ids) == 0 {
		return nil
	}
	_, err := r.collection.DeleteMany(ctx, byIDs(ids))
	return err
}

// EnsureWorkoutDayIndexes creates necessary indexes. Call during startup.
func EnsureWorkoutDayIndexes(ctx context.Context, collection *mongo.Collection) error {
	indexes := []mongo.IndexModel{
		{
			// One day per slot
			Keys:    bson.D{{Key: "routineId", Value: 1}, {Key: "weekNumber", Value: 1}, {Key: "dayNumber", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
	}
	_, err := collection.Indexes().CreateMany(ctx, indexes)
	return err
}
