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

const exerciseCollectionName = "exercises"

// mongoExerciseRepository implements repository.ExerciseRepository
type mongoExerciseRepository struct {
	collection *mongo.Collection
}

// NewMongoExerciseRepository creates a new Exercise repository backed by MongoDB.
func NewMongoExerciseRepository(db *mongo.Database) repository.ExerciseRepository {
	return &mongoExerciseRepository{
		collection: db.Collection(exerciseCollectionName),
	}
}

// Create inserts a new exercise into a workout day.
func (r *mongoExerciseRepository) Create(ctx context.Context, exercise *domain.Exercise) (primitive.ObjectID, error) {
	if exercise.WorkoutDayID == primitive.NilObjectID || exercise.RoutineID == primitive.NilObjectID || exercise.Name == "" {
		return primitive.NilObjectID, errors.New("exercise requires workoutDayId, routineId and name")
	}
	exercise.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	exercise.CreatedAt = now
	exercise.UpdatedAt = now

	if _, err := r.collection.InsertOne(ctx, exercise); err != nil {
		return primitive.NilObjectID, insertErr(err)
	}
	return exercise.ID, nil
}

func (r *mongoExerciseRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Exercise, error) {
	return findOne[domain.Exercise](ctx, r.collection, bson.M{"_id": id})
}

func (r *mongoExerciseRepository) GetByIDs(ctx context.Context, ids []primitive.ObjectID) ([]domain.Exercise, error) {
	if len(ids) == 0 {
		return []domain.Exercise{}, nil
	}
	return findAll[domain.Exercise](ctx, r.collection, byIDs(ids))
}

// ListByWorkoutDays returns the exercises of the given days, ordered by
// orderIndex (ties by _id so the order is stable).
func (r *mongoExerciseRepository) ListByWorkoutDays(ctx context.Context, dayIDs []primitive.ObjectID) ([]domain.Exercise, error) {
	if len(dayIDs) == 0 {
		return []domain.Exercise{}, nil
	}
	filter := bson.M{"workoutDayId": bson.M{"$in": dayIDs}}
	findOptions := options.Find().SetSort(bson.D{{Key: "orderIndex", Value: 1}, {Key: "_id", Value: 1}})
	return findAll[domain.Exercise](ctx, r.collection, filter, findOptions)
}

// Update modifies an existing exercise in place, keeping its ID so that
// completions and comments stay attached.
func (r *mongoExerciseRepository) Update(ctx context.Context, exercise *domain.Exercise) error {
	if exercise.ID == primitive.NilObjectID {
		return errors.New("exercise ID is required for update")
	}
	exercise.UpdatedAt = time.Now().UTC()

	update := bson.M{
		"$set": bson.M{
			"name":              exercise.Name,
			"setConfigurations": exercise.SetConfigurations,
			"sets":              exercise.Sets,
			"reps":              exercise.Reps,
			"weight":            exercise.Weight,
			"videoUrl":          exercise.VideoURL,
			"notes":             exercise.Notes,
			"orderIndex":        exercise.OrderIndex,
			"updatedAt":         exercise.UpdatedAt,
		},
	}
	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": exercise.ID}, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *mongoExerciseRepository) DeleteByIDs(ctx context.Context, ids []primitive.ObjectID) error {
	if len(ids) == 0 {
		return nil
	}
	_, err := r.collection.DeleteMany(ctx, byIDs(ids))
	return err
}

// EnsureExerciseIndexes creates necessary indexes for the exercises collection.
func EnsureExerciseIndexes(ctx context.Context, collection *mongo.Collection) error {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "workoutDayId", Value: 1}, {Key: "orderIndex", Value: 1}},
			Options: options.Index(),
		},
		{
			Keys:    bson.D{{Key: "routineId", Value: 1}},
			Options: options.Index(),
		},
	}
	_, err := collection.Indexes().CreateMany(ctx, indexes)
	return err
}
