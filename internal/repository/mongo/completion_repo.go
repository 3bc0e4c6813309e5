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

const completionCollectionName = "exercise_completions"

// mongoCompletionRepository implements repository.CompletionRepository
type mongoCompletionRepository struct {
	collection *mongo.Collection
}

// NewMongoCompletionRepository creates a new completion log repository backed by MongoDB.
func NewMongoCompletionRepository(db *mongo.Database) repository.CompletionRepository {
	return &mongoCompletionRepository{
		collection: db.Collection(completionCollectionName),
	}
}

// Create appends a completion to the log. CompletedAt defaults to now.
func (r *mongoCompletionRepository) Create(ctx context.Context, completion *domain.ExerciseCompletion) (primitive.ObjectID, error) {
	if completion.ExerciseID == primitive.NilObjectID || completion.StudentID == primitive.NilObjectID {
		return primitive.NilObjectID, errors.New("completion requires exerciseId and studentId")
	}

	completion.ID = primitive.NewObjectID()
	if completion.CompletedAt.IsZero() {
		completion.CompletedAt = time.Now().UTC()
	}

	if _, err := r.collection.InsertOne(ctx, completion); err != nil {
		return primitive.NilObjectID, insertErr(err)
	}
	return completion.ID, nil
}

func (r *mongoCompletionRepository) ListByStudentAndExercises(ctx context.Context, studentID primitive.ObjectID, exerciseIDs []primitive.ObjectID) ([]domain.ExerciseCompletion, error) {
	if len(exerciseIDs) == 0 {
		return []domain.ExerciseCompletion{}, nil
	}
	filter := bson.M{"studentId": studentID, "exerciseId": bson.M{"$in": exerciseIDs}}
	return findAll[domain.ExerciseCompletion](ctx, r.collection, filter, latestFirst())
}

func (r *mongoCompletionRepository) ListByStudent(ctx context.Context, studentID primitive.ObjectID) ([]domain.ExerciseCompletion, error) {
	return findAll[domain.ExerciseCompletion](ctx, r.collection, bson.M{"studentId": studentID}, latestFirst())
}

// DeleteByExerciseAndStudent removes every log entry of the pair and reports how many went.
func (r *mongoCompletionRepository) DeleteByExerciseAndStudent(ctx context.Context, exerciseID, studentID primitive.ObjectID) (int64, error) {
	result, err := r.collection.DeleteMany(ctx, bson.M{"exerciseId": exerciseID, "studentId": studentID})
	if err != nil {
		return 0, err
	}
	return result.DeletedCount, nil
}

func (r *mongoCompletionRepository) DeleteByExercises(ctx context.Context, exerciseIDs []primitive.ObjectID) error {
	if len(exerciseIDs) == 0 {
		return nil
	}
	_, err := r.collection.DeleteMany(ctx, bson.M{"exerciseId": bson.M{"$in": exerciseIDs}})
	return err
}

func (r *mongoCompletionRepository) Count(ctx context.Context) (int64, error) {
	return r.collection.CountDocuments(ctx, bson.M{})
}

func latestFirst() *options.FindOptions {
	return options.Find().SetSort(bson.D{{Key: "completedAt", Value: -1}})
}

// EnsureCompletionIndexes creates necessary indexes for the completion log.
func EnsureCompletionIndexes(ctx context.Context, collection *mongo.Collection) error {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "studentId", Value: 1}, {Key: "exerciseId", Value: 1}},
			Options: options.Index(),
		},
		{
			Keys:    bson.D{{Key: "studentId", Value: 1}, {Key: "completedAt", Value: -1}},
			Options: options.Index(),
		},
		{
			Keys:    bson.D{{Key: "exerciseId", Value: 1}},
			Options: options.Index(),
		},
	}
	_, err := collection.Indexes().CreateMany(ctx, indexes)
	return err
}
