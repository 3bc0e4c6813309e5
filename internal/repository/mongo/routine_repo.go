// internal/repository/mongo/routine_repo.go
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

const routineCollectionName = "routines"

// mongoRoutineRepository implements repository.RoutineRepository
type mongoRoutineRepository struct {
	collection *mongo.Collection
}

// NewMongoRoutineRepository creates a new Routine repository.
func NewMongoRoutineRepository(db *mongo.Database) repository.RoutineRepository {
	return &mongoRoutineRepository{
		collection: db.Collection(routineCollectionName),
	}
}

// Create inserts a new routine.
func (r *mongoRoutineRepository) Create(ctx context.Context, routine *domain.Routine) (primitive.ObjectID, error) {
	if routine.TrainerID == primitive.NilObjectID || routine.Name == "" {
		return primitive.NilObjectID, errors.New("routine requires trainerId and name")
	}
	routine.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	routine.CreatedAt = now
	routine.UpdatedAt = now

	if _, err := r.collection.InsertOne(ctx, routine); err != nil {
		return primitive.NilObjectID, insertErr(err)
	}
	return routine.ID, nil
}

func (r *mongoRoutineRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Routine, error) {
	return findOne[domain.Routine](ctx, r.collection, bson.M{"_id": id})
}

func (r *mongoRoutineRepository) GetByIDs(ctx context.Context, ids []primitive.ObjectID) ([]domain.Routine, error) {
	if len(ids) == 0 {
		return []domain.Routine{}, nil
	}
	return findAll[domain.Routine](ctx, r.collection, byIDs(ids), newestFirst())
}

// ListByTrainer retrieves the routines owned by a trainer, newest first.
func (r *mongoRoutineRepository) ListByTrainer(ctx context.Context, trainerID primitive.ObjectID) ([]domain.Routine, error) {
	return findAll[domain.Routine](ctx, r.collection, bson.M{"trainerId": trainerID}, newestFirst())
}

func (r *mongoRoutineRepository) ListAll(ctx context.Context) ([]domain.Routine, error) {
	return findAll[domain.Routine](ctx, r.collection, bson.M{}, newestFirst())
}

// Update writes the routine shell. TrainerID and CreatedAt never change.
func (r *mongoRoutineRepository) Update(ctx context.Context, routine *domain.Routine) error {
	if routine.ID == primitive.NilObjectID {
		return errors.New("routine ID is required for update")
	}
	routine.UpdatedAt = time.Now().UTC()

	updateDoc := bson.M{
		"$set": bson.M{
			"name":         routine.Name,
			"description":  routine.Description,
			"durationType": routine.DurationType,
			"startDate":    routine.StartDate,
			"endDate":      routine.EndDate,
			"updatedAt":    routine.UpdatedAt,
		},
	}
	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": routine.ID}, updateDoc)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// Delete removes the routine document only; dependent rows are removed by the service.
func (r *mongoRoutineRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *mongoRoutineRepository) Count(ctx context.Context) (int64, error) {
	return r.collection.CountDocuments(ctx, bson.M{})
}

func newestFirst() *options.FindOptions {
	return options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
}

// EnsureRoutineIndexes creates necessary indexes. Call during startup.
func EnsureRoutineIndexes(ctx context.Context, collection *mongo.Collection) error {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "trainerId", Value: 1}, {Key: "createdAt", Value: -1}},
			Options: options.Index(),
		},
	}
	_, err := collection.Indexes().CreateMany(ctx, indexes)
	return err
}
