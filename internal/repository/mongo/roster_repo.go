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

const rosterCollectionName = "trainer_students"

// mongoRosterRepository implements repository.RosterRepository
type mongoRosterRepository struct {
	collection *mongo.Collection
}

// NewMongoRosterRepository creates a new trainer-student link repository.
func NewMongoRosterRepository(db *mongo.Database) repository.RosterRepository {
	return &mongoRosterRepository{
		collection: db.Collection(rosterCollectionName),
	}
}

func (r *mongoRosterRepository) Create(ctx context.Context, link *domain.TrainerStudent) (primitive.ObjectID, error) {
	if link.TrainerID == primitive.NilObjectID || link.StudentID == primitive.NilObjectID {
		return primitive.NilObjectID, errors.New("roster link requires trainerId and studentId")
	}
	link.ID = primitive.NewObjectID()
	link.CreatedAt = time.Now().UTC()

	if _, err := r.collection.InsertOne(ctx, link); err != nil {
		return primitive.NilObjectID, insertErr(err)
	}
	return link.ID, nil
}

func (r *mongoRosterRepository) Delete(ctx context.Context, trainerID, studentID primitive.ObjectID) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"trainerId": trainerID, "studentId": studentID})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *mongoRosterRepository) ListByTrainer(ctx context.Context, trainerID primitive.ObjectID) ([]domain.TrainerStudent, error) {
	findOptions := options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}})
	return findAll[domain.TrainerStudent](ctx, r.collection, bson.M{"trainerId": trainerID}, findOptions)
}

func (r *mongoRosterRepository) ListByStudent(ctx context.Context, studentID primitive.ObjectID) ([]domain.TrainerStudent, error) {
	return findAll[domain.TrainerStudent](ctx, r.collection, bson.M{"studentId": studentID})
}

func (r *mongoRosterRepository) Exists(ctx context.Context, trainerID, studentID primitive.ObjectID) (bool, error) {
	count, err := r.collection.CountDocuments(ctx, bson.M{"trainerId": trainerID, "studentId": studentID}, options.Count().SetLimit(1))
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// EnsureRosterIndexes creates necessary indexes for the roster collection.
func EnsureRosterIndexes(ctx context.Context, collection *mongo.Collection) error {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "trainerId", Value: 1}, {Key: "studentId", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "studentId", Value: 1}},
			Options: options.Index(),
		},
	}
	_, err := collection.Indexes().CreateMany(ctx, indexes)
	return err
}
