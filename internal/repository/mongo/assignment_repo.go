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

const assignmentCollectionName = "routine_assignments"

// mongoAssignmentRepository implements repository.AssignmentRepository
type mongoAssignmentRepository struct {
	collection *mongo.Collection
}

// NewMongoAssignmentRepository creates a new Assignment repository backed by MongoDB.
func NewMongoAssignmentRepository(db *mongo.Database) repository.AssignmentRepository {
	return &mongoAssignmentRepository{
		collection: db.Collection(assignmentCollectionName),
	}
}

// Create inserts a new assignment. A second assignment of the same routine to
// the same student fails with repository.ErrConflict.
func (r *mongoAssignmentRepository) Create(ctx context.Context, assignment *domain.RoutineAssignment) (primitive.ObjectID, error) {
	if assignment.RoutineID == primitive.NilObjectID || assignment.StudentID == primitive.NilObjectID {
		return primitive.NilObjectID, errors.New("assignment requires routineId and studentId")
	}

	assignment.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	assignment.AssignedAt = now
	assignment.UpdatedAt = now

	if _, err := r.collection.InsertOne(ctx, assignment); err != nil {
		return primitive.NilObjectID, insertErr(err)
	}
	return assignment.ID, nil
}

// GetByID retrieves an assignment by its ID.
func (r *mongoAssignmentRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.RoutineAssignment, error) {
	return findOne[domain.RoutineAssignment](ctx, r.collection, bson.M{"_id": id})
}

func (r *mongoAssignmentRepository) ListByRoutine(ctx context.Context, routineID primitive.ObjectID) ([]domain.RoutineAssignment, error) {
	findOptions := options.Find().SetSort(bson.D{{Key: "assignedAt", Value: 1}})
	return findAll[domain.RoutineAssignment](ctx, r.collection, bson.M{"routineId": routineID}, findOptions)
}

// ListByStudent retrieves a student's assignments, newest first.
func (r *mongoAssignmentRepository) ListByStudent(ctx context.Context, studentID primitive.ObjectID) ([]domain.RoutineAssignment, error) {
	findOptions := options.Find().SetSort(bson.D{{Key: "assignedAt", Value: -1}})
	return findAll[domain.RoutineAssignment](ctx, r.collection, bson.M{"studentId": studentID}, findOptions)
}

func (r *mongoAssignmentRepository) SetVisible(ctx context.Context, id primitive.ObjectID, visible bool) error {
	update := bson.M{"$set": bson.M{"visible": visible, "updatedAt": time.Now().UTC()}}
	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *mongoAssignmentRepository) DeleteByRoutineAndStudents(ctx context.Context, routineID primitive.ObjectID, studentIDs []primitive.ObjectID) error {
	if len(studentIDs) == 0 {
		return nil
	}
	filter := bson.M{"routineId": routineID, "studentId": bson.M{"$in": studentIDs}}
	_, err := r.collection.DeleteMany(ctx, filter)
	return err
}

func (r *mongoAssignmentRepository) DeleteByRoutine(ctx context.Context, routineID primitive.ObjectID) error {
	_, err := r.collection.DeleteMany(ctx, bson.M{"routineId": routineID})
	return err
}

func (r *mongoAssignmentRepository) Count(ctx context.Context) (int64, error) {
	return r.collection.CountDocuments(ctx, bson.M{})
}

// EnsureAssignmentIndexes creates necessary indexes for the assignments collection.
func EnsureAssignmentIndexes(ctx context.Context, collection *mongo.Collection) error {
	indexes := []mongo.IndexModel{
		{
			// At most one assignment per (routine, student)
			Keys:    bson.D{{Key: "routineId", Value: 1}, {Key: "studentId", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "studentId", Value: 1}, {Key: "assignedAt", Value: -1}},
			Options: options.Index(),
		},
		{
			Keys:    bson.D{{Key: "trainerId", Value: 1}},
			Options: options.Index(),
		},
	}
	_, err := collection.Indexes().CreateMany(ctx, indexes)
	return err
}
