package mongo

import (
	"alcyxob/gym-app/internal/domain"
	"alcyxob/gym-app/internal/repository"
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const commentCollectionName = "comments"

// commentDocument is the stored shape of a domain.Comment. Exactly one of the
// target key groups is set, matching Type.
type commentDocument struct {
	ID           primitive.ObjectID  `bson:"_id,omitempty"`
	StudentID    primitive.ObjectID  `bson:"studentId"`
	Type         domain.CommentType  `bson:"type"`
	RoutineID    *primitive.ObjectID `bson:"routineId,omitempty"`
	WeekNumber   *int                `bson:"weekNumber,omitempty"`
	WorkoutDayID *primitive.ObjectID `bson:"workoutDayId,omitempty"`
	ExerciseID   *primitive.ObjectID `bson:"exerciseId,omitempty"`
	Content      string              `bson:"content"`
	CreatedAt    time.Time           `bson:"createdAt"`
}

func toCommentDocument(c *domain.Comment) (*commentDocument, error) {
	doc := &commentDocument{
		ID:        c.ID,
		StudentID: c.StudentID,
		Content:   c.Content,
		CreatedAt: c.CreatedAt,
	}
	switch t := c.Target.(type) {
	case domain.WeekTarget:
		routineID, week := t.RoutineID, t.WeekNumber
		doc.Type, doc.RoutineID, doc.WeekNumber = domain.CommentWeek, &routineID, &week
	case domain.DayTarget:
		dayID := t.WorkoutDayID
		doc.Type, doc.WorkoutDayID = domain.CommentDay, &dayID
	case domain.ExerciseTarget:
		exerciseID := t.ExerciseID
		doc.Type, doc.ExerciseID = domain.CommentExercise, &exerciseID
	default:
		return nil, fmt.Errorf("unsupported comment target %T", c.Target)
	}
	return doc, nil
}

func (d *commentDocument) toDomain() (domain.Comment, error) {
	c := domain.Comment{
		ID:        d.ID,
		StudentID: d.StudentID,
		Content:   d.Content,
		CreatedAt: d.CreatedAt,
	}
	switch {
	case d.Type == domain.CommentWeek && d.RoutineID != nil && d.WeekNumber != nil:
		c.Target = domain.WeekTarget{RoutineID: *d.RoutineID, WeekNumber: *d.WeekNumber}
	case d.Type == domain.CommentDay && d.WorkoutDayID != nil:
		c.Target = domain.DayTarget{WorkoutDayID: *d.WorkoutDayID}
	case d.Type == domain.CommentExercise && d.ExerciseID != nil:
		c.Target = domain.ExerciseTarget{ExerciseID: *d.ExerciseID}
	default:
		return c, fmt.Errorf("comment %s has malformed target", d.ID.Hex())
	}
	return c, nil
}

// mongoCommentRepository implements repository.CommentRepository
type mongoCommentRepository struct {
	collection *mongo.Collection
}

func NewMongoCommentRepository(db *mongo.Database) repository.CommentRepository {
	return &mongoCommentRepository{
		collection: db.Collection(commentCollectionName),
	}
}

func (r *mongoCommentRepository) Create(ctx context.Context, comment *domain.Comment) (primitive.ObjectID, error) {
	if comment.StudentID == primitive.NilObjectID || comment.Content == "" {
		return primitive.NilObjectID, errors.New("comment requires studentId and content")
	}
	comment.ID = primitive.NewObjectID()
	comment.CreatedAt = time.Now().UTC()

	doc, err := toCommentDocument(comment)
	if err != nil {
		return primitive.NilObjectID, err
	}
	if _, err := r.collection.InsertOne(ctx, doc); err != nil {
		return primitive.NilObjectID, insertErr(err)
	}
	return comment.ID, nil
}

func (r *mongoCommentRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Comment, error) {
	doc, err := findOne[commentDocument](ctx, r.collection, bson.M{"_id": id})
	if err != nil {
		return nil, err
	}
	c, err := doc.toDomain()
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// ListByStudent retrieves a student's comments, newest first.
func (r *mongoCommentRepository) ListByStudent(ctx context.Context, studentID primitive.ObjectID) ([]domain.Comment, error) {
	findOptions := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	docs, err := findAll[commentDocument](ctx, r.collection, bson.M{"studentId": studentID}, findOptions)
	if err != nil {
		return nil, err
	}
	out := make([]domain.Comment, 0, len(docs))
	for i := range docs {
		c, err := docs[i].toDomain()
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, nil
}

func (r *mongoCommentRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// DeleteByTargets removes week comments on routineID (unless nil), and day
// and exercise comments on the given IDs.
func (r *mongoCommentRepository) DeleteByTargets(ctx context.Context, routineID primitive.ObjectID, dayIDs, exerciseIDs []primitive.ObjectID) error {
	var or bson.A
	if routineID != primitive.NilObjectID {
		or = append(or, bson.M{"type": domain.CommentWeek, "routineId": routineID})
	}
	if len(dayIDs) > 0 {
		or = append(or, bson.M{"type": domain.CommentDay, "workoutDayId": bson.M{"$in": dayIDs}})
	}
	if len(exerciseIDs) > 0 {
		or = append(or, bson.M{"type": domain.CommentExercise, "exerciseId": bson.M{"$in": exerciseIDs}})
	}
	if len(or) == 0 {
		return nil
	}
	_, err := r.collection.DeleteMany(ctx, bson.M{"$or": or})
	return err
}

// EnsureCommentIndexes creates necessary indexes for the comments collection.
func EnsureCommentIndexes(ctx context.Context, collection *mongo.Collection) error {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "studentId", Value: 1}, {Key: "createdAt", Value: -1}},
			Options: options.Index(),
		},
		{
			Keys:    bson.D{{Key: "workoutDayId", Value: 1}},
			Options: options.Index().SetSparse(true),
		},
		{
			Keys:    bson.D{{Key: "exerciseId", Value: 1}},
			Options: options.Index().SetSparse(true),
		},
		{
			Keys:    bson.D{{Key: "routineId", Value: 1}, {Key: "weekNumber", Value: 1}},
			Options: options.Index().SetSparse(true),
		},
	}
	_, err := collection.Indexes().CreateMany(ctx, indexes)
	return err
}
