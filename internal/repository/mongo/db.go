package mongo

import (
	"alcyxob/gym-app/internal/repository"
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// Default connection timeout
const defaultTimeout = 10 * time.Second

// ConnectDB establishes a connection to MongoDB using the provided URI.
// It returns the mongo.Client which can be used to access databases and collections.
func ConnectDB(uri string) (*mongo.Client, error) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, err
	}

	// Ping the primary node to verify the connection.
	pingCtx, pingCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer pingCancel()

	if err = client.Ping(pingCtx, readpref.Primary()); err != nil {
		disconnectCtx, disconnectCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer disconnectCancel()
		_ = client.Disconnect(disconnectCtx)
		return nil, err
	}

	return client, nil
}

// DisconnectDB gracefully disconnects the MongoDB client.
func DisconnectDB(client *mongo.Client) error {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()
	return client.Disconnect(ctx)
}

// NewRepositories wires every Mongo repository against db. Multi-document
// transactions need a replica set; with useTransactions=false writes inside
// WithTransaction are applied one by one.
func NewRepositories(client *mongo.Client, db *mongo.Database, useTransactions bool) repository.Repositories {
	var tx repository.Transactor = noTransactor{}
	if useTransactions {
		tx = &sessionTransactor{client: client}
	}
	return repository.Repositories{
		Profiles:    NewMongoProfileRepository(db),
		Routines:    NewMongoRoutineRepository(db),
		WorkoutDays: NewMongoWorkoutDayRepository(db),
		Exercises:   NewMongoExerciseRepository(db),
		Assignments: NewMongoAssignmentRepository(db),
		Completions: NewMongoCompletionRepository(db),
		Comments:    NewMongoCommentRepository(db),
		Roster:      NewMongoRosterRepository(db),
		Tx:          tx,
	}
}

// EnsureIndexes creates the indexes of every collection. Unique indexes back
// the (routine, week, day), (routine, student) and (trainer, student)
// invariants, so failures here are returned rather than ignored.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	ensure := []func(context.Context, *mongo.Collection) error{
		EnsureProfileIndexes,
		EnsureRoutineIndexes,
		EnsureWorkoutDayIndexes,
		EnsureExerciseIndexes,
		EnsureAssignmentIndexes,
		EnsureCompletionIndexes,
		EnsureCommentIndexes,
		EnsureRosterIndexes,
	}
	names := []string{
		profileCollectionName,
		routineCollectionName,
		workoutDayCollectionName,
		exerciseCollectionName,
		assignmentCollectionName,
		completionCollectionName,
		commentCollectionName,
		rosterCollectionName,
	}
	for i, fn := range ensure {
		if err := fn(ctx, db.Collection(names[i])); err != nil {
			return err
		}
	}
	return nil
}

// sessionTransactor runs callbacks inside a MongoDB session transaction.
type sessionTransactor struct {
	client *mongo.Client
}

func (t *sessionTransactor) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	session, err := t.client.StartSession()
	if err != nil {
		return err
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		return nil, fn(sc)
	})
	return err
}

type noTransactor struct{}

func (noTransactor) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

// --- shared helpers ---

func findAll[T any](ctx context.Context, collection *mongo.Collection, filter interface{}, opts ...*options.FindOptions) ([]T, error) {
	cursor, err := collection.Find(ctx, filter, opts...)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	out := []T{}
	if err = cursor.All(ctx, &out); err != nil {
		return nil, err
	}
	if err = cursor.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func findOne[T any](ctx context.Context, collection *mongo.Collection, filter interface{}) (*T, error) {
	var out T
	err := collection.FindOne(ctx, filter).Decode(&out)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &out, nil
}

// insertErr maps duplicate key violations to repository.ErrConflict.
func insertErr(err error) error {
	if mongo.IsDuplicateKeyError(err) {
		return repository.ErrConflict
	}
	return err
}

func byIDs(ids interface{}) bson.M {
	return bson.M{"_id": bson.M{"$in": ids}}
}
