package mongo

import (
	"alcyxob/gym-app/internal/domain"
	"alcyxob/gym-app/internal/repository" // Import the repository interfaces package
	"context"
	"errors"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const profileCollectionName = "profiles"

// mongoProfileRepository implements the repository.ProfileRepository interface using MongoDB.
type mongoProfileRepository struct {
	collection *mongo.Collection
}

// NewMongoProfileRepository creates a new instance of mongoProfileRepository.
func NewMongoProfileRepository(db *mongo.Database) repository.ProfileRepository {
	return &mongoProfileRepository{
		collection: db.Collection(profileCollectionName),
	}
}

// Create inserts a new profile. Emails are stored lower-cased.
func (r *mongoProfileRepository) Create(ctx context.Context, profile *domain.Profile) (primitive.ObjectID, error) {
	if profile.Email == "" || profile.PasswordHash == "" || profile.Role == "" {
		return primitive.NilObjectID, errors.New("profile email, password hash, and role are required")
	}

	profile.ID = primitive.NewObjectID()
	profile.Email = strings.ToLower(profile.Email)
	now := time.Now().UTC()
	profile.CreatedAt = now
	profile.UpdatedAt = now

	if _, err := r.collection.InsertOne(ctx, profile); err != nil {
		return primitive.NilObjectID, insertErr(err)
	}
	return profile.ID, nil
}

func (r *mongoProfileRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Profile, error) {
	return findOne[domain.Profile](ctx, r.collection, bson.M{"_id": id})
}

func (r *mongoProfileRepository) GetByEmail(ctx context.Context, email string) (*domain.Profile, error) {
	return findOne[domain.Profile](ctx, r.collection, bson.M{"email": strings.ToLower(email)})
}

func (r *mongoProfileRepository) GetByIDs(ctx context.Context, ids []primitive.ObjectID) ([]domain.Profile, error) {
	if len(ids) == 0 {
		return []domain.Profile{}, nil
	}
	return findAll[domain.Profile](ctx, r.collection, byIDs(ids), options.Find().SetSort(bson.D{{Key: "fullName", Value: 1}}))
}

// List returns profiles sorted by name, optionally restricted to one role.
func (r *mongoProfileRepository) List(ctx context.Context, role domain.Role) ([]domain.Profile, error) {
	filter := bson.M{}
	if role != "" {
		filter["role"] = role
	}
	return findAll[domain.Profile](ctx, r.collection, filter, options.Find().SetSort(bson.D{{Key: "fullName", Value: 1}}))
}

// Update writes the mutable profile fields. Email and password hash are not
// touched here.
func (r *mongoProfileRepository) Update(ctx context.Context, profile *domain.Profile) error {
	if profile.ID == primitive.NilObjectID {
		return errors.New("profile ID is required for update")
	}
	profile.UpdatedAt = time.Now().UTC()

	update := bson.M{
		"$set": bson.M{
			"fullName":            profile.FullName,
			"avatarUrl":           profile.AvatarURL,
			"role":                profile.Role,
			"onboardingCompleted": profile.OnboardingCompleted,
			"objective":           profile.Objective,
			"birthDate":           profile.BirthDate,
			"gender":              profile.Gender,
			"heightCm":            profile.HeightCM,
			"weightKg":            profile.WeightKG,
			"experienceLevel":     profile.ExperienceLevel,
			"injuries":            profile.Injuries,
			"medicalNotes":        profile.MedicalNotes,
			"desiredFrequency":    profile.DesiredFrequency,
			"notes":               profile.Notes,
			"updatedAt":           profile.UpdatedAt,
		},
	}
	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": profile.ID}, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *mongoProfileRepository) UpdatePasswordHash(ctx context.Context, id primitive.ObjectID, hash string) error {
	update := bson.M{"$set": bson.M{"passwordHash": hash, "updatedAt": time.Now().UTC()}}
	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// CountByRole aggregates the number of profiles per role.
func (r *mongoProfileRepository) CountByRole(ctx context.Context) (map[domain.Role]int64, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$group", Value: bson.D{{Key: "_id", Value: "$role"}, {Key: "count", Value: bson.D{{Key: "$sum", Value: 1}}}}}},
	}
	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var rows []struct {
		Role  domain.Role `bson:"_id"`
		Count int64       `bson:"count"`
	}
	if err = cursor.All(ctx, &rows); err != nil {
		return nil, err
	}
	counts := make(map[domain.Role]int64, len(rows))
	for _, row := range rows {
		counts[row.Role] = row.Count
	}
	return counts, nil
}

// EnsureProfileIndexes creates necessary indexes for the profiles collection.
func EnsureProfileIndexes(ctx context.Context, collection *mongo.Collection) error {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "role", Value: 1}},
			Options: options.Index(),
		},
	}
	_, err := collection.Indexes().CreateMany(ctx, indexes)
	return err
}
