package mongo

import (
	"alcyxob/fitgen/internal/domain"
	"alcyxob/fitgen/internal/repository"
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const profileCollectionName = "user_profiles"

// mongoProfileRepository implements repository.ProfileRepository using MongoDB.
type mongoProfileRepository struct {
	collection *mongo.Collection
}

// NewMongoProfileRepository creates a profile repository on db.
func NewMongoProfileRepository(db *mongo.Database) repository.ProfileRepository {
	return &mongoProfileRepository{
		collection: db.Collection(profileCollectionName),
	}
}

// Create inserts a new profile. ID and timestamps are set by the caller.
func (r *mongoProfileRepository) Create(ctx context.Context, profile *domain.Profile) error {
	if profile.ID == "" {
		return errors.New("profile id is required")
	}

	_, err := r.collection.InsertOne(ctx, profile)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return repository.ErrDuplicateKey
		}
		return err
	}
	return nil
}

// GetByID retrieves a profile by its identifier.
func (r *mongoProfileRepository) GetByID(ctx context.Context, id string) (*domain.Profile, error) {
	var profile domain.Profile
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&profile)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &profile, nil
}

// GetByOwner retrieves the newest profile of an external owner.
func (r *mongoProfileRepository) GetByOwner(ctx context.Context, ownerID string) (*domain.Profile, error) {
	var profile domain.Profile
	opts := options.FindOne().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	err := r.collection.FindOne(ctx, bson.M{"ownerId": ownerID}, opts).Decode(&profile)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &profile, nil
}

// Update overwrites every mutable field. ID, owner and createdAt are fixed at creation.
func (r *mongoProfileRepository) Update(ctx context.Context, profile *domain.Profile) error {
	if profile.ID == "" {
		return errors.New("profile id is required for update")
	}

	update := bson.M{
		"$set": bson.M{
			"gender":             profile.Gender,
			"age":                profile.Age,
			"height":             profile.Height,
			"weight":             profile.Weight,
			"goal":               profile.Goal,
			"customGoal":         profile.CustomGoal,
			"months":             profile.Months,
			"currentResults":     profile.CurrentResults,
			"lastTrained":        profile.LastTrained,
			"workoutsPerWeek":    profile.WorkoutsPerWeek,
			"workoutDuration":    profile.WorkoutDuration,
			"trainingStyle":      profile.TrainingStyle,
			"healthRestrictions": profile.HealthRestrictions,
			"preferences":        profile.Preferences,
			"generatedProgram":   profile.GeneratedProgram,
			"updatedAt":          profile.UpdatedAt,
		},
	}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": profile.ID}, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	// ModifiedCount may be 0 when the same step is re-applied.
	return nil
}

// SetGeneratedProgram updates the denormalized program text without touching step answers.
func (r *mongoProfileRepository) SetGeneratedProgram(ctx context.Context, id, content string, updatedAt time.Time) error {
	update := bson.M{
		"$set": bson.M{
			"generatedProgram": content,
			"updatedAt":        updatedAt,
		},
	}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// EnsureProfileIndexes creates the indexes of the profiles collection.
func EnsureProfileIndexes(ctx context.Context, collection *mongo.Collection) error {
	indexes := []mongo.IndexModel{
		{
			// Owner lookups from the chat front-end, newest first.
			Keys:    bson.D{{Key: "ownerId", Value: 1}, {Key: "createdAt", Value: -1}},
			Options: options.Index().SetSparse(true),
		},
	}
	_, err := collection.Indexes().CreateMany(ctx, indexes)
	return err
}
