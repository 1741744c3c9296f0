package mongo

import (
	"context"
	"errors"
	"time"

	"github.com/mantism/hyperbolic/internal/domain"
	"github.com/mantism/hyperbolic/internal/repository"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const trickCollectionName = "tricks"

// mongoTrickRepository implements repository.TrickRepository
type mongoTrickRepository struct {
	collection *mongo.Collection
}

// NewMongoTrickRepository creates a new Trick repository backed by MongoDB.
func NewMongoTrickRepository(db *mongo.Database) repository.TrickRepository {
	return &mongoTrickRepository{
		collection: db.Collection(trickCollectionName),
	}
}

// Create inserts a new trick into the catalog.
func (r *mongoTrickRepository) Create(ctx context.Context, trick *domain.Trick) (primitive.ObjectID, error) {
	if trick.Name == "" || trick.Slug == "" {
		return primitive.NilObjectID, errors.New("trick requires name and slug")
	}

	trick.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	trick.CreatedAt = now
	trick.UpdatedAt = now

	result, err := r.collection.InsertOne(ctx, trick)
	if err != nil {
		return primitive.NilObjectID, err
	}

	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, errors.New("failed to convert inserted ID")
	}
	return insertedID, nil
}

// GetByID retrieves a trick by its ID.
func (r *mongoTrickRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Trick, error) {
	var trick domain.Trick
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&trick)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &trick, nil
}

// GetBySlug retrieves a trick by its URL-safe slug.
func (r *mongoTrickRepository) GetBySlug(ctx context.Context, slug string) (*domain.Trick, error) {
	var trick domain.Trick
	err := r.collection.FindOne(ctx, bson.M{"slug": slug}).Decode(&trick)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &trick, nil
}

// List returns catalog tricks, optionally filtered to one category.
func (r *mongoTrickRepository) List(ctx context.Context, category string) ([]domain.Trick, error) {
	filter := bson.M{}
	if category != "" {
		filter["categories"] = category
	}

	findOptions := options.Find().SetSort(bson.D{{Key: "difficulty", Value: 1}, {Key: "name", Value: 1}})
	cursor, err := r.collection.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var tricks []domain.Trick
	if err := cursor.All(ctx, &tricks); err != nil {
		return nil, err
	}
	return tricks, nil
}

// EnsureTrickIndexes creates necessary indexes for the tricks collection.
func EnsureTrickIndexes(ctx context.Context, collection *mongo.Collection) {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "slug", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "categories", Value: 1}},
			Options: options.Index(),
		},
	}
	_, _ = collection.Indexes().CreateMany(ctx, indexes)
}
