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

const videoCollectionName = "videos"

// mongoVideoRepository implements repository.VideoRepository
type mongoVideoRepository struct {
	collection *mongo.Collection
}

// NewMongoVideoRepository creates a new Video repository backed by MongoDB.
func NewMongoVideoRepository(db *mongo.Database) repository.VideoRepository {
	return &mongoVideoRepository{
		collection: db.Collection(videoCollectionName),
	}
}

// Create inserts new video metadata. The record is expected to carry
// status "pending" and its grant expiry; it exists before any bytes do.
func (r *mongoVideoRepository) Create(ctx context.Context, video *domain.Video) (primitive.ObjectID, error) {
	if video.UserID == primitive.NilObjectID ||
		video.TrickID == primitive.NilObjectID ||
		video.S3ObjectKey == "" {
		return primitive.NilObjectID, errors.New("video requires userId, trickId, and s3ObjectKey")
	}
	if !video.Status.Valid() {
		return primitive.NilObjectID, errors.New("video has unknown status")
	}

	video.ID = primitive.NewObjectID()
	video.CreatedAt = time.Now().UTC()

	result, err := r.collection.InsertOne(ctx, video)
	if err != nil {
		return primitive.NilObjectID, err
	}

	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, errors.New("failed to convert inserted ID")
	}
	return insertedID, nil
}

// GetByID retrieves video metadata by its ID.
func (r *mongoVideoRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Video, error) {
	var video domain.Video
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&video)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &video, nil
}

// GetByUserID retrieves all videos owned by a user, newest first.
func (r *mongoVideoRepository) GetByUserID(ctx context.Context, userID primitive.ObjectID) ([]domain.Video, error) {
	findOptions := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := r.collection.Find(ctx, bson.M{"userId": userID}, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var videos []domain.Video
	if err := cursor.All(ctx, &videos); err != nil {
		return nil, err
	}
	return videos, nil
}

// TransitionStatus atomically moves a video from one status to another.
// The filter carries the expected current status, so a record that already
// left that state is not touched and the caller sees ErrStatusConflict.
func (r *mongoVideoRepository) TransitionStatus(ctx context.Context, id primitive.ObjectID, from, to domain.VideoStatus) (*domain.Video, error) {
	filter := bson.M{"_id": id, "status": from}
	update := bson.M{"$set": bson.M{"status": to}}
	if to == domain.VideoStatusCompleted {
		now := time.Now().UTC()
		update = bson.M{"$set": bson.M{"status": to, "completedAt": now}}
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var video domain.Video
	err := r.collection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&video)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			// Either no such video, or its status is not `from`.
			if _, getErr := r.GetByID(ctx, id); getErr != nil {
				return nil, getErr
			}
			return nil, repository.ErrStatusConflict
		}
		return nil, err
	}
	return &video, nil
}

// ListExpiredPending returns pending videos whose upload grant has lapsed.
// Used by the reaper to fail records that never reached completion.
func (r *mongoVideoRepository) ListExpiredPending(ctx context.Context, limit int64) ([]domain.Video, error) {
	filter := bson.M{
		"status":       domain.VideoStatusPending,
		"grantExpires": bson.M{"$lt": time.Now().UTC()},
	}
	findOptions := options.Find().SetLimit(limit).SetSort(bson.D{{Key: "grantExpires", Value: 1}})

	cursor, err := r.collection.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var videos []domain.Video
	if err := cursor.All(ctx, &videos); err != nil {
		return nil, err
	}
	return videos, nil
}

// EnsureVideoIndexes creates necessary indexes for the videos collection.
func EnsureVideoIndexes(ctx context.Context, collection *mongo.Collection) {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "userId", Value: 1}, {Key: "createdAt", Value: -1}},
			Options: options.Index(),
		},
		{
			Keys:    bson.D{{Key: "trickId", Value: 1}},
			Options: options.Index(),
		},
		{
			// Serves the reaper's expired-pending scan.
			Keys:    bson.D{{Key: "status", Value: 1}, {Key: "grantExpires", Value: 1}},
			Options: options.Index(),
		},
	}
	_, _ = collection.Indexes().CreateMany(ctx, indexes)
}
