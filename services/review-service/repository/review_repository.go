package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/tunebox/songreview/internal/logger"
	"github.com/tunebox/songreview/services/review-service/domain"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type ReviewRepository interface {
	Create(ctx context.Context, review *domain.Review) error
	FindByID(ctx context.Context, id string) (*domain.Review, error)
	FindBySongID(ctx context.Context, songID string) ([]*domain.Review, error)
	FindByUserID(ctx context.Context, userID string) ([]*domain.Review, error)

	// UpdateFields sets the given document fields and updated_at, returning the stored review.
	UpdateFields(ctx context.Context, id string, fields map[string]interface{}, updatedAt time.Time) (*domain.Review, error)
	// ToggleLike adds userID to likes if absent, removes it otherwise, and returns the resulting likes.
	ToggleLike(ctx context.Context, id string, userID string) ([]string, error)
	Delete(ctx context.Context, id string) error

	RatingSummary(ctx context.Context, songID string) (float64, int64, error)
}

type reviewRepository struct {
	collection *mongo.Collection
}

func NewReviewRepository(db *mongo.Database) ReviewRepository {
	collection := db.Collection("reviews")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "id", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "user.id", Value: 1}, {Key: "song.id", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "song.id", Value: 1}, {Key: "created_at", Value: -1}},
		},
	}

	if _, err := collection.Indexes().CreateMany(ctx, indexes); err != nil {
		logger.Warn(logger.EventDBError, "Failed to create indexes for reviews", logger.Fields("error", err.Error()))
	}

	return &reviewRepository{collection: collection}
}

func (r *reviewRepository) Create(ctx context.Context, review *domain.Review) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if review.Likes == nil {
		review.Likes = []string{}
	}

	_, err := r.collection.InsertOne(ctx, review)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domain.ErrReviewExists
		}
		logger.Error(logger.EventDBError, "Error creating review", logger.Fields(
			"user_id", review.User.ID,
			"song_id", review.Song.ID,
			"error", err.Error(),
		))
		return fmt.Errorf("failed to create review: %w", err)
	}
	return nil
}

func (r *reviewRepository) FindByID(ctx context.Context, id string) (*domain.Review, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var review domain.Review
	err := r.collection.FindOne(ctx, bson.M{"id": id}).Decode(&review)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrReviewNotFound
		}
		return nil, fmt.Errorf("failed to fetch review: %w", err)
	}
	return &review, nil
}

func (r *reviewRepository) FindBySongID(ctx context.Context, songID string) ([]*domain.Review, error) {
	return r.findMany(ctx, bson.M{"song.id": songID})
}

func (r *reviewRepository) FindByUserID(ctx context.Context, userID string) ([]*domain.Review, error) {
	return r.findMany(ctx, bson.M{"user.id": userID})
}

func (r *reviewRepository) findMany(ctx context.Context, filter bson.M) ([]*domain.Review, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		logger.Error(logger.EventDBError, "Error listing reviews", logger.Fields("error", err.Error()))
		return nil, fmt.Errorf("failed to fetch reviews: %w", err)
	}
	defer cursor.Close(ctx)

	reviews := []*domain.Review{}
	if err := cursor.All(ctx, &reviews); err != nil {
		return nil, fmt.Errorf("failed to decode reviews: %w", err)
	}
	return reviews, nil
}

func (r *reviewRepository) UpdateFields(ctx context.Context, id string, fields map[string]interface{}, updatedAt time.Time) (*domain.Review, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	set := bson.M{"updated_at": updatedAt}
	for k, v := range fields {
		set[k] = v
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var review domain.Review
	err := r.collection.FindOneAndUpdate(ctx, bson.M{"id": id}, bson.M{"$set": set}, opts).Decode(&review)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrReviewNotFound
		}
		logger.Error(logger.EventDBError, "Error updating review", logger.Fields(
			"review_id", id,
			"error", err.Error(),
		))
		return nil, fmt.Errorf("failed to update review: %w", err)
	}
	return &review, nil
}

func (r *reviewRepository) ToggleLike(ctx context.Context, id string, userID string) ([]string, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	likes := bson.D{{Key: "$ifNull", Value: bson.A{"$likes", bson.A{}}}}
	// Single pipeline update so concurrent toggles on the same review cannot interleave.
	update := mongo.Pipeline{
		{{Key: "$set", Value: bson.D{{Key: "likes", Value: bson.D{{Key: "$cond", Value: bson.A{
			bson.D{{Key: "$in", Value: bson.A{userID, likes}}},
			bson.D{{Key: "$filter", Value: bson.D{
				{Key: "input", Value: likes},
				{Key: "cond", Value: bson.D{{Key: "$ne", Value: bson.A{"$$this", userID}}}},
			}}},
			bson.D{{Key: "$concatArrays", Value: bson.A{likes, bson.A{userID}}}},
		}}}}}}},
	}

	opts := options.FindOneAndUpdate().
		SetReturnDocument(options.After).
		SetProjection(bson.M{"likes": 1})

	var result struct {
		Likes []string `bson:"likes"`
	}
	err := r.collection.FindOneAndUpdate(ctx, bson.M{"id": id}, update, opts).Decode(&result)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrReviewNotFound
		}
		logger.Error(logger.EventDBError, "Error toggling like", logger.Fields(
			"review_id", id,
			"user_id", userID,
			"error", err.Error(),
		))
		return nil, fmt.Errorf("failed to toggle like: %w", err)
	}
	if result.Likes == nil {
		result.Likes = []string{}
	}
	return result.Likes, nil
}

func (r *reviewRepository) Delete(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	result, err := r.collection.DeleteOne(ctx, bson.M{"id": id})
	if err != nil {
		logger.Error(logger.EventDBError, "Error deleting review", logger.Fields(
			"review_id", id,
			"error", err.Error(),
		))
		return fmt.Errorf("failed to delete review: %w", err)
	}
	if result.DeletedCount == 0 {
		return domain.ErrReviewNotFound
	}
	return nil
}

func (r *reviewRepository) RatingSummary(ctx context.Context, songID string) (float64, int64, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.D{{Key: "song.id", Value: songID}}}},
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: "$song.id"},
			{Key: "avgRating", Value: bson.D{{Key: "$avg", Value: "$rating"}}},
			{Key: "count", Value: bson.D{{Key: "$sum", Value: 1}}},
		}}},
	}

	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to aggregate ratings: %w", err)
	}
	defer cursor.Close(ctx)

	var result []struct {
		AvgRating float64 `bson:"avgRating"`
		Count     int64   `bson:"count"`
	}
	if err := cursor.All(ctx, &result); err != nil {
		return 0, 0, fmt.Errorf("failed to decode aggregation result: %w", err)
	}
	if len(result) == 0 {
		return 0, 0, nil
	}
	return result[0].AvgRating, result[0].Count, nil
}
