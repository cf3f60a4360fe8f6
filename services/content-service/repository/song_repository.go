package repository

import (
	"context"
	"errors"
	"regexp"
	"time"

	"github.com/tunebox/songreview/internal/logger"
	"github.com/tunebox/songreview/services/content-service/domain"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type SongRepository interface {
	Create(ctx context.Context, s *domain.Song) error
	FindByID(ctx context.Context, id string) (*domain.Song, error)
	FindBySpotifyID(ctx context.Context, spotifyID string) (*domain.Song, error)
	List(ctx context.Context, limit int64) ([]*domain.Song, error)
	Search(ctx context.Context, query string, limit int64) ([]*domain.Song, error)
}

type songRepository struct {
	songsCol *mongo.Collection
}

func NewSongRepository(db *mongo.Database) SongRepository {
	songs := db.Collection("songs")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_, err := songs.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "id", Value: 1}}, Options: options.Index().SetUnique(true)},
		{
			Keys: bson.D{{Key: "spotify_id", Value: 1}},
			Options: options.Index().SetUnique(true).SetPartialFilterExpression(
				bson.M{"spotify_id": bson.M{"$type": "string"}},
			),
		},
		{Keys: bson.D{{Key: "name", Value: 1}}},
	})
	if err != nil {
		logger.Warn(logger.EventDBError, "Failed to create indexes for songs", logger.Fields("error", err.Error()))
	}

	return &songRepository{songsCol: songs}
}

func (r *songRepository) Create(ctx context.Context, s *domain.Song) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	_, err := r.songsCol.InsertOne(ctx, s)
	if mongo.IsDuplicateKeyError(err) {
		return domain.ErrSongExists
	}
	return err
}

func (r *songRepository) FindByID(ctx context.Context, id string) (*domain.Song, error) {
	return r.findOne(ctx, bson.M{"id": id})
}

func (r *songRepository) FindBySpotifyID(ctx context.Context, spotifyID string) (*domain.Song, error) {
	return r.findOne(ctx, bson.M{"spotify_id": spotifyID})
}

func (r *songRepository) findOne(ctx context.Context, filter bson.M) (*domain.Song, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	var s domain.Song
	if err := r.songsCol.FindOne(ctx, filter).Decode(&s); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrSongNotFound
		}
		return nil, err
	}
	return &s, nil
}

func (r *songRepository) List(ctx context.Context, limit int64) ([]*domain.Song, error) {
	return r.find(ctx, bson.M{}, limit)
}

// Search matches the query case-insensitively against name, artist and album.
func (r *songRepository) Search(ctx context.Context, query string, limit int64) ([]*domain.Song, error) {
	pattern := primitive.Regex{Pattern: regexp.QuoteMeta(query), Options: "i"}
	filter := bson.M{"$or": bson.A{
		bson.M{"name": pattern},
		bson.M{"artist": pattern},
		bson.M{"album": pattern},
	}}
	return r.find(ctx, filter, limit)
}

func (r *songRepository) find(ctx context.Context, filter bson.M, limit int64) ([]*domain.Song, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "name", Value: 1}}).SetLimit(limit)
	cur, err := r.songsCol.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := []*domain.Song{}
	for cur.Next(ctx) {
		var s domain.Song
		if err := cur.Decode(&s); err != nil {
			return nil, err
		}
		out = append(out, &s)
	}
	return out, cur.Err()
}
