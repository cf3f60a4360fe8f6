package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/tunebox/songreview/internal/logger"
	"github.com/tunebox/songreview/services/content-service/domain"
	"github.com/tunebox/songreview/services/content-service/repository"
)

const (
	defaultListLimit = 50
	maxListLimit     = 200
)

type SongService interface {
	CreateSong(ctx context.Context, s *domain.Song) error
	GetSong(ctx context.Context, id string) (*domain.Song, error)
	ListSongs(ctx context.Context, limit int) ([]*domain.Song, error)
	SearchSongs(ctx context.Context, query string, limit int) ([]*domain.Song, error)
	ImportFromSpotify(ctx context.Context, spotifyID string) (*domain.Song, error)
}

type songService struct {
	repo     repository.SongRepository
	importer TrackImporter
	now      func() time.Time
}

// NewSongService accepts a nil importer; imports then fail with ErrImportDisabled.
func NewSongService(repo repository.SongRepository, importer TrackImporter) SongService {
	return &songService{repo: repo, importer: importer, now: time.Now}
}

func (s *songService) CreateSong(ctx context.Context, song *domain.Song) error {
	song.Name = strings.TrimSpace(song.Name)
	song.Artist = strings.TrimSpace(song.Artist)
	if song.Name == "" || song.Artist == "" {
		return domain.ErrInvalidSongData
	}
	if song.Genres == nil {
		song.Genres = []string{}
	}
	song.ID = uuid.New().String()
	song.CreatedAt = s.now().UTC()
	return s.repo.Create(ctx, song)
}

func (s *songService) GetSong(ctx context.Context, id string) (*domain.Song, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *songService) ListSongs(ctx context.Context, limit int) ([]*domain.Song, error) {
	return s.repo.List(ctx, clampLimit(limit))
}

func (s *songService) SearchSongs(ctx context.Context, query string, limit int) ([]*domain.Song, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return s.ListSongs(ctx, limit)
	}
	return s.repo.Search(ctx, query, clampLimit(limit))
}

// ImportFromSpotify is idempotent: a track imported before is returned as is.
func (s *songService) ImportFromSpotify(ctx context.Context, spotifyID string) (*domain.Song, error) {
	if s.importer == nil {
		return nil, domain.ErrImportDisabled
	}

	existing, err := s.repo.FindBySpotifyID(ctx, spotifyID)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, domain.ErrSongNotFound) {
		return nil, err
	}

	song, err := s.importer.FetchTrack(ctx, spotifyID)
	if err != nil {
		if !errors.Is(err, domain.ErrTrackNotFound) {
			logger.Error(logger.EventUpstreamError, "Spotify lookup failed", logger.Fields(
				"spotify_id", spotifyID,
				"error", err.Error(),
			))
		}
		return nil, err
	}

	if err := s.CreateSong(ctx, song); err != nil {
		return nil, err
	}

	logger.Info(logger.EventGeneral, "Song imported from Spotify", logger.Fields(
		"song_id", song.ID,
		"spotify_id", spotifyID,
	))
	return song, nil
}

func clampLimit(limit int) int64 {
	if limit <= 0 {
		return defaultListLimit
	}
	if limit > maxListLimit {
		return maxListLimit
	}
	return int64(limit)
}
