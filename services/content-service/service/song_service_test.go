package service

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/tunebox/songreview/internal/logger"
	"github.com/tunebox/songreview/services/content-service/domain"
)

type memRepo struct {
	songs       []*domain.Song
	lastLimit   int64
	searchCalls int
}

func (m *memRepo) Create(ctx context.Context, s *domain.Song) error {
	for _, existing := range m.songs {
		if s.SpotifyID != "" && existing.SpotifyID == s.SpotifyID {
			return domain.ErrSongExists
		}
	}
	m.songs = append(m.songs, s)
	return nil
}

func (m *memRepo) FindByID(ctx context.Context, id string) (*domain.Song, error) {
	for _, s := range m.songs {
		if s.ID == id {
			return s, nil
		}
	}
	return nil, domain.ErrSongNotFound
}

func (m *memRepo) FindBySpotifyID(ctx context.Context, spotifyID string) (*domain.Song, error) {
	for _, s := range m.songs {
		if s.SpotifyID == spotifyID {
			return s, nil
		}
	}
	return nil, domain.ErrSongNotFound
}

func (m *memRepo) List(ctx context.Context, limit int64) ([]*domain.Song, error) {
	m.lastLimit = limit
	return m.songs, nil
}

func (m *memRepo) Search(ctx context.Context, query string, limit int64) ([]*domain.Song, error) {
	m.searchCalls++
	m.lastLimit = limit
	return m.songs, nil
}

type fakeImporter struct {
	calls int
	song  *domain.Song
	err   error
}

func (f *fakeImporter) FetchTrack(ctx context.Context, spotifyID string) (*domain.Song, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	cp := *f.song
	cp.SpotifyID = spotifyID
	return &cp, nil
}

func init() {
	logger.SetOutput("content-test", io.Discard)
}

func TestCreateSongAssignsIDAndRejectsBlank(t *testing.T) {
	repo := &memRepo{}
	svc := NewSongService(repo, nil)

	song := &domain.Song{Name: " Hey Jude ", Artist: "The Beatles"}
	if err := svc.CreateSong(context.Background(), song); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if song.ID == "" || song.Name != "Hey Jude" || song.Genres == nil {
		t.Fatalf("unexpected song: %+v", song)
	}

	err := svc.CreateSong(context.Background(), &domain.Song{Name: "   ", Artist: "x"})
	if !errors.Is(err, domain.ErrInvalidSongData) {
		t.Fatalf("expected ErrInvalidSongData, got %v", err)
	}
}

func TestImportDisabledWithoutImporter(t *testing.T) {
	svc := NewSongService(&memRepo{}, nil)
	_, err := svc.ImportFromSpotify(context.Background(), "4uLU6hMCjMI75M1A2tKUQC")
	if !errors.Is(err, domain.ErrImportDisabled) {
		t.Fatalf("expected ErrImportDisabled, got %v", err)
	}
}

func TestImportIsIdempotent(t *testing.T) {
	repo := &memRepo{}
	imp := &fakeImporter{song: &domain.Song{Name: "Never Gonna Give You Up", Artist: "Rick Astley", Genres: []string{"pop"}}}
	svc := NewSongService(repo, imp)

	first, err := svc.ImportFromSpotify(context.Background(), "4uLU6hMCjMI75M1A2tKUQC")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := svc.ImportFromSpotify(context.Background(), "4uLU6hMCjMI75M1A2tKUQC")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if first.ID != second.ID || imp.calls != 1 {
		t.Fatalf("expected a single fetch, got %d calls and ids %s/%s", imp.calls, first.ID, second.ID)
	}
}

func TestImportTrackNotFound(t *testing.T) {
	svc := NewSongService(&memRepo{}, &fakeImporter{err: domain.ErrTrackNotFound})
	_, err := svc.ImportFromSpotify(context.Background(), "4uLU6hMCjMI75M1A2tKUQC")
	if !errors.Is(err, domain.ErrTrackNotFound) {
		t.Fatalf("expected ErrTrackNotFound, got %v", err)
	}
}

func TestSearchLimits(t *testing.T) {
	repo := &memRepo{}
	svc := NewSongService(repo, nil)

	_, _ = svc.SearchSongs(context.Background(), "   ", 0)
	if repo.searchCalls != 0 || repo.lastLimit != defaultListLimit {
		t.Fatalf("blank query should list with default limit, got calls=%d limit=%d", repo.searchCalls, repo.lastLimit)
	}

	_, _ = svc.SearchSongs(context.Background(), "jude", 10000)
	if repo.searchCalls != 1 || repo.lastLimit != maxListLimit {
		t.Fatalf("expected clamped search, got calls=%d limit=%d", repo.searchCalls, repo.lastLimit)
	}
}
