package service

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/tunebox/songreview/services/content-service/domain"
	"github.com/zmb3/spotify/v2"
	spotifyauth "github.com/zmb3/spotify/v2/auth"
	"golang.org/x/oauth2/clientcredentials"
)

// TrackImporter fetches catalogue metadata for a Spotify track id.
type TrackImporter interface {
	FetchTrack(ctx context.Context, spotifyID string) (*domain.Song, error)
}

type spotifyImporter struct {
	client *spotify.Client
}

// NewSpotifyImporter returns nil when credentials are missing; the service then reports import as disabled.
func NewSpotifyImporter(ctx context.Context, clientID, clientSecret string) TrackImporter {
	if clientID == "" || clientSecret == "" {
		return nil
	}
	cfg := &clientcredentials.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		TokenURL:     spotifyauth.TokenURL,
	}
	return &spotifyImporter{client: spotify.New(cfg.Client(ctx))}
}

func (i *spotifyImporter) FetchTrack(ctx context.Context, spotifyID string) (*domain.Song, error) {
	track, err := i.client.GetTrack(ctx, spotify.ID(spotifyID))
	if err != nil {
		var apiErr spotify.Error
		if errors.As(err, &apiErr) && apiErr.Status == http.StatusNotFound {
			return nil, domain.ErrTrackNotFound
		}
		return nil, err
	}

	artistNames := make([]string, 0, len(track.Artists))
	artistIDs := make([]spotify.ID, 0, len(track.Artists))
	for _, a := range track.Artists {
		artistNames = append(artistNames, a.Name)
		artistIDs = append(artistIDs, a.ID)
	}

	// Tracks carry no genres; Spotify attaches them to artists.
	genres := []string{}
	if len(artistIDs) > 0 {
		artists, err := i.client.GetArtists(ctx, artistIDs...)
		if err != nil {
			return nil, err
		}
		seen := map[string]bool{}
		for _, a := range artists {
			if a == nil {
				continue
			}
			for _, g := range a.Genres {
				if !seen[g] {
					seen[g] = true
					genres = append(genres, g)
				}
			}
		}
	}

	thumbnail := ""
	if len(track.Album.Images) > 0 {
		thumbnail = track.Album.Images[0].URL
	}

	return &domain.Song{
		Name:      track.Name,
		Artist:    strings.Join(artistNames, ", "),
		Album:     track.Album.Name,
		Genres:    genres,
		Thumbnail: thumbnail,
		SpotifyID: spotifyID,
	}, nil
}
