package domain

import (
	"errors"
	"time"
)

var (
	ErrSongNotFound    = errors.New("song not found")
	ErrSongExists      = errors.New("song already imported")
	ErrImportDisabled  = errors.New("spotify import is not configured")
	ErrTrackNotFound   = errors.New("spotify track not found")
	ErrInvalidSongData = errors.New("invalid song data")
)

// Song is the catalogue entry reviews snapshot. The JSON shape matches the
// review service's song snapshot, so GET /content/songs/:id can be decoded directly.
type Song struct {
	ID        string    `bson:"id" json:"id"`
	Name      string    `bson:"name" json:"song_name"`
	Artist    string    `bson:"artist" json:"artist"`
	Album     string    `bson:"album" json:"album"`
	Genres    []string  `bson:"genres" json:"genres"`
	Thumbnail string    `bson:"thumbnail" json:"thumbnail"`
	SpotifyID string    `bson:"spotify_id,omitempty" json:"spotify_id,omitempty"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}
