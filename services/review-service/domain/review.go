package domain

import (
	"errors"
	"time"
	"unicode/utf8"
)

const (
	MinRating        = 1
	MaxRating        = 5
	MinTitleLength   = 5
	MaxTitleLength   = 50
	MinCommentLength = 10
	MaxCommentLength = 500
)

var (
	ErrReviewNotFound  = errors.New("review not found")
	ErrReviewExists    = errors.New("review for this song already exists")
	ErrNotReviewOwner  = errors.New("only the author can modify this review")
	ErrSongNotFound    = errors.New("song not found")
	ErrUserNotFound    = errors.New("user not found")
	ErrInvalidRating   = errors.New("rating must be between 1 and 5")
	ErrInvalidTitle    = errors.New("title must be between 5 and 50 characters")
	ErrInvalidComment  = errors.New("comment must be between 10 and 500 characters")
	ErrUpstreamFailure = errors.New("dependent service unavailable")
)

// SongSnapshot is copied into the review when it is created and never refreshed.
type SongSnapshot struct {
	ID        string   `bson:"id" json:"id"`
	Name      string   `bson:"song_name" json:"song_name"`
	Artist    string   `bson:"artist" json:"artist"`
	Album     string   `bson:"album" json:"album"`
	Genres    []string `bson:"genres" json:"genres"`
	Thumbnail string   `bson:"thumbnail" json:"thumbnail"`
}

type Author struct {
	ID       string `bson:"id" json:"id"`
	Username string `bson:"username" json:"username"`
}

type Review struct {
	ID        string       `bson:"id" json:"id"`
	Title     string       `bson:"title" json:"title"`
	Comment   string       `bson:"comment" json:"comment"`
	Rating    int          `bson:"rating" json:"rating"`
	Song      SongSnapshot `bson:"song" json:"song"`
	User      Author       `bson:"user" json:"user"`
	Likes     []string     `bson:"likes" json:"likes"`
	CreatedAt time.Time    `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time    `bson:"updated_at" json:"updated_at"`
}

// Edited is derived, never stored.
func (r *Review) Edited() bool {
	return r.UpdatedAt.After(r.CreatedAt)
}

func (r *Review) LikedBy(userID string) bool {
	for _, id := range r.Likes {
		if id == userID {
			return true
		}
	}
	return false
}

func ValidateRating(rating int) error {
	if rating < MinRating || rating > MaxRating {
		return ErrInvalidRating
	}
	return nil
}

func ValidateTitle(title string) error {
	if n := utf8.RuneCountInString(title); n < MinTitleLength || n > MaxTitleLength {
		return ErrInvalidTitle
	}
	return nil
}

func ValidateComment(comment string) error {
	if n := utf8.RuneCountInString(comment); n < MinCommentLength || n > MaxCommentLength {
		return ErrInvalidComment
	}
	return nil
}
