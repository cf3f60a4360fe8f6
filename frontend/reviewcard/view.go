package reviewcard

import (
	"github.com/dustin/go-humanize"
)

const (
	TruncateAt        = 100
	FallbackThumbnail = "not_found.png"
	ReadMoreLabel     = "Read more"
	ReadLessLabel     = "Read less"
	EditedLabel       = "(edited)"
)

// View is a snapshot of everything needed to draw a card.
type View struct {
	Index     int
	ReviewID  string
	SongName  string
	Artist    string
	Album     string
	Genres    []string
	Thumbnail string

	Rating      int
	Title       string
	Comment     string
	ExpandLabel string
	EditedLabel string
	Author      string
	Created     string

	LikeCount    int
	HasLiked     bool
	LikeInFlight bool

	CanEdit   bool
	CanDelete bool

	Editing     bool
	Saving      bool
	Draft       Draft
	DraftErrors FieldErrors

	Err error
}

func (c *Card) View() View {
	c.mu.Lock()
	defer c.mu.Unlock()

	r := c.record
	v := View{
		Index:        c.index,
		ReviewID:     r.ID,
		SongName:     r.Song.Name,
		Artist:       r.Song.Artist,
		Album:        r.Song.Album,
		Genres:       append([]string(nil), r.Song.Genres...),
		Thumbnail:    r.Song.Thumbnail,
		Rating:       r.Rating,
		Title:        r.Title,
		Author:       r.Author.Username,
		Created:      humanize.RelTime(r.CreatedAt, c.now(), "ago", "from now"),
		LikeCount:    len(r.Likes),
		HasLiked:     r.LikedBy(c.viewerID),
		LikeInFlight: c.likesInFlux > 0,
		Err:          c.lastErr,
	}
	if v.Thumbnail == "" {
		v.Thumbnail = FallbackThumbnail
	}
	if c.edited {
		v.EditedLabel = EditedLabel
	}

	v.Comment = r.Comment
	if runes := []rune(r.Comment); len(runes) > TruncateAt {
		if c.expanded {
			v.ExpandLabel = ReadLessLabel
		} else {
			v.Comment = string(runes[:TruncateAt])
			v.ExpandLabel = ReadMoreLabel
		}
	}

	if ed, ok := c.mode.(*editing); ok {
		v.Editing = true
		v.Saving = ed.saving
		v.Draft = ed.draft
		if err := ed.draft.Validate(); err != nil {
			if fe, ok := err.(FieldErrors); ok {
				v.DraftErrors = fe
			}
		}
	} else if c.isAuthor() {
		v.CanEdit = true
		v.CanDelete = true
	}
	return v
}

// CanSave reports whether the draft may be committed.
func (v View) CanSave() bool {
	return v.Editing && !v.Saving && len(v.DraftErrors) == 0
}
