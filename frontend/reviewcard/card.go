// Package reviewcard holds the per-review state behind a review card: display
// and edit modes, like toggling and delete confirmation. It never fetches its
// own data and never owns persistence.
package reviewcard

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/tunebox/songreview/internal/logger"
)

var (
	ErrNotAuthor    = errors.New("only the author can change this review")
	ErrNotEditing   = errors.New("review is not being edited")
	ErrSaveInFlight = errors.New("a save is already in progress")
	ErrDisposed     = errors.New("card has been disposed")
	ErrUnknownField = errors.New("unknown draft field")
)

const DeletePrompt = "Are you sure you want to delete this review?"

// mode is either displaying or *editing.
type mode interface {
	isMode()
}

type displaying struct{}

type editing struct {
	draft  Draft
	saving bool
}

func (displaying) isMode() {}
func (*editing) isMode()   {}

type Config struct {
	Record   Record
	Index    int
	ViewerID string
	Remote   Remote
	Tokens   TokenProvider
	Confirm  Confirmer
	OnDelete DeleteFunc
	Now      func() time.Time
}

type Card struct {
	mu sync.Mutex

	record   Record
	index    int
	viewerID string
	remote   Remote
	tokens   TokenProvider
	confirm  Confirmer
	onDelete DeleteFunc
	now      func() time.Time

	mode     mode
	saving   bool
	edited   bool
	expanded bool

	likeSeq     uint64
	appliedSeq  uint64
	likesInFlux int

	lastErr  error
	disposed bool
}

func New(cfg Config) *Card {
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	rec := cfg.Record
	rec.Likes = append([]string(nil), rec.Likes...)
	return &Card{
		record:   rec,
		index:    cfg.Index,
		viewerID: cfg.ViewerID,
		remote:   cfg.Remote,
		tokens:   cfg.Tokens,
		confirm:  cfg.Confirm,
		onDelete: cfg.OnDelete,
		now:      now,
		mode:     displaying{},
		edited:   rec.Edited(),
	}
}

func (c *Card) isAuthor() bool {
	return c.viewerID != "" && c.viewerID == c.record.Author.ID
}

// EnterEdit starts an edit session seeded with the committed values.
// Calling it while already editing keeps the current draft. A new session
// cannot start until a pending save has resolved.
func (c *Card) EnterEdit() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.disposed {
		return ErrDisposed
	}
	if !c.isAuthor() {
		return ErrNotAuthor
	}
	if _, ok := c.mode.(*editing); ok {
		return nil
	}
	if c.saving {
		return ErrSaveInFlight
	}
	c.mode = &editing{draft: draftOf(c.record)}
	return nil
}

func (c *Card) editingLocked() (*editing, error) {
	if c.disposed {
		return nil, ErrDisposed
	}
	ed, ok := c.mode.(*editing)
	if !ok {
		return nil, ErrNotEditing
	}
	return ed, nil
}

// UpdateDraftField sets one draft field from raw input. A rating that is not
// a whole number between 1 and 5 is ignored.
func (c *Card) UpdateDraftField(field Field, value string) error {
	switch field {
	case FieldRating:
		rating, err := strconv.Atoi(value)
		if err != nil {
			rating = 0
		}
		return c.SetRating(rating)
	case FieldTitle:
		return c.SetTitle(value)
	case FieldComment:
		return c.SetComment(value)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownField, field)
	}
}

func (c *Card) SetRating(rating int) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	ed, err := c.editingLocked()
	if err != nil {
		return err
	}
	if rating < MinRating || rating > MaxRating {
		return nil
	}
	ed.draft.Rating = rating
	return nil
}

func (c *Card) SetTitle(title string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	ed, err := c.editingLocked()
	if err != nil {
		return err
	}
	ed.draft.Title = title
	return nil
}

func (c *Card) SetComment(comment string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	ed, err := c.editingLocked()
	if err != nil {
		return err
	}
	ed.draft.Comment = comment
	return nil
}

// Commit validates the draft and saves the fields that differ from the
// committed record. The lock is not held during the remote call.
func (c *Card) Commit(ctx context.Context) error {
	c.mu.Lock()
	ed, err := c.editingLocked()
	if err != nil {
		c.mu.Unlock()
		return err
	}
	if ed.saving {
		c.mu.Unlock()
		return ErrSaveInFlight
	}
	if err := ed.draft.Validate(); err != nil {
		c.mu.Unlock()
		return err
	}
	changes := ed.draft.diff(c.record)
	if changes.Empty() {
		c.mode = displaying{}
		c.lastErr = nil
		c.mu.Unlock()
		return nil
	}
	token, err := c.token()
	if err != nil {
		c.lastErr = err
		c.mu.Unlock()
		return err
	}
	ed.saving = true
	c.saving = true
	reviewID := c.record.ID
	c.mu.Unlock()

	err = c.remote.EditReview(ctx, token, reviewID, changes)

	c.mu.Lock()
	defer c.mu.Unlock()
	ed.saving = false
	c.saving = false
	if c.disposed {
		return ErrDisposed
	}
	if err != nil {
		c.lastErr = err
		logger.Warn(logger.EventGeneral, "Review edit failed", logger.Fields(
			"review_id", reviewID,
			"error", err.Error(),
		))
		return err
	}

	if changes.Rating != nil {
		c.record.Rating = *changes.Rating
	}
	if changes.Title != nil {
		c.record.Title = *changes.Title
	}
	if changes.Comment != nil {
		c.record.Comment = *changes.Comment
	}
	c.record.UpdatedAt = c.now()
	c.edited = true
	c.lastErr = nil
	if c.mode == mode(ed) {
		c.mode = displaying{}
	}
	logger.Info(logger.EventReviewEdited, "Review edited", logger.Fields("review_id", reviewID))
	return nil
}

// Cancel drops the draft and returns to display mode.
func (c *Card) Cancel() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.disposed {
		return
	}
	c.mode = displaying{}
}

// ToggleLike flips the viewer's like and replaces the likes with the server's
// list. A response older than the last one applied is dropped.
func (c *Card) ToggleLike(ctx context.Context) error {
	c.mu.Lock()
	if c.disposed {
		c.mu.Unlock()
		return ErrDisposed
	}
	token, err := c.token()
	if err != nil {
		c.lastErr = err
		c.mu.Unlock()
		return err
	}
	c.likeSeq++
	seq := c.likeSeq
	c.likesInFlux++
	reviewID := c.record.ID
	c.mu.Unlock()

	likes, err := c.remote.ToggleLike(ctx, reviewID, token)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.likesInFlux--
	if c.disposed {
		return ErrDisposed
	}
	if err != nil {
		c.lastErr = err
		logger.Warn(logger.EventGeneral, "Like toggle failed", logger.Fields(
			"review_id", reviewID,
			"error", err.Error(),
		))
		return err
	}
	if seq < c.appliedSeq {
		return nil
	}
	c.appliedSeq = seq
	c.record.Likes = append([]string(nil), likes...)
	c.lastErr = nil
	return nil
}

// LikeInFlight reports whether a like toggle is waiting for the server.
func (c *Card) LikeInFlight() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.likesInFlux > 0
}

// RequestDelete asks for confirmation and hands the id to the owner's
// callback. It reports whether deletion was requested.
func (c *Card) RequestDelete() (bool, error) {
	c.mu.Lock()
	if c.disposed {
		c.mu.Unlock()
		return false, ErrDisposed
	}
	if !c.isAuthor() {
		c.mu.Unlock()
		return false, ErrNotAuthor
	}
	confirm, onDelete, id := c.confirm, c.onDelete, c.record.ID
	c.mu.Unlock()

	if confirm == nil || !confirm.Confirm(DeletePrompt) {
		return false, nil
	}
	if onDelete != nil {
		onDelete(id)
	}
	return true, nil
}

func (c *Card) ToggleTextExpansion() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.expanded = !c.expanded
}

// Dispose detaches the card. Calls still in flight complete but no longer
// change its state.
func (c *Card) Dispose() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.disposed = true
}

// Record returns a copy of the committed record.
func (c *Card) Record() Record {
	c.mu.Lock()
	defer c.mu.Unlock()
	rec := c.record
	rec.Likes = append([]string(nil), c.record.Likes...)
	return rec
}

func (c *Card) token() (string, error) {
	if c.tokens == nil {
		return "", errors.New("no credential provider configured")
	}
	token, err := c.tokens.Token()
	if err != nil {
		return "", fmt.Errorf("read token: %w", err)
	}
	return token, nil
}
