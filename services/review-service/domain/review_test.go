package domain

import (
	"strings"
	"testing"
	"time"
)

func TestEdited(t *testing.T) {
	now := time.Now()
	r := &Review{CreatedAt: now, UpdatedAt: now}
	if r.Edited() {
		t.Fatal("equal timestamps must not count as edited")
	}
	r.UpdatedAt = now.Add(time.Millisecond)
	if !r.Edited() {
		t.Fatal("later updated_at must count as edited")
	}
}

func TestValidateCountsRunes(t *testing.T) {
	if err := ValidateTitle("ééééé"); err != nil {
		t.Fatalf("five accented runes should be a valid title: %v", err)
	}
	if err := ValidateTitle("abcd"); err != ErrInvalidTitle {
		t.Fatalf("expected ErrInvalidTitle, got %v", err)
	}
	if err := ValidateTitle(strings.Repeat("x", 51)); err != ErrInvalidTitle {
		t.Fatalf("expected ErrInvalidTitle, got %v", err)
	}
	if err := ValidateComment(strings.Repeat("ü", 500)); err != nil {
		t.Fatalf("500 runes should be a valid comment: %v", err)
	}
	if err := ValidateComment(strings.Repeat("x", 9)); err != ErrInvalidComment {
		t.Fatalf("expected ErrInvalidComment, got %v", err)
	}
}

func TestValidateRating(t *testing.T) {
	for _, v := range []int{0, 6, -1} {
		if ValidateRating(v) == nil {
			t.Fatalf("rating %d should be rejected", v)
		}
	}
	for v := MinRating; v <= MaxRating; v++ {
		if err := ValidateRating(v); err != nil {
			t.Fatalf("rating %d should be accepted: %v", v, err)
		}
	}
}

func TestLikedBy(t *testing.T) {
	r := &Review{Likes: []string{"a", "b"}}
	if !r.LikedBy("b") || r.LikedBy("c") {
		t.Fatal("unexpected LikedBy result")
	}
}
