package tokenstore

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func signed(t *testing.T, exp time.Time) string {
	t.Helper()
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   "u1",
		ExpiresAt: jwt.NewNumericDate(exp),
	}).SignedString([]byte("secret"))
	if err != nil {
		t.Fatal(err)
	}
	return tok
}

func TestTokenMissing(t *testing.T) {
	s := New(filepath.Join(t.TempDir(), "token.json"))
	if _, err := s.Token(); !errors.Is(err, ErrNoToken) {
		t.Fatalf("expected ErrNoToken, got %v", err)
	}
}

func TestSaveLoadClear(t *testing.T) {
	s := New(filepath.Join(t.TempDir(), "nested", "token.json"))
	tok := signed(t, time.Now().Add(time.Hour))

	if err := s.Save(Credentials{Token: tok, UserID: "u1", Username: "alice"}); err != nil {
		t.Fatalf("save: %v", err)
	}
	got, err := s.Token()
	if err != nil || got != tok {
		t.Fatalf("expected saved token, got %q %v", got, err)
	}
	c, _ := s.Load()
	if c.UserID != "u1" || c.Username != "alice" {
		t.Fatalf("unexpected credentials %+v", c)
	}

	if err := s.Clear(); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if _, err := s.Token(); !errors.Is(err, ErrNoToken) {
		t.Fatalf("expected ErrNoToken after clear, got %v", err)
	}
}

func TestTokenSeesLatestWrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "token.json")
	reader, writer := New(path), New(path)

	first := signed(t, time.Now().Add(time.Hour))
	writer.Save(Credentials{Token: first})
	if got, _ := reader.Token(); got != first {
		t.Fatal("expected first token")
	}

	second := signed(t, time.Now().Add(2*time.Hour))
	writer.Save(Credentials{Token: second})
	if got, _ := reader.Token(); got != second {
		t.Fatal("expected refreshed token")
	}
}

func TestExpiredToken(t *testing.T) {
	s := New(filepath.Join(t.TempDir(), "token.json"))
	s.Save(Credentials{Token: signed(t, time.Now().Add(-time.Minute))})
	if _, err := s.Token(); !errors.Is(err, ErrTokenExpired) {
		t.Fatalf("expected ErrTokenExpired, got %v", err)
	}
}
