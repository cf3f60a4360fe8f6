// Package tokenstore keeps the logged-in user's credential on disk so every
// process on the machine sees the same, latest token.
package tokenstore

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrNoToken      = errors.New("not logged in")
	ErrTokenExpired = errors.New("session expired, please log in again")
)

type Credentials struct {
	Token    string `json:"token"`
	UserID   string `json:"user_id"`
	Username string `json:"username"`
}

type Store struct {
	path string
	now  func() time.Time
	mu   sync.Mutex
}

func New(path string) *Store {
	return &Store{path: path, now: time.Now}
}

// DefaultPath is ~/.songreview/token.json.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), "songreview-token.json")
	}
	return filepath.Join(home, ".songreview", "token.json")
}

func (s *Store) Save(c Credentials) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(s.path), 0700); err != nil {
		return fmt.Errorf("create token dir: %w", err)
	}
	data, err := json.Marshal(c)
	if err != nil {
		return err
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0600); err != nil {
		return fmt.Errorf("write token: %w", err)
	}
	return os.Rename(tmp, s.path)
}

func (s *Store) Load() (Credentials, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var c Credentials
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return c, ErrNoToken
	}
	if err != nil {
		return c, fmt.Errorf("read token: %w", err)
	}
	if err := json.Unmarshal(data, &c); err != nil {
		return c, fmt.Errorf("decode token file: %w", err)
	}
	if c.Token == "" {
		return c, ErrNoToken
	}
	return c, nil
}

// Token reads the file on every call. Expiry is checked without verifying the
// signature; the server does that.
func (s *Store) Token() (string, error) {
	c, err := s.Load()
	if err != nil {
		return "", err
	}
	claims := jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(c.Token, &claims); err == nil {
		if claims.ExpiresAt != nil && !claims.ExpiresAt.After(s.now()) {
			return "", ErrTokenExpired
		}
	}
	return c.Token, nil
}

func (s *Store) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}
