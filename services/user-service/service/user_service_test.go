package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/tunebox/songreview/internal/auth"
	"github.com/tunebox/songreview/services/user-service/domain"
	"github.com/tunebox/songreview/services/user-service/dto"
	"golang.org/x/crypto/bcrypt"
)

type mockRepo struct {
	FindByEmailResp    *domain.User
	FindByEmailErr     error
	FindByUsernameResp *domain.User
	FindByUsernameErr  error
	CreateErr          error
	FindByIDResp       *domain.User
	FindByIDErr        error

	created *domain.User
}

func (m *mockRepo) Create(ctx context.Context, user *domain.User) error {
	m.created = user
	return m.CreateErr
}
func (m *mockRepo) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	if m.FindByEmailErr != nil {
		return nil, m.FindByEmailErr
	}
	if m.FindByEmailResp != nil {
		return m.FindByEmailResp, nil
	}
	return nil, domain.ErrUserNotFound
}
func (m *mockRepo) FindByUsername(ctx context.Context, username string) (*domain.User, error) {
	if m.FindByUsernameErr != nil {
		return nil, m.FindByUsernameErr
	}
	if m.FindByUsernameResp != nil {
		return m.FindByUsernameResp, nil
	}
	return nil, domain.ErrUserNotFound
}
func (m *mockRepo) FindByID(ctx context.Context, id string) (*domain.User, error) {
	if m.FindByIDErr != nil {
		return nil, m.FindByIDErr
	}
	if m.FindByIDResp != nil {
		return m.FindByIDResp, nil
	}
	return nil, domain.ErrUserNotFound
}

func newSvc(repo *mockRepo) UserService {
	return NewUserService(repo, auth.NewJWTAuthenticator("test-secret", time.Hour))
}

func validRegistration() *dto.RegisterUserRequest {
	return &dto.RegisterUserRequest{
		Name:     "Alice Example",
		Username: "alice",
		Email:    "Alice@Example.com",
		Password: "Str0ng!Passw0rd",
	}
}

func TestAuthenticateByEmailSuccess(t *testing.T) {
	pw := "secret123"
	hashed, _ := bcrypt.GenerateFromPassword([]byte(pw), bcrypt.DefaultCost)
	user := &domain.User{ID: "1", Email: "a@b.com", Password: string(hashed)}

	svc := newSvc(&mockRepo{FindByEmailResp: user})

	got, err := svc.Authenticate(context.Background(), "a@b.com", pw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got == nil || got.ID != user.ID {
		t.Fatalf("expected user id %s, got %v", user.ID, got)
	}
}

func TestAuthenticateByUsernameSuccess(t *testing.T) {
	pw := "mypw"
	hashed, _ := bcrypt.GenerateFromPassword([]byte(pw), bcrypt.DefaultCost)
	user := &domain.User{ID: "2", Username: "alice", Password: string(hashed)}

	svc := newSvc(&mockRepo{FindByUsernameResp: user})

	got, err := svc.Authenticate(context.Background(), "alice", pw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got == nil || got.ID != user.ID {
		t.Fatalf("expected user id %s, got %v", user.ID, got)
	}
}

func TestAuthenticateInvalidPassword(t *testing.T) {
	hashed, _ := bcrypt.GenerateFromPassword([]byte("rightpw"), bcrypt.DefaultCost)
	user := &domain.User{ID: "3", Email: "x@y.com", Password: string(hashed)}

	svc := newSvc(&mockRepo{FindByEmailResp: user})

	_, err := svc.Authenticate(context.Background(), "x@y.com", "wrongpw")
	if !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestAuthenticateUnknownUser(t *testing.T) {
	_, err := newSvc(&mockRepo{}).Authenticate(context.Background(), "ghost", "pw")
	if !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestLoginIssuesToken(t *testing.T) {
	hashed, _ := bcrypt.GenerateFromPassword([]byte("pw"), bcrypt.DefaultCost)
	user := &domain.User{ID: "7", Username: "bob", Role: "user", Password: string(hashed)}
	a := auth.NewJWTAuthenticator("test-secret", time.Hour)

	svc := NewUserService(&mockRepo{FindByUsernameResp: user}, a)
	resp, err := svc.Login(context.Background(), "bob", "pw")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	claims, err := a.ValidateToken(resp.Token)
	if err != nil {
		t.Fatalf("issued token does not validate: %v", err)
	}
	if claims.Subject != "7" || claims.Username != "bob" {
		t.Fatalf("unexpected claims: %+v", claims)
	}
}

func TestRegisterSuccess(t *testing.T) {
	repo := &mockRepo{}
	resp, err := newSvc(repo).Register(context.Background(), validRegistration())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Email != "alice@example.com" || resp.Role != "user" {
		t.Fatalf("unexpected response: %+v", resp)
	}
	if repo.created == nil || repo.created.Password == "Str0ng!Passw0rd" {
		t.Fatal("password must be stored hashed")
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	repo := &mockRepo{FindByEmailResp: &domain.User{ID: "9"}}

	_, err := newSvc(repo).Register(context.Background(), validRegistration())
	if !errors.Is(err, domain.ErrEmailTaken) {
		t.Fatalf("expected ErrEmailTaken, got %v", err)
	}
}

func TestRegisterDuplicateUsername(t *testing.T) {
	repo := &mockRepo{FindByUsernameResp: &domain.User{ID: "10"}}

	_, err := newSvc(repo).Register(context.Background(), validRegistration())
	if !errors.Is(err, domain.ErrUsernameTaken) {
		t.Fatalf("expected ErrUsernameTaken, got %v", err)
	}
}

func TestRegisterWeakPassword(t *testing.T) {
	req := validRegistration()
	req.Password = "short"

	if _, err := newSvc(&mockRepo{}).Register(context.Background(), req); err == nil {
		t.Fatal("expected weak password to be rejected")
	}
}

func TestGetPublicHidesPrivateFields(t *testing.T) {
	repo := &mockRepo{FindByIDResp: &domain.User{ID: "1", Username: "alice", Email: "a@b.com"}}

	got, err := newSvc(repo).GetPublic(context.Background(), "1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.ID != "1" || got.Username != "alice" {
		t.Fatalf("unexpected response: %+v", got)
	}
}
