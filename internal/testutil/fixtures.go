// Package testutil builds in-memory fixtures for service and handler tests.
package testutil

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"redweb-backend/internal/auth"
	"redweb-backend/internal/database"
	"redweb-backend/internal/models"
	"redweb-backend/internal/services"
)

const (
	// Password is the plaintext password of every user created by AddUser.
	Password = "password123"
	Secret   = "test-secret"
)

var (
	hashOnce sync.Once
	hash     string
)

func passwordHash(t *testing.T) string {
	t.Helper()
	hashOnce.Do(func() {
		h, err := auth.HashPassword(Password)
		if err != nil {
			t.Fatalf("HashPassword failed: %v", err)
		}
		hash = h
	})
	return hash
}

// Clock is a settable time source.
type Clock struct {
	mu  sync.Mutex
	now time.Time
}

func NewClock(start time.Time) *Clock {
	return &Clock{now: start}
}

func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *Clock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

// Env is a fully wired memory-backed service stack.
type Env struct {
	Store    *database.Store
	Tokens   *auth.Manager
	Services *services.Services
	Clock    *Clock
}

// EnvOptions overrides parts of the stack built by NewEnvWith.
type EnvOptions struct {
	// Backend defaults to a fresh MemoryBackend.
	Backend database.Backend
	// Logger defaults to zap.NewNop().
	Logger *zap.Logger
}

// NewEnv returns an initialized memory store with services on top. The clock
// starts at 2025-06-01 12:00 UTC.
func NewEnv(t *testing.T) *Env {
	t.Helper()
	return NewEnvWith(t, EnvOptions{})
}

func NewEnvWith(t *testing.T, opts EnvOptions) *Env {
	t.Helper()
	if opts.Backend == nil {
		opts.Backend = database.NewMemoryBackend()
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	store := database.NewStore(opts.Backend, opts.Logger)
	if err := store.Init(context.Background()); err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	clock := NewClock(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))
	tokens := auth.NewManager(Secret, auth.DefaultTokenTTL).WithClock(clock.Now)
	return &Env{
		Store:    store,
		Tokens:   tokens,
		Services: services.New(store, tokens, opts.Logger, services.WithClock(clock.Now)),
		Clock:    clock,
	}
}

// TestUser describes a user to insert with AddUser.
type TestUser struct {
	Email      string
	FirstName  string
	LastName   string
	Role       string
	BloodGroup string
	Available  bool
	Inactive   bool

	EmergencyContact  string
	MedicalConditions string
}

// AddUser stores u directly in the users collection and returns the record.
func (e *Env) AddUser(t *testing.T, u TestUser) models.User {
	t.Helper()
	if u.Role == "" {
		u.Role = models.RoleUser
	}
	if u.FirstName == "" {
		u.FirstName = "Test"
	}
	if u.LastName == "" {
		u.LastName = "User"
	}
	avail := u.Available
	user := models.User{
		ID:                   uuid.New().String(),
		Email:                u.Email,
		Password:             passwordHash(t),
		FirstName:            u.FirstName,
		LastName:             u.LastName,
		BloodGroup:           u.BloodGroup,
		Role:                 u.Role,
		IsActive:             !u.Inactive,
		EmergencyContact:     u.EmergencyContact,
		MedicalConditions:    u.MedicalConditions,
		AvailableForDonation: &avail,
		CreatedAt:            e.Clock.Now(),
	}
	users := database.NewCollection[models.User](e.Store, database.Users)
	err := users.Update(context.Background(), func(all []models.User) ([]models.User, error) {
		return append(all, user), nil
	})
	if err != nil {
		t.Fatalf("AddUser failed: %v", err)
	}
	return user
}

// Caller returns the identity a token for u would carry.
func Caller(u models.User) auth.Identity {
	return auth.Identity{UserID: u.ID, Email: u.Email, Role: u.Role}
}

// Token mints a bearer token for u.
func (e *Env) Token(t *testing.T, u models.User) string {
	t.Helper()
	tok, _, err := e.Tokens.IssueToken(Caller(u))
	if err != nil {
		t.Fatalf("IssueToken failed: %v", err)
	}
	return tok
}
