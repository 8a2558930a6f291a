package database

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"redweb-backend/internal/apperr"
	"redweb-backend/internal/models"
)

// Account describes a privileged account created from the command line or
// at first start.
type Account struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
	Role      string
}

// SeedUsers creates the default admin account when no users exist yet.
func SeedUsers(ctx context.Context, s *Store, admin Account) error {
	users := NewCollection[models.User](s, Users)

	created := false
	err := users.Update(ctx, func(existing []models.User) ([]models.User, error) {
		if len(existing) > 0 {
			return existing, nil
		}
		u, err := newAccountUser(admin, time.Now().UTC())
		if err != nil {
			return nil, err
		}
		created = true
		return append(existing, u), nil
	})
	if err != nil {
		return err
	}

	if created {
		s.logger.Info("🌱 created default admin user", zap.String("email", admin.Email))
	} else {
		s.logger.Info("✓ users already seeded, skipping...")
	}
	return nil
}

// UpsertAccount creates acct, or if a user with that email exists, resets
// its password and role and reactivates it. It reports whether a new user
// was created.
func UpsertAccount(ctx context.Context, s *Store, acct Account) (bool, error) {
	if acct.Role == "" {
		acct.Role = models.RoleAdmin
	}
	if !models.IsValidRole(acct.Role) {
		return false, apperr.Validation("Invalid role")
	}
	if acct.Password == "" {
		return false, apperr.Validation("Email and password required")
	}
	acct.Email = strings.TrimSpace(acct.Email)

	users := NewCollection[models.User](s, Users)
	now := time.Now().UTC()

	created := false
	err := users.Update(ctx, func(existing []models.User) ([]models.User, error) {
		for i := range existing {
			if existing[i].Email != acct.Email {
				continue
			}
			hash, err := bcrypt.GenerateFromPassword([]byte(acct.Password), bcrypt.DefaultCost)
			if err != nil {
				return nil, err
			}
			existing[i].Password = string(hash)
			existing[i].Role = acct.Role
			existing[i].IsActive = true
			existing[i].UpdatedAt = &now
			return existing, nil
		}
		u, err := newAccountUser(acct, now)
		if err != nil {
			return nil, err
		}
		created = true
		return append(existing, u), nil
	})
	return created, err
}

func newAccountUser(acct Account, now time.Time) (models.User, error) {
	acct.Email = strings.TrimSpace(acct.Email)
	if acct.Email == "" || acct.Password == "" {
		return models.User{}, apperr.Validation("Email and password required")
	}
	if acct.Role == "" {
		acct.Role = models.RoleAdmin
	}
	if !models.IsValidRole(acct.Role) {
		return models.User{}, apperr.Validation("Invalid role")
	}
	if acct.FirstName == "" {
		acct.FirstName = "Admin"
	}
	if acct.LastName == "" {
		acct.LastName = "User"
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(acct.Password), bcrypt.DefaultCost)
	if err != nil {
		return models.User{}, err
	}
	return models.User{
		ID:        uuid.New().String(),
		Email:     acct.Email,
		Password:  string(hash),
		FirstName: acct.FirstName,
		LastName:  acct.LastName,
		Role:      acct.Role,
		IsActive:  true,
		CreatedAt: now,
	}, nil
}
