package services

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"redweb-backend/internal/apperr"
	"redweb-backend/internal/auth"
	"redweb-backend/internal/models"
	"redweb-backend/internal/policy"
)

// AuthService handles sign-up, sign-in and the caller's own profile.
type AuthService struct {
	c      *collections
	tokens *auth.Manager
	log    *zap.Logger
	now    func() time.Time
}

type SignUpInput struct {
	Email      string `json:"email"`
	Password   string `json:"password"`
	FirstName  string `json:"firstName"`
	LastName   string `json:"lastName"`
	BloodGroup string `json:"bloodGroup"`
	Phone      string `json:"phone"`
	Address    string `json:"address"`
	City       string `json:"city"`
	State      string `json:"state"`
	Pincode    string `json:"pincode"`
}

type SignInInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type AuthResult struct {
	Token string              `json:"token"`
	User  models.UserResponse `json:"user"`
}

// ProfileInput holds profile edits. Empty strings leave a field unchanged.
type ProfileInput struct {
	FirstName            string `json:"firstName"`
	LastName             string `json:"lastName"`
	Phone                string `json:"phone"`
	BloodGroup           string `json:"bloodGroup"`
	Address              string `json:"address"`
	City                 string `json:"city"`
	State                string `json:"state"`
	Pincode              string `json:"pincode"`
	HealthConditions     string `json:"healthConditions"`
	EmergencyContact     string `json:"emergencyContact"`
	MedicalConditions    string `json:"medicalConditions"`
	AvailableForDonation *bool  `json:"availableForDonation"`
}

var errInvalidCredentials = apperr.Unauthorized("Invalid credentials")

func (s *AuthService) SignUp(ctx context.Context, in SignUpInput) (AuthResult, error) {
	in.Email = strings.TrimSpace(in.Email)
	in.FirstName = strings.TrimSpace(in.FirstName)
	in.LastName = strings.TrimSpace(in.LastName)
	if in.Email == "" || in.Password == "" || in.FirstName == "" || in.LastName == "" {
		return AuthResult{}, apperr.Validation("Required fields missing")
	}

	bloodGroup := ""
	if strings.TrimSpace(in.BloodGroup) != "" {
		g, ok := models.NormalizeBloodGroup(in.BloodGroup)
		if !ok {
			return AuthResult{}, apperr.Validation("Invalid blood group")
		}
		bloodGroup = g
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return AuthResult{}, &apperr.Error{Kind: apperr.KindInternal, Message: "Server error", Err: err}
	}

	user := models.User{
		ID:         uuid.New().String(),
		Email:      in.Email,
		Password:   hash,
		FirstName:  in.FirstName,
		LastName:   in.LastName,
		BloodGroup: bloodGroup,
		Phone:      strings.TrimSpace(in.Phone),
		Address:    strings.TrimSpace(in.Address),
		City:       strings.TrimSpace(in.City),
		State:      strings.TrimSpace(in.State),
		Pincode:    strings.TrimSpace(in.Pincode),
		Role:       models.RoleUser,
		IsActive:   true,
		CreatedAt:  s.now(),
	}

	// The duplicate check runs under the collection lock so two concurrent
	// sign-ups for one email cannot both succeed.
	err = s.c.users.Update(ctx, func(users []models.User) ([]models.User, error) {
		for i := range users {
			if users[i].Email == user.Email {
				return nil, apperr.Conflict("User already exists")
			}
		}
		return append(users, user), nil
	})
	if err != nil {
		return AuthResult{}, err
	}

	s.log.Info("✅ user registered", zap.String("user_id", user.ID), zap.String("email", user.Email))
	return s.issue(&user)
}

// SignIn returns the same error for an unknown email and a wrong password.
func (s *AuthService) SignIn(ctx context.Context, in SignInInput) (AuthResult, error) {
	in.Email = strings.TrimSpace(in.Email)
	if in.Email == "" || in.Password == "" {
		return AuthResult{}, apperr.Validation("Email and password required")
	}

	users, err := s.c.users.Load(ctx)
	if err != nil {
		return AuthResult{}, err
	}

	var user *models.User
	for i := range users {
		if users[i].Email == in.Email && users[i].IsActive {
			user = &users[i]
			break
		}
	}

	if user == nil {
		auth.BurnVerify(in.Password)
		s.log.Info("🔐 sign-in failed", zap.String("email", in.Email))
		return AuthResult{}, errInvalidCredentials
	}
	if !auth.VerifyPassword(in.Password, user.Password) {
		s.log.Info("🔐 sign-in failed", zap.String("email", in.Email))
		return AuthResult{}, errInvalidCredentials
	}

	s.log.Info("✅ sign-in", zap.String("user_id", user.ID), zap.String("role", user.Role))
	return s.issue(user)
}

func (s *AuthService) issue(user *models.User) (AuthResult, error) {
	token, _, err := s.tokens.IssueToken(auth.Identity{UserID: user.ID, Email: user.Email, Role: user.Role})
	if err != nil {
		return AuthResult{}, &apperr.Error{Kind: apperr.KindInternal, Message: "Failed to create token", Err: err}
	}
	return AuthResult{Token: token, User: user.ToUserResponse()}, nil
}

func (s *AuthService) Profile(ctx context.Context, caller auth.Identity) (models.UserResponse, error) {
	users, err := s.c.users.Load(ctx)
	if err != nil {
		return models.UserResponse{}, err
	}
	i := models.FindUser(users, caller.UserID)
	if i < 0 {
		return models.UserResponse{}, apperr.NotFound("User not found")
	}
	return users[i].ToUserResponse(), nil
}

func (s *AuthService) UpdateProfile(ctx context.Context, caller auth.Identity, in ProfileInput) (models.UserResponse, error) {
	if strings.TrimSpace(in.BloodGroup) != "" {
		g, ok := models.NormalizeBloodGroup(in.BloodGroup)
		if !ok {
			return models.UserResponse{}, apperr.Validation("Invalid blood group")
		}
		in.BloodGroup = g
	}

	var updated models.User
	err := s.c.users.Update(ctx, func(users []models.User) ([]models.User, error) {
		i := models.FindUser(users, caller.UserID)
		if i < 0 {
			return nil, apperr.NotFound("User not found")
		}
		u := &users[i]
		keep(&u.FirstName, in.FirstName)
		keep(&u.LastName, in.LastName)
		keep(&u.Phone, in.Phone)
		keep(&u.BloodGroup, in.BloodGroup)
		keep(&u.Address, in.Address)
		keep(&u.City, in.City)
		keep(&u.State, in.State)
		keep(&u.Pincode, in.Pincode)
		keep(&u.HealthConditions, in.HealthConditions)
		keep(&u.EmergencyContact, in.EmergencyContact)
		keep(&u.MedicalConditions, in.MedicalConditions)
		if in.AvailableForDonation != nil {
			v := *in.AvailableForDonation
			u.AvailableForDonation = &v
		}
		now := s.now()
		u.UpdatedAt = &now
		updated = *u
		return users, nil
	})
	if err != nil {
		return models.UserResponse{}, err
	}
	return updated.ToUserResponse(), nil
}

// ListUsers is the admin-only account listing.
func (s *AuthService) ListUsers(ctx context.Context, caller auth.Identity) ([]models.UserResponse, error) {
	if !policy.CanListUsers(caller) {
		return nil, apperr.Forbidden("Admin access required")
	}
	users, err := s.c.users.Load(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]models.UserResponse, 0, len(users))
	for i := range users {
		out = append(out, users[i].ToUserResponse())
	}
	return out, nil
}

// keep overwrites *dst with v unless v is blank.
func keep(dst *string, v string) {
	if v = strings.TrimSpace(v); v != "" {
		*dst = v
	}
}
