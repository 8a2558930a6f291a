package models

import (
	"strings"
	"time"
)

const (
	RoleUser      = "user"
	RoleAdmin     = "admin"
	RoleOrganizer = "organizer"
)

// IsValidRole reports whether role is one of the known account roles.
func IsValidRole(role string) bool {
	switch role {
	case RoleUser, RoleAdmin, RoleOrganizer:
		return true
	}
	return false
}

// User is the stored account record. Password holds the bcrypt hash and is
// persisted, but it must never leave the server: use ToUserResponse.
type User struct {
	ID                   string     `json:"id"`
	Email                string     `json:"email"`
	Password             string     `json:"password"`
	FirstName            string     `json:"firstName"`
	LastName             string     `json:"lastName"`
	BloodGroup           string     `json:"bloodGroup"`
	Phone                string     `json:"phone"`
	Address              string     `json:"address"`
	City                 string     `json:"city"`
	State                string     `json:"state"`
	Pincode              string     `json:"pincode"`
	Role                 string     `json:"role"`
	IsActive             bool       `json:"isActive"`
	HealthConditions     string     `json:"healthConditions,omitempty"`
	EmergencyContact     string     `json:"emergencyContact,omitempty"`
	MedicalConditions    string     `json:"medicalConditions,omitempty"`
	AvailableForDonation *bool      `json:"availableForDonation,omitempty"`
	TotalDonations       int        `json:"totalDonations,omitempty"`
	LastDonationDate     string     `json:"lastDonationDate,omitempty"`
	CreatedAt            time.Time  `json:"createdAt"`
	UpdatedAt            *time.Time `json:"updatedAt,omitempty"`
}

// UserResponse is the API projection of a User (no password hash).
type UserResponse struct {
	ID                   string     `json:"id"`
	Email                string     `json:"email"`
	FirstName            string     `json:"firstName"`
	LastName             string     `json:"lastName"`
	BloodGroup           string     `json:"bloodGroup"`
	Phone                string     `json:"phone"`
	Address              string     `json:"address"`
	City                 string     `json:"city"`
	State                string     `json:"state"`
	Pincode              string     `json:"pincode"`
	Role                 string     `json:"role"`
	IsActive             bool       `json:"isActive"`
	HealthConditions     string     `json:"healthConditions,omitempty"`
	EmergencyContact     string     `json:"emergencyContact,omitempty"`
	MedicalConditions    string     `json:"medicalConditions,omitempty"`
	AvailableForDonation *bool      `json:"availableForDonation,omitempty"`
	TotalDonations       int        `json:"totalDonations"`
	LastDonationDate     string     `json:"lastDonationDate,omitempty"`
	CreatedAt            time.Time  `json:"createdAt"`
	UpdatedAt            *time.Time `json:"updatedAt,omitempty"`
}

func (u *User) ToUserResponse() UserResponse {
	return UserResponse{
		ID:                   u.ID,
		Email:                u.Email,
		FirstName:            u.FirstName,
		LastName:             u.LastName,
		BloodGroup:           u.BloodGroup,
		Phone:                u.Phone,
		Address:              u.Address,
		City:                 u.City,
		State:                u.State,
		Pincode:              u.Pincode,
		Role:                 u.Role,
		IsActive:             u.IsActive,
		HealthConditions:     u.HealthConditions,
		EmergencyContact:     u.EmergencyContact,
		MedicalConditions:    u.MedicalConditions,
		AvailableForDonation: u.AvailableForDonation,
		TotalDonations:       u.TotalDonations,
		LastDonationDate:     u.LastDonationDate,
		CreatedAt:            u.CreatedAt,
		UpdatedAt:            u.UpdatedAt,
	}
}

// UserSummary is the counterpart view used by messaging.
type UserSummary struct {
	ID        string `json:"id"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
}

func (u *User) ToSummary() UserSummary {
	return UserSummary{ID: u.ID, FirstName: u.FirstName, LastName: u.LastName, Email: u.Email}
}

// FullName joins first and last name with a single space.
func (u *User) FullName() string {
	switch {
	case u.FirstName == "":
		return u.LastName
	case u.LastName == "":
		return u.FirstName
	}
	return u.FirstName + " " + u.LastName
}

// IsAvailableForDonation is true only when the donor has opted in.
func (u *User) IsAvailableForDonation() bool {
	return u.AvailableForDonation != nil && *u.AvailableForDonation
}

// FindUser returns the index of the user with the given id, or -1.
func FindUser(users []User, id string) int {
	for i := range users {
		if users[i].ID == id {
			return i
		}
	}
	return -1
}

// MatchesSearch does a case-insensitive substring match of term against the
// user's full name and email. term must already be lower-cased.
func (u *User) MatchesSearch(term string) bool {
	name := strings.ToLower(u.FirstName + " " + u.LastName)
	return strings.Contains(name, term) || strings.Contains(strings.ToLower(u.Email), term)
}
