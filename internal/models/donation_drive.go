package models

import (
	"slices"
	"time"
)

// DonationDrive is a scheduled collection event run by an organizer.
// RegisteredDonors is the flat id list; Registrations carries the dates.
type DonationDrive struct {
	ID               string         `json:"id"`
	OrganizerID      string         `json:"organizerId"`
	Title            string         `json:"title"`
	Description      string         `json:"description,omitempty"`
	Date             string         `json:"date"`
	StartTime        string         `json:"startTime"`
	EndTime          string         `json:"endTime"`
	Location         string         `json:"location"`
	Address          string         `json:"address,omitempty"`
	ContactPhone     string         `json:"contactPhone,omitempty"`
	Capacity         int            `json:"capacity"`
	BloodTypes       []string       `json:"bloodTypes"`
	RegisteredDonors []string       `json:"registeredDonors"`
	Registrations    []Registration `json:"registrations"`
	CreatedAt        time.Time      `json:"createdAt"`
	UpdatedAt        time.Time      `json:"updatedAt"`
}

type Registration struct {
	UserID           string    `json:"userId"`
	RegistrationDate time.Time `json:"registrationDate"`
}

func (d *DonationDrive) IsRegistered(userID string) bool {
	return slices.Contains(d.RegisteredDonors, userID)
}

// IsFull reports whether the drive has reached its capacity. A capacity of
// zero or less means unlimited.
func (d *DonationDrive) IsFull() bool {
	return d.Capacity > 0 && len(d.RegisteredDonors) >= d.Capacity
}

// AcceptsBloodType reports whether group is one of the drive's accepted types.
func (d *DonationDrive) AcceptsBloodType(group string) bool {
	return group != "" && slices.Contains(d.BloodTypes, group)
}

func FindDrive(drives []DonationDrive, id string) int {
	for i := range drives {
		if drives[i].ID == id {
			return i
		}
	}
	return -1
}
