package models

import (
	"strings"
	"time"
)

// DefaultDonationVolume is the volume in ml recorded when none is given.
const DefaultDonationVolume = 450

const DonationCompleted = "completed"

// DonationRecord is one entry in a user's donation history. DonationDate is
// kept as the client sent it (usually YYYY-MM-DD).
type DonationRecord struct {
	ID           string    `json:"id"`
	UserID       string    `json:"userId"`
	DonationDate string    `json:"donationDate"`
	Location     string    `json:"location"`
	BloodType    string    `json:"bloodType"`
	Volume       int       `json:"volume"`
	Notes        string    `json:"notes"`
	DriveID      *string   `json:"driveId"`
	Status       string    `json:"status"`
	CreatedAt    time.Time `json:"createdAt"`
}

var donationDateLayouts = []string{
	"2006-01-02",
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
}

// ParseDonationDate parses the date formats the clients have been seen to send.
func ParseDonationDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	for _, layout := range donationDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// Date returns the parsed donation date, or the zero time if it does not parse.
func (d *DonationRecord) Date() time.Time {
	t, _ := ParseDonationDate(d.DonationDate)
	return t
}
