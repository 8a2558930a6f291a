package models

import "strings"

// Urgency is the canonical urgency of a blood request. Older clients sent
// either LOW/NORMAL/HIGH/CRITICAL or normal/urgent/emergency; both spellings
// are accepted and folded into this set.
type Urgency string

const (
	UrgencyLow       Urgency = "low"
	UrgencyNormal    Urgency = "normal"
	UrgencyHigh      Urgency = "high"
	UrgencyUrgent    Urgency = "urgent"
	UrgencyCritical  Urgency = "critical"
	UrgencyEmergency Urgency = "emergency"
)

var AllUrgencies = []Urgency{UrgencyLow, UrgencyNormal, UrgencyHigh, UrgencyUrgent, UrgencyCritical, UrgencyEmergency}

// ParseUrgency normalizes s. Empty input means normal.
func ParseUrgency(s string) (Urgency, bool) {
	v := Urgency(strings.ToLower(strings.TrimSpace(s)))
	if v == "" {
		return UrgencyNormal, true
	}
	for _, u := range AllUrgencies {
		if v == u {
			return u, true
		}
	}
	return "", false
}

// IsEmergency reports whether u is one of the two top urgency levels.
func (u Urgency) IsEmergency() bool {
	return u == UrgencyCritical || u == UrgencyEmergency
}

type RequestStatus string

const (
	StatusPending   RequestStatus = "pending"
	StatusFulfilled RequestStatus = "fulfilled"
	StatusCancelled RequestStatus = "cancelled"
)

// ParseRequestStatus accepts any casing of pending, fulfilled or cancelled.
func ParseRequestStatus(s string) (RequestStatus, bool) {
	switch RequestStatus(strings.ToLower(strings.TrimSpace(s))) {
	case StatusPending:
		return StatusPending, true
	case StatusFulfilled:
		return StatusFulfilled, true
	case StatusCancelled:
		return StatusCancelled, true
	}
	return "", false
}

var bloodGroups = map[string]bool{
	"A+": true, "A-": true,
	"B+": true, "B-": true,
	"AB+": true, "AB-": true,
	"O+": true, "O-": true,
}

// NormalizeBloodGroup upper-cases and trims s, returning false when it is not
// an ABO/Rh group.
func NormalizeBloodGroup(s string) (string, bool) {
	v := strings.ToUpper(strings.TrimSpace(s))
	return v, bloodGroups[v]
}
