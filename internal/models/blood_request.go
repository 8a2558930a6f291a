package models

import "time"

// BloodRequest is a posting asking donors for a blood type. Older records
// carry the owner as userId, newer ones as requesterId; both are written on
// create and OwnerID reads whichever is present.
type BloodRequest struct {
	ID           string        `json:"id"`
	UserID       string        `json:"userId,omitempty"`
	RequesterID  string        `json:"requesterId,omitempty"`
	Title        string        `json:"title,omitempty"`
	PatientName  string        `json:"patientName,omitempty"`
	BloodType    string        `json:"bloodType"`
	Units        int           `json:"units"`
	Urgency      Urgency       `json:"urgency"`
	Hospital     string        `json:"hospital"`
	Location     string        `json:"location,omitempty"`
	ContactPhone string        `json:"contactPhone,omitempty"`
	Deadline     string        `json:"deadline,omitempty"`
	Notes        string        `json:"notes,omitempty"`
	IsEmergency  bool          `json:"isEmergency,omitempty"`
	Status       RequestStatus `json:"status"`
	Responses    []Response    `json:"responses"`
	CreatedAt    time.Time     `json:"createdAt"`
	UpdatedAt    time.Time     `json:"updatedAt"`
}

// Response records a donor answering a blood request.
type Response struct {
	UserID       string    `json:"userId"`
	ResponseDate time.Time `json:"responseDate"`
	Message      string    `json:"message,omitempty"`
}

func (r *BloodRequest) OwnerID() string {
	if r.RequesterID != "" {
		return r.RequesterID
	}
	return r.UserID
}

// IsEmergencyRequest covers both the explicit flag and the top urgencies.
func (r *BloodRequest) IsEmergencyRequest() bool {
	return r.IsEmergency || r.Urgency.IsEmergency()
}

// ResponseIndex returns the position of userID's response, or -1.
func (r *BloodRequest) ResponseIndex(userID string) int {
	for i, resp := range r.Responses {
		if resp.UserID == userID {
			return i
		}
	}
	return -1
}

func FindBloodRequest(requests []BloodRequest, id string) int {
	for i := range requests {
		if requests[i].ID == id {
			return i
		}
	}
	return -1
}
