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

type BloodRequestService struct {
	c      *collections
	notify *NotificationService
	log    *zap.Logger
	now    func() time.Time
}

type BloodRequestInput struct {
	Title        string `json:"title"`
	PatientName  string `json:"patientName"`
	BloodType    string `json:"bloodType"`
	Units        int    `json:"units"`
	Urgency      string `json:"urgency"`
	Hospital     string `json:"hospital"`
	Location     string `json:"location"`
	ContactPhone string `json:"contactPhone"`
	Deadline     string `json:"deadline"`
	Notes        string `json:"notes"`
	IsEmergency  bool   `json:"isEmergency"`
}

// BloodRequestPatch is a partial update; nil fields are left alone.
type BloodRequestPatch struct {
	Title        *string `json:"title"`
	PatientName  *string `json:"patientName"`
	BloodType    *string `json:"bloodType"`
	Units        *int    `json:"units"`
	Urgency      *string `json:"urgency"`
	Hospital     *string `json:"hospital"`
	Location     *string `json:"location"`
	ContactPhone *string `json:"contactPhone"`
	Deadline     *string `json:"deadline"`
	Notes        *string `json:"notes"`
	IsEmergency  *bool   `json:"isEmergency"`
	Status       *string `json:"status"`
}

type RequestStatistics struct {
	Total             int                    `json:"total"`
	Pending           int                    `json:"pending"`
	Fulfilled         int                    `json:"fulfilled"`
	Cancelled         int                    `json:"cancelled"`
	ByUrgency         map[models.Urgency]int `json:"byUrgency"`
	ActiveRequests    int                    `json:"activeRequests"`
	EmergencyRequests int                    `json:"emergencyRequests"`
	UpcomingDrives    int                    `json:"upcomingDrives"`
	TotalDonations    int                    `json:"totalDonations"`
}

type RequestBrief struct {
	ID        string         `json:"id"`
	Title     string         `json:"title,omitempty"`
	BloodType string         `json:"bloodType"`
	Urgency   models.Urgency `json:"urgency"`
	Deadline  string         `json:"deadline,omitempty"`
}

type Responder struct {
	ID                string    `json:"id"`
	FirstName         string    `json:"firstName"`
	LastName          string    `json:"lastName"`
	Email             string    `json:"email"`
	Phone             string    `json:"phone"`
	BloodType         string    `json:"bloodType"`
	ResponseDate      time.Time `json:"responseDate"`
	Message           string    `json:"message,omitempty"`
	EmergencyContact  string    `json:"emergencyContact,omitempty"`
	LastDonationDate  string    `json:"lastDonationDate,omitempty"`
	MedicalConditions string    `json:"medicalConditions,omitempty"`
}

type PotentialDonor struct {
	ID               string `json:"id"`
	FirstName        string `json:"firstName"`
	LastName         string `json:"lastName"`
	BloodType        string `json:"bloodType"`
	LastDonationDate string `json:"lastDonationDate,omitempty"`
}

type RespondersResult struct {
	Request         RequestBrief     `json:"request"`
	Responders      []Responder      `json:"responders"`
	PotentialDonors []PotentialDonor `json:"potentialDonors"`
	Stats           struct {
		Responded int `json:"responded"`
		Potential int `json:"potential"`
	} `json:"stats"`
}

var (
	errRequestNotFound = apperr.NotFound("Blood request not found")
	errRequestDenied   = apperr.Forbidden("Access denied")
)

func (s *BloodRequestService) List(ctx context.Context) ([]models.BloodRequest, error) {
	return s.c.requests.Load(ctx)
}

func (s *BloodRequestService) ListMine(ctx context.Context, caller auth.Identity) ([]models.BloodRequest, error) {
	all, err := s.c.requests.Load(ctx)
	if err != nil {
		return nil, err
	}
	mine := make([]models.BloodRequest, 0)
	for _, r := range all {
		if r.OwnerID() == caller.UserID {
			mine = append(mine, r)
		}
	}
	return mine, nil
}

func (s *BloodRequestService) Get(ctx context.Context, id string) (models.BloodRequest, error) {
	all, err := s.c.requests.Load(ctx)
	if err != nil {
		return models.BloodRequest{}, err
	}
	i := models.FindBloodRequest(all, id)
	if i < 0 {
		return models.BloodRequest{}, errRequestNotFound
	}
	return all[i], nil
}

// Create stamps the caller as owner; any owner field in the input is ignored.
func (s *BloodRequestService) Create(ctx context.Context, caller auth.Identity, in BloodRequestInput) (models.BloodRequest, error) {
	bloodType, ok := models.NormalizeBloodGroup(in.BloodType)
	if strings.TrimSpace(in.BloodType) == "" || strings.TrimSpace(in.Hospital) == "" {
		return models.BloodRequest{}, apperr.Validation("Blood type and hospital are required")
	}
	if !ok {
		return models.BloodRequest{}, apperr.Validation("Invalid blood type")
	}
	urgency, ok := models.ParseUrgency(in.Urgency)
	if !ok {
		return models.BloodRequest{}, apperr.Validation("Invalid urgency")
	}
	if in.Units < 0 {
		return models.BloodRequest{}, apperr.Validation("Units must be positive")
	}
	if in.Units == 0 {
		in.Units = 1
	}

	now := s.now()
	req := models.BloodRequest{
		ID:           uuid.New().String(),
		UserID:       caller.UserID,
		RequesterID:  caller.UserID,
		Title:        cleanText(in.Title),
		PatientName:  strings.TrimSpace(in.PatientName),
		BloodType:    bloodType,
		Units:        in.Units,
		Urgency:      urgency,
		Hospital:     strings.TrimSpace(in.Hospital),
		Location:     strings.TrimSpace(in.Location),
		ContactPhone: strings.TrimSpace(in.ContactPhone),
		Deadline:     strings.TrimSpace(in.Deadline),
		Notes:        cleanText(in.Notes),
		IsEmergency:  in.IsEmergency,
		Status:       models.StatusPending,
		Responses:    []models.Response{},
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	err := s.c.requests.Update(ctx, func(all []models.BloodRequest) ([]models.BloodRequest, error) {
		return append(all, req), nil
	})
	if err != nil {
		return models.BloodRequest{}, err
	}
	s.log.Info("🩸 blood request created", zap.String("request_id", req.ID), zap.String("user_id", caller.UserID))
	return req, nil
}

// modify runs fn on the request with id after the owner-or-admin check.
func (s *BloodRequestService) modify(ctx context.Context, caller auth.Identity, id string, fn func(r *models.BloodRequest) error) (models.BloodRequest, error) {
	var out models.BloodRequest
	err := s.c.requests.Update(ctx, func(all []models.BloodRequest) ([]models.BloodRequest, error) {
		i := models.FindBloodRequest(all, id)
		if i < 0 {
			return nil, errRequestNotFound
		}
		r := &all[i]
		if !policy.CanModifyBloodRequest(caller, r) {
			s.log.Warn("⛔ blood request change denied", zap.String("request_id", id), zap.String("user_id", caller.UserID))
			return nil, errRequestDenied
		}
		if err := fn(r); err != nil {
			return nil, err
		}
		r.UpdatedAt = s.stamp(r.UpdatedAt)
		out = *r
		return all, nil
	})
	return out, err
}

// stamp returns the current time, never earlier than prev.
func (s *BloodRequestService) stamp(prev time.Time) time.Time {
	now := s.now()
	if now.Before(prev) {
		return prev
	}
	return now
}

func (s *BloodRequestService) Update(ctx context.Context, caller auth.Identity, id string, p BloodRequestPatch) (models.BloodRequest, error) {
	return s.modify(ctx, caller, id, func(r *models.BloodRequest) error {
		if p.BloodType != nil {
			g, ok := models.NormalizeBloodGroup(*p.BloodType)
			if !ok {
				return apperr.Validation("Invalid blood type")
			}
			r.BloodType = g
		}
		if p.Urgency != nil {
			u, ok := models.ParseUrgency(*p.Urgency)
			if !ok {
				return apperr.Validation("Invalid urgency")
			}
			r.Urgency = u
		}
		if p.Status != nil {
			st, ok := models.ParseRequestStatus(*p.Status)
			if !ok {
				return apperr.Validation("Invalid status")
			}
			r.Status = st
		}
		if p.Units != nil {
			if *p.Units <= 0 {
				return apperr.Validation("Units must be positive")
			}
			r.Units = *p.Units
		}
		if p.Hospital != nil {
			if strings.TrimSpace(*p.Hospital) == "" {
				return apperr.Validation("Hospital cannot be empty")
			}
			r.Hospital = strings.TrimSpace(*p.Hospital)
		}
		setString(&r.Title, p.Title, cleanText)
		setString(&r.PatientName, p.PatientName, strings.TrimSpace)
		setString(&r.Location, p.Location, strings.TrimSpace)
		setString(&r.ContactPhone, p.ContactPhone, strings.TrimSpace)
		setString(&r.Deadline, p.Deadline, strings.TrimSpace)
		setString(&r.Notes, p.Notes, cleanText)
		if p.IsEmergency != nil {
			r.IsEmergency = *p.IsEmergency
		}
		return nil
	})
}

// UpdateStatus only touches status and updatedAt.
func (s *BloodRequestService) UpdateStatus(ctx context.Context, caller auth.Identity, id, status string) (models.BloodRequest, error) {
	st, ok := models.ParseRequestStatus(status)
	if !ok {
		return models.BloodRequest{}, apperr.Validation("Invalid status")
	}
	return s.modify(ctx, caller, id, func(r *models.BloodRequest) error {
		r.Status = st
		return nil
	})
}

func (s *BloodRequestService) Delete(ctx context.Context, caller auth.Identity, id string) error {
	return s.c.requests.Update(ctx, func(all []models.BloodRequest) ([]models.BloodRequest, error) {
		i := models.FindBloodRequest(all, id)
		if i < 0 {
			return nil, errRequestNotFound
		}
		if !policy.CanModifyBloodRequest(caller, &all[i]) {
			s.log.Warn("⛔ blood request delete denied", zap.String("request_id", id), zap.String("user_id", caller.UserID))
			return nil, errRequestDenied
		}
		return append(all[:i], all[i+1:]...), nil
	})
}

// Respond records the caller as a donor willing to give blood for the request.
func (s *BloodRequestService) Respond(ctx context.Context, caller auth.Identity, id, message string) (models.BloodRequest, error) {
	var out models.BloodRequest
	err := s.c.requests.Update(ctx, func(all []models.BloodRequest) ([]models.BloodRequest, error) {
		i := models.FindBloodRequest(all, id)
		if i < 0 {
			return nil, errRequestNotFound
		}
		r := &all[i]
		if r.OwnerID() == caller.UserID {
			return nil, apperr.Validation("You cannot respond to your own request")
		}
		if r.Status != models.StatusPending {
			return nil, apperr.Validation("This request is no longer accepting responses")
		}
		if r.ResponseIndex(caller.UserID) >= 0 {
			return nil, apperr.Conflict("Already responded to this request")
		}
		now := s.now()
		r.Responses = append(r.Responses, models.Response{
			UserID:       caller.UserID,
			ResponseDate: now,
			Message:      cleanText(message),
		})
		r.UpdatedAt = s.stamp(r.UpdatedAt)
		out = *r
		return all, nil
	})
	if err != nil {
		return models.BloodRequest{}, err
	}

	s.notify.Notify(ctx, out.OwnerID(), "New response to your blood request",
		"A donor has responded to your request for "+out.BloodType+" blood.",
		models.NotificationRequestResponse, "/blood-requests/"+out.ID+"/responders")
	return out, nil
}

func (s *BloodRequestService) WithdrawResponse(ctx context.Context, caller auth.Identity, id string) (models.BloodRequest, error) {
	var out models.BloodRequest
	err := s.c.requests.Update(ctx, func(all []models.BloodRequest) ([]models.BloodRequest, error) {
		i := models.FindBloodRequest(all, id)
		if i < 0 {
			return nil, errRequestNotFound
		}
		r := &all[i]
		j := r.ResponseIndex(caller.UserID)
		if j < 0 {
			return nil, apperr.Validation("You have not responded to this request")
		}
		r.Responses = append(r.Responses[:j], r.Responses[j+1:]...)
		r.UpdatedAt = s.stamp(r.UpdatedAt)
		out = *r
		return all, nil
	})
	return out, err
}

// Statistics is computed from the full collections on every call.
func (s *BloodRequestService) Statistics(ctx context.Context) (RequestStatistics, error) {
	requests, err := s.c.requests.Load(ctx)
	if err != nil {
		return RequestStatistics{}, err
	}
	drives, err := s.c.drives.Load(ctx)
	if err != nil {
		return RequestStatistics{}, err
	}
	history, err := s.c.history.Load(ctx)
	if err != nil {
		return RequestStatistics{}, err
	}

	stats := RequestStatistics{
		Total:          len(requests),
		ByUrgency:      make(map[models.Urgency]int, len(models.AllUrgencies)),
		TotalDonations: len(history),
	}
	for _, u := range models.AllUrgencies {
		stats.ByUrgency[u] = 0
	}
	for i := range requests {
		r := &requests[i]
		switch r.Status {
		case models.StatusPending:
			stats.Pending++
		case models.StatusFulfilled:
			stats.Fulfilled++
		case models.StatusCancelled:
			stats.Cancelled++
		}
		if u, ok := models.ParseUrgency(string(r.Urgency)); ok {
			stats.ByUrgency[u]++
		}
		if r.IsEmergencyRequest() {
			stats.EmergencyRequests++
		}
	}
	stats.ActiveRequests = stats.Pending

	today := s.now().Truncate(24 * time.Hour)
	for i := range drives {
		d, ok := models.ParseDonationDate(drives[i].Date)
		if !ok || !d.Before(today) {
			stats.UpcomingDrives++
		}
	}
	return stats, nil
}

// Responders is visible to the requester only.
func (s *BloodRequestService) Responders(ctx context.Context, caller auth.Identity, id string) (RespondersResult, error) {
	req, err := s.Get(ctx, id)
	if err != nil {
		return RespondersResult{}, err
	}
	if !policy.CanViewResponders(caller, &req) {
		s.log.Warn("⛔ responders view denied", zap.String("request_id", id), zap.String("user_id", caller.UserID))
		return RespondersResult{}, apperr.Forbidden("Only the requester can view responders")
	}

	users, err := s.c.users.Load(ctx)
	if err != nil {
		return RespondersResult{}, err
	}

	res := RespondersResult{
		Request: RequestBrief{
			ID:        req.ID,
			Title:     req.Title,
			BloodType: req.BloodType,
			Urgency:   req.Urgency,
			Deadline:  req.Deadline,
		},
		Responders:      []Responder{},
		PotentialDonors: []PotentialDonor{},
	}

	for _, resp := range req.Responses {
		i := models.FindUser(users, resp.UserID)
		if i < 0 {
			continue
		}
		u := &users[i]
		res.Responders = append(res.Responders, Responder{
			ID:                u.ID,
			FirstName:         u.FirstName,
			LastName:          u.LastName,
			Email:             u.Email,
			Phone:             u.Phone,
			BloodType:         u.BloodGroup,
			ResponseDate:      resp.ResponseDate,
			Message:           resp.Message,
			EmergencyContact:  u.EmergencyContact,
			LastDonationDate:  u.LastDonationDate,
			MedicalConditions: u.MedicalConditions,
		})
	}

	for i := range users {
		u := &users[i]
		if u.ID == caller.UserID || req.ResponseIndex(u.ID) >= 0 {
			continue
		}
		if u.BloodGroup == req.BloodType && u.IsAvailableForDonation() {
			res.PotentialDonors = append(res.PotentialDonors, potentialDonor(u))
		}
	}

	res.Stats.Responded = len(res.Responders)
	res.Stats.Potential = len(res.PotentialDonors)
	return res, nil
}

func potentialDonor(u *models.User) PotentialDonor {
	return PotentialDonor{
		ID:               u.ID,
		FirstName:        u.FirstName,
		LastName:         u.LastName,
		BloodType:        u.BloodGroup,
		LastDonationDate: u.LastDonationDate,
	}
}

// setString applies a patched string through clean.
func setString(dst *string, v *string, clean func(string) string) {
	if v != nil {
		*dst = clean(*v)
	}
}
