package services

import (
	"context"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"redweb-backend/internal/apperr"
	"redweb-backend/internal/auth"
	"redweb-backend/internal/models"
	"redweb-backend/internal/policy"
)

type DriveService struct {
	c      *collections
	notify *NotificationService
	log    *zap.Logger
	now    func() time.Time
}

type DriveInput struct {
	Title        string   `json:"title"`
	Description  string   `json:"description"`
	Date         string   `json:"date"`
	StartTime    string   `json:"startTime"`
	EndTime      string   `json:"endTime"`
	Location     string   `json:"location"`
	Address      string   `json:"address"`
	ContactPhone string   `json:"contactPhone"`
	Capacity     int      `json:"capacity"`
	BloodTypes   []string `json:"bloodTypes"`
}

type DrivePatch struct {
	Title        *string   `json:"title"`
	Description  *string   `json:"description"`
	Date         *string   `json:"date"`
	StartTime    *string   `json:"startTime"`
	EndTime      *string   `json:"endTime"`
	Location     *string   `json:"location"`
	Address      *string   `json:"address"`
	ContactPhone *string   `json:"contactPhone"`
	Capacity     *int      `json:"capacity"`
	BloodTypes   *[]string `json:"bloodTypes"`
}

type RegisteredUser struct {
	ID                string    `json:"id"`
	FirstName         string    `json:"firstName"`
	LastName          string    `json:"lastName"`
	Email             string    `json:"email"`
	Phone             string    `json:"phone"`
	BloodType         string    `json:"bloodType"`
	RegistrationDate  time.Time `json:"registrationDate"`
	EmergencyContact  string    `json:"emergencyContact,omitempty"`
	MedicalConditions string    `json:"medicalConditions,omitempty"`
}

type DriveBrief struct {
	ID         string   `json:"id"`
	Title      string   `json:"title"`
	Date       string   `json:"date"`
	Location   string   `json:"location"`
	Capacity   int      `json:"capacity"`
	BloodTypes []string `json:"bloodTypes"`
}

type RegistrationsResult struct {
	Drive           DriveBrief       `json:"drive"`
	RegisteredUsers []RegisteredUser `json:"registeredUsers"`
	PotentialDonors []PotentialDonor `json:"potentialDonors"`
	Stats           struct {
		Registered int `json:"registered"`
		Potential  int `json:"potential"`
		Capacity   int `json:"capacity"`
	} `json:"stats"`
}

var (
	errDriveNotFound = apperr.NotFound("Donation drive not found")
	errDriveDenied   = apperr.Forbidden("Access denied")
)

func (s *DriveService) List(ctx context.Context) ([]models.DonationDrive, error) {
	return s.c.drives.Load(ctx)
}

func (s *DriveService) ListMine(ctx context.Context, caller auth.Identity) ([]models.DonationDrive, error) {
	all, err := s.c.drives.Load(ctx)
	if err != nil {
		return nil, err
	}
	mine := make([]models.DonationDrive, 0)
	for _, d := range all {
		if d.OrganizerID == caller.UserID {
			mine = append(mine, d)
		}
	}
	return mine, nil
}

func (s *DriveService) Get(ctx context.Context, id string) (models.DonationDrive, error) {
	all, err := s.c.drives.Load(ctx)
	if err != nil {
		return models.DonationDrive{}, err
	}
	i := models.FindDrive(all, id)
	if i < 0 {
		return models.DonationDrive{}, errDriveNotFound
	}
	return all[i], nil
}

func (s *DriveService) Create(ctx context.Context, caller auth.Identity, in DriveInput) (models.DonationDrive, error) {
	title := cleanText(in.Title)
	date := strings.TrimSpace(in.Date)
	start, end := strings.TrimSpace(in.StartTime), strings.TrimSpace(in.EndTime)
	location := strings.TrimSpace(in.Location)
	if title == "" || date == "" || start == "" || end == "" || location == "" {
		return models.DonationDrive{}, apperr.Validation("Title, date, start time, end time and location are required")
	}
	if in.Capacity < 0 {
		return models.DonationDrive{}, apperr.Validation("Capacity cannot be negative")
	}
	types, err := normalizeBloodTypes(in.BloodTypes)
	if err != nil {
		return models.DonationDrive{}, err
	}

	now := s.now()
	drive := models.DonationDrive{
		ID:               uuid.New().String(),
		OrganizerID:      caller.UserID,
		Title:            title,
		Description:      cleanText(in.Description),
		Date:             date,
		StartTime:        start,
		EndTime:          end,
		Location:         location,
		Address:          strings.TrimSpace(in.Address),
		ContactPhone:     strings.TrimSpace(in.ContactPhone),
		Capacity:         in.Capacity,
		BloodTypes:       types,
		RegisteredDonors: []string{},
		Registrations:    []models.Registration{},
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	err = s.c.drives.Update(ctx, func(all []models.DonationDrive) ([]models.DonationDrive, error) {
		return append(all, drive), nil
	})
	if err != nil {
		return models.DonationDrive{}, err
	}
	s.log.Info("📅 donation drive created", zap.String("drive_id", drive.ID), zap.String("organizer_id", caller.UserID))
	return drive, nil
}

func normalizeBloodTypes(in []string) ([]string, error) {
	out := make([]string, 0, len(in))
	for _, t := range in {
		g, ok := models.NormalizeBloodGroup(t)
		if !ok {
			return nil, apperr.Validation("Invalid blood type: " + t)
		}
		out = append(out, g)
	}
	return out, nil
}

func (s *DriveService) Update(ctx context.Context, caller auth.Identity, id string, p DrivePatch) (models.DonationDrive, error) {
	var types []string
	if p.BloodTypes != nil {
		var err error
		if types, err = normalizeBloodTypes(*p.BloodTypes); err != nil {
			return models.DonationDrive{}, err
		}
	}
	if p.Capacity != nil && *p.Capacity < 0 {
		return models.DonationDrive{}, apperr.Validation("Capacity cannot be negative")
	}

	var out models.DonationDrive
	err := s.c.drives.Update(ctx, func(all []models.DonationDrive) ([]models.DonationDrive, error) {
		i := models.FindDrive(all, id)
		if i < 0 {
			return nil, errDriveNotFound
		}
		d := &all[i]
		if !policy.CanModifyDrive(caller, d) {
			s.log.Warn("⛔ drive change denied", zap.String("drive_id", id), zap.String("user_id", caller.UserID))
			return nil, errDriveDenied
		}
		for _, v := range []*string{p.Title, p.Date, p.StartTime, p.EndTime, p.Location} {
			if v != nil && strings.TrimSpace(*v) == "" {
				return nil, apperr.Validation("Required drive fields cannot be empty")
			}
		}
		setString(&d.Title, p.Title, cleanText)
		setString(&d.Description, p.Description, cleanText)
		setString(&d.Date, p.Date, strings.TrimSpace)
		setString(&d.StartTime, p.StartTime, strings.TrimSpace)
		setString(&d.EndTime, p.EndTime, strings.TrimSpace)
		setString(&d.Location, p.Location, strings.TrimSpace)
		setString(&d.Address, p.Address, strings.TrimSpace)
		setString(&d.ContactPhone, p.ContactPhone, strings.TrimSpace)
		if p.Capacity != nil {
			d.Capacity = *p.Capacity
		}
		if p.BloodTypes != nil {
			d.BloodTypes = types
		}
		d.UpdatedAt = s.now()
		out = *d
		return all, nil
	})
	return out, err
}

func (s *DriveService) Delete(ctx context.Context, caller auth.Identity, id string) error {
	return s.c.drives.Update(ctx, func(all []models.DonationDrive) ([]models.DonationDrive, error) {
		i := models.FindDrive(all, id)
		if i < 0 {
			return nil, errDriveNotFound
		}
		if !policy.CanModifyDrive(caller, &all[i]) {
			s.log.Warn("⛔ drive delete denied", zap.String("drive_id", id), zap.String("user_id", caller.UserID))
			return nil, errDriveDenied
		}
		return append(all[:i], all[i+1:]...), nil
	})
}

// Register adds the caller to the drive. A drive with a positive capacity
// rejects registrations once it is full.
func (s *DriveService) Register(ctx context.Context, caller auth.Identity, id string) (models.DonationDrive, error) {
	var out models.DonationDrive
	err := s.c.drives.Update(ctx, func(all []models.DonationDrive) ([]models.DonationDrive, error) {
		i := models.FindDrive(all, id)
		if i < 0 {
			return nil, errDriveNotFound
		}
		d := &all[i]
		if d.IsRegistered(caller.UserID) {
			return nil, apperr.Validation("Already registered for this drive")
		}
		if d.IsFull() {
			return nil, apperr.Validation("This drive is full")
		}
		now := s.now()
		d.RegisteredDonors = append(d.RegisteredDonors, caller.UserID)
		d.Registrations = append(d.Registrations, models.Registration{UserID: caller.UserID, RegistrationDate: now})
		d.UpdatedAt = now
		out = *d
		return all, nil
	})
	if err != nil {
		return models.DonationDrive{}, err
	}

	s.log.Info("📝 drive registration", zap.String("drive_id", id), zap.String("user_id", caller.UserID))
	if out.OrganizerID != caller.UserID {
		s.notify.Notify(ctx, out.OrganizerID, "New drive registration",
			"A donor registered for "+out.Title+".",
			models.NotificationDriveRegistration, "/donation-drives/"+out.ID+"/registrations")
	}
	return out, nil
}

func (s *DriveService) Unregister(ctx context.Context, caller auth.Identity, id string) (models.DonationDrive, error) {
	var out models.DonationDrive
	err := s.c.drives.Update(ctx, func(all []models.DonationDrive) ([]models.DonationDrive, error) {
		i := models.FindDrive(all, id)
		if i < 0 {
			return nil, errDriveNotFound
		}
		d := &all[i]
		if !d.IsRegistered(caller.UserID) {
			return nil, apperr.Validation("User not registered for this drive")
		}
		d.RegisteredDonors = slices.DeleteFunc(d.RegisteredDonors, func(u string) bool { return u == caller.UserID })
		d.Registrations = slices.DeleteFunc(d.Registrations, func(r models.Registration) bool { return r.UserID == caller.UserID })
		d.UpdatedAt = s.now()
		out = *d
		return all, nil
	})
	return out, err
}

// Registrations lists who signed up for the drive, plus available donors of
// an accepted blood type who have not.
func (s *DriveService) Registrations(ctx context.Context, caller auth.Identity, id string) (RegistrationsResult, error) {
	drive, err := s.Get(ctx, id)
	if err != nil {
		return RegistrationsResult{}, err
	}
	if !policy.CanViewRegistrations(caller, &drive) {
		s.log.Warn("⛔ registrations view denied", zap.String("drive_id", id), zap.String("user_id", caller.UserID))
		return RegistrationsResult{}, apperr.Forbidden("Access denied. Only the drive owner, organizers, and admins can view registrations.")
	}
	users, err := s.c.users.Load(ctx)
	if err != nil {
		return RegistrationsResult{}, err
	}

	dates := make(map[string]time.Time, len(drive.Registrations))
	for _, r := range drive.Registrations {
		dates[r.UserID] = r.RegistrationDate
	}

	res := RegistrationsResult{
		Drive: DriveBrief{
			ID:         drive.ID,
			Title:      drive.Title,
			Date:       drive.Date,
			Location:   drive.Location,
			Capacity:   drive.Capacity,
			BloodTypes: drive.BloodTypes,
		},
		RegisteredUsers: []RegisteredUser{},
		PotentialDonors: []PotentialDonor{},
	}
	for _, uid := range drive.RegisteredDonors {
		i := models.FindUser(users, uid)
		if i < 0 {
			continue
		}
		u := &users[i]
		res.RegisteredUsers = append(res.RegisteredUsers, RegisteredUser{
			ID:                u.ID,
			FirstName:         u.FirstName,
			LastName:          u.LastName,
			Email:             u.Email,
			Phone:             u.Phone,
			BloodType:         u.BloodGroup,
			RegistrationDate:  dates[uid],
			EmergencyContact:  u.EmergencyContact,
			MedicalConditions: u.MedicalConditions,
		})
	}
	for i := range users {
		u := &users[i]
		if drive.IsRegistered(u.ID) || u.ID == caller.UserID {
			continue
		}
		if u.IsAvailableForDonation() && drive.AcceptsBloodType(u.BloodGroup) {
			res.PotentialDonors = append(res.PotentialDonors, potentialDonor(u))
		}
	}
	res.Stats.Registered = len(res.RegisteredUsers)
	res.Stats.Potential = len(res.PotentialDonors)
	res.Stats.Capacity = drive.Capacity
	return res, nil
}
