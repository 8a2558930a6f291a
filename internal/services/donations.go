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
)

const (
	// EligibilityInterval is the minimum gap between two whole-blood donations.
	EligibilityInterval = 56 * 24 * time.Hour
	// streakMonths bounds the window a donation must fall in to count toward
	// the streak.
	streakMonths = 6
)

type DonationService struct {
	c   *collections
	log *zap.Logger
	now func() time.Time
}

type DonationInput struct {
	DonationDate string  `json:"donationDate"`
	Location     string  `json:"location"`
	BloodType    string  `json:"bloodType"`
	Volume       int     `json:"volume"`
	Notes        string  `json:"notes"`
	DriveID      *string `json:"driveId"`
}

type DonationStatistics struct {
	TotalDonations   int                    `json:"totalDonations"`
	TotalVolume      int                    `json:"totalVolume"`
	LastDonation     *models.DonationRecord `json:"lastDonation"`
	Streak           int                    `json:"streak"`
	EligibleForNext  bool                   `json:"eligibleForNext"`
	NextEligibleDate string                 `json:"nextEligibleDate,omitempty"`
}

// History returns the caller's donations, most recent first.
func (s *DonationService) History(ctx context.Context, caller auth.Identity) ([]models.DonationRecord, error) {
	all, err := s.c.history.Load(ctx)
	if err != nil {
		return nil, err
	}
	mine := make([]models.DonationRecord, 0)
	for _, d := range all {
		if d.UserID == caller.UserID {
			mine = append(mine, d)
		}
	}
	sortByDateDesc(mine)
	return mine, nil
}

func sortByDateDesc(records []models.DonationRecord) {
	slices.SortStableFunc(records, func(a, b models.DonationRecord) int {
		return b.Date().Compare(a.Date())
	})
}

// Add records a donation and then bumps the donor's counters. The two writes
// go to different collections; if the second fails the record stays and the
// reconciler repairs the counters later.
func (s *DonationService) Add(ctx context.Context, caller auth.Identity, in DonationInput) (models.DonationRecord, error) {
	date := strings.TrimSpace(in.DonationDate)
	location := strings.TrimSpace(in.Location)
	if date == "" || location == "" || strings.TrimSpace(in.BloodType) == "" {
		return models.DonationRecord{}, apperr.Validation("Donation date, location, and blood type are required")
	}
	if _, ok := models.ParseDonationDate(date); !ok {
		return models.DonationRecord{}, apperr.Validation("Invalid donation date")
	}
	bloodType, ok := models.NormalizeBloodGroup(in.BloodType)
	if !ok {
		return models.DonationRecord{}, apperr.Validation("Invalid blood type")
	}
	if in.Volume < 0 {
		return models.DonationRecord{}, apperr.Validation("Volume cannot be negative")
	}
	if in.Volume == 0 {
		in.Volume = models.DefaultDonationVolume
	}
	if in.DriveID != nil && strings.TrimSpace(*in.DriveID) == "" {
		in.DriveID = nil
	}

	s.c.counters.Lock()
	defer s.c.counters.Unlock()

	rec := models.DonationRecord{
		ID:           uuid.New().String(),
		UserID:       caller.UserID,
		DonationDate: date,
		Location:     location,
		BloodType:    bloodType,
		Volume:       in.Volume,
		Notes:        cleanText(in.Notes),
		DriveID:      in.DriveID,
		Status:       models.DonationCompleted,
		CreatedAt:    s.now(),
	}
	err := s.c.history.Update(ctx, func(all []models.DonationRecord) ([]models.DonationRecord, error) {
		return append(all, rec), nil
	})
	if err != nil {
		return models.DonationRecord{}, err
	}

	err = s.c.users.Update(ctx, func(users []models.User) ([]models.User, error) {
		i := models.FindUser(users, caller.UserID)
		if i < 0 {
			return nil, errNothingChanged
		}
		users[i].TotalDonations++
		users[i].LastDonationDate = date
		return users, nil
	})
	if err != nil && !isNothingChanged(err) {
		s.log.Error("❌ donation recorded but donor counters not updated",
			zap.String("user_id", caller.UserID), zap.String("donation_id", rec.ID), zap.Error(err))
	}

	s.log.Info("🩸 donation recorded", zap.String("user_id", caller.UserID), zap.String("donation_id", rec.ID))
	return rec, nil
}

// Statistics summarizes the caller's history relative to the current time.
func (s *DonationService) Statistics(ctx context.Context, caller auth.Identity) (DonationStatistics, error) {
	mine, err := s.History(ctx, caller)
	if err != nil {
		return DonationStatistics{}, err
	}

	stats := DonationStatistics{TotalDonations: len(mine), EligibleForNext: true}
	for _, d := range mine {
		v := d.Volume
		if v == 0 {
			v = models.DefaultDonationVolume
		}
		stats.TotalVolume += v
	}
	if len(mine) == 0 {
		return stats, nil
	}

	now := s.now()
	last := mine[0]
	stats.LastDonation = &last

	cutoff := now.AddDate(0, -streakMonths, 0)
	for _, d := range mine {
		if d.Date().Before(cutoff) {
			break
		}
		stats.Streak++
	}

	lastDate := last.Date()
	stats.EligibleForNext = now.Sub(lastDate) >= EligibilityInterval
	if !stats.EligibleForNext {
		stats.NextEligibleDate = lastDate.Add(EligibilityInterval).Format("2006-01-02")
	}
	return stats, nil
}
