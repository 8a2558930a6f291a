package services

import (
	"context"

	"go.uber.org/zap"

	"redweb-backend/internal/models"
)

// Reconciler recomputes each donor's totalDonations and lastDonationDate from
// the donation history. It is the recovery step for DonationService.Add when
// the counter write fails after the history write succeeded.
type Reconciler struct {
	c   *collections
	log *zap.Logger
}

// Run repairs every user whose counters disagree with the history and
// returns how many were changed. The history is read under the users lock
// and while no donation is being recorded.
func (r *Reconciler) Run(ctx context.Context) (int, error) {
	r.c.counters.Lock()
	defer r.c.counters.Unlock()

	fixed := 0
	err := r.c.users.Update(ctx, func(users []models.User) ([]models.User, error) {
		history, err := r.c.history.Load(ctx)
		if err != nil {
			return nil, err
		}
		byUser := tallyHistory(history)

		for i := range users {
			u := &users[i]
			want := donationTally{}
			if t, ok := byUser[u.ID]; ok {
				want = *t
			}
			lastDate := u.LastDonationDate
			if want.count > 0 {
				lastDate = want.last.DonationDate
			}
			if u.TotalDonations == want.count && u.LastDonationDate == lastDate {
				continue
			}
			r.log.Info("🔧 repairing donation counters",
				zap.String("user_id", u.ID),
				zap.Int("had", u.TotalDonations),
				zap.Int("want", want.count))
			u.TotalDonations = want.count
			u.LastDonationDate = lastDate
			fixed++
		}
		if fixed == 0 {
			return nil, errNothingChanged
		}
		return users, nil
	})
	if err != nil && !isNothingChanged(err) {
		return 0, err
	}
	if fixed > 0 {
		r.log.Info("✅ reconciliation finished", zap.Int("repaired", fixed))
	}
	return fixed, nil
}

type donationTally struct {
	count int
	last  models.DonationRecord
}

// tallyHistory counts records per user and keeps each user's latest one.
func tallyHistory(history []models.DonationRecord) map[string]*donationTally {
	byUser := make(map[string]*donationTally)
	for _, d := range history {
		t, ok := byUser[d.UserID]
		if !ok {
			t = &donationTally{}
			byUser[d.UserID] = t
		}
		t.count++
		if t.count == 1 || d.Date().After(t.last.Date()) {
			t.last = d
		}
	}
	return byUser
}
