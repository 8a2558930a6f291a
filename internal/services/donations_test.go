package services_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"redweb-backend/internal/apperr"
	"redweb-backend/internal/database"
	"redweb-backend/internal/models"
	"redweb-backend/internal/services"
	"redweb-backend/internal/testutil"
)

func loadUser(t *testing.T, env *testutil.Env, id string) models.User {
	t.Helper()
	users, err := database.NewCollection[models.User](env.Store, database.Users).Load(context.Background())
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	i := models.FindUser(users, id)
	if i < 0 {
		t.Fatalf("user %s not found", id)
	}
	return users[i]
}

func loadHistory(t *testing.T, env *testutil.Env) []models.DonationRecord {
	t.Helper()
	history, err := database.NewCollection[models.DonationRecord](env.Store, database.DonationHistory).Load(context.Background())
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	return history
}

func TestAddDonation_UpdatesCounters(t *testing.T) {
	env := testutil.NewEnv(t)
	ctx := context.Background()
	u := env.AddUser(t, testutil.TestUser{Email: "a@x.com"})

	for i, date := range []string{"2025-01-10", "2025-04-02"} {
		rec, err := env.Services.Donations.Add(ctx, testutil.Caller(u), services.DonationInput{
			DonationDate: date, Location: "Red Cross", BloodType: "a+",
		})
		if err != nil {
			t.Fatalf("Add failed: %v", err)
		}
		if rec.Volume != models.DefaultDonationVolume {
			t.Errorf("got volume %d, want %d", rec.Volume, models.DefaultDonationVolume)
		}
		if rec.Status != models.DonationCompleted || rec.BloodType != "A+" {
			t.Errorf("unexpected record: %+v", rec)
		}
		got := loadUser(t, env, u.ID)
		if got.TotalDonations != i+1 {
			t.Errorf("got totalDonations %d, want %d", got.TotalDonations, i+1)
		}
		if got.LastDonationDate != date {
			t.Errorf("got lastDonationDate %q, want %q", got.LastDonationDate, date)
		}
	}
}

func TestAddDonation_Validation(t *testing.T) {
	env := testutil.NewEnv(t)
	u := env.AddUser(t, testutil.TestUser{Email: "a@x.com"})
	cases := map[string]services.DonationInput{
		"missing location": {DonationDate: "2025-01-10", BloodType: "A+"},
		"bad date":         {DonationDate: "last tuesday", Location: "L", BloodType: "A+"},
		"bad blood type":   {DonationDate: "2025-01-10", Location: "L", BloodType: "Q"},
		"negative volume":  {DonationDate: "2025-01-10", Location: "L", BloodType: "A+", Volume: -1},
	}
	for name, in := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := env.Services.Donations.Add(context.Background(), testutil.Caller(u), in)
			if !apperr.Is(err, apperr.KindValidation) {
				t.Errorf("expected validation error, got %v", err)
			}
		})
	}
}

func TestDonationHistoryAndStatistics(t *testing.T) {
	env := testutil.NewEnv(t)
	ctx := context.Background()
	u := env.AddUser(t, testutil.TestUser{Email: "a@x.com"})
	other := env.AddUser(t, testutil.TestUser{Email: "b@x.com"})

	// clock is 2025-06-01; the six month window starts 2024-12-01.
	inputs := []services.DonationInput{
		{DonationDate: "2024-06-01", Location: "L", BloodType: "A+", Volume: 300},
		{DonationDate: "2025-05-20", Location: "L", BloodType: "A+"},
		{DonationDate: "2025-01-15", Location: "L", BloodType: "A+"},
	}
	for _, in := range inputs {
		if _, err := env.Services.Donations.Add(ctx, testutil.Caller(u), in); err != nil {
			t.Fatalf("Add failed: %v", err)
		}
	}
	if _, err := env.Services.Donations.Add(ctx, testutil.Caller(other), inputs[1]); err != nil {
		t.Fatalf("Add failed: %v", err)
	}

	history, err := env.Services.Donations.History(ctx, testutil.Caller(u))
	if err != nil {
		t.Fatalf("History failed: %v", err)
	}
	if len(history) != 3 || history[0].DonationDate != "2025-05-20" || history[2].DonationDate != "2024-06-01" {
		t.Errorf("history not sorted newest first: %+v", history)
	}

	stats, err := env.Services.Donations.Statistics(ctx, testutil.Caller(u))
	if err != nil {
		t.Fatalf("Statistics failed: %v", err)
	}
	if stats.TotalDonations != 3 {
		t.Errorf("got totalDonations %d, want 3", stats.TotalDonations)
	}
	if stats.TotalVolume != 1200 {
		t.Errorf("got totalVolume %d, want 1200", stats.TotalVolume)
	}
	if stats.Streak != 2 {
		t.Errorf("got streak %d, want 2", stats.Streak)
	}
	if stats.LastDonation == nil || stats.LastDonation.DonationDate != "2025-05-20" {
		t.Errorf("unexpected lastDonation: %+v", stats.LastDonation)
	}
	if stats.EligibleForNext {
		t.Error("expected not eligible 12 days after a donation")
	}
	if stats.NextEligibleDate != "2025-07-15" {
		t.Errorf("got nextEligibleDate %q, want %q", stats.NextEligibleDate, "2025-07-15")
	}
}

func TestDonationStatistics_NoHistory(t *testing.T) {
	env := testutil.NewEnv(t)
	u := env.AddUser(t, testutil.TestUser{Email: "a@x.com"})
	stats, err := env.Services.Donations.Statistics(context.Background(), testutil.Caller(u))
	if err != nil {
		t.Fatalf("Statistics failed: %v", err)
	}
	if !stats.EligibleForNext || stats.LastDonation != nil || stats.TotalDonations != 0 {
		t.Errorf("unexpected stats: %+v", stats)
	}
}

func TestReconciler_RepairsCounters(t *testing.T) {
	env := testutil.NewEnv(t)
	ctx := context.Background()
	u := env.AddUser(t, testutil.TestUser{Email: "a@x.com"})
	clean := env.AddUser(t, testutil.TestUser{Email: "b@x.com"})

	for _, date := range []string{"2025-03-01", "2025-02-01"} {
		if _, err := env.Services.Donations.Add(ctx, testutil.Caller(u), services.DonationInput{DonationDate: date, Location: "L", BloodType: "A+"}); err != nil {
			t.Fatalf("Add failed: %v", err)
		}
	}

	// Simulate the second saga step having failed.
	users := database.NewCollection[models.User](env.Store, database.Users)
	err := users.Update(ctx, func(all []models.User) ([]models.User, error) {
		i := models.FindUser(all, u.ID)
		all[i].TotalDonations = 1
		all[i].LastDonationDate = "2025-03-01"
		return all, nil
	})
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	fixed, err := env.Services.Reconciler.Run(ctx)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if fixed != 1 {
		t.Errorf("repaired %d users, want 1", fixed)
	}
	got := loadUser(t, env, u.ID)
	if got.TotalDonations != 2 || got.LastDonationDate != "2025-03-01" {
		t.Errorf("counters not repaired: total=%d last=%q", got.TotalDonations, got.LastDonationDate)
	}
	if c := loadUser(t, env, clean.ID); c.TotalDonations != 0 {
		t.Errorf("clean user changed: %+v", c)
	}

	fixed, err = env.Services.Reconciler.Run(ctx)
	if err != nil || fixed != 0 {
		t.Errorf("second run: fixed=%d err=%v", fixed, err)
	}
}

func TestAddDonation_RecordSurvivesCounterFailure(t *testing.T) {
	backend := testutil.NewHookBackend(database.NewMemoryBackend())
	env := testutil.NewEnvWith(t, testutil.EnvOptions{Backend: backend})
	ctx := context.Background()
	u := env.AddUser(t, testutil.TestUser{Email: "a@x.com"})

	backend.FailWrites(database.Users, errors.New("disk full"))
	rec, err := env.Services.Donations.Add(ctx, testutil.Caller(u), services.DonationInput{
		DonationDate: "2025-05-01", Location: "L", BloodType: "A+",
	})
	if err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	if rec.ID == "" {
		t.Fatal("expected the stored record")
	}

	history := loadHistory(t, env)
	if len(history) != 1 || history[0].ID != rec.ID {
		t.Fatalf("record not kept in history: %+v", history)
	}
	got := loadUser(t, env, u.ID)
	if got.TotalDonations != 0 || got.LastDonationDate != "" {
		t.Errorf("counters changed despite failed write: total=%d last=%q", got.TotalDonations, got.LastDonationDate)
	}

	backend.FailWrites(database.Users, nil)
	fixed, err := env.Services.Reconciler.Run(ctx)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if fixed != 1 {
		t.Errorf("repaired %d users, want 1", fixed)
	}
	got = loadUser(t, env, u.ID)
	if got.TotalDonations != 1 || got.LastDonationDate != "2025-05-01" {
		t.Errorf("counters not repaired: total=%d last=%q", got.TotalDonations, got.LastDonationDate)
	}
}

func TestReconciler_KeepsConcurrentDonation(t *testing.T) {
	backend := testutil.NewHookBackend(database.NewMemoryBackend())
	env := testutil.NewEnvWith(t, testutil.EnvOptions{Backend: backend})
	ctx := context.Background()
	u := env.AddUser(t, testutil.TestUser{Email: "a@x.com"})

	add := func(date string) error {
		_, err := env.Services.Donations.Add(ctx, testutil.Caller(u), services.DonationInput{
			DonationDate: date, Location: "L", BloodType: "A+",
		})
		return err
	}
	if err := add("2025-01-01"); err != nil {
		t.Fatalf("Add failed: %v", err)
	}

	// Start a second donation as soon as the reconciler has read the
	// history, and give it time to finish before the reconciler writes.
	done := make(chan error, 1)
	backend.AfterNextRead(database.DonationHistory, func() {
		finished := make(chan error, 1)
		go func() { finished <- add("2025-02-01") }()
		select {
		case err := <-finished:
			done <- err
		case <-time.After(100 * time.Millisecond):
			go func() { done <- <-finished }()
		}
	})

	if _, err := env.Services.Reconciler.Run(ctx); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if err := <-done; err != nil {
		t.Fatalf("concurrent Add failed: %v", err)
	}

	if n := len(loadHistory(t, env)); n != 2 {
		t.Fatalf("got %d history records, want 2", n)
	}
	got := loadUser(t, env, u.ID)
	if got.TotalDonations != 2 || got.LastDonationDate != "2025-02-01" {
		t.Errorf("got total=%d last=%q, want 2 and 2025-02-01", got.TotalDonations, got.LastDonationDate)
	}
}
