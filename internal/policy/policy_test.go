package policy_test

import (
	"testing"

	"redweb-backend/internal/auth"
	"redweb-backend/internal/models"
	"redweb-backend/internal/policy"
)

var (
	owner     = auth.Identity{UserID: "owner", Role: models.RoleUser}
	stranger  = auth.Identity{UserID: "stranger", Role: models.RoleUser}
	admin     = auth.Identity{UserID: "admin", Role: models.RoleAdmin}
	organizer = auth.Identity{UserID: "org", Role: models.RoleOrganizer}
	anonymous = auth.Identity{}
)

func TestCanModifyBloodRequest(t *testing.T) {
	req := &models.BloodRequest{ID: "r1", RequesterID: "owner"}
	legacy := &models.BloodRequest{ID: "r2", UserID: "owner"}

	tests := []struct {
		name   string
		caller auth.Identity
		req    *models.BloodRequest
		want   bool
	}{
		{"owner", owner, req, true},
		{"owner legacy userId", owner, legacy, true},
		{"admin", admin, req, true},
		{"stranger", stranger, req, false},
		{"organizer is not special", organizer, req, false},
		{"anonymous", anonymous, &models.BloodRequest{}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := policy.CanModifyBloodRequest(tt.caller, tt.req); got != tt.want {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCanViewResponders_AdminNotExempt(t *testing.T) {
	req := &models.BloodRequest{RequesterID: "owner"}
	if !policy.CanViewResponders(owner, req) {
		t.Error("owner should see responders")
	}
	if policy.CanViewResponders(admin, req) {
		t.Error("admin should not see responders of someone else's request")
	}
}

func TestDrivePolicies(t *testing.T) {
	drive := &models.DonationDrive{OrganizerID: "owner"}

	if !policy.CanModifyDrive(owner, drive) || !policy.CanModifyDrive(admin, drive) {
		t.Error("owner and admin should modify drive")
	}
	if policy.CanModifyDrive(organizer, drive) {
		t.Error("other organizers should not modify drive")
	}

	for _, c := range []auth.Identity{owner, admin, organizer} {
		if !policy.CanViewRegistrations(c, drive) {
			t.Errorf("%s should view registrations", c.UserID)
		}
	}
	if policy.CanViewRegistrations(stranger, drive) {
		t.Error("plain users should not view registrations")
	}
}

func TestCanAccessNotification(t *testing.T) {
	n := &models.Notification{UserID: "owner"}
	if !policy.CanAccessNotification(owner, n) {
		t.Error("recipient should access notification")
	}
	if policy.CanAccessNotification(admin, n) {
		t.Error("admin should not access another user's notification")
	}
}
