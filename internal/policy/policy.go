// Package policy holds the authorization predicates for each resource type.
//
// Rules:
//   - Blood requests and donation drives may be changed by their owner or an admin
//   - Drive registrations are visible to the drive's organizer, admins and any organizer-role user
//   - Blood request responders are visible to the requester only
//   - Notifications are visible to their recipient only
//
// A false result must be reported as an explicit denial, never by filtering.
package policy

import (
	"redweb-backend/internal/auth"
	"redweb-backend/internal/models"
)

func isAdmin(caller auth.Identity) bool {
	return caller.Role == models.RoleAdmin
}

// CanModifyBloodRequest covers update, status change and delete.
func CanModifyBloodRequest(caller auth.Identity, req *models.BloodRequest) bool {
	return caller.UserID != "" && (caller.UserID == req.OwnerID() || isAdmin(caller))
}

// CanViewResponders allows the requester only. Unlike the drive rule,
// admins get no exemption.
func CanViewResponders(caller auth.Identity, req *models.BloodRequest) bool {
	return caller.UserID != "" && caller.UserID == req.OwnerID()
}

// CanModifyDrive covers update and delete.
func CanModifyDrive(caller auth.Identity, drive *models.DonationDrive) bool {
	return caller.UserID != "" && (caller.UserID == drive.OrganizerID || isAdmin(caller))
}

func CanViewRegistrations(caller auth.Identity, drive *models.DonationDrive) bool {
	if caller.UserID == "" {
		return false
	}
	return caller.UserID == drive.OrganizerID || isAdmin(caller) || caller.Role == models.RoleOrganizer
}

// CanAccessNotification covers read, mark-read and delete.
func CanAccessNotification(caller auth.Identity, n *models.Notification) bool {
	return caller.UserID != "" && caller.UserID == n.UserID
}

func CanListUsers(caller auth.Identity) bool {
	return isAdmin(caller)
}
