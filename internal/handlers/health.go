package handlers

import (
	"net/http"

	"redweb-backend/pkg/utils"
)

const apiVersion = "1.0.0"

func Health() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		utils.RespondJSON(w, http.StatusOK, map[string]string{
			"status":  "OK",
			"message": "Blood donation API is running",
		})
	}
}

// APIInfo lists the endpoint groups.
func APIInfo() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		utils.RespondJSON(w, http.StatusOK, map[string]interface{}{
			"status":  "OK",
			"message": "Blood donation API",
			"version": apiVersion,
			"endpoints": map[string][]string{
				"auth":           {"/api/auth/signin", "/api/auth/signup", "/api/auth/profile"},
				"users":          {"/api/users"},
				"bloodRequests":  {"/api/blood-requests"},
				"donationDrives": {"/api/donation-drives"},
				"notifications":  {"/api/notifications"},
				"messages":       {"/api/messages/conversations", "/api/messages/send"},
				"donations":      {"/api/donations/history", "/api/donations/statistics"},
			},
		})
	}
}
