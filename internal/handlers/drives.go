package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"redweb-backend/internal/services"
	"redweb-backend/pkg/utils"
)

func GetDrives(svc *services.DriveService, env Env) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		drives, err := svc.List(r.Context())
		if err != nil {
			env.fail(w, r, err)
			return
		}
		utils.RespondJSON(w, http.StatusOK, drives)
	}
}

func GetMyDrives(svc *services.DriveService, env Env) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		drives, err := svc.ListMine(r.Context(), caller(r))
		if err != nil {
			env.fail(w, r, err)
			return
		}
		utils.RespondJSON(w, http.StatusOK, drives)
	}
}

func GetDrive(svc *services.DriveService, env Env) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		drive, err := svc.Get(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			env.fail(w, r, err)
			return
		}
		utils.RespondJSON(w, http.StatusOK, drive)
	}
}

func CreateDrive(svc *services.DriveService, env Env) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req services.DriveInput
		if err := decodeJSON(r, &req); err != nil {
			env.fail(w, r, err)
			return
		}
		drive, err := svc.Create(r.Context(), caller(r), req)
		if err != nil {
			env.fail(w, r, err)
			return
		}
		utils.RespondJSON(w, http.StatusCreated, drive)
	}
}

func UpdateDrive(svc *services.DriveService, env Env) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var patch services.DrivePatch
		if err := decodeJSON(r, &patch); err != nil {
			env.fail(w, r, err)
			return
		}
		drive, err := svc.Update(r.Context(), caller(r), chi.URLParam(r, "id"), patch)
		if err != nil {
			env.fail(w, r, err)
			return
		}
		utils.RespondJSON(w, http.StatusOK, drive)
	}
}

func DeleteDrive(svc *services.DriveService, env Env) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := svc.Delete(r.Context(), caller(r), chi.URLParam(r, "id")); err != nil {
			env.fail(w, r, err)
			return
		}
		utils.RespondMessage(w, http.StatusOK, "Donation drive deleted successfully")
	}
}

func RegisterForDrive(svc *services.DriveService, env Env) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		drive, err := svc.Register(r.Context(), caller(r), chi.URLParam(r, "id"))
		if err != nil {
			env.fail(w, r, err)
			return
		}
		utils.RespondJSON(w, http.StatusOK, map[string]interface{}{
			"message": "Successfully registered for donation drive",
			"drive":   drive,
		})
	}
}

func UnregisterFromDrive(svc *services.DriveService, env Env) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		drive, err := svc.Unregister(r.Context(), caller(r), chi.URLParam(r, "id"))
		if err != nil {
			env.fail(w, r, err)
			return
		}
		utils.RespondJSON(w, http.StatusOK, map[string]interface{}{
			"message": "Successfully unregistered from donation drive",
			"drive":   drive,
		})
	}
}

func GetDriveRegistrations(svc *services.DriveService, env Env) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		res, err := svc.Registrations(r.Context(), caller(r), chi.URLParam(r, "id"))
		if err != nil {
			env.fail(w, r, err)
			return
		}
		utils.RespondJSON(w, http.StatusOK, res)
	}
}
