package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"redweb-backend/internal/services"
	"redweb-backend/pkg/utils"
)

func GetBloodRequests(svc *services.BloodRequestService, env Env) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		requests, err := svc.List(r.Context())
		if err != nil {
			env.fail(w, r, err)
			return
		}
		utils.RespondJSON(w, http.StatusOK, requests)
	}
}

func GetMyBloodRequests(svc *services.BloodRequestService, env Env) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		requests, err := svc.ListMine(r.Context(), caller(r))
		if err != nil {
			env.fail(w, r, err)
			return
		}
		utils.RespondJSON(w, http.StatusOK, requests)
	}
}

func GetBloodRequestStatistics(svc *services.BloodRequestService, env Env) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		stats, err := svc.Statistics(r.Context())
		if err != nil {
			env.fail(w, r, err)
			return
		}
		utils.RespondJSON(w, http.StatusOK, stats)
	}
}

func CreateBloodRequest(svc *services.BloodRequestService, env Env) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req services.BloodRequestInput
		if err := decodeJSON(r, &req); err != nil {
			env.fail(w, r, err)
			return
		}
		created, err := svc.Create(r.Context(), caller(r), req)
		if err != nil {
			env.fail(w, r, err)
			return
		}
		utils.RespondJSON(w, http.StatusCreated, created)
	}
}

func GetBloodRequest(svc *services.BloodRequestService, env Env) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req, err := svc.Get(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			env.fail(w, r, err)
			return
		}
		utils.RespondJSON(w, http.StatusOK, req)
	}
}

func UpdateBloodRequest(svc *services.BloodRequestService, env Env) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var patch services.BloodRequestPatch
		if err := decodeJSON(r, &patch); err != nil {
			env.fail(w, r, err)
			return
		}
		updated, err := svc.Update(r.Context(), caller(r), chi.URLParam(r, "id"), patch)
		if err != nil {
			env.fail(w, r, err)
			return
		}
		utils.RespondJSON(w, http.StatusOK, updated)
	}
}

type statusRequest struct {
	Status string `json:"status"`
}

// UpdateBloodRequestStatus changes only the status field.
func UpdateBloodRequestStatus(svc *services.BloodRequestService, env Env) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req statusRequest
		if err := decodeJSON(r, &req); err != nil {
			env.fail(w, r, err)
			return
		}
		updated, err := svc.UpdateStatus(r.Context(), caller(r), chi.URLParam(r, "id"), req.Status)
		if err != nil {
			env.fail(w, r, err)
			return
		}
		utils.RespondJSON(w, http.StatusOK, updated)
	}
}

func DeleteBloodRequest(svc *services.BloodRequestService, env Env) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := svc.Delete(r.Context(), caller(r), chi.URLParam(r, "id")); err != nil {
			env.fail(w, r, err)
			return
		}
		utils.RespondMessage(w, http.StatusOK, "Blood request deleted successfully")
	}
}

type respondRequest struct {
	Message string `json:"message"`
}

func RespondToBloodRequest(svc *services.BloodRequestService, env Env) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req respondRequest
		if err := decodeJSON(r, &req); err != nil {
			env.fail(w, r, err)
			return
		}
		updated, err := svc.Respond(r.Context(), caller(r), chi.URLParam(r, "id"), req.Message)
		if err != nil {
			env.fail(w, r, err)
			return
		}
		utils.RespondJSON(w, http.StatusCreated, map[string]interface{}{
			"message": "Response recorded",
			"request": updated,
		})
	}
}

func WithdrawBloodRequestResponse(svc *services.BloodRequestService, env Env) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		updated, err := svc.WithdrawResponse(r.Context(), caller(r), chi.URLParam(r, "id"))
		if err != nil {
			env.fail(w, r, err)
			return
		}
		utils.RespondJSON(w, http.StatusOK, map[string]interface{}{
			"message": "Response withdrawn",
			"request": updated,
		})
	}
}

func GetBloodRequestResponders(svc *services.BloodRequestService, env Env) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		res, err := svc.Responders(r.Context(), caller(r), chi.URLParam(r, "id"))
		if err != nil {
			env.fail(w, r, err)
			return
		}
		utils.RespondJSON(w, http.StatusOK, res)
	}
}
