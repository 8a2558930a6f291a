package handlers

import (
	"net/http"

	"redweb-backend/internal/services"
	"redweb-backend/pkg/utils"
)

func GetDonationHistory(svc *services.DonationService, env Env) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		history, err := svc.History(r.Context(), caller(r))
		if err != nil {
			env.fail(w, r, err)
			return
		}
		utils.RespondJSON(w, http.StatusOK, history)
	}
}

func AddDonation(svc *services.DonationService, env Env) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req services.DonationInput
		if err := decodeJSON(r, &req); err != nil {
			env.fail(w, r, err)
			return
		}
		rec, err := svc.Add(r.Context(), caller(r), req)
		if err != nil {
			env.fail(w, r, err)
			return
		}
		utils.RespondJSON(w, http.StatusCreated, rec)
	}
}

func GetDonationStatistics(svc *services.DonationService, env Env) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		stats, err := svc.Statistics(r.Context(), caller(r))
		if err != nil {
			env.fail(w, r, err)
			return
		}
		utils.RespondJSON(w, http.StatusOK, stats)
	}
}
