package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"redweb-backend/internal/services"
	"redweb-backend/pkg/utils"
)

func GetNotifications(svc *services.NotificationService, env Env) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := svc.List(r.Context(), caller(r))
		if err != nil {
			env.fail(w, r, err)
			return
		}
		utils.RespondJSON(w, http.StatusOK, list)
	}
}

func GetNotification(svc *services.NotificationService, env Env) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		n, err := svc.Get(r.Context(), caller(r), chi.URLParam(r, "id"))
		if err != nil {
			env.fail(w, r, err)
			return
		}
		utils.RespondJSON(w, http.StatusOK, n)
	}
}

func CreateNotification(svc *services.NotificationService, env Env) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req services.NotificationInput
		if err := decodeJSON(r, &req); err != nil {
			env.fail(w, r, err)
			return
		}
		n, err := svc.Create(r.Context(), caller(r), req)
		if err != nil {
			env.fail(w, r, err)
			return
		}
		utils.RespondJSON(w, http.StatusCreated, n)
	}
}

func MarkNotificationRead(svc *services.NotificationService, env Env) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		n, err := svc.MarkRead(r.Context(), caller(r), chi.URLParam(r, "id"))
		if err != nil {
			env.fail(w, r, err)
			return
		}
		utils.RespondJSON(w, http.StatusOK, n)
	}
}

func MarkAllNotificationsRead(svc *services.NotificationService, env Env) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		n, err := svc.MarkAllRead(r.Context(), caller(r))
		if err != nil {
			env.fail(w, r, err)
			return
		}
		utils.RespondJSON(w, http.StatusOK, map[string]interface{}{
			"message": "All notifications marked as read",
			"updated": n,
		})
	}
}

func DeleteNotification(svc *services.NotificationService, env Env) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := svc.Delete(r.Context(), caller(r), chi.URLParam(r, "id")); err != nil {
			env.fail(w, r, err)
			return
		}
		utils.RespondMessage(w, http.StatusOK, "Notification deleted successfully")
	}
}
