package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"redweb-backend/internal/services"
	"redweb-backend/pkg/utils"
)

func GetConversations(svc *services.MessageService, env Env) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := svc.Conversations(r.Context(), caller(r))
		if err != nil {
			env.fail(w, r, err)
			return
		}
		utils.RespondJSON(w, http.StatusOK, list)
	}
}

func GetConversation(svc *services.MessageService, env Env) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conv, err := svc.Conversation(r.Context(), caller(r), chi.URLParam(r, "otherUserId"))
		if err != nil {
			env.fail(w, r, err)
			return
		}
		utils.RespondJSON(w, http.StatusOK, conv)
	}
}

func SendMessage(svc *services.MessageService, env Env) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req services.SendInput
		if err := decodeJSON(r, &req); err != nil {
			env.fail(w, r, err)
			return
		}
		msg, err := svc.Send(r.Context(), caller(r), req)
		if err != nil {
			env.fail(w, r, err)
			return
		}
		utils.RespondJSON(w, http.StatusCreated, msg)
	}
}

func MarkConversationRead(svc *services.MessageService, env Env) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		n, err := svc.MarkRead(r.Context(), caller(r), chi.URLParam(r, "otherUserId"))
		if err != nil {
			env.fail(w, r, err)
			return
		}
		utils.RespondJSON(w, http.StatusOK, map[string]interface{}{
			"success": true,
			"updated": n,
		})
	}
}

func SearchUsers(svc *services.MessageService, env Env) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		users, err := svc.SearchUsers(r.Context(), caller(r), r.URL.Query().Get("query"))
		if err != nil {
			env.fail(w, r, err)
			return
		}
		utils.RespondJSON(w, http.StatusOK, users)
	}
}
