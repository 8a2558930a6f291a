package handlers

import (
	"net/http"

	"redweb-backend/internal/services"
	"redweb-backend/pkg/utils"
)

func SignUp(svc *services.AuthService, env Env) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req services.SignUpInput
		if err := decodeJSON(r, &req); err != nil {
			env.fail(w, r, err)
			return
		}
		res, err := svc.SignUp(r.Context(), req)
		if err != nil {
			env.fail(w, r, err)
			return
		}
		utils.RespondJSON(w, http.StatusCreated, map[string]interface{}{
			"message": "User created successfully",
			"token":   res.Token,
			"user":    res.User,
		})
	}
}

func SignIn(svc *services.AuthService, env Env) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req services.SignInInput
		if err := decodeJSON(r, &req); err != nil {
			env.fail(w, r, err)
			return
		}
		res, err := svc.SignIn(r.Context(), req)
		if err != nil {
			env.fail(w, r, err)
			return
		}
		utils.RespondJSON(w, http.StatusOK, map[string]interface{}{
			"message": "Login successful",
			"token":   res.Token,
			"user":    res.User,
		})
	}
}

func GetProfile(svc *services.AuthService, env Env) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, err := svc.Profile(r.Context(), caller(r))
		if err != nil {
			env.fail(w, r, err)
			return
		}
		utils.RespondJSON(w, http.StatusOK, user)
	}
}

func UpdateProfile(svc *services.AuthService, env Env) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req services.ProfileInput
		if err := decodeJSON(r, &req); err != nil {
			env.fail(w, r, err)
			return
		}
		user, err := svc.UpdateProfile(r.Context(), caller(r), req)
		if err != nil {
			env.fail(w, r, err)
			return
		}
		utils.RespondJSON(w, http.StatusOK, map[string]interface{}{
			"message": "Profile updated successfully",
			"user":    user,
		})
	}
}

// ListUsers is the admin-only account listing.
func ListUsers(svc *services.AuthService, env Env) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		users, err := svc.ListUsers(r.Context(), caller(r))
		if err != nil {
			env.fail(w, r, err)
			return
		}
		utils.RespondJSON(w, http.StatusOK, map[string]interface{}{
			"total": len(users),
			"users": users,
		})
	}
}
