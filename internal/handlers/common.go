package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"redweb-backend/internal/apperr"
	"redweb-backend/internal/auth"
	"redweb-backend/internal/middleware"
	"redweb-backend/pkg/utils"
)

// maxBodyBytes caps request bodies.
const maxBodyBytes = 1 << 20

// Env carries what every handler needs besides its service.
type Env struct {
	Logger *zap.Logger
	// Debug adds the underlying cause to 500 responses.
	Debug bool
}

// fail writes err as a JSON error response. Server errors are logged.
func (e Env) fail(w http.ResponseWriter, r *http.Request, err error) {
	if apperr.Status(err) >= http.StatusInternalServerError {
		e.Logger.Error("❌ request error",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.String("request_id", chimiddleware.GetReqID(r.Context())),
			zap.Error(err))
	}
	utils.RespondError(w, err, e.Debug)
}

// decodeJSON reads the request body into v. An empty body leaves v untouched.
func decodeJSON(r *http.Request, v any) error {
	err := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes)).Decode(v)
	if err == nil || errors.Is(err, io.EOF) {
		return nil
	}
	return apperr.Validation("Invalid request body")
}

// caller returns the identity the Auth middleware stored on the request.
func caller(r *http.Request) auth.Identity {
	id, _ := middleware.GetUserFromContext(r)
	return id
}
