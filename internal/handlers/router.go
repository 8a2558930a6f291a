package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"redweb-backend/internal/auth"
	"redweb-backend/internal/middleware"
	"redweb-backend/internal/models"
	"redweb-backend/internal/services"
	"redweb-backend/pkg/utils"
)

type RouterOptions struct {
	Logger         *zap.Logger
	Debug          bool
	AllowedOrigins []string
}

// NewRouter wires every HTTP route onto the services.
func NewRouter(svc *services.Services, tokens *auth.Manager, opts RouterOptions) http.Handler {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	origins := opts.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	env := Env{Logger: logger.Named("http"), Debug: opts.Debug}

	r := chi.NewRouter()

	// Middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestLogger(env.Logger))
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.Metrics)

	// CORS
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		utils.RespondMessage(w, http.StatusNotFound, "Route not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		utils.RespondMessage(w, http.StatusMethodNotAllowed, "Method not allowed")
	})

	// Liveness and metrics (no auth)
	r.Get("/health", Health())
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Get("/", APIInfo())
		r.Get("/health", Health())

		// Authentication routes (no auth required)
		r.Post("/auth/signup", SignUp(svc.Auth, env))
		r.Post("/auth/signin", SignIn(svc.Auth, env))

		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(tokens, env.Logger))

			r.Get("/auth/profile", GetProfile(svc.Auth, env))
			r.Put("/auth/profile", UpdateProfile(svc.Auth, env))

			r.With(middleware.RequireRole(models.RoleAdmin)).Get("/users", ListUsers(svc.Auth, env))

			// Blood requests
			r.Route("/blood-requests", func(r chi.Router) {
				r.Get("/", GetBloodRequests(svc.BloodRequests, env))
				r.Post("/", CreateBloodRequest(svc.BloodRequests, env))
				r.Get("/my", GetMyBloodRequests(svc.BloodRequests, env))
				r.Get("/statistics", GetBloodRequestStatistics(svc.BloodRequests, env))
				r.Get("/{id}", GetBloodRequest(svc.BloodRequests, env))
				r.Put("/{id}", UpdateBloodRequest(svc.BloodRequests, env))
				r.Patch("/{id}/status", UpdateBloodRequestStatus(svc.BloodRequests, env))
				r.Delete("/{id}", DeleteBloodRequest(svc.BloodRequests, env))
				r.Post("/{id}/respond", RespondToBloodRequest(svc.BloodRequests, env))
				r.Delete("/{id}/respond", WithdrawBloodRequestResponse(svc.BloodRequests, env))
				r.Get("/{id}/responders", GetBloodRequestResponders(svc.BloodRequests, env))
			})

			// Donation drives
			r.Route("/donation-drives", func(r chi.Router) {
				r.Get("/", GetDrives(svc.Drives, env))
				r.Post("/", CreateDrive(svc.Drives, env))
				r.Get("/my", GetMyDrives(svc.Drives, env))
				r.Get("/{id}", GetDrive(svc.Drives, env))
				r.Put("/{id}", UpdateDrive(svc.Drives, env))
				r.Delete("/{id}", DeleteDrive(svc.Drives, env))
				r.Post("/{id}/register", RegisterForDrive(svc.Drives, env))
				r.Delete("/{id}/register", UnregisterFromDrive(svc.Drives, env))
				r.Get("/{id}/registrations", GetDriveRegistrations(svc.Drives, env))
			})

			// Notifications
			r.Route("/notifications", func(r chi.Router) {
				r.Get("/", GetNotifications(svc.Notifications, env))
				r.Post("/", CreateNotification(svc.Notifications, env))
				r.Put("/mark-all-read", MarkAllNotificationsRead(svc.Notifications, env))
				r.Get("/{id}", GetNotification(svc.Notifications, env))
				r.Put("/{id}/read", MarkNotificationRead(svc.Notifications, env))
				r.Delete("/{id}", DeleteNotification(svc.Notifications, env))
			})

			// Donation history
			r.Get("/donations/history", GetDonationHistory(svc.Donations, env))
			r.Post("/donations/history", AddDonation(svc.Donations, env))
			r.Get("/donations/statistics", GetDonationStatistics(svc.Donations, env))

			// Messaging
			r.Get("/messages/conversations", GetConversations(svc.Messages, env))
			r.Get("/messages/conversation/{otherUserId}", GetConversation(svc.Messages, env))
			r.Post("/messages/send", SendMessage(svc.Messages, env))
			r.Put("/messages/mark-read/{otherUserId}", MarkConversationRead(svc.Messages, env))
			r.Get("/messages/search-users", SearchUsers(svc.Messages, env))
		})
	})

	return r
}
