package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"golang.org/x/time/rate"

	"github.com/hirewire-api/internal/application/auth"
	"github.com/hirewire-api/internal/application/follow"
	"github.com/hirewire-api/internal/application/job"
	"github.com/hirewire-api/internal/application/notification"
	"github.com/hirewire-api/internal/application/regnumber"
	"github.com/hirewire-api/internal/application/session"
	"github.com/hirewire-api/internal/application/user"
	"github.com/hirewire-api/internal/config"
	"github.com/hirewire-api/internal/domain"
	"github.com/hirewire-api/internal/transport/http/handler"
	appmiddleware "github.com/hirewire-api/internal/transport/http/middleware"
)

// NewRouter builds and returns the application router.
func NewRouter(cfg *config.Config, deps *Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	var authMw func(http.Handler) http.Handler
	if deps.JWTProvider != nil {
		authMw = appmiddleware.Auth(deps.JWTProvider)
	} else {
		authMw = func(next http.Handler) http.Handler { return next }
	}

	// 5 requests/second, burst of 10 — applied to sensitive public endpoints.
	sensitiveRL := appmiddleware.NewRateLimiter(rate.Limit(5), 10)

	regNumberSvc := regnumber.NewService(deps.UserRepo, deps.OTP, cfg.RegNumberCacheTTL)
	userSvc := user.NewService(user.ServiceDeps{
		UserRepo:           deps.UserRepo,
		RegNumberValidator: regNumberSvc,
		Mailer:             deps.Mailer,
	})
	sessionSvc := session.NewService(session.ServiceDeps{
		SessionRepo:     deps.SessionRepo,
		UserRepo:        deps.UserRepo,
		JWTProvider:     deps.JWTProvider,
		RefreshTokenDur: cfg.RefreshTokenExpiry,
	})
	authSvc := auth.NewService(auth.ServiceDeps{
		OTP:       deps.OTP,
		UserRepo:  deps.UserRepo,
		Mailer:    deps.Mailer,
		SMSSender: deps.SMSSender,
	})
	notifSvc := notification.NewService(deps.NotificationRepo, deps.Hub)
	followSvc := follow.NewService(follow.ServiceDeps{
		FollowRepo: deps.FollowRepo,
		UserRepo:   deps.UserRepo,
	})
	jobSvc := job.NewService(job.ServiceDeps{
		JobRepo:    deps.JobRepo,
		FollowRepo: deps.FollowRepo,
		UserRepo:   deps.UserRepo,
		Notifier:   notifSvc,
	})

	healthH := handler.NewHealthHandler()
	userH := handler.NewUserHandler(userSvc)
	sessionH := handler.NewSessionHandler(sessionSvc)
	verificationH := handler.NewVerificationHandler(authSvc)
	regNumberH := handler.NewRegNumberHandler(regNumberSvc)
	notifH := handler.NewNotificationHandler(notifSvc, deps.Hub)
	jobH := handler.NewJobHandler(jobSvc)
	followH := handler.NewFollowHandler(followSvc)

	r.Route("/v1", func(r chi.Router) {
		// ── Public routes (no auth) ──────────────────────────────────────────
		r.Get("/health-check/{action}", healthH.Ping)
		r.With(sensitiveRL.Limit).Post("/sessions/login", sessionH.Login)
		r.Post("/sessions/refresh", sessionH.Refresh)
		r.With(sensitiveRL.Limit).Post("/users", userH.Register)
		r.With(sensitiveRL.Limit).Post("/registration-numbers/validate", regNumberH.Validate)
		r.With(sensitiveRL.Limit).Post("/password-recovery/request", verificationH.RequestPasswordRecovery)
		r.With(sensitiveRL.Limit).Post("/password-recovery/reset", verificationH.ResetPassword)

		// ── Authenticated routes ─────────────────────────────────────────────
		r.Group(func(r chi.Router) {
			r.Use(authMw)

			r.Get("/sessions", sessionH.GetCurrent)
			r.Post("/sessions/logout", sessionH.Logout)

			r.Get("/users/{id}", userH.Get)
			r.Put("/users/{id}", userH.Update)
			r.Post("/users/change-password", userH.ChangePassword)

			r.With(sensitiveRL.Limit).Post("/confirm-email/request", verificationH.RequestEmailCode)
			r.Post("/confirm-email/verify", verificationH.ConfirmEmail)
			r.With(sensitiveRL.Limit).Post("/confirm-phone/request", verificationH.RequestPhoneCode)
			r.Post("/confirm-phone/verify", verificationH.ConfirmPhone)
			r.Get("/otp/status", verificationH.OTPStatus)

			r.Get("/notifications", notifH.ListUnread)
			r.Get("/notifications/unread-count", notifH.UnreadCount)
			r.Get("/notifications/stream", notifH.Stream)
			r.Put("/notifications/read-all", notifH.MarkAllRead)
			r.Put("/notifications/{id}", notifH.MarkRead)
			r.Delete("/notifications/{id}", notifH.Delete)

			r.Get("/jobs", jobH.List)
			r.Get("/jobs/{id}", jobH.Get)
			r.Post("/users/{id}/follow", followH.Follow)
			r.Delete("/users/{id}/follow", followH.Unfollow)

			// Posting roles only
			r.Group(func(r chi.Router) {
				r.Use(appmiddleware.RequireRole(domain.RoleRecruiter, domain.RoleInstitute, domain.RoleAdmin))

				r.Post("/jobs", jobH.Create)
				r.Delete("/jobs/{id}", jobH.Delete)
				r.Get("/users/{id}/followers", followH.ListFollowers)
			})

			// Admin-only routes
			r.Group(func(r chi.Router) {
				r.Use(appmiddleware.RequireRole(domain.RoleAdmin))

				r.Get("/users", userH.List)
				r.Delete("/users/{id}", userH.Delete)
			})
		})
	})

	return r
}
