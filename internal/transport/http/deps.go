package http

import (
	"github.com/hirewire-api/internal/application/otp"
	"github.com/hirewire-api/internal/infrastructure/dynamo"
	jwtinfra "github.com/hirewire-api/internal/infrastructure/jwt"
	"github.com/hirewire-api/internal/infrastructure/smtp"
	"github.com/hirewire-api/internal/infrastructure/sns"
	"github.com/hirewire-api/internal/realtime"
)

// Deps holds all infrastructure dependencies for the router.
type Deps struct {
	UserRepo         *dynamo.UserRepo
	SessionRepo      *dynamo.SessionRepo
	JobRepo          *dynamo.JobRepo
	FollowRepo       *dynamo.FollowRepo
	NotificationRepo *dynamo.NotificationRepo
	Mailer           smtp.Mailer
	SMSSender        sns.SMSSender
	JWTProvider      *jwtinfra.Provider
	Hub              *realtime.Hub
	// OTP is constructed in main so its sweeper lifecycle is tied to the
	// process, not the router.
	OTP otp.Service
}
