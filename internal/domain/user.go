package domain

import "time"

// Marketplace roles. Institutes and recruiters can be followed and can post
// jobs; students and staff are the follower side.
const (
	RoleStudent   = "student"
	RoleStaff     = "staff"
	RoleRecruiter = "recruiter"
	RoleInstitute = "institute"
	RoleAdmin     = "admin"
)

type User struct {
	UserID             string     `json:"id" dynamodbav:"user_id"`
	Username           string     `json:"username" dynamodbav:"username"`
	Email              string     `json:"email" dynamodbav:"email"`
	Phone              *string    `json:"phone" dynamodbav:"phone"`
	PasswordHash       string     `json:"-" dynamodbav:"password_hash"`
	Role               string     `json:"role" dynamodbav:"role"`
	FirstName          string     `json:"first_name" dynamodbav:"first_name"`
	LastName           string     `json:"last_name" dynamodbav:"last_name"`
	// RegistrationNumber is only set for institute accounts.
	RegistrationNumber string     `json:"registration_number,omitempty" dynamodbav:"registration_number"`
	EmailConfirmed     bool       `json:"email_confirmed" dynamodbav:"email_confirmed"`
	PhoneConfirmed     bool       `json:"phone_confirmed" dynamodbav:"phone_confirmed"`
	Enable             bool       `json:"enable" dynamodbav:"enable"`
	DeletedAt          *time.Time `json:"deleted_at,omitempty" dynamodbav:"deleted_at"`
	CreatedAt          time.Time  `json:"created" dynamodbav:"created_at"`
	UpdatedAt          time.Time  `json:"updated" dynamodbav:"updated_at"`
}

type CreateUserRequest struct {
	Username           string  `json:"username" validate:"required"`
	Password           string  `json:"password" validate:"required,min=8,max=72"`
	Email              string  `json:"email" validate:"required,email"`
	Phone              *string `json:"phone"`
	FirstName          string  `json:"first_name" validate:"required"`
	LastName           string  `json:"last_name" validate:"required"`
	Role               string  `json:"role" validate:"omitempty,oneof=student staff recruiter institute"`
	RegistrationNumber string  `json:"registration_number"`
}

type UpdateUserRequest struct {
	Username  *string `json:"username"`
	Email     *string `json:"email" validate:"omitempty,email"`
	Phone     *string `json:"phone"`
	FirstName *string `json:"first_name"`
	LastName  *string `json:"last_name"`
	Role      *string `json:"role"`
	Enable    *bool   `json:"enable"`
}
