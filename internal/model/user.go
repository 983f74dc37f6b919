package model

import "time"

type UserRole string

const (
	UserRoleCustomer UserRole = "customer"
	UserRoleStaff    UserRole = "staff"
	UserRoleAdmin    UserRole = "admin"
)

type User struct {
	Base
	Name            string    `db:"name" json:"name"`
	Email           string    `db:"email" json:"email"`
	Phone           string    `db:"phone" json:"phone,omitempty"`
	PasswordHash    string    `db:"password_hash" json:"-"`
	Role            UserRole  `db:"role" json:"role"`
	ReminderChannel string    `db:"reminder_channel" json:"reminder_channel"` // email, sms, whatsapp
	ReminderOffset  int       `db:"reminder_offset_min" json:"reminder_offset_min"`
	LastLoginAt     time.Time `db:"last_login_at" json:"last_login_at,omitempty"`
}

type RegisterRequest struct {
	Name     string `json:"name" validate:"required,max=120"`
	Email    string `json:"email" validate:"required,email"`
	Phone    string `json:"phone" validate:"max=20"`
	Password string `json:"password" validate:"required,min=8"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type LoginResponse struct {
	Token string `json:"token"`
	User  *User  `json:"user"`
}

type UpdateProfileRequest struct {
	Name            *string `json:"name"`
	Phone           *string `json:"phone"`
	ReminderChannel *string `json:"reminder_channel" validate:"omitempty,oneof=email sms whatsapp"`
	ReminderOffset  *int    `json:"reminder_offset_min" validate:"omitempty,gt=0"`
}
