package domain

import (
	"context"
	"time"
)

type WorkStatus string

const (
	WorkStatusExperienced WorkStatus = "experienced"
	WorkStatusFresher     WorkStatus = "fresher"
)

var WorkStatusChoices = []Choice{
	{Value: string(WorkStatusExperienced), Label: "Experienced"},
	{Value: string(WorkStatusFresher), Label: "Fresher"},
}

// User is identified by email. Staff users may list and export profiles.
type User struct {
	ID           int64      `json:"id"`
	Email        string     `json:"email"`
	Name         string     `json:"name"`
	MobileNo     string     `json:"mobile_no"`
	WorkStatus   WorkStatus `json:"work_status"`
	PasswordHash string     `json:"-"`
	IsActive     bool       `json:"is_active"`
	IsStaff      bool       `json:"is_staff"`
	DateJoined   time.Time  `json:"date_joined"`
}

type RegisterInput struct {
	Name       string `form:"name" json:"name" validate:"required,max=150,valid_name,no_emoji"`
	MobileNo   string `form:"mobile_no" json:"mobile_no" validate:"required,valid_mobile"`
	Email      string `form:"email" json:"email" validate:"required,email,max=254"`
	WorkStatus string `form:"work_status" json:"work_status" validate:"required,oneof=experienced fresher"`
	Password1  string `form:"password1" json:"password1" validate:"required,min=8,max=128"`
	Password2  string `form:"password2" json:"password2" validate:"required,eqfield=Password1"`
}

type LoginInput struct {
	Email    string `form:"email" json:"email" validate:"required,email"`
	Password string `form:"password" json:"password" validate:"required"`
}

// AuthResult is returned by a successful login.
type AuthResult struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	User      *User     `json:"user"`
}

type UserRepository interface {
	Create(ctx context.Context, user *User) error
	GetByID(ctx context.Context, id int64) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	SetStaff(ctx context.Context, id int64, staff bool) error
}

type AuthUsecase interface {
	Register(ctx context.Context, input RegisterInput) (*User, error)
	Login(ctx context.Context, input LoginInput) (*AuthResult, error)
	GetCurrentUser(ctx context.Context, id int64) (*User, error)
}
