package domain

import (
	"time"

	"gorm.io/gorm"
)

// User is the GORM model for the users table.
type User struct {
	ID           string         `json:"id" gorm:"type:varchar(36);primaryKey"`
	Email        string         `json:"email" gorm:"type:varchar(255);uniqueIndex;not null"`
	PasswordHash string         `json:"-" gorm:"type:varchar(255);not null"`
	Role         string         `json:"role" gorm:"type:varchar(20);index;not null"`
	Name         string         `json:"name" gorm:"type:varchar(100)"`
	Phone        string         `json:"phone" gorm:"type:varchar(30)"`
	CreatedAt    time.Time      `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt    time.Time      `json:"updated_at" gorm:"autoUpdateTime"`
	DeletedAt    gorm.DeletedAt `json:"-" gorm:"index"`
}

// TableName specifies the table name for User.
func (User) TableName() string {
	return "users"
}

// UserRef is the embedded sender/actor snapshot returned alongside
// messages and assignments.
type UserRef struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Ref returns the embeddable snapshot of the user.
func (u *User) Ref() UserRef {
	return UserRef{ID: u.ID, Name: u.Name, Email: u.Email}
}

type RegisterRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
	Role     string `json:"role" binding:"required"`
	Name     string `json:"name"`
	Phone    string `json:"phone"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// TokenResponse is returned from register and login.
type TokenResponse struct {
	Token     string `json:"token"`
	ExpiresAt int64  `json:"expires_at"`
}

type UpdateProfileRequest struct {
	Name            *string `json:"name"`
	Phone           *string `json:"phone"`
	Email           *string `json:"email"`
	CurrentPassword string  `json:"currentPassword"`
	NewPassword     string  `json:"newPassword"`
}

// ImportRecord is one row of a bulk user import file.
type ImportRecord struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
	Name     string `json:"name"`
	Phone    string `json:"phone"`
}

// ImportResult summarises a bulk import run.
type ImportResult struct {
	Successful []ImportOutcome `json:"successful"`
	Failed     []ImportOutcome `json:"failed"`
}

// ImportOutcome records the fate of a single imported row.
type ImportOutcome struct {
	Email string `json:"email"`
	Role  string `json:"role,omitempty"`
	ID    string `json:"id,omitempty"`
	Error string `json:"error,omitempty"`
}
