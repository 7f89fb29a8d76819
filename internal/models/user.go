package models

import (
	"time"

	"gorm.io/gorm"
)

type RoleName string

const (
	RoleStudent RoleName = "student"
	RoleMentor  RoleName = "mentor"
	RoleAdmin   RoleName = "admin"
)

// Role is a named permission level. Disabled roles cannot log in.
type Role struct {
	ID      uint     `json:"id" gorm:"primaryKey"`
	Name    RoleName `json:"name" gorm:"uniqueIndex;not null;size:50" validate:"required,role_name"`
	Enabled bool     `json:"enabled" gorm:"default:true"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type User struct {
	ID           uint   `json:"id" gorm:"primaryKey"`
	Name         string `json:"name" gorm:"not null;size:100" validate:"required,min=1,max=100"`
	Email        string `json:"email" gorm:"uniqueIndex;not null;size:255" validate:"required,email"`
	PasswordHash string `json:"-" gorm:"not null;size:255"`
	RoleID       uint   `json:"role_id" gorm:"not null;index"`

	IsActive    bool       `json:"is_active" gorm:"default:true"`
	LastLoginAt *time.Time `json:"last_login_at"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`

	// Relations
	Role Role `json:"role" gorm:"foreignKey:RoleID"`
}

func (Role) TableName() string {
	return "roles"
}

func (User) TableName() string {
	return "users"
}
