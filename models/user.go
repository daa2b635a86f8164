package models

import (
	"time"
)

// Role is the access level of a user
type Role string

const (
	// RoleAdmin manages projects, users and categories, and reviews expenditures
	RoleAdmin Role = "admin"
	// RoleManager submits expenditures for the one project assigned to them
	RoleManager Role = "manager"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleManager
}

// User is an account of the system
type User struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	Username  string    `json:"username" gorm:"uniqueIndex;size:50;not null"`
	Password  string    `json:"-" gorm:"size:255;not null"`
	Name      string    `json:"name" gorm:"size:100"`
	Email     string    `json:"email" gorm:"size:100"`
	Role      Role      `json:"role" gorm:"size:20;not null;default:manager;index"`
	ProjectID *uint     `json:"project_id" gorm:"index"` // only meaningful for managers
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName sets the table name
func (User) TableName() string {
	return "users"
}

// IsAdmin reports whether the user holds the admin role.
func (u *User) IsAdmin() bool {
	return u != nil && u.Role == RoleAdmin
}

// HasProject reports whether the user is assigned to a project.
func (u *User) HasProject() bool {
	return u != nil && u.ProjectID != nil && *u.ProjectID != 0
}
