package models

import (
	"time"
)

// Roles of an authenticated actor
const (
	RoleAdmin        = "admin"
	RoleProfessional = "professional"
	RoleCompany      = "company"
	RolePatient      = "patient"
)

// User is the local account record of an authorizer identity. The role and
// active flag decide what the user may do here.
type User struct {
	ID        string    `gorm:"type:varchar(36);primaryKey" json:"id"`
	Email     string    `gorm:"size:255;not null;uniqueIndex" json:"email"`
	FullName  string    `gorm:"size:255" json:"full_name"`
	Role      string    `gorm:"size:32;not null;index" json:"role"`
	IsActive  bool      `gorm:"not null;default:true" json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Professional is the clinical profile of a user with the professional role
type Professional struct {
	ID            string    `gorm:"type:varchar(36);primaryKey" json:"id"`
	UserID        string    `gorm:"type:varchar(36);not null;uniqueIndex" json:"user_id"`
	FullName      string    `gorm:"size:255" json:"full_name"`
	LicenseNumber string    `gorm:"size:64" json:"license_number"`
	Specialty     string    `gorm:"size:128" json:"specialty"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// TableName overrides the table name for User
func (User) TableName() string {
	return "users"
}

// TableName overrides the table name for Professional
func (Professional) TableName() string {
	return "professionals"
}
