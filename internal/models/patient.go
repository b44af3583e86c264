package models

import (
	"time"

	"gorm.io/datatypes"
)

// Company employs patients and is owned by a user with the company role
type Company struct {
	ID          string    `gorm:"type:varchar(36);primaryKey" json:"id"`
	Name        string    `gorm:"size:255;not null" json:"name"`
	TaxID       string    `gorm:"size:64" json:"tax_id"`
	Address     string    `gorm:"size:255" json:"address"`
	OwnerUserID string    `gorm:"type:varchar(36);not null;index" json:"owner_user_id"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Patient is an employee examined by professionals. UserID links the patient
// to their own login, CompanyID to their employer.
type Patient struct {
	ID             string          `gorm:"type:varchar(36);primaryKey" json:"id"`
	UserID         *string         `gorm:"type:varchar(36);index" json:"user_id"`
	CompanyID      *string         `gorm:"type:varchar(36);index" json:"company_id"`
	FirstName      string          `gorm:"size:128;not null" json:"first_name"`
	LastName       string          `gorm:"size:128;not null" json:"last_name"`
	DocumentNumber string          `gorm:"size:32;index" json:"document_number"`
	DateOfBirth    *datatypes.Date `json:"date_of_birth"`
	Email          string          `gorm:"size:255" json:"email"`
	Phone          string          `gorm:"size:64" json:"phone"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

// TableName overrides the table name for Company
func (Company) TableName() string {
	return "companies"
}

// TableName overrides the table name for Patient
func (Patient) TableName() string {
	return "patients"
}
