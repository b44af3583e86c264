package models

import (
	"time"

	"gorm.io/datatypes"
)

// MedicalRecord is the parent row of a medical record aggregate. Its sections
// live in the medical_record_* tables described by the schema registry.
type MedicalRecord struct {
	ID              string          `gorm:"type:varchar(36);primaryKey"`
	PatientID       string          `gorm:"type:varchar(36);not null;index"`
	ProfessionalID  *string         `gorm:"type:varchar(36)"`
	CreatedByUserID string          `gorm:"type:varchar(36);not null;index"`
	ExamDate        *datatypes.Date
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// TableName overrides the table name for MedicalRecord
func (MedicalRecord) TableName() string {
	return "medical_records"
}
