package models

import (
	"time"

	"gorm.io/datatypes"
)

// Study is a diagnostic study of a patient with its uploaded documents
type Study struct {
	ID              string          `gorm:"type:varchar(36);primaryKey" json:"id"`
	PatientID       string          `gorm:"type:varchar(36);not null;index" json:"patient_id"`
	ProfessionalID  *string         `gorm:"type:varchar(36)" json:"professional_id"`
	CreatedByUserID string          `gorm:"type:varchar(36);not null" json:"created_by_user_id"`
	StudyType       string          `gorm:"size:128;not null" json:"study_type"`
	Title           string          `gorm:"size:255" json:"title"`
	Description     string          `gorm:"type:text" json:"description"`
	Status          string          `gorm:"size:32" json:"status"`
	StudyDate       *datatypes.Date `json:"study_date"`
	Files           []StudyFile     `gorm:"foreignKey:StudyID" json:"files"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// StudyFile is one stored document of a study
type StudyFile struct {
	ID               string    `gorm:"type:varchar(36);primaryKey" json:"id"`
	StudyID          string    `gorm:"type:varchar(36);not null;index" json:"study_id"`
	URL              string    `gorm:"size:512;not null" json:"url"`
	OriginalFilename string    `gorm:"size:255" json:"original_filename"`
	MimeType         string    `gorm:"size:128" json:"mime_type"`
	SizeBytes        int64     `json:"size_bytes"`
	UploadedAt       time.Time `json:"uploaded_at"`
}

// TableName overrides the table name for Study
func (Study) TableName() string {
	return "studies"
}

// TableName overrides the table name for StudyFile
func (StudyFile) TableName() string {
	return "study_files"
}
