package services

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/localnerve/medrecords/internal/access"
	"github.com/localnerve/medrecords/internal/database"
	"github.com/localnerve/medrecords/internal/models"
	"github.com/localnerve/medrecords/internal/types"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Patients manages employees examined by professionals
type Patients struct {
	DB *gorm.DB
}

// PatientInput carries the writable fields of a patient
type PatientInput struct {
	UserID         *string `json:"user_id"`
	CompanyID      *string `json:"company_id"`
	FirstName      string  `json:"first_name"`
	LastName       string  `json:"last_name"`
	DocumentNumber string  `json:"document_number"`
	DateOfBirth    string  `json:"date_of_birth"`
	Email          string  `json:"email"`
	Phone          string  `json:"phone"`
}

func (in PatientInput) apply(p *models.Patient) error {
	if in.FirstName == "" || in.LastName == "" {
		return types.Validation.New("first_name and last_name are required")
	}
	p.UserID = emptyToNil(in.UserID)
	p.CompanyID = emptyToNil(in.CompanyID)
	p.FirstName = in.FirstName
	p.LastName = in.LastName
	p.DocumentNumber = in.DocumentNumber
	p.Email = in.Email
	p.Phone = in.Phone

	p.DateOfBirth = nil
	if in.DateOfBirth != "" {
		t, err := time.Parse("2006-01-02", in.DateOfBirth)
		if err != nil {
			return types.Validation.New("date_of_birth must be YYYY-MM-DD")
		}
		d := datatypes.Date(t)
		p.DateOfBirth = &d
	}
	return nil
}

func sameID(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func emptyToNil(s *string) *string {
	if s == nil || *s == "" {
		return nil
	}
	return s
}

// List returns the patients visible to actor
func (s *Patients) List(ctx context.Context, actor access.Actor) ([]models.Patient, error) {
	q, err := scopedPatients(silent(s.DB).WithContext(ctx), actor)
	if err != nil {
		return nil, err
	}
	patients := []models.Patient{}
	if err := q.Order("last_name, first_name").Find(&patients).Error; err != nil {
		return nil, err
	}
	return patients, nil
}

// Get returns one patient
func (s *Patients) Get(ctx context.Context, actor access.Actor, id string) (*models.Patient, error) {
	patient, res, err := patientResource(ctx, s.DB, access.Patient, id)
	if err != nil {
		return nil, err
	}
	if err := access.Authorize(actor, access.Read, res); err != nil {
		return nil, err
	}
	return patient, nil
}

// Create adds a patient. The target company and login decide ownership.
func (s *Patients) Create(ctx context.Context, actor access.Actor, in PatientInput) (*models.Patient, error) {
	patient := &models.Patient{ID: uuid.NewString()}
	if err := in.apply(patient); err != nil {
		return nil, err
	}

	res, err := ownedBy(ctx, s.DB, patient, access.Resource{Kind: access.Patient})
	if err != nil {
		return nil, err
	}
	if err := access.Authorize(actor, access.Write, res); err != nil {
		return nil, err
	}

	if err := s.DB.WithContext(ctx).Create(patient).Error; err != nil {
		return nil, database.Classify(err)
	}
	return patient, nil
}

// Update rewrites the fields of a patient. Only admins, professionals and
// the owner of the target company may change its company.
func (s *Patients) Update(ctx context.Context, actor access.Actor, id string, in PatientInput) (*models.Patient, error) {
	patient, res, err := patientResource(ctx, s.DB, access.Patient, id)
	if err != nil {
		return nil, err
	}
	if err := access.Authorize(actor, access.Write, res); err != nil {
		return nil, err
	}

	before := patient.CompanyID
	if err := in.apply(patient); err != nil {
		return nil, err
	}
	moved, err := ownedBy(ctx, s.DB, patient, access.Resource{Kind: access.Patient, ID: id})
	if err != nil {
		return nil, err
	}
	if err := access.Authorize(actor, access.Write, moved); err != nil {
		return nil, err
	}
	if !sameID(before, patient.CompanyID) {
		// the patient link alone does not grant a company change
		target := access.Resource{Kind: access.Patient, ID: id, CompanyOwnerUserID: moved.CompanyOwnerUserID}
		if err := access.Authorize(actor, access.Write, target); err != nil {
			return nil, err
		}
	}

	if err := s.DB.WithContext(ctx).Save(patient).Error; err != nil {
		return nil, database.Classify(err)
	}
	return patient, nil
}

// Delete removes a patient without medical records or studies
func (s *Patients) Delete(ctx context.Context, actor access.Actor, id string) error {
	_, res, err := patientResource(ctx, s.DB, access.Patient, id)
	if err != nil {
		return err
	}
	if err := access.Authorize(actor, access.Write, res); err != nil {
		return err
	}

	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, model := range []interface{}{&models.MedicalRecord{}, &models.Study{}} {
			var n int64
			if err := tx.Model(model).Where("patient_id = ?", id).Count(&n).Error; err != nil {
				return err
			}
			if n > 0 {
				return types.Integrity.New("patient %s still has medical records or studies", id)
			}
		}
		return tx.Where("id = ?", id).Delete(&models.Patient{}).Error
	})
}
