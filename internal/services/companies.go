package services

import (
	"context"

	"github.com/google/uuid"
	"github.com/localnerve/medrecords/internal/access"
	"github.com/localnerve/medrecords/internal/database"
	"github.com/localnerve/medrecords/internal/models"
	"github.com/localnerve/medrecords/internal/types"
	"gorm.io/gorm"
)

// Companies manages employers and their employees
type Companies struct {
	DB       *gorm.DB
	Patients *Patients
}

// CompanyInput carries the writable fields of a company
type CompanyInput struct {
	Name        string `json:"name"`
	TaxID       string `json:"tax_id"`
	Address     string `json:"address"`
	OwnerUserID string `json:"owner_user_id"`
}

func companyResource(c *models.Company) access.Resource {
	return access.Resource{Kind: access.Company, ID: c.ID, CompanyOwnerUserID: c.OwnerUserID}
}

// List returns the companies visible to actor
func (s *Companies) List(ctx context.Context, actor access.Actor) ([]models.Company, error) {
	q := silent(s.DB).WithContext(ctx)
	switch actor.Role {
	case models.RoleAdmin, models.RoleProfessional:
	case models.RoleCompany:
		q = q.Where("owner_user_id = ?", actor.ID)
	default:
		return nil, types.Forbidden.New("%s may not list companies", actor.Role)
	}

	companies := []models.Company{}
	if err := q.Order("name").Find(&companies).Error; err != nil {
		return nil, err
	}
	return companies, nil
}

func (s *Companies) load(ctx context.Context, actor access.Actor, op access.Op, id string) (*models.Company, error) {
	var company models.Company
	if err := first(ctx, s.DB, &company, "company", id); err != nil {
		return nil, err
	}
	if err := access.Authorize(actor, op, companyResource(&company)); err != nil {
		return nil, err
	}
	return &company, nil
}

// Get returns one company
func (s *Companies) Get(ctx context.Context, actor access.Actor, id string) (*models.Company, error) {
	return s.load(ctx, actor, access.Read, id)
}

// Create adds a company. Company owners create companies they own.
func (s *Companies) Create(ctx context.Context, actor access.Actor, in CompanyInput) (*models.Company, error) {
	if in.Name == "" {
		return nil, types.Validation.New("name is required")
	}
	if in.OwnerUserID == "" && actor.Role == models.RoleCompany {
		in.OwnerUserID = actor.ID
	}
	if in.OwnerUserID == "" {
		return nil, types.Validation.New("owner_user_id is required")
	}

	company := &models.Company{ID: uuid.NewString(), Name: in.Name, TaxID: in.TaxID, Address: in.Address, OwnerUserID: in.OwnerUserID}
	if err := access.Authorize(actor, access.Write, companyResource(company)); err != nil {
		return nil, err
	}
	if err := s.DB.WithContext(ctx).Create(company).Error; err != nil {
		return nil, database.Classify(err)
	}
	return company, nil
}

// Update rewrites the fields of a company. Only admins transfer ownership.
func (s *Companies) Update(ctx context.Context, actor access.Actor, id string, in CompanyInput) (*models.Company, error) {
	company, err := s.load(ctx, actor, access.Write, id)
	if err != nil {
		return nil, err
	}
	if in.Name == "" {
		return nil, types.Validation.New("name is required")
	}
	if in.OwnerUserID != "" && in.OwnerUserID != company.OwnerUserID {
		if actor.Role != models.RoleAdmin {
			return nil, types.Forbidden.New("only admins transfer companies")
		}
		company.OwnerUserID = in.OwnerUserID
	}
	company.Name = in.Name
	company.TaxID = in.TaxID
	company.Address = in.Address

	if err := s.DB.WithContext(ctx).Save(company).Error; err != nil {
		return nil, database.Classify(err)
	}
	return company, nil
}

// Delete removes a company without employees
func (s *Companies) Delete(ctx context.Context, actor access.Actor, id string) error {
	if _, err := s.load(ctx, actor, access.Write, id); err != nil {
		return err
	}
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var employees int64
		if err := tx.Model(&models.Patient{}).Where("company_id = ?", id).Count(&employees).Error; err != nil {
			return err
		}
		if employees > 0 {
			return types.Integrity.New("company %s still has %d employees", id, employees)
		}
		return tx.Where("id = ?", id).Delete(&models.Company{}).Error
	})
}

// Employees lists the patients employed by a company
func (s *Companies) Employees(ctx context.Context, actor access.Actor, id string) ([]models.Patient, error) {
	if _, err := s.load(ctx, actor, access.Read, id); err != nil {
		return nil, err
	}
	q, err := scopedPatients(silent(s.DB).WithContext(ctx), actor)
	if err != nil {
		return nil, err
	}
	patients := []models.Patient{}
	if err := q.Where("company_id = ?", id).Order("last_name, first_name").Find(&patients).Error; err != nil {
		return nil, err
	}
	return patients, nil
}

// CreateEmployee adds a patient employed by the company
func (s *Companies) CreateEmployee(ctx context.Context, actor access.Actor, id string, in PatientInput) (*models.Patient, error) {
	if _, err := s.load(ctx, actor, access.Read, id); err != nil {
		return nil, err
	}
	in.CompanyID = &id
	return s.Patients.Create(ctx, actor, in)
}
