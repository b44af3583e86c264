package services

import (
	"context"
	"errors"

	"github.com/localnerve/medrecords/internal/access"
	"github.com/localnerve/medrecords/internal/models"
	"github.com/localnerve/medrecords/internal/types"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func silent(db *gorm.DB) *gorm.DB {
	return db.Session(&gorm.Session{Logger: db.Logger.LogMode(logger.Silent)})
}

// first loads one row by id, NotFound when absent
func first(ctx context.Context, db *gorm.DB, dest interface{}, what, id string) error {
	err := silent(db).WithContext(ctx).Where("id = ?", id).First(dest).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return types.NotFound.New("%s %s", what, id)
	}
	return err
}

// companyOwner returns the owner of a company, empty when the company id is nil
func companyOwner(ctx context.Context, db *gorm.DB, companyID *string) (string, error) {
	if companyID == nil || *companyID == "" {
		return "", nil
	}
	var company models.Company
	if err := first(ctx, db, &company, "company", *companyID); err != nil {
		return "", err
	}
	return company.OwnerUserID, nil
}

// ownedBy fills the ownership chain of a patient into res
func ownedBy(ctx context.Context, db *gorm.DB, patient *models.Patient, res access.Resource) (access.Resource, error) {
	owner, err := companyOwner(ctx, db, patient.CompanyID)
	if err != nil {
		return res, err
	}
	res.CompanyOwnerUserID = owner
	if patient.UserID != nil {
		res.PatientUserID = *patient.UserID
	}
	return res, nil
}

// patientResource loads a patient and its ownership chain
func patientResource(ctx context.Context, db *gorm.DB, kind access.Kind, patientID string) (*models.Patient, access.Resource, error) {
	var patient models.Patient
	if err := first(ctx, db, &patient, "patient", patientID); err != nil {
		return nil, access.Resource{}, err
	}
	res := access.Resource{Kind: kind}
	if kind == access.Patient {
		res.ID = patient.ID
	}
	res, err := ownedBy(ctx, db, &patient, res)
	return &patient, res, err
}

// recordResource loads the parent row of a medical record with its chain
func recordResource(ctx context.Context, db *gorm.DB, id string) (access.Resource, error) {
	var rec models.MedicalRecord
	if err := first(ctx, db, &rec, "medical record", id); err != nil {
		return access.Resource{}, err
	}
	_, res, err := patientResource(ctx, db, access.MedicalRecord, rec.PatientID)
	if err != nil {
		return res, err
	}
	res.ID = rec.ID
	res.CreatedByUserID = rec.CreatedByUserID
	return res, nil
}

// scopedPatients restricts a patient query to what the actor may read
func scopedPatients(db *gorm.DB, actor access.Actor) (*gorm.DB, error) {
	switch actor.Role {
	case models.RoleAdmin, models.RoleProfessional:
		return db, nil
	case models.RoleCompany:
		owned := db.Session(&gorm.Session{NewDB: true}).Model(&models.Company{}).Select("id").Where("owner_user_id = ?", actor.ID)
		return db.Where("company_id IN (?)", owned), nil
	case models.RolePatient:
		return db.Where("user_id = ?", actor.ID), nil
	}
	return nil, types.Forbidden.New("%s may not list patients", actor.Role)
}
