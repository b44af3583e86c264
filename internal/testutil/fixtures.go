package testutil

import (
	"testing"

	"github.com/localnerve/medrecords/internal/models"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// Fixtures is a small population covering every role
type Fixtures struct {
	Admin            models.User
	ProfessionalUser models.User
	Professional     models.Professional
	OtherProfUser    models.User
	OtherProf        models.Professional
	CompanyOwner     models.User
	OtherOwner       models.User
	Company          models.Company
	OtherCompany     models.Company
	PatientUser      models.User
	Patient          models.Patient
	OtherPatient     models.Patient
	Inactive         models.User
}

func str(s string) *string { return &s }

// Seed inserts the fixtures. Patient belongs to Company and logs in as
// PatientUser. OtherPatient works for OtherCompany and has no login.
func Seed(t *testing.T, db *gorm.DB) *Fixtures {
	t.Helper()

	f := &Fixtures{
		Admin:            models.User{ID: "u-admin", Email: "admin@example.com", FullName: "Admin", Role: models.RoleAdmin, IsActive: true},
		ProfessionalUser: models.User{ID: "u-prof", Email: "prof@example.com", FullName: "Dr. Ruiz", Role: models.RoleProfessional, IsActive: true},
		OtherProfUser:    models.User{ID: "u-prof-2", Email: "prof2@example.com", FullName: "Dr. Vega", Role: models.RoleProfessional, IsActive: true},
		CompanyOwner:     models.User{ID: "u-company", Email: "owner@example.com", FullName: "Owner", Role: models.RoleCompany, IsActive: true},
		OtherOwner:       models.User{ID: "u-company-2", Email: "owner2@example.com", FullName: "Other Owner", Role: models.RoleCompany, IsActive: true},
		PatientUser:      models.User{ID: "u-patient", Email: "patient@example.com", FullName: "Ana Patient", Role: models.RolePatient, IsActive: true},
		Inactive:         models.User{ID: "u-inactive", Email: "gone@example.com", FullName: "Gone", Role: models.RoleProfessional, IsActive: true},
	}
	f.Professional = models.Professional{ID: "pro-1", UserID: f.ProfessionalUser.ID, FullName: "Dr. Ruiz", LicenseNumber: "MP-1234"}
	f.OtherProf = models.Professional{ID: "pro-2", UserID: f.OtherProfUser.ID, FullName: "Dr. Vega", LicenseNumber: "MP-5678"}
	f.Company = models.Company{ID: "c-1", Name: "Acme", OwnerUserID: f.CompanyOwner.ID}
	f.OtherCompany = models.Company{ID: "c-2", Name: "Globex", OwnerUserID: f.OtherOwner.ID}
	f.Patient = models.Patient{ID: "p-1", UserID: str(f.PatientUser.ID), CompanyID: str(f.Company.ID), FirstName: "Ana", LastName: "Patient", DocumentNumber: "30111222"}
	f.OtherPatient = models.Patient{ID: "p-2", CompanyID: str(f.OtherCompany.ID), FirstName: "Bruno", LastName: "Other", DocumentNumber: "30999888"}

	for _, u := range []*models.User{&f.Admin, &f.ProfessionalUser, &f.OtherProfUser, &f.CompanyOwner, &f.OtherOwner, &f.PatientUser, &f.Inactive} {
		require.NoError(t, db.Create(u).Error)
	}
	// the column default would turn a false zero value back into true
	require.NoError(t, db.Model(&f.Inactive).Update("is_active", false).Error)
	f.Inactive.IsActive = false

	for _, v := range []interface{}{&f.Professional, &f.OtherProf, &f.Company, &f.OtherCompany, &f.Patient, &f.OtherPatient} {
		require.NoError(t, db.Create(v).Error)
	}
	return f
}
