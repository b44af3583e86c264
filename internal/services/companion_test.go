package services

import (
	"testing"

	"github.com/localnerve/medrecords/internal/models"
	"github.com/localnerve/medrecords/internal/types"
	"github.com/stretchr/testify/require"
)

func ids[T any](rows []T, id func(T) string) []string {
	out := make([]string, len(rows))
	for i, r := range rows {
		out[i] = id(r)
	}
	return out
}

func patientID(p models.Patient) string { return p.ID }

func TestPatientListIsScoped(t *testing.T) {
	e := newEnv(t)

	tests := []struct {
		user models.User
		want []string
	}{
		{e.fx.Admin, []string{e.fx.Patient.ID, e.fx.OtherPatient.ID}},
		{e.fx.ProfessionalUser, []string{e.fx.Patient.ID, e.fx.OtherPatient.ID}},
		{e.fx.CompanyOwner, []string{e.fx.Patient.ID}},
		{e.fx.OtherOwner, []string{e.fx.OtherPatient.ID}},
		{e.fx.PatientUser, []string{e.fx.Patient.ID}},
	}
	for _, tt := range tests {
		t.Run(tt.user.Role+"/"+tt.user.ID, func(t *testing.T) {
			patients, err := e.patients.List(ctx, actorOf(tt.user))
			require.NoError(t, err)
			require.ElementsMatch(t, tt.want, ids(patients, patientID))
		})
	}

	_, err := e.patients.List(ctx, actorOf(models.User{ID: "x", Role: "auditor"}))
	require.True(t, types.Forbidden.Has(err))
}

func TestPatientCannotChangeOwnCompany(t *testing.T) {
	e := newEnv(t)
	self := actorOf(e.fx.PatientUser)
	mine := e.fx.Company.ID
	theirs := e.fx.OtherCompany.ID

	updated, err := e.patients.Update(ctx, self, e.fx.Patient.ID, PatientInput{
		UserID: &e.fx.PatientUser.ID, CompanyID: &mine, FirstName: "Ana", LastName: "Renamed",
	})
	require.NoError(t, err)
	require.Equal(t, "Renamed", updated.LastName)

	_, err = e.patients.Update(ctx, self, e.fx.Patient.ID, PatientInput{
		UserID: &e.fx.PatientUser.ID, CompanyID: &theirs, FirstName: "Ana", LastName: "Patient",
	})
	require.True(t, types.Forbidden.Has(err))

	_, err = e.patients.Update(ctx, self, e.fx.Patient.ID, PatientInput{
		UserID: &e.fx.PatientUser.ID, FirstName: "Ana", LastName: "Patient",
	})
	require.True(t, types.Forbidden.Has(err))

	others, err := e.patients.List(ctx, actorOf(e.fx.OtherOwner))
	require.NoError(t, err)
	require.Equal(t, []string{e.fx.OtherPatient.ID}, ids(others, patientID))

	moved, err := e.patients.Update(ctx, actorOf(e.fx.ProfessionalUser), e.fx.Patient.ID, PatientInput{
		UserID: &e.fx.PatientUser.ID, CompanyID: &theirs, FirstName: "Ana", LastName: "Patient",
	})
	require.NoError(t, err)
	require.Equal(t, theirs, *moved.CompanyID)
}

func TestPatientWrites(t *testing.T) {
	e := newEnv(t)
	owner := actorOf(e.fx.CompanyOwner)

	mine := e.fx.Company.ID
	p, err := e.patients.Create(ctx, owner, PatientInput{CompanyID: &mine, FirstName: "Carla", LastName: "New", DateOfBirth: "1990-05-01"})
	require.NoError(t, err)
	require.NotNil(t, p.DateOfBirth)

	theirs := e.fx.OtherCompany.ID
	_, err = e.patients.Create(ctx, owner, PatientInput{CompanyID: &theirs, FirstName: "Carla", LastName: "New"})
	require.True(t, types.Forbidden.Has(err))

	_, err = e.patients.Update(ctx, owner, p.ID, PatientInput{CompanyID: &theirs, FirstName: "Carla", LastName: "Moved"})
	require.True(t, types.Forbidden.Has(err))

	_, err = e.patients.Create(ctx, owner, PatientInput{CompanyID: &mine, FirstName: "No Last Name"})
	require.True(t, types.Validation.Has(err))

	_, err = e.patients.Get(ctx, actorOf(e.fx.OtherOwner), p.ID)
	require.True(t, types.Forbidden.Has(err))

	require.NoError(t, e.patients.Delete(ctx, owner, p.ID))
	_, err = e.patients.Get(ctx, owner, p.ID)
	require.True(t, types.NotFound.Has(err))
}

func TestPatientWithRecordsIsKept(t *testing.T) {
	e := newEnv(t)
	_, err := e.records.Create(ctx, actorOf(e.fx.ProfessionalUser), RecordInput{PatientID: e.fx.Patient.ID})
	require.NoError(t, err)

	err = e.patients.Delete(ctx, actorOf(e.fx.Admin), e.fx.Patient.ID)
	require.True(t, types.Integrity.Has(err))
}

func TestCompanies(t *testing.T) {
	e := newEnv(t)

	all, err := e.comps.List(ctx, actorOf(e.fx.ProfessionalUser))
	require.NoError(t, err)
	require.Len(t, all, 2)

	own, err := e.comps.List(ctx, actorOf(e.fx.CompanyOwner))
	require.NoError(t, err)
	require.Len(t, own, 1)
	require.Equal(t, e.fx.Company.ID, own[0].ID)

	_, err = e.comps.List(ctx, actorOf(e.fx.PatientUser))
	require.True(t, types.Forbidden.Has(err))

	_, err = e.comps.Update(ctx, actorOf(e.fx.ProfessionalUser), e.fx.Company.ID, CompanyInput{Name: "Renamed"})
	require.True(t, types.Forbidden.Has(err))

	_, err = e.comps.Update(ctx, actorOf(e.fx.CompanyOwner), e.fx.Company.ID, CompanyInput{Name: "Acme", OwnerUserID: e.fx.OtherOwner.ID})
	require.True(t, types.Forbidden.Has(err))

	c, err := e.comps.Create(ctx, actorOf(e.fx.CompanyOwner), CompanyInput{Name: "Initech"})
	require.NoError(t, err)
	require.Equal(t, e.fx.CompanyOwner.ID, c.OwnerUserID)

	emp, err := e.comps.CreateEmployee(ctx, actorOf(e.fx.CompanyOwner), c.ID, PatientInput{FirstName: "Dana", LastName: "Worker"})
	require.NoError(t, err)
	require.Equal(t, c.ID, *emp.CompanyID)

	employees, err := e.comps.Employees(ctx, actorOf(e.fx.CompanyOwner), c.ID)
	require.NoError(t, err)
	require.Len(t, employees, 1)

	require.True(t, types.Integrity.Has(e.comps.Delete(ctx, actorOf(e.fx.CompanyOwner), c.ID)))
	require.True(t, types.NotFound.Has(e.comps.Delete(ctx, actorOf(e.fx.Admin), "missing")))
}

func TestUsersAreAdminOnly(t *testing.T) {
	e := newEnv(t)
	admin := actorOf(e.fx.Admin)

	_, err := e.users.List(ctx, actorOf(e.fx.ProfessionalUser))
	require.True(t, types.Forbidden.Has(err))

	inactive := false
	acc, err := e.users.Create(ctx, admin, UserInput{ID: "u-new", Email: "new@example.com", FullName: "Dr. New", Role: models.RoleProfessional, LicenseNumber: "MP-9", IsActive: &inactive})
	require.NoError(t, err)
	require.NotNil(t, acc.Professional)
	require.False(t, acc.IsActive)

	got, err := e.users.Get(ctx, admin, "u-new")
	require.NoError(t, err)
	require.Equal(t, "MP-9", got.Professional.LicenseNumber)
	require.False(t, got.IsActive)

	active := true
	got, err = e.users.Update(ctx, admin, "u-new", UserInput{IsActive: &active, Specialty: "cardiology"})
	require.NoError(t, err)
	require.True(t, got.IsActive)
	require.Equal(t, "cardiology", got.Professional.Specialty)

	_, err = e.users.Create(ctx, admin, UserInput{Email: "x@example.com", Role: "root"})
	require.True(t, types.Validation.Has(err))

	_, err = e.users.Create(ctx, admin, UserInput{Email: "new@example.com", Role: models.RolePatient})
	require.True(t, types.Integrity.Has(err))

	require.True(t, types.Validation.Has(e.users.Delete(ctx, admin, admin.ID)))
	require.NoError(t, e.users.Delete(ctx, admin, "u-new"))

	var n int64
	require.NoError(t, e.db.Model(&models.Professional{}).Where("user_id = ?", "u-new").Count(&n).Error)
	require.Zero(t, n)
}
