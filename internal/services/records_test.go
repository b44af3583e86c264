package services

import (
	"testing"

	"github.com/localnerve/medrecords/internal/aggregate"
	"github.com/localnerve/medrecords/internal/models"
	"github.com/localnerve/medrecords/internal/schema"
	"github.com/localnerve/medrecords/internal/testutil"
	"github.com/localnerve/medrecords/internal/types"
	"github.com/stretchr/testify/require"
)

func doc(t *testing.T, raw string) map[string]schema.Row {
	t.Helper()
	sections, err := schema.ParseDocument([]byte(raw))
	require.NoError(t, err)
	return sections
}

func TestProfessionalCreatesAndSigns(t *testing.T) {
	e := newEnv(t)
	prof := actorOf(e.fx.ProfessionalUser)

	id, err := e.records.Create(ctx, prof, RecordInput{
		PatientID: e.fx.Patient.ID,
		// ignored for professionals
		ProfessionalID: e.fx.OtherProf.ID,
		Sections:       doc(t, `{"signatures": {"licence": "MP-1234"}}`),
		Signature:      &aggregate.File{Name: "s.png", Data: []byte("png")},
	})
	require.NoError(t, err)

	rec, err := e.records.Get(ctx, prof, id)
	require.NoError(t, err)
	require.Equal(t, e.fx.Professional.ID, rec.ProfessionalID)
	require.Equal(t, e.fx.ProfessionalUser.ID, rec.CreatedByUserID)
	require.Equal(t, e.fx.Professional.ID, rec.Section("signatures")["professional_id"])
}

func TestAdminNamesProfessional(t *testing.T) {
	e := newEnv(t)
	admin := actorOf(e.fx.Admin)

	id, err := e.records.Create(ctx, admin, RecordInput{PatientID: e.fx.Patient.ID, ProfessionalID: e.fx.OtherProf.ID})
	require.NoError(t, err)
	rec, err := e.records.Get(ctx, admin, id)
	require.NoError(t, err)
	require.Equal(t, e.fx.OtherProf.ID, rec.ProfessionalID)

	_, err = e.records.Create(ctx, admin, RecordInput{PatientID: e.fx.Patient.ID, ProfessionalID: "nobody"})
	require.True(t, types.Validation.Has(err))
}

func TestRecordAccess(t *testing.T) {
	e := newEnv(t)
	prof := actorOf(e.fx.ProfessionalUser)

	id, err := e.records.Create(ctx, prof, RecordInput{PatientID: e.fx.Patient.ID, Sections: doc(t, `{"habits": {"diet": true}}`)})
	require.NoError(t, err)

	// read broad
	for _, reader := range []models.User{e.fx.Admin, e.fx.OtherProfUser, e.fx.CompanyOwner, e.fx.PatientUser} {
		_, err := e.records.Get(ctx, actorOf(reader), id)
		require.NoError(t, err, reader.Role)
		docs, err := e.records.ListByPatient(ctx, actorOf(reader), e.fx.Patient.ID)
		require.NoError(t, err, reader.Role)
		require.Len(t, docs, 1)
	}

	_, err = e.records.Get(ctx, actorOf(e.fx.OtherOwner), id)
	require.True(t, types.Forbidden.Has(err))

	// write narrow
	update := RecordInput{Sections: doc(t, `{"habits": {"diet": false}}`)}
	require.True(t, types.Forbidden.Has(e.records.Update(ctx, actorOf(e.fx.OtherProfUser), id, update)))
	require.True(t, types.Forbidden.Has(e.records.Update(ctx, actorOf(e.fx.CompanyOwner), id, update)))
	require.True(t, types.Forbidden.Has(e.records.Delete(ctx, actorOf(e.fx.PatientUser), id)))
	require.NoError(t, e.records.Update(ctx, prof, id, update))
	require.NoError(t, e.records.Update(ctx, actorOf(e.fx.Admin), id, update))

	_, err = e.records.Create(ctx, actorOf(e.fx.CompanyOwner), RecordInput{PatientID: e.fx.Patient.ID})
	require.True(t, types.Forbidden.Has(err))

	require.NoError(t, e.records.Delete(ctx, prof, id))
}

func TestMissingBeforeForbidden(t *testing.T) {
	e := newEnv(t)
	outsider := actorOf(e.fx.OtherOwner)

	_, err := e.records.Get(ctx, outsider, "missing")
	require.True(t, types.NotFound.Has(err))
	require.True(t, types.NotFound.Has(e.records.Delete(ctx, outsider, "missing")))

	_, err = e.records.ListByPatient(ctx, outsider, "missing")
	require.True(t, types.NotFound.Has(err))
}

func TestUpsertSection(t *testing.T) {
	e := newEnv(t)
	prof := actorOf(e.fx.ProfessionalUser)

	id, err := e.records.Create(ctx, prof, RecordInput{PatientID: e.fx.Patient.ID})
	require.NoError(t, err)

	require.NoError(t, e.records.UpsertSection(ctx, prof, id, "medical_record_habits", []byte(`{"sleep_hours": 7}`)))
	require.NoError(t, e.records.UpsertSection(ctx, prof, id, "habits", []byte(`{"diet": true}`)))
	require.NoError(t, e.records.UpsertSection(ctx, prof, id, "signatures", []byte(`{"licence": "MP-1"}`)))

	rec, err := e.records.Get(ctx, prof, id)
	require.NoError(t, err)
	require.Equal(t, int64(7), rec.Section("habits")["sleep_hours"])
	require.Equal(t, true, rec.Section("habits")["diet"])
	require.Equal(t, e.fx.Professional.ID, rec.Section("signatures")["professional_id"])

	require.True(t, types.NotFound.Has(e.records.UpsertSection(ctx, prof, id, "x_ray", []byte(`{}`))))
	require.True(t, types.Validation.Has(e.records.UpsertSection(ctx, prof, id, "data_img", []byte(`{}`))))
	require.True(t, types.Validation.Has(e.records.UpsertSection(ctx, prof, id, "habits", []byte(`{"diet": "maybe"}`))))
	require.Empty(t, testutil.Files(t, e.root, "signatures"))
}
