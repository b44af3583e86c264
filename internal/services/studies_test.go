package services

import (
	"testing"

	"github.com/localnerve/medrecords/internal/attachments"
	"github.com/localnerve/medrecords/internal/models"
	"github.com/localnerve/medrecords/internal/testutil"
	"github.com/localnerve/medrecords/internal/types"
	"github.com/stretchr/testify/require"
)

func TestStudyLifecycle(t *testing.T) {
	e := newEnv(t)
	prof := actorOf(e.fx.ProfessionalUser)

	study, err := e.studies.Create(ctx, prof, StudyInput{PatientID: e.fx.Patient.ID, StudyType: "x-ray", StudyDate: "2026-02-01"}, []Upload{
		{Name: "chest.pdf", MimeType: "application/pdf", Data: []byte("pdf")},
		{Name: "chest.jpg", MimeType: "image/jpeg", Data: []byte("jpg")},
	})
	require.NoError(t, err)
	require.Len(t, study.Files, 2)
	require.Equal(t, "pending", study.Status)
	require.Equal(t, e.fx.Professional.ID, *study.ProfessionalID)
	require.Len(t, testutil.Files(t, e.root, attachments.Studies), 2)

	list, err := e.studies.ListByPatient(ctx, actorOf(e.fx.PatientUser), e.fx.Patient.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	require.Len(t, list[0].Files, 2)

	_, err = e.studies.Get(ctx, actorOf(e.fx.OtherOwner), study.ID)
	require.True(t, types.Forbidden.Has(err))

	_, err = e.studies.Update(ctx, actorOf(e.fx.OtherProfUser), study.ID, StudyInput{Status: "done"})
	require.True(t, types.Forbidden.Has(err))

	updated, err := e.studies.Update(ctx, prof, study.ID, StudyInput{Status: "done"})
	require.NoError(t, err)
	require.Equal(t, "done", updated.Status)
	require.Equal(t, "x-ray", updated.StudyType)

	added, err := e.studies.AddFiles(ctx, prof, study.ID, []Upload{{Name: "notes.txt", Data: []byte("txt")}})
	require.NoError(t, err)
	require.Len(t, added, 1)
	require.Len(t, testutil.Files(t, e.root, attachments.Studies), 3)

	require.NoError(t, e.studies.DeleteFile(ctx, prof, study.ID, added[0].ID))
	require.Len(t, testutil.Files(t, e.root, attachments.Studies), 2)
	require.True(t, types.NotFound.Has(e.studies.DeleteFile(ctx, prof, study.ID, "nope")))

	require.NoError(t, e.studies.Delete(ctx, prof, study.ID))
	require.Empty(t, testutil.Files(t, e.root, attachments.Studies))

	var n int64
	require.NoError(t, e.db.Model(&models.StudyFile{}).Count(&n).Error)
	require.Zero(t, n)
}

func TestStudyValidation(t *testing.T) {
	e := newEnv(t)
	prof := actorOf(e.fx.ProfessionalUser)

	_, err := e.studies.Create(ctx, prof, StudyInput{PatientID: e.fx.Patient.ID}, nil)
	require.True(t, types.Validation.Has(err))

	_, err = e.studies.Create(ctx, prof, StudyInput{PatientID: e.fx.Patient.ID, StudyType: "lab", StudyDate: "yesterday"}, nil)
	require.True(t, types.Validation.Has(err))

	_, err = e.studies.Create(ctx, prof, StudyInput{PatientID: "missing", StudyType: "lab"}, nil)
	require.True(t, types.NotFound.Has(err))

	_, err = e.studies.Create(ctx, actorOf(e.fx.PatientUser), StudyInput{PatientID: e.fx.Patient.ID, StudyType: "lab"}, []Upload{{Name: "a.pdf", Data: []byte("a")}})
	require.True(t, types.Forbidden.Has(err))
	require.Empty(t, testutil.Files(t, e.root, attachments.Studies))
}
