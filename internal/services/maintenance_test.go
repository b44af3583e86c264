package services

import (
	"testing"
	"time"

	"github.com/localnerve/medrecords/internal/aggregate"
	"github.com/localnerve/medrecords/internal/attachments"
	"github.com/localnerve/medrecords/internal/config"
	"github.com/localnerve/medrecords/internal/testutil"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestSweepOrphans(t *testing.T) {
	e := newEnv(t)
	prof := actorOf(e.fx.ProfessionalUser)

	_, err := e.records.Create(ctx, prof, RecordInput{
		PatientID: e.fx.Patient.ID,
		Signature: &aggregate.File{Name: "kept.png", Data: []byte("png")},
	})
	require.NoError(t, err)
	_, err = e.studies.Create(ctx, prof, StudyInput{PatientID: e.fx.Patient.ID, StudyType: "lab"}, []Upload{{Name: "kept.pdf", Data: []byte("pdf")}})
	require.NoError(t, err)

	orphan, err := e.store.Save(ctx, attachments.Signatures, []byte("lost"), "lost.png")
	require.NoError(t, err)

	report, err := SweepOrphans(ctx, e.db, e.store, true, 0, zap.NewNop())
	require.NoError(t, err)
	require.Equal(t, []string{orphan}, report.Orphans[attachments.Signatures])
	require.Empty(t, report.Orphans[attachments.Studies])
	require.Zero(t, report.Removed)
	require.Len(t, testutil.Files(t, e.root, attachments.Signatures), 2)

	report, err = SweepOrphans(ctx, e.db, e.store, false, 0, zap.NewNop())
	require.NoError(t, err)
	require.Equal(t, 1, report.Removed)
	require.Len(t, testutil.Files(t, e.root, attachments.Signatures), 1)
	require.Len(t, testutil.Files(t, e.root, attachments.Studies), 1)
}

func TestSweepOrphansSkipsRecentFiles(t *testing.T) {
	e := newEnv(t)

	// stored but not yet referenced, as during an open transaction
	pending, err := e.store.Save(ctx, attachments.Signatures, []byte("pending"), "pending.png")
	require.NoError(t, err)

	report, err := SweepOrphans(ctx, e.db, e.store, false, time.Hour, zap.NewNop())
	require.NoError(t, err)
	require.Zero(t, report.Removed)
	require.Empty(t, report.Orphans)
	require.Equal(t, "1h0m0s", report.MinAge)

	_, name, ok := e.store.Resolve(pending)
	require.True(t, ok)
	require.Equal(t, []string{name}, testutil.Files(t, e.root, attachments.Signatures))
}

func TestHealthCheck(t *testing.T) {
	e := newEnv(t)
	cfg := &config.Config{DBType: "sqlite", DBDatabase: ":memory:", Attachments: config.AttachmentConfig{Driver: "fs"}}

	result := HealthCheck(ctx, cfg, e.db, e.store, zap.NewNop())
	require.Equal(t, "healthy", result.Status, result.ErrorMessage)
	require.Equal(t, "ok", result.Database)
	require.Equal(t, "not configured", result.Authorizer)
	require.Equal(t, "ok", result.Attachments)

	cfg.AuthzURL = "http://127.0.0.1:1"
	result = HealthCheck(ctx, cfg, e.db, nil, zap.NewNop())
	require.Equal(t, "unhealthy", result.Status)
	require.Equal(t, "unreachable", result.Authorizer)
	require.Equal(t, "skipped", result.Attachments)
	require.Contains(t, result.Details, "authorizer_error")
}
