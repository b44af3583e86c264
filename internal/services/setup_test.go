package services

import (
	"context"
	"testing"

	"github.com/localnerve/medrecords/internal/access"
	"github.com/localnerve/medrecords/internal/attachments"
	"github.com/localnerve/medrecords/internal/models"
	"github.com/localnerve/medrecords/internal/testutil"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type env struct {
	db       *gorm.DB
	store    *attachments.Store
	root     string
	fx       *testutil.Fixtures
	records  *MedicalRecords
	patients *Patients
	comps    *Companies
	studies  *Studies
	users    *Users
}

func newEnv(t *testing.T) *env {
	t.Helper()
	db := testutil.NewDB(t)
	store, root := testutil.NewStore(t)
	reg := NewRegistry(db, store, zap.NewNop())
	return &env{
		db:       db,
		store:    store,
		root:     root,
		fx:       testutil.Seed(t, db),
		records:  reg.Records,
		patients: reg.Patients,
		comps:    reg.Companies,
		studies:  reg.Studies,
		users:    reg.Users,
	}
}

func actorOf(u models.User) access.Actor {
	return access.Actor{ID: u.ID, Role: u.Role}
}

var ctx = context.Background()
