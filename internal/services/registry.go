package services

import (
	"github.com/localnerve/medrecords/internal/aggregate"
	"github.com/localnerve/medrecords/internal/attachments"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Registry groups the services sharing one database and attachment store
type Registry struct {
	Records   *MedicalRecords
	Patients  *Patients
	Companies *Companies
	Studies   *Studies
	Users     *Users
}

// NewRegistry wires every service on db and store
func NewRegistry(db *gorm.DB, store *attachments.Store, log *zap.Logger) *Registry {
	patients := &Patients{DB: db}
	return &Registry{
		Records:   &MedicalRecords{DB: db, Engine: aggregate.NewEngine(db, store, log)},
		Patients:  patients,
		Companies: &Companies{DB: db, Patients: patients},
		Studies:   &Studies{DB: db, Attachments: store, Log: log.Named("studies")},
		Users:     &Users{DB: db},
	}
}
