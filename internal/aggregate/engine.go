package aggregate

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/localnerve/medrecords/internal/attachments"
	"github.com/localnerve/medrecords/internal/database"
	"github.com/localnerve/medrecords/internal/models"
	"github.com/localnerve/medrecords/internal/schema"
	"github.com/localnerve/medrecords/internal/types"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
	"gorm.io/hints"
)

// Engine creates, updates, deletes and assembles medical record aggregates
// across the parent table and every section table of the schema registry.
type Engine struct {
	DB          *gorm.DB
	Attachments *attachments.Store
	Log         *zap.Logger
}

// NewEngine returns an engine on db storing files in store
func NewEngine(db *gorm.DB, store *attachments.Store, log *zap.Logger) *Engine {
	return &Engine{DB: db, Attachments: store, Log: log.Named("aggregate")}
}

// File is an uploaded attachment
type File struct {
	Name string
	Data []byte
}

// CreateInput is everything stored by one aggregate create
type CreateInput struct {
	// ID is generated when empty
	ID              string
	PatientID       string
	CreatedByUserID string
	// ProfessionalID signs the record, stored on the parent and the signature
	ProfessionalID string
	ExamDate       string
	Sections       map[string]schema.Row
	DataImage      *File
	Signature      *File
}

// UpdateInput carries the sections to upsert. Absent sections are untouched.
type UpdateInput struct {
	ProfessionalID string
	ExamDate       string
	Sections       map[string]schema.Row
	DataImage      *File
	Signature      *File
}

// saved tracks files stored for one operation
type saved struct {
	dataImage string
	signature string
}

func (s saved) urls() []string {
	var out []string
	for _, u := range []string{s.dataImage, s.signature} {
		if u != "" {
			out = append(out, u)
		}
	}
	return out
}

// saveFiles stores the uploaded files before any row references them. When a
// later file fails, files already stored for this call are removed again.
func (e *Engine) saveFiles(ctx context.Context, img, sig *File) (saved, error) {
	var s saved
	var err error

	if img != nil {
		if s.dataImage, err = e.Attachments.Save(ctx, attachments.DataImages, img.Data, img.Name); err != nil {
			return saved{}, err
		}
	}
	if sig != nil {
		if s.signature, err = e.Attachments.Save(ctx, attachments.Signatures, sig.Data, sig.Name); err != nil {
			e.Attachments.DeleteAll(ctx, s.urls())
			return saved{}, err
		}
	}
	return s, nil
}

// discard removes files of a failed operation. Failures only leave orphans,
// which the sweep command collects.
func (e *Engine) discard(ctx context.Context, s saved, cause error) {
	urls := s.urls()
	if len(urls) == 0 {
		return
	}
	e.Log.Warn("removing attachments of failed operation", zap.Strings("urls", urls), zap.Error(cause))
	e.Attachments.DeleteAll(context.WithoutCancel(ctx), urls)
}

func validateSections(sections map[string]schema.Row) error {
	for name := range sections {
		sec, ok := schema.Describe(name)
		if !ok || sec.Name != name {
			return types.Validation.New("unknown section %q", name)
		}
		if sec.Nested() {
			return types.Validation.New("section %s is stored from an uploaded file", name)
		}
	}
	return nil
}

func silent(db *gorm.DB) *gorm.DB {
	return db.Session(&gorm.Session{Logger: db.Logger.LogMode(logger.Silent)})
}

// findParent loads the parent row, optionally locked for the transaction
func findParent(tx *gorm.DB, id string, lock bool) (*models.MedicalRecord, error) {
	q := silent(tx)
	if lock {
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}

	var rec models.MedicalRecord
	if err := q.Where("id = ?", id).First(&rec).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, types.NotFound.New("medical record %s", id)
		}
		return nil, err
	}
	return &rec, nil
}

// sectionRows returns up to two raw rows of sec referencing fk. More than one
// row breaks the one row per owner rule.
func sectionRows(tx *gorm.DB, sec *schema.Section, fk string, comment string) ([]map[string]interface{}, error) {
	var rows []map[string]interface{}
	err := silent(tx).
		Clauses(hints.CommentBefore("select", comment)).
		Table(sec.Table).
		Where(clause.Eq{Column: clause.Column{Name: sec.ForeignKey}, Value: fk}).
		Limit(2).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	if len(rows) > 1 {
		return nil, types.Integrity.New("section %s has more than one row for %s", sec.Name, fk)
	}
	return rows, nil
}

func insertRow(tx *gorm.DB, sec *schema.Section, fk string, row schema.Row) (string, error) {
	id := uuid.NewString()
	values := make(map[string]interface{}, len(row)+2)
	for k, v := range row {
		values[k] = v
	}
	values["id"] = id
	values[sec.ForeignKey] = fk

	if err := tx.Table(sec.Table).Create(values).Error; err != nil {
		return "", database.Classify(err)
	}
	return id, nil
}

func updateRow(tx *gorm.DB, sec *schema.Section, id string, row schema.Row) error {
	if len(row) == 0 {
		return nil
	}
	err := tx.Table(sec.Table).
		Where(clause.Eq{Column: clause.Column{Name: "id"}, Value: id}).
		Updates(map[string]interface{}(row)).Error
	return database.Classify(err)
}

func stringValue(v interface{}) string {
	switch t := v.(type) {
	case string:
		return t
	case []byte:
		return string(t)
	}
	return ""
}
