package services

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/localnerve/medrecords/internal/access"
	"github.com/localnerve/medrecords/internal/attachments"
	"github.com/localnerve/medrecords/internal/database"
	"github.com/localnerve/medrecords/internal/models"
	"github.com/localnerve/medrecords/internal/types"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Studies manages diagnostic studies and their uploaded documents
type Studies struct {
	DB          *gorm.DB
	Attachments *attachments.Store
	Log         *zap.Logger
}

// Upload is one uploaded study document
type Upload struct {
	Name     string
	MimeType string
	Data     []byte
}

// StudyInput carries the writable fields of a study
type StudyInput struct {
	PatientID      string `json:"patient_id"`
	ProfessionalID string `json:"professional_id"`
	StudyType      string `json:"study_type"`
	Title          string `json:"title"`
	Description    string `json:"description"`
	Status         string `json:"status"`
	StudyDate      string `json:"study_date"`
}

func parseDate(field, s string) (*datatypes.Date, error) {
	if s == "" {
		return nil, nil
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return nil, types.Validation.New("%s must be YYYY-MM-DD", field)
	}
	d := datatypes.Date(t)
	return &d, nil
}

func (s *Studies) resource(ctx context.Context, study *models.Study) (access.Resource, error) {
	_, res, err := patientResource(ctx, s.DB, access.Study, study.PatientID)
	if err != nil {
		return res, err
	}
	res.ID = study.ID
	res.CreatedByUserID = study.CreatedByUserID
	return res, nil
}

func (s *Studies) load(ctx context.Context, actor access.Actor, op access.Op, id string) (*models.Study, error) {
	var study models.Study
	if err := silent(s.DB).WithContext(ctx).Preload("Files").Where("id = ?", id).First(&study).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, types.NotFound.New("study %s", id)
		}
		return nil, err
	}
	res, err := s.resource(ctx, &study)
	if err != nil {
		return nil, err
	}
	if err := access.Authorize(actor, op, res); err != nil {
		return nil, err
	}
	return &study, nil
}

// store saves uploads and returns their rows. Files already saved are removed
// when a later one fails.
func (s *Studies) store(ctx context.Context, studyID string, uploads []Upload) ([]models.StudyFile, error) {
	files := make([]models.StudyFile, 0, len(uploads))
	for _, up := range uploads {
		url, err := s.Attachments.Save(ctx, attachments.Studies, up.Data, up.Name)
		if err != nil {
			s.discard(ctx, files, err)
			return nil, err
		}
		files = append(files, models.StudyFile{
			ID:               uuid.NewString(),
			StudyID:          studyID,
			URL:              url,
			OriginalFilename: up.Name,
			MimeType:         up.MimeType,
			SizeBytes:        int64(len(up.Data)),
			UploadedAt:       time.Now().UTC(),
		})
	}
	return files, nil
}

func (s *Studies) discard(ctx context.Context, files []models.StudyFile, cause error) {
	if len(files) == 0 {
		return
	}
	s.Log.Warn("removing study files of failed operation", zap.Int("files", len(files)), zap.Error(cause))
	s.Attachments.DeleteAll(context.WithoutCancel(ctx), fileURLs(files))
}

func fileURLs(files []models.StudyFile) []string {
	urls := make([]string, len(files))
	for i, f := range files {
		urls[i] = f.URL
	}
	return urls
}

// Create adds a study with its documents
func (s *Studies) Create(ctx context.Context, actor access.Actor, in StudyInput, uploads []Upload) (*models.Study, error) {
	if in.PatientID == "" || in.StudyType == "" {
		return nil, types.Validation.New("patient_id and study_type are required")
	}
	date, err := parseDate("study_date", in.StudyDate)
	if err != nil {
		return nil, err
	}

	_, res, err := patientResource(ctx, s.DB, access.Study, in.PatientID)
	if err != nil {
		return nil, err
	}
	if err := access.Authorize(actor, access.Write, res); err != nil {
		return nil, err
	}
	professionalID, err := resolveProfessional(ctx, s.DB, actor, in.ProfessionalID, false)
	if err != nil {
		return nil, err
	}

	study := &models.Study{
		ID:              uuid.NewString(),
		PatientID:       in.PatientID,
		CreatedByUserID: actor.ID,
		StudyType:       in.StudyType,
		Title:           in.Title,
		Description:     in.Description,
		Status:          in.Status,
		StudyDate:       date,
	}
	if professionalID != "" {
		study.ProfessionalID = &professionalID
	}
	if study.Status == "" {
		study.Status = "pending"
	}

	files, err := s.store(ctx, study.ID, uploads)
	if err != nil {
		return nil, err
	}
	study.Files = files

	if err := s.DB.WithContext(ctx).Create(study).Error; err != nil {
		s.discard(ctx, files, err)
		return nil, database.Classify(err)
	}
	s.Log.Info("created study", zap.String("id", study.ID), zap.String("patient_id", study.PatientID), zap.Int("files", len(files)))
	return study, nil
}

// ListByPatient returns the studies of a patient with their files
func (s *Studies) ListByPatient(ctx context.Context, actor access.Actor, patientID string) ([]models.Study, error) {
	_, res, err := patientResource(ctx, s.DB, access.Study, patientID)
	if err != nil {
		return nil, err
	}
	if err := access.Authorize(actor, access.Read, res); err != nil {
		return nil, err
	}

	studies := []models.Study{}
	err = silent(s.DB).WithContext(ctx).Preload("Files").
		Where("patient_id = ?", patientID).
		Order("created_at DESC").
		Find(&studies).Error
	return studies, err
}

// Get returns one study with its files
func (s *Studies) Get(ctx context.Context, actor access.Actor, id string) (*models.Study, error) {
	return s.load(ctx, actor, access.Read, id)
}

// Update patches the descriptive fields of a study. Empty fields are kept.
func (s *Studies) Update(ctx context.Context, actor access.Actor, id string, in StudyInput) (*models.Study, error) {
	study, err := s.load(ctx, actor, access.Write, id)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	for column, value := range map[string]string{
		"study_type":  in.StudyType,
		"title":       in.Title,
		"description": in.Description,
		"status":      in.Status,
	} {
		if value != "" {
			updates[column] = value
		}
	}
	if in.StudyDate != "" {
		date, err := parseDate("study_date", in.StudyDate)
		if err != nil {
			return nil, err
		}
		updates["study_date"] = date
	}

	if len(updates) > 0 {
		if err := s.DB.WithContext(ctx).Model(study).Updates(updates).Error; err != nil {
			return nil, database.Classify(err)
		}
	}
	return s.load(ctx, actor, access.Read, id)
}

// Delete removes a study and its files
func (s *Studies) Delete(ctx context.Context, actor access.Actor, id string) error {
	study, err := s.load(ctx, actor, access.Write, id)
	if err != nil {
		return err
	}

	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("study_id = ?", id).Delete(&models.StudyFile{}).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", id).Delete(&models.Study{}).Error
	})
	if err != nil {
		return err
	}

	s.Attachments.DeleteAll(ctx, fileURLs(study.Files))
	s.Log.Info("deleted study", zap.String("id", id), zap.Int("files", len(study.Files)))
	return nil
}

// AddFiles attaches more documents to a study
func (s *Studies) AddFiles(ctx context.Context, actor access.Actor, id string, uploads []Upload) ([]models.StudyFile, error) {
	if len(uploads) == 0 {
		return nil, types.Validation.New("no files uploaded")
	}
	if _, err := s.load(ctx, actor, access.Write, id); err != nil {
		return nil, err
	}

	files, err := s.store(ctx, id, uploads)
	if err != nil {
		return nil, err
	}
	if err := s.DB.WithContext(ctx).Create(&files).Error; err != nil {
		s.discard(ctx, files, err)
		return nil, database.Classify(err)
	}
	return files, nil
}

// DeleteFile removes one document of a study
func (s *Studies) DeleteFile(ctx context.Context, actor access.Actor, id, fileID string) error {
	study, err := s.load(ctx, actor, access.Write, id)
	if err != nil {
		return err
	}

	for _, f := range study.Files {
		if f.ID != fileID {
			continue
		}
		if err := s.DB.WithContext(ctx).Where("id = ?", fileID).Delete(&models.StudyFile{}).Error; err != nil {
			return err
		}
		s.Attachments.Delete(ctx, f.URL)
		return nil
	}
	return types.NotFound.New("study file %s", fileID)
}
