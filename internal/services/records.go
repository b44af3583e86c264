// records.go
//
// Occupational medical records service
// Copyright (c) 2026 Alex Grant <info@localnerve.com> (https://www.localnerve.com), LocalNerve LLC
//
// This file is part of medrecords.
// medrecords is free software: you can redistribute it and/or modify it
// under the terms of the GNU Affero General Public License as published by the Free Software
// Foundation, either version 3 of the License, or (at your option) any later version.
// medrecords is distributed in the hope that it will be useful, but WITHOUT ANY WARRANTY;
// without even the implied warranty of MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.
// See the GNU Affero General Public License for more details.
// You should have received a copy of the GNU Affero General Public License along with medrecords.
// If not, see <https://www.gnu.org/licenses/>.
// Additional terms under GNU AGPL version 3 section 7:
// a) The reasonable legal notice of original copyright and author attribution must be preserved
//    by including the string: "Copyright (c) 2026 Alex Grant <info@localnerve.com> (https://www.localnerve.com), LocalNerve LLC"
//    in this material, copies, or source code of derived works.

package services

import (
	"context"
	"errors"

	"github.com/localnerve/medrecords/internal/access"
	"github.com/localnerve/medrecords/internal/aggregate"
	"github.com/localnerve/medrecords/internal/models"
	"github.com/localnerve/medrecords/internal/schema"
	"github.com/localnerve/medrecords/internal/types"
	"gorm.io/gorm"
)

// MedicalRecords checks existence, then access, then runs the aggregate engine
type MedicalRecords struct {
	DB     *gorm.DB
	Engine *aggregate.Engine
}

// RecordInput is a create or full update request of an aggregate
type RecordInput struct {
	PatientID string
	// ProfessionalID is honored for admins, professionals sign as themselves
	ProfessionalID string
	ExamDate       string
	Sections       map[string]schema.Row
	DataImage      *aggregate.File
	Signature      *aggregate.File
}

func (in RecordInput) signs() bool {
	_, ok := in.Sections["signatures"]
	return ok || in.Signature != nil
}

// Create stores a new aggregate authored by actor
func (s *MedicalRecords) Create(ctx context.Context, actor access.Actor, in RecordInput) (string, error) {
	if in.PatientID == "" {
		return "", types.Validation.New("patient_id is required")
	}

	_, res, err := patientResource(ctx, s.DB, access.MedicalRecord, in.PatientID)
	if err != nil {
		return "", err
	}
	if err := access.Authorize(actor, access.Write, res); err != nil {
		return "", err
	}

	professionalID, err := resolveProfessional(ctx, s.DB, actor, in.ProfessionalID, true)
	if err != nil {
		return "", err
	}

	return s.Engine.Create(ctx, aggregate.CreateInput{
		PatientID:       in.PatientID,
		CreatedByUserID: actor.ID,
		ProfessionalID:  professionalID,
		ExamDate:        in.ExamDate,
		Sections:        in.Sections,
		DataImage:       in.DataImage,
		Signature:       in.Signature,
	})
}

// Get assembles one aggregate
func (s *MedicalRecords) Get(ctx context.Context, actor access.Actor, id string) (*aggregate.Document, error) {
	res, err := recordResource(ctx, s.DB, id)
	if err != nil {
		return nil, err
	}
	if err := access.Authorize(actor, access.Read, res); err != nil {
		return nil, err
	}
	return s.Engine.Read(ctx, id)
}

// ListByPatient assembles every aggregate of a patient
func (s *MedicalRecords) ListByPatient(ctx context.Context, actor access.Actor, patientID string) ([]*aggregate.Document, error) {
	_, res, err := patientResource(ctx, s.DB, access.MedicalRecord, patientID)
	if err != nil {
		return nil, err
	}
	if err := access.Authorize(actor, access.Read, res); err != nil {
		return nil, err
	}
	return s.Engine.ReadByPatient(ctx, patientID)
}

// Update upserts the present sections of an aggregate
func (s *MedicalRecords) Update(ctx context.Context, actor access.Actor, id string, in RecordInput) error {
	res, err := recordResource(ctx, s.DB, id)
	if err != nil {
		return err
	}
	if err := access.Authorize(actor, access.Write, res); err != nil {
		return err
	}

	var professionalID string
	if in.signs() || in.ProfessionalID != "" {
		if professionalID, err = resolveProfessional(ctx, s.DB, actor, in.ProfessionalID, in.signs()); err != nil {
			return err
		}
	}

	return s.Engine.Update(ctx, id, aggregate.UpdateInput{
		ProfessionalID: professionalID,
		ExamDate:       in.ExamDate,
		Sections:       in.Sections,
		DataImage:      in.DataImage,
		Signature:      in.Signature,
	})
}

// UpsertSection creates or updates a single section from its JSON body
func (s *MedicalRecords) UpsertSection(ctx context.Context, actor access.Actor, id, section string, body []byte) error {
	sec, ok := schema.Describe(section)
	if !ok {
		return types.NotFound.New("section %s", section)
	}
	if sec.Nested() {
		return types.Validation.New("section %s is stored from an uploaded file", sec.Name)
	}
	row, err := schema.ParseSection(sec, body)
	if err != nil {
		return err
	}
	return s.Update(ctx, actor, id, RecordInput{Sections: map[string]schema.Row{sec.Name: row}})
}

// Delete removes an aggregate with all of its sections and files
func (s *MedicalRecords) Delete(ctx context.Context, actor access.Actor, id string) error {
	res, err := recordResource(ctx, s.DB, id)
	if err != nil {
		return err
	}
	if err := access.Authorize(actor, access.Write, res); err != nil {
		return err
	}
	return s.Engine.Delete(ctx, id)
}

// resolveProfessional finds the professional signing for actor. Professionals
// sign as themselves, admins may name one. required makes a professional
// actor without a profile an error.
func resolveProfessional(ctx context.Context, db *gorm.DB, actor access.Actor, requested string, required bool) (string, error) {
	switch actor.Role {
	case models.RoleProfessional:
		var pro models.Professional
		err := silent(db).WithContext(ctx).Where("user_id = ?", actor.ID).First(&pro).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			if required {
				return "", types.Validation.New("user is not a professional")
			}
			return "", nil
		}
		if err != nil {
			return "", err
		}
		return pro.ID, nil

	case models.RoleAdmin:
		if requested == "" {
			return "", nil
		}
		var pro models.Professional
		if err := first(ctx, db, &pro, "professional", requested); err != nil {
			if types.NotFound.Has(err) {
				return "", types.Validation.New("unknown professional %s", requested)
			}
			return "", err
		}
		return pro.ID, nil
	}
	return "", nil
}
