// assembler.go
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

package aggregate

import (
	"context"
	"time"

	"github.com/localnerve/medrecords/internal/models"
	"github.com/localnerve/medrecords/internal/schema"
	"gorm.io/gorm"
)

// Read assembles the aggregate of one medical record. A section without a row
// is nil in the result. Reads are not transactional, a concurrent update may
// be seen partially.
func (e *Engine) Read(ctx context.Context, id string) (*Document, error) {
	defer observeDuration("read")()

	db := e.DB.WithContext(ctx)
	rec, err := findParent(db, id, false)
	if err != nil {
		return nil, err
	}
	return assemble(db, rec)
}

// ReadByPatient assembles every aggregate of a patient, newest exam first
func (e *Engine) ReadByPatient(ctx context.Context, patientID string) ([]*Document, error) {
	defer observeDuration("read_patient")()

	db := e.DB.WithContext(ctx)
	var records []models.MedicalRecord
	if err := silent(db).
		Where("patient_id = ?", patientID).
		Order("exam_date DESC").Order("created_at DESC").
		Find(&records).Error; err != nil {
		return nil, err
	}

	docs := make([]*Document, 0, len(records))
	for i := range records {
		doc, err := assemble(db, &records[i])
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	return docs, nil
}

func assemble(db *gorm.DB, rec *models.MedicalRecord) (*Document, error) {
	doc := &Document{
		ID:              rec.ID,
		PatientID:       rec.PatientID,
		CreatedByUserID: rec.CreatedByUserID,
		CreatedAt:       rec.CreatedAt,
		UpdatedAt:       rec.UpdatedAt,
		Sections:        map[string]schema.Row{},
	}
	if rec.ProfessionalID != nil {
		doc.ProfessionalID = *rec.ProfessionalID
	}
	if rec.ExamDate != nil {
		doc.ExamDate = time.Time(*rec.ExamDate).Format("2006-01-02")
	}

	for _, sec := range schema.Sections() {
		if sec.Nested() {
			continue
		}
		row, err := readSection(db, sec, rec.ID)
		if err != nil {
			return nil, err
		}
		if row != nil {
			if err := nest(db, sec, row); err != nil {
				return nil, err
			}
		}
		doc.Sections[sec.Name] = row
	}
	return doc, nil
}

func readSection(db *gorm.DB, sec *schema.Section, fk string) (schema.Row, error) {
	rows, err := sectionRows(db, sec, fk, "medrecords:assemble")
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return sec.Decode(rows[0]), nil
}

// nest reads the sections owned by sec into its row
func nest(db *gorm.DB, sec *schema.Section, row schema.Row) error {
	for _, child := range schema.NestedUnder(sec.Name) {
		childRow, err := readSection(db, child, stringValue(row["id"]))
		if err != nil {
			return err
		}
		if childRow == nil {
			row[child.Name] = nil
			continue
		}
		row[child.Name] = map[string]interface{}(childRow)
	}
	return nil
}
