// persister.go
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

	"github.com/google/uuid"
	"github.com/localnerve/medrecords/internal/database"
	"github.com/localnerve/medrecords/internal/models"
	"github.com/localnerve/medrecords/internal/schema"
	"github.com/localnerve/medrecords/internal/types"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

func parseExamDate(s string) (*datatypes.Date, error) {
	if s == "" {
		return nil, nil
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return nil, types.Validation.New("exam_date must be YYYY-MM-DD")
	}
	d := datatypes.Date(t)
	return &d, nil
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// nullable stores an empty string as NULL
func nullable(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

// Create stores a new aggregate with its sections in one transaction. Files are
// stored first, a failed transaction removes them again.
func (e *Engine) Create(ctx context.Context, in CreateInput) (string, error) {
	defer observeDuration("create")()

	if in.PatientID == "" {
		return "", types.Validation.New("patient_id is required")
	}
	if err := validateSections(in.Sections); err != nil {
		return "", err
	}
	if in.DataImage != nil && in.Sections["data"] == nil {
		return "", types.Validation.New("data_img requires a data section")
	}
	examDate, err := parseExamDate(in.ExamDate)
	if err != nil {
		return "", err
	}

	id := in.ID
	if id == "" {
		id = uuid.NewString()
	}

	files, err := e.saveFiles(ctx, in.DataImage, in.Signature)
	if err != nil {
		return "", err
	}

	err = e.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		parent := models.MedicalRecord{
			ID:              id,
			PatientID:       in.PatientID,
			ProfessionalID:  optional(in.ProfessionalID),
			CreatedByUserID: in.CreatedByUserID,
			ExamDate:        examDate,
		}
		if err := tx.Create(&parent).Error; err != nil {
			return database.Classify(err)
		}

		owners := map[string]string{}
		for _, sec := range schema.Sections() {
			row, present := e.rowForCreate(sec, in, files)
			if !present {
				continue
			}

			fk := id
			if sec.Nested() {
				fk = owners[sec.Owner]
			}

			sectionID, err := insertRow(tx, sec, fk, row)
			if err != nil {
				return err
			}
			owners[sec.Name] = sectionID
		}
		return nil
	})
	if err != nil {
		e.discard(ctx, files, err)
		e.Log.Error("create rolled back", zap.String("id", id), zap.Error(err))
		return "", err
	}

	e.Log.Info("created medical record", zap.String("id", id), zap.String("patient_id", in.PatientID), zap.Int("sections", len(in.Sections)))
	return id, nil
}

// rowForCreate merges caller fields with engine managed fields of a section
func (e *Engine) rowForCreate(sec *schema.Section, in CreateInput, files saved) (schema.Row, bool) {
	switch sec.Name {
	case "data_img":
		if files.dataImage == "" {
			return nil, false
		}
		return schema.Row{"url": files.dataImage}, true

	case "signatures":
		fields, present := in.Sections[sec.Name]
		if !present && files.signature == "" {
			return nil, false
		}
		row := copyRow(fields)
		row["url"] = nullable(files.signature)
		row["professional_id"] = nullable(in.ProfessionalID)
		row["created_at"] = time.Now().UTC()
		return row, true
	}

	row, present := in.Sections[sec.Name]
	return row, present
}

func copyRow(row schema.Row) schema.Row {
	out := make(schema.Row, len(row)+3)
	for k, v := range row {
		out[k] = v
	}
	return out
}

// Update upserts every present section of an aggregate. Sections absent from
// the input are never created or removed. Replaced files are deleted once the
// transaction commits.
func (e *Engine) Update(ctx context.Context, id string, in UpdateInput) error {
	defer observeDuration("update")()

	if err := validateSections(in.Sections); err != nil {
		return err
	}
	examDate, err := parseExamDate(in.ExamDate)
	if err != nil {
		return err
	}

	files, err := e.saveFiles(ctx, in.DataImage, in.Signature)
	if err != nil {
		return err
	}

	var replaced []string
	err = e.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := findParent(tx, id, true); err != nil {
			return err
		}

		parentUpdates := map[string]interface{}{"updated_at": time.Now().UTC()}
		if in.ProfessionalID != "" {
			parentUpdates["professional_id"] = in.ProfessionalID
		}
		if examDate != nil {
			parentUpdates["exam_date"] = examDate
		}
		if err := tx.Model(&models.MedicalRecord{}).Where("id = ?", id).Updates(parentUpdates).Error; err != nil {
			return database.Classify(err)
		}

		owners := map[string]string{}
		for _, sec := range schema.Sections() {
			row, present := rowForUpdate(sec, in, files)

			if sec.Nested() {
				if !present {
					continue
				}
				ownerID, err := e.ownerID(tx, sec, id, owners)
				if err != nil {
					return err
				}
				_, old, err := upsert(tx, sec, ownerID, row, nil)
				if err != nil {
					return err
				}
				replaced = append(replaced, old...)
				continue
			}

			if !present {
				continue
			}
			var onInsert schema.Row
			if sec.Name == "signatures" {
				onInsert = schema.Row{"created_at": time.Now().UTC()}
			}
			sectionID, old, err := upsert(tx, sec, id, row, onInsert)
			if err != nil {
				return err
			}
			owners[sec.Name] = sectionID
			replaced = append(replaced, old...)
		}
		return nil
	})
	if err != nil {
		e.discard(ctx, files, err)
		e.Log.Error("update rolled back", zap.String("id", id), zap.Error(err))
		return err
	}

	e.Attachments.DeleteAll(ctx, replaced)
	e.Log.Info("updated medical record", zap.String("id", id), zap.Int("sections", len(in.Sections)), zap.Int("replaced_files", len(replaced)))
	return nil
}

func rowForUpdate(sec *schema.Section, in UpdateInput, files saved) (schema.Row, bool) {
	switch sec.Name {
	case "data_img":
		if files.dataImage == "" {
			return nil, false
		}
		return schema.Row{"url": files.dataImage}, true

	case "signatures":
		fields, present := in.Sections[sec.Name]
		if !present && files.signature == "" {
			return nil, false
		}
		row := copyRow(fields)
		if files.signature != "" {
			row["url"] = files.signature
		}
		if in.ProfessionalID != "" {
			row["professional_id"] = in.ProfessionalID
		}
		return row, true
	}

	row, present := in.Sections[sec.Name]
	return row, present
}

// ownerID finds the row id of the section owning sec. The owner is upserted
// earlier in the same transaction when it is part of the request.
func (e *Engine) ownerID(tx *gorm.DB, sec *schema.Section, parentID string, owners map[string]string) (string, error) {
	if id, ok := owners[sec.Owner]; ok {
		return id, nil
	}
	owner, _ := schema.Describe(sec.Owner)
	rows, err := sectionRows(tx, owner, parentID, "medrecords:owner")
	if err != nil {
		return "", err
	}
	if len(rows) == 0 {
		return "", types.Validation.New("%s requires a %s section", sec.Name, sec.Owner)
	}
	id := stringValue(rows[0]["id"])
	owners[sec.Owner] = id
	return id, nil
}

// upsert updates the single row of sec referencing fk, or inserts it with the
// extra onInsert fields. It returns the row id and the previous url when a
// new one replaced it.
func upsert(tx *gorm.DB, sec *schema.Section, fk string, row, onInsert schema.Row) (string, []string, error) {
	rows, err := sectionRows(tx, sec, fk, "medrecords:upsert")
	if err != nil {
		return "", nil, err
	}

	if len(rows) == 0 {
		ins := copyRow(row)
		for k, v := range onInsert {
			ins[k] = v
		}
		id, err := insertRow(tx, sec, fk, ins)
		return id, nil, err
	}

	existing := rows[0]
	id := stringValue(existing["id"])
	if err := updateRow(tx, sec, id, row); err != nil {
		return "", nil, err
	}

	if newURL, ok := row["url"]; ok && sec.OwnsAttachment() {
		if oldURL := stringValue(existing["url"]); oldURL != "" && oldURL != newURL {
			return id, []string{oldURL}, nil
		}
	}
	return id, nil, nil
}

// Delete removes an aggregate with every section row and every stored file.
// Nested sections go first, then owning sections, then the rest, then the
// parent. Files are deleted after the commit, best-effort.
func (e *Engine) Delete(ctx context.Context, id string) error {
	defer observeDuration("delete")()

	var urls []string
	err := e.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := findParent(tx, id, true); err != nil {
			return err
		}

		sections := schema.Sections()
		for _, sec := range sections {
			if !sec.Nested() {
				continue
			}
			owner, _ := schema.Describe(sec.Owner)
			var ownerIDs []string
			if err := silent(tx).Table(owner.Table).
				Where(clause.Eq{Column: clause.Column{Name: owner.ForeignKey}, Value: id}).
				Pluck("id", &ownerIDs).Error; err != nil {
				return err
			}
			if len(ownerIDs) == 0 {
				continue
			}
			found, err := deleteRows(tx, sec, ownerIDs)
			if err != nil {
				return err
			}
			urls = append(urls, found...)
		}

		for _, sec := range sections {
			if sec.Nested() {
				continue
			}
			found, err := deleteRows(tx, sec, []string{id})
			if err != nil {
				return err
			}
			urls = append(urls, found...)
		}

		return tx.Where("id = ?", id).Delete(&models.MedicalRecord{}).Error
	})
	if err != nil {
		e.Log.Error("delete rolled back", zap.String("id", id), zap.Error(err))
		return err
	}

	e.Attachments.DeleteAll(ctx, urls)
	e.Log.Info("deleted medical record", zap.String("id", id), zap.Int("files", len(urls)))
	return nil
}

// deleteRows removes the rows of sec referencing any of fks and returns the
// urls they held
func deleteRows(tx *gorm.DB, sec *schema.Section, fks []string) ([]string, error) {
	fkColumn := clause.Column{Name: sec.ForeignKey}

	var urls []string
	if sec.OwnsAttachment() {
		if err := silent(tx).Table(sec.Table).
			Where(clause.IN{Column: fkColumn, Values: toValues(fks)}).
			Where("? IS NOT NULL", clause.Column{Name: "url"}).
			Pluck("url", &urls).Error; err != nil {
			return nil, err
		}
	}

	if err := tx.Exec("DELETE FROM ? WHERE ? IN ?", clause.Table{Name: sec.Table}, fkColumn, fks).Error; err != nil {
		return nil, err
	}
	return urls, nil
}

func toValues(ss []string) []interface{} {
	out := make([]interface{}, len(ss))
	for i, s := range ss {
		out[i] = s
	}
	return out
}
