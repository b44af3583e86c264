package aggregate

import (
	"encoding/json"
	"time"

	"github.com/localnerve/medrecords/internal/schema"
)

// Document is an assembled aggregate. Sections holds every top-level section
// of the registry, nil when the record has no row for it. Nested sections are
// carried inside the row of their owner under their own name.
type Document struct {
	ID              string
	PatientID       string
	ProfessionalID  string
	CreatedByUserID string
	ExamDate        string
	CreatedAt       time.Time
	UpdatedAt       time.Time
	Sections        map[string]schema.Row
}

// Section returns the row of a section, nil when absent
func (d *Document) Section(name string) schema.Row {
	return d.Sections[name]
}

// MarshalJSON flattens the sections next to the record fields
func (d *Document) MarshalJSON() ([]byte, error) {
	out := make(map[string]interface{}, len(d.Sections)+7)
	for name, row := range d.Sections {
		if row == nil {
			out[name] = nil
			continue
		}
		out[name] = map[string]interface{}(row)
	}

	out["id"] = d.ID
	out["patient_id"] = d.PatientID
	out["professional_id"] = nullable(d.ProfessionalID)
	out["created_by_user_id"] = d.CreatedByUserID
	out["exam_date"] = nullable(d.ExamDate)
	out["created_at"] = d.CreatedAt
	out["updated_at"] = d.UpdatedAt
	return json.Marshal(out)
}
