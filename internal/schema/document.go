package schema

import (
	"bytes"
	"encoding/json"
	"sort"

	"github.com/localnerve/medrecords/internal/types"
)

// Row is one section row as column name to value
type Row map[string]any

// Normalize validates caller supplied fields of a section and converts them to
// their stored types. The id and foreign key columns and engine managed fields
// are dropped, unknown fields are rejected.
func (s *Section) Normalize(in map[string]any) (Row, error) {
	out := make(Row, len(in))

	for key, value := range in {
		if key == "id" || key == s.ForeignKey {
			continue
		}
		f, ok := s.byName[key]
		if !ok {
			return nil, types.Validation.New("unknown field %q in section %s", key, s.Name)
		}
		if f.Managed {
			continue
		}
		v, err := f.coerce(value)
		if err != nil {
			return nil, types.Validation.New("section %s: %v", s.Name, err)
		}
		out[key] = v
	}

	return out, nil
}

// Decode turns a row read from the section table into its canonical form with
// every column present. Absent columns read as nil.
func (s *Section) Decode(raw map[string]any) Row {
	out := make(Row, len(s.Fields)+2)
	out["id"] = asString(raw["id"])
	out[s.ForeignKey] = asString(raw[s.ForeignKey])
	for _, f := range s.Fields {
		out[f.Name] = f.decode(raw[f.Name])
	}
	return out
}

// ParseDocument decodes the JSON document submitted for an aggregate. Keys are
// section names, values are objects of section fields. A null section is the
// same as an absent one. An empty body is an empty document.
func ParseDocument(raw []byte) (map[string]Row, error) {
	sections := map[string]Row{}

	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return sections, nil
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	var doc map[string]json.RawMessage
	if err := dec.Decode(&doc); err != nil {
		return nil, types.Validation.New("document is not a JSON object: %v", err)
	}

	// sorted so that errors are deterministic
	keys := make([]string, 0, len(doc))
	for key := range doc {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		sec, ok := Describe(key)
		if !ok {
			return nil, types.Validation.New("unknown section %q", key)
		}
		if sec.Nested() {
			return nil, types.Validation.New("section %s is stored from an uploaded file", sec.Name)
		}
		if _, dup := sections[sec.Name]; dup {
			return nil, types.Validation.New("section %s given more than once", sec.Name)
		}

		fields, err := decodeObject(doc[key])
		if err != nil {
			return nil, types.Validation.New("section %s: %v", sec.Name, err)
		}
		if fields == nil {
			continue
		}

		row, err := sec.Normalize(fields)
		if err != nil {
			return nil, err
		}
		sections[sec.Name] = row
	}

	return sections, nil
}

// ParseSection decodes the JSON body of a single section
func ParseSection(sec *Section, raw []byte) (Row, error) {
	fields, err := decodeObject(raw)
	if err != nil {
		return nil, types.Validation.New("section %s: %v", sec.Name, err)
	}
	if fields == nil {
		fields = map[string]any{}
	}
	return sec.Normalize(fields)
}

func decodeObject(raw []byte) (map[string]any, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	var fields map[string]any
	if err := dec.Decode(&fields); err != nil {
		return nil, err
	}
	return fields, nil
}

func asString(v any) any {
	switch t := v.(type) {
	case []byte:
		return string(t)
	case nil:
		return nil
	}
	return v
}
