// registry.go
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

package schema

import (
	"sort"
	"strings"
)

// Parent table of every aggregate
const (
	ParentTable      = "medical_records"
	ParentForeignKey = "medical_record_id"
	tablePrefix      = "medical_record_"
)

// Stage orders section writes inside one aggregate transaction
type Stage int

const (
	// StageOwner sections own second-level sections and are written first
	StageOwner Stage = iota
	// StageRegular sections hang off the parent with no ordering needs
	StageRegular
	// StageNested sections are keyed by the id of their owning section
	StageNested
	// StageSignature sections are written last with the signing professional
	StageSignature
)

// Section describes one optional part of a medical record aggregate
type Section struct {
	Name       string
	Table      string
	ForeignKey string
	// Owner names the section whose row id this section references. Empty for
	// sections keyed by the parent record.
	Owner string
	// Slot names the attachment slot of the url field, empty when the section
	// owns no file.
	Slot   string
	Stage  Stage
	Fields []Field

	byName map[string]Field
}

// OwnsAttachment reports whether rows of this section reference a stored file
func (s *Section) OwnsAttachment() bool {
	return s.Slot != ""
}

// Nested reports whether this section is keyed by another section's id
func (s *Section) Nested() bool {
	return s.Owner != ""
}

// Field looks up a column by name
func (s *Section) Field(name string) (Field, bool) {
	f, ok := s.byName[name]
	return f, ok
}

// Columns lists every column of the section table, id and foreign key first
func (s *Section) Columns() []string {
	cols := make([]string, 0, len(s.Fields)+2)
	cols = append(cols, "id", s.ForeignKey)
	for _, f := range s.Fields {
		cols = append(cols, f.Name)
	}
	return cols
}

var (
	registry = map[string]*Section{}
	ordered  []*Section
	aliases  = map[string]string{}
)

func register(sec *Section) {
	if sec.Table == "" {
		sec.Table = tablePrefix + sec.Name
	}
	if sec.ForeignKey == "" {
		sec.ForeignKey = ParentForeignKey
	}
	sec.byName = make(map[string]Field, len(sec.Fields))
	for _, f := range sec.Fields {
		sec.byName[f.Name] = f
	}
	registry[sec.Name] = sec
	ordered = append(ordered, sec)
}

func alias(from, to string) {
	aliases[from] = to
}

// Describe resolves a section by name. The table-style name with the
// medical_record_ prefix and historic spellings are accepted.
func Describe(name string) (*Section, bool) {
	name = strings.TrimPrefix(strings.ToLower(strings.TrimSpace(name)), tablePrefix)
	if to, ok := aliases[name]; ok {
		name = to
	}
	sec, ok := registry[name]
	return sec, ok
}

// Sections returns every registered section in stage order, then by name
func Sections() []*Section {
	out := make([]*Section, len(ordered))
	copy(out, ordered)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Stage != out[j].Stage {
			return out[i].Stage < out[j].Stage
		}
		return out[i].Name < out[j].Name
	})
	return out
}

// NestedUnder returns the sections keyed by rows of the named owner section
func NestedUnder(owner string) []*Section {
	var out []*Section
	for _, sec := range Sections() {
		if sec.Owner == owner {
			out = append(out, sec)
		}
	}
	return out
}
