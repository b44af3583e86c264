// sweep.go
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
	"time"

	"github.com/localnerve/medrecords/internal/attachments"
	"github.com/localnerve/medrecords/internal/models"
	"github.com/localnerve/medrecords/internal/schema"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SweepReport lists the orphaned files found per slot
type SweepReport struct {
	DryRun  bool                          `json:"dry_run"`
	MinAge  string                        `json:"min_age"`
	Orphans map[attachments.Slot][]string `json:"orphans"`
	Removed int                           `json:"removed"`
}

// SweepOrphans finds stored files no row references and removes them unless
// dryRun is set. Files saved by a request whose transaction then failed end
// up here when their compensation could not delete them. Files younger than
// minAge are skipped since writes store files before their rows commit.
func SweepOrphans(ctx context.Context, db *gorm.DB, store *attachments.Store, dryRun bool, minAge time.Duration, log *zap.Logger) (*SweepReport, error) {
	cutoff := time.Now().Add(-minAge)
	referenced, err := referencedURLs(ctx, db)
	if err != nil {
		return nil, err
	}

	report := &SweepReport{DryRun: dryRun, MinAge: minAge.String(), Orphans: map[attachments.Slot][]string{}}
	for _, slot := range store.Slots() {
		orphans, err := store.Orphans(ctx, slot, referenced, cutoff)
		if err != nil {
			return nil, err
		}
		if len(orphans) == 0 {
			continue
		}
		report.Orphans[slot] = orphans
		log.Info("orphaned attachments", zap.String("slot", string(slot)), zap.Int("count", len(orphans)), zap.Bool("dry_run", dryRun))

		if !dryRun {
			store.DeleteAll(ctx, orphans)
			report.Removed += len(orphans)
		}
	}
	return report, nil
}

// referencedURLs collects every url column of file owning tables
func referencedURLs(ctx context.Context, db *gorm.DB) (map[string]bool, error) {
	tables := []string{models.StudyFile{}.TableName()}
	for _, sec := range schema.Sections() {
		if sec.OwnsAttachment() {
			tables = append(tables, sec.Table)
		}
	}

	referenced := map[string]bool{}
	for _, table := range tables {
		var urls []string
		if err := silent(db).WithContext(ctx).Table(table).
			Where("? IS NOT NULL", clause.Column{Name: "url"}).
			Pluck("url", &urls).Error; err != nil {
			return nil, err
		}
		for _, url := range urls {
			referenced[url] = true
		}
	}
	return referenced, nil
}
