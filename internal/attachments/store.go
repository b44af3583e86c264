// store.go
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

package attachments

import (
	"context"
	"fmt"
	"path"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/localnerve/medrecords/internal/config"
	"github.com/localnerve/medrecords/internal/types"
	"go.uber.org/zap"
)

// Slot is a logical attachment location with its own directory and base URL
type Slot string

const (
	Signatures Slot = config.SlotSignatures
	DataImages Slot = config.SlotDataImages
	Studies    Slot = config.SlotStudies
)

var extPattern = regexp.MustCompile(`^\.[a-z0-9]{1,10}$`)

// Backend persists the bytes of stored files. Names are flat, one namespace
// per slot.
type Backend interface {
	Prepare(ctx context.Context, slot Slot) error
	Put(ctx context.Context, slot Slot, name string, data []byte) error
	Delete(ctx context.Context, slot Slot, name string) (bool, error)
	List(ctx context.Context, slot Slot) ([]Entry, error)
}

// Entry is one stored file as listed by a backend
type Entry struct {
	Name    string
	ModTime time.Time
}

// Store maps attachment slots to stored files and their public URLs
type Store struct {
	backend Backend
	bases   map[Slot]string
	log     *zap.Logger
}

// New builds a store on the backend selected by the configuration
func New(ctx context.Context, cfg config.AttachmentConfig, log *zap.Logger) (*Store, error) {
	var backend Backend
	switch cfg.Driver {
	case "fs":
		dirs := make(map[Slot]string, len(cfg.Slots))
		for name, slot := range cfg.Slots {
			dirs[Slot(name)] = slot.Dir
		}
		backend = NewFSBackend(dirs)
	case "s3":
		b, err := NewS3Backend(ctx, cfg.S3)
		if err != nil {
			return nil, types.Storage.Wrap(err)
		}
		backend = b
	default:
		return nil, types.Storage.New("unsupported attachment driver %q", cfg.Driver)
	}
	return NewWithBackend(backend, cfg, log), nil
}

// NewWithBackend builds a store on an explicit backend
func NewWithBackend(backend Backend, cfg config.AttachmentConfig, log *zap.Logger) *Store {
	bases := make(map[Slot]string, len(cfg.Slots))
	for name, slot := range cfg.Slots {
		bases[Slot(name)] = strings.TrimSuffix(slot.BaseURL, "/")
	}
	return &Store{backend: backend, bases: bases, log: log.Named("attachments")}
}

// Slots lists the configured slots
func (s *Store) Slots() []Slot {
	out := make([]Slot, 0, len(s.bases))
	for _, slot := range []Slot{Signatures, DataImages, Studies} {
		if _, ok := s.bases[slot]; ok {
			out = append(out, slot)
		}
	}
	return out
}

// Prepare makes every slot ready to accept files. It is an explicit startup step.
func (s *Store) Prepare(ctx context.Context) error {
	for _, slot := range s.Slots() {
		if err := s.backend.Prepare(ctx, slot); err != nil {
			return types.Storage.New("slot %s is not writable: %v", slot, err)
		}
	}
	return nil
}

// Save stores data under a fresh name keeping the original extension and
// returns its public URL. A URL is only returned once the file is stored.
func (s *Store) Save(ctx context.Context, slot Slot, data []byte, originalName string) (string, error) {
	base, ok := s.bases[slot]
	if !ok {
		return "", types.Storage.New("unknown attachment slot %q", slot)
	}

	name := uuid.NewString() + extension(originalName)
	if err := s.backend.Put(ctx, slot, name, data); err != nil {
		observe("save", slot, err)
		return "", types.Storage.Wrap(err)
	}
	observe("save", slot, nil)

	s.log.Debug("stored attachment", zap.String("slot", string(slot)), zap.String("name", name), zap.Int("bytes", len(data)))
	return base + "/" + name, nil
}

// Replace removes the file behind oldURL, best-effort, then saves data.
// Transactional writers save first and delete the old file after commit
// instead, so a rolled back update keeps its file.
func (s *Store) Replace(ctx context.Context, slot Slot, oldURL string, data []byte, originalName string) (string, error) {
	if oldURL != "" {
		s.Delete(ctx, oldURL)
	}
	return s.Save(ctx, slot, data, originalName)
}

// Delete removes the file behind url. Failures are logged and never returned.
func (s *Store) Delete(ctx context.Context, url string) {
	slot, name, ok := s.Resolve(url)
	if !ok {
		s.log.Warn("attachment url matches no slot", zap.String("url", url))
		return
	}

	existed, err := s.backend.Delete(ctx, slot, name)
	observe("delete", slot, err)
	if err != nil {
		s.log.Warn("failed to delete attachment", zap.String("url", url), zap.Error(err))
		return
	}
	if !existed {
		s.log.Info("attachment already gone", zap.String("url", url))
	}
}

// DeleteAll deletes every url, best-effort
func (s *Store) DeleteAll(ctx context.Context, urls []string) {
	for _, url := range urls {
		s.Delete(ctx, url)
	}
}

// Resolve maps a public URL back to its slot and stored name
func (s *Store) Resolve(url string) (Slot, string, bool) {
	for slot, base := range s.bases {
		name, found := strings.CutPrefix(url, base+"/")
		if !found {
			continue
		}
		if _, err := sanitizeName(name); err != nil {
			continue
		}
		return slot, name, true
	}
	return "", "", false
}

// URL builds the public URL of a stored name
func (s *Store) URL(slot Slot, name string) string {
	return s.bases[slot] + "/" + name
}

// Orphans lists stored files of a slot whose URL is not in referenced.
// Files modified after cutoff are left out, they may belong to a write that
// has not committed yet.
func (s *Store) Orphans(ctx context.Context, slot Slot, referenced map[string]bool, cutoff time.Time) ([]string, error) {
	files, err := s.backend.List(ctx, slot)
	if err != nil {
		return nil, types.Storage.Wrap(err)
	}

	var orphans []string
	for _, f := range files {
		if f.ModTime.After(cutoff) {
			continue
		}
		if url := s.URL(slot, f.Name); !referenced[url] {
			orphans = append(orphans, url)
		}
	}
	return orphans, nil
}

// extension keeps a short alphanumeric extension of the uploaded name
func extension(originalName string) string {
	ext := strings.ToLower(path.Ext(strings.ReplaceAll(originalName, `\`, "/")))
	if !extPattern.MatchString(ext) {
		return ""
	}
	return ext
}

// sanitizeName ensures a stored name cannot escape its slot
func sanitizeName(name string) (string, error) {
	if strings.TrimSpace(name) == "" {
		return "", fmt.Errorf("empty name")
	}
	if strings.ContainsAny(name, `/\`) || strings.Contains(name, "..") || strings.HasPrefix(name, ".") {
		return "", fmt.Errorf("invalid name %q", name)
	}
	return name, nil
}
