package attachments

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

const tempPrefix = ".tmp-"

// FSBackend keeps each slot in one flat directory on the local filesystem
type FSBackend struct {
	dirs map[Slot]string
}

// NewFSBackend returns a filesystem backend for the given slot directories
func NewFSBackend(dirs map[Slot]string) *FSBackend {
	return &FSBackend{dirs: dirs}
}

func (b *FSBackend) dir(slot Slot) (string, error) {
	dir, ok := b.dirs[slot]
	if !ok || dir == "" {
		return "", fmt.Errorf("no directory for slot %s", slot)
	}
	return dir, nil
}

func (b *FSBackend) pathFor(slot Slot, name string) (string, error) {
	dir, err := b.dir(slot)
	if err != nil {
		return "", err
	}
	clean, err := sanitizeName(name)
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, clean), nil
}

// Prepare creates the slot directory and checks it accepts files
func (b *FSBackend) Prepare(_ context.Context, slot Slot) error {
	dir, err := b.dir(slot)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	probe, err := os.CreateTemp(dir, tempPrefix+"probe-*")
	if err != nil {
		return err
	}
	_ = probe.Close()
	return os.Remove(probe.Name())
}

// Put writes to a temp file and links it into place. The link fails when
// the target exists, so a stored file is never overwritten.
func (b *FSBackend) Put(ctx context.Context, slot Slot, name string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	target, err := b.pathFor(slot, name)
	if err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(target), tempPrefix+"*")
	if err != nil {
		return err
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Link(tmp.Name(), target); err != nil {
		if errors.Is(err, fs.ErrExist) {
			return fmt.Errorf("file %s already exists", name)
		}
		return err
	}
	return nil
}

// Delete removes a stored file and reports whether it existed
func (b *FSBackend) Delete(_ context.Context, slot Slot, name string) (bool, error) {
	target, err := b.pathFor(slot, name)
	if err != nil {
		return false, err
	}
	err = os.Remove(target)
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// List returns the stored files of a slot, sorted by name
func (b *FSBackend) List(_ context.Context, slot Slot) ([]Entry, error) {
	dir, err := b.dir(slot)
	if err != nil {
		return nil, err
	}
	entries, err := os.ReadDir(dir)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var files []Entry
	for _, e := range entries {
		if e.IsDir() || strings.HasPrefix(e.Name(), ".") {
			continue
		}
		info, err := e.Info()
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, err
		}
		files = append(files, Entry{Name: e.Name(), ModTime: info.ModTime()})
	}
	sort.Slice(files, func(i, j int) bool { return files[i].Name < files[j].Name })
	return files, nil
}
