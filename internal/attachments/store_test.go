package attachments

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/localnerve/medrecords/internal/config"
	"github.com/localnerve/medrecords/internal/types"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func testConfig(root string) config.AttachmentConfig {
	return config.AttachmentConfig{
		Driver: "fs",
		Slots: map[string]config.SlotConfig{
			config.SlotSignatures: {Dir: filepath.Join(root, "signatures"), BaseURL: "https://files.example.com/signatures/"},
			config.SlotDataImages: {Dir: filepath.Join(root, "data_images"), BaseURL: "https://files.example.com/data-images"},
			config.SlotStudies:    {Dir: filepath.Join(root, "studies"), BaseURL: "https://files.example.com/studies"},
		},
	}
}

func newTestStore(t *testing.T) (*Store, string) {
	t.Helper()
	root := t.TempDir()
	store, err := New(context.Background(), testConfig(root), zap.NewNop())
	require.NoError(t, err)
	require.NoError(t, store.Prepare(context.Background()))
	return store, root
}

func TestSaveWritesFileAndBuildsURL(t *testing.T) {
	ctx := context.Background()
	store, root := newTestStore(t)

	url, err := store.Save(ctx, Signatures, []byte("png-bytes"), "Firma Final.PNG")
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(url, "https://files.example.com/signatures/"), url)
	require.True(t, strings.HasSuffix(url, ".png"), url)

	slot, name, ok := store.Resolve(url)
	require.True(t, ok)
	require.Equal(t, Signatures, slot)

	data, err := os.ReadFile(filepath.Join(root, "signatures", name))
	require.NoError(t, err)
	require.Equal(t, "png-bytes", string(data))

	other, err := store.Save(ctx, Signatures, []byte("png-bytes"), "Firma Final.PNG")
	require.NoError(t, err)
	require.NotEqual(t, url, other)
}

func TestExtension(t *testing.T) {
	require.Equal(t, ".pdf", extension("report.PDF"))
	require.Equal(t, ".jpg", extension(`C:\scans\xray.jpg`))
	require.Equal(t, "", extension("noext"))
	require.Equal(t, "", extension("weird.p$f"))
}

func TestSaveUnknownSlot(t *testing.T) {
	store, _ := newTestStore(t)

	_, err := store.Save(context.Background(), Slot("avatars"), []byte("x"), "a.png")
	require.True(t, types.Storage.Has(err))
}

func TestSaveFailsWhenDirectoryMissing(t *testing.T) {
	root := t.TempDir()
	store, err := New(context.Background(), testConfig(root), zap.NewNop())
	require.NoError(t, err)

	// Prepare was never run, so the slot directory does not exist
	_, err = store.Save(context.Background(), Studies, []byte("x"), "a.pdf")
	require.True(t, types.Storage.Has(err))

	entries, _ := os.ReadDir(root)
	require.Empty(t, entries)
}

func TestDeleteIsBestEffort(t *testing.T) {
	ctx := context.Background()
	store, root := newTestStore(t)

	url, err := store.Save(ctx, DataImages, []byte("jpeg"), "scan.jpg")
	require.NoError(t, err)
	_, name, _ := store.Resolve(url)

	store.Delete(ctx, url)
	_, err = os.Stat(filepath.Join(root, "data_images", name))
	require.True(t, errors.Is(err, os.ErrNotExist))

	// deleting again, or deleting something unknown, never panics or fails
	store.Delete(ctx, url)
	store.Delete(ctx, "https://elsewhere.example.com/x.png")
	store.Delete(ctx, "https://files.example.com/data-images/../../etc/passwd")
}

func TestReplace(t *testing.T) {
	ctx := context.Background()
	store, root := newTestStore(t)

	oldURL, err := store.Save(ctx, Signatures, []byte("v1"), "sig.png")
	require.NoError(t, err)

	newURL, err := store.Replace(ctx, Signatures, oldURL, []byte("v2"), "sig.png")
	require.NoError(t, err)
	require.NotEqual(t, oldURL, newURL)

	names, err := os.ReadDir(filepath.Join(root, "signatures"))
	require.NoError(t, err)
	require.Len(t, names, 1)

	_, name, _ := store.Resolve(newURL)
	require.Equal(t, name, names[0].Name())
}

func TestResolveRejectsTraversal(t *testing.T) {
	store, _ := newTestStore(t)

	_, _, ok := store.Resolve("https://files.example.com/studies/../signatures/a.png")
	require.False(t, ok)
	_, _, ok = store.Resolve("https://files.example.com/studies/")
	require.False(t, ok)
}

func TestOrphans(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestStore(t)

	kept, err := store.Save(ctx, Studies, []byte("a"), "a.pdf")
	require.NoError(t, err)
	lost, err := store.Save(ctx, Studies, []byte("b"), "b.pdf")
	require.NoError(t, err)

	orphans, err := store.Orphans(ctx, Studies, map[string]bool{kept: true}, time.Now())
	require.NoError(t, err)
	require.Equal(t, []string{lost}, orphans)

	// files newer than the cutoff are never reported
	orphans, err = store.Orphans(ctx, Studies, map[string]bool{kept: true}, time.Now().Add(-time.Hour))
	require.NoError(t, err)
	require.Empty(t, orphans)
}

func TestFSPutNeverOverwrites(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()
	backend := NewFSBackend(map[Slot]string{Studies: root})
	require.NoError(t, backend.Prepare(ctx, Studies))

	require.NoError(t, backend.Put(ctx, Studies, "a.pdf", []byte("first")))
	require.Error(t, backend.Put(ctx, Studies, "a.pdf", []byte("second")))

	data, err := os.ReadFile(filepath.Join(root, "a.pdf"))
	require.NoError(t, err)
	require.Equal(t, "first", string(data))

	files, err := backend.List(ctx, Studies)
	require.NoError(t, err)
	require.Len(t, files, 1)
	require.Equal(t, "a.pdf", files[0].Name)
	require.False(t, files[0].ModTime.IsZero())
}
