package testutil

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/localnerve/medrecords/internal/attachments"
	"github.com/localnerve/medrecords/internal/config"
	"github.com/localnerve/medrecords/internal/database"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDB returns a migrated in-memory sqlite database. A single connection
// keeps every query on the same memory database.
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, database.AutoMigrate(db))
	return db
}

// AttachmentConfig places every slot under root
func AttachmentConfig(root string) config.AttachmentConfig {
	return config.AttachmentConfig{
		Driver: "fs",
		Slots: map[string]config.SlotConfig{
			config.SlotSignatures: {Dir: filepath.Join(root, "signatures"), BaseURL: "/files/signatures"},
			config.SlotDataImages: {Dir: filepath.Join(root, "data_images"), BaseURL: "/files/data_images"},
			config.SlotStudies:    {Dir: filepath.Join(root, "studies"), BaseURL: "/files/studies"},
		},
	}
}

// NewStore returns a prepared filesystem attachment store in a temp directory
func NewStore(t *testing.T) (*attachments.Store, string) {
	t.Helper()

	root := t.TempDir()
	store, err := attachments.New(context.Background(), AttachmentConfig(root), zap.NewNop())
	require.NoError(t, err)
	require.NoError(t, store.Prepare(context.Background()))
	return store, root
}

// Files lists the stored file names of a slot directory under root
func Files(t *testing.T, root string, slot attachments.Slot) []string {
	t.Helper()

	entries, err := os.ReadDir(filepath.Join(root, string(slot)))
	require.NoError(t, err)

	var names []string
	for _, e := range entries {
		if e.IsDir() || e.Name()[0] == '.' {
			continue
		}
		names = append(names, e.Name())
	}
	return names
}
