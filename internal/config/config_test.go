package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func setBaseEnv(t *testing.T) {
	t.Setenv("ENV_FILE", filepath.Join(t.TempDir(), "missing.env"))
	t.Setenv("DB_TYPE", "sqlite")
	t.Setenv("DB_DATABASE", "records.db")
	t.Setenv("SIGNATURES_BASE_URL", "https://files.example.com/signatures")
	t.Setenv("DATA_IMAGES_BASE_URL", "https://files.example.com/data-images")
	t.Setenv("STUDIES_BASE_URL", "https://files.example.com/studies")
}

func TestLoadSQLiteDefaults(t *testing.T) {
	setBaseEnv(t)

	cfg, err := Load()
	require.NoError(t, err)
	require.True(t, cfg.IsSQLite())
	require.Equal(t, "fs", cfg.Attachments.Driver)
	require.Equal(t, "data/signatures", cfg.Attachments.Slots[SlotSignatures].Dir)
	require.Equal(t, "Authorization", cfg.AuthCookie)
	require.Error(t, cfg.ValidateServer())
}

func TestLoadRequiresUsersForServerDatabases(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("DB_TYPE", "postgres")

	_, err := Load()
	require.ErrorContains(t, err, "DB_APP_USER")
}

func TestLoadRequiresBaseURL(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("STUDIES_BASE_URL", "")

	_, err := Load()
	require.ErrorContains(t, err, "studies")
}

func TestLoadS3RequiresBucket(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("BLOB_DRIVER", "s3")

	_, err := Load()
	require.ErrorContains(t, err, "S3_BUCKET")

	t.Setenv("S3_BUCKET", "records")
	t.Setenv("S3_PATH_STYLE", "true")
	cfg, err := Load()
	require.NoError(t, err)
	require.True(t, cfg.Attachments.S3.PathStyle)
}

func TestLoadReadsEnvFile(t *testing.T) {
	setBaseEnv(t)
	envFile := filepath.Join(t.TempDir(), "test.env")
	require.NoError(t, os.WriteFile(envFile, []byte("PORT=4100\nLOG_LEVEL=debug\n"), 0o600))
	t.Setenv("ENV_FILE", envFile)
	t.Cleanup(func() {
		os.Unsetenv("PORT")
		os.Unsetenv("LOG_LEVEL")
	})

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, "4100", cfg.Port)
	require.Equal(t, "debug", cfg.LogLevel)
}
