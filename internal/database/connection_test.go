package database

import (
	"path/filepath"
	"testing"

	"github.com/localnerve/medrecords/internal/config"
	"github.com/localnerve/medrecords/internal/schema"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestDialectorDrivers(t *testing.T) {
	cfg := &config.Config{DBHost: "db", DBPort: "3306", DBDatabase: "records"}

	for dbType, name := range map[string]string{
		"mysql":        "mysql",
		"mariadb":      "mysql",
		"postgres":     "postgres",
		"sqlite":       "sqlite",
		"sqlite-nocgo": "sqlite",
		"sqlserver":    "sqlserver",
	} {
		cfg.DBType = dbType
		d, err := Dialector(cfg, "app", "secret")
		require.NoError(t, err, dbType)
		require.Equal(t, name, d.Name(), dbType)
	}

	cfg.DBType = "oracle"
	_, err := Dialector(cfg, "app", "secret")
	require.Error(t, err)
}

func TestConnectAndMigrateSQLite(t *testing.T) {
	for _, dbType := range []string{"sqlite", "sqlite-nocgo"} {
		t.Run(dbType, func(t *testing.T) {
			cfg := &config.Config{
				DBType:     dbType,
				DBDatabase: filepath.Join(t.TempDir(), "records.db"),
			}

			db, err := Connect(cfg, zap.NewNop())
			require.NoError(t, err)
			defer Close(db)

			require.NoError(t, AutoMigrate(db))
			require.True(t, db.Migrator().HasTable("medical_records"))
			require.True(t, db.Migrator().HasTable("study_files"))
			for _, sec := range schema.Sections() {
				require.True(t, db.Migrator().HasTable(sec.Table), sec.Table)
			}
		})
	}
}
