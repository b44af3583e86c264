package schema_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/localnerve/medrecords/internal/schema"
	"github.com/localnerve/medrecords/internal/types"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func TestDescribe(t *testing.T) {
	sec, ok := schema.Describe("clinical_exam")
	require.True(t, ok)
	require.Equal(t, "medical_record_clinical_exam", sec.Table)
	require.Equal(t, "medical_record_id", sec.ForeignKey)
	require.False(t, sec.OwnsAttachment())

	img, ok := schema.Describe("medical_record_data_img")
	require.True(t, ok)
	require.Equal(t, "data_img", img.Name)
	require.Equal(t, "medical_record_data_id", img.ForeignKey)
	require.Equal(t, "data", img.Owner)
	require.Equal(t, "data_images", img.Slot)

	legacy, ok := schema.Describe("medical_record_surgerys")
	require.True(t, ok)
	require.Equal(t, "surgeries", legacy.Name)

	_, ok = schema.Describe("horoscope")
	require.False(t, ok)
}

func TestSectionsAreOrderedByStage(t *testing.T) {
	sections := schema.Sections()
	require.Len(t, sections, 29)
	require.Equal(t, "data", sections[0].Name)
	require.Equal(t, "signatures", sections[len(sections)-1].Name)

	seen := map[string]bool{}
	for _, sec := range sections {
		require.False(t, seen[sec.Table], "duplicate table %s", sec.Table)
		seen[sec.Table] = true
		if sec.Nested() {
			_, ok := schema.Describe(sec.Owner)
			require.True(t, ok, "owner of %s", sec.Name)
		}
	}

	nested := schema.NestedUnder("data")
	require.Len(t, nested, 1)
	require.Equal(t, "data_img", nested[0].Name)
}

func TestNormalize(t *testing.T) {
	habits, _ := schema.Describe("habits")

	row, err := habits.Normalize(map[string]any{
		"id":                "ignored",
		"medical_record_id": "ignored",
		"tobacco_use":       json.Number("1"),
		"alcohol_use":       false,
		"sleep_hours":       json.Number("7"),
		"diet_type":         nil,
	})
	require.NoError(t, err)
	require.Equal(t, schema.Row{
		"tobacco_use": true,
		"alcohol_use": false,
		"sleep_hours": int64(7),
		"diet_type":   nil,
	}, row)

	_, err = habits.Normalize(map[string]any{"favourite_colour": "blue"})
	require.True(t, types.Validation.Has(err))

	_, err = habits.Normalize(map[string]any{"tobacco_use": json.Number("2")})
	require.True(t, types.Validation.Has(err))

	_, err = habits.Normalize(map[string]any{"sleep_hours": json.Number("7.5")})
	require.True(t, types.Validation.Has(err))

	row, err = habits.Normalize(map[string]any{"tobacco_quantity": json.Number("20.0")})
	require.NoError(t, err)
	require.Equal(t, int64(20), row["tobacco_quantity"])

	for _, huge := range []any{json.Number("1e30"), json.Number("9223372036854775808"), float64(1e30), float64(-1e19)} {
		_, err = habits.Normalize(map[string]any{"tobacco_quantity": huge})
		require.True(t, types.Validation.Has(err), "%v", huge)
	}
	_, err = schema.ParseSection(habits, []byte(`{"tobacco_quantity": 1e30}`))
	require.True(t, types.Validation.Has(err))
}

func TestNormalizeDates(t *testing.T) {
	sig, _ := schema.Describe("signatures")

	row, err := sig.Normalize(map[string]any{"signed_at": "2026-03-02"})
	require.NoError(t, err)
	require.Equal(t, "2026-03-02", row["signed_at"])

	for _, bad := range []string{"2026-03-02garbage", "2026-03-02 10:00", "2026-13-01", "yesterday"} {
		_, err = sig.Normalize(map[string]any{"signed_at": bad})
		require.True(t, types.Validation.Has(err), bad)
	}
}

func TestNormalizeDropsManagedFields(t *testing.T) {
	sig, _ := schema.Describe("signatures")

	row, err := sig.Normalize(map[string]any{
		"url":       "https://evil.example.com/x.png",
		"licence":   "MN-1234",
		"signed_at": "2026-03-01T10:00:00Z",
	})
	require.NoError(t, err)
	require.Equal(t, schema.Row{"licence": "MN-1234", "signed_at": "2026-03-01"}, row)
}

func TestParseDocument(t *testing.T) {
	doc, err := schema.ParseDocument([]byte(`{
		"medical_record_clinical_exam": {"height_cm": 170, "weight_kg": 71.5},
		"habits": {"tobacco_use": 1},
		"skin_exam": null
	}`))
	require.NoError(t, err)
	require.Len(t, doc, 2)
	require.Equal(t, float64(170), doc["clinical_exam"]["height_cm"])
	require.Equal(t, 71.5, doc["clinical_exam"]["weight_kg"])
	require.Equal(t, true, doc["habits"]["tobacco_use"])

	empty, err := schema.ParseDocument([]byte("  "))
	require.NoError(t, err)
	require.Empty(t, empty)
}

func TestParseDocumentErrors(t *testing.T) {
	cases := map[string]string{
		"not json":        `{"clinical_exam":`,
		"array":           `[1,2]`,
		"unknown section": `{"astrology": {}}`,
		"nested section":  `{"data_img": {"url": "x"}}`,
		"duplicate":       `{"habits": {}, "medical_record_habits": {}}`,
		"section type":    `{"habits": "yes"}`,
		"field type":      `{"clinical_exam": {"height_cm": "tall"}}`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := schema.ParseDocument([]byte(body))
			require.Error(t, err)
			require.True(t, types.Validation.Has(err), err.Error())
		})
	}
}

func TestDecode(t *testing.T) {
	sig, _ := schema.Describe("signatures")
	at := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	row := sig.Decode(map[string]any{
		"id":                []byte("sig-1"),
		"medical_record_id": "rec-1",
		"url":               []byte("https://files.example.com/s.png"),
		"created_at":        at,
		"signed_at":         at,
	})
	require.Equal(t, "sig-1", row["id"])
	require.Equal(t, "https://files.example.com/s.png", row["url"])
	require.Equal(t, at, row["created_at"])
	require.Equal(t, "2026-03-01", row["signed_at"])
	require.Contains(t, row, "professional_id")
	require.Nil(t, row["professional_id"])

	habits, _ := schema.Describe("habits")
	row = habits.Decode(map[string]any{"tobacco_use": int64(1), "sleep_hours": []byte("8")})
	require.Equal(t, true, row["tobacco_use"])
	require.Equal(t, int64(8), row["sleep_hours"])

	row = habits.Decode(map[string]any{"tobacco_quantity": float64(1e30), "sleep_hours": float64(6)})
	require.Equal(t, float64(1e30), row["tobacco_quantity"])
	require.Equal(t, int64(6), row["sleep_hours"])

	row = sig.Decode(map[string]any{"signed_at": []byte("2026-03-01 00:00:00")})
	require.Equal(t, "2026-03-01", row["signed_at"])
}

func TestMigrate(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)

	require.NoError(t, schema.Migrate(db))
	// second run is a no-op
	require.NoError(t, schema.Migrate(db))

	for _, sec := range schema.Sections() {
		require.True(t, db.Migrator().HasTable(sec.Table), sec.Table)
		for _, col := range sec.Columns() {
			require.True(t, db.Migrator().HasColumn(sec.Table, col), "%s.%s", sec.Table, col)
		}
	}
}

func TestMigrateAddsNewColumns(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)

	require.NoError(t, db.Exec(`CREATE TABLE "medical_record_derivations" ("id" VARCHAR(36) NOT NULL PRIMARY KEY, "medical_record_id" VARCHAR(36) NOT NULL)`).Error)
	require.NoError(t, schema.Migrate(db))
	require.True(t, db.Migrator().HasColumn("medical_record_derivations", "specialists"))
}

func TestDDLPerDialect(t *testing.T) {
	sec, _ := schema.Describe("habits")

	mysql := schema.CreateTableSQL("mysql", sec)
	require.Contains(t, mysql[0], "`tobacco_use` TINYINT(1) NULL")

	pg := schema.CreateTableSQL("postgres", sec)
	require.Contains(t, pg[0], `"tobacco_use" BOOLEAN NULL`)

	mssql := schema.CreateTableSQL("sqlserver", sec)
	require.Contains(t, mssql[0], "[tobacco_use] BIT NULL")
	require.Contains(t, mssql[1], "[idx_medical_record_habits_fk]")

	require.Len(t, schema.DDL("sqlite"), 2*len(schema.Sections()))
}
