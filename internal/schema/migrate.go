package schema

import (
	"fmt"
	"strings"

	"gorm.io/gorm"
)

// columnType maps a field kind to the column type of a dialect
func columnType(dialect string, k Kind) string {
	switch dialect {
	case "mysql":
		return [...]string{"TINYINT(1)", "BIGINT", "DOUBLE", "VARCHAR(255)", "TEXT", "DATE", "DATETIME(3)"}[k]
	case "postgres":
		return [...]string{"BOOLEAN", "BIGINT", "DOUBLE PRECISION", "VARCHAR(255)", "TEXT", "DATE", "TIMESTAMPTZ"}[k]
	case "sqlserver":
		return [...]string{"BIT", "BIGINT", "FLOAT", "NVARCHAR(255)", "NVARCHAR(MAX)", "DATE", "DATETIME2"}[k]
	}
	return [...]string{"BOOLEAN", "INTEGER", "REAL", "TEXT", "TEXT", "DATE", "DATETIME"}[k]
}

func idType(dialect string) string {
	if dialect == "sqlserver" {
		return "NVARCHAR(36)"
	}
	return "VARCHAR(36)"
}

func quote(dialect, name string) string {
	switch dialect {
	case "mysql":
		return "`" + name + "`"
	case "sqlserver":
		return "[" + name + "]"
	}
	return `"` + name + `"`
}

func indexName(sec *Section) string {
	return "idx_" + sec.Table + "_fk"
}

// CreateTableSQL returns the statements creating the table of one section
func CreateTableSQL(dialect string, sec *Section) []string {
	cols := []string{
		fmt.Sprintf("%s %s NOT NULL PRIMARY KEY", quote(dialect, "id"), idType(dialect)),
		fmt.Sprintf("%s %s NOT NULL", quote(dialect, sec.ForeignKey), idType(dialect)),
	}
	for _, f := range sec.Fields {
		cols = append(cols, fmt.Sprintf("%s %s NULL", quote(dialect, f.Name), columnType(dialect, f.Kind)))
	}

	return []string{
		fmt.Sprintf("CREATE TABLE %s (\n  %s\n)", quote(dialect, sec.Table), strings.Join(cols, ",\n  ")),
		fmt.Sprintf("CREATE INDEX %s ON %s (%s)",
			quote(dialect, indexName(sec)), quote(dialect, sec.Table), quote(dialect, sec.ForeignKey)),
	}
}

// DDL returns the statements creating every section table for a dialect
func DDL(dialect string) []string {
	var stmts []string
	for _, sec := range Sections() {
		stmts = append(stmts, CreateTableSQL(dialect, sec)...)
	}
	return stmts
}

// Migrate creates missing section tables and adds columns registered since a
// table was created. Columns are never dropped or altered.
func Migrate(db *gorm.DB) error {
	dialect := db.Dialector.Name()
	migrator := db.Migrator()

	for _, sec := range Sections() {
		if !migrator.HasTable(sec.Table) {
			for _, stmt := range CreateTableSQL(dialect, sec) {
				if err := db.Exec(stmt).Error; err != nil {
					return fmt.Errorf("failed to create %s: %w", sec.Table, err)
				}
			}
			continue
		}

		for _, f := range sec.Fields {
			if migrator.HasColumn(sec.Table, f.Name) {
				continue
			}
			stmt := fmt.Sprintf("ALTER TABLE %s ADD %s %s NULL",
				quote(dialect, sec.Table), quote(dialect, f.Name), columnType(dialect, f.Kind))
			if err := db.Exec(stmt).Error; err != nil {
				return fmt.Errorf("failed to add %s.%s: %w", sec.Table, f.Name, err)
			}
		}
	}

	return nil
}
