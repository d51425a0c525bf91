package storage

import (
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"sort"
)

//go:embed migrations/*.sql
var schemaFS embed.FS

// migrate brings the database to the current schema by executing every
// embedded *.up.sql script in lexical order. Scripts use CREATE TABLE IF
// NOT EXISTS, so reopening an existing file is safe. OpenSQLite calls this
// before handing out a repository.
func migrate(db *sql.DB) error {
	return runSchemaScripts(db, ".up.sql")
}

// reset tears down everything migrate created, in reverse dependency
// order. Tests use it to prove the up/down pair stays symmetric.
func reset(db *sql.DB) error {
	return runSchemaScripts(db, ".down.sql")
}

func runSchemaScripts(db *sql.DB, suffix string) error {
	names, err := fs.Glob(schemaFS, "migrations/*"+suffix)
	if err != nil {
		return fmt.Errorf("list schema scripts: %w", err)
	}
	sort.Strings(names)
	for _, name := range names {
		script, err := schemaFS.ReadFile(name)
		if err != nil {
			return fmt.Errorf("read schema script %s: %w", name, err)
		}
		if _, err := db.Exec(string(script)); err != nil {
			return fmt.Errorf("run schema script %s: %w", name, err)
		}
	}
	return nil
}
