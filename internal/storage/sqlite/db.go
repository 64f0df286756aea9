// Package sqlite implements the repositories over a sqlite database
// with plain database/sql queries.
package sqlite

import (
	"database/sql"
	"embed"
	"fmt"

	"github.com/agalitsyn/sqlite"
)

//go:embed *.sql
var migrations embed.FS

// Connect opens the database and applies pending migrations.
func Connect(dbPath string) (*sql.DB, error) {
	db, err := sqlite.Connect(dbPath)
	if err != nil {
		return nil, err
	}
	if err := sqlite.MigrateUp(db, migrations); err != nil {
		db.Close()
		return nil, fmt.Errorf("could not apply migrations: %w", err)
	}
	return db, nil
}
