package sqlite

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

const reportsSchema = `
	CREATE TABLE IF NOT EXISTS reports (
		id TEXT PRIMARY KEY,
		version TEXT NOT NULL,
		body TEXT NOT NULL,
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	);
`

var bootQueries = []string{
	reportsSchema,
}

type Settings struct {
	DbPath string
}

// NewDB opens (creating if needed) the local report database.
func NewDB(settings Settings) (*sql.DB, error) {
	db, err := sql.Open("sqlite", settings.DbPath)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite db at %s: %w", settings.DbPath, err)
	}

	for _, query := range bootQueries {
		if _, err := db.Exec(query); err != nil {
			db.Close()
			return nil, fmt.Errorf("bootstrapping sqlite db: %w", err)
		}
	}
	return db, nil
}
