//go:build sqlite

package main

import (
	"strings"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func newDialector(dsn string) gorm.Dialector {
	// the default DSN names a mysql server.
	if strings.Contains(dsn, "@tcp(") {
		dsn = "pubmod.db"
	}
	return &sqlite.Dialector{
		DSN: dsn,
	}
}

func configureDB(db *gorm.DB) error {
	// ban and moderator rows cascade when an actor is deleted.
	return db.Exec("PRAGMA foreign_keys = ON").Error
}
