//go:build !sqlite

package main

import (
	"net/url"
	"strings"
	"time"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

// dsnOptions are required for snowflake ordered timestamps to round trip.
var dsnOptions = url.Values{
	"charset":   {"utf8mb4"},
	"parseTime": {"True"},
	"loc":       {"UTC"},
}

func newDialector(dsn string) gorm.Dialector {
	return mysql.New(mysql.Config{
		DSN:                       mergeOptions(dsn, dsnOptions),
		SkipInitializeWithVersion: false,
	})
}

// mergeOptions adds each option to dsn unless dsn already sets it.
func mergeOptions(dsn string, options url.Values) string {
	base, query, _ := strings.Cut(dsn, "?")
	existing, err := url.ParseQuery(query)
	if err != nil {
		existing = url.Values{}
	}
	for k, v := range options {
		if !existing.Has(k) {
			existing[k] = v
		}
	}
	return base + "?" + existing.Encode()
}

func configureDB(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	// the delivery worker and the http server share the pool.
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetConnMaxLifetime(time.Hour)
	return nil
}
