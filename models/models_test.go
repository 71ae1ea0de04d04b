package models

import (
	"fmt"
	"testing"
	"time"

	"github.com/davecheney/pubmod/internal/crypto"
	"github.com/davecheney/pubmod/internal/snowflake"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// WithType sets the type of an actor.
func WithType(t ActorType) func(*Actor) {
	return func(a *Actor) {
		a.Type = t
	}
}

// WithSharedInbox sets the shared inbox of an actor.
func WithSharedInbox(inbox string) func(*Actor) {
	return func(a *Actor) {
		a.SharedInboxURL = inbox
	}
}

// MockActor creates a new actor in the database.
func MockActor(t *testing.T, tx *gorm.DB, name, domain string, opts ...func(*Actor)) *Actor {
	t.Helper()
	require := require.New(t)

	kp, err := crypto.GenerateRSAKeypair()
	require.NoError(err)

	actor := &Actor{
		ID:              snowflake.Now(),
		Type:            Person,
		URI:             fmt.Sprintf("https://%s/u/%s", domain, name),
		Name:            name,
		Domain:          domain,
		DisplayName:     name,
		InboxURL:        fmt.Sprintf("https://%s/u/%s/inbox", domain, name),
		PublicKey:       kp.PublicKey,
		PrivateKey:      kp.PrivateKey,
		LastRefreshedAt: time.Now(),
	}
	for _, opt := range opts {
		opt(actor)
	}
	require.NoError(tx.Create(actor).Error)
	return actor
}

// MockCommunity creates a new community in the database.
func MockCommunity(t *testing.T, tx *gorm.DB, name, domain string, opts ...func(*Actor)) *Actor {
	t.Helper()
	opts = append([]func(*Actor){
		WithType(Group),
		func(a *Actor) {
			a.URI = fmt.Sprintf("https://%s/c/%s", domain, name)
			a.InboxURL = a.URI + "/inbox"
			a.FollowersURL = a.URI + "/followers"
			a.ModeratorsURL = a.URI + "/moderators"
		},
	}, opts...)
	return MockActor(t, tx, name, domain, opts...)
}

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	require := require.New(t)
	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{
		TranslateError: true,
		Logger: logger.Default.LogMode(func() logger.LogLevel {
			return logger.Warn
		}()),
	})
	require.NoError(err)

	err = db.AutoMigrate(AllTables()...)
	require.NoError(err)

	// enable foreign key constraints
	err = db.Exec("PRAGMA foreign_keys = ON").Error
	require.NoError(err)

	return db
}
