package activitypub

import (
	"context"
	"fmt"
	"io"
	"path"
	"testing"
	"time"

	"github.com/davecheney/pubmod/internal/activitypub"
	"github.com/davecheney/pubmod/internal/crypto"
	"github.com/davecheney/pubmod/internal/snowflake"
	"github.com/davecheney/pubmod/models"
	"github.com/go-json-experiment/json"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/slog"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

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

	err = db.AutoMigrate(models.AllTables()...)
	require.NoError(err)

	// enable foreign key constraints
	err = db.Exec("PRAGMA foreign_keys = ON").Error
	require.NoError(err)

	return db
}

func testSettings() *Settings {
	return &Settings{
		Hostname:        "pubmod.example",
		Protocol:        "https",
		FetchLimit:      DefaultFetchLimit,
		RefreshInterval: 24 * time.Hour,
	}
}

// fakeFetcher serves documents from memory and counts the fetches.
type fakeFetcher struct {
	docs    map[string]string
	gone    map[string]bool
	fetches []string
}

func newFakeFetcher() *fakeFetcher {
	return &fakeFetcher{
		docs: make(map[string]string),
		gone: make(map[string]bool),
	}
}

func (f *fakeFetcher) Fetch(ctx context.Context, uri string, obj any) error {
	f.fetches = append(f.fetches, uri)
	if f.gone[uri] {
		return fmt.Errorf("%s: %w", uri, activitypub.ErrGone)
	}
	doc, ok := f.docs[uri]
	if !ok {
		return fmt.Errorf("%s: %w", uri, activitypub.ErrNotFound)
	}
	return json.Unmarshal([]byte(doc), obj)
}

// addPerson publishes a person document at uri and returns its private key.
func (f *fakeFetcher) addPerson(t *testing.T, uri string) *crypto.Keypair {
	t.Helper()
	kp, err := crypto.GenerateRSAKeypair()
	require.NoError(t, err)
	doc, err := json.Marshal(&activitypub.Actor{
		Type:              "Person",
		ID:                uri,
		PreferredUsername: path.Base(uri),
		Inbox:             uri + "/inbox",
		PublicKey: activitypub.PublicKey{
			ID:           uri + "#main-key",
			Owner:        uri,
			PublicKeyPem: string(kp.PublicKey),
		},
	})
	require.NoError(t, err)
	f.docs[uri] = string(doc)
	return kp
}

// addGroup publishes a group document at uri whose moderators collection lists mods.
func (f *fakeFetcher) addGroup(t *testing.T, uri string, mods ...string) {
	t.Helper()
	kp, err := crypto.GenerateRSAKeypair()
	require.NoError(t, err)
	doc, err := json.Marshal(&activitypub.Actor{
		Type:       "Group",
		ID:         uri,
		Inbox:      uri + "/inbox",
		Followers:  uri + "/followers",
		Moderators: uri + "/moderators",
		PublicKey: activitypub.PublicKey{
			ID:           uri + "#main-key",
			Owner:        uri,
			PublicKeyPem: string(kp.PublicKey),
		},
	})
	require.NoError(t, err)
	f.docs[uri] = string(doc)
	if mods == nil {
		mods = []string{}
	}
	coll, err := json.Marshal(&activitypub.OrderedCollection{
		Type:         "OrderedCollection",
		ID:           uri + "/moderators",
		TotalItems:   len(mods),
		OrderedItems: mods,
	})
	require.NoError(t, err)
	f.docs[uri+"/moderators"] = string(coll)
}

// countingBans records the ban mutations applied.
type countingBans struct {
	*models.Bans
	bans, unbans int
}

func (c *countingBans) Ban(ctx context.Context, communityID, personID snowflake.ID) error {
	c.bans++
	return c.Bans.Ban(ctx, communityID, personID)
}

func (c *countingBans) Unban(ctx context.Context, communityID, personID snowflake.ID) error {
	c.unbans++
	return c.Bans.Unban(ctx, communityID, personID)
}

type delivery struct {
	activity  Outbound
	actor     *models.Actor
	community *models.Actor
	inboxes   []string
}

// recordingDeliverer records the activities handed to it.
type recordingDeliverer struct {
	deliveries []delivery
}

func (r *recordingDeliverer) Deliver(ctx context.Context, activity Outbound, actor, community *models.Actor, inboxes []string) error {
	r.deliveries = append(r.deliveries, delivery{activity, actor, community, inboxes})
	return nil
}

type testEnv struct {
	*Env
	fetcher   *fakeFetcher
	bans      *countingBans
	deliverer *recordingDeliverer
}

func newTestEnv(t *testing.T, tx *gorm.DB) *testEnv {
	t.Helper()
	fetcher := newFakeFetcher()
	env := NewEnv(&models.Env{
		DB:     tx,
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}, testSettings(), fetcher, NewActorCache(100, time.Hour))
	bans := &countingBans{Bans: models.NewBans(tx)}
	deliverer := new(recordingDeliverer)
	env.Bans = bans
	env.Deliverer = deliverer
	return &testEnv{
		Env:       env,
		fetcher:   fetcher,
		bans:      bans,
		deliverer: deliverer,
	}
}

func withType(typ models.ActorType) func(*models.Actor) {
	return func(a *models.Actor) {
		a.Type = typ
	}
}

func withSharedInbox(inbox string) func(*models.Actor) {
	return func(a *models.Actor) {
		a.SharedInboxURL = inbox
	}
}

// mockActor stores a fresh actor at uri, a person unless changed by opts.
func mockActor(t *testing.T, tx *gorm.DB, uri string, opts ...func(*models.Actor)) *models.Actor {
	t.Helper()
	require := require.New(t)
	kp, err := crypto.GenerateRSAKeypair()
	require.NoError(err)
	actor, err := actorFromDocument(uri, &activitypub.Actor{
		Type:  "Person",
		ID:    uri,
		Inbox: uri + "/inbox",
		PublicKey: activitypub.PublicKey{
			PublicKeyPem: string(kp.PublicKey),
		},
	})
	require.NoError(err)
	actor.ID = snowflake.Now()
	actor.PrivateKey = kp.PrivateKey
	for _, opt := range opts {
		opt(actor)
	}
	if actor.IsGroup() {
		actor.FollowersURL = uri + "/followers"
		actor.ModeratorsURL = uri + "/moderators"
	}
	require.NoError(tx.Create(actor).Error)
	return actor
}
