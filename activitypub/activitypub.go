// Package activitypub implements federation of community moderation
// activities: parsing and verifying inbound Block and Undo(Block)
// activities, applying their effect, and publishing them to remote inboxes.
package activitypub

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/davecheney/pubmod/internal/snowflake"
	"github.com/davecheney/pubmod/models"
	"github.com/go-json-experiment/json"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// PublicAddress is the distinguished recipient meaning the activity is public.
const PublicAddress = "https://www.w3.org/ns/activitystreams#Public"

// defaultContext is the @context of activities created by this instance.
var defaultContext = json.RawValue(`["https://www.w3.org/ns/activitystreams","https://w3id.org/security/v1"]`)

// Settings are the federation settings of this instance.
type Settings struct {
	// Hostname is the host this instance serves, eg. pubmod.example.
	Hostname string
	// Protocol is the scheme of local URIs, https unless in debug mode.
	Protocol string
	// FetchLimit is the number of remote fetches a single inbound
	// activity may cause.
	FetchLimit int
	// RefreshInterval is how long a remote actor is trusted before it is
	// fetched again.
	RefreshInterval time.Duration
	// BlockedInstances are domains whose activities are rejected.
	BlockedInstances []string
	// AllowedInstances, if not empty, are the only remote domains whose
	// activities are accepted.
	AllowedInstances []string
}

// DefaultFetchLimit is the default value of Settings.FetchLimit.
const DefaultFetchLimit = 25

// ProtocolAndHostname returns the base URL of local objects.
func (s *Settings) ProtocolAndHostname() string {
	return s.Protocol + "://" + s.Hostname
}

// IsLocal reports whether uri names an object on this instance.
func (s *Settings) IsLocal(uri string) bool {
	u, err := url.Parse(uri)
	return err == nil && u.Host == s.Hostname
}

func (s *Settings) instanceAllowed(domain string) bool {
	if domain == s.Hostname {
		return true
	}
	for _, blocked := range s.BlockedInstances {
		if blocked == domain {
			return false
		}
	}
	if len(s.AllowedInstances) == 0 {
		return true
	}
	for _, allowed := range s.AllowedInstances {
		if allowed == domain {
			return true
		}
	}
	return false
}

// GenerateActivityID returns a fresh activity id for an activity of the
// given kind, eg. https://pubmod.example/activities/undo/<uuid>.
func GenerateActivityID(s *Settings, kind string) string {
	return fmt.Sprintf("%s/activities/%s/%s", s.ProtocolAndHostname(), strings.ToLower(kind), uuid.New())
}

// BanStore applies community bans.
type BanStore interface {
	Ban(ctx context.Context, communityID, personID snowflake.ID) error
	Unban(ctx context.Context, communityID, personID snowflake.ID) error
}

// Env is the environment of a single request or unit of work.
type Env struct {
	*models.Env
	Settings  *Settings
	Resolver  *Resolver
	Deliverer Deliverer
	Bans      BanStore
}

// NewEnv returns an Env whose collaborators all use env.DB. cache is
// shared between every Env of the process.
func NewEnv(env *models.Env, settings *Settings, fetcher Fetcher, cache *ActorCache) *Env {
	return &Env{
		Env:       env,
		Settings:  settings,
		Resolver:  NewResolver(env.DB, settings, fetcher, cache),
		Deliverer: NewQueueDeliverer(env.DB, settings),
		Bans:      models.NewBans(env.DB),
	}
}

// WithDB returns a copy of e whose storage uses db, typically a
// transaction. The fetcher and actor cache are shared with e.
func (e *Env) WithDB(db *gorm.DB) *Env {
	c := *e
	c.Env = &models.Env{
		DB:     db,
		Logger: e.Logger,
	}
	c.Resolver = e.Resolver.withDB(db)
	if _, ok := e.Deliverer.(*QueueDeliverer); ok {
		c.Deliverer = NewQueueDeliverer(db, e.Settings)
	}
	if _, ok := e.Bans.(*models.Bans); ok {
		c.Bans = models.NewBans(db)
	}
	return &c
}

// NewRequestCounter returns a RequestCounter for a single unit of work
// with the configured fetch limit.
func (e *Env) NewRequestCounter() *RequestCounter {
	return NewRequestCounter(e.Settings.FetchLimit)
}
