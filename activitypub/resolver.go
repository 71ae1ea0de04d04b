package activitypub

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/davecheney/pubmod/internal/activitypub"
	"github.com/davecheney/pubmod/models"
	"github.com/hashicorp/golang-lru/v2/expirable"
	"gorm.io/gorm"
)

// RequestCounter counts the remote fetches made on behalf of one unit of
// work. A RequestCounter is owned by a single goroutine.
type RequestCounter struct {
	limit int
	count int
}

// NewRequestCounter returns a RequestCounter which permits limit fetches.
func NewRequestCounter(limit int) *RequestCounter {
	return &RequestCounter{limit: limit}
}

// Count returns the number of fetches made so far.
func (c *RequestCounter) Count() int { return c.count }

func (c *RequestCounter) next() error {
	c.count++
	if c.count > c.limit {
		return fmt.Errorf("%w: %d fetches, limit %d", ErrFetchBudgetExceeded, c.count, c.limit)
	}
	return nil
}

// Fetcher fetches a remote ActivityPub document and decodes it into obj.
// *activitypub.Client is a Fetcher.
type Fetcher interface {
	Fetch(ctx context.Context, uri string, obj any) error
}

// ActorCache is a process wide cache of remote actors, safe for concurrent use.
type ActorCache struct {
	lru *expirable.LRU[string, models.Actor]
}

// NewActorCache returns an ActorCache of at most size actors, each kept for ttl.
func NewActorCache(size int, ttl time.Duration) *ActorCache {
	return &ActorCache{
		lru: expirable.NewLRU[string, models.Actor](size, nil, ttl),
	}
}

// get returns a copy of the cached actor.
func (c *ActorCache) get(uri string) (*models.Actor, bool) {
	actor, ok := c.lru.Get(uri)
	if !ok {
		return nil, false
	}
	return &actor, true
}

func (c *ActorCache) add(actor *models.Actor) {
	c.lru.Add(actor.URI, *actor)
}

func (c *ActorCache) remove(uri string) {
	c.lru.Remove(uri)
}

// Resolver turns actor URIs into models.Actors, fetching them from their
// home server when they are unknown or stale.
type Resolver struct {
	db       *gorm.DB
	settings *Settings
	fetcher  Fetcher
	cache    *ActorCache
}

func NewResolver(db *gorm.DB, settings *Settings, fetcher Fetcher, cache *ActorCache) *Resolver {
	return &Resolver{
		db:       db,
		settings: settings,
		fetcher:  fetcher,
		cache:    cache,
	}
}

func (r *Resolver) withDB(db *gorm.DB) *Resolver {
	return NewResolver(db, r.settings, r.fetcher, r.cache)
}

// ResolveActor resolves uri to an actor of any type. Each network fetch is
// charged to counter.
func (r *Resolver) ResolveActor(ctx context.Context, uri string, counter *RequestCounter) (*models.Actor, error) {
	if a, ok := r.cache.get(uri); ok && r.fresh(a) {
		return a, nil
	}
	actor, err := models.NewActors(r.db.WithContext(ctx)).FindByURI(uri)
	switch {
	case err == nil:
		if r.settings.IsLocal(uri) || r.fresh(actor) {
			if !actor.IsLocal() {
				r.cache.add(actor)
			}
			return actor, nil
		}
	case errors.Is(err, gorm.ErrRecordNotFound):
		if r.settings.IsLocal(uri) {
			// never fetch our own objects
			return nil, &ResolutionError{URI: uri, Err: ErrNotFound}
		}
	default:
		return nil, err
	}
	return r.fetch(ctx, uri, counter)
}

// ResolvePerson resolves uri to a person.
func (r *Resolver) ResolvePerson(ctx context.Context, uri string, counter *RequestCounter) (*models.Actor, error) {
	actor, err := r.ResolveActor(ctx, uri, counter)
	if err != nil {
		return nil, err
	}
	if actor.IsGroup() {
		return nil, &ResolutionError{URI: uri, Err: fmt.Errorf("%w: %s is not a person", ErrNotFound, actor.Kind())}
	}
	return actor, nil
}

// ResolveCommunity resolves uri to a community.
func (r *Resolver) ResolveCommunity(ctx context.Context, uri string, counter *RequestCounter) (*models.Actor, error) {
	actor, err := r.ResolveActor(ctx, uri, counter)
	if err != nil {
		return nil, err
	}
	if !actor.IsGroup() {
		return nil, &ResolutionError{URI: uri, Err: fmt.Errorf("%w: %s is not a community", ErrNotFound, actor.Kind())}
	}
	return actor, nil
}

func (r *Resolver) fresh(actor *models.Actor) bool {
	return actor.IsLocal() || time.Since(actor.LastRefreshedAt) < r.settings.RefreshInterval
}

func (r *Resolver) fetch(ctx context.Context, uri string, counter *RequestCounter) (*models.Actor, error) {
	if err := counter.next(); err != nil {
		remoteFetches.WithLabelValues("budget_exceeded").Inc()
		return nil, &ResolutionError{URI: uri, Err: err}
	}
	var doc activitypub.Actor
	if err := r.fetcher.Fetch(ctx, uri, &doc); err != nil {
		switch {
		case errors.Is(err, activitypub.ErrGone):
			remoteFetches.WithLabelValues("gone").Inc()
			r.cache.remove(uri)
			if err := models.NewActors(r.db.WithContext(ctx)).DeleteByURI(uri); err != nil {
				return nil, err
			}
			return nil, &ResolutionError{URI: uri, Err: ErrNotFound}
		case errors.Is(err, activitypub.ErrNotFound):
			remoteFetches.WithLabelValues("not_found").Inc()
			return nil, &ResolutionError{URI: uri, Err: ErrNotFound}
		default:
			remoteFetches.WithLabelValues("error").Inc()
			return nil, &ResolutionError{URI: uri, Err: err}
		}
	}
	remoteFetches.WithLabelValues("ok").Inc()

	actor, err := actorFromDocument(uri, &doc)
	if err != nil {
		return nil, &ResolutionError{URI: uri, Err: err}
	}

	// Moderators are resolved before anything is written so a failed
	// fetch leaves no trace of the community.
	var mods []*models.Actor
	replaceMods := actor.IsGroup() && doc.Moderators != ""
	if replaceMods {
		if mods, err = r.fetchModerators(ctx, doc.Moderators, counter); err != nil {
			return nil, err
		}
	}

	err = r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := models.NewActors(tx).Upsert(actor); err != nil {
			return err
		}
		if replaceMods {
			return models.NewCommunities(tx).ReplaceModerators(actor, mods)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	r.cache.add(actor)
	return actor, nil
}

func (r *Resolver) fetchModerators(ctx context.Context, uri string, counter *RequestCounter) ([]*models.Actor, error) {
	if err := counter.next(); err != nil {
		remoteFetches.WithLabelValues("budget_exceeded").Inc()
		return nil, &ResolutionError{URI: uri, Err: err}
	}
	var collection activitypub.OrderedCollection
	if err := r.fetcher.Fetch(ctx, uri, &collection); err != nil {
		remoteFetches.WithLabelValues("error").Inc()
		return nil, &ResolutionError{URI: uri, Err: err}
	}
	remoteFetches.WithLabelValues("ok").Inc()
	var mods []*models.Actor
	for _, item := range collection.OrderedItems {
		mod, err := r.ResolvePerson(ctx, item, counter)
		if err != nil {
			return nil, err
		}
		mods = append(mods, mod)
	}
	return mods, nil
}

// actorFromDocument converts a fetched actor document into an Actor. The
// document must describe the actor at uri.
func actorFromDocument(uri string, doc *activitypub.Actor) (*models.Actor, error) {
	if doc.ID != uri {
		return nil, fmt.Errorf("%w: document id %q", ErrOriginMismatch, doc.ID)
	}
	u, err := url.Parse(uri)
	if err != nil {
		return nil, err
	}
	var typ models.ActorType
	switch doc.Type {
	case "Person":
		typ = models.Person
	case "Group":
		typ = models.Group
	case "Service", "Application":
		typ = models.Service
	default:
		return nil, fmt.Errorf("%w: unsupported actor type %q", ErrMalformed, doc.Type)
	}
	switch {
	case doc.Inbox == "":
		return nil, fmt.Errorf("%w: missing inbox", ErrMalformed)
	case doc.PublicKey.PublicKeyPem == "":
		return nil, fmt.Errorf("%w: missing public key", ErrMalformed)
	case doc.PublicKey.Owner != "" && doc.PublicKey.Owner != uri:
		return nil, fmt.Errorf("%w: key owner %q", ErrOriginMismatch, doc.PublicKey.Owner)
	}
	name := doc.PreferredUsername
	if name == "" {
		name = u.Path[strings.LastIndex(u.Path, "/")+1:]
	}
	return &models.Actor{
		Type:            typ,
		URI:             uri,
		Name:            name,
		Domain:          u.Host,
		DisplayName:     doc.Name,
		InboxURL:        doc.Inbox,
		SharedInboxURL:  doc.Endpoints.SharedInbox,
		FollowersURL:    doc.Followers,
		ModeratorsURL:   doc.Moderators,
		PublicKey:       []byte(doc.PublicKey.PublicKeyPem),
		LastRefreshedAt: time.Now(),
	}, nil
}
