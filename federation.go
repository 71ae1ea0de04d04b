package main

import (
	"fmt"
	"time"

	"github.com/davecheney/pubmod/activitypub"
	internalap "github.com/davecheney/pubmod/internal/activitypub"
	"github.com/davecheney/pubmod/models"
	"gorm.io/gorm"
)

// Federation holds the flags shared by the commands which talk to
// remote instances.
type Federation struct {
	Domain           string   `required:"" help:"domain name of the instance" env:"PUBMOD_DOMAIN"`
	FetchLimit       int      `help:"remote fetches allowed per activity" default:"25" env:"PUBMOD_FETCH_LIMIT"`
	BlockedInstances []string `help:"instances whose activities are rejected" env:"PUBMOD_BLOCKED_INSTANCES"`
	AllowedInstances []string `help:"if set, the only instances whose activities are accepted" env:"PUBMOD_ALLOWED_INSTANCES"`
	CacheSize        int      `help:"number of remote actors to cache" default:"10000"`
}

// federation is the process wide state shared by every activitypub.Env.
type federation struct {
	settings *activitypub.Settings
	fetcher  activitypub.Fetcher
	cache    *activitypub.ActorCache
}

func (f *Federation) open(ctx *Context, db *gorm.DB) (*federation, error) {
	settings := &activitypub.Settings{
		Hostname:         f.Domain,
		Protocol:         "https",
		FetchLimit:       f.FetchLimit,
		RefreshInterval:  24 * time.Hour,
		BlockedInstances: f.BlockedInstances,
		AllowedInstances: f.AllowedInstances,
	}
	if ctx.Debug {
		settings.Protocol = "http"
		settings.RefreshInterval = 10 * time.Second
	}
	instance, err := models.NewInstances(db).FindByDomain(f.Domain)
	if err != nil {
		return nil, fmt.Errorf("failed to find instance %q: %w", f.Domain, err)
	}
	// remote fetches are signed by the instance actor
	client, err := internalap.NewClient(instance.Actor)
	if err != nil {
		return nil, fmt.Errorf("failed to create client: %w", err)
	}
	return &federation{
		settings: settings,
		fetcher:  client,
		cache:    activitypub.NewActorCache(f.CacheSize, settings.RefreshInterval),
	}, nil
}

func (f *federation) env(ctx *Context, db *gorm.DB) *activitypub.Env {
	return activitypub.NewEnv(&models.Env{
		DB:     db,
		Logger: ctx.Logger,
	}, f.settings, f.fetcher, f.cache)
}
