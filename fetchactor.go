package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/davecheney/pubmod/internal/webfinger"
	"github.com/go-json-experiment/json"
	"gorm.io/gorm"
)

type FetchActorCmd struct {
	Federation

	Actor string `arg:"" help:"URI or handle, eg. !golang@lemmy.example, of the actor to fetch"`
}

func (f *FetchActorCmd) Run(ctx *Context) error {
	db, err := gorm.Open(ctx.Dialector, &ctx.Config)
	if err != nil {
		return err
	}
	fed, err := f.open(ctx, db)
	if err != nil {
		return err
	}
	env := fed.env(ctx, db)

	bg := context.Background()
	uri := f.Actor
	if !strings.HasPrefix(uri, "http://") && !strings.HasPrefix(uri, "https://") {
		acct, err := webfinger.Parse(uri)
		if err != nil {
			return err
		}
		wf, err := acct.Fetch(bg, fed.settings.Protocol)
		if err != nil {
			return fmt.Errorf("failed to fetch webfinger for %s: %w", acct, err)
		}
		if uri, err = wf.ActivityPub(); err != nil {
			return err
		}
	}

	counter := env.NewRequestCounter()
	actor, err := env.Resolver.ResolveActor(bg, uri, counter)
	if err != nil {
		return err
	}
	ctx.Logger.Info("fetched actor", "uri", actor.URI, "type", actor.Type, "fetches", counter.Count())
	return json.MarshalOptions{}.MarshalFull(json.EncodeOptions{Indent: "  "}, os.Stdout, actor)
}
