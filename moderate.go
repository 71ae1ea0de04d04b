package main

import (
	"context"
	"fmt"

	"github.com/davecheney/pubmod/activitypub"
	"github.com/davecheney/pubmod/models"
	"gorm.io/gorm"
)

// Moderation names the target of a ban or unban.
type Moderation struct {
	Federation

	Moderator string `required:"" help:"name of the local person performing the action"`
	Community string `required:"" help:"URI of the community"`
	Person    string `required:"" help:"URI of the person"`
}

type BanCmd struct {
	Moderation
}

func (b *BanCmd) Run(ctx *Context) error {
	return b.run(ctx, activitypub.BanFromCommunity)
}

type UnbanCmd struct {
	Moderation
}

func (u *UnbanCmd) Run(ctx *Context) error {
	return u.run(ctx, activitypub.UnbanFromCommunity)
}

func (m *Moderation) run(ctx *Context, action func(context.Context, *activitypub.Env, *models.Actor, *models.Actor, *models.Actor) error) error {
	db, err := gorm.Open(ctx.Dialector, &ctx.Config)
	if err != nil {
		return err
	}
	fed, err := m.open(ctx, db)
	if err != nil {
		return err
	}
	env := fed.env(ctx, db)

	bg := context.Background()
	mod, err := models.NewActors(db).FindLocal(m.Moderator, models.LocalPerson)
	if err != nil {
		return fmt.Errorf("failed to find moderator %q: %w", m.Moderator, err)
	}
	counter := env.NewRequestCounter()
	community, err := env.Resolver.ResolveCommunity(bg, m.Community, counter)
	if err != nil {
		return err
	}
	person, err := env.Resolver.ResolvePerson(bg, m.Person, counter)
	if err != nil {
		return err
	}
	return action(bg, env, community, person, mod)
}

type SiteBanCmd struct {
	Person string `arg:"" help:"URI of the person"`
	Lift   bool   `help:"lift the site ban instead"`
}

func (s *SiteBanCmd) Run(ctx *Context) error {
	db, err := gorm.Open(ctx.Dialector, &ctx.Config)
	if err != nil {
		return err
	}
	actors := models.NewActors(db)
	person, err := actors.FindByURI(s.Person)
	if err != nil {
		return fmt.Errorf("failed to find %q: %w", s.Person, err)
	}
	if person.IsGroup() {
		return fmt.Errorf("%s is a community", person.URI)
	}
	if err := actors.SetBanned(person, !s.Lift); err != nil {
		return err
	}
	ctx.Logger.Info("site ban updated", "person", person.URI, "banned", person.Banned)
	return nil
}
