package main

import (
	"fmt"

	"github.com/davecheney/pubmod/models"
	"gorm.io/gorm"
)

type CreateCommunityCmd struct {
	Domain     string   `required:"" help:"domain name of the instance"`
	Name       string   `required:"" help:"name of the community to create"`
	Moderators []string `help:"names of the local people who moderate the community"`
}

func (c *CreateCommunityCmd) Run(ctx *Context) error {
	db, err := gorm.Open(ctx.Dialector, &ctx.Config)
	if err != nil {
		return err
	}
	return db.Transaction(func(tx *gorm.DB) error {
		if _, err := models.NewInstances(tx).FindByDomain(c.Domain); err != nil {
			return fmt.Errorf("failed to find instance %q: %w", c.Domain, err)
		}
		actors := models.NewActors(tx)
		community, err := actors.CreateLocal(protocol(ctx), c.Domain, c.Name, models.LocalGroup)
		if err != nil {
			return err
		}
		communities := models.NewCommunities(tx)
		for _, name := range c.Moderators {
			mod, err := actors.FindLocal(name, models.LocalPerson)
			if err != nil {
				return fmt.Errorf("failed to find moderator %q: %w", name, err)
			}
			if err := communities.AddModerator(community, mod); err != nil {
				return err
			}
		}
		fmt.Println("created community", community.URI)
		return nil
	})
}
