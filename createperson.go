package main

import (
	"fmt"

	"github.com/davecheney/pubmod/models"
	"gorm.io/gorm"
)

type CreatePersonCmd struct {
	Domain string `required:"" help:"domain name of the instance"`
	Name   string `required:"" help:"name of the person to create"`
	Admin  bool   `help:"make the person an administrator of the instance"`
}

func (c *CreatePersonCmd) Run(ctx *Context) error {
	db, err := gorm.Open(ctx.Dialector, &ctx.Config)
	if err != nil {
		return err
	}
	return db.Transaction(func(tx *gorm.DB) error {
		if _, err := models.NewInstances(tx).FindByDomain(c.Domain); err != nil {
			return fmt.Errorf("failed to find instance %q: %w", c.Domain, err)
		}
		person, err := models.NewActors(tx).CreateLocal(protocol(ctx), c.Domain, c.Name, models.LocalPerson)
		if err != nil {
			return err
		}
		if c.Admin {
			if err := tx.Model(person).Update("admin", true).Error; err != nil {
				return err
			}
		}
		fmt.Println("created person", person.URI)
		return nil
	})
}
