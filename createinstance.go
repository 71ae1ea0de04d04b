package main

import (
	"fmt"

	"github.com/davecheney/pubmod/models"
	"gorm.io/gorm"
)

type CreateInstanceCmd struct {
	Domain string `required:"" help:"domain name of the instance to create"`
}

func (c *CreateInstanceCmd) Run(ctx *Context) error {
	db, err := gorm.Open(ctx.Dialector, &ctx.Config)
	if err != nil {
		return err
	}
	instance, err := models.NewInstances(db).Create(protocol(ctx), c.Domain)
	if err != nil {
		return err
	}
	fmt.Println("created instance", instance.Domain, "actor", instance.Actor.URI)
	return nil
}

// protocol returns the scheme of local URIs.
func protocol(ctx *Context) string {
	if ctx.Debug {
		return "http"
	}
	return "https"
}
