package models

import (
	"github.com/davecheney/pubmod/internal/snowflake"
	"gorm.io/gorm"
)

// An Instance is an ActivityPub domain managed by this server.
// An Instance has one service Actor which signs the requests the
// instance makes on its own behalf, such as fetching remote actors.
type Instance struct {
	ID      snowflake.ID `gorm:"primarykey;autoIncrement:false"`
	Domain  string       `gorm:"size:64;uniqueIndex;not null"`
	ActorID snowflake.ID `gorm:"not null"`
	Actor   *Actor       `gorm:"constraint:OnDelete:CASCADE;<-:false;"`
}

type Instances struct {
	db *gorm.DB
}

func NewInstances(db *gorm.DB) *Instances {
	return &Instances{db: db}
}

// FindByDomain finds an instance by domain.
func (i *Instances) FindByDomain(domain string) (*Instance, error) {
	var instance Instance
	return &instance, i.db.Preload("Actor").Where("domain = ?", domain).Take(&instance).Error
}

// Create creates a new instance, complete with its service actor.
func (i *Instances) Create(protocol, domain string) (*Instance, error) {
	var instance Instance
	err := i.db.Transaction(func(tx *gorm.DB) error {
		actor, err := NewActors(tx).CreateLocal(protocol, domain, "actor", LocalService)
		if err != nil {
			return err
		}
		instance = Instance{
			ID:      snowflake.Now(),
			Domain:  domain,
			ActorID: actor.ID,
			Actor:   actor,
		}
		return tx.Create(&instance).Error
	})
	return &instance, err
}
