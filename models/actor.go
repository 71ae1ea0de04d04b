package models

import (
	"crypto/rsa"
	"time"

	"github.com/davecheney/pubmod/internal/crypto"
	"github.com/davecheney/pubmod/internal/snowflake"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/schema"
)

// An Actor is a Person, Group, or Service, local or remote.
// Communities are Actors of type Group or LocalGroup.
type Actor struct {
	ID             snowflake.ID `gorm:"primarykey;autoIncrement:false"`
	UpdatedAt      time.Time
	Type           ActorType `gorm:"default:'Person';not null"`
	URI            string    `gorm:"size:255;uniqueIndex;not null"`
	Name           string    `gorm:"size:64;index:idx_actor_name_domain;not null"`
	Domain         string    `gorm:"size:64;index:idx_actor_name_domain;not null"`
	DisplayName    string    `gorm:"size:255"`
	InboxURL       string    `gorm:"size:255;not null"`
	SharedInboxURL string    `gorm:"size:255"`
	FollowersURL   string    `gorm:"size:255"`
	ModeratorsURL  string    `gorm:"size:255"`
	PublicKey      []byte    `gorm:"not null"`
	// PrivateKey is only present for local actors.
	PrivateKey []byte
	// Admin marks a local person as an administrator of this instance.
	Admin bool `gorm:"not null;default:false"`
	// Banned marks a person as banned from the whole site.
	Banned          bool `gorm:"not null;default:false"`
	LastRefreshedAt time.Time
}

type ActorType string

const (
	Person       ActorType = "Person"
	Group        ActorType = "Group"
	Service      ActorType = "Service"
	LocalPerson  ActorType = "LocalPerson"
	LocalGroup   ActorType = "LocalGroup"
	LocalService ActorType = "LocalService"
)

func (ActorType) GormDBDataType(db *gorm.DB, field *schema.Field) string {
	switch db.Dialector.Name() {
	case "mysql", "postgres":
		return "enum('Person', 'Application', 'Service', 'Group', 'Organization', 'LocalPerson', 'LocalGroup', 'LocalService')"
	case "sqlite":
		return "TEXT"
	default:
		return ""
	}
}

// Inbox returns the actor's shared inbox URL if it has one, otherwise its inbox URL.
func (a *Actor) Inbox() string {
	if a.SharedInboxURL != "" {
		return a.SharedInboxURL
	}
	return a.InboxURL
}

// IsLocal indicates whether the actor is local to the instance.
func (a *Actor) IsLocal() bool {
	switch a.Type {
	case LocalPerson, LocalGroup, LocalService:
		return true
	default:
		return false
	}
}

// IsGroup indicates whether the actor is a community.
func (a *Actor) IsGroup() bool {
	return a.Type == Group || a.Type == LocalGroup
}

// Kind returns the ActivityStreams type of the actor.
func (a *Actor) Kind() string {
	switch a.Type {
	case LocalPerson:
		return string(Person)
	case LocalGroup:
		return string(Group)
	case LocalService:
		return string(Service)
	default:
		return string(a.Type)
	}
}

func (a *Actor) PublicKeyID() string {
	return a.URI + "#main-key"
}

// PrivKey returns the actor's parsed private key. Only local actors have one.
func (a *Actor) PrivKey() (*rsa.PrivateKey, error) {
	return crypto.ParseRSAPrivateKey(a.PrivateKey)
}

type Actors struct {
	db *gorm.DB
}

func NewActors(db *gorm.DB) *Actors {
	return &Actors{db: db}
}

// FindByURI returns an actor by its URI if it exists locally.
func (a *Actors) FindByURI(uri string) (*Actor, error) {
	var actor Actor
	return &actor, a.db.Take(&actor, "uri = ?", uri).Error
}

// FindLocal finds a local actor by name and type.
func (a *Actors) FindLocal(name string, typ ActorType) (*Actor, error) {
	var actor Actor
	return &actor, a.db.Take(&actor, "name = ? AND type = ?", name, typ).Error
}

// CreateLocal creates a new local actor, complete with keypair, whose
// documents are served from protocol://domain.
func (a *Actors) CreateLocal(protocol, domain, name string, typ ActorType) (*Actor, error) {
	kp, err := crypto.GenerateRSAKeypair()
	if err != nil {
		return nil, err
	}
	base := protocol + "://" + domain
	actor := &Actor{
		ID:              snowflake.Now(),
		Type:            typ,
		Name:            name,
		Domain:          domain,
		DisplayName:     name,
		SharedInboxURL:  base + "/inbox",
		PublicKey:       kp.PublicKey,
		PrivateKey:      kp.PrivateKey,
		LastRefreshedAt: time.Now(),
	}
	switch typ {
	case LocalGroup:
		actor.URI = base + "/c/" + name
		actor.FollowersURL = actor.URI + "/followers"
		actor.ModeratorsURL = actor.URI + "/moderators"
	case LocalService:
		actor.URI = base + "/" + name
	default:
		actor.URI = base + "/u/" + name
	}
	actor.InboxURL = actor.URI + "/inbox"
	return actor, a.db.Create(actor).Error
}

// Upsert inserts the actor, or updates the existing actor with the same URI.
// On return actor reflects the stored row, including its original ID.
func (a *Actors) Upsert(actor *Actor) error {
	if actor.ID == 0 {
		actor.ID = snowflake.Now()
	}
	err := a.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "uri"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"updated_at",
			"type",
			"name",
			"domain",
			"display_name",
			"inbox_url",
			"shared_inbox_url",
			"followers_url",
			"moderators_url",
			"public_key",
			"last_refreshed_at",
		}),
	}).Create(actor).Error
	if err != nil {
		return err
	}
	var saved Actor
	if err := a.db.Take(&saved, "uri = ?", actor.URI).Error; err != nil {
		return err
	}
	*actor = saved
	return nil
}

// IsBanned reports whether the actor with id is banned from the whole site.
func (a *Actors) IsBanned(id snowflake.ID) (bool, error) {
	var actor Actor
	err := a.db.Select("banned").Take(&actor, "id = ?", id).Error
	return actor.Banned, err
}

// SetBanned sets, or lifts, the site ban of actor.
func (a *Actors) SetBanned(actor *Actor, banned bool) error {
	if err := a.db.Model(&Actor{}).Where("id = ?", actor.ID).Update("banned", banned).Error; err != nil {
		return err
	}
	actor.Banned = banned
	return nil
}

// DeleteByURI deletes the actor with the given URI, if present.
func (a *Actors) DeleteByURI(uri string) error {
	return a.db.Where("uri = ?", uri).Delete(&Actor{}).Error
}
