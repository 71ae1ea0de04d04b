package activitypub

import (
	"errors"
	"net/http"

	"github.com/davecheney/pubmod/internal/activitypub"
	"github.com/davecheney/pubmod/internal/algorithms"
	"github.com/davecheney/pubmod/internal/httpx"
	"github.com/davecheney/pubmod/internal/to"
	"github.com/davecheney/pubmod/models"
	"github.com/go-chi/chi/v5"
	"gorm.io/gorm"
)

// PersonShow serves the document of a local person.
func PersonShow(env *Env, w http.ResponseWriter, r *http.Request) error {
	return actorShow(env, w, r, models.LocalPerson)
}

// CommunityShow serves the document of a local community.
func CommunityShow(env *Env, w http.ResponseWriter, r *http.Request) error {
	return actorShow(env, w, r, models.LocalGroup)
}

// ServiceShow serves the document of the instance actor.
func ServiceShow(env *Env, w http.ResponseWriter, r *http.Request) error {
	actor, err := models.NewActors(env.DB).FindLocal("actor", models.LocalService)
	if err != nil {
		return httpx.Error(http.StatusNotFound, err)
	}
	return to.Activity(w, actorDocument(actor))
}

func actorShow(env *Env, w http.ResponseWriter, r *http.Request, typ models.ActorType) error {
	actor, err := findLocal(env, r, typ)
	if err != nil {
		return err
	}
	return to.Activity(w, actorDocument(actor))
}

// ModeratorsShow serves the moderators collection of a local community.
func ModeratorsShow(env *Env, w http.ResponseWriter, r *http.Request) error {
	community, err := findLocal(env, r, models.LocalGroup)
	if err != nil {
		return err
	}
	mods, err := models.NewCommunities(env.DB).Moderators(community)
	if err != nil {
		return err
	}
	return to.Activity(w, &activitypub.OrderedCollection{
		Context:      "https://www.w3.org/ns/activitystreams",
		Type:         "OrderedCollection",
		ID:           community.ModeratorsURL,
		TotalItems:   len(mods),
		OrderedItems: algorithms.Map(mods, func(a *models.Actor) string { return a.URI }),
	})
}

// FollowersShow serves the followers collection of a local community.
// Only the number of followers is published.
func FollowersShow(env *Env, w http.ResponseWriter, r *http.Request) error {
	community, err := findLocal(env, r, models.LocalGroup)
	if err != nil {
		return err
	}
	var count int64
	if err := env.DB.Model(&models.CommunityFollower{}).Where("community_id = ?", community.ID).Count(&count).Error; err != nil {
		return err
	}
	return to.Activity(w, &activitypub.OrderedCollection{
		Context:      "https://www.w3.org/ns/activitystreams",
		Type:         "OrderedCollection",
		ID:           community.FollowersURL,
		TotalItems:   int(count),
		OrderedItems: []string{},
	})
}

// OutboxShow serves an empty outbox for a local actor.
func OutboxShow(env *Env, w http.ResponseWriter, r *http.Request) error {
	return to.Activity(w, &activitypub.OrderedCollection{
		Context:      "https://www.w3.org/ns/activitystreams",
		Type:         "OrderedCollection",
		ID:           env.Settings.ProtocolAndHostname() + r.URL.Path,
		OrderedItems: []string{},
	})
}

func findLocal(env *Env, r *http.Request, typ models.ActorType) (*models.Actor, error) {
	actor, err := models.NewActors(env.DB).FindLocal(chi.URLParam(r, "name"), typ)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, httpx.Error(http.StatusNotFound, err)
	}
	return actor, err
}

func actorDocument(actor *models.Actor) *activitypub.Actor {
	doc := &activitypub.Actor{
		Context:           []string{"https://www.w3.org/ns/activitystreams", "https://w3id.org/security/v1"},
		Type:              actor.Kind(),
		ID:                actor.URI,
		PreferredUsername: actor.Name,
		Name:              actor.DisplayName,
		Inbox:             actor.InboxURL,
		Outbox:            actor.URI + "/outbox",
		Followers:         actor.FollowersURL,
		Moderators:        actor.ModeratorsURL,
		PublicKey: activitypub.PublicKey{
			ID:           actor.PublicKeyID(),
			Owner:        actor.URI,
			PublicKeyPem: string(actor.PublicKey),
		},
	}
	doc.Endpoints.SharedInbox = actor.SharedInboxURL
	return doc
}
