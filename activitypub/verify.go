package activitypub

import (
	"context"
	"net/url"

	"github.com/davecheney/pubmod/internal/algorithms"
	"github.com/davecheney/pubmod/models"
)

// verifyIsPublic checks that the activity is addressed to the public.
func verifyIsPublic(to []string) error {
	if !algorithms.Contains(to, PublicAddress) {
		return invalid(ErrNotPublic, "to: %v", to)
	}
	return nil
}

// verifyActivity checks that the activity id and actor are acceptable
// URIs from the same, permitted, instance.
func verifyActivity(settings *Settings, id, actor string) error {
	actorURL, err := url.Parse(actor)
	if err != nil {
		return invalid(ErrMalformed, "actor %q: %v", actor, err)
	}
	idURL, err := url.Parse(id)
	if err != nil {
		return invalid(ErrMalformed, "id %q: %v", id, err)
	}
	if actorURL.Scheme != settings.Protocol {
		return invalid(ErrOriginMismatch, "actor %q: scheme is not %s", actor, settings.Protocol)
	}
	if !settings.instanceAllowed(actorURL.Host) {
		return invalid(ErrOriginMismatch, "instance %q is not allowed", actorURL.Host)
	}
	if idURL.Host != actorURL.Host {
		return invalid(ErrOriginMismatch, "id %q and actor %q are from different instances", id, actor)
	}
	return nil
}

// verifyPersonInCommunity checks that the actor at uri may act in
// community: it is banned from neither the site nor the community.
// The ban flags are read from the database, never from the cache.
func verifyPersonInCommunity(ctx context.Context, env *Env, uri string, community *models.Actor, counter *RequestCounter) error {
	person, err := env.Resolver.ResolvePerson(ctx, uri, counter)
	if err != nil {
		return err
	}
	db := env.DB.WithContext(ctx)
	siteBanned, err := models.NewActors(db).IsBanned(person.ID)
	if err != nil {
		return err
	}
	if siteBanned {
		return invalid(ErrBannedFromSite, "%s", person.URI)
	}
	banned, err := models.NewBans(db).IsBanned(community.ID, person.ID)
	if err != nil {
		return err
	}
	if banned {
		return invalid(ErrActorNotInCommunity, "%s is banned from %s", person.URI, community.URI)
	}
	return nil
}

// verifyModAction checks that the actor at uri moderates community now.
func verifyModAction(ctx context.Context, env *Env, uri string, community *models.Actor, counter *RequestCounter) error {
	mod, err := env.Resolver.ResolvePerson(ctx, uri, counter)
	if err != nil {
		return err
	}
	ok, err := models.NewCommunities(env.DB.WithContext(ctx)).IsModOrAdmin(community, mod)
	if err != nil {
		return err
	}
	if !ok {
		return invalid(ErrNotAModerator, "%s does not moderate %s", mod.URI, community.URI)
	}
	return nil
}
