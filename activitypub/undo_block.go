package activitypub

import (
	"context"

	"github.com/davecheney/pubmod/models"
)

// NewUndoBlockUserFromCommunity returns an Undo of a fresh Block of target
// from community by actor.
func NewUndoBlockUserFromCommunity(settings *Settings, community, target, actor *models.Actor) *UndoBlockUserFromCommunity {
	block := NewBlockUserFromCommunity(settings, community, target, actor)
	return &UndoBlockUserFromCommunity{
		Context: defaultContext,
		Actor:   actor.URI,
		To:      []string{PublicAddress},
		Object:  *block,
		CC:      []string{community.URI},
		Type:    typeUndo,
		ID:      GenerateActivityID(settings, typeUndo),
	}
}

// SendUndoBlockUserFromCommunity publishes the lifting of the ban of
// target from community by actor. The activity is built completely
// before it is handed to the Deliverer.
func SendUndoBlockUserFromCommunity(ctx context.Context, env *Env, community, target, actor *models.Actor) error {
	undo := NewUndoBlockUserFromCommunity(env.Settings, community, target, actor)
	return env.Deliverer.Deliver(ctx, undo, actor, community, []string{target.Inbox()})
}

// Verify checks the Undo, then the Block it undoes. The Block must be
// valid now; whether it was ever applied is not checked.
func (u *UndoBlockUserFromCommunity) Verify(ctx context.Context, env *Env, counter *RequestCounter) error {
	if err := verifyIsPublic(u.To); err != nil {
		return err
	}
	if err := verifyActivity(env.Settings, u.ID, u.Actor); err != nil {
		return err
	}
	uri, err := u.Object.community()
	if err != nil {
		return err
	}
	community, err := env.Resolver.ResolveCommunity(ctx, uri, counter)
	if err != nil {
		return err
	}
	if err := verifyPersonInCommunity(ctx, env, u.Actor, community, counter); err != nil {
		return err
	}
	if err := verifyModAction(ctx, env, u.Actor, community, counter); err != nil {
		return err
	}
	return u.Object.Verify(ctx, env, counter)
}

// Receive lifts the ban. Lifting a ban that does not exist is not an error.
func (u *UndoBlockUserFromCommunity) Receive(ctx context.Context, env *Env, counter *RequestCounter) error {
	uri, err := u.Object.community()
	if err != nil {
		return err
	}
	community, err := env.Resolver.ResolveCommunity(ctx, uri, counter)
	if err != nil {
		return err
	}
	person, err := env.Resolver.ResolvePerson(ctx, u.Object.Object, counter)
	if err != nil {
		return err
	}
	return env.Bans.Unban(ctx, community.ID, person.ID)
}
