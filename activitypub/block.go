package activitypub

import (
	"context"

	"github.com/davecheney/pubmod/models"
)

// NewBlockUserFromCommunity returns a Block of target from community by actor.
func NewBlockUserFromCommunity(settings *Settings, community, target, actor *models.Actor) *BlockUserFromCommunity {
	return &BlockUserFromCommunity{
		Context: defaultContext,
		Actor:   actor.URI,
		To:      []string{PublicAddress},
		Object:  target.URI,
		CC:      []string{community.URI},
		Type:    typeBlock,
		ID:      GenerateActivityID(settings, typeBlock),
	}
}

// SendBlockUserFromCommunity publishes the ban of target from community by actor.
func SendBlockUserFromCommunity(ctx context.Context, env *Env, community, target, actor *models.Actor) error {
	block := NewBlockUserFromCommunity(env.Settings, community, target, actor)
	return env.Deliverer.Deliver(ctx, block, actor, community, []string{target.Inbox()})
}

// community returns the URI of the community the block applies to.
func (b *BlockUserFromCommunity) community() (string, error) {
	if len(b.CC) == 0 {
		return "", invalid(ErrMalformed, "%s: missing community", b.ID)
	}
	return b.CC[0], nil
}

func (b *BlockUserFromCommunity) Verify(ctx context.Context, env *Env, counter *RequestCounter) error {
	if err := verifyIsPublic(b.To); err != nil {
		return err
	}
	if err := verifyActivity(env.Settings, b.ID, b.Actor); err != nil {
		return err
	}
	uri, err := b.community()
	if err != nil {
		return err
	}
	community, err := env.Resolver.ResolveCommunity(ctx, uri, counter)
	if err != nil {
		return err
	}
	if err := verifyPersonInCommunity(ctx, env, b.Actor, community, counter); err != nil {
		return err
	}
	return verifyModAction(ctx, env, b.Actor, community, counter)
}

// Receive bans the blocked person from the community and removes their
// follow of it.
func (b *BlockUserFromCommunity) Receive(ctx context.Context, env *Env, counter *RequestCounter) error {
	uri, err := b.community()
	if err != nil {
		return err
	}
	community, err := env.Resolver.ResolveCommunity(ctx, uri, counter)
	if err != nil {
		return err
	}
	person, err := env.Resolver.ResolvePerson(ctx, b.Object, counter)
	if err != nil {
		return err
	}
	if err := env.Bans.Ban(ctx, community.ID, person.ID); err != nil {
		return err
	}
	if err := models.NewCommunities(env.DB.WithContext(ctx)).Unfollow(community, person); err != nil {
		env.Log().Warn("unfollow after block", "community", community.URI, "person", person.URI, "error", err)
	}
	return nil
}
