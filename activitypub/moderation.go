package activitypub

import (
	"context"

	"github.com/davecheney/pubmod/models"
)

// BanFromCommunity bans target from community on behalf of mod, a local
// person, and publishes the ban.
func BanFromCommunity(ctx context.Context, env *Env, community, target, mod *models.Actor) error {
	if err := checkLocalModerator(ctx, env, community, mod); err != nil {
		return err
	}
	if err := env.Bans.Ban(ctx, community.ID, target.ID); err != nil {
		return err
	}
	if err := models.NewCommunities(env.DB.WithContext(ctx)).Unfollow(community, target); err != nil {
		env.Log().Warn("unfollow after ban", "community", community.URI, "person", target.URI, "error", err)
	}
	return SendBlockUserFromCommunity(ctx, env, community, target, mod)
}

// UnbanFromCommunity lifts the ban of target from community on behalf of
// mod, a local person, and publishes the Undo.
func UnbanFromCommunity(ctx context.Context, env *Env, community, target, mod *models.Actor) error {
	if err := checkLocalModerator(ctx, env, community, mod); err != nil {
		return err
	}
	if err := env.Bans.Unban(ctx, community.ID, target.ID); err != nil {
		return err
	}
	return SendUndoBlockUserFromCommunity(ctx, env, community, target, mod)
}

func checkLocalModerator(ctx context.Context, env *Env, community, mod *models.Actor) error {
	if !mod.IsLocal() {
		return invalid(ErrNotAModerator, "%s is not a local person", mod.URI)
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
