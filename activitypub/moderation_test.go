package activitypub

import (
	"context"
	"testing"

	"github.com/davecheney/pubmod/models"
	"github.com/stretchr/testify/require"
)

func TestModeration(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	t.Run("local moderator bans and unbans", func(t *testing.T) {
		require := require.New(t)
		tx := db.Begin()
		defer tx.Rollback()

		env := newTestEnv(t, tx)
		community := mockActor(t, tx, "https://pubmod.example/c/golang", withType(models.LocalGroup))
		mod := mockActor(t, tx, "https://pubmod.example/u/alice", withType(models.LocalPerson))
		target := mockActor(t, tx, "https://other.example/u/troll")
		require.NoError(models.NewCommunities(tx).AddModerator(community, mod))
		require.NoError(models.NewCommunities(tx).Follow(community, target))

		require.NoError(BanFromCommunity(ctx, env.Env, community, target, mod))
		require.True(isBanned(t, tx, community, target))
		following, err := models.NewCommunities(tx).IsFollower(community, target)
		require.NoError(err)
		require.False(following)

		require.NoError(UnbanFromCommunity(ctx, env.Env, community, target, mod))
		require.False(isBanned(t, tx, community, target))

		require.Len(env.deliverer.deliveries, 2)
		require.Equal("Block", env.deliverer.deliveries[0].activity.ActivityType())
		require.Equal("Undo", env.deliverer.deliveries[1].activity.ActivityType())
	})

	t.Run("admin moderates local communities", func(t *testing.T) {
		require := require.New(t)
		tx := db.Begin()
		defer tx.Rollback()

		env := newTestEnv(t, tx)
		community := mockActor(t, tx, "https://pubmod.example/c/golang", withType(models.LocalGroup))
		admin := mockActor(t, tx, "https://pubmod.example/u/root", withType(models.LocalPerson), func(a *models.Actor) { a.Admin = true })
		target := mockActor(t, tx, "https://other.example/u/troll")

		require.NoError(BanFromCommunity(ctx, env.Env, community, target, admin))
		require.True(isBanned(t, tx, community, target))
	})

	t.Run("non moderator is refused", func(t *testing.T) {
		require := require.New(t)
		tx := db.Begin()
		defer tx.Rollback()

		env := newTestEnv(t, tx)
		community := mockActor(t, tx, "https://pubmod.example/c/golang", withType(models.LocalGroup))
		bob := mockActor(t, tx, "https://pubmod.example/u/bob", withType(models.LocalPerson))
		target := mockActor(t, tx, "https://other.example/u/troll")
		require.NoError(models.NewBans(tx).Ban(ctx, community.ID, target.ID))

		err := UnbanFromCommunity(ctx, env.Env, community, target, bob)
		require.ErrorIs(err, ErrNotAModerator)
		require.True(isBanned(t, tx, community, target))
		require.Empty(env.deliverer.deliveries)
	})
}
