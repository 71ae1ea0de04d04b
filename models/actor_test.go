package models

import (
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestActors(t *testing.T) {
	db := setupTestDB(t)

	t.Run("Upsert keeps the original ID", func(t *testing.T) {
		require := require.New(t)
		tx := db.Begin()
		defer tx.Rollback()

		alice := MockActor(t, tx, "alice", "remote.example")
		updated := &Actor{
			Type:        Person,
			URI:         alice.URI,
			Name:        "alice",
			Domain:      "remote.example",
			DisplayName: "Alice Liddell",
			InboxURL:    alice.InboxURL,
			PublicKey:   alice.PublicKey,
		}
		require.NoError(NewActors(tx).Upsert(updated))
		require.Equal(alice.ID, updated.ID)
		require.Equal("Alice Liddell", updated.DisplayName)

		var count int64
		require.NoError(tx.Model(&Actor{}).Where("uri = ?", alice.URI).Count(&count).Error)
		require.EqualValues(1, count)
	})

	t.Run("CreateLocal community", func(t *testing.T) {
		require := require.New(t)
		tx := db.Begin()
		defer tx.Rollback()

		c, err := NewActors(tx).CreateLocal("https", "pubmod.example", "golang", LocalGroup)
		require.NoError(err)
		require.Equal("https://pubmod.example/c/golang", c.URI)
		require.Equal("https://pubmod.example/c/golang/inbox", c.InboxURL)
		require.Equal("https://pubmod.example/inbox", c.Inbox())
		require.Equal("https://pubmod.example/c/golang/moderators", c.ModeratorsURL)
		require.True(c.IsLocal())
		require.True(c.IsGroup())
		require.Equal("Group", c.Kind())

		found, err := NewActors(tx).FindLocal("golang", LocalGroup)
		require.NoError(err)
		require.Equal(c.ID, found.ID)

		key, err := found.PrivKey()
		require.NoError(err)
		require.NotNil(key)
	})

	t.Run("DeleteByURI", func(t *testing.T) {
		require := require.New(t)
		tx := db.Begin()
		defer tx.Rollback()

		bob := MockActor(t, tx, "bob", "remote.example")
		require.NoError(NewActors(tx).DeleteByURI(bob.URI))
		_, err := NewActors(tx).FindByURI(bob.URI)
		require.ErrorIs(err, gorm.ErrRecordNotFound)
	})

	t.Run("SetBanned", func(t *testing.T) {
		require := require.New(t)
		tx := db.Begin()
		defer tx.Rollback()

		actors := NewActors(tx)
		carol := MockActor(t, tx, "carol", "remote.example")
		banned, err := actors.IsBanned(carol.ID)
		require.NoError(err)
		require.False(banned)

		require.NoError(actors.SetBanned(carol, true))
		require.True(carol.Banned)
		banned, err = actors.IsBanned(carol.ID)
		require.NoError(err)
		require.True(banned)

		// a refetch of the actor does not lift the ban
		require.NoError(actors.Upsert(&Actor{
			Type:      Person,
			URI:       carol.URI,
			Name:      "carol",
			Domain:    "remote.example",
			InboxURL:  carol.InboxURL,
			PublicKey: carol.PublicKey,
		}))
		banned, err = actors.IsBanned(carol.ID)
		require.NoError(err)
		require.True(banned)

		require.NoError(actors.SetBanned(carol, false))
		banned, err = actors.IsBanned(carol.ID)
		require.NoError(err)
		require.False(banned)
	})
}

func TestInstances(t *testing.T) {
	db := setupTestDB(t)

	t.Run("Create", func(t *testing.T) {
		require := require.New(t)
		tx := db.Begin()
		defer tx.Rollback()

		instance, err := NewInstances(tx).Create("https", "pubmod.example")
		require.NoError(err)
		require.Equal("https://pubmod.example/actor", instance.Actor.URI)
		require.Equal(LocalService, instance.Actor.Type)

		found, err := NewInstances(tx).FindByDomain("pubmod.example")
		require.NoError(err)
		require.Equal(instance.ActorID, found.Actor.ID)
	})
}
