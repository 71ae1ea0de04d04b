package activitypub

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/davecheney/pubmod/internal/httpsig"
	"github.com/davecheney/pubmod/internal/httpx"
	"github.com/davecheney/pubmod/internal/snowflake"
	"github.com/davecheney/pubmod/models"
	"github.com/go-json-experiment/json"
	"github.com/stretchr/testify/require"
)

// post delivers body to the shared inbox, signed by signer if not nil.
func post(t *testing.T, env *Env, signer *models.Actor, body []byte) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest("POST", "https://pubmod.example/inbox", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/activity+json")
	if signer != nil {
		key, err := signer.PrivKey()
		require.NoError(t, err)
		require.NoError(t, httpsig.Sign(req, signer.PublicKeyID(), key, body))
	}
	rec := httptest.NewRecorder()
	handler := httpx.HandlerFunc(func(*http.Request) *Env { return env }, InboxCreate)
	handler.ServeHTTP(rec, req)
	return rec
}

func TestInboxCreate(t *testing.T) {
	db := setupTestDB(t)

	t.Run("signed undo from a moderator", func(t *testing.T) {
		require := require.New(t)
		tx := db.Begin()
		defer tx.Rollback()

		env := newTestEnv(t, tx)
		f := newUndoFixture(t, tx)
		body, err := json.Marshal(f.undo(f.mod))
		require.NoError(err)

		rec := post(t, env.Env, f.mod, body)
		require.Equal(http.StatusAccepted, rec.Code, rec.Body.String())
		require.False(isBanned(t, tx, f.community, f.troll))
		require.Equal(1, env.bans.unbans)

		// redelivery is suppressed
		rec = post(t, env.Env, f.mod, body)
		require.Equal(http.StatusAccepted, rec.Code)
		require.Equal(1, env.bans.unbans)
	})

	t.Run("failed receive is retried", func(t *testing.T) {
		require := require.New(t)
		tx := db.Begin()
		defer tx.Rollback()

		env := newTestEnv(t, tx)
		f := newUndoFixture(t, tx)
		undo := f.undo(f.mod)
		body, err := json.Marshal(undo)
		require.NoError(err)

		env.Bans = &flakyBans{BanStore: env.bans, failures: 1}
		rec := post(t, env.Env, f.mod, body)
		require.Equal(http.StatusInternalServerError, rec.Code)
		require.True(isBanned(t, tx, f.community, f.troll))
		seen, err := models.NewActivities(tx).Exists(undo.ID)
		require.NoError(err)
		require.False(seen)

		// the redelivery is not a duplicate
		rec = post(t, env.Env, f.mod, body)
		require.Equal(http.StatusAccepted, rec.Code, rec.Body.String())
		require.False(isBanned(t, tx, f.community, f.troll))
	})

	t.Run("unsigned", func(t *testing.T) {
		require := require.New(t)
		tx := db.Begin()
		defer tx.Rollback()

		env := newTestEnv(t, tx)
		f := newUndoFixture(t, tx)
		body, err := json.Marshal(f.undo(f.mod))
		require.NoError(err)

		rec := post(t, env.Env, nil, body)
		require.Equal(http.StatusUnauthorized, rec.Code)
		require.True(isBanned(t, tx, f.community, f.troll))
	})

	t.Run("signed by another actor", func(t *testing.T) {
		require := require.New(t)
		tx := db.Begin()
		defer tx.Rollback()

		env := newTestEnv(t, tx)
		f := newUndoFixture(t, tx)
		body, err := json.Marshal(f.undo(f.mod))
		require.NoError(err)

		rec := post(t, env.Env, f.member, body)
		require.Equal(http.StatusUnauthorized, rec.Code)
		require.Zero(env.bans.unbans)
	})

	t.Run("not public", func(t *testing.T) {
		require := require.New(t)
		tx := db.Begin()
		defer tx.Rollback()

		env := newTestEnv(t, tx)
		f := newUndoFixture(t, tx)
		undo := f.undo(f.mod)
		undo.To = []string{f.community.URI}
		body, err := json.Marshal(undo)
		require.NoError(err)

		rec := post(t, env.Env, f.mod, body)
		require.Equal(http.StatusBadRequest, rec.Code)
		require.Zero(env.bans.unbans)
		require.True(isBanned(t, tx, f.community, f.troll))

		// rejected activities are not recorded
		seen, err := models.NewActivities(tx).Exists(undo.ID)
		require.NoError(err)
		require.False(seen)
	})

	t.Run("not a moderator", func(t *testing.T) {
		require := require.New(t)
		tx := db.Begin()
		defer tx.Rollback()

		env := newTestEnv(t, tx)
		f := newUndoFixture(t, tx)
		body, err := json.Marshal(f.undo(f.member))
		require.NoError(err)

		rec := post(t, env.Env, f.member, body)
		require.Equal(http.StatusForbidden, rec.Code)
		require.True(isBanned(t, tx, f.community, f.troll))
	})

	t.Run("unhandled types are accepted", func(t *testing.T) {
		require := require.New(t)
		tx := db.Begin()
		defer tx.Rollback()

		env := newTestEnv(t, tx)
		f := newUndoFixture(t, tx)
		body := []byte(`{"type":"Like","id":"https://remote.example/activities/like/1","actor":"https://remote.example/u/alice","object":"https://remote.example/post/1"}`)

		rec := post(t, env.Env, f.mod, body)
		require.Equal(http.StatusAccepted, rec.Code)
	})

	t.Run("malformed", func(t *testing.T) {
		require := require.New(t)
		tx := db.Begin()
		defer tx.Rollback()

		env := newTestEnv(t, tx)
		rec := post(t, env.Env, nil, []byte(`{"type":`))
		require.Equal(http.StatusBadRequest, rec.Code)
	})

	t.Run("too large", func(t *testing.T) {
		require := require.New(t)
		tx := db.Begin()
		defer tx.Rollback()

		env := newTestEnv(t, tx)
		body := append([]byte(`{"type":"Undo","summary":"`), bytes.Repeat([]byte("x"), maxActivitySize)...)
		body = append(body, `"}`...)
		rec := post(t, env.Env, nil, body)
		require.Equal(http.StatusRequestEntityTooLarge, rec.Code)
	})

	t.Run("not an activity", func(t *testing.T) {
		require := require.New(t)
		tx := db.Begin()
		defer tx.Rollback()

		env := newTestEnv(t, tx)
		req := httptest.NewRequest("POST", "https://pubmod.example/inbox", bytes.NewReader([]byte("<html/>")))
		req.Header.Set("Content-Type", "text/html")
		rec := httptest.NewRecorder()
		httpx.HandlerFunc(func(*http.Request) *Env { return env.Env }, InboxCreate).ServeHTTP(rec, req)
		require.Equal(http.StatusUnsupportedMediaType, rec.Code)
	})
}

// flakyBans fails the first failures mutations.
type flakyBans struct {
	BanStore
	failures int
}

func (f *flakyBans) Unban(ctx context.Context, communityID, personID snowflake.ID) error {
	if f.failures > 0 {
		f.failures--
		return errors.New("database is locked")
	}
	return f.BanStore.Unban(ctx, communityID, personID)
}
