package activitypub

import (
	"context"
	"crypto"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	internalcrypto "github.com/davecheney/pubmod/internal/crypto"
	"github.com/davecheney/pubmod/internal/httpsig"
	"github.com/davecheney/pubmod/internal/httpx"
	"github.com/davecheney/pubmod/internal/mime"
	"github.com/davecheney/pubmod/models"
	"gorm.io/gorm"
)

// errDuplicate aborts the receive transaction of an already recorded activity.
var errDuplicate = errors.New("duplicate activity")

// maxActivitySize is the largest inbound activity accepted.
const maxActivitySize = 1 << 20

// InboxCreate accepts an activity POSTed to the shared inbox or to the
// inbox of a local actor.
func InboxCreate(env *Env, w http.ResponseWriter, r *http.Request) error {
	if !mime.IsActivity(r) {
		return httpx.Error(http.StatusUnsupportedMediaType, fmt.Errorf("unsupported media type %q", mime.MediaType(r)))
	}
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxActivitySize))
	if err != nil {
		if tooLarge := new(http.MaxBytesError); errors.As(err, &tooLarge) {
			return httpx.Error(http.StatusRequestEntityTooLarge, err)
		}
		return httpx.Error(http.StatusBadRequest, err)
	}
	in, err := ParseActivity(body)
	if err != nil {
		inboxActivities.WithLabelValues("unknown", "malformed").Inc()
		return httpx.Error(StatusCode(err), err)
	}
	log := env.Log().With("id", in.ID, "type", in.Type, "actor", in.Actor)

	counter := env.NewRequestCounter()
	if err := verifySignature(r, body, env, in, counter); err != nil {
		log.Info("inbox: signature rejected", "error", err)
		inboxActivities.WithLabelValues(in.Type, "unauthorized").Inc()
		return httpx.Error(http.StatusUnauthorized, err)
	}

	status, outcome, err := process(r.Context(), env, in, body, counter)
	inboxActivities.WithLabelValues(in.Type, outcome).Inc()
	if err != nil {
		log.Info("inbox: rejected", "outcome", outcome, "fetches", counter.Count(), "error", err)
		return httpx.Error(status, err)
	}
	log.Info("inbox: accepted", "outcome", outcome, "fetches", counter.Count())
	w.WriteHeader(status)
	return nil
}

// process runs the activity through its handler and reports the status
// to return and a label for the outcome.
func process(ctx context.Context, env *Env, in *Inbound, body []byte, counter *RequestCounter) (int, string, error) {
	if in.Handler == nil {
		return http.StatusAccepted, "ignored", nil
	}
	activities := models.NewActivities(env.DB.WithContext(ctx))
	seen, err := activities.Exists(in.ID)
	if err != nil {
		return http.StatusInternalServerError, "error", err
	}
	if seen {
		return http.StatusAccepted, "duplicate", nil
	}
	if err := in.Handler.Verify(ctx, env, counter); err != nil {
		return StatusCode(err), "invalid", err
	}

	// Record and Receive commit together; a failed Receive leaves the
	// activity unseen.
	err = env.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		inserted, err := models.NewActivities(tx).Record(in.ID, in.Type, body, false)
		if err != nil {
			return err
		}
		if !inserted {
			// lost a race with a concurrent delivery of the same activity.
			return errDuplicate
		}
		return in.Handler.Receive(ctx, env.WithDB(tx), counter)
	})
	switch {
	case errors.Is(err, errDuplicate):
		return http.StatusAccepted, "duplicate", nil
	case err != nil:
		return StatusCode(err), "error", err
	}
	return http.StatusAccepted, "received", nil
}

// verifySignature checks the HTTP signature of the request and that the
// signer is the actor of the activity.
func verifySignature(r *http.Request, body []byte, env *Env, in *Inbound, counter *RequestCounter) error {
	keyFn := func(keyID string) (crypto.PublicKey, error) {
		actor, err := env.Resolver.ResolveActor(r.Context(), trimKeyID(keyID), counter)
		if err != nil {
			return nil, err
		}
		return internalcrypto.ParseRSAPublicKey(actor.PublicKey)
	}
	keyID, err := httpsig.Verify(r, body, keyFn)
	if err != nil {
		return err
	}
	if signer := trimKeyID(keyID); signer != in.Actor {
		return invalid(ErrOriginMismatch, "signed by %s", signer)
	}
	return nil
}

// trimKeyID removes the #main-key suffix from the key id.
func trimKeyID(id string) string {
	if i := strings.Index(id, "#"); i != -1 {
		return id[:i]
	}
	return id
}
