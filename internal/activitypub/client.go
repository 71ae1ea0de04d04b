// Package activitypub provides a signed HTTP client for fetching and
// delivering ActivityPub documents.
package activitypub

import (
	"context"
	"crypto"
	"crypto/rsa"
	"errors"
	"fmt"
	"net/http"

	"github.com/carlmjohnson/requests"
	"github.com/davecheney/pubmod/internal/httpsig"
)

var (
	// ErrNotFound is returned when the remote server answers 404.
	ErrNotFound = errors.New("not found")

	// ErrGone is returned when the remote server answers 410, the
	// document has been deleted.
	ErrGone = errors.New("gone")
)

// Client is an ActivityPub client which can be used to fetch remote
// ActivityPub resources.
type Client struct {
	keyID      string
	privateKey crypto.PrivateKey
	transport  http.RoundTripper
}

// Signer represents an object that can sign HTTP requests.
type Signer interface {
	PublicKeyID() string
	PrivKey() (*rsa.PrivateKey, error)
}

// NewClient returns a new ActivityPub client.
func NewClient(signAs Signer) (*Client, error) {
	privateKey, err := signAs.PrivKey()
	if err != nil {
		return nil, err
	}
	return &Client{
		keyID:      signAs.PublicKeyID(),
		privateKey: privateKey,
		transport:  http.DefaultTransport,
	}, nil
}

// Fetch fetches the ActivityPub resource at the given URL and decodes it into the given object.
func (c *Client) Fetch(ctx context.Context, uri string, obj interface{}) error {
	err := requests.URL(uri).
		Accept(`application/ld+json; profile="https://www.w3.org/ns/activitystreams"`).
		Transport(c.sign(nil)).
		CheckStatus(http.StatusOK).
		CheckContentType(
			"application/ld+json",
			"application/activity+json",
			"application/json",
		).
		ToJSON(obj).
		Fetch(ctx)
	switch {
	case err == nil:
		return nil
	case requests.HasStatusErr(err, http.StatusNotFound):
		return fmt.Errorf("%s: %w", uri, ErrNotFound)
	case requests.HasStatusErr(err, http.StatusGone):
		return fmt.Errorf("%s: %w", uri, ErrGone)
	default:
		return err
	}
}

// Post posts the given ActivityPub document to the given inbox.
func (c *Client) Post(ctx context.Context, inbox string, body []byte) error {
	return requests.URL(inbox).
		BodyBytes(body).
		Header("Content-Type", `application/ld+json; profile="https://www.w3.org/ns/activitystreams"`).
		Transport(c.sign(body)).
		CheckStatus(http.StatusOK, http.StatusCreated, http.StatusAccepted, http.StatusNoContent).
		Fetch(ctx)
}

func (c *Client) sign(body []byte) http.RoundTripper {
	return requests.RoundTripFunc(func(req *http.Request) (*http.Response, error) {
		if err := httpsig.Sign(req, c.keyID, c.privateKey, body); err != nil {
			return nil, fmt.Errorf("failed to sign request: %w", err)
		}
		return c.transport.RoundTrip(req)
	})
}
