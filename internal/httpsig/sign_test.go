package httpsig

import (
	"bytes"
	"crypto"
	"crypto/rand"
	"crypto/rsa"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-fed/httpsig"
	"github.com/stretchr/testify/require"
)

const keyID = "https://example.com/u/alice#main-key"

func TestSignRequest(t *testing.T) {
	require := require.New(t)
	req, err := http.NewRequest("GET", "https://example.com/u/foo", nil)
	require.NoError(err)
	req.Header.Set("Accept", "application/ld+json")

	privatekey, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(err)

	err = Sign(req, keyID, privatekey, nil)
	require.NoError(err)

	verifier, err := httpsig.NewVerifier(req)
	require.NoError(err)
	require.Equal(keyID, verifier.KeyId())
	err = verifier.Verify(&privatekey.PublicKey, httpsig.RSA_SHA256)
	require.NoError(err, "req.Signature: %s", req.Header.Get("Signature"))
}

func TestVerify(t *testing.T) {
	privatekey, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	keyFn := func(id string) (crypto.PublicKey, error) {
		if id != keyID {
			return nil, errors.New("unknown key")
		}
		return &privatekey.PublicKey, nil
	}
	body := []byte(`{"type":"Undo"}`)

	signed := func(t *testing.T) *http.Request {
		req := httptest.NewRequest("POST", "https://example.com/inbox", bytes.NewReader(body))
		require.NoError(t, Sign(req, keyID, privatekey, body))
		return req
	}

	t.Run("valid signature", func(t *testing.T) {
		require := require.New(t)
		got, err := Verify(signed(t), body, keyFn)
		require.NoError(err)
		require.Equal(keyID, got)
	})
	t.Run("body does not match digest", func(t *testing.T) {
		require := require.New(t)
		_, err := Verify(signed(t), []byte(`{"type":"Block"}`), keyFn)
		require.ErrorIs(err, ErrDigestMismatch)
	})
	t.Run("signed by another key", func(t *testing.T) {
		require := require.New(t)
		other, err := rsa.GenerateKey(rand.Reader, 2048)
		require.NoError(err)
		_, err = Verify(signed(t), body, func(string) (crypto.PublicKey, error) {
			return &other.PublicKey, nil
		})
		require.Error(err)
	})
	t.Run("missing signature", func(t *testing.T) {
		require := require.New(t)
		req := httptest.NewRequest("POST", "https://example.com/inbox", bytes.NewReader(body))
		_, err := Verify(req, body, keyFn)
		require.Error(err)
	})
}

func TestCheckDate(t *testing.T) {
	require := require.New(t)
	now := time.Now()
	req := httptest.NewRequest("GET", "https://example.com/", nil)

	req.Header.Set("Date", now.Add(-time.Hour).UTC().Format(http.TimeFormat))
	require.NoError(checkDate(req, now))

	req.Header.Set("Date", now.Add(-13*time.Hour).UTC().Format(http.TimeFormat))
	require.ErrorIs(checkDate(req, now), ErrStaleDate)

	req.Header.Set("Date", "yesterday")
	require.Error(checkDate(req, now))
}
