package httpsig

import (
	"crypto"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-fed/httpsig"
)

// MaxClockSkew is how far the Date header of a signed request may drift
// from the local clock.
const MaxClockSkew = 12 * time.Hour

var (
	// ErrDigestMismatch is returned when the Digest header does not match the body.
	ErrDigestMismatch = errors.New("httpsig: digest mismatch")

	// ErrStaleDate is returned when the Date header is outside MaxClockSkew.
	ErrStaleDate = errors.New("httpsig: date outside allowed skew")
)

// Verify verifies the signature of the request. keyFn is called with the
// keyId named in the Signature header and must return the signer's public key.
// If body is not nil the Digest header must match it.
// Verify returns the keyId that produced the signature.
func Verify(req *http.Request, body []byte, keyFn func(keyID string) (crypto.PublicKey, error)) (string, error) {
	verifier, err := httpsig.NewVerifier(req)
	if err != nil {
		return "", err
	}
	if err := checkDate(req, time.Now()); err != nil {
		return "", err
	}
	if body != nil {
		if got := req.Header.Get("Digest"); got != digest(body) {
			return "", fmt.Errorf("%w: %q", ErrDigestMismatch, got)
		}
	}
	keyID := verifier.KeyId()
	pubKey, err := keyFn(keyID)
	if err != nil {
		return "", err
	}
	if err := verifier.Verify(pubKey, httpsig.RSA_SHA256); err != nil {
		return "", err
	}
	return keyID, nil
}

func checkDate(req *http.Request, now time.Time) error {
	date, err := http.ParseTime(req.Header.Get("Date"))
	if err != nil {
		return fmt.Errorf("httpsig: invalid date: %w", err)
	}
	skew := now.Sub(date)
	if skew < 0 {
		skew = -skew
	}
	if skew > MaxClockSkew {
		return fmt.Errorf("%w: %v", ErrStaleDate, skew)
	}
	return nil
}
