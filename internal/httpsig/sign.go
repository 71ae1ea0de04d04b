// Package httpsig implements the HTTP Signature scheme as defined in draft-cavage-http-signatures-10.
package httpsig

import (
	"bytes"
	"crypto"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
)

const (
	// RequestTarget is the pseudo-header used to sign the request target.
	RequestTarget = "(request-target)"
)

// Sign signs the request using the given keyID and privateKey.
// POST requests also carry a Digest of body.
func Sign(req *http.Request, keyID string, privateKey crypto.PrivateKey, body []byte) error {
	rsaKey, ok := privateKey.(*rsa.PrivateKey)
	if !ok {
		return errors.New("httpsig: expected *rsa.PrivateKey")
	}
	req.Header.Set("Date", time.Now().UTC().Format(http.TimeFormat)) // Date must be in GMT, not UTC 🤯
	headersToSign := []string{
		RequestTarget,
		"host",
		"date",
	}
	switch req.Method {
	case http.MethodGet:
		headersToSign = append(headersToSign, "accept")
	case http.MethodPost:
		headersToSign = append(headersToSign, "digest")
		req.Header.Set("Digest", digest(body))
	}

	signingString, err := signingString(req, headersToSign)
	if err != nil {
		return err
	}
	hash := sha256.Sum256([]byte(signingString))
	sig, err := rsa.SignPKCS1v15(rand.Reader, rsaKey, crypto.SHA256, hash[:])
	if err != nil {
		return err
	}
	enc := base64.StdEncoding.EncodeToString(sig)
	req.Header.Set("Signature", fmt.Sprintf(`keyId="%s",algorithm="rsa-sha256",headers="%s",signature="%s"`, keyID, strings.Join(headersToSign, " "), enc))
	return nil
}

func signingString(req *http.Request, headers []string) (string, error) {
	var sb bytes.Buffer
	for _, header := range headers {
		switch header {
		case RequestTarget:
			sb.WriteString("(request-target): ")
			sb.WriteString(strings.ToLower(req.Method))
			sb.WriteString(" ")
			sb.WriteString(req.URL.Path)

			if req.URL.RawQuery != "" {
				sb.WriteString("?")
				sb.WriteString(req.URL.RawQuery)
			}
		case "host":
			sb.WriteString("host: ")
			sb.WriteString(req.Host)
		case "date", "accept", "digest":
			sb.WriteString(header)
			sb.WriteString(": ")
			sb.WriteString(req.Header.Get(header))
		default:
			return "", fmt.Errorf("unknown header to sign: %s", header)
		}
		sb.WriteString("\n")
	}
	return strings.TrimRight(sb.String(), "\n"), nil // remove trailing newline
}

// digest returns the value of the Digest header for body.
func digest(body []byte) string {
	sum := sha256.Sum256(body)
	return "SHA-256=" + base64.StdEncoding.EncodeToString(sum[:])
}
