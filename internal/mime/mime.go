// Package mime contains helpers for negotiating ActivityPub media types.
package mime

import (
	"net/http"
	"strings"
)

// MediaType returns the media type of the request, without parameters.
func MediaType(req *http.Request) string {
	typ, _, _ := strings.Cut(req.Header.Get("Content-Type"), ";")
	typ = strings.ToLower(strings.TrimSpace(typ))
	if typ == "" {
		typ = "application/octet-stream"
	}
	return typ
}

// IsActivity reports whether the request body is declared to be an
// ActivityStreams document.
func IsActivity(req *http.Request) bool {
	switch MediaType(req) {
	case "application/activity+json", "application/ld+json", "application/json":
		return true
	default:
		return false
	}
}
