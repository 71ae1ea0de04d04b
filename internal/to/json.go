// package to contains functions for converting between types.
package to

import (
	"net/http"

	"github.com/go-json-experiment/json"
)

// ActivityStreams is the media type of ActivityPub documents.
const ActivityStreams = `application/activity+json; charset=utf-8`

// JSON writes the given object to the response body as JSON.
// If obj is a nil slice, an empty JSON array is written.
// If obj is a nil map, an empty JSON object is written.
// If obj is a nil pointer, a null is written.
func JSON(w http.ResponseWriter, obj any) error {
	return write(w, "application/json; charset=utf-8", obj)
}

// Activity writes the given ActivityPub document to the response body.
func Activity(w http.ResponseWriter, obj any) error {
	return write(w, ActivityStreams, obj)
}

// JRD writes the given webfinger document to the response body.
func JRD(w http.ResponseWriter, obj any) error {
	return write(w, "application/jrd+json; charset=utf-8", obj)
}

func write(w http.ResponseWriter, contentType string, obj any) error {
	w.Header().Set("Content-Type", contentType)
	return json.MarshalOptions{}.MarshalFull(json.EncodeOptions{
		Indent: "  ",
	}, w, obj)
}
