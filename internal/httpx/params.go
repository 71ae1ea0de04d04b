package httpx

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-json-experiment/json"
	"github.com/gorilla/schema"
)

var decoder = func() *schema.Decoder {
	d := schema.NewDecoder()
	d.IgnoreUnknownKeys(true)
	return d
}()

// Params decodes the request parameters into the given struct based on the
// request method and Content-Type header.
func Params(r *http.Request, v interface{}) error {
	switch r.Method {
	case "GET", "HEAD":
		if err := decoder.Decode(v, r.URL.Query()); err != nil {
			return Error(http.StatusBadRequest, err)
		}
	case "POST", "DELETE":
		switch MediaType(r) {
		case "application/json":
			if err := json.UnmarshalFull(r.Body, v); err != nil {
				return Error(http.StatusBadRequest, err)
			}
		case "application/x-www-form-urlencoded":
			if err := r.ParseForm(); err != nil {
				return Error(http.StatusBadRequest, err)
			}
			if err := decoder.Decode(v, r.Form); err != nil {
				return Error(http.StatusBadRequest, err)
			}
		default:
			return Error(http.StatusUnsupportedMediaType, fmt.Errorf("unsupported media type: %q", r.Header.Get("Content-Type")))
		}
	default:
		return Error(http.StatusMethodNotAllowed, errors.New("unsupported method: "+r.Method))
	}
	return nil
}

// MediaType returns the media type of the request, without parameters.
func MediaType(req *http.Request) string {
	return strings.TrimSpace(strings.Split(req.Header.Get("Content-Type"), ";")[0])
}
