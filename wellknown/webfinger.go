// Package wellknown serves the /.well-known documents remote servers use
// to discover local actors.
package wellknown

import (
	"errors"
	"io"
	"net/http"

	"github.com/davecheney/pubmod/activitypub"
	"github.com/davecheney/pubmod/internal/httpx"
	"github.com/davecheney/pubmod/internal/to"
	"github.com/davecheney/pubmod/internal/webfinger"
	"github.com/davecheney/pubmod/models"
)

// WebfingerShow resolves acct:name@host to the local people and
// communities with that name.
func WebfingerShow(env *activitypub.Env, w http.ResponseWriter, r *http.Request) error {
	acct, err := webfinger.Parse(r.URL.Query().Get("resource"))
	if err != nil {
		return httpx.Error(http.StatusBadRequest, err)
	}
	if acct.Host != env.Settings.Hostname {
		return httpx.Error(http.StatusNotFound, errors.New("unknown host: "+acct.Host))
	}
	var actors []*models.Actor
	if err := env.DB.Where("name = ? AND type IN ?", acct.User, []models.ActorType{models.LocalPerson, models.LocalGroup}).Order("type DESC").Find(&actors).Error; err != nil {
		return err
	}
	if len(actors) == 0 {
		return httpx.Error(http.StatusNotFound, errors.New("unknown account: "+acct.String()))
	}
	wf := &webfinger.Webfinger{
		Subject: acct.String(),
	}
	for _, actor := range actors {
		wf.Aliases = append(wf.Aliases, actor.URI)
		wf.Links = append(wf.Links, webfinger.Link{
			Rel:  "self",
			Type: "application/activity+json",
			Href: actor.URI,
			Properties: map[string]string{
				"https://www.w3.org/ns/activitystreams#type": actor.Kind(),
			},
		})
	}
	return to.JRD(w, wf)
}

func HostMetaIndex(env *activitypub.Env, w http.ResponseWriter, r *http.Request) error {
	w.Header().Set("Content-Type", "application/xrd+xml")
	_, err := io.WriteString(w, `<?xml version="1.0" encoding="UTF-8"?>
<XRD xmlns="http://docs.oasis-open.org/ns/xri/xrd-1.0">
<Link rel="lrdd" template="`+env.Settings.ProtocolAndHostname()+`/.well-known/webfinger?resource={uri}"/>
</XRD>`)
	return err
}
