package wellknown

import (
	"errors"
	"net/http"

	"github.com/davecheney/pubmod/activitypub"
	"github.com/davecheney/pubmod/internal/httpx"
	"github.com/davecheney/pubmod/internal/to"
	"github.com/davecheney/pubmod/models"
	"github.com/go-chi/chi/v5"
)

func NodeInfoIndex(env *activitypub.Env, w http.ResponseWriter, r *http.Request) error {
	w.Header().Set("cache-control", "max-age=259200, public")
	return to.JSON(w, map[string]any{
		"links": []any{
			map[string]any{
				"rel":  "http://nodeinfo.diaspora.software/ns/schema/2.0",
				"href": env.Settings.ProtocolAndHostname() + "/nodeinfo/2.0",
			},
		},
	})
}

func NodeInfoShow(env *activitypub.Env, w http.ResponseWriter, r *http.Request) error {
	if version := chi.URLParam(r, "version"); version != "2.0" {
		return httpx.Error(http.StatusNotFound, errors.New("unsupported version: "+version))
	}
	var users, communities int64
	if err := env.DB.Model(&models.Actor{}).Where("type = ?", models.LocalPerson).Count(&users).Error; err != nil {
		return err
	}
	if err := env.DB.Model(&models.Actor{}).Where("type = ?", models.LocalGroup).Count(&communities).Error; err != nil {
		return err
	}
	// https://github.com/jhass/nodeinfo/blob/main/schemas/2.0/schema.json
	w.Header().Set("cache-control", "max-age=259200, public")
	return to.JSON(w, map[string]any{
		"version": "2.0",
		"software": map[string]any{
			"name":    "pubmod",
			"version": "0.0.0-devel",
		},
		"protocols": []any{"activitypub"},
		"services": map[string]any{
			"inbound":  []any{},
			"outbound": []any{},
		},
		"usage": map[string]any{
			"users": map[string]any{
				"total": users,
			},
			"localPosts": 0,
		},
		"openRegistrations": false,
		"metadata": map[string]any{
			"communities": communities,
		},
	})
}
