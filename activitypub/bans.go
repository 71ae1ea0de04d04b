package activitypub

import (
	"errors"
	"net/http"

	"github.com/davecheney/pubmod/internal/httpx"
	"github.com/davecheney/pubmod/internal/to"
	"github.com/davecheney/pubmod/models"
	"gorm.io/gorm"
)

// Ban is an entry in the bans listing of a community.
type Ban struct {
	Community string `json:"community"`
	Person    string `json:"person"`
	CreatedAt string `json:"created_at"`
}

// BansIndex lists the people banned from a community, newest first.
func BansIndex(env *Env, w http.ResponseWriter, r *http.Request) error {
	var params struct {
		Community string `schema:"community"`
		Limit     int    `schema:"limit"`
	}
	if err := httpx.Params(r, &params); err != nil {
		return err
	}
	if params.Community == "" {
		return httpx.Error(http.StatusBadRequest, errors.New("community is required"))
	}
	switch {
	case params.Limit <= 0:
		params.Limit = 40
	case params.Limit > 200:
		params.Limit = 200
	}

	community, err := models.NewActors(env.DB).FindByURI(params.Community)
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return httpx.Error(http.StatusNotFound, err)
	case err != nil:
		return err
	case !community.IsGroup():
		return httpx.Error(http.StatusBadRequest, errors.New(params.Community+" is not a community"))
	}
	bans, err := models.NewBans(env.DB).FindByCommunity(community.ID, params.Limit)
	if err != nil {
		return err
	}
	resp := make([]*Ban, 0, len(bans))
	for _, ban := range bans {
		resp = append(resp, &Ban{
			Community: community.URI,
			Person:    ban.Person.URI,
			CreatedAt: ban.CreatedAt.UTC().Format("2006-01-02T15:04:05.000Z"),
		})
	}
	return to.JSON(w, resp)
}
