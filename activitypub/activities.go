package activitypub

import (
	"errors"
	"net/http"

	"github.com/davecheney/pubmod/internal/httpx"
	"github.com/davecheney/pubmod/internal/to"
	"github.com/davecheney/pubmod/models"
	"github.com/go-json-experiment/json"
	"gorm.io/gorm"
)

// ActivitiesShow serves an activity created by this instance, so remote
// servers can dereference the ids of activities we send them.
func ActivitiesShow(env *Env, w http.ResponseWriter, r *http.Request) error {
	id := env.Settings.ProtocolAndHostname() + r.URL.Path
	activity, err := models.NewActivities(env.DB).FindLocal(id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return httpx.Error(http.StatusNotFound, err)
	}
	if err != nil {
		return err
	}
	return to.Activity(w, json.RawValue(activity.Data))
}
