package models

import (
	"time"

	"github.com/davecheney/pubmod/internal/snowflake"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// An Activity is an inbound or outbound ActivityPub activity, stored
// verbatim by its id.
type Activity struct {
	ID        snowflake.ID `gorm:"primarykey;autoIncrement:false"`
	CreatedAt time.Time
	APID      string `gorm:"column:ap_id;size:255;uniqueIndex;not null"`
	Kind      string `gorm:"size:16;not null"`
	Data      []byte `gorm:"not null"`
	// Local is true if the activity was created by this instance.
	Local bool `gorm:"not null;default:false"`
}

type Activities struct {
	db *gorm.DB
}

func NewActivities(db *gorm.DB) *Activities {
	return &Activities{db: db}
}

// Exists reports whether an activity with the given id has been recorded.
func (a *Activities) Exists(apID string) (bool, error) {
	var count int64
	err := a.db.Model(&Activity{}).Where("ap_id = ?", apID).Count(&count).Error
	return count > 0, err
}

// Record stores the activity. If an activity with the same id was already
// recorded Record returns false and leaves the existing row untouched.
func (a *Activities) Record(apID, kind string, data []byte, local bool) (bool, error) {
	res := a.db.Clauses(clause.OnConflict{DoNothing: true}).Create(&Activity{
		ID:    snowflake.Now(),
		APID:  apID,
		Kind:  kind,
		Data:  data,
		Local: local,
	})
	return res.RowsAffected == 1, res.Error
}

// FindLocal returns the local activity with the given id.
func (a *Activities) FindLocal(apID string) (*Activity, error) {
	var activity Activity
	return &activity, a.db.Take(&activity, "ap_id = ? AND local = ?", apID, true).Error
}
