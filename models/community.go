package models

import (
	"time"

	"github.com/davecheney/pubmod/internal/algorithms"
	"github.com/davecheney/pubmod/internal/snowflake"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// A CommunityModerator records that Person moderates Community.
type CommunityModerator struct {
	CommunityID snowflake.ID `gorm:"primarykey;autoIncrement:false"`
	Community   *Actor       `gorm:"constraint:OnDelete:CASCADE;<-:false;"`
	PersonID    snowflake.ID `gorm:"primarykey;autoIncrement:false"`
	Person      *Actor       `gorm:"constraint:OnDelete:CASCADE;<-:false;"`
	CreatedAt   time.Time
}

// A CommunityFollower records that Person follows, and is thus a member of, Community.
type CommunityFollower struct {
	CommunityID snowflake.ID `gorm:"primarykey;autoIncrement:false"`
	Community   *Actor       `gorm:"constraint:OnDelete:CASCADE;<-:false;"`
	PersonID    snowflake.ID `gorm:"primarykey;autoIncrement:false"`
	Person      *Actor       `gorm:"constraint:OnDelete:CASCADE;<-:false;"`
	CreatedAt   time.Time
}

type Communities struct {
	db *gorm.DB
}

func NewCommunities(db *gorm.DB) *Communities {
	return &Communities{db: db}
}

// AddModerator makes person a moderator of community. Adding an existing
// moderator is not an error.
func (c *Communities) AddModerator(community, person *Actor) error {
	return c.db.Clauses(clause.OnConflict{DoNothing: true}).Create(&CommunityModerator{
		CommunityID: community.ID,
		PersonID:    person.ID,
	}).Error
}

// RemoveModerator removes person from the moderators of community.
func (c *Communities) RemoveModerator(community, person *Actor) error {
	return c.db.Where("community_id = ? AND person_id = ?", community.ID, person.ID).Delete(&CommunityModerator{}).Error
}

// ReplaceModerators replaces the moderators of community with mods.
func (c *Communities) ReplaceModerators(community *Actor, mods []*Actor) error {
	return c.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("community_id = ?", community.ID).Delete(&CommunityModerator{}).Error; err != nil {
			return err
		}
		if len(mods) == 0 {
			return nil
		}
		ids := algorithms.Uniq(algorithms.Map(mods, func(mod *Actor) snowflake.ID { return mod.ID }))
		rows := algorithms.Map(ids, func(id snowflake.ID) *CommunityModerator {
			return &CommunityModerator{
				CommunityID: community.ID,
				PersonID:    id,
			}
		})
		return tx.Create(&rows).Error
	})
}

// Moderators returns the moderators of community, oldest first.
func (c *Communities) Moderators(community *Actor) ([]*Actor, error) {
	var mods []*Actor
	err := c.db.Joins("JOIN community_moderators ON community_moderators.person_id = actors.id").
		Where("community_moderators.community_id = ?", community.ID).
		Order("community_moderators.created_at").
		Find(&mods).Error
	return mods, err
}

// IsModerator reports whether person moderates community.
func (c *Communities) IsModerator(community, person *Actor) (bool, error) {
	var count int64
	err := c.db.Model(&CommunityModerator{}).Where("community_id = ? AND person_id = ?", community.ID, person.ID).Count(&count).Error
	return count > 0, err
}

// IsModOrAdmin reports whether person moderates community. Admins of this
// instance moderate every local community.
func (c *Communities) IsModOrAdmin(community, person *Actor) (bool, error) {
	if person.Admin && person.IsLocal() && community.IsLocal() {
		return true, nil
	}
	return c.IsModerator(community, person)
}

// Follow records person as a follower of community.
func (c *Communities) Follow(community, person *Actor) error {
	return c.db.Clauses(clause.OnConflict{DoNothing: true}).Create(&CommunityFollower{
		CommunityID: community.ID,
		PersonID:    person.ID,
	}).Error
}

// Unfollow removes person from the followers of community. Removing a
// non follower is not an error.
func (c *Communities) Unfollow(community, person *Actor) error {
	return c.db.Where("community_id = ? AND person_id = ?", community.ID, person.ID).Delete(&CommunityFollower{}).Error
}

// IsFollower reports whether person follows community.
func (c *Communities) IsFollower(community, person *Actor) (bool, error) {
	var count int64
	err := c.db.Model(&CommunityFollower{}).Where("community_id = ? AND person_id = ?", community.ID, person.ID).Count(&count).Error
	return count > 0, err
}

// FollowerInboxes returns the de-duplicated inboxes of the remote followers of community.
func (c *Communities) FollowerInboxes(community *Actor) ([]string, error) {
	var followers []*Actor
	err := c.db.Joins("JOIN community_followers ON community_followers.person_id = actors.id").
		Where("community_followers.community_id = ?", community.ID).
		Where("actors.type NOT IN ?", []ActorType{LocalPerson, LocalGroup, LocalService}).
		Find(&followers).Error
	if err != nil {
		return nil, err
	}
	return algorithms.Uniq(algorithms.Map(followers, (*Actor).Inbox)), nil
}
