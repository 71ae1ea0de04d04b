package models

import (
	"context"
	"time"

	"github.com/davecheney/pubmod/internal/snowflake"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// A CommunityPersonBan records that Person is banned from Community.
// There is at most one row per (community, person).
type CommunityPersonBan struct {
	CommunityID snowflake.ID `gorm:"primarykey;autoIncrement:false"`
	Community   *Actor       `gorm:"constraint:OnDelete:CASCADE;<-:false;"`
	PersonID    snowflake.ID `gorm:"primarykey;autoIncrement:false"`
	Person      *Actor       `gorm:"constraint:OnDelete:CASCADE;<-:false;"`
	CreatedAt   time.Time
}

type Bans struct {
	db *gorm.DB
}

func NewBans(db *gorm.DB) *Bans {
	return &Bans{db: db}
}

// Ban bans person from community. Banning a banned person is not an error.
func (b *Bans) Ban(ctx context.Context, communityID, personID snowflake.ID) error {
	return b.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&CommunityPersonBan{
		CommunityID: communityID,
		PersonID:    personID,
	}).Error
}

// Unban lifts the ban of person from community with a single DELETE.
// Unbanning a person who is not banned is not an error.
func (b *Bans) Unban(ctx context.Context, communityID, personID snowflake.ID) error {
	return b.db.WithContext(ctx).Where("community_id = ? AND person_id = ?", communityID, personID).Delete(&CommunityPersonBan{}).Error
}

// IsBanned reports whether person is banned from community.
func (b *Bans) IsBanned(communityID, personID snowflake.ID) (bool, error) {
	var count int64
	err := b.db.Model(&CommunityPersonBan{}).Where("community_id = ? AND person_id = ?", communityID, personID).Count(&count).Error
	return count > 0, err
}

// FindByCommunity returns up to limit bans of community, newest first.
func (b *Bans) FindByCommunity(communityID snowflake.ID, limit int) ([]*CommunityPersonBan, error) {
	var bans []*CommunityPersonBan
	err := b.db.Preload("Person").
		Where("community_id = ?", communityID).
		Order("created_at DESC").
		Limit(limit).
		Find(&bans).Error
	return bans, err
}
