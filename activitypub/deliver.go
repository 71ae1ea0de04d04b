package activitypub

import (
	"context"
	"net/url"

	"github.com/davecheney/pubmod/internal/algorithms"
	"github.com/davecheney/pubmod/models"
	"github.com/go-json-experiment/json"
	"gorm.io/gorm"
)

// Deliverer hands an outbound activity to the delivery queue. Deliver
// returns once the deliveries are queued; it does not wait for the
// remote servers.
type Deliverer interface {
	Deliver(ctx context.Context, activity Outbound, actor, community *models.Actor, inboxes []string) error
}

// QueueDeliverer stores outbound activities and queues their deliveries
// for the delivery worker.
type QueueDeliverer struct {
	db       *gorm.DB
	settings *Settings
}

func NewQueueDeliverer(db *gorm.DB, settings *Settings) *QueueDeliverer {
	return &QueueDeliverer{
		db:       db,
		settings: settings,
	}
}

// Deliver delivers activity, performed by actor in community, to inboxes.
//
// Activities in a local community are announced by the community to its
// remote followers and to inboxes. Activities in a remote community are
// sent by actor to inboxes and to the community, which announces them.
func (d *QueueDeliverer) Deliver(ctx context.Context, activity Outbound, actor, community *models.Actor, inboxes []string) error {
	body, err := json.Marshal(activity)
	if err != nil {
		return err
	}
	inboxes = inboxes[:len(inboxes):len(inboxes)]
	return d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		activities := models.NewActivities(tx)
		if _, err := activities.Record(activity.ActivityID(), activity.ActivityType(), body, true); err != nil {
			return err
		}
		if !community.IsLocal() {
			return d.enqueue(tx, activity, body, actor, append(inboxes, community.Inbox()))
		}

		announce := &AnnounceActivity{
			Context: defaultContext,
			Actor:   community.URI,
			To:      []string{PublicAddress},
			Object:  body,
			CC:      []string{community.FollowersURL},
			Type:    typeAnnounce,
			ID:      GenerateActivityID(d.settings, typeAnnounce),
		}
		announceBody, err := json.Marshal(announce)
		if err != nil {
			return err
		}
		if _, err := activities.Record(announce.ID, typeAnnounce, announceBody, true); err != nil {
			return err
		}
		followers, err := models.NewCommunities(tx).FollowerInboxes(community)
		if err != nil {
			return err
		}
		return d.enqueue(tx, announce, announceBody, community, append(followers, inboxes...))
	})
}

func (d *QueueDeliverer) enqueue(tx *gorm.DB, activity Outbound, body []byte, sender *models.Actor, inboxes []string) error {
	inboxes = algorithms.Uniq(algorithms.Filter(inboxes, d.remote))
	if err := models.NewDeliveries(tx).Enqueue(sender, activity.ActivityID(), body, inboxes); err != nil {
		return err
	}
	activitiesEnqueued.WithLabelValues(activity.ActivityType()).Add(float64(len(inboxes)))
	return nil
}

// remote reports whether inbox belongs to another instance.
func (d *QueueDeliverer) remote(inbox string) bool {
	u, err := url.Parse(inbox)
	return err == nil && inbox != "" && u.Host != d.settings.Hostname
}
