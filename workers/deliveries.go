package workers

import (
	"context"
	"time"

	"github.com/davecheney/pubmod/internal/activitypub"
	"github.com/davecheney/pubmod/models"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"golang.org/x/exp/slog"
	"gorm.io/gorm"
)

var deliveries = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "pubmod_deliveries_total",
	Help: "Number of delivery attempts by outcome",
}, []string{"outcome"})

// NewDeliveryProcessor returns a worker which POSTs queued activities to
// remote inboxes, signed by the actor that queued them.
func NewDeliveryProcessor(env *models.Env, interval time.Duration) func(ctx context.Context) error {
	return func(ctx context.Context) error {
		log := env.Log().With("worker", "deliveries")
		log.Info("started")
		defer log.Info("stopped")

		d := &deliverer{log: log}
		db := env.DB.WithContext(ctx)
		return poll(ctx, interval, func() error {
			return process(db, deliveryScope, d.deliver)
		})
	}
}

func deliveryScope(db *gorm.DB) *gorm.DB {
	return pending(db).Preload("Actor")
}

type deliverer struct {
	log *slog.Logger
}

func (d *deliverer) deliver(db *gorm.DB, request *models.DeliveryRequest) error {
	ctx := db.Statement.Context
	client, err := activitypub.NewClient(request.Actor)
	if err != nil {
		return err
	}
	if err := client.Post(ctx, request.Inbox, request.Body); err != nil {
		deliveries.WithLabelValues("failed").Inc()
		d.log.Warn("delivery failed",
			"inbox", request.Inbox,
			"activity", request.ActivityID,
			"attempt", request.Attempts+1,
			"error", err,
		)
		return err
	}
	deliveries.WithLabelValues("delivered").Inc()
	d.log.Debug("delivered", "inbox", request.Inbox, "activity", request.ActivityID)
	return nil
}
