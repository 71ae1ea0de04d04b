package activitypub

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var inboxActivities = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "pubmod_inbox_activities_total",
	Help: "Number of inbound activities by type and outcome",
}, []string{"type", "outcome"})

var remoteFetches = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "pubmod_remote_fetches_total",
	Help: "Number of remote actor fetches by outcome",
}, []string{"outcome"})

var activitiesEnqueued = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "pubmod_activities_enqueued_total",
	Help: "Number of outbound deliveries enqueued by activity type",
}, []string{"type"})
