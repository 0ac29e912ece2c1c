package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	InvitationsCreated = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "gather_invitations_created_total",
		Help: "Invitations created, by kind",
	}, []string{"kind"})

	InvitationResponses = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "gather_invitation_responses_total",
		Help: "Invitation responses applied, by kind, decision and channel (api or email)",
	}, []string{"kind", "decision", "via"})

	NotificationsQueued = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "gather_notifications_queued_total",
		Help: "Notification jobs enqueued, by channel",
	}, []string{"channel"})

	NotificationsDelivered = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "gather_notifications_delivered_total",
		Help: "Notification jobs delivered, by channel and result",
	}, []string{"channel", "result"})

	EventStatusTransitions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "gather_event_status_transitions_total",
		Help: "Event status changes applied by the status sweep",
	}, []string{"status"})

	StatusChecksPending = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "gather_status_checks_due",
		Help: "Due status checks claimed by the last sweep",
	})
)

func Handler() http.Handler {
	return promhttp.Handler()
}
