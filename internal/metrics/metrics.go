package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	slotWrites = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "ascend",
			Name:      "slot_writes_total",
			Help:      "Count of slot writes by key prefix.",
		},
		[]string{"slot"},
	)

	slotShapeMismatch = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "ascend",
			Name:      "slot_shape_mismatch_total",
			Help:      "Count of slot reads that returned an unexpected shape.",
		},
		[]string{"slot"},
	)

	availabilityUpdates = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "ascend",
			Name:      "availability_updates_total",
			Help:      "Count of availability updates by kind.",
		},
		[]string{"kind"},
	)

	calendarEvents = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "ascend",
			Name:      "calendar_events_total",
			Help:      "Count of calendar event mutations by action.",
		},
		[]string{"action"},
	)

	changeNotifications = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "ascend",
			Name:      "change_notifications_total",
			Help:      "Count of slot change notifications by source.",
		},
		[]string{"source"},
	)

	notificationsProcessed = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "ascend",
			Name:      "notifications_processed_total",
			Help:      "Count of notifications delivered or purged by the scheduler.",
		},
		[]string{"result"},
	)

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "ascend",
			Name:      "http_requests_total",
			Help:      "Count of API requests by route.",
		},
		[]string{"route"},
	)
)

// Register registers metrics (idempotent).
func Register() {
	once.Do(func() {
		prometheus.MustRegister(
			slotWrites,
			slotShapeMismatch,
			availabilityUpdates,
			calendarEvents,
			changeNotifications,
			notificationsProcessed,
			httpRequests,
		)
	})
}

func IncSlotWrite(slot string) {
	slotWrites.WithLabelValues(slot).Inc()
}

func IncShapeMismatch(slot string) {
	slotShapeMismatch.WithLabelValues(slot).Inc()
}

func IncAvailabilityUpdate(kind string) {
	availabilityUpdates.WithLabelValues(kind).Inc()
}

func IncCalendarEvent(action string) {
	calendarEvents.WithLabelValues(action).Inc()
}

func IncChangeNotification(source string) {
	changeNotifications.WithLabelValues(source).Inc()
}

func AddNotificationsProcessed(result string, n int) {
	notificationsProcessed.WithLabelValues(result).Add(float64(n))
}

func IncHTTP(route string) {
	httpRequests.WithLabelValues(route).Inc()
}
