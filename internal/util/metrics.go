package util

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	RegistrationsCreatedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "registrations_created_total",
		Help: "Total number of completed registration submissions",
	})

	RegistrationsFailedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "registrations_failed_total",
		Help: "Total number of failed registration submissions",
	}, []string{"reason"})

	TicketsIssuedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "tickets_issued_total",
		Help: "Total number of tickets issued",
	})

	TicketsCancelledTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "tickets_cancelled_total",
		Help: "Total number of tickets cancelled",
	})

	CapacityRejectionsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "capacity_rejections_total",
		Help: "Total number of registrations rejected for exhausted distance capacity",
	})

	StockRejectionsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "stock_rejections_total",
		Help: "Total number of registrations rejected for insufficient merchandise stock",
	})

	DuplicateDetectionsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "duplicate_detections_total",
		Help: "Total number of duplicate-registration matches",
	})

	AccountsProvisionedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "accounts_provisioned_total",
		Help: "Total number of account holders created during registration",
	})

	NotificationsSentTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "notifications_sent_total",
		Help: "Total number of confirmation notifications sent",
	})

	NotificationsFailedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "notifications_failed_total",
		Help: "Total number of confirmation notifications that failed to send",
	})

	RegistrationLatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "registration_latency_seconds",
		Help:    "Latency of registration submissions end to end",
		Buckets: prometheus.DefBuckets,
	})

	SlotReserveLatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "slot_reserve_latency_seconds",
		Help:    "Latency of distance slot reservation statements",
		Buckets: prometheus.DefBuckets,
	})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "HTTP request latency",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})
)
