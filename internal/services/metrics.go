package services

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics counts domain events
type Metrics struct {
	reactions    *prometheus.CounterVec
	views        prometheus.Counter
	uploads      *prometheus.CounterVec
	cacheLookups *prometheus.CounterVec
	registered   prometheus.Counter
	logins       *prometheus.CounterVec
}

// NewMetrics registers the service collectors on reg. A nil reg gets a private registry.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}

	m := &Metrics{
		reactions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "vidtube_reactions_total",
			Help: "Like/dislike toggles, by action and resulting state.",
		}, []string{"action", "state"}),
		views: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "vidtube_view_requests_total",
			Help: "View record requests, including repeat viewers.",
		}),
		uploads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "vidtube_uploads_total",
			Help: "Media uploads, by provider and outcome.",
		}, []string{"provider", "outcome"}),
		cacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "vidtube_video_cache_lookups_total",
			Help: "Video fetch cache lookups, by result.",
		}, []string{"result"}),
		registered: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "vidtube_registrations_total",
			Help: "Successful user registrations.",
		}),
		logins: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "vidtube_logins_total",
			Help: "Login attempts, by outcome.",
		}, []string{"outcome"}),
	}

	reg.MustRegister(m.reactions, m.views, m.uploads, m.cacheLookups, m.registered, m.logins)
	return m
}
