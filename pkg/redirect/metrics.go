package redirect

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	decisionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "login_redirect_decisions_total",
		Help: "Post-login redirect decisions by outcome.",
	}, []string{"outcome"})

	recoveredFailuresTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "login_redirect_recovered_failures_total",
		Help: "Collaborator failures recovered during redirect resolution.",
	}, []string{"source"})

	ruleCacheHitsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "login_redirect_rule_cache_hits_total",
		Help: "Redirect rule cache hits.",
	})
	ruleCacheMissesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "login_redirect_rule_cache_misses_total",
		Help: "Redirect rule cache misses.",
	})
)
