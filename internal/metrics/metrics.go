package metrics

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	SwipesCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "workmatch_swipes_total",
			Help: "Total number of recorded swipes.",
		},
		[]string{"direction", "interested"},
	)
	MatchesCreatedCounter = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "workmatch_matches_created_total",
			Help: "Total number of matches created.",
		},
	)
	DraftsAppliedCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "workmatch_drafts_applied_total",
			Help: "Total number of company drafts applied.",
		},
		[]string{"path"}, // create | edit
	)
	InvitesCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "workmatch_invites_total",
			Help: "Total number of invite state changes.",
		},
		[]string{"status"},
	)
	ErrorsCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "workmatch_errors_total",
			Help: "Total number of occurred errors.",
		},
		[]string{"type"},
	)
)

// Register registers all collectors and mounts the /metrics endpoint.
func Register(r *gin.Engine) {
	prometheus.MustRegister(SwipesCounter)
	prometheus.MustRegister(MatchesCreatedCounter)
	prometheus.MustRegister(DraftsAppliedCounter)
	prometheus.MustRegister(InvitesCounter)
	prometheus.MustRegister(ErrorsCounter)

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
}
