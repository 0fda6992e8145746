package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	ResultOK                  = "ok"
	ResultMissing             = "missing"
	ResultUnknown             = "unknown"
	ResultExpired             = "expired"
	ResultInsufficientAbility = "insufficient_ability"
	ResultError               = "error"
)

var (
	TokensIssued = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "library_tokens_issued_total",
		Help: "Total number of bearer tokens issued",
	}, []string{"name"})

	TokenVerifications = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "library_token_verifications_total",
		Help: "Bearer token verification outcomes",
	}, []string{"result"})

	TokensPruned = promauto.NewCounter(prometheus.CounterOpts{
		Name: "library_tokens_pruned_total",
		Help: "Expired tokens removed by explicit pruning",
	})

	SignIns = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "library_signins_total",
		Help: "Sign-in attempts by outcome",
	}, []string{"outcome"})
)
