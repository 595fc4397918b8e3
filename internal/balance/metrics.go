package balance

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	recomputeTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "divvy_balance_recomputes_total",
		Help: "Full balance aggregations run over a scope's expense set.",
	})

	notificationTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "divvy_ledger_change_notifications_total",
		Help: "Ledger change notifications received from the database.",
	})
)
