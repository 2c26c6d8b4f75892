package sweep

import "expvar"

var (
	metricSweepRunsTotal     = expvar.NewInt("sweep_runs_total")
	metricSweepClosedTotal   = expvar.NewInt("sweep_closed_total")
	metricSweepFailuresTotal = expvar.NewInt("sweep_item_failures_total")
)
