package session

import "expvar"

var (
	metricHeartbeatsTotal        = expvar.NewInt("session_heartbeats_total")
	metricMinutesBilledTotal     = expvar.NewInt("session_minutes_billed_total")
	metricAutoEndTotal           = expvar.NewInt("session_auto_end_total")
	metricStartedTotal           = expvar.NewInt("session_started_total")
	metricCompletedTotal         = expvar.NewInt("session_completed_total")
	metricRoomTeardownFailsTotal = expvar.NewInt("session_room_teardown_fails_total")
)
