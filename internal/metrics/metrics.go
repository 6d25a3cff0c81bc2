// Package metrics exposes desk counters over expvar. The status API serves
// them at /debug/vars.
package metrics

import "expvar"

var (
	PushEvents        = expvar.NewMap("push_events")
	Refreshes         = expvar.NewInt("snapshot_refreshes")
	RefreshErrors     = expvar.NewInt("snapshot_refresh_errors")
	ActionsDispatched = expvar.NewInt("actions_dispatched")
	ActionsRejected   = expvar.NewInt("actions_rejected")
	ActionsFailed     = expvar.NewInt("actions_failed")
	Reconnects        = expvar.NewInt("ws_reconnects")
)
