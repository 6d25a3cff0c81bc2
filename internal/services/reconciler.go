package services

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/tradedesk/godesk/internal/domain"
	"github.com/tradedesk/godesk/internal/metrics"
	"github.com/tradedesk/godesk/internal/ports"
)

var reconcileLog = logrus.WithField("component", "reconciler")

// Reconciler decides, per event kind, whether a push event requires
// re-pulling the snapshot or is informational only. Order-book and wallet
// pushes signal changes to quantities the user can act on and trigger a
// refresh; trade-book pushes are self-contained and unknown payloads are
// display-only.
type Reconciler struct {
	log       *EventLog
	refresher ports.Refresher
}

// NewReconciler wires the display log and the refresher.
func NewReconciler(log *EventLog, refresher ports.Refresher) *Reconciler {
	return &Reconciler{log: log, refresher: refresher}
}

// OnEvent consumes one classified event. Refresh failures are logged; the
// snapshot store keeps its prior state and reports the error itself.
func (r *Reconciler) OnEvent(ctx context.Context, ev domain.PushEvent) {
	r.log.Append(ev)
	metrics.PushEvents.Add(string(ev.Kind()), 1)

	switch ev.Kind() {
	case domain.EventKindOrderBook, domain.EventKindWallet:
		if err := r.refresher.Refresh(ctx); err != nil {
			reconcileLog.WithError(err).WithField("kind", ev.Kind()).
				Warn("refresh after push failed")
		}
	case domain.EventKindTradeBook, domain.EventKindUnknown:
		// Display-only.
	}
}
