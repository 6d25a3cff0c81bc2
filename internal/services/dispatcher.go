package services

import (
	"context"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/tradedesk/godesk/internal/domain"
	"github.com/tradedesk/godesk/internal/metrics"
	"github.com/tradedesk/godesk/internal/ports"
)

var dispatchLog = logrus.WithField("component", "dispatcher")

// ErrInvalidInput rejects an action locally before any network call.
var ErrInvalidInput = errors.New("invalid input")

// Action names reported to the notifier.
const (
	ActionPlaceOrder    = "place_order"
	ActionCancelOrder   = "cancel_order"
	ActionTopUp         = "top_up"
	ActionWithdraw      = "withdraw"
	ActionAddAsset      = "add_asset"
	ActionWithdrawAsset = "withdraw_asset"
)

// ActionBackend is the subset of the API client the dispatcher mutates
// through.
type ActionBackend interface {
	CreateOrder(ctx context.Context, session domain.Session, draft domain.OrderDraft) (domain.Order, error)
	CancelOrder(ctx context.Context, session domain.Session, orderID string) error
	TopUp(ctx context.Context, session domain.Session, amount decimal.Decimal) error
	Withdraw(ctx context.Context, session domain.Session, amount decimal.Decimal) error
	AddAsset(ctx context.Context, session domain.Session, quantity decimal.Decimal) error
	WithdrawAsset(ctx context.Context, session domain.Session, quantity decimal.Decimal) error
}

// Dispatcher validates and sends each user-initiated mutating action
// exactly once: no automatic retry, failure detail surfaced to the user,
// and a snapshot refresh after every success.
type Dispatcher struct {
	backend  ActionBackend
	session  domain.Session
	store    *SnapshotStore
	notifier ports.ActionNotifier
}

// NewDispatcher creates a dispatcher for one authenticated session.
// notifier may be nil.
func NewDispatcher(backend ActionBackend, session domain.Session, store *SnapshotStore, notifier ports.ActionNotifier) *Dispatcher {
	return &Dispatcher{
		backend:  backend,
		session:  session,
		store:    store,
		notifier: notifier,
	}
}

// PlaceOrder submits the current order draft.
func (d *Dispatcher) PlaceOrder(ctx context.Context) error {
	draft := d.store.Draft()
	if !draft.Quantity.IsPositive() {
		return d.reject(ActionPlaceOrder, "quantity must be positive")
	}
	if draft.Kind == domain.OrderKindLimit && !draft.Price.IsPositive() {
		return d.reject(ActionPlaceOrder, "price must be positive")
	}

	_, err := d.backend.CreateOrder(ctx, d.session, draft)
	if err != nil {
		return d.fail(ActionPlaceOrder, err)
	}
	d.store.ResetDraft()
	return d.succeed(ctx, ActionPlaceOrder)
}

// CancelOrder cancels one order by id.
func (d *Dispatcher) CancelOrder(ctx context.Context, orderID string) error {
	if orderID == "" {
		return d.reject(ActionCancelOrder, "order id is required")
	}
	if err := d.backend.CancelOrder(ctx, d.session, orderID); err != nil {
		return d.fail(ActionCancelOrder, err)
	}
	return d.succeed(ctx, ActionCancelOrder)
}

// TopUp adds fiat balance.
func (d *Dispatcher) TopUp(ctx context.Context, amount decimal.Decimal) error {
	return d.amountAction(ctx, ActionTopUp, amount, d.backend.TopUp)
}

// Withdraw removes fiat balance.
func (d *Dispatcher) Withdraw(ctx context.Context, amount decimal.Decimal) error {
	return d.amountAction(ctx, ActionWithdraw, amount, d.backend.Withdraw)
}

// AddAsset credits asset holdings.
func (d *Dispatcher) AddAsset(ctx context.Context, quantity decimal.Decimal) error {
	return d.amountAction(ctx, ActionAddAsset, quantity, d.backend.AddAsset)
}

// WithdrawAsset debits asset holdings.
func (d *Dispatcher) WithdrawAsset(ctx context.Context, quantity decimal.Decimal) error {
	return d.amountAction(ctx, ActionWithdrawAsset, quantity, d.backend.WithdrawAsset)
}

func (d *Dispatcher) amountAction(ctx context.Context, action string, amount decimal.Decimal,
	send func(context.Context, domain.Session, decimal.Decimal) error) error {

	if !amount.IsPositive() {
		return d.reject(action, "amount must be positive")
	}
	if err := send(ctx, d.session, amount); err != nil {
		return d.fail(action, err)
	}
	return d.succeed(ctx, action)
}

// reject resolves a validation failure locally; no request is made.
func (d *Dispatcher) reject(action, reason string) error {
	metrics.ActionsRejected.Add(1)
	dispatchLog.WithField("action", action).Debugf("rejected: %s", reason)
	if d.notifier != nil {
		d.notifier.ActionFailed(action, reason)
	}
	return errors.Wrap(ErrInvalidInput, reason)
}

// fail surfaces the backend's own detail when the failure carries one.
func (d *Dispatcher) fail(action string, err error) error {
	metrics.ActionsFailed.Add(1)
	detail := failureDetail(err)
	dispatchLog.WithField("action", action).WithError(err).Warn("action failed")
	if d.notifier != nil {
		d.notifier.ActionFailed(action, detail)
	}
	return err
}

func (d *Dispatcher) succeed(ctx context.Context, action string) error {
	metrics.ActionsDispatched.Add(1)
	dispatchLog.WithField("action", action).Info("action succeeded")
	if d.notifier != nil {
		d.notifier.ActionSucceeded(action)
	}
	if err := d.store.Refresh(ctx); err != nil {
		// The action itself landed; the stale snapshot is reported through
		// the store's own error state.
		dispatchLog.WithError(err).Warn("post-action refresh failed")
	}
	return nil
}

type detailer interface {
	Message() string
}

func failureDetail(err error) string {
	var d detailer
	if errors.As(err, &d) && d.Message() != "" {
		return d.Message()
	}
	return "request failed, please try again"
}
