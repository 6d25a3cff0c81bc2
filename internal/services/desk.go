package services

import (
	"context"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/tradedesk/godesk/internal/api"
	"github.com/tradedesk/godesk/internal/domain"
	"github.com/tradedesk/godesk/internal/events"
	"github.com/tradedesk/godesk/internal/infrastructure/websocket"
	"github.com/tradedesk/godesk/internal/ports"
	"github.com/tradedesk/godesk/pkg/credstore"
	"github.com/tradedesk/godesk/pkg/orderbook"
	"github.com/tradedesk/godesk/pkg/sigchan"
)

var deskLog = logrus.WithField("component", "desk")

// DeskConfig carries the wiring inputs for a Desk.
type DeskConfig struct {
	API              *api.Client
	Store            *credstore.Store
	WSURL            string
	EventLogCapacity int
	ReconnectPolicy  websocket.ReconnectPolicy
}

// Desk ties the sync layer together for one user at a time: login/logout,
// the push connection feeding the reconciler, the snapshot store, and the
// action dispatcher. The UI talks to the Desk and nothing below it.
type Desk struct {
	cfg     DeskConfig
	changed *sigchan.Chan
	book    *orderbook.Book

	mu         sync.Mutex
	session    domain.Session
	snapshots  *SnapshotStore
	eventLog   *EventLog
	dispatcher *Dispatcher
	conn       *websocket.Client
	cancel     context.CancelFunc
}

// NewDesk creates an idle desk. Call Login or Resume+Start to bring it up.
func NewDesk(cfg DeskConfig) *Desk {
	return &Desk{
		cfg:     cfg,
		changed: sigchan.New(16),
		book:    orderbook.New(),
	}
}

// Changed signals snapshot or event-log updates for the UI to redraw on.
func (d *Desk) Changed() <-chan struct{} {
	return d.changed.C()
}

// Resume returns a previously persisted session, if one exists.
func (d *Desk) Resume() (domain.Session, bool) {
	if d.cfg.Store == nil {
		return domain.Session{}, false
	}
	session, ok, err := d.cfg.Store.LoadSession()
	if err != nil {
		deskLog.WithError(err).Warn("loading stored session failed")
		return domain.Session{}, false
	}
	return session, ok
}

// CachedUser returns the display-cache user for pre-login continuity.
func (d *Desk) CachedUser() (domain.User, bool) {
	if d.cfg.Store == nil {
		return domain.User{}, false
	}
	user, ok, err := d.cfg.Store.LoadUser()
	if err != nil {
		return domain.User{}, false
	}
	return user, ok
}

// Login authenticates, persists the credential, and starts the session.
func (d *Desk) Login(ctx context.Context, username, password string, notifier ports.ActionNotifier) error {
	session, err := d.cfg.API.Login(ctx, username, password)
	if err != nil {
		return err
	}
	if d.cfg.Store != nil {
		if err := d.cfg.Store.SaveSession(session); err != nil {
			deskLog.WithError(err).Warn("persisting session failed")
		}
	}
	return d.Start(ctx, session, notifier)
}

// Start brings up the sync layer for an authenticated session: snapshot
// store, event log, reconciler, dispatcher, and the push connection. The
// initial snapshot is fetched before the push channel opens so the first
// reconciliation never races an empty store.
func (d *Desk) Start(ctx context.Context, session domain.Session, notifier ports.ActionNotifier) error {
	if !session.Valid() {
		return api.ErrAuthRequired
	}

	d.mu.Lock()
	if d.conn != nil {
		d.mu.Unlock()
		return errors.New("desk already started")
	}

	runCtx, cancel := context.WithCancel(context.Background())
	store := NewSnapshotStore(d.cfg.API, session, d.cfg.Store, d.changed)
	eventLog := NewEventLog(d.cfg.EventLogCapacity, d.changed)
	reconciler := NewReconciler(eventLog, store)
	dispatcher := NewDispatcher(d.cfg.API, session, store, notifier)

	d.session = session
	d.snapshots = store
	d.eventLog = eventLog
	d.dispatcher = dispatcher
	d.cancel = cancel
	d.mu.Unlock()

	if err := store.Refresh(runCtx); err != nil {
		deskLog.WithError(err).Warn("initial snapshot failed")
	}

	handlers := websocket.Handlers{
		OnMessage: func(raw string) {
			ev := events.Classify(raw)
			if update, ok := ev.(domain.OrderBookUpdate); ok {
				d.book.Apply(update.Book)
				d.changed.Emit()
			}
			reconciler.OnEvent(runCtx, ev)
		},
		OnError: func(err error) {
			deskLog.WithError(err).Warn("push connection error")
		},
		OnClose: func(info websocket.CloseInfo) {
			deskLog.WithFields(logrus.Fields{
				"code":   info.Code,
				"reason": info.Reason,
			}).Warn("push connection closed")
			d.changed.Emit()
		},
	}

	var opts []websocket.Option
	if d.cfg.ReconnectPolicy != nil {
		opts = append(opts, websocket.WithReconnectPolicy(d.cfg.ReconnectPolicy))
	}
	conn, err := websocket.Dial(ctx, d.cfg.WSURL, session, handlers, opts...)
	if err != nil {
		cancel()
		d.mu.Lock()
		d.conn = nil
		d.cancel = nil
		d.mu.Unlock()
		return err
	}

	d.mu.Lock()
	d.conn = conn
	d.mu.Unlock()

	deskLog.Info("desk started")
	return nil
}

// Logout tears everything down: the push connection is closed, in-flight
// refreshes cannot mutate the store, the display log is cleared, and local
// storage is wiped in full.
func (d *Desk) Logout() {
	d.mu.Lock()
	conn := d.conn
	cancel := d.cancel
	store := d.snapshots
	eventLog := d.eventLog
	d.conn = nil
	d.cancel = nil
	d.snapshots = nil
	d.eventLog = nil
	d.dispatcher = nil
	d.session = domain.Session{}
	d.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if conn != nil {
		conn.Close()
	}
	if store != nil {
		store.Teardown()
	}
	if eventLog != nil {
		eventLog.Clear()
	}
	d.book.Clear()
	if d.cfg.Store != nil {
		if err := d.cfg.Store.Wipe(); err != nil {
			deskLog.WithError(err).Warn("wiping local storage failed")
		}
	}
	d.changed.Emit()
	deskLog.Info("logged out")
}

// Book returns the last pushed public order book.
func (d *Desk) Book() (domain.OrderBookSnapshot, time.Time, bool) {
	return d.book.Current()
}

// Health probes the backend.
func (d *Desk) Health(ctx context.Context) error {
	return d.cfg.API.Health(ctx)
}

// Snapshot returns the last committed state.
func (d *Desk) Snapshot() (Snapshot, bool) {
	d.mu.Lock()
	store := d.snapshots
	d.mu.Unlock()
	if store == nil {
		return Snapshot{}, false
	}
	return store.Current()
}

// LastError returns the most recent refresh failure, if any.
func (d *Desk) LastError() error {
	d.mu.Lock()
	store := d.snapshots
	d.mu.Unlock()
	if store == nil {
		return nil
	}
	return store.LastError()
}

// Events returns the display log entries, oldest first.
func (d *Desk) Events() []LogEntry {
	d.mu.Lock()
	eventLog := d.eventLog
	d.mu.Unlock()
	if eventLog == nil {
		return nil
	}
	return eventLog.Entries()
}

// Store exposes the snapshot store for draft editing.
func (d *Desk) Store() *SnapshotStore {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.snapshots
}

// Dispatcher exposes the action dispatcher; nil before Start.
func (d *Desk) Dispatcher() *Dispatcher {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.dispatcher
}

// Connected reports whether the push connection is live.
func (d *Desk) Connected() bool {
	d.mu.Lock()
	conn := d.conn
	d.mu.Unlock()
	return conn != nil && !conn.IsClosed()
}
