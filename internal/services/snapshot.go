// Package services holds the state-consistency core of the dashboard: the
// snapshot store, the push-event reconciler with its bounded display log,
// and the action dispatcher.
package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/tradedesk/godesk/internal/domain"
	"github.com/tradedesk/godesk/internal/metrics"
)

var snapLog = logrus.WithField("component", "snapshot")

// Backend is the subset of the API client the snapshot store reads from.
type Backend interface {
	CurrentUser(ctx context.Context, session domain.Session) (domain.User, error)
	MyOrders(ctx context.Context, session domain.Session) ([]domain.Order, error)
	MyWallet(ctx context.Context, session domain.Session) (domain.Wallet, error)
	MyTrades(ctx context.Context, session domain.Session) ([]domain.Trade, error)
}

// UserCache persists the current user for display continuity. Optional.
type UserCache interface {
	SaveUser(user domain.User) error
}

// Snapshot is the last-known authoritative state.
type Snapshot struct {
	User      domain.User    `json:"user"`
	Orders    []domain.Order `json:"orders"`
	Wallet    domain.Wallet  `json:"wallet"`
	Trades    []domain.Trade `json:"trades"`
	FetchedAt time.Time      `json:"fetched_at"`
}

// FetchError is a failed snapshot read. The store's prior state is retained
// when it occurs.
type FetchError struct {
	Resource string
	Err      error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetching %s failed: %v", e.Resource, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// Notify is called after a successful commit or after the error state
// changes, so the UI can redraw.
type Notify interface {
	Emit()
}

// SnapshotStore owns the authoritative copies of user, orders, wallet, and
// trade history. Refresh replaces all four atomically from the caller's
// point of view; overlapping calls are tolerated with a last-writer-wins
// commit.
type SnapshotStore struct {
	backend Backend
	session domain.Session
	cache   UserCache
	changed Notify

	mu       sync.Mutex
	snap     Snapshot
	haveSnap bool
	draft    domain.OrderDraft
	lastErr  error
	tornDown bool
}

// NewSnapshotStore creates a store for one authenticated session. cache and
// changed may be nil.
func NewSnapshotStore(backend Backend, session domain.Session, cache UserCache, changed Notify) *SnapshotStore {
	return &SnapshotStore{
		backend: backend,
		session: session,
		cache:   cache,
		changed: changed,
		draft:   domain.NewOrderDraft(""),
	}
}

// Refresh performs the four reads concurrently and commits all-or-nothing:
// on any failure the prior state is left untouched and the error is
// returned for user-visible reporting.
func (s *SnapshotStore) Refresh(ctx context.Context) error {
	var next Snapshot

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		user, err := s.backend.CurrentUser(gctx, s.session)
		if err != nil {
			return &FetchError{Resource: "current user", Err: err}
		}
		next.User = user
		return nil
	})
	g.Go(func() error {
		orders, err := s.backend.MyOrders(gctx, s.session)
		if err != nil {
			return &FetchError{Resource: "orders", Err: err}
		}
		next.Orders = orders
		return nil
	})
	g.Go(func() error {
		wallet, err := s.backend.MyWallet(gctx, s.session)
		if err != nil {
			return &FetchError{Resource: "wallet", Err: err}
		}
		next.Wallet = wallet
		return nil
	})
	g.Go(func() error {
		trades, err := s.backend.MyTrades(gctx, s.session)
		if err != nil {
			return &FetchError{Resource: "trades", Err: err}
		}
		next.Trades = trades
		return nil
	})

	if err := g.Wait(); err != nil {
		snapLog.WithError(err).Warn("refresh failed, keeping prior state")
		metrics.RefreshErrors.Add(1)
		s.setError(err)
		return err
	}
	next.FetchedAt = time.Now()
	metrics.Refreshes.Add(1)

	s.mu.Lock()
	if s.tornDown {
		s.mu.Unlock()
		return context.Canceled
	}
	s.snap = next
	s.haveSnap = true
	s.lastErr = nil
	// Keep the order form pointing at the authoritative owner.
	s.draft.UserID = next.User.ID
	s.mu.Unlock()

	if s.cache != nil {
		if err := s.cache.SaveUser(next.User); err != nil {
			snapLog.WithError(err).Warn("user display cache write failed")
		}
	}
	s.emit()

	snapLog.WithFields(logrus.Fields{
		"orders": len(next.Orders),
		"trades": len(next.Trades),
	}).Debug("snapshot committed")
	return nil
}

// Current returns the last committed snapshot. ok is false before the first
// successful refresh.
func (s *SnapshotStore) Current() (snap Snapshot, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snap, s.haveSnap
}

// LastError returns the most recent refresh failure, cleared by the next
// successful commit.
func (s *SnapshotStore) LastError() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastErr
}

// Draft returns the current order form state.
func (s *SnapshotStore) Draft() domain.OrderDraft {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.draft
}

// SetDraft replaces the order form state, preserving the authoritative
// owner id.
func (s *SnapshotStore) SetDraft(draft domain.OrderDraft) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.haveSnap {
		draft.UserID = s.snap.User.ID
	}
	s.draft = draft
}

// ResetDraft restores the form defaults after a successful submission.
func (s *SnapshotStore) ResetDraft() {
	s.mu.Lock()
	defer s.mu.Unlock()
	userID := ""
	if s.haveSnap {
		userID = s.snap.User.ID
	}
	s.draft = domain.NewOrderDraft(userID)
}

// Teardown marks the store dead: in-flight refreshes will not commit.
func (s *SnapshotStore) Teardown() {
	s.mu.Lock()
	s.tornDown = true
	s.haveSnap = false
	s.snap = Snapshot{}
	s.mu.Unlock()
}

func (s *SnapshotStore) setError(err error) {
	s.mu.Lock()
	s.lastErr = err
	s.mu.Unlock()
	s.emit()
}

func (s *SnapshotStore) emit() {
	if s.changed != nil {
		s.changed.Emit()
	}
}
