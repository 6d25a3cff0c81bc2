package services

import (
	"context"
	"sync"
	"testing"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tradedesk/godesk/internal/domain"
)

// fakeBackend returns canned snapshot data, with per-resource failure
// injection and call counting.
type fakeBackend struct {
	mu sync.Mutex

	user   domain.User
	orders []domain.Order
	wallet domain.Wallet
	trades []domain.Trade

	failUser   error
	failOrders error
	failWallet error
	failTrades error

	refreshCalls int
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		user: domain.User{ID: "u1", Username: "alice", Email: "a@example.com"},
		orders: []domain.Order{
			{ID: "o1", UserID: "u1", Side: domain.SideBuy, Status: domain.OrderStatusPending},
		},
		wallet: domain.Wallet{Balance: decimal.NewFromInt(100), Currency: "USD", AssetSymbol: "BTC"},
		trades: []domain.Trade{{ID: "t1", TradeType: domain.TradeTypeBuy}},
	}
}

func (f *fakeBackend) CurrentUser(ctx context.Context, _ domain.Session) (domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.refreshCalls++
	if f.failUser != nil {
		return domain.User{}, f.failUser
	}
	return f.user, nil
}

func (f *fakeBackend) MyOrders(ctx context.Context, _ domain.Session) ([]domain.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failOrders != nil {
		return nil, f.failOrders
	}
	return f.orders, nil
}

func (f *fakeBackend) MyWallet(ctx context.Context, _ domain.Session) (domain.Wallet, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failWallet != nil {
		return domain.Wallet{}, f.failWallet
	}
	return f.wallet, nil
}

func (f *fakeBackend) MyTrades(ctx context.Context, _ domain.Session) ([]domain.Trade, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failTrades != nil {
		return nil, f.failTrades
	}
	return f.trades, nil
}

func (f *fakeBackend) refreshCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.refreshCalls
}

type fakeUserCache struct {
	mu    sync.Mutex
	users []domain.User
}

func (c *fakeUserCache) SaveUser(u domain.User) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.users = append(c.users, u)
	return nil
}

func testStore(backend Backend) *SnapshotStore {
	return NewSnapshotStore(backend, domain.Session{Token: "t"}, nil, nil)
}

func TestRefreshCommitsAllFourResources(t *testing.T) {
	backend := newFakeBackend()
	store := testStore(backend)

	require.NoError(t, store.Refresh(context.Background()))

	snap, ok := store.Current()
	require.True(t, ok)
	assert.Equal(t, "alice", snap.User.Username)
	assert.Len(t, snap.Orders, 1)
	assert.Equal(t, "100", snap.Wallet.Balance.String())
	assert.Len(t, snap.Trades, 1)
	assert.False(t, snap.FetchedAt.IsZero())
	assert.NoError(t, store.LastError())
}

func TestRefreshIsAtomicUnderPartialFailure(t *testing.T) {
	backend := newFakeBackend()
	store := testStore(backend)
	require.NoError(t, store.Refresh(context.Background()))

	// Second refresh fails one of the four reads; prior state must survive
	// untouched.
	backend.mu.Lock()
	backend.failWallet = errors.New("boom")
	backend.user = domain.User{ID: "u2", Username: "mallory"}
	backend.mu.Unlock()

	err := store.Refresh(context.Background())
	var fetchErr *FetchError
	require.ErrorAs(t, err, &fetchErr)
	assert.Equal(t, "wallet", fetchErr.Resource)

	snap, ok := store.Current()
	require.True(t, ok)
	assert.Equal(t, "alice", snap.User.Username, "partial results must not leak")
	assert.ErrorIs(t, store.LastError(), err)
}

func TestRefreshErrorClearedByNextSuccess(t *testing.T) {
	backend := newFakeBackend()
	store := testStore(backend)

	backend.mu.Lock()
	backend.failTrades = errors.New("down")
	backend.mu.Unlock()
	require.Error(t, store.Refresh(context.Background()))
	require.Error(t, store.LastError())

	backend.mu.Lock()
	backend.failTrades = nil
	backend.mu.Unlock()
	require.NoError(t, store.Refresh(context.Background()))
	assert.NoError(t, store.LastError())
}

func TestRefreshPropagatesUserIDIntoDraft(t *testing.T) {
	backend := newFakeBackend()
	store := testStore(backend)

	store.SetDraft(domain.OrderDraft{
		Side:     domain.SideSell,
		Kind:     domain.OrderKindLimit,
		Price:    decimal.NewFromInt(99),
		Quantity: decimal.NewFromInt(2),
	})
	require.NoError(t, store.Refresh(context.Background()))

	draft := store.Draft()
	assert.Equal(t, "u1", draft.UserID)
	assert.Equal(t, domain.SideSell, draft.Side, "pending edits survive refresh")
}

func TestRefreshWritesUserDisplayCache(t *testing.T) {
	backend := newFakeBackend()
	cache := &fakeUserCache{}
	store := NewSnapshotStore(backend, domain.Session{Token: "t"}, cache, nil)

	require.NoError(t, store.Refresh(context.Background()))

	cache.mu.Lock()
	defer cache.mu.Unlock()
	require.Len(t, cache.users, 1)
	assert.Equal(t, "alice", cache.users[0].Username)
}

func TestTornDownStoreRefusesCommit(t *testing.T) {
	backend := newFakeBackend()
	store := testStore(backend)

	store.Teardown()
	err := store.Refresh(context.Background())
	assert.ErrorIs(t, err, context.Canceled)

	_, ok := store.Current()
	assert.False(t, ok)
}

func TestOverlappingRefreshesStayConsistent(t *testing.T) {
	backend := newFakeBackend()
	store := testStore(backend)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			store.Refresh(context.Background())
		}()
	}
	wg.Wait()

	snap, ok := store.Current()
	require.True(t, ok)
	// Every commit is self-consistent: all fields from the same gather.
	assert.Equal(t, "u1", snap.User.ID)
	assert.Len(t, snap.Orders, 1)
	assert.Equal(t, 8, backend.refreshCount())
}

func TestResetDraftKeepsOwner(t *testing.T) {
	backend := newFakeBackend()
	store := testStore(backend)
	require.NoError(t, store.Refresh(context.Background()))

	store.SetDraft(domain.OrderDraft{Side: domain.SideSell, Quantity: decimal.NewFromInt(5)})
	store.ResetDraft()

	draft := store.Draft()
	assert.Equal(t, "u1", draft.UserID)
	assert.Equal(t, domain.SideBuy, draft.Side)
	assert.True(t, draft.Quantity.IsZero())
}
