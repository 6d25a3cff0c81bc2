package services

import (
	"context"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tradedesk/godesk/internal/domain"
)

// fakeActions records mutating calls and injects failures.
type fakeActions struct {
	*fakeBackend

	mu          sync.Mutex
	createCalls int
	cancelCalls int
	amountCalls map[string]int
	failWith    error
}

func newFakeActions() *fakeActions {
	return &fakeActions{
		fakeBackend: newFakeBackend(),
		amountCalls: map[string]int{},
	}
}

func (f *fakeActions) CreateOrder(ctx context.Context, _ domain.Session, draft domain.OrderDraft) (domain.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.createCalls++
	if f.failWith != nil {
		return domain.Order{}, f.failWith
	}
	return domain.Order{ID: "created", UserID: draft.UserID}, nil
}

func (f *fakeActions) CancelOrder(ctx context.Context, _ domain.Session, orderID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cancelCalls++
	return f.failWith
}

func (f *fakeActions) amount(name string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.amountCalls[name]++
	return f.failWith
}

func (f *fakeActions) TopUp(ctx context.Context, _ domain.Session, _ decimal.Decimal) error {
	return f.amount(ActionTopUp)
}

func (f *fakeActions) Withdraw(ctx context.Context, _ domain.Session, _ decimal.Decimal) error {
	return f.amount(ActionWithdraw)
}

func (f *fakeActions) AddAsset(ctx context.Context, _ domain.Session, _ decimal.Decimal) error {
	return f.amount(ActionAddAsset)
}

func (f *fakeActions) WithdrawAsset(ctx context.Context, _ domain.Session, _ decimal.Decimal) error {
	return f.amount(ActionWithdrawAsset)
}

type recordingNotifier struct {
	mu        sync.Mutex
	succeeded []string
	failed    map[string]string
}

func newRecordingNotifier() *recordingNotifier {
	return &recordingNotifier{failed: map[string]string{}}
}

func (n *recordingNotifier) ActionSucceeded(action string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.succeeded = append(n.succeeded, action)
}

func (n *recordingNotifier) ActionFailed(action, detail string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.failed[action] = detail
}

// backendError mimics api.Error without importing the api package.
type backendError struct{ detail string }

func (e *backendError) Error() string   { return e.detail }
func (e *backendError) Message() string { return e.detail }

func testDispatcher(t *testing.T, actions *fakeActions) (*Dispatcher, *SnapshotStore, *recordingNotifier) {
	t.Helper()
	store := NewSnapshotStore(actions.fakeBackend, domain.Session{Token: "t"}, nil, nil)
	require.NoError(t, store.Refresh(context.Background()))
	notifier := newRecordingNotifier()
	return NewDispatcher(actions, domain.Session{Token: "t"}, store, notifier), store, notifier
}

func TestTopUpSuccessRefreshesOnce(t *testing.T) {
	actions := newFakeActions()
	d, _, notifier := testDispatcher(t, actions)
	before := actions.refreshCount()

	require.NoError(t, d.TopUp(context.Background(), decimal.NewFromInt(120)))

	assert.Equal(t, 1, actions.amountCalls[ActionTopUp])
	assert.Equal(t, before+1, actions.refreshCount(), "exactly one refresh after success")
	assert.Equal(t, []string{ActionTopUp}, notifier.succeeded)
}

func TestNonPositiveAmountsNeverReachTheNetwork(t *testing.T) {
	actions := newFakeActions()
	d, _, notifier := testDispatcher(t, actions)
	before := actions.refreshCount()

	for _, amount := range []decimal.Decimal{decimal.Zero, decimal.NewFromInt(-5)} {
		assert.ErrorIs(t, d.TopUp(context.Background(), amount), ErrInvalidInput)
		assert.ErrorIs(t, d.Withdraw(context.Background(), amount), ErrInvalidInput)
		assert.ErrorIs(t, d.AddAsset(context.Background(), amount), ErrInvalidInput)
		assert.ErrorIs(t, d.WithdrawAsset(context.Background(), amount), ErrInvalidInput)
	}

	assert.Empty(t, actions.amountCalls)
	assert.Equal(t, before, actions.refreshCount(), "no refresh on rejection")
	assert.Contains(t, notifier.failed[ActionTopUp], "positive")
}

func TestPlaceOrderValidatesDraft(t *testing.T) {
	actions := newFakeActions()
	d, store, _ := testDispatcher(t, actions)

	// Zero quantity.
	assert.ErrorIs(t, d.PlaceOrder(context.Background()), ErrInvalidInput)

	// Limit order without price.
	store.SetDraft(domain.OrderDraft{
		Side: domain.SideBuy, Kind: domain.OrderKindLimit,
		Quantity: decimal.NewFromInt(1),
	})
	assert.ErrorIs(t, d.PlaceOrder(context.Background()), ErrInvalidInput)
	assert.Zero(t, actions.createCalls)

	// Market orders need no price.
	store.SetDraft(domain.OrderDraft{
		Side: domain.SideBuy, Kind: domain.OrderKindMarket,
		Quantity: decimal.NewFromInt(1),
	})
	require.NoError(t, d.PlaceOrder(context.Background()))
	assert.Equal(t, 1, actions.createCalls)
}

func TestPlaceOrderSuccessResetsDraft(t *testing.T) {
	actions := newFakeActions()
	d, store, _ := testDispatcher(t, actions)

	store.SetDraft(domain.OrderDraft{
		Side: domain.SideSell, Kind: domain.OrderKindLimit,
		Price: decimal.NewFromInt(101), Quantity: decimal.NewFromInt(3),
	})
	require.NoError(t, d.PlaceOrder(context.Background()))

	draft := store.Draft()
	assert.True(t, draft.Quantity.IsZero(), "input field reset after success")
	assert.Equal(t, domain.SideBuy, draft.Side)
	assert.Equal(t, "u1", draft.UserID, "owner id survives the reset")
}

func TestCancelOrderFailureSurfacesBackendDetail(t *testing.T) {
	actions := newFakeActions()
	d, _, notifier := testDispatcher(t, actions)
	before := actions.refreshCount()

	actions.mu.Lock()
	actions.failWith = &backendError{detail: "order not found"}
	actions.mu.Unlock()

	err := d.CancelOrder(context.Background(), "42")
	require.Error(t, err)
	assert.Equal(t, "order not found", notifier.failed[ActionCancelOrder],
		"user sees the backend's exact message")
	assert.Equal(t, before, actions.refreshCount(), "no refresh on failure")
}

func TestFailureWithoutDetailGetsGenericMessage(t *testing.T) {
	actions := newFakeActions()
	d, _, notifier := testDispatcher(t, actions)

	actions.mu.Lock()
	actions.failWith = assert.AnError
	actions.mu.Unlock()

	require.Error(t, d.TopUp(context.Background(), decimal.NewFromInt(10)))
	assert.NotEmpty(t, notifier.failed[ActionTopUp])
	assert.NotContains(t, notifier.failed[ActionTopUp], "assert.AnError")
}

func TestNoAutomaticRetry(t *testing.T) {
	actions := newFakeActions()
	d, _, _ := testDispatcher(t, actions)

	actions.mu.Lock()
	actions.failWith = &backendError{detail: "rejected"}
	actions.mu.Unlock()

	require.Error(t, d.CancelOrder(context.Background(), "o1"))
	assert.Equal(t, 1, actions.cancelCalls, "a failed action is sent exactly once")
}
