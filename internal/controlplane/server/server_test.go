package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tradedesk/godesk/internal/domain"
	"github.com/tradedesk/godesk/internal/services"
)

type fakeDesk struct {
	healthErr error
	snap      services.Snapshot
	haveSnap  bool
	book      domain.OrderBookSnapshot
	haveBook  bool
	lastErr   error
	events    []services.LogEntry
	connected bool
}

func (f *fakeDesk) Health(context.Context) error        { return f.healthErr }
func (f *fakeDesk) Snapshot() (services.Snapshot, bool) { return f.snap, f.haveSnap }
func (f *fakeDesk) LastError() error                    { return f.lastErr }
func (f *fakeDesk) Events() []services.LogEntry         { return f.events }
func (f *fakeDesk) Connected() bool                     { return f.connected }

func (f *fakeDesk) Book() (domain.OrderBookSnapshot, time.Time, bool) {
	return f.book, time.Now(), f.haveBook
}

func newTestServer(t *testing.T, desk *fakeDesk) *httptest.Server {
	t.Helper()
	s, err := New(Config{ListenAddr: "127.0.0.1:0"}, desk)
	require.NoError(t, err)
	srv := httptest.NewServer(s.Router())
	t.Cleanup(srv.Close)
	return srv
}

func getJSON(t *testing.T, url string, out any) int {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

func TestHealthzReflectsBackend(t *testing.T) {
	desk := &fakeDesk{}
	srv := newTestServer(t, desk)

	assert.Equal(t, http.StatusOK, getJSON(t, srv.URL+"/healthz", nil))

	desk.healthErr = errors.New("connection refused")
	var body map[string]any
	assert.Equal(t, http.StatusServiceUnavailable, getJSON(t, srv.URL+"/healthz", &body))
	assert.Equal(t, "unreachable", body["status"])
}

func TestSnapshotBeforeFirstRefreshIs404(t *testing.T) {
	srv := newTestServer(t, &fakeDesk{})

	var body map[string]any
	assert.Equal(t, http.StatusNotFound, getJSON(t, srv.URL+"/api/snapshot", &body))
	assert.Equal(t, "no snapshot yet", body["detail"])
}

func TestSnapshotServesCommittedState(t *testing.T) {
	desk := &fakeDesk{
		haveSnap: true,
		snap: services.Snapshot{
			User:      domain.User{ID: "u1", Username: "alice"},
			Orders:    []domain.Order{{ID: "o1", Side: domain.SideBuy}},
			FetchedAt: time.Now(),
		},
	}
	srv := newTestServer(t, desk)

	var body struct {
		User   domain.User    `json:"user"`
		Orders []domain.Order `json:"orders"`
	}
	assert.Equal(t, http.StatusOK, getJSON(t, srv.URL+"/api/snapshot", &body))
	assert.Equal(t, "alice", body.User.Username)
	require.Len(t, body.Orders, 1)
	assert.Equal(t, domain.SideBuy, body.Orders[0].Side)
}

func TestStatusCarriesConnectionAndError(t *testing.T) {
	desk := &fakeDesk{connected: true, lastErr: errors.New("wallet fetch failed")}
	srv := newTestServer(t, desk)

	var body map[string]any
	assert.Equal(t, http.StatusOK, getJSON(t, srv.URL+"/api/status", &body))
	assert.Equal(t, true, body["connected"])
	assert.Equal(t, "wallet fetch failed", body["last_error"])
}

func TestEventsListsRecentEntries(t *testing.T) {
	desk := &fakeDesk{events: []services.LogEntry{
		{ID: uuid.NewString(), Kind: domain.EventKindWallet, Text: "Wallet Update"},
	}}
	srv := newTestServer(t, desk)

	var body struct {
		Count  int                 `json:"count"`
		Events []services.LogEntry `json:"events"`
	}
	assert.Equal(t, http.StatusOK, getJSON(t, srv.URL+"/api/events", &body))
	assert.Equal(t, 1, body.Count)
	require.Len(t, body.Events, 1)
	assert.Equal(t, domain.EventKindWallet, body.Events[0].Kind)
}

func TestBookEndpoint(t *testing.T) {
	desk := &fakeDesk{}
	srv := newTestServer(t, desk)

	assert.Equal(t, http.StatusNotFound, getJSON(t, srv.URL+"/api/book", nil))

	desk.book = domain.OrderBookSnapshot{
		SellOrders: []domain.OrderBookRow{{Price: decimal.NewFromInt(101)}},
	}
	desk.haveBook = true

	var body struct {
		Book domain.OrderBookSnapshot `json:"book"`
	}
	assert.Equal(t, http.StatusOK, getJSON(t, srv.URL+"/api/book", &body))
	require.Len(t, body.Book.SellOrders, 1)
	assert.True(t, body.Book.SellOrders[0].Price.Equal(decimal.NewFromInt(101)))
}

func TestMetricsAreExported(t *testing.T) {
	srv := newTestServer(t, &fakeDesk{})

	var body map[string]json.RawMessage
	assert.Equal(t, http.StatusOK, getJSON(t, srv.URL+"/debug/vars", &body))
	assert.Contains(t, body, "snapshot_refreshes")
}

func TestEventsEmptyIsAnArrayNotNull(t *testing.T) {
	srv := newTestServer(t, &fakeDesk{})

	var body map[string]json.RawMessage
	assert.Equal(t, http.StatusOK, getJSON(t, srv.URL+"/api/events", &body))
	assert.JSONEq(t, "[]", string(body["events"]))
}
