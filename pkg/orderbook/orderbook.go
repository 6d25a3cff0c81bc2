// Package orderbook holds the most recent public order book pushed over
// the live channel. Each push carries the complete book, so applying one
// replaces the previous state wholesale; the newest push always wins.
package orderbook

import (
	"sync"
	"time"

	"github.com/tradedesk/godesk/internal/domain"
	"github.com/tradedesk/godesk/pkg/sigchan"
)

type Book struct {
	mu         sync.RWMutex
	snap       domain.OrderBookSnapshot
	receivedAt time.Time
	have       bool

	// C signals every applied push.
	C *sigchan.Chan
}

func New() *Book {
	return &Book{C: sigchan.New(1)}
}

// Apply replaces the book with the pushed snapshot.
func (b *Book) Apply(snap domain.OrderBookSnapshot) {
	b.mu.Lock()
	b.snap = snap
	b.receivedAt = time.Now()
	b.have = true
	b.mu.Unlock()
	b.C.Emit()
}

// Current returns the last pushed book. ok is false before the first push
// and again after Clear.
func (b *Book) Current() (snap domain.OrderBookSnapshot, receivedAt time.Time, ok bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.snap, b.receivedAt, b.have
}

// Clear drops the book, used on logout.
func (b *Book) Clear() {
	b.mu.Lock()
	b.snap = domain.OrderBookSnapshot{}
	b.receivedAt = time.Time{}
	b.have = false
	b.mu.Unlock()
	b.C.Emit()
}
