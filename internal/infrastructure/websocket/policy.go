package websocket

import (
	"time"
)

// ReconnectPolicy decides whether a dropped connection is redialed. The
// observed backend never reconnects on its own, so the default policy
// declines every attempt; owners that want reconnection inject their own.
type ReconnectPolicy interface {
	// NextDelay returns how long to wait before redial attempt n (1-based),
	// and false when the policy gives up.
	NextDelay(attempt int) (time.Duration, bool)
}

type noReconnect struct{}

func (noReconnect) NextDelay(int) (time.Duration, bool) { return 0, false }

// NoReconnect returns the default policy: a closed connection stays closed.
func NoReconnect() ReconnectPolicy {
	return noReconnect{}
}

// FixedDelay retries up to maxAttempts times with a constant delay between
// attempts. maxAttempts <= 0 means retry forever.
type FixedDelay struct {
	Delay       time.Duration
	MaxAttempts int
}

func (p FixedDelay) NextDelay(attempt int) (time.Duration, bool) {
	if p.MaxAttempts > 0 && attempt > p.MaxAttempts {
		return 0, false
	}
	return p.Delay, true
}
