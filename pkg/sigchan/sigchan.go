// Package sigchan provides a non-blocking notification channel used to wake
// the TUI when the snapshot or event log changes.
package sigchan

// Chan delivers fire-and-forget signals without blocking the sender.
type Chan struct {
	c chan struct{}
}

// New creates a signal channel with the given buffer.
func New(bufferSize int) *Chan {
	return &Chan{c: make(chan struct{}, bufferSize)}
}

// Emit sends a signal; a full buffer drops it.
func (c *Chan) Emit() {
	select {
	case c.c <- struct{}{}:
	default:
	}
}

// C exposes the channel for select.
func (c *Chan) C() <-chan struct{} {
	return c.c
}
