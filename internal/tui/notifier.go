package tui

import "time"

// Notice is one user-visible action outcome shown in the footer.
type Notice struct {
	Action string
	Detail string
	Failed bool
	At     time.Time
}

// Notifier buffers action outcomes so the dispatcher can report them
// from any goroutine without blocking on the UI loop.
type Notifier struct {
	ch chan Notice
}

func NewNotifier() *Notifier {
	return &Notifier{ch: make(chan Notice, 16)}
}

func (n *Notifier) ActionSucceeded(action string) {
	n.push(Notice{Action: action, At: time.Now()})
}

func (n *Notifier) ActionFailed(action, detail string) {
	n.push(Notice{Action: action, Detail: detail, Failed: true, At: time.Now()})
}

func (n *Notifier) push(notice Notice) {
	select {
	case n.ch <- notice:
	default:
		// The UI is behind; dropping the oldest style of backlog is not
		// worth the complexity, drop the new one instead.
	}
}

func (n *Notifier) Notices() <-chan Notice {
	return n.ch
}
