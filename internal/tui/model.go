// Package tui renders the trading desk in the terminal: wallet, open
// orders, trade history and the live push-event feed, plus a one-line
// prompt for the mutating actions.
package tui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/tradedesk/godesk/internal/domain"
	"github.com/tradedesk/godesk/internal/services"
)

// tickMsg redraws the clock and connection state once per second.
type tickMsg time.Time

// changedMsg fires when the desk commits a new snapshot.
type changedMsg struct{}

// noticeMsg carries one action outcome from the dispatcher.
type noticeMsg Notice

// actionDoneMsg unblocks the prompt after a dispatched action returns.
type actionDoneMsg struct{ err error }

// promptKind selects what the input line is collecting.
type promptKind int

const (
	promptNone promptKind = iota
	promptOrder
	promptCancel
	promptTopUp
	promptWithdraw
	promptAddAsset
	promptWithdrawAsset
)

type Model struct {
	desk     *services.Desk
	notifier *Notifier

	snapshot services.Snapshot
	haveSnap bool
	book     domain.OrderBookSnapshot
	haveBook bool
	events   []services.LogEntry

	prompt promptKind
	input  string
	busy   bool
	notice *Notice

	width  int
	height int
	now    time.Time
}

func NewModel(desk *services.Desk, notifier *Notifier) Model {
	return Model{desk: desk, notifier: notifier, now: time.Now()}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(
		tick(),
		waitChanged(m.desk.Changed()),
		waitNotice(m.notifier),
	)
}

func tick() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func waitChanged(ch <-chan struct{}) tea.Cmd {
	return func() tea.Msg {
		<-ch
		return changedMsg{}
	}
}

func waitNotice(n *Notifier) tea.Cmd {
	return func() tea.Msg {
		return noticeMsg(<-n.Notices())
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tickMsg:
		m.now = time.Time(msg)
		return m, tick()

	case changedMsg:
		m.snapshot, m.haveSnap = m.desk.Snapshot()
		m.book, _, m.haveBook = m.desk.Book()
		m.events = m.desk.Events()
		return m, waitChanged(m.desk.Changed())

	case noticeMsg:
		notice := Notice(msg)
		m.notice = &notice
		return m, waitNotice(m.notifier)

	case actionDoneMsg:
		m.busy = false
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.prompt != promptNone {
		return m.handlePromptKey(msg)
	}

	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "r":
		return m, m.refreshCmd()
	case "o":
		return m.openPrompt(promptOrder), nil
	case "c":
		return m.openPrompt(promptCancel), nil
	case "t":
		return m.openPrompt(promptTopUp), nil
	case "w":
		return m.openPrompt(promptWithdraw), nil
	case "a":
		return m.openPrompt(promptAddAsset), nil
	case "x":
		return m.openPrompt(promptWithdrawAsset), nil
	}

	return m, nil
}

func (m Model) openPrompt(kind promptKind) Model {
	if m.busy {
		return m
	}
	m.prompt = kind
	m.input = ""
	return m
}

func (m Model) handlePromptKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEscape:
		m.prompt = promptNone
		m.input = ""
		return m, nil
	case tea.KeyBackspace:
		if len(m.input) > 0 {
			runes := []rune(m.input)
			m.input = string(runes[:len(runes)-1])
		}
		return m, nil
	case tea.KeyEnter:
		return m.submitPrompt()
	case tea.KeyRunes, tea.KeySpace:
		m.input += msg.String()
		return m, nil
	}
	return m, nil
}

func (m Model) submitPrompt() (tea.Model, tea.Cmd) {
	kind, input := m.prompt, m.input
	m.prompt = promptNone
	m.input = ""
	m.busy = true
	return m, m.dispatchCmd(kind, input)
}

// dispatchCmd runs one action off the UI loop. Validation errors and
// backend failures both surface through the notifier.
func (m Model) dispatchCmd(kind promptKind, input string) tea.Cmd {
	desk := m.desk
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		d := desk.Dispatcher()
		if d == nil {
			return actionDoneMsg{}
		}

		var err error
		switch kind {
		case promptOrder:
			draft := parseOrderInput(desk.Store().Draft(), input)
			desk.Store().SetDraft(draft)
			err = d.PlaceOrder(ctx)
		case promptCancel:
			err = d.CancelOrder(ctx, resolveOrderID(desk, input))
		case promptTopUp:
			err = dispatchAmount(ctx, d.TopUp, input)
		case promptWithdraw:
			err = dispatchAmount(ctx, d.Withdraw, input)
		case promptAddAsset:
			err = dispatchAmount(ctx, d.AddAsset, input)
		case promptWithdrawAsset:
			err = dispatchAmount(ctx, d.WithdrawAsset, input)
		}
		return actionDoneMsg{err: err}
	}
}

func (m Model) refreshCmd() tea.Cmd {
	desk := m.desk
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if store := desk.Store(); store != nil {
			_ = store.Refresh(ctx)
		}
		return actionDoneMsg{}
	}
}

// Run blocks until the user quits.
func Run(desk *services.Desk, notifier *Notifier) error {
	p := tea.NewProgram(NewModel(desk, notifier), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
