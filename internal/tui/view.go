package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/tradedesk/godesk/internal/domain"
)

var (
	borderStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("62")).
			Padding(0, 1)

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("63"))

	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	warningStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("220"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	dimStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
)

const maxRows = 8

func (m Model) View() string {
	if m.width == 0 {
		return "loading..."
	}

	sections := []string{
		m.renderHeader(),
		m.renderWallet(),
		m.renderBook(),
		m.renderOrders(),
		m.renderTrades(),
		m.renderEvents(),
		m.renderFooter(),
	}
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m Model) renderHeader() string {
	conn := errorStyle.Render("disconnected")
	if m.desk.Connected() {
		conn = successStyle.Render("live")
	}

	user := "-"
	if m.haveSnap {
		user = m.snapshot.User.Username
	}

	line := fmt.Sprintf("user: %s │ feed: %s │ %s", user, conn, m.now.Format("15:04:05"))
	if err := m.desk.LastError(); err != nil {
		line += " │ " + warningStyle.Render(err.Error())
	}
	return borderStyle.Render(lipgloss.JoinVertical(lipgloss.Left,
		titleStyle.Render("trading desk"), line))
}

func (m Model) renderWallet() string {
	title := titleStyle.Render("wallet")

	if !m.haveSnap {
		return borderStyle.Render(lipgloss.JoinVertical(lipgloss.Left, title, "no data yet"))
	}

	w := m.snapshot.Wallet
	content := fmt.Sprintf("%s: %s (reserved %s)\n%s: %s (reserved %s)",
		w.Currency, w.Balance.StringFixed(2), w.ReservedBalance.StringFixed(2),
		w.AssetSymbol, w.Holdings.String(), w.ReservedHoldings.String())
	return borderStyle.Render(lipgloss.JoinVertical(lipgloss.Left, title, content))
}

func (m Model) renderBook() string {
	title := titleStyle.Render("order book")

	if !m.haveBook {
		return borderStyle.Render(lipgloss.JoinVertical(lipgloss.Left, title, "waiting for first push"))
	}

	rows := func(levels []domain.OrderBookRow, style lipgloss.Style) string {
		if len(levels) == 0 {
			return dimStyle.Render("  (empty)")
		}
		var b strings.Builder
		for i, row := range levels {
			if i == maxRows/2 {
				b.WriteString(dimStyle.Render(fmt.Sprintf("  ... %d more", len(levels)-i)))
				break
			}
			b.WriteString(style.Render(fmt.Sprintf("  %-10s × %s", row.Price.StringFixed(2), row.RemainingQuantity.String())) + "\n")
		}
		return strings.TrimRight(b.String(), "\n")
	}

	content := lipgloss.JoinVertical(lipgloss.Left,
		"asks:", rows(m.book.SellOrders, errorStyle),
		"bids:", rows(m.book.BuyOrders, successStyle))
	return borderStyle.Render(lipgloss.JoinVertical(lipgloss.Left, title, content))
}

func (m Model) renderOrders() string {
	title := titleStyle.Render("open orders")

	open := openOrders(m.snapshot.Orders)
	if len(open) == 0 {
		return borderStyle.Render(lipgloss.JoinVertical(lipgloss.Left, title, "none"))
	}

	var content strings.Builder
	content.WriteString("  # │ side │ kind   │ price      │ quantity │ placed\n")
	content.WriteString(strings.Repeat("─", 56) + "\n")
	for i, order := range open {
		if i == maxRows {
			content.WriteString(dimStyle.Render(fmt.Sprintf("... %d more", len(open)-maxRows)))
			break
		}
		side := string(order.Side)
		if order.Side == domain.SideSell {
			side = errorStyle.Render(side)
		} else {
			side = successStyle.Render(side)
		}
		content.WriteString(fmt.Sprintf("%3d │ %s │ %-6s │ %-10s │ %-8s │ %s\n",
			i+1, side, order.Kind,
			order.Price.StringFixed(2), order.Quantity.String(),
			order.CreatedAt.Format("15:04:05")))
	}
	return borderStyle.Render(lipgloss.JoinVertical(lipgloss.Left, title,
		strings.TrimRight(content.String(), "\n")))
}

func (m Model) renderTrades() string {
	title := titleStyle.Render("recent trades")

	if len(m.snapshot.Trades) == 0 {
		return borderStyle.Render(lipgloss.JoinVertical(lipgloss.Left, title, "none"))
	}

	var content strings.Builder
	for i, trade := range m.snapshot.Trades {
		if i == maxRows {
			content.WriteString(dimStyle.Render(fmt.Sprintf("... %d more", len(m.snapshot.Trades)-maxRows)))
			break
		}
		content.WriteString(fmt.Sprintf("%-4s %s @ %s = %s  vs %s  %s\n",
			trade.TradeType, trade.Quantity.String(), trade.Price.StringFixed(2),
			trade.TotalAmount.StringFixed(2), trade.CounterpartyName,
			trade.CreatedAt.Format("15:04:05")))
	}
	return borderStyle.Render(lipgloss.JoinVertical(lipgloss.Left, title,
		strings.TrimRight(content.String(), "\n")))
}

func (m Model) renderEvents() string {
	title := titleStyle.Render("live updates")

	if len(m.events) == 0 {
		return borderStyle.Render(lipgloss.JoinVertical(lipgloss.Left, title, "none yet"))
	}

	// Newest last, like a tail.
	start := 0
	if len(m.events) > maxRows {
		start = len(m.events) - maxRows
	}
	var content strings.Builder
	for _, entry := range m.events[start:] {
		line := fmt.Sprintf("%s  %-18s %s",
			entry.ReceivedAt.Format("15:04:05"), entry.Kind, truncate(entry.Text, 60))
		if entry.Kind == domain.EventKindUnknown {
			line = dimStyle.Render(line)
		}
		content.WriteString(line + "\n")
	}
	return borderStyle.Render(lipgloss.JoinVertical(lipgloss.Left, title,
		strings.TrimRight(content.String(), "\n")))
}

func (m Model) renderFooter() string {
	if m.prompt != promptNone {
		return borderStyle.Render(fmt.Sprintf("%s %s▌  (enter to send, esc to cancel)",
			promptLabel(m.prompt), m.input))
	}

	var parts []string
	if m.busy {
		parts = append(parts, warningStyle.Render("working..."))
	}
	if m.notice != nil {
		parts = append(parts, renderNotice(*m.notice))
	}
	parts = append(parts, dimStyle.Render(
		"o order │ c cancel │ t top-up │ w withdraw │ a add asset │ x withdraw asset │ r refresh │ q quit"))
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func renderNotice(n Notice) string {
	label := strings.ReplaceAll(n.Action, "_", " ")
	if n.Failed {
		return errorStyle.Render(fmt.Sprintf("✗ %s: %s", label, n.Detail))
	}
	return successStyle.Render("✓ " + label)
}

func promptLabel(kind promptKind) string {
	switch kind {
	case promptOrder:
		return "order (side kind qty [price]):"
	case promptCancel:
		return "cancel (row or id):"
	case promptTopUp:
		return "top up amount:"
	case promptWithdraw:
		return "withdraw amount:"
	case promptAddAsset:
		return "add asset quantity:"
	case promptWithdrawAsset:
		return "withdraw asset quantity:"
	}
	return ">"
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-3] + "..."
}
