// Package ui renders the notification surface in the terminal: the bell with
// its unread badge, the dropdown list with incremental pagination, and
// transient toasts for live-pushed events.
package ui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/heapdog/heapdog/internal/domain"
	"github.com/heapdog/heapdog/internal/notify"
)

const toastLifetime = 5 * time.Second

// PushMsg is sent when a live notification arrives on the stream.
type PushMsg struct {
	Notification domain.Notification
}

// LoadedMsg is sent after a history page was applied (or failed).
type LoadedMsg struct {
	Err error
}

type tickMsg time.Time

type toast struct {
	text    string
	expires time.Time
}

// Model is the notification surface.
type Model struct {
	center *notify.Center
	list   list.Model
	toasts []toast
	open   bool
	width  int
	height int
	err    error
}

// New creates the notification surface over a started Center.
func New(center *notify.Center) Model {
	delegate := list.NewDefaultDelegate()
	l := list.New([]list.Item{}, delegate, 0, 0)
	l.Title = "Notifications"
	l.SetShowStatusBar(false)
	l.SetShowHelp(false)
	l.SetFilteringEnabled(false)
	l.Styles.Title = headerStyle

	m := Model{center: center, list: l}
	m.reloadItems()
	return m
}

// Init arms the push listener and the toast expiry tick.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.waitForPush(), tick())
}

// Update handles messages for the notification surface.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.list.SetSize(msg.Width, msg.Height-4)
		return m, nil

	case PushMsg:
		n := msg.Notification
		text := fmt.Sprintf("%s %s · %s", typeIcon(n.Type), n.Message,
			notify.RelativeTime(n.CreatedAt, time.Now()))
		if n.Link != "" {
			text += "  [view: " + n.Link + "]"
		}
		m.toasts = append(m.toasts, toast{text: text, expires: time.Now().Add(toastLifetime)})
		m.reloadItems()
		return m, m.waitForPush()

	case LoadedMsg:
		m.err = msg.Err
		m.reloadItems()
		return m, nil

	case tickMsg:
		now := time.Time(msg)
		kept := m.toasts[:0]
		for _, t := range m.toasts {
			if t.expires.After(now) {
				kept = append(kept, t)
			}
		}
		m.toasts = kept
		m.reloadItems()
		return m, tick()

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			m.center.Close()
			return m, tea.Quit
		case "o", "enter":
			m.open = !m.open
			if m.open {
				// Opening the dropdown triggers the batched mark-as-read.
				m.center.Opened(context.Background())
			}
			return m, nil
		case "l":
			if m.open && m.center.Store().HasMore() {
				return m, m.loadMore()
			}
			return m, nil
		}
	}

	if m.open {
		var cmd tea.Cmd
		m.list, cmd = m.list.Update(msg)
		return m, cmd
	}
	return m, nil
}

// View renders the bell, the dropdown and any active toasts.
func (m Model) View() string {
	var b strings.Builder

	b.WriteString(m.bell())
	b.WriteString("\n")

	if m.open {
		if m.center.Store().Len() == 0 {
			b.WriteString(mutedStyle.Render("No notifications"))
			b.WriteString("\n")
		} else {
			b.WriteString(m.list.View())
			b.WriteString("\n")
			if m.center.Store().HasMore() {
				b.WriteString(helpStyle.Render("l: load more"))
				b.WriteString("\n")
			}
		}
		if m.err != nil {
			b.WriteString(errorStyle.Render("Couldn't load notifications: " + m.err.Error()))
			b.WriteString("\n")
		}
	}

	for _, t := range m.toasts {
		b.WriteString(toastStyle.Render(t.text))
		b.WriteString("\n")
	}

	b.WriteString(helpStyle.Render("o: open/close  q: quit"))
	return b.String()
}

func (m Model) bell() string {
	count := m.center.Store().Unread()
	bell := headerStyle.Render("🔔 HeapDog")
	if count.Unread > 0 {
		return bell + " " + badgeStyle.Render(fmt.Sprintf("%d", count.Unread))
	}
	return bell
}

func (m *Model) reloadItems() {
	notifications := m.center.Store().Notifications()
	items := make([]list.Item, len(notifications))
	for i, n := range notifications {
		items[i] = notificationItem{n: n}
	}
	m.list.SetItems(items)
}

// waitForPush blocks on the center's event channel and converts arrivals into
// messages.
func (m Model) waitForPush() tea.Cmd {
	return func() tea.Msg {
		n, ok := <-m.center.Events()
		if !ok {
			return nil
		}
		return PushMsg{Notification: n}
	}
}

func (m Model) loadMore() tea.Cmd {
	return func() tea.Msg {
		return LoadedMsg{Err: m.center.LoadMore(context.Background())}
	}
}

func tick() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}
