package ui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/mrx/internal/models"
	"github.com/desertthunder/mrx/internal/store"
	"github.com/desertthunder/mrx/internal/tasks"
)

// ViewState represents the current view in the TUI.
type ViewState int

const (
	ListsView ViewState = iota
	ListDetailView
	NotificationsView
)

// Model represents the TUI application state.
type Model struct {
	ctx     context.Context
	view    ViewState
	engine  *tasks.Engine
	changes chan store.State
	state   store.State

	width         int
	height        int
	lists         list.Model
	entries       list.Model
	notifications list.Model
	listID        string

	status string
	err    error
	help   help.Model
	keys   keyMap
}

// NewModel creates a new TUI model over engine's store.
func NewModel(ctx context.Context, engine *tasks.Engine) *Model {
	m := &Model{
		ctx:           ctx,
		view:          ListsView,
		engine:        engine,
		changes:       make(chan store.State, 1),
		state:         engine.Store().State(),
		lists:         newList("Lists"),
		entries:       newList(""),
		notifications: newList("Notifications"),
		help:          help.New(),
		keys:          newKeyMap(),
	}
	return m
}

func newList(title string) list.Model {
	l := list.New(nil, list.NewDefaultDelegate(), 0, 0)
	l.Title = title
	return l
}

// Listener returns the [store.Listener] that feeds state changes into the program.
//
// It keeps only the newest state when the program has not yet consumed the
// previous one, so it never blocks a dispatch.
func (m *Model) Listener() store.Listener {
	return store.ListenerFunc(func(_, next store.State, _ store.Action) {
		select {
		case m.changes <- next:
		default:
			select {
			case <-m.changes:
			default:
			}
			select {
			case m.changes <- next:
			default:
			}
		}
	})
}

// Init starts the initial fetches and the state subscription.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(
		m.waitForChange(),
		m.run("lists", func(ctx context.Context) error {
			_, err := m.engine.FetchLists(ctx, models.Page{Page: 1})
			return err
		}),
		m.run("notifications", func(ctx context.Context) error {
			_, err := m.engine.FetchNotifications(ctx, models.Page{Page: 1})
			return err
		}),
	)
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		for _, l := range []*list.Model{&m.lists, &m.entries, &m.notifications} {
			l.SetSize(msg.Width-4, msg.Height-8)
		}
		return m, nil

	case tea.KeyMsg:
		if m.filtering() {
			return m.updateLists(msg)
		}
		switch m.view {
		case ListsView:
			return m.handleListsKeys(msg)
		case ListDetailView:
			return m.handleDetailKeys(msg)
		case NotificationsView:
			return m.handleNotificationKeys(msg)
		}

	case Msg:
		switch msg.kind {
		case MsgStateChanged:
			m.apply(msg.data.(store.State))
			return m, m.waitForChange()
		case MsgOperationDone:
			op := msg.data.(operation)
			m.err = op.err
			if op.err == nil {
				m.status = ""
			}
			return m, nil
		}
	}

	return m.updateLists(msg)
}

// View renders the UI based on the current view state.
func (m *Model) View() string {
	var body string
	switch m.view {
	case ListsView:
		body = m.renderLists()
	case ListDetailView:
		body = m.renderDetail()
	case NotificationsView:
		body = m.renderNotifications()
	}

	footer := ""
	if m.err != nil {
		footer = "\n" + styles.err.Render(fmt.Sprintf("Error: %v", m.err))
	} else if m.status != "" {
		footer = "\n" + styles.help.Render(m.status)
	}
	return fmt.Sprintf("%s\n%s%s", m.header(), body, footer)
}

// apply copies the parts of s that the views render.
func (m *Model) apply(s store.State) {
	m.state = s
	m.lists.SetItems(listItems(s.Lists.Items))
	m.notifications.SetItems(notificationItems(s.Notifications.Items))
	if cur := s.CurrentList(m.listID); cur != nil {
		m.entries.Title = cur.Name
		m.entries.SetItems(entryItems(cur.Items))
	}
	if lc := s.Lifecycle(store.ReorderKey(m.listID)); m.listID != "" && lc.Status == store.StatusFailed {
		m.status = "Reorder reverted: " + lc.Err
	}
}

func (m *Model) header() string {
	var parts []string
	if user := m.state.CurrentUser(); user != nil {
		parts = append(parts, user.Username)
	}

	parts = append(parts, styles.Unread(m.state.UnreadCount()), styles.Connection(m.state.Notifications.Connection))

	return styles.title.Render("mrx") + "  " + strings.Join(parts, " • ")
}

func (m *Model) filtering() bool {
	switch m.view {
	case ListsView:
		return m.lists.FilterState() == list.Filtering
	case ListDetailView:
		return m.entries.FilterState() == list.Filtering
	default:
		return m.notifications.FilterState() == list.Filtering
	}
}

func (m *Model) handleListsKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.notifications):
		m.view = NotificationsView
		return m, nil
	case key.Matches(msg, m.keys.refresh):
		return m, m.run("lists", func(ctx context.Context) error {
			_, err := m.engine.FetchLists(ctx, models.Page{Page: 1})
			return err
		})
	case key.Matches(msg, m.keys.enter):
		if selected, ok := m.lists.SelectedItem().(listItem); ok {
			return m, m.openList(selected.list.ID)
		}
	}

	var cmd tea.Cmd
	m.lists, cmd = m.lists.Update(msg)
	return m, cmd
}

func (m *Model) handleDetailKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.back):
		m.view = ListsView
		m.status = ""
		return m, nil
	case key.Matches(msg, m.keys.moveUp):
		return m, m.move(-1)
	case key.Matches(msg, m.keys.moveDown):
		return m, m.move(1)
	case key.Matches(msg, m.keys.refresh):
		return m, m.openList(m.listID)
	}

	var cmd tea.Cmd
	m.entries, cmd = m.entries.Update(msg)
	return m, cmd
}

func (m *Model) handleNotificationKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.back):
		m.view = ListsView
		return m, nil
	case key.Matches(msg, m.keys.read):
		if selected, ok := m.notifications.SelectedItem().(notificationItem); ok && !selected.n.IsRead {
			id := selected.n.ID
			return m, m.run("read", func(ctx context.Context) error {
				return m.engine.MarkNotificationRead(ctx, id)
			})
		}
		return m, nil
	case key.Matches(msg, m.keys.readAll):
		return m, m.run("read-all", m.engine.MarkAllNotificationsRead)
	case key.Matches(msg, m.keys.refresh):
		return m, m.run("notifications", func(ctx context.Context) error {
			_, err := m.engine.FetchNotifications(ctx, models.Page{Page: 1})
			return err
		})
	}

	var cmd tea.Cmd
	m.notifications, cmd = m.notifications.Update(msg)
	return m, cmd
}

func (m *Model) updateLists(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.view {
	case ListsView:
		m.lists, cmd = m.lists.Update(msg)
	case ListDetailView:
		m.entries, cmd = m.entries.Update(msg)
	case NotificationsView:
		m.notifications, cmd = m.notifications.Update(msg)
	}
	return m, cmd
}

func (m *Model) openList(id string) tea.Cmd {
	m.listID = id
	m.view = ListDetailView
	m.status = ""
	m.entries.ResetSelected()
	if cur := m.state.CurrentList(id); cur != nil {
		m.entries.Title = cur.Name
		m.entries.SetItems(entryItems(cur.Items))
	} else {
		m.entries.SetItems(nil)
	}
	return m.run("list", func(ctx context.Context) error {
		_, err := m.engine.FetchList(ctx, id)
		return err
	})
}

// move shifts the selected item by delta. The new order shows immediately and
// is reverted by the store if the server rejects it.
func (m *Model) move(delta int) tea.Cmd {
	from := m.entries.Index()
	to := from + delta
	if to < 0 || to >= len(m.entries.Items()) {
		return nil
	}
	m.entries.Select(to)
	m.status = ""
	listID := m.listID
	return m.run("reorder", func(ctx context.Context) error {
		return m.engine.MoveListItem(ctx, listID, from, to)
	})
}

// run executes fn off the update loop and reports its outcome.
func (m *Model) run(name string, fn func(context.Context) error) tea.Cmd {
	return func() tea.Msg {
		return operationDoneMsg(name, fn(m.ctx))
	}
}

func (m *Model) waitForChange() tea.Cmd {
	return func() tea.Msg {
		select {
		case s := <-m.changes:
			return stateChangedMsg(s)
		case <-m.ctx.Done():
			return nil
		}
	}
}

func (m *Model) renderLists() string {
	helpKeys := []key.Binding{m.keys.enter, m.keys.notifications, m.keys.refresh, m.keys.quit}
	return fmt.Sprintf("%s\n\n%s", m.lists.View(), m.help.ShortHelpView(helpKeys))
}

func (m *Model) renderDetail() string {
	if m.state.IsLoading(store.ListKey(m.listID)) && len(m.entries.Items()) == 0 {
		return styles.help.Render("Loading list...")
	}
	helpKeys := []key.Binding{m.keys.moveUp, m.keys.moveDown, m.keys.back, m.keys.quit}
	return fmt.Sprintf("%s\n\n%s", m.entries.View(), m.help.ShortHelpView(helpKeys))
}

func (m *Model) renderNotifications() string {
	helpKeys := []key.Binding{m.keys.read, m.keys.readAll, m.keys.back, m.keys.quit}
	return fmt.Sprintf("%s\n\n%s", m.notifications.View(), m.help.ShortHelpView(helpKeys))
}
