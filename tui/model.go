// Package tui provides the terminal front panel: a navigable profile
// list with connect-on-enter. No session semantics live here; the model
// only renders controller state.
package tui

import (
	"context"
	"fmt"
	"io"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/yllada/remote-manager/profile"
	"github.com/yllada/remote-manager/session"
)

var (
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("63"))
	statusStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	errorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	connectedTint = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	selectedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("212")).Bold(true)
	normalStyle   = lipgloss.NewStyle()
)

// transitionMsg wraps a session state change for delivery through the
// bubbletea message loop.
type transitionMsg struct {
	profileID string
	status    session.Status
}

// item adapts a profile for bubbles/list.
type item struct {
	p profile.Profile
}

func (i item) FilterValue() string { return i.p.Name }

// itemDelegate renders one profile row.
type itemDelegate struct {
	statusOf func(id string) session.Status
}

func (d itemDelegate) Height() int                             { return 1 }
func (d itemDelegate) Spacing() int                            { return 0 }
func (d itemDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd { return nil }

func (d itemDelegate) Render(w io.Writer, m list.Model, index int, listItem list.Item) {
	it, ok := listItem.(item)
	if !ok {
		return
	}

	line := fmt.Sprintf("%-24s %-4s %s", it.p.Name, it.p.Mode, it.p.Host)
	switch d.statusOf(it.p.ID) {
	case session.StatusConnecting:
		line += "  (connecting)"
	case session.StatusConnected:
		line = connectedTint.Render(line + "  (connected)")
	}

	if index == m.Index() {
		fmt.Fprint(w, selectedStyle.Render("> "+line))
		return
	}
	fmt.Fprint(w, normalStyle.Render("  "+line))
}

// keyMap holds the model's key bindings.
type keyMap struct {
	Connect key.Binding
	Quit    key.Binding
}

var keys = keyMap{
	Connect: key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "connect")),
	Quit:    key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
}

// Model is the root bubbletea model.
type Model struct {
	controller  *session.Controller
	list        list.Model
	spinner     spinner.Model
	transitions chan transitionMsg
	notice      string
	spinning    bool
}

// New builds the model over the shared stores and controller. It
// registers the controller state callback; the caller must not register
// another one.
func New(store *profile.Store, controller *session.Controller) *Model {
	profiles := store.List()
	items := make([]list.Item, len(profiles))
	for i, p := range profiles {
		items[i] = item{p: p}
	}

	delegate := itemDelegate{statusOf: controller.Status}
	l := list.New(items, delegate, 0, 0)
	l.Title = "Remote Manager"
	l.Styles.Title = titleStyle
	l.SetShowStatusBar(false)
	l.SetShowHelp(false)

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	m := &Model{
		controller:  controller,
		list:        l,
		spinner:     sp,
		transitions: make(chan transitionMsg, 16),
	}

	controller.SetOnStateChange(func(id string, old, state session.Status) {
		select {
		case m.transitions <- transitionMsg{profileID: id, status: state}:
		default:
		}
	})

	return m
}

// waitForTransition blocks on the next controller state change.
func (m *Model) waitForTransition() tea.Msg {
	return <-m.transitions
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.waitForTransition)
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.list.SetSize(msg.Width, msg.Height-3)
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, keys.Connect):
			return m, m.connectSelected()
		}

	case transitionMsg:
		switch msg.status {
		case session.StatusConnecting:
			m.spinning = true
			m.notice = ""
		case session.StatusConnected:
			m.spinning = false
			m.notice = ""
		case session.StatusIdle:
			m.spinning = false
			if err := m.controller.LastError(msg.profileID); err != nil {
				m.notice = errorStyle.Render(err.Error())
			}
		}
		return m, m.waitForTransition

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

// connectSelected starts a session for the highlighted profile.
func (m *Model) connectSelected() tea.Cmd {
	it, ok := m.list.SelectedItem().(item)
	if !ok {
		return nil
	}

	if err := m.controller.Connect(context.Background(), it.p.ID); err != nil {
		m.notice = errorStyle.Render(err.Error())
		return nil
	}
	m.notice = ""
	return nil
}

// View implements tea.Model.
func (m *Model) View() string {
	status := statusStyle.Render("enter: connect  q: quit")
	if m.spinning {
		status = m.spinner.View() + " connecting..."
	}
	if m.notice != "" {
		status = m.notice
	}
	return m.list.View() + "\n" + status + "\n"
}

// Run starts the terminal UI and blocks until it exits.
func Run(store *profile.Store, controller *session.Controller) error {
	program := tea.NewProgram(New(store, controller), tea.WithAltScreen())
	_, err := program.Run()
	return err
}
