// Package tui provides the BubbleTea-based live view behind lmk watch.
package tui

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/mattn/go-runewidth"
	"gopkg.in/yaml.v3"

	"github.com/jmylchreest/lmk/internal/core"
	"github.com/jmylchreest/lmk/internal/model"
)

// Backend is the running daemon as seen by the TUI.
type Backend interface {
	List() ([]model.Notification, error)
	Dismiss(id uint32) (bool, error)
	DismissAll() (int, error)
	ToggleCenter() error
}

// Mode represents the current UI mode.
type Mode int

const (
	ModeList Mode = iota
	ModeDetail
	ModeSearch
	ModeHelp
)

// Options configures the TUI.
type Options struct {
	Refresh          time.Duration // Poll interval, default one second
	ShowDismissed    bool
	ClipboardCommand string
}

// Model is the main TUI model.
type Model struct {
	backend Backend
	opts    Options
	now     func() time.Time
	clip    func(text string) error

	mode Mode

	list        list.Model
	viewport    viewport.Model
	searchInput textinput.Model
	help        help.Model

	notifications []model.Notification
	selected      *model.Notification
	searchQuery   string
	showDismissed bool
	width         int
	height        int
	ready         bool

	keys KeyMap

	statusMsg string
	statusErr bool
}

// notificationItem wraps a notification for the list component.
type notificationItem struct {
	notification model.Notification
	now          time.Time
}

func (i notificationItem) Title() string {
	return fmt.Sprintf("#%d %s", i.notification.ID, i.notification.Title)
}

func (i notificationItem) Description() string {
	body := strings.Join(strings.Fields(i.notification.Body), " ")
	return fmt.Sprintf("[%s] %s - %s",
		i.notification.Urgency,
		humanize.RelTime(i.notification.CreatedAt, i.now, "ago", "from now"),
		runewidth.Truncate(body, 50, "…"))
}

func (i notificationItem) FilterValue() string {
	return i.notification.Title + " " + i.notification.Body
}

// notificationDelegate dims dismissed notifications and marks critical ones.
type notificationDelegate struct {
	list.DefaultDelegate
}

func newNotificationDelegate() notificationDelegate {
	return notificationDelegate{DefaultDelegate: list.NewDefaultDelegate()}
}

// Render renders a list item.
func (d notificationDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	ni, ok := item.(notificationItem)
	if !ok {
		d.DefaultDelegate.Render(w, m, index, item)
		return
	}

	isSelected := index == m.Index()
	n := ni.notification
	itemWidth := m.Width() - d.Styles.NormalTitle.GetHorizontalPadding()

	titleStyle, descStyle := d.Styles.NormalTitle, d.Styles.NormalDesc
	if isSelected {
		titleStyle, descStyle = d.Styles.SelectedTitle, d.Styles.SelectedDesc
	}
	switch {
	case n.Dismissed:
		titleStyle = titleStyle.Foreground(lipgloss.Color("8"))
		descStyle = descStyle.Foreground(lipgloss.Color("8"))
	case n.IsCritical():
		titleStyle = titleStyle.Foreground(lipgloss.Color("9"))
	}

	title := ni.Title()
	if n.Dismissed {
		title = "[d] " + title
	}
	desc := ni.Description()
	if itemWidth > 0 {
		title = runewidth.Truncate(title, itemWidth, "…")
		desc = runewidth.Truncate(desc, itemWidth, "…")
	}

	fmt.Fprint(w, titleStyle.Render(title))
	fmt.Fprint(w, "\n")
	fmt.Fprint(w, descStyle.Render(desc))
}

// New creates a new TUI model.
func New(backend Backend, opts Options) Model {
	if opts.Refresh <= 0 {
		opts.Refresh = time.Second
	}

	l := list.New(nil, newNotificationDelegate(), 0, 0)
	l.Title = "lmk"
	l.SetShowStatusBar(true)
	l.SetShowHelp(false)
	l.SetFilteringEnabled(false)
	l.DisableQuitKeybindings()

	searchInput := textinput.New()
	searchInput.Placeholder = "Search..."
	searchInput.CharLimit = 100

	return Model{
		backend:       backend,
		opts:          opts,
		now:           time.Now,
		clip:          func(text string) error { return copyText(text, opts.ClipboardCommand) },
		mode:          ModeList,
		list:          l,
		searchInput:   searchInput,
		help:          help.New(),
		keys:          DefaultKeyMap(),
		showDismissed: opts.ShowDismissed,
	}
}

type loadedMsg struct {
	notifications []model.Notification
	err           error
}

type tickMsg struct{}

type statusMsg struct {
	text  string
	isErr bool
}

type clearStatusMsg struct{}

type copyResultMsg struct {
	err error
}

// Init loads the first list and starts polling.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.load, m.tick())
}

func (m Model) load() tea.Msg {
	notifications, err := m.backend.List()
	return loadedMsg{notifications: notifications, err: err}
}

func (m Model) tick() tea.Cmd {
	return tea.Tick(m.opts.Refresh, func(time.Time) tea.Msg {
		return tickMsg{}
	})
}

func status(text string, isErr bool) tea.Cmd {
	return func() tea.Msg {
		return statusMsg{text: text, isErr: isErr}
	}
}

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true
		m.list.SetSize(msg.Width, msg.Height-2)
		m.viewport = viewport.New(msg.Width, msg.Height-4)
		m.viewport.YPosition = 2
		return m, nil

	case loadedMsg:
		if msg.err != nil {
			m.statusMsg = "Daemon unavailable: " + msg.err.Error()
			m.statusErr = true
			return m, nil
		}
		m.notifications = msg.notifications
		m.list.SetItems(m.buildListItems())
		return m, nil

	case tickMsg:
		return m, tea.Batch(m.load, m.tick())

	case statusMsg:
		m.statusMsg = msg.text
		m.statusErr = msg.isErr
		return m, tea.Tick(3*time.Second, func(time.Time) tea.Msg {
			return clearStatusMsg{}
		})

	case clearStatusMsg:
		m.statusMsg = ""
		m.statusErr = false
		return m, nil

	case copyResultMsg:
		if msg.err != nil {
			return m, status("Copy failed: "+msg.err.Error(), true)
		}
		return m, status("Copied to clipboard", false)
	}

	var cmd tea.Cmd
	switch m.mode {
	case ModeList:
		m.list, cmd = m.list.Update(msg)
	case ModeDetail:
		m.viewport, cmd = m.viewport.Update(msg)
	case ModeSearch:
		m.searchInput, cmd = m.searchInput.Update(msg)
	}
	return m, cmd
}

// handleKey handles key presses.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.mode != ModeSearch {
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.Help):
			if m.mode == ModeHelp {
				m.mode = ModeList
			} else {
				m.mode = ModeHelp
			}
			return m, nil
		}
	}

	switch m.mode {
	case ModeList:
		return m.handleListKey(msg)
	case ModeDetail:
		return m.handleDetailKey(msg)
	case ModeSearch:
		return m.handleSearchKey(msg)
	case ModeHelp:
		if key.Matches(msg, m.keys.Back) {
			m.mode = ModeList
		}
	}
	return m, nil
}

func (m Model) selectedItem() (model.Notification, bool) {
	item, ok := m.list.SelectedItem().(notificationItem)
	return item.notification, ok
}

func (m Model) visible() []model.Notification {
	items := m.list.Items()
	notifications := make([]model.Notification, 0, len(items))
	for _, item := range items {
		if ni, ok := item.(notificationItem); ok {
			notifications = append(notifications, ni.notification)
		}
	}
	return notifications
}

// handleListKey handles keys in list mode.
func (m Model) handleListKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Enter):
		if n, ok := m.selectedItem(); ok {
			m = m.openDetail(n)
		}
		return m, nil

	case key.Matches(msg, m.keys.Copy):
		if n, ok := m.selectedItem(); ok {
			return m, m.copyToClipboard(n.Body)
		}
		return m, nil

	case key.Matches(msg, m.keys.CopyTitle):
		if n, ok := m.selectedItem(); ok {
			return m, m.copyToClipboard(n.Title)
		}
		return m, nil

	case key.Matches(msg, m.keys.CopyAllJSON):
		data, err := json.MarshalIndent(m.visible(), "", "  ")
		if err != nil {
			return m, status("Failed to marshal JSON: "+err.Error(), true)
		}
		return m, m.copyToClipboard(string(data))

	case key.Matches(msg, m.keys.CopyAllYAML):
		data, err := yaml.Marshal(m.visible())
		if err != nil {
			return m, status("Failed to marshal YAML: "+err.Error(), true)
		}
		return m, m.copyToClipboard(string(data))

	case key.Matches(msg, m.keys.Dismiss):
		n, ok := m.selectedItem()
		if !ok || n.Dismissed {
			return m, nil
		}
		return m, m.dismiss(n.ID)

	case key.Matches(msg, m.keys.DismissAll):
		return m, m.dismissAll()

	case key.Matches(msg, m.keys.ToggleCenter):
		return m, m.toggleCenter()

	case key.Matches(msg, m.keys.ToggleDismissed):
		m.showDismissed = !m.showDismissed
		m.list.SetItems(m.buildListItems())
		if m.showDismissed {
			return m, status("Showing dismissed notifications", false)
		}
		return m, status("Hiding dismissed notifications", false)

	case key.Matches(msg, m.keys.Search):
		m.searchInput.SetValue("")
		m.searchQuery = ""
		m.list.SetItems(m.buildListItems())
		m.mode = ModeSearch
		m.searchInput.Focus()
		return m, textinput.Blink

	case key.Matches(msg, m.keys.Refresh):
		return m, m.load
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m Model) openDetail(n model.Notification) Model {
	m.selected = &n
	m.mode = ModeDetail
	m.viewport.SetContent(m.renderDetail(n))
	m.viewport.GotoTop()
	return m
}

// handleDetailKey handles keys in detail mode.
func (m Model) handleDetailKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Back):
		m.mode = ModeList
		m.selected = nil
		return m, nil

	case key.Matches(msg, m.keys.Copy):
		if m.selected != nil {
			return m, m.copyToClipboard(m.selected.Body)
		}
		return m, nil

	case key.Matches(msg, m.keys.CopyTitle):
		if m.selected != nil {
			return m, m.copyToClipboard(m.selected.Title)
		}
		return m, nil

	case key.Matches(msg, m.keys.Dismiss):
		if m.selected != nil && !m.selected.Dismissed {
			id := m.selected.ID
			m.mode = ModeList
			m.selected = nil
			return m, m.dismiss(id)
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

// handleSearchKey handles keys in search mode.
func (m Model) handleSearchKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.mode = ModeList
		m.searchInput.Blur()
		m.searchInput.SetValue("")
		m.searchQuery = ""
		m.list.SetItems(m.buildListItems())
		return m, nil

	case tea.KeyEnter:
		if n, ok := m.selectedItem(); ok {
			m.searchInput.Blur()
			m = m.openDetail(n)
		}
		return m, nil

	case tea.KeyUp, tea.KeyDown:
		var cmd tea.Cmd
		m.list, cmd = m.list.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	m.searchInput, cmd = m.searchInput.Update(msg)

	m.searchQuery = m.searchInput.Value()
	m.list.SetItems(m.buildListItems())
	return m, cmd
}

func (m Model) dismiss(id uint32) tea.Cmd {
	return func() tea.Msg {
		ok, err := m.backend.Dismiss(id)
		switch {
		case err != nil:
			return statusMsg{text: "Dismiss failed: " + err.Error(), isErr: true}
		case !ok:
			return statusMsg{text: fmt.Sprintf("Notification %d was already dismissed", id)}
		}
		return tea.Sequence(m.load, status(fmt.Sprintf("Dismissed %d", id), false))()
	}
}

func (m Model) dismissAll() tea.Cmd {
	return func() tea.Msg {
		count, err := m.backend.DismissAll()
		if err != nil {
			return statusMsg{text: "Dismiss failed: " + err.Error(), isErr: true}
		}
		return tea.Sequence(m.load, status(fmt.Sprintf("Dismissed %d notifications", count), false))()
	}
}

func (m Model) toggleCenter() tea.Cmd {
	return func() tea.Msg {
		if err := m.backend.ToggleCenter(); err != nil {
			return statusMsg{text: "Toggle failed: " + err.Error(), isErr: true}
		}
		return statusMsg{text: "Toggled notification center"}
	}
}

// buildListItems creates list items from current notifications, newest
// first.
func (m Model) buildListItems() []list.Item {
	now := m.now()

	notifications := core.Filter(m.notifications, core.FilterOptions{IncludeDismissed: m.showDismissed}, now)
	notifications = core.Search(notifications, m.searchQuery)
	core.Sort(notifications, core.SortOptions{Field: core.SortByID, Order: core.SortDesc})

	items := make([]list.Item, 0, len(notifications))
	for _, n := range notifications {
		items = append(items, notificationItem{notification: n, now: now})
	}
	return items
}

// renderDetail renders the detail view for a notification.
func (m Model) renderDetail(n model.Notification) string {
	headerStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("12"))
	labelStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("8"))

	var sb strings.Builder
	sb.WriteString(headerStyle.Render(n.Title) + "\n\n")
	sb.WriteString(labelStyle.Render("ID: ") + fmt.Sprint(n.ID) + "\n")
	sb.WriteString(labelStyle.Render("Ref: ") + n.Ref + "\n")
	sb.WriteString(labelStyle.Render("Time: ") + humanize.RelTime(n.CreatedAt, m.now(), "ago", "from now") + "\n")
	sb.WriteString(labelStyle.Render("Urgency: ") + n.Urgency + "\n")
	if n.Dismissed {
		sb.WriteString(labelStyle.Render("Dismissed: ") + "yes\n")
	}
	sb.WriteString("\n" + labelStyle.Render("Body:") + "\n")
	sb.WriteString(n.Body + "\n")
	return sb.String()
}

func (m Model) copyToClipboard(text string) tea.Cmd {
	return func() tea.Msg {
		return copyResultMsg{err: m.clip(text)}
	}
}

// View renders the TUI.
func (m Model) View() string {
	if !m.ready {
		return "Initializing..."
	}

	switch m.mode {
	case ModeList:
		return m.viewList()
	case ModeDetail:
		return m.viewDetail()
	case ModeSearch:
		return m.viewSearch()
	case ModeHelp:
		return m.viewHelp()
	default:
		return ""
	}
}

func (m Model) viewList() string {
	s := m.list.View()

	if m.statusMsg != "" {
		statusStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("7"))
		if m.statusErr {
			statusStyle = statusStyle.Foreground(lipgloss.Color("9"))
		}
		return s + "\n" + statusStyle.Render(m.statusMsg)
	}
	return s + "\n" + m.buildKeybindBar(m.width, ModeList)
}

func (m Model) viewDetail() string {
	header := lipgloss.NewStyle().Bold(true).Padding(0, 1).Render("Notification Detail")
	return header + "\n" + m.viewport.View() + "\n" + m.buildKeybindBar(m.width, ModeDetail)
}

func (m Model) viewSearch() string {
	countStr := fmt.Sprintf("(%d matches)", len(m.list.Items()))
	searchBar := "Search: " + m.searchInput.View() + " " +
		lipgloss.NewStyle().Foreground(lipgloss.Color("8")).Render(countStr)

	return searchBar + "\n" + m.list.View() + "\n" + m.buildKeybindBar(m.width, ModeSearch)
}

func (m Model) viewHelp() string {
	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("12")).
		MarginBottom(1)

	m.help.ShowAll = true
	m.help.Width = m.width
	return titleStyle.Render("Keyboard Shortcuts") + "\n\n" + m.help.View(m.keys) + "\n\n" +
		lipgloss.NewStyle().Foreground(lipgloss.Color("8")).Render("Press ? or esc to return")
}

// keybind is a status bar entry. Entries are listed most important first.
type keybind struct {
	key  string
	desc string
}

// buildKeybindBar builds a keybind bar that fits within width.
func (m Model) buildKeybindBar(width int, mode Mode) string {
	style := lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	keyStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("10"))

	var binds []keybind
	switch mode {
	case ModeList:
		binds = []keybind{
			{"q", "quit"},
			{"enter", "view"},
			{"?", "help"},
			{"d", "dismiss"},
			{"D", "all"},
			{"t", "center"},
			{"/", "search"},
			{"a", "dismissed"},
			{"c", "copy"},
			{"r", "refresh"},
		}
	case ModeDetail:
		binds = []keybind{
			{"q", "quit"},
			{"esc", "back"},
			{"d", "dismiss"},
			{"c", "copy body"},
			{"s", "copy title"},
			{"j/k", "scroll"},
		}
	case ModeSearch:
		binds = []keybind{
			{"enter", "view"},
			{"esc", "close"},
			{"↑/↓", "navigate"},
		}
	}

	const separator = "  "
	var parts []string
	used := 0
	for _, b := range binds {
		plain := b.key + " " + b.desc
		need := runewidth.StringWidth(plain)
		if len(parts) > 0 {
			need += len(separator)
		}
		if width > 0 && used+need > width {
			break
		}
		used += need
		parts = append(parts, keyStyle.Render(b.key)+" "+b.desc)
	}
	return style.Render(strings.Join(parts, separator))
}

// Run starts the TUI and blocks until the user quits.
func Run(backend Backend, opts Options) error {
	p := tea.NewProgram(New(backend, opts), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
