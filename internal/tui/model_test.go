package tui

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmylchreest/lmk/internal/model"
)

var testNow = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

type fakeBackend struct {
	notifications []model.Notification
	listErr       error
	dismissed     []uint32
	dismissAll    int
	toggles       int
}

func (f *fakeBackend) List() ([]model.Notification, error) {
	return f.notifications, f.listErr
}

func (f *fakeBackend) Dismiss(id uint32) (bool, error) {
	f.dismissed = append(f.dismissed, id)
	return true, nil
}

func (f *fakeBackend) DismissAll() (int, error) {
	f.dismissAll++
	return 2, nil
}

func (f *fakeBackend) ToggleCenter() error {
	f.toggles++
	return nil
}

func testBackend() *fakeBackend {
	return &fakeBackend{notifications: []model.Notification{
		{ID: 1, Title: "Build passed", Body: "main is green", Urgency: "normal", CreatedAt: testNow.Add(-time.Hour), Dismissed: true},
		{ID: 2, Title: "Disk full", Body: "only 2% left", Urgency: "critical", CreatedAt: testNow.Add(-time.Minute)},
		{ID: 3, Title: "Meeting", Body: "standup in 5", Urgency: "low", CreatedAt: testNow},
	}}
}

func newTestModel(t *testing.T, backend *fakeBackend) Model {
	t.Helper()
	m := New(backend, Options{})
	m.now = func() time.Time { return testNow }
	m = update(t, m, tea.WindowSizeMsg{Width: 100, Height: 30})
	return update(t, m, m.load())
}

func update(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	next, _ := m.Update(msg)
	updated, ok := next.(Model)
	require.True(t, ok)
	return updated
}

func keyMsg(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func itemIDs(m Model) []uint32 {
	var ids []uint32
	for _, n := range m.visible() {
		ids = append(ids, n.ID)
	}
	return ids
}

func TestModel_ListHidesDismissedNewestFirst(t *testing.T) {
	m := newTestModel(t, testBackend())
	assert.Equal(t, []uint32{3, 2}, itemIDs(m))

	m = update(t, m, keyMsg("a"))
	assert.Equal(t, []uint32{3, 2, 1}, itemIDs(m))
}

func TestModel_ShowDismissedOption(t *testing.T) {
	m := New(testBackend(), Options{ShowDismissed: true})
	m = update(t, m, m.load())
	assert.Len(t, m.visible(), 3)
}

func TestModel_Search(t *testing.T) {
	m := newTestModel(t, testBackend())

	m = update(t, m, keyMsg("/"))
	assert.Equal(t, ModeSearch, m.mode)

	m = update(t, m, keyMsg("DISK"))
	assert.Equal(t, "DISK", m.searchQuery)
	assert.Equal(t, []uint32{2}, itemIDs(m))

	m = update(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	assert.Equal(t, ModeList, m.mode)
	assert.Equal(t, []uint32{3, 2}, itemIDs(m))
}

func TestModel_Detail(t *testing.T) {
	m := newTestModel(t, testBackend())

	m = update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	require.Equal(t, ModeDetail, m.mode)
	require.NotNil(t, m.selected)
	assert.Equal(t, uint32(3), m.selected.ID)

	detail := m.renderDetail(*m.selected)
	assert.Contains(t, detail, "Meeting")
	assert.Contains(t, detail, "standup in 5")
	assert.Contains(t, detail, "low")

	m = update(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	assert.Equal(t, ModeList, m.mode)
	assert.Nil(t, m.selected)
}

func TestModel_Actions(t *testing.T) {
	backend := testBackend()
	m := newTestModel(t, backend)

	_, cmd := m.Update(keyMsg("d"))
	require.NotNil(t, cmd)
	cmd()
	assert.Equal(t, []uint32{3}, backend.dismissed)

	_, cmd = m.Update(keyMsg("D"))
	require.NotNil(t, cmd)
	cmd()
	assert.Equal(t, 1, backend.dismissAll)

	_, cmd = m.Update(keyMsg("t"))
	require.NotNil(t, cmd)
	msg := cmd()
	assert.Equal(t, statusMsg{text: "Toggled notification center"}, msg)
	assert.Equal(t, 1, backend.toggles)
}

func TestModel_Copy(t *testing.T) {
	m := newTestModel(t, testBackend())
	var copied string
	m.clip = func(text string) error {
		copied = text
		return nil
	}

	_, cmd := m.Update(keyMsg("c"))
	require.NotNil(t, cmd)
	assert.Equal(t, copyResultMsg{}, cmd())
	assert.Equal(t, "standup in 5", copied)

	_, cmd = m.Update(keyMsg("s"))
	cmd()
	assert.Equal(t, "Meeting", copied)

	_, cmd = m.Update(keyMsg("C"))
	cmd()
	assert.Contains(t, copied, `"title": "Disk full"`)
}

func TestModel_LoadError(t *testing.T) {
	backend := testBackend()
	backend.listErr = errors.New("not running")
	m := New(backend, Options{})

	m = update(t, m, m.load())
	assert.True(t, m.statusErr)
	assert.Contains(t, m.statusMsg, "not running")
}

func TestModel_Quit(t *testing.T) {
	m := newTestModel(t, testBackend())
	_, cmd := m.Update(keyMsg("q"))
	require.NotNil(t, cmd)
	assert.Equal(t, tea.QuitMsg{}, cmd())
}

func TestModel_HelpToggle(t *testing.T) {
	m := newTestModel(t, testBackend())
	m = update(t, m, keyMsg("?"))
	assert.Equal(t, ModeHelp, m.mode)
	assert.Contains(t, m.View(), "Keyboard Shortcuts")
	m = update(t, m, keyMsg("?"))
	assert.Equal(t, ModeList, m.mode)
}

func TestBuildKeybindBar_FitsWidth(t *testing.T) {
	m := newTestModel(t, testBackend())
	bar := m.buildKeybindBar(12, ModeList)
	assert.Contains(t, bar, "quit")
	assert.NotContains(t, bar, "view")
}

func TestRunClipboardCommand(t *testing.T) {
	path := filepath.Join(t.TempDir(), "clip.txt")

	require.NoError(t, copyText("copied text", "tee "+path))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "copied text", string(data))

	assert.Error(t, runClipboardCommand("x", "   "))
	assert.Error(t, copyText("x", "lmk-no-such-clipboard-tool"))
}
