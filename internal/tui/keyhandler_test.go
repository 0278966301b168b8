package tui

import (
	"strings"
	"testing"
	"unicode/utf8"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"

	"github.com/pders01/headlines/internal/config"
	"github.com/pders01/headlines/internal/news"
)

func TestKeyHandler_ModifierKey(t *testing.T) {
	env := newTestEnv(t)
	assert.Equal(t, "ctrl+", env.app.keyHandler.modifierKey)

	cfg := config.TestConfig()
	cfg.Keys.Modifier = ""
	app := NewApp(cfg, Options{Source: newStubSource(), Opener: &fakeOpener{}})
	t.Cleanup(app.shutdown)
	assert.Equal(t, "ctrl+", app.keyHandler.modifierKey, "empty modifier falls back to ctrl")
}

func TestKeyHandler_CategoryKeys(t *testing.T) {
	env := newTestEnv(t)
	app := env.app
	run(app, app.selectCategory(news.TopStories))

	tests := []struct {
		name string
		msg  tea.KeyMsg
		want news.Category
	}{
		{"digit 2", tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("2")}, news.Business},
		{"right", tea.KeyMsg{Type: tea.KeyRight}, news.Politics},
		{"l", tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("l")}, news.Science},
		{"left", tea.KeyMsg{Type: tea.KeyLeft}, news.Politics},
		{"digit 5", tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("5")}, news.Technology},
		{"wrap forward", tea.KeyMsg{Type: tea.KeyTab}, news.TopStories},
		{"wrap back", tea.KeyMsg{Type: tea.KeyShiftTab}, news.Technology},
		{"digit 1", tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("1")}, news.TopStories},
	}

	for _, tt := range tests {
		press(app, tt.msg)
		assert.Equal(t, tt.want, app.feed.Category(), tt.name)
	}
}

func TestKeyHandler_SameDigitDoesNotRefetch(t *testing.T) {
	env := newTestEnv(t)
	run(env.app, env.app.selectCategory(news.Business))

	pressRunes(env.app, "2")
	assert.Equal(t, 1, env.source.callCount(news.Business, 1))
}

func TestKeyHandler_EscOnFeedIsNoop(t *testing.T) {
	env := newTestEnv(t)
	_, cmd := env.app.Update(tea.KeyMsg{Type: tea.KeyEsc})
	assert.Nil(t, cmd)
	assert.Equal(t, ViewFeed, env.app.view)
}

func TestKeyHandler_OverlaysKeepOrigin(t *testing.T) {
	env := newTestEnv(t)
	run(env.app, env.app.openArticle(news.Article{Title: "Origin", URL: "https://news.example.org/o"}))
	assert.Equal(t, ViewDetail, env.app.view)

	press(env.app, tea.KeyMsg{Type: tea.KeyCtrlS})
	assert.Equal(t, ViewSearch, env.app.view)
	press(env.app, tea.KeyMsg{Type: tea.KeyEsc})
	assert.Equal(t, ViewDetail, env.app.view)

	press(env.app, tea.KeyMsg{Type: tea.KeyCtrlG})
	assert.Equal(t, ViewBookmarks, env.app.view)
	press(env.app, tea.KeyMsg{Type: tea.KeyCtrlS})
	assert.Equal(t, ViewSearch, env.app.view)
	press(env.app, tea.KeyMsg{Type: tea.KeyEsc})
	assert.Equal(t, ViewDetail, env.app.view)
	assert.Contains(t, env.app.viewport.View(), "Origin")
}

func TestSanitizeSearchInput(t *testing.T) {
	assert.Equal(t, "hello world", sanitizeSearchInput("  hello \t\n world  "))
	assert.Equal(t, "", sanitizeSearchInput("   "))
	long := make([]byte, 300)
	for i := range long {
		long[i] = 'a'
	}
	assert.Len(t, sanitizeSearchInput(string(long)), 256)

	accented := sanitizeSearchInput(strings.Repeat("é", 300))
	assert.True(t, utf8.ValidString(accented))
	assert.Equal(t, maxSearchRunes, utf8.RuneCountInString(accented))
}

func TestKeyHandler_HelpPerView(t *testing.T) {
	env := newTestEnv(t)
	kh := env.app.keyHandler

	for _, v := range []View{ViewFeed, ViewDetail, ViewSearch, ViewBookmarks} {
		env.app.view = v
		assert.NotEmpty(t, kh.GetHelpForCurrentView(), v.String())
	}
	env.app.view = ViewFeed
	assert.Contains(t, kh.GetHelpForCurrentView(), "ctrl+b: bookmark")
}
