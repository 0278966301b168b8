package tui

import (
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/pders01/headlines/internal/config"
	"github.com/pders01/headlines/internal/news"
)

type KeyHandler struct {
	app         *App
	config      *config.Config
	modifierKey string
}

func NewKeyHandler(app *App, cfg *config.Config) *KeyHandler {
	modifier := cfg.Keys.Modifier
	if modifier == "" {
		modifier = "ctrl"
	}
	return &KeyHandler{app: app, config: cfg, modifierKey: modifier + "+"}
}

func (kh *KeyHandler) HandleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()

	// Errors and one-shot status messages last until the next key.
	kh.app.err = nil
	kh.app.status = ""

	if kh.isInTextInputMode() {
		return kh.handleTextInputMode(msg)
	}
	if kh.app.view == ViewBookmarks && kh.app.bookmarkList.FilterState() == list.Filtering {
		return kh.delegateToCharm(msg)
	}

	if model, cmd, handled := kh.handleCustomKeys(key); handled {
		return model, cmd
	}

	return kh.delegateToCharm(msg)
}

func (kh *KeyHandler) isInTextInputMode() bool {
	return kh.app.view == ViewSearch && kh.app.searchInput.Focused()
}

func (kh *KeyHandler) handleTextInputMode(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		return kh.navigateBack()
	case "ctrl+c":
		return kh.quit()
	case "enter":
		if items := kh.app.searchList.Items(); len(items) > 0 {
			if i, ok := items[0].(searchResultItem); ok {
				return kh.selectSearchResult(i)
			}
		}
		return kh.app, nil
	case "tab", "down":
		if len(kh.app.searchList.Items()) > 0 {
			kh.app.searchInput.Blur()
			kh.app.searchList.Select(0)
		}
		return kh.app, nil
	default:
		return kh.delegateToTextInput(msg)
	}
}

// delegateToTextInput passes the key to the search input and schedules a
// debounced search when the query changed.
func (kh *KeyHandler) delegateToTextInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	prev := kh.app.pendingSearchQuery
	newSearchInput, cmd := kh.app.searchInput.Update(msg)
	kh.app.searchInput = newSearchInput

	newVal := sanitizeSearchInput(kh.app.searchInput.Value())
	if newVal == prev {
		return kh.app, cmd
	}

	kh.app.pendingSearchQuery = newVal
	kh.app.searchSeq++
	seq := kh.app.searchSeq
	return kh.app, tea.Batch(cmd, tea.Tick(kh.app.searchDebounce, func(time.Time) tea.Msg {
		return searchDebounceFireMsg{seq: seq}
	}))
}

// handleCustomKeys handles only our custom action keys
func (kh *KeyHandler) handleCustomKeys(key string) (tea.Model, tea.Cmd, bool) {
	switch key {
	case "ctrl+c", "q":
		model, cmd := kh.quit()
		return model, cmd, true
	case "esc":
		model, cmd := kh.navigateBack()
		return model, cmd, true
	case kh.modifierKey + "s":
		model, cmd := kh.enterSearchMode()
		return model, cmd, true
	case kh.modifierKey + "g":
		model, cmd := kh.enterBookmarks()
		return model, cmd, true
	}

	switch kh.app.view {
	case ViewFeed:
		return kh.handleFeedCustomKeys(key)
	case ViewDetail:
		return kh.handleDetailCustomKeys(key)
	case ViewBookmarks:
		return kh.handleBookmarksCustomKeys(key)
	default:
		return kh.app, nil, false
	}
}

func (kh *KeyHandler) handleFeedCustomKeys(key string) (tea.Model, tea.Cmd, bool) {
	app := kh.app
	switch key {
	case "left", "h", "shift+tab":
		return app, app.selectCategory(app.feed.Category().Prev()), true
	case "right", "l", "tab":
		return app, app.selectCategory(app.feed.Category().Next()), true
	case "1", "2", "3", "4", "5":
		categories := news.Categories()
		i := int(key[0] - '1')
		if i < len(categories) && categories[i] != app.feed.Category() {
			return app, app.selectCategory(categories[i]), true
		}
		return app, nil, true
	case kh.modifierKey + "r":
		return app, app.selectCategory(app.feed.Category()), true
	case "enter":
		if article, ok := app.selectedHeadline(); ok {
			return app, app.openArticle(article), true
		}
		return app, nil, true
	case kh.modifierKey + "o":
		if article, ok := app.selectedHeadline(); ok && article.URL != "" {
			return app, app.openURL(article.URL), true
		}
		return app, nil, true
	case kh.modifierKey + "b":
		if article, ok := app.selectedHeadline(); ok {
			return app, app.toggleBookmark(article), true
		}
		return app, nil, true
	}
	return app, nil, false
}

func (kh *KeyHandler) handleDetailCustomKeys(key string) (tea.Model, tea.Cmd, bool) {
	app := kh.app
	top := app.top()
	if top == nil {
		return app, nil, false
	}
	article := top.article()

	switch key {
	case "tab":
		app.moveTrendingCursor(1)
		return app, nil, true
	case "shift+tab":
		app.moveTrendingCursor(-1)
		return app, nil, true
	case "enter":
		return app, app.openTrending(), true
	case kh.modifierKey + "o":
		if article.URL != "" {
			return app, app.openURL(article.URL), true
		}
		return app, nil, true
	case kh.modifierKey + "p":
		if !article.HasImage() {
			app.setStatus(MsgNoImage, StatusWarn)
			return app, nil, true
		}
		return app, app.openURL(strings.TrimSpace(article.URLToImage)), true
	case kh.modifierKey + "b":
		return app, app.toggleBookmark(article), true
	}
	return app, nil, false
}

func (kh *KeyHandler) handleBookmarksCustomKeys(key string) (tea.Model, tea.Cmd, bool) {
	app := kh.app
	item, ok := app.bookmarkList.SelectedItem().(bookmarkItem)

	switch key {
	case "enter":
		if ok {
			return app, app.openArticle(item.bookmark.Article), true
		}
		return app, nil, true
	case kh.modifierKey + "b":
		if ok {
			return app, app.toggleBookmark(item.bookmark.Article), true
		}
		return app, nil, true
	case kh.modifierKey + "o":
		if ok && item.bookmark.Article.URL != "" {
			return app, app.openURL(item.bookmark.Article.URL), true
		}
		return app, nil, true
	}
	return app, nil, false
}

// delegateToCharm lets Charm handle all keys we don't intercept
func (kh *KeyHandler) delegateToCharm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	app := kh.app
	var cmd tea.Cmd

	switch app.view {
	case ViewFeed:
		app.headlineList, cmd = app.headlineList.Update(msg)
		return app, tea.Batch(cmd, app.maybeLoadMore())

	case ViewDetail:
		app.viewport, cmd = app.viewport.Update(msg)
		return app, cmd

	case ViewSearch:
		switch msg.String() {
		case "tab", "shift+tab", "/", "i":
			app.searchInput.Focus()
			return app, nil
		case "up":
			if len(app.searchList.Items()) == 0 || app.searchList.Index() == 0 {
				app.searchInput.Focus()
				return app, nil
			}
		case "enter":
			if i, ok := app.searchList.SelectedItem().(searchResultItem); ok {
				return kh.selectSearchResult(i)
			}
			return app, nil
		}
		app.searchList, cmd = app.searchList.Update(msg)
		return app, cmd

	case ViewBookmarks:
		app.bookmarkList, cmd = app.bookmarkList.Update(msg)
		return app, cmd

	default:
		return app, nil
	}
}

func (kh *KeyHandler) selectSearchResult(result searchResultItem) (tea.Model, tea.Cmd) {
	kh.app.searchInput.Blur()
	return kh.app, kh.app.openArticle(result.result.Article)
}

// navigateBack implements smart back navigation
func (kh *KeyHandler) navigateBack() (tea.Model, tea.Cmd) {
	app := kh.app
	switch app.view {
	case ViewDetail:
		return app, app.popDetail()

	case ViewSearch:
		app.searchInput.Reset()
		app.searchInput.Blur()
		app.pendingSearchQuery = ""
		app.searchList.SetItems([]list.Item{})
		app.view = app.previousView
		return app, app.showTop()

	case ViewBookmarks:
		if app.bookmarkList.FilterState() != list.Unfiltered {
			var cmd tea.Cmd
			app.bookmarkList, cmd = app.bookmarkList.Update(tea.KeyMsg{Type: tea.KeyEsc})
			return app, cmd
		}
		app.view = app.previousView
		app.refreshHeadlines()
		return app, app.showTop()

	default:
		return app, nil
	}
}

// enterOverlay switches to search or bookmarks, remembering the screen
// underneath. Switching between the two overlays keeps the first one.
func (kh *KeyHandler) enterOverlay(v View) {
	if kh.app.view != ViewSearch && kh.app.view != ViewBookmarks {
		kh.app.previousView = kh.app.view
	}
	kh.app.view = v
}

func (kh *KeyHandler) enterSearchMode() (tea.Model, tea.Cmd) {
	kh.enterOverlay(ViewSearch)
	kh.app.searchInput.Reset()
	kh.app.pendingSearchQuery = ""
	kh.app.searchList.SetItems([]list.Item{})
	return kh.app, kh.app.searchInput.Focus()
}

func (kh *KeyHandler) enterBookmarks() (tea.Model, tea.Cmd) {
	kh.enterOverlay(ViewBookmarks)
	if kh.app.store == nil {
		kh.app.err = errNoStore
		return kh.app, nil
	}
	return kh.app, kh.app.loadBookmarks()
}

func (kh *KeyHandler) quit() (tea.Model, tea.Cmd) {
	kh.app.shutdown()
	return kh.app, tea.Quit
}

const maxSearchRunes = 256

// sanitizeSearchInput sanitizes and limits search input length
func sanitizeSearchInput(input string) string {
	input = strings.TrimSpace(input)

	if r := []rune(input); len(r) > maxSearchRunes {
		input = string(r[:maxSearchRunes])
	}

	input = strings.ReplaceAll(input, "\n", " ")
	input = strings.ReplaceAll(input, "\r", " ")
	input = strings.ReplaceAll(input, "\t", " ")

	return strings.Join(strings.Fields(input), " ")
}

// GetHelpForCurrentView returns only our custom help text (Charm handles the rest)
func (kh *KeyHandler) GetHelpForCurrentView() []string {
	m := kh.modifierKey
	switch kh.app.view {
	case ViewFeed:
		return []string{"←/→ 1-5: category", "enter: read", m + "o: open", m + "b: bookmark", m + "r: refresh", m + "s: search", m + "g: bookmarks", "q: quit"}
	case ViewDetail:
		return []string{"tab: trending", "enter: open trending", m + "o: open", m + "p: image", m + "b: bookmark", "esc: back"}
	case ViewSearch:
		return []string{"enter: open", "esc: back"}
	case ViewBookmarks:
		return []string{"enter: read", m + "b: remove", m + "o: open", "/: filter", "esc: back"}
	default:
		return []string{}
	}
}
