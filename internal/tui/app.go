package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"github.com/pders01/headlines/internal/config"
	"github.com/pders01/headlines/internal/debuglog"
	"github.com/pders01/headlines/internal/feed"
	"github.com/pders01/headlines/internal/media"
	"github.com/pders01/headlines/internal/news"
	"github.com/pders01/headlines/internal/search"
	"github.com/pders01/headlines/internal/storage"
)

// Rows taken by everything on the feed screen except the headline list.
const feedChrome = 6

const (
	defaultSearchDebounce = 150 * time.Millisecond
	defaultDescLimit      = 150
)

// BookmarkStore is the part of storage.Store the UI needs.
type BookmarkStore interface {
	ToggleBookmark(article news.Article) (bool, error)
	Bookmarks() ([]storage.Bookmark, error)
	MarkRead(key string) error
	ReadKeys() (map[string]bool, error)
}

// Opener hands URLs to external applications.
type Opener interface {
	Open(url string) error
}

// Options wires the App to its collaborators. Only Source is required.
type Options struct {
	Source   feed.Source
	Store    BookmarkStore
	Searcher search.Searcher
	Opener   Opener
	Category news.Category
}

type App struct {
	config     *config.Config
	source     feed.Source
	store      BookmarkStore
	searcher   search.Searcher
	launcher   Opener
	keyHandler *KeyHandler

	feed       *feed.Controller
	detailOpts feed.DetailOptions
	stack      []*detailScreen
	category   news.Category

	headlineList list.Model
	searchList   list.Model
	bookmarkList list.Model
	searchInput  textinput.Model
	viewport     viewport.Model
	spinner      spinner.Model

	view         View
	previousView View

	read       map[string]bool
	bookmarked map[string]bool

	pendingSearchQuery string
	searchSeq          int
	searchDebounce     time.Duration

	status     string
	statusKind StatusKind
	err        error

	width  int
	height int

	glamourRenderer *glamour.TermRenderer
	rendererWidth   int
}

func NewApp(cfg *config.Config, opts Options) *App {
	headlineList := list.New([]list.Item{}, list.NewDefaultDelegate(), 0, 0)
	headlineList.SetShowTitle(false)
	headlineList.SetShowStatusBar(false)
	headlineList.SetFilteringEnabled(false)
	headlineList.SetShowHelp(false)
	headlineList.KeyMap.Quit.SetEnabled(false)

	searchList := list.New([]list.Item{}, list.NewDefaultDelegate(), 0, 0)
	searchList.Title = "› search results"
	searchList.SetShowStatusBar(false)
	searchList.SetShowHelp(false)
	searchList.SetFilteringEnabled(false)
	searchList.KeyMap.Quit.SetEnabled(false)

	bookmarkList := list.New([]list.Item{}, list.NewDefaultDelegate(), 0, 0)
	bookmarkList.Title = "› bookmarks"
	bookmarkList.SetShowStatusBar(false)
	bookmarkList.SetFilteringEnabled(true)
	bookmarkList.SetShowHelp(false)
	bookmarkList.KeyMap.Quit.SetEnabled(false)

	si := textinput.New()
	si.Placeholder = "Search headlines seen this session and bookmarks..."
	si.CharLimit = 256

	sp := spinner.New(
		spinner.WithSpinner(spinner.Dot),
		spinner.WithStyle(lipgloss.NewStyle().Foreground(PrimaryColor)),
	)

	category := opts.Category
	if !category.Valid() {
		category = news.DefaultCategory()
	}

	searcher := opts.Searcher
	if searcher == nil {
		if idx, err := search.NewIndex(); err == nil {
			searcher = idx
		} else {
			debuglog.Warnf("search disabled: %v", err)
		}
	}

	launcher := opts.Opener
	if launcher == nil {
		launcher = media.NewLauncher(cfg)
	}

	app := &App{
		config:   cfg,
		source:   opts.Source,
		store:    opts.Store,
		searcher: searcher,
		launcher: launcher,
		feed: feed.NewController(opts.Source, feed.Options{
			PageSize: cfg.API.PageSize,
			Category: category,
		}),
		detailOpts: feed.DetailOptions{
			Category: cfg.TrendingCategory(),
			PageSize: cfg.API.TrendingSize,
		},
		category:       category,
		headlineList:   headlineList,
		searchList:     searchList,
		bookmarkList:   bookmarkList,
		searchInput:    si,
		viewport:       viewport.New(0, 0),
		spinner:        sp,
		view:           ViewFeed,
		previousView:   ViewFeed,
		read:           make(map[string]bool),
		bookmarked:     make(map[string]bool),
		searchDebounce: defaultSearchDebounce,
	}

	app.keyHandler = NewKeyHandler(app, cfg)

	return app
}

func (a *App) getRenderer() (*glamour.TermRenderer, error) {
	maxWidth := a.config.UI.Article.WordWrapMaxWidth
	minWidth := a.config.UI.Article.WordWrapMinWidth
	wordWrapWidth := (a.width * 9) / 10
	if maxWidth > 0 && wordWrapWidth > maxWidth {
		wordWrapWidth = maxWidth
	}
	if wordWrapWidth < minWidth {
		wordWrapWidth = minWidth
	}
	if a.width > 0 && a.width < 50 {
		wordWrapWidth = max(a.width-4, 20)
	}

	if a.glamourRenderer == nil || abs(a.rendererWidth-wordWrapWidth) > 10 {
		r, err := glamour.NewTermRenderer(
			glamour.WithAutoStyle(),
			glamour.WithWordWrap(wordWrapWidth),
		)
		if err != nil {
			return nil, err
		}
		a.glamourRenderer = r
		a.rendererWidth = wordWrapWidth
	}

	return a.glamourRenderer, nil
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

func (a *App) Init() tea.Cmd {
	return tea.Batch(
		tea.EnterAltScreen,
		a.spinner.Tick,
		a.selectCategory(a.category),
		a.loadReadKeys(),
		a.loadBookmarks(),
	)
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.resize(msg.Width, msg.Height)
		if top := a.top(); top != nil {
			return a, a.renderArticle(top.detail)
		}
		return a, nil

	case tea.KeyMsg:
		return a.keyHandler.HandleKey(msg)

	case spinner.TickMsg:
		var cmd tea.Cmd
		a.spinner, cmd = a.spinner.Update(msg)
		return a, cmd

	case resultMsg:
		return a, a.applyResult(msg.result)

	case articleRenderedMsg:
		for _, s := range a.stack {
			if s.detail == msg.detail {
				s.content = msg.content
				s.rendered = true
			}
		}
		if top := a.top(); top != nil && top.detail == msg.detail && a.view == ViewDetail {
			a.viewport.SetContent(msg.content)
			a.viewport.GotoTop()
		}

	case readKeysLoadedMsg:
		for k := range msg.keys {
			a.read[k] = true
		}
		a.refreshHeadlines()

	case bookmarksLoadedMsg:
		if msg.err != nil {
			a.err = wrapErr("loading bookmarks", msg.err)
			return a, nil
		}
		a.bookmarked = make(map[string]bool, len(msg.bookmarks))
		items := make([]list.Item, len(msg.bookmarks))
		articles := make([]news.Article, len(msg.bookmarks))
		for i, b := range msg.bookmarks {
			a.bookmarked[b.Key] = true
			items[i] = bookmarkItem{bookmark: b, descLimit: a.descLimit()}
			articles[i] = b.Article
		}
		a.bookmarkList.SetItems(items)
		a.refreshHeadlines()
		return a, a.indexArticles(articles)

	case bookmarkToggledMsg:
		if msg.err != nil {
			a.err = wrapErr("bookmark", msg.err)
			return a, nil
		}
		a.bookmarked[msg.article.Key()] = msg.saved
		if msg.saved {
			a.setStatus(MsgBookmarked, StatusSuccess)
		} else {
			a.setStatus(MsgBookmarkRemoved, StatusInfo)
		}
		a.refreshHeadlines()
		return a, a.loadBookmarks()

	case searchDebounceFireMsg:
		if msg.seq == a.searchSeq {
			return a, a.performSearch(a.pendingSearchQuery)
		}

	case searchResultsMsg:
		if a.view == ViewSearch && msg.query == a.pendingSearchQuery {
			items := make([]list.Item, len(msg.results))
			for i, r := range msg.results {
				items[i] = searchResultItem{result: r, read: a.read[r.Article.Key()], descLimit: a.descLimit()}
			}
			a.searchList.SetItems(items)
			a.searchList.ResetSelected()
			if len(items) == 0 {
				a.setStatus(MsgNoResults, StatusInfo)
			} else {
				a.setStatus(MsgResultsCount(len(items)), StatusInfo)
			}
		}

	case errorMsg:
		a.err = msg.err
	}

	return a, nil
}

// applyResult routes a finished fetch to whichever controller issued it.
func (a *App) applyResult(res feed.Result) tea.Cmd {
	applied := false
	if a.feed.Owns(res) {
		applied = a.feed.Apply(res)
		a.refreshHeadlines()
	} else {
		for _, s := range a.stack {
			if s.detail.Owns(res) {
				applied = s.detail.Apply(res)
				break
			}
		}
	}
	if !applied || res.Err != nil {
		return nil
	}
	return a.indexArticles(res.Articles)
}

func (a *App) resize(width, height int) {
	a.width = width
	a.height = height

	a.headlineList.SetSize(width, max(height-feedChrome, 3))
	a.bookmarkList.SetSize(width, max(height-4, 3))
	// Search view layout requires 10 lines for UI chrome
	a.searchList.SetSize(width, max(height-10, 5))

	a.viewport.Width = width
	a.viewport.Height = max(height-3-a.trendingHeight(), 3)

	inputWidth := width - 8
	if inputWidth < 10 {
		inputWidth = max(width-4, 1)
	}
	a.searchInput.Width = inputWidth
}

func (a *App) trendingHeight() int {
	return a.detailOpts.PageSize + 2
}

// descLimit caps descriptions in list rows.
func (a *App) descLimit() int {
	if n := a.config.UI.Article.MaxDescriptionLength; n > 0 {
		return n
	}
	return defaultDescLimit
}

func (a *App) scrollThreshold() int {
	return max(a.config.UI.ScrollThreshold, 0)
}

func (a *App) setStatus(text string, kind StatusKind) {
	a.status = text
	a.statusKind = kind
}

func (a *App) top() *detailScreen {
	if len(a.stack) == 0 {
		return nil
	}
	return a.stack[len(a.stack)-1]
}

// selectCategory switches tabs and returns the page-1 fetch.
func (a *App) selectCategory(category news.Category) tea.Cmd {
	req := a.feed.SelectCategory(category)
	a.category = a.feed.Category()
	a.headlineList.ResetSelected()
	a.refreshHeadlines()
	return fetchCmd(req)
}

// maybeLoadMore requests the next page once the cursor is within the
// scroll threshold of the last headline.
func (a *App) maybeLoadMore() tea.Cmd {
	n := len(a.headlineList.Items())
	if n == 0 || a.headlineList.Index() < n-1-a.scrollThreshold() {
		return nil
	}
	return fetchCmd(a.feed.LoadNextPage())
}

func (a *App) refreshHeadlines() {
	articles := a.feed.Articles()
	items := make([]list.Item, len(articles))
	for i, art := range articles {
		key := art.Key()
		items[i] = headlineItem{article: art, read: a.read[key], bookmarked: a.bookmarked[key], descLimit: a.descLimit()}
	}
	idx := a.headlineList.Index()
	a.headlineList.SetItems(items)
	if idx < len(items) {
		a.headlineList.Select(idx)
	}
}

func (a *App) selectedHeadline() (news.Article, bool) {
	if i, ok := a.headlineList.SelectedItem().(headlineItem); ok {
		return i.article, true
	}
	return news.Article{}, false
}

// openArticle pushes a detail screen for article.
func (a *App) openArticle(article news.Article) tea.Cmd {
	return a.pushDetail(feed.NewDetail(a.source, article, a.detailOpts))
}

func (a *App) pushDetail(d *feed.Detail) tea.Cmd {
	a.stack = append(a.stack, &detailScreen{detail: d, returnView: a.view})
	a.view = ViewDetail
	a.viewport.SetContent("")
	a.viewport.GotoTop()

	article := d.Article()
	a.read[article.Key()] = true
	debuglog.Debugf("open detail %q (depth %d)", article.Title, len(a.stack))

	return tea.Batch(
		fetchCmd(d.Start()),
		a.renderArticle(d),
		a.markRead(article),
	)
}

// popDetail closes the top detail screen and returns to where it was opened from.
func (a *App) popDetail() tea.Cmd {
	top := a.top()
	if top == nil {
		return nil
	}
	top.detail.Close()
	a.stack = a.stack[:len(a.stack)-1]
	a.view = top.returnView
	if a.view == ViewDetail && a.top() == nil {
		a.view = ViewFeed
	}
	a.refreshHeadlines()
	if a.view == ViewSearch {
		a.searchInput.Blur()
	}
	return a.showTop()
}

// showTop restores the viewport for the current top detail screen.
func (a *App) showTop() tea.Cmd {
	top := a.top()
	if top == nil || a.view != ViewDetail {
		return nil
	}
	if !top.rendered {
		a.viewport.SetContent("")
		return a.renderArticle(top.detail)
	}
	a.viewport.SetContent(top.content)
	a.viewport.GotoTop()
	return nil
}

func (a *App) openTrending() tea.Cmd {
	top := a.top()
	if top == nil {
		return nil
	}
	next, err := top.detail.Select(top.cursor)
	if err != nil {
		return nil
	}
	return a.pushDetail(next)
}

func (a *App) moveTrendingCursor(delta int) {
	top := a.top()
	if top == nil {
		return
	}
	n := len(top.detail.Trending())
	if n == 0 {
		top.cursor = 0
		return
	}
	top.cursor = ((top.cursor+delta)%n + n) % n
}

// Close cancels every outstanding fetch. It is safe to call more than once.
func (a *App) Close() {
	a.shutdown()
}

func (a *App) shutdown() {
	for i := len(a.stack) - 1; i >= 0; i-- {
		a.stack[i].detail.Close()
	}
	a.stack = nil
	a.feed.Close()
}

func (a *App) View() string {
	var content string

	switch a.view {
	case ViewFeed:
		content = a.feedView()
	case ViewDetail:
		content = a.detailView()
	case ViewSearch:
		content = a.searchView()
	case ViewBookmarks:
		content = a.bookmarksView()
	}

	customStatus := a.getCustomStatusBar()
	if customStatus == "" {
		return content
	}
	return lipgloss.JoinVertical(lipgloss.Top, content, renderSeparator(a.width-1), customStatus)
}

func (a *App) feedView() string {
	snap := a.feed.Snapshot()
	label := snap.Category.Label()
	bodyHeight := max(a.height-feedChrome+1, 3)

	var body string
	switch {
	case snap.Loading && len(snap.Articles) == 0:
		body = renderCentered(a.width, bodyHeight, a.spinner.View()+" "+MsgLoadingHeadlines(label))
	case len(snap.Articles) == 0 && snap.Err != nil:
		body = renderCentered(a.width, bodyHeight, lipgloss.JoinVertical(
			lipgloss.Center,
			ErrorMessageStyle.Render("Couldn't load "+label),
			"",
			renderHelp(a.keyHandler.modifierKey+"r to retry"),
		))
	case len(snap.Articles) == 0:
		body = renderCentered(a.width, bodyHeight, GetCompactBanner(MsgNoHeadlines))
	default:
		footer := ""
		switch {
		case snap.Loading:
			footer = a.spinner.View() + " " + renderMuted(MsgLoadingMore)
		case snap.Exhausted:
			footer = renderMuted(MsgEndOfCategory(label))
		}
		body = lipgloss.JoinVertical(lipgloss.Left, a.headlineList.View(), footer)
	}

	return lipgloss.JoinVertical(
		lipgloss.Left,
		renderTopBar("", a.width),
		renderTabs(snap.Category, a.width),
		body,
	)
}

func (a *App) detailView() string {
	top := a.top()
	if top == nil {
		return ""
	}
	article := top.article()

	title := article.SourceName()
	if a.bookmarked[article.Key()] {
		title = strings.TrimSpace("★ " + title)
	}

	var body string
	if !top.rendered {
		body = renderCentered(a.width, a.viewport.Height, a.spinner.View()+" "+renderMuted(MsgLoadingArticle))
	} else {
		body = a.viewport.View()
	}

	return lipgloss.JoinVertical(
		lipgloss.Left,
		renderTopBar(title, a.width),
		body,
		a.renderTrending(top),
	)
}

func (a *App) renderTrending(s *detailScreen) string {
	rows := []string{HeaderStyle.Render("Trending in " + a.detailOpts.Category.Label())}

	d := s.detail
	trending := d.Trending()
	switch {
	case d.Loading():
		rows = append(rows, a.spinner.View()+" "+renderMuted(MsgLoadingTrending))
	case d.Err() != nil:
		rows = append(rows, renderMuted(MsgTrendingUnavailable))
	case len(trending) == 0:
		rows = append(rows, renderMuted(MsgNothingTrending))
	default:
		for i, art := range trending {
			line := truncateEnd(fmt.Sprintf("%d. %s · By %s", i+1, art.Title, art.AuthorOrUnknown()), a.width-4)
			if i == s.cursor {
				rows = append(rows, SelectedItemStyle.Render("› "+line))
			} else {
				rows = append(rows, "  "+line)
			}
		}
	}

	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

func (a *App) searchView() string {
	helpText := ""
	switch {
	case a.searchInput.Focused():
		helpText = "Type to search • Tab/↓: results • Esc: back"
	case len(a.searchList.Items()) > 0:
		helpText = "↑↓: navigate • Enter: open • Tab/↑: search box • Esc: back"
	default:
		helpText = "No results found • Tab/↑: search box • Esc: back"
	}

	indexed := ""
	if ds, ok := a.searcher.(search.DebugStatser); ok {
		if n, err := ds.DocCount(); err == nil {
			indexed = fmt.Sprintf(" (%d articles indexed)", n)
		}
	}

	searchContent := lipgloss.JoinVertical(
		lipgloss.Top,
		HeaderStyle.Render("› search"+indexed),
		"",
		renderInputFrame(a.searchInput.View(), a.searchInput.Focused(), a.searchInput.Width),
		renderMuted(helpText),
		"",
		a.searchList.View(),
	)

	return lipgloss.NewStyle().
		Width(a.width).
		Height(a.height - 3).
		MaxHeight(a.height - 3).
		Render(searchContent)
}

func (a *App) bookmarksView() string {
	if len(a.bookmarkList.Items()) == 0 {
		return lipgloss.JoinVertical(
			lipgloss.Left,
			renderTopBar("bookmarks", a.width),
			renderCentered(a.width, max(a.height-4, 3), GetCompactBanner(MsgNoBookmarks)),
		)
	}
	return lipgloss.JoinVertical(
		lipgloss.Left,
		renderTopBar("bookmarks", a.width),
		a.bookmarkList.View(),
	)
}

func (a *App) getCustomStatusBar() string {
	line := func(s string) string {
		return lipgloss.NewStyle().
			Width(a.width).
			Padding(0, 1).
			Foreground(MutedColor).
			Render(s)
	}

	if a.err != nil {
		return line(ErrorMessageStyle.Render(fmt.Sprintf("✗ %v", a.err)))
	}

	if a.view == ViewFeed {
		if err := a.feed.Err(); err != nil {
			return line(StatusErrorStyle.Render("✗ "+describeFetchError(err)) +
				renderMuted(" • "+a.keyHandler.modifierKey+"r: retry"))
		}
	}

	if a.status != "" {
		return line(statusStyle(a.statusKind).Render(a.status))
	}

	if commands := a.keyHandler.GetHelpForCurrentView(); len(commands) > 0 {
		return line(strings.Join(commands, " • "))
	}

	return ""
}
