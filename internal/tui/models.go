package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/pders01/headlines/internal/feed"
	"github.com/pders01/headlines/internal/news"
	"github.com/pders01/headlines/internal/search"
	"github.com/pders01/headlines/internal/storage"
)

type View int

const (
	ViewFeed View = iota
	ViewDetail
	ViewSearch
	ViewBookmarks
)

func (v View) String() string {
	switch v {
	case ViewFeed:
		return "feed"
	case ViewDetail:
		return "detail"
	case ViewSearch:
		return "search"
	case ViewBookmarks:
		return "bookmarks"
	default:
		return "unknown"
	}
}

// detailScreen is one entry of the navigation stack.
type detailScreen struct {
	detail     *feed.Detail
	returnView View
	content    string
	rendered   bool
	cursor     int
}

func (s *detailScreen) article() news.Article { return s.detail.Article() }

type headlineItem struct {
	article    news.Article
	read       bool
	bookmarked bool
	descLimit  int
}

func (i headlineItem) Title() string {
	title := i.article.Title
	if i.bookmarked {
		title = "★ " + title
	}
	if i.read {
		return ReadItemStyle.Render(title)
	}
	return UnreadItemStyle.Render("● " + title)
}

func (i headlineItem) Description() string {
	return articleSubtitle(i.article, i.descLimit)
}

func (i headlineItem) FilterValue() string { return i.article.Title }

type searchResultItem struct {
	result    search.Result
	read      bool
	descLimit int
}

func (i searchResultItem) Title() string {
	if i.read {
		return ReadItemStyle.Render(i.result.Article.Title)
	}
	return UnreadItemStyle.Render(i.result.Article.Title)
}

func (i searchResultItem) Description() string {
	return articleSubtitle(i.result.Article, i.descLimit)
}

func (i searchResultItem) FilterValue() string {
	return i.result.Article.Title + " " + i.result.Article.Description
}

type bookmarkItem struct {
	bookmark  storage.Bookmark
	descLimit int
}

func (i bookmarkItem) Title() string {
	return FeedTitleStyle.Render("★ " + i.bookmark.Article.Title)
}

func (i bookmarkItem) Description() string {
	saved := TimeStyle.Render(" • saved " + i.bookmark.SavedAt.Local().Format("Jan 2"))
	return articleSubtitle(i.bookmark.Article, i.descLimit) + saved
}

func (i bookmarkItem) FilterValue() string { return i.bookmark.Article.Title }

// articleSubtitle renders "source • time • description" for list rows.
func articleSubtitle(a news.Article, maxDesc int) string {
	desc := truncateEnd(a.Description, maxDesc)
	prefix := ""
	if name := a.SourceName(); name != "" {
		prefix = name + " • "
	}
	timeStr := ""
	if t := a.Published(); !t.IsZero() {
		timeStr = TimeStyle.Render(" • " + t.Local().Format("Jan 2, 15:04"))
	}
	return lipgloss.NewStyle().
		Foreground(MutedColor).
		Render(prefix+desc) + timeStr
}

type resultMsg struct {
	result feed.Result
}

type articleRenderedMsg struct {
	detail  *feed.Detail
	content string
}

type bookmarkToggledMsg struct {
	article news.Article
	saved   bool
	err     error
}

type bookmarksLoadedMsg struct {
	bookmarks []storage.Bookmark
	err       error
}

type readKeysLoadedMsg struct {
	keys map[string]bool
}

type searchDebounceFireMsg struct {
	seq int
}

type searchResultsMsg struct {
	query   string
	results []search.Result
}

type errorMsg struct {
	err error
}
