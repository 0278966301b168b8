package tui

import (
	"errors"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/pders01/headlines/internal/debuglog"
	"github.com/pders01/headlines/internal/feed"
	"github.com/pders01/headlines/internal/news"
)

var errNoStore = errors.New("bookmarks are unavailable without a database")

// fetchCmd runs req off the UI goroutine and delivers its result.
func fetchCmd(req *feed.Request) tea.Cmd {
	if req == nil {
		return nil
	}
	return func() tea.Msg {
		return resultMsg{result: req.Do()}
	}
}

func (a *App) renderArticle(d *feed.Detail) tea.Cmd {
	// The renderer is resolved here so it is only touched on the UI goroutine.
	r, err := a.getRenderer()
	article := d.Article()
	return func() tea.Msg {
		markdown := articleMarkdown(article)
		if err != nil {
			return articleRenderedMsg{detail: d, content: "Error initializing renderer: " + err.Error() + "\n\n" + markdown}
		}

		rendered, err := r.Render(markdown)
		if err != nil {
			return articleRenderedMsg{detail: d, content: fmt.Sprintf("Failed to render article: %s\n\n%s", err, markdown)}
		}
		return articleRenderedMsg{detail: d, content: rendered}
	}
}

// articleMarkdown lays out one article for glamour. The image line is only
// present when the article has an image.
func articleMarkdown(article news.Article) string {
	var content strings.Builder
	content.WriteString(fmt.Sprintf("# %s\n\n", article.Title))
	content.WriteString(fmt.Sprintf("*By %s*", article.AuthorOrUnknown()))
	if name := article.SourceName(); name != "" {
		content.WriteString(" · " + name)
	}
	content.WriteString("\n\n")

	if t := article.Published(); !t.IsZero() {
		content.WriteString(fmt.Sprintf("*Published: %s*\n\n", t.Local().Format(time.RFC1123)))
	} else if article.PublishedAt != "" {
		content.WriteString(fmt.Sprintf("*Published: %s*\n\n", article.PublishedAt))
	}

	if article.HasImage() {
		content.WriteString(fmt.Sprintf("![Image](%s)\n\n", strings.TrimSpace(article.URLToImage)))
	}

	if article.URL != "" {
		content.WriteString(fmt.Sprintf("[Read Online](%s)\n\n", article.URL))
	}

	content.WriteString("---\n\n")

	if article.Description != "" {
		content.WriteString("**" + strings.TrimSpace(article.Description) + "**\n\n")
	}
	if article.Content != "" {
		content.WriteString(article.Content)
		content.WriteString("\n")
	}
	if article.Description == "" && article.Content == "" {
		content.WriteString("_No content available._\n")
	}

	return content.String()
}

func (a *App) markRead(article news.Article) tea.Cmd {
	if a.store == nil {
		return nil
	}
	store := a.store
	key := article.Key()
	return func() tea.Msg {
		if err := store.MarkRead(key); err != nil {
			debuglog.Warnf("mark read %s: %v", key, err)
		}
		return nil
	}
}

func (a *App) loadReadKeys() tea.Cmd {
	if a.store == nil {
		return nil
	}
	store := a.store
	return func() tea.Msg {
		keys, err := store.ReadKeys()
		if err != nil {
			return errorMsg{err: wrapErr("loading read marks", err)}
		}
		return readKeysLoadedMsg{keys: keys}
	}
}

func (a *App) loadBookmarks() tea.Cmd {
	if a.store == nil {
		return nil
	}
	store := a.store
	return func() tea.Msg {
		bookmarks, err := store.Bookmarks()
		return bookmarksLoadedMsg{bookmarks: bookmarks, err: err}
	}
}

func (a *App) toggleBookmark(article news.Article) tea.Cmd {
	if a.store == nil {
		return func() tea.Msg { return errorMsg{err: errNoStore} }
	}
	store := a.store
	return func() tea.Msg {
		saved, err := store.ToggleBookmark(article)
		return bookmarkToggledMsg{article: article, saved: saved, err: err}
	}
}

// indexArticles adds articles to the session search index.
func (a *App) indexArticles(articles []news.Article) tea.Cmd {
	if a.searcher == nil || len(articles) == 0 {
		return nil
	}
	searcher := a.searcher
	return func() tea.Msg {
		if err := searcher.Index(articles...); err != nil {
			debuglog.Warnf("indexing %d articles: %v", len(articles), err)
		}
		return nil
	}
}

func (a *App) performSearch(query string) tea.Cmd {
	searcher := a.searcher
	return func() tea.Msg {
		if searcher == nil {
			return errorMsg{err: errors.New("search is unavailable")}
		}
		results, err := searcher.Search(query, 20)
		if err != nil {
			return errorMsg{err: wrapErr("search", err)}
		}
		return searchResultsMsg{query: query, results: results}
	}
}

func (a *App) openURL(url string) tea.Cmd {
	launcher := a.launcher
	return func() tea.Msg {
		if err := launcher.Open(url); err != nil {
			return errorMsg{err: fmt.Errorf("failed to open %s: %w", truncateMiddle(url, 60), err)}
		}
		return nil
	}
}
