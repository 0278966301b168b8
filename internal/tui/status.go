package tui

import (
	"errors"
	"fmt"

	"github.com/pders01/headlines/internal/newsapi"
)

// StatusKind picks the style of the status line.
type StatusKind int

const (
	StatusInfo StatusKind = iota
	StatusSuccess
	StatusWarn
	StatusError
)

// Canonical short status messages used across the app.
const (
	MsgLoadingArticle      = "Loading article…"
	MsgLoadingMore         = "Loading more…"
	MsgLoadingTrending     = "Loading trending…"
	MsgNoResults           = "No results"
	MsgNoHeadlines         = "No headlines right now"
	MsgNoBookmarks         = "No bookmarks yet"
	MsgNothingTrending     = "Nothing trending"
	MsgTrendingUnavailable = "Trending unavailable"
	MsgBookmarked          = "Bookmarked"
	MsgBookmarkRemoved     = "Bookmark removed"
	MsgNoImage             = "This article has no image"
)

func MsgLoadingHeadlines(category string) string {
	return fmt.Sprintf("Loading %s…", category)
}

func MsgEndOfCategory(category string) string {
	return fmt.Sprintf("· end of %s ·", category)
}

func MsgResultsCount(n int) string {
	if n == 1 {
		return "1 result"
	}
	return fmt.Sprintf("%d results", n)
}

// describeFetchError turns a client error into a short status line.
func describeFetchError(err error) string {
	var apiErr *newsapi.APIError
	switch {
	case err == nil:
		return ""
	case errors.As(err, &apiErr):
		if apiErr.Message != "" {
			return "NewsAPI: " + apiErr.Message
		}
		return fmt.Sprintf("NewsAPI returned http %d", apiErr.HTTPStatus)
	case errors.Is(err, newsapi.ErrTransport):
		return "network error, check your connection"
	case errors.Is(err, newsapi.ErrMalformed):
		return "unexpected response from NewsAPI"
	default:
		return err.Error()
	}
}

// wrapErr prefixes err with what the app was doing when it failed.
func wrapErr(action string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", action, err)
}
