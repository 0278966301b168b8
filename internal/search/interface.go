package search

import "github.com/pders01/headlines/internal/news"

// Searcher defines the minimal search API used by the TUI.
type Searcher interface {
	Index(articles ...news.Article) error
	Search(query string, limit int) ([]Result, error)
}

// DebugStatser provides lightweight stats for visibility/debugging.
type DebugStatser interface {
	DocCount() (int, error)
}

// Result is one search hit.
type Result struct {
	Article news.Article
	Score   float64
}
