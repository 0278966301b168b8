package storage

import (
	"time"

	"github.com/pders01/headlines/internal/news"
)

// Bookmark is an article the user chose to keep.
type Bookmark struct {
	Key     string       `json:"key"`
	Article news.Article `json:"article"`
	SavedAt time.Time    `json:"saved_at"`
}

type readMark struct {
	Key    string    `json:"key"`
	ReadAt time.Time `json:"read_at"`
}
