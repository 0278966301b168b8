package news

import (
	"crypto/sha256"
	"fmt"
	"strings"
	"time"
)

const unknownAuthor = "Unknown Author"

type Source struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Article mirrors a NewsAPI article. Values are treated as immutable once
// decoded and are passed by value between screens.
type Article struct {
	Source      Source `json:"source"`
	Author      string `json:"author"`
	Title       string `json:"title"`
	Description string `json:"description"`
	URL         string `json:"url"`
	URLToImage  string `json:"urlToImage"`
	PublishedAt string `json:"publishedAt"`
	Content     string `json:"content"`
}

// Key returns a stable identifier for bookmarks, read marks and the search index.
func (a Article) Key() string {
	basis := strings.TrimSpace(a.URL)
	if basis == "" {
		basis = a.Title + "\x00" + a.PublishedAt
	}
	return fmt.Sprintf("%x", sha256.Sum256([]byte(basis)))
}

func (a Article) AuthorOrUnknown() string {
	if author := strings.TrimSpace(a.Author); author != "" {
		return author
	}
	return unknownAuthor
}

// Published parses PublishedAt. The zero time is returned for missing or
// malformed timestamps.
func (a Article) Published() time.Time {
	s := strings.TrimSpace(a.PublishedAt)
	if s == "" {
		return time.Time{}
	}
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02T15:04:05"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}

func (a Article) HasImage() bool {
	return strings.TrimSpace(a.URLToImage) != ""
}

func (a Article) SourceName() string {
	if name := strings.TrimSpace(a.Source.Name); name != "" {
		return name
	}
	return a.Source.ID
}
