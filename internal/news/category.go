// Package news holds the article and category types shared by the API
// client, the controllers and the UI.
package news

import (
	"fmt"
	"strings"
)

// Category is one of the fixed headline topics selectable from the tab bar.
type Category int

const (
	TopStories Category = iota
	Business
	Politics
	Science
	Technology
)

var categories = []struct {
	label string
	slug  string
}{
	TopStories: {"Top Stories", "general"},
	Business:   {"Business", "business"},
	Politics:   {"Politics", "politics"},
	Science:    {"Science", "science"},
	Technology: {"Technology", "technology"},
}

// Categories returns every category in tab order.
func Categories() []Category {
	out := make([]Category, len(categories))
	for i := range categories {
		out[i] = Category(i)
	}
	return out
}

func DefaultCategory() Category { return TopStories }

func (c Category) Valid() bool {
	return c >= 0 && int(c) < len(categories)
}

// Label is the tab text.
func (c Category) Label() string {
	if !c.Valid() {
		return "Unknown"
	}
	return categories[c].label
}

// Slug is the value sent as the category query parameter.
func (c Category) Slug() string {
	if !c.Valid() {
		return ""
	}
	return categories[c].slug
}

func (c Category) String() string { return c.Label() }

// Next and Prev cycle through the tab bar.
func (c Category) Next() Category {
	return Category((int(c) + 1) % len(categories))
}

func (c Category) Prev() Category {
	return Category((int(c) + len(categories) - 1) % len(categories))
}

// ParseCategory accepts a tab label or an API slug, case-insensitively.
func ParseCategory(s string) (Category, error) {
	needle := strings.ToLower(strings.TrimSpace(s))
	for i, c := range categories {
		if needle == strings.ToLower(c.label) || needle == c.slug {
			return Category(i), nil
		}
	}
	return TopStories, fmt.Errorf("unknown category %q", s)
}
