package feed

import (
	"context"
	"slices"

	"github.com/pders01/headlines/internal/debuglog"
	"github.com/pders01/headlines/internal/news"
	"github.com/pders01/headlines/internal/newsapi"
)

const DefaultPageSize = 10

type Options struct {
	PageSize int
	// Category is the initially selected tab.
	Category news.Category
}

// Snapshot is the state the feed screen renders.
type Snapshot struct {
	Category  news.Category
	Page      int
	Articles  []news.Article
	Loading   bool
	Exhausted bool
	Err       error
}

// Controller drives the headline feed: one selected category, a page
// counter, the accumulated articles and a loading flag.
//
// At most one request is outstanding. Selecting a category cancels it and
// bumps the generation so a late response for the old category is dropped.
type Controller struct {
	source   Source
	pageSize int

	root context.Context
	stop context.CancelFunc

	category  news.Category
	page      int
	fetched   bool
	articles  []news.Article
	loading   bool
	exhausted bool
	lastErr   error

	gen      uint64
	inflight *Request
	closed   bool
}

func NewController(source Source, opts Options) *Controller {
	pageSize := opts.PageSize
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	category := opts.Category
	if !category.Valid() {
		category = news.DefaultCategory()
	}
	root, stop := context.WithCancel(context.Background())
	return &Controller{
		source:   source,
		pageSize: pageSize,
		root:     root,
		stop:     stop,
		category: category,
		page:     1,
	}
}

func (c *Controller) Category() news.Category { return c.category }
func (c *Controller) Page() int               { return c.page }
func (c *Controller) PageSize() int           { return c.pageSize }
func (c *Controller) Loading() bool           { return c.loading }
func (c *Controller) Exhausted() bool         { return c.exhausted }
func (c *Controller) Err() error              { return c.lastErr }
func (c *Controller) Len() int                { return len(c.articles) }

// Articles returns a copy of the accumulated articles.
func (c *Controller) Articles() []news.Article {
	return slices.Clone(c.articles)
}

func (c *Controller) Snapshot() Snapshot {
	return Snapshot{
		Category:  c.category,
		Page:      c.page,
		Articles:  c.Articles(),
		Loading:   c.loading,
		Exhausted: c.exhausted,
		Err:       c.lastErr,
	}
}

// SelectCategory switches tabs: page resets to 1, articles are cleared and a
// page-1 fetch is started. Any outstanding request is cancelled.
func (c *Controller) SelectCategory(category news.Category) *Request {
	if c.closed || !category.Valid() {
		return nil
	}
	c.reset(category)
	return c.FetchPage(category, 1)
}

// Refresh reloads page 1 of the selected category.
func (c *Controller) Refresh() *Request {
	return c.SelectCategory(c.category)
}

// LoadNextPage starts a fetch for the page after the last one fetched. It
// returns nil while a request is outstanding or once the category has no
// more results.
func (c *Controller) LoadNextPage() *Request {
	if c.closed || c.loading || c.exhausted {
		return nil
	}
	next := c.page + 1
	if !c.fetched {
		next = 1
	}
	return c.FetchPage(c.category, next)
}

// FetchPage starts a fetch of one page. A category other than the selected
// one is selected first, so articles never mix categories.
func (c *Controller) FetchPage(category news.Category, page int) *Request {
	if c.closed || !category.Valid() {
		return nil
	}
	if category != c.category {
		c.reset(category)
	}
	if page < 1 {
		page = 1
	}

	c.inflight.Cancel()
	c.gen++
	req := newRequest(c.root, c.source, c, c.gen, category, page, c.pageSize)
	c.inflight = req
	c.loading = true

	debuglog.WithFields(map[string]any{
		"component": "feed",
		"category":  category.Slug(),
		"page":      page,
	}).Debugf("fetch started")
	return req
}

// Apply commits a finished request. It reports false for results that no
// longer belong to the current state; those leave the controller untouched.
func (c *Controller) Apply(res Result) bool {
	if !c.Owns(res) {
		return false
	}
	if c.closed || c.inflight == nil || res.gen != c.inflight.gen {
		debuglog.WithFields(map[string]any{
			"component": "feed",
			"category":  res.Category.Slug(),
			"page":      res.Page,
		}).Debugf("discarding stale result")
		return false
	}

	c.inflight.Cancel()
	c.inflight = nil
	c.loading = false

	fields := map[string]any{
		"component": "feed",
		"category":  res.Category.Slug(),
		"page":      res.Page,
	}
	if res.Err != nil {
		fields["kind"] = newsapi.Kind(res.Err)
		debuglog.WithFields(fields).Warnf("fetch failed: %v", res.Err)
		c.lastErr = res.Err
		return true
	}

	c.lastErr = nil
	if res.Page == 1 {
		c.articles = slices.Clone(res.Articles)
	} else {
		c.articles = append(c.articles, res.Articles...)
	}
	c.page = res.Page
	c.fetched = true

	c.exhausted = len(res.Articles) < c.pageSize ||
		(res.TotalResults > 0 && res.Page*c.pageSize >= res.TotalResults)

	fields["count"] = len(res.Articles)
	fields["total"] = len(c.articles)
	debuglog.WithFields(fields).Debugf("fetch applied")
	return true
}

// Owns reports whether res came from a request this controller started.
func (c *Controller) Owns(res Result) bool {
	return res.owner == c
}

// Close cancels any outstanding request. The controller ignores all calls
// afterwards.
func (c *Controller) Close() {
	if c.closed {
		return
	}
	c.closed = true
	c.inflight.Cancel()
	c.inflight = nil
	c.loading = false
	c.stop()
}

func (c *Controller) reset(category news.Category) {
	c.category = category
	c.page = 1
	c.fetched = false
	c.articles = nil
	c.exhausted = false
	c.lastErr = nil
}
