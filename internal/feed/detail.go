package feed

import (
	"context"
	"fmt"
	"slices"

	"github.com/pders01/headlines/internal/debuglog"
	"github.com/pders01/headlines/internal/news"
	"github.com/pders01/headlines/internal/newsapi"
)

const DefaultTrendingSize = 5

type DetailOptions struct {
	Category news.Category
	PageSize int
}

// DefaultDetailOptions fetches five science headlines.
func DefaultDetailOptions() DetailOptions {
	return DetailOptions{Category: news.Science, PageSize: DefaultTrendingSize}
}

// Detail backs one article screen. The article itself arrives with the
// navigation and is never re-fetched; only the trending list is loaded, once.
type Detail struct {
	source  Source
	opts    DetailOptions
	article news.Article

	root context.Context
	stop context.CancelFunc

	started  bool
	loading  bool
	trending []news.Article
	lastErr  error
	req      *Request
	closed   bool
}

func NewDetail(source Source, article news.Article, opts DetailOptions) *Detail {
	if !opts.Category.Valid() {
		opts.Category = news.Science
	}
	if opts.PageSize <= 0 {
		opts.PageSize = DefaultTrendingSize
	}
	root, stop := context.WithCancel(context.Background())
	return &Detail{
		source:  source,
		opts:    opts,
		article: article,
		root:    root,
		stop:    stop,
	}
}

func (d *Detail) Article() news.Article { return d.article }
func (d *Detail) Loading() bool         { return d.loading }
func (d *Detail) Err() error            { return d.lastErr }

func (d *Detail) Trending() []news.Article {
	return slices.Clone(d.trending)
}

// Start returns the trending request. Only the first call returns one.
func (d *Detail) Start() *Request {
	if d.closed || d.started {
		return nil
	}
	d.started = true
	d.loading = true
	d.req = newRequest(d.root, d.source, d, 1, d.opts.Category, 0, d.opts.PageSize)
	return d.req
}

// Owns reports whether res came from this screen's trending fetch.
func (d *Detail) Owns(res Result) bool {
	return res.owner == d
}

// Apply commits the trending result. Results from another screen, or after
// Close, are ignored.
func (d *Detail) Apply(res Result) bool {
	if d.closed || !d.Owns(res) || d.req == nil {
		return false
	}
	d.req.Cancel()
	d.req = nil
	d.loading = false

	if res.Err != nil {
		debuglog.WithFields(map[string]any{
			"component": "trending",
			"category":  res.Category.Slug(),
			"kind":      newsapi.Kind(res.Err),
		}).Warnf("trending fetch failed: %v", res.Err)
		d.lastErr = res.Err
		return true
	}
	d.trending = slices.Clone(res.Articles)
	return true
}

// Select opens trending item i as a new detail screen. The receiver is not
// modified.
func (d *Detail) Select(i int) (*Detail, error) {
	if i < 0 || i >= len(d.trending) {
		return nil, fmt.Errorf("trending index %d out of range [0,%d)", i, len(d.trending))
	}
	return NewDetail(d.source, d.trending[i], d.opts), nil
}

// Close cancels the trending fetch when the screen is torn down.
func (d *Detail) Close() {
	if d.closed {
		return
	}
	d.closed = true
	d.req.Cancel()
	d.req = nil
	d.loading = false
	d.stop()
}
