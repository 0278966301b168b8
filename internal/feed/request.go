// Package feed holds the fetch state machines behind the two screens: the
// paginated headline feed and the article detail with its trending list.
//
// Controllers are not safe for concurrent use. State changes happen on the
// caller's goroutine (the UI event loop); only Request.Do may run elsewhere.
package feed

import (
	"context"

	"github.com/pders01/headlines/internal/news"
	"github.com/pders01/headlines/internal/newsapi"
)

// Source fetches one page of headlines. *newsapi.Client satisfies it.
type Source interface {
	TopHeadlines(ctx context.Context, q newsapi.Query) (*newsapi.Page, error)
}

// Request is one outstanding fetch. It is created by a controller, executed
// with Do and handed back to the same controller's Apply.
type Request struct {
	Category news.Category
	Page     int
	PageSize int

	ctx    context.Context
	cancel context.CancelFunc
	source Source
	owner  any
	gen    uint64
}

// Do performs the fetch. It blocks and may be called from any goroutine.
func (r *Request) Do() Result {
	res := Result{
		Category: r.Category,
		Page:     r.Page,
		owner:    r.owner,
		gen:      r.gen,
	}
	page, err := r.source.TopHeadlines(r.ctx, newsapi.Query{
		Category: r.Category,
		Page:     r.Page,
		PageSize: r.PageSize,
	})
	if err != nil {
		res.Err = err
		return res
	}
	res.Articles = page.Articles
	res.TotalResults = page.TotalResults
	return res
}

// Cancel aborts the fetch if it is still running.
func (r *Request) Cancel() {
	if r != nil && r.cancel != nil {
		r.cancel()
	}
}

// Result is the outcome of Request.Do.
type Result struct {
	Category     news.Category
	Page         int
	Articles     []news.Article
	TotalResults int
	Err          error

	owner any
	gen   uint64
}

func newRequest(parent context.Context, source Source, owner any, gen uint64, category news.Category, page, pageSize int) *Request {
	ctx, cancel := context.WithCancel(parent)
	return &Request{
		Category: category,
		Page:     page,
		PageSize: pageSize,
		ctx:      ctx,
		cancel:   cancel,
		source:   source,
		owner:    owner,
		gen:      gen,
	}
}
