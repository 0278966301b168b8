package feed

import (
	"context"
	"fmt"
	"sync"

	"github.com/pders01/headlines/internal/news"
	"github.com/pders01/headlines/internal/newsapi"
)

type call struct {
	query  newsapi.Query
	ctxErr error
}

// fakeSource answers from a per-category/page script. Unscripted pages
// return an empty "ok" page.
type fakeSource struct {
	mu    sync.Mutex
	pages map[string]*newsapi.Page
	errs  map[string]error
	total int
	calls []call
}

func newFakeSource() *fakeSource {
	return &fakeSource{pages: map[string]*newsapi.Page{}, errs: map[string]error{}}
}

func key(c news.Category, page int) string { return fmt.Sprintf("%s/%d", c.Slug(), page) }

func (f *fakeSource) setPage(c news.Category, page int, articles []news.Article) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pages[key(c, page)] = &newsapi.Page{Articles: articles, TotalResults: f.total}
}

func (f *fakeSource) setErr(c news.Category, page int, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.errs[key(c, page)] = err
}

func (f *fakeSource) TopHeadlines(ctx context.Context, q newsapi.Query) (*newsapi.Page, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call{query: q, ctxErr: ctx.Err()})
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	k := key(q.Category, q.Page)
	if err, ok := f.errs[k]; ok {
		return nil, err
	}
	if p, ok := f.pages[k]; ok {
		return &newsapi.Page{Articles: append([]news.Article(nil), p.Articles...), TotalResults: p.TotalResults}, nil
	}
	return &newsapi.Page{Articles: []news.Article{}}, nil
}

func (f *fakeSource) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func makeArticles(prefix string, n int) []news.Article {
	out := make([]news.Article, n)
	for i := range out {
		out[i] = news.Article{
			Title:   fmt.Sprintf("%s %d", prefix, i+1),
			Author:  fmt.Sprintf("Author %d", i+1),
			Content: fmt.Sprintf("%s content %d", prefix, i+1),
			URL:     fmt.Sprintf("https://news.example.org/%s/%d", prefix, i+1),
		}
	}
	return out
}
