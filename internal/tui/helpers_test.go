package tui

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/require"

	"github.com/pders01/headlines/internal/config"
	"github.com/pders01/headlines/internal/news"
	"github.com/pders01/headlines/internal/newsapi"
	"github.com/pders01/headlines/internal/storage"
)

// stubSource answers from a per-category/page script. Unscripted pages
// return an empty "ok" page.
type stubSource struct {
	mu    sync.Mutex
	pages map[string][]news.Article
	errs  map[string]error
	total int
	calls []newsapi.Query
}

func newStubSource() *stubSource {
	return &stubSource{pages: map[string][]news.Article{}, errs: map[string]error{}}
}

func pageKey(c news.Category, page int) string { return fmt.Sprintf("%s/%d", c.Slug(), page) }

func (s *stubSource) setPage(c news.Category, page int, articles []news.Article) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pages[pageKey(c, page)] = articles
}

func (s *stubSource) setErr(c news.Category, page int, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.errs[pageKey(c, page)] = err
}

func (s *stubSource) clearErr(c news.Category, page int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.errs, pageKey(c, page))
}

func (s *stubSource) callCount(c news.Category, page int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, q := range s.calls {
		if q.Category == c && q.Page == page {
			n++
		}
	}
	return n
}

func (s *stubSource) TopHeadlines(ctx context.Context, q newsapi.Query) (*newsapi.Page, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, q)
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", newsapi.ErrTransport, err)
	}
	k := pageKey(q.Category, q.Page)
	if err, ok := s.errs[k]; ok {
		return nil, err
	}
	articles := append([]news.Article{}, s.pages[k]...)
	return &newsapi.Page{Articles: articles, TotalResults: s.total}, nil
}

func makeArticles(prefix string, n int) []news.Article {
	out := make([]news.Article, n)
	for i := range out {
		out[i] = news.Article{
			Title:       fmt.Sprintf("%s %d", prefix, i+1),
			Author:      fmt.Sprintf("Author %d", i+1),
			Description: fmt.Sprintf("%s summary %d", prefix, i+1),
			Content:     fmt.Sprintf("%s content %d", prefix, i+1),
			URL:         fmt.Sprintf("https://news.example.org/%s/%d", prefix, i+1),
			PublishedAt: "2025-03-01T12:00:00Z",
			Source:      news.Source{Name: "Wire"},
		}
	}
	return out
}

type fakeOpener struct {
	mu     sync.Mutex
	opened []string
}

func (o *fakeOpener) Open(url string) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.opened = append(o.opened, url)
	return nil
}

func (o *fakeOpener) urls() []string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return append([]string(nil), o.opened...)
}

type testEnv struct {
	app    *App
	source *stubSource
	opener *fakeOpener
	store  *storage.Store
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	store, err := storage.NewStore(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	env := &testEnv{
		source: newStubSource(),
		opener: &fakeOpener{},
		store:  store,
	}
	env.app = NewApp(config.TestConfig(), Options{
		Source: env.source,
		Store:  store,
		Opener: env.opener,
	})
	env.app.searchDebounce = time.Millisecond
	env.app.searchInput.Cursor.SetMode(cursor.CursorStatic)
	env.app.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	t.Cleanup(env.app.shutdown)
	return env
}

// run executes cmd and every command it leads to, feeding the messages back
// through Update. Spinner ticks are dropped so the loop terminates.
func run(a *App, cmd tea.Cmd) {
	queue := []tea.Cmd{cmd}
	for len(queue) > 0 {
		c := queue[0]
		queue = queue[1:]
		if c == nil {
			continue
		}
		switch msg := c().(type) {
		case nil, spinner.TickMsg, tea.QuitMsg:
			continue
		case tea.BatchMsg:
			queue = append(queue, msg...)
		default:
			_, next := a.Update(msg)
			queue = append(queue, next)
		}
	}
}

func press(a *App, msg tea.KeyMsg) {
	_, cmd := a.Update(msg)
	run(a, cmd)
}

func pressRunes(a *App, s string) {
	press(a, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)})
}

func pressN(a *App, msg tea.KeyMsg, n int) {
	for range n {
		press(a, msg)
	}
}
