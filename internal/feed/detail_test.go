package feed

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pders01/headlines/internal/news"
	"github.com/pders01/headlines/internal/newsapi"
)

func TestDetail_StartFetchesTrendingOnce(t *testing.T) {
	src := newFakeSource()
	src.setPage(news.Science, 0, makeArticles("trend", 5))
	article := makeArticles("main", 1)[0]

	d := NewDetail(src, article, DefaultDetailOptions())
	defer d.Close()

	assert.Equal(t, article, d.Article())
	assert.False(t, d.Loading())

	req := d.Start()
	require.NotNil(t, req)
	assert.Equal(t, news.Science, req.Category)
	assert.Equal(t, 0, req.Page, "trending is not paginated")
	assert.Equal(t, 5, req.PageSize)
	assert.True(t, d.Loading())
	assert.Nil(t, d.Start(), "trending is fetched exactly once")

	assert.True(t, d.Apply(req.Do()))
	assert.False(t, d.Loading())
	assert.Equal(t, makeArticles("trend", 5), d.Trending())
	assert.Equal(t, 1, src.callCount())
}

func TestDetail_TrendingFailureLeavesListEmpty(t *testing.T) {
	src := newFakeSource()
	src.setErr(news.Science, 0, &newsapi.APIError{HTTPStatus: 200, Code: "unexpectedError"})

	d := NewDetail(src, news.Article{Title: "main"}, DefaultDetailOptions())
	defer d.Close()

	assert.True(t, d.Apply(d.Start().Do()))
	assert.Empty(t, d.Trending())
	assert.False(t, d.Loading())
	assert.Error(t, d.Err())
}

func TestDetail_SelectOpensNewDetail(t *testing.T) {
	src := newFakeSource()
	trending := makeArticles("trend", 5)
	src.setPage(news.Science, 0, trending)

	d := NewDetail(src, news.Article{Title: "main"}, DefaultDetailOptions())
	defer d.Close()
	d.Apply(d.Start().Do())

	next, err := d.Select(2)
	require.NoError(t, err)
	defer next.Close()

	assert.NotSame(t, d, next)
	assert.Equal(t, "trend 3", next.Article().Title)
	assert.Equal(t, "Author 3", next.Article().Author)
	assert.Equal(t, "trend content 3", next.Article().Content)
	assert.Equal(t, "main", d.Article().Title, "the current screen is not mutated")
	assert.Empty(t, next.Trending(), "the new screen loads its own trending list")
	assert.NotNil(t, next.Start())

	_, err = d.Select(5)
	assert.Error(t, err)
	_, err = d.Select(-1)
	assert.Error(t, err)
}

func TestDetail_CloseCancelsFetch(t *testing.T) {
	src := newFakeSource()
	d := NewDetail(src, news.Article{Title: "main"}, DefaultDetailOptions())

	req := d.Start()
	d.Close()

	assert.ErrorIs(t, req.ctx.Err(), context.Canceled)
	assert.False(t, d.Apply(req.Do()))
	assert.False(t, d.Loading())
	assert.Nil(t, d.Start())
}

func TestDetail_IgnoresOtherScreensResults(t *testing.T) {
	src := newFakeSource()
	src.setPage(news.Science, 0, makeArticles("trend", 5))
	a := NewDetail(src, news.Article{Title: "a"}, DefaultDetailOptions())
	b := NewDetail(src, news.Article{Title: "b"}, DefaultDetailOptions())
	defer a.Close()
	defer b.Close()

	reqA := a.Start()
	b.Start()
	assert.False(t, b.Apply(reqA.Do()))
	assert.True(t, b.Loading())
}

func TestDetail_OptionsDefaults(t *testing.T) {
	d := NewDetail(newFakeSource(), news.Article{}, DetailOptions{Category: news.Category(-1)})
	defer d.Close()

	req := d.Start()
	assert.Equal(t, news.Science, req.Category)
	assert.Equal(t, DefaultTrendingSize, req.PageSize)
}
