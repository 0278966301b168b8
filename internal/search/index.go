// Package search indexes articles seen during a session in an in-memory
// bleve index.
package search

import (
	"strings"
	"sync"
	"unicode"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/standard"
	"github.com/blevesearch/bleve/v2/mapping"
	bleveQuery "github.com/blevesearch/bleve/v2/search/query"

	"github.com/pders01/headlines/internal/news"
)

const minQueryLen = 2

type fieldBoost struct {
	field  string
	match  float64
	prefix float64
}

var boosts = []fieldBoost{
	{"title", 4.0, 3.5},
	{"description", 2.0, 1.8},
	{"content", 1.0, 0.8},
	{"source", 1.5, 1.2},
	{"author", 1.5, 1.2},
}

type Index struct {
	idx bleve.Index

	mu       sync.RWMutex
	articles map[string]news.Article
}

var (
	_ Searcher     = (*Index)(nil)
	_ DebugStatser = (*Index)(nil)
)

// NewIndex creates an empty memory-only index.
func NewIndex() (*Index, error) {
	idx, err := bleve.NewMemOnly(buildIndexMapping())
	if err != nil {
		return nil, err
	}
	return &Index{idx: idx, articles: make(map[string]news.Article)}, nil
}

func buildIndexMapping() mapping.IndexMapping {
	im := bleve.NewIndexMapping()
	im.DefaultAnalyzer = standard.Name

	dm := bleve.NewDocumentMapping()
	for _, b := range boosts {
		fm := bleve.NewTextFieldMapping()
		fm.Analyzer = standard.Name
		fm.Store = false
		fm.IncludeTermVectors = b.field == "title"
		dm.AddFieldMappingsAt(b.field, fm)
	}

	im.DefaultMapping = dm
	return im
}

// Index adds articles. Re-indexing an article with the same key replaces it.
func (x *Index) Index(articles ...news.Article) error {
	if len(articles) == 0 {
		return nil
	}
	batch := x.idx.NewBatch()
	for _, a := range articles {
		if err := batch.Index(a.Key(), document(a)); err != nil {
			return err
		}
	}
	if err := x.idx.Batch(batch); err != nil {
		return err
	}

	x.mu.Lock()
	for _, a := range articles {
		x.articles[a.Key()] = a
	}
	x.mu.Unlock()
	return nil
}

func document(a news.Article) map[string]any {
	return map[string]any{
		"title":       a.Title,
		"description": a.Description,
		"content":     a.Content,
		"source":      a.SourceName(),
		"author":      a.Author,
	}
}

// Search returns up to limit hits, best first. Queries shorter than two
// characters match nothing.
func (x *Index) Search(query string, limit int) ([]Result, error) {
	if len(strings.TrimSpace(query)) < minQueryLen || limit <= 0 {
		return []Result{}, nil
	}

	var qs []bleveQuery.Query
	for _, tok := range tokenize(query) {
		for _, b := range boosts {
			qm := bleve.NewMatchQuery(tok)
			qm.SetField(b.field)
			qm.SetBoost(b.match)
			qs = append(qs, qm)

			qp := bleve.NewPrefixQuery(tok)
			qp.SetField(b.field)
			qp.SetBoost(b.prefix)
			qs = append(qs, qp)
		}
	}
	if len(qs) == 0 {
		return []Result{}, nil
	}

	req := bleve.NewSearchRequestOptions(bleve.NewDisjunctionQuery(qs...), limit, 0, false)
	res, err := x.idx.Search(req)
	if err != nil {
		return nil, err
	}

	x.mu.RLock()
	defer x.mu.RUnlock()
	out := make([]Result, 0, len(res.Hits))
	for _, h := range res.Hits {
		a, ok := x.articles[h.ID]
		if !ok {
			continue
		}
		out = append(out, Result{Article: a, Score: h.Score})
	}
	return out, nil
}

// DocCount reports total documents in the index.
func (x *Index) DocCount() (int, error) {
	n, err := x.idx.DocCount()
	return int(n), err
}

func (x *Index) Close() error {
	return x.idx.Close()
}

// tokenize lowercases text and splits it on anything that is not a letter
// or digit, dropping single-character terms.
func tokenize(text string) []string {
	var terms []string
	current := strings.Builder{}

	flush := func() {
		if current.Len() > 1 {
			terms = append(terms, current.String())
		}
		current.Reset()
	}
	for _, r := range text {
		if unicode.IsLetter(r) || unicode.IsNumber(r) {
			current.WriteRune(unicode.ToLower(r))
		} else {
			flush()
		}
	}
	flush()

	return terms
}
