// Package newsapi is a small client for the NewsAPI top-headlines endpoint.
package newsapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/pders01/headlines/internal/news"
)

const (
	DefaultBaseURL   = "https://newsapi.org"
	DefaultUserAgent = "headlines/1.0 (github.com/pders01/headlines)"
	defaultTimeout   = 30 * time.Second
	topHeadlinesPath = "/v2/top-headlines"
	statusOK         = "ok"
	maxBodyBytes     = 8 << 20
)

// Options configure a Client. The API key is passed explicitly instead of
// being read from process-wide state.
type Options struct {
	BaseURL     string
	APIKey      string
	HTTPTimeout time.Duration
	UserAgent   string
	// HTTPClient overrides the client built from HTTPTimeout.
	HTTPClient *http.Client
}

type Client struct {
	baseURL   string
	apiKey    string
	userAgent string
	client    *http.Client
}

func NewClient(opts Options) *Client {
	baseURL := strings.TrimSpace(opts.BaseURL)
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	userAgent := opts.UserAgent
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}
	httpClient := opts.HTTPClient
	if httpClient == nil {
		timeout := opts.HTTPTimeout
		if timeout <= 0 {
			timeout = defaultTimeout
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	return &Client{
		baseURL:   strings.TrimRight(baseURL, "/"),
		apiKey:    opts.APIKey,
		userAgent: userAgent,
		client:    httpClient,
	}
}

// Query selects one page of a category. Page 0 omits the page parameter.
type Query struct {
	Category news.Category
	Page     int
	PageSize int
}

func (q Query) validate() error {
	if !q.Category.Valid() {
		return fmt.Errorf("newsapi: invalid category %d", int(q.Category))
	}
	if q.Page < 0 {
		return fmt.Errorf("newsapi: page must not be negative, got %d", q.Page)
	}
	if q.PageSize <= 0 {
		return fmt.Errorf("newsapi: page size must be positive, got %d", q.PageSize)
	}
	return nil
}

// Page is one decoded top-headlines response.
type Page struct {
	Articles     []news.Article
	TotalResults int
}

type response struct {
	Status       string         `json:"status"`
	TotalResults int            `json:"totalResults"`
	Articles     []news.Article `json:"articles"`
	Code         string         `json:"code"`
	Message      string         `json:"message"`
}

// TopHeadlinesURL builds the request URL for q.
func (c *Client) TopHeadlinesURL(q Query) string {
	params := url.Values{}
	params.Set("category", q.Category.Slug())
	params.Set("apiKey", c.apiKey)
	if q.Page > 0 {
		params.Set("page", strconv.Itoa(q.Page))
	}
	params.Set("pageSize", strconv.Itoa(q.PageSize))
	return c.baseURL + topHeadlinesPath + "?" + params.Encode()
}

// TopHeadlines fetches one page of headlines.
func (c *Client) TopHeadlines(ctx context.Context, q Query) (*Page, error) {
	if err := q.validate(); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.TopHeadlinesURL(q), nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, &transportError{err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, &transportError{err: fmt.Errorf("reading response: %w", err)}
	}

	var payload response
	decodeErr := json.Unmarshal(body, &payload)

	if resp.StatusCode >= 400 {
		apiErr := &APIError{HTTPStatus: resp.StatusCode}
		if decodeErr == nil {
			apiErr.Code = payload.Code
			apiErr.Message = payload.Message
		}
		return nil, apiErr
	}
	if decodeErr != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, decodeErr)
	}
	if payload.Status == "" {
		return nil, fmt.Errorf("%w: missing status field", ErrMalformed)
	}
	if payload.Status != statusOK {
		return nil, &APIError{HTTPStatus: resp.StatusCode, Code: payload.Code, Message: payload.Message}
	}
	if payload.Articles == nil {
		payload.Articles = []news.Article{}
	}

	return &Page{Articles: payload.Articles, TotalResults: payload.TotalResults}, nil
}
