package main

import (
	"bytes"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pders01/headlines/internal/config"
	"github.com/pders01/headlines/internal/newsapi"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())

	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func writeConfig(t *testing.T, baseURL, key string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	content := fmt.Sprintf("[api]\nbase_url = %q\nkey = %q\n", baseURL, key)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestVersionCommand(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)

	assert.Contains(t, out, "headlines dev")
	assert.Contains(t, out, "NewsAPI headline reader")
	assert.Contains(t, out, "github.com/pders01/headlines")
}

func TestGenerateConfigCommand(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")

	out, err := execute(t, "config", "generate", "--config", path)
	require.NoError(t, err)
	assert.Contains(t, out, path)

	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, 10, cfg.API.PageSize)
	assert.Equal(t, "science", cfg.API.TrendingCategory)
}

func TestTopCommand(t *testing.T) {
	var got url.Values
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.URL.Query()
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"status":"ok","totalResults":42,"articles":[
			{"title":"Markets rally","author":"Ada","url":"https://news.example.org/1","source":{"name":"Wire"}},
			{"title":"Rates hold","author":"","url":"https://news.example.org/2","source":{"id":"desk"}}
		]}`)
	}))
	defer srv.Close()

	path := writeConfig(t, srv.URL, "test-key")
	out, err := execute(t, "--config", path, "top", "business", "--size", "2", "--page", "3")
	require.NoError(t, err)

	assert.Equal(t, "business", got.Get("category"))
	assert.Equal(t, "3", got.Get("page"))
	assert.Equal(t, "2", got.Get("pageSize"))
	assert.Equal(t, "test-key", got.Get("apiKey"))

	assert.Contains(t, out, "Business · page 3 · 42 total")
	assert.Contains(t, out, " 1. Markets rally")
	assert.Contains(t, out, "Ada · Wire")
	assert.Contains(t, out, " 2. Rates hold")
	assert.Contains(t, out, "Unknown Author · desk")
}

func TestTopCommand_DefaultsToConfiguredPageSize(t *testing.T) {
	var got url.Values
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.URL.Query()
		fmt.Fprint(w, `{"status":"ok","totalResults":0,"articles":[]}`)
	}))
	defer srv.Close()

	out, err := execute(t, "--config", writeConfig(t, srv.URL, "k"), "top")
	require.NoError(t, err)

	assert.Equal(t, "general", got.Get("category"))
	assert.Equal(t, "1", got.Get("page"))
	assert.Equal(t, "10", got.Get("pageSize"))
	assert.Contains(t, out, "No headlines.")
}

func TestTopCommand_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		fmt.Fprint(w, `{"status":"error","code":"apiKeyInvalid","message":"Your API key is invalid."}`)
	}))
	defer srv.Close()

	_, err := execute(t, "--config", writeConfig(t, srv.URL, "bad"), "top", "science")
	require.Error(t, err)

	var apiErr *newsapi.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnauthorized, apiErr.HTTPStatus)
	assert.Equal(t, "apiKeyInvalid", apiErr.Code)
	assert.Contains(t, err.Error(), "fetching Science")
}

func TestTopCommand_RejectsBadInput(t *testing.T) {
	path := writeConfig(t, "https://newsapi.org", "k")

	_, err := execute(t, "--config", path, "top", "sports")
	assert.ErrorContains(t, err, "unknown category")

	_, err = execute(t, "--config", path, "top", "a", "b")
	assert.Error(t, err)
}

func TestMissingAPIKey(t *testing.T) {
	path := writeConfig(t, "https://newsapi.org", "")

	_, err := execute(t, "--config", path, "top")
	assert.ErrorIs(t, err, errNoAPIKey)

	_, err = execute(t, "--config", path, "--quiet")
	assert.ErrorIs(t, err, errNoAPIKey)
}

func TestLoadConfig_FlagOverrides(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	path := writeConfig(t, "https://newsapi.org", "k")

	cfg, err := loadConfig(&rootOptions{configPath: path, dbPath: "/tmp/x.db", logLevel: "debug"})
	require.NoError(t, err)
	assert.Equal(t, "/tmp/x.db", cfg.Database.Path)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestLoadConfig_InvalidSettings(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("[api]\nkey = \"k\"\npage_size = 0\n"), 0o600))

	_, err := loadConfig(&rootOptions{configPath: path})
	assert.ErrorContains(t, err, "page_size")
}
