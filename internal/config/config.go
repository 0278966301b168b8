package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/viper"

	"github.com/pders01/headlines/internal/news"
	"github.com/pders01/headlines/internal/validation"
)

const EnvPrefix = "HEADLINES"

type Config struct {
	API      APIConfig      `mapstructure:"api"`
	Database DatabaseConfig `mapstructure:"database"`
	UI       UIConfig       `mapstructure:"ui"`
	Media    MediaConfig    `mapstructure:"media"`
	Keys     KeyConfig      `mapstructure:"keys"`
	Log      LogConfig      `mapstructure:"log"`
}

type APIConfig struct {
	BaseURL          string        `mapstructure:"base_url"`
	Key              string        `mapstructure:"key"`
	HTTPTimeout      time.Duration `mapstructure:"http_timeout"`
	UserAgent        string        `mapstructure:"user_agent"`
	PageSize         int           `mapstructure:"page_size"`
	TrendingCategory string        `mapstructure:"trending_category"`
	TrendingSize     int           `mapstructure:"trending_size"`
}

type DatabaseConfig struct {
	Path    string        `mapstructure:"path"`
	Timeout time.Duration `mapstructure:"timeout"`
}

type UIConfig struct {
	Colors          UIColors      `mapstructure:"colors"`
	Article         ArticleConfig `mapstructure:"article"`
	ScrollThreshold int           `mapstructure:"scroll_threshold"`
}

type UIColors struct {
	Primary    string `mapstructure:"primary" toml:"primary"`
	Secondary  string `mapstructure:"secondary" toml:"secondary"`
	Accent     string `mapstructure:"accent" toml:"accent"`
	Background string `mapstructure:"background" toml:"background"`
	Surface    string `mapstructure:"surface" toml:"surface"`
	Text       string `mapstructure:"text" toml:"text"`
	Muted      string `mapstructure:"muted" toml:"muted"`
	Error      string `mapstructure:"error" toml:"error"`
	Success    string `mapstructure:"success" toml:"success"`
}

type ArticleConfig struct {
	MaxDescriptionLength int `mapstructure:"max_description_length" toml:"max_description_length"`
	WordWrapMaxWidth     int `mapstructure:"word_wrap_max_width" toml:"word_wrap_max_width"`
	WordWrapMinWidth     int `mapstructure:"word_wrap_min_width" toml:"word_wrap_min_width"`
}

type MediaConfig struct {
	Darwin        MediaPlayers `mapstructure:"darwin" toml:"darwin"`
	Linux         MediaPlayers `mapstructure:"linux" toml:"linux"`
	Windows       MediaPlayers `mapstructure:"windows" toml:"windows"`
	DefaultOpener string       `mapstructure:"default_opener" toml:"default_opener"`
}

// MediaPlayers lists candidate programs in order of preference.
type MediaPlayers struct {
	Browser []string `mapstructure:"browser" toml:"browser"`
	Image   []string `mapstructure:"image" toml:"image"`
}

// ForOS returns the candidates for goos, falling back to the Darwin set.
func (m MediaConfig) ForOS(goos string) MediaPlayers {
	switch goos {
	case "linux":
		return m.Linux
	case "windows":
		return m.Windows
	default:
		return m.Darwin
	}
}

type KeyConfig struct {
	Modifier string `mapstructure:"modifier" toml:"modifier"`
}

type LogConfig struct {
	Level string `mapstructure:"level" toml:"level"`
	File  string `mapstructure:"file" toml:"file"`
}

func defaultConfig() *Config {
	homeDir, _ := os.UserHomeDir()

	return &Config{
		API: APIConfig{
			BaseURL:          "https://newsapi.org",
			HTTPTimeout:      30 * time.Second,
			UserAgent:        "headlines/1.0 (https://github.com/pders01/headlines)",
			PageSize:         10,
			TrendingCategory: news.Science.Slug(),
			TrendingSize:     5,
		},
		Database: DatabaseConfig{
			Path:    filepath.Join(homeDir, ".headlines", "headlines.db"),
			Timeout: 1 * time.Second,
		},
		UI: UIConfig{
			Colors: UIColors{
				Primary:    "#FF6B6B",
				Secondary:  "#4ECDC4",
				Accent:     "#95E1D3",
				Background: "#1A1A2E",
				Surface:    "#16213E",
				Text:       "#EAEAEA",
				Muted:      "#94A3B8",
				Error:      "#F87171",
				Success:    "#4ADE80",
			},
			Article: ArticleConfig{
				MaxDescriptionLength: 150,
				WordWrapMaxWidth:     100,
				WordWrapMinWidth:     40,
			},
			ScrollThreshold: 3,
		},
		Media: MediaConfig{
			Darwin: MediaPlayers{
				Browser: []string{"open"},
				Image:   []string{"preview", "open"},
			},
			Linux: MediaPlayers{
				Browser: []string{"xdg-open", "firefox", "chromium"},
				Image:   []string{"sxiv", "feh", "eog", "xdg-open"},
			},
			Windows: MediaPlayers{
				Browser: []string{"start"},
				Image:   []string{"start"},
			},
			DefaultOpener: getDefaultOpener(),
		},
		Keys: KeyConfig{
			Modifier: "ctrl",
		},
		Log: LogConfig{
			Level: "off",
			File:  filepath.Join(homeDir, ".headlines", "headlines.log"),
		},
	}
}

func getDefaultOpener() string {
	switch runtime.GOOS {
	case "darwin":
		return "open"
	case "linux":
		return "xdg-open"
	case "windows":
		return "start"
	default:
		return "open"
	}
}

// DefaultPath is where Load looks when no path is given.
func DefaultPath() string {
	homeDir, _ := os.UserHomeDir()
	return filepath.Join(homeDir, ".config", "headlines", "config.toml")
}

func Load(configPath string) (*Config, error) {
	v := viper.New()

	cfg := defaultConfig()
	setDefaults(v, cfg)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("toml")
		v.AddConfigPath(filepath.Dir(DefaultPath()))
		v.AddConfigPath(".")
	}

	// HEADLINES_API_KEY overrides api.key, and so on for every leaf.
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	expandPaths(&config)

	return &config, nil
}

// setDefaults registers every leaf key so env overrides and partial files
// merge with the defaults.
func setDefaults(v *viper.Viper, cfg *Config) {
	v.SetDefault("api.base_url", cfg.API.BaseURL)
	v.SetDefault("api.key", cfg.API.Key)
	v.SetDefault("api.http_timeout", cfg.API.HTTPTimeout)
	v.SetDefault("api.user_agent", cfg.API.UserAgent)
	v.SetDefault("api.page_size", cfg.API.PageSize)
	v.SetDefault("api.trending_category", cfg.API.TrendingCategory)
	v.SetDefault("api.trending_size", cfg.API.TrendingSize)

	v.SetDefault("database.path", cfg.Database.Path)
	v.SetDefault("database.timeout", cfg.Database.Timeout)

	c := cfg.UI.Colors
	v.SetDefault("ui.colors.primary", c.Primary)
	v.SetDefault("ui.colors.secondary", c.Secondary)
	v.SetDefault("ui.colors.accent", c.Accent)
	v.SetDefault("ui.colors.background", c.Background)
	v.SetDefault("ui.colors.surface", c.Surface)
	v.SetDefault("ui.colors.text", c.Text)
	v.SetDefault("ui.colors.muted", c.Muted)
	v.SetDefault("ui.colors.error", c.Error)
	v.SetDefault("ui.colors.success", c.Success)
	v.SetDefault("ui.article.max_description_length", cfg.UI.Article.MaxDescriptionLength)
	v.SetDefault("ui.article.word_wrap_max_width", cfg.UI.Article.WordWrapMaxWidth)
	v.SetDefault("ui.article.word_wrap_min_width", cfg.UI.Article.WordWrapMinWidth)
	v.SetDefault("ui.scroll_threshold", cfg.UI.ScrollThreshold)

	for goos, players := range map[string]MediaPlayers{
		"darwin":  cfg.Media.Darwin,
		"linux":   cfg.Media.Linux,
		"windows": cfg.Media.Windows,
	} {
		v.SetDefault("media."+goos+".browser", players.Browser)
		v.SetDefault("media."+goos+".image", players.Image)
	}
	v.SetDefault("media.default_opener", cfg.Media.DefaultOpener)
	v.SetDefault("keys.modifier", cfg.Keys.Modifier)

	v.SetDefault("log.level", cfg.Log.Level)
	v.SetDefault("log.file", cfg.Log.File)
}

// expandPath expands ~ to home directory and converts to absolute path
func expandPath(path string) string {
	if path == "" || path == ":memory:" {
		return path
	}

	if len(path) >= 2 && path[:2] == "~/" {
		home, _ := os.UserHomeDir()
		path = filepath.Join(home, path[2:])
	}

	if !filepath.IsAbs(path) {
		if abs, err := filepath.Abs(path); err == nil {
			path = abs
		}
	}

	return path
}

func expandPaths(cfg *Config) {
	cfg.Database.Path = expandPath(cfg.Database.Path)
	cfg.Log.File = expandPath(cfg.Log.File)
}

// Validate reports the first setting that would make the app misbehave.
func (c *Config) Validate() error {
	if c.API.PageSize <= 0 {
		return fmt.Errorf("api.page_size must be positive, got %d", c.API.PageSize)
	}
	if c.API.TrendingSize <= 0 {
		return fmt.Errorf("api.trending_size must be positive, got %d", c.API.TrendingSize)
	}
	if _, err := news.ParseCategory(c.API.TrendingCategory); err != nil {
		return fmt.Errorf("api.trending_category: %w", err)
	}
	if c.API.HTTPTimeout < 0 {
		return fmt.Errorf("api.http_timeout must not be negative")
	}
	if _, err := validation.NewPermissiveURLValidator().ValidateAndNormalize(c.API.BaseURL); err != nil {
		return fmt.Errorf("api.base_url: %w", err)
	}
	if c.UI.ScrollThreshold < 0 {
		return fmt.Errorf("ui.scroll_threshold must not be negative")
	}
	return nil
}

// TrendingCategory returns the parsed trending category, Science if unset or unknown.
func (c *Config) TrendingCategory() news.Category {
	cat, err := news.ParseCategory(c.API.TrendingCategory)
	if err != nil {
		return news.Science
	}
	return cat
}

// fileConfig mirrors Config for writing, with durations as strings for TOML readability.
type fileConfig struct {
	API struct {
		BaseURL          string `toml:"base_url"`
		Key              string `toml:"key"`
		HTTPTimeout      string `toml:"http_timeout"`
		UserAgent        string `toml:"user_agent"`
		PageSize         int    `toml:"page_size"`
		TrendingCategory string `toml:"trending_category"`
		TrendingSize     int    `toml:"trending_size"`
	} `toml:"api"`
	Database struct {
		Path    string `toml:"path"`
		Timeout string `toml:"timeout"`
	} `toml:"database"`
	UI struct {
		Colors          UIColors      `toml:"colors"`
		Article         ArticleConfig `toml:"article"`
		ScrollThreshold int           `toml:"scroll_threshold"`
	} `toml:"ui"`
	Media MediaConfig `toml:"media"`
	Keys  KeyConfig   `toml:"keys"`
	Log   LogConfig   `toml:"log"`
}

func Save(config *Config, path string) error {
	var fc fileConfig
	fc.API.BaseURL = config.API.BaseURL
	fc.API.Key = config.API.Key
	fc.API.HTTPTimeout = config.API.HTTPTimeout.String()
	fc.API.UserAgent = config.API.UserAgent
	fc.API.PageSize = config.API.PageSize
	fc.API.TrendingCategory = config.API.TrendingCategory
	fc.API.TrendingSize = config.API.TrendingSize
	fc.Database.Path = config.Database.Path
	fc.Database.Timeout = config.Database.Timeout.String()
	fc.UI.Colors = config.UI.Colors
	fc.UI.Article = config.UI.Article
	fc.UI.ScrollThreshold = config.UI.ScrollThreshold
	fc.Media = config.Media
	fc.Keys = config.Keys
	fc.Log = config.Log

	data, err := toml.Marshal(fc)
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	// The file may hold an API key.
	return os.WriteFile(path, data, 0o600)
}

func GenerateDefaultConfig(path string) error {
	return Save(defaultConfig(), path)
}
