package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/pders01/headlines/internal/config"
	"github.com/pders01/headlines/internal/debuglog"
	"github.com/pders01/headlines/internal/news"
	"github.com/pders01/headlines/internal/newsapi"
	"github.com/pders01/headlines/internal/search"
	"github.com/pders01/headlines/internal/storage"
	"github.com/pders01/headlines/internal/tui"
	"github.com/pders01/headlines/internal/validation"
)

// Version is the version of the application, set at build time
var Version = "dev"

var errNoAPIKey = errors.New("no NewsAPI key configured")

type rootOptions struct {
	configPath string
	dbPath     string
	category   string
	logLevel   string
	quiet      bool
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:           "headlines",
		Short:         "Browse NewsAPI top headlines in the terminal",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runTUI(cmd, opts)
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&opts.configPath, "config", "", "Path to configuration file")
	flags.StringVar(&opts.logLevel, "log-level", "", "Log level (debug, info, warn, error, off)")
	root.Flags().StringVar(&opts.dbPath, "db", "", "Path to database file (overrides config)")
	root.Flags().StringVar(&opts.category, "category", "", "Category to open with")
	root.Flags().BoolVar(&opts.quiet, "quiet", false, "Skip startup banner")

	root.AddCommand(newVersionCmd(), newConfigCmd(opts), newTopCmd(opts))
	return root
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, _ []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s %s\n", tui.AppName, Version)
			fmt.Fprintln(out, "NewsAPI headline reader")
			fmt.Fprintln(out, "github.com/pders01/headlines")
		},
	}
}

func newConfigCmd(opts *rootOptions) *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Manage the configuration file",
	}
	configCmd.AddCommand(&cobra.Command{
		Use:   "generate",
		Short: "Write the default configuration file",
		RunE: func(cmd *cobra.Command, _ []string) error {
			path := opts.configPath
			if path == "" {
				path = config.DefaultPath()
			}
			if err := config.GenerateDefaultConfig(path); err != nil {
				return fmt.Errorf("generating config: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Generated default configuration at: %s\n", path)
			return nil
		},
	})
	return configCmd
}

func newTopCmd(opts *rootOptions) *cobra.Command {
	var page, size int

	cmd := &cobra.Command{
		Use:   "top [category]",
		Short: "Print one page of top headlines",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(opts)
			if err != nil {
				return err
			}

			category := news.DefaultCategory()
			if len(args) == 1 {
				if category, err = news.ParseCategory(args[0]); err != nil {
					return err
				}
			}
			if size <= 0 {
				size = cfg.API.PageSize
			}

			result, err := newClient(cfg).TopHeadlines(cmd.Context(), newsapi.Query{
				Category: category,
				Page:     page,
				PageSize: size,
			})
			if err != nil {
				return fmt.Errorf("fetching %s: %w", category.Label(), err)
			}

			printHeadlines(cmd.OutOrStdout(), category, page, result)
			return nil
		},
	}
	cmd.Flags().IntVar(&page, "page", 1, "Page to fetch")
	cmd.Flags().IntVar(&size, "size", 0, "Articles per page (defaults to api.page_size)")
	return cmd
}

func printHeadlines(w io.Writer, category news.Category, page int, result *newsapi.Page) {
	fmt.Fprintf(w, "%s · page %d · %d total\n\n", category.Label(), page, result.TotalResults)
	if len(result.Articles) == 0 {
		fmt.Fprintln(w, "No headlines.")
		return
	}
	for i, a := range result.Articles {
		fmt.Fprintf(w, "%2d. %s\n", i+1, a.Title)
		meta := a.AuthorOrUnknown()
		if src := a.SourceName(); src != "" {
			meta += " · " + src
		}
		fmt.Fprintf(w, "    %s\n", meta)
		if a.URL != "" {
			fmt.Fprintf(w, "    %s\n", a.URL)
		}
	}
}

func loadConfig(opts *rootOptions) (*config.Config, error) {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	if opts.dbPath != "" {
		cfg.Database.Path = opts.dbPath
	}
	if opts.logLevel != "" {
		cfg.Log.Level = opts.logLevel
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.API.Key == "" {
		return nil, fmt.Errorf("%w: set api.key in %s or %s_API_KEY", errNoAPIKey, config.DefaultPath(), config.EnvPrefix)
	}
	return cfg, nil
}

func newClient(cfg *config.Config) *newsapi.Client {
	return newsapi.NewClient(newsapi.Options{
		BaseURL:     cfg.API.BaseURL,
		APIKey:      cfg.API.Key,
		HTTPTimeout: cfg.API.HTTPTimeout,
		UserAgent:   cfg.API.UserAgent,
	})
}

func runTUI(cmd *cobra.Command, opts *rootOptions) error {
	cfg, err := loadConfig(opts)
	if err != nil {
		return err
	}

	category := news.DefaultCategory()
	if opts.category != "" {
		if category, err = news.ParseCategory(opts.category); err != nil {
			return err
		}
	}

	level := debuglog.ParseLogLevel(cfg.Log.Level)
	if level != debuglog.LevelOff {
		if cfg.Log.File, err = validation.DataFile(cfg.Log.File, true); err != nil {
			return fmt.Errorf("log.file: %w", err)
		}
	}
	if err := debuglog.Setup(level, cfg.Log.File); err != nil {
		return fmt.Errorf("setting up logging: %w", err)
	}
	defer debuglog.Close()

	tui.ApplyColors(cfg.UI.Colors)
	if !opts.quiet {
		fmt.Fprintln(cmd.OutOrStdout(), tui.Banner(Version))
	}

	if cfg.Database.Path, err = validation.DataFile(cfg.Database.Path, true); err != nil {
		return fmt.Errorf("database.path: %w", err)
	}
	store, err := storage.NewStoreWithTimeout(cfg.Database.Path, cfg.Database.Timeout)
	if err != nil {
		return err
	}
	defer store.Close()

	index, err := search.NewIndex()
	if err != nil {
		return fmt.Errorf("creating search index: %w", err)
	}
	defer index.Close()

	app := tui.NewApp(cfg, tui.Options{
		Source:   newClient(cfg),
		Store:    store,
		Searcher: index,
		Category: category,
	})
	defer app.Close()

	debuglog.WithFields(map[string]any{
		"category": category.Slug(),
		"database": cfg.Database.Path,
	}).Infof("starting %s %s", tui.AppName, Version)

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	p := tea.NewProgram(app, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("running ui: %w", err)
	}
	return nil
}
