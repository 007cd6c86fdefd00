package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"golang.org/x/term"

	"github.com/bkyoung/issuegraph/internal/adapter/cli"
	"github.com/bkyoung/issuegraph/internal/adapter/git"
	githubadapter "github.com/bkyoung/issuegraph/internal/adapter/github"
	"github.com/bkyoung/issuegraph/internal/adapter/observability"
	"github.com/bkyoung/issuegraph/internal/adapter/resthttp"
	"github.com/bkyoung/issuegraph/internal/adapter/store/sqlite"
	"github.com/bkyoung/issuegraph/internal/config"
	"github.com/bkyoung/issuegraph/internal/domain"
	"github.com/bkyoung/issuegraph/internal/usecase/fetch"
	"github.com/bkyoung/issuegraph/internal/version"
)

func main() {
	if err := run(); err != nil {
		log.Println(err)
		os.Exit(1)
	}
}

func run() error {
	// Create cancellable context with signal handling for graceful shutdown
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	cfg, err := config.Load(config.LoaderOptions{
		ConfigPaths: defaultConfigPaths(),
		FileName:    "ig",
		EnvPrefix:   "IG",
	})
	if err != nil {
		return fmt.Errorf("config load failed: %w", err)
	}

	if cfg.GitHub.Owner == "" || cfg.GitHub.Repo == "" {
		return fmt.Errorf("github.owner and github.repo must be configured (ig.yaml or IG_GITHUB_OWNER/IG_GITHUB_REPO)")
	}

	token := cfg.GitHub.Token
	if token == "" {
		token = os.Getenv("GITHUB_TOKEN")
	}
	if token == "" {
		return fmt.Errorf("no GitHub token configured (set github.token or GITHUB_TOKEN)")
	}

	logger := buildLogger(cfg.Observability.Logging)

	client := githubadapter.NewClient(token)
	if cfg.GitHub.BaseURL != "" {
		client.SetBaseURL(cfg.GitHub.BaseURL)
	}
	if timeout, err := time.ParseDuration(cfg.HTTP.Timeout); err == nil {
		client.SetTimeout(timeout)
	}
	client.SetRetryConfig(buildRetryConfig(cfg.HTTP))
	if logger != nil {
		client.SetLogger(logger)
	}

	// Initialize cache store if enabled
	var commitCache fetch.CommitCache
	var issueCache fetch.IssueCache
	if cfg.Store.Enabled {
		storeDir := filepath.Dir(cfg.Store.Path)
		if err := os.MkdirAll(storeDir, 0755); err != nil {
			log.Printf("warning: failed to create store directory: %v", err)
		} else {
			cacheStore, err := sqlite.NewStore(cfg.Store.Path)
			if err != nil {
				log.Printf("warning: failed to initialize store: %v", err)
			} else {
				commitCache = cacheStore
				issueCache = cacheStore
				defer cacheStore.Close()
			}
		}
	}

	// Commit resolution order: cache, local clone, API.
	resolvers := []domain.CommitResolver{}
	if cfg.Git.RepositoryDir != "" {
		resolvers = append(resolvers, git.NewEngine(cfg.Git.RepositoryDir))
	}
	resolvers = append(resolvers, githubadapter.NewCommitResolver(client, cfg.GitHub.Owner, cfg.GitHub.Repo))
	commits := fetch.NewCommitResolverChain(commitCache, resolvers...)

	var fetchLogger fetch.Logger
	var mapperLogger githubadapter.Logger
	if logger != nil {
		bridged := observability.NewFetchLogger(logger)
		fetchLogger = bridged
		mapperLogger = bridged
	}

	mapper := githubadapter.NewEventMapper(commits, mapperLogger)

	fetcher := fetch.NewFetcher(fetch.Deps{
		Client:  client,
		Mapper:  mapper,
		Commits: commits,
		Cache:   issueCache,
		Logger:  fetchLogger,
		Owner:   cfg.GitHub.Owner,
		Repo:    cfg.GitHub.Repo,
	})

	root := cli.NewRootCommand(cli.Dependencies{
		Issues:  fetcher,
		Version: version.Value(),
	})

	if err := root.ExecuteContext(ctx); err != nil {
		if errors.Is(err, cli.ErrVersionRequested) {
			return nil
		}
		return fmt.Errorf("command failed: %w", err)
	}
	return nil
}

func defaultConfigPaths() []string {
	paths := []string{"."}
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".config", "ig"))
	}
	return paths
}

// buildLogger creates the shared structured logger, or nil when logging is
// disabled.
func buildLogger(cfg config.LoggingConfig) resthttp.Logger {
	if !cfg.Enabled {
		return nil
	}

	logLevel := resthttp.LogLevelInfo
	switch cfg.Level {
	case "debug":
		logLevel = resthttp.LogLevelDebug
	case "warning":
		logLevel = resthttp.LogLevelWarning
	case "error":
		logLevel = resthttp.LogLevelError
	}

	return resthttp.NewDefaultLogger(logLevel, chooseLogFormat(cfg.Format), cfg.RedactTokens)
}

// chooseLogFormat maps the configured format to a log format. "auto" picks
// human-readable output on a terminal and JSON when output is piped.
func chooseLogFormat(format string) resthttp.LogFormat {
	switch format {
	case "json":
		return resthttp.LogFormatJSON
	case "human":
		return resthttp.LogFormatHuman
	default:
		if term.IsTerminal(int(os.Stderr.Fd())) {
			return resthttp.LogFormatHuman
		}
		return resthttp.LogFormatJSON
	}
}

func buildRetryConfig(cfg config.HTTPConfig) resthttp.RetryConfig {
	conf := resthttp.DefaultRetryConfig()

	if cfg.MaxRetries > 0 {
		conf.MaxRetries = cfg.MaxRetries
	}
	if backoff, err := time.ParseDuration(cfg.InitialBackoff); err == nil {
		conf.InitialBackoff = backoff
	}
	if backoff, err := time.ParseDuration(cfg.MaxBackoff); err == nil {
		conf.MaxBackoff = backoff
	}
	if cfg.BackoffMultiplier > 0 {
		conf.Multiplier = cfg.BackoffMultiplier
	}

	return conf
}

// Compile-time interface compliance checks
var _ fetch.APIClient = (*githubadapter.Client)(nil)
var _ fetch.EventMapper = (*githubadapter.EventMapper)(nil)
var _ fetch.CommitCache = (*sqlite.Store)(nil)
var _ fetch.IssueCache = (*sqlite.Store)(nil)
var _ domain.CommitResolver = (*git.Engine)(nil)
var _ domain.CommitResolver = (*githubadapter.Resolver)(nil)
var _ domain.IssueResolver = (*fetch.Fetcher)(nil)
var _ cli.IssueService = (*fetch.Fetcher)(nil)
