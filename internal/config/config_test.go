package config_test

import (
	"testing"

	"github.com/bkyoung/issuegraph/internal/config"
	"github.com/stretchr/testify/assert"
)

func TestMergePrioritizesLaterConfigs(t *testing.T) {
	base := config.Config{
		Git: config.GitConfig{RepositoryDir: "default"},
	}
	file := config.Config{
		Git: config.GitConfig{RepositoryDir: "file"},
	}
	final := config.Config{
		Git: config.GitConfig{RepositoryDir: "env"},
	}

	merged := config.Merge(base, file, final)

	assert.Equal(t, "env", merged.Git.RepositoryDir)
}

func TestMergeKeepsBaseWhenOverlayEmpty(t *testing.T) {
	base := config.Config{
		GitHub: config.GitHubConfig{Owner: "octocat", Repo: "hello-world"},
		HTTP:   config.HTTPConfig{Timeout: "30s", MaxRetries: 3},
	}

	merged := config.Merge(base, config.Config{})

	assert.Equal(t, "octocat", merged.GitHub.Owner)
	assert.Equal(t, "30s", merged.HTTP.Timeout)
}

func TestMergeGitHubFieldwise(t *testing.T) {
	base := config.Config{
		GitHub: config.GitHubConfig{Owner: "octocat", Repo: "hello-world", Token: "base-token"},
	}
	overlay := config.Config{
		GitHub: config.GitHubConfig{Token: "overlay-token"},
	}

	merged := config.Merge(base, overlay)

	assert.Equal(t, "overlay-token", merged.GitHub.Token)
	assert.Equal(t, "octocat", merged.GitHub.Owner, "unset overlay fields keep base values")
	assert.Equal(t, "hello-world", merged.GitHub.Repo)
}

func TestMergeStoreOverlayWins(t *testing.T) {
	base := config.Config{
		Store: config.StoreConfig{Enabled: true, Path: "/base.db"},
	}
	overlay := config.Config{
		Store: config.StoreConfig{Path: "/overlay.db"},
	}

	merged := config.Merge(base, overlay)

	assert.Equal(t, "/overlay.db", merged.Store.Path)
}

func TestMergeObservabilityLogging(t *testing.T) {
	base := config.Config{
		Observability: config.ObservabilityConfig{
			Logging: config.LoggingConfig{Enabled: true, Level: "info", Format: "human"},
		},
	}
	overlay := config.Config{
		Observability: config.ObservabilityConfig{
			Logging: config.LoggingConfig{Enabled: true, Level: "debug", Format: "json"},
		},
	}

	merged := config.Merge(base, overlay)

	assert.Equal(t, "debug", merged.Observability.Logging.Level)
	assert.Equal(t, "json", merged.Observability.Logging.Format)
}
