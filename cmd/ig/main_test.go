package main

import (
	"testing"
	"time"

	"github.com/bkyoung/issuegraph/internal/adapter/resthttp"
	"github.com/bkyoung/issuegraph/internal/config"
	"github.com/stretchr/testify/assert"
)

func TestBuildRetryConfig(t *testing.T) {
	conf := buildRetryConfig(config.HTTPConfig{
		MaxRetries:        5,
		InitialBackoff:    "1s",
		MaxBackoff:        "10s",
		BackoffMultiplier: 3.0,
	})

	assert.Equal(t, 5, conf.MaxRetries)
	assert.Equal(t, time.Second, conf.InitialBackoff)
	assert.Equal(t, 10*time.Second, conf.MaxBackoff)
	assert.Equal(t, 3.0, conf.Multiplier)
}

func TestBuildRetryConfig_FallsBackToDefaults(t *testing.T) {
	conf := buildRetryConfig(config.HTTPConfig{
		InitialBackoff: "not a duration",
	})

	assert.Equal(t, resthttp.DefaultRetryConfig(), conf)
}

func TestChooseLogFormat(t *testing.T) {
	assert.Equal(t, resthttp.LogFormatJSON, chooseLogFormat("json"))
	assert.Equal(t, resthttp.LogFormatHuman, chooseLogFormat("human"))
	// "auto" depends on whether stderr is a terminal; under go test it is
	// usually piped, but either value is valid here.
	auto := chooseLogFormat("auto")
	assert.Contains(t, []resthttp.LogFormat{resthttp.LogFormatHuman, resthttp.LogFormatJSON}, auto)
}

func TestBuildLogger(t *testing.T) {
	assert.Nil(t, buildLogger(config.LoggingConfig{Enabled: false}))
	assert.NotNil(t, buildLogger(config.LoggingConfig{Enabled: true, Level: "debug", Format: "json"}))
}

func TestDefaultConfigPaths(t *testing.T) {
	paths := defaultConfigPaths()

	assert.NotEmpty(t, paths)
	assert.Equal(t, ".", paths[0])
}
