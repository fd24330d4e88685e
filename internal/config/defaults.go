package config

import (
	"time"

	"github.com/spf13/viper"
)

const (
	DefaultHost        = "notebooklm.google.com"
	DefaultWaitTimeout = 120 * time.Second
	DefaultRateLimit   = 4.0
	DefaultMaxRetries  = 3
	DefaultLogFormat   = "console"
	DefaultEnvFile     = "~/.nlm/env"
)

// SetDefaults configures default values for all configuration options
func SetDefaults(v *viper.Viper) {
	v.SetDefault("auth_token", "")
	v.SetDefault("cookies", "")
	v.SetDefault("host", DefaultHost)
	v.SetDefault("use_http", false)
	v.SetDefault("wait_timeout", DefaultWaitTimeout.String())
	v.SetDefault("rate_limit", DefaultRateLimit)
	v.SetDefault("max_retries", DefaultMaxRetries)
	v.SetDefault("debug", false)
	v.SetDefault("log_format", DefaultLogFormat)
	v.SetDefault("env_file", DefaultEnvFile)
}
