package config

import "github.com/cockroachdb/errors"

// Validate checks that the configuration is valid
func (c *Config) Validate() error {
	if c.Host == "" {
		return errors.New("host cannot be empty")
	}
	if c.WaitTimeout <= 0 {
		return errors.Newf("wait_timeout must be > 0, got %s", c.WaitTimeout)
	}
	// 0 = unlimited
	if c.RateLimit < 0 {
		return errors.Newf("rate_limit must be >= 0, got %g", c.RateLimit)
	}
	// 0 = no retries
	if c.MaxRetries < 0 {
		return errors.Newf("max_retries must be >= 0, got %d", c.MaxRetries)
	}
	switch c.LogFormat {
	case "console", "json":
	default:
		return errors.WithHint(
			errors.Newf("unknown log_format %q", c.LogFormat),
			"use console or json")
	}
	return nil
}
