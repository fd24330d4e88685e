// Package config loads runtime settings from flags, NLM_* environment
// variables and the stored credentials file, in that order of precedence.
package config

import (
	"os"
	"path/filepath"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"
)

// EnvPrefix is the prefix of every environment variable the tool reads.
const EnvPrefix = "NLM"

// Config holds the settings for one run.
type Config struct {
	AuthToken   string        `mapstructure:"auth_token"`
	Cookies     string        `mapstructure:"cookies"`
	Host        string        `mapstructure:"host"`
	UseHTTP     bool          `mapstructure:"use_http"`
	WaitTimeout time.Duration `mapstructure:"wait_timeout"`
	RateLimit   float64       `mapstructure:"rate_limit"`
	MaxRetries  int           `mapstructure:"max_retries"`
	Debug       bool          `mapstructure:"debug"`
	LogFormat   string        `mapstructure:"log_format"`
	EnvFile     string        `mapstructure:"env_file"`
}

// New returns a viper instance bound to the NLM_ environment with defaults set.
func New() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	SetDefaults(v)
	return v
}

// Load merges the credentials file named by env_file under v and decodes
// the result. A missing credentials file is not an error.
func Load(v *viper.Viper) (*Config, error) {
	path, err := expandHome(v.GetString("env_file"))
	if err != nil {
		return nil, err
	}
	if err := mergeEnvFile(v, path); err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg, viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		secondsToDurationHook(),
		mapstructure.StringToTimeDurationHookFunc(),
	))); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal config")
	}
	cfg.EnvFile = path
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid config")
	}
	return &cfg, nil
}

// mergeEnvFile reads a dotenv file of NLM_* assignments. Its values sit
// below flags and the process environment.
func mergeEnvFile(v *viper.Viper, path string) error {
	if path == "" {
		return nil
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return errors.Wrapf(err, "stat %s", path)
	}

	fv := viper.New()
	fv.SetConfigFile(path)
	fv.SetConfigType("env")
	if err := fv.ReadInConfig(); err != nil {
		return errors.Wrapf(err, "read env file %s", path)
	}

	prefix := strings.ToLower(EnvPrefix) + "_"
	known := v.AllSettings()
	for _, key := range fv.AllKeys() {
		name, ok := strings.CutPrefix(key, prefix)
		if !ok {
			continue
		}
		if _, isKnown := known[name]; !isKnown || name == "env_file" {
			continue
		}
		v.SetDefault(name, fv.Get(key))
	}
	return nil
}

func expandHome(path string) (string, error) {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", errors.Wrap(err, "resolve home directory")
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~")), nil
}

// secondsToDurationHook accepts bare numbers as seconds, so NLM_WAIT_TIMEOUT=90
// means 90s.
func secondsToDurationHook() mapstructure.DecodeHookFuncType {
	durationType := reflect.TypeOf(time.Duration(0))
	return func(f reflect.Type, t reflect.Type, data interface{}) (interface{}, error) {
		if t != durationType {
			return data, nil
		}
		switch d := data.(type) {
		case time.Duration:
			return d, nil
		case int:
			return time.Duration(d) * time.Second, nil
		case int64:
			return time.Duration(d) * time.Second, nil
		case float64:
			return time.Duration(d * float64(time.Second)), nil
		case string:
			if n, err := strconv.ParseFloat(strings.TrimSpace(d), 64); err == nil {
				return time.Duration(n * float64(time.Second)), nil
			}
		}
		return data, nil
	}
}
