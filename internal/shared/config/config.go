package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/samber/lo"
	"github.com/samber/oops"

	sharederrors "github.com/reshetovitsme/truth-market-feed/internal/shared/errors"
)

// ProxySourceEndpoint is one plain-text proxy list. Bare host:port lines in
// the body are assumed to carry the endpoint's scheme.
type ProxySourceEndpoint struct {
	URL    string `koanf:"url"`
	Scheme string `koanf:"scheme"`
}

// Default public proxy lists, one scheme per endpoint (TheSpeedX/PROXY-List raws).
var defaultProxySources = []ProxySourceEndpoint{
	{URL: "https://raw.githubusercontent.com/TheSpeedX/PROXY-List/master/socks5.txt", Scheme: "socks5"},
	{URL: "https://raw.githubusercontent.com/TheSpeedX/PROXY-List/master/socks4.txt", Scheme: "socks4"},
	{URL: "https://raw.githubusercontent.com/TheSpeedX/PROXY-List/master/http.txt", Scheme: "http"},
}

type Config struct {
	TruthCookie    string `koanf:"truth_cookie"`
	TruthAccountID string `koanf:"truth_account_id"`
	TruthUsername  string `koanf:"truth_username"`

	StoragePath string `koanf:"storage_path"`
	HTTPPort    string `koanf:"http_port"`

	PollIntervalMinutes int  `koanf:"poll_interval_minutes"`
	FetchLimit          int  `koanf:"fetch_limit"`
	MaxAlerts           int  `koanf:"max_alerts"`
	EnableRemoteFetch   bool `koanf:"enable_remote_fetch"`

	ProxySources          []ProxySourceEndpoint `koanf:"proxy_sources"`
	AllowPlainHTTPProxies bool                  `koanf:"allow_plain_http_proxies"`
	ProxyTTLSeconds       int                   `koanf:"proxy_ttl_seconds"`
	ProbeConcurrency      int                   `koanf:"probe_concurrency"`
	ProbeTimeoutSeconds   int                   `koanf:"probe_timeout_seconds"`
	ProbeURL              string                `koanf:"probe_url"`
	ExpectedCountry       string                `koanf:"expected_country"`
	ProxyRetries          int                   `koanf:"proxy_retries"`
	DirectRetries         int                   `koanf:"direct_retries"`
	BackoffSeconds        int                   `koanf:"backoff_seconds"`
}

func Load() (*Config, error) {
	k := koanf.New(".")

	// Try to load config file from various formats
	configFiles := []string{
		"config.yaml",
		"config.yml",
		"config.json",
		"config.toml",
	}

	configFile, found := lo.Find(configFiles, func(file string) bool {
		_, err := os.Stat(file)
		return err == nil
	})

	if found {
		var parser koanf.Parser
		ext := filepath.Ext(configFile)

		switch ext {
		case ".yaml", ".yml":
			parser = yaml.Parser()
		case ".json":
			parser = json.Parser()
		case ".toml":
			parser = toml.Parser()
		default:
			return nil, oops.Errorf("unsupported config file extension: %s", ext)
		}

		if err := k.Load(file.Provider(configFile), parser); err != nil {
			return nil, oops.With("config_file", configFile).Wrap(err)
		}
	}

	// Environment variables override config file values
	if err := k.Load(env.Provider("", ".", func(s string) string {
		return strings.ToLower(s)
	}), nil); err != nil {
		return nil, oops.With("context", "loading environment variables").Wrap(err)
	}

	// Set defaults
	if !k.Exists("truth_account_id") {
		k.Set("truth_account_id", "107780257626128497")
	}
	if !k.Exists("truth_username") {
		k.Set("truth_username", "realDonaldTrump")
	}
	if !k.Exists("storage_path") {
		k.Set("storage_path", "./data")
	}
	if !k.Exists("http_port") {
		k.Set("http_port", "8080")
	}
	if !k.Exists("poll_interval_minutes") {
		k.Set("poll_interval_minutes", 5)
	}
	if !k.Exists("fetch_limit") {
		k.Set("fetch_limit", 20)
	}
	if !k.Exists("enable_remote_fetch") {
		k.Set("enable_remote_fetch", true)
	}
	if !k.Exists("proxy_ttl_seconds") {
		k.Set("proxy_ttl_seconds", 300)
	}
	if !k.Exists("probe_concurrency") {
		k.Set("probe_concurrency", 50)
	}
	if !k.Exists("probe_timeout_seconds") {
		k.Set("probe_timeout_seconds", 6)
	}
	if !k.Exists("proxy_retries") {
		k.Set("proxy_retries", 1)
	}
	if !k.Exists("direct_retries") {
		k.Set("direct_retries", 2)
	}
	if !k.Exists("backoff_seconds") {
		k.Set("backoff_seconds", 2)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, oops.With("context", "unmarshaling config").Wrap(err)
	}

	if len(cfg.ProxySources) == 0 {
		cfg.ProxySources = defaultProxySources
	}

	if cfg.EnableRemoteFetch {
		if cfg.TruthCookie == "" {
			return nil, sharederrors.ErrMissingCookie
		}
		if !isDigits(cfg.TruthAccountID) {
			return nil, sharederrors.ErrInvalidAccountID
		}
	}

	return &cfg, nil
}

// PollInterval returns the configured polling interval clamped to the
// supported 5-120 minute range.
func (c *Config) PollInterval() time.Duration {
	return ClampInterval(time.Duration(c.PollIntervalMinutes) * time.Minute)
}

func (c *Config) ProxyTTL() time.Duration {
	return time.Duration(c.ProxyTTLSeconds) * time.Second
}

func (c *Config) ProbeTimeout() time.Duration {
	return time.Duration(c.ProbeTimeoutSeconds) * time.Second
}

func (c *Config) Backoff() time.Duration {
	return time.Duration(c.BackoffSeconds) * time.Second
}

// ClampInterval bounds a polling interval to the 5-120 minute range the
// dashboard slider exposes.
func ClampInterval(d time.Duration) time.Duration {
	const (
		minInterval = 5 * time.Minute
		maxInterval = 120 * time.Minute
	)
	if d < minInterval {
		return minInterval
	}
	if d > maxInterval {
		return maxInterval
	}
	return d
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
