package cli

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/matzehuels/repostats/pkg/cache"
	"github.com/matzehuels/repostats/pkg/integrations"
	"github.com/matzehuels/repostats/pkg/integrations/github"
	"github.com/matzehuels/repostats/pkg/pipeline"
)

// envPrefix namespaces environment overrides, e.g. REPOSTATS_CACHE_TTL.
const envPrefix = "REPOSTATS"

// Config is the process configuration.
//
// Sources, lowest precedence first: defaults, the TOML file named by
// --config, environment variables, command-line flags.
type Config struct {
	Addr                string        `mapstructure:"addr"`
	GitHubToken         string        `mapstructure:"github_token"`
	APIURL              string        `mapstructure:"api_url"`
	HTTPTimeout         time.Duration `mapstructure:"http_timeout"`
	PlaceholderActivity bool          `mapstructure:"placeholder_activity"`
	Cache               CacheConfig   `mapstructure:"cache"`
}

// CacheConfig selects the durable tier and the caching policy.
type CacheConfig struct {
	Backend  string        `mapstructure:"backend"`
	URL      string        `mapstructure:"url"`
	Dir      string        `mapstructure:"dir"`
	Database string        `mapstructure:"database"`
	TTL      time.Duration `mapstructure:"ttl"`
	Prefix   string        `mapstructure:"prefix"`
	Dedup    bool          `mapstructure:"dedup"`
}

var defaults = map[string]any{
	"addr":                 ":8000",
	"github_token":         "",
	"api_url":              github.DefaultBaseURL,
	"http_timeout":         integrations.DefaultTimeout,
	"placeholder_activity": true,
	"cache.backend":        cache.BackendRedis,
	"cache.url":            "redis://localhost:6379/0",
	"cache.dir":            "",
	"cache.database":       cache.DefaultMongoDatabase,
	"cache.ttl":            pipeline.DefaultTTL,
	"cache.prefix":         "",
	"cache.dedup":          false,
}

// envAliases are the unprefixed variable names the service has always read.
var envAliases = map[string]string{
	"github_token": "GITHUB_TOKEN",
	"cache.url":    "REDIS_URL",
}

// flagKeys maps config keys to the flag names that may override them.
var flagKeys = map[string]string{
	"addr":          "addr",
	"api_url":       "api-url",
	"cache.backend": "cache-backend",
	"cache.url":     "cache-url",
	"cache.ttl":     "cache-ttl",
	"cache.dedup":   "dedup",
}

var backends = []string{cache.BackendRedis, cache.BackendMongo, cache.BackendFile, cache.BackendMemory}

// loadConfig layers defaults, the optional TOML file at path, the
// environment and the flags in fs. fs may be nil.
func loadConfig(path string, fs *pflag.FlagSet) (Config, error) {
	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	if path != "" {
		var raw map[string]any
		if _, err := toml.DecodeFile(path, &raw); err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := v.MergeConfigMap(raw); err != nil {
			return Config{}, fmt.Errorf("merge config %s: %w", path, err)
		}
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for key, alias := range envAliases {
		envKey := envPrefix + "_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
		if err := v.BindEnv(key, envKey, alias); err != nil {
			return Config{}, err
		}
	}

	if fs != nil {
		for key, name := range flagKeys {
			if f := fs.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return Config{}, err
				}
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	return cfg, cfg.validate()
}

func (c Config) validate() error {
	if !slices.Contains(backends, c.Cache.Backend) {
		return fmt.Errorf("cache.backend must be one of %s, got %q", strings.Join(backends, ", "), c.Cache.Backend)
	}
	if c.Cache.TTL <= 0 {
		return fmt.Errorf("cache.ttl must be positive, got %s", c.Cache.TTL)
	}
	if c.HTTPTimeout <= 0 {
		return fmt.Errorf("http_timeout must be positive, got %s", c.HTTPTimeout)
	}
	if c.APIURL == "" {
		return fmt.Errorf("api_url is required")
	}
	return nil
}

// addCacheFlags registers the flags shared by commands that open the cache.
func addCacheFlags(fs *pflag.FlagSet) {
	fs.String("cache-backend", "", "durable cache tier: redis, mongo, file or memory")
	fs.String("cache-url", "", "redis:// or mongodb:// URL of the durable tier")
	fs.String("api-url", "", "GitHub API base URL")
}
