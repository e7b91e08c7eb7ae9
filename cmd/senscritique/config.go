package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/codeGROOVE-dev/senscritique/pkg/senscritique"
)

// Config is the merged result of defaults, config file, SENSCRITIQUE_* env vars, and flags.
type Config struct {
	Debug        bool                  `mapstructure:"debug"`
	Timeout      time.Duration         `mapstructure:"timeout"`
	Scanner      string                `mapstructure:"scanner"`
	Placeholders bool                  `mapstructure:"placeholders"`
	Cache        CacheConfig           `mapstructure:"cache"`
	Defaults     senscritique.Defaults `mapstructure:"defaults"`
}

// CacheConfig controls the on-disk HTTP cache.
type CacheConfig struct {
	Disabled bool          `mapstructure:"disabled"`
	TTL      time.Duration `mapstructure:"ttl"`
	Path     string        `mapstructure:"path"`
}

// flagKeys maps command-line flags to config keys.
var flagKeys = map[string]string{
	"debug":     "debug",
	"timeout":   "timeout",
	"scanner":   "scanner",
	"no-cache":  "cache.disabled",
	"cache-ttl": "cache.ttl",
}

func loadConfig(path string, flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()

	d := senscritique.StandardDefaults()
	v.SetDefault("debug", false)
	v.SetDefault("timeout", time.Minute)
	v.SetDefault("scanner", "pattern")
	v.SetDefault("placeholders", true)
	v.SetDefault("cache.disabled", false)
	v.SetDefault("cache.ttl", 24*time.Hour)
	v.SetDefault("cache.path", "")
	v.SetDefault("defaults.location", d.Location)
	v.SetDefault("defaults.gender", d.Gender)
	v.SetDefault("defaults.avatar", d.Avatar)
	v.SetDefault("defaults.stats.films", d.Stats.Films)
	v.SetDefault("defaults.stats.series", d.Stats.Series)
	v.SetDefault("defaults.stats.jeux", d.Stats.Jeux)
	v.SetDefault("defaults.stats.livres", d.Stats.Livres)
	v.SetDefault("defaults.stats.total", d.Stats.Total)

	v.SetEnvPrefix("SENSCRITIQUE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	if flags != nil {
		for name, key := range flagKeys {
			if f := flags.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("bind flag %s: %w", name, err)
				}
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	return &cfg, nil
}
