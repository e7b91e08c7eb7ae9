package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/spf13/pflag"

	"github.com/codeGROOVE-dev/senscritique/pkg/profile"
	"github.com/codeGROOVE-dev/senscritique/pkg/senscritique"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := loadConfig("", nil)
	if err != nil {
		t.Fatalf("loadConfig() error = %v", err)
	}

	want := &Config{
		Timeout:      time.Minute,
		Scanner:      "pattern",
		Placeholders: true,
		Cache:        CacheConfig{TTL: 24 * time.Hour},
		Defaults:     senscritique.StandardDefaults(),
	}
	if diff := cmp.Diff(want, cfg); diff != "" {
		t.Errorf("loadConfig() mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadConfigFileEnvAndFlags(t *testing.T) {
	path := filepath.Join(t.TempDir(), "senscritique.yaml")
	data := []byte(`
placeholders: false
cache:
  ttl: 2h
defaults:
  location: Belgique
  stats:
    films: 1
    total: 3
`)
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	t.Setenv("SENSCRITIQUE_DEFAULTS_GENDER", "Femme")

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.Bool("no-cache", false, "")
	flags.String("scanner", "pattern", "")
	if err := flags.Parse([]string{"--no-cache", "--scanner=selector"}); err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	cfg, err := loadConfig(path, flags)
	if err != nil {
		t.Fatalf("loadConfig() error = %v", err)
	}

	d := senscritique.StandardDefaults()
	want := &Config{
		Timeout:      time.Minute,
		Scanner:      "selector",
		Placeholders: false,
		Cache:        CacheConfig{Disabled: true, TTL: 2 * time.Hour},
		Defaults: senscritique.Defaults{
			Location: "Belgique",
			Gender:   "Femme",
			Avatar:   d.Avatar,
			Stats:    profile.Stats{Films: 1, Series: d.Stats.Series, Jeux: d.Stats.Jeux, Total: 3},
		},
	}
	if diff := cmp.Diff(want, cfg); diff != "" {
		t.Errorf("loadConfig() mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	if _, err := loadConfig(filepath.Join(t.TempDir(), "missing.yaml"), nil); err == nil {
		t.Error("loadConfig() error = nil, want error for missing file")
	}
}

func TestUsernameFrom(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"alice", "alice"},
		{"https://www.senscritique.com/alice", "alice"},
		{"https://www.senscritique.com/alice/critiques", "alice"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := usernameFrom(tt.in); got != tt.want {
				t.Errorf("usernameFrom(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestRootCommandHasSubcommands(t *testing.T) {
	root := newRootCmd()
	for _, name := range []string{"profile", "reviews", "favorites"} {
		cmd, _, err := root.Find([]string{name})
		if err != nil || cmd.Name() != name {
			t.Errorf("Find(%q) = %v, %v", name, cmd, err)
		}
	}
}

func TestNewCache(t *testing.T) {
	tests := []struct {
		name    string
		cfg     CacheConfig
		wantTTL time.Duration
	}{
		{"disabled", CacheConfig{Disabled: true, TTL: time.Hour, Path: t.TempDir()}, 0},
		{"disk", CacheConfig{TTL: 2 * time.Hour, Path: t.TempDir()}, 2 * time.Hour},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cache, err := newCache(tt.cfg)
			if err != nil {
				t.Fatalf("newCache() error = %v", err)
			}
			defer cache.Close() //nolint:errcheck // test cleanup
			if cache.TTL() != tt.wantTTL {
				t.Errorf("TTL() = %v, want %v", cache.TTL(), tt.wantTTL)
			}
		})
	}
}
