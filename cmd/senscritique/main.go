// Command senscritique fetches SensCritique profiles, favorites, and reviews as JSON.
//
// Usage:
//
//	senscritique profile johndoe
//	senscritique reviews https://www.senscritique.com/johndoe/critiques
//	senscritique favorites johndoe --no-cache
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/codeGROOVE-dev/senscritique/pkg/httpcache"
	"github.com/codeGROOVE-dev/senscritique/pkg/senscritique"
)

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:           "senscritique",
		Short:         "senscritique extracts public SensCritique profile data.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := root.PersistentFlags()
	flags.StringVar(&configPath, "config", "", "config file (yaml, json, or toml)")
	flags.BoolP("debug", "v", false, "enable debug logging")
	flags.Bool("no-cache", false, "disable the on-disk HTTP cache (enabled by default)")
	flags.Duration("cache-ttl", 24*time.Hour, "cache time-to-live")
	flags.Duration("timeout", time.Minute, "overall time limit for one command")
	flags.String("scanner", "pattern", `poster image scanner: "pattern" or "selector"`)

	run := func(fetch func(context.Context, *senscritique.Client, string) (any, error)) func(*cobra.Command, []string) error {
		return func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(configPath, cmd.Flags())
			if err != nil {
				return err
			}
			return execute(cmd.Context(), cfg, args[0], fetch)
		}
	}

	root.AddCommand(
		&cobra.Command{
			Use:   "profile <username|url>",
			Short: "Fetch a profile with stats, favorites, and reviews",
			Args:  cobra.ExactArgs(1),
			RunE: run(func(ctx context.Context, c *senscritique.Client, user string) (any, error) {
				return c.FetchProfile(ctx, user)
			}),
		},
		&cobra.Command{
			Use:   "reviews <username|url>",
			Short: "Fetch the reviews from a user's /critiques page",
			Args:  cobra.ExactArgs(1),
			RunE: run(func(ctx context.Context, c *senscritique.Client, user string) (any, error) {
				return c.FetchReviews(ctx, user)
			}),
		},
		&cobra.Command{
			Use:   "favorites <username|url>",
			Short: "Fetch a user's recommended works",
			Args:  cobra.ExactArgs(1),
			RunE: run(func(ctx context.Context, c *senscritique.Client, user string) (any, error) {
				return c.FetchFavorites(ctx, user)
			}),
		},
	)

	return root
}

func execute(ctx context.Context, cfg *Config, input string, fetch func(context.Context, *senscritique.Client, string) (any, error)) error {
	logLevel := slog.LevelInfo
	if cfg.Debug {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel}))

	opts := []senscritique.Option{
		senscritique.WithLogger(logger),
		senscritique.WithDefaults(cfg.Defaults),
	}
	if !cfg.Placeholders {
		opts = append(opts, senscritique.WithoutPlaceholderStats())
	}
	switch cfg.Scanner {
	case "selector":
		opts = append(opts, senscritique.WithImageScanner(senscritique.NewSelectorScanner(senscritique.DefaultCDN, logger)))
	case "pattern", "":
	default:
		return fmt.Errorf("unknown scanner %q", cfg.Scanner)
	}

	httpCache, err := newCache(cfg.Cache)
	if err != nil {
		logger.Warn("failed to initialize cache, continuing without cache", "error", err)
		httpCache = httpcache.NewNull()
	}
	defer func() {
		if err := httpCache.Close(); err != nil {
			logger.Warn("failed to close cache", "error", err)
		}
	}()
	logger.Debug("HTTP cache initialized", "ttl", httpCache.TTL().String(), "disabled", cfg.Cache.Disabled)
	opts = append(opts, senscritique.WithHTTPCache(httpCache))

	ctx, cancel := context.WithTimeout(ctx, cfg.Timeout)
	defer cancel()

	client, err := senscritique.New(ctx, opts...)
	if err != nil {
		return err
	}

	result, err := fetch(ctx, client, usernameFrom(input))
	if err != nil {
		return err
	}

	stats := httpcache.CacheStats()
	logger.Debug("cache statistics", "hits", stats.Hits, "misses", stats.Misses)

	return outputJSON(result)
}

// newCache returns the on-disk cache, or a cache that persists nothing when
// caching is disabled. Both still collapse concurrent fetches of one URL.
func newCache(cfg CacheConfig) (*httpcache.Cache, error) {
	if cfg.Disabled {
		return httpcache.NewNull(), nil
	}
	if cfg.Path != "" {
		return httpcache.NewWithPath(cfg.TTL, cfg.Path)
	}
	return httpcache.New(cfg.TTL)
}

// usernameFrom accepts either a bare username or a SensCritique URL.
func usernameFrom(input string) string {
	if name := senscritique.ExtractUsername(input); name != "" {
		return name
	}
	return input
}

func outputJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
