// Package senscritique fetches SensCritique user profiles, favorites, and reviews.
//
// Basic usage:
//
//	client, err := senscritique.New(ctx, senscritique.WithLogger(logger))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	p, err := client.FetchProfile(ctx, "johndoe")
//
// Only the profile page itself is required. Favorites and reviews are
// best-effort: a failure there yields fallback or empty data, not an error.
package senscritique

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"
	"unicode"

	"github.com/PuerkitoBio/goquery"

	"github.com/codeGROOVE-dev/senscritique/pkg/httpcache"
	"github.com/codeGROOVE-dev/senscritique/pkg/profile"
)

// DefaultBaseURL is the site root all page URLs are built from.
const DefaultBaseURL = "https://www.senscritique.com"

// Only the bare and www hosts serve user pages; media. and other subdomains do not.
var usernamePattern = regexp.MustCompile(`(?i)(?:^|//|www\.)senscritique\.com/([A-Za-z0-9_.-]+)`)

// Top-level paths that are site sections rather than users.
var reservedPaths = map[string]bool{
	"film": true, "serie": true, "jeuvideo": true, "livre": true, "bd": true,
	"album": true, "morceau": true, "search": true, "liste": true, "top": true,
	"films": true, "series": true, "jeux-video": true, "livres": true,
}

// Match returns true if the URL is a SensCritique user page.
func Match(urlStr string) bool {
	return ExtractUsername(urlStr) != ""
}

// ExtractUsername returns the username from a SensCritique user page URL.
func ExtractUsername(urlStr string) string {
	m := usernamePattern.FindStringSubmatch(urlStr)
	if len(m) < 2 || reservedPaths[strings.ToLower(m[1])] {
		return ""
	}
	return m[1]
}

// Client handles SensCritique requests.
type Client struct {
	httpClient   *http.Client
	cache        httpcache.Cacher
	logger       *slog.Logger
	scanner      ImageScanner
	baseURL      string
	defaults     Defaults
	placeholders bool
}

// Option configures a Client.
type Option func(*config)

//nolint:govet // fieldalignment: intentional layout for readability
type config struct {
	cache        httpcache.Cacher
	httpClient   *http.Client
	logger       *slog.Logger
	scanner      ImageScanner
	baseURL      string
	defaults     Defaults
	placeholders bool
}

// WithHTTPCache sets the HTTP cache.
func WithHTTPCache(httpCache httpcache.Cacher) Option {
	return func(c *config) { c.cache = httpCache }
}

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *config) { c.logger = logger }
}

// WithHTTPClient sets the HTTP client used for page requests.
func WithHTTPClient(client *http.Client) Option {
	return func(c *config) { c.httpClient = client }
}

// WithBaseURL overrides the site root, mostly for tests and mirrors.
func WithBaseURL(baseURL string) Option {
	return func(c *config) { c.baseURL = strings.TrimRight(baseURL, "/") }
}

// WithImageScanner sets how poster images are found in pages.
func WithImageScanner(s ImageScanner) Option {
	return func(c *config) { c.scanner = s }
}

// WithDefaults overrides the values used for fields the pages do not expose.
// Empty strings keep the current value. A zero Stats keeps the current
// placeholder tuple; any non-zero Stats replaces it whole. Options apply in
// order, so a later WithPlaceholderStats or WithDefaults wins.
func WithDefaults(d Defaults) Option {
	return func(c *config) { c.defaults = c.defaults.merge(d) }
}

// WithPlaceholderStats sets the counts substituted when extraction finds no activity.
func WithPlaceholderStats(s profile.Stats) Option {
	return func(c *config) { c.defaults.Stats = s }
}

// WithoutPlaceholderStats keeps zero counts as extracted. Stats.Placeholder
// is still set so callers can tell the counts are unavailable.
func WithoutPlaceholderStats() Option {
	return func(c *config) { c.placeholders = false }
}

// New creates a SensCritique client.
func New(_ context.Context, opts ...Option) (*Client, error) {
	cfg := &config{
		logger:       slog.Default(),
		baseURL:      DefaultBaseURL,
		defaults:     StandardDefaults(),
		placeholders: true,
	}
	for _, opt := range opts {
		opt(cfg)
	}

	if _, err := url.Parse(cfg.baseURL); err != nil {
		return nil, fmt.Errorf("invalid base URL %q: %w", cfg.baseURL, err)
	}
	if cfg.httpClient == nil {
		cfg.httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	if cfg.scanner == nil {
		cfg.scanner = NewPatternScanner(DefaultCDN)
	}

	return &Client{
		httpClient:   cfg.httpClient,
		cache:        cfg.cache,
		logger:       cfg.logger,
		scanner:      cfg.scanner,
		baseURL:      cfg.baseURL,
		defaults:     cfg.defaults,
		placeholders: cfg.placeholders,
	}, nil
}

// ProfileURL returns the profile page URL for username.
func (c *Client) ProfileURL(username string) string {
	return c.baseURL + "/" + url.PathEscape(username)
}

func (c *Client) reviewsURL(username string) string {
	return c.ProfileURL(username) + "/critiques"
}

func (c *Client) favoritesURL(username string) string {
	return c.ProfileURL(username) + "/collection?action=RECOMMEND"
}

func (c *Client) get(ctx context.Context, pageURL string) (string, error) {
	return httpcache.Get(ctx, c.cache, c.httpClient, pageURL, c.logger)
}

// FetchProfile retrieves a user's profile page and assembles it with their
// favorites and reviews. It fails only if the profile page itself cannot be
// fetched or parsed.
func (c *Client) FetchProfile(ctx context.Context, username string) (*profile.Profile, error) {
	if err := validateUsername(username); err != nil {
		return nil, err
	}

	profileURL := c.ProfileURL(username)
	c.logger.InfoContext(ctx, "fetching senscritique profile", "url", profileURL, "username", username)

	body, err := c.get(ctx, profileURL)
	if err != nil {
		c.logger.ErrorContext(ctx, "profile page request failed", "url", profileURL, "error", err)
		var httpErr *httpcache.HTTPError
		if errors.As(err, &httpErr) && httpErr.StatusCode == http.StatusNotFound {
			return nil, fmt.Errorf("%w: %w", profile.ErrProfileNotFound, err)
		}
		return nil, fmt.Errorf("fetch profile page: %w", err)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	if err != nil {
		c.logger.ErrorContext(ctx, "profile page parse failed", "url", profileURL, "error", err)
		return nil, fmt.Errorf("parse profile page: %w", err)
	}

	name := displayName(doc, username)
	stats := parseStats(body)

	collections := bestEffort(ctx, c.logger, "favorites", func(ctx context.Context) ([]profile.Favorite, error) {
		return c.FetchFavorites(ctx, username)
	})
	if len(collections) == 0 {
		c.logger.WarnContext(ctx, "no favorites found, scanning profile page images", "username", username)
		collections = c.scanner.Scan(body)
	}

	reviews := bestEffort(ctx, c.logger, "reviews", func(ctx context.Context) ([]profile.Review, error) {
		return c.FetchReviews(ctx, username)
	})

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	p := &profile.Profile{
		Username:    name,
		Location:    c.defaults.Location,
		Gender:      c.defaults.Gender,
		Stats:       c.finalizeStats(stats),
		Collections: nonNil(collections),
		Reviews:     nonNil(reviews),
		ProfileURL:  profileURL,
		Avatar:      c.defaults.Avatar,
	}

	c.logger.InfoContext(ctx, "senscritique profile assembled",
		"username", p.Username,
		"films", p.Stats.Films, "series", p.Stats.Series, "jeux", p.Stats.Jeux,
		"livres", p.Stats.Livres, "total", p.Stats.Total, "placeholder", p.Stats.Placeholder,
		"collections", len(p.Collections), "reviews", len(p.Reviews))

	return p, nil
}

// bestEffort runs one optional sub-fetch. A failure is logged and yields no items.
func bestEffort[T any](ctx context.Context, logger *slog.Logger, what string, fetch func(context.Context) ([]T, error)) []T {
	items, err := fetch(ctx)
	if err != nil {
		logger.WarnContext(ctx, "optional fetch failed, continuing without it", "what", what, "error", err)
		return nil
	}
	return items
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

func validateUsername(username string) error {
	if username == "" || strings.ContainsAny(username, "/?#") || strings.IndexFunc(username, unicode.IsSpace) >= 0 {
		return fmt.Errorf("%w: %q", profile.ErrInvalidUsername, username)
	}
	return nil
}
