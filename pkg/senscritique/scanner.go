package senscritique

import (
	"log/slog"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/codeGROOVE-dev/senscritique/pkg/htmlutil"
	"github.com/codeGROOVE-dev/senscritique/pkg/profile"
)

// DefaultCDN is the host SensCritique serves poster images from.
const DefaultCDN = "https://media.senscritique.com"

// ImageScanner finds poster images in a page and turns them into favorites.
// The same scanner serves the favorites page and the profile page fallback.
type ImageScanner interface {
	Scan(body string) []profile.Favorite
}

// PatternScanner matches <img> tags in raw markup whose alt attribute comes
// before a src on the CDN. It does not build a DOM.
type PatternScanner struct {
	pattern *regexp.Regexp
}

// NewPatternScanner returns a PatternScanner for images hosted under cdn.
func NewPatternScanner(cdn string) *PatternScanner {
	return &PatternScanner{
		pattern: regexp.MustCompile(`(?i)<img[^>]+alt="([^"]+)"[^>]+src="(` + regexp.QuoteMeta(cdn) + `[^"]+)"`),
	}
}

// Scan implements ImageScanner.
func (s *PatternScanner) Scan(body string) []profile.Favorite {
	var out []profile.Favorite
	for _, m := range s.pattern.FindAllStringSubmatch(body, -1) {
		title := htmlutil.DecodeHTMLEntities(m[1])
		if fav, ok := newFavorite(title, htmlutil.DecodeHTMLEntities(m[2])); ok {
			out = append(out, fav)
		}
	}
	return out
}

// SelectorScanner finds CDN images through the DOM, so attribute order does not matter.
type SelectorScanner struct {
	selector string
	logger   *slog.Logger
}

// NewSelectorScanner returns a SelectorScanner for images hosted under cdn.
func NewSelectorScanner(cdn string, logger *slog.Logger) *SelectorScanner {
	if logger == nil {
		logger = slog.Default()
	}
	return &SelectorScanner{
		selector: `img[alt][src^="` + cdn + `"]`,
		logger:   logger,
	}
}

// Scan implements ImageScanner.
func (s *SelectorScanner) Scan(body string) []profile.Favorite {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	if err != nil {
		s.logger.Warn("failed to parse page for images", "error", err)
		return nil
	}

	var out []profile.Favorite
	doc.Find(s.selector).Each(func(_ int, img *goquery.Selection) {
		alt, _ := img.Attr("alt")
		src, _ := img.Attr("src")
		if fav, ok := newFavorite(alt, src); ok {
			out = append(out, fav)
		}
	})
	return out
}

func newFavorite(title, image string) (profile.Favorite, bool) {
	if title == "" || image == "" || strings.Contains(title, profile.ExclusionMarker) {
		return profile.Favorite{}, false
	}
	return profile.Favorite{Title: title, Image: image}, true
}
