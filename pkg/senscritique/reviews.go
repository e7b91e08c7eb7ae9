package senscritique

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"

	"github.com/codeGROOVE-dev/senscritique/pkg/htmlutil"
	"github.com/codeGROOVE-dev/senscritique/pkg/profile"
)

const (
	minReviewContent = 20  // content must be strictly longer, in runes
	maxReviewContent = 200 // longer content is cut and suffixed with "..."
)

var (
	reviewCandidates = cascadia.MustCompile(`.elco-collection-item, .ProductListItem, [class*="review"], [class*="critique"]`)
	reviewTitle      = cascadia.MustCompile(`h3, h4, .title, [class*="title"]`)
	reviewContent    = cascadia.MustCompile(`p, .content, [class*="content"], [class*="text"]`)
	reviewDate       = cascadia.MustCompile(`time, .date, [class*="date"]`)
	reviewLink       = cascadia.MustCompile(`a[href*="/film/"], a[href*="/serie/"], a[href*="jeu"]`)
	reviewRating     = cascadia.MustCompile(`[class*="rating"], [class*="note"], [aria-label*="note"]`)
)

// FetchReviews retrieves the reviews listed on the first page of a user's
// /critiques page. Malformed entries are skipped.
func (c *Client) FetchReviews(ctx context.Context, username string) ([]profile.Review, error) {
	if err := validateUsername(username); err != nil {
		return nil, err
	}

	pageURL := c.reviewsURL(username)
	body, err := c.get(ctx, pageURL)
	if err != nil {
		c.logger.WarnContext(ctx, "reviews request failed", "url", pageURL, "error", err)
		return nil, fmt.Errorf("fetch reviews page: %w", err)
	}

	reviews := parseReviews(body, c.baseURL, c.logger)
	c.logger.InfoContext(ctx, "reviews found", "username", username, "count", len(reviews))
	return reviews, nil
}

// parseReviews never fails: an unreadable page yields no reviews.
func parseReviews(body, baseURL string, logger *slog.Logger) []profile.Review {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	if err != nil {
		logger.Warn("failed to parse reviews page", "error", err)
		return nil
	}

	base, err := url.Parse(baseURL)
	if err != nil {
		logger.Warn("invalid base URL for review links", "base", baseURL, "error", err)
	}

	var reviews []profile.Review
	doc.FindMatcher(reviewCandidates).Each(func(_ int, s *goquery.Selection) {
		if r, ok := reviewFrom(s, base); ok {
			reviews = append(reviews, r)
		}
	})
	return reviews
}

func reviewFrom(s *goquery.Selection, base *url.URL) (profile.Review, bool) {
	titleSel := s.FindMatcher(reviewTitle).First()
	if titleSel.Length() == 0 {
		return profile.Review{}, false
	}
	title := htmlutil.NormalizeSpace(titleSel.Text())
	content := strings.TrimSpace(s.FindMatcher(reviewContent).First().Text())
	if title == "" || utf8.RuneCountInString(content) <= minReviewContent {
		return profile.Review{}, false
	}

	date := htmlutil.NormalizeSpace(s.FindMatcher(reviewDate).First().Text())
	if date == "" {
		date = profile.DefaultDate
	}

	var link string
	if href, ok := s.FindMatcher(reviewLink).First().Attr("href"); ok {
		link = absoluteURL(base, href)
	}

	return profile.Review{
		Title:   title,
		Content: htmlutil.Truncate(htmlutil.NormalizeSpace(content), maxReviewContent, "..."),
		Date:    date,
		URL:     link,
		Rating:  ratingOf(s.FindMatcher(reviewRating).First()),
	}, true
}

// ratingOf reads the rating from the element text, then from its aria-label.
func ratingOf(s *goquery.Selection) *int {
	if s.Length() == 0 {
		return nil
	}
	text := s.Text()
	if strings.TrimSpace(text) == "" {
		text = s.AttrOr("aria-label", "")
	}
	n, ok := htmlutil.FirstInt(text)
	if !ok {
		return nil
	}
	return &n
}

func absoluteURL(base *url.URL, href string) string {
	ref, err := url.Parse(href)
	if err != nil || base == nil {
		return DefaultBaseURL + href
	}
	return base.ResolveReference(ref).String()
}
