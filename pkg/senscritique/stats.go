package senscritique

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/codeGROOVE-dev/senscritique/pkg/profile"
)

// Defaults holds profile values that SensCritique pages do not expose to
// anonymous visitors.
type Defaults struct {
	Location string        `mapstructure:"location"`
	Gender   string        `mapstructure:"gender"`
	Avatar   string        `mapstructure:"avatar"`
	Stats    profile.Stats `mapstructure:"stats"`
}

// StandardDefaults returns the stock defaults.
func StandardDefaults() Defaults {
	return Defaults{
		Location: "France",
		Gender:   "Homme",
		Avatar:   DefaultCDN + "/media/media/000022812759/48x48/avatar.jpg",
		Stats:    profile.Stats{Total: 68, Films: 32, Series: 17, Jeux: 19, Livres: 0},
	}
}

// merge returns d with the non-empty fields of o laid over it.
func (d Defaults) merge(o Defaults) Defaults {
	if o.Location != "" {
		d.Location = o.Location
	}
	if o.Gender != "" {
		d.Gender = o.Gender
	}
	if o.Avatar != "" {
		d.Avatar = o.Avatar
	}
	if o.Stats != (profile.Stats{}) {
		d.Stats = o.Stats
	}
	return d
}

// The profile page renders each count on the line above its label.
var (
	totalPattern  = regexp.MustCompile(`(?i)(\d+)\s*\n\s*Total`)
	filmsPattern  = regexp.MustCompile(`(?i)(\d+)\s*\n\s*Films`)
	seriesPattern = regexp.MustCompile(`(?i)(\d+)\s*\n\s*S[ée]ries`)
	jeuxPattern   = regexp.MustCompile(`(?i)(\d+)\s*\n\s*Jeux vid[ée]o`)
	livresPattern = regexp.MustCompile(`(?i)(\d+)\s*\n\s*Livres`)
)

// displayNameSelectors are tried in order.
var displayNameSelectors = []string{
	".elme-user-identity-username",
	`[data-testid="user-name"]`,
	"h1",
}

func parseStats(body string) profile.Stats {
	return profile.Stats{
		Total:  countFor(totalPattern, body),
		Films:  countFor(filmsPattern, body),
		Series: countFor(seriesPattern, body),
		Jeux:   countFor(jeuxPattern, body),
		Livres: countFor(livresPattern, body),
	}
}

func countFor(re *regexp.Regexp, body string) int {
	m := re.FindStringSubmatch(body)
	if len(m) < 2 {
		return 0
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return 0
	}
	return n
}

func displayName(doc *goquery.Document, fallback string) string {
	for _, sel := range displayNameSelectors {
		if name := strings.TrimSpace(doc.Find(sel).First().Text()); name != "" {
			return name
		}
	}
	return fallback
}

// finalizeStats substitutes the configured placeholder counts when nothing
// was extracted. Jeux and Livres do not count: a profile with only games
// still gets placeholders.
func (c *Client) finalizeStats(s profile.Stats) profile.Stats {
	if !s.Empty() {
		return s
	}
	if !c.placeholders {
		s.Placeholder = true
		return s
	}
	out := c.defaults.Stats
	out.Placeholder = true
	return out
}
