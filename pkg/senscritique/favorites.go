package senscritique

import (
	"context"
	"fmt"

	"github.com/codeGROOVE-dev/senscritique/pkg/profile"
)

// FetchFavorites retrieves the works a user marked as recommended
// ("coups de cœur") from their collection page.
func (c *Client) FetchFavorites(ctx context.Context, username string) ([]profile.Favorite, error) {
	if err := validateUsername(username); err != nil {
		return nil, err
	}

	pageURL := c.favoritesURL(username)
	body, err := c.get(ctx, pageURL)
	if err != nil {
		c.logger.WarnContext(ctx, "favorites request failed", "url", pageURL, "error", err)
		return nil, fmt.Errorf("fetch favorites page: %w", err)
	}

	favorites := c.scanner.Scan(body)
	c.logger.InfoContext(ctx, "favorites found", "username", username, "count", len(favorites))
	return favorites, nil
}
