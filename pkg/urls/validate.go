package urls

import (
	"errors"
	"fmt"
	"net/url"
)

// ErrInvalidFeedURL is returned when a source URL cannot be fetched as a feed.
var ErrInvalidFeedURL = errors.New("invalid URL format")

// ValidateFeedURL checks that a source URL is an absolute http(s) URL with a host.
func ValidateFeedURL(rawURL string) error {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidFeedURL, err)
	}

	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("%w: scheme must be http or https", ErrInvalidFeedURL)
	}

	if parsed.Host == "" {
		return fmt.Errorf("%w: missing host", ErrInvalidFeedURL)
	}

	return nil
}
