package parser

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/mmcdole/gofeed"
	"golang.org/x/time/rate"

	"rss-digest/pkg/content"
	"rss-digest/pkg/httpclient"
)

// RSSParser handles RSS/Atom feed retrieval and parsing
type RSSParser struct {
	feedParser *gofeed.Parser
	limiter    *rate.Limiter
}

// Options configures an RSSParser
type Options struct {
	// Client performs the HTTP requests. A FeedClient from httpclient is used when nil.
	Client *http.Client
	// UserAgent is sent with every feed request.
	UserAgent string
	// RequestsPerSecond spaces out consecutive feed requests. Zero or less disables the limit.
	RequestsPerSecond float64
}

// NewRSSParser creates a new RSS parser
func NewRSSParser(opts Options) *RSSParser {
	client := opts.Client
	if client == nil {
		client = httpclient.NewClient(httpclient.Options{Type: httpclient.FeedClient, UserAgent: opts.UserAgent})
	}

	fp := gofeed.NewParser()
	fp.Client = client
	if opts.UserAgent != "" {
		fp.UserAgent = opts.UserAgent
	}

	limit := rate.Inf
	if opts.RequestsPerSecond > 0 {
		limit = rate.Limit(opts.RequestsPerSecond)
	}

	return &RSSParser{
		feedParser: fp,
		limiter:    rate.NewLimiter(limit, 1),
	}
}

// ParseURL fetches and parses an RSS/Atom feed from the given URL
func (p *RSSParser) ParseURL(ctx context.Context, feedURL string) ([]FeedItem, error) {
	if err := p.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("waiting to fetch feed: %w", err)
	}

	feed, err := p.feedParser.ParseURLWithContext(feedURL, ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to parse RSS feed: %w", err)
	}

	items := make([]FeedItem, 0, len(feed.Items))
	for _, item := range feed.Items {
		if item == nil {
			continue
		}
		items = append(items, toFeedItem(item))
	}

	return items, nil
}

func toFeedItem(item *gofeed.Item) FeedItem {
	fi := FeedItem{
		Title: strings.TrimSpace(item.Title),
		Link:  strings.TrimSpace(item.Link),
	}

	// markup with no text counts as missing
	for _, raw := range []string{item.Description, item.Content} {
		if snippet := content.Snippet(raw); snippet != "" {
			fi.Description = &snippet
			break
		}
	}

	switch {
	case item.PublishedParsed != nil:
		fi.PublishedAt = item.PublishedParsed
	case item.UpdatedParsed != nil:
		fi.PublishedAt = item.UpdatedParsed
	}

	return fi
}
