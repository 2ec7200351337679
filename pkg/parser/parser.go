package parser

import (
	"context"
	"time"
)

// FeedItem is one entry of a fetched feed, reduced to the fields ingestion uses
type FeedItem struct {
	Title       string     // Title of the entry, empty when missing
	Description *string    // Plain-text description, nil when the entry has none
	Link        string     // Article URL as published by the feed
	PublishedAt *time.Time // Publication (or last update) time, nil when missing
}

// FeedParser retrieves a feed document and returns its items
type FeedParser interface {
	ParseURL(ctx context.Context, feedURL string) ([]FeedItem, error)
}
