package domain

import "time"

// ArticleStatus controls whether an article shows up in the main feed.
type ArticleStatus string

const (
	// StatusVisible is assigned when at least one active tag matched at ingestion.
	StatusVisible ArticleStatus = "visible"
	// StatusExcluded is assigned when no tag matched, or when the user hid the article.
	StatusExcluded ArticleStatus = "excluded"
)

// Valid reports whether s is a known status.
func (s ArticleStatus) Valid() bool {
	return s == StatusVisible || s == StatusExcluded
}

// Article represents a feed item persisted after ingestion.
// CanonicalURL is the normalized Link and is the deduplication key.
type Article struct {
	ID           string        `bson:"_id" json:"id"`
	Title        string        `bson:"title" json:"title"`
	Description  *string       `bson:"description,omitempty" json:"description"`
	Link         string        `bson:"link" json:"link"`
	CanonicalURL string        `bson:"canonical_url" json:"canonicalUrl"`
	PublishedAt  *time.Time    `bson:"published_at,omitempty" json:"publishedAt"`
	SourceID     string        `bson:"source_id" json:"sourceId"`
	Status       ArticleStatus `bson:"status" json:"status"`
	CreatedAt    time.Time     `bson:"created_at" json:"createdAt"`
	UpdatedAt    time.Time     `bson:"updated_at" json:"updatedAt"`
}

// NewArticle holds the fields the ingestion pipeline computes for an article
// before it is stored. Storage assigns ID and timestamps.
type NewArticle struct {
	Title        string
	Description  *string
	Link         string
	CanonicalURL string
	PublishedAt  *time.Time
	SourceID     string
	Status       ArticleStatus
}

// ArticleTag links an article to a tag that matched it at ingestion time.
type ArticleTag struct {
	ArticleID string `bson:"article_id" json:"articleId"`
	TagID     string `bson:"tag_id" json:"tagId"`
}

// Favorite marks an article as kept. Favorites are exempt from retention.
type Favorite struct {
	ID        string    `bson:"_id" json:"id"`
	ArticleID string    `bson:"article_id" json:"articleId"`
	CreatedAt time.Time `bson:"created_at" json:"createdAt"`
}

// ArticleView is an article together with the relations listing screens need.
type ArticleView struct {
	Article
	SourceName string       `json:"sourceName"`
	Tags       []MatchedTag `json:"tags"`
	Favorited  bool         `json:"favorited"`
}
