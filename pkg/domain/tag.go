package domain

import "time"

// Keyword is a single match term owned by a Tag.
type Keyword struct {
	ID      string `bson:"_id" json:"id"`
	TagID   string `bson:"tag_id" json:"tagId"`
	Keyword string `bson:"keyword" json:"keyword"`
}

// Tag is a user-defined interest. Inactive tags stay in storage but never match.
type Tag struct {
	ID        string    `bson:"_id" json:"id"`
	Name      string    `bson:"name" json:"name"`
	IsActive  bool      `bson:"is_active" json:"isActive"`
	CreatedAt time.Time `bson:"created_at" json:"createdAt"`
	Keywords  []Keyword `bson:"keywords" json:"keywords"`
}

// MatchedTag is the part of a Tag reported back by the matcher.
type MatchedTag struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// MatchedTagIDs returns the IDs of the given matched tags in order.
func MatchedTagIDs(tags []MatchedTag) []string {
	ids := make([]string, len(tags))
	for i, t := range tags {
		ids[i] = t.ID
	}
	return ids
}
