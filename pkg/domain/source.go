package domain

import "time"

// Source is an RSS/Atom feed the user subscribed to.
type Source struct {
	ID        string    `bson:"_id" json:"id"`
	Name      string    `bson:"name" json:"name"`
	URL       string    `bson:"url" json:"url"`
	IsActive  bool      `bson:"is_active" json:"isActive"`
	CreatedAt time.Time `bson:"created_at" json:"createdAt"`
}

// ActiveSources returns the sources with IsActive set, preserving order.
func ActiveSources(sources []Source) []Source {
	active := make([]Source, 0, len(sources))
	for _, s := range sources {
		if s.IsActive {
			active = append(active, s)
		}
	}
	return active
}
