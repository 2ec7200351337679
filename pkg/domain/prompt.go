package domain

import "time"

// Prompt is a share-draft template. At most one prompt is the default.
type Prompt struct {
	ID        string    `bson:"_id" json:"id"`
	Name      string    `bson:"name" json:"name"`
	Template  string    `bson:"template" json:"template"`
	IsDefault bool      `bson:"is_default" json:"isDefault"`
	CreatedAt time.Time `bson:"created_at" json:"createdAt"`
	UpdatedAt time.Time `bson:"updated_at" json:"updatedAt"`
}

// PromptUpdate holds the optional fields of a prompt edit. Nil means unchanged.
type PromptUpdate struct {
	Name      *string
	Template  *string
	IsDefault *bool
}
