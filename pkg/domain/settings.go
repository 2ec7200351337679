package domain

import "time"

const (
	// DefaultRetentionDays is used until the user stores a setting.
	DefaultRetentionDays = 7
	MinRetentionDays     = 1
	MaxRetentionDays     = 365
)

// Settings is the single row of user preferences.
type Settings struct {
	ArticleRetentionDays int       `bson:"article_retention_days" json:"articleRetentionDays"`
	UpdatedAt            time.Time `bson:"updated_at" json:"updatedAt"`
}

// DefaultSettings returns the settings used when none are stored.
func DefaultSettings() Settings {
	return Settings{ArticleRetentionDays: DefaultRetentionDays}
}
