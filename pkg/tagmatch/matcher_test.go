package tagmatch

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"rss-digest/pkg/domain"
)

func tag(id, name string, active bool, keywords ...string) domain.Tag {
	t := domain.Tag{ID: id, Name: name, IsActive: active}
	for i, kw := range keywords {
		t.Keywords = append(t.Keywords, domain.Keyword{ID: id + "-kw" + string(rune('a'+i)), TagID: id, Keyword: kw})
	}
	return t
}

func strPtr(s string) *string { return &s }

func TestMatch(t *testing.T) {
	ml := tag("tag-1", "ML", true, "machine learning")
	gpt := tag("tag-2", "GPT", true, "GPT")
	react := tag("tag-3", "React", true, "React")
	golang := tag("tag-4", "Go", true, "golang", "go 1.")

	tests := []struct {
		name        string
		title       string
		description *string
		tags        []domain.Tag
		expected    []domain.MatchedTag
	}{
		{
			name:        "keyword in title",
			title:       "Intro to Machine Learning",
			description: strPtr(""),
			tags:        []domain.Tag{ml},
			expected:    []domain.MatchedTag{{ID: "tag-1", Name: "ML"}},
		},
		{
			name:        "keyword in description",
			title:       "Weekly digest",
			description: strPtr("All about golang generics"),
			tags:        []domain.Tag{golang},
			expected:    []domain.MatchedTag{{ID: "tag-4", Name: "Go"}},
		},
		{
			name:     "case-insensitive",
			title:    "new gpt model",
			tags:     []domain.Tag{gpt},
			expected: []domain.MatchedTag{{ID: "tag-2", Name: "GPT"}},
		},
		{
			name:     "substring inside a word",
			title:    "ReactJS 19 released",
			tags:     []domain.Tag{react},
			expected: []domain.MatchedTag{{ID: "tag-3", Name: "React"}},
		},
		{
			name:     "multiple tags keep input order",
			title:    "GPT meets machine learning in React",
			tags:     []domain.Tag{react, ml, gpt},
			expected: []domain.MatchedTag{{ID: "tag-3", Name: "React"}, {ID: "tag-1", Name: "ML"}, {ID: "tag-2", Name: "GPT"}},
		},
		{
			name:     "tag reported once when several keywords match",
			title:    "golang: what's new in go 1.24",
			tags:     []domain.Tag{golang},
			expected: []domain.MatchedTag{{ID: "tag-4", Name: "Go"}},
		},
		{
			name:     "no match",
			title:    "Cooking with cast iron",
			tags:     []domain.Tag{ml, gpt},
			expected: []domain.MatchedTag{},
		},
		{
			name:     "no tags",
			title:    "Intro to Machine Learning",
			tags:     nil,
			expected: []domain.MatchedTag{},
		},
		{
			name:     "tag without keywords",
			title:    "Intro to Machine Learning",
			tags:     []domain.Tag{tag("tag-5", "Empty", true)},
			expected: []domain.MatchedTag{},
		},
		{
			name:     "empty keyword never matches",
			title:    "Anything at all",
			tags:     []domain.Tag{tag("tag-6", "Blank", true, "")},
			expected: []domain.MatchedTag{},
		},
		{
			name:        "blank title and description",
			title:       "   ",
			description: strPtr("  "),
			tags:        []domain.Tag{tag("tag-7", "Space", true, " ")},
			expected:    []domain.MatchedTag{},
		},
		{
			name:     "nil description",
			title:    "machine learning",
			tags:     []domain.Tag{ml},
			expected: []domain.MatchedTag{{ID: "tag-1", Name: "ML"}},
		},
		{
			name:     "inactive tag skipped",
			title:    "Intro to Machine Learning",
			tags:     []domain.Tag{tag("tag-1", "ML", false, "machine learning")},
			expected: []domain.MatchedTag{},
		},
		{
			name:     "only active tags reported",
			title:    "GPT and machine learning",
			tags:     []domain.Tag{tag("tag-1", "ML", false, "machine learning"), gpt},
			expected: []domain.MatchedTag{{ID: "tag-2", Name: "GPT"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Match(tt.title, tt.description, tt.tags))
		})
	}
}
