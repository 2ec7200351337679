// Package draft turns a stored article and a prompt template into a share post written by an LLM.
package draft

import (
	"fmt"
	"strings"
)

// ArticleContext is the article data a template can reference.
type ArticleContext struct {
	Title       string   `json:"title" validate:"required"`
	Description *string  `json:"description,omitempty"`
	Link        string   `json:"link" validate:"required"`
	PublishedAt *string  `json:"publishedAt,omitempty"`
	MatchedTags []string `json:"matchedTags,omitempty"`
}

func (a ArticleContext) tagList() *string {
	if a.MatchedTags == nil {
		return nil
	}
	joined := strings.Join(a.MatchedTags, ", ")
	return &joined
}

func orDefault(s *string, def string) string {
	if s == nil {
		return def
	}
	return *s
}

// ReplaceTemplateVariables fills {{title}}, {{description}}, {{link}},
// {{publishedAt}} and {{matchedTags}} in template. Missing values become empty.
func ReplaceTemplateVariables(template string, article ArticleContext) string {
	return strings.NewReplacer(
		"{{title}}", article.Title,
		"{{description}}", orDefault(article.Description, ""),
		"{{link}}", article.Link,
		"{{publishedAt}}", orDefault(article.PublishedAt, ""),
		"{{matchedTags}}", orDefault(article.tagList(), ""),
	).Replace(template)
}

const promptFormat = `You are a helpful assistant that creates Slack posts for sharing tech articles.

Based on the following template and article information, generate a concise and engaging Slack post.

Template:
%s

Article Information:
- Title: %s
- Description: %s
- Link: %s
- Published: %s
- Tags: %s

Generate a Slack-friendly post that follows the template style. Keep it concise and professional.
Do not include any markdown formatting. Output only the post text.`

// BuildPrompt wraps the filled template with the fixed instructions sent to the model.
func BuildPrompt(template string, article ArticleContext) string {
	return fmt.Sprintf(promptFormat,
		ReplaceTemplateVariables(template, article),
		article.Title,
		orDefault(article.Description, "N/A"),
		article.Link,
		orDefault(article.PublishedAt, "N/A"),
		orDefault(article.tagList(), "N/A"),
	)
}
