package draft

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/anthropic"
	"github.com/tmc/langchaingo/llms/openai"

	"rss-digest/pkg/config"
)

const (
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"

	DefaultOpenAIModel    = "gpt-4o-mini"
	DefaultAnthropicModel = "claude-sonnet-4-20250514"
)

// ErrMissingAPIKey is returned when the selected provider has no API key configured.
var ErrMissingAPIKey = errors.New("llm api key is not configured")

var validate = validator.New()

// GenerateInput is a template plus the article it should be filled with.
type GenerateInput struct {
	Template string         `json:"template" validate:"required"`
	Article  ArticleContext `json:"article"`
}

// Validate reports missing required fields.
func (in GenerateInput) Validate() error {
	return validate.Struct(in)
}

// Result is a generated post and the provider that wrote it.
type Result struct {
	Text     string `json:"text"`
	Provider string `json:"provider"`
}

// Generator sends prompts to one LLM provider.
type Generator struct {
	model    llms.Model
	provider string
}

// NewGenerator builds a generator for the provider named in cfg. Anything
// other than "anthropic" selects OpenAI.
func NewGenerator(cfg config.LLMConfig) (*Generator, error) {
	if strings.EqualFold(cfg.Provider, ProviderAnthropic) {
		if cfg.AnthropicAPIKey == "" {
			return nil, fmt.Errorf("%w: anthropic", ErrMissingAPIKey)
		}
		model := cfg.Model
		if model == "" {
			model = DefaultAnthropicModel
		}
		llm, err := anthropic.New(anthropic.WithToken(cfg.AnthropicAPIKey), anthropic.WithModel(model))
		if err != nil {
			return nil, fmt.Errorf("creating anthropic client: %w", err)
		}
		return NewGeneratorWithModel(llm, ProviderAnthropic), nil
	}

	if cfg.OpenAIAPIKey == "" {
		return nil, fmt.Errorf("%w: openai", ErrMissingAPIKey)
	}
	model := cfg.Model
	if model == "" {
		model = DefaultOpenAIModel
	}
	llm, err := openai.New(openai.WithToken(cfg.OpenAIAPIKey), openai.WithModel(model))
	if err != nil {
		return nil, fmt.Errorf("creating openai client: %w", err)
	}
	return NewGeneratorWithModel(llm, ProviderOpenAI), nil
}

// NewGeneratorWithModel wraps an existing model, reporting provider in results.
func NewGeneratorWithModel(model llms.Model, provider string) *Generator {
	return &Generator{model: model, provider: provider}
}

// Provider returns the name reported in results.
func (g *Generator) Provider() string {
	return g.provider
}

// Generate writes a post for in.Article following in.Template.
func (g *Generator) Generate(ctx context.Context, in GenerateInput) (Result, error) {
	text, err := llms.GenerateFromSinglePrompt(ctx, g.model, BuildPrompt(in.Template, in.Article))
	if err != nil {
		return Result{}, fmt.Errorf("generating post with %s: %w", g.provider, err)
	}
	return Result{Text: strings.TrimSpace(text), Provider: g.provider}, nil
}
