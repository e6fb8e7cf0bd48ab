package extractor

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/anthropic"
	"github.com/tmc/langchaingo/llms/openai"
)

// ErrMissingCredential is returned when the provider's API key is not set.
var ErrMissingCredential = errors.New("missing API credential")

const (
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
)

var defaultModels = map[string]string{
	ProviderOpenAI:    "gpt-4o-mini",
	ProviderAnthropic: "claude-3-5-haiku-latest",
}

var credentialVars = map[string]string{
	ProviderOpenAI:    "OPENAI_API_KEY",
	ProviderAnthropic: "ANTHROPIC_API_KEY",
}

// Function variables for LLM constructors to allow mocking in tests
var (
	newOpenAIFn    = openai.New
	newAnthropicFn = anthropic.New
)

// ProviderSettings selects and configures the model behind an Extractor.
type ProviderSettings struct {
	Provider string
	Model    string
	BaseURL  string // OpenAI-compatible or Anthropic-compatible endpoint
}

// DefaultModel returns the model used for provider when none is given.
func DefaultModel(provider string) string {
	return defaultModels[strings.ToLower(provider)]
}

// CredentialVar names the environment variable holding provider's API key.
func CredentialVar(provider string) string {
	return credentialVars[strings.ToLower(provider)]
}

// NewModel builds the langchaingo model for s. It fails with
// ErrMissingCredential before any client is created when the API key is
// absent from the environment.
func NewModel(s ProviderSettings) (llms.Model, error) {
	provider := strings.ToLower(strings.TrimSpace(s.Provider))
	if provider == "" {
		provider = ProviderOpenAI
	}
	envVar, ok := credentialVars[provider]
	if !ok {
		return nil, fmt.Errorf("unsupported LLM provider %q", s.Provider)
	}
	token := os.Getenv(envVar)
	if token == "" {
		return nil, fmt.Errorf("%w: %s environment variable not set", ErrMissingCredential, envVar)
	}
	model := s.Model
	if model == "" {
		model = defaultModels[provider]
	}

	switch provider {
	case ProviderAnthropic:
		opts := []anthropic.Option{
			anthropic.WithToken(token),
			anthropic.WithModel(model),
		}
		if s.BaseURL != "" {
			opts = append(opts, anthropic.WithBaseURL(s.BaseURL))
		}
		llm, err := newAnthropicFn(opts...)
		if err != nil {
			return nil, fmt.Errorf("initialize Anthropic LLM: %w", err)
		}
		slog.Info("Anthropic LLM client initialized", "model", model, "base_url", s.BaseURL)
		return llm, nil
	default:
		opts := []openai.Option{
			openai.WithToken(token),
			openai.WithModel(model),
		}
		if s.BaseURL != "" {
			opts = append(opts, openai.WithBaseURL(s.BaseURL))
		}
		llm, err := newOpenAIFn(opts...)
		if err != nil {
			return nil, fmt.Errorf("initialize OpenAI LLM: %w", err)
		}
		slog.Info("OpenAI LLM client initialized", "model", model, "base_url", s.BaseURL)
		return llm, nil
	}
}
