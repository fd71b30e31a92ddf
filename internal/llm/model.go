// Package llm wraps langchaingo models behind a small generation API with
// token accounting and structured-output helpers.
package llm

import (
	"context"
	"fmt"
	"time"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/raphaelgruber/mailbrief/internal/config"
	"github.com/raphaelgruber/mailbrief/internal/metrics"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/anthropic"
	"github.com/tmc/langchaingo/llms/bedrock"
	"github.com/tmc/langchaingo/llms/ollama"
	"github.com/tmc/langchaingo/llms/openai"
)

// Model wraps a langchaingo LLM for text generation.
type Model struct {
	llm       llms.Model
	modelName string
	metrics   *metrics.Collector
}

// NewModel creates an LLM model based on configuration. The metrics collector
// may be nil.
func NewModel(ctx context.Context, cfg config.Config, mc *metrics.Collector) (*Model, error) {
	var model llms.Model
	var err error
	name := cfg.LLMModel

	switch cfg.LLMProvider {
	case config.ProviderOllama:
		model, err = ollama.New(
			ollama.WithModel(cfg.LLMModel),
			ollama.WithServerURL(cfg.OllamaHost),
		)
		if err != nil {
			return nil, fmt.Errorf("create ollama model: %w", err)
		}

	case config.ProviderOpenAI:
		if cfg.OpenAIAPIKey == "" {
			return nil, fmt.Errorf("OpenAI API key required")
		}
		model, err = openai.New(
			openai.WithToken(cfg.OpenAIAPIKey),
			openai.WithModel(cfg.LLMModel),
		)
		if err != nil {
			return nil, fmt.Errorf("create openai model: %w", err)
		}

	case config.ProviderAnthropic:
		if cfg.AnthropicAPIKey == "" {
			return nil, fmt.Errorf("Anthropic API key required")
		}
		model, err = anthropic.New(
			anthropic.WithToken(cfg.AnthropicAPIKey),
			anthropic.WithModel(cfg.LLMModel),
		)
		if err != nil {
			return nil, fmt.Errorf("create anthropic model: %w", err)
		}

	case config.ProviderBedrock:
		awsCfg, err := awsconfig.LoadDefaultConfig(ctx)
		if err != nil {
			return nil, fmt.Errorf("load aws config: %w", err)
		}
		client := bedrockruntime.NewFromConfig(awsCfg)
		model, err = bedrock.New(
			bedrock.WithClient(client),
			bedrock.WithModel(cfg.BedrockModel),
		)
		if err != nil {
			return nil, fmt.Errorf("create bedrock model: %w", err)
		}
		name = cfg.BedrockModel

	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", cfg.LLMProvider)
	}

	return &Model{
		llm:       model,
		modelName: name,
		metrics:   mc,
	}, nil
}

// Model returns the LLM model name.
func (m *Model) Model() string {
	return m.modelName
}

// Generate generates text from a single prompt.
func (m *Model) Generate(ctx context.Context, op, prompt string, opts ...llms.CallOption) (string, error) {
	return m.GenerateMessages(ctx, op, []llms.MessageContent{
		llms.TextParts(llms.ChatMessageTypeHuman, prompt),
	}, opts...)
}

// GenerateWithSystem generates text with a system prompt.
func (m *Model) GenerateWithSystem(ctx context.Context, op, systemPrompt, userPrompt string, opts ...llms.CallOption) (string, error) {
	return m.GenerateMessages(ctx, op, []llms.MessageContent{
		llms.TextParts(llms.ChatMessageTypeSystem, systemPrompt),
		llms.TextParts(llms.ChatMessageTypeHuman, userPrompt),
	}, opts...)
}

// GenerateMessages runs a full message exchange. op names the operation for
// metrics. Fatal API errors (auth, billing, quota) are wrapped with
// ErrFatalAPI so callers can stop retrying.
func (m *Model) GenerateMessages(ctx context.Context, op string, messages []llms.MessageContent, opts ...llms.CallOption) (string, error) {
	start := time.Now()
	response, err := m.llm.GenerateContent(ctx, messages, opts...)
	if err != nil {
		return "", wrapFatalError(fmt.Errorf("generate: %w", err))
	}

	if len(response.Choices) == 0 {
		return "", fmt.Errorf("no response choices")
	}
	choice := response.Choices[0]

	if m.metrics != nil {
		in, out := tokenUsage(choice.GenerationInfo)
		m.metrics.RecordLLMUsage(op, time.Since(start), in, out)
	}

	return choice.Content, nil
}

// tokenUsage pulls token counts out of provider-specific generation info.
// OpenAI reports PromptTokens/CompletionTokens, Anthropic input_tokens/
// output_tokens; absent keys count as zero.
func tokenUsage(info map[string]any) (input, output int64) {
	get := func(keys ...string) int64 {
		for _, k := range keys {
			switch v := info[k].(type) {
			case int:
				return int64(v)
			case int64:
				return v
			case float64:
				return int64(v)
			}
		}
		return 0
	}
	return get("PromptTokens", "input_tokens"), get("CompletionTokens", "output_tokens")
}
