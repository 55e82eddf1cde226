package llm

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/openai/openai-go/v3/shared"
	"go.uber.org/zap"

	"github.com/satriahrh/arunika/avatar/domain"
	"github.com/satriahrh/arunika/avatar/domain/repositories"
)

const defaultOpenAIModel = "gpt-3.5-turbo-1106"

// OpenAIConfig holds configuration for the OpenAI chat completions adapter
type OpenAIConfig struct {
	APIKey      string
	BaseURL     string
	Model       string
	MaxTokens   int
	Temperature float64
	Timeout     time.Duration
	HTTPClient  *http.Client
}

// OpenAILLM implements the LanguageModel interface with chat completions in JSON mode
type OpenAILLM struct {
	client      openai.Client
	logger      *zap.Logger
	model       string
	maxTokens   int
	temperature float64
	timeout     time.Duration
}

var _ repositories.LanguageModel = (*OpenAILLM)(nil)

// ValidateOpenAIConfig validates the OpenAIConfig
func ValidateOpenAIConfig(config OpenAIConfig) error {
	if config.APIKey == "" {
		return fmt.Errorf("OpenAI API key is required")
	}

	if config.Temperature < 0 || config.Temperature > 2 {
		return fmt.Errorf("temperature must be between 0 and 2, got %f", config.Temperature)
	}

	if config.MaxTokens < 0 {
		return fmt.Errorf("max tokens must be positive, got %d", config.MaxTokens)
	}

	if config.Timeout < 0 {
		return fmt.Errorf("timeout must be positive, got %s", config.Timeout)
	}

	return nil
}

// NewOpenAILLM creates a new OpenAI LLM instance
func NewOpenAILLM(config OpenAIConfig, logger *zap.Logger) (*OpenAILLM, error) {
	if err := ValidateOpenAIConfig(config); err != nil {
		return nil, err
	}

	// failures surface to the caller as-is, the pipeline never retries
	opts := []option.RequestOption{
		option.WithAPIKey(config.APIKey),
		option.WithMaxRetries(0),
	}
	if config.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(config.BaseURL))
	}
	if config.HTTPClient != nil {
		opts = append(opts, option.WithHTTPClient(config.HTTPClient))
	}

	model := config.Model
	if model == "" {
		model = defaultOpenAIModel
		logger.Info("Using default model", zap.String("model", model))
	}

	maxTokens := config.MaxTokens
	if maxTokens == 0 {
		maxTokens = defaultMaxTokens
	}

	timeout := config.Timeout
	if timeout == 0 {
		timeout = defaultTimeout
	}

	return &OpenAILLM{
		client:      openai.NewClient(opts...),
		logger:      logger,
		model:       model,
		maxTokens:   maxTokens,
		temperature: config.Temperature,
		timeout:     timeout,
	}, nil
}

// Complete sends one system + user turn and returns the raw JSON text of the reply
func (o *OpenAILLM) Complete(ctx context.Context, systemPrompt, userText string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, o.timeout)
	defer cancel()

	params := openai.ChatCompletionNewParams{
		Model: openai.ChatModel(o.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(systemPrompt),
			openai.UserMessage(userText),
		},
		MaxTokens:   openai.Int(int64(o.maxTokens)),
		Temperature: openai.Float(o.temperature),
		ResponseFormat: openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONObject: &shared.ResponseFormatJSONObjectParam{},
		},
	}

	start := time.Now()
	completion, err := o.client.Chat.Completions.New(ctx, params)
	if err != nil {
		o.logger.Error("Failed to create chat completion", zap.String("model", o.model), zap.Error(err))
		return "", upstreamError("openai", err)
	}

	if len(completion.Choices) == 0 {
		return "", fmt.Errorf("%w: openai returned no choices", domain.ErrMalformedUpstreamOutput)
	}
	content := completion.Choices[0].Message.Content
	if content == "" {
		return "", fmt.Errorf("%w: openai returned empty content", domain.ErrMalformedUpstreamOutput)
	}

	o.logger.Info("OpenAI completion received",
		zap.String("model", o.model),
		zap.Int64("totalTokens", completion.Usage.TotalTokens),
		zap.Int("responseLength", len(content)),
		zap.Duration("took", time.Since(start)))
	return content, nil
}
