package llm

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
	"google.golang.org/genai"

	"github.com/satriahrh/arunika/avatar/domain"
	"github.com/satriahrh/arunika/avatar/domain/repositories"
)

const (
	defaultGeminiModel = "gemini-2.0-flash"
	defaultMaxTokens   = 1000
	defaultTemperature = 0.6
	defaultTimeout     = 30 * time.Second
)

// GeminiConfig holds configuration for the Gemini adapter
type GeminiConfig struct {
	APIKey      string
	Model       string
	MaxTokens   int
	Temperature float64
	Timeout     time.Duration

	// BaseURL overrides the API endpoint, used against fakes
	BaseURL    string
	HTTPClient *http.Client
}

// GeminiLLM implements the LanguageModel interface using Google's Gemini API
type GeminiLLM struct {
	client      *genai.Client
	logger      *zap.Logger
	model       string
	maxTokens   int
	temperature float64
	timeout     time.Duration
}

var _ repositories.LanguageModel = (*GeminiLLM)(nil)

// ValidateGeminiConfig validates the GeminiConfig
func ValidateGeminiConfig(config GeminiConfig) error {
	if config.APIKey == "" {
		return fmt.Errorf("Google AI API key is required")
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

// NewGeminiLLM creates a new Gemini LLM instance
func NewGeminiLLM(ctx context.Context, config GeminiConfig, logger *zap.Logger) (*GeminiLLM, error) {
	if err := ValidateGeminiConfig(config); err != nil {
		return nil, err
	}

	clientConfig := &genai.ClientConfig{
		APIKey:     config.APIKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: config.HTTPClient,
	}
	if config.BaseURL != "" {
		clientConfig.HTTPOptions = genai.HTTPOptions{BaseURL: config.BaseURL}
	}

	client, err := genai.NewClient(ctx, clientConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	model := config.Model
	if model == "" {
		model = defaultGeminiModel
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

	return &GeminiLLM{
		client:      client,
		logger:      logger,
		model:       model,
		maxTokens:   maxTokens,
		temperature: config.Temperature,
		timeout:     timeout,
	}, nil
}

// Complete sends one system + user turn and returns the raw JSON text of the reply
func (g *GeminiLLM) Complete(ctx context.Context, systemPrompt, userText string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	config := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(systemPrompt, genai.RoleUser),
		ResponseMIMEType:  "application/json",
		Temperature:       genai.Ptr(float32(g.temperature)),
		MaxOutputTokens:   int32(g.maxTokens),
	}
	contents := []*genai.Content{genai.NewContentFromText(userText, genai.RoleUser)}

	start := time.Now()
	response, err := g.client.Models.GenerateContent(ctx, g.model, contents, config)
	if err != nil {
		g.logger.Error("Failed to generate content", zap.String("model", g.model), zap.Error(err))
		return "", upstreamError("gemini", err)
	}

	if len(response.Candidates) == 0 || response.Candidates[0].Content == nil {
		return "", fmt.Errorf("%w: gemini returned no candidates", domain.ErrMalformedUpstreamOutput)
	}

	var responseText strings.Builder
	for _, part := range response.Candidates[0].Content.Parts {
		if part.Text != "" {
			responseText.WriteString(part.Text)
		}
	}
	if responseText.Len() == 0 {
		return "", fmt.Errorf("%w: gemini returned empty content", domain.ErrMalformedUpstreamOutput)
	}

	g.logger.Info("Gemini completion received",
		zap.String("model", g.model),
		zap.Int("responseLength", responseText.Len()),
		zap.Duration("took", time.Since(start)))
	return responseText.String(), nil
}
