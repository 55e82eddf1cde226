package hosted

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/oauth2"

	"github.com/satriahrh/arunika/avatar/domain"
	"github.com/satriahrh/arunika/avatar/domain/repositories"
)

const (
	defaultTokenURL     = "https://iam.cloud.ibm.com/identity/token"
	defaultTimeout      = 30 * time.Second
	defaultPrompt       = "You are a helpful assistant. Answer the user's message concisely."
	defaultMaxNewTokens = 300
)

// Config holds configuration for the hosted model client
type Config struct {
	APIKey      string
	TokenURL    string
	GenerateURL string
	ModelID     string
	ProjectID   string
	Timeout     time.Duration
}

// Client calls a self-hosted text generation endpoint authorized by an
// API-key token exchange.
type Client struct {
	generateURL string
	modelID     string
	projectID   string
	http        *http.Client
	logger      *zap.Logger
}

var _ repositories.HostedModel = (*Client)(nil)

type generationParameters struct {
	DecodingMethod string `json:"decoding_method"`
	MaxNewTokens   int    `json:"max_new_tokens"`
}

type generationRequest struct {
	Input      string               `json:"input"`
	ModelID    string               `json:"model_id,omitempty"`
	ProjectID  string               `json:"project_id,omitempty"`
	Parameters generationParameters `json:"parameters"`
}

type generationResponse struct {
	Results []struct {
		GeneratedText string `json:"generated_text"`
	} `json:"results"`
}

// ValidateConfig validates the Config
func ValidateConfig(config Config) error {
	if config.APIKey == "" {
		return fmt.Errorf("%w: hosted model API key is required", domain.ErrProviderNotConfigured)
	}
	if config.GenerateURL == "" {
		return fmt.Errorf("%w: hosted model generate URL is required", domain.ErrProviderNotConfigured)
	}
	if config.Timeout < 0 {
		return fmt.Errorf("timeout must be positive, got %s", config.Timeout)
	}
	return nil
}

// NewClient creates a hosted model client. Tokens are fetched lazily on the first call.
func NewClient(config Config, logger *zap.Logger) (*Client, error) {
	if err := ValidateConfig(config); err != nil {
		return nil, err
	}

	tokenURL := config.TokenURL
	if tokenURL == "" {
		tokenURL = defaultTokenURL
	}

	timeout := config.Timeout
	if timeout == 0 {
		timeout = defaultTimeout
	}

	source := &apiKeyTokenSource{
		tokenURL: tokenURL,
		apiKey:   config.APIKey,
		client:   &http.Client{Timeout: timeout},
		logger:   logger,
		now:      time.Now,
	}

	httpClient := oauth2.NewClient(context.Background(), oauth2.ReuseTokenSource(nil, source))
	httpClient.Timeout = timeout

	return &Client{
		generateURL: config.GenerateURL,
		modelID:     config.ModelID,
		projectID:   config.ProjectID,
		http:        httpClient,
		logger:      logger,
	}, nil
}

// Generate renders the prompt template with the message and returns the generated text.
// A "{{message}}" placeholder in prompt is replaced; otherwise the message is appended.
func (c *Client) Generate(ctx context.Context, prompt, message string) (string, error) {
	request := generationRequest{
		Input:     renderPrompt(prompt, message),
		ModelID:   c.modelID,
		ProjectID: c.projectID,
		Parameters: generationParameters{
			DecodingMethod: "greedy",
			MaxNewTokens:   defaultMaxNewTokens,
		},
	}

	body, err := json.Marshal(request)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.generateURL, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to create HTTP request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.http.Do(httpReq)
	if err != nil {
		c.logger.Error("Hosted model request failed", zap.Error(err))
		if errors.Is(err, context.DeadlineExceeded) || os.IsTimeout(err) {
			return "", fmt.Errorf("%w: hosted model timed out: %w", domain.ErrUpstreamCall, context.DeadlineExceeded)
		}
		return "", fmt.Errorf("%w: hosted model: %v", domain.ErrUpstreamCall, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		errorBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		c.logger.Error("Hosted model returned error",
			zap.Int("statusCode", resp.StatusCode),
			zap.String("response", string(errorBody)))
		return "", fmt.Errorf("%w: hosted model returned %d", domain.ErrUpstreamCall, resp.StatusCode)
	}

	var payload generationResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", fmt.Errorf("%w: failed to decode hosted model response: %v", domain.ErrMalformedUpstreamOutput, err)
	}
	if len(payload.Results) == 0 {
		return "", fmt.Errorf("%w: hosted model returned no results", domain.ErrMalformedUpstreamOutput)
	}

	text := strings.TrimSpace(payload.Results[0].GeneratedText)
	c.logger.Info("Hosted model generation completed",
		zap.Int("responseLength", len(text)),
		zap.Duration("took", time.Since(start)))
	return text, nil
}

func renderPrompt(prompt, message string) string {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		prompt = defaultPrompt
	}
	if strings.Contains(prompt, "{{message}}") {
		return strings.ReplaceAll(prompt, "{{message}}", message)
	}
	return prompt + "\n\n" + message
}
