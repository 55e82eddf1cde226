package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// LLM providers selectable with LLM_PROVIDER
const (
	ProviderOpenAI = "openai"
	ProviderGemini = "gemini"
)

// Config is read once at startup and never mutated afterwards
type Config struct {
	Port               string        `env:"PORT" envDefault:"3000"`
	CORSAllowedOrigins []string      `env:"CORS_ALLOWED_ORIGINS" envSeparator:"," envDefault:"https://mentor-ai-avatar-front-end.vercel.app,http://localhost:3000"`
	FrontendURL        string        `env:"AVATAR_FRONTEND_URL" envDefault:"https://mentor-ai-avatar-front-end.vercel.app/"`
	RequestTimeout     time.Duration `env:"REQUEST_TIMEOUT" envDefault:"120s"`

	LogLevel       string `env:"LOG_LEVEL" envDefault:"info"`
	LogDevelopment bool   `env:"LOG_DEVELOPMENT"`

	LLM      LLMConfig
	TTS      TTSConfig
	Hosted   HostedConfig
	Pipeline PipelineConfig
}

// LLMConfig selects and configures the chat model
type LLMConfig struct {
	Provider      string        `env:"LLM_PROVIDER" envDefault:"openai"`
	OpenAIAPIKey  string        `env:"OPENAI_API_KEY"`
	OpenAIModel   string        `env:"OPENAI_MODEL" envDefault:"gpt-3.5-turbo-1106"`
	OpenAIBaseURL string        `env:"OPENAI_BASE_URL"`
	GeminiAPIKey  string        `env:"GEMINI_API_KEY"`
	GeminiModel   string        `env:"GEMINI_MODEL" envDefault:"gemini-2.0-flash"`
	MaxTokens     int           `env:"LLM_MAX_TOKENS" envDefault:"1000"`
	Temperature   float64       `env:"LLM_TEMPERATURE" envDefault:"0.6"`
	Persona       string        `env:"AVATAR_PERSONA" envDefault:"You are a virtual girlfriend."`
	Timeout       time.Duration `env:"LLM_TIMEOUT" envDefault:"30s"`
}

// TTSConfig configures ElevenLabs
type TTSConfig struct {
	APIKey       string        `env:"ELEVEN_LABS_API_KEY"`
	APIBaseURL   string        `env:"ELEVEN_LABS_API_BASE_URL"`
	VoiceID      string        `env:"ELEVEN_LABS_VOICE_ID" envDefault:"9BWtsMINqrJLrRacOk9x"`
	ModelID      string        `env:"ELEVEN_LABS_MODEL_ID"`
	OutputFormat string        `env:"ELEVEN_LABS_OUTPUT_FORMAT" envDefault:"mp3_44100_128"`
	Stability    float64       `env:"ELEVEN_LABS_STABILITY"`
	Clarity      float64       `env:"ELEVEN_LABS_CLARITY"`
	Timeout      time.Duration `env:"TTS_TIMEOUT" envDefault:"30s"`
}

// HostedConfig configures the self-hosted model behind POST /generate
type HostedConfig struct {
	APIKey      string        `env:"HOSTED_API_KEY"`
	TokenURL    string        `env:"HOSTED_TOKEN_URL" envDefault:"https://iam.cloud.ibm.com/identity/token"`
	GenerateURL string        `env:"HOSTED_GENERATE_URL"`
	ModelID     string        `env:"HOSTED_MODEL_ID"`
	ProjectID   string        `env:"HOSTED_PROJECT_ID"`
	Timeout     time.Duration `env:"HOSTED_TIMEOUT" envDefault:"30s"`
}

// PipelineConfig covers the enrichment pipeline and its artifacts
type PipelineConfig struct {
	FFmpegPath       string        `env:"FFMPEG_PATH" envDefault:"ffmpeg"`
	TranscodeTimeout time.Duration `env:"TRANSCODE_TIMEOUT" envDefault:"20s"`
	AssetsDir        string        `env:"ASSETS_DIR" envDefault:"audios"`
	ArtifactDir      string        `env:"ARTIFACT_DIR"`
	KeepArtifacts    bool          `env:"KEEP_ARTIFACTS"`
	ArtifactTTL      time.Duration `env:"ARTIFACT_TTL" envDefault:"1h"`
	JanitorInterval  time.Duration `env:"JANITOR_INTERVAL" envDefault:"10m"`
	RoundedO         bool          `env:"LIPSYNC_ROUNDED_O"`
}

// Load reads an optional .env file and then the process environment
func Load() (*Config, error) {
	// .env is optional; real environment variables win
	_ = godotenv.Load()

	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}

	if cfg.Pipeline.ArtifactDir == "" {
		cfg.Pipeline.ArtifactDir = filepath.Join(os.TempDir(), "avatar-artifacts")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks values that would otherwise fail later at request time
func (c *Config) Validate() error {
	switch c.LLM.Provider {
	case ProviderOpenAI, ProviderGemini:
	default:
		return fmt.Errorf("unsupported LLM_PROVIDER %q", c.LLM.Provider)
	}

	if c.LLM.Temperature < 0 || c.LLM.Temperature > 2 {
		return fmt.Errorf("LLM_TEMPERATURE must be between 0 and 2, got %f", c.LLM.Temperature)
	}

	for name, d := range map[string]time.Duration{
		"LLM_TIMEOUT":       c.LLM.Timeout,
		"TTS_TIMEOUT":       c.TTS.Timeout,
		"TRANSCODE_TIMEOUT": c.Pipeline.TranscodeTimeout,
		"HOSTED_TIMEOUT":    c.Hosted.Timeout,
		"REQUEST_TIMEOUT":   c.RequestTimeout,
	} {
		if d <= 0 {
			return fmt.Errorf("%s must be positive, got %s", name, d)
		}
	}
	return nil
}

// HasLLMCredentials reports whether the selected LLM provider has a usable key
func (c *Config) HasLLMCredentials() bool {
	if c.LLM.Provider == ProviderGemini {
		return isUsableKey(c.LLM.GeminiAPIKey)
	}
	return isUsableKey(c.LLM.OpenAIAPIKey)
}

// HasTTSCredentials reports whether ElevenLabs has a usable key
func (c *Config) HasTTSCredentials() bool {
	return isUsableKey(c.TTS.APIKey)
}

// HasHostedCredentials reports whether POST /generate can reach its provider
func (c *Config) HasHostedCredentials() bool {
	return isUsableKey(c.Hosted.APIKey) && c.Hosted.GenerateURL != ""
}

// isUsableKey treats empty, "-" and "your-..." template values as missing
func isUsableKey(key string) bool {
	key = strings.TrimSpace(key)
	if key == "" || key == "-" {
		return false
	}
	return !strings.HasPrefix(strings.ToLower(key), "your")
}
