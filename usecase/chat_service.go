package usecase

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/satriahrh/arunika/avatar/domain"
	"github.com/satriahrh/arunika/avatar/domain/repositories"
	"github.com/satriahrh/arunika/avatar/internal/workspace"
)

// Credentials reports whether the live path can run
type Credentials interface {
	HasLLMCredentials() bool
	HasTTSCredentials() bool
}

// ChatService turns one user message into a fully materialized avatar reply
type ChatService struct {
	llm          repositories.LanguageModel
	assets       repositories.CannedAssets
	enricher     *Enricher
	artifacts    *workspace.Manager
	credentials  Credentials
	systemPrompt string
	logger       *zap.Logger
}

// NewChatService creates a new chat service. llm may be nil when credentials are missing.
func NewChatService(
	llm repositories.LanguageModel,
	assets repositories.CannedAssets,
	enricher *Enricher,
	artifacts *workspace.Manager,
	credentials Credentials,
	systemPrompt string,
	logger *zap.Logger,
) *ChatService {
	return &ChatService{
		llm:          llm,
		assets:       assets,
		enricher:     enricher,
		artifacts:    artifacts,
		credentials:  credentials,
		systemPrompt: systemPrompt,
		logger:       logger,
	}
}

// Route picks the path a message takes
func (s *ChatService) Route(message string) domain.Route {
	if strings.TrimSpace(message) == "" {
		return domain.RouteInputMissing
	}
	if s.llm == nil || !s.credentials.HasLLMCredentials() || !s.credentials.HasTTSCredentials() {
		return domain.RouteCredentialsMissing
	}
	return domain.RouteLive
}

// Handle answers one request. Either every message is returned fully enriched or an error is.
func (s *ChatService) Handle(ctx context.Context, req domain.ChatRequest) (*domain.ChatResponse, error) {
	route := s.Route(req.Message)
	s.logger.Info("Handling chat request", zap.String("route", string(route)))

	switch route {
	case domain.RouteInputMissing:
		return s.canned(ctx, CannedSetIntro)
	case domain.RouteCredentialsMissing:
		return s.canned(ctx, CannedSetAPI)
	default:
		return s.live(ctx, req.Message)
	}
}

func (s *ChatService) canned(ctx context.Context, set string) (*domain.ChatResponse, error) {
	drafts := CannedReplies[set]
	messages := make([]domain.ReplyMessage, 0, len(drafts))

	for i, draft := range drafts {
		audio, lipSync, err := s.assets.Load(ctx, set, i)
		if err != nil {
			return nil, fmt.Errorf("failed to load canned reply %s_%d: %w", set, i, err)
		}
		message := draft.Reply()
		message.Audio = base64.StdEncoding.EncodeToString(audio)
		message.LipSync = lipSync
		messages = append(messages, message)
	}

	return &domain.ChatResponse{Messages: messages}, nil
}

func (s *ChatService) live(ctx context.Context, userText string) (*domain.ChatResponse, error) {
	requestID := uuid.NewString()
	logger := s.logger.With(zap.String("requestID", requestID))
	start := time.Now()

	raw, err := s.llm.Complete(ctx, s.systemPrompt, userText)
	if err != nil {
		return nil, fmt.Errorf("language model call failed: %w", err)
	}

	output, err := domain.ParseLLMOutput(raw)
	if err != nil {
		logger.Warn("Language model returned malformed output", zap.String("raw", truncate(raw, 200)))
		return nil, err
	}

	drafts := output.Drafts()
	if len(drafts) > domain.MaxReplyMessages {
		logger.Warn("Truncating reply", zap.Int("received", len(drafts)), zap.Int("max", domain.MaxReplyMessages))
		drafts = drafts[:domain.MaxReplyMessages]
	}

	scope, err := s.artifacts.Open(requestID)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := scope.Close(); err != nil {
			logger.Warn("Failed to clean up request scope", zap.Error(err))
		}
	}()

	messages := make([]domain.ReplyMessage, 0, len(drafts))
	for i, draft := range drafts {
		audio, lipSync, err := s.enricher.Enrich(ctx, scope, i, draft.Text)
		if err != nil {
			return nil, fmt.Errorf("message %d: %w", i, err)
		}
		message := draft.Reply()
		message.Audio = audio
		message.LipSync = lipSync
		messages = append(messages, message)
	}

	logger.Info("Chat reply assembled",
		zap.Int("messages", len(messages)),
		zap.Duration("took", time.Since(start)))
	return &domain.ChatResponse{Messages: messages}, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
