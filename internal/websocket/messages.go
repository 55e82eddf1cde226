package websocket

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/satriahrh/arunika/avatar/domain"
)

// MessageType defines the type of WebSocket message
type MessageType string

// Supported message types
const (
	MessageTypeChat         MessageType = "chat"
	MessageTypeChatResponse MessageType = "chat_response"
	MessageTypePing         MessageType = "ping"
	MessageTypePong         MessageType = "pong"
	MessageTypeError        MessageType = "error"
)

// BaseMessage defines the common structure for all WebSocket messages
type BaseMessage struct {
	Type      MessageType `json:"type"`
	Timestamp string      `json:"timestamp,omitempty"`
	MessageID string      `json:"message_id,omitempty"`
}

// ChatMessage is an inbound user message; an empty Message gets the intro reply
type ChatMessage struct {
	BaseMessage
	Message string `json:"message"`
}

// ChatResponseMessage carries the fully enriched reply to one ChatMessage
type ChatResponseMessage struct {
	BaseMessage
	Messages []domain.ReplyMessage `json:"messages"`
}

// PingMessage represents a ping message for connection health check
type PingMessage struct {
	BaseMessage
	Data string `json:"data,omitempty"`
}

// PongMessage represents a pong response
type PongMessage struct {
	BaseMessage
	Data string `json:"data,omitempty"`
}

// ErrorMessage represents an error response
type ErrorMessage struct {
	BaseMessage
	Code    string `json:"error_code"`
	Message string `json:"message"`
}

// MessageValidator provides validation for WebSocket messages
type MessageValidator struct{}

// NewMessageValidator creates a new message validator
func NewMessageValidator() *MessageValidator {
	return &MessageValidator{}
}

// ValidateMessage parses an incoming frame into *ChatMessage or *PingMessage
func (v *MessageValidator) ValidateMessage(messageBytes []byte) (interface{}, error) {
	var base BaseMessage
	if err := json.Unmarshal(messageBytes, &base); err != nil {
		return nil, fmt.Errorf("invalid JSON format: %w", err)
	}

	switch base.Type {
	case MessageTypeChat:
		var msg ChatMessage
		if err := json.Unmarshal(messageBytes, &msg); err != nil {
			return nil, fmt.Errorf("invalid chat message: %w", err)
		}
		return &msg, nil

	case MessageTypePing:
		var msg PingMessage
		if err := json.Unmarshal(messageBytes, &msg); err != nil {
			return nil, fmt.Errorf("invalid ping message: %w", err)
		}
		return &msg, nil

	case "":
		return nil, fmt.Errorf("message type is required")

	default:
		return nil, fmt.Errorf("unsupported message type: %s", base.Type)
	}
}

func newBase(t MessageType, messageID string) BaseMessage {
	return BaseMessage{
		Type:      t,
		Timestamp: time.Now().Format(time.RFC3339),
		MessageID: messageID,
	}
}

// CreateErrorMessage creates a standardized error message
func CreateErrorMessage(messageID, code, message string) *ErrorMessage {
	return &ErrorMessage{
		BaseMessage: newBase(MessageTypeError, messageID),
		Code:        code,
		Message:     message,
	}
}

// CreatePongMessage creates a pong response message
func CreatePongMessage(messageID, data string) *PongMessage {
	return &PongMessage{
		BaseMessage: newBase(MessageTypePong, messageID),
		Data:        data,
	}
}

// CreateChatResponseMessage wraps a reply for the client
func CreateChatResponseMessage(messageID string, resp *domain.ChatResponse) *ChatResponseMessage {
	messages := resp.Messages
	if messages == nil {
		messages = []domain.ReplyMessage{}
	}
	return &ChatResponseMessage{
		BaseMessage: newBase(MessageTypeChatResponse, messageID),
		Messages:    messages,
	}
}
