package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// MaxReplyMessages caps how many reply messages the live path returns
const MaxReplyMessages = 3

// FacialExpression is the face the avatar shows while speaking a message
type FacialExpression string

const (
	ExpressionSmile     FacialExpression = "smile"
	ExpressionSad       FacialExpression = "sad"
	ExpressionAngry     FacialExpression = "angry"
	ExpressionSurprised FacialExpression = "surprised"
	ExpressionFunnyFace FacialExpression = "funnyFace"
	ExpressionDefault   FacialExpression = "default"
)

// Animation is the body animation clip played with a message
type Animation string

const (
	AnimationTalking0  Animation = "Talking_0"
	AnimationTalking1  Animation = "Talking_1"
	AnimationTalking2  Animation = "Talking_2"
	AnimationCrying    Animation = "Crying"
	AnimationLaughing  Animation = "Laughing"
	AnimationRumba     Animation = "Rumba"
	AnimationIdle      Animation = "Idle"
	AnimationTerrified Animation = "Terrified"
	AnimationAngry     Animation = "Angry"
)

// FacialExpressions lists the expressions the renderer knows about
var FacialExpressions = []FacialExpression{
	ExpressionSmile, ExpressionSad, ExpressionAngry, ExpressionSurprised, ExpressionFunnyFace, ExpressionDefault,
}

// Animations lists the animation clips the renderer knows about
var Animations = []Animation{
	AnimationTalking0, AnimationTalking1, AnimationTalking2, AnimationCrying, AnimationLaughing,
	AnimationRumba, AnimationIdle, AnimationTerrified, AnimationAngry,
}

// ReplyMessage is one message of the avatar's reply.
// Audio and LipSync are attached once by enrichment and not touched afterwards.
type ReplyMessage struct {
	Text             string           `json:"text"`
	FacialExpression FacialExpression `json:"facialExpression"`
	Animation        Animation        `json:"animation"`
	Audio            string           `json:"audio,omitempty"` // base64 encoded
	LipSync          LipSync          `json:"lipsync,omitempty"`
}

// ChatRequest is the body of POST /chat
type ChatRequest struct {
	Message string `json:"message"`
}

// ChatResponse is the fully materialized reply returned to the renderer
type ChatResponse struct {
	Messages []ReplyMessage `json:"messages"`
}

// MessageDraft is a reply message as produced by the language model, before enrichment
type MessageDraft struct {
	Text             string           `json:"text"`
	FacialExpression FacialExpression `json:"facialExpression"`
	Animation        Animation        `json:"animation"`
}

// LLMOutput holds the model's reply, which arrives either as a bare array of drafts
// or wrapped in an object carrying a "messages" property.
type LLMOutput struct {
	drafts []MessageDraft
}

// ParseLLMOutput decodes raw model output into an LLMOutput
func ParseLLMOutput(raw string) (LLMOutput, error) {
	drafts, err := decodeDrafts([]byte(raw), 2)
	if err != nil {
		return LLMOutput{}, err
	}
	return LLMOutput{drafts: drafts}, nil
}

// UnmarshalJSON accepts both the bare and the wrapped shape.
// A wrapped value whose "messages" is itself wrapped is unwrapped once more.
func (o *LLMOutput) UnmarshalJSON(data []byte) error {
	drafts, err := decodeDrafts(data, 2)
	if err != nil {
		return err
	}
	o.drafts = drafts
	return nil
}

// Drafts returns the normalized list of drafts
func (o LLMOutput) Drafts() []MessageDraft {
	return o.drafts
}

func decodeDrafts(data []byte, depth int) ([]MessageDraft, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("%w: empty model output", ErrMalformedUpstreamOutput)
	}

	switch trimmed[0] {
	case '[':
		var drafts []MessageDraft
		if err := json.Unmarshal(trimmed, &drafts); err != nil {
			return nil, fmt.Errorf("%w: failed to decode message array: %v", ErrMalformedUpstreamOutput, err)
		}
		if drafts == nil {
			drafts = []MessageDraft{}
		}
		return drafts, nil
	case '{':
		if depth == 0 {
			return nil, fmt.Errorf("%w: messages nested too deeply", ErrMalformedUpstreamOutput)
		}
		var envelope struct {
			Messages json.RawMessage `json:"messages"`
		}
		if err := json.Unmarshal(trimmed, &envelope); err != nil {
			return nil, fmt.Errorf("%w: failed to decode message envelope: %v", ErrMalformedUpstreamOutput, err)
		}
		if len(envelope.Messages) == 0 || string(envelope.Messages) == "null" {
			return nil, fmt.Errorf("%w: envelope has no messages property", ErrMalformedUpstreamOutput)
		}
		return decodeDrafts(envelope.Messages, depth-1)
	default:
		return nil, fmt.Errorf("%w: expected JSON array or object", ErrMalformedUpstreamOutput)
	}
}

// Reply converts a draft into a reply message awaiting enrichment
func (d MessageDraft) Reply() ReplyMessage {
	return ReplyMessage{
		Text:             d.Text,
		FacialExpression: d.FacialExpression,
		Animation:        d.Animation,
	}
}
