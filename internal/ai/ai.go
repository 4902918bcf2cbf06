package ai

import (
	"context"
	"errors"
)

// Role identifies the author of a chat message.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is a single chat turn sent to a model or kept in a transcript.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// System, User and Assistant build messages with the matching role.
func System(content string) Message    { return Message{Role: RoleSystem, Content: content} }
func User(content string) Message      { return Message{Role: RoleUser, Content: content} }
func Assistant(content string) Message { return Message{Role: RoleAssistant, Content: content} }

// Completer sends a chat to a model and returns the text of the first choice.
type Completer interface {
	Complete(ctx context.Context, messages []Message, temperature float32, maxTokens int) (string, error)
}

var (
	// ErrRateLimited is returned once every retry attempt was answered with HTTP 429.
	ErrRateLimited = errors.New("llm rate-limited (429), please try again later")
	// ErrTooManyRequests marks a single attempt rejected with HTTP 429.
	// Providers wrap it so the retry loop can tell rate limits apart from other failures.
	ErrTooManyRequests = errors.New("too many requests")
	// ErrEmptyResponse is returned when the model produced no text.
	ErrEmptyResponse = errors.New("llm returned empty response")
)
