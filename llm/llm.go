// Package llm connects the chat UI to a language model provider.
package llm

import "context"

// Role identifies who produced a conversation turn.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Turn is one entry of the conversation history sent to the model.
type Turn struct {
	Role    Role
	Content string
}

// Assistant produces the model's reply to a conversation.
type Assistant interface {
	Reply(ctx context.Context, turns []Turn) (string, error)
}
