package llm

import (
	"context"
	"fmt"

	openai "github.com/sashabaranov/go-openai"
)

// DefaultModel is the chat model used when none is configured.
const DefaultModel = openai.GPT4oMini

// OpenAIAssistant talks to the OpenAI chat completions endpoint (or any
// compatible server).
type OpenAIAssistant struct {
	client       *openai.Client
	model        string
	systemPrompt string
}

// NewOpenAIAssistant creates an assistant with the given API key and model.
// An empty model selects DefaultModel.
func NewOpenAIAssistant(apiKey, model string) *OpenAIAssistant {
	return newAssistant(openai.NewClient(apiKey), model)
}

// NewOpenAIAssistantWithConfig creates an assistant against a custom endpoint.
func NewOpenAIAssistantWithConfig(config openai.ClientConfig, model string) *OpenAIAssistant {
	return newAssistant(openai.NewClientWithConfig(config), model)
}

func newAssistant(client *openai.Client, model string) *OpenAIAssistant {
	if model == "" {
		model = DefaultModel
	}
	return &OpenAIAssistant{client: client, model: model}
}

// SetSystemPrompt prepends a system turn to every request.
func (a *OpenAIAssistant) SetSystemPrompt(prompt string) {
	a.systemPrompt = prompt
}

// Reply implements Assistant.
func (a *OpenAIAssistant) Reply(ctx context.Context, turns []Turn) (string, error) {
	messages := make([]openai.ChatCompletionMessage, 0, len(turns)+1)
	if a.systemPrompt != "" {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: a.systemPrompt,
		})
	}
	for _, turn := range turns {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    string(turn.Role),
			Content: turn.Content,
		})
	}

	resp, err := a.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:    a.model,
		Messages: messages,
	})
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("chat completion returned no choices")
	}
	return resp.Choices[0].Message.Content, nil
}
