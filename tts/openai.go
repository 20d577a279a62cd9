package tts

import (
	"context"
	"fmt"
	"io"

	openai "github.com/sashabaranov/go-openai"
)

// OpenAIFetcher synthesizes speech via the OpenAI speech endpoint. Audio is
// requested as raw PCM (s16le, 24kHz, mono) so no container parsing is
// needed before decode.
type OpenAIFetcher struct {
	client *openai.Client
}

// NewOpenAIFetcher creates a fetcher with the given API key.
func NewOpenAIFetcher(apiKey string) *OpenAIFetcher {
	return &OpenAIFetcher{client: openai.NewClient(apiKey)}
}

// NewOpenAIFetcherWithConfig creates a fetcher against a custom endpoint,
// e.g. a compatible self-hosted server.
func NewOpenAIFetcherWithConfig(config openai.ClientConfig) *OpenAIFetcher {
	return &OpenAIFetcher{client: openai.NewClientWithConfig(config)}
}

// Fetch implements Fetcher.
func (f *OpenAIFetcher) Fetch(ctx context.Context, text string, settings Settings) ([]byte, error) {
	if text == "" {
		return nil, fmt.Errorf("empty text")
	}
	speed := settings.Speed
	if speed <= 0 {
		speed = 1.0
	}

	resp, err := f.client.CreateSpeech(ctx, openai.CreateSpeechRequest{
		Model:          openai.SpeechModel(settings.Model),
		Input:          text,
		Voice:          openai.SpeechVoice(settings.Voice),
		ResponseFormat: openai.SpeechResponseFormatPcm,
		Speed:          speed,
	})
	if err != nil {
		return nil, fmt.Errorf("speech request: %w", err)
	}
	defer resp.Close()

	data, err := io.ReadAll(resp)
	if err != nil {
		return nil, fmt.Errorf("reading speech response: %w", err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("speech response was empty")
	}
	return data, nil
}
