package voxchat

import (
	"fmt"

	"github.com/jamalbot204/voxchat/audiocache"
	"github.com/jamalbot204/voxchat/llm"
	"github.com/jamalbot204/voxchat/tts"
)

// WithAssistant sets the language model backend for chat replies.
func WithAssistant(a llm.Assistant) Option {
	return func(m *Model) error {
		m.assistant = a
		return nil
	}
}

// WithAPIKey configures both the chat assistant and the TTS fetcher against
// the OpenAI API with the given key.
func WithAPIKey(key string) Option {
	return func(m *Model) error {
		if key == "" {
			return fmt.Errorf("api key is empty")
		}
		if m.assistant == nil {
			m.assistant = llm.NewOpenAIAssistant(key, "")
		}
		if m.fetcher == nil {
			m.fetcher = tts.NewOpenAIFetcher(key)
		}
		return nil
	}
}

// WithModel sets the chat model name, replacing any assistant configured so
// far. Requires WithAPIKey to come first or an assistant to be set later.
func WithModel(apiKey, name string) Option {
	return func(m *Model) error {
		m.assistant = llm.NewOpenAIAssistant(apiKey, name)
		return nil
	}
}

// WithTTSFetcher sets the speech synthesis backend.
func WithTTSFetcher(f tts.Fetcher) Option {
	return func(m *Model) error {
		m.fetcher = f
		return nil
	}
}

// WithAudioOutput enables/disables audio output and optionally sets the voice.
func WithAudioOutput(enabled bool, voice ...string) Option {
	return func(m *Model) error {
		m.enableAudio = enabled
		if len(voice) > 0 && voice[0] != "" {
			m.ttsSettings.Voice = voice[0]
		}
		return nil
	}
}

// WithTTSSettings sets the synthesis model, voice and speed.
func WithTTSSettings(s tts.Settings) Option {
	return func(m *Model) error {
		m.ttsSettings = s
		return nil
	}
}

// WithAudioCache sets the audio cache backend.
func WithAudioCache(c audiocache.Cache) Option {
	return func(m *Model) error {
		m.cache = c
		return nil
	}
}

// WithAudioCacheFile persists fetched audio to a SQLite database at path, so
// replays across runs skip the synthesis round trip.
func WithAudioCacheFile(path string) Option {
	return func(m *Model) error {
		cache, err := audiocache.NewSQLite(path)
		if err != nil {
			return fmt.Errorf("failed to open audio cache: %w", err)
		}
		m.cache = cache
		return nil
	}
}

// WithSystemPrompt sets a system prompt for the conversation.
func WithSystemPrompt(prompt string) Option {
	return func(m *Model) error {
		m.systemPrompt = prompt
		return nil
	}
}
