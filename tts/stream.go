package tts

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	defaultStreamURL        = "wss://api.cartesia.ai/tts/websocket"
	defaultStreamModelID    = "sonic-2"
	defaultStreamAPIVersion = "2024-11-13"
)

// StreamConfig configures the websocket streaming fetcher.
type StreamConfig struct {
	URL        string
	APIKey     string
	ModelID    string
	VoiceID    string
	APIVersion string
	SampleRate int
}

// StreamFetcher retrieves speech over a streaming websocket TTS API
// (Cartesia-style protocol). The whole utterance is collected into one
// buffer; frames arrive either as binary PCM or as JSON chunks carrying
// base64 audio.
type StreamFetcher struct {
	config StreamConfig
}

// NewStreamFetcher creates a streaming fetcher with defaults filled in.
func NewStreamFetcher(config StreamConfig) *StreamFetcher {
	if config.URL == "" {
		config.URL = defaultStreamURL
	}
	if config.ModelID == "" {
		config.ModelID = defaultStreamModelID
	}
	if config.APIVersion == "" {
		config.APIVersion = defaultStreamAPIVersion
	}
	if config.SampleRate <= 0 {
		config.SampleRate = 24000
	}
	return &StreamFetcher{config: config}
}

type streamRequest struct {
	ModelID    string          `json:"model_id"`
	Transcript string          `json:"transcript"`
	Voice      streamVoice     `json:"voice"`
	OutputFmt  streamOutputFmt `json:"output_format"`
	ContextID  string          `json:"context_id"`
	Continue   bool            `json:"continue"`
	Language   string          `json:"language,omitempty"`
}

type streamVoice struct {
	Mode string `json:"mode"`
	ID   string `json:"id"`
}

type streamOutputFmt struct {
	Container  string `json:"container"`
	Encoding   string `json:"encoding"`
	SampleRate int    `json:"sample_rate"`
}

type streamResponse struct {
	Type      string `json:"type"`
	ContextID string `json:"context_id"`
	Done      bool   `json:"done"`
	Error     string `json:"error,omitempty"`
	Data      string `json:"data,omitempty"`
}

// Fetch implements Fetcher. The connection is closed when ctx is cancelled,
// which unblocks the read loop at its next suspension point.
func (f *StreamFetcher) Fetch(ctx context.Context, text string, settings Settings) ([]byte, error) {
	if text == "" {
		return nil, fmt.Errorf("empty text")
	}

	header := http.Header{}
	if f.config.APIKey != "" {
		header.Set("X-API-Key", f.config.APIKey)
	}
	header.Set("Cartesia-Version", f.config.APIVersion)

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, f.config.URL, header)
	if err != nil {
		return nil, fmt.Errorf("dialing tts stream: %w", err)
	}
	defer conn.Close()

	// Close the connection when ctx is cancelled so ReadMessage unblocks.
	watchDone := make(chan struct{})
	defer close(watchDone)
	go func() {
		select {
		case <-ctx.Done():
			conn.Close()
		case <-watchDone:
		}
	}()

	voiceID := f.config.VoiceID
	if voiceID == "" {
		voiceID = settings.Voice
	}
	req := streamRequest{
		ModelID:    f.config.ModelID,
		Transcript: text,
		Voice:      streamVoice{Mode: "id", ID: voiceID},
		OutputFmt: streamOutputFmt{
			Container:  "raw",
			Encoding:   "pcm_s16le",
			SampleRate: f.config.SampleRate,
		},
		ContextID: uuid.NewString(),
		Continue:  false,
	}
	if err := conn.WriteJSON(req); err != nil {
		return nil, fmt.Errorf("sending tts request: %w", err)
	}

	var audio []byte
	for {
		msgType, payload, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			return nil, fmt.Errorf("reading tts stream: %w", err)
		}

		switch msgType {
		case websocket.BinaryMessage:
			audio = append(audio, payload...)
		case websocket.TextMessage:
			var resp streamResponse
			if err := json.Unmarshal(payload, &resp); err != nil {
				return nil, fmt.Errorf("parsing tts frame: %w", err)
			}
			if resp.Error != "" {
				return nil, fmt.Errorf("tts stream error: %s", resp.Error)
			}
			if resp.Data != "" {
				chunk, err := base64.StdEncoding.DecodeString(resp.Data)
				if err != nil {
					return nil, fmt.Errorf("decoding tts chunk: %w", err)
				}
				audio = append(audio, chunk...)
			}
			if resp.Done {
				if len(audio) == 0 {
					return nil, fmt.Errorf("tts stream produced no audio")
				}
				return audio, nil
			}
		}
	}
}
