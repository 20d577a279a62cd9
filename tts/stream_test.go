package tts

import (
	"bytes"
	"context"
	"encoding/base64"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

var testUpgrader = websocket.Upgrader{}

// streamServer runs a fake websocket TTS endpoint. handle is called with the
// upgraded connection after the client's request has been read.
func streamServer(t *testing.T, handle func(conn *websocket.Conn, req streamRequest)) *StreamFetcher {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := testUpgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("upgrade failed: %v", err)
			return
		}
		defer conn.Close()

		var req streamRequest
		if err := conn.ReadJSON(&req); err != nil {
			t.Errorf("reading request: %v", err)
			return
		}
		handle(conn, req)
	}))
	t.Cleanup(srv.Close)

	return NewStreamFetcher(StreamConfig{
		URL:     "ws" + strings.TrimPrefix(srv.URL, "http"),
		APIKey:  "test-key",
		VoiceID: "voice-1",
	})
}

func TestStreamFetchCollectsBinaryAndBase64Chunks(t *testing.T) {
	binChunk := []byte{1, 2, 3, 4}
	b64Chunk := []byte{5, 6, 7, 8}

	f := streamServer(t, func(conn *websocket.Conn, req streamRequest) {
		if req.Transcript != "hello world" {
			t.Errorf("transcript = %q, want %q", req.Transcript, "hello world")
		}
		if req.OutputFmt.Encoding != "pcm_s16le" || req.OutputFmt.Container != "raw" {
			t.Errorf("output format = %+v, want raw pcm_s16le", req.OutputFmt)
		}
		if req.ContextID == "" {
			t.Error("request should carry a context id")
		}

		conn.WriteMessage(websocket.BinaryMessage, binChunk)
		conn.WriteJSON(streamResponse{
			Type: "chunk",
			Data: base64.StdEncoding.EncodeToString(b64Chunk),
		})
		conn.WriteJSON(streamResponse{Type: "done", Done: true})
	})

	audio, err := f.Fetch(context.Background(), "hello world", DefaultSettings())
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	want := append(append([]byte{}, binChunk...), b64Chunk...)
	if !bytes.Equal(audio, want) {
		t.Errorf("audio = %v, want %v", audio, want)
	}
}

func TestStreamFetchServerError(t *testing.T) {
	f := streamServer(t, func(conn *websocket.Conn, _ streamRequest) {
		conn.WriteJSON(streamResponse{Type: "error", Error: "voice not found"})
	})

	_, err := f.Fetch(context.Background(), "hello", DefaultSettings())
	if err == nil || !strings.Contains(err.Error(), "voice not found") {
		t.Errorf("Fetch error = %v, want server error surfaced", err)
	}
}

func TestStreamFetchNoAudioBeforeDone(t *testing.T) {
	f := streamServer(t, func(conn *websocket.Conn, _ streamRequest) {
		conn.WriteJSON(streamResponse{Type: "done", Done: true})
	})

	_, err := f.Fetch(context.Background(), "hello", DefaultSettings())
	if err == nil {
		t.Error("Fetch should fail when the stream produces no audio")
	}
}

func TestStreamFetchCancellation(t *testing.T) {
	f := streamServer(t, func(conn *websocket.Conn, _ streamRequest) {
		// Send nothing; block until the client side goes away.
		conn.ReadMessage()
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		_, err := f.Fetch(ctx, "hello", DefaultSettings())
		done <- err
	}()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if err != context.Canceled {
			t.Errorf("Fetch error = %v, want context.Canceled", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Fetch did not observe cancellation")
	}
}

func TestStreamFetchEmptyText(t *testing.T) {
	f := NewStreamFetcher(StreamConfig{})
	if _, err := f.Fetch(context.Background(), "", DefaultSettings()); err == nil {
		t.Error("Fetch of empty text should fail without dialing")
	}
}

func TestStreamConfigDefaults(t *testing.T) {
	f := NewStreamFetcher(StreamConfig{})
	if f.config.URL == "" || f.config.ModelID == "" || f.config.APIVersion == "" {
		t.Errorf("defaults not applied: %+v", f.config)
	}
	if f.config.SampleRate != 24000 {
		t.Errorf("default SampleRate = %d, want 24000", f.config.SampleRate)
	}
}
