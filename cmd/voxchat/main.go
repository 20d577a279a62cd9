package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/term"

	"github.com/jamalbot204/voxchat"
	"github.com/jamalbot204/voxchat/tts"
)

// setupLogging directs log output to a file for easier debugging.
func setupLogging() *os.File {
	logFilePath := "voxchat-debug.log"
	f, err := tea.LogToFile(logFilePath, "voxchat")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening log file '%s': %v\n", logFilePath, err)
		return nil
	}
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)
	log.SetOutput(f)
	return f
}

func main() {
	modelFlag := flag.String("model", "", "Chat model ID to use.")
	audioFlag := flag.Bool("audio", true, "Enable spoken replies.")
	voiceFlag := flag.String("voice", "alloy", "Voice for audio output (e.g., alloy, nova).")
	ttsModelFlag := flag.String("tts-model", "tts-1", "Speech synthesis model.")
	ttsSpeedFlag := flag.Float64("tts-speed", 1.0, "Provider-side synthesis speed (0.25-4.0).")
	apiKeyFlag := flag.String("api-key", "", "OpenAI API Key (overrides OPENAI_API_KEY env var).")
	cartesiaKeyFlag := flag.String("cartesia-key", "", "Cartesia API key; switches synthesis to the streaming websocket API (overrides CARTESIA_API_KEY env var).")
	cartesiaVoiceFlag := flag.String("cartesia-voice", "", "Cartesia voice ID (used with --cartesia-key).")
	cacheFileFlag := flag.String("audio-cache", "", "SQLite file for persisting fetched audio. Empty keeps audio in memory only.")
	systemPromptFlag := flag.String("system-prompt", "", "System prompt to use for the conversation.")
	systemPromptFileFlag := flag.String("system-prompt-file", "", "Load system prompt from a file.")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [options]\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Terminal chat with spoken replies.\n\nOptions:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nEnvironment Variables:\n")
		fmt.Fprintf(os.Stderr, "  OPENAI_API_KEY:   API key (used if --api-key is not set).\n")
		fmt.Fprintf(os.Stderr, "  CARTESIA_API_KEY: Streaming TTS key (used if --cartesia-key is not set).\n")
	}
	flag.Parse()

	logFile := setupLogging()
	if logFile != nil {
		defer logFile.Close()
		log.Println("--- Application Start ---")
		log.Printf("CLI Flags: model=%q audio=%t voice=%q cache=%q api-key-set=%t",
			*modelFlag, *audioFlag, *voiceFlag, *cacheFileFlag, *apiKeyFlag != "")
	} else {
		log.SetOutput(io.Discard)
	}

	if !term.IsTerminal(int(os.Stdout.Fd())) {
		fmt.Fprintln(os.Stderr, "Error: voxchat needs an interactive terminal.")
		os.Exit(1)
	}

	apiKey := *apiKeyFlag
	if apiKey == "" {
		apiKey = os.Getenv("OPENAI_API_KEY")
	}
	if apiKey == "" {
		fmt.Fprintln(os.Stderr, "Error: no API key provided via --api-key flag or OPENAI_API_KEY env var.")
		os.Exit(1)
	}

	systemPrompt := *systemPromptFlag
	if *systemPromptFileFlag != "" {
		data, err := os.ReadFile(*systemPromptFileFlag)
		if err != nil {
			log.Printf("Warning: Failed to read system prompt file: %v", err)
			fmt.Fprintf(os.Stderr, "Warning: Failed to read system prompt file: %v\n", err)
		} else {
			systemPrompt = string(data)
			log.Printf("Loaded system prompt from file: %s", *systemPromptFileFlag)
		}
	}

	opts := []voxchat.Option{
		voxchat.WithAPIKey(apiKey),
		voxchat.WithAudioOutput(*audioFlag, *voiceFlag),
		voxchat.WithTTSSettings(tts.Settings{
			Model: *ttsModelFlag,
			Voice: *voiceFlag,
			Speed: *ttsSpeedFlag,
		}),
	}

	if *modelFlag != "" {
		opts = append(opts, voxchat.WithModel(apiKey, *modelFlag))
	}
	if systemPrompt != "" {
		opts = append(opts, voxchat.WithSystemPrompt(systemPrompt))
	}
	if *cacheFileFlag != "" {
		opts = append(opts, voxchat.WithAudioCacheFile(*cacheFileFlag))
	}

	cartesiaKey := *cartesiaKeyFlag
	if cartesiaKey == "" {
		cartesiaKey = os.Getenv("CARTESIA_API_KEY")
	}
	if cartesiaKey != "" {
		log.Println("Using Cartesia streaming synthesis")
		opts = append(opts, voxchat.WithTTSFetcher(tts.NewStreamFetcher(tts.StreamConfig{
			APIKey:  cartesiaKey,
			VoiceID: *cartesiaVoiceFlag,
		})))
	}

	model, err := voxchat.New(opts...)
	if err != nil {
		log.Printf("Failed to initialize model: %v", err)
		fmt.Fprintf(os.Stderr, "Error initializing: %v\n", err)
		os.Exit(1)
	}

	p := tea.NewProgram(
		model,
		tea.WithMouseCellMotion(),
	)

	log.Println("Starting Bubble Tea program...")
	if _, err := p.Run(); err != nil {
		log.Printf("Error running program: %v", err)
		fmt.Fprintf(os.Stderr, "Error running program: %v\n", err)
		os.Exit(1)
	}

	log.Println("--- Application End ---")
}
