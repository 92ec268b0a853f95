package transcriber

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"
)

// ErrNoSpeech is returned when the recording produced no usable text.
var ErrNoSpeech = errors.New("no speech detected")

type NetworkMetrics struct {
	DNS         time.Duration
	ConnWait    time.Duration
	TCP         time.Duration
	TLS         time.Duration
	ReqHeaders  time.Duration
	ReqBody     time.Duration
	TTFB        time.Duration
	Download    time.Duration
	Total       time.Duration
	ConnReused  bool
	TLSProtocol string
}

func (m *NetworkMetrics) Sum() time.Duration {
	return m.ConnWait + m.DNS + m.TCP + m.TLS + m.ReqHeaders + m.ReqBody + m.TTFB + m.Download
}

func firstNonEmpty(h http.Header, keys ...string) string {
	for _, k := range keys {
		if v := h.Get(k); v != "" {
			return v
		}
	}
	return "?"
}

type Result struct {
	Text         string
	Metrics      *NetworkMetrics // nil for local transcribers
	RateLimit    string
	NoSpeechProb float64
	Duration     float64
}

type Transcriber interface {
	Name() string
	Transcribe(ctx context.Context, wav []byte) (*Result, error)
}

type Config struct {
	Provider string // auto, whisper-cli, groq, openai
	Language string // "auto" or empty lets the provider detect it
	Binary   string // whisper-cli executable
	Model    string // whisper-cli ggml model
	Threads  int
}

type baseTranscriber struct {
	client *apiClient
	apiURL string
	lang   string
}

// Warm pre-opens the API connection.
func (b *baseTranscriber) Warm() { b.client.Warm() }

func (b *baseTranscriber) language() string {
	if b.lang == "auto" {
		return ""
	}
	return b.lang
}

// New builds the transcriber named by cfg.Provider. "auto" prefers Groq,
// then OpenAI when their API keys are set, and falls back to whisper-cli.
func New(cfg Config) (Transcriber, error) {
	provider := cfg.Provider
	if provider == "" || provider == "auto" {
		switch {
		case os.Getenv("GROQ_API_KEY") != "":
			provider = "groq"
		case os.Getenv("OPENAI_API_KEY") != "":
			provider = "openai"
		default:
			provider = "whisper-cli"
		}
	}

	switch provider {
	case "groq":
		key := os.Getenv("GROQ_API_KEY")
		if key == "" {
			return nil, fmt.Errorf("groq: GROQ_API_KEY is not set")
		}
		return NewGroq(key, cfg.Language), nil
	case "openai":
		key := os.Getenv("OPENAI_API_KEY")
		if key == "" {
			return nil, fmt.Errorf("openai: OPENAI_API_KEY is not set")
		}
		return NewOpenAI(key, cfg.Language), nil
	case "whisper-cli":
		return NewWhisperCLI(cfg), nil
	}
	return nil, fmt.Errorf("unknown transcription provider %q", cfg.Provider)
}
