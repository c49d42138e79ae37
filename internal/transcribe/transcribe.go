package transcribe

import (
	"context"
	"fmt"

	"github.com/mgpai22/tarjama/internal/subtitle"
)

// transcription result; times are in seconds
type Result struct {
	Segments []subtitle.Segment
	Language string
	Duration float64
}

// Transcriber turns one audio file into timed English segments.
type Transcriber interface {
	Transcribe(ctx context.Context, audioPath string) (*Result, error)
}

// transcription service provider
type Provider string

const (
	ProviderOpenAI Provider = "openai"
	ProviderGemini Provider = "gemini"
)

// transcription options
type Options struct {
	Language           string // spoken language of the audio
	TranscriptLanguage string // language of the transcript, "native" keeps the spoken one
	Model              string
	Prompt             string
}

// DefaultOptions transcribes English speech as English text.
func DefaultOptions() Options {
	return Options{
		Language:           "en",
		TranscriptLanguage: "native",
	}
}

// creates transcriber based on provider
func Factory(
	ctx context.Context,
	provider Provider,
	apiKey string,
	opts Options,
) (Transcriber, error) {
	switch provider {
	case ProviderGemini:
		return NewGeminiTranscriber(ctx, apiKey, opts)
	case ProviderOpenAI:
		return NewOpenAITranscriber(ctx, apiKey, opts)
	default:
		return nil, fmt.Errorf("unsupported provider: %s", provider)
	}
}
