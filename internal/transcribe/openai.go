package transcribe

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/mgpai22/tarjama/internal/audio"
	"github.com/mgpai22/tarjama/internal/subtitle"
)

// implements Transcriber using the OpenAI audio API
type OpenAITranscriber struct {
	client  openai.Client
	model   string
	options Options
}

// verbose_json response from Whisper
type whisperVerboseResponse struct {
	Text     string              `json:"text"`
	Segments []transcriptSegment `json:"segments"`
	Language string              `json:"language"`
	Duration float64             `json:"duration"`
}

func NewOpenAITranscriber(
	ctx context.Context,
	apiKey string,
	opts Options,
) (*OpenAITranscriber, error) {
	if apiKey == "" {
		return nil, errors.New("API key is required")
	}

	model := opts.Model
	if model == "" {
		model = "whisper-1"
	}

	return &OpenAITranscriber{
		client:  openai.NewClient(option.WithAPIKey(apiKey)),
		model:   model,
		options: opts,
	}, nil
}

func (t *OpenAITranscriber) Transcribe(
	ctx context.Context,
	audioPath string,
) (*Result, error) {
	file, err := os.Open(audioPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open audio file: %w", err)
	}
	defer func() { _ = file.Close() }()

	duration, _ := audio.GetDuration(ctx, audioPath)

	if t.shouldUseTranslation() {
		return t.transcribeToEnglish(ctx, file, duration.Seconds())
	}
	return t.transcribeWithTimestamps(ctx, file, duration.Seconds())
}

// whisper's translation endpoint only produces English
func (t *OpenAITranscriber) shouldUseTranslation() bool {
	lang := strings.ToLower(strings.TrimSpace(t.options.TranscriptLanguage))
	return lang == "english" || lang == "en"
}

func (t *OpenAITranscriber) transcribeToEnglish(
	ctx context.Context,
	file *os.File,
	duration float64,
) (*Result, error) {
	params := openai.AudioTranslationNewParams{
		File:           file,
		Model:          openai.AudioModel(t.model),
		ResponseFormat: openai.AudioTranslationNewParamsResponseFormatVerboseJSON,
	}
	if t.options.Prompt != "" {
		params.Prompt = openai.String(t.options.Prompt)
	}

	resp, err := t.client.Audio.Translations.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("translation failed: %w", err)
	}

	segments, err := parseVerboseJSONResponse(resp.RawJSON(), duration)
	if err != nil {
		segments = wholeFileSegment(resp.Text, duration)
	}

	return &Result{
		Segments: segments,
		Language: "en",
		Duration: duration,
	}, nil
}

func (t *OpenAITranscriber) transcribeWithTimestamps(
	ctx context.Context,
	file *os.File,
	duration float64,
) (*Result, error) {
	params := openai.AudioTranscriptionNewParams{
		File:                   file,
		Model:                  openai.AudioModel(t.model),
		ResponseFormat:         openai.AudioResponseFormatVerboseJSON,
		TimestampGranularities: []string{"segment"},
	}
	if t.options.Language != "" {
		params.Language = openai.String(t.options.Language)
	}
	if t.options.Prompt != "" {
		params.Prompt = openai.String(t.options.Prompt)
	}

	resp, err := t.client.Audio.Transcriptions.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("transcription failed: %w", err)
	}

	segments, err := parseVerboseJSONResponse(resp.RawJSON(), duration)
	if err != nil {
		segments = wholeFileSegment(resp.Text, duration)
	}

	return &Result{
		Segments: segments,
		Language: t.options.Language,
		Duration: duration,
	}, nil
}

func wholeFileSegment(text string, duration float64) []subtitle.Segment {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	return []subtitle.Segment{{Start: 0, End: duration, Text: text}}
}

// parseVerboseJSONResponse reads Whisper segments; a reply with text but no
// segments becomes one segment spanning the reported (or fallback) duration.
func parseVerboseJSONResponse(rawJSON string, fallbackDuration float64) ([]subtitle.Segment, error) {
	if rawJSON == "" {
		return nil, errors.New("empty response")
	}

	var resp whisperVerboseResponse
	if err := json.Unmarshal([]byte(rawJSON), &resp); err != nil {
		return nil, fmt.Errorf("failed to parse verbose_json response: %w", err)
	}

	if len(resp.Segments) == 0 {
		if strings.TrimSpace(resp.Text) == "" {
			return nil, errors.New("no segments or text in response")
		}
		dur := fallbackDuration
		if resp.Duration > 0 {
			dur = resp.Duration
		}
		return wholeFileSegment(resp.Text, dur), nil
	}

	return toSegments(resp.Segments), nil
}
