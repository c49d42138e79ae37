package job

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/mgpai22/tarjama/internal/audio"
	"github.com/mgpai22/tarjama/internal/logging"
	"github.com/mgpai22/tarjama/internal/subtitle"
	"github.com/mgpai22/tarjama/internal/transcribe"
	"github.com/mgpai22/tarjama/internal/translate"
)

// ChunkedTranscriber compresses audio for upload and, when it is longer than
// ChunkLength, splits it and transcribes the pieces concurrently.
type ChunkedTranscriber struct {
	Provider    transcribe.Transcriber
	ChunkLength time.Duration // 0 disables chunking
	Concurrency int
	Logger      *logging.Logger
}

func (c *ChunkedTranscriber) Transcribe(ctx context.Context, audioPath, workDir string) ([]subtitle.Segment, error) {
	compressed := filepath.Join(workDir, "speech.mp3")
	if err := audio.CompressAudio(ctx, audioPath, compressed, audio.DefaultCompressionOptions()); err != nil {
		return nil, err
	}

	if c.ChunkLength > 0 {
		total, err := audio.GetDuration(ctx, compressed)
		if err != nil {
			return nil, err
		}
		if total > c.ChunkLength {
			return c.transcribeChunks(ctx, compressed, workDir)
		}
	}

	result, err := c.Provider.Transcribe(ctx, compressed)
	if err != nil {
		return nil, err
	}
	return result.Segments, nil
}

func (c *ChunkedTranscriber) transcribeChunks(ctx context.Context, path, workDir string) ([]subtitle.Segment, error) {
	chunks, err := audio.ChunkAudio(ctx, path, c.ChunkLength, filepath.Join(workDir, "chunks"), 0)
	if err != nil {
		return nil, fmt.Errorf("split audio: %w", err)
	}
	defer func() { _ = audio.CleanupChunks(chunks) }()

	if c.Logger != nil {
		c.Logger.Infow("transcribing in chunks", "chunks", len(chunks), "concurrency", c.Concurrency)
	}

	result, err := transcribe.TranscribeChunks(ctx, c.Provider, chunks, c.Concurrency)
	if err != nil {
		return nil, err
	}
	return result.Segments, nil
}

// SegmentTranslator adapts a translate.Translator to the job pipeline.
type SegmentTranslator struct {
	Translator  translate.Translator
	Concurrency int
}

func (s *SegmentTranslator) TranslateSegments(ctx context.Context, segments []subtitle.Segment) ([]subtitle.Segment, error) {
	return translate.TranslateSegments(ctx, s.Translator, segments, s.Concurrency)
}
