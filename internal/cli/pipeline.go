package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/mgpai22/tarjama/internal/config"
	"github.com/mgpai22/tarjama/internal/job"
	"github.com/mgpai22/tarjama/internal/subtitle"
	"github.com/mgpai22/tarjama/internal/transcribe"
	"github.com/mgpai22/tarjama/internal/translate"
	"github.com/mgpai22/tarjama/internal/video"
)

// addProviderFlags registers flags for the transcription and translation
// stages.
func addProviderFlags(cmd *cobra.Command) {
	cmd.Flags().String("transcriber", "", "Transcription provider: gemini or openai")
	cmd.Flags().String("translator", "", "Translation provider: gemini, openai or anthropic")
	cmd.Flags().String("transcription-model", "", "Model override for transcription")
	cmd.Flags().String("translation-model", "", "Model override for translation")
	cmd.Flags().Int("chunk-minutes", 0, "Split audio longer than this many minutes before transcription")
	cmd.Flags().Int("concurrency", 0, "Parallel provider requests")
	cmd.Flags().Bool("keep-work-dir", false, "Keep intermediate files")
	cmd.Flags().Bool("no-reshape", false, "Leave Arabic letters unshaped (for renderers that shape text)")
}

func applyProviderFlags(cmd *cobra.Command, c *config.Config) error {
	flags := cmd.Flags()
	if flags.Changed("transcriber") {
		c.Transcription.Provider, _ = flags.GetString("transcriber")
	}
	if flags.Changed("translator") {
		c.Translation.Provider, _ = flags.GetString("translator")
	}
	if flags.Changed("transcription-model") {
		c.Transcription.Model, _ = flags.GetString("transcription-model")
	}
	if flags.Changed("translation-model") {
		c.Translation.Model, _ = flags.GetString("translation-model")
	}
	if flags.Changed("chunk-minutes") {
		c.Transcription.ChunkMinutes, _ = flags.GetInt("chunk-minutes")
	}
	if flags.Changed("concurrency") {
		n, _ := flags.GetInt("concurrency")
		c.Transcription.Concurrency = n
		c.Translation.Concurrency = n
	}
	if flags.Changed("keep-work-dir") {
		c.Paths.KeepWorkDir, _ = flags.GetBool("keep-work-dir")
	}
	return c.Validate()
}

// liveOutput is where ffmpeg progress goes; only shown with --verbose.
func liveOutput() io.Writer {
	if verbose {
		return os.Stderr
	}
	return nil
}

// newRunner wires the job stages from c. When withProviders is false only
// rendering is available.
func newRunner(ctx context.Context, cmd *cobra.Command, c *config.Config, withProviders bool) (*job.Runner, error) {
	processor, err := video.NewDefault(liveOutput())
	if err != nil {
		return nil, fmt.Errorf("locate ffmpeg: %w", err)
	}

	builder := subtitle.NewBuilder()
	if noReshape, _ := cmd.Flags().GetBool("no-reshape"); noReshape {
		builder.Reshape = false
	}

	runner := &job.Runner{
		Prober:      processor,
		Extractor:   processor,
		Renderer:    processor,
		Builder:     builder,
		Logger:      logger,
		WorkRoot:    c.Paths.WorkDir,
		KeepWorkDir: c.Paths.KeepWorkDir,
	}
	if !withProviders {
		return runner, nil
	}

	transcriber, err := newTranscriber(ctx, c)
	if err != nil {
		return nil, err
	}
	translator, err := newTranslator(ctx, c)
	if err != nil {
		return nil, err
	}
	runner.Transcriber = transcriber
	runner.Translator = translator
	return runner, nil
}

func newTranscriber(ctx context.Context, c *config.Config) (job.Transcriber, error) {
	provider := c.Transcription.Provider
	key, err := c.RequireKey(provider)
	if err != nil {
		return nil, err
	}

	opts := transcribe.DefaultOptions()
	opts.Model = c.Transcription.Model
	if c.Transcription.Language != "" {
		opts.Language = c.Transcription.Language
	}

	t, err := transcribe.Factory(ctx, transcribe.Provider(provider), key, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to create transcriber: %w", err)
	}
	return &job.ChunkedTranscriber{
		Provider:    t,
		ChunkLength: time.Duration(c.Transcription.ChunkMinutes) * time.Minute,
		Concurrency: c.Transcription.Concurrency,
		Logger:      logger,
	}, nil
}

func newTranslator(ctx context.Context, c *config.Config) (job.Translator, error) {
	provider := c.Translation.Provider
	key, err := c.RequireKey(provider)
	if err != nil {
		return nil, err
	}

	opts := translate.Options{
		InputLanguage:  c.Translation.SourceLanguage,
		TargetLanguage: c.Translation.TargetLanguage,
		Model:          c.Translation.Model,
		Prompt:         c.Translation.Prompt,
		BatchSize:      c.Translation.BatchSize,
	}

	t, err := translate.Factory(ctx, translate.Provider(provider), key, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to create translator: %w", err)
	}
	return &job.SegmentTranslator{Translator: t, Concurrency: c.Translation.Concurrency}, nil
}

func printResult(cmd *cobra.Command, r *job.Result) {
	out := cmd.OutOrStdout()
	if r.OutputPath != "" {
		fmt.Fprintf(out, "Video written: %s", r.OutputPath)
		if r.OutputSize != "" {
			fmt.Fprintf(out, " (%s)", r.OutputSize)
		}
		fmt.Fprintln(out)
	}
	fmt.Fprintf(out, "Subtitles: %s\n", r.SubtitlePath)
	fmt.Fprintf(out, "  Cues: %d\n", r.Cues)
	fmt.Fprintf(out, "  Elapsed: %s\n", r.Elapsed.Round(time.Second))
}
