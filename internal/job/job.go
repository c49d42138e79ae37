// Package job runs one video through extraction, transcription, translation,
// subtitle building and rendering.
package job

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/gofrs/flock"
	"github.com/google/uuid"

	"github.com/mgpai22/tarjama/internal/audio"
	"github.com/mgpai22/tarjama/internal/logging"
	"github.com/mgpai22/tarjama/internal/overlay"
	"github.com/mgpai22/tarjama/internal/subtitle"
	"github.com/mgpai22/tarjama/internal/video"
)

// ErrOutputLocked means another job is writing the same destination.
var ErrOutputLocked = errors.New("output is locked by another job")

// AudioExtractor pulls the speech track out of a video.
type AudioExtractor interface {
	ExtractAudio(ctx context.Context, videoPath, outputPath string, opts video.ExtractAudioOptions) error
}

// Transcriber produces English segments for an audio file. workDir is
// private to the job and may hold intermediate files.
type Transcriber interface {
	Transcribe(ctx context.Context, audioPath, workDir string) ([]subtitle.Segment, error)
}

// Translator maps English segments to Arabic ones with identical timings.
type Translator interface {
	TranslateSegments(ctx context.Context, segments []subtitle.Segment) ([]subtitle.Segment, error)
}

// Prober inspects the input video before any work starts.
type Prober interface {
	GetInfo(ctx context.Context, videoPath string) (*video.Info, error)
}

// Renderer burns a planned render into output.
type Renderer interface {
	Burn(ctx context.Context, plan *overlay.Plan, outputPath string) error
}

// Request describes one job.
type Request struct {
	VideoPath string
	// OutputPath is the rendered video; ignored when SkipRender is set.
	OutputPath string
	// SubtitlePath, when set, is an existing translated SRT; transcription
	// and translation are skipped.
	SubtitlePath string
	// SRTOutput, when set, receives a copy of the built Arabic track.
	SRTOutput  string
	Style      overlay.Style
	Overlay    overlay.Overlay
	SkipRender bool
}

// Result summarises a finished job.
type Result struct {
	ID           string
	Cues         int
	SubtitlePath string
	OutputPath   string
	OutputSize   string
	Elapsed      time.Duration
}

// Runner owns the stages. Stages not needed by a request may be nil.
type Runner struct {
	Prober      Prober
	Extractor   AudioExtractor
	Transcriber Transcriber
	Translator  Translator
	Renderer    Renderer
	Builder     *subtitle.Builder
	Logger      *logging.Logger

	// WorkRoot holds per-job work dirs; os.TempDir() when empty.
	WorkRoot    string
	KeepWorkDir bool
}

// Run executes req. The destination is locked for the job's lifetime and
// the work dir is removed afterwards unless KeepWorkDir is set.
func (r *Runner) Run(ctx context.Context, req Request) (*Result, error) {
	if err := r.check(req); err != nil {
		return nil, err
	}

	started := time.Now()
	id := uuid.NewString()
	logger := r.logger().With("job", id[:8])

	unlock, err := lockDestination(r.destination(req))
	if err != nil {
		return nil, err
	}
	defer unlock()

	if err := r.probe(ctx, req, logger); err != nil {
		return nil, err
	}

	workDir, err := r.makeWorkDir(id)
	if err != nil {
		return nil, err
	}
	if r.KeepWorkDir {
		logger.Infow("keeping work directory", "path", workDir)
	} else {
		defer func() {
			if err := os.RemoveAll(workDir); err != nil {
				logger.Warnw("failed to remove work directory", "path", workDir, "error", err)
			}
		}()
	}

	segments, err := r.segments(ctx, req, workDir, logger)
	if err != nil {
		return nil, err
	}

	builder := r.Builder
	if builder == nil {
		builder = subtitle.NewBuilder()
	}
	track := builder.Build(segments)
	track.Language = "ar"

	trackPath := filepath.Join(workDir, baseName(req.VideoPath)+".ar.srt")
	if err := track.WriteFile(trackPath); err != nil {
		return nil, err
	}
	logger.Debugw("subtitle track written", "path", trackPath, "cues", track.Len())

	result := &Result{ID: id, Cues: track.Len(), SubtitlePath: trackPath}
	if req.SRTOutput != "" {
		if err := track.WriteFile(req.SRTOutput); err != nil {
			return nil, err
		}
		result.SubtitlePath = req.SRTOutput
		logger.Infow("subtitles saved", "path", req.SRTOutput, "cues", track.Len())
	}

	if req.SkipRender {
		result.Elapsed = time.Since(started)
		return result, nil
	}

	plan, err := overlay.Build(req.VideoPath, trackPath, req.Style, req.Overlay)
	if err != nil {
		return nil, fmt.Errorf("plan render: %w", err)
	}

	logger.Infow("rendering", "output", req.OutputPath, "logo", plan.HasLogo())
	logger.Debugw("ffmpeg arguments", "args", strings.Join(plan.Args(req.OutputPath), " "))
	if err := r.Renderer.Burn(ctx, plan, req.OutputPath); err != nil {
		return nil, err
	}

	result.OutputPath = req.OutputPath
	if info, err := os.Stat(req.OutputPath); err == nil {
		result.OutputSize = humanize.Bytes(uint64(info.Size()))
	}
	result.Elapsed = time.Since(started)
	logger.Infow("render complete",
		"output", req.OutputPath,
		"size", result.OutputSize,
		"elapsed", result.Elapsed.Round(time.Millisecond),
	)
	return result, nil
}

func (r *Runner) check(req Request) error {
	if strings.TrimSpace(req.VideoPath) == "" {
		return errors.New("video path is required")
	}
	if _, err := os.Stat(req.VideoPath); err != nil {
		return fmt.Errorf("video file not found: %s", req.VideoPath)
	}
	if !audio.IsMediaFile(req.VideoPath) {
		return fmt.Errorf("not a media file: %s", req.VideoPath)
	}
	if req.SkipRender && req.SRTOutput == "" {
		return errors.New("subtitle output path is required when rendering is skipped")
	}
	if !req.SkipRender {
		if req.OutputPath == "" {
			return errors.New("output path is required")
		}
		if r.Renderer == nil {
			return errors.New("no renderer configured")
		}
		if samePath(req.OutputPath, req.VideoPath) {
			return errors.New("output path must differ from the input video")
		}
	}
	if req.SubtitlePath == "" && (r.Extractor == nil || r.Transcriber == nil || r.Translator == nil) {
		return errors.New("transcription pipeline is not configured")
	}
	return nil
}

// probe rejects inputs without a video stream, and inputs without audio
// when the speech has to be transcribed.
func (r *Runner) probe(ctx context.Context, req Request, logger *logging.Logger) error {
	if r.Prober == nil {
		return nil
	}
	info, err := r.Prober.GetInfo(ctx, req.VideoPath)
	if err != nil {
		return fmt.Errorf("probe input: %w", err)
	}
	logger.Infow("input video",
		"duration", info.Duration.Round(time.Second),
		"size", fmt.Sprintf("%dx%d", info.Width, info.Height),
		"has_audio", info.HasAudio,
	)
	if !info.HasAudio && req.SubtitlePath == "" {
		return fmt.Errorf("no audio track to transcribe in %s", req.VideoPath)
	}
	return nil
}

func (r *Runner) segments(
	ctx context.Context,
	req Request,
	workDir string,
	logger *logging.Logger,
) ([]subtitle.Segment, error) {
	if req.SubtitlePath != "" {
		segments, err := subtitle.ReadSRT(req.SubtitlePath)
		if err != nil {
			return nil, err
		}
		logger.Infow("loaded subtitles", "path", req.SubtitlePath, "cues", len(segments))
		return segments, nil
	}

	audioPath := filepath.Join(workDir, "audio.wav")
	logger.Infow("extracting audio", "video", req.VideoPath)
	if err := r.Extractor.ExtractAudio(ctx, req.VideoPath, audioPath, video.DefaultExtractAudioOptions()); err != nil {
		return nil, fmt.Errorf("extract audio: %w", err)
	}

	logger.Infow("transcribing")
	english, err := r.Transcriber.Transcribe(ctx, audioPath, workDir)
	if err != nil {
		return nil, fmt.Errorf("transcribe: %w", err)
	}
	if err := subtitle.ValidateSegments(english); err != nil {
		logger.Warnw("transcript timing irregular", "error", err)
	}
	logger.Infow("transcribed", "segments", len(english))

	arabic, err := r.Translator.TranslateSegments(ctx, english)
	if err != nil {
		return nil, fmt.Errorf("translate: %w", err)
	}
	if len(arabic) != len(english) {
		return nil, fmt.Errorf("translate: got %d segments for %d inputs", len(arabic), len(english))
	}
	logger.Infow("translated", "segments", len(arabic))
	return arabic, nil
}

func (r *Runner) destination(req Request) string {
	if req.SkipRender {
		return req.SRTOutput
	}
	return req.OutputPath
}

func (r *Runner) makeWorkDir(id string) (string, error) {
	root := r.WorkRoot
	if root == "" {
		root = os.TempDir()
	}
	dir := filepath.Join(root, "tarjama-"+id)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create work directory: %w", err)
	}
	return dir, nil
}

func (r *Runner) logger() *logging.Logger {
	if r.Logger == nil {
		return logging.Nop()
	}
	return r.Logger
}

// lockDestination takes an exclusive lock keyed by the absolute destination
// path. Lock files live under the system temp dir and are left in place so
// a released lock never races with a new holder.
func lockDestination(path string) (func(), error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create output directory: %w", err)
	}

	lockDir := filepath.Join(os.TempDir(), "tarjama", "locks")
	if err := os.MkdirAll(lockDir, 0o755); err != nil {
		return nil, fmt.Errorf("create lock directory: %w", err)
	}

	lock := flock.New(filepath.Join(lockDir, lockName(path)))
	ok, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire output lock: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrOutputLocked, path)
	}

	return func() { _ = lock.Unlock() }, nil
}

func lockName(path string) string {
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	sum := sha256.Sum256([]byte(path))
	return hex.EncodeToString(sum[:8]) + ".lock"
}

func baseName(path string) string {
	return strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
}

func samePath(a, b string) bool {
	absA, errA := filepath.Abs(a)
	absB, errB := filepath.Abs(b)
	if errA != nil || errB != nil {
		return a == b
	}
	return absA == absB
}
