package video

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	ffmpeg "github.com/u2takey/ffmpeg-go"

	ffmpegbin "github.com/mgpai22/tarjama/internal/ffmpeg"
	"github.com/mgpai22/tarjama/internal/overlay"
)

// video file information
type Info struct {
	Path      string
	Duration  time.Duration
	Width     int
	Height    int
	FrameRate float64
	Codec     string
	HasAudio  bool
}

// Renderer runs one ffmpeg invocation. *ffmpeg.Runner satisfies it.
type Renderer interface {
	Run(ctx context.Context, args []string) error
}

// holds options for audio extraction
type ExtractAudioOptions struct {
	Format     string // wav, mp3, aac, flac
	SampleRate int
	Channels   int
	Bitrate    string // lossy formats only, e.g. "128k"
}

// 16 kHz mono PCM, what speech models expect
func DefaultExtractAudioOptions() ExtractAudioOptions {
	return ExtractAudioOptions{
		Format:     "wav",
		SampleRate: 16000,
		Channels:   1,
	}
}

// DefaultProcessor drives ffmpeg and ffprobe binaries.
type DefaultProcessor struct {
	renderer    Renderer
	ffprobePath string
}

func NewProcessor(renderer Renderer, ffprobePath string) *DefaultProcessor {
	if ffprobePath == "" {
		ffprobePath = "ffprobe"
	}
	return &DefaultProcessor{
		renderer:    renderer,
		ffprobePath: ffprobePath,
	}
}

func extractArgs(opts ExtractAudioOptions) ffmpeg.KwArgs {
	kwargs := ffmpeg.KwArgs{
		"vn": "",
		"ar": opts.SampleRate,
		"ac": opts.Channels,
	}

	switch opts.Format {
	case "mp3":
		kwargs["acodec"] = "libmp3lame"
	case "aac":
		kwargs["acodec"] = "aac"
	case "flac":
		kwargs["acodec"] = "flac"
	default:
		kwargs["acodec"] = "pcm_s16le"
	}
	if opts.Bitrate != "" && (opts.Format == "mp3" || opts.Format == "aac") {
		kwargs["b:a"] = opts.Bitrate
	}
	return kwargs
}

// ExtractAudio writes the audio track of videoPath to outputPath.
func (p *DefaultProcessor) ExtractAudio(
	ctx context.Context,
	videoPath, outputPath string,
	opts ExtractAudioOptions,
) error {
	if _, err := os.Stat(videoPath); os.IsNotExist(err) {
		return fmt.Errorf("video file not found: %s", videoPath)
	}

	if err := os.MkdirAll(filepath.Dir(outputPath), 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	args := ffmpeg.Input(videoPath).
		Output(outputPath, extractArgs(opts)).
		OverWriteOutput().
		GetArgs()

	if err := p.renderer.Run(ctx, args); err != nil {
		return fmt.Errorf("ffmpeg extraction failed: %w", err)
	}
	return nil
}

// Burn renders plan into outputPath. A failed or cancelled render leaves no
// partial output behind; an earlier file at outputPath that ffmpeg did not
// write to is kept.
func (p *DefaultProcessor) Burn(
	ctx context.Context,
	plan *overlay.Plan,
	outputPath string,
) error {
	if plan == nil {
		return errors.New("render plan is required")
	}
	for _, in := range plan.Inputs {
		if _, err := os.Stat(in.Path); err != nil {
			return fmt.Errorf("%s input not found: %s", in.Role, in.Path)
		}
	}

	if err := os.MkdirAll(filepath.Dir(outputPath), 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	before, statErr := os.Stat(outputPath)
	if statErr != nil {
		before = nil
	}

	if err := p.renderer.Run(ctx, plan.Args(outputPath)); err != nil {
		if !touched(outputPath, before) {
			return fmt.Errorf("render failed: %w", err)
		}
		if rmErr := os.Remove(outputPath); rmErr != nil && !os.IsNotExist(rmErr) {
			return fmt.Errorf("render failed: %w (removing partial output: %v)", err, rmErr)
		}
		return fmt.Errorf("render failed: %w", err)
	}
	return nil
}

// touched reports whether path was created or rewritten since before was
// taken. A file ffmpeg never opened is left alone.
func touched(path string, before os.FileInfo) bool {
	after, err := os.Stat(path)
	if err != nil {
		return false
	}
	if before == nil {
		return true
	}
	return !after.ModTime().Equal(before.ModTime()) || after.Size() != before.Size()
}

type probeOutput struct {
	Streams []struct {
		CodecType    string `json:"codec_type"`
		CodecName    string `json:"codec_name"`
		Width        int    `json:"width"`
		Height       int    `json:"height"`
		AvgFrameRate string `json:"avg_frame_rate"`
	} `json:"streams"`
	Format struct {
		Duration string `json:"duration"`
	} `json:"format"`
}

// GetInfo probes videoPath with ffprobe.
func (p *DefaultProcessor) GetInfo(
	ctx context.Context,
	videoPath string,
) (*Info, error) {
	if _, err := os.Stat(videoPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("video file not found: %s", videoPath)
	}

	cmd := exec.CommandContext(ctx, p.ffprobePath,
		"-v", "quiet",
		"-print_format", "json",
		"-show_format",
		"-show_streams",
		videoPath,
	)
	var out bytes.Buffer
	cmd.Stdout = &out
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("ffprobe failed: %w", err)
	}

	info, err := parseProbe(out.Bytes())
	if err != nil {
		return nil, err
	}
	info.Path = videoPath
	return info, nil
}

func parseProbe(data []byte) (*Info, error) {
	var probe probeOutput
	if err := json.Unmarshal(data, &probe); err != nil {
		return nil, fmt.Errorf("failed to parse ffprobe output: %w", err)
	}

	info := &Info{}
	if probe.Format.Duration != "" {
		seconds, err := strconv.ParseFloat(probe.Format.Duration, 64)
		if err != nil {
			return nil, fmt.Errorf("failed to parse duration %q: %w", probe.Format.Duration, err)
		}
		info.Duration = time.Duration(seconds * float64(time.Second))
	}

	foundVideo := false
	for _, s := range probe.Streams {
		switch s.CodecType {
		case "video":
			if foundVideo {
				continue
			}
			foundVideo = true
			info.Width = s.Width
			info.Height = s.Height
			info.Codec = s.CodecName
			info.FrameRate = parseRate(s.AvgFrameRate)
		case "audio":
			info.HasAudio = true
		}
	}
	if !foundVideo {
		return nil, errors.New("no video stream found")
	}
	return info, nil
}

// parses ffprobe rationals such as "30000/1001"
func parseRate(rate string) float64 {
	num, den, ok := strings.Cut(rate, "/")
	if !ok {
		v, _ := strconv.ParseFloat(rate, 64)
		return v
	}
	n, err1 := strconv.ParseFloat(num, 64)
	d, err2 := strconv.ParseFloat(den, 64)
	if err1 != nil || err2 != nil || d == 0 {
		return 0
	}
	return n / d
}

// NewDefault wires a processor to the resolved ffmpeg binaries.
func NewDefault(liveStderr io.Writer) (*DefaultProcessor, error) {
	paths, err := ffmpegbin.Ensure()
	if err != nil {
		return nil, err
	}
	runner := &ffmpegbin.Runner{Path: paths.FFmpeg, Stderr: liveStderr}
	return NewProcessor(runner, paths.FFprobe), nil
}
